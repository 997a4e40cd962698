package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDs are generated app-side so the models work identically on Postgres and
// on the sqlite databases the store tests run against.

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (c *Contract) BeforeCreate(*gorm.DB) error           { ensureID(&c.ID); return nil }
func (r *ContractRevision) BeforeCreate(*gorm.DB) error   { ensureID(&r.ID); return nil }
func (r *Rate) BeforeCreate(*gorm.DB) error               { ensureID(&r.ID); return nil }
func (r *RateRevision) BeforeCreate(*gorm.DB) error       { ensureID(&r.ID); return nil }
func (p *SubmissionPackage) BeforeCreate(*gorm.DB) error  { ensureID(&p.ID); return nil }
func (j *SubmissionPackageRevision) BeforeCreate(*gorm.DB) error {
	ensureID(&j.ID)
	return nil
}
func (a *ReviewStatusAction) BeforeCreate(*gorm.DB) error { ensureID(&a.ID); return nil }
func (u *User) BeforeCreate(*gorm.DB) error               { ensureID(&u.ID); return nil }
func (q *Question) BeforeCreate(*gorm.DB) error           { ensureID(&q.ID); return nil }
func (r *QuestionResponse) BeforeCreate(*gorm.DB) error   { ensureID(&r.ID); return nil }
