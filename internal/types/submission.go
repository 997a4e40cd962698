package types

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionPackage is one atomic submit event. Which revisions it bundles
// lives in SubmissionPackageRevision join rows.
type SubmissionPackage struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubmittedAt     time.Time `gorm:"column:submitted_at;not null;index" json:"submitted_at"`
	SubmittedByID   uuid.UUID `gorm:"column:submitted_by_id;type:uuid;not null" json:"submitted_by_id"`
	SubmittedReason string    `gorm:"column:submitted_reason" json:"submitted_reason"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
}

func (SubmissionPackage) TableName() string { return "submission_package" }

// SubmissionPackageRevision links one revision (contract- or rate-flavored,
// exactly one of the two IDs set) into a submission package. IsSubmitted
// distinguishes revisions actually submitted in the event from sibling
// snapshots carried along for history; cause derivation depends on that
// distinction.
type SubmissionPackageRevision struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionPackageID uuid.UUID  `gorm:"type:uuid;not null;index" json:"submission_package_id"`
	ContractRevisionID  *uuid.UUID `gorm:"type:uuid;index" json:"contract_revision_id,omitempty"`
	RateRevisionID      *uuid.UUID `gorm:"type:uuid;index" json:"rate_revision_id,omitempty"`
	IsSubmitted         bool       `gorm:"column:is_submitted;not null;default:false" json:"is_submitted"`

	SubmissionPackage *SubmissionPackage `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubmissionPackageID;references:ID" json:"submission_package,omitempty"`
	ContractRevision  *ContractRevision  `gorm:"foreignKey:ContractRevisionID;references:ID" json:"contract_revision,omitempty"`
	RateRevision      *RateRevision      `gorm:"foreignKey:RateRevisionID;references:ID" json:"rate_revision,omitempty"`
}

func (SubmissionPackageRevision) TableName() string { return "submission_package_revision" }
