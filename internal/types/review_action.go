package types

import (
	"time"

	"github.com/google/uuid"
)

// ReviewStatusAction is an append-only audit row for CMS review actions
// (approve, withdraw, and their undos). History is never mutated; an undo
// appends a new opposing row.
type ReviewStatusAction struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID  *uuid.UUID `gorm:"type:uuid;index" json:"contract_id,omitempty"`
	RateID      *uuid.UUID `gorm:"type:uuid;index" json:"rate_id,omitempty"`
	ActionType  string     `gorm:"column:action_type;not null" json:"action_type"`
	Reason      string     `gorm:"column:reason" json:"reason"`
	UpdatedByID uuid.UUID  `gorm:"column:updated_by_id;type:uuid;not null" json:"updated_by_id"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (ReviewStatusAction) TableName() string { return "review_status_action" }
