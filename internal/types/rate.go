package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Rate mirrors Contract. ParentContractID is the contract the rate was first
// created under; a back-reference only, since rates can be linked across
// contracts and outlive their parent's draft.
type Rate struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StateCode        string         `gorm:"column:state_code;not null;index:idx_rate_state" json:"state_code"`
	StateNumber      int            `gorm:"column:state_number;not null;index:idx_rate_state" json:"state_number"`
	ParentContractID uuid.UUID      `gorm:"column:parent_contract_id;type:uuid;not null;index" json:"parent_contract_id"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Rate) TableName() string { return "rate" }

type RateRevision struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RateID uuid.UUID `gorm:"type:uuid;not null;index" json:"rate_id"`
	Rate   *Rate     `gorm:"constraint:OnDelete:CASCADE;foreignKey:RateID;references:ID" json:"rate,omitempty"`

	FormData datatypes.JSON `gorm:"column:form_data;type:jsonb;not null" json:"form_data"`

	SubmittedAt     *time.Time `gorm:"column:submitted_at;index" json:"submitted_at,omitempty"`
	SubmittedByID   *uuid.UUID `gorm:"column:submitted_by_id;type:uuid" json:"submitted_by_id,omitempty"`
	SubmittedReason string     `gorm:"column:submitted_reason" json:"submitted_reason,omitempty"`

	UnlockedAt     *time.Time `gorm:"column:unlocked_at" json:"unlocked_at,omitempty"`
	UnlockedByID   *uuid.UUID `gorm:"column:unlocked_by_id;type:uuid" json:"unlocked_by_id,omitempty"`
	UnlockedReason string     `gorm:"column:unlocked_reason" json:"unlocked_reason,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (RateRevision) TableName() string { return "rate_revision" }

// DraftRateJoin associates a contract's editable draft with the rates
// currently attached to it, in display order.
type DraftRateJoin struct {
	ContractID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"contract_id"`
	RateID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"rate_id"`
	RatePosition int       `gorm:"column:rate_position;not null" json:"rate_position"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (DraftRateJoin) TableName() string { return "draft_rate_join" }
