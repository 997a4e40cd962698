package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Contract carries no status column. Display status is always projected from
// the revision and submission shape at read time.
type Contract struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StateCode   string         `gorm:"column:state_code;not null;index:idx_contract_state" json:"state_code"`
	StateNumber int            `gorm:"column:state_number;not null;index:idx_contract_state" json:"state_number"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Contract) TableName() string { return "contract" }

// ContractRevision rows are append-only. A row with a null submitted_at is
// the contract's editable draft; unlock_* columns are set when the row was
// created by an unlock.
type ContractRevision struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index" json:"contract_id"`
	Contract   *Contract `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContractID;references:ID" json:"contract,omitempty"`

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

func (ContractRevision) TableName() string { return "contract_revision" }
