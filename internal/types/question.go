package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question is one CMS question thread against a contract or rate, bucketed by
// review division. Round numbers are not stored; they are derived by sorting
// and filtering per division.
type Question struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID *uuid.UUID `gorm:"type:uuid;index" json:"contract_id,omitempty"`
	RateID     *uuid.UUID `gorm:"type:uuid;index" json:"rate_id,omitempty"`
	Division   string     `gorm:"column:division;not null" json:"division"`
	AddedByID  uuid.UUID  `gorm:"column:added_by_id;type:uuid;not null" json:"added_by_id"`
	AddedBy    *User      `gorm:"foreignKey:AddedByID;references:ID" json:"added_by,omitempty"`

	Documents datatypes.JSON `gorm:"column:documents;type:jsonb" json:"documents"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string { return "question" }

// QuestionResponse is a state response within a question thread.
type QuestionResponse struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Question   *Question `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"question,omitempty"`
	AddedByID  uuid.UUID `gorm:"column:added_by_id;type:uuid;not null" json:"added_by_id"`
	AddedBy    *User     `gorm:"foreignKey:AddedByID;references:ID" json:"added_by,omitempty"`

	Documents datatypes.JSON `gorm:"column:documents;type:jsonb" json:"documents"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QuestionResponse) TableName() string { return "question_response" }
