package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStateUser = "STATE_USER"
	RoleCMSUser   = "CMS_USER"
	RoleAdmin     = "ADMIN"
)

type User struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email              string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	HashedPassword     string         `gorm:"column:hashed_password;not null" json:"-"`
	GivenName          string         `gorm:"column:given_name" json:"given_name"`
	FamilyName         string         `gorm:"column:family_name" json:"family_name"`
	Role               string         `gorm:"column:role;not null;default:'STATE_USER'" json:"role"`
	StateCode          string         `gorm:"column:state_code;index" json:"state_code"`
	DivisionAssignment string         `gorm:"column:division_assignment" json:"division_assignment,omitempty"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "app_user" }
