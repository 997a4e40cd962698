package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types emitted on package lifecycle transitions.
const (
	TypeSubmitted    = "PACKAGE_SUBMITTED"
	TypeUnlocked     = "PACKAGE_UNLOCKED"
	TypeReviewAction = "PACKAGE_REVIEW_ACTION"
)

// Package kinds.
const (
	KindContract = "CONTRACT"
	KindRate     = "RATE"
)

// PackageEvent is the wire shape published on the bus after a lifecycle
// transition commits.
type PackageEvent struct {
	Type        string    `json:"type"`
	PackageKind string    `json:"packageKind"`
	PackageID   uuid.UUID `json:"packageID"`
	StateCode   string    `json:"stateCode"`
	Status      string    `json:"status"`
	UpdatedBy   uuid.UUID `json:"updatedBy"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
