package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
)

// ContractView is a contract package plus the projections clients always want
// alongside it. Status is derived on every read, never stored.
type ContractView struct {
	*packages.Contract
	Status               packages.Status            `json:"status"`
	InitiallySubmittedAt *time.Time                 `json:"initiallySubmittedAt,omitempty"`
	LastUpdated          time.Time                  `json:"lastUpdated"`
	SubmissionCauses     []packages.SubmissionCause `json:"submissionCauses"`
}

// RateView mirrors ContractView for rate packages.
type RateView struct {
	*packages.Rate
	Status               packages.Status `json:"status"`
	InitiallySubmittedAt *time.Time      `json:"initiallySubmittedAt,omitempty"`
	LastUpdated          time.Time       `json:"lastUpdated"`
}

// ContractSummary is the dashboard row shape.
type ContractSummary struct {
	ID                   uuid.UUID               `json:"id"`
	StateCode            string                  `json:"stateCode"`
	StateNumber          int                     `json:"stateNumber"`
	PackageName          string                  `json:"packageName"`
	SubmissionType       packages.SubmissionType `json:"submissionType"`
	Description          string                  `json:"description"`
	Status               packages.Status         `json:"status"`
	InitiallySubmittedAt *time.Time              `json:"initiallySubmittedAt,omitempty"`
	LastUpdated          time.Time               `json:"lastUpdated"`
}

func newContractView(c *packages.Contract) (*ContractView, error) {
	status, err := packages.ConsolidatedStatus(c)
	if err != nil {
		return nil, err
	}
	causes, err := packages.DeriveSubmissionCauses(c)
	if err != nil {
		return nil, err
	}
	return &ContractView{
		Contract:             c,
		Status:               status,
		InitiallySubmittedAt: packages.InitiallySubmittedAt(c),
		LastUpdated:          packages.LastUpdatedForDisplay(c),
		SubmissionCauses:     causes,
	}, nil
}

func newRateView(r *packages.Rate) (*RateView, error) {
	status, err := packages.RateConsolidatedStatus(r)
	if err != nil {
		return nil, err
	}
	view := &RateView{
		Rate:                 r,
		Status:               status,
		InitiallySubmittedAt: packages.RateInitiallySubmittedAt(r),
	}
	view.LastUpdated = r.UpdatedAt
	if last := packages.LatestRateSubmission(r); last != nil && last.SubmitInfo.UpdatedAt.After(view.LastUpdated) {
		view.LastUpdated = last.SubmitInfo.UpdatedAt
	}
	return view, nil
}

func newContractSummary(c *packages.Contract) (*ContractSummary, error) {
	status, err := packages.ConsolidatedStatus(c)
	if err != nil {
		return nil, err
	}
	summary := &ContractSummary{
		ID:                   c.ID,
		StateCode:            c.StateCode,
		StateNumber:          c.StateNumber,
		PackageName:          packageName(c),
		Status:               status,
		InitiallySubmittedAt: packages.InitiallySubmittedAt(c),
		LastUpdated:          packages.LastUpdatedForDisplay(c),
	}
	if rev := packages.CurrentContractRevision(c); rev != nil {
		summary.SubmissionType = rev.FormData.SubmissionType
		summary.Description = rev.FormData.SubmissionDescription
	}
	return summary, nil
}

// packageName renders the display identifier states file by, for example
// MCR-MN-0042.
func packageName(c *packages.Contract) string {
	return fmt.Sprintf("MCR-%s-%04d", c.StateCode, c.StateNumber)
}
