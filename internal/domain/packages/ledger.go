package packages

import (
	"sort"
	"time"
)

// The revision ledger is read through two lookups: "latest submission" and
// "current revision". Current form data is always draft-first, else
// latest-submitted; every other component reads through these helpers. They
// return nil, never an error, on missing data.

// SortSubmissionsDesc orders a contract's package submissions newest-first by
// submit time. The store calls this on load so PackageSubmissions[0] is
// always the most recent submit event.
func SortSubmissionsDesc(subs []ContractPackageSubmission) {
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].SubmitInfo.UpdatedAt.After(subs[j].SubmitInfo.UpdatedAt)
	})
}

// SortRateSubmissionsDesc orders a rate's package submissions newest-first.
func SortRateSubmissionsDesc(subs []RatePackageSubmission) {
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].SubmitInfo.UpdatedAt.After(subs[j].SubmitInfo.UpdatedAt)
	})
}

// LatestSubmission returns the most recent package submission, or nil for a
// never-submitted draft.
func LatestSubmission(c *Contract) *ContractPackageSubmission {
	if c == nil || len(c.PackageSubmissions) == 0 {
		return nil
	}
	return &c.PackageSubmissions[0]
}

// OldestSubmission returns the bootstrap submission, or nil.
func OldestSubmission(c *Contract) *ContractPackageSubmission {
	if c == nil || len(c.PackageSubmissions) == 0 {
		return nil
	}
	return &c.PackageSubmissions[len(c.PackageSubmissions)-1]
}

// CurrentContractRevision returns the draft revision when the contract is
// editable, else the contract revision of the latest submission. Nil when the
// contract has neither.
func CurrentContractRevision(c *Contract) *ContractRevision {
	if c == nil {
		return nil
	}
	if c.DraftRevision != nil {
		return c.DraftRevision
	}
	last := LatestSubmission(c)
	if last == nil {
		return nil
	}
	return &last.ContractRevision
}

// LatestRateSubmission returns the most recent package submission of a rate,
// or nil.
func LatestRateSubmission(r *Rate) *RatePackageSubmission {
	if r == nil || len(r.PackageSubmissions) == 0 {
		return nil
	}
	return &r.PackageSubmissions[0]
}

// OldestRateSubmission returns the bootstrap submission of a rate, or nil.
func OldestRateSubmission(r *Rate) *RatePackageSubmission {
	if r == nil || len(r.PackageSubmissions) == 0 {
		return nil
	}
	return &r.PackageSubmissions[len(r.PackageSubmissions)-1]
}

// CurrentRateRevision returns the rate's draft revision when editable, else
// the rate revision of the latest submission.
func CurrentRateRevision(r *Rate) *RateRevision {
	if r == nil {
		return nil
	}
	if r.DraftRevision != nil {
		return r.DraftRevision
	}
	last := LatestRateSubmission(r)
	if last == nil {
		return nil
	}
	return &last.RateRevision
}

// InitiallySubmittedAt is the submit time of the oldest submission,
// representing "initially submitted" as distinct from "most recently
// resubmitted". Nil for never-submitted drafts.
func InitiallySubmittedAt(c *Contract) *time.Time {
	first := OldestSubmission(c)
	if first == nil {
		return nil
	}
	t := first.SubmitInfo.UpdatedAt
	return &t
}

// RateInitiallySubmittedAt is the rate-flavored initial submit time.
func RateInitiallySubmittedAt(r *Rate) *time.Time {
	first := OldestRateSubmission(r)
	if first == nil {
		return nil
	}
	t := first.SubmitInfo.UpdatedAt
	return &t
}
