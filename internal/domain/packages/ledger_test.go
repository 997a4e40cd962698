package packages

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func submitInfoAt(t time.Time) UpdateInfo {
	return UpdateInfo{UpdatedAt: t, UpdatedBy: uuid.New(), UpdatedReason: "submit"}
}

func contractSubmissionAt(contractID uuid.UUID, t time.Time, submitted bool) ContractPackageSubmission {
	rev := ContractRevision{
		ID:         uuid.New(),
		ContractID: contractID,
		SubmitInfo: &UpdateInfo{UpdatedAt: t},
		CreatedAt:  t,
		UpdatedAt:  t,
	}
	sub := ContractPackageSubmission{
		SubmitInfo:       submitInfoAt(t),
		ContractRevision: rev,
	}
	if submitted {
		sub.SubmittedRevisionIDs = []uuid.UUID{rev.ID}
	}
	return sub
}

func TestCurrentContractRevisionPrefersDraft(t *testing.T) {
	contractID := uuid.New()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	draft := &ContractRevision{
		ID:         uuid.New(),
		ContractID: contractID,
		UnlockInfo: &UpdateInfo{UpdatedAt: base.Add(2 * time.Hour)},
	}
	c := &Contract{
		ID:            contractID,
		DraftRevision: draft,
		PackageSubmissions: []ContractPackageSubmission{
			contractSubmissionAt(contractID, base.Add(time.Hour), true),
			contractSubmissionAt(contractID, base, true),
		},
	}

	got := CurrentContractRevision(c)
	if got == nil || got.ID != draft.ID {
		t.Fatalf("CurrentContractRevision returned %v, want draft revision %s", got, draft.ID)
	}
}

func TestCurrentContractRevisionFallsBackToLatestSubmitted(t *testing.T) {
	contractID := uuid.New()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	newest := contractSubmissionAt(contractID, base.Add(time.Hour), true)
	oldest := contractSubmissionAt(contractID, base, true)
	c := &Contract{
		ID:                 contractID,
		PackageSubmissions: []ContractPackageSubmission{newest, oldest},
	}

	got := CurrentContractRevision(c)
	if got == nil || got.ID != newest.ContractRevision.ID {
		t.Fatalf("CurrentContractRevision returned %v, want newest submitted revision %s", got, newest.ContractRevision.ID)
	}
}

func TestCurrentContractRevisionNilOnEmpty(t *testing.T) {
	if got := CurrentContractRevision(&Contract{ID: uuid.New()}); got != nil {
		t.Fatalf("expected nil for contract with no revisions, got %v", got)
	}
	if got := CurrentContractRevision(nil); got != nil {
		t.Fatalf("expected nil for nil contract, got %v", got)
	}
}

func TestLatestSubmissionOrdering(t *testing.T) {
	contractID := uuid.New()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	subs := []ContractPackageSubmission{
		contractSubmissionAt(contractID, base, true),
		contractSubmissionAt(contractID, base.Add(2*time.Hour), true),
		contractSubmissionAt(contractID, base.Add(time.Hour), true),
	}
	SortSubmissionsDesc(subs)

	c := &Contract{ID: contractID, PackageSubmissions: subs}
	last := LatestSubmission(c)
	if last == nil {
		t.Fatal("LatestSubmission returned nil")
	}
	if !last.SubmitInfo.UpdatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("LatestSubmission got %v, want newest at %v", last.SubmitInfo.UpdatedAt, base.Add(2*time.Hour))
	}

	first := OldestSubmission(c)
	if first == nil || !first.SubmitInfo.UpdatedAt.Equal(base) {
		t.Fatalf("OldestSubmission got %v, want %v", first, base)
	}

	at := InitiallySubmittedAt(c)
	if at == nil || !at.Equal(base) {
		t.Fatalf("InitiallySubmittedAt got %v, want %v", at, base)
	}
}

func TestLatestSubmissionNilForDraft(t *testing.T) {
	if got := LatestSubmission(&Contract{ID: uuid.New()}); got != nil {
		t.Fatalf("expected nil for never-submitted draft, got %v", got)
	}
	if got := InitiallySubmittedAt(&Contract{ID: uuid.New()}); got != nil {
		t.Fatalf("expected nil initial submit time for draft, got %v", got)
	}
}
