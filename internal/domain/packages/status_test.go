package packages

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPackageStatus(t *testing.T) {
	contractID := uuid.New()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		contract *Contract
		want     Status
		wantErr  bool
	}{
		{
			name: "draft",
			contract: &Contract{
				ID:            contractID,
				DraftRevision: &ContractRevision{ID: uuid.New(), ContractID: contractID},
			},
			want: StatusDraft,
		},
		{
			name: "submitted",
			contract: &Contract{
				ID: contractID,
				PackageSubmissions: []ContractPackageSubmission{
					contractSubmissionAt(contractID, base, true),
				},
			},
			want: StatusSubmitted,
		},
		{
			name: "resubmitted",
			contract: &Contract{
				ID: contractID,
				PackageSubmissions: []ContractPackageSubmission{
					contractSubmissionAt(contractID, base.Add(time.Hour), true),
					contractSubmissionAt(contractID, base, true),
				},
			},
			want: StatusResubmitted,
		},
		{
			name: "unlocked",
			contract: &Contract{
				ID: contractID,
				DraftRevision: &ContractRevision{
					ID:         uuid.New(),
					ContractID: contractID,
					UnlockInfo: &UpdateInfo{UpdatedAt: base.Add(2 * time.Hour)},
				},
				PackageSubmissions: []ContractPackageSubmission{
					contractSubmissionAt(contractID, base, true),
				},
			},
			want: StatusUnlocked,
		},
		{
			name:     "no draft and no submissions is invalid",
			contract: &Contract{ID: contractID},
			wantErr:  true,
		},
		{
			name: "draft with history but no unlock info is invalid",
			contract: &Contract{
				ID:            contractID,
				DraftRevision: &ContractRevision{ID: uuid.New(), ContractID: contractID},
				PackageSubmissions: []ContractPackageSubmission{
					contractSubmissionAt(contractID, base, true),
				},
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PackageStatus(tc.contract)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("PackageStatus = %q, want error", got)
				}
				if !IsCode(err, CodeInvariantViolation) {
					t.Fatalf("PackageStatus error code = %q, want invariant_violation", CodeOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("PackageStatus error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("PackageStatus = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestConsolidatedStatusOverlay(t *testing.T) {
	contractID := uuid.New()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	submitted := []ContractPackageSubmission{contractSubmissionAt(contractID, base, true)}

	cases := []struct {
		name    string
		actions []ReviewStatusAction
		want    Status
	}{
		{name: "no actions keeps base", actions: nil, want: StatusSubmitted},
		{
			name: "approved",
			actions: []ReviewStatusAction{
				{UpdatedAt: base.Add(time.Hour), ActionType: ActionMarkAsApproved},
			},
			want: StatusApproved,
		},
		{
			name: "withdrawn",
			actions: []ReviewStatusAction{
				{UpdatedAt: base.Add(time.Hour), ActionType: ActionWithdraw},
			},
			want: StatusWithdrawn,
		},
		{
			name: "undo withdraw reverts to base",
			actions: []ReviewStatusAction{
				{UpdatedAt: base.Add(time.Hour), ActionType: ActionWithdraw},
				{UpdatedAt: base.Add(2 * time.Hour), ActionType: ActionUndoWithdraw},
			},
			want: StatusSubmitted,
		},
		{
			name: "latest action wins regardless of slice order",
			actions: []ReviewStatusAction{
				{UpdatedAt: base.Add(3 * time.Hour), ActionType: ActionMarkAsApproved},
				{UpdatedAt: base.Add(time.Hour), ActionType: ActionWithdraw},
			},
			want: StatusApproved,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Contract{ID: contractID, PackageSubmissions: submitted, ReviewStatusActions: tc.actions}
			got, err := ConsolidatedStatus(c)
			if err != nil {
				t.Fatalf("ConsolidatedStatus error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ConsolidatedStatus = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLastUpdatedForDisplay(t *testing.T) {
	contractID := uuid.New()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	sub := contractSubmissionAt(contractID, base.Add(time.Hour), true)
	c := &Contract{
		ID:                 contractID,
		UpdatedAt:          base,
		PackageSubmissions: []ContractPackageSubmission{sub},
	}

	// Never older than the newest submission's submit time.
	got := LastUpdatedForDisplay(c)
	if got.Before(sub.SubmitInfo.UpdatedAt) {
		t.Fatalf("LastUpdatedForDisplay = %v, older than newest submission %v", got, sub.SubmitInfo.UpdatedAt)
	}

	// String extras are normalized before comparison.
	extra := base.Add(5 * time.Hour)
	got = LastUpdatedForDisplay(c, extra.Format(time.RFC3339))
	if !got.Equal(extra) {
		t.Fatalf("LastUpdatedForDisplay with string extra = %v, want %v", got, extra)
	}

	// Absent and garbage extras are excluded, not treated as zero.
	got = LastUpdatedForDisplay(c, nil, (*time.Time)(nil), "not-a-timestamp")
	if !got.Equal(base.Add(time.Hour)) {
		t.Fatalf("LastUpdatedForDisplay with absent extras = %v, want %v", got, base.Add(time.Hour))
	}

	// A rate-caused resubmission reuses an older contract snapshot; the
	// result must still track the package's own submit time.
	older := contractSubmissionAt(contractID, base, true)
	rateCaused := ContractPackageSubmission{
		SubmitInfo:           submitInfoAt(base.Add(4 * time.Hour)),
		SubmittedRevisionIDs: []uuid.UUID{uuid.New()},
		ContractRevision:     older.ContractRevision,
	}
	stale := &Contract{
		ID:                 contractID,
		UpdatedAt:          base,
		PackageSubmissions: []ContractPackageSubmission{rateCaused, older},
	}
	got = LastUpdatedForDisplay(stale)
	if got.Before(rateCaused.SubmitInfo.UpdatedAt) {
		t.Fatalf("LastUpdatedForDisplay = %v, older than newest package submit %v", got, rateCaused.SubmitInfo.UpdatedAt)
	}

	// Unlock info on the draft revision counts.
	unlockAt := base.Add(3 * time.Hour)
	c.DraftRevision = &ContractRevision{
		ID:         uuid.New(),
		ContractID: contractID,
		UpdatedAt:  base.Add(2 * time.Hour),
		UnlockInfo: &UpdateInfo{UpdatedAt: unlockAt},
	}
	got = LastUpdatedForDisplay(c)
	if !got.Equal(unlockAt) {
		t.Fatalf("LastUpdatedForDisplay with unlock = %v, want %v", got, unlockAt)
	}
}
