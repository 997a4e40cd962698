package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
	"github.com/mcreview/mcreview-backend/internal/logger"
	"github.com/mcreview/mcreview-backend/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "mcreview_test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.Contract{},
		&types.ContractRevision{},
		&types.Rate{},
		&types.RateRevision{},
		&types.DraftRateJoin{},
		&types.SubmissionPackage{},
		&types.SubmissionPackageRevision{},
		&types.ReviewStatusAction{},
		&types.User{},
		&types.Question{},
		&types.QuestionResponse{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return New(db, log)
}

func completeContractForm() packages.ContractFormData {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	fd := packages.ContractFormData{
		SubmissionType:        packages.SubmissionTypeContractAndRates,
		SubmissionDescription: "FY25 base contract",
		ContractType:          packages.ContractTypeBase,
		PopulationCovered:     packages.PopulationMedicaid,
		ProgramIDs:            []string{"pmap"},
		ContractDateStart:     &start,
		ContractDateEnd:       &end,
		ContractDocuments:     []packages.Document{{Name: "contract.pdf", URL: "s3://bucket/contract.pdf", SHA256: "abc"}},
		ManagedCareEntities:   []string{"MCO"},
		FederalAuthorities:    []string{packages.AuthorityStatePlan},
		StateContacts:         []packages.Contact{{Name: "Jo State", Email: "jo@state.mn.us"}},
		ModifiedProvisions:    map[packages.ProvisionKey]bool{},
	}
	for _, key := range packages.GenerateApplicableProvisionsList(fd) {
		fd.ModifiedProvisions[key] = false
	}
	return fd
}

func completeRateForm() packages.RateFormData {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	certified := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	return packages.RateFormData{
		RateType:            "NEW",
		RateCapitationType:  "RATE_CELL",
		RateDateStart:       &start,
		RateDateEnd:         &end,
		RateDateCertified:   &certified,
		RateProgramIDs:      []string{"pmap"},
		RateDocuments:       []packages.Document{{Name: "rates.pdf", URL: "s3://bucket/rates.pdf", SHA256: "def"}},
		CertifyingActuaries: []packages.Contact{{Name: "Al Actuary", Email: "al@actuaries.example"}},
	}
}

func mustStatus(t *testing.T, c *packages.Contract) packages.Status {
	t.Helper()
	status, err := packages.ConsolidatedStatus(c)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	return status
}

func TestContractLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	stateUser := uuid.New()
	cmsUser := uuid.New()

	contract, err := s.CreateContract(ctx, CreateContractArgs{StateCode: "MN", FormData: completeContractForm()})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	if contract.StateNumber != 1 {
		t.Fatalf("state number = %d, want 1", contract.StateNumber)
	}
	if got := mustStatus(t, contract); got != packages.StatusDraft {
		t.Fatalf("status after create = %s, want DRAFT", got)
	}

	rate, err := s.CreateRate(ctx, CreateRateArgs{ParentContractID: contract.ID, FormData: completeRateForm()})
	if err != nil {
		t.Fatalf("create rate: %v", err)
	}

	contract, err = s.SubmitContract(ctx, SubmitContractArgs{
		ContractID:    contract.ID,
		SubmittedByID: stateUser,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := mustStatus(t, contract); got != packages.StatusSubmitted {
		t.Fatalf("status after submit = %s, want SUBMITTED", got)
	}
	if len(contract.PackageSubmissions) != 1 {
		t.Fatalf("submissions = %d, want 1", len(contract.PackageSubmissions))
	}
	sub := contract.PackageSubmissions[0]
	if len(sub.SubmittedRevisionIDs) != 2 {
		t.Fatalf("submitted revision IDs = %d, want contract + rate", len(sub.SubmittedRevisionIDs))
	}
	if sub.SubmitInfo.UpdatedReason != "Initial submission" {
		t.Fatalf("initial reason = %q", sub.SubmitInfo.UpdatedReason)
	}
	if contract.DraftRevision != nil {
		t.Fatal("draft revision should be gone after submit")
	}

	causes, err := packages.DeriveSubmissionCauses(contract)
	if err != nil {
		t.Fatalf("causes: %v", err)
	}
	if len(causes) != 1 || causes[0].Cause != packages.CauseContractSubmission {
		t.Fatalf("causes = %+v, want one CONTRACT_SUBMISSION", causes)
	}

	time.Sleep(5 * time.Millisecond)
	contract, err = s.UnlockContract(ctx, UnlockContractArgs{
		ContractID:     contract.ID,
		UnlockedByID:   cmsUser,
		UnlockedReason: "rate certification needs correction",
	})
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if got := mustStatus(t, contract); got != packages.StatusUnlocked {
		t.Fatalf("status after unlock = %s, want UNLOCKED", got)
	}
	if contract.DraftRevision == nil || contract.DraftRevision.UnlockInfo == nil {
		t.Fatal("unlock should create a draft carrying unlock info")
	}
	if got := contract.DraftRevision.UnlockInfo.UpdatedReason; got != "rate certification needs correction" {
		t.Fatalf("unlock reason = %q", got)
	}
	if len(contract.DraftRates) != 1 || contract.DraftRates[0].ID != rate.ID {
		t.Fatalf("draft rates after unlock = %+v, want the original rate restored", contract.DraftRates)
	}
	if contract.DraftRates[0].DraftRevision == nil {
		t.Fatal("owned rate should be unlocked alongside the contract")
	}

	// Resubmitting without a reason must fail while unlocked.
	if _, err := s.SubmitContract(ctx, SubmitContractArgs{ContractID: contract.ID, SubmittedByID: stateUser}); !packages.IsCode(err, packages.CodeValidation) {
		t.Fatalf("resubmit without reason: got %v, want validation error", err)
	}

	time.Sleep(5 * time.Millisecond)
	contract, err = s.SubmitContract(ctx, SubmitContractArgs{
		ContractID:      contract.ID,
		SubmittedByID:   stateUser,
		SubmittedReason: "fixed rate certification",
	})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if got := mustStatus(t, contract); got != packages.StatusResubmitted {
		t.Fatalf("status after resubmit = %s, want RESUBMITTED", got)
	}
	latest := packages.LatestSubmission(contract)
	if latest == nil {
		t.Fatal("no latest submission")
	}
	if latest.ContractRevision.UnlockInfo == nil {
		t.Fatal("resubmitted revision should keep its unlock record")
	}
	// The resubmit reason replaces the unlock reason in the display slot.
	if got := latest.ContractRevision.UnlockInfo.UpdatedReason; got != "fixed rate certification" {
		t.Fatalf("overwritten unlock reason = %q", got)
	}

	causes, err = packages.DeriveSubmissionCauses(contract)
	if err != nil {
		t.Fatalf("causes after resubmit: %v", err)
	}
	if len(causes) != 2 || causes[1].Cause != packages.CauseContractSubmission {
		t.Fatalf("causes after resubmit = %+v", causes)
	}

	// Double submit is a conflict, and stays one.
	for i := 0; i < 2; i++ {
		_, err := s.SubmitContract(ctx, SubmitContractArgs{ContractID: contract.ID, SubmittedByID: stateUser, SubmittedReason: "again"})
		if !packages.IsCode(err, packages.CodeConflict) {
			t.Fatalf("double submit attempt %d: got %v, want conflict", i, err)
		}
	}
}

func TestSubmitIncompleteDraft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	contract, err := s.CreateContract(ctx, CreateContractArgs{StateCode: "VA", FormData: packages.ContractFormData{}})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}

	_, err = s.SubmitContract(ctx, SubmitContractArgs{ContractID: contract.ID, SubmittedByID: uuid.New()})
	var serr *packages.SubmissionError
	if !errors.As(err, &serr) {
		t.Fatalf("got %v, want SubmissionError", err)
	}
	if serr.Code != packages.ErrIncomplete || serr.Message != "formData is missing required contract fields" {
		t.Fatalf("unexpected submission error: %+v", serr)
	}

	// Failed submits leave the package in DRAFT with no ledger entry.
	contract, err = s.FindContractWithHistory(ctx, contract.ID)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if got := mustStatus(t, contract); got != packages.StatusDraft {
		t.Fatalf("status after failed submit = %s, want DRAFT", got)
	}
	if len(contract.PackageSubmissions) != 0 {
		t.Fatalf("failed submit created %d submissions", len(contract.PackageSubmissions))
	}
}

func TestUpdateContractDraftCAS(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	contract, err := s.CreateContract(ctx, CreateContractArgs{StateCode: "MN", FormData: completeContractForm()})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}

	fd := completeContractForm()
	fd.SubmissionDescription = "first writer"
	updated, err := s.UpdateContractDraft(ctx, UpdateContractDraftArgs{
		ContractID:        contract.ID,
		FormData:          fd,
		LastSeenUpdatedAt: contract.DraftRevision.UpdatedAt,
	})
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	if updated.DraftRevision.FormData.SubmissionDescription != "first writer" {
		t.Fatalf("form data not persisted: %q", updated.DraftRevision.FormData.SubmissionDescription)
	}

	// A writer holding the pre-update timestamp must get a conflict.
	fd.SubmissionDescription = "stale writer"
	_, err = s.UpdateContractDraft(ctx, UpdateContractDraftArgs{
		ContractID:        contract.ID,
		FormData:          fd,
		LastSeenUpdatedAt: contract.DraftRevision.UpdatedAt,
	})
	if !packages.IsCode(err, packages.CodeConflict) {
		t.Fatalf("stale update: got %v, want conflict", err)
	}
}

func TestReviewActionGuards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	stateUser := uuid.New()
	cmsUser := uuid.New()

	contract, err := s.CreateContract(ctx, CreateContractArgs{StateCode: "OH", FormData: completeContractForm()})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}

	// Approving a draft is a conflict.
	_, err = s.AppendContractReviewAction(ctx, ReviewActionArgs{
		PackageID: contract.ID, UpdatedByID: cmsUser, ActionType: packages.ActionMarkAsApproved,
	})
	if !packages.IsCode(err, packages.CodeConflict) {
		t.Fatalf("approve draft: got %v, want conflict", err)
	}

	if _, err = s.SubmitContract(ctx, SubmitContractArgs{ContractID: contract.ID, SubmittedByID: stateUser}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	contract, err = s.AppendContractReviewAction(ctx, ReviewActionArgs{
		PackageID: contract.ID, UpdatedByID: cmsUser, ActionType: packages.ActionMarkAsApproved,
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := mustStatus(t, contract); got != packages.StatusApproved {
		t.Fatalf("status after approval = %s, want APPROVED", got)
	}

	// Approved packages cannot be submitted or unlocked.
	_, err = s.SubmitContract(ctx, SubmitContractArgs{ContractID: contract.ID, SubmittedByID: stateUser, SubmittedReason: "nope"})
	if !packages.IsCode(err, packages.CodeConflict) {
		t.Fatalf("submit approved: got %v, want conflict", err)
	}
	_, err = s.UnlockContract(ctx, UnlockContractArgs{ContractID: contract.ID, UnlockedByID: cmsUser, UnlockedReason: "nope"})
	if !packages.IsCode(err, packages.CodeConflict) {
		t.Fatalf("unlock approved: got %v, want conflict", err)
	}

	time.Sleep(5 * time.Millisecond)
	contract, err = s.AppendContractReviewAction(ctx, ReviewActionArgs{
		PackageID: contract.ID, UpdatedByID: cmsUser, ActionType: packages.ActionUndoMarkAsApproved,
	})
	if err != nil {
		t.Fatalf("undo approval: %v", err)
	}
	if got := mustStatus(t, contract); got != packages.StatusSubmitted {
		t.Fatalf("status after undo = %s, want SUBMITTED", got)
	}

	// Withdraw requires a reason.
	_, err = s.AppendContractReviewAction(ctx, ReviewActionArgs{
		PackageID: contract.ID, UpdatedByID: cmsUser, ActionType: packages.ActionWithdraw,
	})
	if !packages.IsCode(err, packages.CodeValidation) {
		t.Fatalf("withdraw without reason: got %v, want validation", err)
	}

	time.Sleep(5 * time.Millisecond)
	contract, err = s.AppendContractReviewAction(ctx, ReviewActionArgs{
		PackageID: contract.ID, UpdatedByID: cmsUser, ActionType: packages.ActionWithdraw, Reason: "submitted in error",
	})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got := mustStatus(t, contract); got != packages.StatusWithdrawn {
		t.Fatalf("status after withdraw = %s, want WITHDRAWN", got)
	}

	time.Sleep(5 * time.Millisecond)
	contract, err = s.AppendContractReviewAction(ctx, ReviewActionArgs{
		PackageID: contract.ID, UpdatedByID: cmsUser, ActionType: packages.ActionUndoWithdraw, Reason: "withdrawn in error",
	})
	if err != nil {
		t.Fatalf("undo withdraw: %v", err)
	}
	if got := mustStatus(t, contract); got != packages.StatusSubmitted {
		t.Fatalf("status after undo withdraw = %s, want SUBMITTED", got)
	}
}

func TestIndependentRateResubmission(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	stateUser := uuid.New()
	cmsUser := uuid.New()

	contract, err := s.CreateContract(ctx, CreateContractArgs{StateCode: "MN", FormData: completeContractForm()})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	rate, err := s.CreateRate(ctx, CreateRateArgs{ParentContractID: contract.ID, FormData: completeRateForm()})
	if err != nil {
		t.Fatalf("create rate: %v", err)
	}
	if _, err = s.SubmitContract(ctx, SubmitContractArgs{ContractID: contract.ID, SubmittedByID: stateUser}); err != nil {
		t.Fatalf("submit contract: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	rate, err = s.UnlockRate(ctx, UnlockRateArgs{RateID: rate.ID, UnlockedByID: cmsUser, UnlockedReason: "wrong certification date"})
	if err != nil {
		t.Fatalf("unlock rate: %v", err)
	}
	rateStatus, err := packages.RateConsolidatedStatus(rate)
	if err != nil {
		t.Fatalf("rate status: %v", err)
	}
	if rateStatus != packages.StatusUnlocked {
		t.Fatalf("rate status after unlock = %s, want UNLOCKED", rateStatus)
	}

	time.Sleep(5 * time.Millisecond)
	rate, err = s.SubmitRate(ctx, SubmitRateArgs{RateID: rate.ID, SubmittedByID: stateUser, SubmittedReason: "fixed certification date"})
	if err != nil {
		t.Fatalf("submit rate: %v", err)
	}
	rateStatus, err = packages.RateConsolidatedStatus(rate)
	if err != nil {
		t.Fatalf("rate status: %v", err)
	}
	if rateStatus != packages.StatusResubmitted {
		t.Fatalf("rate status after resubmit = %s, want RESUBMITTED", rateStatus)
	}

	// The contract sees the rate's package: its own history is now two
	// submissions, the second caused by the rate.
	contract, err = s.FindContractWithHistory(ctx, contract.ID)
	if err != nil {
		t.Fatalf("refetch contract: %v", err)
	}
	if got := mustStatus(t, contract); got != packages.StatusResubmitted {
		t.Fatalf("contract status after rate resubmit = %s, want RESUBMITTED", got)
	}
	causes, err := packages.DeriveSubmissionCauses(contract)
	if err != nil {
		t.Fatalf("causes: %v", err)
	}
	if len(causes) != 2 {
		t.Fatalf("causes = %d, want 2", len(causes))
	}
	if causes[0].Cause != packages.CauseContractSubmission || causes[1].Cause != packages.CauseRateSubmission {
		t.Fatalf("causes = [%s, %s], want [CONTRACT_SUBMISSION, RATE_SUBMISSION]", causes[0].Cause, causes[1].Cause)
	}
}
