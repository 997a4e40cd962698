package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
	"github.com/mcreview/mcreview-backend/internal/events"
	"github.com/mcreview/mcreview-backend/internal/logger"
	"github.com/mcreview/mcreview-backend/internal/reference"
	"github.com/mcreview/mcreview-backend/internal/requestdata"
	"github.com/mcreview/mcreview-backend/internal/store"
	"github.com/mcreview/mcreview-backend/internal/types"
)

type fakeBus struct {
	mu     sync.Mutex
	events []events.PackageEvent
}

func (b *fakeBus) Publish(_ context.Context, evt events.PackageEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evt)
	return nil
}

func (b *fakeBus) all() []events.PackageEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.PackageEvent(nil), b.events...)
}

type fixedFlags struct {
	flags packages.FeatureFlags
}

func (f fixedFlags) SubmissionFlags(context.Context) packages.FeatureFlags { return f.flags }

func openTestDB(t *testing.T) (*gorm.DB, *logger.Logger) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "svc_test.db")), &gorm.Config{
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
	return db, log
}

func newTestService(t *testing.T) (SubmissionService, *fakeBus) {
	t.Helper()
	db, log := openTestDB(t)
	bus := &fakeBus{}
	programs, err := NewProgramService(log)
	if err != nil {
		t.Fatalf("program service: %v", err)
	}
	svc := NewSubmissionService(log, store.New(db, log), bus, fixedFlags{}, programs)
	return svc, bus
}

func stateCtx(stateCode string) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:    uuid.New(),
		Role:      types.RoleStateUser,
		StateCode: stateCode,
	})
}

func cmsCtx() context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: uuid.New(),
		Role:   types.RoleCMSUser,
	})
}

func serviceContractForm() packages.ContractFormData {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	fd := packages.ContractFormData{
		SubmissionType:        packages.SubmissionTypeContractOnly,
		SubmissionDescription: "FY25 contract action",
		ContractType:          packages.ContractTypeBase,
		PopulationCovered:     packages.PopulationMedicaid,
		ProgramIDs:            []string{"pmap"},
		ContractDateStart:     &start,
		ContractDateEnd:       &end,
		ContractDocuments:     []packages.Document{{Name: "contract.pdf", URL: "s3://bucket/contract.pdf"}},
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

func TestSubmitPublishesEvent(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := stateCtx("MN")

	view, err := svc.CreateContract(ctx, serviceContractForm(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Status != packages.StatusDraft {
		t.Fatalf("status = %s, want DRAFT", view.Status)
	}
	if view.StateCode != "MN" {
		t.Fatalf("state code = %s, want caller's state", view.StateCode)
	}

	view, err = svc.SubmitContract(ctx, view.ID, "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if view.Status != packages.StatusSubmitted {
		t.Fatalf("status = %s, want SUBMITTED", view.Status)
	}
	if len(view.SubmissionCauses) != 1 || view.SubmissionCauses[0].Cause != packages.CauseContractSubmission {
		t.Fatalf("causes = %+v", view.SubmissionCauses)
	}

	evts := bus.all()
	if len(evts) != 1 {
		t.Fatalf("published %d events, want 1", len(evts))
	}
	if evts[0].Type != events.TypeSubmitted || evts[0].PackageID != view.ID || evts[0].Status != "SUBMITTED" {
		t.Fatalf("unexpected event: %+v", evts[0])
	}
}

func TestStateScoping(t *testing.T) {
	svc, _ := newTestService(t)

	view, err := svc.CreateContract(stateCtx("MN"), serviceContractForm(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Another state's user cannot see the package at all.
	_, err = svc.GetContract(stateCtx("VA"), view.ID)
	if !packages.IsCode(err, packages.CodeNotFound) {
		t.Fatalf("cross-state get: got %v, want not_found", err)
	}

	// CMS users can.
	if _, err := svc.GetContract(cmsCtx(), view.ID); err != nil {
		t.Fatalf("cms get: %v", err)
	}

	// Dashboard scoping: MN sees it, VA does not.
	mnRows, err := svc.IndexContracts(stateCtx("MN"))
	if err != nil {
		t.Fatalf("index MN: %v", err)
	}
	if len(mnRows) != 1 || mnRows[0].PackageName != "MCR-MN-0001" {
		t.Fatalf("MN dashboard = %+v", mnRows)
	}
	vaRows, err := svc.IndexContracts(stateCtx("VA"))
	if err != nil {
		t.Fatalf("index VA: %v", err)
	}
	if len(vaRows) != 0 {
		t.Fatalf("VA dashboard should be empty, got %+v", vaRows)
	}
}

func TestCreateContractRejectsUnknownProgram(t *testing.T) {
	svc, _ := newTestService(t)

	fd := serviceContractForm()
	fd.ProgramIDs = []string{"not-a-program"}
	_, err := svc.CreateContract(stateCtx("MN"), fd, nil)
	if !packages.IsCode(err, packages.CodeValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}

// closedPrograms fails every lookup, standing in for a catalog with no entry
// for the caller's state.
type closedPrograms struct{}

func (closedPrograms) GetState(context.Context, string) (*reference.State, error) {
	return nil, packages.NewError(packages.CodeNotFound, "services.programs", "unknown state code", nil)
}

func (closedPrograms) FindStatePrograms(_ context.Context, stateCode string, _ []string) ([]reference.Program, error) {
	return nil, packages.NewError(packages.CodeValidation, "services.programs", "unknown state code "+stateCode, nil)
}

func TestCreateContractUsesInjectedCatalog(t *testing.T) {
	db, log := openTestDB(t)
	svc := NewSubmissionService(log, store.New(db, log), &fakeBus{}, fixedFlags{}, closedPrograms{})

	// The form is valid against the shipped catalog; only the injected
	// collaborator can reject it.
	_, err := svc.CreateContract(stateCtx("MN"), serviceContractForm(), nil)
	if !packages.IsCode(err, packages.CodeValidation) {
		t.Fatalf("got %v, want validation error from the injected catalog", err)
	}
}

func TestUnlockThenResubmitFlow(t *testing.T) {
	svc, bus := newTestService(t)
	stateContext := stateCtx("MN")
	cmsContext := cmsCtx()

	view, err := svc.CreateContract(stateContext, serviceContractForm(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err = svc.SubmitContract(stateContext, view.ID, ""); err != nil {
		t.Fatalf("submit: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	unlocked, err := svc.UnlockContract(cmsContext, view.ID, "missing appendix")
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if unlocked.Status != packages.StatusUnlocked {
		t.Fatalf("status = %s, want UNLOCKED", unlocked.Status)
	}

	time.Sleep(5 * time.Millisecond)
	resubmitted, err := svc.SubmitContract(stateContext, view.ID, "added appendix")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.Status != packages.StatusResubmitted {
		t.Fatalf("status = %s, want RESUBMITTED", resubmitted.Status)
	}

	evts := bus.all()
	if len(evts) != 3 {
		t.Fatalf("published %d events, want submit/unlock/resubmit", len(evts))
	}
	if evts[1].Type != events.TypeUnlocked || evts[2].Type != events.TypeSubmitted {
		t.Fatalf("unexpected event sequence: %+v", evts)
	}
}
