package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
	"github.com/mcreview/mcreview-backend/internal/events"
	"github.com/mcreview/mcreview-backend/internal/logger"
	"github.com/mcreview/mcreview-backend/internal/requestdata"
	"github.com/mcreview/mcreview-backend/internal/store"
	"github.com/mcreview/mcreview-backend/internal/types"
)

// EventPublisher is the slice of the bus the submission service needs.
type EventPublisher interface {
	Publish(ctx context.Context, evt events.PackageEvent) error
}

// SubmissionService orchestrates the package lifecycle: it scopes every call
// to the authenticated caller, runs the store transaction, and publishes a
// lifecycle event after the write commits.
type SubmissionService interface {
	GetContract(ctx context.Context, contractID uuid.UUID) (*ContractView, error)
	IndexContracts(ctx context.Context) ([]*ContractSummary, error)
	CreateContract(ctx context.Context, formData packages.ContractFormData, rateIDs []uuid.UUID) (*ContractView, error)
	UpdateContractDraft(ctx context.Context, args store.UpdateContractDraftArgs) (*ContractView, error)
	SubmitContract(ctx context.Context, contractID uuid.UUID, reason string) (*ContractView, error)
	UnlockContract(ctx context.Context, contractID uuid.UUID, reason string) (*ContractView, error)
	ContractReviewAction(ctx context.Context, contractID uuid.UUID, actionType packages.ReviewActionType, reason string) (*ContractView, error)

	GetRate(ctx context.Context, rateID uuid.UUID) (*RateView, error)
	CreateRate(ctx context.Context, parentContractID uuid.UUID, formData packages.RateFormData) (*RateView, error)
	UpdateRateDraft(ctx context.Context, args store.UpdateRateDraftArgs) (*RateView, error)
	SubmitRate(ctx context.Context, rateID uuid.UUID, reason string) (*RateView, error)
	UnlockRate(ctx context.Context, rateID uuid.UUID, reason string) (*RateView, error)
	RateReviewAction(ctx context.Context, rateID uuid.UUID, actionType packages.ReviewActionType, reason string) (*RateView, error)
}

type submissionService struct {
	log      *logger.Logger
	store    *store.Store
	bus      EventPublisher
	flags    FlagService
	programs ProgramService
}

func NewSubmissionService(log *logger.Logger, st *store.Store, bus EventPublisher, flags FlagService, programs ProgramService) SubmissionService {
	serviceLog := log.With("service", "SubmissionService")
	return &submissionService{log: serviceLog, store: st, bus: bus, flags: flags, programs: programs}
}

const opService = "services.submission"

func caller(ctx context.Context) (*requestdata.RequestData, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, packages.NewError(packages.CodeValidation, opService, "no authenticated caller in context", nil)
	}
	return rd, nil
}

// requireStateAccess blocks state users from touching another state's
// packages. CMS and admin users see everything.
func requireStateAccess(rd *requestdata.RequestData, stateCode string) error {
	if rd.Role == types.RoleStateUser && rd.StateCode != stateCode {
		return packages.NewError(packages.CodeNotFound, opService, "package not found", nil)
	}
	return nil
}

func (ss *submissionService) publish(ctx context.Context, evt events.PackageEvent) {
	if ss.bus == nil {
		return
	}
	// Event delivery is best effort; the transaction already committed.
	if err := ss.bus.Publish(ctx, evt); err != nil {
		ss.log.Warn("failed to publish package event", "type", evt.Type, "packageID", evt.PackageID, "error", err)
	}
}

func (ss *submissionService) GetContract(ctx context.Context, contractID uuid.UUID) (*ContractView, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	contract, err := ss.store.FindContractWithHistory(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if err := requireStateAccess(rd, contract.StateCode); err != nil {
		return nil, err
	}
	return newContractView(contract)
}

func (ss *submissionService) IndexContracts(ctx context.Context) ([]*ContractSummary, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	stateCode := ""
	if rd.Role == types.RoleStateUser {
		stateCode = rd.StateCode
	}
	contracts, err := ss.store.ListContractsWithHistory(ctx, stateCode)
	if err != nil {
		return nil, err
	}
	summaries := make([]*ContractSummary, 0, len(contracts))
	for _, contract := range contracts {
		summary, err := newContractSummary(contract)
		if err != nil {
			// A malformed package must not take down the whole dashboard.
			ss.log.Error("skipping package with invalid history", "contractID", contract.ID, "error", err)
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (ss *submissionService) CreateContract(ctx context.Context, formData packages.ContractFormData, rateIDs []uuid.UUID) (*ContractView, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if rd.StateCode == "" {
		return nil, packages.NewError(packages.CodeValidation, opService, "caller has no state assignment", nil)
	}
	if err := ss.validateProgramIDs(ctx, rd.StateCode, formData.ProgramIDs); err != nil {
		return nil, err
	}
	contract, err := ss.store.CreateContract(ctx, store.CreateContractArgs{
		StateCode: rd.StateCode,
		FormData:  formData,
		RateIDs:   rateIDs,
	})
	if err != nil {
		return nil, err
	}
	return newContractView(contract)
}

func (ss *submissionService) UpdateContractDraft(ctx context.Context, args store.UpdateContractDraftArgs) (*ContractView, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := ss.store.FindContractWithHistory(ctx, args.ContractID)
	if err != nil {
		return nil, err
	}
	if err := requireStateAccess(rd, existing.StateCode); err != nil {
		return nil, err
	}
	if err := ss.validateProgramIDs(ctx, existing.StateCode, args.FormData.ProgramIDs); err != nil {
		return nil, err
	}
	contract, err := ss.store.UpdateContractDraft(ctx, args)
	if err != nil {
		return nil, err
	}
	return newContractView(contract)
}

func (ss *submissionService) SubmitContract(ctx context.Context, contractID uuid.UUID, reason string) (*ContractView, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := ss.store.FindContractWithHistory(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if err := requireStateAccess(rd, existing.StateCode); err != nil {
		return nil, err
	}

	contract, err := ss.store.SubmitContract(ctx, store.SubmitContractArgs{
		ContractID:      contractID,
		SubmittedByID:   rd.UserID,
		SubmittedReason: reason,
		Flags:           ss.flags.SubmissionFlags(ctx),
	})
	if err != nil {
		return nil, err
	}
	view, err := newContractView(contract)
	if err != nil {
		return nil, err
	}
	ss.publish(ctx, events.PackageEvent{
		Type:        events.TypeSubmitted,
		PackageKind: events.KindContract,
		PackageID:   contract.ID,
		StateCode:   contract.StateCode,
		Status:      string(view.Status),
		UpdatedBy:   rd.UserID,
		UpdatedAt:   time.Now().UTC(),
	})
	return view, nil
}

func (ss *submissionService) UnlockContract(ctx context.Context, contractID uuid.UUID, reason string) (*ContractView, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	contract, err := ss.store.UnlockContract(ctx, store.UnlockContractArgs{
		ContractID:     contractID,
		UnlockedByID:   rd.UserID,
		UnlockedReason: reason,
	})
	if err != nil {
		return nil, err
	}
	view, err := newContractView(contract)
	if err != nil {
		return nil, err
	}
	ss.publish(ctx, events.PackageEvent{
		Type:        events.TypeUnlocked,
		PackageKind: events.KindContract,
		PackageID:   contract.ID,
		StateCode:   contract.StateCode,
		Status:      string(view.Status),
		UpdatedBy:   rd.UserID,
		UpdatedAt:   time.Now().UTC(),
	})
	return view, nil
}

func (ss *submissionService) ContractReviewAction(ctx context.Context, contractID uuid.UUID, actionType packages.ReviewActionType, reason string) (*ContractView, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	contract, err := ss.store.AppendContractReviewAction(ctx, store.ReviewActionArgs{
		PackageID:   contractID,
		UpdatedByID: rd.UserID,
		ActionType:  actionType,
		Reason:      reason,
	})
	if err != nil {
		return nil, err
	}
	view, err := newContractView(contract)
	if err != nil {
		return nil, err
	}
	ss.publish(ctx, events.PackageEvent{
		Type:        events.TypeReviewAction,
		PackageKind: events.KindContract,
		PackageID:   contract.ID,
		StateCode:   contract.StateCode,
		Status:      string(view.Status),
		UpdatedBy:   rd.UserID,
		UpdatedAt:   time.Now().UTC(),
	})
	return view, nil
}

func (ss *submissionService) GetRate(ctx context.Context, rateID uuid.UUID) (*RateView, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	rate, err := ss.store.FindRateWithHistory(ctx, rateID)
	if err != nil {
		return nil, err
	}
	if err := requireStateAccess(rd, rate.StateCode); err != nil {
		return nil, err
	}
	return newRateView(rate)
}

func (ss *submissionService) CreateRate(ctx context.Context, parentContractID uuid.UUID, formData packages.RateFormData) (*RateView, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	parent, err := ss.store.FindContractWithHistory(ctx, parentContractID)
	if err != nil {
		return nil, err
	}
	if err := requireStateAccess(rd, parent.StateCode); err != nil {
		return nil, err
	}
	if err := ss.validateProgramIDs(ctx, parent.StateCode, formData.RateProgramIDs); err != nil {
		return nil, err
	}
	rate, err := ss.store.CreateRate(ctx, store.CreateRateArgs{
		ParentContractID: parentContractID,
		FormData:         formData,
	})
	if err != nil {
		return nil, err
	}
	return newRateView(rate)
}

func (ss *submissionService) UpdateRateDraft(ctx context.Context, args store.UpdateRateDraftArgs) (*RateView, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := ss.store.FindRateWithHistory(ctx, args.RateID)
	if err != nil {
		return nil, err
	}
	if err := requireStateAccess(rd, existing.StateCode); err != nil {
		return nil, err
	}
	if err := ss.validateProgramIDs(ctx, existing.StateCode, args.FormData.RateProgramIDs); err != nil {
		return nil, err
	}
	rate, err := ss.store.UpdateRateDraft(ctx, args)
	if err != nil {
		return nil, err
	}
	return newRateView(rate)
}

func (ss *submissionService) SubmitRate(ctx context.Context, rateID uuid.UUID, reason string) (*RateView, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := ss.store.FindRateWithHistory(ctx, rateID)
	if err != nil {
		return nil, err
	}
	if err := requireStateAccess(rd, existing.StateCode); err != nil {
		return nil, err
	}

	rate, err := ss.store.SubmitRate(ctx, store.SubmitRateArgs{
		RateID:          rateID,
		SubmittedByID:   rd.UserID,
		SubmittedReason: reason,
	})
	if err != nil {
		return nil, err
	}
	view, err := newRateView(rate)
	if err != nil {
		return nil, err
	}
	ss.publish(ctx, events.PackageEvent{
		Type:        events.TypeSubmitted,
		PackageKind: events.KindRate,
		PackageID:   rate.ID,
		StateCode:   rate.StateCode,
		Status:      string(view.Status),
		UpdatedBy:   rd.UserID,
		UpdatedAt:   time.Now().UTC(),
	})
	return view, nil
}

func (ss *submissionService) UnlockRate(ctx context.Context, rateID uuid.UUID, reason string) (*RateView, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	rate, err := ss.store.UnlockRate(ctx, store.UnlockRateArgs{
		RateID:         rateID,
		UnlockedByID:   rd.UserID,
		UnlockedReason: reason,
	})
	if err != nil {
		return nil, err
	}
	view, err := newRateView(rate)
	if err != nil {
		return nil, err
	}
	ss.publish(ctx, events.PackageEvent{
		Type:        events.TypeUnlocked,
		PackageKind: events.KindRate,
		PackageID:   rate.ID,
		StateCode:   rate.StateCode,
		Status:      string(view.Status),
		UpdatedBy:   rd.UserID,
		UpdatedAt:   time.Now().UTC(),
	})
	return view, nil
}

func (ss *submissionService) RateReviewAction(ctx context.Context, rateID uuid.UUID, actionType packages.ReviewActionType, reason string) (*RateView, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	rate, err := ss.store.AppendRateReviewAction(ctx, store.ReviewActionArgs{
		PackageID:   rateID,
		UpdatedByID: rd.UserID,
		ActionType:  actionType,
		Reason:      reason,
	})
	if err != nil {
		return nil, err
	}
	view, err := newRateView(rate)
	if err != nil {
		return nil, err
	}
	ss.publish(ctx, events.PackageEvent{
		Type:        events.TypeReviewAction,
		PackageKind: events.KindRate,
		PackageID:   rate.ID,
		StateCode:   rate.StateCode,
		Status:      string(view.Status),
		UpdatedBy:   rd.UserID,
		UpdatedAt:   time.Now().UTC(),
	})
	return view, nil
}

// validateProgramIDs checks draft program selections against the injected
// catalog service. Empty selections pass here; completeness is the submit
// gate's concern.
func (ss *submissionService) validateProgramIDs(ctx context.Context, stateCode string, programIDs []string) error {
	if len(programIDs) == 0 {
		return nil
	}
	if _, err := ss.programs.FindStatePrograms(ctx, stateCode, programIDs); err != nil {
		return err
	}
	return nil
}
