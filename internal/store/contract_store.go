package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
	"github.com/mcreview/mcreview-backend/internal/platform/dbctx"
	"github.com/mcreview/mcreview-backend/internal/types"
)

type CreateContractArgs struct {
	StateCode string
	FormData  packages.ContractFormData
	RateIDs   []uuid.UUID
}

type UpdateContractDraftArgs struct {
	ContractID        uuid.UUID
	FormData          packages.ContractFormData
	RateIDs           []uuid.UUID
	LastSeenUpdatedAt time.Time
}

type SubmitContractArgs struct {
	ContractID      uuid.UUID
	SubmittedByID   uuid.UUID
	SubmittedReason string
	Flags           packages.FeatureFlags
}

type UnlockContractArgs struct {
	ContractID     uuid.UUID
	UnlockedByID   uuid.UUID
	UnlockedReason string
}

type ReviewActionArgs struct {
	PackageID   uuid.UUID
	UpdatedByID uuid.UUID
	ActionType  packages.ReviewActionType
	Reason      string
}

// FindContractWithHistory loads the full domain view of one contract package.
func (s *Store) FindContractWithHistory(ctx context.Context, contractID uuid.UUID) (*packages.Contract, error) {
	return s.hydrateContract(dbctx.Context{Ctx: ctx}, contractID)
}

// ListContractsWithHistory loads full views for a state's packages, or for
// every package when stateCode is empty (the CMS dashboard view).
func (s *Store) ListContractsWithHistory(ctx context.Context, stateCode string) ([]*packages.Contract, error) {
	const op = "store.ListContractsWithHistory"

	var (
		models []*types.Contract
		err    error
	)
	if stateCode == "" {
		models, err = s.contracts.ListAll(ctx, nil)
	} else {
		models, err = s.contracts.ListByState(ctx, nil, stateCode)
	}
	if err != nil {
		return nil, MapError(op, err)
	}

	results := make([]*packages.Contract, 0, len(models))
	for _, model := range models {
		contract, err := s.hydrateContract(dbctx.Context{Ctx: ctx}, model.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, contract)
	}
	return results, nil
}

// CreateContract opens a new package: a contract row with the next sequential
// state number plus its initial draft revision.
func (s *Store) CreateContract(ctx context.Context, args CreateContractArgs) (*packages.Contract, error) {
	const op = "store.CreateContract"

	if args.StateCode == "" {
		return nil, packages.NewError(packages.CodeValidation, op, "stateCode is required", nil)
	}

	var result *packages.Contract
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		num, err := s.contracts.NextStateNumber(dbc.Ctx, dbc.Tx, args.StateCode)
		if err != nil {
			return MapError(op, err)
		}
		contract, err := s.contracts.Create(dbc.Ctx, dbc.Tx, &types.Contract{
			StateCode:   args.StateCode,
			StateNumber: num,
		})
		if err != nil {
			return MapError(op, err)
		}

		raw, err := marshalContractFormData(args.FormData)
		if err != nil {
			return MapError(op, err)
		}
		if _, err := s.contracts.CreateRevision(dbc.Ctx, dbc.Tx, &types.ContractRevision{
			ContractID: contract.ID,
			FormData:   raw,
		}); err != nil {
			return MapError(op, err)
		}
		if len(args.RateIDs) > 0 {
			if err := s.contracts.ReplaceDraftRateJoins(dbc.Ctx, dbc.Tx, contract.ID, args.RateIDs); err != nil {
				return MapError(op, err)
			}
		}

		result, err = s.hydrateContract(dbc, contract.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateContractDraft overwrites the draft revision's form data behind a
// compare-and-set on the updated_at the client last saw. Stale writers get a
// conflict and must refetch. Form data is stored unpruned so answers survive
// a submission-type change and back.
func (s *Store) UpdateContractDraft(ctx context.Context, args UpdateContractDraftArgs) (*packages.Contract, error) {
	const op = "store.UpdateContractDraft"

	var result *packages.Contract
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		draft, err := s.contracts.GetDraftRevision(dbc.Ctx, dbc.Tx, args.ContractID)
		if err != nil {
			return MapError(op, err)
		}
		if draft == nil {
			return packages.NewError(packages.CodeConflict, op, "contract has no editable draft revision", nil)
		}

		raw, err := marshalContractFormData(args.FormData)
		if err != nil {
			return MapError(op, err)
		}
		ok, err := s.guard.UpdateByLastSeen(dbc, types.ContractRevision{}.TableName(), draft.ID, args.LastSeenUpdatedAt, map[string]any{
			"form_data":  raw,
			"updated_at": time.Now().UTC(),
		})
		if err != nil {
			return MapError(op, err)
		}
		if err := RequireCASSuccess(ok, "draft was updated by someone else, refetch and retry"); err != nil {
			return err
		}

		if args.RateIDs != nil {
			if err := s.contracts.ReplaceDraftRateJoins(dbc.Ctx, dbc.Tx, args.ContractID, args.RateIDs); err != nil {
				return MapError(op, err)
			}
		}
		if err := s.contracts.Touch(dbc.Ctx, dbc.Tx, args.ContractID); err != nil {
			return MapError(op, err)
		}

		result, err = s.hydrateContract(dbc, args.ContractID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitContract runs the full submit pipeline in one transaction: project
// the current status, gate on it, validate the draft form data, then freeze
// the draft and its attached rate drafts into a new submission package.
func (s *Store) SubmitContract(ctx context.Context, args SubmitContractArgs) (*packages.Contract, error) {
	const op = "store.SubmitContract"

	var result *packages.Contract
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		contract, err := s.hydrateContract(dbc, args.ContractID)
		if err != nil {
			return err
		}

		status, err := packages.PackageStatus(contract)
		if err != nil {
			return err
		}
		consolidated, err := packages.ConsolidatedStatus(contract)
		if err != nil {
			return err
		}
		if consolidated == packages.StatusApproved || consolidated == packages.StatusWithdrawn {
			return packages.NewError(packages.CodeConflict, op,
				"package is "+string(consolidated)+" and cannot be submitted", nil)
		}

		var unlockInfo *packages.UpdateInfo
		if contract.DraftRevision != nil {
			unlockInfo = contract.DraftRevision.UnlockInfo
		}
		if err := packages.ValidateStatusAndUpdateInfo(status, unlockInfo, args.SubmittedReason); err != nil {
			return err
		}
		if contract.DraftRevision == nil {
			return packages.NewError(packages.CodeInvariantViolation, op, "submittable package has no draft revision", nil)
		}

		ownedForms := make([]packages.RateFormData, 0, len(contract.DraftRates))
		linkedCount := 0
		for i := range contract.DraftRates {
			rate := &contract.DraftRates[i]
			if rate.ParentContractID != contract.ID {
				linkedCount++
				continue
			}
			rev := packages.CurrentRateRevision(rate)
			if rev == nil {
				return packages.NewError(packages.CodeInvariantViolation, op, "attached rate has no revisions", nil)
			}
			ownedForms = append(ownedForms, rev.FormData)
		}

		now := time.Now().UTC()
		if _, serr := packages.ParseAndSubmitContract(contract.DraftRevision.FormData, ownedForms, linkedCount, args.Flags, now); serr != nil {
			return serr
		}

		reason := args.SubmittedReason
		if reason == "" && status == packages.StatusDraft {
			reason = "Initial submission"
		}

		updates := map[string]any{
			"submitted_at":     now,
			"submitted_by_id":  args.SubmittedByID,
			"submitted_reason": reason,
			"updated_at":       now,
		}
		if status == packages.StatusUnlocked && args.SubmittedReason != "" {
			// The resubmit reason replaces the unlock reason in the display
			// slot; the audit trail keeps the original on the prior package.
			updates["unlocked_reason"] = args.SubmittedReason
		}
		if err := s.contracts.MarkRevisionSubmitted(dbc.Ctx, dbc.Tx, contract.DraftRevision.ID, updates); err != nil {
			return MapError(op, err)
		}

		contractRevID := contract.DraftRevision.ID
		joins := []*types.SubmissionPackageRevision{{
			ContractRevisionID: &contractRevID,
			IsSubmitted:        true,
		}}

		for i := range contract.DraftRates {
			rate := &contract.DraftRates[i]
			if rate.ParentContractID == contract.ID {
				if rate.DraftRevision != nil {
					revID := rate.DraftRevision.ID
					rateUpdates := map[string]any{
						"submitted_at":     now,
						"submitted_by_id":  args.SubmittedByID,
						"submitted_reason": reason,
						"updated_at":       now,
					}
					if rate.DraftRevision.UnlockInfo != nil && args.SubmittedReason != "" {
						rateUpdates["unlocked_reason"] = args.SubmittedReason
					}
					if err := s.rates.MarkRevisionSubmitted(dbc.Ctx, dbc.Tx, revID, rateUpdates); err != nil {
						return MapError(op, err)
					}
					joins = append(joins, &types.SubmissionPackageRevision{
						RateRevisionID: &revID,
						IsSubmitted:    true,
					})
					if err := s.rates.Touch(dbc.Ctx, dbc.Tx, rate.ID); err != nil {
						return MapError(op, err)
					}
					continue
				}
				// Owned rate already submitted in a prior event; carry its
				// latest snapshot for history without re-submitting it.
			}
			latest, err := s.rates.LatestSubmittedRevision(dbc.Ctx, dbc.Tx, rate.ID)
			if err != nil {
				return MapError(op, err)
			}
			if latest == nil {
				continue
			}
			revID := latest.ID
			joins = append(joins, &types.SubmissionPackageRevision{
				RateRevisionID: &revID,
				IsSubmitted:    false,
			})
		}

		pkg := &types.SubmissionPackage{
			SubmittedAt:     now,
			SubmittedByID:   args.SubmittedByID,
			SubmittedReason: reason,
		}
		if _, err := s.submissions.CreatePackage(dbc.Ctx, dbc.Tx, pkg, joins); err != nil {
			return MapError(op, err)
		}
		if err := s.contracts.Touch(dbc.Ctx, dbc.Tx, contract.ID); err != nil {
			return MapError(op, err)
		}

		result, err = s.hydrateContract(dbc, args.ContractID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UnlockContract reopens a submitted package for edits: the latest submitted
// revision is cloned into a fresh draft carrying the unlock audit fields, and
// the draft's rate attachments are restored from that submission. Owned rates
// without a live draft are unlocked alongside the contract.
func (s *Store) UnlockContract(ctx context.Context, args UnlockContractArgs) (*packages.Contract, error) {
	const op = "store.UnlockContract"

	if args.UnlockedReason == "" {
		return nil, packages.NewError(packages.CodeValidation, op, "a reason is required when unlocking a package", nil)
	}

	var result *packages.Contract
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		contract, err := s.hydrateContract(dbc, args.ContractID)
		if err != nil {
			return err
		}

		status, err := packages.PackageStatus(contract)
		if err != nil {
			return err
		}
		if status != packages.StatusSubmitted && status != packages.StatusResubmitted {
			return packages.NewError(packages.CodeConflict, op, "only a submitted package can be unlocked", nil)
		}
		consolidated, err := packages.ConsolidatedStatus(contract)
		if err != nil {
			return err
		}
		if consolidated == packages.StatusApproved || consolidated == packages.StatusWithdrawn {
			return packages.NewError(packages.CodeConflict, op,
				"package is "+string(consolidated)+" and cannot be unlocked", nil)
		}

		last := packages.LatestSubmission(contract)
		if last == nil {
			return packages.NewError(packages.CodeInvariantViolation, op, "submitted package has no submissions", nil)
		}

		now := time.Now().UTC()
		by := args.UnlockedByID

		raw, err := marshalContractFormData(last.ContractRevision.FormData)
		if err != nil {
			return MapError(op, err)
		}
		if _, err := s.contracts.CreateRevision(dbc.Ctx, dbc.Tx, &types.ContractRevision{
			ContractID:     contract.ID,
			FormData:       raw,
			UnlockedAt:     &now,
			UnlockedByID:   &by,
			UnlockedReason: args.UnlockedReason,
		}); err != nil {
			return MapError(op, err)
		}

		rateIDs := make([]uuid.UUID, 0, len(last.RateRevisions))
		for _, rev := range last.RateRevisions {
			rateIDs = append(rateIDs, rev.RateID)
		}
		if err := s.contracts.ReplaceDraftRateJoins(dbc.Ctx, dbc.Tx, contract.ID, rateIDs); err != nil {
			return MapError(op, err)
		}

		for _, rev := range last.RateRevisions {
			rateModel, err := s.rates.GetByID(dbc.Ctx, dbc.Tx, rev.RateID)
			if err != nil {
				return MapError(op, err)
			}
			if rateModel.ParentContractID != contract.ID {
				continue
			}
			draft, err := s.rates.GetDraftRevision(dbc.Ctx, dbc.Tx, rev.RateID)
			if err != nil {
				return MapError(op, err)
			}
			if draft != nil {
				continue
			}
			rateRaw, err := marshalRateFormData(rev.FormData)
			if err != nil {
				return MapError(op, err)
			}
			if _, err := s.rates.CreateRevision(dbc.Ctx, dbc.Tx, &types.RateRevision{
				RateID:         rev.RateID,
				FormData:       rateRaw,
				UnlockedAt:     &now,
				UnlockedByID:   &by,
				UnlockedReason: args.UnlockedReason,
			}); err != nil {
				return MapError(op, err)
			}
			if err := s.rates.Touch(dbc.Ctx, dbc.Tx, rev.RateID); err != nil {
				return MapError(op, err)
			}
		}

		if err := s.contracts.Touch(dbc.Ctx, dbc.Tx, contract.ID); err != nil {
			return MapError(op, err)
		}

		result, err = s.hydrateContract(dbc, args.ContractID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AppendContractReviewAction records a CMS review action against a contract
// package. Actions are append-only; undo actions require that the action
// being undone is the latest one on record.
func (s *Store) AppendContractReviewAction(ctx context.Context, args ReviewActionArgs) (*packages.Contract, error) {
	const op = "store.AppendContractReviewAction"

	var result *packages.Contract
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		contract, err := s.hydrateContract(dbc, args.PackageID)
		if err != nil {
			return err
		}
		consolidated, err := packages.ConsolidatedStatus(contract)
		if err != nil {
			return err
		}
		if err := guardReviewAction(op, args, consolidated); err != nil {
			return err
		}

		contractID := args.PackageID
		if _, err := s.reviews.Append(dbc.Ctx, dbc.Tx, &types.ReviewStatusAction{
			ContractID:  &contractID,
			ActionType:  string(args.ActionType),
			Reason:      args.Reason,
			UpdatedByID: args.UpdatedByID,
			UpdatedAt:   time.Now().UTC(),
		}); err != nil {
			return MapError(op, err)
		}
		if err := s.contracts.Touch(dbc.Ctx, dbc.Tx, args.PackageID); err != nil {
			return MapError(op, err)
		}

		result, err = s.hydrateContract(dbc, args.PackageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// guardReviewAction is the shared precondition table for review actions, in
// terms of the consolidated (review-overlaid) status.
func guardReviewAction(op string, args ReviewActionArgs, consolidated packages.Status) error {
	switch args.ActionType {
	case packages.ActionMarkAsApproved:
		if consolidated != packages.StatusSubmitted && consolidated != packages.StatusResubmitted {
			return packages.NewError(packages.CodeConflict, op, "only a submitted package can be approved", nil)
		}
	case packages.ActionWithdraw:
		if args.Reason == "" {
			return packages.NewError(packages.CodeValidation, op, "a reason is required when withdrawing a package", nil)
		}
		if consolidated != packages.StatusSubmitted && consolidated != packages.StatusResubmitted &&
			consolidated != packages.StatusApproved {
			return packages.NewError(packages.CodeConflict, op, "only a submitted or approved package can be withdrawn", nil)
		}
	case packages.ActionUndoWithdraw:
		if args.Reason == "" {
			return packages.NewError(packages.CodeValidation, op, "a reason is required when undoing a withdrawal", nil)
		}
		if consolidated != packages.StatusWithdrawn {
			return packages.NewError(packages.CodeConflict, op, "package is not withdrawn", nil)
		}
	case packages.ActionUndoMarkAsApproved:
		if consolidated != packages.StatusApproved {
			return packages.NewError(packages.CodeConflict, op, "package is not approved", nil)
		}
	default:
		return packages.NewError(packages.CodeValidation, op, "unknown review action type", nil)
	}
	return nil
}
