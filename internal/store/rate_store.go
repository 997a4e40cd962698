package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
	"github.com/mcreview/mcreview-backend/internal/platform/dbctx"
	"github.com/mcreview/mcreview-backend/internal/types"
)

type CreateRateArgs struct {
	ParentContractID uuid.UUID
	FormData         packages.RateFormData
}

type UpdateRateDraftArgs struct {
	RateID            uuid.UUID
	FormData          packages.RateFormData
	LastSeenUpdatedAt time.Time
}

type SubmitRateArgs struct {
	RateID          uuid.UUID
	SubmittedByID   uuid.UUID
	SubmittedReason string
}

type UnlockRateArgs struct {
	RateID         uuid.UUID
	UnlockedByID   uuid.UUID
	UnlockedReason string
}

// FindRateWithHistory loads the full domain view of one rate package.
func (s *Store) FindRateWithHistory(ctx context.Context, rateID uuid.UUID) (*packages.Rate, error) {
	return s.hydrateRate(dbctx.Context{Ctx: ctx}, rateID)
}

// CreateRate opens a new rate certification under a contract draft and
// appends it to that draft's rate attachments.
func (s *Store) CreateRate(ctx context.Context, args CreateRateArgs) (*packages.Rate, error) {
	const op = "store.CreateRate"

	var result *packages.Rate
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		parent, err := s.contracts.GetByID(dbc.Ctx, dbc.Tx, args.ParentContractID)
		if err != nil {
			return MapError(op, err)
		}

		num, err := s.rates.NextStateNumber(dbc.Ctx, dbc.Tx, parent.StateCode)
		if err != nil {
			return MapError(op, err)
		}
		rate, err := s.rates.Create(dbc.Ctx, dbc.Tx, &types.Rate{
			StateCode:        parent.StateCode,
			StateNumber:      num,
			ParentContractID: parent.ID,
		})
		if err != nil {
			return MapError(op, err)
		}

		raw, err := marshalRateFormData(args.FormData)
		if err != nil {
			return MapError(op, err)
		}
		if _, err := s.rates.CreateRevision(dbc.Ctx, dbc.Tx, &types.RateRevision{
			RateID:   rate.ID,
			FormData: raw,
		}); err != nil {
			return MapError(op, err)
		}

		joins, err := s.contracts.GetDraftRateJoins(dbc.Ctx, dbc.Tx, parent.ID)
		if err != nil {
			return MapError(op, err)
		}
		rateIDs := make([]uuid.UUID, 0, len(joins)+1)
		for _, join := range joins {
			rateIDs = append(rateIDs, join.RateID)
		}
		rateIDs = append(rateIDs, rate.ID)
		if err := s.contracts.ReplaceDraftRateJoins(dbc.Ctx, dbc.Tx, parent.ID, rateIDs); err != nil {
			return MapError(op, err)
		}
		if err := s.contracts.Touch(dbc.Ctx, dbc.Tx, parent.ID); err != nil {
			return MapError(op, err)
		}

		result, err = s.hydrateRate(dbc, rate.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateRateDraft overwrites the rate draft's form data behind the same
// compare-and-set discipline as contract drafts.
func (s *Store) UpdateRateDraft(ctx context.Context, args UpdateRateDraftArgs) (*packages.Rate, error) {
	const op = "store.UpdateRateDraft"

	var result *packages.Rate
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		draft, err := s.rates.GetDraftRevision(dbc.Ctx, dbc.Tx, args.RateID)
		if err != nil {
			return MapError(op, err)
		}
		if draft == nil {
			return packages.NewError(packages.CodeConflict, op, "rate has no editable draft revision", nil)
		}

		raw, err := marshalRateFormData(args.FormData)
		if err != nil {
			return MapError(op, err)
		}
		ok, err := s.guard.UpdateByLastSeen(dbc, types.RateRevision{}.TableName(), draft.ID, args.LastSeenUpdatedAt, map[string]any{
			"form_data":  raw,
			"updated_at": time.Now().UTC(),
		})
		if err != nil {
			return MapError(op, err)
		}
		if err := RequireCASSuccess(ok, "draft was updated by someone else, refetch and retry"); err != nil {
			return err
		}
		if err := s.rates.Touch(dbc.Ctx, dbc.Tx, args.RateID); err != nil {
			return MapError(op, err)
		}

		result, err = s.hydrateRate(dbc, args.RateID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitRate submits a rate independently of its contract. The package
// carries the rate revision as the submitted one, plus snapshots of the
// latest submitted revision of every contract the rate is attached to.
func (s *Store) SubmitRate(ctx context.Context, args SubmitRateArgs) (*packages.Rate, error) {
	const op = "store.SubmitRate"

	var result *packages.Rate
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		rate, err := s.hydrateRate(dbc, args.RateID)
		if err != nil {
			return err
		}

		status, err := packages.RateStatus(rate)
		if err != nil {
			return err
		}
		consolidated, err := packages.RateConsolidatedStatus(rate)
		if err != nil {
			return err
		}
		if consolidated == packages.StatusApproved || consolidated == packages.StatusWithdrawn {
			return packages.NewError(packages.CodeConflict, op,
				"rate is "+string(consolidated)+" and cannot be submitted", nil)
		}

		var unlockInfo *packages.UpdateInfo
		if rate.DraftRevision != nil {
			unlockInfo = rate.DraftRevision.UnlockInfo
		}
		if err := packages.ValidateStatusAndUpdateInfo(status, unlockInfo, args.SubmittedReason); err != nil {
			return err
		}
		if rate.DraftRevision == nil {
			return packages.NewError(packages.CodeInvariantViolation, op, "submittable rate has no draft revision", nil)
		}

		now := time.Now().UTC()
		if _, serr := packages.ParseAndSubmitRate(rate.DraftRevision.FormData, now); serr != nil {
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
			updates["unlocked_reason"] = args.SubmittedReason
		}
		if err := s.rates.MarkRevisionSubmitted(dbc.Ctx, dbc.Tx, rate.DraftRevision.ID, updates); err != nil {
			return MapError(op, err)
		}

		rateRevID := rate.DraftRevision.ID
		joins := []*types.SubmissionPackageRevision{{
			RateRevisionID: &rateRevID,
			IsSubmitted:    true,
		}}

		linkedContractIDs, err := s.rates.ContractsLinkedTo(dbc.Ctx, dbc.Tx, rate.ID)
		if err != nil {
			return MapError(op, err)
		}
		seen := map[uuid.UUID]bool{}
		contractIDs := make([]uuid.UUID, 0, len(linkedContractIDs)+1)
		for _, id := range append(linkedContractIDs, rate.ParentContractID) {
			if id == uuid.Nil || seen[id] {
				continue
			}
			seen[id] = true
			contractIDs = append(contractIDs, id)
		}
		for _, contractID := range contractIDs {
			latest, err := s.contracts.LatestSubmittedRevision(dbc.Ctx, dbc.Tx, contractID)
			if err != nil {
				return MapError(op, err)
			}
			if latest == nil {
				continue
			}
			revID := latest.ID
			joins = append(joins, &types.SubmissionPackageRevision{
				ContractRevisionID: &revID,
				IsSubmitted:        false,
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
		if err := s.rates.Touch(dbc.Ctx, dbc.Tx, rate.ID); err != nil {
			return MapError(op, err)
		}
		for _, contractID := range contractIDs {
			if err := s.contracts.Touch(dbc.Ctx, dbc.Tx, contractID); err != nil {
				return MapError(op, err)
			}
		}

		result, err = s.hydrateRate(dbc, args.RateID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UnlockRate reopens a submitted rate by cloning its latest submitted
// revision into a fresh draft with the unlock audit fields set.
func (s *Store) UnlockRate(ctx context.Context, args UnlockRateArgs) (*packages.Rate, error) {
	const op = "store.UnlockRate"

	if args.UnlockedReason == "" {
		return nil, packages.NewError(packages.CodeValidation, op, "a reason is required when unlocking a rate", nil)
	}

	var result *packages.Rate
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		rate, err := s.hydrateRate(dbc, args.RateID)
		if err != nil {
			return err
		}

		status, err := packages.RateStatus(rate)
		if err != nil {
			return err
		}
		if status != packages.StatusSubmitted && status != packages.StatusResubmitted {
			return packages.NewError(packages.CodeConflict, op, "only a submitted rate can be unlocked", nil)
		}
		consolidated, err := packages.RateConsolidatedStatus(rate)
		if err != nil {
			return err
		}
		if consolidated == packages.StatusApproved || consolidated == packages.StatusWithdrawn {
			return packages.NewError(packages.CodeConflict, op,
				"rate is "+string(consolidated)+" and cannot be unlocked", nil)
		}

		last := packages.LatestRateSubmission(rate)
		if last == nil {
			return packages.NewError(packages.CodeInvariantViolation, op, "submitted rate has no submissions", nil)
		}

		now := time.Now().UTC()
		by := args.UnlockedByID

		raw, err := marshalRateFormData(last.RateRevision.FormData)
		if err != nil {
			return MapError(op, err)
		}
		if _, err := s.rates.CreateRevision(dbc.Ctx, dbc.Tx, &types.RateRevision{
			RateID:         rate.ID,
			FormData:       raw,
			UnlockedAt:     &now,
			UnlockedByID:   &by,
			UnlockedReason: args.UnlockedReason,
		}); err != nil {
			return MapError(op, err)
		}
		if err := s.rates.Touch(dbc.Ctx, dbc.Tx, rate.ID); err != nil {
			return MapError(op, err)
		}

		result, err = s.hydrateRate(dbc, args.RateID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AppendRateReviewAction records a CMS review action against a rate package.
func (s *Store) AppendRateReviewAction(ctx context.Context, args ReviewActionArgs) (*packages.Rate, error) {
	const op = "store.AppendRateReviewAction"

	var result *packages.Rate
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		rate, err := s.hydrateRate(dbc, args.PackageID)
		if err != nil {
			return err
		}
		consolidated, err := packages.RateConsolidatedStatus(rate)
		if err != nil {
			return err
		}
		if err := guardReviewAction(op, args, consolidated); err != nil {
			return err
		}

		rateID := args.PackageID
		if _, err := s.reviews.Append(dbc.Ctx, dbc.Tx, &types.ReviewStatusAction{
			RateID:      &rateID,
			ActionType:  string(args.ActionType),
			Reason:      args.Reason,
			UpdatedByID: args.UpdatedByID,
			UpdatedAt:   time.Now().UTC(),
		}); err != nil {
			return MapError(op, err)
		}
		if err := s.rates.Touch(dbc.Ctx, dbc.Tx, args.PackageID); err != nil {
			return MapError(op, err)
		}

		result, err = s.hydrateRate(dbc, args.PackageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
