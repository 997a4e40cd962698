package store

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
	"github.com/mcreview/mcreview-backend/internal/platform/dbctx"
	"github.com/mcreview/mcreview-backend/internal/types"
)

func marshalContractFormData(fd packages.ContractFormData) (datatypes.JSON, error) {
	raw, err := json.Marshal(fd)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func marshalRateFormData(fd packages.RateFormData) (datatypes.JSON, error) {
	raw, err := json.Marshal(fd)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func updateInfoFrom(at *types.ContractRevision) (submit, unlock *packages.UpdateInfo) {
	if at.SubmittedAt != nil {
		submit = &packages.UpdateInfo{UpdatedAt: *at.SubmittedAt, UpdatedReason: at.SubmittedReason}
		if at.SubmittedByID != nil {
			submit.UpdatedBy = *at.SubmittedByID
		}
	}
	if at.UnlockedAt != nil {
		unlock = &packages.UpdateInfo{UpdatedAt: *at.UnlockedAt, UpdatedReason: at.UnlockedReason}
		if at.UnlockedByID != nil {
			unlock.UpdatedBy = *at.UnlockedByID
		}
	}
	return submit, unlock
}

func contractRevisionView(m *types.ContractRevision) (packages.ContractRevision, error) {
	var fd packages.ContractFormData
	if len(m.FormData) > 0 {
		if err := json.Unmarshal(m.FormData, &fd); err != nil {
			return packages.ContractRevision{}, err
		}
	}
	submit, unlock := updateInfoFrom(m)
	return packages.ContractRevision{
		ID:         m.ID,
		ContractID: m.ContractID,
		FormData:   fd,
		SubmitInfo: submit,
		UnlockInfo: unlock,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}

func rateRevisionView(m *types.RateRevision) (packages.RateRevision, error) {
	var fd packages.RateFormData
	if len(m.FormData) > 0 {
		if err := json.Unmarshal(m.FormData, &fd); err != nil {
			return packages.RateRevision{}, err
		}
	}
	rev := packages.RateRevision{
		ID:        m.ID,
		RateID:    m.RateID,
		FormData:  fd,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.SubmittedAt != nil {
		rev.SubmitInfo = &packages.UpdateInfo{UpdatedAt: *m.SubmittedAt, UpdatedReason: m.SubmittedReason}
		if m.SubmittedByID != nil {
			rev.SubmitInfo.UpdatedBy = *m.SubmittedByID
		}
	}
	if m.UnlockedAt != nil {
		rev.UnlockInfo = &packages.UpdateInfo{UpdatedAt: *m.UnlockedAt, UpdatedReason: m.UnlockedReason}
		if m.UnlockedByID != nil {
			rev.UnlockInfo.UpdatedBy = *m.UnlockedByID
		}
	}
	return rev, nil
}

func reviewActionViews(actions []*types.ReviewStatusAction) []packages.ReviewStatusAction {
	views := make([]packages.ReviewStatusAction, 0, len(actions))
	for _, a := range actions {
		views = append(views, packages.ReviewStatusAction{
			UpdatedAt:  a.UpdatedAt,
			UpdatedBy:  a.UpdatedByID,
			ActionType: packages.ReviewActionType(a.ActionType),
			Reason:     a.Reason,
		})
	}
	return views
}

// hydrateContract loads a contract and its complete history into the domain
// view. PackageSubmissions come out sorted newest-first.
func (s *Store) hydrateContract(dbc dbctx.Context, contractID uuid.UUID) (*packages.Contract, error) {
	const op = "store.hydrateContract"

	model, err := s.contracts.GetByID(dbc.Ctx, dbc.Tx, contractID)
	if err != nil {
		return nil, MapError(op, err)
	}

	revModels, err := s.contracts.GetRevisions(dbc.Ctx, dbc.Tx, contractID)
	if err != nil {
		return nil, MapError(op, err)
	}
	revByID := make(map[uuid.UUID]*types.ContractRevision, len(revModels))
	revIDs := make([]uuid.UUID, 0, len(revModels))
	var draftModel *types.ContractRevision
	for _, rev := range revModels {
		revByID[rev.ID] = rev
		revIDs = append(revIDs, rev.ID)
		if rev.SubmittedAt == nil {
			draftModel = rev
		}
	}

	pkgs, joinsByPkg, err := s.submissions.GetPackagesForContractRevisions(dbc.Ctx, dbc.Tx, revIDs)
	if err != nil {
		return nil, MapError(op, err)
	}

	// Load every rate revision referenced by any of these packages.
	var rateRevIDs []uuid.UUID
	for _, joins := range joinsByPkg {
		for _, join := range joins {
			if join.RateRevisionID != nil {
				rateRevIDs = append(rateRevIDs, *join.RateRevisionID)
			}
		}
	}
	rateRevModels, err := s.rates.GetRevisionsByIDs(dbc.Ctx, dbc.Tx, rateRevIDs)
	if err != nil {
		return nil, MapError(op, err)
	}
	rateRevByID := make(map[uuid.UUID]*types.RateRevision, len(rateRevModels))
	for _, rev := range rateRevModels {
		rateRevByID[rev.ID] = rev
	}

	subs := make([]packages.ContractPackageSubmission, 0, len(pkgs))
	for _, pkg := range pkgs {
		sub := packages.ContractPackageSubmission{
			SubmitInfo: packages.UpdateInfo{
				UpdatedAt:     pkg.SubmittedAt,
				UpdatedBy:     pkg.SubmittedByID,
				UpdatedReason: pkg.SubmittedReason,
			},
		}
		for _, join := range joinsByPkg[pkg.ID] {
			if join.IsSubmitted {
				if join.ContractRevisionID != nil {
					sub.SubmittedRevisionIDs = append(sub.SubmittedRevisionIDs, *join.ContractRevisionID)
				}
				if join.RateRevisionID != nil {
					sub.SubmittedRevisionIDs = append(sub.SubmittedRevisionIDs, *join.RateRevisionID)
				}
			}
			if join.ContractRevisionID != nil {
				if revModel, ok := revByID[*join.ContractRevisionID]; ok {
					view, err := contractRevisionView(revModel)
					if err != nil {
						return nil, MapError(op, err)
					}
					sub.ContractRevision = view
				}
			}
			if join.RateRevisionID != nil {
				if revModel, ok := rateRevByID[*join.RateRevisionID]; ok {
					view, err := rateRevisionView(revModel)
					if err != nil {
						return nil, MapError(op, err)
					}
					sub.RateRevisions = append(sub.RateRevisions, view)
				}
			}
		}
		subs = append(subs, sub)
	}
	packages.SortSubmissionsDesc(subs)

	actions, err := s.reviews.ListForContract(dbc.Ctx, dbc.Tx, contractID)
	if err != nil {
		return nil, MapError(op, err)
	}

	contract := &packages.Contract{
		ID:                  model.ID,
		StateCode:           model.StateCode,
		StateNumber:         model.StateNumber,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
		PackageSubmissions:  subs,
		ReviewStatusActions: reviewActionViews(actions),
	}
	if draftModel != nil {
		view, err := contractRevisionView(draftModel)
		if err != nil {
			return nil, MapError(op, err)
		}
		contract.DraftRevision = &view
	}

	draftRates, err := s.hydrateDraftRates(dbc, contractID)
	if err != nil {
		return nil, err
	}
	contract.DraftRates = draftRates

	return contract, nil
}

// hydrateDraftRates loads shallow views of the rates currently attached to a
// contract draft: enough for validation (current form data, parentage)
// without recursing into each rate's full package history.
func (s *Store) hydrateDraftRates(dbc dbctx.Context, contractID uuid.UUID) ([]packages.Rate, error) {
	const op = "store.hydrateDraftRates"

	joins, err := s.contracts.GetDraftRateJoins(dbc.Ctx, dbc.Tx, contractID)
	if err != nil {
		return nil, MapError(op, err)
	}
	if len(joins) == 0 {
		return nil, nil
	}
	rateIDs := make([]uuid.UUID, 0, len(joins))
	for _, join := range joins {
		rateIDs = append(rateIDs, join.RateID)
	}
	rateModels, err := s.rates.GetByIDs(dbc.Ctx, dbc.Tx, rateIDs)
	if err != nil {
		return nil, MapError(op, err)
	}
	rateByID := make(map[uuid.UUID]*types.Rate, len(rateModels))
	for _, r := range rateModels {
		rateByID[r.ID] = r
	}

	views := make([]packages.Rate, 0, len(joins))
	for _, join := range joins {
		model, ok := rateByID[join.RateID]
		if !ok {
			continue
		}
		view := packages.Rate{
			ID:               model.ID,
			StateCode:        model.StateCode,
			StateNumber:      model.StateNumber,
			ParentContractID: model.ParentContractID,
			CreatedAt:        model.CreatedAt,
			UpdatedAt:        model.UpdatedAt,
		}
		draft, err := s.rates.GetDraftRevision(dbc.Ctx, dbc.Tx, model.ID)
		if err != nil {
			return nil, MapError(op, err)
		}
		if draft != nil {
			rev, err := rateRevisionView(draft)
			if err != nil {
				return nil, MapError(op, err)
			}
			view.DraftRevision = &rev
		} else if latest, err := s.rates.LatestSubmittedRevision(dbc.Ctx, dbc.Tx, model.ID); err != nil {
			return nil, MapError(op, err)
		} else if latest != nil {
			rev, err := rateRevisionView(latest)
			if err != nil {
				return nil, MapError(op, err)
			}
			view.PackageSubmissions = []packages.RatePackageSubmission{{
				SubmitInfo:   *rev.SubmitInfo,
				RateRevision: rev,
			}}
		}
		views = append(views, view)
	}
	return views, nil
}

// hydrateRate loads a rate and its complete history into the domain view.
func (s *Store) hydrateRate(dbc dbctx.Context, rateID uuid.UUID) (*packages.Rate, error) {
	const op = "store.hydrateRate"

	model, err := s.rates.GetByID(dbc.Ctx, dbc.Tx, rateID)
	if err != nil {
		return nil, MapError(op, err)
	}

	revModels, err := s.rates.GetRevisions(dbc.Ctx, dbc.Tx, rateID)
	if err != nil {
		return nil, MapError(op, err)
	}
	revByID := make(map[uuid.UUID]*types.RateRevision, len(revModels))
	revIDs := make([]uuid.UUID, 0, len(revModels))
	var draftModel *types.RateRevision
	for _, rev := range revModels {
		revByID[rev.ID] = rev
		revIDs = append(revIDs, rev.ID)
		if rev.SubmittedAt == nil {
			draftModel = rev
		}
	}

	pkgs, joinsByPkg, err := s.submissions.GetPackagesForRateRevisions(dbc.Ctx, dbc.Tx, revIDs)
	if err != nil {
		return nil, MapError(op, err)
	}

	var contractRevIDs []uuid.UUID
	for _, joins := range joinsByPkg {
		for _, join := range joins {
			if join.ContractRevisionID != nil {
				contractRevIDs = append(contractRevIDs, *join.ContractRevisionID)
			}
		}
	}
	contractRevByID := make(map[uuid.UUID]*types.ContractRevision, len(contractRevIDs))
	if len(contractRevIDs) > 0 {
		var contractRevModels []*types.ContractRevision
		if err := dbTx(dbc, s).Where("id IN ?", contractRevIDs).Find(&contractRevModels).Error; err != nil {
			return nil, MapError(op, err)
		}
		for _, rev := range contractRevModels {
			contractRevByID[rev.ID] = rev
		}
	}

	subs := make([]packages.RatePackageSubmission, 0, len(pkgs))
	for _, pkg := range pkgs {
		sub := packages.RatePackageSubmission{
			SubmitInfo: packages.UpdateInfo{
				UpdatedAt:     pkg.SubmittedAt,
				UpdatedBy:     pkg.SubmittedByID,
				UpdatedReason: pkg.SubmittedReason,
			},
		}
		for _, join := range joinsByPkg[pkg.ID] {
			if join.IsSubmitted {
				if join.ContractRevisionID != nil {
					sub.SubmittedRevisionIDs = append(sub.SubmittedRevisionIDs, *join.ContractRevisionID)
				}
				if join.RateRevisionID != nil {
					sub.SubmittedRevisionIDs = append(sub.SubmittedRevisionIDs, *join.RateRevisionID)
				}
			}
			if join.RateRevisionID != nil {
				if revModel, ok := revByID[*join.RateRevisionID]; ok {
					view, err := rateRevisionView(revModel)
					if err != nil {
						return nil, MapError(op, err)
					}
					sub.RateRevision = view
				}
			}
			if join.ContractRevisionID != nil {
				if revModel, ok := contractRevByID[*join.ContractRevisionID]; ok {
					view, err := contractRevisionView(revModel)
					if err != nil {
						return nil, MapError(op, err)
					}
					sub.ContractRevisions = append(sub.ContractRevisions, view)
				}
			}
		}
		subs = append(subs, sub)
	}
	packages.SortRateSubmissionsDesc(subs)

	actions, err := s.reviews.ListForRate(dbc.Ctx, dbc.Tx, rateID)
	if err != nil {
		return nil, MapError(op, err)
	}

	rate := &packages.Rate{
		ID:                  model.ID,
		StateCode:           model.StateCode,
		StateNumber:         model.StateNumber,
		ParentContractID:    model.ParentContractID,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
		PackageSubmissions:  subs,
		ReviewStatusActions: reviewActionViews(actions),
	}
	if draftModel != nil {
		view, err := rateRevisionView(draftModel)
		if err != nil {
			return nil, MapError(op, err)
		}
		rate.DraftRevision = &view
	}
	return rate, nil
}

func dbTx(dbc dbctx.Context, s *Store) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return s.db.WithContext(dbc.Ctx)
}
