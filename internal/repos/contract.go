package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcreview/mcreview-backend/internal/logger"
	"github.com/mcreview/mcreview-backend/internal/types"
)

type ContractRepo interface {
	Create(ctx context.Context, tx *gorm.DB, contract *types.Contract) (*types.Contract, error)
	GetByID(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) (*types.Contract, error)
	ListByState(ctx context.Context, tx *gorm.DB, stateCode string) ([]*types.Contract, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Contract, error)
	NextStateNumber(ctx context.Context, tx *gorm.DB, stateCode string) (int, error)
	Touch(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) error

	CreateRevision(ctx context.Context, tx *gorm.DB, rev *types.ContractRevision) (*types.ContractRevision, error)
	GetDraftRevision(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) (*types.ContractRevision, error)
	GetRevisions(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) ([]*types.ContractRevision, error)
	UpdateDraftRevision(ctx context.Context, tx *gorm.DB, rev *types.ContractRevision) error
	MarkRevisionSubmitted(ctx context.Context, tx *gorm.DB, revisionID uuid.UUID, updates map[string]any) error
	LatestSubmittedRevision(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) (*types.ContractRevision, error)

	GetDraftRateJoins(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) ([]*types.DraftRateJoin, error)
	ReplaceDraftRateJoins(ctx context.Context, tx *gorm.DB, contractID uuid.UUID, rateIDs []uuid.UUID) error
}

type contractRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContractRepo(db *gorm.DB, baseLog *logger.Logger) ContractRepo {
	repoLog := baseLog.With("repo", "ContractRepo")
	return &contractRepo{db: db, log: repoLog}
}

func (r *contractRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *contractRepo) Create(ctx context.Context, tx *gorm.DB, contract *types.Contract) (*types.Contract, error) {
	if err := r.base(tx).WithContext(ctx).Create(contract).Error; err != nil {
		return nil, err
	}
	return contract, nil
}

func (r *contractRepo) GetByID(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) (*types.Contract, error) {
	var result types.Contract
	if err := r.base(tx).WithContext(ctx).
		Where("id = ?", contractID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *contractRepo) ListByState(ctx context.Context, tx *gorm.DB, stateCode string) ([]*types.Contract, error) {
	var results []*types.Contract
	if err := r.base(tx).WithContext(ctx).
		Where("state_code = ?", stateCode).
		Order("state_number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contractRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Contract, error) {
	var results []*types.Contract
	if err := r.base(tx).WithContext(ctx).
		Order("state_code ASC, state_number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contractRepo) NextStateNumber(ctx context.Context, tx *gorm.DB, stateCode string) (int, error) {
	var max int
	if err := r.base(tx).WithContext(ctx).
		Model(&types.Contract{}).
		Where("state_code = ?", stateCode).
		Select("COALESCE(MAX(state_number), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *contractRepo) Touch(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) error {
	return r.base(tx).WithContext(ctx).
		Model(&types.Contract{}).
		Where("id = ?", contractID).
		Update("updated_at", time.Now().UTC()).Error
}

func (r *contractRepo) CreateRevision(ctx context.Context, tx *gorm.DB, rev *types.ContractRevision) (*types.ContractRevision, error) {
	if err := r.base(tx).WithContext(ctx).Create(rev).Error; err != nil {
		return nil, err
	}
	return rev, nil
}

func (r *contractRepo) GetDraftRevision(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) (*types.ContractRevision, error) {
	var result types.ContractRevision
	err := r.base(tx).WithContext(ctx).
		Where("contract_id = ? AND submitted_at IS NULL", contractID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *contractRepo) GetRevisions(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) ([]*types.ContractRevision, error) {
	var results []*types.ContractRevision
	if err := r.base(tx).WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contractRepo) UpdateDraftRevision(ctx context.Context, tx *gorm.DB, rev *types.ContractRevision) error {
	return r.base(tx).WithContext(ctx).Save(rev).Error
}

func (r *contractRepo) MarkRevisionSubmitted(ctx context.Context, tx *gorm.DB, revisionID uuid.UUID, updates map[string]any) error {
	return r.base(tx).WithContext(ctx).
		Model(&types.ContractRevision{}).
		Where("id = ?", revisionID).
		Updates(updates).Error
}

func (r *contractRepo) LatestSubmittedRevision(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) (*types.ContractRevision, error) {
	var result types.ContractRevision
	err := r.base(tx).WithContext(ctx).
		Where("contract_id = ? AND submitted_at IS NOT NULL", contractID).
		Order("submitted_at DESC").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *contractRepo) GetDraftRateJoins(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) ([]*types.DraftRateJoin, error) {
	var results []*types.DraftRateJoin
	if err := r.base(tx).WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("rate_position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contractRepo) ReplaceDraftRateJoins(ctx context.Context, tx *gorm.DB, contractID uuid.UUID, rateIDs []uuid.UUID) error {
	db := r.base(tx).WithContext(ctx)
	if err := db.Where("contract_id = ?", contractID).Delete(&types.DraftRateJoin{}).Error; err != nil {
		return err
	}
	if len(rateIDs) == 0 {
		return nil
	}
	joins := make([]*types.DraftRateJoin, 0, len(rateIDs))
	for i, rateID := range rateIDs {
		joins = append(joins, &types.DraftRateJoin{
			ContractID:   contractID,
			RateID:       rateID,
			RatePosition: i,
		})
	}
	return db.Create(&joins).Error
}
