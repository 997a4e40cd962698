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

type RateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rate *types.Rate) (*types.Rate, error)
	GetByID(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) (*types.Rate, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, rateIDs []uuid.UUID) ([]*types.Rate, error)
	ListByParentContract(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) ([]*types.Rate, error)
	NextStateNumber(ctx context.Context, tx *gorm.DB, stateCode string) (int, error)
	Touch(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) error

	CreateRevision(ctx context.Context, tx *gorm.DB, rev *types.RateRevision) (*types.RateRevision, error)
	GetDraftRevision(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) (*types.RateRevision, error)
	GetRevisions(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) ([]*types.RateRevision, error)
	GetRevisionsByIDs(ctx context.Context, tx *gorm.DB, revisionIDs []uuid.UUID) ([]*types.RateRevision, error)
	UpdateDraftRevision(ctx context.Context, tx *gorm.DB, rev *types.RateRevision) error
	MarkRevisionSubmitted(ctx context.Context, tx *gorm.DB, revisionID uuid.UUID, updates map[string]any) error
	LatestSubmittedRevision(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) (*types.RateRevision, error)

	ContractsLinkedTo(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) ([]uuid.UUID, error)
}

type rateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRateRepo(db *gorm.DB, baseLog *logger.Logger) RateRepo {
	repoLog := baseLog.With("repo", "RateRepo")
	return &rateRepo{db: db, log: repoLog}
}

func (r *rateRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *rateRepo) Create(ctx context.Context, tx *gorm.DB, rate *types.Rate) (*types.Rate, error) {
	if err := r.base(tx).WithContext(ctx).Create(rate).Error; err != nil {
		return nil, err
	}
	return rate, nil
}

func (r *rateRepo) GetByID(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) (*types.Rate, error) {
	var result types.Rate
	if err := r.base(tx).WithContext(ctx).
		Where("id = ?", rateID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *rateRepo) GetByIDs(ctx context.Context, tx *gorm.DB, rateIDs []uuid.UUID) ([]*types.Rate, error) {
	var results []*types.Rate
	if len(rateIDs) == 0 {
		return results, nil
	}
	if err := r.base(tx).WithContext(ctx).
		Where("id IN ?", rateIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *rateRepo) ListByParentContract(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) ([]*types.Rate, error) {
	var results []*types.Rate
	if err := r.base(tx).WithContext(ctx).
		Where("parent_contract_id = ?", contractID).
		Order("state_number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *rateRepo) NextStateNumber(ctx context.Context, tx *gorm.DB, stateCode string) (int, error) {
	var max int
	if err := r.base(tx).WithContext(ctx).
		Model(&types.Rate{}).
		Where("state_code = ?", stateCode).
		Select("COALESCE(MAX(state_number), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *rateRepo) Touch(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) error {
	return r.base(tx).WithContext(ctx).
		Model(&types.Rate{}).
		Where("id = ?", rateID).
		Update("updated_at", time.Now().UTC()).Error
}

func (r *rateRepo) CreateRevision(ctx context.Context, tx *gorm.DB, rev *types.RateRevision) (*types.RateRevision, error) {
	if err := r.base(tx).WithContext(ctx).Create(rev).Error; err != nil {
		return nil, err
	}
	return rev, nil
}

func (r *rateRepo) GetDraftRevision(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) (*types.RateRevision, error) {
	var result types.RateRevision
	err := r.base(tx).WithContext(ctx).
		Where("rate_id = ? AND submitted_at IS NULL", rateID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *rateRepo) GetRevisions(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) ([]*types.RateRevision, error) {
	var results []*types.RateRevision
	if err := r.base(tx).WithContext(ctx).
		Where("rate_id = ?", rateID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *rateRepo) GetRevisionsByIDs(ctx context.Context, tx *gorm.DB, revisionIDs []uuid.UUID) ([]*types.RateRevision, error) {
	var results []*types.RateRevision
	if len(revisionIDs) == 0 {
		return results, nil
	}
	if err := r.base(tx).WithContext(ctx).
		Where("id IN ?", revisionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *rateRepo) UpdateDraftRevision(ctx context.Context, tx *gorm.DB, rev *types.RateRevision) error {
	return r.base(tx).WithContext(ctx).Save(rev).Error
}

func (r *rateRepo) MarkRevisionSubmitted(ctx context.Context, tx *gorm.DB, revisionID uuid.UUID, updates map[string]any) error {
	return r.base(tx).WithContext(ctx).
		Model(&types.RateRevision{}).
		Where("id = ?", revisionID).
		Updates(updates).Error
}

func (r *rateRepo) LatestSubmittedRevision(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) (*types.RateRevision, error) {
	var result types.RateRevision
	err := r.base(tx).WithContext(ctx).
		Where("rate_id = ? AND submitted_at IS NOT NULL", rateID).
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

func (r *rateRepo) ContractsLinkedTo(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) ([]uuid.UUID, error) {
	var contractIDs []uuid.UUID
	if err := r.base(tx).WithContext(ctx).
		Model(&types.DraftRateJoin{}).
		Where("rate_id = ?", rateID).
		Pluck("contract_id", &contractIDs).Error; err != nil {
		return nil, err
	}
	return contractIDs, nil
}
