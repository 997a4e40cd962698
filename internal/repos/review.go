package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcreview/mcreview-backend/internal/logger"
	"github.com/mcreview/mcreview-backend/internal/types"
)

type ReviewRepo interface {
	Append(ctx context.Context, tx *gorm.DB, action *types.ReviewStatusAction) (*types.ReviewStatusAction, error)
	ListForContract(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) ([]*types.ReviewStatusAction, error)
	ListForRate(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) ([]*types.ReviewStatusAction, error)
}

type reviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	repoLog := baseLog.With("repo", "ReviewRepo")
	return &reviewRepo{db: db, log: repoLog}
}

func (r *reviewRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *reviewRepo) Append(ctx context.Context, tx *gorm.DB, action *types.ReviewStatusAction) (*types.ReviewStatusAction, error) {
	if err := r.base(tx).WithContext(ctx).Create(action).Error; err != nil {
		return nil, err
	}
	return action, nil
}

func (r *reviewRepo) ListForContract(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) ([]*types.ReviewStatusAction, error) {
	var results []*types.ReviewStatusAction
	if err := r.base(tx).WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reviewRepo) ListForRate(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) ([]*types.ReviewStatusAction, error) {
	var results []*types.ReviewStatusAction
	if err := r.base(tx).WithContext(ctx).
		Where("rate_id = ?", rateID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
