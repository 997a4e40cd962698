package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcreview/mcreview-backend/internal/logger"
	"github.com/mcreview/mcreview-backend/internal/types"
)

type QuestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, question *types.Question) (*types.Question, error)
	GetByID(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) (*types.Question, error)
	ListForContract(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) ([]*types.Question, error)
	ListForRate(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) ([]*types.Question, error)
	CreateResponse(ctx context.Context, tx *gorm.DB, response *types.QuestionResponse) (*types.QuestionResponse, error)
	ListResponses(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) ([]*types.QuestionResponse, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	repoLog := baseLog.With("repo", "QuestionRepo")
	return &questionRepo{db: db, log: repoLog}
}

func (r *questionRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *questionRepo) Create(ctx context.Context, tx *gorm.DB, question *types.Question) (*types.Question, error) {
	if err := r.base(tx).WithContext(ctx).Create(question).Error; err != nil {
		return nil, err
	}
	return question, nil
}

func (r *questionRepo) GetByID(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) (*types.Question, error) {
	var result types.Question
	if err := r.base(tx).WithContext(ctx).
		Where("id = ?", questionID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *questionRepo) ListForContract(ctx context.Context, tx *gorm.DB, contractID uuid.UUID) ([]*types.Question, error) {
	var results []*types.Question
	if err := r.base(tx).WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *questionRepo) ListForRate(ctx context.Context, tx *gorm.DB, rateID uuid.UUID) ([]*types.Question, error) {
	var results []*types.Question
	if err := r.base(tx).WithContext(ctx).
		Where("rate_id = ?", rateID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *questionRepo) CreateResponse(ctx context.Context, tx *gorm.DB, response *types.QuestionResponse) (*types.QuestionResponse, error) {
	if err := r.base(tx).WithContext(ctx).Create(response).Error; err != nil {
		return nil, err
	}
	return response, nil
}

func (r *questionRepo) ListResponses(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) ([]*types.QuestionResponse, error) {
	var results []*types.QuestionResponse
	if err := r.base(tx).WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
