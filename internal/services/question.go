package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
	"github.com/mcreview/mcreview-backend/internal/logger"
	"github.com/mcreview/mcreview-backend/internal/repos"
	"github.com/mcreview/mcreview-backend/internal/requestdata"
	"github.com/mcreview/mcreview-backend/internal/types"
)

// QuestionView is a question thread with its derived round number. Rounds are
// never stored; a question's round is its ordinal within its division,
// ordered by creation time.
type QuestionView struct {
	ID         uuid.UUID           `json:"id"`
	ContractID *uuid.UUID          `json:"contractID,omitempty"`
	RateID     *uuid.UUID          `json:"rateID,omitempty"`
	Division   packages.Division   `json:"division"`
	Round      int                 `json:"round"`
	AddedBy    uuid.UUID           `json:"addedBy"`
	Documents  []packages.Document `json:"documents"`
	CreatedAt  time.Time           `json:"createdAt"`
	Responses  []QuestionResponse  `json:"responses"`
}

type QuestionResponse struct {
	ID        uuid.UUID           `json:"id"`
	AddedBy   uuid.UUID           `json:"addedBy"`
	Documents []packages.Document `json:"documents"`
	CreatedAt time.Time           `json:"createdAt"`
}

type QuestionService interface {
	AddContractQuestion(ctx context.Context, contractID uuid.UUID, division packages.Division, documents []packages.Document) (*QuestionView, error)
	AddRateQuestion(ctx context.Context, rateID uuid.UUID, division packages.Division, documents []packages.Document) (*QuestionView, error)
	AddResponse(ctx context.Context, questionID uuid.UUID, documents []packages.Document) (*QuestionView, error)
	ListForContract(ctx context.Context, contractID uuid.UUID) ([]*QuestionView, error)
	ListForRate(ctx context.Context, rateID uuid.UUID) ([]*QuestionView, error)
}

type questionService struct {
	db           *gorm.DB
	log          *logger.Logger
	questionRepo repos.QuestionRepo
	contractRepo repos.ContractRepo
	rateRepo     repos.RateRepo
}

func NewQuestionService(db *gorm.DB, log *logger.Logger, questionRepo repos.QuestionRepo, contractRepo repos.ContractRepo, rateRepo repos.RateRepo) QuestionService {
	serviceLog := log.With("service", "QuestionService")
	return &questionService{db: db, log: serviceLog, questionRepo: questionRepo, contractRepo: contractRepo, rateRepo: rateRepo}
}

const opQuestions = "services.questions"

func validDivision(d packages.Division) bool {
	switch d {
	case packages.DivisionDMCO, packages.DivisionDMCP, packages.DivisionOACT:
		return true
	}
	return false
}

func marshalDocuments(docs []packages.Document) (datatypes.JSON, error) {
	if docs == nil {
		docs = []packages.Document{}
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func unmarshalDocuments(raw datatypes.JSON) []packages.Document {
	var docs []packages.Document
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &docs)
	}
	return docs
}

func (qs *questionService) addQuestion(ctx context.Context, contractID, rateID *uuid.UUID, division packages.Division, documents []packages.Document) (*QuestionView, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, packages.NewError(packages.CodeValidation, opQuestions, "no authenticated caller in context", nil)
	}
	if !validDivision(division) {
		return nil, packages.NewError(packages.CodeValidation, opQuestions, "unknown review division "+string(division), nil)
	}
	if len(documents) == 0 {
		return nil, packages.NewError(packages.CodeValidation, opQuestions, "a question needs at least one document", nil)
	}

	raw, err := marshalDocuments(documents)
	if err != nil {
		return nil, packages.Wrap(packages.CodeInternal, opQuestions, err)
	}

	var created *types.Question
	if err := qs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := &types.Question{
			ContractID: contractID,
			RateID:     rateID,
			Division:   string(division),
			AddedByID:  rd.UserID,
			Documents:  raw,
		}
		var cErr error
		created, cErr = qs.questionRepo.Create(ctx, tx, q)
		return cErr
	}); err != nil {
		return nil, packages.Wrap(packages.CodeInternal, opQuestions, err)
	}

	switch {
	case contractID != nil:
		return qs.findInContract(ctx, *contractID, created.ID)
	case rateID != nil:
		return qs.findInRate(ctx, *rateID, created.ID)
	default:
		return nil, packages.NewError(packages.CodeValidation, opQuestions, "question needs a contract or rate target", nil)
	}
}

func (qs *questionService) AddContractQuestion(ctx context.Context, contractID uuid.UUID, division packages.Division, documents []packages.Document) (*QuestionView, error) {
	return qs.addQuestion(ctx, &contractID, nil, division, documents)
}

func (qs *questionService) AddRateQuestion(ctx context.Context, rateID uuid.UUID, division packages.Division, documents []packages.Document) (*QuestionView, error) {
	return qs.addQuestion(ctx, nil, &rateID, division, documents)
}

func (qs *questionService) AddResponse(ctx context.Context, questionID uuid.UUID, documents []packages.Document) (*QuestionView, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, packages.NewError(packages.CodeValidation, opQuestions, "no authenticated caller in context", nil)
	}
	if len(documents) == 0 {
		return nil, packages.NewError(packages.CodeValidation, opQuestions, "a response needs at least one document", nil)
	}

	question, err := qs.questionRepo.GetByID(ctx, nil, questionID)
	if err != nil {
		return nil, packages.Wrap(packages.CodeNotFound, opQuestions, err)
	}

	raw, err := marshalDocuments(documents)
	if err != nil {
		return nil, packages.Wrap(packages.CodeInternal, opQuestions, err)
	}
	if err := qs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, cErr := qs.questionRepo.CreateResponse(ctx, tx, &types.QuestionResponse{
			QuestionID: question.ID,
			AddedByID:  rd.UserID,
			Documents:  raw,
		})
		return cErr
	}); err != nil {
		return nil, packages.Wrap(packages.CodeInternal, opQuestions, err)
	}

	if question.ContractID != nil {
		return qs.findInContract(ctx, *question.ContractID, question.ID)
	}
	if question.RateID != nil {
		return qs.findInRate(ctx, *question.RateID, question.ID)
	}
	return nil, packages.NewError(packages.CodeInvariantViolation, opQuestions, "question has no package target", nil)
}

// requireContractAccess resolves the contract's state and applies the same
// scoping the package endpoints use: a state user only sees their own state's
// Q&A threads.
func (qs *questionService) requireContractAccess(ctx context.Context, contractID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return packages.NewError(packages.CodeValidation, opQuestions, "no authenticated caller in context", nil)
	}
	contract, err := qs.contractRepo.GetByID(ctx, nil, contractID)
	if err != nil {
		return packages.Wrap(packages.CodeNotFound, opQuestions, err)
	}
	return requireStateAccess(rd, contract.StateCode)
}

func (qs *questionService) requireRateAccess(ctx context.Context, rateID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return packages.NewError(packages.CodeValidation, opQuestions, "no authenticated caller in context", nil)
	}
	rate, err := qs.rateRepo.GetByID(ctx, nil, rateID)
	if err != nil {
		return packages.Wrap(packages.CodeNotFound, opQuestions, err)
	}
	return requireStateAccess(rd, rate.StateCode)
}

func (qs *questionService) ListForContract(ctx context.Context, contractID uuid.UUID) ([]*QuestionView, error) {
	if err := qs.requireContractAccess(ctx, contractID); err != nil {
		return nil, err
	}
	models, err := qs.questionRepo.ListForContract(ctx, nil, contractID)
	if err != nil {
		return nil, packages.Wrap(packages.CodeInternal, opQuestions, err)
	}
	return qs.buildViews(ctx, models)
}

func (qs *questionService) ListForRate(ctx context.Context, rateID uuid.UUID) ([]*QuestionView, error) {
	if err := qs.requireRateAccess(ctx, rateID); err != nil {
		return nil, err
	}
	models, err := qs.questionRepo.ListForRate(ctx, nil, rateID)
	if err != nil {
		return nil, packages.Wrap(packages.CodeInternal, opQuestions, err)
	}
	return qs.buildViews(ctx, models)
}

// buildViews assigns round numbers per division. The repo returns questions
// ordered by created_at already.
func (qs *questionService) buildViews(ctx context.Context, models []*types.Question) ([]*QuestionView, error) {
	rounds := map[string]int{}
	views := make([]*QuestionView, 0, len(models))
	for _, model := range models {
		rounds[model.Division]++
		view := &QuestionView{
			ID:         model.ID,
			ContractID: model.ContractID,
			RateID:     model.RateID,
			Division:   packages.Division(model.Division),
			Round:      rounds[model.Division],
			AddedBy:    model.AddedByID,
			Documents:  unmarshalDocuments(model.Documents),
			CreatedAt:  model.CreatedAt,
		}
		responses, err := qs.questionRepo.ListResponses(ctx, nil, model.ID)
		if err != nil {
			return nil, packages.Wrap(packages.CodeInternal, opQuestions, err)
		}
		for _, r := range responses {
			view.Responses = append(view.Responses, QuestionResponse{
				ID:        r.ID,
				AddedBy:   r.AddedByID,
				Documents: unmarshalDocuments(r.Documents),
				CreatedAt: r.CreatedAt,
			})
		}
		views = append(views, view)
	}
	return views, nil
}

func (qs *questionService) findInContract(ctx context.Context, contractID, questionID uuid.UUID) (*QuestionView, error) {
	views, err := qs.ListForContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		if v.ID == questionID {
			return v, nil
		}
	}
	return nil, packages.NewError(packages.CodeNotFound, opQuestions, "question not found", nil)
}

func (qs *questionService) findInRate(ctx context.Context, rateID, questionID uuid.UUID) (*QuestionView, error) {
	views, err := qs.ListForRate(ctx, rateID)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		if v.ID == questionID {
			return v, nil
		}
	}
	return nil, packages.NewError(packages.CodeNotFound, opQuestions, "question not found", nil)
}
