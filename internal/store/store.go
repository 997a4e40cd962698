package store

import (
	"gorm.io/gorm"

	"github.com/mcreview/mcreview-backend/internal/logger"
	"github.com/mcreview/mcreview-backend/internal/repos"
)

// Store composes table-level repos into the aggregate operations the
// submission lifecycle needs. All writes own a transaction boundary via the
// TxRunner; reads hydrate full domain views with history.
type Store struct {
	db          *gorm.DB
	log         *logger.Logger
	runner      TxRunner
	guard       CASGuard
	contracts   repos.ContractRepo
	rates       repos.RateRepo
	submissions repos.SubmissionRepo
	reviews     repos.ReviewRepo
	questions   repos.QuestionRepo
	users       repos.UserRepo
}

func New(db *gorm.DB, baseLog *logger.Logger) *Store {
	log := baseLog.With("component", "Store")
	return &Store{
		db:          db,
		log:         log,
		runner:      NewGormTxRunner(db),
		guard:       NewCASGuard(db),
		contracts:   repos.NewContractRepo(db, baseLog),
		rates:       repos.NewRateRepo(db, baseLog),
		submissions: repos.NewSubmissionRepo(db, baseLog),
		reviews:     repos.NewReviewRepo(db, baseLog),
		questions:   repos.NewQuestionRepo(db, baseLog),
		users:       repos.NewUserRepo(db, baseLog),
	}
}

func (s *Store) Users() repos.UserRepo         { return s.users }
func (s *Store) Questions() repos.QuestionRepo { return s.questions }
