package app

import (
	"gorm.io/gorm"

	"github.com/mcreview/mcreview-backend/internal/logger"
	"github.com/mcreview/mcreview-backend/internal/repos"
)

type Repos struct {
	User       repos.UserRepo
	Contract   repos.ContractRepo
	Rate       repos.RateRepo
	Submission repos.SubmissionRepo
	Review     repos.ReviewRepo
	Question   repos.QuestionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		Contract:   repos.NewContractRepo(db, log),
		Rate:       repos.NewRateRepo(db, log),
		Submission: repos.NewSubmissionRepo(db, log),
		Review:     repos.NewReviewRepo(db, log),
		Question:   repos.NewQuestionRepo(db, log),
	}
}
