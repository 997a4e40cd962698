package app

import (
	"gorm.io/gorm"

	"github.com/mcreview/mcreview-backend/internal/logger"
	"github.com/mcreview/mcreview-backend/internal/services"
	"github.com/mcreview/mcreview-backend/internal/store"
)

type Services struct {
	Auth       services.AuthService
	Flags      services.FlagService
	Submission services.SubmissionService
	Question   services.QuestionService
	Program    services.ProgramService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	st := store.New(db, log)

	authService := services.NewAuthService(db, log, reposet.User, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	flagService := services.NewEnvFlagService(log)
	programService, err := services.NewProgramService(log)
	if err != nil {
		return Services{}, err
	}
	submissionService := services.NewSubmissionService(log, st, clients.EventBus, flagService, programService)
	questionService := services.NewQuestionService(db, log, reposet.Question, reposet.Contract, reposet.Rate)

	return Services{
		Auth:       authService,
		Flags:      flagService,
		Submission: submissionService,
		Question:   questionService,
		Program:    programService,
	}, nil
}
