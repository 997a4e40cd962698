package app

import (
	"github.com/mcreview/mcreview-backend/internal/handlers"
	"github.com/mcreview/mcreview-backend/internal/logger"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Contract  *handlers.ContractHandler
	Rate      *handlers.RateHandler
	Question  *handlers.QuestionHandler
	Reference *handlers.ReferenceHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:      handlers.NewAuthHandler(services.Auth),
		Contract:  handlers.NewContractHandler(services.Submission),
		Rate:      handlers.NewRateHandler(services.Submission),
		Question:  handlers.NewQuestionHandler(services.Question),
		Reference: handlers.NewReferenceHandler(services.Program),
	}
}
