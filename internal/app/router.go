package app

import (
	"github.com/gin-gonic/gin"

	"github.com/mcreview/mcreview-backend/internal/server"
)

func wireRouter(cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ServiceName:      cfg.ServiceName,
		AuthHandler:      handlers.Auth,
		AuthMiddleware:   middleware.Auth,
		ContractHandler:  handlers.Contract,
		RateHandler:      handlers.Rate,
		QuestionHandler:  handlers.Question,
		ReferenceHandler: handlers.Reference,
	})
}
