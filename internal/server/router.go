package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mcreview/mcreview-backend/internal/handlers"
	"github.com/mcreview/mcreview-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName      string
	AuthHandler      *handlers.AuthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	ContractHandler  *handlers.ContractHandler
	RateHandler      *handlers.RateHandler
	QuestionHandler  *handlers.QuestionHandler
	ReferenceHandler *handlers.ReferenceHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.AttachTraceContext())

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Dashboards and package detail are shared between state and CMS users;
	// the service layer scopes state users to their own packages.
	protected.GET("/contracts", cfg.ContractHandler.Index)
	protected.GET("/contracts/:id", cfg.ContractHandler.Get)
	protected.GET("/rates/:id", cfg.RateHandler.Get)
	protected.GET("/contracts/:id/questions", cfg.QuestionHandler.ListForContract)
	protected.GET("/rates/:id/questions", cfg.QuestionHandler.ListForRate)
	protected.GET("/states/:stateCode", cfg.ReferenceHandler.GetState)

	// State users author and submit packages.
	state := protected.Group("/")
	state.Use(cfg.AuthMiddleware.RequireStateUser())
	state.POST("/contracts", cfg.ContractHandler.Create)
	state.PUT("/contracts/:id", cfg.ContractHandler.UpdateDraft)
	state.POST("/contracts/:id/submit", cfg.ContractHandler.Submit)
	state.POST("/rates", cfg.RateHandler.Create)
	state.PUT("/rates/:id", cfg.RateHandler.UpdateDraft)
	state.POST("/rates/:id/submit", cfg.RateHandler.Submit)
	state.POST("/questions/:questionID/responses", cfg.QuestionHandler.Respond)

	// CMS users unlock packages, record review decisions and ask questions.
	cms := protected.Group("/")
	cms.Use(cfg.AuthMiddleware.RequireCMSUser())
	cms.POST("/contracts/:id/unlock", cfg.ContractHandler.Unlock)
	cms.POST("/contracts/:id/review-actions", cfg.ContractHandler.ReviewAction)
	cms.POST("/rates/:id/unlock", cfg.RateHandler.Unlock)
	cms.POST("/rates/:id/review-actions", cfg.RateHandler.ReviewAction)
	cms.POST("/contracts/:id/questions", cfg.QuestionHandler.AddForContract)
	cms.POST("/rates/:id/questions", cfg.QuestionHandler.AddForRate)

	return router
}
