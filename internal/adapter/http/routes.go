package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"userdir/internal/adapter/http/handler"
	"userdir/internal/adapter/http/middleware"
	"userdir/internal/core/telemetry"
	"userdir/pkg/config"
)

type HandlersConfig struct {
	UserHandler    *handler.UserHandler
	SessionHandler *handler.SessionHandler
	TodoHandler    *handler.TodoHandler
	HealthHandler  *handler.HealthHandler
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *telemetry.AppMetrics, gatherer prometheus.Gatherer, logger *config.Logger, cfg *config.AppConfig) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	httpsEnforcer := middleware.NewHTTPSEnforcer(cfg.EnforceHTTPS, logger.Logger.Logger)
	router.Use(httpsEnforcer.HTTPSMiddleware())

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())

	if cfg.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimitConfigs, logger.Logger.Logger, metrics)
		router.Use(rateLimiter.RateLimitMiddleware())

		if handlers.HealthHandler != nil {
			handlers.HealthHandler.RateLimiter = rateLimiter
		}
	}

	router.Use(middleware.MetricsMiddleware(metrics))

	setupRoutes(router, handlers)

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return router
}

// SetupRouterForTests mounts the routes without tracing, metrics or rate
// limiting.
func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())

	setupRoutes(router, handlers)

	return router
}

func setupRoutes(router *gin.Engine, handlers HandlersConfig) {
	if handlers.HealthHandler != nil {
		router.GET("/health", handlers.HealthHandler.Health)
	}

	if h := handlers.UserHandler; h != nil {
		users := router.Group("/users")
		{
			users.GET("", h.ListUsers)
			users.GET("/cities", h.ListCities)
			users.GET("/draft", h.NewDraft)
			users.POST("", h.CreateUser)
			users.GET("/:id", h.GetUser)
			users.PUT("/:id", h.UpsertUser)
			users.DELETE("/:id", h.DeleteUser)
		}
	}

	if h := handlers.SessionHandler; h != nil {
		sessions := router.Group("/sessions")
		{
			sessions.POST("", h.OpenSession)
			sessions.GET("/:sid", h.GetSession)
			sessions.DELETE("/:sid", h.CloseSession)
			sessions.PUT("/:sid/filters", h.SetFilters)
			sessions.POST("/:sid/draft", h.OpenDraft)
			sessions.PATCH("/:sid/draft", h.EditDraft)
			sessions.DELETE("/:sid/draft", h.CancelDraft)
			sessions.POST("/:sid/draft/save", h.SaveDraft)
			sessions.PUT("/:sid/detail/:id", h.SelectUser)
			sessions.DELETE("/:sid/detail", h.CloseDetail)
			sessions.POST("/:sid/theme", h.ToggleTheme)
		}
	}

	if h := handlers.TodoHandler; h != nil {
		todos := router.Group("/todos")
		{
			todos.GET("", h.GetAllTodos)
			todos.POST("", h.CreateTodo)
			todos.PUT("/:id", h.UpdateTodo)
			todos.DELETE("/:id", h.DeleteTodo)
		}
	}
}
