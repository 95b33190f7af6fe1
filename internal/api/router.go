package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/chamomile/taskboard/docs"
	"github.com/chamomile/taskboard/internal/api/handler"
	"github.com/chamomile/taskboard/internal/api/middleware"
	"github.com/chamomile/taskboard/internal/core/service"
	mongodb "github.com/chamomile/taskboard/internal/infrastructure/db/mongo"
	"github.com/chamomile/taskboard/internal/pkg/config"
	"github.com/chamomile/taskboard/internal/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil when rate limiting runs on the in-process store.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	store middleware.CounterStore,
	issuer *token.Issuer,
	cfg *config.Config,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log, cfg.Development())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("taskboard"))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	taskRepo := mongodb.NewTaskRepository(db)
	authService := service.NewAuthService(userRepo, taskRepo, issuer, log)
	taskService := service.NewTaskService(taskRepo, log)
	authHandler := handler.NewAuthHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)
	authMiddleware := middleware.Auth(issuer)
	apiLimiter := middleware.RateLimit(store, middleware.APILimit, log)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register,
		middleware.RateLimit(store, middleware.SignupLimit, log),
		middleware.SignupGate(log),
	)
	auth.POST("/login", authHandler.Login,
		middleware.RateLimit(store, middleware.LoginLimit, log),
	)
	auth.DELETE("/account", authHandler.DeleteAccount, authMiddleware, apiLimiter)

	// --- Task routes (bearer token required) ---
	todos := e.Group("/api/todos", authMiddleware, apiLimiter)
	todos.GET("", taskHandler.List)
	todos.POST("", taskHandler.Create)
	todos.PUT("/:id", taskHandler.Update)
	todos.DELETE("/:id", taskHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
