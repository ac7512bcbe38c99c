package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/digiticket/digiticket/docs"
	"github.com/digiticket/digiticket/internal/api/handler"
	"github.com/digiticket/digiticket/internal/api/middleware"
	"github.com/digiticket/digiticket/internal/core/service"
	"github.com/digiticket/digiticket/internal/infrastructure/config"
	mongostore "github.com/digiticket/digiticket/internal/infrastructure/db/mongo"
	redisstore "github.com/digiticket/digiticket/internal/infrastructure/db/redis"
	"github.com/digiticket/digiticket/internal/infrastructure/security"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(client *mongo.Client, db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("digiticket"))

	// --- Dependencies ---
	store := mongostore.NewCredentialStore(client, db)
	emailCache := redisstore.NewEmailCache(rdb)
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL())

	authService := service.NewAuthService(store, emailCache, hasher, tokens, log)
	userService := service.NewUserService(store, emailCache, hasher, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	authMiddleware := middleware.Auth(tokens)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.RegisterClient)
	e.POST("/auth/login", authHandler.Login)

	// --- Account self-management (authenticated) ---
	users := e.Group("/users", authMiddleware)
	users.GET("/me", userHandler.Me)
	users.PUT("/me/password", userHandler.ChangePassword)
	users.DELETE("/me", userHandler.Deactivate)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	return e
}
