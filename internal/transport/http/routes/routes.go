package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/infra/config"
	"github.com/arklim/commerce-platform-auth/internal/transport/http/handlers"
	"github.com/arklim/commerce-platform-auth/internal/transport/http/middleware"
	"github.com/arklim/commerce-platform-auth/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Registration  *usecase.RegistrationService
	Password      *usecase.PasswordService
	Recovery      *usecase.RecoveryService
	Authorization *usecase.AuthorizationEngine
	Events        *usecase.EventRecorder
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Metrics  *middleware.HTTPMetrics
	Services ServiceSet
	Database DatabaseChecker
	Cache    CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Services.Registration)
		authHandler.RegisterRoutes(authGroup)

		passwordHandler := handlers.NewPasswordHandler(deps.Services.Password)
		passwordGroup := api.Group("/password")
		passwordGroup.POST("/change", passwordHandler.ChangePassword)

		recoveryHandler := handlers.NewRecoveryHandler(deps.Services.Recovery)
		recoveryGroup := api.Group("/recovery")
		recoveryHandler.RegisterRoutes(recoveryGroup)

		authzHandler := handlers.NewAuthzHandler(deps.Services.Authorization)
		authzGroup := api.Group("/authz")
		authzHandler.RegisterRoutes(authzGroup)

		// The event log is operator-only; a forged role header cannot pass
		// because the engine re-reads the stored role for the identifier.
		adminGroup := api.Group("/admin")
		adminGroup.Use(middleware.RequireAuthorization(
			deps.Services.Authorization,
			nil,
			[]domain.Permission{domain.PermissionManageUsers},
		))
		eventsHandler := handlers.NewEventsHandler(deps.Services.Events)
		eventsHandler.RegisterRoutes(adminGroup)
	}

	return r
}
