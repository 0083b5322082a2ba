package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/core/port"
	"github.com/arklim/commerce-platform-auth/internal/infra/config"
	"github.com/arklim/commerce-platform-auth/internal/infra/database"
	kafkainfra "github.com/arklim/commerce-platform-auth/internal/infra/kafka"
	"github.com/arklim/commerce-platform-auth/internal/infra/logger"
	redisinfra "github.com/arklim/commerce-platform-auth/internal/infra/redis"
	"github.com/arklim/commerce-platform-auth/internal/infra/security"
	"github.com/arklim/commerce-platform-auth/internal/infra/telemetry"
	"github.com/arklim/commerce-platform-auth/internal/repository/memory"
	postgresrepo "github.com/arklim/commerce-platform-auth/internal/repository/postgres"
	redisrepo "github.com/arklim/commerce-platform-auth/internal/repository/redis"
	"github.com/arklim/commerce-platform-auth/internal/transport/http/middleware"
	"github.com/arklim/commerce-platform-auth/internal/transport/http/routes"
	"github.com/arklim/commerce-platform-auth/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	tracer   *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if _, err := telemetry.Attach(ctx, cfg); err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var tracer *telemetry.TracerProvider
	if cfg.Telemetry.OTLPEndpoint != "" {
		tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	app := &Application{cfg: cfg, logger: log, tracer: tracer}

	accounts, err := app.buildAccountStore(ctx)
	if err != nil {
		return nil, err
	}

	eventLog, err := app.buildEventLog(ctx)
	if err != nil {
		return nil, err
	}

	auditPublisher := app.buildAuditPublisher()

	recorder := usecase.NewEventRecorder(eventLog, auditPublisher, log)

	policy := security.NewPasswordPolicy(security.PasswordPolicyConfig{
		MinLength: cfg.Password.MinLength,
		MinAge:    cfg.Password.MinAge,
		MinScore:  cfg.Password.MinScore,
	})
	lockout := domain.NewLockoutPolicy(cfg.Lockout.MaxAttempts, cfg.Lockout.LockDuration)

	authService := usecase.NewAuthService(accounts, lockout, recorder, log)
	registrationService := usecase.NewRegistrationService(accounts, policy, recorder, log)
	passwordService := usecase.NewPasswordService(accounts, policy, recorder, log)
	recoveryService := usecase.NewRecoveryService(accounts, policy, recorder, log)
	authzEngine := usecase.NewAuthorizationEngine(accounts, recorder, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	deps := routes.Dependencies{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics,
		Services: routes.ServiceSet{
			Auth:          authService,
			Registration:  registrationService,
			Password:      passwordService,
			Recovery:      recoveryService,
			Authorization: authzEngine,
			Events:        recorder,
		},
	}
	if app.pool != nil {
		deps.Database = app.pool
	}
	if app.redis != nil {
		deps.Cache = app.redis
	}

	app.engine = routes.Register(deps)

	return app, nil
}

// buildAccountStore picks the account backend from storage.accounts.
func (a *Application) buildAccountStore(ctx context.Context) (port.AccountStore, error) {
	switch a.cfg.Storage.Accounts {
	case "", "memory":
		a.logger.Info("using in-memory account store")
		return memory.NewAccountStore(), nil
	case "postgres":
		pool, err := a.postgresPool(ctx)
		if err != nil {
			return nil, err
		}
		return postgresrepo.NewAccountStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown account storage driver %q", a.cfg.Storage.Accounts)
	}
}

// buildEventLog picks the event log backend from storage.events.
func (a *Application) buildEventLog(ctx context.Context) (port.SecurityEventLog, error) {
	retention := a.cfg.Events.Retention
	if retention <= 0 {
		retention = domain.EventRetentionLimit
	}

	switch a.cfg.Storage.Events {
	case "", "memory":
		a.logger.Info("using in-memory security event log")
		return memory.NewEventLog(retention), nil
	case "redis":
		client, err := redisinfra.NewClient(a.cfg.Redis, a.logger)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.redis = client
		return redisrepo.NewEventLog(client.Client(), retention), nil
	case "postgres":
		pool, err := a.postgresPool(ctx)
		if err != nil {
			return nil, err
		}
		return postgresrepo.NewEventLog(pool, retention), nil
	default:
		return nil, fmt.Errorf("unknown event storage driver %q", a.cfg.Storage.Events)
	}
}

// buildAuditPublisher wires Kafka when brokers are configured and degrades to
// the logging stub otherwise. Audit delivery stays best effort either way.
func (a *Application) buildAuditPublisher() port.AuditPublisher {
	if len(a.cfg.Kafka.Brokers) == 0 {
		a.logger.Info("kafka brokers not configured, using stub audit publisher")
		return kafkainfra.NewStubPublisher(a.logger)
	}

	producer, err := kafkainfra.NewProducer(a.cfg.Kafka, a.logger)
	if err != nil {
		a.logger.Warn("failed to init kafka producer, using stub audit publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(a.logger)
	}

	a.producer = producer
	a.logger.Info("kafka audit publisher initialized", zap.Strings("brokers", a.cfg.Kafka.Brokers))
	return kafkainfra.NewAuditPublisher(producer, a.cfg.App, a.logger)
}

// postgresPool lazily creates the shared pool so both stores reuse one.
func (a *Application) postgresPool(ctx context.Context) (*pgxpool.Pool, error) {
	if a.pool != nil {
		return a.pool, nil
	}
	pool, err := database.NewPostgresPool(ctx, a.cfg.Postgres, a.logger)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	a.pool = pool
	return pool, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			if err := a.tracer.Shutdown(context.Background()); err != nil {
				a.logger.Warn("tracer shutdown", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting auth API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
