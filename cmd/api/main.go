package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/booking-api/internal/config"
	"github.com/jwalitptl/booking-api/internal/database"
	appointmenthandler "github.com/jwalitptl/booking-api/internal/handler/appointment"
	authhandler "github.com/jwalitptl/booking-api/internal/handler/auth"
	cataloghandler "github.com/jwalitptl/booking-api/internal/handler/catalog"
	contacthandler "github.com/jwalitptl/booking-api/internal/handler/contact"
	healthhandler "github.com/jwalitptl/booking-api/internal/handler/health"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/repository/postgres"
	"github.com/jwalitptl/booking-api/internal/router"
	"github.com/jwalitptl/booking-api/internal/schedule"
	appointmentservice "github.com/jwalitptl/booking-api/internal/service/appointment"
	authservice "github.com/jwalitptl/booking-api/internal/service/auth"
	catalogservice "github.com/jwalitptl/booking-api/internal/service/catalog"
	contactservice "github.com/jwalitptl/booking-api/internal/service/contact"
	"github.com/jwalitptl/booking-api/pkg/auth"
	"github.com/jwalitptl/booking-api/pkg/logger"
	messagingredis "github.com/jwalitptl/booking-api/pkg/messaging/redis"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/security"
	"github.com/jwalitptl/booking-api/pkg/worker"
)

const bcryptCost = 12

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := newLogger(cfg.Log)
	log.Logger = appLogger.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(db, appLogger); err != nil {
			appLogger.Fatal(err, "Failed to migrate database")
		}
	}

	policy, err := schedule.New(cfg.Schedule)
	if err != nil {
		appLogger.Fatal(err, "Invalid schedule configuration")
	}

	base := postgres.NewBaseRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	adminRepo := postgres.NewAdminRepository(base)
	sessionRepo := postgres.NewSessionRepository(base)
	contactRepo := postgres.NewContactRepository(base)
	serviceRepo := postgres.NewServiceRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	appMetrics := metrics.NewMetrics(cfg.Metrics.Namespace, "api")

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	hasher := security.NewBcryptHasher(bcryptCost)

	catalogSvc := catalogservice.NewService(serviceRepo, cfg.Catalog.CacheTTL)
	appointmentSvc := appointmentservice.NewService(appointmentRepo, catalogSvc, policy, appMetrics)
	authSvc := authservice.NewService(adminRepo, sessionRepo, jwtSvc, hasher, cfg.JWT.SessionTTL)
	contactSvc := contactservice.NewService(contactRepo)

	bootstrapAdmin(authSvc, cfg.Bootstrap, appLogger)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	appointmentHandler := appointmenthandler.NewHandler(appointmentSvc)
	authHandler := authhandler.NewHandler(authSvc)
	catalogHandler := cataloghandler.NewHandler(catalogSvc)
	contactHandler := contacthandler.NewHandler(contactSvc)
	healthHandler := healthhandler.NewHandler(db)

	r := router.NewRouter(
		authMiddleware,
		authHandler,
		appointmentHandler,
		catalogHandler,
		contactHandler,
		healthHandler,
		router.RouterConfig{
			CORS: corsConfig(cfg.CORS),
			RateLimit: middleware.RateLimitConfig{
				Rate:      rate.Limit(cfg.RateLimit.RPS),
				Burst:     cfg.RateLimit.Burst,
				ClientTTL: cfg.RateLimit.ClientTTL,
			},
			RequestTimeout:  cfg.Server.RequestTimeout,
			MaxBodySize:     cfg.Server.MaxBodyBytes,
			CatalogCacheTTL: cfg.Catalog.CacheTTL,
			MetricsPrefix:   cfg.Metrics.Namespace,
		},
	)
	r.Setup()

	zl := appLogger.Zerolog()
	broker, err := messagingredis.NewBroker(messagingredis.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &zl)
	if err != nil {
		appLogger.Fatal(err, "Failed to connect to redis")
	}
	defer broker.Close()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:    cfg.Outbox.BatchSize,
		PollInterval: cfg.Outbox.PollInterval,
		MaxRetries:   cfg.Outbox.MaxRetries,
	}, appLogger, appMetrics)
	go outboxProcessor.Start(workerCtx)

	cleanupWorker := worker.NewCleanupWorker(sessionRepo, outboxRepo, worker.CleanupConfig{
		Interval:         cfg.Cleanup.Interval,
		SessionRetention: cfg.Cleanup.SessionRetention,
		OutboxRetention:  cfg.Cleanup.OutboxRetention,
	}, appLogger)
	go cleanupWorker.Start(workerCtx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(err, "Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server")

	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal(err, "Server forced to shutdown")
	}

	appLogger.Info("Server exited properly")
}

// bootstrapAdmin seeds the first admin account. Without a configured
// password the admin surface stays unreachable until one is provided.
func bootstrapAdmin(authSvc *authservice.Service, cfg config.BootstrapConfig, appLogger *logger.Logger) {
	if cfg.AdminPassword == "" {
		appLogger.Warn("No bootstrap admin password configured, skipping admin bootstrap")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := authSvc.Bootstrap(ctx, cfg.AdminEmail, cfg.AdminName, cfg.AdminPassword); err != nil {
		appLogger.Fatal(err, "Failed to bootstrap admin account")
	}
}

func newLogger(cfg config.LogConfig) *logger.Logger {
	format := "json"
	if cfg.Pretty {
		format = "console"
	}
	return logger.NewLogger(&logger.Config{Level: cfg.Level, Format: format})
}

func corsConfig(cfg config.CORSConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.AllowedOrigins
	}
	return cors
}
