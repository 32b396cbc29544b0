package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/config"
	"github.com/jwalitptl/booking-api/internal/email"
	"github.com/jwalitptl/booking-api/internal/repository/postgres"
	"github.com/jwalitptl/booking-api/internal/service/notification"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	messagingredis "github.com/jwalitptl/booking-api/pkg/messaging/redis"
)

const healthAddr = ":8081"

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

	serviceRepo := postgres.NewServiceRepository(postgres.NewBaseRepository(db))
	mailer := email.NewSMTPSender(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	notifier := notification.NewService(mailer, serviceRepo, cfg.SMTP.ContactEmail, appLogger)

	consumer := messaging.NewConsumer(broker)
	notifier.Register(consumer)

	startHealthServer(db, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Shutting down worker")
		cancel()
	}()

	appLogger.Info("Notification worker started")
	if err := consumer.Run(ctx, messaging.DefaultChannel); err != nil {
		appLogger.Fatal(err, "Consumer stopped with error")
	}
}

func startHealthServer(db *sqlx.DB, appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(healthAddr, mux); err != nil {
			appLogger.Fatal(err, "Health check server failed")
		}
	}()
}

func newLogger(cfg config.LogConfig) *logger.Logger {
	format := "json"
	if cfg.Pretty {
		format = "console"
	}
	return logger.NewLogger(&logger.Config{Level: cfg.Level, Format: format})
}
