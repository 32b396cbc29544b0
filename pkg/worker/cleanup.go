package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/logger"
)

type CleanupConfig struct {
	Interval         time.Duration
	SessionRetention time.Duration
	OutboxRetention  time.Duration
}

// CleanupWorker deletes expired admin sessions and delivered outbox
// rows on a fixed interval so neither table grows without bound.
type CleanupWorker struct {
	sessions repository.SessionRepository
	outbox   repository.OutboxRepository
	config   CleanupConfig
	logger   *logger.Logger
}

func NewCleanupWorker(
	sessions repository.SessionRepository,
	outbox repository.OutboxRepository,
	config CleanupConfig,
	logger *logger.Logger,
) *CleanupWorker {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	return &CleanupWorker{
		sessions: sessions,
		outbox:   outbox,
		config:   config,
		logger:   logger,
	}
}

func (w *CleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.logger.Info("Starting cleanup worker")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Shutting down cleanup worker")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cleanup sweep. A retention of zero disables
// the corresponding sweep.
func (w *CleanupWorker) RunOnce(ctx context.Context) {
	now := time.Now()

	if w.config.SessionRetention > 0 {
		cutoff := now.Add(-w.config.SessionRetention)
		removed, err := w.sessions.DeleteInactiveBefore(ctx, cutoff)
		if err != nil {
			w.logger.Error(err, "Failed to delete inactive sessions")
		} else if removed > 0 {
			w.logger.Info("Deleted inactive sessions", "count", removed)
		}
	}

	if w.config.OutboxRetention > 0 {
		cutoff := now.Add(-w.config.OutboxRetention)
		removed, err := w.outbox.DeleteProcessedBefore(ctx, cutoff)
		if err != nil {
			w.logger.Error(err, "Failed to delete processed outbox events")
		} else if removed > 0 {
			w.logger.Info("Deleted processed outbox events", "count", removed)
		}
	}
}
