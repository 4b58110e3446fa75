package background

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredDeleter removes rows whose expiry has passed and reports how many.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupManager periodically sweeps expired pending registrations and
// password-reset tokens. Expired rows are also rejected at read time, so the
// sweep is purely hygiene against unbounded table growth.
type CleanupManager struct {
	pendingRepo ExpiredDeleter
	resetRepo   ExpiredDeleter
	logger      *slog.Logger
	interval    time.Duration
	stopCh      chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	pendingRepo ExpiredDeleter,
	resetRepo ExpiredDeleter,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		pendingRepo: pendingRepo,
		resetRepo:   resetRepo,
		logger:      logger,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// runCleanup sweeps both token tables
func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pendingDeleted, err := cm.pendingRepo.DeleteExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to sweep expired pending registrations", slog.Any("error", err))
	}

	resetDeleted, err := cm.resetRepo.DeleteExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to sweep expired reset tokens", slog.Any("error", err))
	}

	if pendingDeleted > 0 || resetDeleted > 0 {
		cm.logger.Info("expired token sweep completed",
			slog.Int64("pending_deleted", pendingDeleted),
			slog.Int64("reset_deleted", resetDeleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
