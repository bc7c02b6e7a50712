package session

import (
	"context"
	"log/slog"
	"time"
)

const (
	// DefaultRetentionDays is the default number of days to retain sessions.
	DefaultRetentionDays = 30
	// DefaultCleanupInterval is the default interval between cleanup runs.
	DefaultCleanupInterval = 24 * time.Hour
)

// CleanupConfig holds configuration for the cleanup job.
type CleanupConfig struct {
	RetentionDays   int           // Number of days to retain sessions (default: 30)
	CleanupInterval time.Duration // Interval between cleanup runs (default: 24h)
}

// DefaultCleanupConfig returns the default cleanup configuration.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		RetentionDays:   DefaultRetentionDays,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// SessionCleanupJob periodically removes expired sessions.
type SessionCleanupJob struct {
	sessionSvc SessionService
	config     CleanupConfig
}

// NewSessionCleanupJob creates a new cleanup job.
func NewSessionCleanupJob(svc SessionService, config CleanupConfig) *SessionCleanupJob {
	if config.RetentionDays <= 0 {
		config.RetentionDays = DefaultRetentionDays
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCleanupInterval
	}

	return &SessionCleanupJob{
		sessionSvc: svc,
		config:     config,
	}
}

// RunOnce executes a single cleanup run immediately.
func (j *SessionCleanupJob) RunOnce(ctx context.Context) (int64, error) {
	return j.sessionSvc.CleanupExpired(ctx, j.config.RetentionDays)
}

// Run cleans up once, then on every interval until ctx is done.
// Cleanup failures are logged; Run only returns when ctx is cancelled.
func (j *SessionCleanupJob) Run(ctx context.Context) error {
	slog.Info("session cleanup job started",
		"retention_days", j.config.RetentionDays,
		"interval", j.config.CleanupInterval)

	ticker := time.NewTicker(j.config.CleanupInterval)
	defer ticker.Stop()

	j.runLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("session cleanup job stopped")
			return nil
		case <-ticker.C:
			j.runLogged(ctx)
		}
	}
}

func (j *SessionCleanupJob) runLogged(ctx context.Context) {
	deleted, err := j.RunOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("session cleanup failed", "error", err)
		}
		return
	}
	if deleted > 0 {
		slog.Info("session cleanup completed", "deleted", deleted)
	}
}
