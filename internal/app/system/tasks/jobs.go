// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	sentnotificationstore "github.com/dalemusser/notifyhub/internal/app/store/sentnotifications"
	"go.uber.org/zap"
)

// Job is a unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// MarkerPruner deletes sent-notification markers older than a cutoff.
type MarkerPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

var _ MarkerPruner = (*sentnotificationstore.Store)(nil)

// SentNotificationCleanupJob creates a job that removes de-duplication
// markers older than retention. Once a marker is gone a replayed event would
// be delivered again, so retention should exceed any upstream replay window.
func SentNotificationCleanupJob(store MarkerPruner, logger *zap.Logger, retention time.Duration) Job {
	return Job{
		Name:     "sent-notification-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			cutoff := time.Now().UTC().Add(-retention)
			count, err := store.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("pruned sent notification markers",
					zap.Int64("count", count),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}
