// Package jobs holds the scheduler's maintenance jobs.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/fiscalrisk/internal/history"
	"github.com/wonny/fiscalrisk/pkg/logger"
)

// Purger deletes history older than a given age.
type Purger interface {
	PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// HistoryRetentionJob deletes run history older than the retention window.
type HistoryRetentionJob struct {
	purger   Purger
	ttl      time.Duration
	schedule string
	logger   *logger.Logger
}

// NewHistoryRetentionJob creates a new history retention job
func NewHistoryRetentionJob(purger Purger, ttl time.Duration, schedule string, log *logger.Logger) *HistoryRetentionJob {
	return &HistoryRetentionJob{
		purger:   purger,
		ttl:      ttl,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *HistoryRetentionJob) Name() string {
	return "history_retention"
}

// Schedule returns the configured cron expression
func (j *HistoryRetentionJob) Schedule() string {
	return j.schedule
}

// Run purges expired records. A repository without a database is a no-op.
func (j *HistoryRetentionJob) Run(ctx context.Context) error {
	removed, err := j.purger.PurgeOlderThan(ctx, j.ttl)
	if errors.Is(err, history.ErrNotConfigured) {
		return nil
	}
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"removed":   removed,
		"retention": j.ttl.String(),
	}).Info("History retention completed")

	return nil
}
