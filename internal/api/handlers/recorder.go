package handlers

import (
	"context"
	"time"

	"github.com/wonny/fiscalrisk/internal/history"
	"github.com/wonny/fiscalrisk/pkg/logger"
)

// Recorder writes runs to the history repository. History is best effort:
// failures are logged and never reach the client.
type Recorder struct {
	repo        *history.Repository
	catalogHash string
	logger      *logger.Logger
}

// NewRecorder creates a recorder. A nil or disabled repository records nothing.
func NewRecorder(repo *history.Repository, catalogHash string, log *logger.Logger) *Recorder {
	return &Recorder{repo: repo, catalogHash: catalogHash, logger: log}
}

// Record persists one request/response pair.
func (rec *Recorder) Record(ctx context.Context, kind history.Kind, req, resp interface{}, took time.Duration) {
	if rec == nil || !rec.repo.Enabled() {
		return
	}

	record, err := history.NewRecord(kind, rec.catalogHash, req, resp, took)
	if err != nil {
		rec.logger.WithError(err).WithField("kind", string(kind)).Warn("Failed to encode history record")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := rec.repo.Save(ctx, record); err != nil {
		rec.logger.WithError(err).WithField("kind", string(kind)).Warn("Failed to save history record")
	}
}
