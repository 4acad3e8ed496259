// Package history persists API runs in PostgreSQL. It is optional: a
// repository without a pool returns ErrNotConfigured from every method.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotConfigured is returned when no database pool was provided.
var ErrNotConfigured = errors.New("history: database not configured")

// Kind names the operation a record was produced by.
type Kind string

const (
	KindAllocate Kind = "allocate"
	KindRisk     Kind = "risk"
	KindSimulate Kind = "simulate"
	KindOptimize Kind = "optimize"
)

// Record is one persisted request/response pair.
type Record struct {
	ID          uuid.UUID       `json:"id"`
	Kind        Kind            `json:"kind"`
	CatalogHash string          `json:"catalog_hash"`
	Request     json.RawMessage `json:"request"`
	Response    json.RawMessage `json:"response"`
	Duration    time.Duration   `json:"duration"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewRecord encodes req and resp and stamps a fresh ID.
func NewRecord(kind Kind, catalogHash string, req, resp interface{}, took time.Duration) (Record, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return Record{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	respJSON, err := json.Marshal(resp)
	if err != nil {
		return Record{}, fmt.Errorf("failed to marshal response: %w", err)
	}

	return Record{
		ID:          uuid.New(),
		Kind:        kind,
		CatalogHash: catalogHash,
		Request:     reqJSON,
		Response:    respJSON,
		Duration:    took,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Repository handles run history persistence
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository. pool may be nil.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Enabled reports whether the repository has a pool.
func (r *Repository) Enabled() bool {
	return r != nil && r.pool != nil
}

const schema = `
	CREATE SCHEMA IF NOT EXISTS fiscal;
	CREATE TABLE IF NOT EXISTS fiscal.run_history (
		id           UUID PRIMARY KEY,
		kind         TEXT NOT NULL,
		catalog_hash TEXT NOT NULL,
		request      JSONB NOT NULL,
		response     JSONB NOT NULL,
		duration_ms  BIGINT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS run_history_created_at_idx ON fiscal.run_history (created_at);
`

// EnsureSchema creates the history table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if !r.Enabled() {
		return ErrNotConfigured
	}
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// Save inserts a record
func (r *Repository) Save(ctx context.Context, rec Record) error {
	if !r.Enabled() {
		return ErrNotConfigured
	}

	query := `
		INSERT INTO fiscal.run_history (
			id, kind, catalog_hash, request, response, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, string(rec.Kind), rec.CatalogHash, []byte(rec.Request), []byte(rec.Response),
		rec.Duration.Milliseconds(), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save history record: %w", err)
	}
	return nil
}

// ListRecent returns the newest records first. An empty kind matches all.
func (r *Repository) ListRecent(ctx context.Context, kind Kind, limit int) ([]Record, error) {
	if !r.Enabled() {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, kind, catalog_hash, request, response, duration_ms, created_at
		FROM fiscal.run_history
		WHERE ($1 = '' OR kind = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var (
			rec        Record
			kindStr    string
			req, resp  []byte
			durationMs int64
		)
		if err := rows.Scan(&rec.ID, &kindStr, &rec.CatalogHash, &req, &resp, &durationMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		rec.Kind = Kind(kindStr)
		rec.Request = req
		rec.Response = resp
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}

	return records, rows.Err()
}

// PurgeOlderThan deletes records created before now - age and returns the count.
func (r *Repository) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	if !r.Enabled() {
		return 0, ErrNotConfigured
	}

	cutoff := time.Now().UTC().Add(-age)
	tag, err := r.pool.Exec(ctx, `DELETE FROM fiscal.run_history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge history: %w", err)
	}
	return tag.RowsAffected(), nil
}
