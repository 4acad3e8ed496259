package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/fiscalrisk/internal/jurisdiction"
	"github.com/wonny/fiscalrisk/pkg/database"
	"github.com/wonny/fiscalrisk/pkg/redis"
)

// HealthHandler reports service and dependency status.
type HealthHandler struct {
	catalog *jurisdiction.Catalog
	db      *database.DB
	redis   *redis.Client
}

// NewHealthHandler creates a health handler. db and rdb may be nil.
func NewHealthHandler(catalog *jurisdiction.Catalog, db *database.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{catalog: catalog, db: db, redis: rdb}
}

// Health returns server health status
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	deps := map[string]string{
		"database": "disabled",
		"redis":    "disabled",
	}

	if h.db != nil {
		if _, err := h.db.HealthCheck(ctx); err != nil {
			deps["database"] = "unavailable"
			status = "degraded"
		} else {
			deps["database"] = "ok"
		}
	}

	if h.redis.Enabled() {
		if err := h.redis.Redis().Ping(ctx).Err(); err != nil {
			deps["redis"] = "unavailable"
			status = "degraded"
		} else {
			deps["redis"] = "ok"
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       status,
		"service":      "fiscalrisk-api",
		"catalog":      h.catalog.Meta().Version,
		"catalog_hash": h.catalog.Hash(),
		"regions":      h.catalog.Len(),
		"dependencies": deps,
	})
}
