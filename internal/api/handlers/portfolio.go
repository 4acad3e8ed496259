package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/internal/history"
	"github.com/wonny/fiscalrisk/internal/portfolio"
	"github.com/wonny/fiscalrisk/pkg/logger"
	"github.com/wonny/fiscalrisk/pkg/redis"
)

// PortfolioHandler serves the optimizer. Results are cached per seed.
type PortfolioHandler struct {
	optimizer *portfolio.Optimizer
	allocator contracts.DeductionAllocator
	cache     *redis.Cache
	seed      int64
	recorder  *Recorder
	logger    *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(optimizer *portfolio.Optimizer, allocator contracts.DeductionAllocator, cache *redis.Cache, seed int64, recorder *Recorder, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		optimizer: optimizer,
		allocator: allocator,
		cache:     cache,
		seed:      seed,
		recorder:  recorder,
		logger:    log,
	}
}

// OptimizeRequest is the body of POST /api/optimize. Without explicit assets
// the basket is derived from Allocation.
type OptimizeRequest struct {
	Assets      []contracts.Asset              `json:"assets,omitempty"`
	Allocation  *contracts.AllocationRequest   `json:"allocation,omitempty"`
	Constraints contracts.PortfolioConstraints `json:"constraints"`
}

// Optimize computes the max-Sharpe, min-variance and max-return portfolios
// POST /api/optimize
func (h *PortfolioHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req OptimizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()

	assets := req.Assets
	if len(assets) == 0 && req.Allocation != nil {
		alloc := h.allocator.Allocate(ctx, *req.Allocation)
		assets = portfolio.BasketFromAllocation(alloc, portfolio.DefaultBasketAssumptions())
	}

	hash, err := redis.RequestHash(struct {
		Assets      []contracts.Asset              `json:"assets"`
		Constraints contracts.PortfolioConstraints `json:"constraints"`
	}{assets, req.Constraints})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, hit, err := redis.GetOrCompute(ctx, h.cache, redis.OptimizeKey(h.seed, hash), redis.TTLMedium,
		func() (*contracts.PortfolioResult, error) {
			return h.optimizer.Optimize(ctx, assets, req.Constraints)
		})
	switch {
	case errors.Is(err, portfolio.ErrNoAssets), errors.Is(err, portfolio.ErrInvalidAsset):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.WithError(err).WithField("assets", len(assets)).Error("Portfolio optimization failed")
		respondError(w, http.StatusInternalServerError, "portfolio optimization failed")
		return
	}

	h.recorder.Record(ctx, history.KindOptimize, req, result, time.Since(start))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
		"cached":  hit,
	})
}
