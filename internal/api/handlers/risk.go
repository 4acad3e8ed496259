package handlers

import (
	"net/http"
	"time"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/internal/history"
	"github.com/wonny/fiscalrisk/internal/risk"
	"github.com/wonny/fiscalrisk/pkg/logger"
	"github.com/wonny/fiscalrisk/pkg/redis"
)

// RiskHandler serves the risk model. Analyses are deterministic, so they are
// cached by request hash when Redis is enabled.
type RiskHandler struct {
	engine      *risk.Engine
	allocator   contracts.DeductionAllocator
	cache       *redis.Cache
	catalogHash string
	recorder    *Recorder
	logger      *logger.Logger
}

// NewRiskHandler creates a new risk handler
func NewRiskHandler(engine *risk.Engine, allocator contracts.DeductionAllocator, cache *redis.Cache, catalogHash string, recorder *Recorder, log *logger.Logger) *RiskHandler {
	return &RiskHandler{
		engine:      engine,
		allocator:   allocator,
		cache:       cache,
		catalogHash: catalogHash,
		recorder:    recorder,
		logger:      log,
	}
}

// RiskRequest is the body of POST /api/risk. When Allocation is set the
// position is taken from its result and the direct amounts are ignored.
type RiskRequest struct {
	UsedInvestment       float64                      `json:"used_investment"`
	TotalDeduction       float64                      `json:"total_deduction"`
	NationallyCompatible *bool                        `json:"nationally_compatible,omitempty"`
	Allocation           *contracts.AllocationRequest `json:"allocation,omitempty"`
	Limits               *risk.Limits                 `json:"limits,omitempty"`
}

// RiskResponse wraps the analysis with the optional limit verdict.
type RiskResponse struct {
	Analysis   *contracts.RiskAnalysis     `json:"analysis"`
	Allocation *contracts.AllocationResult `json:"allocation,omitempty"`
	LimitCheck *risk.LimitCheck            `json:"limit_check,omitempty"`
}

// Analyze runs the risk model
// POST /api/risk
func (h *RiskHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RiskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()

	// 1. Resolve the position
	var resp RiskResponse
	in := risk.Input{
		UsedInvestment:       req.UsedInvestment,
		TotalDeduction:       req.TotalDeduction,
		NationallyCompatible: req.NationallyCompatible == nil || *req.NationallyCompatible,
	}
	if req.Allocation != nil {
		alloc := h.allocator.Allocate(ctx, *req.Allocation)
		resp.Allocation = &alloc
		in = risk.InputFromAllocation(alloc)
	}

	// 2. Analyze, through the cache
	analysis, hit, err := h.analyze(r, in)
	if err != nil {
		h.logger.WithError(err).Error("Risk analysis failed")
		respondError(w, http.StatusInternalServerError, "risk analysis failed")
		return
	}
	resp.Analysis = analysis

	// 3. Investor limits
	if req.Limits != nil {
		resp.LimitCheck = risk.CheckLimits(analysis, *req.Limits)
	}

	h.recorder.Record(ctx, history.KindRisk, req, resp, time.Since(start))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    resp,
		"cached":  hit,
	})
}

func (h *RiskHandler) analyze(r *http.Request, in risk.Input) (*contracts.RiskAnalysis, bool, error) {
	hash, err := redis.RequestHash(in)
	if err != nil {
		return nil, false, err
	}

	return redis.GetOrCompute(r.Context(), h.cache, redis.RiskKey(h.catalogHash, hash), redis.TTLLong,
		func() (*contracts.RiskAnalysis, error) {
			return h.engine.AnalyzeInput(in), nil
		})
}
