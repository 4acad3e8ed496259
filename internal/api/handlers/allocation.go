package handlers

import (
	"net/http"
	"time"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/internal/history"
	"github.com/wonny/fiscalrisk/pkg/logger"
)

// AllocationHandler serves the deduction allocator.
type AllocationHandler struct {
	allocator contracts.DeductionAllocator
	recorder  *Recorder
	logger    *logger.Logger
}

// NewAllocationHandler creates a new allocation handler
func NewAllocationHandler(allocator contracts.DeductionAllocator, recorder *Recorder, log *logger.Logger) *AllocationHandler {
	return &AllocationHandler{
		allocator: allocator,
		recorder:  recorder,
		logger:    log,
	}
}

// Allocate splits an investment between the national and regional pools.
// Invalid amounts or unknown regions produce the empty result, not an error.
// POST /api/allocate
func (h *AllocationHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req contracts.AllocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	result := h.allocator.Allocate(r.Context(), req)
	h.recorder.Record(r.Context(), history.KindAllocate, req, result, time.Since(start))

	respondData(w, result)
}
