package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/internal/eligibility"
	"github.com/wonny/fiscalrisk/internal/jurisdiction"
)

// CatalogHandler serves the jurisdiction catalog and profile checks.
type CatalogHandler struct {
	catalog   *jurisdiction.Catalog
	validator *eligibility.Validator
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *jurisdiction.Catalog) *CatalogHandler {
	return &CatalogHandler{
		catalog:   catalog,
		validator: eligibility.NewValidator(catalog),
	}
}

// ListRegions returns the summary of every region
// GET /api/regions
func (h *CatalogHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	meta := h.catalog.Meta()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    h.catalog.List(),
		"count":   h.catalog.Len(),
		"version": meta.Version,
		"hash":    h.catalog.Hash(),
	})
}

// GetRegion returns the full rule of one region
// GET /api/regions/{id}
func (h *CatalogHandler) GetRegion(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rule, ok := h.catalog.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "region not found: "+id)
		return
	}
	respondData(w, rule)
}

// EligibilityRequest is the body of POST /api/eligibility.
type EligibilityRequest struct {
	RegionID string                    `json:"region_id"`
	Profile  *contracts.ProjectProfile `json:"project_profile"`
}

// CheckEligibility validates a project profile against a region
// POST /api/eligibility
func (h *CatalogHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req EligibilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondData(w, h.validator.Validate(req.Profile, req.RegionID))
}
