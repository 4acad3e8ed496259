// Package allocation splits an investment between the national and regional deduction pools.
package allocation

import (
	"context"
	"math"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/internal/eligibility"
	"github.com/wonny/fiscalrisk/internal/jurisdiction"
	"github.com/wonny/fiscalrisk/pkg/config"
	"github.com/wonny/fiscalrisk/pkg/logger"
)

// Config holds the national pool parameters.
type Config struct {
	NationalRate    float64 // 0.0 ~ 1.0
	NationalCapBase float64 // max investment base for the national deduction
	MinInvestment   float64 // smaller requests are rejected
}

// DefaultConfig returns the national parameters used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		NationalRate:    0.5,
		NationalCapBase: 100000,
		MinInvestment:   1000,
	}
}

// ConfigFrom maps the service configuration.
func ConfigFrom(cfg config.FiscalConfig) Config {
	return Config{
		NationalRate:    cfg.NationalRate,
		NationalCapBase: cfg.NationalCapBase,
		MinInvestment:   cfg.MinInvestment,
	}
}

// Allocator implements the two-stage deduction split. It holds no request state.
type Allocator struct {
	config  Config
	catalog *jurisdiction.Catalog
	logger  *logger.Logger
}

// NewAllocator creates an allocator over catalog.
func NewAllocator(config Config, catalog *jurisdiction.Catalog, log *logger.Logger) *Allocator {
	if log == nil {
		log = logger.Nop()
	}
	return &Allocator{
		config:  config,
		catalog: catalog,
		logger:  log.Component("allocation"),
	}
}

// Allocate computes the split. Invalid requests yield contracts.EmptyAllocation, never an error.
func (a *Allocator) Allocate(ctx context.Context, req contracts.AllocationRequest) contracts.AllocationResult {
	total := req.TotalInvestment
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 || total < a.config.MinInvestment {
		return contracts.EmptyAllocation()
	}

	rule, ok := a.catalog.Get(req.RegionID)
	if !ok {
		return contracts.EmptyAllocation()
	}

	// 1. National pool
	nationalQuota := req.NationalQuotaValue()
	nationalReach := quotaReach(nationalQuota, a.config.NationalRate)
	nationalInv := math.Min(total, math.Min(nationalReach, a.config.NationalCapBase))
	nationalDed := nationalInv * a.config.NationalRate

	// 2. Profile
	validation := a.validateProfile(rule, req.Profile)

	// 3. Regional pool
	remaining := total - nationalInv
	regionalQuota := req.RegionalQuotaValue()
	regionalReach := quotaReach(regionalQuota, rule.Rate)
	stage2 := remaining > 0 && rule.NationallyCompatible && rule.Rate > 0 && validation.Valid

	var regionalInv, regionalDed float64
	if stage2 {
		regionalInv = math.Min(remaining, math.Min(regionalReach, rule.CapBase))
		regionalDed = regionalInv * rule.Rate
	}

	// 4. Totals
	used := nationalInv + regionalInv
	deduction := nationalDed + regionalDed
	var effective float64
	if used > 0 {
		effective = deduction / used * 100
	}

	result := contracts.AllocationResult{
		RegionID:              rule.ID,
		NationallyCompatible:  rule.NationallyCompatible,
		NationalInvestment:    nationalInv,
		RegionalInvestment:    regionalInv,
		TotalUsedInvestment:   used,
		UnusedInvestment:      total - used,
		NationalDeduction:     nationalDed,
		RegionalDeduction:     regionalDed,
		TotalDeduction:        deduction,
		EffectiveFiscalReturn: effective,
		NetCost:               used - deduction,
		ProfileValidation:     validation,
	}

	// 5. Alerts
	result.Alerts = a.alerts(alertInput{
		rule:          rule,
		req:           req,
		result:        result,
		nationalQuota: nationalQuota,
		nationalReach: nationalReach,
		regionalQuota: regionalQuota,
		regionalReach: regionalReach,
		remaining:     remaining,
		stage2:        stage2,
	})

	a.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"region":    rule.ID,
		"national":  nationalInv,
		"regional":  regionalInv,
		"deduction": deduction,
		"alerts":    len(result.Alerts),
	}).Debug("Allocation computed")

	return result
}

// validateProfile applies the accepted-profile match. A missing profile, or a
// region with no accepted profiles, is valid.
func (a *Allocator) validateProfile(rule jurisdiction.Rule, profile *contracts.ProjectProfile) contracts.ProfileValidation {
	if profile == nil || len(rule.AcceptedProfiles) == 0 {
		return contracts.ProfileValidation{Valid: true}
	}
	if !eligibility.MatchesProfile(rule, profile.Type) {
		return contracts.ProfileValidation{Message: eligibility.RequiredProfilesMessage(rule)}
	}
	return contracts.ProfileValidation{Valid: true, Message: "project profile accepted"}
}

// quotaReach is the investment that exhausts quota at rate.
func quotaReach(quota, rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return quota / rate
}
