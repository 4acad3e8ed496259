package contracts

import "math"

// Unlimited marks a quota with no ceiling.
var Unlimited = math.Inf(1)

// Quota returns a pointer to v, for building requests with a bounded quota.
func Quota(v float64) *float64 {
	return &v
}

// ProjectProfile describes the company the investor is funding.
type ProjectProfile struct {
	Type     string  `json:"type"`      // free text, e.g. "startup de base tecnologica"
	AgeYears float64 `json:"age_years"` // years since incorporation
	Location string  `json:"location"`  // region ID where the company is registered
}

// AllocationRequest is the input of the deduction allocator.
// A nil quota means the investor's tax liability does not limit that pool.
type AllocationRequest struct {
	TotalInvestment float64         `json:"total_investment"`
	RegionID        string          `json:"region_id"`
	NationalQuota   *float64        `json:"national_quota,omitempty"`
	RegionalQuota   *float64        `json:"regional_quota,omitempty"`
	Profile         *ProjectProfile `json:"project_profile,omitempty"`
}

// NationalQuotaValue resolves the national quota, Unlimited when unset.
func (r AllocationRequest) NationalQuotaValue() float64 {
	return quotaValue(r.NationalQuota)
}

// RegionalQuotaValue resolves the regional quota, Unlimited when unset.
func (r AllocationRequest) RegionalQuotaValue() float64 {
	return quotaValue(r.RegionalQuota)
}

func quotaValue(q *float64) float64 {
	if q == nil || math.IsNaN(*q) {
		return Unlimited
	}
	if *q < 0 {
		return 0
	}
	return *q
}

// Severity classifies an allocation alert.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Alert is an advisory message attached to an allocation. Alerts never block computation.
type Alert struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// ProfileValidation is the eligibility verdict for the regional pool.
type ProfileValidation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// AllocationResult is the allocator output, consumed by the risk model and the simulator.
// It is built once per request and never mutated afterwards.
type AllocationResult struct {
	RegionID             string `json:"region_id"`
	NationallyCompatible bool   `json:"nationally_compatible"`

	NationalInvestment  float64 `json:"national_investment"`
	RegionalInvestment  float64 `json:"regional_investment"`
	TotalUsedInvestment float64 `json:"total_used_investment"`
	UnusedInvestment    float64 `json:"unused_investment"`

	NationalDeduction float64 `json:"national_deduction"`
	RegionalDeduction float64 `json:"regional_deduction"`
	TotalDeduction    float64 `json:"total_deduction"`

	EffectiveFiscalReturn float64 `json:"effective_fiscal_return"` // percent of used investment
	NetCost               float64 `json:"net_cost"`                // may be negative

	ProfileValidation ProfileValidation `json:"profile_validation"`
	Alerts            []Alert           `json:"alerts"`
}

// EmptyAllocation is the canonical result for rejected requests: all zeros, no alerts.
func EmptyAllocation() AllocationResult {
	return AllocationResult{Alerts: []Alert{}}
}

// IsEmpty reports whether r is the canonical empty result.
func (r AllocationResult) IsEmpty() bool {
	return r.RegionID == "" && r.TotalUsedInvestment == 0 && r.UnusedInvestment == 0 && len(r.Alerts) == 0
}

// HasWarnings reports whether any alert is a warning.
func (r AllocationResult) HasWarnings() bool {
	for _, a := range r.Alerts {
		if a.Severity == SeverityWarning {
			return true
		}
	}
	return false
}
