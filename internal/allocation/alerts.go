package allocation

import (
	"fmt"
	"math"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/internal/eligibility"
	"github.com/wonny/fiscalrisk/internal/jurisdiction"
	"github.com/wonny/fiscalrisk/pkg/currency"
)

// minor is the smallest amount worth reporting (one cent).
const minor = 0.005

type alertInput struct {
	rule          jurisdiction.Rule
	req           contracts.AllocationRequest
	result        contracts.AllocationResult
	nationalQuota float64
	nationalReach float64
	regionalQuota float64
	regionalReach float64
	remaining     float64
	stage2        bool
}

// alerts builds the advisory messages. The order is part of the contract.
func (a *Allocator) alerts(in alertInput) []contracts.Alert {
	alerts := make([]contracts.Alert, 0, 4)
	add := func(sev contracts.Severity, format string, args ...interface{}) {
		alerts = append(alerts, contracts.Alert{Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	res := in.result
	rule := in.rule
	profile := in.req.Profile

	if res.UnusedInvestment > minor {
		add(contracts.SeverityWarning, "%s of the investment does not generate any deduction",
			currency.Format(res.UnusedInvestment))
	}

	if !rule.NationallyCompatible {
		add(contracts.SeverityWarning, "%s deduction cannot be combined with the national deduction; only the national pool was applied",
			rule.Name)
	}

	if a.config.NationalCapBase > 0 && res.NationalInvestment >= a.config.NationalCapBase-minor {
		add(contracts.SeverityInfo, "National deduction cap reached (%s eligible base)",
			currency.Format(a.config.NationalCapBase))
	}

	if rule.NationallyCompatible && rule.CapBase > 0 && res.RegionalInvestment >= rule.CapBase-minor {
		add(contracts.SeverityInfo, "%s deduction cap reached (%s eligible base)",
			rule.Name, currency.Format(rule.CapBase))
	}

	// Quota shortfalls are expressed in tax quota, not investment.
	nationalTarget := math.Min(in.req.TotalInvestment, a.config.NationalCapBase)
	if in.nationalReach < nationalTarget-minor {
		shortfall := nationalTarget*a.config.NationalRate - in.nationalQuota
		add(contracts.SeverityWarning, "National tax quota is %s short of using the full national deduction",
			currency.Format(shortfall))
	}

	if rule.NationallyCompatible && in.stage2 {
		regionalTarget := math.Min(in.remaining, rule.CapBase)
		if in.regionalReach < regionalTarget-minor {
			shortfall := regionalTarget*rule.Rate - in.regionalQuota
			add(contracts.SeverityWarning, "Regional tax quota is %s short of using the full %s deduction",
				currency.Format(shortfall), rule.Name)
		}
	}

	if rule.Notes != "" {
		add(contracts.SeverityInfo, "%s", rule.Notes)
	}

	if profile != nil && profile.AgeYears > eligibility.MaxProjectAgeYears {
		add(contracts.SeverityWarning, "Company is %.1f years old; deductions require at most %d years since incorporation",
			profile.AgeYears, eligibility.MaxProjectAgeYears)
	}

	if rule.NationallyCompatible && eligibility.LocationMismatch(profile, rule.ID) {
		add(contracts.SeverityWarning, "Company location %q differs from %s; the regional deduction may not apply",
			profile.Location, rule.Name)
	}

	return alerts
}
