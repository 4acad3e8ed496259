package portfolio

import (
	"fmt"
	"slices"
	"strings"

	"github.com/wonny/fiscalrisk/internal/contracts"
)

// checkConstraints reports the advisory constraints the allocation breaks.
// MaxRisk is not checked here: it binds the max-return search directly.
func checkConstraints(assets []contracts.Asset, alloc contracts.PortfolioAllocation, c contracts.PortfolioConstraints) []string {
	warnings := make([]string, 0)

	if c.MinReturn > 0 && alloc.ExpectedReturn < c.MinReturn {
		warnings = append(warnings, fmt.Sprintf("max-Sharpe expected return %.2f%% is below the minimum %.2f%%",
			alloc.ExpectedReturn*100, c.MinReturn*100))
	}

	for i, a := range assets {
		w := alloc.Weights[i]

		if c.MaxConcentration > 0 && w > c.MaxConcentration {
			warnings = append(warnings, fmt.Sprintf("asset %s weight %.2f%% exceeds max concentration %.2f%%",
				a.ID, w*100, c.MaxConcentration*100))
		}
		if len(c.Sectors) > 0 && !allowed(c.Sectors, a.Sector) {
			warnings = append(warnings, fmt.Sprintf("asset %s sector %q is outside the allowed sectors", a.ID, a.Sector))
		}
		if len(c.Regions) > 0 && !allowed(c.Regions, a.Region) {
			warnings = append(warnings, fmt.Sprintf("asset %s region %q is outside the allowed regions", a.ID, a.Region))
		}
	}

	return warnings
}

func allowed(list []string, v string) bool {
	v = strings.TrimSpace(v)
	return slices.ContainsFunc(list, func(s string) bool {
		return strings.EqualFold(strings.TrimSpace(s), v)
	})
}
