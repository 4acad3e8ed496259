package portfolio

import (
	"github.com/wonny/fiscalrisk/internal/contracts"
)

// BasketAssumptions are the market figures given to the synthetic positions.
type BasketAssumptions struct {
	Volatility     float64
	ExpectedReturn float64
	HoldingYears   float64 // spreads the one-off deduction into an annual return
	Sector         string
	Stage          contracts.Stage
}

// DefaultBasketAssumptions match the risk model's market assumptions.
func DefaultBasketAssumptions() BasketAssumptions {
	return BasketAssumptions{
		Volatility:     0.35,
		ExpectedReturn: 0.25,
		HoldingYears:   3,
		Sector:         "startup",
		Stage:          contracts.StageSeed,
	}
}

// Synthetic asset IDs.
const (
	NationalPoolAsset = "national_pool"
	RegionalPoolAsset = "regional_pool"
)

// BasketFromAllocation turns an allocation into one asset per funded pool, so
// the optimizer can weigh the national position against the regional one.
// An empty allocation yields an empty basket.
func BasketFromAllocation(res contracts.AllocationResult, a BasketAssumptions) []contracts.Asset {
	if a.HoldingYears <= 0 {
		a.HoldingYears = 1
	}

	basket := make([]contracts.Asset, 0, 2)
	if res.NationalInvestment > 0 {
		basket = append(basket, contracts.Asset{
			ID:             NationalPoolAsset,
			Volatility:     a.Volatility,
			Sector:         a.Sector,
			Region:         "national",
			Stage:          a.Stage,
			ExpectedReturn: a.ExpectedReturn,
			FiscalReturn:   res.NationalDeduction / res.NationalInvestment / a.HoldingYears,
		})
	}
	if res.RegionalInvestment > 0 {
		basket = append(basket, contracts.Asset{
			ID:             RegionalPoolAsset,
			Volatility:     a.Volatility,
			Sector:         a.Sector,
			Region:         res.RegionID,
			Stage:          a.Stage,
			ExpectedReturn: a.ExpectedReturn,
			FiscalReturn:   res.RegionalDeduction / res.RegionalInvestment / a.HoldingYears,
		})
	}
	return basket
}
