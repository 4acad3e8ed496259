package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/internal/portfolio"
)

// optimizeCmd represents the optimize command
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize portfolio weights over a basket of investments",
	Long: `Approximates the max-Sharpe, min-variance and max-return portfolios and
the efficient frontier. The basket is read from a JSON file (--assets) or
derived from an allocation (--investment/--region), one asset per funded pool.

Example:
  go run ./cmd/fiscal optimize --investment 20000 --region madrid
  go run ./cmd/fiscal optimize --assets basket.json --max-risk 0.3 --max-concentration 0.5`,
	RunE: runOptimize,
}

var (
	assetsFile    string
	constraints   contracts.PortfolioConstraints
	optimizerSeed int64
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	addAllocationFlags(optimizeCmd)
	optimizeCmd.Flags().StringVar(&assetsFile, "assets", "", "JSON file with an array of assets")
	optimizeCmd.Flags().Float64Var(&constraints.MaxRisk, "max-risk", 0, "volatility cap for the max-return portfolio (fraction)")
	optimizeCmd.Flags().Float64Var(&constraints.MinReturn, "min-return", 0, "advisory return floor (fraction)")
	optimizeCmd.Flags().Float64Var(&constraints.MaxConcentration, "max-concentration", 0, "advisory cap per weight (fraction)")
	optimizeCmd.Flags().StringSliceVar(&constraints.Sectors, "sectors", nil, "advisory sector allow-list")
	optimizeCmd.Flags().StringSliceVar(&constraints.Regions, "regions", nil, "advisory region allow-list")
	optimizeCmd.Flags().Int64Var(&optimizerSeed, "seed", 0, "search seed (0 = OPTIMIZER_SEED)")
}

func loadAssets(path string) ([]contracts.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assets: %w", err)
	}

	var assets []contracts.Asset
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, fmt.Errorf("parse assets: %w", err)
	}
	return assets, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	s, err := loadSession()
	if err != nil {
		return err
	}

	// 1. Basket
	var assets []contracts.Asset
	if assetsFile != "" {
		if assets, err = loadAssets(assetsFile); err != nil {
			return err
		}
	} else {
		res := s.allocate(cmd.Context(), allocationRequestFromFlags(cmd))
		assets = portfolio.BasketFromAllocation(res, portfolio.DefaultBasketAssumptions())
	}

	// 2. Optimize
	cfg := portfolio.ConfigFrom(s.cfg.Optimizer)
	if optimizerSeed != 0 {
		cfg.Seed = optimizerSeed
	}
	result, err := portfolio.NewOptimizer(cfg, s.log).Optimize(cmd.Context(), assets, constraints)
	if err != nil {
		return err
	}

	if jsonOutput {
		return PrintJSON(result)
	}

	PrintPortfolio(result)
	return nil
}

// PrintPortfolio prints the optimized portfolios side by side
func PrintPortfolio(r *contracts.PortfolioResult) {
	PrintHeader(fmt.Sprintf("Portfolio optimization: %d assets", len(r.AssetIDs)))
	fmt.Printf("  %-20s %10s %10s %10s %10s\n", "ASSET", "E[R]", "SHARPE", "MIN-VAR", "MAX-RET")
	for i, id := range r.AssetIDs {
		fmt.Printf("  %-20s %9.2f%% %9.1f%% %9.1f%% %9.1f%%\n", id, r.ExpectedReturns[i]*100,
			r.MaxSharpe.Weights[i]*100, r.MinVariance.Weights[i]*100, r.MaxReturn.Weights[i]*100)
	}

	PrintSeparator()
	for _, row := range []struct {
		name string
		a    contracts.PortfolioAllocation
	}{
		{"Max Sharpe", r.MaxSharpe},
		{"Min variance", r.MinVariance},
		{"Max return", r.MaxReturn},
	} {
		fmt.Printf("  %-14s return %6.2f%%  volatility %6.2f%%  sharpe %6.3f\n",
			row.name, row.a.ExpectedReturn*100, row.a.Risk.Volatility*100, row.a.SharpeRatio)
	}

	PrintSeparator()
	d := r.DiversificationMetrics
	PrintField("Effective assets", fmt.Sprintf("%.2f", d.EffectiveNumberOfAssets))
	PrintField("Herfindahl index", fmt.Sprintf("%.3f", d.HerfindahlIndex))
	PrintField("Frontier points", len(r.EfficientFrontier))

	if len(r.Warnings) > 0 {
		PrintWarning(strings.Join(r.Warnings, "\n   "))
	}
	PrintDoubleSeparator()
}
