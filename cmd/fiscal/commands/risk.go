package commands

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/internal/risk"
	"github.com/wonny/fiscalrisk/pkg/currency"
)

// riskCmd represents the risk command
var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Analyze the risk of an allocated position",
	Long: `Runs the risk model on a position. The position comes either from an
allocation (--investment/--region) or directly from --used/--deduction.
With --max-var or --max-score the command fails when a limit is exceeded.

Example:
  go run ./cmd/fiscal risk --investment 20000 --region madrid
  go run ./cmd/fiscal risk --used 18558 --deduction 8351.1
  go run ./cmd/fiscal risk --investment 20000 --region madrid --max-var 10 --max-score 40`,
	RunE: runRisk,
}

// ErrLimitsExceeded is returned when the analysis breaks an investor limit.
var ErrLimitsExceeded = errors.New("risk limits exceeded")

var (
	usedInvestment float64
	totalDeduction float64
	incompatible   bool
	maxVaR         float64
	maxScore       int
)

func init() {
	rootCmd.AddCommand(riskCmd)

	addAllocationFlags(riskCmd)
	riskCmd.Flags().Float64Var(&usedInvestment, "used", 0, "used investment (skips the allocator)")
	riskCmd.Flags().Float64Var(&totalDeduction, "deduction", 0, "total deduction (with --used)")
	riskCmd.Flags().BoolVar(&incompatible, "incompatible", false, "position cannot be combined with the national deduction (with --used)")
	riskCmd.Flags().Float64Var(&maxVaR, "max-var", 0, "max 95%/3y VaR in percent of used investment (0 = off)")
	riskCmd.Flags().IntVar(&maxScore, "max-score", 0, "max overall risk score (0 = off)")
}

func runRisk(cmd *cobra.Command, args []string) error {
	s, err := loadSession()
	if err != nil {
		return err
	}

	// 1. Resolve the position
	in := risk.Input{
		UsedInvestment:       usedInvestment,
		TotalDeduction:       totalDeduction,
		NationallyCompatible: !incompatible,
	}
	var alloc *contracts.AllocationResult
	if !cmd.Flags().Changed("used") {
		res := s.allocate(cmd.Context(), allocationRequestFromFlags(cmd))
		alloc = &res
		in = risk.InputFromAllocation(res)
	}

	// 2. Analyze
	analysis := risk.NewEngine().AnalyzeInput(in)
	check := risk.CheckLimits(analysis, risk.Limits{MaxVaR95Pct: maxVaR, MaxScore: maxScore})

	s.log.WithFields(map[string]interface{}{
		"used":   in.UsedInvestment,
		"score":  analysis.OverallRiskScore,
		"passed": check.Passed,
	}).Debug("Risk analyzed")

	// 3. Report
	if jsonOutput {
		if err := PrintJSON(map[string]interface{}{
			"allocation":  alloc,
			"analysis":    analysis,
			"limit_check": check,
		}); err != nil {
			return err
		}
	} else {
		PrintRisk(analysis, check)
	}

	if !check.Passed {
		return fmt.Errorf("%w: %v", ErrLimitsExceeded, check.Violations)
	}
	return nil
}

// PrintRisk prints a risk analysis block
func PrintRisk(a *contracts.RiskAnalysis, check *risk.LimitCheck) {
	PrintHeader(fmt.Sprintf("Risk analysis: %d/100 (%s)", a.OverallRiskScore, a.RiskRating))
	PrintMoney("Used investment", a.UsedInvestment)
	PrintMoney("Total deduction", a.TotalDeduction)
	PrintMoney("Net investment", a.NetInvestment)

	PrintSeparator()
	fmt.Println("  Value at Risk")
	for _, key := range sortedKeys(a.ValueAtRisk) {
		v := a.ValueAtRisk[key]
		es := a.ExpectedShortfall[key]
		fmt.Printf("    %-8s VaR %12s (%6.2f%%)   ES %12s\n", key, currency.Format(v.Amount), v.Percentage, currency.Format(es.Amount))
	}

	PrintSeparator()
	fmt.Println("  Stress tests")
	for _, key := range sortedKeys(a.StressTests) {
		st := a.StressTests[key]
		fmt.Printf("    %-24s %12s (%6.2f%%)  %s\n", key, currency.Format(st.TotalLoss), st.LossPercentage, st.Severity)
	}

	if len(a.MitigationStrategies) > 0 {
		PrintSeparator()
		fmt.Println("  Mitigation")
		for _, m := range a.MitigationStrategies {
			fmt.Printf("    [%-6s] %s: %s\n", m.Priority, m.Strategy, m.Description)
		}
	}

	if check != nil && !check.Passed {
		PrintSeparator()
		for _, v := range check.Violations {
			fmt.Printf("  ❌ %s\n", v)
		}
	}
	PrintDoubleSeparator()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
