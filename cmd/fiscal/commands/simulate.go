package commands

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/internal/simulation"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a Monte Carlo simulation of the investment value",
	Long: `Simulates the investment value over yearly steps of geometric Brownian
motion. Return and volatility are annual percentages. The run is bounded by
SIMULATION_TIMEOUT.

Example:
  go run ./cmd/fiscal simulate --investment 10000 --return 8 --volatility 20 --years 5
  go run ./cmd/fiscal simulate --investment 10000 --return 25 --volatility 35 --years 3 --iterations 50000 --seed 42`,
	RunE: runSimulate,
}

var simParams contracts.SimulationParameters

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().Float64Var(&simParams.Investment, "investment", 10000, "initial investment")
	simulateCmd.Flags().Float64Var(&simParams.ExpectedReturn, "return", 8, "expected annual return in percent")
	simulateCmd.Flags().Float64Var(&simParams.Volatility, "volatility", 20, "annual volatility in percent")
	simulateCmd.Flags().IntVar(&simParams.Years, "years", 5, "simulated years")
	simulateCmd.Flags().IntVar(&simParams.Iterations, "iterations", 10000, "number of trials")
	simulateCmd.Flags().IntVar(&simParams.Bins, "bins", 0, "histogram bins (0 = SIMULATION_BINS)")
	simulateCmd.Flags().Int64Var(&simParams.Seed, "seed", 0, "random seed (0 = time seeded)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	s, err := loadSession()
	if err != nil {
		return err
	}

	simulator := simulation.NewSimulator(simulation.ConfigFrom(s.cfg.Simulation), s.log)
	runner := simulation.NewRunner(simulator, simulation.RunnerConfigFrom(s.cfg.Simulation), s.log)

	result, err := runner.Run(cmd.Context(), simParams)
	if err != nil {
		return err
	}

	if jsonOutput {
		return PrintJSON(result)
	}

	PrintSimulation(result)
	return nil
}

// PrintSimulation prints a simulation summary. Raw outcomes are omitted.
func PrintSimulation(r *contracts.SimulationResult) {
	p := r.Parameters
	PrintHeader(fmt.Sprintf("Monte Carlo: %d trials over %d years", p.Iterations, p.Years))
	PrintMoney("Investment", p.Investment)
	PrintMoney("Mean", r.Statistics.Mean)
	PrintMoney("Median", r.Statistics.Median)
	PrintMoney("Std deviation", r.Statistics.StandardDeviation)
	PrintMoney("Min", r.Statistics.Min)
	PrintMoney("Max", r.Statistics.Max)

	PrintSeparator()
	PrintMoney("P5", r.Percentiles.P5)
	PrintMoney("P25", r.Percentiles.P25)
	PrintMoney("P50", r.Percentiles.P50)
	PrintMoney("P75", r.Percentiles.P75)
	PrintMoney("P95", r.Percentiles.P95)

	PrintSeparator()
	m := r.Metrics
	PrintPercent("Probability of loss", m.ProbabilityOfLoss*100)
	PrintPercent("Average return", m.AverageReturn)
	PrintField("Sharpe ratio", fmt.Sprintf("%.3f", m.SharpeRatio))
	PrintField("Sortino ratio", formatRatio(m.SortinoRatio))
	PrintField("Calmar ratio", fmt.Sprintf("%.3f", m.CalmarRatio))
	PrintPercent("Max drawdown", m.MaxDrawdown)
	PrintDoubleSeparator()
}

func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "∞ (no downside)"
	}
	return fmt.Sprintf("%.3f", v)
}
