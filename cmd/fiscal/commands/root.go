// Package commands implements the fiscal CLI.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/fiscalrisk/internal/jurisdiction"
	"github.com/wonny/fiscalrisk/pkg/config"
	"github.com/wonny/fiscalrisk/pkg/logger"
)

var (
	// Global flags
	jsonOutput bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fiscal",
	Short: "Fiscal deduction allocator and investment risk toolkit",
	Long: `fiscal splits a startup investment between the national and regional
tax deductions, then quantifies the risk of the resulting position.

Usage:
  go run ./cmd/fiscal [command]

Examples:
  go run ./cmd/fiscal regions
  go run ./cmd/fiscal allocate --investment 20000 --region madrid
  go run ./cmd/fiscal risk --investment 20000 --region madrid --max-score 60
  go run ./cmd/fiscal simulate --investment 10000 --return 8 --volatility 20 --years 5
  go run ./cmd/fiscal optimize --investment 20000 --region madrid
  go run ./cmd/fiscal api`,
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
}

// session is what every command needs: configuration, a logger and the catalog.
type session struct {
	cfg     *config.Config
	log     *logger.Logger
	catalog *jurisdiction.Catalog
}

// loadSession reads the environment. CLI logs go to stderr so stdout stays
// parseable with --json.
func loadSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.NewWithWriter(cfg, os.Stderr)

	catalog, err := jurisdiction.Load(cfg.Fiscal.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"catalog": catalog.Meta().Version,
		"hash":    catalog.Hash(),
		"regions": catalog.Len(),
	}).Debug("Session loaded")

	return &session{cfg: cfg, log: log, catalog: catalog}, nil
}
