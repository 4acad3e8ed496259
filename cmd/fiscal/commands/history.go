package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fiscalrisk/internal/history"
	"github.com/wonny/fiscalrisk/pkg/database"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent API runs (requires DATABASE_URL)",
	Long: `Lists the newest runs recorded by the API server.

Example:
  go run ./cmd/fiscal history
  go run ./cmd/fiscal history --kind simulate --limit 5
  go run ./cmd/fiscal history --purge 168h`,
	RunE: runHistory,
}

var (
	historyKind  string
	historyLimit int
	purgeAge     string
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyKind, "kind", "", "allocate|risk|simulate|optimize (empty = all)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "max records")
	historyCmd.Flags().StringVar(&purgeAge, "purge", "", "delete records older than this duration instead of listing")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := loadSession()
	if err != nil {
		return err
	}

	db, err := database.New(ctx, s.cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := history.NewRepository(db.Pool)

	if purgeAge != "" {
		age, err := parseAge(purgeAge)
		if err != nil {
			return err
		}
		removed, err := repo.PurgeOlderThan(ctx, age)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Removed %d records older than %s\n", removed, age)
		return nil
	}

	records, err := repo.ListRecent(ctx, history.Kind(historyKind), historyLimit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return PrintJSON(records)
	}

	PrintHeader(fmt.Sprintf("Run history (%d)", len(records)))
	for _, r := range records {
		fmt.Printf("  %s  %-9s %8s  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Kind, r.Duration, r.ID)
	}
	PrintDoubleSeparator()
	return nil
}
