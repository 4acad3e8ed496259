package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fiscalrisk/internal/api"
	"github.com/wonny/fiscalrisk/internal/history"
	"github.com/wonny/fiscalrisk/internal/scheduler"
	"github.com/wonny/fiscalrisk/internal/scheduler/jobs"
	"github.com/wonny/fiscalrisk/pkg/database"
	"github.com/wonny/fiscalrisk/pkg/logger"
	"github.com/wonny/fiscalrisk/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API server. PostgreSQL (DATABASE_URL) enables run history
and its retention job; Redis (REDIS_ENABLED) enables the response cache and the
shared simulation rate limit. Both are optional.

Endpoints:
  GET  /health             - Health check
  GET  /api/regions        - Catalog summary
  GET  /api/regions/{id}   - One region rule
  POST /api/eligibility    - Profile check
  POST /api/allocate       - Deduction allocation
  POST /api/risk           - Risk analysis
  POST /api/simulate       - Monte Carlo simulation
  POST /api/optimize       - Portfolio optimization
  GET  /api/ws/simulate    - Simulation worker over websocket

Example:
  go run ./cmd/fiscal api
  go run ./cmd/fiscal api --port 9090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. Load config, logger and catalog
	s, err := loadSession()
	if err != nil {
		return err
	}
	if apiPort != "" {
		s.cfg.Port = apiPort
	}
	log := s.log

	// 2. Optional PostgreSQL
	db, err := database.New(ctx, s.cfg.Database)
	switch {
	case errors.Is(err, database.ErrNoURL):
		log.Info("DATABASE_URL not set, run history disabled")
	case err != nil:
		return fmt.Errorf("connect to database: %w", err)
	default:
		defer db.Close()
		if err := history.NewRepository(db.Pool).EnsureSchema(ctx); err != nil {
			return err
		}
		log.Info("Connected to database")
	}

	// 3. Optional Redis
	rdb, err := redis.New(ctx, s.cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	// 4. Maintenance jobs
	sched := scheduler.New(log)
	if db != nil {
		retention := jobs.NewHistoryRetentionJob(history.NewRepository(db.Pool),
			s.cfg.Retention.HistoryTTL, s.cfg.Retention.Schedule, log.Component("jobs"))
		if err := sched.AddJob(retention); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	// 5. Handlers, router and server
	handlers := api.NewHandlers(api.Deps{
		Config:  s.cfg,
		Catalog: s.catalog,
		DB:      db,
		Redis:   rdb,
		Logger:  log,
	})
	server := api.New(s.cfg, log, api.NewRouter(handlers, log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.WithFields(map[string]interface{}{
		"port":    s.cfg.Port,
		"history": db != nil,
		"redis":   rdb.Enabled(),
		"catalog": s.catalog.Hash(),
	}).Info("API server started")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", s.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// 6. Wait for interrupt or a listen failure
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	return shutdown(server, log)
}

func shutdown(server *api.Server, log *logger.Logger) error {
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
