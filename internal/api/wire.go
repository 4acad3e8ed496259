package api

import (
	"github.com/wonny/fiscalrisk/internal/allocation"
	"github.com/wonny/fiscalrisk/internal/api/handlers"
	"github.com/wonny/fiscalrisk/internal/history"
	"github.com/wonny/fiscalrisk/internal/jurisdiction"
	"github.com/wonny/fiscalrisk/internal/portfolio"
	"github.com/wonny/fiscalrisk/internal/risk"
	"github.com/wonny/fiscalrisk/internal/simulation"
	"github.com/wonny/fiscalrisk/pkg/config"
	"github.com/wonny/fiscalrisk/pkg/database"
	"github.com/wonny/fiscalrisk/pkg/logger"
	"github.com/wonny/fiscalrisk/pkg/redis"
)

// Deps are the shared resources the handlers are built from.
// DB may be nil; Redis may be a disabled client.
type Deps struct {
	Config  *config.Config
	Catalog *jurisdiction.Catalog
	DB      *database.DB
	Redis   *redis.Client
	Logger  *logger.Logger
}

const keyPrefix = "fiscalrisk"

// NewHandlers builds every engine and handler from deps.
func NewHandlers(deps Deps) Handlers {
	cfg := deps.Config
	log := deps.Logger.Component("api")

	rdb := deps.Redis
	if rdb == nil {
		rdb = redis.Disabled()
	}
	cache := redis.NewCache(rdb, keyPrefix)

	var repo *history.Repository
	if deps.DB != nil {
		repo = history.NewRepository(deps.DB.Pool)
	}
	recorder := handlers.NewRecorder(repo, deps.Catalog.Hash(), log)

	allocator := allocation.NewAllocator(allocation.ConfigFrom(cfg.Fiscal), deps.Catalog, deps.Logger)
	simulator := simulation.NewSimulator(simulation.ConfigFrom(cfg.Simulation), deps.Logger)
	runner := simulation.NewRunner(simulator, simulation.RunnerConfigFrom(cfg.Simulation), deps.Logger)
	optimizer := portfolio.NewOptimizer(portfolio.ConfigFrom(cfg.Optimizer), deps.Logger)

	return Handlers{
		Health:     handlers.NewHealthHandler(deps.Catalog, deps.DB, rdb),
		Catalog:    handlers.NewCatalogHandler(deps.Catalog),
		Allocation: handlers.NewAllocationHandler(allocator, recorder, log),
		Risk:       handlers.NewRiskHandler(risk.NewEngine(), allocator, cache, deps.Catalog.Hash(), recorder, log),
		Simulation: handlers.NewSimulationHandler(runner, redis.NewRateLimiter(rdb, keyPrefix), cfg.Simulation.RateLimit, recorder, log),
		Portfolio:  handlers.NewPortfolioHandler(optimizer, allocator, cache, cfg.Optimizer.Seed, recorder, log),
	}
}
