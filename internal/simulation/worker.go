package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/pkg/config"
	"github.com/wonny/fiscalrisk/pkg/logger"
)

var (
	ErrTimeout          = errors.New("simulation timed out")
	ErrSimulationFailed = errors.New("simulation failed")
)

// Request is the worker request message.
type Request struct {
	Investment     float64 `json:"investment"`
	ExpectedReturn float64 `json:"expectedReturn"`
	Volatility     float64 `json:"volatility"`
	Years          int     `json:"years"`
	Iterations     int     `json:"iterations"`
	Bins           int     `json:"bins,omitempty"`
	Seed           int64   `json:"seed,omitempty"`
}

// Parameters converts the message into engine parameters.
func (r Request) Parameters() contracts.SimulationParameters {
	return contracts.SimulationParameters{
		Investment:     r.Investment,
		ExpectedReturn: r.ExpectedReturn,
		Volatility:     r.Volatility,
		Years:          r.Years,
		Iterations:     r.Iterations,
		Bins:           r.Bins,
		Seed:           r.Seed,
	}
}

// Response is the worker response message: Data on success, Error otherwise.
type Response struct {
	Success bool                        `json:"success"`
	Data    *contracts.SimulationResult `json:"data,omitempty"`
	Error   string                      `json:"error,omitempty"`
	RunID   string                      `json:"runId,omitempty"`
}

// RunnerConfig bounds the worker pool.
type RunnerConfig struct {
	Timeout       time.Duration
	MaxConcurrent int
}

// DefaultRunnerConfig returns a 30s timeout and 4 concurrent simulations.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{Timeout: 30 * time.Second, MaxConcurrent: 4}
}

// RunnerConfigFrom maps the service configuration.
func RunnerConfigFrom(cfg config.SimulationConfig) RunnerConfig {
	return RunnerConfig{Timeout: cfg.Timeout, MaxConcurrent: cfg.MaxConcurrent}
}

// Runner executes simulations on worker goroutines. Each call sends one
// request and waits for one response or the timeout, whichever comes first.
type Runner struct {
	engine  contracts.Simulator
	timeout time.Duration
	sem     *semaphore.Weighted
	logger  *logger.Logger
}

// NewRunner wraps engine with a timeout and a concurrency bound.
func NewRunner(engine contracts.Simulator, cfg RunnerConfig, log *logger.Logger) *Runner {
	def := DefaultRunnerConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		engine:  engine,
		timeout: cfg.Timeout,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		logger:  log.Component("simulation_runner"),
	}
}

// Run executes params on a worker. It returns ErrInvalidParameters before any
// work starts, ErrTimeout when the deadline passes (the worker is cancelled)
// and ErrSimulationFailed when the worker reports a failure.
func (r *Runner) Run(ctx context.Context, params contracts.SimulationParameters) (*contracts.SimulationResult, error) {
	resp, err := r.run(ctx, params, uuid.NewString())
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Handle answers a protocol request. Failures, including timeouts, become
// Response{Success: false}.
func (r *Runner) Handle(ctx context.Context, req Request) Response {
	runID := uuid.NewString()
	resp, err := r.run(ctx, req.Parameters(), runID)
	if err != nil {
		return Response{Error: err.Error(), RunID: runID}
	}
	return resp
}

func (r *Runner) run(ctx context.Context, params contracts.SimulationParameters, runID string) (Response, error) {
	if err := Validate(params); err != nil {
		return Response{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	log := r.logger.WithField("run_id", runID)

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return Response{}, r.contextError(ctx, err)
	}

	start := time.Now()
	replies := make(chan Response, 1)
	go r.work(ctx, params, runID, replies)

	select {
	case resp := <-replies:
		if !resp.Success {
			if ctx.Err() != nil {
				return Response{}, r.contextError(ctx, ctx.Err())
			}
			log.WithField("error", resp.Error).Warn("Simulation worker failed")
			return Response{}, fmt.Errorf("%w: %s", ErrSimulationFailed, resp.Error)
		}
		log.WithFields(map[string]interface{}{
			"iterations": params.Iterations,
			"elapsed_ms": time.Since(start).Milliseconds(),
		}).Debug("Simulation worker finished")
		return resp, nil

	case <-ctx.Done():
		log.WithField("timeout", r.timeout.String()).Warn("Simulation cancelled")
		return Response{}, r.contextError(ctx, ctx.Err())
	}
}

// work runs on its own goroutine. replies is buffered so the send never
// blocks after the caller has gone away.
func (r *Runner) work(ctx context.Context, params contracts.SimulationParameters, runID string, replies chan<- Response) {
	defer r.sem.Release(1)
	defer func() {
		if p := recover(); p != nil {
			replies <- Response{Error: fmt.Sprintf("worker panic: %v", p), RunID: runID}
		}
	}()

	result, err := r.engine.Run(ctx, params)
	if err != nil {
		replies <- Response{Error: err.Error(), RunID: runID}
		return
	}
	replies <- Response{Success: true, Data: result, RunID: runID}
}

func (r *Runner) contextError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
	}
	return err
}
