package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/wonny/fiscalrisk/internal/history"
	"github.com/wonny/fiscalrisk/internal/simulation"
	"github.com/wonny/fiscalrisk/pkg/logger"
	"github.com/wonny/fiscalrisk/pkg/redis"
)

const (
	wsReadLimit = 64 << 10
	wsPongWait  = 60 * time.Second
	wsWriteWait = 10 * time.Second
)

// SimulationHandler serves the Monte Carlo worker over HTTP and websocket.
// Requests pass an in-process token bucket and, when Redis is enabled, a
// sliding window shared by every instance.
type SimulationHandler struct {
	runner    *simulation.Runner
	local     *rate.Limiter
	shared    *redis.RateLimiter
	perMinute int
	recorder  *Recorder
	upgrader  websocket.Upgrader
	logger    *logger.Logger
}

// NewSimulationHandler creates a new simulation handler. perMinute <= 0 disables rate limiting.
func NewSimulationHandler(runner *simulation.Runner, shared *redis.RateLimiter, perMinute int, recorder *Recorder, log *logger.Logger) *SimulationHandler {
	local := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		local = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}

	return &SimulationHandler{
		runner:    runner,
		local:     local,
		shared:    shared,
		perMinute: perMinute,
		recorder:  recorder,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 16384,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: log,
	}
}

// allow applies both limiters.
func (h *SimulationHandler) allow(r *http.Request) bool {
	if !h.local.Allow() {
		return false
	}
	if h.perMinute <= 0 || h.shared == nil {
		return true
	}

	allowed, _, err := h.shared.Allow(r.Context(), redis.SimulateRateLimit(clientKey(r), h.perMinute))
	if err != nil {
		// Redis trouble must not take the endpoint down.
		h.logger.WithError(err).Warn("Shared rate limiter unavailable")
		return true
	}
	return allowed
}

// Simulate runs one simulation and answers with the worker response
// POST /api/simulate
func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	if !h.allow(r) {
		respondError(w, http.StatusTooManyRequests, "simulation rate limit exceeded")
		return
	}

	var req simulation.Request
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	result, err := h.runner.Run(r.Context(), req.Parameters())
	took := time.Since(start)

	var resp simulation.Response
	status := http.StatusOK
	switch {
	case err == nil:
		resp = simulation.Response{Success: true, Data: result}
	case errors.Is(err, simulation.ErrInvalidParameters):
		resp, status = simulation.Response{Error: err.Error()}, http.StatusBadRequest
	case errors.Is(err, simulation.ErrTimeout):
		resp, status = simulation.Response{Error: err.Error()}, http.StatusGatewayTimeout
	default:
		resp, status = simulation.Response{Error: err.Error()}, http.StatusInternalServerError
	}

	if status == http.StatusOK {
		h.recorder.Record(r.Context(), history.KindSimulate, req, resp, took)
	}
	respondJSON(w, status, resp)
}

// Stream runs one simulation per websocket text message. Each message is a
// worker request; each reply is a worker response.
// GET /api/ws/simulate
func (h *SimulationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	log := h.logger.WithField("remote", clientKey(r))
	log.Debug("Simulation stream opened")

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("Simulation stream read failed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))

		if msgType != websocket.TextMessage {
			continue
		}

		resp := h.handleMessage(r, data)

		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(resp); err != nil {
			log.WithError(err).Warn("Simulation stream write failed")
			return
		}
	}
}

func (h *SimulationHandler) handleMessage(r *http.Request, data []byte) simulation.Response {
	if !h.allow(r) {
		return simulation.Response{Error: "simulation rate limit exceeded"}
	}

	var req simulation.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return simulation.Response{Error: "invalid request: " + err.Error()}
	}

	start := time.Now()
	resp := h.runner.Handle(r.Context(), req)
	if resp.Success {
		h.recorder.Record(r.Context(), history.KindSimulate, req, resp, time.Since(start))
	}
	return resp
}
