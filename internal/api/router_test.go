package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fiscalrisk/internal/jurisdiction"
	"github.com/wonny/fiscalrisk/internal/portfolio"
	"github.com/wonny/fiscalrisk/internal/simulation"
	"github.com/wonny/fiscalrisk/pkg/config"
	"github.com/wonny/fiscalrisk/pkg/logger"
)

func testConfig(rateLimit int) *config.Config {
	return &config.Config{
		Port: "0",
		Env:  "development",
		Fiscal: config.FiscalConfig{
			NationalRate:    0.5,
			NationalCapBase: 100000,
			MinInvestment:   1000,
		},
		Simulation: config.SimulationConfig{
			Timeout:       5 * time.Second,
			MaxConcurrent: 2,
			Bins:          20,
			RiskFreeRate:  2.0,
			RateLimit:     rateLimit,
		},
		Optimizer: config.OptimizerConfig{
			RiskFreeRate: 0.02,
			Seed:         42,
			Workers:      2,
		},
	}
}

func newTestServer(t *testing.T, rateLimit int) *httptest.Server {
	t.Helper()
	h := NewHandlers(Deps{
		Config:  testConfig(rateLimit),
		Catalog: jurisdiction.MustDefault(),
		Logger:  logger.Nop(),
	})
	srv := httptest.NewServer(NewRouter(h, logger.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Cached  bool            `json:"cached"`
}

func post(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, 0)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, jurisdiction.MustDefault().Hash(), body["catalog_hash"])
	assert.Equal(t, map[string]interface{}{"database": "disabled", "redis": "disabled"}, body["dependencies"])
}

func TestRegions(t *testing.T) {
	srv := newTestServer(t, 0)

	t.Run("list", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/regions")
		require.NoError(t, err)
		defer resp.Body.Close()

		var body struct {
			Data  []jurisdiction.Summary `json:"data"`
			Count int                    `json:"count"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, jurisdiction.MustDefault().Len(), body.Count)
		assert.Len(t, body.Data, body.Count)
	})

	t.Run("get", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/regions/MADRID")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var env struct {
			Data jurisdiction.Rule `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
		assert.InDelta(t, 0.40, env.Data.Rate, 1e-12)
	})

	t.Run("unknown", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/regions/atlantis")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestEligibility(t *testing.T) {
	srv := newTestServer(t, 0)

	tests := []struct {
		name      string
		body      string
		wantValid bool
	}{
		{"young startup", `{"region_id":"madrid","project_profile":{"type":"startup","age_years":2,"location":"madrid"}}`, true},
		{"too old", `{"region_id":"madrid","project_profile":{"type":"startup","age_years":9,"location":"madrid"}}`, false},
		{"missing profile", `{"region_id":"madrid"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := post(t, srv, "/api/eligibility", tt.body)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var res struct {
				Valid bool `json:"valid"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &res))
			assert.Equal(t, tt.wantValid, res.Valid)
		})
	}
}

func TestAllocate(t *testing.T) {
	srv := newTestServer(t, 0)

	t.Run("valid", func(t *testing.T) {
		resp, env := post(t, srv, "/api/allocate", `{"total_investment":20000,"region_id":"madrid"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, env.Success)

		var res struct {
			RegionID       string  `json:"region_id"`
			TotalDeduction float64 `json:"total_deduction"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.Equal(t, "madrid", res.RegionID)
		assert.Greater(t, res.TotalDeduction, 0.0)
	})

	t.Run("unknown region is an empty result", func(t *testing.T) {
		resp, env := post(t, srv, "/api/allocate", `{"total_investment":20000,"region_id":"atlantis"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(env.Data), `"alerts":[]`)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, env := post(t, srv, "/api/allocate", `{"total_investment":"lots"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, env.Success)
	})

	t.Run("unknown field", func(t *testing.T) {
		resp, _ := post(t, srv, "/api/allocate", `{"total_investment":20000,"region":"madrid"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRisk(t *testing.T) {
	srv := newTestServer(t, 0)

	resp, env := post(t, srv, "/api/risk", `{"used_investment":18558,"total_deduction":8351.1,"limits":{"max_score":1}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, env.Cached, "disabled cache never hits")

	var res struct {
		Analysis struct {
			OverallRiskScore int `json:"overall_risk_score"`
		} `json:"analysis"`
		LimitCheck struct {
			Passed     bool     `json:"passed"`
			Violations []string `json:"violations"`
		} `json:"limit_check"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 43, res.Analysis.OverallRiskScore)
	assert.False(t, res.LimitCheck.Passed)
	assert.Len(t, res.LimitCheck.Violations, 1)

	resp, env = post(t, srv, "/api/risk", `{"allocation":{"total_investment":20000,"region_id":"madrid"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"allocation":{"region_id":"madrid"`)
}

func TestSimulate(t *testing.T) {
	srv := newTestServer(t, 0)

	t.Run("success", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/simulate", "application/json",
			strings.NewReader(`{"investment":10000,"expectedReturn":8,"volatility":20,"years":5,"iterations":2000,"seed":7}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out simulation.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.True(t, out.Success)
		require.NotNil(t, out.Data)
		assert.Greater(t, out.Data.Statistics.Mean, 10000.0)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/simulate", "application/json",
			strings.NewReader(`{"investment":0,"expectedReturn":8,"volatility":20,"years":5,"iterations":10}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var out simulation.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.False(t, out.Success)
		assert.NotEmpty(t, out.Error)
	})
}

func TestSimulate_RateLimited(t *testing.T) {
	srv := newTestServer(t, 1)
	body := `{"investment":10000,"expectedReturn":8,"volatility":20,"years":1,"iterations":10,"seed":1}`

	resp, _ := post(t, srv, "/api/simulate", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := post(t, srv, "/api/simulate", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestSimulateStream(t *testing.T) {
	srv := newTestServer(t, 0)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/simulate"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	messages := []struct {
		body        string
		wantSuccess bool
	}{
		{`{"investment":5000,"expectedReturn":5,"volatility":10,"years":3,"iterations":500,"seed":3}`, true},
		{`{"investment":-1,"expectedReturn":5,"volatility":10,"years":3,"iterations":500}`, false},
		{`not json`, false},
	}

	for _, m := range messages {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(m.body)))

		var out simulation.Response
		require.NoError(t, conn.ReadJSON(&out))
		assert.Equal(t, m.wantSuccess, out.Success, m.body)
		if m.wantSuccess {
			assert.NotNil(t, out.Data)
			assert.NotEmpty(t, out.RunID)
		} else {
			assert.NotEmpty(t, out.Error)
		}
	}
}

func TestOptimize(t *testing.T) {
	srv := newTestServer(t, 0)

	t.Run("explicit assets", func(t *testing.T) {
		body := `{"assets":[
			{"id":"a","volatility":0.3,"sector":"fintech","region":"madrid","stage":"seed","expected_return":0.2,"fiscal_return":0.1},
			{"id":"b","volatility":0.4,"sector":"biotech","region":"cataluna","stage":"series_a","expected_return":0.25,"fiscal_return":0.1}
		],"constraints":{}}`
		resp, env := post(t, srv, "/api/optimize", body)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var res struct {
			AssetIDs  []string `json:"asset_ids"`
			MaxSharpe struct {
				Weights []float64 `json:"weights"`
			} `json:"max_sharpe"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.Equal(t, []string{"a", "b"}, res.AssetIDs)
		assert.Len(t, res.MaxSharpe.Weights, 2)
	})

	t.Run("basket from allocation", func(t *testing.T) {
		resp, env := post(t, srv, "/api/optimize", `{"allocation":{"total_investment":20000,"region_id":"madrid"},"constraints":{}}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(env.Data), `"national_pool"`)
	})

	t.Run("no assets", func(t *testing.T) {
		resp, env := post(t, srv, "/api/optimize", `{"constraints":{}}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, env.Success)
	})

	t.Run("too many assets", func(t *testing.T) {
		asset := `{"id":"a","volatility":0.3,"sector":"fintech","region":"madrid","stage":"seed","expected_return":0.2,"fiscal_return":0.1}`
		assets := strings.TrimSuffix(strings.Repeat(asset+",", portfolio.MaxAssets+1), ",")

		resp, env := post(t, srv, "/api/optimize", `{"assets":[`+assets+`],"constraints":{}}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, env.Success)
		assert.Contains(t, env.Error, "exceeds the limit")
	})
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, 0)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/allocate", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, 0)

	resp, err := http.Get(srv.URL + "/api/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
