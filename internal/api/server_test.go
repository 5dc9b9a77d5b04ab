package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-dashboard/backend/internal/comparison"
	"github.com/aura-dashboard/backend/internal/llm"
	"github.com/aura-dashboard/backend/internal/report"
	"github.com/aura-dashboard/backend/internal/storage/memory"
	"github.com/aura-dashboard/backend/internal/storage/reports"
	"github.com/aura-dashboard/backend/pkg/config"
)

type stubEstimator struct {
	mu      sync.Mutex
	fail    map[string]error
	gate    chan struct{}
	arrived chan struct{}
}

func (s *stubEstimator) PredictEnergy(_ context.Context, in llm.EnergyPredictionInput) (*llm.EnergyPrediction, error) {
	if s.arrived != nil {
		s.arrived <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	err := s.fail[in.ModelArchitecture]
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	switch in.ModelArchitecture {
	case "CNN":
		return &llm.EnergyPrediction{PredictedEnergyConsumption: "120 kWh", ConfidenceLevel: "high", VisualizationType: "bar chart"}, nil
	default:
		return &llm.EnergyPrediction{PredictedEnergyConsumption: "480 kWh", ConfidenceLevel: "medium", VisualizationType: "bar chart"}, nil
	}
}

type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (s *sequenceIDs) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

type fixture struct {
	server *Server
	est    *stubEstimator
	store  *reports.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		Server:    config.ServerConfig{BodyLimit: 1 << 20, AllowedOrigins: []string{"*"}, Development: true},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 600, Burst: 100},
	}

	est := &stubEstimator{}
	ids := &sequenceIDs{}
	store := reports.NewStore(memory.New(), ids, "")
	orch := comparison.NewOrchestrator(est, report.NewBuilderWithClock(func() time.Time {
		return time.Date(2026, 10, 14, 9, 30, 15, 0, time.UTC)
	}))

	srv := NewServer(Deps{
		Config:       cfg,
		Orchestrator: orch,
		Store:        store,
		Exporter:     report.NewExporter(nil),
		IDs:          ids,
	})
	t.Cleanup(func() { _ = srv.Shutdown() })

	return &fixture{server: srv, est: est, store: store}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.server.App.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

const e2eBody = `{"modelA":{"architecture":"CNN","dataSize":"1GB"},"modelB":{"architecture":"Transformer","dataSize":"10GB"}}`

func TestHealthAndReady(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, "GET", "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))

	resp, body := f.do(t, "GET", "/api/v1/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"comparison":"idle"`)
}

func TestComparisonLifecycle(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, "GET", "/api/v1/comparisons/current", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := f.do(t, "POST", "/api/v1/comparisons", e2eBody)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var submitted struct {
		State  string       `json:"state"`
		Report report.Draft `json:"report"`
	}
	require.NoError(t, json.Unmarshal(body, &submitted))
	assert.Equal(t, "ready", submitted.State)
	assert.Equal(t, "Comparison: CNN vs Transformer", submitted.Report.Title)
	assert.Equal(t, [2]report.ChartData{
		{Name: "Model A", Energy: 120, Unit: "kWh"},
		{Name: "Model B", Energy: 480, Unit: "kWh"},
	}, submitted.Report.ChartData)

	resp, _ = f.do(t, "GET", "/api/v1/comparisons/current", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = f.do(t, "POST", "/api/v1/comparisons/current/save", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var saved report.Report
	require.NoError(t, json.Unmarshal(body, &saved))
	assert.Equal(t, "id-1", saved.ID)

	resp, body = f.do(t, "GET", "/api/v1/reports", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed struct {
		Reports []report.Report `json:"reports"`
		Count   int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &listed))
	assert.Equal(t, 1, listed.Count)
	assert.Equal(t, saved, listed.Reports[0])

	resp, body = f.do(t, "GET", "/api/v1/reports/id-1/export?format=csv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv;charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "aura_model_comparison_report_2026-10-14.csv")
	assert.True(t, strings.HasPrefix(string(body), "Report ID,id-1\n"))

	resp, body = f.do(t, "GET", "/api/v1/comparisons/current/export?format=json", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "aura_model_comparison_report_2026-10-14.json")
	exported, err := report.FromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, "id-2", exported.ID, "current draft exports get a fresh id")
	assert.Equal(t, saved.Draft, exported.Draft)

	resp, _ = f.do(t, "DELETE", "/api/v1/reports", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	all, err := f.store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubmitErrors(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, "POST", "/api/v1/comparisons", `{"modelA":{"architecture":"NN","dataSize":"1GB"},"modelB":{"architecture":"Transformer","dataSize":"10GB"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "architecture")

	f.est.mu.Lock()
	f.est.fail = map[string]error{"Transformer": errors.New("upstream overloaded")}
	f.est.mu.Unlock()

	resp, body = f.do(t, "POST", "/api/v1/comparisons", e2eBody)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(body), `"side":"Model B"`)
	assert.Contains(t, string(body), "upstream overloaded")

	resp, _ = f.do(t, "POST", "/api/v1/comparisons/current/save", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitConflictWhileComparing(t *testing.T) {
	f := newFixture(t)
	f.est.gate = make(chan struct{})
	f.est.arrived = make(chan struct{}, 2)

	first := make(chan int, 1)
	go func() {
		req := httptest.NewRequest("POST", "/api/v1/comparisons", strings.NewReader(e2eBody))
		req.Header.Set("Content-Type", "application/json")
		resp, err := f.server.App.Test(req, -1)
		if err != nil {
			first <- 0
			return
		}
		first <- resp.StatusCode
	}()
	<-f.est.arrived
	<-f.est.arrived

	resp, _ := f.do(t, "POST", "/api/v1/comparisons", e2eBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(f.est.gate)
	assert.Equal(t, http.StatusOK, <-first)
}

func TestExportErrors(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, "GET", "/api/v1/comparisons/current/export?format=csv", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, "GET", "/api/v1/comparisons/current/export?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, "GET", "/api/v1/reports/missing/export", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketRouteRequiresUpgrade(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.do(t, "GET", "/ws/comparisons", "")
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.do(t, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
