package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanalytics/internal/analysis"
	"finanalytics/internal/benchmark"
	"finanalytics/internal/config"
	apierrors "finanalytics/internal/errors"
	"finanalytics/internal/shared/testutil"
	api "finanalytics/pkg/contracts/api/v1"
	"finanalytics/pkg/contracts/domain"
	"finanalytics/pkg/contracts/events"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.ExecutableDir = t.TempDir()
	cfg.Telemetry.TraceExporter = "none"
	cfg.Telemetry.EnableMetrics = false
	cfg.Security.RateLimit.Enabled = false
	cfg.Engine.Workers = 2
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*Application, *httptest.Server) {
	t.Helper()
	app, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)

	srv := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		srv.Close()
		app.closeResources(context.Background())
	})
	return app, srv
}

func TestNewWiresServices(t *testing.T) {
	cfg := testConfig(t)
	app, _ := newTestApp(t, cfg)

	assert.NotNil(t, app.Engine)
	assert.Equal(t, analysis.Default().Len(), app.Engine.Registry().Len())
	assert.NotNil(t, app.Services.Analysis)
	assert.NotNil(t, app.Services.Health)
	assert.NotNil(t, app.Services.Exporter)
	assert.Nil(t, app.Metrics, "metrics disabled")
	assert.Equal(t, ":8080", app.Server.Addr)
	assert.DirExists(t, app.Paths.ExportsDir)
}

func TestRouterEndToEnd(t *testing.T) {
	app, srv := newTestApp(t, testConfig(t))

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/health/ready")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	})

	t.Run("analysis run", func(t *testing.T) {
		body, err := json.Marshal(api.AnalyzeRequest{
			Company:    testutil.Company(),
			Statements: testutil.Statements(),
			Selection:  &api.SelectionRequest{Categories: []string{"ratios"}},
		})
		require.NoError(t, err)

		resp, err := http.Post(srv.URL+"/api/v1/analysis/runs", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var run api.RunResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
		assert.NotEmpty(t, run.Report.Analyses)
		assert.Equal(t, 1, app.Services.Analysis.StoredRuns())
	})

	t.Run("unknown route is a problem document", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v2/nothing")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var problem map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
		assert.Equal(t, apierrors.TypeNotFound, problem["type"])
	})

	t.Run("cors preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/analysis/runs", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:8080")
		req.Header.Set("Access-Control-Request-Method", "POST")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "http://localhost:8080", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("event stream through the middleware chain", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/events", nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var e events.Event
		require.NoError(t, conn.ReadJSON(&e))
		assert.Equal(t, events.TypeConnection, e.Type)
		assert.Eventually(t, func() bool { return app.Hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	})

	t.Run("no metrics endpoint when disabled", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestBodyLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.MaxBodyBytes = 256
	_, srv := newTestApp(t, cfg)

	body, err := json.Marshal(api.AnalyzeRequest{Company: testutil.Company(), Statements: testutil.Statements()})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/v1/analysis/runs", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestAssumptions(t *testing.T) {
	cfg := config.Default()
	cfg.Valuation.Beta = 1.4

	a := Assumptions(cfg.Valuation)
	assert.Equal(t, 1.4, a.Beta)
	assert.Equal(t, cfg.Valuation.DiscountRate, a.DiscountRate)
	assert.Equal(t, cfg.Valuation.ForecastHorizon, a.ForecastHorizon)

	// the shipped defaults line up with the engine's own
	assert.Equal(t, analysis.DefaultAssumptions(), Assumptions(config.Default().Valuation))
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, domain.LanguageArabic, Language("ar"))
	assert.Equal(t, domain.LanguageEnglish, Language("en"))
	assert.Equal(t, domain.LanguageEnglish, Language(""))
}

func TestNewBenchmarkProvider(t *testing.T) {
	registry := analysis.Default()
	ctx := context.Background()

	t.Run("static with overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sectors.yaml")
		require.NoError(t, os.WriteFile(path, []byte("sectors:\n  cement:\n    values:\n      current_ratio: 1.7\n"), 0644))

		cfg := config.Default().Benchmarks
		cfg.OverridesFile = path
		provider, pool, err := NewBenchmarkProvider(ctx, cfg, registry, quietLogger())
		require.NoError(t, err)
		assert.Nil(t, pool)

		v, err := provider.Benchmark(ctx, "current_ratio", "Cement")
		require.NoError(t, err)
		assert.Equal(t, 1.7, v)
		_, isStatic := provider.(*benchmark.Static)
		assert.True(t, isStatic)
	})

	t.Run("missing overrides file", func(t *testing.T) {
		cfg := config.Default().Benchmarks
		cfg.OverridesFile = filepath.Join(t.TempDir(), "absent.yaml")
		_, _, err := NewBenchmarkProvider(ctx, cfg, registry, quietLogger())

		var appErr *apierrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apierrors.ErrTypeConfig, appErr.Type)
	})

	t.Run("database without url", func(t *testing.T) {
		cfg := config.Default().Benchmarks
		cfg.Source = config.BenchmarkSourceChain
		_, pool, err := NewBenchmarkProvider(ctx, cfg, registry, quietLogger())

		var appErr *apierrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apierrors.ErrTypeBenchmark, appErr.Type)
		assert.Nil(t, pool)
	})
}

func TestStop(t *testing.T) {
	app, err := New(context.Background(), testConfig(t), quietLogger())
	require.NoError(t, err)
	assert.NoError(t, app.Stop(context.Background()))
}
