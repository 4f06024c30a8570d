package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanalytics/internal/services"
)

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		cfg        services.HealthServiceConfig
		path       string
		wantStatus int
		wantBody   string
	}{
		{"health", services.HealthServiceConfig{Version: "1.0.0"}, "/api/health", http.StatusOK, "ok"},
		{"ready", services.HealthServiceConfig{Definitions: 216}, "/api/health/ready", http.StatusOK, "ready"},
		{"not ready", services.HealthServiceConfig{Definitions: 216, Benchmarks: downPinger{}}, "/api/health/ready", http.StatusServiceUnavailable, "not_ready"},
		{"live", services.HealthServiceConfig{}, "/api/health/live", http.StatusOK, "alive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(services.NewHealthService(tt.cfg, quietLogger()), quietLogger())
			r := chi.NewRouter()
			r.Mount("/api/health", handler.Routes())

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var status services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
			assert.Equal(t, tt.wantBody, status.Status)
		})
	}
}

func TestVersionHandler(t *testing.T) {
	handler := NewHealthHandler(services.NewHealthService(services.HealthServiceConfig{Version: "1.0.0", Definitions: 216}, quietLogger()), quietLogger())

	rec := httptest.NewRecorder()
	handler.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, float64(216), body["definitions"])
}

func TestMetricsHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "analysis_test_total", Help: "test counter"})
	registry.MustRegister(counter)
	counter.Inc()

	handler := NewMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "analysis_test_total 1")

	assert.NotNil(t, NewMetricsHandler(nil).handler)
}
