package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"finanalytics/internal/infrastructure"
	"finanalytics/pkg/contracts"
)

// Pinger is anything whose reachability can be probed, e.g. a pgx pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService provides health check functionality
type HealthService struct {
	version     string
	buildTime   string
	exportsDir  string
	definitions int
	benchmarks  Pinger
	pingTimeout time.Duration
	collector   *infrastructure.SystemMetricsCollector
	startTime   time.Time
	logger      *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthServiceConfig carries the dependencies the checks probe
type HealthServiceConfig struct {
	Version     string
	BuildTime   string
	ExportsDir  string
	Definitions int
	// Benchmarks is probed when the benchmark source is a database. nil skips it.
	Benchmarks  Pinger
	PingTimeout time.Duration
	Collector   *infrastructure.SystemMetricsCollector
}

// NewHealthService creates a new health service
func NewHealthService(cfg HealthServiceConfig, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 2 * time.Second
	}

	logger.Info("HealthService initialized",
		slog.String("version", cfg.Version),
		slog.Int("definitions", cfg.Definitions),
		slog.Bool("benchmark_probe", cfg.Benchmarks != nil))

	return &HealthService{
		version:     cfg.Version,
		buildTime:   cfg.BuildTime,
		exportsDir:  cfg.ExportsDir,
		definitions: cfg.Definitions,
		benchmarks:  cfg.Benchmarks,
		pingTimeout: cfg.PingTimeout,
		collector:   cfg.Collector,
		startTime:   time.Now(),
		logger:      logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"registry":   hs.checkRegistry(),
			"benchmarks": hs.checkBenchmarks(ctx),
			"exports":    hs.checkExports(),
		},
	}

	for name, service := range status.Services {
		if service.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "dependency not ready",
				slog.String("service", name),
				slog.String("message", service.Message))
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}

	if hs.collector != nil {
		stats := hs.collector.Collect(ctx)
		status.Runtime["heap_bytes"] = stats.HeapBytes
		status.Runtime["gc_count"] = stats.GCCount
		status.Runtime["stored_reports"] = stats.StoredReports
		status.Runtime["process_uptime_seconds"] = stats.UptimeSeconds()
	}
	return status
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"definitions":  hs.definitions,
		"api_version":   contracts.APIVersion,
		"report_format": contracts.ReportFormatVersion,
		"git_commit":    contracts.GitCommit,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

func (hs *HealthService) checkRegistry() ServiceHealth {
	if hs.definitions == 0 {
		return ServiceHealth{Status: "not_ready", Message: "analysis registry is empty"}
	}
	return ServiceHealth{Status: "ready", Message: fmt.Sprintf("%d analyses registered", hs.definitions)}
}

func (hs *HealthService) checkBenchmarks(ctx context.Context) ServiceHealth {
	if hs.benchmarks == nil {
		return ServiceHealth{Status: "ready", Message: "static benchmark tables"}
	}

	ctx, cancel := context.WithTimeout(ctx, hs.pingTimeout)
	defer cancel()
	if err := hs.benchmarks.Ping(ctx); err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("benchmark store unreachable: %v", err)}
	}
	return ServiceHealth{Status: "ready", Message: "benchmark store reachable"}
}

func (hs *HealthService) checkExports() ServiceHealth {
	if hs.exportsDir == "" {
		return ServiceHealth{Status: "ready", Message: "exports are streamed"}
	}

	f, err := os.CreateTemp(hs.exportsDir, ".health-*")
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("cannot write to exports directory: %v", err)}
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return ServiceHealth{Status: "ready", Message: "exports directory writable"}
}
