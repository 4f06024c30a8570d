package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemMetrics records runtime and service resource gauges
type SystemMetrics struct {
	goRoutines    metric.Int64Gauge
	heapBytes     metric.Int64Gauge
	gcCount       metric.Int64Gauge
	processUptime metric.Float64Gauge
	storedReports metric.Int64Gauge
}

// NewSystemMetrics creates the runtime gauges on meter
func NewSystemMetrics(meter metric.Meter) (*SystemMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heapBytes, err := meter.Int64Gauge(
		"system_memory_usage_bytes",
		metric.WithDescription("Heap memory in use in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"system_gc_count",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	processUptime, err := meter.Float64Gauge(
		"system_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	storedReports, err := meter.Int64Gauge(
		"analysis_stored_reports",
		metric.WithDescription("Analysis reports held in the report store"),
	)
	if err != nil {
		return nil, err
	}

	return &SystemMetrics{
		goRoutines:    goRoutines,
		heapBytes:     heapBytes,
		gcCount:       gcCount,
		processUptime: processUptime,
		storedReports: storedReports,
	}, nil
}

// SystemStats holds a point-in-time view of the process
type SystemStats struct {
	GoRoutines    int           `json:"goroutines"`
	HeapBytes     uint64        `json:"heapBytes"`
	GCCount       uint32        `json:"gcCount"`
	CPUCount      int           `json:"cpuCount"`
	Uptime        time.Duration `json:"-"`
	StoredReports int           `json:"storedReports"`
	Timestamp     time.Time     `json:"timestamp"`
}

// UptimeSeconds is the uptime rounded to whole seconds
func (s SystemStats) UptimeSeconds() int64 {
	return int64(s.Uptime / time.Second)
}

// SystemMetricsCollector samples runtime statistics periodically.
// A nil meter still yields stats; only the gauges are skipped.
type SystemMetricsCollector struct {
	metrics   *SystemMetrics
	startTime time.Time
	interval  time.Duration
	reports   func() int

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewSystemMetricsCollector creates a collector. reports, when set, reports
// the current size of the report store.
func NewSystemMetricsCollector(meter metric.Meter, interval time.Duration, reports func() int) (*SystemMetricsCollector, error) {
	c := &SystemMetricsCollector{
		startTime: time.Now(),
		interval:  interval,
		reports:   reports,
		stopCh:    make(chan struct{}),
	}
	if meter != nil {
		m, err := NewSystemMetrics(meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create system metrics: %w", err)
		}
		c.metrics = m
	}
	return c, nil
}

// Collect samples the runtime and records the gauges
func (c *SystemMetricsCollector) Collect(ctx context.Context) SystemStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := SystemStats{
		GoRoutines: runtime.NumGoroutine(),
		HeapBytes:  mem.HeapInuse,
		GCCount:    mem.NumGC,
		CPUCount:   runtime.NumCPU(),
		Uptime:     time.Since(c.startTime),
		Timestamp:  time.Now().UTC(),
	}
	if c.reports != nil {
		stats.StoredReports = c.reports()
	}

	if m := c.metrics; m != nil {
		m.goRoutines.Record(ctx, int64(stats.GoRoutines))
		m.heapBytes.Record(ctx, int64(stats.HeapBytes))
		m.gcCount.Record(ctx, int64(stats.GCCount))
		m.processUptime.Record(ctx, stats.Uptime.Seconds())
		m.storedReports.Record(ctx, int64(stats.StoredReports))
	}
	return stats
}

// Start collects on every interval until ctx is done or Stop is called
func (c *SystemMetricsCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Collect(ctx)
	for {
		select {
		case <-ticker.C:
			c.Collect(ctx)
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends periodic collection. It is safe to call more than once.
func (c *SystemMetricsCollector) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}
