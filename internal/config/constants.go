package config

import "time"

// Application constants
const (
	// Application Info
	AppName = "finanalytics"

	// API routes
	APIPrefix       = "/api"
	APIVersionPath  = "/v1"
	HealthPath      = "/health"
	VersionPath     = "/version"
	AnalysisPath    = "/analysis"
	EventsPath      = "/events"
	MetricsEndpoint = "/metrics"

	// Timeouts
	HealthCheckTimeout    = 2 * time.Second
	SystemMetricsInterval = 30 * time.Second
)
