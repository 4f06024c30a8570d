// Package services is the business layer between the HTTP handlers and the
// analysis engine.
//
// AnalysisService runs the engine for a company, stores the resulting report
// in a bounded in-memory ReportStore under a fresh run id and serves the
// catalogue listings. HealthService backs the liveness and readiness probes.
//
// Services take their dependencies through constructors and log through an
// injected *slog.Logger tagged with a component name. Lookups of unknown runs
// return a not-found AppError wrapping ErrRunNotFound; handlers translate service errors into problem
// responses.
package services
