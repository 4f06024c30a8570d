package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jackc/pgx/v5/pgxpool"

	"finanalytics/internal/analysis"
	"finanalytics/internal/benchmark"
	"finanalytics/internal/config"
	apierrors "finanalytics/internal/errors"
	"finanalytics/internal/exporter"
	"finanalytics/internal/infrastructure"
	customMiddleware "finanalytics/internal/middleware"
	"finanalytics/internal/services"
	handlers "finanalytics/internal/transport/http"
	"finanalytics/internal/websocket"
	"finanalytics/pkg/contracts"
	"finanalytics/pkg/contracts/domain"
)

var (
	// Version defaults to the contracts version and may be overridden with
	// -ldflags "-X finanalytics/internal/app.Version=..."
	Version = contracts.Version
	// BuildTime is set at compile time
	BuildTime = contracts.BuildTime
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Engine        *analysis.Engine
	Services      *ServiceContainer
	Collector     *infrastructure.SystemMetricsCollector
	Hub           *websocket.Hub

	benchmarkPool *pgxpool.Pool
	errorHandler  *apierrors.ErrorHandler
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Analysis *services.AnalysisService
	Health   *services.HealthService
	Exporter *exporter.Exporter
}

// NewApplication loads the configuration and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return New(context.Background(), cfg, logger)
}

// New builds the application from an already loaded configuration
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", Version))

	paths := cfg.ResolvedPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(otelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		errorHandler:  handlers.NewErrorHandler(logger, cfg.Telemetry.Environment == "development"),
	}

	if otelProviders.Meter != nil {
		metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create business metrics: %w", err)
		}
		app.Metrics = metrics
	}

	if err := app.initializeServices(ctx); err != nil {
		app.closeResources(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// otelConfig maps the telemetry settings onto the OpenTelemetry setup
func otelConfig(t config.TelemetryConfig) *infrastructure.OTelConfig {
	return &infrastructure.OTelConfig{
		ServiceName:    infrastructure.ServiceName,
		ServiceVersion: Version,
		Environment:    t.Environment,
		TraceExporter:  t.TraceExporter,
		MetricExporter: t.MetricExporter,
		EnableTracing:  t.EnableTracing,
		EnableMetrics:  t.EnableMetrics,
		SampleRatio:    t.SampleRatio,
	}
}

// Assumptions converts the valuation settings into engine assumptions
func Assumptions(v config.ValuationConfig) analysis.Assumptions {
	return analysis.Assumptions{
		DiscountRate:       v.DiscountRate,
		TerminalGrowth:     v.TerminalGrowth,
		RiskFreeRate:       v.RiskFreeRate,
		EquityRiskPremium:  v.EquityRiskPremium,
		Beta:               v.Beta,
		FallbackTaxRate:    v.FallbackTaxRate,
		TargetDebtToEBITDA: v.TargetDebtToEBITDA,
		ForecastHorizon:    v.ForecastHorizon,
	}
}

// Language maps a configured language name onto the domain value; config validation
// already restricts it to en or ar
func Language(s string) domain.Language {
	if s == string(domain.LanguageArabic) {
		return domain.LanguageArabic
	}
	return domain.LanguageEnglish
}

// NewBenchmarkProvider builds the configured benchmark source. The returned
// pool is nil unless the source reads from Postgres; the caller closes it.
func NewBenchmarkProvider(ctx context.Context, cfg config.BenchmarksConfig, registry *analysis.Registry, logger *slog.Logger) (benchmark.Provider, *pgxpool.Pool, error) {
	overrides := benchmark.DefaultOverrides()
	if cfg.OverridesFile != "" {
		o, err := benchmark.LoadOverrides(cfg.OverridesFile)
		if err != nil {
			return nil, nil, apierrors.NewConfigError("failed to load sector overrides", err).
				WithContext("path", cfg.OverridesFile)
		}
		overrides = o
	}
	static := benchmark.NewStatic(registry.Baselines(), overrides)

	if cfg.Source == config.BenchmarkSourceStatic {
		logger.InfoContext(ctx, "Using static benchmark tables",
			slog.Int("sectors", len(static.Sectors())))
		return static, nil, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
	defer cancel()
	pool, err := benchmark.ConnectPostgres(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, apierrors.NewBenchmarkError("failed to connect benchmark database", err)
	}
	pg := benchmark.NewPostgres(pool)

	logger.InfoContext(ctx, "Using database benchmarks", slog.String("source", cfg.Source))
	if cfg.Source == config.BenchmarkSourceChain {
		return benchmark.Chain{pg, static}, pool, nil
	}
	return pg, pool, nil
}

// NewEngine builds the analysis engine from configuration. metrics may be nil.
func NewEngine(cfg *config.Config, registry *analysis.Registry, provider benchmark.Provider, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *analysis.Engine {
	opts := []analysis.Option{
		analysis.WithRegistry(registry),
		analysis.WithProvider(provider),
		analysis.WithLogger(logger),
		analysis.WithMetrics(metrics),
		analysis.WithDefaultAssumptions(Assumptions(cfg.Valuation)),
		analysis.WithHistoryCharts(cfg.Engine.HistoryCharts),
	}
	if cfg.Engine.Workers > 0 {
		opts = append(opts, analysis.WithWorkers(cfg.Engine.Workers))
	}
	return analysis.NewEngine(opts...)
}

// ServiceConfig derives the analysis service limits from configuration
func ServiceConfig(cfg *config.Config, registry *analysis.Registry) services.AnalysisServiceConfig {
	return services.AnalysisServiceConfig{
		RunTimeout:      cfg.Engine.RunTimeout,
		DefaultLanguage: Language(cfg.Engine.DefaultLanguage),
		MaxStatements:   cfg.Engine.MaxStatements,
		MaxSelectionIDs: registry.Len(),
	}
}

// initializeServices initializes all application services
func (a *Application) initializeServices(ctx context.Context) error {
	registry := analysis.Default()

	provider, pool, err := NewBenchmarkProvider(ctx, a.Config.Benchmarks, registry, a.Logger)
	if err != nil {
		return err
	}
	a.benchmarkPool = pool

	a.Engine = NewEngine(a.Config, registry, provider, a.Logger, a.Metrics)

	store := services.NewReportStore(a.Config.Engine.StoredRuns)
	analysisService := services.NewAnalysisService(a.Engine, store, ServiceConfig(a.Config, registry), a.Logger)

	hub, err := websocket.NewHub(a.Logger, a.OTelProviders.Meter)
	if err != nil {
		return err
	}
	hub.Start()
	a.Hub = hub
	analysisService.SetEventPublisher(hub)

	collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, config.SystemMetricsInterval, store.Len)
	if err != nil {
		return fmt.Errorf("failed to create system metrics collector: %w", err)
	}
	a.Collector = collector

	healthCfg := services.HealthServiceConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		ExportsDir:  a.Paths.ExportsDir,
		Definitions: registry.Len(),
		PingTimeout: config.HealthCheckTimeout,
		Collector:   collector,
	}
	if pool != nil {
		healthCfg.Benchmarks = pool
	}

	a.Services = &ServiceContainer{
		Analysis: analysisService,
		Health:   services.NewHealthService(healthCfg, a.Logger),
		Exporter: exporter.New(a.Logger),
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	// RequestID → RealIP → OTel → Logger/Recoverer → headers → CORS → rate limit → body limit
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(apierrors.NewErrorMiddleware(a.errorHandler, a.Logger).Handler)
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.corsConfig()))
	}
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}
	r.Use(customMiddleware.BodyLimit(a.Config.Server.MaxBodyBytes))

	a.setupAPIRoutes(r)

	// Prometheus scrape endpoint
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route(config.APIPrefix, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Mount(config.HealthPath, healthHandler.Routes())
		r.Get(config.VersionPath, healthHandler.Version)

		analysisHandler := handlers.NewAnalysisHandler(
			a.Services.Analysis,
			a.Services.Exporter,
			Assumptions(a.Config.Valuation),
			a.Logger,
			a.errorHandler,
		)
		r.Route(config.APIVersionPath, func(r chi.Router) {
			r.Handle(config.EventsPath, handlers.NewEventsHandler(a.Hub, a.Config.Security.AllowedOrigins, a.Logger))
			r.Group(func(r chi.Router) {
				r.Use(customMiddleware.Compress(5, "application/json", "text/csv"))
				r.Mount(config.AnalysisPath, analysisHandler.Routes())
			})
		})
	})
}

// corsConfig returns the CORS configuration for the configured origins
func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition", "Location"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server and background collectors. Server failures
// call cancel so Run can shut down.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.Int("analyses", a.Engine.Registry().Len()),
		slog.String("benchmarks", a.Config.Benchmarks.Source))

	go a.Collector.Start(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	a.closeResources(shutdownCtx)

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// closeResources releases everything opened during initialization
func (a *Application) closeResources(ctx context.Context) {
	if a.Collector != nil {
		a.Collector.Stop()
	}
	if a.Hub != nil {
		a.Hub.Stop()
	}
	if a.benchmarkPool != nil {
		a.benchmarkPool.Close()
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer infrastructure.CloseLogFile()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	// Graceful shutdown on a fresh context; ctx may already be cancelled
	return a.Stop(context.Background())
}
