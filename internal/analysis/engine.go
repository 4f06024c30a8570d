package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"finanalytics/internal/benchmark"
	"finanalytics/internal/i18n"
	"finanalytics/internal/infrastructure"
	"finanalytics/pkg/contracts/domain"
)

// TracerName is the instrumentation scope of engine spans
const TracerName = "finanalytics.analysis"

var (
	// ErrNoStatements is returned when a run is requested without any statement
	ErrNoStatements = errors.New("no financial statements supplied")
	// ErrUnknownAnalysis is returned when a selection names an id not in the registry
	ErrUnknownAnalysis = errors.New("unknown analysis id")
)

// computeFault is recorded on results whose compute function panicked
const computeFault = "computation failed"

// Engine runs the analysis catalogue over a company's statements.
// An Engine holds no per-run state and is safe for concurrent use.
type Engine struct {
	registry    *Registry
	provider    benchmark.Provider
	catalog     *i18n.Catalog
	logger      *slog.Logger
	metrics     *infrastructure.BusinessMetrics
	tracer      trace.Tracer
	now         func() time.Time
	workers     int
	assumptions Assumptions
	charts      bool
}

// Option configures an Engine
type Option func(*Engine)

// WithRegistry replaces the built-in catalogue
func WithRegistry(r *Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithProvider sets the benchmark provider
func WithProvider(p benchmark.Provider) Option {
	return func(e *Engine) { e.provider = p }
}

// WithCatalog replaces the embedded message catalog
func WithCatalog(c *i18n.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithLogger sets the engine logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics enables business metrics recording
func WithMetrics(m *infrastructure.BusinessMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock sets the source of the analysis date
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithWorkers bounds the number of definitions evaluated concurrently
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithDefaultAssumptions sets the assumptions used when a run supplies none
func WithDefaultAssumptions(a Assumptions) Option {
	return func(e *Engine) { e.assumptions = a }
}

// WithHistoryCharts toggles the per-period history series on every result
func WithHistoryCharts(enabled bool) Option {
	return func(e *Engine) { e.charts = enabled }
}

// NewEngine builds an engine. Without WithProvider, benchmarks come from the
// registry baselines with the built-in sector overrides.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		registry:    Default(),
		catalog:     i18n.Default(),
		logger:      slog.Default(),
		now:         time.Now,
		workers:     runtime.NumCPU(),
		assumptions: DefaultAssumptions(),
		charts:      true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.provider == nil {
		e.provider = benchmark.NewStatic(e.registry.Baselines(), benchmark.DefaultOverrides())
	}
	if e.workers < 1 {
		e.workers = 1
	}
	e.tracer = otel.Tracer(TracerName)
	e.logger = infrastructure.WithComponent(e.logger, "analysis_engine")
	return e
}

// Registry returns the catalogue the engine runs
func (e *Engine) Registry() *Registry {
	return e.registry
}

// RunOption adjusts a single run
type RunOption func(*runConfig)

type runConfig struct {
	selection   Selection
	assumptions *Assumptions
	progress    ProgressFunc
}

// ProgressFunc observes each finished analysis. Calls are serialized and done
// increases by one per call up to total.
type ProgressFunc func(done, total int, result domain.AnalysisResult)

// WithSelection restricts the run to the selected definitions
func WithSelection(sel Selection) RunOption {
	return func(c *runConfig) { c.selection = sel }
}

// WithAssumptions overrides the engine's valuation assumptions for one run
func WithAssumptions(a Assumptions) RunOption {
	return func(c *runConfig) { c.assumptions = &a }
}

// WithProgress reports every finished analysis to fn
func WithProgress(fn ProgressFunc) RunOption {
	return func(c *runConfig) { c.progress = fn }
}

// Run evaluates the selected catalogue over statements (oldest first).
// A cancelled run returns the context error and no partial report.
func (e *Engine) Run(ctx context.Context, statements []domain.FinancialStatement, company domain.CompanyInfo, opts ...RunOption) (*domain.Report, error) {
	if len(statements) == 0 {
		return nil, ErrNoStatements
	}

	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if unknown := e.registry.Unknown(cfg.selection); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAnalysis, strings.Join(unknown, ", "))
	}
	assumptions := e.assumptions
	if cfg.assumptions != nil {
		assumptions = *cfg.assumptions
	}

	history := make([]domain.FinancialStatement, len(statements))
	copy(history, statements)

	sector := benchmark.NormalizeSector(company.BenchmarkSectorKey())
	ctx, span := e.tracer.Start(ctx, "analysis.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("company.sector", sector),
			attribute.Int("statements.count", len(history)),
		),
	)
	defer span.End()

	logger := e.logger
	if runID := infrastructure.RunID(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}

	start := time.Now()
	infrastructure.RecordAnalysisRunStart(ctx, e.metrics, sector)
	report, err := e.run(ctx, logger, history, company, cfg, assumptions)
	infrastructure.RecordAnalysisRun(ctx, e.metrics, sector, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		infrastructure.WithError(logger, err).WarnContext(ctx, "analysis run aborted")
		return nil, err
	}

	summary := report.ExecutiveSummary
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"company.name":            company.Name,
		"analyses.count":          len(report.Analyses),
		"analyses.not_applicable": summary.NotApplicable,
		"analyses.failed":         summary.Failed,
		"summary.overall_score":   summary.OverallScore,
		"summary.overall_rating":  string(summary.OverallRating),
	})
	span.SetStatus(codes.Ok, "analysis run completed")
	logger.InfoContext(ctx, "analysis run completed",
		slog.String("company", company.Name),
		slog.Int("analyses", len(report.Analyses)),
		slog.Int("not_applicable", summary.NotApplicable),
		slog.Int("failed", summary.Failed),
		slog.Float64("overall_score", summary.OverallScore),
		slog.Duration("duration", time.Since(start)))
	return report, nil
}

func (e *Engine) run(ctx context.Context, logger *slog.Logger, statements []domain.FinancialStatement, company domain.CompanyInfo, cfg runConfig, assumptions Assumptions) (*domain.Report, error) {
	selected := e.registry.Filter(cfg.selection)
	eligible := make([]Definition, 0, len(selected))
	for _, d := range selected {
		if d.MinHistory > len(statements) {
			continue
		}
		eligible = append(eligible, d)
	}
	logger.InfoContext(ctx, "analysis run started",
		slog.String("company", company.Name),
		slog.Int("periods", len(statements)),
		slog.Int("selected", len(selected)),
		slog.Int("skipped_history", len(selected)-len(eligible)))

	keys := make([]string, len(eligible))
	for i, d := range eligible {
		keys[i] = d.BenchmarkKey
	}
	table, err := benchmark.Resolve(ctx, e.provider, company.BenchmarkSectorKey(), keys)
	if err != nil {
		return nil, err
	}
	if table.Err() != nil {
		infrastructure.WithError(logger, table.Err()).WarnContext(ctx, "benchmark provider failed, using generic defaults",
			slog.String("sector", table.Sector()))
	}

	ev := evaluator{
		engine:   e,
		logger:   logger,
		input:    Input{Statements: statements, Assumptions: assumptions},
		table:    table,
		enricher: enricher{catalog: e.catalog, lang: company.Lang()},
	}

	results := make([]domain.AnalysisResult, len(eligible))
	var (
		progressMu sync.Mutex
		done       int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, d := range eligible {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ev.evaluate(gctx, d)
			if cfg.progress != nil {
				progressMu.Lock()
				done++
				cfg.progress(done, len(eligible), results[i])
				progressMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := summarize(e.catalog, company, e.now(), results)
	summary.PeriodFrom = statements[0].Label()
	summary.PeriodTo = statements[len(statements)-1].Label()

	var warnings []string
	for _, s := range statements {
		warnings = append(warnings, s.Validate()...)
	}

	return &domain.Report{
		ExecutiveSummary: summary,
		Analyses:         results,
		Warnings:         warnings,
	}, nil
}

// evaluator holds everything shared by the definitions of one run.
// All fields are read-only while definitions execute.
type evaluator struct {
	engine   *Engine
	logger   *slog.Logger
	input    Input
	table    *benchmark.Table
	enricher enricher
}

func (ev evaluator) evaluate(ctx context.Context, d Definition) domain.AnalysisResult {
	en := ev.enricher
	r := domain.AnalysisResult{
		ID:          d.ID,
		Name:        d.Name.In(en.lang),
		Tier:        int(d.Tier),
		Category:    string(d.Category),
		Subcategory: string(d.Subcategory),
		Unit:        string(d.Unit),
		Charts:      []domain.ChartSeries{},
		Risks:       []string{},
		Forecasts:   []string{},
	}
	en.describe(d, &r)

	bench, ok := ev.table.Lookup(d.BenchmarkKey)
	if !ok {
		bench = d.Baseline
		r.BenchmarkFallback = true
		ev.logger.DebugContext(ctx, "benchmark fallback", slog.String("analysis", d.ID), slog.Float64("default", bench))
	}
	r.IndustryAverage = bench

	value, err := safeCompute(d, ev.input)
	switch {
	case err != nil:
		attrs := []any{slog.String("analysis", d.ID), slog.String("error", err.Error())}
		var pe *panicError
		if errors.As(err, &pe) {
			attrs = append(attrs, slog.String("stack", string(pe.stack)))
		}
		ev.logger.WarnContext(ctx, "analysis computation failed", attrs...)
		r.Status = domain.StatusFailed
		r.Error = computeFault
		r.Result = domain.NotApplicable()
		ev.unrated(&r)
		en.narrateMissing(&r)

	case value.IsNotApplicable():
		r.Status = domain.StatusNotApplicable
		r.Result = value
		ev.unrated(&r)
		en.narrateMissing(&r)

	case value.IsText():
		r.Status = domain.StatusOK
		r.Result = domain.Text(en.formatValue(value, d.Unit))
		ev.unrated(&r)
		en.narrateText(d, &r)

	default:
		v, _ := value.Float()
		c := compare(v, bench, d.Polarity)
		r.Status = domain.StatusOK
		r.Result = value
		r.Rating = c.rating
		r.DifferencePercent = c.diff
		r.ComparisonWithIndustry = en.comparisonText(c)
		r.CompetitivePosition = en.text("position."+c.position, nil)

		var history []float64
		if ev.engine.charts {
			series, points := ev.history(d)
			history = points
			r.Charts = append(r.Charts, series)
		}
		r.Charts = append(r.Charts, benchmarkSeries(r.Name, value, bench))
		en.narrate(d, &r, c, history)
	}

	infrastructure.RecordAnalysisResult(ctx, ev.engine.metrics, r.Category, string(r.Status), string(r.Rating), r.BenchmarkFallback)
	return r
}

// unrated marks a result that cannot be compared with its benchmark
func (ev evaluator) unrated(r *domain.AnalysisResult) {
	r.Rating = domain.RatingAcceptable
	r.ComparisonWithIndustry = ev.enricher.text("comparison.not_comparable", nil)
	r.CompetitivePosition = ev.enricher.text("position."+PositionNotRated, nil)
}

// history evaluates d on every chronological prefix that satisfies MinHistory.
// It returns the chart series and the numeric points, oldest first.
func (ev evaluator) history(d Definition) (domain.ChartSeries, []float64) {
	statements := ev.input.Statements
	series := domain.ChartSeries{Name: "history", Kind: "line", Points: []domain.ChartPoint{}}
	var points []float64
	for k := d.MinHistory; k <= len(statements); k++ {
		in := Input{Statements: statements[:k:k], Assumptions: ev.input.Assumptions}
		v, err := safeCompute(d, in)
		if err != nil {
			v = domain.NotApplicable()
		}
		series.Points = append(series.Points, domain.ChartPoint{Label: statements[k-1].Label(), Value: v})
		if f, ok := v.Float(); ok {
			points = append(points, f)
		}
	}
	return series, points
}

// benchmarkSeries pairs the company value with the industry average
func benchmarkSeries(name string, value domain.Value, bench float64) domain.ChartSeries {
	return domain.ChartSeries{
		Name: "benchmark",
		Kind: "bar",
		Points: []domain.ChartPoint{
			{Label: name, Value: value},
			{Label: "industry", Value: domain.Number(bench)},
		},
	}
}

// panicError carries a recovered compute panic
type panicError struct {
	id    string
	value any
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprintf("analysis %s panicked: %v", p.id, p.value)
}

// safeCompute runs d.Compute, converting a panic into an error
func safeCompute(d Definition, in Input) (v domain.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &panicError{id: d.ID, value: p, stack: debug.Stack()}
			v = domain.NotApplicable()
		}
	}()
	return d.Compute(in), nil
}
