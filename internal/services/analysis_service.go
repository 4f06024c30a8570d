package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"finanalytics/internal/analysis"
	"finanalytics/internal/infrastructure"
	"finanalytics/pkg/contracts/domain"
	"finanalytics/pkg/contracts/events"
)

// Analyzer runs the analysis catalogue over a statement history
type Analyzer interface {
	Run(ctx context.Context, statements []domain.FinancialStatement, company domain.CompanyInfo, opts ...analysis.RunOption) (*domain.Report, error)
	Registry() *analysis.Registry
}

// RunRequest is one request to analyze a company
type RunRequest struct {
	Company     domain.CompanyInfo
	Statements  []domain.FinancialStatement
	Selection   analysis.Selection
	Assumptions *analysis.Assumptions
}

// EventPublisher receives run lifecycle events. Publish must not block.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

// AnalysisServiceConfig tunes the analysis service
type AnalysisServiceConfig struct {
	RunTimeout      time.Duration
	DefaultLanguage domain.Language
	MaxSelectionIDs int
	MaxStatements   int
}

// AnalysisService runs analyses and keeps the resulting reports
type AnalysisService struct {
	engine Analyzer
	store  *ReportStore
	cfg    AnalysisServiceConfig
	events EventPublisher
	now    func() time.Time
	logger *slog.Logger
}

// NewAnalysisService creates the service
func NewAnalysisService(engine Analyzer, store *ReportStore, cfg AnalysisServiceConfig, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = domain.LanguageEnglish
	}
	return &AnalysisService{
		engine: engine,
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		logger: logger.With(slog.String("component", "analysis_service")),
	}
}

// SetEventPublisher streams run events to p. A nil p disables events.
func (s *AnalysisService) SetEventPublisher(p EventPublisher) {
	s.events = p
}

func (s *AnalysisService) publish(ctx context.Context, t events.Type, runID string, data interface{}) {
	if s.events != nil {
		s.events.Publish(ctx, events.New(t, runID, data))
	}
}

// progress publishes roughly every 5% of a run plus its last analysis
func (s *AnalysisService) progress(ctx context.Context, runID string) analysis.ProgressFunc {
	return func(done, total int, r domain.AnalysisResult) {
		step := total / 20
		if step < 1 {
			step = 1
		}
		if done%step != 0 && done != total {
			return
		}
		s.publish(ctx, events.TypeRunProgress, runID, events.RunProgress{
			Done:       done,
			Total:      total,
			Percent:    events.Percent(done, total),
			AnalysisID: r.ID,
			Status:     string(r.Status),
		})
	}
}

// Analyze runs the engine for req, stores the report and returns the run
func (s *AnalysisService) Analyze(ctx context.Context, req RunRequest) (*Run, error) {
	if s.cfg.MaxStatements > 0 && len(req.Statements) > s.cfg.MaxStatements {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyStatements, len(req.Statements), s.cfg.MaxStatements)
	}
	if s.cfg.MaxSelectionIDs > 0 && len(req.Selection.IDs) > s.cfg.MaxSelectionIDs {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManySelection, len(req.Selection.IDs), s.cfg.MaxSelectionIDs)
	}
	if err := s.checkCategories(req.Selection.Categories); err != nil {
		return nil, err
	}

	company := req.Company
	if company.Language == "" {
		company.Language = s.cfg.DefaultLanguage
	}

	runID := uuid.New().String()
	ctx = infrastructure.WithRunID(ctx, runID)
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	opts := []analysis.RunOption{analysis.WithSelection(req.Selection)}
	if req.Assumptions != nil {
		opts = append(opts, analysis.WithAssumptions(*req.Assumptions))
	}
	if s.events != nil {
		opts = append(opts, analysis.WithProgress(s.progress(ctx, runID)))
	}

	s.publish(ctx, events.TypeRunStarted, runID, events.RunStarted{Company: company.Name, Statements: len(req.Statements)})
	start := s.now()
	report, err := s.engine.Run(ctx, req.Statements, company, opts...)
	if err != nil {
		s.publish(ctx, events.TypeRunFailed, runID, events.RunFailed{Error: err.Error()})
		return nil, fmt.Errorf("analysis run %s: %w", runID, err)
	}

	run := &Run{
		ID:        runID,
		CreatedAt: start.UTC(),
		Duration:  s.now().Sub(start),
		Report:    report,
	}
	if evicted := s.store.Put(run); evicted != "" {
		s.logger.DebugContext(ctx, "evicted oldest analysis run", slog.String("evicted_run_id", evicted))
	}
	infrastructure.AddSpanEvent(ctx, "analysis.run.stored", map[string]interface{}{
		"run_id":   runID,
		"analyses": len(report.Analyses),
		"warnings": len(report.Warnings),
	})
	summary := report.ExecutiveSummary
	s.publish(ctx, events.TypeRunCompleted, runID, events.RunCompleted{
		Company:       company.Name,
		Analyses:      len(report.Analyses),
		Failed:        summary.Failed,
		OverallScore:  summary.OverallScore,
		OverallRating: string(summary.OverallRating),
		Duration:      run.Duration.String(),
	})

	s.logger.InfoContext(ctx, "analysis run stored",
		slog.String("company", company.Name),
		slog.Int("statements", len(req.Statements)),
		slog.Int("analyses", len(report.Analyses)),
		slog.Int("warnings", len(report.Warnings)),
		slog.Duration("duration", run.Duration))
	return run, nil
}

// checkCategories rejects category filters that match nothing in the registry
func (s *AnalysisService) checkCategories(categories []string) error {
	var unknown []string
	for _, c := range categories {
		if len(s.engine.Registry().Filter(analysis.Selection{Categories: []string{c}})) == 0 {
			unknown = append(unknown, c)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, strings.Join(unknown, ", "))
	}
	return nil
}

// Get returns a stored run
func (s *AnalysisService) Get(_ context.Context, id string) (*Run, error) {
	return s.store.Get(id)
}

// List returns the newest stored runs
func (s *AnalysisService) List(_ context.Context, limit int) []RunSummary {
	return s.store.List(limit)
}

// Definitions lists the catalogue, optionally restricted to one category or
// subcategory
func (s *AnalysisService) Definitions(_ context.Context, category string) ([]analysis.DefinitionInfo, error) {
	sel := analysis.Selection{}
	if c := strings.TrimSpace(category); c != "" {
		sel.Categories = []string{c}
	}

	defs := s.engine.Registry().Filter(sel)
	if !sel.Empty() && len(defs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	out := make([]analysis.DefinitionInfo, len(defs))
	for i, d := range defs {
		out[i] = d.Info()
	}
	return out, nil
}

// Categories lists the catalogue categories
func (s *AnalysisService) Categories(_ context.Context) []analysis.CategoryInfo {
	return s.engine.Registry().Categories()
}

// StoredRuns reports the number of runs held in memory
func (s *AnalysisService) StoredRuns() int {
	return s.store.Len()
}
