package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanalytics/internal/analysis"
	"finanalytics/internal/infrastructure"
	"finanalytics/internal/shared/testutil"
	"finanalytics/pkg/contracts/domain"
	"finanalytics/pkg/contracts/events"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAnalyzer records its calls and returns a canned report
type fakeAnalyzer struct {
	registry *analysis.Registry
	err      error
	block    bool

	company  domain.CompanyInfo
	runID    string
	options  int
	deadline bool
}

func (f *fakeAnalyzer) Run(ctx context.Context, statements []domain.FinancialStatement, company domain.CompanyInfo, opts ...analysis.RunOption) (*domain.Report, error) {
	f.company = company
	f.runID = infrastructure.RunID(ctx)
	f.options = len(opts)
	_, f.deadline = ctx.Deadline()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Report{ExecutiveSummary: domain.ExecutiveSummary{
		Company:       company,
		TotalAnalyses: 1,
	}}, nil
}

func (f *fakeAnalyzer) Registry() *analysis.Registry {
	if f.registry == nil {
		return analysis.Default()
	}
	return f.registry
}

func newService(engine Analyzer, cfg AnalysisServiceConfig) *AnalysisService {
	return NewAnalysisService(engine, NewReportStore(10), cfg, discardLogger())
}

func TestAnalyzeStoresRun(t *testing.T) {
	fake := &fakeAnalyzer{}
	svc := newService(fake, AnalysisServiceConfig{DefaultLanguage: domain.LanguageArabic})

	run, err := svc.Analyze(context.Background(), RunRequest{
		Company:    testutil.Company(),
		Statements: testutil.Statements(),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, run.ID, fake.runID, "run id is carried on the context")
	assert.Equal(t, domain.LanguageArabic, fake.company.Language, "default language applied")
	assert.Equal(t, 1, fake.options, "only the selection option without assumptions")
	assert.False(t, fake.deadline)
	assert.Equal(t, time.UTC, run.CreatedAt.Location())

	stored, err := svc.Get(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Same(t, run, stored)
	assert.Equal(t, 1, svc.StoredRuns())
	assert.Len(t, svc.List(context.Background(), 0), 1)
}

func TestAnalyzeKeepsRequestedLanguage(t *testing.T) {
	fake := &fakeAnalyzer{}
	svc := newService(fake, AnalysisServiceConfig{DefaultLanguage: domain.LanguageArabic})

	company := testutil.Company()
	company.Language = domain.LanguageEnglish
	assumptions := analysis.DefaultAssumptions()

	_, err := svc.Analyze(context.Background(), RunRequest{
		Company:     company,
		Statements:  testutil.Statements(),
		Assumptions: &assumptions,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageEnglish, fake.company.Language)
	assert.Equal(t, 2, fake.options)
}

func TestAnalyzeRejections(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AnalysisServiceConfig
		sel     analysis.Selection
		wantErr error
	}{
		{
			name:    "too many ids",
			cfg:     AnalysisServiceConfig{MaxSelectionIDs: 2},
			sel:     analysis.Selection{IDs: []string{"current_ratio", "quick_ratio", "net_profit_margin"}},
			wantErr: ErrTooManySelection,
		},
		{
			name:    "too many statements",
			cfg:     AnalysisServiceConfig{MaxStatements: 3},
			wantErr: ErrTooManyStatements,
		},
		{
			name:    "unknown category",
			sel:     analysis.Selection{Categories: []string{"ratios", "astrology"}},
			wantErr: ErrUnknownCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAnalyzer{}
			svc := newService(fake, tt.cfg)

			_, err := svc.Analyze(context.Background(), RunRequest{
				Company:    testutil.Company(),
				Statements: testutil.Statements(),
				Selection:  tt.sel,
			})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, fake.runID, "engine must not run")
			assert.Zero(t, svc.StoredRuns())
		})
	}
}

func TestAnalyzeUnknownCategoryNamesOffender(t *testing.T) {
	svc := newService(&fakeAnalyzer{}, AnalysisServiceConfig{})
	_, err := svc.Analyze(context.Background(), RunRequest{
		Selection: analysis.Selection{Categories: []string{"liquidity", "astrology"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "astrology")
	assert.NotContains(t, err.Error(), "liquidity", "subcategories are valid filters")
}

func TestAnalyzeEngineError(t *testing.T) {
	fake := &fakeAnalyzer{err: analysis.ErrNoStatements}
	svc := newService(fake, AnalysisServiceConfig{})

	_, err := svc.Analyze(context.Background(), RunRequest{Company: testutil.Company()})
	require.ErrorIs(t, err, analysis.ErrNoStatements)
	assert.Contains(t, err.Error(), fake.runID)
	assert.Zero(t, svc.StoredRuns())
}

func TestAnalyzeTimeout(t *testing.T) {
	fake := &fakeAnalyzer{block: true}
	svc := newService(fake, AnalysisServiceConfig{RunTimeout: 20 * time.Millisecond})

	_, err := svc.Analyze(context.Background(), RunRequest{
		Company:    testutil.Company(),
		Statements: testutil.Statements(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, fake.deadline)
}

func TestAnalyzeWithEngine(t *testing.T) {
	engine := analysis.NewEngine(analysis.WithLogger(discardLogger()), analysis.WithWorkers(2))
	svc := newService(engine, AnalysisServiceConfig{})

	run, err := svc.Analyze(context.Background(), RunRequest{
		Company:    testutil.Company(),
		Statements: testutil.Statements(),
		Selection:  analysis.Selection{Categories: []string{"liquidity"}},
	})
	require.NoError(t, err)

	require.NotEmpty(t, run.Report.Analyses)
	for _, r := range run.Report.Analyses {
		assert.Equal(t, "ratios", r.Category)
	}
	summary := run.Summary()
	assert.Equal(t, testutil.CompanyName, summary.Company)
	assert.Equal(t, "FY2021", summary.PeriodFrom)
	assert.Equal(t, "FY2024", summary.PeriodTo)
	assert.Equal(t, len(run.Report.Analyses), summary.TotalAnalyses)

	_, err = svc.Analyze(context.Background(), RunRequest{
		Company:    testutil.Company(),
		Statements: testutil.Statements(),
		Selection:  analysis.Selection{IDs: []string{"no_such_ratio"}},
	})
	assert.ErrorIs(t, err, analysis.ErrUnknownAnalysis)
}

func TestDefinitionsAndCategories(t *testing.T) {
	svc := newService(&fakeAnalyzer{}, AnalysisServiceConfig{})
	ctx := context.Background()

	all, err := svc.Definitions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, analysis.Default().Len())

	liquidity, err := svc.Definitions(ctx, " liquidity ")
	require.NoError(t, err)
	require.NotEmpty(t, liquidity)
	for _, d := range liquidity {
		assert.Equal(t, "liquidity", d.Subcategory)
	}

	_, err = svc.Definitions(ctx, "astrology")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	categories := svc.Categories(ctx)
	require.NotEmpty(t, categories)
	total := 0
	for _, c := range categories {
		total += c.Count
	}
	assert.Equal(t, len(all), total)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func TestAnalyzePublishesEvents(t *testing.T) {
	engine := analysis.NewEngine(analysis.WithLogger(discardLogger()), analysis.WithWorkers(4))
	svc := newService(engine, AnalysisServiceConfig{})
	pub := &recordingPublisher{}
	svc.SetEventPublisher(pub)

	run, err := svc.Analyze(context.Background(), RunRequest{
		Company:    testutil.Company(),
		Statements: testutil.Statements(),
	})
	require.NoError(t, err)

	types := pub.types()
	require.GreaterOrEqual(t, len(types), 3)
	assert.Equal(t, events.TypeRunStarted, types[0])
	assert.Equal(t, events.TypeRunCompleted, types[len(types)-1])

	progress := 0
	lastPercent := -1
	for _, e := range pub.events {
		assert.Equal(t, run.ID, e.RunID)
		if e.Type != events.TypeRunProgress {
			continue
		}
		progress++
		p := e.Data.(events.RunProgress)
		assert.Greater(t, p.Percent, lastPercent, "progress only moves forward")
		lastPercent = p.Percent
	}
	assert.Equal(t, 100, lastPercent)
	assert.LessOrEqual(t, progress, 25, "progress is throttled")

	done := pub.events[len(pub.events)-1].Data.(events.RunCompleted)
	assert.Equal(t, len(run.Report.Analyses), done.Analyses)
	assert.Equal(t, testutil.CompanyName, done.Company)
}

func TestAnalyzePublishesFailure(t *testing.T) {
	fake := &fakeAnalyzer{err: errors.New("boom")}
	svc := newService(fake, AnalysisServiceConfig{})
	pub := &recordingPublisher{}
	svc.SetEventPublisher(pub)

	_, err := svc.Analyze(context.Background(), RunRequest{Company: testutil.Company(), Statements: testutil.Statements()})
	require.Error(t, err)

	assert.Equal(t, []events.Type{events.TypeRunStarted, events.TypeRunFailed}, pub.types())
	assert.Equal(t, "boom", pub.events[1].Data.(events.RunFailed).Error)
	assert.Equal(t, 2, fake.options, "selection plus progress")
}

func TestAnalyzeRejectionsPublishNothing(t *testing.T) {
	svc := newService(&fakeAnalyzer{}, AnalysisServiceConfig{MaxStatements: 1})
	pub := &recordingPublisher{}
	svc.SetEventPublisher(pub)

	_, err := svc.Analyze(context.Background(), RunRequest{Company: testutil.Company(), Statements: testutil.Statements()})
	require.ErrorIs(t, err, ErrTooManyStatements)
	assert.Empty(t, pub.types())
}
