package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"finanalytics/pkg/contracts/domain"
)

// failingProvider simulates an unreachable benchmark store
type failingProvider struct{}

func (failingProvider) Benchmark(context.Context, string, string) (float64, error) {
	return 0, errors.New("connection refused")
}

func TestRunRejectsEmptyStatements(t *testing.T) {
	report, err := testEngine().Run(context.Background(), nil, testCompany())
	assert.ErrorIs(t, err, ErrNoStatements)
	assert.Nil(t, report)
}

func TestRunRejectsUnknownSelection(t *testing.T) {
	_, err := testEngine().Run(context.Background(), sampleStatements(), testCompany(),
		WithSelection(Selection{IDs: []string{"current_ratio", "no_such_analysis"}}))
	assert.ErrorIs(t, err, ErrUnknownAnalysis)
	assert.Contains(t, err.Error(), "no_such_analysis")
}

func TestRunCurrentRatioScenario(t *testing.T) {
	report, err := testEngine().Run(context.Background(), sampleStatements(), testCompany())
	require.NoError(t, err)

	r, ok := report.Find("current_ratio")
	require.True(t, ok)

	v, isNum := r.Result.Float()
	require.True(t, isNum)
	assert.InDelta(t, 2.7538, v, 1e-4)
	assert.Equal(t, 2.0, r.IndustryAverage)
	assert.Equal(t, domain.RatingExcellent, r.Rating)
	assert.Equal(t, domain.StatusOK, r.Status)
	require.NotNil(t, r.DifferencePercent)
	assert.InDelta(t, 37.69, *r.DifferencePercent, 0.01)
	assert.Equal(t, "above benchmark by 37.7%", r.ComparisonWithIndustry)
	assert.Equal(t, "superior/first quartile", r.CompetitivePosition)
	assert.False(t, r.BenchmarkFallback)
	assert.Contains(t, r.SWOTAnalysis.Strengths, "Strong Current Ratio")
	assert.NotEmpty(t, r.Interpretation)
	assert.NotEmpty(t, r.StrategicRecommendations.FinancingDecisions)
}

func TestRunSinglePeriodSkipsHistoryAnalyses(t *testing.T) {
	statements := []domain.FinancialStatement{statement(2024, 1)}
	e := testEngine()

	report, err := e.Run(context.Background(), statements, testCompany())
	require.NoError(t, err)
	require.NotEmpty(t, report.Analyses)

	for _, r := range report.Analyses {
		d, ok := e.Registry().Get(r.ID)
		require.True(t, ok)
		assert.Equal(t, 1, d.MinHistory, "%s needs %d periods", r.ID, d.MinHistory)
	}
	_, found := report.Find("revenue_growth")
	assert.False(t, found)
	_, found = report.Find("revenue_trend_index")
	assert.False(t, found)
}

func TestRunZeroReceivablesIsNotApplicable(t *testing.T) {
	s := statement(2024, 1)
	s.BalanceSheet.AccountsReceivable = 0
	s.BalanceSheet.OtherCurrentAssets += 300e6

	report, err := testEngine().Run(context.Background(), []domain.FinancialStatement{s}, testCompany())
	require.NoError(t, err)

	r, ok := report.Find("receivables_turnover")
	require.True(t, ok)
	assert.True(t, r.Result.IsNotApplicable())
	assert.Equal(t, domain.StatusNotApplicable, r.Status)
	assert.Equal(t, domain.RatingAcceptable, r.Rating)
	assert.Nil(t, r.DifferencePercent)
	assert.Empty(t, r.Error)
}

func TestRunSelectionMatchesFullRun(t *testing.T) {
	e := testEngine()
	ctx := context.Background()

	full, err := e.Run(ctx, sampleStatements(), testCompany())
	require.NoError(t, err)
	subset, err := e.Run(ctx, sampleStatements(), testCompany(),
		WithSelection(Selection{Categories: []string{"liquidity"}}))
	require.NoError(t, err)

	require.NotEmpty(t, subset.Analyses)
	assert.Less(t, len(subset.Analyses), len(full.Analyses))
	for _, r := range subset.Analyses {
		assert.Equal(t, string(SubLiquidity), r.Subcategory)
		counterpart, ok := full.Find(r.ID)
		require.True(t, ok)
		assert.Equal(t, counterpart, r)
	}
}

func TestRunSelectionByIDAndCategory(t *testing.T) {
	report, err := testEngine().Run(context.Background(), sampleStatements(), testCompany(),
		WithSelection(Selection{IDs: []string{"altman_z_score"}, Categories: []string{"market"}}))
	require.NoError(t, err)

	_, ok := report.Find("altman_z_score")
	assert.True(t, ok)
	_, ok = report.Find("price_to_earnings")
	assert.True(t, ok)
	_, ok = report.Find("current_ratio")
	assert.False(t, ok)
}

func TestRunIsCompleteAndOrdered(t *testing.T) {
	e := testEngine()
	statements := sampleStatements()

	report, err := e.Run(context.Background(), statements, testCompany())
	require.NoError(t, err)

	var want []string
	for _, d := range e.Registry().All() {
		if d.MinHistory <= len(statements) {
			want = append(want, d.ID)
		}
	}
	got := make([]string, len(report.Analyses))
	for i, r := range report.Analyses {
		got[i] = r.ID
	}
	assert.Equal(t, want, got)
	assert.Equal(t, len(want), report.ExecutiveSummary.TotalAnalyses)
}

func TestRunIsDeterministic(t *testing.T) {
	ctx := context.Background()
	sequential, err := testEngine(WithWorkers(1)).Run(ctx, sampleStatements(), testCompany())
	require.NoError(t, err)
	parallel, err := testEngine(WithWorkers(16)).Run(ctx, sampleStatements(), testCompany())
	require.NoError(t, err)
	again, err := testEngine(WithWorkers(16)).Run(ctx, sampleStatements(), testCompany())
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
	assert.Equal(t, parallel, again)
}

func TestRunConcurrentRunsShareEngine(t *testing.T) {
	e := testEngine(WithWorkers(4))
	ctx := context.Background()
	want, err := e.Run(ctx, sampleStatements(), testCompany())
	require.NoError(t, err)

	var wg sync.WaitGroup
	reports := make([]*domain.Report, 8)
	for i := range reports {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i], _ = e.Run(ctx, sampleStatements(), testCompany())
		}()
	}
	wg.Wait()

	for _, r := range reports {
		assert.Equal(t, want, r)
	}
}

func TestRunDoesNotMutateInput(t *testing.T) {
	statements := sampleStatements()
	before := sampleStatements()

	_, err := testEngine().Run(context.Background(), statements, testCompany())
	require.NoError(t, err)
	assert.Equal(t, before, statements)
}

func TestRunZeroStatementsNeverFail(t *testing.T) {
	statements := []domain.FinancialStatement{
		{Period: "FY2021", Year: 2021},
		{Period: "FY2022", Year: 2022},
		{Period: "FY2023", Year: 2023},
		{Period: "FY2024", Year: 2024},
	}

	report, err := testEngine().Run(context.Background(), statements, testCompany())
	require.NoError(t, err)

	for _, r := range report.Analyses {
		assert.NotEqual(t, domain.StatusFailed, r.Status, r.ID)
		if r.Status == domain.StatusNotApplicable {
			assert.Equal(t, domain.RatingAcceptable, r.Rating, r.ID)
		}
	}
	assert.Zero(t, report.ExecutiveSummary.Failed)
	assert.Positive(t, report.ExecutiveSummary.NotApplicable)

	r, ok := report.Find("current_ratio")
	require.True(t, ok)
	assert.True(t, r.Result.IsNotApplicable())
}

func TestRunRecoversComputePanics(t *testing.T) {
	reg, err := NewRegistry([]Definition{
		{ID: "boom", Category: CategoryRatios, Subcategory: SubLiquidity, Polarity: HigherIsBetter, Baseline: 1,
			Name:    Label{"Boom", "انفجار"},
			Compute: func(in Input) domain.Value { panic("index out of range") }},
		{ID: "current_ratio", Category: CategoryRatios, Subcategory: SubLiquidity, Polarity: HigherIsBetter, Baseline: 2,
			Name:    Label{"Current Ratio", "نسبة التداول"},
			Compute: func(in Input) domain.Value { return ratio(bs(in).TotalCurrentAssets, bs(in).TotalCurrentLiabilities) }},
	})
	require.NoError(t, err)

	report, err := testEngine(WithRegistry(reg)).Run(context.Background(), sampleStatements(), testCompany())
	require.NoError(t, err)
	require.Len(t, report.Analyses, 2)

	boom := report.Analyses[0]
	assert.Equal(t, domain.StatusFailed, boom.Status)
	assert.Equal(t, computeFault, boom.Error)
	assert.Equal(t, domain.RatingAcceptable, boom.Rating)
	assert.True(t, boom.Result.IsNotApplicable())

	assert.Equal(t, domain.StatusOK, report.Analyses[1].Status)
	assert.Equal(t, 1, report.ExecutiveSummary.Failed)
}

func TestRunCancelledReturnsNoReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := testEngine().Run(ctx, sampleStatements(), testCompany())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)
}

func TestRunBenchmarkFallback(t *testing.T) {
	report, err := testEngine(WithProvider(failingProvider{})).Run(context.Background(), sampleStatements(), testCompany())
	require.NoError(t, err)

	for _, r := range report.Analyses {
		assert.True(t, r.BenchmarkFallback, r.ID)
	}
	r, ok := report.Find("current_ratio")
	require.True(t, ok)
	assert.Equal(t, 2.0, r.IndustryAverage)
	assert.Equal(t, domain.RatingExcellent, r.Rating)
}

func TestRunSectorBenchmarks(t *testing.T) {
	company := testCompany()
	company.Sector = "Banking"

	report, err := testEngine().Run(context.Background(), sampleStatements(), company)
	require.NoError(t, err)
	r, _ := report.Find("current_ratio")
	assert.Equal(t, 1.1, r.IndustryAverage)

	company.BenchmarkType = domain.BenchmarkGeneral
	report, err = testEngine().Run(context.Background(), sampleStatements(), company)
	require.NoError(t, err)
	r, _ = report.Find("current_ratio")
	assert.Equal(t, 2.0, r.IndustryAverage)
}

func TestRunArabicOutput(t *testing.T) {
	company := testCompany()
	company.Language = domain.LanguageArabic

	report, err := testEngine().Run(context.Background(), sampleStatements(), company)
	require.NoError(t, err)

	r, ok := report.Find("current_ratio")
	require.True(t, ok)
	assert.Equal(t, "نسبة التداول", r.Name)
	assert.Equal(t, "أعلى من المعيار بنسبة 37.7%", r.ComparisonWithIndustry)
	assert.Equal(t, "متفوق/الربع الأول", r.CompetitivePosition)
	assert.Contains(t, r.SWOTAnalysis.Strengths, "قوة نسبة التداول")
	assert.NotEmpty(t, report.ExecutiveSummary.StrategicRecommendations)
}

func TestRunTextResults(t *testing.T) {
	report, err := testEngine().Run(context.Background(), sampleStatements(), testCompany())
	require.NoError(t, err)

	r, ok := report.Find("altman_zone")
	require.True(t, ok)
	assert.Equal(t, domain.StatusOK, r.Status)
	assert.True(t, r.Result.IsText())
	assert.Contains(t, []string{"Safe zone", "Grey zone", "Distress zone"}, r.Result.String())
	assert.Equal(t, domain.RatingAcceptable, r.Rating)
	assert.Equal(t, "not comparable with benchmark", r.ComparisonWithIndustry)
	assert.Nil(t, r.DifferencePercent)
}

func TestRunUnbenchmarkedResults(t *testing.T) {
	report, err := testEngine().Run(context.Background(), sampleStatements(), testCompany())
	require.NoError(t, err)

	r, ok := report.Find("revenue_forecast")
	require.True(t, ok)
	assert.Equal(t, domain.StatusOK, r.Status)
	assert.Nil(t, r.DifferencePercent)
	assert.Equal(t, "no benchmark available", r.ComparisonWithIndustry)
	assert.Equal(t, domain.RatingAcceptable, r.Rating)
	assert.Empty(t, r.SWOTAnalysis.Strengths)
	assert.Empty(t, r.SWOTAnalysis.Weaknesses)
}

func TestRunCharts(t *testing.T) {
	report, err := testEngine().Run(context.Background(), sampleStatements(), testCompany())
	require.NoError(t, err)

	r, _ := report.Find("current_ratio")
	require.Len(t, r.Charts, 2)
	history := r.Charts[0]
	assert.Equal(t, "history", history.Name)
	require.Len(t, history.Points, 4)
	assert.Equal(t, "FY2021", history.Points[0].Label)
	assert.Equal(t, "FY2024", history.Points[3].Label)
	assert.Equal(t, "benchmark", r.Charts[1].Name)

	growth, _ := report.Find("revenue_growth")
	require.Len(t, growth.Charts, 2)
	assert.Len(t, growth.Charts[0].Points, 3, "history starts at the first period with enough history")

	noCharts, err := testEngine(WithHistoryCharts(false)).Run(context.Background(), sampleStatements(), testCompany())
	require.NoError(t, err)
	r, _ = noCharts.Find("current_ratio")
	require.Len(t, r.Charts, 1)
	assert.Equal(t, "benchmark", r.Charts[0].Name)
}

func TestRunSummary(t *testing.T) {
	report, err := testEngine().Run(context.Background(), sampleStatements(), testCompany())
	require.NoError(t, err)

	s := report.ExecutiveSummary
	assert.Equal(t, fixedDate, s.AnalysisDate)
	assert.Equal(t, "FY2021", s.PeriodFrom)
	assert.Equal(t, "FY2024", s.PeriodTo)
	assert.Equal(t, len(report.Analyses), s.Ratings.Total())
	assert.LessOrEqual(t, len(s.Strengths), MaxSWOTItems)
	assert.LessOrEqual(t, len(s.Risks), MaxRiskItems)
	assert.LessOrEqual(t, len(s.Forecasts), MaxForecastItems)
	assert.InDelta(t, 3, s.OverallScore, 2)
	assert.Empty(t, report.Warnings)
}

func TestRunStatementWarnings(t *testing.T) {
	statements := sampleStatements()
	statements[3].BalanceSheet.TotalAssets += 500e6

	report, err := testEngine().Run(context.Background(), statements, testCompany())
	require.NoError(t, err)
	require.NotEmpty(t, report.Warnings)
	assert.True(t, strings.HasPrefix(report.Warnings[0], "FY2024"))
}

func TestRunWithAssumptions(t *testing.T) {
	ctx := context.Background()
	e := testEngine()
	sel := WithSelection(Selection{IDs: []string{"cost_of_equity"}})

	base, err := e.Run(ctx, sampleStatements(), testCompany(), sel)
	require.NoError(t, err)

	a := DefaultAssumptions()
	a.Beta = 2
	shocked, err := e.Run(ctx, sampleStatements(), testCompany(), sel, WithAssumptions(a))
	require.NoError(t, err)

	v1, _ := base.Analyses[0].Result.Float()
	v2, _ := shocked.Analyses[0].Result.Float()
	assert.Greater(t, v2, v1)
}

func TestRunReportsProgress(t *testing.T) {
	var (
		dones []int
		ids   = map[string]bool{}
		total int
	)
	progress := WithProgress(func(done, n int, r domain.AnalysisResult) {
		dones = append(dones, done)
		ids[r.ID] = true
		total = n
	})

	report, err := testEngine().Run(context.Background(), sampleStatements(), testCompany(),
		WithSelection(Selection{Categories: []string{"liquidity"}}), progress)
	require.NoError(t, err)

	require.Len(t, dones, len(report.Analyses))
	assert.Equal(t, len(report.Analyses), total)
	for i, d := range dones {
		assert.Equal(t, i+1, d)
	}
	for _, a := range report.Analyses {
		assert.True(t, ids[a.ID], a.ID)
	}
}

func TestRunAnnotatesSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	report, err := testEngine().Run(context.Background(), sampleStatements(), testCompany())
	require.NoError(t, err)

	var attrs map[attribute.Key]attribute.Value
	for _, span := range recorder.Ended() {
		if span.Name() == "analysis.run" {
			attrs = make(map[attribute.Key]attribute.Value)
			for _, kv := range span.Attributes() {
				attrs[kv.Key] = kv.Value
			}
		}
	}
	require.NotNil(t, attrs, "analysis.run span recorded")

	summary := report.ExecutiveSummary
	assert.Equal(t, testCompany().Name, attrs["company.name"].AsString())
	assert.Equal(t, int64(len(report.Analyses)), attrs["analyses.count"].AsInt64())
	assert.Equal(t, int64(summary.NotApplicable), attrs["analyses.not_applicable"].AsInt64())
	assert.Equal(t, summary.OverallScore, attrs["summary.overall_score"].AsFloat64())
	assert.Equal(t, string(summary.OverallRating), attrs["summary.overall_rating"].AsString())
	assert.Equal(t, int64(len(sampleStatements())), attrs["statements.count"].AsInt64())
}
