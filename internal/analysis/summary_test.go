package analysis

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanalytics/internal/i18n"
	"finanalytics/pkg/contracts/domain"
)

func ptr(f float64) *float64 { return &f }

func result(id string, rating domain.Rating, swot domain.SWOT) domain.AnalysisResult {
	return domain.AnalysisResult{
		ID:                id,
		Status:            domain.StatusOK,
		Rating:            rating,
		Result:            domain.Number(1),
		DifferencePercent: ptr(0),
		SWOTAnalysis:      swot,
	}
}

func TestSummarizeDedupesAcrossResults(t *testing.T) {
	results := []domain.AnalysisResult{
		result("equity_ratio", domain.RatingPoor, domain.SWOT{Weaknesses: []string{"Low equity ratio"}}),
		result("debt_ratio", domain.RatingPoor, domain.SWOT{Weaknesses: []string{"Low equity ratio", "High leverage"}}),
	}

	s := Summarize(testCompany(), fixedDate, results)

	assert.Equal(t, []string{"Low equity ratio", "High leverage"}, s.Weaknesses)
	assert.Equal(t, 2, s.Ratings.Poor)
	assert.Equal(t, 2, s.TotalAnalyses)
}

func TestSummarizeCapsLists(t *testing.T) {
	var results []domain.AnalysisResult
	for i := 0; i < 40; i++ {
		r := result(fmt.Sprintf("a%d", i), domain.RatingGood, domain.SWOT{
			Strengths:     []string{fmt.Sprintf("strength %d", i)},
			Weaknesses:    []string{fmt.Sprintf("weakness %d", i)},
			Opportunities: []string{fmt.Sprintf("opportunity %d", i)},
			Threats:       []string{fmt.Sprintf("threat %d", i)},
		})
		r.Risks = []string{fmt.Sprintf("risk %d", i)}
		r.Forecasts = []string{fmt.Sprintf("forecast %d", i)}
		results = append(results, r)
	}

	s := Summarize(testCompany(), fixedDate, results)

	assert.Len(t, s.Strengths, MaxSWOTItems)
	assert.Len(t, s.Weaknesses, MaxSWOTItems)
	assert.Len(t, s.Opportunities, MaxSWOTItems)
	assert.Len(t, s.Threats, MaxSWOTItems)
	assert.Len(t, s.Risks, MaxRiskItems)
	assert.Len(t, s.Forecasts, MaxForecastItems)
	assert.Equal(t, "strength 0", s.Strengths[0])
	assert.Equal(t, "risk 14", s.Risks[14])
}

func TestSummarizeIsIdempotent(t *testing.T) {
	report, err := testEngine().Run(context.Background(), sampleStatements(), testCompany())
	require.NoError(t, err)

	again := Summarize(report.ExecutiveSummary.Company, fixedDate, report.Analyses)
	once := Summarize(report.ExecutiveSummary.Company, fixedDate, report.Analyses)
	assert.Equal(t, once, again)
}

func TestSummarizeCountsOrderInvariant(t *testing.T) {
	report, err := testEngine().Run(context.Background(), sampleStatements(), testCompany())
	require.NoError(t, err)

	reversed := make([]domain.AnalysisResult, len(report.Analyses))
	for i, r := range report.Analyses {
		reversed[len(reversed)-1-i] = r
	}

	a := Summarize(testCompany(), fixedDate, report.Analyses)
	b := Summarize(testCompany(), fixedDate, reversed)

	assert.Equal(t, a.Ratings, b.Ratings)
	assert.Equal(t, a.OverallScore, b.OverallScore)
	assert.Equal(t, a.OverallRating, b.OverallRating)
	assert.Equal(t, a.NotApplicable, b.NotApplicable)
}

func TestSummarizeUnusableResultsRateAcceptable(t *testing.T) {
	results := []domain.AnalysisResult{
		result("a", domain.RatingExcellent, domain.SWOT{Strengths: []string{"kept"}}),
		{ID: "b", Status: domain.StatusNotApplicable, Rating: domain.RatingAcceptable, Result: domain.NotApplicable(),
			SWOTAnalysis: domain.SWOT{Weaknesses: []string{"dropped"}}},
		{ID: "c", Status: domain.StatusFailed, Rating: domain.RatingAcceptable, Result: domain.NotApplicable(),
			Error: computeFault},
	}

	s := Summarize(testCompany(), fixedDate, results)

	assert.Equal(t, 3, s.TotalAnalyses)
	assert.Equal(t, 1, s.NotApplicable)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 3, s.Ratings.Total())
	assert.Equal(t, 2, s.Ratings.Acceptable, "not applicable and failed results rate acceptable")
	assert.Equal(t, 1, s.Ratings.Excellent)
	assert.Equal(t, []string{"kept"}, s.Strengths)
	assert.Empty(t, s.Weaknesses)
	assert.Equal(t, 5.0, s.OverallScore)
	assert.Equal(t, domain.RatingExcellent, s.OverallRating)
}

func TestSummarizeTalliesEveryResult(t *testing.T) {
	zero := domain.FinancialStatement{Period: "FY2024", Year: 2024, CompanyName: "Empty Co"}
	report, err := testEngine().Run(context.Background(), []domain.FinancialStatement{zero}, testCompany())
	require.NoError(t, err)

	s := report.ExecutiveSummary
	require.NotZero(t, s.NotApplicable)
	assert.Equal(t, len(report.Analyses), s.Ratings.Total())
	assert.Equal(t, len(report.Analyses), s.TotalAnalyses)

	acceptable := 0
	for _, r := range report.Analyses {
		if r.Rating == domain.RatingAcceptable {
			acceptable++
		}
	}
	assert.Equal(t, acceptable, s.Ratings.Acceptable)
}

func TestSummarizeOverallScore(t *testing.T) {
	unbenchmarked := result("forecast", domain.RatingAcceptable, domain.SWOT{})
	unbenchmarked.DifferencePercent = nil

	results := []domain.AnalysisResult{
		result("a", domain.RatingExcellent, domain.SWOT{}),
		result("b", domain.RatingGood, domain.SWOT{}),
		result("c", domain.RatingGood, domain.SWOT{}),
		unbenchmarked,
	}

	s := Summarize(testCompany(), fixedDate, results)

	assert.Equal(t, 3.67, s.OverallScore)
	assert.Equal(t, domain.RatingVeryGood, s.OverallRating)
	assert.Equal(t, 4, s.Ratings.Total())
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(testCompany(), fixedDate, nil)

	assert.Zero(t, s.TotalAnalyses)
	assert.Equal(t, domain.RatingAcceptable, s.OverallRating)
	assert.NotNil(t, s.Strengths)
	assert.NotNil(t, s.Risks)
}

func TestSummarizeRecommendationsFollowLanguage(t *testing.T) {
	ar := testCompany()
	ar.Language = domain.LanguageArabic

	en := Summarize(testCompany(), fixedDate, nil)
	arabic := Summarize(ar, fixedDate, nil)

	catalog := i18n.Default()
	assert.Equal(t, catalog.List(domain.LanguageEnglish, "summary.recommendations"), en.StrategicRecommendations)
	assert.Equal(t, catalog.List(domain.LanguageArabic, "summary.recommendations"), arabic.StrategicRecommendations)
	assert.NotEqual(t, en.StrategicRecommendations, arabic.StrategicRecommendations)
}

func TestRatingForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  domain.Rating
	}{
		{5, domain.RatingExcellent},
		{4.5, domain.RatingExcellent},
		{4.49, domain.RatingVeryGood},
		{3.5, domain.RatingVeryGood},
		{2.5, domain.RatingGood},
		{1.5, domain.RatingAcceptable},
		{1.49, domain.RatingPoor},
		{0, domain.RatingPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ratingForScore(tt.score), "score %v", tt.score)
	}
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, dedupe([]string{"a", "", "b", "a"}, 10))
	assert.Equal(t, []string{"a"}, dedupe([]string{"a", "b"}, 1))
	assert.Equal(t, []string{}, dedupe(nil, 10))
}
