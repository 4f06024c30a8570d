package analysis

import (
	"math"
	"time"

	"finanalytics/internal/i18n"
	"finanalytics/pkg/contracts/domain"
)

// Summary list caps
const (
	MaxSWOTItems     = 10
	MaxRiskItems     = 15
	MaxForecastItems = 15
)

// Summarize rolls results into an executive summary using the embedded catalog.
// It is pure: the same results always produce the same summary.
func Summarize(company domain.CompanyInfo, date time.Time, results []domain.AnalysisResult) domain.ExecutiveSummary {
	return summarize(i18n.Default(), company, date, results)
}

func summarize(catalog *i18n.Catalog, company domain.CompanyInfo, date time.Time, results []domain.AnalysisResult) domain.ExecutiveSummary {
	s := domain.ExecutiveSummary{
		Company:       company,
		AnalysisDate:  date,
		TotalAnalyses: len(results),
	}

	var (
		strengths, weaknesses, opportunities, threats []string
		risks, forecasts                              []string
		scoreSum                                      int
		scored                                        int
	)
	for _, r := range results {
		// every result sits in one bucket; unusable ones add nothing else
		s.Ratings.Add(r.Rating)
		switch r.Status {
		case domain.StatusNotApplicable:
			s.NotApplicable++
			continue
		case domain.StatusFailed:
			s.Failed++
			continue
		}

		if r.DifferencePercent != nil {
			scoreSum += r.Rating.Score()
			scored++
		}
		strengths = append(strengths, r.SWOTAnalysis.Strengths...)
		weaknesses = append(weaknesses, r.SWOTAnalysis.Weaknesses...)
		opportunities = append(opportunities, r.SWOTAnalysis.Opportunities...)
		threats = append(threats, r.SWOTAnalysis.Threats...)
		risks = append(risks, r.Risks...)
		forecasts = append(forecasts, r.Forecasts...)
	}

	s.Strengths = dedupe(strengths, MaxSWOTItems)
	s.Weaknesses = dedupe(weaknesses, MaxSWOTItems)
	s.Opportunities = dedupe(opportunities, MaxSWOTItems)
	s.Threats = dedupe(threats, MaxSWOTItems)
	s.Risks = dedupe(risks, MaxRiskItems)
	s.Forecasts = dedupe(forecasts, MaxForecastItems)
	s.StrategicRecommendations = catalog.List(company.Lang(), "summary.recommendations")

	if scored > 0 {
		s.OverallScore = math.Round(float64(scoreSum)/float64(scored)*100) / 100
		s.OverallRating = ratingForScore(s.OverallScore)
	} else {
		s.OverallRating = domain.RatingAcceptable
	}
	return s
}

// dedupe keeps the first occurrence of each string, up to limit items.
// The result is never nil so the summary always encodes lists as arrays.
func dedupe(items []string, limit int) []string {
	out := make([]string, 0, min(len(items), limit))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
		if len(out) == limit {
			break
		}
	}
	return out
}

// ratingForScore maps a mean rating score back onto a bucket
func ratingForScore(score float64) domain.Rating {
	switch {
	case score >= 4.5:
		return domain.RatingExcellent
	case score >= 3.5:
		return domain.RatingVeryGood
	case score >= 2.5:
		return domain.RatingGood
	case score >= 1.5:
		return domain.RatingAcceptable
	default:
		return domain.RatingPoor
	}
}
