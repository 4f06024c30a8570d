package analysis

import (
	"math"
	"strconv"

	"finanalytics/internal/i18n"
	"finanalytics/pkg/contracts/domain"
)

// trendBand is the relative move between first and last history points
// below which a series counts as stable
const trendBand = 0.05

// strategy areas, matched to catalog keys under "strategy."
const (
	areaCorporatePerformance = "corporate_performance"
	areaFinancing            = "financing_decisions"
	areaInvestment           = "investment_decisions"
	areaValuation            = "valuation"
	areaGeneral              = "general"
)

var areaOf = map[Subcategory]string{
	SubProfitability: areaCorporatePerformance,
	SubActivity:      areaCorporatePerformance,
	SubVertical:      areaCorporatePerformance,
	SubHorizontal:    areaCorporatePerformance,
	SubTrend:         areaCorporatePerformance,
	SubDuPont:        areaCorporatePerformance,
	SubGrowth:        areaCorporatePerformance,
	SubLeverageDeg:   areaCorporatePerformance,
	SubDescriptive:   areaCorporatePerformance,
	SubSeries:        areaCorporatePerformance,
	SubLiquidity:     areaFinancing,
	SubLeverage:      areaFinancing,
	SubCashFlow:      areaFinancing,
	SubDistress:      areaFinancing,
	SubEarningsRisk:  areaFinancing,
	SubProjection:    areaInvestment,
	SubRegression:    areaInvestment,
	SubScenario:      areaInvestment,
	SubDeal:          areaInvestment,
	SubRiskAdjusted:  areaInvestment,
	SubMarket:        areaInvestment,
	SubIntrinsic:     areaValuation,
	SubMultiples:     areaValuation,
}

// enricher renders the narrative fields of a result in one language
type enricher struct {
	catalog *i18n.Catalog
	lang    domain.Language
}

func (e enricher) text(key string, vars i18n.Vars) string {
	return e.catalog.Text(e.lang, key, vars)
}

// describe fills definition, meaning, benefit and method
func (e enricher) describe(d Definition, r *domain.AnalysisResult) {
	vars := i18n.Vars{"name": r.Name, "formula": d.Formula}
	sub := "subcategory." + string(d.Subcategory)
	r.Definition = e.text(sub+".definition", vars)
	r.Meaning = e.text(sub+".meaning", vars)
	r.Benefit = e.text(sub+".benefit", vars)
	r.Method = e.text("method", vars)
}

// formatNumber renders v with its unit suffix
func (e enricher) formatNumber(v float64, u Unit) string {
	prec := 2
	if u == UnitCurrency {
		prec = 0
	}
	s := strconv.FormatFloat(v, 'f', prec, 64)
	return s + e.text("unit."+string(u), nil)
}

// formatValue renders a result value for narrative text
func (e enricher) formatValue(v domain.Value, u Unit) string {
	if f, ok := v.Float(); ok {
		return e.formatNumber(f, u)
	}
	if v.IsText() {
		key := "value." + v.String()
		if e.catalog.Has(e.lang, key) {
			return e.text(key, nil)
		}
		return v.String()
	}
	return domain.NotApplicableText
}

// comparisonText renders a comparison outcome
func (e enricher) comparisonText(c comparison) string {
	vars := i18n.Vars{}
	if c.diff != nil {
		vars["diff"] = strconv.FormatFloat(math.Abs(*c.diff), 'f', 1, 64)
	}
	return e.text("comparison."+c.key, vars)
}

// narrate fills interpretation, recommendation, risks, forecasts, SWOT and
// strategy for a numeric result that has been rated
func (e enricher) narrate(d Definition, r *domain.AnalysisResult, c comparison, history []float64) {
	name := r.Name
	vars := i18n.Vars{
		"name":       name,
		"value":      e.formatValue(r.Result, d.Unit),
		"benchmark":  e.formatNumber(r.IndustryAverage, d.Unit),
		"comparison": r.ComparisonWithIndustry,
		"position":   r.CompetitivePosition,
	}

	if c.diff == nil {
		r.Interpretation = e.text("interpretation.unbenchmarked", vars)
		r.Recommendation = e.text("recommendation.unrated", vars)
	} else {
		r.Interpretation = e.text("interpretation."+string(r.Rating), vars)
		r.Recommendation = e.text("recommendation."+string(r.Rating), vars)
	}

	trend := trendOf(history, d.Polarity)
	r.Risks = e.risks(r.Rating, c.diff != nil, trend, vars)
	r.Forecasts = []string{e.forecast(r.Rating, c.diff != nil, trend, vars)}
	if c.diff != nil {
		r.SWOTAnalysis = e.swot(r.Rating, vars)
	}
	r.StrategicRecommendations = e.strategy(d, r.Rating, c.diff != nil, vars)
}

// narrateText fills the narrative of a descriptive (text) result
func (e enricher) narrateText(d Definition, r *domain.AnalysisResult) {
	vars := i18n.Vars{"name": r.Name, "value": e.formatValue(r.Result, d.Unit)}
	r.Interpretation = e.text("interpretation.text", vars)
	r.Recommendation = e.text("recommendation.unrated", vars)
	r.StrategicRecommendations = e.strategy(d, r.Rating, false, vars)
}

// narrateMissing fills the narrative of a not-applicable or failed result
func (e enricher) narrateMissing(r *domain.AnalysisResult) {
	vars := i18n.Vars{"name": r.Name}
	if r.Status == domain.StatusFailed {
		r.Interpretation = e.text("interpretation.failed", vars)
	} else {
		r.Interpretation = e.text("interpretation.not_applicable", vars)
	}
	r.Recommendation = e.text("recommendation.not_applicable", vars)
}

func (e enricher) risks(rating domain.Rating, rated bool, trend string, vars i18n.Vars) []string {
	var out []string
	if rated && (rating == domain.RatingPoor || rating == domain.RatingAcceptable) {
		out = append(out, e.text("risk.below_benchmark", vars))
	}
	if trend == trendDeteriorating {
		out = append(out, e.text("risk.deteriorating", vars))
	}
	return out
}

func (e enricher) forecast(rating domain.Rating, rated bool, trend string, vars i18n.Vars) string {
	if trend != "" {
		return e.text("forecast."+trend, vars)
	}
	if !rated {
		return e.text("forecast.stable", vars)
	}
	if rating.Score() >= domain.RatingGood.Score() {
		return e.text("forecast.strong", vars)
	}
	return e.text("forecast.weak", vars)
}

func (e enricher) swot(rating domain.Rating, vars i18n.Vars) domain.SWOT {
	var s domain.SWOT
	switch rating {
	case domain.RatingExcellent:
		s.Strengths = []string{e.text("swot.strength", vars)}
	case domain.RatingVeryGood:
		s.Strengths = []string{e.text("swot.strength", vars)}
		s.Opportunities = []string{e.text("swot.opportunity", vars)}
	case domain.RatingGood:
		s.Opportunities = []string{e.text("swot.opportunity", vars)}
	case domain.RatingAcceptable:
		s.Weaknesses = []string{e.text("swot.weakness", vars)}
		s.Opportunities = []string{e.text("swot.opportunity", vars)}
	case domain.RatingPoor:
		s.Weaknesses = []string{e.text("swot.weakness", vars)}
		s.Threats = []string{e.text("swot.threat", vars)}
	}
	return s
}

func (e enricher) strategy(d Definition, rating domain.Rating, rated bool, vars i18n.Vars) domain.StrategicRecommendations {
	var s domain.StrategicRecommendations
	s.General = []string{e.text("strategy.general", vars)}
	if !rated {
		return s
	}

	class := "improve"
	switch rating {
	case domain.RatingExcellent, domain.RatingVeryGood:
		class = "strong"
	case domain.RatingGood:
		class = "hold"
	}

	area, ok := areaOf[d.Subcategory]
	if !ok {
		return s
	}
	line := e.text("strategy."+area+"."+class, vars)
	switch area {
	case areaCorporatePerformance:
		s.CorporatePerformance = []string{line}
	case areaFinancing:
		s.FinancingDecisions = []string{line}
	case areaInvestment:
		s.InvestmentDecisions = []string{line}
	case areaValuation:
		s.Valuation = []string{line}
	}
	return s
}

const (
	trendImproving     = "improving"
	trendDeteriorating = "deteriorating"
	trendStable        = "stable"
)

// trendOf classifies a history series, oldest first, taking polarity into
// account. It returns "" when fewer than two points exist.
func trendOf(history []float64, p Polarity) string {
	if len(history) < 2 {
		return ""
	}
	first, last := history[0], history[len(history)-1]
	scale := math.Max(math.Abs(first), math.Abs(last))
	if scale == 0 || math.Abs(last-first)/scale < trendBand {
		return trendStable
	}
	up := last > first
	if p == LowerIsBetter {
		up = !up
	}
	if up {
		return trendImproving
	}
	return trendDeteriorating
}
