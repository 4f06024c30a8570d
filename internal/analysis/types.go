package analysis

import (
	"finanalytics/pkg/contracts/domain"
)

// Tier groups definitions into classical, applied and advanced analyses
type Tier int

const (
	// TierClassical covers structural analysis, ratios and cash flow
	TierClassical Tier = 1
	// TierApplied covers comparisons, valuation and performance
	TierApplied Tier = 2
	// TierAdvanced covers modeling, statistics, forecasting, risk, portfolio, M&A, detection and time series
	TierAdvanced Tier = 3
)

// Category is the top-level grouping inside a tier
type Category string

const (
	CategoryStructural  Category = "structural"
	CategoryRatios      Category = "ratios"
	CategoryCashFlow    Category = "cash_flow"
	CategoryComparisons Category = "comparisons"
	CategoryValuation   Category = "valuation"
	CategoryPerformance Category = "performance"
	CategoryModeling    Category = "modeling"
	CategoryStatistical Category = "statistical"
	CategoryForecasting Category = "forecasting"
	CategoryQuantRisk   Category = "quantitative_risk"
	CategoryPortfolio   Category = "portfolio"
	CategoryMergers     Category = "mergers_acquisitions"
	CategoryDetection   Category = "detection"
	CategoryTimeSeries  Category = "time_series"
)

// tierOf maps each category onto its tier
var tierOf = map[Category]Tier{
	CategoryStructural:  TierClassical,
	CategoryRatios:      TierClassical,
	CategoryCashFlow:    TierClassical,
	CategoryComparisons: TierApplied,
	CategoryValuation:   TierApplied,
	CategoryPerformance: TierApplied,
	CategoryModeling:    TierAdvanced,
	CategoryStatistical: TierAdvanced,
	CategoryForecasting: TierAdvanced,
	CategoryQuantRisk:   TierAdvanced,
	CategoryPortfolio:   TierAdvanced,
	CategoryMergers:     TierAdvanced,
	CategoryDetection:   TierAdvanced,
	CategoryTimeSeries:  TierAdvanced,
}

// Subcategory refines a category (liquidity, activity, vertical, ...)
type Subcategory string

const (
	SubVertical      Subcategory = "vertical"
	SubHorizontal    Subcategory = "horizontal"
	SubTrend         Subcategory = "trend"
	SubLiquidity     Subcategory = "liquidity"
	SubActivity      Subcategory = "activity"
	SubProfitability Subcategory = "profitability"
	SubLeverage      Subcategory = "leverage"
	SubMarket        Subcategory = "market"
	SubCashFlow      Subcategory = "cash_flow_analysis"
	SubGrowth        Subcategory = "growth"
	SubIntrinsic     Subcategory = "intrinsic_value"
	SubMultiples     Subcategory = "multiples"
	SubDuPont        Subcategory = "dupont"
	SubLeverageDeg   Subcategory = "operating_financial_leverage"
	SubRegression    Subcategory = "regression"
	SubScenario      Subcategory = "scenario"
	SubDescriptive   Subcategory = "descriptive"
	SubProjection    Subcategory = "projection"
	SubDistress      Subcategory = "distress"
	SubEarningsRisk  Subcategory = "earnings_risk"
	SubRiskAdjusted  Subcategory = "risk_adjusted_return"
	SubDeal          Subcategory = "deal"
	SubManipulation  Subcategory = "manipulation"
	SubSeries        Subcategory = "series"
)

// Polarity declares whether higher or lower raw values are favorable
type Polarity int

const (
	HigherIsBetter Polarity = iota + 1
	LowerIsBetter
)

// String returns the polarity name used in API output
func (p Polarity) String() string {
	switch p {
	case HigherIsBetter:
		return "higher_is_better"
	case LowerIsBetter:
		return "lower_is_better"
	default:
		return "unknown"
	}
}

// Unit describes how a result is expressed
type Unit string

const (
	UnitRatio    Unit = "ratio"
	UnitPercent  Unit = "percent"
	UnitDays     Unit = "days"
	UnitTimes    Unit = "times"
	UnitCurrency Unit = "currency"
	UnitScore    Unit = "score"
	UnitYears    Unit = "years"
)

// Label is a bilingual display string
type Label struct {
	EN string `json:"en"`
	AR string `json:"ar"`
}

// In returns the label in the requested language, falling back to English
func (l Label) In(lang domain.Language) string {
	if lang == domain.LanguageArabic && l.AR != "" {
		return l.AR
	}
	return l.EN
}

// ComputeFunc is a pure computation over the available statement history
type ComputeFunc func(in Input) domain.Value

// Definition is one entry of the analysis catalogue
type Definition struct {
	ID           string
	Tier         Tier
	Category     Category
	Subcategory  Subcategory
	Name         Label
	Formula      string
	Unit         Unit
	Polarity     Polarity
	MinHistory   int
	BenchmarkKey string
	Baseline     float64 // Generic benchmark used when no sector value exists
	Compute      ComputeFunc
}

// DefinitionInfo is the serializable view of a definition
type DefinitionInfo struct {
	ID           string  `json:"id"`
	Tier         int     `json:"tier"`
	Category     string  `json:"category"`
	Subcategory  string  `json:"subcategory"`
	Name         Label   `json:"name"`
	Formula      string  `json:"formula"`
	Unit         string  `json:"unit"`
	Polarity     string  `json:"polarity"`
	MinHistory   int     `json:"minHistory"`
	BenchmarkKey string  `json:"benchmarkKey"`
	Baseline     float64 `json:"baseline"`
}

// Info returns the serializable view of d
func (d Definition) Info() DefinitionInfo {
	return DefinitionInfo{
		ID:           d.ID,
		Tier:         int(d.Tier),
		Category:     string(d.Category),
		Subcategory:  string(d.Subcategory),
		Name:         d.Name,
		Formula:      d.Formula,
		Unit:         string(d.Unit),
		Polarity:     d.Polarity.String(),
		MinHistory:   d.MinHistory,
		BenchmarkKey: d.BenchmarkKey,
		Baseline:     d.Baseline,
	}
}

// Assumptions are the valuation and modeling inputs that statements do not carry
type Assumptions struct {
	DiscountRate       float64 `json:"discountRate" yaml:"discount_rate"`
	TerminalGrowth     float64 `json:"terminalGrowth" yaml:"terminal_growth"`
	RiskFreeRate       float64 `json:"riskFreeRate" yaml:"risk_free_rate"`
	EquityRiskPremium  float64 `json:"equityRiskPremium" yaml:"equity_risk_premium"`
	Beta               float64 `json:"beta" yaml:"beta"`
	FallbackTaxRate    float64 `json:"fallbackTaxRate" yaml:"fallback_tax_rate"`
	TargetDebtToEBITDA float64 `json:"targetDebtToEbitda" yaml:"target_debt_to_ebitda"`
	ForecastHorizon    int     `json:"forecastHorizon" yaml:"forecast_horizon"`
}

// DefaultAssumptions returns conservative defaults for emerging-market issuers
func DefaultAssumptions() Assumptions {
	return Assumptions{
		DiscountRate:       0.12,
		TerminalGrowth:     0.03,
		RiskFreeRate:       0.05,
		EquityRiskPremium:  0.06,
		Beta:               1.0,
		FallbackTaxRate:    0.15,
		TargetDebtToEBITDA: 3.0,
		ForecastHorizon:    5,
	}
}

// Input is what a compute function sees: the chronological history plus assumptions
type Input struct {
	Statements  []domain.FinancialStatement
	Assumptions Assumptions
}
