package analysis

import (
	"math"
	"strconv"

	"finanalytics/pkg/contracts/domain"
)

// Tier 3 tables. These are deterministic stand-ins over the available history;
// a richer model can replace any Compute without touching the engine.

// =============================================================================
// TIER 3: MODELING
// =============================================================================

var fTotalCosts field = func(s domain.FinancialStatement) float64 {
	return costOfSales(s) + s.IncomeStatement.TotalOperatingExpenses
}

// variableCostRatio estimates the share of costs that move with revenue: the regression
// slope of total costs on revenue when three periods exist, else cost of sales / revenue
func variableCostRatio(in Input) (float64, bool) {
	if in.Len() >= 3 {
		if _, beta, ok := regress(in.Series(fRevenue), in.Series(fTotalCosts)); ok && beta > 0 && beta < 1 {
			return beta, true
		}
	}
	v, ok := div(costOfSales(in.Cur()), inc(in).Revenue)
	return v, ok && v >= 0 && v < 1
}

// scenarioNetMargin returns the net margin after scaling revenue by (1 + shock),
// holding fixed costs constant and taxing at the effective rate
func scenarioNetMargin(in Input, shock float64) domain.Value {
	vcr, ok := variableCostRatio(in)
	if !ok {
		return domain.NotApplicable()
	}
	i := inc(in)
	rev := i.Revenue * (1 + shock)
	fixed := fTotalCosts(in.Cur()) - vcr*i.Revenue
	ebt := rev - vcr*rev - fixed - i.InterestExpense + i.InterestIncome + i.OtherNonOperating
	ni := ebt
	if ebt > 0 {
		ni = ebt * (1 - in.TaxRate())
	}
	return percent(ni, rev)
}

// impactOnNetIncome expresses an after-tax hit as a percentage of current net income
func impactOnNetIncome(in Input, preTaxHit float64) domain.Value {
	ni := inc(in).NetIncome
	if ni <= 0 {
		return domain.NotApplicable()
	}
	return percent(-preTaxHit*(1-in.TaxRate()), ni)
}

func modelingDefinitions() []Definition {
	return inCategory(CategoryModeling, []Definition{
		{ID: "cost_revenue_elasticity", Subcategory: SubRegression, Unit: UnitRatio, Polarity: LowerIsBetter, Baseline: 0.8, MinHistory: 3,
			Name:    Label{"Variable Cost Ratio (Regression)", "نسبة التكاليف المتغيرة بالانحدار"},
			Formula: "β of Total Costs = α + β × Revenue",
			Compute: func(in Input) domain.Value {
				_, beta, ok := regress(in.Series(fRevenue), in.Series(fTotalCosts))
				if !ok {
					return domain.NotApplicable()
				}
				return num(beta)
			}},
		{ID: "fixed_cost_estimate", Subcategory: SubRegression, Unit: UnitCurrency, Polarity: LowerIsBetter, MinHistory: 3,
			Name:    Label{"Fixed Cost Estimate (Regression)", "تقدير التكاليف الثابتة بالانحدار"},
			Formula: "α of Total Costs = α + β × Revenue",
			Compute: func(in Input) domain.Value {
				alpha, _, ok := regress(in.Series(fRevenue), in.Series(fTotalCosts))
				if !ok {
					return domain.NotApplicable()
				}
				return num(alpha)
			}},
		{ID: "marginal_net_margin", Subcategory: SubRegression, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 10, MinHistory: 3,
			Name:    Label{"Marginal Net Margin (Regression)", "الهامش الصافي الحدي بالانحدار"},
			Formula: "β of Net Income = α + β × Revenue, × 100",
			Compute: func(in Input) domain.Value {
				_, beta, ok := regress(in.Series(fRevenue), in.Series(fNetIncome))
				if !ok {
					return domain.NotApplicable()
				}
				return num(beta * 100)
			}},
		{ID: "revenue_trend_fit", Subcategory: SubRegression, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 70, MinHistory: 3,
			Name:    Label{"Revenue Trend Fit (R²)", "جودة توفيق اتجاه الإيرادات"},
			Formula: "R² of Revenue = α + β × t, × 100",
			Compute: func(in Input) domain.Value {
				_, _, r2, ok := linearFit(in.Series(fRevenue))
				if !ok {
					return domain.NotApplicable()
				}
				return num(r2 * 100)
			}},
		{ID: "revenue_decline_stress", Subcategory: SubScenario, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: -15,
			Name:    Label{"Revenue Decline Stress (−10%)", "اختبار ضغط انخفاض الإيرادات"},
			Formula: "%Δ Operating Income when Revenue falls 10% with fixed costs held",
			Compute: func(in Input) domain.Value {
				vcr, ok := variableCostRatio(in)
				oi := inc(in).OperatingIncome
				if !ok || oi <= 0 {
					return domain.NotApplicable()
				}
				return percent(-0.10*inc(in).Revenue*(1-vcr), oi)
			}},
		{ID: "margin_compression_stress", Subcategory: SubScenario, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: -15,
			Name:    Label{"Gross Margin Compression Stress (−2 pts)", "اختبار ضغط انكماش الهامش"},
			Formula: "−0.02 × Revenue × (1 − t) / Net Income × 100",
			Compute: func(in Input) domain.Value { return impactOnNetIncome(in, 0.02*inc(in).Revenue) }},
		{ID: "interest_rate_shock", Subcategory: SubScenario, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: -5,
			Name:    Label{"Interest Rate Shock (+200 bp)", "صدمة أسعار الفائدة"},
			Formula: "−0.02 × Total Debt × (1 − t) / Net Income × 100",
			Compute: func(in Input) domain.Value { return impactOnNetIncome(in, 0.02*bs(in).TotalDebt()) }},
		{ID: "bear_case_net_margin", Subcategory: SubScenario, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 5,
			Name:    Label{"Bear Case Net Margin (−15% revenue)", "هامش صافي الربح في السيناريو المتشائم"},
			Formula: "Net Margin with Revenue × 0.85, fixed costs held",
			Compute: func(in Input) domain.Value { return scenarioNetMargin(in, -0.15) }},
		{ID: "bull_case_net_margin", Subcategory: SubScenario, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 12,
			Name:    Label{"Bull Case Net Margin (+10% revenue)", "هامش صافي الربح في السيناريو المتفائل"},
			Formula: "Net Margin with Revenue × 1.10, fixed costs held",
			Compute: func(in Input) domain.Value { return scenarioNetMargin(in, 0.10) }},
	})
}

// =============================================================================
// TIER 3: STATISTICAL
// =============================================================================

// coefficientOfVariation returns sd/|mean| × 100 of f across the history
func coefficientOfVariation(f field) ComputeFunc {
	return func(in Input) domain.Value {
		xs := in.Series(f)
		sd, ok := stdDev(xs)
		if !ok {
			return domain.NotApplicable()
		}
		m, _ := mean(xs)
		return percent(sd, math.Abs(m))
	}
}

// volatilityOf returns the standard deviation of a fractional f in percentage points
func volatilityOf(f field) ComputeFunc {
	return func(in Input) domain.Value {
		sd, ok := stdDev(in.Series(f))
		if !ok {
			return domain.NotApplicable()
		}
		return num(sd * 100)
	}
}

// correlationOf returns the Pearson correlation of two fields across the history
func correlationOf(a, b field) ComputeFunc {
	return func(in Input) domain.Value {
		r, ok := correlation(in.Series(a), in.Series(b))
		if !ok {
			return domain.NotApplicable()
		}
		return num(r)
	}
}

func statisticalDefinitions() []Definition {
	return inCategory(CategoryStatistical, []Definition{
		{ID: "revenue_coefficient_of_variation", Subcategory: SubDescriptive, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 15, MinHistory: 3,
			Name:    Label{"Revenue Coefficient of Variation", "معامل اختلاف الإيرادات"},
			Formula: "σ(Revenue) / |μ(Revenue)| × 100",
			Compute: coefficientOfVariation(fRevenue)},
		{ID: "net_income_coefficient_of_variation", Subcategory: SubDescriptive, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 25, MinHistory: 3,
			Name:    Label{"Net Income Coefficient of Variation", "معامل اختلاف صافي الدخل"},
			Formula: "σ(Net Income) / |μ(Net Income)| × 100",
			Compute: coefficientOfVariation(fNetIncome)},
		{ID: "operating_cash_flow_coefficient_of_variation", Subcategory: SubDescriptive, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 25, MinHistory: 3,
			Name:    Label{"Operating Cash Flow Coefficient of Variation", "معامل اختلاف التدفق النقدي التشغيلي"},
			Formula: "σ(CFO) / |μ(CFO)| × 100",
			Compute: coefficientOfVariation(fCFO)},
		{ID: "net_margin_volatility", Subcategory: SubDescriptive, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 2, MinHistory: 3,
			Name:    Label{"Net Margin Volatility", "تذبذب هامش صافي الربح"},
			Formula: "σ(Net Margin) in points",
			Compute: volatilityOf(fNetMargin)},
		{ID: "roe_volatility", Subcategory: SubDescriptive, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 3, MinHistory: 3,
			Name:    Label{"ROE Volatility", "تذبذب العائد على حقوق الملكية"},
			Formula: "σ(ROE) in points",
			Compute: volatilityOf(fROE)},
		{ID: "revenue_earnings_correlation", Subcategory: SubDescriptive, Unit: UnitRatio, Polarity: HigherIsBetter, Baseline: 0.7, MinHistory: 3,
			Name:    Label{"Revenue–Earnings Correlation", "الارتباط بين الإيرادات والأرباح"},
			Formula: "ρ(Revenue, Net Income)",
			Compute: correlationOf(fRevenue, fNetIncome)},
		{ID: "earnings_cash_correlation", Subcategory: SubDescriptive, Unit: UnitRatio, Polarity: HigherIsBetter, Baseline: 0.6, MinHistory: 3,
			Name:    Label{"Earnings–Cash Flow Correlation", "الارتباط بين الأرباح والتدفق النقدي"},
			Formula: "ρ(Net Income, CFO)",
			Compute: correlationOf(fNetIncome, fCFO)},
		{ID: "net_income_z_score", Subcategory: SubDescriptive, Unit: UnitScore, Polarity: HigherIsBetter, Baseline: 0.5, MinHistory: 3,
			Name:    Label{"Latest Net Income Z-Score", "الدرجة المعيارية لصافي الدخل الأخير"},
			Formula: "(Net Income t − μ) / σ",
			Compute: func(in Input) domain.Value {
				xs := in.Series(fNetIncome)
				sd, ok := stdDev(xs)
				if !ok || sd == 0 {
					return domain.NotApplicable()
				}
				m, _ := mean(xs)
				return num((xs[len(xs)-1] - m) / sd)
			}},
		{ID: "median_net_margin", Subcategory: SubDescriptive, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 10, MinHistory: 3,
			Name:    Label{"Median Net Margin", "وسيط هامش صافي الربح"},
			Formula: "Median of Net Margin across periods",
			Compute: func(in Input) domain.Value {
				q, ok := quantile(in.Series(fNetMargin), 0.5)
				if !ok {
					return domain.NotApplicable()
				}
				return num(q * 100)
			}},
		{ID: "revenue_growth_dispersion", Subcategory: SubDescriptive, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 8, MinHistory: 4,
			Name:    Label{"Revenue Growth Dispersion (IQR)", "تشتت نمو الإيرادات"},
			Formula: "Q3 − Q1 of period revenue growth, in points",
			Compute: func(in Input) domain.Value {
				g := changes(in.Series(fRevenue))
				q1, ok1 := quantile(g, 0.25)
				q3, ok2 := quantile(g, 0.75)
				if !ok1 || !ok2 || len(g) < 3 {
					return domain.NotApplicable()
				}
				return num((q3 - q1) * 100)
			}},
	})
}

// =============================================================================
// TIER 3: FORECASTING
// =============================================================================

// projectNext extrapolates the fitted linear trend of f one period ahead
func projectNext(in Input, f field) (float64, bool) {
	ys := in.Series(f)
	alpha, beta, _, ok := linearFit(ys)
	if !ok {
		return 0, false
	}
	return alpha + beta*float64(len(ys)), true
}

// projectNextOf wraps projectNext as a compute function
func projectNextOf(f field) ComputeFunc {
	return func(in Input) domain.Value {
		v, ok := projectNext(in, f)
		if !ok {
			return domain.NotApplicable()
		}
		return num(v)
	}
}

// smoothed returns the exponentially smoothed level of xs
func smoothed(xs []float64, alpha float64) float64 {
	level := xs[0]
	for _, x := range xs[1:] {
		level = alpha*x + (1-alpha)*level
	}
	return level
}

func forecastingDefinitions() []Definition {
	return inCategory(CategoryForecasting, []Definition{
		{ID: "revenue_forecast", Subcategory: SubProjection, Unit: UnitCurrency, Polarity: HigherIsBetter, MinHistory: 2,
			Name:    Label{"Next-Period Revenue Forecast", "توقع إيرادات الفترة القادمة"},
			Formula: "Linear trend of Revenue extrapolated one period",
			Compute: projectNextOf(fRevenue)},
		{ID: "net_income_forecast", Subcategory: SubProjection, Unit: UnitCurrency, Polarity: HigherIsBetter, MinHistory: 2,
			Name:    Label{"Next-Period Net Income Forecast", "توقع صافي دخل الفترة القادمة"},
			Formula: "Linear trend of Net Income extrapolated one period",
			Compute: projectNextOf(fNetIncome)},
		{ID: "eps_forecast", Subcategory: SubProjection, Unit: UnitCurrency, Polarity: HigherIsBetter, MinHistory: 2,
			Name:    Label{"Next-Period EPS Forecast", "توقع ربحية السهم للفترة القادمة"},
			Formula: "Linear trend of EPS extrapolated one period",
			Compute: func(in Input) domain.Value {
				if inc(in).SharesOutstanding <= 0 && inc(in).EarningsPerShare == 0 {
					return domain.NotApplicable()
				}
				return projectNextOf(fEPS)(in)
			}},
		{ID: "forecast_revenue_growth", Subcategory: SubProjection, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 6, MinHistory: 2,
			Name:    Label{"Forecast Revenue Growth", "النمو المتوقع للإيرادات"},
			Formula: "(Revenue Forecast / Revenue t − 1) × 100",
			Compute: func(in Input) domain.Value {
				f, ok := projectNext(in, fRevenue)
				if !ok {
					return domain.NotApplicable()
				}
				return growth(f, inc(in).Revenue)
			}},
		{ID: "forecast_net_margin", Subcategory: SubProjection, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 10, MinHistory: 2,
			Name:    Label{"Forecast Net Margin", "هامش صافي الربح المتوقع"},
			Formula: "Net Income Forecast / Revenue Forecast × 100",
			Compute: func(in Input) domain.Value {
				r, ok1 := projectNext(in, fRevenue)
				n, ok2 := projectNext(in, fNetIncome)
				if !ok1 || !ok2 || r <= 0 {
					return domain.NotApplicable()
				}
				return percent(n, r)
			}},
		{ID: "revenue_horizon_projection", Subcategory: SubProjection, Unit: UnitCurrency, Polarity: HigherIsBetter, MinHistory: 2,
			Name:    Label{"Revenue at Forecast Horizon", "الإيرادات المتوقعة في نهاية الأفق"},
			Formula: "Revenue t × (1 + g)^H",
			Compute: func(in Input) domain.Value {
				return num(inc(in).Revenue * math.Pow(1+growthEstimate(in), float64(horizon(in))))
			}},
		{ID: "free_cash_flow_forecast", Subcategory: SubProjection, Unit: UnitCurrency, Polarity: HigherIsBetter, MinHistory: 2,
			Name:    Label{"Next-Period Free Cash Flow Forecast", "توقع التدفق النقدي الحر للفترة القادمة"},
			Formula: "Free Cash Flow t × (1 + g)",
			Compute: func(in Input) domain.Value { return num(cfs(in).FreeCashFlow() * (1 + growthEstimate(in))) }},
		{ID: "revenue_moving_average", Subcategory: SubProjection, Unit: UnitCurrency, Polarity: HigherIsBetter, MinHistory: 3,
			Name:    Label{"Revenue Three-Period Moving Average", "المتوسط المتحرك للإيرادات"},
			Formula: "Mean of the last three revenues",
			Compute: func(in Input) domain.Value {
				xs := in.Series(fRevenue)
				m, ok := mean(xs[len(xs)-3:])
				if !ok {
					return domain.NotApplicable()
				}
				return num(m)
			}},
		{ID: "revenue_exponential_smoothing", Subcategory: SubProjection, Unit: UnitCurrency, Polarity: HigherIsBetter, MinHistory: 3,
			Name:    Label{"Revenue Exponential Smoothing", "التمهيد الأسي للإيرادات"},
			Formula: "L t = 0.5 × Revenue t + 0.5 × L t−1",
			Compute: func(in Input) domain.Value { return num(smoothed(in.Series(fRevenue), 0.5)) }},
	})
}

// =============================================================================
// TIER 3: QUANTITATIVE RISK
// =============================================================================

// altmanZ returns the original Z-score when a market value exists, else Z' with book equity
func altmanZ(in Input) (float64, bool) {
	b, i := bs(in), inc(in)
	if b.TotalAssets == 0 || b.TotalLiabilities == 0 {
		return 0, false
	}
	ta := b.TotalAssets
	x1 := b.WorkingCapital() / ta
	x2 := b.RetainedEarnings / ta
	x3 := i.OperatingIncome / ta
	x5 := i.Revenue / ta
	if mc := marketCap(in.Cur()); mc > 0 {
		return 1.2*x1 + 1.4*x2 + 3.3*x3 + 0.6*mc/b.TotalLiabilities + 1.0*x5, true
	}
	return 0.717*x1 + 0.847*x2 + 3.107*x3 + 0.420*b.TotalEquity/b.TotalLiabilities + 0.998*x5, true
}

func zmijewski(in Input) (float64, bool) {
	b := bs(in)
	if b.TotalAssets == 0 || b.TotalCurrentLiabilities == 0 {
		return 0, false
	}
	return -4.336 - 4.513*inc(in).NetIncome/b.TotalAssets + 5.679*b.TotalLiabilities/b.TotalAssets +
		0.004*b.TotalCurrentAssets/b.TotalCurrentLiabilities, true
}

// piotroski counts the nine F-score signals that hold between the previous and current period
func piotroski(in Input) int {
	c, p := in.Cur(), in.Prev()
	roa := func(s domain.FinancialStatement) float64 {
		v, _ := div(s.IncomeStatement.NetIncome, s.BalanceSheet.TotalAssets)
		return v
	}
	lev := func(s domain.FinancialStatement) float64 {
		v, _ := div(s.BalanceSheet.LongTermDebt, s.BalanceSheet.TotalAssets)
		return v
	}
	signals := []bool{
		c.IncomeStatement.NetIncome > 0,
		c.CashFlowStatement.NetCashFromOperations > 0,
		roa(c) > roa(p),
		c.CashFlowStatement.NetCashFromOperations > c.IncomeStatement.NetIncome,
		lev(c) < lev(p),
		fCurrentRatio(c) > fCurrentRatio(p),
		c.IncomeStatement.SharesOutstanding <= p.IncomeStatement.SharesOutstanding,
		fGrossMargin(c) > fGrossMargin(p),
		fAssetTurnover(c) > fAssetTurnover(p),
	}
	score := 0
	for _, s := range signals {
		if s {
			score++
		}
	}
	return score
}

func quantRiskDefinitions() []Definition {
	return inCategory(CategoryQuantRisk, []Definition{
		{ID: "altman_z_score", Subcategory: SubDistress, Unit: UnitScore, Polarity: HigherIsBetter, Baseline: 2.99,
			Name:    Label{"Altman Z-Score", "مؤشر ألتمان للتنبؤ بالتعثر"},
			Formula: "1.2 X1 + 1.4 X2 + 3.3 X3 + 0.6 X4 + 1.0 X5",
			Compute: func(in Input) domain.Value {
				z, ok := altmanZ(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(z)
			}},
		{ID: "altman_zone", Subcategory: SubDistress, Unit: UnitScore, Polarity: HigherIsBetter,
			Name:    Label{"Altman Zone", "منطقة ألتمان"},
			Formula: "Z > 2.99 safe, 1.81–2.99 grey, < 1.81 distress",
			Compute: func(in Input) domain.Value {
				z, ok := altmanZ(in)
				switch {
				case !ok:
					return domain.NotApplicable()
				case z > 2.99:
					return domain.Text("safe_zone")
				case z >= 1.81:
					return domain.Text("grey_zone")
				default:
					return domain.Text("distress_zone")
				}
			}},
		{ID: "springate_s_score", Subcategory: SubDistress, Unit: UnitScore, Polarity: HigherIsBetter, Baseline: 1.2,
			Name:    Label{"Springate S-Score", "مؤشر سبرينجيت"},
			Formula: "1.03 A + 3.07 B + 0.66 C + 0.4 D",
			Compute: func(in Input) domain.Value {
				b, i := bs(in), inc(in)
				if b.TotalAssets == 0 || b.TotalCurrentLiabilities == 0 {
					return domain.NotApplicable()
				}
				ta := b.TotalAssets
				return num(1.03*b.WorkingCapital()/ta + 3.07*i.OperatingIncome/ta +
					0.66*i.IncomeBeforeTax/b.TotalCurrentLiabilities + 0.4*i.Revenue/ta)
			}},
		{ID: "zmijewski_x_score", Subcategory: SubDistress, Unit: UnitScore, Polarity: LowerIsBetter, Baseline: -1.5,
			Name:    Label{"Zmijewski X-Score", "مؤشر زميجوسكي"},
			Formula: "−4.336 − 4.513 ROA + 5.679 (TL/TA) + 0.004 (CA/CL)",
			Compute: func(in Input) domain.Value {
				x, ok := zmijewski(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(x)
			}},
		{ID: "distress_probability", Subcategory: SubDistress, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 10,
			Name:    Label{"Probability of Distress", "احتمال التعثر المالي"},
			Formula: "1 / (1 + e^−X) × 100 with X the Zmijewski score",
			Compute: func(in Input) domain.Value {
				x, ok := zmijewski(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(100 / (1 + math.Exp(-x)))
			}},
		{ID: "grover_g_score", Subcategory: SubDistress, Unit: UnitScore, Polarity: HigherIsBetter, Baseline: 0.5,
			Name:    Label{"Grover G-Score", "مؤشر جروفر"},
			Formula: "1.650 X1 + 3.404 X3 − 0.016 ROA + 0.057",
			Compute: func(in Input) domain.Value {
				b, i := bs(in), inc(in)
				if b.TotalAssets == 0 {
					return domain.NotApplicable()
				}
				ta := b.TotalAssets
				return num(1.650*b.WorkingCapital()/ta + 3.404*i.OperatingIncome/ta - 0.016*i.NetIncome/ta + 0.057)
			}},
		{ID: "taffler_z_score", Subcategory: SubDistress, Unit: UnitScore, Polarity: HigherIsBetter, Baseline: 5,
			Name:    Label{"Taffler Z-Score", "مؤشر تافلر"},
			Formula: "3.20 + 12.18 X1 + 2.50 X2 − 10.68 X3 + 0.029 X4",
			Compute: func(in Input) domain.Value {
				b, i := bs(in), inc(in)
				daily := (costOfSales(in.Cur()) + i.TotalOperatingExpenses - i.DepreciationAmortization) / daysInYear
				if b.TotalCurrentLiabilities == 0 || b.TotalLiabilities == 0 || b.TotalAssets == 0 || daily <= 0 {
					return domain.NotApplicable()
				}
				noCredit := (b.TotalCurrentAssets - b.Inventory - b.TotalCurrentLiabilities) / daily
				return num(3.20 + 12.18*i.IncomeBeforeTax/b.TotalCurrentLiabilities + 2.50*b.TotalCurrentAssets/b.TotalLiabilities -
					10.68*b.TotalCurrentLiabilities/b.TotalAssets + 0.029*noCredit)
			}},
		{ID: "piotroski_f_score", Subcategory: SubDistress, Unit: UnitScore, Polarity: HigherIsBetter, Baseline: 6, MinHistory: 2,
			Name:    Label{"Piotroski F-Score", "مؤشر بيوتروسكي"},
			Formula: "Count of nine profitability, leverage and efficiency signals",
			Compute: func(in Input) domain.Value { return num(float64(piotroski(in))) }},
		{ID: "earnings_value_at_risk", Subcategory: SubEarningsRisk, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: -10, MinHistory: 4,
			Name:    Label{"Earnings at Risk (95%)", "الأرباح المعرضة للخطر"},
			Formula: "5th percentile of period net income changes",
			Compute: func(in Input) domain.Value {
				q, ok := quantile(changes(in.Series(fNetIncome)), 0.05)
				if !ok {
					return domain.NotApplicable()
				}
				return num(q * 100)
			}},
		{ID: "earnings_expected_shortfall", Subcategory: SubEarningsRisk, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: -15, MinHistory: 4,
			Name:    Label{"Earnings Expected Shortfall", "العجز المتوقع في الأرباح"},
			Formula: "Mean of net income changes at or below the 5th percentile",
			Compute: func(in Input) domain.Value {
				cs := changes(in.Series(fNetIncome))
				q, ok := quantile(cs, 0.05)
				if !ok {
					return domain.NotApplicable()
				}
				var tail []float64
				for _, c := range cs {
					if c <= q {
						tail = append(tail, c)
					}
				}
				m, _ := mean(tail)
				return num(m * 100)
			}},
		{ID: "earnings_downside_deviation", Subcategory: SubEarningsRisk, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 8, MinHistory: 3,
			Name:    Label{"Earnings Downside Deviation", "الانحراف السلبي للأرباح"},
			Formula: "√ mean(min(0, ΔNI)²) × 100",
			Compute: func(in Input) domain.Value {
				dd, ok := downsideDeviation(changes(in.Series(fNetIncome)))
				if !ok {
					return domain.NotApplicable()
				}
				return num(dd * 100)
			}},
		{ID: "cash_flow_at_risk", Subcategory: SubEarningsRisk, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 60, MinHistory: 3,
			Name:    Label{"Cash Flow at Risk (95%)", "التدفق النقدي المعرض للخطر"},
			Formula: "(μ(CFO) − 1.645 σ(CFO)) / μ(CFO) × 100",
			Compute: func(in Input) domain.Value {
				xs := in.Series(fCFO)
				m, _ := mean(xs)
				sd, ok := stdDev(xs)
				if !ok || m <= 0 {
					return domain.NotApplicable()
				}
				return percent(m-1.645*sd, m)
			}},
	})
}

// =============================================================================
// TIER 3: PORTFOLIO
// =============================================================================

// excessReturns returns ROE minus the risk-free rate for every period
func excessReturns(in Input) []float64 {
	xs := in.Series(fROE)
	for i := range xs {
		xs[i] -= in.Assumptions.RiskFreeRate
	}
	return xs
}

func portfolioDefinitions() []Definition {
	return inCategory(CategoryPortfolio, []Definition{
		{ID: "roe_sharpe_ratio", Subcategory: SubRiskAdjusted, Unit: UnitRatio, Polarity: HigherIsBetter, Baseline: 1.0, MinHistory: 3,
			Name:    Label{"Sharpe Ratio of ROE", "نسبة شارب للعائد على حقوق الملكية"},
			Formula: "(μ(ROE) − Rf) / σ(ROE)",
			Compute: func(in Input) domain.Value {
				xs := excessReturns(in)
				sd, ok := stdDev(xs)
				if !ok || sd == 0 {
					return domain.NotApplicable()
				}
				m, _ := mean(xs)
				return num(m / sd)
			}},
		{ID: "roe_sortino_ratio", Subcategory: SubRiskAdjusted, Unit: UnitRatio, Polarity: HigherIsBetter, Baseline: 1.5, MinHistory: 3,
			Name:    Label{"Sortino Ratio of ROE", "نسبة سورتينو للعائد على حقوق الملكية"},
			Formula: "(μ(ROE) − Rf) / downside σ",
			Compute: func(in Input) domain.Value {
				xs := excessReturns(in)
				dd, _ := downsideDeviation(xs)
				m, _ := mean(xs)
				return ratio(m, dd)
			}},
		{ID: "roe_treynor_ratio", Subcategory: SubRiskAdjusted, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 5, MinHistory: 2,
			Name:    Label{"Treynor Ratio of ROE", "نسبة ترينور للعائد على حقوق الملكية"},
			Formula: "(μ(ROE) − Rf) / β × 100",
			Compute: func(in Input) domain.Value {
				m, ok := mean(excessReturns(in))
				if !ok {
					return domain.NotApplicable()
				}
				return percent(m, in.Assumptions.Beta)
			}},
		{ID: "roe_information_ratio", Subcategory: SubRiskAdjusted, Unit: UnitRatio, Polarity: HigherIsBetter, Baseline: 0.5, MinHistory: 3,
			Name:    Label{"Information Ratio of ROE vs Cost of Equity", "نسبة المعلومات للعائد مقابل تكلفة الملكية"},
			Formula: "μ(ROE − Ke) / σ(ROE − Ke)",
			Compute: func(in Input) domain.Value {
				xs := in.Series(fROE)
				ke := in.CostOfEquity()
				for i := range xs {
					xs[i] -= ke
				}
				sd, ok := stdDev(xs)
				if !ok || sd == 0 {
					return domain.NotApplicable()
				}
				m, _ := mean(xs)
				return num(m / sd)
			}},
		{ID: "growth_consistency", Subcategory: SubRiskAdjusted, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 70, MinHistory: 3,
			Name:    Label{"Revenue Growth Consistency", "اتساق نمو الإيرادات"},
			Formula: "Share of periods with positive revenue growth × 100",
			Compute: func(in Input) domain.Value {
				cs := changes(in.Series(fRevenue))
				if len(cs) == 0 {
					return domain.NotApplicable()
				}
				pos := 0
				for _, c := range cs {
					if c > 0 {
						pos++
					}
				}
				return percent(float64(pos), float64(len(cs)))
			}},
		{ID: "asset_concentration_index", Subcategory: SubRiskAdjusted, Unit: UnitRatio, Polarity: LowerIsBetter, Baseline: 0.3,
			Name:    Label{"Asset Concentration (Herfindahl)", "مؤشر تركز الأصول"},
			Formula: "Σ (asset class / total assets)²",
			Compute: func(in Input) domain.Value {
				b := bs(in)
				if b.TotalAssets <= 0 {
					return domain.NotApplicable()
				}
				parts := []float64{
					b.Cash + b.ShortTermInvestments, b.AccountsReceivable, b.Inventory,
					b.PrepaidExpenses + b.OtherCurrentAssets, b.PropertyPlantEquipment,
					b.IntangibleAssets + b.Goodwill, b.LongTermInvestments, b.OtherNonCurrentAssets,
				}
				var hhi float64
				for _, p := range parts {
					w := math.Max(p, 0) / b.TotalAssets
					hhi += w * w
				}
				return num(hhi)
			}},
	})
}

// =============================================================================
// TIER 3: MERGERS & ACQUISITIONS
// =============================================================================

func mergersDefinitions() []Definition {
	return inCategory(CategoryMergers, []Definition{
		{ID: "lbo_debt_capacity", Subcategory: SubDeal, Unit: UnitCurrency, Polarity: HigherIsBetter,
			Name:    Label{"LBO Debt Capacity", "الطاقة الاقتراضية للاستحواذ بالرافعة"},
			Formula: "EBITDA × Target Debt / EBITDA",
			Compute: func(in Input) domain.Value {
				if inc(in).EBITDA() <= 0 {
					return domain.NotApplicable()
				}
				return num(inc(in).EBITDA() * in.Assumptions.TargetDebtToEBITDA)
			}},
		{ID: "lbo_entry_multiple", Subcategory: SubDeal, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 8,
			Name:    Label{"LBO Entry Multiple", "مضاعف الدخول في الاستحواذ بالرافعة"},
			Formula: "Entry Enterprise Value / EBITDA",
			Compute: func(in Input) domain.Value {
				if inc(in).EBITDA() <= 0 {
					return domain.NotApplicable()
				}
				r, _ := leveragedBuyout(in)
				return ratio(r.EntryEV, inc(in).EBITDA())
			}},
		{ID: "lbo_equity_irr", Subcategory: SubDeal, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 20,
			Name:    Label{"LBO Equity IRR", "معدل العائد الداخلي لحقوق الملكية في الاستحواذ"},
			Formula: "(Exit Equity / Entry Equity)^(1/H) − 1",
			Compute: func(in Input) domain.Value {
				r, ok := leveragedBuyout(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(r.IRR * 100)
			}},
		{ID: "lbo_multiple_of_money", Subcategory: SubDeal, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 2.5,
			Name:    Label{"LBO Multiple of Invested Capital", "مضاعف رأس المال المستثمر في الاستحواذ"},
			Formula: "Exit Equity / Entry Equity",
			Compute: func(in Input) domain.Value {
				r, ok := leveragedBuyout(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(r.MOIC)
			}},
		{ID: "goodwill_to_equity", Subcategory: SubDeal, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 20,
			Name:    Label{"Goodwill to Equity", "الشهرة إلى حقوق الملكية"},
			Formula: "Goodwill / Total Equity × 100",
			Compute: func(in Input) domain.Value {
				if bs(in).TotalEquity <= 0 {
					return domain.NotApplicable()
				}
				return percent(bs(in).Goodwill, bs(in).TotalEquity)
			}},
		{ID: "acquisition_spend_to_cash_flow", Subcategory: SubDeal, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 25,
			Name:    Label{"Acquisition Spend to Operating Cash Flow", "الإنفاق على الاستحواذات إلى التدفق النقدي التشغيلي"},
			Formula: "|Acquisitions| / Net Cash from Operations × 100",
			Compute: func(in Input) domain.Value {
				if cfs(in).NetCashFromOperations <= 0 {
					return domain.NotApplicable()
				}
				return percent(math.Abs(cfs(in).Acquisitions), cfs(in).NetCashFromOperations)
			}},
	})
}

// =============================================================================
// TIER 3: DETECTION
// =============================================================================

// beneishIndices holds the eight M-score variables
type beneishIndices struct {
	DSRI, GMI, AQI, SGI, DEPI, SGAI, LVGI, TATA float64
}

func (b beneishIndices) score() float64 {
	return -4.84 + 0.920*b.DSRI + 0.528*b.GMI + 0.404*b.AQI + 0.892*b.SGI +
		0.115*b.DEPI - 0.172*b.SGAI + 4.679*b.TATA - 0.327*b.LVGI
}

// beneish computes the indices between the previous and current period.
// Any undefined index makes the score undefined.
func beneish(in Input) (beneishIndices, bool) {
	c, p := in.Cur(), in.Prev()
	idx := func(cur, prev float64, ok1, ok2 bool) (float64, bool) {
		if !ok1 || !ok2 {
			return 0, false
		}
		return div(cur, prev)
	}
	recShare := func(s domain.FinancialStatement) (float64, bool) {
		return div(s.BalanceSheet.AccountsReceivable, s.IncomeStatement.Revenue)
	}
	softAssets := func(s domain.FinancialStatement) (float64, bool) {
		v, ok := div(s.BalanceSheet.TotalCurrentAssets+s.BalanceSheet.PropertyPlantEquipment, s.BalanceSheet.TotalAssets)
		return 1 - v, ok
	}
	depRate := func(s domain.FinancialStatement) (float64, bool) {
		d := math.Abs(s.IncomeStatement.DepreciationAmortization)
		return div(d, d+s.BalanceSheet.PropertyPlantEquipment)
	}
	sgaShare := func(s domain.FinancialStatement) (float64, bool) {
		return div(s.IncomeStatement.SellingGeneralAdmin, s.IncomeStatement.Revenue)
	}
	leverage := func(s domain.FinancialStatement) (float64, bool) {
		return div(s.BalanceSheet.TotalLiabilities, s.BalanceSheet.TotalAssets)
	}

	var b beneishIndices
	var ok [8]bool
	rc, ok1 := recShare(c)
	rp, ok2 := recShare(p)
	b.DSRI, ok[0] = idx(rc, rp, ok1, ok2)
	b.GMI, ok[1] = div(fGrossMargin(p), fGrossMargin(c))
	sc, ok1 := softAssets(c)
	sp, ok2 := softAssets(p)
	b.AQI, ok[2] = idx(sc, sp, ok1, ok2)
	b.SGI, ok[3] = div(c.IncomeStatement.Revenue, p.IncomeStatement.Revenue)
	dc, ok1 := depRate(c)
	dp, ok2 := depRate(p)
	b.DEPI, ok[4] = idx(dp, dc, ok2, ok1)
	gc, ok1 := sgaShare(c)
	gp, ok2 := sgaShare(p)
	b.SGAI, ok[5] = idx(gc, gp, ok1, ok2)
	lc, ok1 := leverage(c)
	lp, ok2 := leverage(p)
	b.LVGI, ok[6] = idx(lc, lp, ok1, ok2)
	b.TATA, ok[7] = div(c.IncomeStatement.NetIncome-c.CashFlowStatement.NetCashFromOperations, c.BalanceSheet.TotalAssets)
	for _, v := range ok {
		if !v {
			return b, false
		}
	}
	return b, true
}

// benfordExpected is the first-digit distribution for digits 1..9
var benfordExpected = [9]float64{0.30103, 0.17609, 0.12494, 0.09691, 0.07918, 0.06695, 0.05799, 0.05115, 0.04576}

// leadingDigit returns the first significant digit of |v| for |v| >= 1
func leadingDigit(v float64) int {
	v = math.Abs(v)
	if v < 1 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return int(strconv.FormatFloat(v, 'e', -1, 64)[0] - '0')
}

// statementFigures returns every monetary line item of s
func statementFigures(s domain.FinancialStatement) []float64 {
	b, i, c := s.BalanceSheet, s.IncomeStatement, s.CashFlowStatement
	return []float64{
		b.Cash, b.ShortTermInvestments, b.AccountsReceivable, b.Inventory, b.PrepaidExpenses, b.OtherCurrentAssets,
		b.TotalCurrentAssets, b.PropertyPlantEquipment, b.IntangibleAssets, b.Goodwill, b.LongTermInvestments,
		b.OtherNonCurrentAssets, b.TotalNonCurrentAssets, b.TotalAssets, b.AccountsPayable, b.ShortTermDebt,
		b.CurrentPortionLongTermDebt, b.AccruedLiabilities, b.OtherCurrentLiabilities, b.TotalCurrentLiabilities,
		b.LongTermDebt, b.DeferredTaxLiabilities, b.OtherNonCurrentLiabilities, b.TotalNonCurrentLiabilities,
		b.TotalLiabilities, b.ShareCapital, b.RetainedEarnings, b.OtherEquity, b.TotalEquity,
		i.Revenue, i.CostOfGoodsSold, i.GrossProfit, i.SellingGeneralAdmin, i.ResearchDevelopment,
		i.DepreciationAmortization, i.OtherOperatingExpenses, i.TotalOperatingExpenses, i.OperatingIncome,
		i.InterestExpense, i.InterestIncome, i.OtherNonOperating, i.IncomeBeforeTax, i.IncomeTaxExpense, i.NetIncome,
		c.ChangeInWorkingCapital, c.OtherOperatingActivities, c.NetCashFromOperations, c.CapitalExpenditures,
		c.Acquisitions, c.OtherInvestingActivities, c.NetCashFromInvesting, c.DebtIssued, c.DebtRepaid,
		c.DividendsPaid, c.ShareRepurchases, c.OtherFinancingActivities, c.NetCashFromFinancing, c.NetCashFlow,
	}
}

// benfordMAD returns the mean absolute deviation of first-digit frequencies from Benford's law
func benfordMAD(in Input) (float64, bool) {
	var counts [9]int
	total := 0
	for _, s := range in.Statements {
		for _, v := range statementFigures(s) {
			if d := leadingDigit(v); d >= 1 && d <= 9 {
				counts[d-1]++
				total++
			}
		}
	}
	if total < 30 {
		return 0, false
	}
	var sum float64
	for d := 0; d < 9; d++ {
		sum += math.Abs(float64(counts[d])/float64(total) - benfordExpected[d])
	}
	return sum / 9, true
}

func netOperatingAssets(s domain.FinancialStatement) float64 {
	b := s.BalanceSheet
	return b.TotalEquity + b.TotalDebt() - b.Cash - b.ShortTermInvestments
}

func detectionDefinitions() []Definition {
	return inCategory(CategoryDetection, []Definition{
		{ID: "beneish_m_score", Subcategory: SubManipulation, Unit: UnitScore, Polarity: LowerIsBetter, Baseline: -2.22, MinHistory: 2,
			Name:    Label{"Beneish M-Score", "مؤشر بينيش للتلاعب بالأرباح"},
			Formula: "−4.84 + 0.92 DSRI + 0.528 GMI + 0.404 AQI + 0.892 SGI + 0.115 DEPI − 0.172 SGAI + 4.679 TATA − 0.327 LVGI",
			Compute: func(in Input) domain.Value {
				b, ok := beneish(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(b.score())
			}},
		{ID: "beneish_manipulation_flag", Subcategory: SubManipulation, Unit: UnitScore, Polarity: LowerIsBetter, MinHistory: 2,
			Name:    Label{"Earnings Manipulation Flag", "مؤشر احتمال التلاعب بالأرباح"},
			Formula: "M-Score > −1.78 flags likely manipulation",
			Compute: func(in Input) domain.Value {
				b, ok := beneish(in)
				switch {
				case !ok:
					return domain.NotApplicable()
				case b.score() > -1.78:
					return domain.Text("manipulation_likely")
				default:
					return domain.Text("manipulation_unlikely")
				}
			}},
		{ID: "days_sales_receivables_index", Subcategory: SubManipulation, Unit: UnitRatio, Polarity: LowerIsBetter, Baseline: 1.0, MinHistory: 2,
			Name:    Label{"Days Sales in Receivables Index", "مؤشر أيام المبيعات في الذمم المدينة"},
			Formula: "(AR t / Sales t) / (AR t−1 / Sales t−1)",
			Compute: func(in Input) domain.Value {
				c, ok1 := div(bs(in).AccountsReceivable, inc(in).Revenue)
				p, ok2 := div(pbs(in).AccountsReceivable, pinc(in).Revenue)
				if !ok1 || !ok2 {
					return domain.NotApplicable()
				}
				return ratio(c, p)
			}},
		{ID: "gross_margin_index", Subcategory: SubManipulation, Unit: UnitRatio, Polarity: LowerIsBetter, Baseline: 1.0, MinHistory: 2,
			Name:    Label{"Gross Margin Index", "مؤشر هامش الربح الإجمالي"},
			Formula: "Gross Margin t−1 / Gross Margin t",
			Compute: func(in Input) domain.Value { return ratio(fGrossMargin(in.Prev()), fGrossMargin(in.Cur())) }},
		{ID: "total_accruals_to_assets", Subcategory: SubManipulation, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 3,
			Name:    Label{"Total Accruals to Assets", "إجمالي المستحقات إلى الأصول"},
			Formula: "(Net Income − CFO) / Total Assets × 100",
			Compute: func(in Input) domain.Value {
				return percent(inc(in).NetIncome-cfs(in).NetCashFromOperations, bs(in).TotalAssets)
			}},
		{ID: "balance_sheet_accruals", Subcategory: SubManipulation, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 5, MinHistory: 2,
			Name:    Label{"Balance Sheet Accruals", "مستحقات الميزانية"},
			Formula: "ΔNet Operating Assets / Average Net Operating Assets × 100",
			Compute: func(in Input) domain.Value {
				c, p := netOperatingAssets(in.Cur()), netOperatingAssets(in.Prev())
				avg := (c + p) / 2
				if avg <= 0 {
					return domain.NotApplicable()
				}
				return percent(c-p, avg)
			}},
		{ID: "cash_earnings_divergence", Subcategory: SubManipulation, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 10,
			Name:    Label{"Cash–Earnings Divergence", "الفجوة بين الأرباح والتدفق النقدي"},
			Formula: "(Net Income − CFO) / |Net Income| × 100",
			Compute: func(in Input) domain.Value {
				return percent(inc(in).NetIncome-cfs(in).NetCashFromOperations, math.Abs(inc(in).NetIncome))
			}},
		{ID: "benford_deviation", Subcategory: SubManipulation, Unit: UnitScore, Polarity: LowerIsBetter, Baseline: 0.012,
			Name:    Label{"Benford's Law Deviation (MAD)", "الانحراف عن قانون بنفورد"},
			Formula: "Mean |observed − expected| first-digit frequency",
			Compute: func(in Input) domain.Value {
				mad, ok := benfordMAD(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(mad)
			}},
	})
}

// =============================================================================
// TIER 3: TIME SERIES
// =============================================================================

func timeSeriesDefinitions() []Definition {
	return inCategory(CategoryTimeSeries, []Definition{
		{ID: "revenue_autocorrelation", Subcategory: SubSeries, Unit: UnitRatio, Polarity: HigherIsBetter, Baseline: 0.5, MinHistory: 4,
			Name:    Label{"Revenue Autocorrelation (Lag 1)", "الارتباط الذاتي للإيرادات"},
			Formula: "ρ(Revenue t, Revenue t−1)",
			Compute: func(in Input) domain.Value {
				r, ok := autocorrelation(in.Series(fRevenue))
				if !ok {
					return domain.NotApplicable()
				}
				return num(r)
			}},
		{ID: "net_income_autocorrelation", Subcategory: SubSeries, Unit: UnitRatio, Polarity: HigherIsBetter, Baseline: 0.4, MinHistory: 4,
			Name:    Label{"Net Income Autocorrelation (Lag 1)", "الارتباط الذاتي لصافي الدخل"},
			Formula: "ρ(Net Income t, Net Income t−1)",
			Compute: func(in Input) domain.Value {
				r, ok := autocorrelation(in.Series(fNetIncome))
				if !ok {
					return domain.NotApplicable()
				}
				return num(r)
			}},
		{ID: "net_income_trend_strength", Subcategory: SubSeries, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 60, MinHistory: 3,
			Name:    Label{"Net Income Trend Strength (R²)", "قوة اتجاه صافي الدخل"},
			Formula: "R² of Net Income = α + β × t, × 100",
			Compute: func(in Input) domain.Value {
				_, _, r2, ok := linearFit(in.Series(fNetIncome))
				if !ok {
					return domain.NotApplicable()
				}
				return num(r2 * 100)
			}},
		{ID: "revenue_momentum", Subcategory: SubSeries, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 0.5, MinHistory: 3,
			Name:    Label{"Revenue Momentum", "زخم الإيرادات"},
			Formula: "Latest revenue growth − mean revenue growth (points)",
			Compute: func(in Input) domain.Value {
				cs := changes(in.Series(fRevenue))
				m, ok := mean(cs)
				if !ok {
					return domain.NotApplicable()
				}
				return num((cs[len(cs)-1] - m) * 100)
			}},
		{ID: "revenue_growth_volatility", Subcategory: SubSeries, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 8, MinHistory: 3,
			Name:    Label{"Revenue Growth Volatility", "تذبذب نمو الإيرادات"},
			Formula: "σ(revenue growth) in points",
			Compute: func(in Input) domain.Value {
				sd, ok := stdDev(changes(in.Series(fRevenue)))
				if !ok {
					return domain.NotApplicable()
				}
				return num(sd * 100)
			}},
		{ID: "revenue_to_smoothed_level", Subcategory: SubSeries, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 1.05, MinHistory: 3,
			Name:    Label{"Revenue to Smoothed Level", "الإيرادات إلى المستوى الممهد"},
			Formula: "Revenue t / Exponentially smoothed revenue (α = 0.5)",
			Compute: func(in Input) domain.Value {
				xs := in.Series(fRevenue)
				return ratio(xs[len(xs)-1], smoothed(xs, 0.5))
			}},
		{ID: "net_margin_trend", Subcategory: SubSeries, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 0.2, MinHistory: 3,
			Name:    Label{"Net Margin Trend", "اتجاه هامش صافي الربح"},
			Formula: "OLS slope of net margin per period, in points",
			Compute: func(in Input) domain.Value {
				_, beta, _, ok := linearFit(in.Series(fNetMargin))
				if !ok {
					return domain.NotApplicable()
				}
				return num(beta * 100)
			}},
		{ID: "operating_cash_flow_trend", Subcategory: SubSeries, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 5, MinHistory: 3,
			Name:    Label{"Operating Cash Flow Trend", "اتجاه التدفق النقدي التشغيلي"},
			Formula: "OLS slope of CFO / mean CFO × 100",
			Compute: slopeShareOf(fCFO)},
	})
}
