package analysis

import (
	"fmt"
	"math"

	"finanalytics/pkg/contracts/domain"
)

// =============================================================================
// TIER 2: COMPARISONS
// =============================================================================

var (
	fGrossMargin field = func(s domain.FinancialStatement) float64 {
		v, _ := div(s.IncomeStatement.GrossProfit, s.IncomeStatement.Revenue)
		return v
	}
	fOperatingMargin field = func(s domain.FinancialStatement) float64 {
		v, _ := div(s.IncomeStatement.OperatingIncome, s.IncomeStatement.Revenue)
		return v
	}
	fDebtRatio field = func(s domain.FinancialStatement) float64 {
		v, _ := div(s.BalanceSheet.TotalLiabilities, s.BalanceSheet.TotalAssets)
		return v
	}
	fCurrentRatio field = func(s domain.FinancialStatement) float64 {
		v, _ := div(s.BalanceSheet.TotalCurrentAssets, s.BalanceSheet.TotalCurrentLiabilities)
		return v
	}
	fAssetTurnover field = func(s domain.FinancialStatement) float64 {
		v, _ := div(s.IncomeStatement.Revenue, s.BalanceSheet.TotalAssets)
		return v
	}
)

// growthGap returns growth(a) − growth(b) in percentage points
func growthGap(a, b field) ComputeFunc {
	return func(in Input) domain.Value {
		ga, ok1 := div(a(in.Cur())-a(in.Prev()), math.Abs(a(in.Prev())))
		gb, ok2 := div(b(in.Cur())-b(in.Prev()), math.Abs(b(in.Prev())))
		if !ok1 || !ok2 {
			return domain.NotApplicable()
		}
		return num((ga - gb) * 100)
	}
}

func comparisonDefinitions() []Definition {
	return inCategory(CategoryComparisons, []Definition{
		{ID: "gross_margin_change", Subcategory: SubGrowth, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 0.5, MinHistory: 2,
			Name:    Label{"Gross Margin Change", "التغير في هامش الربح الإجمالي"},
			Formula: "Gross Margin t − Gross Margin t−1 (points)",
			Compute: pointsChange(fGrossMargin)},
		{ID: "operating_margin_change", Subcategory: SubGrowth, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 0.5, MinHistory: 2,
			Name:    Label{"Operating Margin Change", "التغير في هامش الربح التشغيلي"},
			Formula: "Operating Margin t − Operating Margin t−1 (points)",
			Compute: pointsChange(fOperatingMargin)},
		{ID: "net_margin_change", Subcategory: SubGrowth, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 0.5, MinHistory: 2,
			Name:    Label{"Net Margin Change", "التغير في هامش صافي الربح"},
			Formula: "Net Margin t − Net Margin t−1 (points)",
			Compute: pointsChange(fNetMargin)},
		{ID: "roe_change", Subcategory: SubGrowth, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 0.5, MinHistory: 2,
			Name:    Label{"Return on Equity Change", "التغير في العائد على حقوق الملكية"},
			Formula: "ROE t − ROE t−1 (points)",
			Compute: pointsChange(fROE)},
		{ID: "roa_change", Subcategory: SubGrowth, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 0.3, MinHistory: 2,
			Name:    Label{"Return on Assets Change", "التغير في العائد على الأصول"},
			Formula: "ROA t − ROA t−1 (points)",
			Compute: pointsChange(fROA)},
		{ID: "debt_ratio_change", Subcategory: SubGrowth, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: -0.5, MinHistory: 2,
			Name:    Label{"Debt Ratio Change", "التغير في نسبة المديونية"},
			Formula: "Debt Ratio t − Debt Ratio t−1 (points)",
			Compute: pointsChange(fDebtRatio)},
		{ID: "current_ratio_change", Subcategory: SubGrowth, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 0.05, MinHistory: 2,
			Name:    Label{"Current Ratio Change", "التغير في نسبة التداول"},
			Formula: "Current Ratio t − Current Ratio t−1",
			Compute: func(in Input) domain.Value { return num(fCurrentRatio(in.Cur()) - fCurrentRatio(in.Prev())) }},
		{ID: "asset_turnover_change", Subcategory: SubGrowth, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 0.02, MinHistory: 2,
			Name:    Label{"Asset Turnover Change", "التغير في معدل دوران الأصول"},
			Formula: "Asset Turnover t − Asset Turnover t−1",
			Compute: func(in Input) domain.Value { return num(fAssetTurnover(in.Cur()) - fAssetTurnover(in.Prev())) }},
		{ID: "revenue_vs_expense_growth", Subcategory: SubGrowth, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 1, MinHistory: 2,
			Name:    Label{"Revenue Growth vs Expense Growth", "نمو الإيرادات مقابل نمو المصروفات"},
			Formula: "Revenue Growth − Operating Expense Growth (points)",
			Compute: growthGap(fRevenue, fOperatingExp)},
		{ID: "earnings_vs_revenue_growth", Subcategory: SubGrowth, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 1, MinHistory: 2,
			Name:    Label{"Earnings Growth vs Revenue Growth", "نمو الأرباح مقابل نمو الإيرادات"},
			Formula: "Net Income Growth − Revenue Growth (points)",
			Compute: growthGap(fNetIncome, fRevenue)},
		{ID: "cash_vs_earnings_growth", Subcategory: SubGrowth, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 1, MinHistory: 2,
			Name:    Label{"Cash Flow Growth vs Earnings Growth", "نمو التدفق النقدي مقابل نمو الأرباح"},
			Formula: "CFO Growth − Net Income Growth (points)",
			Compute: growthGap(fCFO, fNetIncome)},
		{ID: "receivables_vs_revenue_growth", Subcategory: SubGrowth, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: -1, MinHistory: 2,
			Name:    Label{"Receivables Growth vs Revenue Growth", "نمو الذمم المدينة مقابل نمو الإيرادات"},
			Formula: "Receivables Growth − Revenue Growth (points)",
			Compute: growthGap(fReceivables, fRevenue)},
		{ID: "inventory_vs_cost_growth", Subcategory: SubGrowth, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: -1, MinHistory: 2,
			Name:    Label{"Inventory Growth vs Cost of Sales Growth", "نمو المخزون مقابل نمو تكلفة المبيعات"},
			Formula: "Inventory Growth − Cost of Sales Growth (points)",
			Compute: growthGap(fInventory, costOfSales)},
	})
}

// =============================================================================
// TIER 2: VALUATION
// =============================================================================

// perShare divides an equity amount by shares outstanding
func perShare(in Input, amount float64) domain.Value {
	if inc(in).SharesOutstanding <= 0 {
		return domain.NotApplicable()
	}
	return num(amount / inc(in).SharesOutstanding)
}

// upside returns value/price − 1 in percent
func upside(value, price float64) domain.Value {
	if price <= 0 {
		return domain.NotApplicable()
	}
	return num((value/price - 1) * 100)
}

func valuationDefinitions() []Definition {
	return inCategory(CategoryValuation, []Definition{
		{ID: "dcf_enterprise_value", Subcategory: SubIntrinsic, Unit: UnitCurrency, Polarity: HigherIsBetter,
			Name:    Label{"DCF Enterprise Value", "قيمة المنشأة بالتدفقات النقدية المخصومة"},
			Formula: "Σ FCF t / (1 + WACC)^t + TV / (1 + WACC)^n",
			Compute: func(in Input) domain.Value {
				r, ok := discountedCashFlow(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(r.EnterpriseValue)
			}},
		{ID: "dcf_equity_value", Subcategory: SubIntrinsic, Unit: UnitCurrency, Polarity: HigherIsBetter,
			Name:    Label{"DCF Equity Value", "قيمة حقوق الملكية بالتدفقات النقدية المخصومة"},
			Formula: "DCF Enterprise Value − Net Debt",
			Compute: func(in Input) domain.Value {
				r, ok := discountedCashFlow(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(r.EquityValue)
			}},
		{ID: "dcf_value_per_share", Subcategory: SubIntrinsic, Unit: UnitCurrency, Polarity: HigherIsBetter,
			Name:    Label{"DCF Value per Share", "القيمة العادلة للسهم بالتدفقات المخصومة"},
			Formula: "DCF Equity Value / Shares Outstanding",
			Compute: func(in Input) domain.Value {
				r, ok := discountedCashFlow(in)
				if !ok {
					return domain.NotApplicable()
				}
				return perShare(in, r.EquityValue)
			}},
		{ID: "dcf_upside", Subcategory: SubIntrinsic, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 10,
			Name:    Label{"DCF Upside", "هامش الصعود وفق التدفقات المخصومة"},
			Formula: "(DCF Value per Share / Share Price − 1) × 100",
			Compute: func(in Input) domain.Value {
				r, ok := discountedCashFlow(in)
				if !ok || inc(in).SharesOutstanding <= 0 {
					return domain.NotApplicable()
				}
				return upside(r.EquityValue/inc(in).SharesOutstanding, inc(in).SharePrice)
			}},
		{ID: "dividend_discount_value", Subcategory: SubIntrinsic, Unit: UnitCurrency, Polarity: HigherIsBetter,
			Name:    Label{"Dividend Discount Value per Share", "قيمة السهم بنموذج خصم التوزيعات"},
			Formula: "DPS × (1 + g) / (Ke − g)",
			Compute: func(in Input) domain.Value {
				v, ok := gordonValue(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(v)
			}},
		{ID: "residual_income_value", Subcategory: SubIntrinsic, Unit: UnitCurrency, Polarity: HigherIsBetter,
			Name:    Label{"Residual Income Value", "القيمة بنموذج الدخل المتبقي"},
			Formula: "Book Equity + Σ (NI − Ke × Book) / (1 + Ke)^t + TV",
			Compute: func(in Input) domain.Value {
				v, ok := residualIncomeValue(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(v)
			}},
		{ID: "residual_income_upside", Subcategory: SubIntrinsic, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 10,
			Name:    Label{"Residual Income Upside", "هامش الصعود وفق الدخل المتبقي"},
			Formula: "(Residual Income Value / Market Cap − 1) × 100",
			Compute: func(in Input) domain.Value {
				v, ok := residualIncomeValue(in)
				if !ok {
					return domain.NotApplicable()
				}
				return upside(v, marketCap(in.Cur()))
			}},
		{ID: "graham_number", Subcategory: SubIntrinsic, Unit: UnitCurrency, Polarity: HigherIsBetter,
			Name:    Label{"Graham Number", "رقم جراهام"},
			Formula: "√(22.5 × EPS × BVPS)",
			Compute: func(in Input) domain.Value {
				v, ok := grahamNumber(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(v)
			}},
		{ID: "graham_margin_of_safety", Subcategory: SubIntrinsic, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 20,
			Name:    Label{"Graham Margin of Safety", "هامش الأمان وفق جراهام"},
			Formula: "(Graham Number / Share Price − 1) × 100",
			Compute: func(in Input) domain.Value {
				v, ok := grahamNumber(in)
				if !ok {
					return domain.NotApplicable()
				}
				return upside(v, inc(in).SharePrice)
			}},
		{ID: "weighted_average_cost_of_capital", Subcategory: SubIntrinsic, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 10,
			Name:    Label{"Weighted Average Cost of Capital", "المتوسط المرجح لتكلفة رأس المال"},
			Formula: "E/(D+E) × Ke + D/(D+E) × Kd × (1 − t)",
			Compute: func(in Input) domain.Value { return num(in.WACC() * 100) }},
		{ID: "cost_of_equity", Subcategory: SubIntrinsic, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 11,
			Name:    Label{"Cost of Equity (CAPM)", "تكلفة حقوق الملكية"},
			Formula: "Rf + β × ERP",
			Compute: func(in Input) domain.Value { return num(in.CostOfEquity() * 100) }},
		{ID: "economic_value_added", Subcategory: SubIntrinsic, Unit: UnitCurrency, Polarity: HigherIsBetter,
			Name:    Label{"Economic Value Added", "القيمة الاقتصادية المضافة"},
			Formula: "NOPAT − WACC × Invested Capital",
			Compute: func(in Input) domain.Value {
				ic := investedCapital(in.Cur())
				if ic <= 0 {
					return domain.NotApplicable()
				}
				return num(in.NOPAT() - in.WACC()*ic)
			}},
		{ID: "eva_spread", Subcategory: SubIntrinsic, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 3,
			Name:    Label{"EVA Spread", "فارق القيمة الاقتصادية المضافة"},
			Formula: "ROIC − WACC (points)",
			Compute: func(in Input) domain.Value {
				ic := investedCapital(in.Cur())
				if ic <= 0 {
					return domain.NotApplicable()
				}
				return num((in.NOPAT()/ic - in.WACC()) * 100)
			}},
		{ID: "free_cash_flow_yield", Subcategory: SubMultiples, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 5,
			Name:    Label{"Free Cash Flow Yield", "عائد التدفق النقدي الحر"},
			Formula: "Free Cash Flow / Market Capitalization × 100",
			Compute: func(in Input) domain.Value { return percent(cfs(in).FreeCashFlow(), marketCap(in.Cur())) }},
		{ID: "tobins_q", Subcategory: SubMultiples, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 1.2,
			Name:    Label{"Tobin's Q (Approximation)", "مؤشر توبين التقريبي"},
			Formula: "(Market Cap + Total Liabilities) / Total Assets",
			Compute: func(in Input) domain.Value {
				if marketCap(in.Cur()) <= 0 {
					return domain.NotApplicable()
				}
				return ratio(marketCap(in.Cur())+bs(in).TotalLiabilities, bs(in).TotalAssets)
			}},
		{ID: "market_value_added", Subcategory: SubMultiples, Unit: UnitCurrency, Polarity: HigherIsBetter,
			Name:    Label{"Market Value Added", "القيمة السوقية المضافة"},
			Formula: "Market Capitalization − Book Equity",
			Compute: func(in Input) domain.Value {
				if marketCap(in.Cur()) <= 0 {
					return domain.NotApplicable()
				}
				return num(marketCap(in.Cur()) - bs(in).TotalEquity)
			}},
	})
}

// =============================================================================
// TIER 2: PERFORMANCE
// =============================================================================

// penman holds the operating/financing split of a period's returns
type penman struct {
	RNOA, NBC, FLEV float64
}

func penmanDecomposition(in Input) (penman, bool) {
	b, i := bs(in), inc(in)
	nfo := b.TotalDebt() - b.Cash - b.ShortTermInvestments
	noa := b.TotalEquity + nfo
	if noa <= 0 || b.TotalEquity <= 0 {
		return penman{}, false
	}
	t := in.TaxRate()
	p := penman{RNOA: in.NOPAT() / noa, FLEV: nfo / b.TotalEquity}
	if nfo != 0 {
		p.NBC = (i.InterestExpense - i.InterestIncome) * (1 - t) / nfo
	}
	return p, true
}

// fixedCosts approximates the fixed cost base as operating expenses
func fixedCosts(i domain.IncomeStatement) float64 {
	if i.TotalOperatingExpenses != 0 {
		return i.TotalOperatingExpenses
	}
	return i.SellingGeneralAdmin + i.ResearchDevelopment + i.DepreciationAmortization + i.OtherOperatingExpenses
}

func breakEvenRevenue(in Input) (float64, bool) {
	cm, ok := div(inc(in).GrossProfit, inc(in).Revenue)
	if !ok || cm <= 0 {
		return 0, false
	}
	return fixedCosts(inc(in)) / cm, true
}

func performanceDefinitions() []Definition {
	return inCategory(CategoryPerformance, []Definition{
		{ID: "dupont_roe", Subcategory: SubDuPont, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 15,
			Name:    Label{"DuPont ROE", "العائد على حقوق الملكية بتحليل ديبونت"},
			Formula: "Net Margin × Asset Turnover × Equity Multiplier",
			Compute: func(in Input) domain.Value {
				c := in.Cur()
				em, ok := div(c.BalanceSheet.TotalAssets, c.BalanceSheet.TotalEquity)
				if !ok || em <= 0 || c.IncomeStatement.Revenue == 0 {
					return domain.NotApplicable()
				}
				return num(fNetMargin(c) * fAssetTurnover(c) * em * 100)
			}},
		{ID: "dupont_tax_burden", Subcategory: SubDuPont, Unit: UnitRatio, Polarity: HigherIsBetter, Baseline: 0.8,
			Name:    Label{"Tax Burden", "العبء الضريبي"},
			Formula: "Net Income / Income Before Tax",
			Compute: func(in Input) domain.Value {
				if inc(in).IncomeBeforeTax <= 0 {
					return domain.NotApplicable()
				}
				return ratio(inc(in).NetIncome, inc(in).IncomeBeforeTax)
			}},
		{ID: "dupont_interest_burden", Subcategory: SubDuPont, Unit: UnitRatio, Polarity: HigherIsBetter, Baseline: 0.9,
			Name:    Label{"Interest Burden", "عبء الفوائد"},
			Formula: "Income Before Tax / Operating Income",
			Compute: func(in Input) domain.Value {
				if inc(in).OperatingIncome <= 0 {
					return domain.NotApplicable()
				}
				return ratio(inc(in).IncomeBeforeTax, inc(in).OperatingIncome)
			}},
		{ID: "dupont_breakdown", Subcategory: SubDuPont, Unit: UnitRatio, Polarity: HigherIsBetter,
			Name:    Label{"DuPont Breakdown", "تفكيك ديبونت"},
			Formula: "ROE = Net Margin × Asset Turnover × Equity Multiplier",
			Compute: func(in Input) domain.Value {
				c := in.Cur()
				em, ok := div(c.BalanceSheet.TotalAssets, c.BalanceSheet.TotalEquity)
				if !ok || em <= 0 || c.IncomeStatement.Revenue == 0 {
					return domain.NotApplicable()
				}
				nm, at := fNetMargin(c), fAssetTurnover(c)
				return domain.Text(fmt.Sprintf("%.2f%% = %.2f%% × %.2f × %.2f", nm*at*em*100, nm*100, at, em))
			}},
		{ID: "degree_of_operating_leverage", Subcategory: SubLeverageDeg, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 1.5, MinHistory: 2,
			Name:    Label{"Degree of Operating Leverage", "درجة الرافعة التشغيلية"},
			Formula: "%Δ Operating Income / %Δ Revenue",
			Compute: func(in Input) domain.Value {
				gi, ok1 := div(inc(in).OperatingIncome-pinc(in).OperatingIncome, math.Abs(pinc(in).OperatingIncome))
				gr, ok2 := div(inc(in).Revenue-pinc(in).Revenue, math.Abs(pinc(in).Revenue))
				if !ok1 || !ok2 {
					return domain.NotApplicable()
				}
				return ratio(gi, gr)
			}},
		{ID: "degree_of_financial_leverage", Subcategory: SubLeverageDeg, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 1.2,
			Name:    Label{"Degree of Financial Leverage", "درجة الرافعة المالية"},
			Formula: "Operating Income / Income Before Tax",
			Compute: func(in Input) domain.Value {
				if inc(in).IncomeBeforeTax <= 0 {
					return domain.NotApplicable()
				}
				return ratio(inc(in).OperatingIncome, inc(in).IncomeBeforeTax)
			}},
		{ID: "degree_of_combined_leverage", Subcategory: SubLeverageDeg, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 2.0, MinHistory: 2,
			Name:    Label{"Degree of Combined Leverage", "درجة الرافعة المشتركة"},
			Formula: "%Δ Net Income / %Δ Revenue",
			Compute: func(in Input) domain.Value {
				gn, ok1 := div(inc(in).NetIncome-pinc(in).NetIncome, math.Abs(pinc(in).NetIncome))
				gr, ok2 := div(inc(in).Revenue-pinc(in).Revenue, math.Abs(pinc(in).Revenue))
				if !ok1 || !ok2 {
					return domain.NotApplicable()
				}
				return ratio(gn, gr)
			}},
		{ID: "break_even_revenue", Subcategory: SubLeverageDeg, Unit: UnitCurrency, Polarity: LowerIsBetter,
			Name:    Label{"Break-Even Revenue", "إيرادات التعادل"},
			Formula: "Fixed Operating Costs / Contribution Margin Ratio",
			Compute: func(in Input) domain.Value {
				v, ok := breakEvenRevenue(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(v)
			}},
		{ID: "margin_of_safety", Subcategory: SubLeverageDeg, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 25,
			Name:    Label{"Operating Margin of Safety", "هامش الأمان التشغيلي"},
			Formula: "(Revenue − Break-Even Revenue) / Revenue × 100",
			Compute: func(in Input) domain.Value {
				be, ok := breakEvenRevenue(in)
				if !ok {
					return domain.NotApplicable()
				}
				return percent(inc(in).Revenue-be, inc(in).Revenue)
			}},
		{ID: "return_on_net_operating_assets", Subcategory: SubDuPont, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 12,
			Name:    Label{"Return on Net Operating Assets", "العائد على صافي الأصول التشغيلية"},
			Formula: "NOPAT / (Equity + Net Financial Obligations) × 100",
			Compute: func(in Input) domain.Value {
				p, ok := penmanDecomposition(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(p.RNOA * 100)
			}},
		{ID: "net_borrowing_cost", Subcategory: SubDuPont, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 6,
			Name:    Label{"Net Borrowing Cost", "صافي تكلفة الاقتراض"},
			Formula: "Net Financial Expense after Tax / Net Financial Obligations × 100",
			Compute: func(in Input) domain.Value {
				p, ok := penmanDecomposition(in)
				if !ok || p.FLEV <= 0 {
					return domain.NotApplicable()
				}
				return num(p.NBC * 100)
			}},
		{ID: "financial_leverage_penman", Subcategory: SubDuPont, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 0.5,
			Name:    Label{"Net Financial Leverage", "صافي الرافعة المالية"},
			Formula: "Net Financial Obligations / Total Equity",
			Compute: func(in Input) domain.Value {
				p, ok := penmanDecomposition(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num(p.FLEV)
			}},
		{ID: "operating_spread", Subcategory: SubDuPont, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 5,
			Name:    Label{"Operating Spread", "الفارق التشغيلي"},
			Formula: "RNOA − Net Borrowing Cost (points)",
			Compute: func(in Input) domain.Value {
				p, ok := penmanDecomposition(in)
				if !ok {
					return domain.NotApplicable()
				}
				return num((p.RNOA - p.NBC) * 100)
			}},
	})
}
