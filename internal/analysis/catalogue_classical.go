package analysis

import (
	"math"

	"finanalytics/pkg/contracts/domain"
)

// =============================================================================
// TIER 1: STRUCTURAL ANALYSIS
// =============================================================================

var (
	fCash         field = func(s domain.FinancialStatement) float64 { return s.BalanceSheet.Cash }
	fIntangibles  field = func(s domain.FinancialStatement) float64 { return s.BalanceSheet.IntangibleAssets + s.BalanceSheet.Goodwill }
	fCurrentLiab  field = func(s domain.FinancialStatement) float64 { return s.BalanceSheet.TotalCurrentLiabilities }
	fLongTermDebt field = func(s domain.FinancialStatement) float64 { return s.BalanceSheet.LongTermDebt }
	fSGA          field = func(s domain.FinancialStatement) float64 { return s.IncomeStatement.SellingGeneralAdmin }
	fRD           field = func(s domain.FinancialStatement) float64 { return s.IncomeStatement.ResearchDevelopment }
	fInterest     field = func(s domain.FinancialStatement) float64 { return s.IncomeStatement.InterestExpense }
	fTax          field = func(s domain.FinancialStatement) float64 { return s.IncomeStatement.IncomeTaxExpense }
	fDepreciation field = func(s domain.FinancialStatement) float64 { return s.IncomeStatement.DepreciationAmortization }
)

func structuralDefinitions() []Definition {
	return inCategory(CategoryStructural, []Definition{
		// Vertical (common size)
		{ID: "cash_to_total_assets", Subcategory: SubVertical, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 10,
			Name:    Label{"Cash to Total Assets", "النقدية إلى إجمالي الأصول"},
			Formula: "Cash / Total Assets × 100",
			Compute: share(fCash, fTotalAssets)},
		{ID: "receivables_to_total_assets", Subcategory: SubVertical, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 15,
			Name:    Label{"Receivables to Total Assets", "الذمم المدينة إلى إجمالي الأصول"},
			Formula: "Accounts Receivable / Total Assets × 100",
			Compute: share(fReceivables, fTotalAssets)},
		{ID: "inventory_to_total_assets", Subcategory: SubVertical, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 15,
			Name:    Label{"Inventory to Total Assets", "المخزون إلى إجمالي الأصول"},
			Formula: "Inventory / Total Assets × 100",
			Compute: share(fInventory, fTotalAssets)},
		{ID: "current_assets_to_total_assets", Subcategory: SubVertical, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 40,
			Name:    Label{"Current Assets to Total Assets", "الأصول المتداولة إلى إجمالي الأصول"},
			Formula: "Total Current Assets / Total Assets × 100",
			Compute: share(fCurrentAssets, fTotalAssets)},
		{ID: "fixed_assets_to_total_assets", Subcategory: SubVertical, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 45,
			Name:    Label{"Fixed Assets to Total Assets", "الأصول الثابتة إلى إجمالي الأصول"},
			Formula: "Property, Plant & Equipment / Total Assets × 100",
			Compute: share(fFixedAssets, fTotalAssets)},
		{ID: "intangibles_to_total_assets", Subcategory: SubVertical, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 10,
			Name:    Label{"Intangibles to Total Assets", "الأصول غير الملموسة إلى إجمالي الأصول"},
			Formula: "(Intangible Assets + Goodwill) / Total Assets × 100",
			Compute: share(fIntangibles, fTotalAssets)},
		{ID: "current_liabilities_to_total_assets", Subcategory: SubVertical, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 25,
			Name:    Label{"Current Liabilities to Total Assets", "الخصوم المتداولة إلى إجمالي الأصول"},
			Formula: "Total Current Liabilities / Total Assets × 100",
			Compute: share(fCurrentLiab, fTotalAssets)},
		{ID: "long_term_debt_to_total_assets", Subcategory: SubVertical, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 20,
			Name:    Label{"Long-Term Debt to Total Assets", "الديون طويلة الأجل إلى إجمالي الأصول"},
			Formula: "Long-Term Debt / Total Assets × 100",
			Compute: share(fLongTermDebt, fTotalAssets)},
		{ID: "cost_of_sales_to_revenue", Subcategory: SubVertical, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 65,
			Name:    Label{"Cost of Sales to Revenue", "تكلفة المبيعات إلى الإيرادات"},
			Formula: "Cost of Goods Sold / Revenue × 100",
			Compute: share(costOfSales, fRevenue)},
		{ID: "operating_expenses_to_revenue", Subcategory: SubVertical, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 20,
			Name:    Label{"Operating Expenses to Revenue", "المصروفات التشغيلية إلى الإيرادات"},
			Formula: "Total Operating Expenses / Revenue × 100",
			Compute: share(fOperatingExp, fRevenue)},
		{ID: "sga_to_revenue", Subcategory: SubVertical, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 12,
			Name:    Label{"SG&A to Revenue", "المصروفات البيعية والإدارية إلى الإيرادات"},
			Formula: "Selling, General & Administrative / Revenue × 100",
			Compute: share(fSGA, fRevenue)},
		{ID: "rd_to_revenue", Subcategory: SubVertical, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 3,
			Name:    Label{"R&D to Revenue", "البحث والتطوير إلى الإيرادات"},
			Formula: "Research & Development / Revenue × 100",
			Compute: share(fRD, fRevenue)},
		{ID: "interest_to_revenue", Subcategory: SubVertical, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 3,
			Name:    Label{"Interest Expense to Revenue", "مصروف الفوائد إلى الإيرادات"},
			Formula: "Interest Expense / Revenue × 100",
			Compute: share(fInterest, fRevenue)},
		{ID: "tax_to_revenue", Subcategory: SubVertical, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 3,
			Name:    Label{"Income Tax to Revenue", "ضريبة الدخل إلى الإيرادات"},
			Formula: "Income Tax Expense / Revenue × 100",
			Compute: share(fTax, fRevenue)},
		{ID: "depreciation_to_revenue", Subcategory: SubVertical, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 5,
			Name:    Label{"Depreciation to Revenue", "الإهلاك إلى الإيرادات"},
			Formula: "Depreciation & Amortization / Revenue × 100",
			Compute: share(fDepreciation, fRevenue)},

		// Horizontal (period over period)
		{ID: "revenue_growth", Subcategory: SubHorizontal, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 8, MinHistory: 2,
			Name:    Label{"Revenue Growth", "نمو الإيرادات"},
			Formula: "(Revenue t − Revenue t−1) / |Revenue t−1| × 100",
			Compute: growthOf(fRevenue)},
		{ID: "cost_of_sales_growth", Subcategory: SubHorizontal, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 6, MinHistory: 2,
			Name:    Label{"Cost of Sales Growth", "نمو تكلفة المبيعات"},
			Formula: "(COGS t − COGS t−1) / |COGS t−1| × 100",
			Compute: growthOf(costOfSales)},
		{ID: "gross_profit_growth", Subcategory: SubHorizontal, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 8, MinHistory: 2,
			Name:    Label{"Gross Profit Growth", "نمو مجمل الربح"},
			Formula: "(Gross Profit t − Gross Profit t−1) / |Gross Profit t−1| × 100",
			Compute: growthOf(fGrossProfit)},
		{ID: "operating_income_growth", Subcategory: SubHorizontal, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 8, MinHistory: 2,
			Name:    Label{"Operating Income Growth", "نمو الدخل التشغيلي"},
			Formula: "(Operating Income t − Operating Income t−1) / |Operating Income t−1| × 100",
			Compute: growthOf(fOperatingIncome)},
		{ID: "net_income_growth", Subcategory: SubHorizontal, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 8, MinHistory: 2,
			Name:    Label{"Net Income Growth", "نمو صافي الدخل"},
			Formula: "(Net Income t − Net Income t−1) / |Net Income t−1| × 100",
			Compute: growthOf(fNetIncome)},
		{ID: "total_assets_growth", Subcategory: SubHorizontal, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 6, MinHistory: 2,
			Name:    Label{"Total Assets Growth", "نمو إجمالي الأصول"},
			Formula: "(Total Assets t − Total Assets t−1) / |Total Assets t−1| × 100",
			Compute: growthOf(fTotalAssets)},
		{ID: "total_liabilities_growth", Subcategory: SubHorizontal, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 5, MinHistory: 2,
			Name:    Label{"Total Liabilities Growth", "نمو إجمالي الخصوم"},
			Formula: "(Total Liabilities t − Total Liabilities t−1) / |Total Liabilities t−1| × 100",
			Compute: growthOf(fLiabilities)},
		{ID: "equity_growth", Subcategory: SubHorizontal, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 7, MinHistory: 2,
			Name:    Label{"Equity Growth", "نمو حقوق الملكية"},
			Formula: "(Total Equity t − Total Equity t−1) / |Total Equity t−1| × 100",
			Compute: growthOf(fEquity)},
		{ID: "operating_cash_flow_growth", Subcategory: SubHorizontal, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 8, MinHistory: 2,
			Name:    Label{"Operating Cash Flow Growth", "نمو التدفق النقدي التشغيلي"},
			Formula: "(CFO t − CFO t−1) / |CFO t−1| × 100",
			Compute: growthOf(fCFO)},
		{ID: "working_capital_change", Subcategory: SubHorizontal, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 5, MinHistory: 2,
			Name:    Label{"Working Capital Change", "التغير في رأس المال العامل"},
			Formula: "(Working Capital t − Working Capital t−1) / |Working Capital t−1| × 100",
			Compute: growthOf(fWorkingCapital)},

		// Trend (index and compound growth over the whole history)
		{ID: "revenue_trend_index", Subcategory: SubTrend, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 115, MinHistory: 3,
			Name:    Label{"Revenue Trend Index", "الرقم القياسي لاتجاه الإيرادات"},
			Formula: "Revenue t / Revenue base × 100",
			Compute: trendIndexOf(fRevenue)},
		{ID: "net_income_trend_index", Subcategory: SubTrend, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 115, MinHistory: 3,
			Name:    Label{"Net Income Trend Index", "الرقم القياسي لاتجاه صافي الدخل"},
			Formula: "Net Income t / Net Income base × 100",
			Compute: trendIndexOf(fNetIncome)},
		{ID: "total_assets_trend_index", Subcategory: SubTrend, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 112, MinHistory: 3,
			Name:    Label{"Total Assets Trend Index", "الرقم القياسي لاتجاه الأصول"},
			Formula: "Total Assets t / Total Assets base × 100",
			Compute: trendIndexOf(fTotalAssets)},
		{ID: "revenue_cagr", Subcategory: SubTrend, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 7, MinHistory: 3,
			Name:    Label{"Revenue CAGR", "معدل النمو السنوي المركب للإيرادات"},
			Formula: "(Revenue t / Revenue base)^(1/n) − 1",
			Compute: cagrOf(fRevenue)},
		{ID: "net_income_cagr", Subcategory: SubTrend, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 7, MinHistory: 3,
			Name:    Label{"Net Income CAGR", "معدل النمو السنوي المركب لصافي الدخل"},
			Formula: "(Net Income t / Net Income base)^(1/n) − 1",
			Compute: cagrOf(fNetIncome)},
		{ID: "equity_cagr", Subcategory: SubTrend, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 6, MinHistory: 3,
			Name:    Label{"Equity CAGR", "معدل النمو السنوي المركب لحقوق الملكية"},
			Formula: "(Equity t / Equity base)^(1/n) − 1",
			Compute: cagrOf(fEquity)},
		{ID: "revenue_trend_slope", Subcategory: SubTrend, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 6, MinHistory: 3,
			Name:    Label{"Revenue Trend Slope", "ميل اتجاه الإيرادات"},
			Formula: "OLS slope of revenue on time / mean revenue × 100",
			Compute: slopeShareOf(fRevenue)},
	})
}

// slopeShareOf returns the fitted per-period change of f relative to its mean, in percent
func slopeShareOf(f field) ComputeFunc {
	return func(in Input) domain.Value {
		ys := in.Series(f)
		_, beta, _, ok := linearFit(ys)
		if !ok {
			return domain.NotApplicable()
		}
		m, _ := mean(ys)
		return percent(beta, math.Abs(m))
	}
}

// =============================================================================
// TIER 1: FINANCIAL RATIOS
// =============================================================================

func liquidityDefinitions() []Definition {
	return inCategory(CategoryRatios, []Definition{
		{ID: "current_ratio", Subcategory: SubLiquidity, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 2.0,
			Name:    Label{"Current Ratio", "نسبة التداول"},
			Formula: "Total Current Assets / Total Current Liabilities",
			Compute: func(in Input) domain.Value { return ratio(bs(in).TotalCurrentAssets, bs(in).TotalCurrentLiabilities) }},
		{ID: "quick_ratio", Subcategory: SubLiquidity, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 1.0,
			Name:    Label{"Quick Ratio", "نسبة السيولة السريعة"},
			Formula: "(Current Assets − Inventory − Prepaid Expenses) / Current Liabilities",
			Compute: func(in Input) domain.Value {
				b := bs(in)
				return ratio(b.TotalCurrentAssets-b.Inventory-b.PrepaidExpenses, b.TotalCurrentLiabilities)
			}},
		{ID: "cash_ratio", Subcategory: SubLiquidity, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 0.5,
			Name:    Label{"Cash Ratio", "نسبة النقدية"},
			Formula: "(Cash + Short-Term Investments) / Current Liabilities",
			Compute: func(in Input) domain.Value {
				b := bs(in)
				return ratio(b.Cash+b.ShortTermInvestments, b.TotalCurrentLiabilities)
			}},
		{ID: "operating_cash_flow_ratio", Subcategory: SubLiquidity, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 0.4,
			Name:    Label{"Operating Cash Flow Ratio", "نسبة التدفق النقدي التشغيلي"},
			Formula: "Net Cash from Operations / Current Liabilities",
			Compute: func(in Input) domain.Value { return ratio(cfs(in).NetCashFromOperations, bs(in).TotalCurrentLiabilities) }},
		{ID: "working_capital_to_assets", Subcategory: SubLiquidity, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 15,
			Name:    Label{"Working Capital to Total Assets", "رأس المال العامل إلى إجمالي الأصول"},
			Formula: "(Current Assets − Current Liabilities) / Total Assets × 100",
			Compute: share(fWorkingCapital, fTotalAssets)},
		{ID: "working_capital_to_current_assets", Subcategory: SubLiquidity, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 35,
			Name:    Label{"Working Capital to Current Assets", "رأس المال العامل إلى الأصول المتداولة"},
			Formula: "(Current Assets − Current Liabilities) / Current Assets × 100",
			Compute: share(fWorkingCapital, fCurrentAssets)},
		{ID: "cash_to_current_assets", Subcategory: SubLiquidity, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 25,
			Name:    Label{"Cash to Current Assets", "النقدية إلى الأصول المتداولة"},
			Formula: "Cash / Total Current Assets × 100",
			Compute: share(fCash, fCurrentAssets)},
		{ID: "inventory_to_working_capital", Subcategory: SubLiquidity, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 60,
			Name:    Label{"Inventory to Working Capital", "المخزون إلى رأس المال العامل"},
			Formula: "Inventory / (Current Assets − Current Liabilities) × 100",
			Compute: func(in Input) domain.Value {
				wc := bs(in).WorkingCapital()
				if wc <= 0 {
					return domain.NotApplicable()
				}
				return percent(bs(in).Inventory, wc)
			}},
		{ID: "defensive_interval", Subcategory: SubLiquidity, Unit: UnitDays, Polarity: HigherIsBetter, Baseline: 90,
			Name:    Label{"Defensive Interval", "فترة الحماية الدفاعية"},
			Formula: "(Cash + Short-Term Investments + Receivables) / ((COGS + Operating Expenses − D&A) / 365)",
			Compute: func(in Input) domain.Value {
				b, i := bs(in), inc(in)
				daily := costOfSales(in.Cur()) + i.TotalOperatingExpenses - i.DepreciationAmortization
				return days(b.Cash+b.ShortTermInvestments+b.AccountsReceivable, daily)
			}},
		{ID: "current_liability_coverage", Subcategory: SubLiquidity, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 0.3,
			Name:    Label{"Current Liability Coverage by Free Cash Flow", "تغطية الخصوم المتداولة بالتدفق النقدي الحر"},
			Formula: "Free Cash Flow / Current Liabilities",
			Compute: func(in Input) domain.Value { return ratio(cfs(in).FreeCashFlow(), bs(in).TotalCurrentLiabilities) }},
	})
}

func activityDefinitions() []Definition {
	return inCategory(CategoryRatios, []Definition{
		{ID: "receivables_turnover", Subcategory: SubActivity, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 8,
			Name:    Label{"Receivables Turnover", "معدل دوران الذمم المدينة"},
			Formula: "Revenue / Accounts Receivable",
			Compute: func(in Input) domain.Value { return ratio(inc(in).Revenue, bs(in).AccountsReceivable) }},
		{ID: "days_sales_outstanding", Subcategory: SubActivity, Unit: UnitDays, Polarity: LowerIsBetter, Baseline: 45,
			Name:    Label{"Days Sales Outstanding", "متوسط فترة التحصيل"},
			Formula: "Accounts Receivable / Revenue × 365",
			Compute: func(in Input) domain.Value { return days(bs(in).AccountsReceivable, inc(in).Revenue) }},
		{ID: "inventory_turnover", Subcategory: SubActivity, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 6,
			Name:    Label{"Inventory Turnover", "معدل دوران المخزون"},
			Formula: "Cost of Goods Sold / Inventory",
			Compute: func(in Input) domain.Value { return ratio(costOfSales(in.Cur()), bs(in).Inventory) }},
		{ID: "days_inventory_outstanding", Subcategory: SubActivity, Unit: UnitDays, Polarity: LowerIsBetter, Baseline: 60,
			Name:    Label{"Days Inventory Outstanding", "متوسط فترة التخزين"},
			Formula: "Inventory / Cost of Goods Sold × 365",
			Compute: func(in Input) domain.Value { return days(bs(in).Inventory, costOfSales(in.Cur())) }},
		{ID: "payables_turnover", Subcategory: SubActivity, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 7,
			Name:    Label{"Payables Turnover", "معدل دوران الذمم الدائنة"},
			Formula: "Cost of Goods Sold / Accounts Payable",
			Compute: func(in Input) domain.Value { return ratio(costOfSales(in.Cur()), bs(in).AccountsPayable) }},
		{ID: "days_payables_outstanding", Subcategory: SubActivity, Unit: UnitDays, Polarity: HigherIsBetter, Baseline: 50,
			Name:    Label{"Days Payables Outstanding", "متوسط فترة السداد"},
			Formula: "Accounts Payable / Cost of Goods Sold × 365",
			Compute: func(in Input) domain.Value { return days(bs(in).AccountsPayable, costOfSales(in.Cur())) }},
		{ID: "operating_cycle", Subcategory: SubActivity, Unit: UnitDays, Polarity: LowerIsBetter, Baseline: 105,
			Name:    Label{"Operating Cycle", "الدورة التشغيلية"},
			Formula: "Days Sales Outstanding + Days Inventory Outstanding",
			Compute: func(in Input) domain.Value {
				dso, ok1 := div(bs(in).AccountsReceivable*daysInYear, inc(in).Revenue)
				dio, ok2 := div(bs(in).Inventory*daysInYear, costOfSales(in.Cur()))
				if !ok1 || !ok2 {
					return domain.NotApplicable()
				}
				return num(dso + dio)
			}},
		{ID: "cash_conversion_cycle", Subcategory: SubActivity, Unit: UnitDays, Polarity: LowerIsBetter, Baseline: 55,
			Name:    Label{"Cash Conversion Cycle", "دورة التحويل النقدي"},
			Formula: "DSO + DIO − DPO",
			Compute: func(in Input) domain.Value {
				cogs := costOfSales(in.Cur())
				dso, ok1 := div(bs(in).AccountsReceivable*daysInYear, inc(in).Revenue)
				dio, ok2 := div(bs(in).Inventory*daysInYear, cogs)
				dpo, ok3 := div(bs(in).AccountsPayable*daysInYear, cogs)
				if !ok1 || !ok2 || !ok3 {
					return domain.NotApplicable()
				}
				return num(dso + dio - dpo)
			}},
		{ID: "asset_turnover", Subcategory: SubActivity, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 0.9,
			Name:    Label{"Total Asset Turnover", "معدل دوران إجمالي الأصول"},
			Formula: "Revenue / Total Assets",
			Compute: func(in Input) domain.Value { return ratio(inc(in).Revenue, bs(in).TotalAssets) }},
		{ID: "fixed_asset_turnover", Subcategory: SubActivity, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 2.5,
			Name:    Label{"Fixed Asset Turnover", "معدل دوران الأصول الثابتة"},
			Formula: "Revenue / Property, Plant & Equipment",
			Compute: func(in Input) domain.Value { return ratio(inc(in).Revenue, bs(in).PropertyPlantEquipment) }},
		{ID: "current_asset_turnover", Subcategory: SubActivity, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 2.0,
			Name:    Label{"Current Asset Turnover", "معدل دوران الأصول المتداولة"},
			Formula: "Revenue / Total Current Assets",
			Compute: func(in Input) domain.Value { return ratio(inc(in).Revenue, bs(in).TotalCurrentAssets) }},
		{ID: "working_capital_turnover", Subcategory: SubActivity, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 5,
			Name:    Label{"Working Capital Turnover", "معدل دوران رأس المال العامل"},
			Formula: "Revenue / (Current Assets − Current Liabilities)",
			Compute: func(in Input) domain.Value {
				wc := bs(in).WorkingCapital()
				if wc <= 0 {
					return domain.NotApplicable()
				}
				return ratio(inc(in).Revenue, wc)
			}},
		{ID: "equity_turnover", Subcategory: SubActivity, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 1.8,
			Name:    Label{"Equity Turnover", "معدل دوران حقوق الملكية"},
			Formula: "Revenue / Total Equity",
			Compute: func(in Input) domain.Value { return ratio(inc(in).Revenue, bs(in).TotalEquity) }},
	})
}

func profitabilityDefinitions() []Definition {
	return inCategory(CategoryRatios, []Definition{
		{ID: "gross_profit_margin", Subcategory: SubProfitability, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 35,
			Name:    Label{"Gross Profit Margin", "هامش الربح الإجمالي"},
			Formula: "Gross Profit / Revenue × 100",
			Compute: share(fGrossProfit, fRevenue)},
		{ID: "operating_profit_margin", Subcategory: SubProfitability, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 15,
			Name:    Label{"Operating Profit Margin", "هامش الربح التشغيلي"},
			Formula: "Operating Income / Revenue × 100",
			Compute: share(fOperatingIncome, fRevenue)},
		{ID: "net_profit_margin", Subcategory: SubProfitability, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 10,
			Name:    Label{"Net Profit Margin", "هامش صافي الربح"},
			Formula: "Net Income / Revenue × 100",
			Compute: share(fNetIncome, fRevenue)},
		{ID: "ebitda_margin", Subcategory: SubProfitability, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 20,
			Name:    Label{"EBITDA Margin", "هامش الأرباح قبل الفوائد والضرائب والإهلاك"},
			Formula: "EBITDA / Revenue × 100",
			Compute: share(fEBITDA, fRevenue)},
		{ID: "pretax_margin", Subcategory: SubProfitability, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 12,
			Name:    Label{"Pre-Tax Margin", "هامش الربح قبل الضريبة"},
			Formula: "Income Before Tax / Revenue × 100",
			Compute: func(in Input) domain.Value { return percent(inc(in).IncomeBeforeTax, inc(in).Revenue) }},
		{ID: "return_on_assets", Subcategory: SubProfitability, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 8,
			Name:    Label{"Return on Assets", "العائد على الأصول"},
			Formula: "Net Income / Total Assets × 100",
			Compute: share(fNetIncome, fTotalAssets)},
		{ID: "return_on_equity", Subcategory: SubProfitability, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 15,
			Name:    Label{"Return on Equity", "العائد على حقوق الملكية"},
			Formula: "Net Income / Total Equity × 100",
			Compute: func(in Input) domain.Value {
				if bs(in).TotalEquity <= 0 {
					return domain.NotApplicable()
				}
				return percent(inc(in).NetIncome, bs(in).TotalEquity)
			}},
		{ID: "return_on_average_equity", Subcategory: SubProfitability, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 15, MinHistory: 2,
			Name:    Label{"Return on Average Equity", "العائد على متوسط حقوق الملكية"},
			Formula: "Net Income / ((Equity t + Equity t−1) / 2) × 100",
			Compute: func(in Input) domain.Value {
				avg := in.Avg(fEquity)
				if avg <= 0 {
					return domain.NotApplicable()
				}
				return percent(inc(in).NetIncome, avg)
			}},
		{ID: "return_on_average_assets", Subcategory: SubProfitability, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 8, MinHistory: 2,
			Name:    Label{"Return on Average Assets", "العائد على متوسط الأصول"},
			Formula: "Net Income / ((Assets t + Assets t−1) / 2) × 100",
			Compute: func(in Input) domain.Value { return percent(inc(in).NetIncome, in.Avg(fTotalAssets)) }},
		{ID: "return_on_invested_capital", Subcategory: SubProfitability, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 10,
			Name:    Label{"Return on Invested Capital", "العائد على رأس المال المستثمر"},
			Formula: "Operating Income × (1 − Tax Rate) / (Equity + Debt − Cash) × 100",
			Compute: func(in Input) domain.Value {
				ic := investedCapital(in.Cur())
				if ic <= 0 {
					return domain.NotApplicable()
				}
				return percent(in.NOPAT(), ic)
			}},
		{ID: "return_on_capital_employed", Subcategory: SubProfitability, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 12,
			Name:    Label{"Return on Capital Employed", "العائد على رأس المال المستخدم"},
			Formula: "Operating Income / (Total Assets − Current Liabilities) × 100",
			Compute: func(in Input) domain.Value {
				return percent(inc(in).OperatingIncome, bs(in).TotalAssets-bs(in).TotalCurrentLiabilities)
			}},
		{ID: "effective_tax_rate", Subcategory: SubProfitability, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 20,
			Name:    Label{"Effective Tax Rate", "معدل الضريبة الفعلي"},
			Formula: "Income Tax Expense / Income Before Tax × 100",
			Compute: func(in Input) domain.Value {
				if inc(in).IncomeBeforeTax <= 0 {
					return domain.NotApplicable()
				}
				return percent(inc(in).IncomeTaxExpense, inc(in).IncomeBeforeTax)
			}},
		{ID: "return_on_fixed_assets", Subcategory: SubProfitability, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 18,
			Name:    Label{"Return on Fixed Assets", "العائد على الأصول الثابتة"},
			Formula: "Net Income / Property, Plant & Equipment × 100",
			Compute: share(fNetIncome, fFixedAssets)},
		{ID: "operating_expense_ratio", Subcategory: SubProfitability, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 80,
			Name:    Label{"Operating Expense Ratio", "نسبة المصروفات التشغيلية"},
			Formula: "(Cost of Goods Sold + Operating Expenses) / Revenue × 100",
			Compute: func(in Input) domain.Value {
				return percent(costOfSales(in.Cur())+inc(in).TotalOperatingExpenses, inc(in).Revenue)
			}},
	})
}

func leverageDefinitions() []Definition {
	return inCategory(CategoryRatios, []Definition{
		{ID: "debt_ratio", Subcategory: SubLeverage, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 50,
			Name:    Label{"Debt Ratio", "نسبة المديونية"},
			Formula: "Total Liabilities / Total Assets × 100",
			Compute: share(fLiabilities, fTotalAssets)},
		{ID: "debt_to_equity", Subcategory: SubLeverage, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 1.0,
			Name:    Label{"Debt to Equity", "نسبة الديون إلى حقوق الملكية"},
			Formula: "Total Liabilities / Total Equity",
			Compute: func(in Input) domain.Value {
				if bs(in).TotalEquity <= 0 {
					return domain.NotApplicable()
				}
				return ratio(bs(in).TotalLiabilities, bs(in).TotalEquity)
			}},
		{ID: "financial_debt_to_equity", Subcategory: SubLeverage, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 0.6,
			Name:    Label{"Financial Debt to Equity", "الديون المالية إلى حقوق الملكية"},
			Formula: "(Short-Term Debt + Current LTD + Long-Term Debt) / Total Equity",
			Compute: func(in Input) domain.Value {
				if bs(in).TotalEquity <= 0 {
					return domain.NotApplicable()
				}
				return ratio(bs(in).TotalDebt(), bs(in).TotalEquity)
			}},
		{ID: "equity_ratio", Subcategory: SubLeverage, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 50,
			Name:    Label{"Equity Ratio", "نسبة الملكية"},
			Formula: "Total Equity / Total Assets × 100",
			Compute: share(fEquity, fTotalAssets)},
		{ID: "equity_multiplier", Subcategory: SubLeverage, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 2.0,
			Name:    Label{"Equity Multiplier", "مضاعف حقوق الملكية"},
			Formula: "Total Assets / Total Equity",
			Compute: func(in Input) domain.Value {
				if bs(in).TotalEquity <= 0 {
					return domain.NotApplicable()
				}
				return ratio(bs(in).TotalAssets, bs(in).TotalEquity)
			}},
		{ID: "long_term_debt_to_capital", Subcategory: SubLeverage, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 30,
			Name:    Label{"Long-Term Debt to Capitalization", "الديون طويلة الأجل إلى رأس المال"},
			Formula: "Long-Term Debt / (Long-Term Debt + Total Equity) × 100",
			Compute: func(in Input) domain.Value {
				return percent(bs(in).LongTermDebt, bs(in).LongTermDebt+bs(in).TotalEquity)
			}},
		{ID: "capitalization_ratio", Subcategory: SubLeverage, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 35,
			Name:    Label{"Capitalization Ratio", "نسبة الرسملة"},
			Formula: "Total Debt / (Total Debt + Total Equity) × 100",
			Compute: func(in Input) domain.Value {
				return percent(bs(in).TotalDebt(), bs(in).TotalDebt()+bs(in).TotalEquity)
			}},
		{ID: "interest_coverage", Subcategory: SubLeverage, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 5,
			Name:    Label{"Interest Coverage", "معدل تغطية الفوائد"},
			Formula: "Operating Income / Interest Expense",
			Compute: func(in Input) domain.Value { return ratio(inc(in).OperatingIncome, math.Abs(inc(in).InterestExpense)) }},
		{ID: "cash_coverage", Subcategory: SubLeverage, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 7,
			Name:    Label{"Cash Coverage", "التغطية النقدية للفوائد"},
			Formula: "EBITDA / Interest Expense",
			Compute: func(in Input) domain.Value { return ratio(inc(in).EBITDA(), math.Abs(inc(in).InterestExpense)) }},
		{ID: "debt_to_ebitda", Subcategory: SubLeverage, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 2.5,
			Name:    Label{"Debt to EBITDA", "الديون إلى الأرباح قبل الفوائد والضرائب والإهلاك"},
			Formula: "Total Debt / EBITDA",
			Compute: func(in Input) domain.Value {
				if inc(in).EBITDA() <= 0 {
					return domain.NotApplicable()
				}
				return ratio(bs(in).TotalDebt(), inc(in).EBITDA())
			}},
		{ID: "net_debt_to_ebitda", Subcategory: SubLeverage, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 2.0,
			Name:    Label{"Net Debt to EBITDA", "صافي الديون إلى الأرباح قبل الفوائد والضرائب والإهلاك"},
			Formula: "(Total Debt − Cash) / EBITDA",
			Compute: func(in Input) domain.Value {
				if inc(in).EBITDA() <= 0 {
					return domain.NotApplicable()
				}
				return ratio(bs(in).TotalDebt()-bs(in).Cash, inc(in).EBITDA())
			}},
		{ID: "debt_service_coverage", Subcategory: SubLeverage, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 1.5,
			Name:    Label{"Debt Service Coverage", "نسبة تغطية خدمة الدين"},
			Formula: "Net Cash from Operations / (Interest Expense + Current Debt)",
			Compute: func(in Input) domain.Value {
				b := bs(in)
				service := math.Abs(inc(in).InterestExpense) + b.ShortTermDebt + b.CurrentPortionLongTermDebt
				return ratio(cfs(in).NetCashFromOperations, service)
			}},
	})
}

func marketDefinitions() []Definition {
	return inCategory(CategoryRatios, []Definition{
		{ID: "earnings_per_share", Subcategory: SubMarket, Unit: UnitCurrency, Polarity: HigherIsBetter,
			Name:    Label{"Earnings per Share", "ربحية السهم"},
			Formula: "Net Income / Shares Outstanding",
			Compute: func(in Input) domain.Value {
				if inc(in).EarningsPerShare == 0 && inc(in).SharesOutstanding == 0 {
					return domain.NotApplicable()
				}
				return num(earningsPerShare(in.Cur()))
			}},
		{ID: "book_value_per_share", Subcategory: SubMarket, Unit: UnitCurrency, Polarity: HigherIsBetter,
			Name:    Label{"Book Value per Share", "القيمة الدفترية للسهم"},
			Formula: "Total Equity / Shares Outstanding",
			Compute: func(in Input) domain.Value { return ratio(bs(in).TotalEquity, inc(in).SharesOutstanding) }},
		{ID: "price_to_earnings", Subcategory: SubMarket, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 15,
			Name:    Label{"Price to Earnings", "مكرر الربحية"},
			Formula: "Share Price / Earnings per Share",
			Compute: func(in Input) domain.Value {
				eps := earningsPerShare(in.Cur())
				if eps <= 0 || inc(in).SharePrice <= 0 {
					return domain.NotApplicable()
				}
				return ratio(inc(in).SharePrice, eps)
			}},
		{ID: "price_to_book", Subcategory: SubMarket, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 1.8,
			Name:    Label{"Price to Book", "السعر إلى القيمة الدفترية"},
			Formula: "Share Price / Book Value per Share",
			Compute: func(in Input) domain.Value {
				bvps, ok := bookValuePerShare(in.Cur())
				if !ok || bvps <= 0 || inc(in).SharePrice <= 0 {
					return domain.NotApplicable()
				}
				return ratio(inc(in).SharePrice, bvps)
			}},
		{ID: "price_to_sales", Subcategory: SubMarket, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 1.5,
			Name:    Label{"Price to Sales", "السعر إلى المبيعات"},
			Formula: "Market Capitalization / Revenue",
			Compute: func(in Input) domain.Value {
				if marketCap(in.Cur()) <= 0 {
					return domain.NotApplicable()
				}
				return ratio(marketCap(in.Cur()), inc(in).Revenue)
			}},
		{ID: "ev_to_ebitda", Subcategory: SubMarket, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 9,
			Name:    Label{"EV to EBITDA", "قيمة المنشأة إلى الأرباح قبل الفوائد والضرائب والإهلاك"},
			Formula: "(Market Cap + Debt − Cash) / EBITDA",
			Compute: func(in Input) domain.Value {
				if marketCap(in.Cur()) <= 0 || inc(in).EBITDA() <= 0 {
					return domain.NotApplicable()
				}
				return ratio(enterpriseValue(in.Cur()), inc(in).EBITDA())
			}},
		{ID: "ev_to_sales", Subcategory: SubMarket, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 1.8,
			Name:    Label{"EV to Sales", "قيمة المنشأة إلى المبيعات"},
			Formula: "(Market Cap + Debt − Cash) / Revenue",
			Compute: func(in Input) domain.Value {
				if marketCap(in.Cur()) <= 0 {
					return domain.NotApplicable()
				}
				return ratio(enterpriseValue(in.Cur()), inc(in).Revenue)
			}},
		{ID: "dividend_yield", Subcategory: SubMarket, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 3,
			Name:    Label{"Dividend Yield", "عائد التوزيعات"},
			Formula: "Dividends per Share / Share Price × 100",
			Compute: func(in Input) domain.Value { return percent(inc(in).DividendsPerShare, inc(in).SharePrice) }},
		{ID: "dividend_payout_ratio", Subcategory: SubMarket, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 40,
			Name:    Label{"Dividend Payout Ratio", "نسبة توزيع الأرباح"},
			Formula: "Dividends per Share / Earnings per Share × 100",
			Compute: func(in Input) domain.Value {
				eps := earningsPerShare(in.Cur())
				if eps <= 0 {
					return domain.NotApplicable()
				}
				return percent(inc(in).DividendsPerShare, eps)
			}},
		{ID: "earnings_yield", Subcategory: SubMarket, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 7,
			Name:    Label{"Earnings Yield", "عائد الأرباح"},
			Formula: "Earnings per Share / Share Price × 100",
			Compute: func(in Input) domain.Value { return percent(earningsPerShare(in.Cur()), inc(in).SharePrice) }},
		{ID: "price_earnings_to_growth", Subcategory: SubMarket, Unit: UnitTimes, Polarity: LowerIsBetter, Baseline: 1.0, MinHistory: 2,
			Name:    Label{"PEG Ratio", "مكرر الربحية إلى النمو"},
			Formula: "P/E / EPS Growth (%)",
			Compute: func(in Input) domain.Value {
				eps, prev := earningsPerShare(in.Cur()), earningsPerShare(in.Prev())
				if eps <= 0 || prev <= 0 || inc(in).SharePrice <= 0 {
					return domain.NotApplicable()
				}
				g := (eps - prev) / prev * 100
				if g <= 0 {
					return domain.NotApplicable()
				}
				return num(inc(in).SharePrice / eps / g)
			}},
	})
}

// =============================================================================
// TIER 1: CASH FLOW ANALYSIS
// =============================================================================

func cashFlowDefinitions() []Definition {
	return inCategory(CategoryCashFlow, []Definition{
		{ID: "operating_cash_flow_margin", Subcategory: SubCashFlow, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 15,
			Name:    Label{"Operating Cash Flow Margin", "هامش التدفق النقدي التشغيلي"},
			Formula: "Net Cash from Operations / Revenue × 100",
			Compute: share(fCFO, fRevenue)},
		{ID: "free_cash_flow_margin", Subcategory: SubCashFlow, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 8,
			Name:    Label{"Free Cash Flow Margin", "هامش التدفق النقدي الحر"},
			Formula: "(CFO − |Capital Expenditures|) / Revenue × 100",
			Compute: share(fFCF, fRevenue)},
		{ID: "cash_flow_to_net_income", Subcategory: SubCashFlow, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 1.1,
			Name:    Label{"Quality of Earnings", "جودة الأرباح"},
			Formula: "Net Cash from Operations / Net Income",
			Compute: func(in Input) domain.Value {
				if inc(in).NetIncome <= 0 {
					return domain.NotApplicable()
				}
				return ratio(cfs(in).NetCashFromOperations, inc(in).NetIncome)
			}},
		{ID: "free_cash_flow_to_net_income", Subcategory: SubCashFlow, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 0.8,
			Name:    Label{"Free Cash Flow Conversion", "تحويل الأرباح إلى تدفق نقدي حر"},
			Formula: "Free Cash Flow / Net Income",
			Compute: func(in Input) domain.Value {
				if inc(in).NetIncome <= 0 {
					return domain.NotApplicable()
				}
				return ratio(cfs(in).FreeCashFlow(), inc(in).NetIncome)
			}},
		{ID: "cash_return_on_assets", Subcategory: SubCashFlow, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 10,
			Name:    Label{"Cash Return on Assets", "العائد النقدي على الأصول"},
			Formula: "Net Cash from Operations / Total Assets × 100",
			Compute: share(fCFO, fTotalAssets)},
		{ID: "cash_return_on_equity", Subcategory: SubCashFlow, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 18,
			Name:    Label{"Cash Return on Equity", "العائد النقدي على حقوق الملكية"},
			Formula: "Net Cash from Operations / Total Equity × 100",
			Compute: func(in Input) domain.Value {
				if bs(in).TotalEquity <= 0 {
					return domain.NotApplicable()
				}
				return percent(cfs(in).NetCashFromOperations, bs(in).TotalEquity)
			}},
		{ID: "cash_flow_coverage", Subcategory: SubCashFlow, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 25,
			Name:    Label{"Cash Flow to Total Liabilities", "التدفق النقدي إلى إجمالي الخصوم"},
			Formula: "Net Cash from Operations / Total Liabilities × 100",
			Compute: share(fCFO, fLiabilities)},
		{ID: "cash_flow_to_debt", Subcategory: SubCashFlow, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 40,
			Name:    Label{"Cash Flow to Debt", "التدفق النقدي إلى الديون"},
			Formula: "Net Cash from Operations / Total Debt × 100",
			Compute: func(in Input) domain.Value { return percent(cfs(in).NetCashFromOperations, bs(in).TotalDebt()) }},
		{ID: "capex_to_operating_cash_flow", Subcategory: SubCashFlow, Unit: UnitPercent, Polarity: LowerIsBetter, Baseline: 50,
			Name:    Label{"Capex to Operating Cash Flow", "الإنفاق الرأسمالي إلى التدفق النقدي التشغيلي"},
			Formula: "|Capital Expenditures| / Net Cash from Operations × 100",
			Compute: func(in Input) domain.Value {
				if cfs(in).NetCashFromOperations <= 0 {
					return domain.NotApplicable()
				}
				return percent(math.Abs(cfs(in).CapitalExpenditures), cfs(in).NetCashFromOperations)
			}},
		{ID: "capex_to_revenue", Subcategory: SubCashFlow, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 6,
			Name:    Label{"Capex to Revenue", "الإنفاق الرأسمالي إلى الإيرادات"},
			Formula: "|Capital Expenditures| / Revenue × 100",
			Compute: func(in Input) domain.Value { return percent(math.Abs(cfs(in).CapitalExpenditures), inc(in).Revenue) }},
		{ID: "capex_to_depreciation", Subcategory: SubCashFlow, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 1.2,
			Name:    Label{"Capex to Depreciation", "الإنفاق الرأسمالي إلى الإهلاك"},
			Formula: "|Capital Expenditures| / Depreciation & Amortization",
			Compute: func(in Input) domain.Value {
				return ratio(math.Abs(cfs(in).CapitalExpenditures), math.Abs(inc(in).DepreciationAmortization))
			}},
		{ID: "dividend_cash_coverage", Subcategory: SubCashFlow, Unit: UnitTimes, Polarity: HigherIsBetter, Baseline: 2.5,
			Name:    Label{"Dividend Cash Coverage", "التغطية النقدية للتوزيعات"},
			Formula: "Free Cash Flow / |Dividends Paid|",
			Compute: func(in Input) domain.Value { return ratio(cfs(in).FreeCashFlow(), math.Abs(cfs(in).DividendsPaid)) }},
		{ID: "net_cash_flow_to_revenue", Subcategory: SubCashFlow, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 3,
			Name:    Label{"Net Cash Flow to Revenue", "صافي التدفق النقدي إلى الإيرادات"},
			Formula: "Net Cash Flow / Revenue × 100",
			Compute: func(in Input) domain.Value { return percent(cfs(in).NetCashFlow, inc(in).Revenue) }},
		{ID: "cash_reinvestment_ratio", Subcategory: SubCashFlow, Unit: UnitPercent, Polarity: HigherIsBetter, Baseline: 8,
			Name:    Label{"Cash Reinvestment Ratio", "نسبة إعادة استثمار النقدية"},
			Formula: "(CFO − |Dividends Paid|) / (PP&E + Working Capital) × 100",
			Compute: func(in Input) domain.Value {
				retained := cfs(in).NetCashFromOperations - math.Abs(cfs(in).DividendsPaid)
				return percent(retained, bs(in).PropertyPlantEquipment+bs(in).WorkingCapital())
			}},
	})
}
