package analysis

import (
	"math"

	"finanalytics/pkg/contracts/domain"
)

// field extracts one number from a statement
type field func(s domain.FinancialStatement) float64

// Len returns the number of periods available
func (in Input) Len() int {
	return len(in.Statements)
}

// Cur returns the most recent period
func (in Input) Cur() domain.FinancialStatement {
	if len(in.Statements) == 0 {
		return domain.FinancialStatement{}
	}
	return in.Statements[len(in.Statements)-1]
}

// Prev returns the period before the most recent one, or a zero statement
func (in Input) Prev() domain.FinancialStatement {
	if len(in.Statements) < 2 {
		return domain.FinancialStatement{}
	}
	return in.Statements[len(in.Statements)-2]
}

// First returns the oldest period
func (in Input) First() domain.FinancialStatement {
	if len(in.Statements) == 0 {
		return domain.FinancialStatement{}
	}
	return in.Statements[0]
}

// Series returns f evaluated on every period, oldest first
func (in Input) Series(f field) []float64 {
	out := make([]float64, len(in.Statements))
	for i, s := range in.Statements {
		out[i] = f(s)
	}
	return out
}

// Avg returns the average of f over the current and previous period,
// or the current value when only one period exists
func (in Input) Avg(f field) float64 {
	if len(in.Statements) < 2 {
		return f(in.Cur())
	}
	return (f(in.Cur()) + f(in.Prev())) / 2
}

// TaxRate returns the effective tax rate of the current period, clamped to [0, 0.6],
// or the configured fallback when pre-tax income is not positive
func (in Input) TaxRate() float64 {
	is := in.Cur().IncomeStatement
	if is.IncomeBeforeTax <= 0 {
		return in.Assumptions.FallbackTaxRate
	}
	return clamp(is.IncomeTaxExpense/is.IncomeBeforeTax, 0, 0.6)
}

// CostOfEquity returns the CAPM cost of equity
func (in Input) CostOfEquity() float64 {
	a := in.Assumptions
	return a.RiskFreeRate + a.Beta*a.EquityRiskPremium
}

// WACC returns a book-value weighted average cost of capital
func (in Input) WACC() float64 {
	c := in.Cur()
	debt := c.BalanceSheet.TotalDebt()
	equity := math.Max(c.BalanceSheet.TotalEquity, 0)
	total := debt + equity
	if total == 0 {
		return in.Assumptions.DiscountRate
	}
	costOfDebt := in.Assumptions.RiskFreeRate
	if kd, ok := div(c.IncomeStatement.InterestExpense, debt); ok && kd > 0 {
		costOfDebt = kd
	}
	return equity/total*in.CostOfEquity() + debt/total*costOfDebt*(1-in.TaxRate())
}

// NOPAT returns operating income after tax for the current period
func (in Input) NOPAT() float64 {
	return in.Cur().IncomeStatement.OperatingIncome * (1 - in.TaxRate())
}

// investedCapital returns equity plus debt less cash for s
func investedCapital(s domain.FinancialStatement) float64 {
	b := s.BalanceSheet
	return b.TotalEquity + b.TotalDebt() - b.Cash
}

// Common fields used across the catalogue
var (
	fRevenue         field = func(s domain.FinancialStatement) float64 { return s.IncomeStatement.Revenue }
	fGrossProfit     field = func(s domain.FinancialStatement) float64 { return s.IncomeStatement.GrossProfit }
	fOperatingIncome field = func(s domain.FinancialStatement) float64 { return s.IncomeStatement.OperatingIncome }
	fOperatingExp    field = func(s domain.FinancialStatement) float64 { return s.IncomeStatement.TotalOperatingExpenses }
	fNetIncome       field = func(s domain.FinancialStatement) float64 { return s.IncomeStatement.NetIncome }
	fEBITDA          field = func(s domain.FinancialStatement) float64 { return s.IncomeStatement.EBITDA() }
	fEPS             field = func(s domain.FinancialStatement) float64 { return earningsPerShare(s) }
	fTotalAssets     field = func(s domain.FinancialStatement) float64 { return s.BalanceSheet.TotalAssets }
	fCurrentAssets   field = func(s domain.FinancialStatement) float64 { return s.BalanceSheet.TotalCurrentAssets }
	fFixedAssets     field = func(s domain.FinancialStatement) float64 { return s.BalanceSheet.PropertyPlantEquipment }
	fReceivables     field = func(s domain.FinancialStatement) float64 { return s.BalanceSheet.AccountsReceivable }
	fInventory       field = func(s domain.FinancialStatement) float64 { return s.BalanceSheet.Inventory }
	fPayables        field = func(s domain.FinancialStatement) float64 { return s.BalanceSheet.AccountsPayable }
	fLiabilities     field = func(s domain.FinancialStatement) float64 { return s.BalanceSheet.TotalLiabilities }
	fEquity          field = func(s domain.FinancialStatement) float64 { return s.BalanceSheet.TotalEquity }
	fWorkingCapital  field = func(s domain.FinancialStatement) float64 { return s.BalanceSheet.WorkingCapital() }
	fCFO             field = func(s domain.FinancialStatement) float64 { return s.CashFlowStatement.NetCashFromOperations }
	fFCF             field = func(s domain.FinancialStatement) float64 { return s.CashFlowStatement.FreeCashFlow() }
	fNetMargin       field = func(s domain.FinancialStatement) float64 {
		v, _ := div(s.IncomeStatement.NetIncome, s.IncomeStatement.Revenue)
		return v
	}
	fROE field = func(s domain.FinancialStatement) float64 {
		v, _ := div(s.IncomeStatement.NetIncome, s.BalanceSheet.TotalEquity)
		return v
	}
	fROA field = func(s domain.FinancialStatement) float64 {
		v, _ := div(s.IncomeStatement.NetIncome, s.BalanceSheet.TotalAssets)
		return v
	}
)

// earningsPerShare prefers the reported figure and derives it when absent
func earningsPerShare(s domain.FinancialStatement) float64 {
	is := s.IncomeStatement
	if is.EarningsPerShare != 0 {
		return is.EarningsPerShare
	}
	v, _ := div(is.NetIncome, is.SharesOutstanding)
	return v
}

// bookValuePerShare returns equity per share
func bookValuePerShare(s domain.FinancialStatement) (float64, bool) {
	return div(s.BalanceSheet.TotalEquity, s.IncomeStatement.SharesOutstanding)
}

// marketCap returns share price times shares outstanding
func marketCap(s domain.FinancialStatement) float64 {
	return s.IncomeStatement.SharePrice * s.IncomeStatement.SharesOutstanding
}

// enterpriseValue returns market cap plus debt less cash
func enterpriseValue(s domain.FinancialStatement) float64 {
	return marketCap(s) + s.BalanceSheet.TotalDebt() - s.BalanceSheet.Cash - s.BalanceSheet.ShortTermInvestments
}

// costOfSales returns COGS, falling back to revenue less gross profit
func costOfSales(s domain.FinancialStatement) float64 {
	is := s.IncomeStatement
	if is.CostOfGoodsSold != 0 {
		return math.Abs(is.CostOfGoodsSold)
	}
	return math.Max(is.Revenue-is.GrossProfit, 0)
}

func bs(in Input) domain.BalanceSheet { return in.Cur().BalanceSheet }
func inc(in Input) domain.IncomeStatement { return in.Cur().IncomeStatement }
func cfs(in Input) domain.CashFlowStatement { return in.Cur().CashFlowStatement }
func pbs(in Input) domain.BalanceSheet { return in.Prev().BalanceSheet }
func pinc(in Input) domain.IncomeStatement { return in.Prev().IncomeStatement }
func pcfs(in Input) domain.CashFlowStatement { return in.Prev().CashFlowStatement }

// share returns f as a percentage of base for the current period
func share(f, base field) ComputeFunc {
	return func(in Input) domain.Value { return percent(f(in.Cur()), base(in.Cur())) }
}

// growthOf returns the period-over-period growth of f in percent
func growthOf(f field) ComputeFunc {
	return func(in Input) domain.Value { return growth(f(in.Cur()), f(in.Prev())) }
}

// trendIndexOf returns the current value of f indexed to the first period (first = 100)
func trendIndexOf(f field) ComputeFunc {
	return func(in Input) domain.Value { return percent(f(in.Cur()), f(in.First())) }
}

// cagrOf returns the compound annual growth of f across the whole history
func cagrOf(f field) ComputeFunc {
	return func(in Input) domain.Value { return cagr(f(in.First()), f(in.Cur()), in.Len()-1) }
}

// pointsChange returns the change of a percentage-valued f in percentage points
func pointsChange(f field) ComputeFunc {
	return func(in Input) domain.Value { return num((f(in.Cur()) - f(in.Prev())) * 100) }
}
