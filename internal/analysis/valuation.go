package analysis

import (
	"math"
)

// Valuation models used by the valuation and M&A tables.
// All rates are decimals (0.12 = 12%).

// growthEstimate returns the revenue growth rate used for projections:
// the historical CAGR when at least two periods exist, else the terminal rate,
// bounded to [-5%, 15%]
func growthEstimate(in Input) float64 {
	g := in.Assumptions.TerminalGrowth
	if in.Len() >= 2 {
		first, last := in.First().IncomeStatement.Revenue, inc(in).Revenue
		if first > 0 && last > 0 {
			g = math.Pow(last/first, 1/float64(in.Len()-1)) - 1
		}
	}
	return clamp(g, -0.05, 0.15)
}

// discountRate returns WACC unless it does not exceed terminal growth
func discountRate(in Input) float64 {
	r := in.WACC()
	if r <= in.Assumptions.TerminalGrowth+0.01 {
		r = in.Assumptions.DiscountRate
	}
	return r
}

func horizon(in Input) int {
	if in.Assumptions.ForecastHorizon < 1 {
		return 5
	}
	return in.Assumptions.ForecastHorizon
}

// dcfResult holds the output of a two-stage discounted free cash flow model
type dcfResult struct {
	EnterpriseValue float64
	EquityValue     float64
	PVStream        float64
	PVTerminal      float64
}

// discountedCashFlow projects current free cash flow at the growth estimate over the
// horizon, adds a Gordon terminal value and bridges to equity through net debt
func discountedCashFlow(in Input) (dcfResult, bool) {
	fcf := cfs(in).FreeCashFlow()
	if fcf <= 0 {
		return dcfResult{}, false
	}
	g, r, tg := growthEstimate(in), discountRate(in), in.Assumptions.TerminalGrowth
	n := horizon(in)

	var res dcfResult
	flow := fcf
	for t := 1; t <= n; t++ {
		flow *= 1 + g
		res.PVStream += flow / math.Pow(1+r, float64(t))
	}
	terminal := flow * (1 + tg) / (r - tg)
	res.PVTerminal = terminal / math.Pow(1+r, float64(n))
	res.EnterpriseValue = res.PVStream + res.PVTerminal

	b := bs(in)
	res.EquityValue = res.EnterpriseValue - (b.TotalDebt() - b.Cash - b.ShortTermInvestments)
	return res, true
}

// gordonValue is the dividend discount value per share
func gordonValue(in Input) (float64, bool) {
	dps := inc(in).DividendsPerShare
	ke, g := in.CostOfEquity(), in.Assumptions.TerminalGrowth
	if dps <= 0 || ke <= g {
		return 0, false
	}
	return dps * (1 + g) / (ke - g), true
}

// residualIncomeValue is book equity plus the present value of abnormal earnings
// held flat over the horizon and faded to a perpetuity
func residualIncomeValue(in Input) (float64, bool) {
	book := bs(in).TotalEquity
	ke, g := in.CostOfEquity(), in.Assumptions.TerminalGrowth
	if book <= 0 || ke <= g {
		return 0, false
	}
	ri := inc(in).NetIncome - ke*book
	n := horizon(in)
	var pv float64
	for t := 1; t <= n; t++ {
		pv += ri / math.Pow(1+ke, float64(t))
	}
	terminal := ri * (1 + g) / (ke - g) / math.Pow(1+ke, float64(n))
	return book + pv + terminal, true
}

// grahamNumber is sqrt(22.5 × EPS × BVPS)
func grahamNumber(in Input) (float64, bool) {
	eps := earningsPerShare(in.Cur())
	bvps, ok := bookValuePerShare(in.Cur())
	if !ok || eps <= 0 || bvps <= 0 {
		return 0, false
	}
	return math.Sqrt(22.5 * eps * bvps), true
}

// lboResult is a simplified leveraged buyout: entry at the current EV/EBITDA (or the
// target leverage plus a 40% equity cheque when no price exists), free cash flow sweeps
// debt, exit at the entry multiple
type lboResult struct {
	EntryEV    float64
	Debt       float64
	Equity     float64
	ExitEquity float64
	MOIC       float64
	IRR        float64
}

func leveragedBuyout(in Input) (lboResult, bool) {
	ebitda := inc(in).EBITDA()
	if ebitda <= 0 {
		return lboResult{}, false
	}
	a := in.Assumptions
	debt := ebitda * a.TargetDebtToEBITDA
	entry := enterpriseValue(in.Cur())
	if marketCap(in.Cur()) <= 0 || entry <= debt {
		entry = debt / 0.6
	}
	multiple := entry / ebitda
	equity := entry - debt

	g := growthEstimate(in)
	n := horizon(in)
	kd := math.Max(a.RiskFreeRate+0.03, 0)
	capexShare, _ := div(math.Abs(cfs(in).CapitalExpenditures), ebitda)

	remaining := debt
	e := ebitda
	for t := 0; t < n; t++ {
		e *= 1 + g
		interest := remaining * kd
		taxes := math.Max((e-interest)*in.TaxRate(), 0)
		free := e - interest - taxes - e*capexShare
		remaining = math.Max(remaining-free, 0)
	}
	exitEquity := e*multiple - remaining
	res := lboResult{EntryEV: entry, Debt: debt, Equity: equity, ExitEquity: exitEquity}
	if equity <= 0 || exitEquity <= 0 {
		return res, false
	}
	res.MOIC = exitEquity / equity
	res.IRR = math.Pow(res.MOIC, 1/float64(n)) - 1
	return res, true
}
