package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"finanalytics/pkg/contracts/domain"
)

// daysInYear is the day count used for turnover-to-days conversions
const daysInYear = 365.0

// =============================================================================
// GUARDED ARITHMETIC
// Every ratio goes through these so a zero denominator yields NotApplicable
// =============================================================================

// ratio returns num/den or NotApplicable when den is zero
func ratio(num, den float64) domain.Value {
	if den == 0 {
		return domain.NotApplicable()
	}
	return domain.Number(num / den)
}

// percent returns num/den*100 or NotApplicable when den is zero
func percent(num, den float64) domain.Value {
	if den == 0 {
		return domain.NotApplicable()
	}
	return domain.Number(num / den * 100)
}

// days converts a balance/flow pair into days (balance / flow * 365)
func days(balance, flow float64) domain.Value {
	if flow == 0 {
		return domain.NotApplicable()
	}
	return domain.Number(balance / flow * daysInYear)
}

// growth returns the percentage change from prior to current, measured against |prior|
func growth(current, prior float64) domain.Value {
	if prior == 0 {
		return domain.NotApplicable()
	}
	return domain.Number((current - prior) / math.Abs(prior) * 100)
}

// div is the float form of ratio; ok is false when den is zero
func div(num, den float64) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// cagr returns the compound annual growth rate in percent between the first and last value
func cagr(first, last float64, periods int) domain.Value {
	if first <= 0 || last <= 0 || periods <= 0 {
		return domain.NotApplicable()
	}
	return domain.Number((math.Pow(last/first, 1/float64(periods)) - 1) * 100)
}

// num wraps a plain float
func num(v float64) domain.Value {
	return domain.Number(v)
}

// chain applies fn only when v is numeric
func chain(v domain.Value, fn func(float64) domain.Value) domain.Value {
	f, ok := v.Float()
	if !ok {
		return domain.NotApplicable()
	}
	return fn(f)
}

// =============================================================================
// STATISTICS
// Thin wrappers over gonum/stat and gonum/floats with length guards
// =============================================================================

func mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	return stat.Mean(xs, nil), true
}

func stdDev(xs []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	return stat.StdDev(xs, nil), true
}

// downsideDeviation returns √(Σ min(0, x)² / n)
func downsideDeviation(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	losses := make([]float64, len(xs))
	for i, x := range xs {
		losses[i] = math.Min(x, 0)
	}
	return math.Sqrt(floats.Dot(losses, losses) / float64(len(xs))), true
}

func correlation(xs, ys []float64) (float64, bool) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0, false
	}
	sx, _ := stdDev(xs)
	sy, _ := stdDev(ys)
	if sx == 0 || sy == 0 {
		return 0, false
	}
	return stat.Correlation(xs, ys, nil), true
}

// linearFit regresses ys on 0..n-1 and returns intercept, slope and R²
func linearFit(ys []float64) (alpha, beta, r2 float64, ok bool) {
	if len(ys) < 2 {
		return 0, 0, 0, false
	}
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta = stat.LinearRegression(xs, ys, nil, false)
	if sd, _ := stdDev(ys); sd == 0 {
		return alpha, beta, 1, true
	}
	r2 = stat.RSquared(xs, ys, nil, alpha, beta)
	return alpha, beta, r2, true
}

// regress fits ys = alpha + beta*xs
func regress(xs, ys []float64) (alpha, beta float64, ok bool) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0, 0, false
	}
	if sd, _ := stdDev(xs); sd == 0 {
		return 0, 0, false
	}
	alpha, beta = stat.LinearRegression(xs, ys, nil, false)
	return alpha, beta, true
}

// changes returns period-over-period percentage changes, skipping zero bases
func changes(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for i := 1; i < len(xs); i++ {
		if xs[i-1] == 0 {
			continue
		}
		out = append(out, (xs[i]-xs[i-1])/math.Abs(xs[i-1]))
	}
	return out
}

// autocorrelation returns the lag-1 autocorrelation of xs
func autocorrelation(xs []float64) (float64, bool) {
	if len(xs) < 3 {
		return 0, false
	}
	return correlation(xs[:len(xs)-1], xs[1:])
}

// quantile returns the empirical p-quantile of xs without mutating it
func quantile(xs []float64, p float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil), true
}

// clamp bounds v to [lo, hi]
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
