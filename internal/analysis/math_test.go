package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownsideDeviation(t *testing.T) {
	tests := []struct {
		name   string
		xs     []float64
		want   float64
		wantOK bool
	}{
		{"empty", nil, 0, false},
		{"no losses", []float64{0.1, 0.2, 0.3}, 0, true},
		{"all losses", []float64{-0.3, -0.4}, math.Sqrt((0.09 + 0.16) / 2), true},
		{"mixed", []float64{0.5, -0.2, 0.1, -0.4}, math.Sqrt((0.04 + 0.16) / 4), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := downsideDeviation(tt.xs)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestDownsideDeviationLeavesInputAlone(t *testing.T) {
	xs := []float64{0.5, -0.2}
	_, _ = downsideDeviation(xs)
	assert.Equal(t, []float64{0.5, -0.2}, xs)
}

func TestEarningsDownsideDeviation(t *testing.T) {
	in := Input{Statements: sampleStatements(), Assumptions: DefaultAssumptions()}
	d, ok := Default().Get("earnings_downside_deviation")
	if !assert.True(t, ok) {
		return
	}

	dd, _ := downsideDeviation(changes(in.Series(fNetIncome)))
	got, isNum := d.Compute(in).Float()
	assert.True(t, isNum)
	assert.InDelta(t, dd*100, got, 1e-9)
}
