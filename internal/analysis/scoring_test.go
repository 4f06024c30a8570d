package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"finanalytics/pkg/contracts/domain"
)

func TestPerformanceRatio(t *testing.T) {
	tests := []struct {
		name   string
		v, b   float64
		p      Polarity
		want   float64
		wantOK bool
	}{
		{"higher is better", 3, 2, HigherIsBetter, 1.5, true},
		{"lower is better", 1, 2, LowerIsBetter, 2, true},
		{"lower is better at zero", 0, 2, LowerIsBetter, math.Inf(1), true},
		{"lower is better negative value", -1, 2, LowerIsBetter, math.Inf(1), true},
		{"negative benchmark higher is better", -1, -2, HigherIsBetter, 2, true},
		{"negative benchmark positive value", 1, -2, HigherIsBetter, math.Inf(1), true},
		{"negative benchmark lower is better", -3, -2, LowerIsBetter, 1.5, true},
		{"zero benchmark", 5, 0, HigherIsBetter, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PerformanceRatio(tt.v, tt.b, tt.p)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRatingForRatio(t *testing.T) {
	tests := []struct {
		ratio float64
		want  domain.Rating
	}{
		{math.Inf(1), domain.RatingExcellent},
		{1.2, domain.RatingExcellent},
		{1.19, domain.RatingVeryGood},
		{1.1, domain.RatingVeryGood},
		{1.0, domain.RatingGood},
		{0.9, domain.RatingGood},
		{0.85, domain.RatingAcceptable},
		{0.8, domain.RatingAcceptable},
		{0.79, domain.RatingPoor},
		{-3, domain.RatingPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RatingForRatio(tt.ratio), "ratio %v", tt.ratio)
	}
}

func TestRateIsMonotonic(t *testing.T) {
	benchmarks := []float64{2, 0.5, 50, -0.5, -15}
	for _, b := range benchmarks {
		prevHigher := domain.RatingPoor.Score()
		prevLower := domain.RatingExcellent.Score()
		for v := -100.0; v <= 100.0; v += 0.25 {
			higher := Rate(v, b, HigherIsBetter).Score()
			lower := Rate(v, b, LowerIsBetter).Score()

			assert.GreaterOrEqual(t, higher, prevHigher, "higher-is-better b=%v v=%v", b, v)
			assert.LessOrEqual(t, lower, prevLower, "lower-is-better b=%v v=%v", b, v)
			prevHigher, prevLower = higher, lower
		}
	}
}

func TestRateWithoutBenchmark(t *testing.T) {
	assert.Equal(t, domain.RatingAcceptable, Rate(10, 0, HigherIsBetter))
	assert.Equal(t, domain.RatingAcceptable, Rate(-10, 0, LowerIsBetter))
}

func TestPositionFor(t *testing.T) {
	assert.Equal(t, PositionSuperior, PositionFor(domain.RatingExcellent))
	assert.Equal(t, PositionStrong, PositionFor(domain.RatingVeryGood))
	assert.Equal(t, PositionAverage, PositionFor(domain.RatingGood))
	assert.Equal(t, PositionWeak, PositionFor(domain.RatingAcceptable))
	assert.Equal(t, PositionVeryWeak, PositionFor(domain.RatingPoor))
	assert.Equal(t, PositionNotRated, PositionFor(""))
}

func TestDifferencePercent(t *testing.T) {
	tests := []struct {
		name   string
		v, b   float64
		want   float64
		wantOK bool
	}{
		{"above positive benchmark", 12, 10, 20, true},
		{"below positive benchmark", 8, 10, -20, true},
		{"above negative benchmark", -1, -2, 50, true},
		{"below negative benchmark", -3, -2, -50, true},
		{"zero benchmark", 5, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DifferencePercent(tt.v, tt.b)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name       string
		v, b       float64
		p          Polarity
		wantKey    string
		wantRating domain.Rating
		wantDiff   float64
	}{
		{"above", 895.0 / 325.0, 2, HigherIsBetter, "above", domain.RatingExcellent, 37.69},
		{"similar", 2.05, 2, HigherIsBetter, "similar", domain.RatingGood, 2.5},
		{"below", 1.5, 2, HigherIsBetter, "below", domain.RatingPoor, -25},
		{"lower is better above", 60, 50, LowerIsBetter, "above", domain.RatingAcceptable, 20},
		{"negative benchmark", -1, -2, HigherIsBetter, "above", domain.RatingExcellent, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := compare(tt.v, tt.b, tt.p)
			assert.Equal(t, tt.wantKey, c.key)
			assert.Equal(t, tt.wantRating, c.rating)
			assert.Equal(t, PositionFor(tt.wantRating), c.position)
			if assert.NotNil(t, c.diff) {
				assert.InDelta(t, tt.wantDiff, *c.diff, 0.01)
			}
		})
	}

	c := compare(10, 0, HigherIsBetter)
	assert.Equal(t, "no_benchmark", c.key)
	assert.Nil(t, c.diff)
	assert.Equal(t, domain.RatingAcceptable, c.rating)
	assert.Equal(t, PositionNotRated, c.position)
}
