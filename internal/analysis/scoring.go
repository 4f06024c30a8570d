package analysis

import (
	"math"

	"finanalytics/pkg/contracts/domain"
)

// Rating thresholds on the polarity-adjusted performance ratio
const (
	thresholdExcellent  = 1.2
	thresholdVeryGood   = 1.1
	thresholdGood       = 0.9
	thresholdAcceptable = 0.8

	// similarBand is the absolute percentage difference reported as "similar"
	similarBand = 5.0
)

// Position keys, resolved to text through the catalog ("position.<key>")
const (
	PositionSuperior = "superior"
	PositionStrong   = "strong"
	PositionAverage  = "average"
	PositionWeak     = "weak"
	PositionVeryWeak = "very_weak"
	PositionNotRated = "not_rated"
)

// PerformanceRatio expresses v against benchmark b so that values above 1 are
// always favorable. ok is false when b is zero and no ratio exists.
//
// Zero or wrong-signed values that are ideal for the polarity (no debt for a
// lower-is-better leverage ratio, a positive figure against a negative
// benchmark) map to +Inf.
func PerformanceRatio(v, b float64, p Polarity) (float64, bool) {
	switch {
	case b == 0:
		return 0, false
	case b > 0 && p == LowerIsBetter:
		if v <= 0 {
			return math.Inf(1), true
		}
		return b / v, true
	case b > 0:
		return v / b, true
	case p == LowerIsBetter:
		return v / b, true
	default:
		if v >= 0 {
			return math.Inf(1), true
		}
		return b / v, true
	}
}

// RatingForRatio maps a performance ratio onto a rating bucket
func RatingForRatio(r float64) domain.Rating {
	switch {
	case r >= thresholdExcellent:
		return domain.RatingExcellent
	case r >= thresholdVeryGood:
		return domain.RatingVeryGood
	case r >= thresholdGood:
		return domain.RatingGood
	case r >= thresholdAcceptable:
		return domain.RatingAcceptable
	default:
		return domain.RatingPoor
	}
}

// Rate rates v against b. Without a usable benchmark the rating is acceptable.
func Rate(v, b float64, p Polarity) domain.Rating {
	r, ok := PerformanceRatio(v, b, p)
	if !ok {
		return domain.RatingAcceptable
	}
	return RatingForRatio(r)
}

// PositionFor returns the competitive position key of a rating
func PositionFor(r domain.Rating) string {
	switch r {
	case domain.RatingExcellent:
		return PositionSuperior
	case domain.RatingVeryGood:
		return PositionStrong
	case domain.RatingGood:
		return PositionAverage
	case domain.RatingAcceptable:
		return PositionWeak
	case domain.RatingPoor:
		return PositionVeryWeak
	default:
		return PositionNotRated
	}
}

// DifferencePercent returns (v - b) / |b| * 100; ok is false when b is zero
func DifferencePercent(v, b float64) (float64, bool) {
	if b == 0 {
		return 0, false
	}
	return (v - b) / math.Abs(b) * 100, true
}

// comparison is the outcome of benchmarking one numeric value
type comparison struct {
	rating   domain.Rating
	position string
	key      string   // catalog key under "comparison."
	diff     *float64 // nil when no benchmark exists
}

// compare rates a numeric value against its benchmark
func compare(v, b float64, p Polarity) comparison {
	d, ok := DifferencePercent(v, b)
	if !ok {
		return comparison{
			rating:   domain.RatingAcceptable,
			position: PositionNotRated,
			key:      "no_benchmark",
		}
	}

	rating := Rate(v, b, p)
	c := comparison{
		rating:   rating,
		position: PositionFor(rating),
		diff:     &d,
	}
	switch {
	case math.Abs(d) < similarBand:
		c.key = "similar"
	case d > 0:
		c.key = "above"
	default:
		c.key = "below"
	}
	return c
}
