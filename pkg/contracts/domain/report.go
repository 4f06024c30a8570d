package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// NotApplicableText is how the not-applicable sentinel is rendered. The
// string is reserved: no text value carries it.
const NotApplicableText = "N/A"

// Value is the raw output of an analysis: a number, a formatted text, or not applicable
type Value struct {
	number float64
	text   string
	kind   valueKind
}

type valueKind uint8

const (
	kindNotApplicable valueKind = iota
	kindNumber
	kindText
)

// Number wraps a numeric result. NaN and infinities collapse into NotApplicable.
func Number(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotApplicable()
	}
	return Value{number: v, kind: kindNumber}
}

// Text wraps a descriptive result. Text(NotApplicableText) is the
// not-applicable sentinel, so every value survives a JSON round trip.
func Text(s string) Value {
	if s == NotApplicableText {
		return NotApplicable()
	}
	return Value{text: s, kind: kindText}
}

// NotApplicable is the sentinel returned when a ratio is undefined
func NotApplicable() Value {
	return Value{kind: kindNotApplicable}
}

// IsNumber reports whether the value carries a usable number
func (v Value) IsNumber() bool { return v.kind == kindNumber }

// IsText reports whether the value is a descriptive string
func (v Value) IsText() bool { return v.kind == kindText }

// IsNotApplicable reports whether the value is the not-applicable sentinel
func (v Value) IsNotApplicable() bool { return v.kind == kindNotApplicable }

// Float returns the numeric value and whether it is present
func (v Value) Float() (float64, bool) {
	return v.number, v.kind == kindNumber
}

// String renders the value for text output
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.number, 'f', 4, 64)
	case kindText:
		return v.text
	default:
		return NotApplicableText
	}
}

// MarshalJSON encodes a number, a string, or "N/A"
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		return json.Marshal(v.number)
	case kindText:
		return json.Marshal(v.text)
	default:
		return json.Marshal(NotApplicableText)
	}
}

// UnmarshalJSON accepts the encodings produced by MarshalJSON
func (v *Value) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Number(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("value must be a number or string: %w", err)
	}
	if s == NotApplicableText {
		*v = NotApplicable()
		return nil
	}
	*v = Text(s)
	return nil
}

// Rating is one of the five rating buckets
type Rating string

const (
	RatingExcellent  Rating = "excellent"
	RatingVeryGood   Rating = "very_good"
	RatingGood       Rating = "good"
	RatingAcceptable Rating = "acceptable"
	RatingPoor       Rating = "poor"
)

// Ratings lists the buckets from best to worst
var Ratings = []Rating{RatingExcellent, RatingVeryGood, RatingGood, RatingAcceptable, RatingPoor}

// Score maps a rating onto 5 (excellent) .. 1 (poor)
func (r Rating) Score() int {
	switch r {
	case RatingExcellent:
		return 5
	case RatingVeryGood:
		return 4
	case RatingGood:
		return 3
	case RatingAcceptable:
		return 2
	case RatingPoor:
		return 1
	default:
		return 0
	}
}

// ResultStatus tells whether an analysis produced a usable value
type ResultStatus string

const (
	StatusOK            ResultStatus = "ok"
	StatusNotApplicable ResultStatus = "not_applicable"
	StatusFailed        ResultStatus = "failed"
)

// SWOT is a strengths/weaknesses/opportunities/threats fragment
type SWOT struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// StrategicRecommendations groups recommendations by decision area
type StrategicRecommendations struct {
	CorporatePerformance []string `json:"corporatePerformance"`
	FinancingDecisions   []string `json:"financingDecisions"`
	InvestmentDecisions  []string `json:"investmentDecisions"`
	Valuation            []string `json:"valuation"`
	General              []string `json:"general"`
}

// ChartPoint is one labelled point of a chart series
type ChartPoint struct {
	Label string `json:"label"`
	Value Value  `json:"value"`
}

// ChartSeries is a chart-ready series
type ChartSeries struct {
	Name   string       `json:"name"`
	Kind   string       `json:"kind"` // line, bar
	Points []ChartPoint `json:"points"`
}

// AnalysisResult is the uniform record produced for one analysis definition
type AnalysisResult struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Tier        int    `json:"tier"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`

	Definition string `json:"definition"`
	Meaning    string `json:"meaning"`
	Benefit    string `json:"benefit"`
	Method     string `json:"method"`

	Result                 Value        `json:"result"`
	Unit                   string       `json:"unit"`
	Status                 ResultStatus `json:"status"`
	Error                  string       `json:"error,omitempty"`
	IndustryAverage        float64      `json:"industryAverage"`
	BenchmarkFallback      bool         `json:"benchmarkFallback,omitempty"`
	DifferencePercent      *float64     `json:"differencePercent,omitempty"`
	ComparisonWithIndustry string       `json:"comparisonWithIndustry"`
	CompetitivePosition    string       `json:"competitivePosition"`
	Rating                 Rating       `json:"rating"`

	Interpretation           string                   `json:"interpretation"`
	Recommendation           string                   `json:"recommendation"`
	Charts                   []ChartSeries            `json:"charts"`
	Risks                    []string                 `json:"risks"`
	Forecasts                []string                 `json:"forecasts"`
	SWOTAnalysis             SWOT                     `json:"swotAnalysis"`
	StrategicRecommendations StrategicRecommendations `json:"strategicRecommendations"`
}

// RatingCounts tallies results per rating bucket
type RatingCounts struct {
	Excellent  int `json:"excellent"`
	VeryGood   int `json:"very_good"`
	Good       int `json:"good"`
	Acceptable int `json:"acceptable"`
	Poor       int `json:"poor"`
}

// Add increments the bucket for r
func (c *RatingCounts) Add(r Rating) {
	switch r {
	case RatingExcellent:
		c.Excellent++
	case RatingVeryGood:
		c.VeryGood++
	case RatingGood:
		c.Good++
	case RatingAcceptable:
		c.Acceptable++
	case RatingPoor:
		c.Poor++
	}
}

// Total returns the number of tallied results
func (c RatingCounts) Total() int {
	return c.Excellent + c.VeryGood + c.Good + c.Acceptable + c.Poor
}

// ExecutiveSummary rolls all results of a run into one record
type ExecutiveSummary struct {
	Company       CompanyInfo  `json:"company"`
	AnalysisDate  time.Time    `json:"analysisDate"`
	PeriodFrom    string       `json:"periodFrom"`
	PeriodTo      string       `json:"periodTo"`
	TotalAnalyses int          `json:"totalAnalyses"`
	Ratings       RatingCounts `json:"ratings"`
	NotApplicable int          `json:"notApplicable"`
	Failed        int          `json:"failed"`
	OverallScore  float64      `json:"overallScore"`
	OverallRating Rating       `json:"overallRating"`

	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
	Risks         []string `json:"risks"`
	Forecasts     []string `json:"forecasts"`

	StrategicRecommendations []string `json:"strategicRecommendations"`
}

// Report is the complete output of one engine run
type Report struct {
	ExecutiveSummary ExecutiveSummary `json:"executiveSummary"`
	Analyses         []AnalysisResult `json:"analyses"`
	Warnings         []string         `json:"warnings,omitempty"`
}

// Find returns the result with the given id
func (r *Report) Find(id string) (AnalysisResult, bool) {
	for _, a := range r.Analyses {
		if a.ID == id {
			return a, true
		}
	}
	return AnalysisResult{}, false
}
