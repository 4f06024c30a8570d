package exporter

import (
	"strconv"
	"strings"

	apierrors "finanalytics/internal/errors"
	"finanalytics/pkg/contracts/domain"
)

// Format is an export file format
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported formats
var Formats = []Format{FormatJSON, FormatCSV, FormatXLSX}

// ParseFormat resolves a format name, case-insensitively. An empty name
// selects JSON.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return FormatJSON, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", apierrors.UnsupportedFormatError(s)
}

// ContentType is the media type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Extension is the file extension without the dot
func (f Format) Extension() string {
	return string(f)
}

// formatFloat formats a float64 with the shortest exact representation
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatValue renders a result value; numbers keep four decimals
func formatValue(v domain.Value) string {
	if n, ok := v.Float(); ok {
		return strconv.FormatFloat(n, 'f', 4, 64)
	}
	return v.String()
}

// formatPercent renders an optional difference, empty when absent
func formatPercent(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// analysisHeaders are the columns of the per-result table shared by the
// CSV file and the Analyses sheet
var analysisHeaders = []string{
	"id", "name", "tier", "category", "subcategory",
	"result", "unit", "status", "industry_average", "difference_percent",
	"benchmark_fallback", "comparison_with_industry", "competitive_position",
	"rating", "interpretation", "recommendation", "error",
}

// analysisRecord flattens one result into the analysisHeaders columns
func analysisRecord(r domain.AnalysisResult) []string {
	return []string{
		r.ID,
		r.Name,
		strconv.Itoa(r.Tier),
		r.Category,
		r.Subcategory,
		formatValue(r.Result),
		r.Unit,
		string(r.Status),
		formatFloat(r.IndustryAverage),
		formatPercent(r.DifferencePercent),
		formatBool(r.BenchmarkFallback),
		r.ComparisonWithIndustry,
		r.CompetitivePosition,
		string(r.Rating),
		r.Interpretation,
		r.Recommendation,
		r.Error,
	}
}
