package exporter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"finanalytics/pkg/contracts/domain"
)

const (
	sheetSummary  = "Summary"
	sheetAnalyses = "Analyses"
)

// workbook wraps an excelize file with the shared header style
type workbook struct {
	f      *excelize.File
	header int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetAnalyses); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create %s sheet: %w", sheetAnalyses, err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &workbook{f: f, header: header}, nil
}

// row writes values starting at column A of the given 1-based row
func (wb *workbook) row(sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return wb.f.SetSheetRow(sheet, cell, &values)
}

// headerRow writes values and applies the header style
func (wb *workbook) headerRow(sheet string, row int, values ...interface{}) error {
	if err := wb.row(sheet, row, values...); err != nil {
		return err
	}
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	return wb.f.SetCellStyle(sheet, from, to, wb.header)
}

// writeSummary fills the Summary sheet: key/value facts followed by the
// summary lists, each under its own heading
func (wb *workbook) writeSummary(s domain.ExecutiveSummary) error {
	facts := [][2]interface{}{
		{"Company", s.Company.Name},
		{"Sector", s.Company.Sector},
		{"Legal form", s.Company.LegalForm},
		{"Language", string(s.Company.Lang())},
		{"Analysis date", s.AnalysisDate.Format("2006-01-02")},
		{"Period from", s.PeriodFrom},
		{"Period to", s.PeriodTo},
		{"Total analyses", s.TotalAnalyses},
		{"Excellent", s.Ratings.Excellent},
		{"Very good", s.Ratings.VeryGood},
		{"Good", s.Ratings.Good},
		{"Acceptable", s.Ratings.Acceptable},
		{"Poor", s.Ratings.Poor},
		{"Not applicable", s.NotApplicable},
		{"Failed", s.Failed},
		{"Overall score", s.OverallScore},
		{"Overall rating", string(s.OverallRating)},
	}

	row := 1
	if err := wb.headerRow(sheetSummary, row, "Item", "Value"); err != nil {
		return err
	}
	for _, fact := range facts {
		row++
		if err := wb.row(sheetSummary, row, fact[0], fact[1]); err != nil {
			return err
		}
	}

	lists := []struct {
		title string
		items []string
	}{
		{"Strengths", s.Strengths},
		{"Weaknesses", s.Weaknesses},
		{"Opportunities", s.Opportunities},
		{"Threats", s.Threats},
		{"Risks", s.Risks},
		{"Forecasts", s.Forecasts},
		{"Strategic recommendations", s.StrategicRecommendations},
	}
	for _, l := range lists {
		if len(l.items) == 0 {
			continue
		}
		row += 2
		if err := wb.headerRow(sheetSummary, row, l.title); err != nil {
			return err
		}
		for i, item := range l.items {
			row++
			if err := wb.row(sheetSummary, row, strconv.Itoa(i+1), item); err != nil {
				return err
			}
		}
	}

	if err := wb.f.SetColWidth(sheetSummary, "A", "A", 28); err != nil {
		return err
	}
	return wb.f.SetColWidth(sheetSummary, "B", "B", 90)
}

// writeAnalyses fills the Analyses sheet with one row per result. Numeric
// results are stored as numbers so they stay sortable in Excel.
func (wb *workbook) writeAnalyses(results []domain.AnalysisResult) error {
	headers := make([]interface{}, len(analysisHeaders))
	for i, h := range analysisHeaders {
		headers[i] = h
	}
	if err := wb.headerRow(sheetAnalyses, 1, headers...); err != nil {
		return err
	}

	for i, r := range results {
		record := analysisRecord(r)
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = v
		}
		values[2] = r.Tier
		if n, ok := r.Result.Float(); ok {
			values[5] = n
		}
		values[8] = r.IndustryAverage
		if r.DifferencePercent != nil {
			values[9] = *r.DifferencePercent
		}
		values[10] = r.BenchmarkFallback

		if err := wb.row(sheetAnalyses, i+2, values...); err != nil {
			return fmt.Errorf("failed to write analysis %s: %w", r.ID, err)
		}
	}

	if err := wb.f.SetPanes(sheetAnalyses, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return wb.f.AutoFilter(sheetAnalyses, "A1:Q1", nil)
}

// rightToLeft flips both sheets for Arabic reports
func (wb *workbook) rightToLeft() error {
	rtl := true
	for _, sheet := range []string{sheetSummary, sheetAnalyses} {
		if err := wb.f.SetSheetView(sheet, -1, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			return err
		}
	}
	return nil
}

// writeXLSX renders report as a workbook onto w
func writeXLSX(w io.Writer, report *domain.Report) error {
	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	defer wb.f.Close()

	if err := wb.writeSummary(report.ExecutiveSummary); err != nil {
		return fmt.Errorf("failed to write summary sheet: %w", err)
	}
	if err := wb.writeAnalyses(report.Analyses); err != nil {
		return fmt.Errorf("failed to write analyses sheet: %w", err)
	}
	if report.ExecutiveSummary.Company.Lang() == domain.LanguageArabic {
		if err := wb.rightToLeft(); err != nil {
			return fmt.Errorf("failed to set sheet direction: %w", err)
		}
	}
	return wb.f.Write(w)
}
