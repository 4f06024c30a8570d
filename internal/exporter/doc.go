// Package exporter renders analysis reports into downloadable formats.
//
// Three formats are supported:
//
// JSON: the report as served by the API, indented.
//
// CSV: one row per analysis result with a UTF-8 BOM so Excel opens Arabic
// text correctly.
//
// XLSX: a workbook with a Summary sheet (executive summary and its lists)
// and an Analyses sheet (one row per result). Arabic reports are laid out
// right to left.
//
// Example usage:
//
//	exp := exporter.New(logger)
//	format, err := exporter.ParseFormat("xlsx")
//	if err != nil {
//		return err
//	}
//	err = exp.Export(ctx, w, report, format)
package exporter
