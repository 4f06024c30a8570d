package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"finanalytics/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes headers and records to w
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// writeAnalysesCSV writes one row per analysis result
func writeAnalysesCSV(w io.Writer, report *domain.Report) error {
	records := make([][]string, len(report.Analyses))
	for i, r := range report.Analyses {
		records[i] = analysisRecord(r)
	}
	return WriteCSV(w, WriteOptions{
		Headers:   analysisHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}
