package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apierrors "finanalytics/internal/errors"
	"finanalytics/pkg/contracts/domain"
)

// TracerName names the exporter's tracer
const TracerName = "finanalytics/exporter"

// Exporter renders reports in the supported formats
type Exporter struct {
	logger *slog.Logger
}

// New creates an exporter
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger.With(slog.String("component", "exporter"))}
}

// Export writes report to w. The output is rendered in memory first so a
// failure never leaves a partial document on w.
func (e *Exporter) Export(ctx context.Context, w io.Writer, report *domain.Report, format Format) error {
	ctx, span := otel.Tracer(TracerName).Start(ctx, "exporter.Export")
	defer span.End()
	span.SetAttributes(
		attribute.String("export.format", string(format)),
		attribute.Int("export.analyses", len(report.Analyses)),
	)

	var buf bytes.Buffer
	if err := render(&buf, report, format); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.ErrorContext(ctx, "report export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return err
	}

	n, err := buf.WriteTo(w)
	if err != nil {
		return apierrors.NewExportError("failed to write export", err).WithContext("format", string(format))
	}

	e.logger.DebugContext(ctx, "report exported",
		slog.String("format", string(format)),
		slog.Int64("bytes", n))
	return nil
}

// ExportFile writes report to path, creating parent directories
func (e *Exporter) ExportFile(ctx context.Context, path string, report *domain.Report, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apierrors.NewExportError("failed to create export directory", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return apierrors.NewExportError("failed to create export file", err)
	}
	if err := e.Export(ctx, f, report, format); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return apierrors.NewExportError("failed to close export file", err)
	}

	e.logger.InfoContext(ctx, "report written",
		slog.String("path", path),
		slog.String("format", string(format)))
	return nil
}

func render(w io.Writer, report *domain.Report, format Format) error {
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(report)
	case FormatCSV:
		err = writeAnalysesCSV(w, report)
	case FormatXLSX:
		err = writeXLSX(w, report)
	default:
		return apierrors.UnsupportedFormatError(string(format))
	}
	if err != nil {
		return apierrors.NewExportError(fmt.Sprintf("failed to render %s export", format), err).
			WithContext("format", string(format))
	}
	return nil
}
