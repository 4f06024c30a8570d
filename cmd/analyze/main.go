// Command analyze runs the analysis catalogue over a statements file and
// writes the report as JSON, CSV or an Excel workbook.
//
//	analyze -in statements.json -format xlsx
//	analyze -in - -out - -categories liquidity,leverage < statements.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"finanalytics/internal/analysis"
	"finanalytics/internal/app"
	"finanalytics/internal/config"
	apierrors "finanalytics/internal/errors"
	"finanalytics/internal/exporter"
	"finanalytics/internal/infrastructure"
	"finanalytics/internal/middleware"
	"finanalytics/internal/services"
	"finanalytics/pkg/contracts"
	api "finanalytics/pkg/contracts/api/v1"
)

// options holds the parsed command line
type options struct {
	In         string
	Out        string
	Format     string
	IDs        []string
	Categories []string
	Language   string
	Version    bool
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute runs the command and returns the process exit code
func execute(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.Version {
		fmt.Fprintln(os.Stdout, contracts.GetFullVersionString())
		return 0
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", slog.String("error", err.Error()))
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		return 1
	}
	// stdout may carry the report itself
	if strings.EqualFold(cfg.Logging.Output, "console") {
		cfg.Logging.Output = "stderr"
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureTraceID(ctx)

	if err := run(ctx, cfg, logger, opts, os.Stdin, os.Stdout); err != nil {
		logger.Error("Analysis failed", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

// parseFlags parses args into options
func parseFlags(args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(output)

	var opts options
	var ids, categories string
	fs.StringVar(&opts.In, "in", "-", "statements JSON file ({company, statements, selection, assumptions}); - reads stdin")
	fs.StringVar(&opts.Out, "out", "", "output file; - writes stdout; empty writes into the exports directory")
	fs.StringVar(&opts.Format, "format", "", "json, csv or xlsx (defaults to the output file extension, then json)")
	fs.StringVar(&ids, "ids", "", "comma separated analysis ids to run")
	fs.StringVar(&categories, "categories", "", "comma separated categories or subcategories to run")
	fs.StringVar(&opts.Language, "lang", "", "report language (en or ar); overrides the company setting")
	fs.BoolVar(&opts.Version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(output, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return options{}, fmt.Errorf("unexpected arguments")
	}
	opts.IDs = splitList(ids)
	opts.Categories = splitList(categories)
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// run executes one analysis and writes the report
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts options, stdin io.Reader, stdout io.Writer) error {
	format, err := resolveFormat(opts)
	if err != nil {
		return err
	}

	req, err := readRequest(opts.In, stdin)
	if err != nil {
		return err
	}
	applyFlags(&req, opts)

	registry := analysis.Default()
	provider, pool, err := app.NewBenchmarkProvider(ctx, cfg.Benchmarks, registry, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	engine := app.NewEngine(cfg, registry, provider, logger, nil)
	service := services.NewAnalysisService(engine, services.NewReportStore(1), app.ServiceConfig(cfg, registry), logger)

	result, err := service.Analyze(ctx, services.NewRunRequest(req, app.Assumptions(cfg.Valuation)))
	if err != nil {
		return err
	}
	report := result.Report
	for _, w := range report.Warnings {
		logger.WarnContext(ctx, "Statement check", slog.String("warning", w))
	}

	exp := exporter.New(logger)
	out := opts.Out
	switch out {
	case "-":
		if err := exp.Export(ctx, stdout, report, format); err != nil {
			return err
		}
	case "":
		paths := cfg.ResolvedPaths()
		if err := paths.EnsureDirectories(); err != nil {
			return err
		}
		out = paths.GetExportPath(config.ExportFileName(req.Company.Name, result.CreatedAt, format.Extension()))
		fallthrough
	default:
		if err := exp.ExportFile(ctx, out, report, format); err != nil {
			return err
		}
	}

	summary := report.ExecutiveSummary
	logger.InfoContext(ctx, "Analysis complete",
		slog.String("company", summary.Company.Name),
		slog.Int("analyses", summary.TotalAnalyses),
		slog.Int("not_applicable", summary.NotApplicable),
		slog.Int("failed", summary.Failed),
		slog.Float64("overall_score", summary.OverallScore),
		slog.String("overall_rating", string(summary.OverallRating)),
		slog.String("output", out),
		slog.String("format", string(format)))
	return nil
}

// resolveFormat picks the export format from -format or the output extension
func resolveFormat(opts options) (exporter.Format, error) {
	name := opts.Format
	if name == "" && opts.Out != "" && opts.Out != "-" {
		name = strings.TrimPrefix(filepath.Ext(opts.Out), ".")
	}
	return exporter.ParseFormat(name)
}

// readRequest decodes and validates the input document
func readRequest(path string, stdin io.Reader) (api.AnalyzeRequest, error) {
	var r io.Reader = stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return api.AnalyzeRequest{}, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req api.AnalyzeRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return api.AnalyzeRequest{}, apierrors.InvalidRequestWithError(err)
	}
	if err := middleware.NewValidator().Struct(req); err != nil {
		return api.AnalyzeRequest{}, apierrors.FromValidator(err)
	}
	return req, nil
}

// applyFlags lets command line filters replace those in the input document
func applyFlags(req *api.AnalyzeRequest, opts options) {
	if len(opts.IDs) > 0 || len(opts.Categories) > 0 {
		req.Selection = &api.SelectionRequest{IDs: opts.IDs, Categories: opts.Categories}
	}
	if opts.Language != "" {
		req.Company.Language = app.Language(opts.Language)
	}
}
