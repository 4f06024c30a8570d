package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"finanalytics/internal/analysis"
	"finanalytics/internal/config"
	apierrors "finanalytics/internal/errors"
	"finanalytics/internal/exporter"
	mw "finanalytics/internal/middleware"
	"finanalytics/internal/services"
	api "finanalytics/pkg/contracts/api/v1"
)

type runCtxKey struct{}

// AnalysisHandler handles the analysis run and catalogue endpoints
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	exporter     *exporter.Exporter
	validation   *mw.ValidationMiddleware
	query        *mw.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	defaults     analysis.Assumptions
	logger       *slog.Logger
}

// NewAnalysisHandler creates the handler. defaults are the valuation
// assumptions request overrides are applied to.
func NewAnalysisHandler(
	service AnalysisServiceInterface,
	exp *exporter.Exporter,
	defaults analysis.Assumptions,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		exporter:     exp,
		validation:   mw.NewValidationMiddleware(logger, errorHandler),
		query:        mw.NewQueryParamValidator(logger, errorHandler),
		errorHandler: errorHandler,
		defaults:     defaults,
		logger:       logger.With(slog.String("component", "analysis_handler")),
	}
}

// Routes returns the analysis routes, mounted at /api/v1/analysis
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(mw.ContentTypeValidator("application/json")).Post("/runs", h.CreateRun)
	r.Get("/runs", h.ListRuns)
	r.Route("/runs/{runID}", func(r chi.Router) {
		r.Use(h.RunCtx) // Load run into context
		r.Get("/", h.GetRun)
		r.Get("/export", h.ExportRun)
	})

	r.Get("/definitions", h.ListDefinitions)
	r.Get("/categories", h.ListCategories)
	return r
}

// RunCtx middleware loads the stored run named in the path
func (h *AnalysisHandler) RunCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		run, err := h.service.Get(r.Context(), chi.URLParam(r, "runID"))
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), runCtxKey{}, run)))
	})
}

func runFromContext(ctx context.Context) *services.Run {
	run, _ := ctx.Value(runCtxKey{}).(*services.Run)
	return run
}

// CreateRun handles POST /api/v1/analysis/runs
func (h *AnalysisHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req api.AnalyzeRequest
	if err := h.validation.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	runReq := services.NewRunRequest(req, h.defaults)

	run, err := h.service.Analyze(r.Context(), runReq)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "analysis run created",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("run_id", run.ID),
		slog.Int("analyses", len(run.Report.Analyses)))

	w.Header().Set("Location", fmt.Sprintf("%s/%s", r.URL.Path, run.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, runResponse(run))
}

// ListRuns handles GET /api/v1/analysis/runs?limit=
func (h *AnalysisHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	var req api.ListRunsRequest
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "limit must be an integer"))
			return
		}
		req.Limit = limit
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.NewListResponse(h.service.List(r.Context(), req.Limit)))
}

// GetRun handles GET /api/v1/analysis/runs/{runID}
func (h *AnalysisHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, runResponse(runFromContext(r.Context())))
}

// ExportRun handles GET /api/v1/analysis/runs/{runID}/export?format=
func (h *AnalysisHandler) ExportRun(w http.ResponseWriter, r *http.Request) {
	allowed := make([]string, len(exporter.Formats))
	for i, f := range exporter.Formats {
		allowed[i] = string(f)
	}
	name, ok := h.query.ValidateEnum(w, r, "format", allowed, string(exporter.FormatXLSX))
	if !ok {
		return
	}
	format, err := exporter.ParseFormat(name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	run := runFromContext(r.Context())
	filename := config.ExportFileName(run.Report.ExecutiveSummary.Company.Name, run.CreatedAt, format.Extension())

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := h.exporter.Export(r.Context(), w, run.Report, format); err != nil {
		// nothing has been written yet; Export renders before writing
		w.Header().Del("Content-Disposition")
		h.errorHandler.HandleError(w, r, err)
		return
	}
}

// ListDefinitions handles GET /api/v1/analysis/definitions?category=
func (h *AnalysisHandler) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	defs, err := h.service.Definitions(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.NewListResponse(defs))
}

// ListCategories handles GET /api/v1/analysis/categories
func (h *AnalysisHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.NewListResponse(h.service.Categories(r.Context())))
}

func runResponse(run *services.Run) api.RunResponse {
	resp := api.RunResponse{
		RunID:     run.ID,
		CreatedAt: run.CreatedAt,
		Report:    run.Report,
	}
	if run.Duration > 0 {
		resp.Duration = run.Duration.String()
	}
	return resp
}
