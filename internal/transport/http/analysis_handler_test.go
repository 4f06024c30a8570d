package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"finanalytics/internal/analysis"
	apierrors "finanalytics/internal/errors"
	"finanalytics/internal/exporter"
	"finanalytics/internal/services"
	"finanalytics/internal/shared/testutil"
	api "finanalytics/pkg/contracts/api/v1"
	"finanalytics/pkg/contracts/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer wires the handler to a real engine and service
func newTestServer(t *testing.T) (*httptest.Server, *services.AnalysisService) {
	t.Helper()
	logger := quietLogger()

	engine := analysis.NewEngine(
		analysis.WithLogger(logger),
		analysis.WithWorkers(2),
		analysis.WithClock(func() time.Time { return time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC) }),
	)
	svc := services.NewAnalysisService(engine, services.NewReportStore(5),
		services.AnalysisServiceConfig{MaxSelectionIDs: 3}, logger)

	errorHandler := NewErrorHandler(logger, false)
	handler := NewAnalysisHandler(svc, exporter.New(logger), analysis.DefaultAssumptions(), logger, errorHandler)

	r := chi.NewRouter()
	r.Mount("/api/v1/analysis", handler.Routes())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func analyzeBody(t *testing.T, mutate func(*api.AnalyzeRequest)) io.Reader {
	t.Helper()
	req := api.AnalyzeRequest{
		Company:    testutil.Company(),
		Statements: testutil.Statements(),
		Selection:  &api.SelectionRequest{Categories: []string{"liquidity"}},
	}
	if mutate != nil {
		mutate(&req)
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func postRun(t *testing.T, srv *httptest.Server, body io.Reader) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/v1/analysis/runs", "application/json", body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeProblem(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	return problem
}

func TestCreateRun(t *testing.T) {
	srv, svc := newTestServer(t)

	resp := postRun(t, srv, analyzeBody(t, nil))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var run api.RunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, "/api/v1/analysis/runs/"+run.RunID, resp.Header.Get("Location"))
	require.NotEmpty(t, run.Report.Analyses)
	for _, r := range run.Report.Analyses {
		assert.Equal(t, "liquidity", r.Subcategory)
	}
	assert.Equal(t, "FY2024", run.Report.ExecutiveSummary.PeriodTo)
	assert.Equal(t, 1, svc.StoredRuns())
}

func TestCreateRunErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       func(t *testing.T) io.Reader
		wantStatus int
		wantType   string
		wantDetail string
	}{
		{
			name:       "malformed json",
			body:       func(*testing.T) io.Reader { return strings.NewReader(`{"company":`) },
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "unknown field",
			body:       func(*testing.T) io.Reader { return strings.NewReader(`{"company":{"name":"x"},"statements":[],"extra":1}`) },
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name: "no statements",
			body: func(t *testing.T) io.Reader {
				return analyzeBody(t, func(r *api.AnalyzeRequest) { r.Statements = []domain.FinancialStatement{} })
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
			wantDetail: "statements",
		},
		{
			name: "missing company name",
			body: func(t *testing.T) io.Reader {
				return analyzeBody(t, func(r *api.AnalyzeRequest) { r.Company.Name = "" })
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
			wantDetail: "company.name",
		},
		{
			name: "malformed analysis id",
			body: func(t *testing.T) io.Reader {
				return analyzeBody(t, func(r *api.AnalyzeRequest) {
					r.Selection = &api.SelectionRequest{IDs: []string{"Current Ratio"}}
				})
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
			wantDetail: "selection.ids[0]",
		},
		{
			name: "unregistered analysis id",
			body: func(t *testing.T) io.Reader {
				return analyzeBody(t, func(r *api.AnalyzeRequest) {
					r.Selection = &api.SelectionRequest{IDs: []string{"current_ratio", "roe_typo"}}
				})
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeUnknownAnalysis,
			wantDetail: "roe_typo",
		},
		{
			name: "unknown category",
			body: func(t *testing.T) io.Reader {
				return analyzeBody(t, func(r *api.AnalyzeRequest) {
					r.Selection = &api.SelectionRequest{Categories: []string{"astrology"}}
				})
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeUnknownAnalysis,
			wantDetail: "astrology",
		},
		{
			name: "selection too large",
			body: func(t *testing.T) io.Reader {
				return analyzeBody(t, func(r *api.AnalyzeRequest) {
					r.Selection = &api.SelectionRequest{IDs: []string{"current_ratio", "quick_ratio", "cash_ratio", "net_profit_margin"}}
				})
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name: "assumption out of range",
			body: func(t *testing.T) io.Reader {
				rate := 1.5
				return analyzeBody(t, func(r *api.AnalyzeRequest) {
					r.Assumptions = &api.AssumptionsRequest{DiscountRate: &rate}
				})
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
			wantDetail: "assumptions.discountRate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, svc := newTestServer(t)

			resp := postRun(t, srv, tt.body(t))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var problem map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &problem))
			assert.Equal(t, tt.wantType, problem["type"])
			if tt.wantDetail != "" {
				assert.Contains(t, string(raw), tt.wantDetail)
			}
			assert.Zero(t, svc.StoredRuns())
		})
	}
}

func TestCreateRunRequiresJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/analysis/runs", "text/plain", strings.NewReader("hi"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestGetAndListRuns(t *testing.T) {
	srv, _ := newTestServer(t)

	var ids []string
	for i := 0; i < 2; i++ {
		resp := postRun(t, srv, analyzeBody(t, nil))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var run api.RunResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
		ids = append(ids, run.RunID)
	}

	t.Run("get", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/analysis/runs/" + ids[0])
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var run api.RunResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
		assert.Equal(t, ids[0], run.RunID)
		assert.Equal(t, testutil.CompanyName, run.Report.ExecutiveSummary.Company.Name)
	})

	t.Run("missing", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/analysis/runs/nope")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		problem := decodeProblem(t, resp)
		assert.Equal(t, apierrors.TypeRunNotFound, problem["type"])
		assert.Contains(t, problem["details"], "analysis run nope not found")
	})

	t.Run("list", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/analysis/runs?limit=1")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var list api.ListResponse[services.RunSummary]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		require.Equal(t, 1, list.Count)
		assert.Equal(t, ids[1], list.Items[0].ID, "newest first")
	})

	t.Run("bad limit", func(t *testing.T) {
		for _, q := range []string{"abc", "500"} {
			resp, err := http.Get(srv.URL + "/api/v1/analysis/runs?limit=" + q)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		}
	})
}

func TestExportRun(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postRun(t, srv, analyzeBody(t, nil))
	var run api.RunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	base := srv.URL + "/api/v1/analysis/runs/" + run.RunID + "/export"

	t.Run("xlsx by default", func(t *testing.T) {
		resp, err := http.Get(base)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, exporter.FormatXLSX.ContentType(), resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

		f, err := excelize.OpenReader(resp.Body)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Analyses")
		require.NoError(t, err)
		assert.Len(t, rows, len(run.Report.Analyses)+1)
	})

	t.Run("csv", func(t *testing.T) {
		resp, err := http.Get(base + "?format=CSV")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
		require.NoError(t, err)
		assert.Len(t, records, len(run.Report.Analyses)+1)
	})

	t.Run("unsupported format", func(t *testing.T) {
		resp, err := http.Get(base + "?format=pdf")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("Content-Disposition"))
	})
}

func TestCatalogueEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("definitions", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/analysis/definitions")
		require.NoError(t, err)
		defer resp.Body.Close()

		var list api.ListResponse[analysis.DefinitionInfo]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		assert.Equal(t, analysis.Default().Len(), list.Count)
	})

	t.Run("definitions by category", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/analysis/definitions?category=valuation")
		require.NoError(t, err)
		defer resp.Body.Close()

		var list api.ListResponse[analysis.DefinitionInfo]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		require.NotZero(t, list.Count)
		for _, d := range list.Items {
			assert.Equal(t, "valuation", d.Category)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/analysis/definitions?category=astrology")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("categories", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/analysis/categories")
		require.NoError(t, err)
		defer resp.Body.Close()

		var list api.ListResponse[analysis.CategoryInfo]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		assert.Equal(t, 14, list.Count)
	})
}

// stubService feeds canned errors into the handler
type stubService struct {
	AnalysisServiceInterface
	err error
}

func (s stubService) Analyze(context.Context, services.RunRequest) (*services.Run, error) {
	return nil, s.err
}

func TestCreateRunMapsEngineErrors(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantType   string
	}{
		{analysis.ErrNoStatements, http.StatusUnprocessableEntity, apierrors.TypeNoStatements},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, apierrors.TypeTimeout},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError, apierrors.TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			logger := quietLogger()
			handler := NewAnalysisHandler(stubService{err: tt.err}, exporter.New(logger),
				analysis.DefaultAssumptions(), logger, NewErrorHandler(logger, false))

			req := httptest.NewRequest(http.MethodPost, "/runs", analyzeBody(t, nil))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			handler.Routes().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var problem map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tt.wantType, problem["type"])
		})
	}
}
