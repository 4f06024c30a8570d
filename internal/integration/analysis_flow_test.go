package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"finanalytics/internal/app"
	"finanalytics/internal/config"
	"finanalytics/internal/services"
	"finanalytics/internal/shared/testutil"
	api "finanalytics/pkg/contracts/api/v1"
	"finanalytics/pkg/contracts/events"
)

// AnalysisFlowTestSuite drives the assembled application over HTTP and the
// event stream
type AnalysisFlowTestSuite struct {
	suite.Suite
	app    *app.Application
	server *httptest.Server
}

func TestAnalysisFlowTestSuite(t *testing.T) {
	suite.Run(t, new(AnalysisFlowTestSuite))
}

func (suite *AnalysisFlowTestSuite) SetupTest() {
	cfg := config.Default()
	cfg.Paths.ExecutableDir = suite.T().TempDir()
	cfg.Telemetry.TraceExporter = "none"
	cfg.Telemetry.EnableMetrics = false
	cfg.Security.RateLimit.Enabled = false
	cfg.Engine.Workers = 4

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	application, err := app.New(context.Background(), cfg, logger)
	require.NoError(suite.T(), err)

	suite.app = application
	suite.server = httptest.NewServer(application.Router)
}

func (suite *AnalysisFlowTestSuite) TearDownTest() {
	suite.server.Close()
	suite.NoError(suite.app.Stop(context.Background()))
}

func (suite *AnalysisFlowTestSuite) request(categories ...string) api.AnalyzeRequest {
	req := api.AnalyzeRequest{
		Company:    testutil.Company(),
		Statements: testutil.Statements(),
	}
	if len(categories) > 0 {
		req.Selection = &api.SelectionRequest{Categories: categories}
	}
	return req
}

// createRun posts req and returns the decoded response and its Location
func (suite *AnalysisFlowTestSuite) createRun(req api.AnalyzeRequest) (api.RunResponse, string) {
	body, err := json.Marshal(req)
	suite.Require().NoError(err)

	resp, err := http.Post(suite.server.URL+"/api/v1/analysis/runs", "application/json", bytes.NewReader(body))
	suite.Require().NoError(err)
	defer resp.Body.Close()
	suite.Require().Equal(http.StatusCreated, resp.StatusCode)

	var run api.RunResponse
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&run))
	return run, resp.Header.Get("Location")
}

func (suite *AnalysisFlowTestSuite) get(path string) *http.Response {
	resp, err := http.Get(suite.server.URL + path)
	suite.Require().NoError(err)
	return resp
}

func (suite *AnalysisFlowTestSuite) TestRunLifecycle() {
	wsURL := "ws" + strings.TrimPrefix(suite.server.URL, "http") + "/api/v1/events"
	conn, _, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	suite.Require().NoError(err)
	defer conn.Close()

	var hello events.Event
	suite.Require().NoError(conn.ReadJSON(&hello))
	suite.Equal(events.TypeConnection, hello.Type)

	run, location := suite.createRun(suite.request("liquidity"))
	suite.NotEmpty(run.RunID)
	suite.Equal("/api/v1/analysis/runs/"+run.RunID, location)
	suite.NotEmpty(run.Report.Analyses)

	// the stream ends with the completion of this run
	var last events.Event
	suite.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	for last.Type != events.TypeRunCompleted {
		suite.Require().NoError(conn.ReadJSON(&last))
		suite.Equal(run.RunID, last.RunID)
	}

	resp := suite.get(location)
	var fetched api.RunResponse
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&fetched))
	resp.Body.Close()
	suite.Equal(run.RunID, fetched.RunID)
	suite.Equal(run.Report.Analyses, fetched.Report.Analyses)

	resp = suite.get("/api/v1/analysis/runs")
	var list api.ListResponse[services.RunSummary]
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	suite.Require().Equal(1, list.Count)
	suite.Equal(run.RunID, list.Items[0].ID)
	suite.Equal(testutil.CompanyName, list.Items[0].Company)

	resp = suite.get(location + "/export?format=xlsx")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(resp.Header.Get("Content-Disposition"), ".xlsx")
	f, err := excelize.OpenReader(resp.Body)
	resp.Body.Close()
	suite.Require().NoError(err)
	defer f.Close()
	rows, err := f.GetRows("Analyses")
	suite.Require().NoError(err)
	suite.Len(rows, len(run.Report.Analyses)+1, "header plus one row per result")

	resp = suite.get(location + "/export?format=csv")
	records, err := csv.NewReader(resp.Body).ReadAll()
	resp.Body.Close()
	suite.Require().NoError(err)
	suite.Len(records, len(run.Report.Analyses)+1)
}

func (suite *AnalysisFlowTestSuite) TestConcurrentRunsAreIndependent() {
	const runs = 6
	categories := []string{"liquidity", "leverage", "profitability"}

	var g errgroup.Group
	ids := make([]string, runs)
	for i := 0; i < runs; i++ {
		g.Go(func() error {
			body, err := json.Marshal(suite.request(categories[i%len(categories)]))
			if err != nil {
				return err
			}
			resp, err := http.Post(suite.server.URL+"/api/v1/analysis/runs", "application/json", bytes.NewReader(body))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusCreated {
				return fmt.Errorf("run %d: status %d", i, resp.StatusCode)
			}
			var run api.RunResponse
			if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
				return err
			}
			ids[i] = run.RunID
			return nil
		})
	}
	suite.Require().NoError(g.Wait())

	seen := map[string]bool{}
	for _, id := range ids {
		suite.NotEmpty(id)
		seen[id] = true
	}
	suite.Len(seen, runs)
	suite.Equal(runs, suite.app.Services.Analysis.StoredRuns())
}

func (suite *AnalysisFlowTestSuite) TestRunsAreDeterministic() {
	first, _ := suite.createRun(suite.request())
	second, _ := suite.createRun(suite.request())

	suite.NotEqual(first.RunID, second.RunID)
	suite.Equal(first.Report.Analyses, second.Report.Analyses)
	suite.Equal(first.Report.ExecutiveSummary.OverallScore, second.Report.ExecutiveSummary.OverallScore)
	suite.Equal(first.Report.ExecutiveSummary.OverallRating, second.Report.ExecutiveSummary.OverallRating)
}

func (suite *AnalysisFlowTestSuite) TestInvalidRequestLeavesNoRun() {
	req := suite.request()
	req.Statements = nil
	body, err := json.Marshal(req)
	suite.Require().NoError(err)

	resp, err := http.Post(suite.server.URL+"/api/v1/analysis/runs", "application/json", bytes.NewReader(body))
	suite.Require().NoError(err)
	resp.Body.Close()

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal(0, suite.app.Services.Analysis.StoredRuns())
}
