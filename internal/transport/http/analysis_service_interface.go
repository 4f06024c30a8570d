package http

import (
	"context"

	"finanalytics/internal/analysis"
	"finanalytics/internal/services"
)

// AnalysisServiceInterface is what the analysis handler needs from the service layer
type AnalysisServiceInterface interface {
	Analyze(ctx context.Context, req services.RunRequest) (*services.Run, error)
	Get(ctx context.Context, id string) (*services.Run, error)
	List(ctx context.Context, limit int) []services.RunSummary
	Definitions(ctx context.Context, category string) ([]analysis.DefinitionInfo, error)
	Categories(ctx context.Context) []analysis.CategoryInfo
}
