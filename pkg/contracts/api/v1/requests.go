// Package api contains the request and response contracts of the analysis API.
// Version v1 represents the current stable API version.
package api

import (
	"finanalytics/pkg/contracts/domain"
)

// AnalyzeRequest asks for one analysis run over a statement history
type AnalyzeRequest struct {
	Company     domain.CompanyInfo          `json:"company" validate:"required"`
	Statements  []domain.FinancialStatement `json:"statements" validate:"required,min=1,max=50,dive"`
	Selection   *SelectionRequest           `json:"selection,omitempty"`
	Assumptions *AssumptionsRequest         `json:"assumptions,omitempty"`
}

// SelectionRequest restricts a run to analysis ids and/or categories.
// Both empty selects the whole catalogue.
type SelectionRequest struct {
	IDs        []string `json:"ids,omitempty" validate:"omitempty,dive,analysisid"`
	Categories []string `json:"categories,omitempty" validate:"omitempty,max=20,dive,min=1,max=64"`
}

// AssumptionsRequest overrides valuation assumptions for one run. Absent
// fields keep the configured defaults.
type AssumptionsRequest struct {
	DiscountRate       *float64 `json:"discountRate,omitempty" validate:"omitempty,gt=0,lt=1"`
	TerminalGrowth     *float64 `json:"terminalGrowth,omitempty" validate:"omitempty,gt=-0.5,lt=0.5"`
	RiskFreeRate       *float64 `json:"riskFreeRate,omitempty" validate:"omitempty,gte=0,lt=1"`
	EquityRiskPremium  *float64 `json:"equityRiskPremium,omitempty" validate:"omitempty,gte=0,lt=1"`
	Beta               *float64 `json:"beta,omitempty" validate:"omitempty,gte=0,lte=5"`
	FallbackTaxRate    *float64 `json:"fallbackTaxRate,omitempty" validate:"omitempty,gte=0,lt=1"`
	TargetDebtToEBITDA *float64 `json:"targetDebtToEbitda,omitempty" validate:"omitempty,gt=0"`
	ForecastHorizon    *int     `json:"forecastHorizon,omitempty" validate:"omitempty,min=1,max=20"`
}

// ListRunsRequest pages the stored runs
type ListRunsRequest struct {
	Limit int `json:"limit" query:"limit" validate:"min=0,max=100"`
}

// ExportRequest selects the export format of a stored run
type ExportRequest struct {
	Format string `json:"format" query:"format" validate:"omitempty,oneof=json csv xlsx"`
}
