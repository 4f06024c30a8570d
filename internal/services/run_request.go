package services

import (
	"finanalytics/internal/analysis"
	api "finanalytics/pkg/contracts/api/v1"
)

// NewRunRequest converts a decoded analyze request into a RunRequest.
// Assumption fields left out of req keep the values in defaults.
func NewRunRequest(req api.AnalyzeRequest, defaults analysis.Assumptions) RunRequest {
	run := RunRequest{
		Company:    req.Company,
		Statements: req.Statements,
	}
	if req.Selection != nil {
		run.Selection = analysis.Selection{IDs: req.Selection.IDs, Categories: req.Selection.Categories}
	}
	if req.Assumptions != nil {
		a := mergeAssumptions(defaults, req.Assumptions)
		run.Assumptions = &a
	}
	return run
}

// mergeAssumptions overlays the fields present in req onto base
func mergeAssumptions(base analysis.Assumptions, req *api.AssumptionsRequest) analysis.Assumptions {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.DiscountRate, req.DiscountRate)
	set(&base.TerminalGrowth, req.TerminalGrowth)
	set(&base.RiskFreeRate, req.RiskFreeRate)
	set(&base.EquityRiskPremium, req.EquityRiskPremium)
	set(&base.Beta, req.Beta)
	set(&base.FallbackTaxRate, req.FallbackTaxRate)
	set(&base.TargetDebtToEBITDA, req.TargetDebtToEBITDA)
	if req.ForecastHorizon != nil {
		base.ForecastHorizon = *req.ForecastHorizon
	}
	return base
}
