// Package http implements the HTTP handlers of the analysis service.
// It is a thin layer between HTTP transport and the services package:
// handlers decode and validate requests, call a service, and render the
// result or hand the error to the shared error handler.
//
// # Routes
//
//	POST /api/v1/analysis/runs                run the catalogue and store the report
//	GET  /api/v1/analysis/runs                list stored runs, newest first
//	GET  /api/v1/analysis/runs/{runID}        fetch a stored run
//	GET  /api/v1/analysis/runs/{runID}/export download as json, csv or xlsx
//	GET  /api/v1/analysis/definitions         list the catalogue, ?category= filters
//	GET  /api/v1/analysis/categories          list categories and subcategories
//	GET  /api/health[/ready|/live]            health probes
//	GET  /api/version                         build information
//	GET  /metrics                             Prometheus scrape endpoint
//
// # Error Handling
//
// All errors follow the RFC 7807 Problem Details format:
//
//	{
//	    "type": "/errors/analysis/unknown-id",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "Unknown analysis requested",
//	    "instance": "/api/v1/analysis/runs",
//	    "error_code": "UNKNOWN_ANALYSIS",
//	    "details": "analysis run 6f1c...: unknown analysis id: roe_typo",
//	    "trace_id": "..."
//	}
//
// Service and engine sentinel errors are mapped onto problem types by
// NewErrorHandler.
package http
