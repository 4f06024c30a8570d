package http

import (
	"log/slog"
	"net/http"

	"finanalytics/internal/analysis"
	apierrors "finanalytics/internal/errors"
	"finanalytics/internal/services"
)

// NewErrorHandler returns the RFC 7807 error handler with the engine and
// service sentinel errors mapped onto API errors
func NewErrorHandler(logger *slog.Logger, includeStack bool) *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(logger, includeStack).
		Map(analysis.ErrNoStatements, apierrors.ErrNoStatements).
		Map(analysis.ErrUnknownAnalysis, apierrors.New(http.StatusBadRequest, apierrors.CodeUnknownAnalysis, "Unknown analysis requested")).
		Map(services.ErrRunNotFound, apierrors.ErrRunNotFound).
		Map(services.ErrUnknownCategory, apierrors.New(http.StatusBadRequest, apierrors.CodeUnknownAnalysis, "Unknown analysis category")).
		Map(services.ErrTooManySelection, apierrors.New(http.StatusBadRequest, apierrors.CodeValidationFailed, "Selection is too large")).
		Map(services.ErrTooManyStatements, apierrors.New(http.StatusBadRequest, apierrors.CodeValidationFailed, "Too many financial statements"))
}
