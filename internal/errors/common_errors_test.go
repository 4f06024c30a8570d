package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name    string
		err     *AppError
		errType ErrorType
		message string
	}{
		{"benchmark", NewBenchmarkError("sector lookup failed", cause), ErrTypeBenchmark, "[BENCHMARK] sector lookup failed: connection refused"},
		{"export", NewExportError("write sheet", cause), ErrTypeExport, "[EXPORT] write sheet: connection refused"},
		{"not found", NewNotFoundError("analysis run", nil), ErrTypeNotFound, "[NOT_FOUND] analysis run not found"},
		{"not found with cause", NewNotFoundError("analysis run r1", cause), ErrTypeNotFound, "[NOT_FOUND] analysis run r1 not found: connection refused"},
		{"config", NewConfigError("bad port", nil), ErrTypeConfig, "[CONFIG] bad port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("run: %w", NewBenchmarkError("lookup", cause))

	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrTypeBenchmark, appErr.Type)
}

func TestAppErrorWithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeExport, Message: "write"}
	err.WithContext("format", "xlsx").WithContext("rows", 216)

	assert.Equal(t, map[string]interface{}{"format": "xlsx", "rows": 216}, err.Context)
}
