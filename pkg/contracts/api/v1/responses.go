package api

import (
	"time"

	"finanalytics/pkg/contracts/domain"
)

// RunResponse is returned for a completed or fetched run
type RunResponse struct {
	RunID     string         `json:"runId"`
	CreatedAt time.Time      `json:"createdAt"`
	Duration  string         `json:"duration,omitempty"`
	Report    *domain.Report `json:"report"`
}

// ListResponse wraps a listing with its size
type ListResponse[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

// NewListResponse builds a listing; a nil slice is rendered as []
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Count: len(items), Items: items}
}
