package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "finanalytics/internal/errors"
	"finanalytics/pkg/contracts/domain"
)

func storedRun(id string, score float64) *Run {
	return &Run{
		ID:        id,
		CreatedAt: time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC),
		Report: &domain.Report{ExecutiveSummary: domain.ExecutiveSummary{
			Company:       domain.CompanyInfo{Name: "Baghdad Soft Drinks"},
			PeriodFrom:    "FY2021",
			PeriodTo:      "FY2024",
			TotalAnalyses: 216,
			OverallScore:  score,
			OverallRating: domain.RatingGood,
		}},
	}
}

func TestReportStorePutGet(t *testing.T) {
	store := NewReportStore(2)

	assert.Empty(t, store.Put(storedRun("a", 1)))
	assert.Empty(t, store.Put(storedRun("b", 2)))
	assert.Equal(t, "a", store.Put(storedRun("c", 3)), "oldest run is evicted")
	assert.Equal(t, 2, store.Len())

	_, err := store.Get("a")
	assert.ErrorIs(t, err, ErrRunNotFound)
	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeNotFound, appErr.Type)
	assert.Equal(t, "a", appErr.Context["run_id"])
	assert.Equal(t, "[NOT_FOUND] analysis run a not found: unknown run id", err.Error())

	run, err := store.Get("c")
	require.NoError(t, err)
	assert.Equal(t, 3.0, run.Report.ExecutiveSummary.OverallScore)
}

func TestReportStoreReplaceRefreshes(t *testing.T) {
	store := NewReportStore(2)
	store.Put(storedRun("a", 1))
	store.Put(storedRun("b", 2))

	// re-putting "a" makes it the newest, so "b" goes next
	assert.Empty(t, store.Put(storedRun("a", 10)))
	assert.Equal(t, "b", store.Put(storedRun("c", 3)))

	run, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 10.0, run.Report.ExecutiveSummary.OverallScore)
}

func TestReportStoreList(t *testing.T) {
	store := NewReportStore(10)
	for i := 1; i <= 4; i++ {
		store.Put(storedRun(fmt.Sprintf("run-%d", i), float64(i)))
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"all", 0, []string{"run-4", "run-3", "run-2", "run-1"}},
		{"limited", 2, []string{"run-4", "run-3"}},
		{"limit above size", 50, []string{"run-4", "run-3", "run-2", "run-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, s := range store.List(tt.limit) {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	first := store.List(1)[0]
	assert.Equal(t, "Baghdad Soft Drinks", first.Company)
	assert.Equal(t, "FY2021", first.PeriodFrom)
	assert.Equal(t, "FY2024", first.PeriodTo)
	assert.Equal(t, domain.RatingGood, first.OverallRating)
}

func TestReportStoreMinimumCapacity(t *testing.T) {
	store := NewReportStore(0)
	store.Put(storedRun("a", 1))
	assert.Equal(t, "a", store.Put(storedRun("b", 1)))
	assert.Equal(t, 1, store.Len())
}

func TestReportStoreConcurrent(t *testing.T) {
	store := NewReportStore(16)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("run-%d", i)
			store.Put(storedRun(id, float64(i)))
			store.List(5)
			store.Get(id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 16, store.Len())
}
