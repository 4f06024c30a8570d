package services

import (
	"container/list"
	"sync"
	"time"

	apierrors "finanalytics/internal/errors"
	"finanalytics/pkg/contracts/domain"
)

// Run is one stored analysis run
type Run struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	Duration  time.Duration  `json:"-"`
	Report    *domain.Report `json:"report"`
}

// RunSummary is the listing view of a stored run
type RunSummary struct {
	ID            string        `json:"id"`
	CreatedAt     time.Time     `json:"createdAt"`
	Company       string        `json:"company"`
	PeriodFrom    string        `json:"periodFrom"`
	PeriodTo      string        `json:"periodTo"`
	TotalAnalyses int           `json:"totalAnalyses"`
	OverallScore  float64       `json:"overallScore"`
	OverallRating domain.Rating `json:"overallRating"`
}

// Summary returns the listing view of r
func (r *Run) Summary() RunSummary {
	s := r.Report.ExecutiveSummary
	return RunSummary{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt,
		Company:       s.Company.Name,
		PeriodFrom:    s.PeriodFrom,
		PeriodTo:      s.PeriodTo,
		TotalAnalyses: s.TotalAnalyses,
		OverallScore:  s.OverallScore,
		OverallRating: s.OverallRating,
	}
}

// ReportStore keeps the most recent runs in memory. When full, the oldest
// run is evicted. Safe for concurrent use.
type ReportStore struct {
	mu       sync.RWMutex
	capacity int
	order    *list.List // front is newest
	index    map[string]*list.Element
}

// NewReportStore creates a store holding at most capacity runs
func NewReportStore(capacity int) *ReportStore {
	if capacity < 1 {
		capacity = 1
	}
	return &ReportStore{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element, capacity),
	}
}

// Put stores run and returns the id of the evicted run, if any
func (s *ReportStore) Put(run *Run) (evicted string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.index[run.ID]; ok {
		el.Value = run
		s.order.MoveToFront(el)
		return ""
	}

	s.index[run.ID] = s.order.PushFront(run)
	if s.order.Len() > s.capacity {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		evicted = oldest.Value.(*Run).ID
		delete(s.index, evicted)
	}
	return evicted
}

// Get returns the run with the given id
func (s *ReportStore) Get(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.index[id]
	if !ok {
		return nil, apierrors.NewNotFoundError("analysis run "+id, ErrRunNotFound).WithContext("run_id", id)
	}
	return el.Value.(*Run), nil
}

// List returns up to limit run summaries, newest first. limit <= 0 lists all.
func (s *ReportStore) List(limit int) []RunSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > s.order.Len() {
		limit = s.order.Len()
	}
	out := make([]RunSummary, 0, limit)
	for el := s.order.Front(); el != nil && len(out) < limit; el = el.Next() {
		out = append(out, el.Value.(*Run).Summary())
	}
	return out
}

// Len returns the number of stored runs
func (s *ReportStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}
