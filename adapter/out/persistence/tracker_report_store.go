package persistence

import (
	"context"
	"sync"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/out"
)

const defaultReportCapacity = 50

// MemoryReportStore keeps the most recent sync reports when MongoDB is not configured.
type MemoryReportStore struct {
	mu       sync.Mutex
	reports  []*domain.SyncReport
	capacity int
}

func NewMemoryReportStore(capacity int) *MemoryReportStore {
	if capacity <= 0 {
		capacity = defaultReportCapacity
	}
	return &MemoryReportStore{capacity: capacity}
}

func (s *MemoryReportStore) Save(_ context.Context, report *domain.SyncReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report)
	if over := len(s.reports) - s.capacity; over > 0 {
		s.reports = append([]*domain.SyncReport(nil), s.reports[over:]...)
	}
	return nil
}

// Recent returns up to limit reports, newest first.
func (s *MemoryReportStore) Recent(_ context.Context, limit int) ([]*domain.SyncReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.reports) {
		limit = len(s.reports)
	}
	list := make([]*domain.SyncReport, 0, limit)
	for i := len(s.reports) - 1; i >= 0 && len(list) < limit; i-- {
		list = append(list, s.reports[i])
	}
	return list, nil
}

var _ out.SyncReportRepository = (*MemoryReportStore)(nil)
