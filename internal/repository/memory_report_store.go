package repository

import (
	"context"
	"sync"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
)

// MemoryReportStore keeps the latest reports per (currency, interval) in process.
// It backs history when ClickHouse is disabled.
type MemoryReportStore struct {
	mu      sync.RWMutex
	perKey  int
	reports map[string][]*models.TechnicalReport
}

var _ domrepo.ReportStore = (*MemoryReportStore)(nil)

func NewMemoryReportStore(perKey int) *MemoryReportStore {
	if perKey <= 0 {
		perKey = 500
	}
	return &MemoryReportStore{perKey: perKey, reports: make(map[string][]*models.TechnicalReport)}
}

func storeKey(currencyID, interval string) string { return currencyID + "|" + interval }

func (s *MemoryReportStore) Save(_ context.Context, r *models.TechnicalReport) error {
	k := storeKey(r.CurrencyID, r.Interval)
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.reports[k], r)
	if len(list) > s.perKey {
		list = list[len(list)-s.perKey:]
	}
	s.reports[k] = list
	return nil
}

// History returns up to limit reports, newest first.
func (s *MemoryReportStore) History(_ context.Context, currencyID string, interval domrepo.Interval, limit int) ([]*models.TechnicalReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.reports[storeKey(currencyID, string(interval))]
	out := make([]*models.TechnicalReport, 0, min(limit, len(list)))
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

func (s *MemoryReportStore) Health(context.Context) error { return nil }
