package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gastos/internal/cache"
	"gastos/internal/core"
	"gastos/internal/ports"
)

const reportCacheKey = "ledger"

// ReportService computes totals over a consistent snapshot of the ledger.
// With a cache attached, reports are reused until the TTL passes or
// Invalidate is called.
type ReportService struct {
	snapshots ports.SnapshotReader

	mu         sync.Mutex
	generation uint64
	byPerson   cache.Cache[core.Report[core.PersonTotals]]
	byCategory cache.Cache[core.Report[core.CategoryTotals]]
}

func NewReportService(snapshots ports.SnapshotReader) *ReportService {
	return &ReportService{snapshots: snapshots}
}

// NewCachedReportService keeps each report for at most ttl. Pair it with
// LedgerService.OnCommit(Invalidate) so writes are visible immediately.
func NewCachedReportService(snapshots ports.SnapshotReader, ttl time.Duration) *ReportService {
	s := NewReportService(snapshots)
	if ttl > 0 {
		s.byPerson = cache.NewLRUCache[core.Report[core.PersonTotals]](1, ttl)
		s.byCategory = cache.NewLRUCache[core.Report[core.CategoryTotals]](1, ttl)
	}
	return s
}

// Invalidate drops cached reports. A computation already in flight is not
// stored once it finishes.
func (s *ReportService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.byPerson != nil {
		s.byPerson.Clear()
		s.byCategory.Clear()
	}
}

func (s *ReportService) TotalsByPerson(ctx context.Context) (core.Report[core.PersonTotals], error) {
	return cachedReport(ctx, s, s.byPerson, func(snap core.Snapshot) core.Report[core.PersonTotals] {
		return core.TotalsByPerson(snap.People, snap.Transactions)
	})
}

func (s *ReportService) TotalsByCategory(ctx context.Context) (core.Report[core.CategoryTotals], error) {
	return cachedReport(ctx, s, s.byCategory, func(snap core.Snapshot) core.Report[core.CategoryTotals] {
		return core.TotalsByCategory(snap.Categories, snap.Transactions)
	})
}

func cachedReport[T any](
	ctx context.Context,
	s *ReportService,
	c cache.Cache[core.Report[T]],
	build func(core.Snapshot) core.Report[T],
) (core.Report[T], error) {
	if c != nil {
		if report, ok := c.Get(reportCacheKey); ok {
			return report, nil
		}
	}

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return core.Report[T]{}, fmt.Errorf("read snapshot: %w", err)
	}
	report := build(snap)

	if c != nil {
		s.mu.Lock()
		if s.generation == gen {
			c.Set(reportCacheKey, report)
		}
		s.mu.Unlock()
	}
	return report, nil
}
