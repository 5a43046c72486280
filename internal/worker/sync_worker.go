// Package worker keeps the spreadsheet mirror in step with the ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/ports"
)

// ErrAlreadyRunning is returned by Run when the resync loop is active.
var ErrAlreadyRunning = errors.New("sync worker already running")

// SyncWorker rewrites the ledger mirror from a store snapshot, on every
// ledger event and on a fixed interval as a backstop for lost messages.
type SyncWorker struct {
	snapshots ports.SnapshotReader
	mirror    ports.LedgerMirror
	interval  time.Duration
	logger    *log.Logger

	// mu serializes mirror runs; each one rewrites every tab.
	mu      sync.Mutex
	running int32

	syncs    int64
	failures int64
	lastSync atomic.Int64
}

// Stats is a point-in-time view of the worker counters.
type Stats struct {
	Syncs    int64
	Failures int64
	LastSync time.Time
}

func NewSyncWorker(snapshots ports.SnapshotReader, mirror ports.LedgerMirror, interval time.Duration, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SyncWorker{
		snapshots: snapshots,
		mirror:    mirror,
		interval:  interval,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleLedgerEvent mirrors the ledger after a committed change. Events carry
// ids only, so the whole ledger is re-read. A failed event is left to the
// next periodic resync.
func (w *SyncWorker) HandleLedgerEvent(ctx context.Context, ev core.LedgerEvent) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		log.FieldEventID, ev.ID,
		log.FieldEventKind, string(ev.Kind),
		"entity_id", ev.EntityID)

	if err := w.Resync(ctx); err != nil {
		return fmt.Errorf("handle %s %s: %w", ev.Kind, ev.ID, err)
	}
	return nil
}

// Resync rewrites the mirror from a fresh snapshot.
func (w *SyncWorker) Resync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	snap, err := w.snapshots.Snapshot(ctx)
	if err != nil {
		atomic.AddInt64(&w.failures, 1)
		return fmt.Errorf("read snapshot: %w", err)
	}
	if err := w.mirror.Mirror(ctx, snap); err != nil {
		atomic.AddInt64(&w.failures, 1)
		return fmt.Errorf("mirror ledger: %w", err)
	}

	atomic.AddInt64(&w.syncs, 1)
	w.lastSync.Store(time.Now().UnixNano())
	w.logger.DebugContext(ctx, "Mirror updated",
		"transactions", len(snap.Transactions),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// Run resyncs once at startup and then every interval until ctx is done.
// Failed runs are logged and retried on the next tick.
func (w *SyncWorker) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&w.running, 0, 1) {
		return ErrAlreadyRunning
	}
	defer atomic.StoreInt32(&w.running, 0)

	w.logger.InfoContext(ctx, "Starting periodic resync", "interval", w.interval.String())
	w.resyncAndLog(ctx, "startup")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(context.WithoutCancel(ctx), "Periodic resync stopped")
			return nil
		case <-ticker.C:
			w.resyncAndLog(ctx, "periodic")
		}
	}
}

func (w *SyncWorker) resyncAndLog(ctx context.Context, reason string) {
	if err := w.Resync(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.ErrorContext(ctx, "Resync failed", log.FieldReason, reason, log.FieldError, err)
	}
}

// IsRunning reports whether the periodic loop is active.
func (w *SyncWorker) IsRunning() bool {
	return atomic.LoadInt32(&w.running) == 1
}

func (w *SyncWorker) Stats() Stats {
	s := Stats{
		Syncs:    atomic.LoadInt64(&w.syncs),
		Failures: atomic.LoadInt64(&w.failures),
	}
	if ns := w.lastSync.Load(); ns > 0 {
		s.LastSync = time.Unix(0, ns)
	}
	return s
}
