// Package worker applies transaction events outside the request path:
// it drops the owner's cached views and mirrors the ledger to a
// spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"financas/internal/amqp"
	"financas/internal/cache"
	"financas/internal/log"
	"financas/internal/sheets"

	"golang.org/x/sync/errgroup"
)

// Consumer feeds events to a handler until ctx is done.
type Consumer interface {
	ConsumeTransactionEvents(ctx context.Context, handler amqp.Handler) error
}

var _ Consumer = (*amqp.Client)(nil)

// Stats are cumulative counters since the worker started.
type Stats struct {
	Processed   int64
	Failed      int64
	Invalidated int64
	Mirrored    int64
}

// SyncWorker handles transaction events. Both the view cache and the
// mirror are optional.
type SyncWorker struct {
	views  cache.ViewCache
	mirror sheets.Mirror
	logger *log.Logger

	processed   int64
	failed      int64
	invalidated int64
	mirrored    int64
}

func NewSyncWorker(views cache.ViewCache, mirror sheets.Mirror) *SyncWorker {
	return &SyncWorker{
		views:  views,
		mirror: mirror,
		logger: log.ForComponent(log.ComponentWorker),
	}
}

// HandleTransactionEvent applies one event. An error asks the broker for a
// redelivery.
func (w *SyncWorker) HandleTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	start := time.Now()
	tx := ev.Core()
	fields := log.NewFields().
		WithUser(ev.UserID).
		WithOperation(log.OpConsume).
		WithTransaction(tx.ID, string(tx.Kind), tx.Amount, tx.Category)

	err := w.apply(ctx, ev)
	if err != nil {
		atomic.AddInt64(&w.failed, 1)
		w.logger.ErrorContext(ctx, "Failed to process transaction event",
			append(fields.WithError(err, log.ErrorTypeInternal).ToSlice(), "event_id", ev.ID, "action", ev.Action)...)
		return err
	}

	atomic.AddInt64(&w.processed, 1)
	w.logger.InfoContext(ctx, "Processed transaction event",
		append(fields.ToSlice(), "event_id", ev.ID, "action", ev.Action, log.FieldDuration, time.Since(start).Milliseconds())...)
	return nil
}

func (w *SyncWorker) apply(ctx context.Context, ev *amqp.TransactionEvent) error {
	var errs []error
	if w.views != nil {
		if err := w.views.Invalidate(ctx, ev.UserID); err != nil {
			errs = append(errs, fmt.Errorf("invalidate views: %w", err))
		} else {
			atomic.AddInt64(&w.invalidated, 1)
		}
	}

	if w.mirror != nil {
		var err error
		switch ev.Action {
		case amqp.ActionCreated, amqp.ActionUpdated:
			err = w.mirror.Upsert(ctx, ev.Core())
		case amqp.ActionDeleted:
			err = w.mirror.Remove(ctx, ev.Transaction.ID)
		default:
			err = fmt.Errorf("unknown action %q", ev.Action)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("mirror %s: %w", ev.Action, err))
		} else {
			atomic.AddInt64(&w.mirrored, 1)
		}
	}
	return errors.Join(errs...)
}

// Stats returns a snapshot of the counters.
func (w *SyncWorker) Stats() Stats {
	return Stats{
		Processed:   atomic.LoadInt64(&w.processed),
		Failed:      atomic.LoadInt64(&w.failed),
		Invalidated: atomic.LoadInt64(&w.invalidated),
		Mirrored:    atomic.LoadInt64(&w.mirrored),
	}
}

// Run consumes events and logs throughput every statsInterval until ctx
// is cancelled or consumption fails. A cancelled context is not an error.
func (w *SyncWorker) Run(ctx context.Context, consumer Consumer, statsInterval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.ConsumeTransactionEvents(ctx, w.HandleTransactionEvent)
	})
	if statsInterval > 0 {
		g.Go(func() error {
			w.reportStats(ctx, statsInterval)
			return nil
		})
	}

	err := g.Wait()
	w.logStats(context.Background(), "Worker stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *SyncWorker) reportStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := w.Stats()
			w.logger.InfoContext(ctx, "Worker throughput",
				"processed", st.Processed,
				"failed", st.Failed,
				"since_last", st.Processed-last,
				"per_second", float64(st.Processed-last)/interval.Seconds())
			last = st.Processed
		}
	}
}

func (w *SyncWorker) logStats(ctx context.Context, msg string) {
	st := w.Stats()
	w.logger.InfoContext(ctx, msg,
		"processed", st.Processed,
		"failed", st.Failed,
		"invalidated", st.Invalidated,
		"mirrored", st.Mirrored)
}
