// Package worker turns change feed events into derived data.
package worker

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"academy/internal/metrics"
	"academy/internal/queue"
	"academy/internal/store"
	"academy/internal/summary"
)

// SummaryWriter persists computed summaries.
type SummaryWriter interface {
	Put(ctx context.Context, rec summary.Record) error
}

// Worker handles events one at a time.
type Worker struct {
	store     store.Store
	summaries SummaryWriter
	log       *zap.Logger
	now       func() time.Time

	handled atomic.Int64
	failed  atomic.Int64
}

func New(s store.Store, summaries SummaryWriter, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{store: s, summaries: summaries, log: log, now: time.Now}
}

// Run drains events until the channel closes.
func (w *Worker) Run(ctx context.Context, events <-chan queue.Event) {
	for evt := range events {
		if err := w.Handle(ctx, evt); err != nil {
			w.log.Error("event failed",
				zap.String("kind", evt.Kind),
				zap.String("id", evt.ID),
				zap.Error(err))
		}
	}
}

// Handle processes one event. Only attendance saves produce work; other
// kinds are counted and skipped.
func (w *Worker) Handle(ctx context.Context, evt queue.Event) (err error) {
	result := "ok"
	defer func() {
		if err != nil {
			result = "error"
			w.failed.Add(1)
		}
		w.handled.Add(1)
		metrics.EventsProcessed.WithLabelValues(evt.Kind, result).Inc()
	}()

	if evt.Kind != queue.AttendanceSaved {
		result = "skipped"
		w.log.Debug("event skipped", zap.String("kind", evt.Kind), zap.String("id", evt.ID))
		return nil
	}
	rec, err := w.store.Get(ctx, store.Attendance, evt.ID)
	if err != nil {
		return err
	}
	sum, err := summary.FromRecord(rec, w.now())
	if err != nil {
		return err
	}
	if err := w.summaries.Put(ctx, sum); err != nil {
		return err
	}
	w.log.Info("summary updated",
		zap.String("key", sum.Key),
		zap.String("mode", sum.Mode),
		zap.Int("present", sum.Present),
		zap.Int("total", sum.Total))
	return nil
}

// Heartbeat logs a liveness line every interval until ctx is done.
func (w *Worker) Heartbeat(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.log.Info("heartbeat",
				zap.Int64("handled", w.handled.Load()),
				zap.Int64("failed", w.failed.Load()))
		}
	}
}
