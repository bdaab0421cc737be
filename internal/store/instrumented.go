package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"academy/internal/apperr"
	"academy/internal/metrics"
)

// Instrumented records metrics for every call and logs unavailability.
type Instrumented struct {
	inner Store
	log   *zap.Logger
}

// NewInstrumented wraps inner.
func NewInstrumented(inner Store, log *zap.Logger) *Instrumented {
	if log == nil {
		log = zap.NewNop()
	}
	return &Instrumented{inner: inner, log: log}
}

func (s *Instrumented) observe(collection, op string, start time.Time, err error) {
	metrics.StoreLatency.WithLabelValues(collection, op).Observe(time.Since(start).Seconds())
	result := "ok"
	switch apperr.KindOf(err) {
	case "":
		if err != nil {
			result = "error"
		}
	case apperr.KindNotFound:
		result = "not_found"
	case apperr.KindStoreUnavailable:
		result = "unavailable"
		s.log.Error("store call failed",
			zap.String("collection", collection),
			zap.String("op", op),
			zap.Error(err))
	default:
		result = "rejected"
	}
	metrics.StoreOps.WithLabelValues(collection, op, result).Inc()
}

func (s *Instrumented) ListAll(ctx context.Context, collection string) (recs []Record, err error) {
	defer func(start time.Time) { s.observe(collection, "list", start, err) }(time.Now())
	return s.inner.ListAll(ctx, collection)
}

func (s *Instrumented) Get(ctx context.Context, collection, id string) (rec Record, err error) {
	defer func(start time.Time) { s.observe(collection, "get", start, err) }(time.Now())
	return s.inner.Get(ctx, collection, id)
}

func (s *Instrumented) Create(ctx context.Context, collection string, doc Document) (id string, err error) {
	defer func(start time.Time) { s.observe(collection, "create", start, err) }(time.Now())
	return s.inner.Create(ctx, collection, doc)
}

func (s *Instrumented) Update(ctx context.Context, collection, id string, doc Document) (err error) {
	defer func(start time.Time) { s.observe(collection, "update", start, err) }(time.Now())
	return s.inner.Update(ctx, collection, id, doc)
}

func (s *Instrumented) Upsert(ctx context.Context, collection, id string, doc Document) (err error) {
	defer func(start time.Time) { s.observe(collection, "upsert", start, err) }(time.Now())
	return s.inner.Upsert(ctx, collection, id, doc)
}

func (s *Instrumented) Delete(ctx context.Context, collection, id string) (err error) {
	defer func(start time.Time) { s.observe(collection, "delete", start, err) }(time.Now())
	return s.inner.Delete(ctx, collection, id)
}
