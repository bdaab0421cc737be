package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "academy_store_ops_total",
		Help: "Entity store calls by collection, operation and result.",
	}, []string{"collection", "op", "result"})

	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "academy_store_op_seconds",
		Help:    "Entity store call latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "op"})

	BatchWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "academy_batch_writes_total",
		Help: "Batch create/update/delete operations by outcome.",
	}, []string{"op", "result"})

	AttendanceSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "academy_attendance_saves_total",
		Help: "Attendance saves by mode and outcome.",
	}, []string{"mode", "result"})

	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "academy_worker_events_total",
		Help: "Change feed events handled by the worker.",
	}, []string{"kind", "result"})
)

// Result labels an outcome for the counters above.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
