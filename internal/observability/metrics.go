package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/adbtrace/internal/decoder"
	"github.com/danmuck/adbtrace/internal/protocol"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adbtrace",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adbtrace",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	decodeAnnotations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adbtrace",
			Subsystem: "decode",
			Name:      "annotations_total",
			Help:      "Annotations emitted by category.",
		},
		[]string{"source", "category"},
	)
	decodeTransactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adbtrace",
			Subsystem: "decode",
			Name:      "transactions_total",
			Help:      "Completed bus transactions by command.",
		},
		[]string{"source", "command", "data", "srq"},
	)
	decodeRecoveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adbtrace",
			Subsystem: "decode",
			Name:      "recoveries_total",
			Help:      "Returns to ATTENTION after out-of-tolerance timing.",
		},
		[]string{"source", "state", "reason"},
	)
	decodeCaptures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adbtrace",
			Subsystem: "decode",
			Name:      "captures_total",
			Help:      "Decoded captures by result.",
		},
		[]string{"source", "result"},
	)
	decodeSamples = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adbtrace",
			Subsystem: "decode",
			Name:      "samples_total",
			Help:      "Samples consumed by the decoder.",
		},
		[]string{"source"},
	)
	decodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adbtrace",
			Subsystem: "decode",
			Name:      "duration_seconds",
			Help:      "Wall time spent decoding one capture.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"source", "result"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			decodeAnnotations, decodeTransactions, decodeRecoveries,
			decodeCaptures, decodeSamples, decodeDuration,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// Capture results.
const (
	ResultOK        = "ok"
	ResultError     = "error"
	ResultCancelled = "cancelled"
)

// RecordCapture records the end of one decode run.
func RecordCapture(source, result string, samples uint64, duration time.Duration) {
	RegisterMetrics()
	decodeCaptures.WithLabelValues(source, result).Inc()
	decodeSamples.WithLabelValues(source).Add(float64(samples))
	decodeDuration.WithLabelValues(source, result).Observe(duration.Seconds())
}

// DecodeMetrics feeds decoder events into the decode counters under a
// source label. Only the HTTP service exposes /metrics, so it is the one
// caller today.
type DecodeMetrics struct {
	source string
}

var _ decoder.Recorder = (*DecodeMetrics)(nil)

func NewDecodeMetrics(source string) *DecodeMetrics {
	RegisterMetrics()
	return &DecodeMetrics{source: source}
}

func (m *DecodeMetrics) Annotated(a protocol.Annotation) {
	decodeAnnotations.WithLabelValues(m.source, a.Category.String()).Inc()
}

func (m *DecodeMetrics) Completed(tx protocol.Transaction) {
	decodeTransactions.WithLabelValues(
		m.source,
		tx.Command.String(),
		strconv.FormatBool(tx.HasData()),
		strconv.FormatBool(tx.ServiceRequest),
	).Inc()
}

func (m *DecodeMetrics) Recovered(r decoder.Recovery) {
	decodeRecoveries.WithLabelValues(m.source, r.State.String(), r.Reason.String()).Inc()
}
