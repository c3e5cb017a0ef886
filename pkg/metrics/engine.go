package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "splitwallet"

const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// EngineMetrics records ledger computations: how long they take, how they end, and whether the
// result cache served them.
type EngineMetrics struct {
	duration     *prometheus.HistogramVec
	success      *prometheus.CounterVec
	failure      *prometheus.CounterVec
	cache        *prometheus.CounterVec
	transactions prometheus.Histogram
}

// NewEngineMetrics registers the engine metrics on the provided registerer. A nil registerer
// returns a recorder that drops everything.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "computation_duration_seconds",
		Help:      "Duration of ledger computations in seconds, snapshot load included.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "computation_success_total",
		Help:      "Successful ledger computations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "computation_failure_total",
		Help:      "Failed ledger computations by error code.",
	}, []string{"operation", "code"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "result_cache_requests_total",
		Help:      "Computed result cache lookups.",
	}, []string{"operation", "result"})
	transactions := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "settlement_transactions",
		Help:      "Number of transactions in each settlement plan.",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
	})
	reg.MustRegister(duration, success, failure, cache, transactions)
	return &EngineMetrics{
		duration:     duration,
		success:      success,
		failure:      failure,
		cache:        cache,
		transactions: transactions,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *EngineMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func (m *EngineMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (m *EngineMetrics) IncFailure(operation, code string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}

// CacheResult counts a lookup outcome: CacheHit, CacheMiss or CacheError.
func (m *EngineMetrics) CacheResult(operation, result string) {
	if m == nil || m.cache == nil {
		return
	}
	m.cache.WithLabelValues(normalizeLabel(operation), normalizeLabel(result)).Inc()
}

func (m *EngineMetrics) ObservePlan(transactions int) {
	if m == nil || m.transactions == nil {
		return
	}
	m.transactions.Observe(float64(transactions))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
