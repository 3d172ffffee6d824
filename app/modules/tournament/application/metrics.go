package tournamentservice

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/rugby-bot/pkg/handlerwrapper"
	"github.com/prometheus/client_golang/prometheus"
)

// Result outcomes recorded by RecordResultOutcome.
const (
	OutcomeApplied    = "applied"
	OutcomeIdempotent = "idempotent"
	OutcomeConflict   = "conflict"
	OutcomeRejected   = "rejected"
)

// TournamentMetrics records service and handler activity.
type TournamentMetrics interface {
	handlerwrapper.Metrics

	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordResultOutcome(ctx context.Context, outcome string)
	RecordCacheLookup(ctx context.Context, hit bool)
	RecordRebuild(ctx context.Context, applied, rejected int)
}

// PrometheusMetrics implements TournamentMetrics with prometheus collectors.
type PrometheusMetrics struct {
	operations        *prometheus.CounterVec
	operationFailures *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	handlerCalls      *prometheus.CounterVec
	handlerDuration   *prometheus.HistogramVec
	resultOutcomes    *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
	rebuiltResults    *prometheus.CounterVec
}

var _ TournamentMetrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates the collectors and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rugby",
			Subsystem: "tournament",
			Name:      "operations_total",
			Help:      "Service operations by name and status.",
		}, []string{"service", "operation", "status"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rugby",
			Subsystem: "tournament",
			Name:      "operation_failures_total",
			Help:      "Service operations that ended in an infrastructure error.",
		}, []string{"service", "operation"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rugby",
			Subsystem: "tournament",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		handlerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rugby",
			Subsystem: "tournament",
			Name:      "handler_calls_total",
			Help:      "Event handler invocations by handler and status.",
		}, []string{"handler", "status"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rugby",
			Subsystem: "tournament",
			Name:      "handler_duration_seconds",
			Help:      "Event handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler"}),
		resultOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rugby",
			Subsystem: "tournament",
			Name:      "results_total",
			Help:      "Recorded match results by outcome.",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rugby",
			Subsystem: "tournament",
			Name:      "standings_cache_lookups_total",
			Help:      "Standings cache lookups by result.",
		}, []string{"result"}),
		rebuiltResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rugby",
			Subsystem: "tournament",
			Name:      "rebuilt_results_total",
			Help:      "Results replayed by standings rebuilds.",
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{
		m.operations, m.operationFailures, m.operationDuration,
		m.handlerCalls, m.handlerDuration,
		m.resultOutcomes, m.cacheLookups, m.rebuiltResults,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "attempt").Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "success").Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operationFailures.WithLabelValues(service, operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.operationDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordHandlerAttempt(_ context.Context, handlerName string) {
	m.handlerCalls.WithLabelValues(handlerName, "attempt").Inc()
}

func (m *PrometheusMetrics) RecordHandlerSuccess(_ context.Context, handlerName string) {
	m.handlerCalls.WithLabelValues(handlerName, "success").Inc()
}

func (m *PrometheusMetrics) RecordHandlerFailure(_ context.Context, handlerName string) {
	m.handlerCalls.WithLabelValues(handlerName, "failure").Inc()
}

func (m *PrometheusMetrics) RecordHandlerDuration(_ context.Context, handlerName string, duration time.Duration) {
	m.handlerDuration.WithLabelValues(handlerName).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordResultOutcome(_ context.Context, outcome string) {
	m.resultOutcomes.WithLabelValues(outcome).Inc()
}

func (m *PrometheusMetrics) RecordCacheLookup(_ context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) RecordRebuild(_ context.Context, applied, rejected int) {
	m.rebuiltResults.WithLabelValues("applied").Add(float64(applied))
	m.rebuiltResults.WithLabelValues("rejected").Add(float64(rejected))
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

var _ TournamentMetrics = NoopMetrics{}

// NewNoop returns metrics that record nothing.
func NewNoop() TournamentMetrics { return NoopMetrics{} }

func (NoopMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoopMetrics) RecordHandlerAttempt(context.Context, string)                           {}
func (NoopMetrics) RecordHandlerSuccess(context.Context, string)                           {}
func (NoopMetrics) RecordHandlerFailure(context.Context, string)                           {}
func (NoopMetrics) RecordHandlerDuration(context.Context, string, time.Duration)           {}
func (NoopMetrics) RecordResultOutcome(context.Context, string)                            {}
func (NoopMetrics) RecordCacheLookup(context.Context, bool)                                {}
func (NoopMetrics) RecordRebuild(context.Context, int, int)                                {}
