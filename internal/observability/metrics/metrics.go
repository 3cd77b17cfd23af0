// Package metrics defines the console's Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	obserrors "github.com/partnerdesk/console/internal/observability/errors"
)

const namespace = "console"

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Cache result labels.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheShared = "shared"
	CacheError  = "error"
)

// Metrics holds every console metric. A nil *Metrics is valid and records nothing.
type Metrics struct {
	EdgeDecisions    *prometheus.CounterVec
	GateOutcomes     *prometheus.CounterVec
	IdentityFetches  *prometheus.CounterVec
	IdentityDuration *prometheus.HistogramVec
	CacheResults     *prometheus.CounterVec
	Landings         *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New registers all metrics with registry.
func New(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		// Labels: class (public|admin-protected|auth-only), action (allow|redirect).
		EdgeDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "edge_decisions_total",
				Help:      "Edge gate decisions by route class and action.",
			},
			[]string{"class", "action"},
		),
		// Labels: state (checking|authenticated|unauthenticated), mode (deferred|inline|api).
		GateOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_gate_outcomes_total",
				Help:      "Client gate outcomes by terminal state and request mode.",
			},
			[]string{"state", "mode"},
		),
		IdentityFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "identity_fetches_total",
				Help:      "Authoritative current-user fetches against the API server.",
			},
			[]string{"result", "error_class"},
		),
		IdentityDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "identity_fetch_duration_seconds",
				Help:      "Duration of current-user fetches against the API server.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		CacheResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "query_cache_results_total",
				Help:      "Query cache lookups by query and result (hit|miss|shared|error).",
			},
			[]string{"query", "result"},
		),
		Landings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_landings_total",
				Help:      "Post-login landing resolutions by role.",
			},
			[]string{"role"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests served, by method and status code.",
			},
			[]string{"method", "code"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by method.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

// ObserveEdge records one edge gate decision.
func (m *Metrics) ObserveEdge(class, action string) {
	if m == nil {
		return
	}
	m.EdgeDecisions.WithLabelValues(class, action).Inc()
}

// ObserveGate records one client gate outcome.
func (m *Metrics) ObserveGate(state, mode string) {
	if m == nil {
		return
	}
	m.GateOutcomes.WithLabelValues(state, mode).Inc()
}

// ObserveIdentityFetch records an authoritative fetch and its latency.
func (m *Metrics) ObserveIdentityFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.IdentityFetches.WithLabelValues(result, obserrors.Classify(err)).Inc()
	m.IdentityDuration.WithLabelValues(result).Observe(d.Seconds())
}

// ObserveCache records one query cache lookup.
func (m *Metrics) ObserveCache(query, result string) {
	if m == nil {
		return
	}
	m.CacheResults.WithLabelValues(query, result).Inc()
}

// ObserveLanding records a post-login landing for role.
func (m *Metrics) ObserveLanding(role string) {
	if m == nil {
		return
	}
	m.Landings.WithLabelValues(role).Inc()
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, code).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(d.Seconds())
}
