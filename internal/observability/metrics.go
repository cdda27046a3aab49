// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the bot.
type Metrics struct {
	// Cycle metrics
	CyclesTotal      prometheus.Counter
	CycleErrors      prometheus.Counter
	InstrumentErrors *prometheus.CounterVec
	CycleDuration    prometheus.Histogram

	// Safety gate metrics
	SafetyChecks  *prometheus.CounterVec // verdict: pass | reject
	SafetyRejects *prometheus.CounterVec // risk_level

	// Strategy metrics
	Decisions *prometheus.CounterVec // action

	// Swap pipeline metrics
	SwapsSubmitted *prometheus.CounterVec // side
	SwapFailures   *prometheus.CounterVec // stage: route | sign | submit
	SwapLatency    prometheus.Histogram

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
	OpenPositions       prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "multiplier_bot"
	}

	return &Metrics{
		CyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "cycles_total",
			Help:      "Total number of trading cycles started",
		}),
		CycleErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "cycle_errors_total",
			Help:      "Total number of cycle-level failures",
		}),
		InstrumentErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "instrument_errors_total",
			Help:      "Total number of per-instrument failures",
		}, []string{"symbol"}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of one full trading cycle",
			Buckets:   prometheus.DefBuckets,
		}),
		SafetyChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "safety",
			Name:      "checks_total",
			Help:      "Total number of safety checks by verdict",
		}, []string{"verdict"}),
		SafetyRejects: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "safety",
			Name:      "rejects_total",
			Help:      "Total number of safety rejects by risk level",
		}, []string{"risk_level"}),
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strategy",
			Name:      "decisions_total",
			Help:      "Total number of strategy decisions by action",
		}, []string{"action"}),
		SwapsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "submitted_total",
			Help:      "Total number of swaps submitted by side",
		}, []string{"side"}),
		SwapFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "failures_total",
			Help:      "Total number of swap pipeline failures by stage",
		}, []string{"stage"}),
		SwapLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "execution_duration_seconds",
			Help:      "Duration of one route-sign-submit execution",
			Buckets:   prometheus.DefBuckets,
		}),
		LastSuccessfulCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of the last fully processed cycle",
		}),
		OpenPositions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "open_positions",
			Help:      "Number of instruments with an open entry",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
