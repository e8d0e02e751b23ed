// Package metrics records escrow activity as Prometheus series.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the escrow service reports to.
type Recorder interface {
	TransitionCommitted(event, from, to string)
	TransitionRejected(event, reason string)
	GateDenied(check string, step int)
	FeeQuoted(tier, currency string)
}

// Metrics holds the escrow series.
type Metrics struct {
	registry    *prometheus.Registry
	committed   *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	gateDenials *prometheus.CounterVec
	feeQuotes   *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
}

var _ Recorder = (*Metrics)(nil)

// New creates the series and registers them on a fresh registry together
// with the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		committed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escrow",
			Subsystem: "transitions",
			Name:      "committed_total",
			Help:      "Committed escrow transitions segmented by event and status change.",
		}, []string{"event", "from", "to"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escrow",
			Subsystem: "transitions",
			Name:      "rejected_total",
			Help:      "Escrow transitions refused by a guard or lost to a concurrent writer.",
		}, []string{"event", "reason"}),
		gateDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escrow",
			Subsystem: "verification",
			Name:      "denials_total",
			Help:      "Verification gate denials segmented by check and failing step.",
		}, []string{"check", "step"}),
		feeQuotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escrow",
			Subsystem: "fees",
			Name:      "quotes_total",
			Help:      "Fee breakdowns computed, segmented by tier and currency.",
		}, []string{"tier", "currency"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "escrow",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.committed,
		m.rejected,
		m.gateDenials,
		m.feeQuotes,
		m.httpLatency,
	)
	return m
}

func (m *Metrics) TransitionCommitted(event, from, to string) {
	m.committed.WithLabelValues(event, from, to).Inc()
}

func (m *Metrics) TransitionRejected(event, reason string) {
	m.rejected.WithLabelValues(event, reason).Inc()
}

func (m *Metrics) GateDenied(check string, step int) {
	m.gateDenials.WithLabelValues(check, strconv.Itoa(step)).Inc()
}

func (m *Metrics) FeeQuoted(tier, currency string) {
	m.feeQuotes.WithLabelValues(tier, currency).Inc()
}

// ObserveRequest records one API request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpLatency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Noop discards everything.
type Noop struct{}

func (Noop) TransitionCommitted(string, string, string) {}
func (Noop) TransitionRejected(string, string)          {}
func (Noop) GateDenied(string, int)                     {}
func (Noop) FeeQuoted(string, string)                   {}
