package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "localbookr"

// Metrics owns a private Prometheus registry and the collectors recorded by
// the HTTP layer, the booking lifecycle and the auto-assign sweep.
// All record methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	transitions       *prometheus.CounterVec
	effects           *prometheus.CounterVec
	sweepOutcomes     *prometheus.CounterVec
	sweepDuration     prometheus.Histogram
	realtimeConnected prometheus.Gauge
}

// New registers every collector on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking status changes by source and target status.",
		}, []string{"from", "to"}),
		effects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_effects_total",
			Help:      "Dispatched side effects by kind and outcome.",
		}, []string{"kind", "outcome"}),
		sweepOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_assign_bookings_total",
			Help:      "Bookings processed by the auto-assign sweep by outcome.",
		}, []string{"outcome"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "auto_assign_sweep_duration_seconds",
			Help:      "Duration of one auto-assign sweep.",
			Buckets:   prometheus.DefBuckets,
		}),
		realtimeConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_connections",
			Help:      "Open notification websocket connections.",
		}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.transitions,
		m.effects,
		m.sweepOutcomes,
		m.sweepDuration,
		m.realtimeConnected,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Transition counts a committed booking status change
func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

// Effect counts one dispatched side effect
func (m *Metrics) Effect(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.effects.WithLabelValues(kind, outcome).Inc()
}

// SweepOutcome counts one booking handled by the auto-assign sweep
func (m *Metrics) SweepOutcome(outcome string) {
	if m == nil {
		return
	}
	m.sweepOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveSweep records the duration of a sweep
func (m *Metrics) ObserveSweep(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(elapsed.Seconds())
}

// RealtimeConnected adjusts the open websocket gauge by delta
func (m *Metrics) RealtimeConnected(delta int) {
	if m == nil {
		return
	}
	m.realtimeConnected.Add(float64(delta))
}
