// Package metrics exposes prometheus instrumentation for the forms store.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its own registry so several stores can live in one process.
type Metrics struct {
	registry      *prometheus.Registry
	queries       *prometheus.HistogramVec
	mutations     *prometheus.CounterVec
	rowsAffected  *prometheus.CounterVec
	notifications *prometheus.CounterVec
	subscribers   prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		queries: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "formstore",
			Name:      "query_duration_seconds",
			Help:      "Duration of form queries by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formstore",
			Name:      "mutations_total",
			Help:      "Insert, update and delete calls by route and outcome.",
		}, []string{"op", "route", "outcome"}),
		rowsAffected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formstore",
			Name:      "rows_affected_total",
			Help:      "Rows reported affected by mutations.",
		}, []string{"op"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formstore",
			Name:      "notifications_total",
			Help:      "Change notifications published by address.",
		}, []string{"route"}),
		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "formstore",
			Name:      "subscribers",
			Help:      "Currently registered change observers.",
		}),
	}
}

func (m *Metrics) ObserveQuery(route string, started time.Time) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(route).Observe(time.Since(started).Seconds())
}

func (m *Metrics) Mutation(op, route string, rows int, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.mutations.WithLabelValues(op, route, outcome).Inc()
	if rows > 0 {
		m.rowsAffected.WithLabelValues(op).Add(float64(rows))
	}
}

func (m *Metrics) Notified(route string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(route).Inc()
}

func (m *Metrics) SubscriberAdded() {
	if m != nil {
		m.subscribers.Inc()
	}
}

func (m *Metrics) SubscriberRemoved() {
	if m != nil {
		m.subscribers.Dec()
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
