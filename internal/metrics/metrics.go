// Package metrics exposes Prometheus collectors for access decisions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg prometheus.Gatherer

	decisions   *prometheus.CounterVec
	failOpen    *prometheus.CounterVec
	usage       prometheus.Counter
	cooldowns   *prometheus.CounterVec
	purged      *prometheus.CounterVec
	rateLimited prometheus.Counter
}

// New registers the collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fortunegate_decisions_total",
			Help: "Access and quota decisions by kind, outcome and reason.",
		}, []string{"kind", "outcome", "reason"}),
		failOpen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fortunegate_fail_open_total",
			Help: "Store read errors resolved to the permissive outcome.",
		}, []string{"component"}),
		usage: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fortunegate_usage_recorded_total",
			Help: "Usage events recorded.",
		}),
		cooldowns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fortunegate_cooldown_checks_total",
			Help: "Deletion cooldown checks by result.",
		}, []string{"result"}),
		purged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fortunegate_sweeper_purged_total",
			Help: "Rows removed by the storage sweeper.",
		}, []string{"kind"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fortunegate_rate_limited_total",
			Help: "Requests rejected by the per-peer rate limiter.",
		}),
	}
	reg.MustRegister(
		m.decisions, m.failOpen, m.usage, m.cooldowns, m.purged, m.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Decision counts one decision.
func (m *Metrics) Decision(kind, outcome, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	m.decisions.WithLabelValues(kind, outcome, reason).Inc()
}

// FailOpen counts one read error that was resolved permissively.
func (m *Metrics) FailOpen(component string) {
	if m == nil {
		return
	}
	m.failOpen.WithLabelValues(component).Inc()
}

// UsageRecorded counts one stored usage event.
func (m *Metrics) UsageRecorded() {
	if m == nil {
		return
	}
	m.usage.Inc()
}

// CooldownCheck counts one cooldown lookup by result.
func (m *Metrics) CooldownCheck(result string) {
	if m == nil {
		return
	}
	m.cooldowns.WithLabelValues(result).Inc()
}

// Purged adds n removed rows of the given kind.
func (m *Metrics) Purged(kind string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.purged.WithLabelValues(kind).Add(float64(n))
}

// RateLimited counts one rejected request.
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
