// Package metrics exposes prometheus instrumentation for the background
// process. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "webfocus"

// Metrics holds the collectors updated by the tracking, rule and storage
// components.
type Metrics struct {
	trackedSeconds *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	redirects      *prometheus.CounterVec
	saves          *prometheus.CounterVec
	pomodoros      prometheus.Counter
	tracking       prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		trackedSeconds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracked_seconds_total",
			Help:      "Seconds of active browsing attributed to each category.",
		}, []string{"category"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_transitions_total",
			Help:      "Tracking state machine transitions by action.",
		}, []string{"action"}),
		redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redirects_total",
			Help:      "Navigations and tabs redirected to the block page.",
		}, []string{"reason", "type"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_saves_total",
			Help:      "State snapshot writes by result.",
		}, []string{"result"}),
		pomodoros: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pomodoro_work_sessions_total",
			Help:      "Completed pomodoro work sessions.",
		}),
		tracking: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracking_active",
			Help:      "1 while a tracking session is open.",
		}),
	}

	reg.MustRegister(
		m.trackedSeconds,
		m.transitions,
		m.redirects,
		m.saves,
		m.pomodoros,
		m.tracking,
	)

	return m
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) Tracked(category string, secs int64) {
	if m == nil {
		return
	}

	m.trackedSeconds.WithLabelValues(category).Add(float64(secs))
}

func (m *Metrics) Transition(action string, active bool) {
	if m == nil {
		return
	}

	m.transitions.WithLabelValues(action).Inc()

	if active {
		m.tracking.Set(1)
	} else {
		m.tracking.Set(0)
	}
}

func (m *Metrics) Redirected(reason, ruleType string) {
	if m == nil {
		return
	}

	m.redirects.WithLabelValues(reason, ruleType).Inc()
}

func (m *Metrics) Saved(err error) {
	if m == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}

	m.saves.WithLabelValues(result).Inc()
}

func (m *Metrics) PomodoroCompleted() {
	if m == nil {
		return
	}

	m.pomodoros.Inc()
}
