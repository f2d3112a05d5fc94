// Package metrics exposes Prometheus counters for simulation runs. A nil
// *SimulationMetrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SimulationMetrics groups the collectors used by the session controller and agents.
type SimulationMetrics struct {
	sessionsTotal     *prometheus.CounterVec
	clientTurnsTotal  prometheus.Counter
	actionsTotal      *prometheus.CounterVec
	generationLatency *prometheus.HistogramVec
	evaluationsTotal  *prometheus.CounterVec
}

func NewSimulationMetrics(reg prometheus.Registerer) *SimulationMetrics {
	m := &SimulationMetrics{
		sessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zcounsel",
			Subsystem: "session",
			Name:      "completed_total",
			Help:      "Sessions finished, by termination reason",
		}, []string{"reason"}),
		clientTurnsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zcounsel",
			Subsystem: "session",
			Name:      "client_turns_total",
			Help:      "Completed client turns across all sessions",
		}),
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zcounsel",
			Subsystem: "client",
			Name:      "actions_total",
			Help:      "Client actions selected, by stage and action",
		}, []string{"stage", "action"}),
		generationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "zcounsel",
			Subsystem: "session",
			Name:      "generation_seconds",
			Help:      "Latency of one agent reply",
			Buckets:   prometheus.DefBuckets,
		}, []string{"role"}),
		evaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zcounsel",
			Subsystem: "evaluation",
			Name:      "dimensions_total",
			Help:      "Evaluated rubric dimensions, by dimension and status",
		}, []string{"dimension", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsTotal, m.clientTurnsTotal, m.actionsTotal, m.generationLatency, m.evaluationsTotal)
	return m
}

func (m *SimulationMetrics) ObserveSession(reason string) {
	if m == nil {
		return
	}
	m.sessionsTotal.WithLabelValues(reason).Inc()
}

func (m *SimulationMetrics) ObserveClientTurn() {
	if m == nil {
		return
	}
	m.clientTurnsTotal.Inc()
}

func (m *SimulationMetrics) ObserveAction(stage, action string) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(stage, action).Inc()
}

func (m *SimulationMetrics) ObserveGeneration(role string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generationLatency.WithLabelValues(role).Observe(elapsed.Seconds())
}

func (m *SimulationMetrics) ObserveEvaluation(dimension string, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.evaluationsTotal.WithLabelValues(dimension, status).Inc()
}
