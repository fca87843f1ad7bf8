package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/playperu/reveal/internal/gate"
	"github.com/playperu/reveal/internal/session"
)

// Metrics holds the collectors exported on /metrics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	events      *prometheus.CounterVec
	dispatch    *prometheus.HistogramVec
	signals     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	gateErrors  *prometheus.CounterVec
	sessions    prometheus.Gauge
	streams     *prometheus.GaugeVec
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reveal_events_total",
				Help: "Inbound session events by type and result.",
			},
			[]string{"type", "result"},
		),
		dispatch: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reveal_dispatch_duration_seconds",
				Help:    "Time from receiving an event to its resulting state.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"type"},
		),
		signals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reveal_signals_total",
				Help: "Outbound session signals by type.",
			},
			[]string{"type"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reveal_scene_transitions_total",
				Help: "Scene stages entered.",
			},
			[]string{"stage"},
		),
		gateErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reveal_gate_errors_total",
				Help: "Wrong quiz answers and wrong codes.",
			},
			[]string{"kind"},
		),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reveal_sessions_active",
			Help: "Sessions with a running event loop.",
		}),
		streams: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "reveal_streams_open",
				Help: "Open signal streams by transport.",
			},
			[]string{"transport"},
		),
	}
	reg.MustRegister(m.events, m.dispatch, m.signals, m.transitions, m.gateErrors, m.sessions, m.streams)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) observeEvent(t session.EventType, err error, took time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.events.WithLabelValues(string(t), result).Inc()
	m.dispatch.WithLabelValues(string(t)).Observe(took.Seconds())
}

// Emit counts a signal. It runs on the session goroutine.
func (m *Metrics) Emit(s session.Signal) {
	if m == nil {
		return
	}
	m.signals.WithLabelValues(string(s.Type)).Inc()
	switch data := s.Data.(type) {
	case session.SceneChanged:
		m.transitions.WithLabelValues(data.Stage.String()).Inc()
	case session.GateChanged:
		if data.Outcome == gate.Wrong {
			m.gateErrors.WithLabelValues(data.Gate.Error).Inc()
		}
	}
}

func (m *Metrics) sessionStarted() {
	if m != nil {
		m.sessions.Inc()
	}
}

func (m *Metrics) sessionStopped() {
	if m != nil {
		m.sessions.Dec()
	}
}

func (m *Metrics) streamOpened(transport string) func() {
	if m == nil {
		return func() {}
	}
	g := m.streams.WithLabelValues(transport)
	g.Inc()
	return g.Dec
}
