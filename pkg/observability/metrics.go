package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "elicitation"

// Metrics records session activity in a dedicated Prometheus registry.
type Metrics struct {
	registry   *prometheus.Registry
	rounds     *prometheus.CounterVec
	retries    *prometheus.CounterVec
	violations *prometheus.CounterVec
	outcomes   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	active     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime and process collectors, in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Prompt/response rounds, by elicited type.",
		}, []string{"type"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Rounds that were rejected and asked again, by elicited type.",
		}, []string{"type"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Rejected responses, by elicited type and violation.",
		}, []string{"type", "violation"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Finished sessions, by elicited type and outcome.",
		}, []string{"type", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Wall time from first prompt to terminal outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"type", "outcome"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rounds_in_flight",
			Help:      "Rounds waiting for a response.",
		}),
	}
	m.registry.MustRegister(
		m.rounds, m.retries, m.violations, m.outcomes, m.duration, m.active,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry for gathering or extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRoundStart: func(_ context.Context, e *domain.RoundEvent) {
			m.rounds.WithLabelValues(e.TypeName).Inc()
			m.active.Inc()
		},
		OnRoundEnd: func(_ context.Context, e *domain.RoundEvent) {
			m.active.Dec()
			if e.Err != nil {
				m.violations.WithLabelValues(e.TypeName, violationLabel(e.Err)).Inc()
			}
		},
		OnRetry: func(_ context.Context, e *domain.RoundEvent) {
			m.retries.WithLabelValues(e.TypeName).Inc()
		},
		OnTerminal: func(_ context.Context, e *domain.TerminalEvent) {
			outcome := string(e.Outcome)
			m.outcomes.WithLabelValues(e.TypeName, outcome).Inc()
			m.duration.WithLabelValues(e.TypeName, outcome).Observe(e.Duration.Seconds())
		},
	}
}

// violationLabel is the violation name for invariant failures, "empty" for
// blank responses, and the error kind otherwise.
func violationLabel(err error) string {
	if v, ok := domain.ViolationOf(err); ok {
		return string(v)
	}
	if errors.Is(err, domain.ErrEmptyResponse) {
		return "empty"
	}
	return domain.KindOf(err).String()
}
