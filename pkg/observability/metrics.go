package observability

import (
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portflow"

// Metrics holds the Prometheus collectors updated by Hooks.
type Metrics struct {
	Invalidations      *prometheus.CounterVec
	Evaluations        *prometheus.CounterVec
	EvaluatedProcessor *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec
	Processors         *prometheus.GaugeVec
	Connections        *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which suits tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Invalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invalidations_total",
				Help:      "Processors entering an invalid state, by level.",
			},
			[]string{"network", "level"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Evaluation passes, by outcome.",
			},
			[]string{"network", "outcome"},
		),
		EvaluatedProcessor: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "processor_evaluations_total",
				Help:      "Processor runs during evaluation passes.",
			},
			[]string{"network", "processor"},
		),
		EvaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of evaluation passes.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"network"},
		),
		Processors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "processors",
				Help:      "Processors currently in the network.",
			},
			[]string{"network"},
		),
		Connections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connections",
				Help:      "Connections currently in the network.",
			},
			[]string{"network"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.collectors()...)
	}
	return m
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Invalidations,
		m.Evaluations,
		m.EvaluatedProcessor,
		m.EvaluationDuration,
		m.Processors,
		m.Connections,
	}
}

// Hooks returns lifecycle hooks recording into the collectors. Combine
// them with other hooks through domain.ChainHooks.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnProcessorAdded: func(e *domain.ProcessorEvent) {
			m.Processors.WithLabelValues(e.Network).Inc()
		},
		OnProcessorRemoved: func(e *domain.ProcessorEvent) {
			m.Processors.WithLabelValues(e.Network).Dec()
		},
		OnConnectionAdded: func(e *domain.ConnectionEvent) {
			m.Connections.WithLabelValues(e.Network).Inc()
		},
		OnConnectionRemoved: func(e *domain.ConnectionEvent) {
			m.Connections.WithLabelValues(e.Network).Dec()
		},
		OnInvalidated: func(e *domain.ProcessorEvent) {
			m.Invalidations.WithLabelValues(e.Network, e.Level.String()).Inc()
		},
		OnEvaluated: func(e *domain.EvaluationEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
			}
			m.Evaluations.WithLabelValues(e.Network, outcome).Inc()
			m.EvaluationDuration.WithLabelValues(e.Network).Observe(e.Duration.Seconds())
			for _, id := range e.Evaluated {
				m.EvaluatedProcessor.WithLabelValues(e.Network, id).Inc()
			}
		},
	}
}
