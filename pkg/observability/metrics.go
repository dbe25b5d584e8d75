package observability

import (
	"context"

	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for story execution.
type Metrics struct {
	batches       *prometheus.CounterVec
	commands      *prometheus.CounterVec
	batchDuration prometheus.Histogram
	resolveTime   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with the given
// registerer. Use prometheus.DefaultRegisterer for the process registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storyloom_batches_total",
				Help: "Total number of executed command batches",
			},
			[]string{"status"},
		),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storyloom_commands_total",
				Help: "Total number of applied story commands",
			},
			[]string{"command", "status"},
		),
		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "storyloom_batch_duration_seconds",
				Help:    "Duration of batch execution including persistence",
				Buckets: prometheus.DefBuckets,
			},
		),
		resolveTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "storyloom_resolve_duration_seconds",
				Help:    "Duration of intent resolution round-trips",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.batches, m.commands, m.batchDuration, m.resolveTime)
	return m
}

// BatchCounter exposes the per-status batch counter.
func (m *Metrics) BatchCounter() *prometheus.CounterVec { return m.batches }

// CommandCounter exposes the per-command counter.
func (m *Metrics) CommandCounter() *prometheus.CounterVec { return m.commands }

// Hooks returns lifecycle hooks that record into the collectors. The hooks
// are safe for concurrent use across stories.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBatchEnd: func(ctx context.Context, e *domain.BatchEvent) {
			m.batches.WithLabelValues(e.Status.String()).Inc()
			m.batchDuration.Observe(e.Duration.Seconds())
		},
		OnCommandApplied: func(ctx context.Context, e *domain.CommandEvent) {
			m.commands.WithLabelValues(string(e.Command), e.Status.String()).Inc()
		},
		OnIntentResolved: func(ctx context.Context, e *domain.ResolveEvent) {
			m.resolveTime.Observe(e.Duration.Seconds())
		},
	}
}
