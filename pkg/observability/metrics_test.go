package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/aldaque/storyloom/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_HooksRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()

	ctx := context.Background()

	hooks.OnBatchEnd(ctx, &domain.BatchEvent{
		Status:   domain.StatusOK,
		Duration: 25 * time.Millisecond,
	})
	hooks.OnBatchEnd(ctx, &domain.BatchEvent{
		Status: domain.StatusInvalidMod,
	})
	hooks.OnCommandApplied(ctx, &domain.CommandEvent{
		Command: domain.CommandAddMod,
		Status:  domain.StatusOK,
	})
	hooks.OnIntentResolved(ctx, &domain.ResolveEvent{
		Action:   "com.example.view",
		Duration: time.Millisecond,
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.BatchCounter().WithLabelValues("OK")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BatchCounter().WithLabelValues("INVALID_MOD")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CommandCounter().WithLabelValues("add_mod", "OK")))

	// Histograms register alongside the counters.
	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.Len(t, families, 4)
}
