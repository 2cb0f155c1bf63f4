package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molonc/treealign/pkg/domain"
)

func TestMetricsHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnVisit(ctx, &domain.VisitEvent{Clade: "root"})
	hooks.OnVisit(ctx, &domain.VisitEvent{Clade: "A"})
	hooks.OnPrune(ctx, &domain.PruneEvent{Clade: "B", Reason: domain.PruneTooFewCells})
	hooks.OnPrune(ctx, &domain.PruneEvent{Clade: "C", Reason: domain.PruneTooFewCells})
	hooks.OnPrune(ctx, &domain.PruneEvent{Clade: "D", Reason: domain.PruneLowConfidence})
	hooks.OnCommit(ctx, &domain.CommitEvent{Clade: "root", CellCount: 100})
	hooks.OnInference(ctx, &domain.InferenceEvent{NoneFreq: 0.1, Duration: time.Second})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.cladeVisits))
	assert.Equal(t, float64(100), testutil.ToFloat64(m.cellsCommitted))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.inferenceRuns))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.cladesPruned.WithLabelValues(string(domain.PruneTooFewCells))))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cladesPruned.WithLabelValues(string(domain.PruneLowConfidence))))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
