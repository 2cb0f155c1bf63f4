package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molonc/treealign/pkg/domain"
	"github.com/molonc/treealign/pkg/ports"
)

// ResultStoreContractTest is a reusable suite verifying that an adapter
// complies with ports.ResultStore.
func ResultStoreContractTest(t *testing.T, store ports.ResultStore) {
	t.Helper()
	ctx := context.Background()

	result := &domain.Result{
		RunID: "run-1",
		Root:  "node_0",
		CloneAssign: map[string]string{
			"cell_a": "node_1",
			"cell_b": "node_2",
		},
		PrunedClades: []string{"node_1", "node_2"},
		GeneTypeScores: map[string][]float64{
			"MYC": {0.91, 0.88},
		},
		StartedAt:  time.Now().UTC().Truncate(time.Second),
		FinishedAt: time.Now().UTC().Truncate(time.Second),
	}

	t.Run("Save_Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "run-1", result))

		loaded, err := store.Load(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, result.RunID, loaded.RunID)
		assert.Equal(t, result.CloneAssign, loaded.CloneAssign)
		assert.Equal(t, result.PrunedClades, loaded.PrunedClades)
		assert.Equal(t, result.GeneTypeScores, loaded.GeneTypeScores)
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-run")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "run-2", &domain.Result{RunID: "run-2"}))

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, "run-1")
		assert.Contains(t, runs, "run-2")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "run-1"))
		_, err := store.Load(ctx, "run-1")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)

		// Deleting a missing run is not an error.
		assert.NoError(t, store.Delete(ctx, "run-1"))
	})
}
