package runtime

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molonc/treealign/pkg/domain"
)

// stubBuilder returns the same inputs for every visit and records the cell
// lists it was asked about.
type stubBuilder struct {
	inputs *domain.ProfileInputs
	err    error
	calls  [][]string
}

func (b *stubBuilder) Build(_ context.Context, _ [][]string, cells []string) (*domain.ProfileInputs, error) {
	b.calls = append(b.calls, cells)
	if b.err != nil {
		return nil, b.err
	}
	return b.inputs, nil
}

// stubAssigner delegates to a closure and counts invocations.
type stubAssigner struct {
	fn    func(inputs *domain.ProfileInputs, repeat int) (*domain.AssignResult, error)
	calls int
}

func (a *stubAssigner) Run(_ context.Context, inputs *domain.ProfileInputs, repeat int) (*domain.AssignResult, error) {
	a.calls++
	return a.fn(inputs, repeat)
}

func cellNames(n int) []string {
	cells := make([]string, n)
	for i := range cells {
		cells[i] = fmt.Sprintf("cell_%03d", i)
	}
	return cells
}

func leafRange(prefix string, n int) []*domain.Clade {
	out := make([]*domain.Clade, n)
	for i := range out {
		out[i] = &domain.Clade{Name: fmt.Sprintf("%s_%d", prefix, i)}
	}
	return out
}

func geneIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("gene_%d", i)
	}
	return ids
}

// totalCNInputs builds a usable total copy-number track with the given
// number of discriminating genes and no allele-specific track.
func totalCNInputs(genes int, cells []string) *domain.ProfileInputs {
	return &domain.ProfileInputs{
		Expr: domain.NewMatrix(geneIDs(genes), cells),
		CNV:  domain.NewMatrix(geneIDs(genes), []string{"child_0", "child_1"}),
	}
}

// scenarioTree is the root of spec scenarios A and B: clean children A with
// 30 leaves and B with 25 leaves. After normalization B sorts first.
func scenarioTree() *domain.Clade {
	return &domain.Clade{
		Name: "root",
		Children: []*domain.Clade{
			{Name: "A", Children: leafRange("a", 30)},
			{Name: "B", Children: leafRange("b", 25)},
		},
	}
}

func TestAssign_ScenarioA_SplitAndDescend(t *testing.T) {
	cells := cellNames(100)
	builder := &stubBuilder{inputs: totalCNInputs(120, cells)}

	// Roster order after normalization: B (25 leaves) then A (30 leaves).
	assigner := &stubAssigner{fn: func(in *domain.ProfileInputs, repeat int) (*domain.AssignResult, error) {
		assignment := make([]domain.OptionalIndex, len(cells))
		for i := range assignment {
			if i < 60 {
				assignment[i] = domain.Index(1) // A
			} else {
				assignment[i] = domain.Index(0) // B
			}
		}
		scores := make([]float64, in.CNV.RowCount())
		for i := range scores {
			scores[i] = 0.9
		}
		return &domain.AssignResult{
			NoneFreq:          0.1,
			Assignment:        assignment,
			MeanGeneTypeScore: scores,
		}, nil
	}}

	engine := NewEngine(builder, assigner)
	state, err := engine.Assign(context.Background(), scenarioTree(), cells)
	require.NoError(t, err)

	// All 100 cells recommitted to A or B.
	countA, countB := 0, 0
	for _, cell := range cells {
		switch state.CloneAssign[cell] {
		case "A":
			countA++
		case "B":
			countB++
		default:
			t.Fatalf("cell %s still assigned to %s", cell, state.CloneAssign[cell])
		}
	}
	assert.Equal(t, 60, countA)
	assert.Equal(t, 40, countB)

	// One accumulator entry per gene row.
	assert.Len(t, state.GeneTypeScores, 120)
	for gene, scores := range state.GeneTypeScores {
		assert.Len(t, scores, 1, "gene %s", gene)
	}
	assert.Empty(t, state.AlleleAssignProbs)

	// Recursion continued into both children with the split cell sets. The
	// grandchildren are single leaves, so both child visits stop at the
	// child-viability filter without calling the assigner again.
	assert.Equal(t, 1, assigner.calls)
	require.Len(t, builder.calls, 1)
	assert.Len(t, builder.calls[0], 100)

	// A and B themselves were visited, not pruned.
	assert.False(t, state.IsPruned("A"))
	assert.False(t, state.IsPruned("B"))
}

func TestAssign_ScenarioB_LowConfidenceStops(t *testing.T) {
	cells := cellNames(100)
	builder := &stubBuilder{inputs: totalCNInputs(120, cells)}

	assigner := &stubAssigner{fn: func(in *domain.ProfileInputs, repeat int) (*domain.AssignResult, error) {
		assignment := make([]domain.OptionalIndex, len(cells))
		for i := range assignment {
			assignment[i] = domain.Index(i % 2)
		}
		return &domain.AssignResult{NoneFreq: 0.5, Assignment: assignment}, nil
	}}

	engine := NewEngine(builder, assigner)
	state, err := engine.Assign(context.Background(), scenarioTree(), cells)
	require.NoError(t, err)

	// 1-0.5 < 0.7: no commit, cells retain the root assignment.
	for _, cell := range cells {
		assert.Equal(t, "root", state.CloneAssign[cell])
	}
	assert.True(t, state.IsPruned("A"))
	assert.True(t, state.IsPruned("B"))
	assert.Empty(t, state.GeneTypeScores)

	// No further recursion.
	assert.Equal(t, 1, assigner.calls)
}

func TestAssign_RecordWithoutProceed(t *testing.T) {
	// min_record_freq met, min_proceed_freq missed: assignments commit and
	// scores accumulate, but every clean child is pruned.
	cells := cellNames(100)
	builder := &stubBuilder{inputs: totalCNInputs(120, cells)}

	assigner := &stubAssigner{fn: func(in *domain.ProfileInputs, repeat int) (*domain.AssignResult, error) {
		assignment := make([]domain.OptionalIndex, len(cells))
		for i := range assignment {
			assignment[i] = domain.Index(0)
		}
		scores := make([]float64, in.CNV.RowCount())
		return &domain.AssignResult{NoneFreq: 0.25, Assignment: assignment, MeanGeneTypeScore: scores}, nil
	}}

	engine := NewEngine(builder, assigner, WithMinRecordFreq(0.7), WithMinProceedFreq(0.8))
	state, err := engine.Assign(context.Background(), scenarioTree(), cells)
	require.NoError(t, err)

	for _, cell := range cells {
		assert.Equal(t, "B", state.CloneAssign[cell])
	}
	assert.Len(t, state.GeneTypeScores, 120)
	assert.True(t, state.IsPruned("A"))
	assert.True(t, state.IsPruned("B"))
	assert.Equal(t, 1, assigner.calls)
}

func TestAssign_BoundaryCellCount(t *testing.T) {
	tree := func() *domain.Clade {
		return &domain.Clade{
			Name: "root",
			Children: []*domain.Clade{
				{Name: "A", Children: leafRange("a", 10)},
				{Name: "B", Children: leafRange("b", 10)},
			},
		}
	}

	newEngine := func(builder *stubBuilder, assigner *stubAssigner) *Engine {
		return NewEngine(builder, assigner,
			WithMinCellCountExpr(20),
			WithMinCellCountCNV(5),
			WithMinGeneDiff(10),
		)
	}

	t.Run("19 cells prunes immediately", func(t *testing.T) {
		builder := &stubBuilder{inputs: totalCNInputs(50, cellNames(19))}
		assigner := &stubAssigner{fn: func(*domain.ProfileInputs, int) (*domain.AssignResult, error) {
			return &domain.AssignResult{NoneFreq: 1}, nil
		}}
		state, err := newEngine(builder, assigner).Assign(context.Background(), tree(), cellNames(19))
		require.NoError(t, err)

		assert.True(t, state.IsPruned("root"))
		assert.Empty(t, builder.calls)
		assert.Equal(t, 0, assigner.calls)
	})

	t.Run("20 cells proceeds to child filtering", func(t *testing.T) {
		cells := cellNames(20)
		builder := &stubBuilder{inputs: totalCNInputs(50, cells)}
		assigner := &stubAssigner{fn: func(*domain.ProfileInputs, int) (*domain.AssignResult, error) {
			return &domain.AssignResult{NoneFreq: 1, Assignment: make([]domain.OptionalIndex, len(cells))}, nil
		}}
		state, err := newEngine(builder, assigner).Assign(context.Background(), tree(), cells)
		require.NoError(t, err)

		assert.False(t, state.IsPruned("root"))
		assert.Len(t, builder.calls, 1)
		assert.Equal(t, 1, assigner.calls)
	})
}

func TestAssign_BypassSingleCleanChild(t *testing.T) {
	// B falls below the leaf minimum, leaving exactly one clean child: all
	// eligible cells commit to A with no inference call, then traversal
	// descends into A unconditionally.
	tree := &domain.Clade{
		Name: "root",
		Children: []*domain.Clade{
			{Name: "A", Children: leafRange("a", 25)},
			{Name: "B", Children: leafRange("b", 3)},
		},
	}
	cells := cellNames(30)
	builder := &stubBuilder{inputs: totalCNInputs(200, cells)}
	assigner := &stubAssigner{fn: func(*domain.ProfileInputs, int) (*domain.AssignResult, error) {
		return nil, errors.New("must not be called")
	}}

	engine := NewEngine(builder, assigner)
	state, err := engine.Assign(context.Background(), tree, cells)
	require.NoError(t, err)

	for _, cell := range cells {
		assert.Equal(t, "A", state.CloneAssign[cell])
	}
	assert.True(t, state.IsPruned("B"))
	assert.False(t, state.IsPruned("A"))
	assert.Equal(t, 0, assigner.calls)

	// The descent into A stopped at the child-viability filter (every
	// grandchild is a single leaf), so A keeps the frontier without pruning.
	assert.Empty(t, builder.calls)
}

func TestAssign_ZeroCleanChildrenKeepsAssignments(t *testing.T) {
	tree := &domain.Clade{
		Name: "root",
		Children: []*domain.Clade{
			{Name: "A", Children: leafRange("a", 3)},
			{Name: "B", Children: leafRange("b", 2)},
		},
	}
	cells := cellNames(25)
	builder := &stubBuilder{}
	assigner := &stubAssigner{fn: func(*domain.ProfileInputs, int) (*domain.AssignResult, error) {
		return nil, errors.New("must not be called")
	}}

	// Root has 5 leaves total; lower the leaf minimum so the root passes
	// but both children fail.
	engine := NewEngine(builder, assigner, WithMinCellCountCNV(5))
	state, err := engine.Assign(context.Background(), tree, cells)
	require.NoError(t, err)

	for _, cell := range cells {
		assert.Equal(t, "root", state.CloneAssign[cell])
	}
	assert.True(t, state.IsPruned("A"))
	assert.True(t, state.IsPruned("B"))
	// The clade itself stays the frontier without being pruned.
	assert.False(t, state.IsPruned("root"))
	assert.Equal(t, 0, assigner.calls)
}

func TestAssign_LevelCutoff(t *testing.T) {
	// A single-clean-child chain forces a bypass descent past the cutoff.
	inner := &domain.Clade{Name: "inner", Children: leafRange("a", 25)}
	tree := &domain.Clade{
		Name: "root",
		Children: []*domain.Clade{
			inner,
			{Name: "small", Children: leafRange("b", 2)},
		},
	}
	cells := cellNames(30)
	builder := &stubBuilder{}
	assigner := &stubAssigner{fn: func(*domain.ProfileInputs, int) (*domain.AssignResult, error) {
		return nil, errors.New("must not be called")
	}}

	engine := NewEngine(builder, assigner, WithLevelCutoff(0))
	state, err := engine.Assign(context.Background(), tree, cells)
	require.NoError(t, err)

	// Bypass committed cells to inner, then the level-1 visit hit the guard.
	for _, cell := range cells {
		assert.Equal(t, "inner", state.CloneAssign[cell])
	}
	assert.True(t, state.IsPruned("inner"))
}

func TestAssign_NoUsableInputPrunesChildren(t *testing.T) {
	cells := cellNames(100)
	builder := &stubBuilder{inputs: &domain.ProfileInputs{}}
	assigner := &stubAssigner{fn: func(*domain.ProfileInputs, int) (*domain.AssignResult, error) {
		return nil, errors.New("must not be called")
	}}

	engine := NewEngine(builder, assigner)
	state, err := engine.Assign(context.Background(), scenarioTree(), cells)
	require.NoError(t, err)

	assert.True(t, state.IsPruned("A"))
	assert.True(t, state.IsPruned("B"))
	assert.Equal(t, 0, assigner.calls)
	for _, cell := range cells {
		assert.Equal(t, "root", state.CloneAssign[cell])
	}
}

func TestAssign_LowSignalPrunesChildren(t *testing.T) {
	cells := cellNames(100)
	// Valid track, but only 10 discriminating genes against a minimum of 100.
	builder := &stubBuilder{inputs: totalCNInputs(10, cells)}
	assigner := &stubAssigner{fn: func(*domain.ProfileInputs, int) (*domain.AssignResult, error) {
		return nil, errors.New("must not be called")
	}}

	engine := NewEngine(builder, assigner)
	state, err := engine.Assign(context.Background(), scenarioTree(), cells)
	require.NoError(t, err)

	assert.True(t, state.IsPruned("A"))
	assert.True(t, state.IsPruned("B"))
	assert.Equal(t, 0, assigner.calls)
}

func TestAssign_MissingIndexKeepsPriorAssignment(t *testing.T) {
	cells := cellNames(100)
	builder := &stubBuilder{inputs: totalCNInputs(120, cells)}

	assigner := &stubAssigner{fn: func(*domain.ProfileInputs, int) (*domain.AssignResult, error) {
		assignment := make([]domain.OptionalIndex, len(cells))
		for i := range assignment {
			if i == 7 {
				continue // missing
			}
			assignment[i] = domain.Index(i % 2)
		}
		return &domain.AssignResult{NoneFreq: 0.01, Assignment: assignment}, nil
	}}

	engine := NewEngine(builder, assigner)
	state, err := engine.Assign(context.Background(), scenarioTree(), cells)
	require.NoError(t, err)

	// cell_007 keeps the root assignment and joins no recursive subset.
	assert.Equal(t, "root", state.CloneAssign["cell_007"])
	for i, cell := range cells {
		if i == 7 {
			continue
		}
		assert.Contains(t, []string{"A", "B"}, state.CloneAssign[cell])
	}
}

func TestAssign_AssignerFailureIsFatal(t *testing.T) {
	cells := cellNames(100)
	builder := &stubBuilder{inputs: totalCNInputs(120, cells)}
	boom := errors.New("elbo diverged")
	assigner := &stubAssigner{fn: func(*domain.ProfileInputs, int) (*domain.AssignResult, error) {
		return nil, boom
	}}

	engine := NewEngine(builder, assigner)
	state, err := engine.Assign(context.Background(), scenarioTree(), cells)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "root")

	// The state stays total even on abort.
	require.NotNil(t, state)
	for _, cell := range cells {
		assert.Equal(t, "root", state.CloneAssign[cell])
	}
}

func TestAssign_Deterministic(t *testing.T) {
	run := func() *domain.AssignmentState {
		cells := cellNames(100)
		builder := &stubBuilder{inputs: totalCNInputs(120, cells)}
		assigner := &stubAssigner{fn: func(in *domain.ProfileInputs, repeat int) (*domain.AssignResult, error) {
			assignment := make([]domain.OptionalIndex, len(cells))
			for i := range assignment {
				assignment[i] = domain.Index(i % 2)
			}
			scores := make([]float64, in.CNV.RowCount())
			for i := range scores {
				scores[i] = float64(i) / 100
			}
			return &domain.AssignResult{NoneFreq: 0.1, Assignment: assignment, MeanGeneTypeScore: scores}, nil
		}}
		engine := NewEngine(builder, assigner)
		state, err := engine.Assign(context.Background(), scenarioTree(), cells)
		require.NoError(t, err)
		return state
	}

	first := run()
	second := run()
	assert.Equal(t, first.CloneAssign, second.CloneAssign)
	assert.Equal(t, first.Pruned, second.Pruned)
	assert.Equal(t, first.GeneTypeScores, second.GeneTypeScores)
	assert.Equal(t, first.AlleleAssignProbs, second.AlleleAssignProbs)
}

func TestAssign_DiagnosticsSnapshots(t *testing.T) {
	cells := cellNames(100)
	builder := &stubBuilder{inputs: totalCNInputs(120, cells)}
	assigner := &stubAssigner{fn: func(*domain.ProfileInputs, int) (*domain.AssignResult, error) {
		return &domain.AssignResult{NoneFreq: 0.5, Assignment: make([]domain.OptionalIndex, len(cells))}, nil
	}}

	engine := NewEngine(builder, assigner, WithDiagnostics(true))
	state, err := engine.Assign(context.Background(), scenarioTree(), cells)
	require.NoError(t, err)

	require.Contains(t, state.Params, "root")
	snap := state.Params["root"]
	assert.Equal(t, 0, snap.Level)
	assert.NotNil(t, snap.Inputs)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 0.5, snap.Result.NoneFreq)
}

func TestAssign_HooksReceiveStructuredDiagnostics(t *testing.T) {
	cells := cellNames(19)
	var prunes []*domain.PruneEvent
	engine := NewEngine(&stubBuilder{}, &stubAssigner{fn: func(*domain.ProfileInputs, int) (*domain.AssignResult, error) {
		return nil, errors.New("must not be called")
	}}, WithHooks(domain.TraversalHooks{
		OnPrune: func(_ context.Context, ev *domain.PruneEvent) {
			prunes = append(prunes, ev)
		},
	}))

	_, err := engine.Assign(context.Background(), scenarioTree(), cells)
	require.NoError(t, err)

	require.NotEmpty(t, prunes)
	assert.Equal(t, "root", prunes[0].Clade)
	assert.Equal(t, domain.PruneTooFewCells, prunes[0].Reason)
	assert.Equal(t, "min_cell_count_expr", prunes[0].Threshold)
	assert.Equal(t, float64(19), prunes[0].Actual)
	assert.Equal(t, float64(20), prunes[0].Required)
}
