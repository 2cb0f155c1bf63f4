package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/molonc/treealign/pkg/domain"
	"github.com/molonc/treealign/pkg/ports"
)

// Default thresholds of the traversal policy.
const (
	DefaultMinCellCountExpr = 20
	DefaultMinCellCountCNV  = 20
	DefaultMinGeneDiff      = 100
	DefaultMinSNPDiff       = 100
	DefaultLevelCutoff      = 10
	DefaultMinRecordFreq    = 0.7
	DefaultMinProceedFreq   = 0.7
	DefaultRepeat           = 10
)

// Engine is the recursive descent core. It walks the lineage tree node by
// node, deciding at each clade whether to stop, bypass, or split, while
// mutating a single AssignmentState. Exactly one visit is active at a time.
type Engine struct {
	builder  ports.ProfileBuilder
	assigner ports.Assigner

	logger *slog.Logger
	hooks  domain.TraversalHooks

	minCellCountExpr int
	minCellCountCNV  int
	minGeneDiff      int
	minSNPDiff       int
	levelCutoff      int
	minRecordFreq    float64
	minProceedFreq   float64
	repeat           int
	diagnostics      bool
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger for traversal diagnostics.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHooks registers observability callbacks.
func WithHooks(hooks domain.TraversalHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMinCellCountExpr sets the minimum eligible-cell count per visit.
func WithMinCellCountExpr(n int) EngineOption {
	return func(e *Engine) { e.minCellCountExpr = n }
}

// WithMinCellCountCNV sets the minimum descendant-leaf count per clade.
func WithMinCellCountCNV(n int) EngineOption {
	return func(e *Engine) { e.minCellCountCNV = n }
}

// WithMinGeneDiff sets the minimum discriminating gene count.
func WithMinGeneDiff(n int) EngineOption {
	return func(e *Engine) { e.minGeneDiff = n }
}

// WithMinSNPDiff sets the minimum discriminating SNP count.
func WithMinSNPDiff(n int) EngineOption {
	return func(e *Engine) { e.minSNPDiff = n }
}

// WithLevelCutoff caps the recursion depth.
func WithLevelCutoff(n int) EngineOption {
	return func(e *Engine) { e.levelCutoff = n }
}

// WithMinRecordFreq sets the confidence needed to commit assignments.
func WithMinRecordFreq(f float64) EngineOption {
	return func(e *Engine) { e.minRecordFreq = f }
}

// WithMinProceedFreq sets the confidence needed to descend further.
func WithMinProceedFreq(f float64) EngineOption {
	return func(e *Engine) { e.minProceedFreq = f }
}

// WithRepeat sets the number of inference trials per Assigner call.
func WithRepeat(n int) EngineOption {
	return func(e *Engine) { e.repeat = n }
}

// WithDiagnostics enables per-clade input/output snapshots on the state.
func WithDiagnostics(enabled bool) EngineOption {
	return func(e *Engine) { e.diagnostics = enabled }
}

// NewEngine creates an engine with default thresholds.
func NewEngine(builder ports.ProfileBuilder, assigner ports.Assigner, opts ...EngineOption) *Engine {
	e := &Engine{
		builder:          builder,
		assigner:         assigner,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		minCellCountExpr: DefaultMinCellCountExpr,
		minCellCountCNV:  DefaultMinCellCountCNV,
		minGeneDiff:      DefaultMinGeneDiff,
		minSNPDiff:       DefaultMinSNPDiff,
		levelCutoff:      DefaultLevelCutoff,
		minRecordFreq:    DefaultMinRecordFreq,
		minProceedFreq:   DefaultMinProceedFreq,
		repeat:           DefaultRepeat,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Assign normalizes the tree, seeds every cell to the root, and descends
// from the root at level 0. The returned state is total over cells and is
// valid even when an error aborted the traversal partway.
func (e *Engine) Assign(ctx context.Context, root *domain.Clade, cells []string) (*domain.AssignmentState, error) {
	if root == nil {
		return nil, fmt.Errorf("tree root is required")
	}
	if err := Normalize(root); err != nil {
		return nil, fmt.Errorf("normalize tree: %w", err)
	}

	state := domain.NewAssignmentState(e.diagnostics)
	state.Initialize(cells, root.Name)

	if err := e.visit(ctx, state, root, cells, 0); err != nil {
		return state, err
	}
	return state, nil
}
