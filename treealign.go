package treealign

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/molonc/treealign/internal/runtime"
	"github.com/molonc/treealign/pkg/domain"
	"github.com/molonc/treealign/pkg/ports"
)

// Engine is the high-level entry point for the treealign library. It wraps
// the internal traversal runtime and freezes its state into a Result.
type Engine struct {
	runtime     *runtime.Engine
	runtimeOpts []runtime.EngineOption
	builder     ports.ProfileBuilder
	assigner    ports.Assigner
	logger      *slog.Logger
	hooks       domain.TraversalHooks
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability callbacks for traversal events.
func WithHooks(hooks domain.TraversalHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMinCellCountExpr sets the minimum eligible-cell count per visit.
func WithMinCellCountExpr(n int) Option {
	return runtimeOption(runtime.WithMinCellCountExpr(n))
}

// WithMinCellCountCNV sets the minimum descendant-leaf count per clade.
func WithMinCellCountCNV(n int) Option {
	return runtimeOption(runtime.WithMinCellCountCNV(n))
}

// WithMinGeneDiff sets the minimum discriminating gene count.
func WithMinGeneDiff(n int) Option {
	return runtimeOption(runtime.WithMinGeneDiff(n))
}

// WithMinSNPDiff sets the minimum discriminating SNP count.
func WithMinSNPDiff(n int) Option {
	return runtimeOption(runtime.WithMinSNPDiff(n))
}

// WithLevelCutoff caps the recursion depth.
func WithLevelCutoff(n int) Option {
	return runtimeOption(runtime.WithLevelCutoff(n))
}

// WithMinRecordFreq sets the confidence needed to commit assignments.
func WithMinRecordFreq(f float64) Option {
	return runtimeOption(runtime.WithMinRecordFreq(f))
}

// WithMinProceedFreq sets the confidence needed to descend further.
func WithMinProceedFreq(f float64) Option {
	return runtimeOption(runtime.WithMinProceedFreq(f))
}

// WithRepeat sets the number of inference trials per Assigner call.
func WithRepeat(n int) Option {
	return runtimeOption(runtime.WithRepeat(n))
}

// WithDiagnostics enables per-clade input/output snapshots on the result.
func WithDiagnostics(enabled bool) Option {
	return runtimeOption(runtime.WithDiagnostics(enabled))
}

func runtimeOption(opt runtime.EngineOption) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, opt)
	}
}

// New initializes a treealign Engine around the two external collaborators.
func New(builder ports.ProfileBuilder, assigner ports.Assigner, opts ...Option) (*Engine, error) {
	if builder == nil {
		return nil, fmt.Errorf("a ProfileBuilder is required")
	}
	if assigner == nil {
		return nil, fmt.Errorf("an Assigner is required")
	}

	eng := &Engine{builder: builder, assigner: assigner}
	for _, opt := range opts {
		opt(eng)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithHooks(eng.hooks),
	}
	if eng.logger != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithLogger(eng.logger))
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)

	eng.runtime = runtime.NewEngine(builder, assigner, runtimeOpts...)
	return eng, nil
}

// Assign runs a full traversal over the tree. cells is the eligible-cell
// universe; every cell has an assignment in the returned result. The result
// carries a fresh run ID and timestamps.
//
// An Assigner failure aborts the traversal and is returned as an error;
// callers needing partial-result resilience must handle it themselves.
func (e *Engine) Assign(ctx context.Context, tree *domain.Clade, cells []string) (*domain.Result, error) {
	started := time.Now().UTC()
	state, err := e.runtime.Assign(ctx, tree, cells)
	if err != nil {
		return nil, err
	}

	result := domain.NewResult(uuid.NewString(), tree.Name, state)
	result.StartedAt = started
	result.FinishedAt = time.Now().UTC()
	return result, nil
}
