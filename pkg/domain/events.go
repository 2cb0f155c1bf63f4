package domain

import (
	"context"
	"time"
)

// PruneReason classifies why traversal stopped at a clade. Guard failures
// are diagnostics, never errors.
type PruneReason string

const (
	// PruneLevelCutoff: the visit exceeded the configured depth limit.
	PruneLevelCutoff PruneReason = "level_cutoff"
	// PruneTooFewCells: fewer eligible cells than min_cell_count_expr.
	PruneTooFewCells PruneReason = "too_few_cells"
	// PruneTooFewLeaves: fewer descendant leaves than min_cell_count_cnv.
	PruneTooFewLeaves PruneReason = "too_few_leaves"
	// PruneNoUsableInput: neither data track produced a valid input table.
	PruneNoUsableInput PruneReason = "no_usable_input"
	// PruneLowSignal: both tracks fall below their discriminating-row minimum.
	PruneLowSignal PruneReason = "low_signal"
	// PruneLowConfidence: the assignment frequency missed a threshold.
	PruneLowConfidence PruneReason = "low_confidence"
)

// VisitEvent is emitted when the engine enters a clade.
type VisitEvent struct {
	Clade     string    `json:"clade"`
	Level     int       `json:"level"`
	CellCount int       `json:"cell_count"`
	LeafCount int       `json:"leaf_count"`
	Timestamp time.Time `json:"timestamp"`
}

// PruneEvent is emitted when a clade is added to the frontier. Threshold
// names the guard that failed; Actual and Required carry the compared values.
type PruneEvent struct {
	Clade     string      `json:"clade"`
	Reason    PruneReason `json:"reason"`
	Threshold string      `json:"threshold"`
	Actual    float64     `json:"actual"`
	Required  float64     `json:"required"`
	Timestamp time.Time   `json:"timestamp"`
}

// CommitEvent is emitted after cells are committed to children of a clade.
type CommitEvent struct {
	Clade     string    `json:"clade"`
	Children  []string  `json:"children"`
	CellCount int       `json:"cell_count"`
	Bypass    bool      `json:"bypass"`
	Timestamp time.Time `json:"timestamp"`
}

// InferenceEvent is emitted after a successful Assigner call.
type InferenceEvent struct {
	Clade     string        `json:"clade"`
	NoneFreq  float64       `json:"none_freq"`
	GeneCount int           `json:"gene_count"`
	SNPCount  int           `json:"snp_count"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// TraversalHooks defines callbacks for engine observability. All hooks are
// optional and are invoked from the traversal goroutine.
type TraversalHooks struct {
	OnVisit     func(context.Context, *VisitEvent)
	OnPrune     func(context.Context, *PruneEvent)
	OnCommit    func(context.Context, *CommitEvent)
	OnInference func(context.Context, *InferenceEvent)
}
