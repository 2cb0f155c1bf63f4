package domain

import (
	"sort"
	"time"
)

// Result is the final output surface of a traversal run, suitable for
// persistence and serialization.
type Result struct {
	RunID             string                    `json:"run_id"`
	Root              string                    `json:"root"`
	CloneAssign       map[string]string         `json:"clone_assign"`
	PrunedClades      []string                  `json:"pruned_clades"`
	GeneTypeScores    map[string][]float64      `json:"gene_type_scores,omitempty"`
	AlleleAssignProbs map[string][]float64      `json:"allele_assign_probs,omitempty"`
	Params            map[string]*VisitSnapshot `json:"params,omitempty"`
	StartedAt         time.Time                 `json:"started_at"`
	FinishedAt        time.Time                 `json:"finished_at"`
}

// NewResult freezes an AssignmentState into a Result. The pruned set is
// sorted for stable serialization; the accumulator maps keep their
// order-sensitive per-row lists untouched.
func NewResult(runID, root string, state *AssignmentState) *Result {
	pruned := make([]string, 0, len(state.Pruned))
	for name := range state.Pruned {
		pruned = append(pruned, name)
	}
	sort.Strings(pruned)

	return &Result{
		RunID:             runID,
		Root:              root,
		CloneAssign:       state.CloneAssign,
		PrunedClades:      pruned,
		GeneTypeScores:    state.GeneTypeScores,
		AlleleAssignProbs: state.AlleleAssignProbs,
		Params:            state.Params,
	}
}
