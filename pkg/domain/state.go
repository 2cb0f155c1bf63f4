package domain

// AssignmentState is the single mutable record of a traversal run. It is
// created fresh per run, mutated by every visit, and read at the end.
// Assignments only ever become more specific (deeper in the tree); the
// pruned set only ever grows. Not safe for concurrent mutation: the
// reference traversal is strictly sequential.
type AssignmentState struct {
	// CloneAssign maps cell identifier to the deepest clade name committed
	// so far. Total over all input cells once Initialize has run.
	CloneAssign map[string]string

	// Pruned is the assignment frontier: clade names where traversal
	// permanently stopped.
	Pruned map[string]struct{}

	// GeneTypeScores accumulates per-gene scores across all recording
	// visits, in visit order.
	GeneTypeScores map[string][]float64

	// AlleleAssignProbs accumulates per-SNP allele assignment probabilities
	// across all recording visits, in visit order.
	AlleleAssignProbs map[string][]float64

	// Params holds per-clade input/output snapshots. Nil unless diagnostics
	// were requested.
	Params map[string]*VisitSnapshot
}

// VisitSnapshot captures the inputs handed to the Assigner and the result it
// returned for one clade visit.
type VisitSnapshot struct {
	Clade  string         `json:"clade"`
	Level  int            `json:"level"`
	Cells  []string       `json:"cells"`
	Inputs *ProfileInputs `json:"inputs,omitempty"`
	Result *AssignResult  `json:"result,omitempty"`
}

// NewAssignmentState creates an empty state. Pass diagnostics=true to enable
// per-clade snapshot recording.
func NewAssignmentState(diagnostics bool) *AssignmentState {
	s := &AssignmentState{
		CloneAssign:       make(map[string]string),
		Pruned:            make(map[string]struct{}),
		GeneTypeScores:    make(map[string][]float64),
		AlleleAssignProbs: make(map[string][]float64),
	}
	if diagnostics {
		s.Params = make(map[string]*VisitSnapshot)
	}
	return s
}

// Initialize assigns every cell to the root clade name, guaranteeing a total
// assignment even if the root is pruned immediately.
func (s *AssignmentState) Initialize(cells []string, rootName string) {
	for _, cell := range cells {
		s.CloneAssign[cell] = rootName
	}
}

// AssignAll commits every cell to the named clade unconditionally. Used on
// the single-clean-child bypass path.
func (s *AssignmentState) AssignAll(cells []string, cladeName string) {
	for _, cell := range cells {
		s.CloneAssign[cell] = cladeName
	}
}

// Commit overwrites the assignment of each cell whose index is present with
// the name of the indexed roster clade. Cells with a missing index keep
// their prior, shallower assignment.
func (s *AssignmentState) Commit(cells []string, assignment []OptionalIndex, roster []*Clade) {
	for i, cell := range cells {
		if i >= len(assignment) || !assignment[i].Valid {
			continue
		}
		idx := assignment[i].Index
		if idx < 0 || idx >= len(roster) {
			continue
		}
		s.CloneAssign[cell] = roster[idx].Name
	}
}

// AccumulateGeneTypeScores appends one score per gene row to the gene-type
// accumulator, creating lists on first use.
func (s *AssignmentState) AccumulateGeneTypeScores(rowIDs []string, values []float64) {
	accumulate(s.GeneTypeScores, rowIDs, values)
}

// AccumulateAlleleAssignProbs appends one probability per SNP row to the
// allele accumulator, creating lists on first use.
func (s *AssignmentState) AccumulateAlleleAssignProbs(rowIDs []string, values []float64) {
	accumulate(s.AlleleAssignProbs, rowIDs, values)
}

func accumulate(dst map[string][]float64, rowIDs []string, values []float64) {
	for i := range values {
		if i >= len(rowIDs) {
			return
		}
		dst[rowIDs[i]] = append(dst[rowIDs[i]], values[i])
	}
}

// Prune adds the clade to the frontier. Idempotent.
func (s *AssignmentState) Prune(cladeName string) {
	s.Pruned[cladeName] = struct{}{}
}

// IsPruned reports whether the clade is on the frontier.
func (s *AssignmentState) IsPruned(cladeName string) bool {
	_, ok := s.Pruned[cladeName]
	return ok
}
