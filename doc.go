/*
Package treealign assigns profiled single cells to the nodes of a clonal
lineage tree, refining each assignment level by level as confidence permits.

The engine walks the tree depth-first. At every clade it decides whether to
stop (insufficient data, signal or confidence), skip a level (exactly one
viable child), or commit a probabilistic split and descend into multiple
children, while maintaining one consistent assignment record for the whole
run. The statistical inference itself is external: the engine consults a
ProfileBuilder for per-child consensus inputs and an Assigner for the
aggregated clone-assignment result, both pluggable behind ports.

# Key properties

  - Totality: every input cell has an assignment when the run finishes, even
    when traversal stops at the root.
  - Monotone refinement: an assignment only ever moves deeper along the
    root-to-leaf path, never back up.
  - Determinism: children are visited in a stable order (ascending leaf
    count); identical inputs plus a deterministic Assigner reproduce the run
    exactly.
  - Non-fatal guards: every stopping decision is reported as a structured
    diagnostic, not an error. Only a collaborator failure aborts a run.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/molonc/treealign"
	)

	func main() {
		eng, err := treealign.New(myBuilder, myAssigner,
			treealign.WithLevelCutoff(6),
		)
		if err != nil {
			log.Fatal(err)
		}

		result, err := eng.Assign(context.Background(), tree, cells)
		if err != nil {
			log.Fatal(err)
		}

		for cell, clade := range result.CloneAssign {
			log.Printf("%s -> %s", cell, clade)
		}
	}
*/
package treealign
