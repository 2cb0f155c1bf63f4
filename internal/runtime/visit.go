package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/molonc/treealign/pkg/domain"
)

// visit runs the per-clade decision cascade:
//
//  1. depth guard
//  2. availability guard (eligible cells, descendant leaves)
//  3. child viability filter
//  4. degenerate cases (zero or one clean child)
//  5. input construction and gating
//  6. inference
//  7. recording decision
//  8. proceed decision
//
// Guard failures prune and return nil; only collaborator failures return an
// error, which aborts the whole traversal.
func (e *Engine) visit(ctx context.Context, state *domain.AssignmentState, clade *domain.Clade, cells []string, level int) error {
	leaves := clade.Leaves()
	e.emitVisit(ctx, &domain.VisitEvent{
		Clade:     clade.Name,
		Level:     level,
		CellCount: len(cells),
		LeafCount: len(leaves),
		Timestamp: time.Now(),
	})
	log := e.logger.With("clade", clade.Name, "level", level)

	// 1. Depth guard. Terminal, non-retryable.
	if level > e.levelCutoff {
		state.Prune(clade.Name)
		e.emitPrune(ctx, clade.Name, domain.PruneLevelCutoff, "level_cutoff", float64(level), float64(e.levelCutoff))
		log.Info("level limit exceeded", "cutoff", e.levelCutoff)
		return nil
	}

	// 2. Availability guard.
	if len(cells) < e.minCellCountExpr || len(leaves) < e.minCellCountCNV {
		state.Prune(clade.Name)
		if len(cells) < e.minCellCountExpr {
			e.emitPrune(ctx, clade.Name, domain.PruneTooFewCells, "min_cell_count_expr", float64(len(cells)), float64(e.minCellCountExpr))
			log.Info("too few eligible cells", "cells", len(cells), "required", e.minCellCountExpr)
		}
		if len(leaves) < e.minCellCountCNV {
			e.emitPrune(ctx, clade.Name, domain.PruneTooFewLeaves, "min_cell_count_cnv", float64(len(leaves)), float64(e.minCellCountCNV))
			log.Info("too few descendant leaves", "leaves", len(leaves), "required", e.minCellCountCNV)
		}
		return nil
	}

	// 3. Child viability filter. A child below the leaf-count minimum is
	// pruned immediately and receives no cells, ever.
	var roster []*domain.Clade
	var leafSets [][]string
	for _, child := range clade.Children {
		childLeaves := child.Leaves()
		if len(childLeaves) < e.minCellCountCNV {
			state.Prune(child.Name)
			e.emitPrune(ctx, child.Name, domain.PruneTooFewLeaves, "min_cell_count_cnv", float64(len(childLeaves)), float64(e.minCellCountCNV))
			log.Debug("child below leaf minimum", "child", child.Name, "leaves", len(childLeaves))
			continue
		}
		roster = append(roster, child)
		leafSets = append(leafSets, childLeaves)
	}

	// 4. Degenerate cases.
	if len(roster) == 0 {
		// The clade itself stays the frontier; cells keep their assignment.
		log.Info("no clean child clade")
		return nil
	}
	if len(roster) == 1 {
		// Bypass: one viable path, no inference needed.
		state.AssignAll(cells, roster[0].Name)
		e.emitCommit(ctx, &domain.CommitEvent{
			Clade:     clade.Name,
			Children:  []string{roster[0].Name},
			CellCount: len(cells),
			Bypass:    true,
			Timestamp: time.Now(),
		})
		log.Info("single clean child, descending unconditionally", "child", roster[0].Name)
		return e.visit(ctx, state, roster[0], cells, level+1)
	}

	for _, child := range roster {
		log.Debug("clean child clade", "child", child.Name, "leaves", child.LeafCount())
	}

	// 5. Input construction and gating.
	inputs, err := e.builder.Build(ctx, leafSets, cells)
	if err != nil {
		return fmt.Errorf("build consensus inputs for clade %s: %w", clade.Name, err)
	}
	gate := classify(inputs)

	if !gate.TotalCNUsable && !gate.AlleleUsable {
		for _, child := range roster {
			state.Prune(child.Name)
			e.emitPrune(ctx, child.Name, domain.PruneNoUsableInput, "valid_input", 0, 1)
		}
		log.Info("no usable input track, stopping")
		return nil
	}
	if gate.GeneCount < e.minGeneDiff && gate.SNPCount < e.minSNPDiff {
		for _, child := range roster {
			state.Prune(child.Name)
			e.emitPrune(ctx, child.Name, domain.PruneLowSignal, "min_gene_diff", float64(gate.GeneCount), float64(e.minGeneDiff))
		}
		log.Info("insufficient discriminating signal",
			"gene_count", gate.GeneCount, "min_gene_diff", e.minGeneDiff,
			"snp_count", gate.SNPCount, "min_snp_diff", e.minSNPDiff)
		return nil
	}

	// Blank out unusable tracks so the assigner only sees valid tables.
	run := *inputs
	if !gate.TotalCNUsable {
		run.Expr, run.CNV = nil, nil
	}
	if !gate.AlleleUsable {
		run.HSCN, run.SNVAllele, run.SNV = nil, nil, nil
	}

	if state.Params != nil {
		state.Params[clade.Name] = &domain.VisitSnapshot{
			Clade:  clade.Name,
			Level:  level,
			Cells:  cells,
			Inputs: &run,
		}
	}

	// 6. Inference. The one fatal condition: an assigner error propagates.
	log.Info("running clone assignment",
		"children", len(roster), "cells", len(cells),
		"gene_count", gate.GeneCount, "snp_count", gate.SNPCount)
	started := time.Now()
	result, err := e.assigner.Run(ctx, &run, e.repeat)
	if err != nil {
		return fmt.Errorf("assigner failed at clade %s: %w", clade.Name, err)
	}
	e.emitInference(ctx, &domain.InferenceEvent{
		Clade:     clade.Name,
		NoneFreq:  result.NoneFreq,
		GeneCount: gate.GeneCount,
		SNPCount:  gate.SNPCount,
		Duration:  time.Since(started),
		Timestamp: time.Now(),
	})
	if state.Params != nil {
		state.Params[clade.Name].Result = result
	}

	assignedFreq := 1 - result.NoneFreq

	// 7. Recording decision.
	recorded := assignedFreq >= e.minRecordFreq
	if recorded {
		state.Commit(cells, result.Assignment, roster)
		if gate.TotalCNUsable {
			state.AccumulateGeneTypeScores(run.CNV.RowIDs, result.MeanGeneTypeScore)
		}
		if gate.AlleleUsable {
			state.AccumulateAlleleAssignProbs(run.HSCN.RowIDs, result.MeanAlleleAssignProb)
		}
		rosterNames := make([]string, len(roster))
		for i, child := range roster {
			rosterNames[i] = child.Name
		}
		e.emitCommit(ctx, &domain.CommitEvent{
			Clade:     clade.Name,
			Children:  rosterNames,
			CellCount: len(cells),
			Timestamp: time.Now(),
		})
	}

	// 8. Proceed decision.
	if recorded && assignedFreq >= e.minProceedFreq {
		log.Info("proceeding to next level", "assigned_freq", assignedFreq)
		for i, child := range roster {
			var subset []string
			for k, cell := range cells {
				if k < len(result.Assignment) && result.Assignment[k].Valid && result.Assignment[k].Index == i {
					subset = append(subset, cell)
				}
			}
			if err := e.visit(ctx, state, child, subset, level+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, child := range roster {
		state.Prune(child.Name)
		e.emitPrune(ctx, child.Name, domain.PruneLowConfidence, "min_proceed_freq", assignedFreq, e.minProceedFreq)
	}
	log.Info("stopping with low assignment frequency", "assigned_freq", assignedFreq)
	return nil
}

func (e *Engine) emitVisit(ctx context.Context, ev *domain.VisitEvent) {
	if e.hooks.OnVisit != nil {
		e.hooks.OnVisit(ctx, ev)
	}
}

func (e *Engine) emitPrune(ctx context.Context, clade string, reason domain.PruneReason, threshold string, actual, required float64) {
	if e.hooks.OnPrune != nil {
		e.hooks.OnPrune(ctx, &domain.PruneEvent{
			Clade:     clade,
			Reason:    reason,
			Threshold: threshold,
			Actual:    actual,
			Required:  required,
			Timestamp: time.Now(),
		})
	}
}

func (e *Engine) emitCommit(ctx context.Context, ev *domain.CommitEvent) {
	if e.hooks.OnCommit != nil {
		e.hooks.OnCommit(ctx, ev)
	}
}

func (e *Engine) emitInference(ctx context.Context, ev *domain.InferenceEvent) {
	if e.hooks.OnInference != nil {
		e.hooks.OnInference(ctx, ev)
	}
}
