// Package cli wires configuration, adapters and the engine together for the
// treealign commands.
package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/molonc/treealign"
	"github.com/molonc/treealign/internal/adapters/csvfile"
	"github.com/molonc/treealign/internal/adapters/newick"
	"github.com/molonc/treealign/internal/adapters/process"
	redisstore "github.com/molonc/treealign/internal/adapters/redis"
	"github.com/molonc/treealign/internal/config"
	"github.com/molonc/treealign/internal/profile"
	"github.com/molonc/treealign/pkg/domain"
	"github.com/molonc/treealign/pkg/observability"
)

// RunOptions holds the flags of the run command.
type RunOptions struct {
	ConfigPath string
	OutputDir  string
}

// RunAssignment executes one full traversal: load inputs, assign, write
// outputs, and optionally persist the result to Redis.
func RunAssignment(opts RunOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := createLogger(cfg.LogLevel)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	tree, err := loadTree(cfg.Inputs.Tree)
	if err != nil {
		return err
	}

	matrices, err := loadMatrices(cfg.Inputs)
	if err != nil {
		return err
	}
	cells := eligibleCells(matrices)
	if len(cells) == 0 {
		return fmt.Errorf("no eligible cells in the input matrices")
	}

	if cfg.Assigner.Command == "" {
		return fmt.Errorf("assigner.command is required")
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	engine, err := treealign.New(
		profile.NewBuilder(matrices),
		process.NewAssigner(cfg.Assigner.Command, cfg.Assigner.Args...),
		treealign.WithLogger(logger),
		treealign.WithHooks(metrics.Hooks()),
		treealign.WithMinCellCountExpr(cfg.Thresholds.MinCellCountExpr),
		treealign.WithMinCellCountCNV(cfg.Thresholds.MinCellCountCNV),
		treealign.WithMinGeneDiff(cfg.Thresholds.MinGeneDiff),
		treealign.WithMinSNPDiff(cfg.Thresholds.MinSNPDiff),
		treealign.WithLevelCutoff(cfg.Thresholds.LevelCutoff),
		treealign.WithMinRecordFreq(cfg.Thresholds.MinRecordFreq),
		treealign.WithMinProceedFreq(cfg.Thresholds.MinProceedFreq),
		treealign.WithRepeat(cfg.Thresholds.Repeat),
		treealign.WithDiagnostics(cfg.Diagnostics),
	)
	if err != nil {
		return err
	}

	logger.Info("starting assignment",
		"root", tree.Name,
		"cells", len(cells),
		"leaves", tree.LeafCount())

	result, err := engine.Assign(sigCtx, tree, cells)
	if err != nil {
		return fmt.Errorf("assignment failed: %w", err)
	}

	logger.Info("assignment finished",
		"run_id", result.RunID,
		"pruned_clades", len(result.PrunedClades),
		"duration", result.FinishedAt.Sub(result.StartedAt))

	if opts.OutputDir != "" {
		if err := writeOutputs(opts.OutputDir, result); err != nil {
			return err
		}
	}

	if cfg.Redis.Addr != "" {
		store := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer store.Close()
		if err := store.Save(sigCtx, result.RunID, result); err != nil {
			return fmt.Errorf("save result to redis: %w", err)
		}
		logger.Info("result saved", "run_id", result.RunID, "redis", cfg.Redis.Addr)
	}

	fmt.Println(result.RunID)
	return nil
}

func loadTree(path string) (*domain.Clade, error) {
	if path == "" {
		return nil, fmt.Errorf("inputs.tree is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tree: %w", err)
	}
	defer f.Close()

	tree, err := newick.New().Load(f)
	if err != nil {
		return nil, fmt.Errorf("parse tree %s: %w", path, err)
	}
	return tree, nil
}

func loadMatrices(in config.Inputs) (profile.Matrices, error) {
	var m profile.Matrices
	var err error

	if m.Expr, err = csvfile.ReadMatrix(in.Expr); err != nil {
		return m, fmt.Errorf("load expr matrix: %w", err)
	}
	if m.CNV, err = csvfile.ReadMatrix(in.CNV); err != nil {
		return m, fmt.Errorf("load cnv matrix: %w", err)
	}
	if m.HSCN, err = csvfile.ReadMatrix(in.HSCN); err != nil {
		return m, fmt.Errorf("load hscn matrix: %w", err)
	}
	if m.SNVAllele, err = csvfile.ReadMatrix(in.SNVAllele); err != nil {
		return m, fmt.Errorf("load snv allele matrix: %w", err)
	}
	if m.SNV, err = csvfile.ReadMatrix(in.SNV); err != nil {
		return m, fmt.Errorf("load snv matrix: %w", err)
	}
	return m, nil
}

// eligibleCells is the union of the cell columns across the per-cell
// matrices, in first-seen order.
func eligibleCells(m profile.Matrices) []string {
	seen := make(map[string]struct{})
	var cells []string
	for _, mat := range []*domain.Matrix{m.Expr, m.SNVAllele, m.SNV} {
		if mat == nil {
			continue
		}
		for _, id := range mat.ColIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			cells = append(cells, id)
		}
	}
	return cells
}

func writeOutputs(dir string, result *domain.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeAssignments(filepath.Join(dir, "clone_assignments.csv"), result.CloneAssign); err != nil {
		return err
	}
	if err := writeLines(filepath.Join(dir, "pruned_clades.txt"), result.PrunedClades); err != nil {
		return err
	}
	if err := writeScores(filepath.Join(dir, "gene_type_scores.csv"), result.GeneTypeScores); err != nil {
		return err
	}
	if err := writeScores(filepath.Join(dir, "allele_assign_probs.csv"), result.AlleleAssignProbs); err != nil {
		return err
	}
	return nil
}

func writeAssignments(path string, assign map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write assignments: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"cell_id", "clone_id"}); err != nil {
		return err
	}
	for _, cell := range sortedKeys(assign) {
		if err := w.Write([]string{cell, assign[cell]}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return err
		}
	}
	return nil
}

// writeScores flattens per-cell score accumulators into long format, one
// row per cell and visit.
func writeScores(path string, scores map[string][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"cell_id", "visit", "score"}); err != nil {
		return err
	}
	cells := make([]string, 0, len(scores))
	for cell := range scores {
		cells = append(cells, cell)
	}
	sort.Strings(cells)
	for _, cell := range cells {
		for i, score := range scores[cell] {
			if err := w.Write([]string{cell, fmt.Sprint(i), fmt.Sprint(score)}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
