// Package profile builds the per-clean-child consensus input tables the
// engine feeds to the assigner. Consensus profiles are per-row medians over
// each child's covered leaf columns, restricted to rows that actually
// discriminate between the children.
package profile

import (
	"context"
	"fmt"
	"sort"

	"github.com/molonc/treealign/pkg/domain"
)

// Matrices bundles the raw study-level tables. Any may be nil; a track with
// a missing table is simply not built.
type Matrices struct {
	// Expr is the expression read-count matrix (gene x scRNA cell).
	Expr *domain.Matrix
	// CNV is the copy-number matrix (gene x DNA cell). Columns are leaf
	// identifiers of the lineage tree.
	CNV *domain.Matrix
	// HSCN is the haplotype-specific copy-number matrix (SNP x DNA cell).
	HSCN *domain.Matrix
	// SNVAllele is the variant-allele read-count matrix (SNP x scRNA cell).
	SNVAllele *domain.Matrix
	// SNV is the total-coverage matrix at SNV sites (SNP x scRNA cell).
	SNV *domain.Matrix
}

// Builder implements ports.ProfileBuilder over in-memory matrices.
type Builder struct {
	m         Matrices
	cnvCutoff float64
}

// Option configures the builder.
type Option func(*Builder)

// WithCNVCutoff caps consensus copy numbers; amplifications above the
// cutoff carry no extra dosage signal in expression.
func WithCNVCutoff(cutoff float64) Option {
	return func(b *Builder) {
		b.cnvCutoff = cutoff
	}
}

// NewBuilder creates a builder over the study matrices.
func NewBuilder(m Matrices, opts ...Option) *Builder {
	b := &Builder{m: m, cnvCutoff: 10}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build constructs row-aligned consensus inputs for one clade visit. Tracks
// whose raw tables are missing, or whose children have no covered leaves,
// come back nil; tracks with no discriminating rows come back empty. The
// engine's input gate decides usability either way.
func (b *Builder) Build(ctx context.Context, childLeafSets [][]string, cells []string) (*domain.ProfileInputs, error) {
	if len(childLeafSets) < 2 {
		return nil, fmt.Errorf("consensus inputs need at least two children, got %d", len(childLeafSets))
	}

	out := &domain.ProfileInputs{}

	if b.m.Expr.Valid() && b.m.CNV.Valid() {
		consensus, ok := b.consensus(b.m.CNV, childLeafSets, b.cnvCutoff)
		if ok {
			genes := discriminatingRows(consensus, rowSet(b.m.Expr))
			out.CNV = consensus.SubsetRows(genes)
			out.Expr = b.m.Expr.SubsetRows(genes).SubsetCols(cells)
		}
	}

	if b.m.HSCN.Valid() && b.m.SNVAllele.Valid() && b.m.SNV.Valid() {
		consensus, ok := b.consensus(b.m.HSCN, childLeafSets, 0)
		if ok {
			covered := intersect(rowSet(b.m.SNVAllele), rowSet(b.m.SNV))
			snps := discriminatingRows(consensus, covered)
			out.HSCN = consensus.SubsetRows(snps)
			out.SNVAllele = b.m.SNVAllele.SubsetRows(snps).SubsetCols(cells)
			out.SNV = b.m.SNV.SubsetRows(snps).SubsetCols(cells)
		}
	}

	return out, nil
}

// consensus computes the per-row median profile of each child over its leaf
// columns. Returns ok=false when some child has no covered leaves at all.
func (b *Builder) consensus(m *domain.Matrix, childLeafSets [][]string, cutoff float64) (*domain.Matrix, bool) {
	colIdx := m.ColIndex()

	cols := make([][]int, len(childLeafSets))
	for i, leaves := range childLeafSets {
		for _, leaf := range leaves {
			if j, ok := colIdx[leaf]; ok {
				cols[i] = append(cols[i], j)
			}
		}
		if len(cols[i]) == 0 {
			return nil, false
		}
	}

	cloneIDs := make([]string, len(childLeafSets))
	for i := range cloneIDs {
		cloneIDs[i] = fmt.Sprintf("clone_%d", i)
	}

	out := domain.NewMatrix(m.RowIDs, cloneIDs)
	values := make([]float64, 0, len(m.ColIDs))
	for r := range m.RowIDs {
		for c, childCols := range cols {
			values = values[:0]
			for _, j := range childCols {
				values = append(values, m.At(r, j))
			}
			v := median(values)
			if cutoff > 0 && v > cutoff {
				v = cutoff
			}
			out.Values[r][c] = v
		}
	}
	return out, true
}

// discriminatingRows keeps rows covered by the companion matrices whose
// consensus profile is not constant across children.
func discriminatingRows(consensus *domain.Matrix, covered map[string]struct{}) []string {
	var rows []string
	for r, id := range consensus.RowIDs {
		if _, ok := covered[id]; !ok {
			continue
		}
		first := consensus.Values[r][0]
		for _, v := range consensus.Values[r][1:] {
			if v != first {
				rows = append(rows, id)
				break
			}
		}
	}
	return rows
}

func rowSet(m *domain.Matrix) map[string]struct{} {
	set := make(map[string]struct{}, m.RowCount())
	for _, id := range m.RowIDs {
		set[id] = struct{}{}
	}
	return set
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for id := range a {
		if _, ok := b[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// median of a non-empty slice; the input order is not preserved.
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}
