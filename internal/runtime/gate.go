package runtime

import "github.com/molonc/treealign/pkg/domain"

// gateReport classifies the constructed inputs of one visit. A track is
// usable only when every table it needs is present with at least one row
// and one column.
type gateReport struct {
	TotalCNUsable bool
	AlleleUsable  bool
	GeneCount     int
	SNPCount      int
}

// classify gates the per-visit input tables. GeneCount counts the rows of
// the consensus copy-number table; SNPCount counts the rows of the haplotype
// table. Both are zero for unusable tracks.
func classify(in *domain.ProfileInputs) gateReport {
	var g gateReport
	if in == nil {
		return g
	}
	if in.Expr.Valid() && in.CNV.Valid() {
		g.TotalCNUsable = true
		g.GeneCount = in.CNV.RowCount()
	}
	if in.HSCN.Valid() && in.SNVAllele.Valid() && in.SNV.Valid() {
		g.AlleleUsable = true
		g.SNPCount = in.HSCN.RowCount()
	}
	return g
}
