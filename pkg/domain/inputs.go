package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ProfileInputs holds the per-clean-child consensus tables built for one
// clade visit. Expr and CNV form the total copy-number track; HSCN, SNVAllele
// and SNV form the allele-specific track. Any table may be nil when the
// underlying data cannot support it. Column order is aligned to the
// eligible-cell list across all tables within one visit.
type ProfileInputs struct {
	Expr      *Matrix `json:"expr,omitempty"`
	CNV       *Matrix `json:"cnv,omitempty"`
	HSCN      *Matrix `json:"hscn,omitempty"`
	SNVAllele *Matrix `json:"snv_allele,omitempty"`
	SNV       *Matrix `json:"snv,omitempty"`
}

// OptionalIndex is a nullable index into the clean-child roster. The zero
// value is "missing", distinguishable from a valid index 0. It marshals to
// JSON as the index or null.
type OptionalIndex struct {
	Index int
	Valid bool
}

// Index returns a present OptionalIndex.
func Index(i int) OptionalIndex {
	return OptionalIndex{Index: i, Valid: true}
}

var jsonNull = []byte("null")

// MarshalJSON encodes a missing index as null.
func (o OptionalIndex) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return jsonNull, nil
	}
	return []byte(strconv.Itoa(o.Index)), nil
}

// UnmarshalJSON decodes null as a missing index.
func (o *OptionalIndex) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*o = OptionalIndex{}
		return nil
	}
	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return err
	}
	*o = OptionalIndex{Index: i, Valid: true}
	return nil
}

// AssignResult is the aggregated outcome of one Assigner invocation.
type AssignResult struct {
	// NoneFreq is the fraction of inference outcomes lacking a confident
	// clone assignment, in [0,1].
	NoneFreq float64 `json:"none_freq"`

	// Assignment maps each eligible cell (by position) to a clean-child
	// roster index, or missing when no consensus was reached for the cell.
	Assignment []OptionalIndex `json:"assignment"`

	// Table is the detailed per-run assignment table, one row per repeat.
	Table *Matrix `json:"table,omitempty"`

	// MeanGeneTypeScore is aligned with the CNV input rows. Nil when the
	// total copy-number track was not used.
	MeanGeneTypeScore []float64 `json:"mean_gene_type_score,omitempty"`

	// MeanAlleleAssignProb is aligned with the HSCN input rows. Nil when the
	// allele-specific track was not used.
	MeanAlleleAssignProb []float64 `json:"mean_allele_assign_prob,omitempty"`
}
