package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/molonc/treealign/pkg/domain"
)

func table(rows, cols int) *domain.Matrix {
	rowIDs := make([]string, rows)
	for i := range rowIDs {
		rowIDs[i] = "r"
	}
	colIDs := make([]string, cols)
	for i := range colIDs {
		colIDs[i] = "c"
	}
	return domain.NewMatrix(rowIDs, colIDs)
}

func TestClassify(t *testing.T) {
	t.Run("nil inputs", func(t *testing.T) {
		g := classify(nil)
		assert.False(t, g.TotalCNUsable)
		assert.False(t, g.AlleleUsable)
	})

	t.Run("total copy-number track needs expr and cnv", func(t *testing.T) {
		g := classify(&domain.ProfileInputs{Expr: table(5, 3), CNV: table(7, 2)})
		assert.True(t, g.TotalCNUsable)
		assert.False(t, g.AlleleUsable)
		assert.Equal(t, 7, g.GeneCount)
		assert.Equal(t, 0, g.SNPCount)
	})

	t.Run("missing cnv disables total track", func(t *testing.T) {
		g := classify(&domain.ProfileInputs{Expr: table(5, 3)})
		assert.False(t, g.TotalCNUsable)
	})

	t.Run("empty table is not valid", func(t *testing.T) {
		g := classify(&domain.ProfileInputs{Expr: table(5, 3), CNV: table(0, 2)})
		assert.False(t, g.TotalCNUsable)
	})

	t.Run("zero columns is not valid", func(t *testing.T) {
		g := classify(&domain.ProfileInputs{Expr: table(5, 0), CNV: table(4, 2)})
		assert.False(t, g.TotalCNUsable)
	})

	t.Run("allele track needs hscn, snv_allele and snv", func(t *testing.T) {
		g := classify(&domain.ProfileInputs{
			HSCN:      table(9, 4),
			SNVAllele: table(9, 4),
			SNV:       table(9, 4),
		})
		assert.False(t, g.TotalCNUsable)
		assert.True(t, g.AlleleUsable)
		assert.Equal(t, 9, g.SNPCount)
	})

	t.Run("partial allele track is unusable", func(t *testing.T) {
		g := classify(&domain.ProfileInputs{HSCN: table(9, 4), SNV: table(9, 4)})
		assert.False(t, g.AlleleUsable)
		assert.Equal(t, 0, g.SNPCount)
	})

	t.Run("both tracks usable", func(t *testing.T) {
		g := classify(&domain.ProfileInputs{
			Expr:      table(5, 3),
			CNV:       table(7, 2),
			HSCN:      table(9, 4),
			SNVAllele: table(9, 4),
			SNV:       table(9, 4),
		})
		assert.True(t, g.TotalCNUsable)
		assert.True(t, g.AlleleUsable)
		assert.Equal(t, 7, g.GeneCount)
		assert.Equal(t, 9, g.SNPCount)
	})
}
