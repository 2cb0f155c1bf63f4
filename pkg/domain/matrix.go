package domain

// Matrix is a dense rectangular table keyed by row identifiers (genes or
// SNPs) and column identifiers (cells). Matrices are consumed, not owned:
// the engine never mutates one after construction.
type Matrix struct {
	RowIDs []string    `json:"rows"`
	ColIDs []string    `json:"cols"`
	Values [][]float64 `json:"values"` // indexed [row][col]
}

// NewMatrix allocates a zero-filled matrix with the given axes.
func NewMatrix(rowIDs, colIDs []string) *Matrix {
	values := make([][]float64, len(rowIDs))
	for i := range values {
		values[i] = make([]float64, len(colIDs))
	}
	return &Matrix{RowIDs: rowIDs, ColIDs: colIDs, Values: values}
}

// Valid reports whether the matrix is present with at least one row and one
// column. A nil matrix is not valid.
func (m *Matrix) Valid() bool {
	return m != nil && len(m.RowIDs) > 0 && len(m.ColIDs) > 0
}

// RowCount returns the number of rows. Safe on a nil matrix.
func (m *Matrix) RowCount() int {
	if m == nil {
		return 0
	}
	return len(m.RowIDs)
}

// ColCount returns the number of columns. Safe on a nil matrix.
func (m *Matrix) ColCount() int {
	if m == nil {
		return 0
	}
	return len(m.ColIDs)
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// RowIndex returns a lookup from row identifier to row position.
func (m *Matrix) RowIndex() map[string]int {
	idx := make(map[string]int, len(m.RowIDs))
	for i, id := range m.RowIDs {
		idx[id] = i
	}
	return idx
}

// ColIndex returns a lookup from column identifier to column position.
func (m *Matrix) ColIndex() map[string]int {
	idx := make(map[string]int, len(m.ColIDs))
	for i, id := range m.ColIDs {
		idx[id] = i
	}
	return idx
}

// SubsetRows returns a new matrix containing the requested rows, in the
// requested order. Unknown identifiers are skipped.
func (m *Matrix) SubsetRows(rowIDs []string) *Matrix {
	idx := m.RowIndex()
	out := &Matrix{ColIDs: m.ColIDs}
	for _, id := range rowIDs {
		i, ok := idx[id]
		if !ok {
			continue
		}
		out.RowIDs = append(out.RowIDs, id)
		out.Values = append(out.Values, m.Values[i])
	}
	return out
}

// SubsetCols returns a new matrix containing the requested columns, in the
// requested order. Unknown identifiers are skipped.
func (m *Matrix) SubsetCols(colIDs []string) *Matrix {
	idx := m.ColIndex()
	keep := make([]int, 0, len(colIDs))
	out := &Matrix{RowIDs: m.RowIDs}
	for _, id := range colIDs {
		j, ok := idx[id]
		if !ok {
			continue
		}
		keep = append(keep, j)
		out.ColIDs = append(out.ColIDs, id)
	}
	out.Values = make([][]float64, len(m.RowIDs))
	for i := range m.Values {
		row := make([]float64, len(keep))
		for k, j := range keep {
			row[k] = m.Values[i][j]
		}
		out.Values[i] = row
	}
	return out
}
