// Package csvfile loads dense expression and copy-number matrices from CSV
// files. The first header column is ignored; remaining header fields are
// cell identifiers. Each data row starts with the gene or SNP identifier.
// Files ending in .gz are decompressed transparently.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/molonc/treealign/pkg/domain"
)

// ReadMatrix loads a matrix from path. An empty path returns a nil matrix,
// which downstream validity gating treats as an absent table.
func ReadMatrix(path string) (*domain.Matrix, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matrix %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip matrix %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	m, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("parse matrix %s: %w", path, err)
	}
	return m, nil
}

// Read parses a matrix from CSV content.
func Read(r io.Reader) (*domain.Matrix, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty matrix file")
	}
	if err != nil {
		return nil, err
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("matrix header needs at least one cell column")
	}

	colIDs := make([]string, len(header)-1)
	copy(colIDs, header[1:])

	m := &domain.Matrix{ColIDs: colIDs}
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(record) != len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(record))
		}

		row := make([]float64, len(record)-1)
		for i, field := range record[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid value %q: %w", line, field, err)
			}
			row[i] = v
		}
		m.RowIDs = append(m.RowIDs, record[0])
		m.Values = append(m.Values, row)
	}
	return m, nil
}
