package ports

import (
	"io"

	"github.com/molonc/treealign/pkg/domain"
)

// TreeLoader parses a rooted lineage tree from a serialized form. Leaves
// must carry cell identifiers; internal node names are optional and are
// filled in during normalization.
type TreeLoader interface {
	Load(r io.Reader) (*domain.Clade, error)
}
