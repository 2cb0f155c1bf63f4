package ports

import (
	"context"

	"github.com/molonc/treealign/pkg/domain"
)

// ProfileBuilder constructs the per-clean-child consensus input tables for
// one clade visit. childLeafSets holds the descendant leaf identifiers of
// each clean child, in roster order; cells is the eligible-cell list the
// columns of every returned table must be aligned to.
//
// A builder may return nil tables for a track it cannot support; the engine
// gates on table validity, not on builder errors. An error return is treated
// as a collaborator failure and aborts the traversal.
type ProfileBuilder interface {
	Build(ctx context.Context, childLeafSets [][]string, cells []string) (*domain.ProfileInputs, error)
}
