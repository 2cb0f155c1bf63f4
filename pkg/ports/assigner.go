package ports

import (
	"context"

	"github.com/molonc/treealign/pkg/domain"
)

// Assigner runs the clone-assignment inference over the usable input tracks.
// Unusable tracks arrive as nil tables. The implementation repeats the
// inference `repeat` times internally and returns the aggregated consensus;
// the trials are independent and may be parallelized without affecting the
// engine's contract.
//
// An Assigner error is the one fatal condition of a traversal: it is not
// caught by the engine and aborts the whole run.
type Assigner interface {
	Run(ctx context.Context, inputs *domain.ProfileInputs, repeat int) (*domain.AssignResult, error)
}
