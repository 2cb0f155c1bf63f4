package ports

import (
	"context"

	"github.com/molonc/treealign/pkg/domain"
)

// ResultStore persists finished traversal results addressable by run ID.
type ResultStore interface {
	// Save persists the result for a given run ID.
	Save(ctx context.Context, runID string, result *domain.Result) error

	// Load retrieves the result for a given run ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Result, error)

	// Delete removes the result for a given run ID.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of all stored runs.
	List(ctx context.Context) ([]string, error)
}
