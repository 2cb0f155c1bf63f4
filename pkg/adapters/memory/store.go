// Package memory provides an in-memory ports.ResultStore, useful for tests
// and single-process runs.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/molonc/treealign/pkg/domain"
)

// Store implements ports.ResultStore in memory. Safe for concurrent use.
type Store struct {
	data map[string]*domain.Result
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Result),
	}
}

// Save persists the result in memory. The result is copied through JSON so
// later caller mutations cannot leak into the store.
func (s *Store) Save(ctx context.Context, runID string, result *domain.Result) error {
	copied, err := cloneResult(result)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[runID] = copied
	return nil
}

// Load retrieves the result from memory.
func (s *Store) Load(ctx context.Context, runID string) (*domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.data[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return cloneResult(result)
}

// Delete removes the result.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}

// List returns the stored run IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]string, 0, len(s.data))
	for id := range s.data {
		runs = append(runs, id)
	}
	return runs, nil
}

func cloneResult(result *domain.Result) (*domain.Result, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var out domain.Result
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
