package domain

import "errors"

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrUnnamedLeaf is returned when the tree contains a terminal node without
// a cell identifier. Leaf names are pre-assigned and never generated.
var ErrUnnamedLeaf = errors.New("tree contains an unnamed leaf")
