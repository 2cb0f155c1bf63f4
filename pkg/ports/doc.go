// Package ports defines the collaborator interfaces of the treealign engine.
// The engine owns the traversal policy only; consensus input construction,
// statistical inference, tree loading and result persistence are all
// pluggable behind these ports.
package ports
