package domain

// Clade is a node in the rooted lineage tree. Internal clades group clones
// sharing an ancestral copy-number profile; leaves carry cell identifiers
// from the DNA library.
type Clade struct {
	Name         string   `json:"name" yaml:"name"`
	BranchLength float64  `json:"branch_length,omitempty" yaml:"branch_length,omitempty"`
	Children     []*Clade `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsLeaf reports whether the clade has no children.
func (c *Clade) IsLeaf() bool {
	return len(c.Children) == 0
}

// Leaves returns the identifiers of all terminal descendants in pre-order.
// A leaf returns itself.
func (c *Clade) Leaves() []string {
	if c.IsLeaf() {
		return []string{c.Name}
	}
	var names []string
	for _, child := range c.Children {
		names = append(names, child.Leaves()...)
	}
	return names
}

// LeafCount returns the number of terminal descendants.
func (c *Clade) LeafCount() int {
	if c.IsLeaf() {
		return 1
	}
	n := 0
	for _, child := range c.Children {
		n += child.LeafCount()
	}
	return n
}
