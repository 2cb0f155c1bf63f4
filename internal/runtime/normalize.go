package runtime

import (
	"fmt"
	"sort"

	"github.com/molonc/treealign/pkg/domain"
)

// Normalize prepares a tree for traversal. Children of every node are
// reordered by descendant leaf count (ascending, stable), then every unnamed
// internal node receives a "node_<k>" name where k is a depth-first
// pre-order counter over unnamed nodes. Leaves are never renamed; an
// unnamed leaf is an error. Idempotent on an already-normalized tree.
func Normalize(root *domain.Clade) error {
	ladderize(root)
	counter := 0
	return nameInternal(root, &counter)
}

// ladderize sorts children by leaf count, post-order so counts are stable
// while sorting. Equal-count siblings keep their original order.
func ladderize(c *domain.Clade) int {
	if c.IsLeaf() {
		return 1
	}
	counts := make(map[*domain.Clade]int, len(c.Children))
	total := 0
	for _, child := range c.Children {
		n := ladderize(child)
		counts[child] = n
		total += n
	}
	sort.SliceStable(c.Children, func(i, j int) bool {
		return counts[c.Children[i]] < counts[c.Children[j]]
	})
	return total
}

func nameInternal(c *domain.Clade, counter *int) error {
	if c.IsLeaf() {
		if c.Name == "" {
			return domain.ErrUnnamedLeaf
		}
		return nil
	}
	if c.Name == "" {
		c.Name = fmt.Sprintf("node_%d", *counter)
		*counter++
	}
	for _, child := range c.Children {
		if err := nameInternal(child, counter); err != nil {
			return err
		}
	}
	return nil
}
