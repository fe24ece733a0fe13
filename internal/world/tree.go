package world

import (
	"github.com/samdwyer/overmap/internal/grid"
	"github.com/samdwyer/overmap/internal/partition"
)

// PartitionNode is the serializable mirror of a partition tree node.
// It documents the generation topology; consumers never mutate it.
type PartitionNode struct {
	ID     int            `json:"nodeId"`
	Bounds grid.Rect      `json:"bounds"`
	Left   *PartitionNode `json:"left,omitempty"`
	Right  *PartitionNode `json:"right,omitempty"`
}

// IsLeaf returns true if the node has no children.
func (n *PartitionNode) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Walk visits the subtree in pre-order: node, left, right.
func (n *PartitionNode) Walk(fn func(*PartitionNode)) {
	if n == nil {
		return
	}
	fn(n)
	n.Left.Walk(fn)
	n.Right.Walk(fn)
}

// FromPartitionTree copies a builder tree into its serializable form.
func FromPartitionTree(root *partition.Node) *PartitionNode {
	if root == nil {
		return nil
	}
	return &PartitionNode{
		ID:     root.ID,
		Bounds: root.Bounds,
		Left:   FromPartitionTree(root.Left),
		Right:  FromPartitionTree(root.Right),
	}
}

func equalTrees(a, b *PartitionNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || a.Bounds != b.Bounds {
		return false
	}
	return equalTrees(a.Left, b.Left) && equalTrees(a.Right, b.Right)
}
