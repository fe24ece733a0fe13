package partition

import "github.com/samdwyer/overmap/internal/grid"

// Node is one region of the partition tree. An internal node has
// exactly two children whose bounds tile it with no gap or overlap;
// a leaf hosts one room. Nodes own their children, so releasing the
// root releases the tree.
type Node struct {
	ID     int
	Bounds grid.Rect
	Depth  int
	Left   *Node
	Right  *Node
}

// IsLeaf returns true if the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Leaves returns the leaf regions in left-to-right tree order.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	n.Walk(func(node *Node) {
		if node.IsLeaf() {
			leaves = append(leaves, node)
		}
	})
	return leaves
}

// Walk visits the subtree in pre-order: node, left, right.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	n.Left.Walk(fn)
	n.Right.Walk(fn)
}

// Count returns the number of nodes in the subtree.
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node) { total++ })
	return total
}
