package pathfind

import (
	"container/heap"

	"github.com/samdwyer/overmap/internal/grid"
)

// searchNode is a frontier entry in the open set.
type searchNode struct {
	pos   grid.Point
	g     float64 // accumulated cost from the start cell
	f     float64 // g plus the heuristic estimate to the goal
	index int     // heap slot, maintained by openSet
}

// openSet is a min-heap of search nodes keyed by f.
type openSet []*searchNode

func (s openSet) Len() int { return len(s) }

func (s openSet) Less(i, j int) bool {
	return s[i].f < s[j].f
}

func (s openSet) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
	s[i].index = i
	s[j].index = j
}

func (s *openSet) Push(x any) {
	n := x.(*searchNode)
	n.index = len(*s)
	*s = append(*s, n)
}

func (s *openSet) Pop() any {
	old := *s
	n := len(old)
	node := old[n-1]
	old[n-1] = nil // avoid memory leak
	node.index = -1
	*s = old[:n-1]
	return node
}

// frontier wraps the heap with a position index so a node's priority
// can be decreased in place when a shorter route to it is found.
type frontier struct {
	heap  openSet
	byPos map[grid.Point]*searchNode
}

func newFrontier() *frontier {
	f := &frontier{byPos: make(map[grid.Point]*searchNode)}
	heap.Init(&f.heap)
	return f
}

func (f *frontier) empty() bool {
	return f.heap.Len() == 0
}

func (f *frontier) push(pos grid.Point, g, score float64) {
	node := &searchNode{pos: pos, g: g, f: score}
	f.byPos[pos] = node
	heap.Push(&f.heap, node)
}

func (f *frontier) pop() *searchNode {
	node := heap.Pop(&f.heap).(*searchNode)
	delete(f.byPos, node.pos)
	return node
}

func (f *frontier) get(pos grid.Point) (*searchNode, bool) {
	node, ok := f.byPos[pos]
	return node, ok
}

// update lowers a frontier node's cost and restores heap order.
func (f *frontier) update(node *searchNode, g, score float64) {
	node.g = g
	node.f = score
	heap.Fix(&f.heap, node.index)
}
