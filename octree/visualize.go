package octree

import (
	"github.com/phil-mansfield/octgrav/geom"
)

// NodeBounds is the cube of a single node and its depth below the root.
type NodeBounds struct {
	geom.Box
	Depth int
}

// Visualizer is implemented by anything that can describe its spatial
// decomposition for drawing.
type Visualizer interface {
	BoundsAndDepths() []NodeBounds
}

// BoundsAndDepths returns the cube and depth of every reachable node, in
// depth-first order.
func (t *Octree[T]) BoundsAndDepths() []NodeBounds {
	out := make([]NodeBounds, 0, len(t.Nodes))
	t.Walk(func(_ int, n *Node, depth int) bool {
		out = append(out, NodeBounds{n.Bounds, depth})
		return true
	})
	return out
}

// DepthCounts returns the number of nodes found at each depth.
func DepthCounts(v Visualizer) []int {
	counts := []int{}
	for _, nb := range v.BoundsAndDepths() {
		for len(counts) <= nb.Depth {
			counts = append(counts, 0)
		}
		counts[nb.Depth]++
	}
	return counts
}
