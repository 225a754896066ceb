/*package octree contains an arena-allocated octree over point masses and the
three ways of building it.

Build is the preferred constructor. It partitions bodies into octants (in
parallel for large inputs) and builds independent subtrees concurrently.
BuildMorton produces the same tree from a Morton-sorted permutation of the
bodies. BuildInsert inserts bodies one at a time and is kept as a slow
reference which the other two are checked against.

Nodes live in a flat slice. The root is always slot 0, so a ChildIndex of 0
means "no child".
*/
package octree

import (
	"runtime"

	log "github.com/sirupsen/logrus"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/geom"
)

// NodeKind tags the role of a Node in the arena.
type NodeKind uint8

const (
	// Unused is the zero value. Traversals treat it as a broken invariant.
	Unused NodeKind = iota
	Internal
	Leaf
)

func (k NodeKind) String() string {
	switch k {
	case Unused:
		return "Unused"
	case Internal:
		return "Internal"
	case Leaf:
		return "Leaf"
	}
	return "NodeKind(?)"
}

// ChildIndex is the arena index of a child node. The zero value means the
// octant is empty.
type ChildIndex uint32

// NoChild marks an empty octant.
const NoChild ChildIndex = 0

// Node is a single cube in the tree.
type Node struct {
	Kind     NodeKind
	Bounds   geom.Box
	Data     octgrav.GravityData
	Children [8]ChildIndex

	// Bodies holds indices into the tree's body slice. Only leaves have
	// bodies.
	Bodies []int
	// Merged is set on leaves which were collapsed because their cube fell
	// below the merge half width. Such leaves may hold any number of
	// bodies.
	Merged bool
}

// IsLeaf returns true if n is a leaf.
func (n *Node) IsLeaf() bool { return n.Kind == Leaf }

// Config controls tree construction.
type Config struct {
	// MaxBodiesPerLeaf is the capacity of an insert-built leaf.
	MaxBodiesPerLeaf int
	// MaxInsertDepth is the depth past which inserted bodies are dropped.
	MaxInsertDepth int
	// MergeHalfWidth is the half width at or below which partition-built
	// subtrees collapse into a single aggregate leaf.
	MergeHalfWidth float64
	// ParallelPartitionMin is the body count at which octant bucketing
	// switches to the parallel fold/reduce.
	ParallelPartitionMin int
	// ParallelBuildMin is the body count at which child subtrees are built
	// concurrently.
	ParallelBuildMin int
	// Threads is the number of goroutines used by parallel loops.
	Threads int
}

// DefaultConfig returns the default construction parameters.
func DefaultConfig() Config {
	return Config{
		MaxBodiesPerLeaf:     1,
		MaxInsertDepth:       64,
		MergeHalfWidth:       1e-2,
		ParallelPartitionMin: 100000,
		ParallelBuildMin:     200,
		Threads:              runtime.NumCPU(),
	}
}

// normalize fills in unusable values with defaults.
func (cfg Config) normalize() Config {
	def := DefaultConfig()
	if cfg.MaxBodiesPerLeaf < 1 {
		cfg.MaxBodiesPerLeaf = def.MaxBodiesPerLeaf
	}
	if cfg.MaxInsertDepth < 1 {
		cfg.MaxInsertDepth = def.MaxInsertDepth
	}
	if cfg.MergeHalfWidth < geom.MinHalfWidth {
		cfg.MergeHalfWidth = geom.MinHalfWidth
	}
	if cfg.Threads < 1 {
		cfg.Threads = def.Threads
	}
	return cfg
}

// Octree is a spatial index over a slice of bodies. The tree does not copy
// the bodies, so they must not be modified while it is in use.
type Octree[T octgrav.Particle] struct {
	Nodes []Node
	// Root is the index of the root node, or -1 for an empty tree.
	Root   int
	Bounds geom.Box
	Bodies []T
}

func empty[T octgrav.Particle](bodies []T) *Octree[T] {
	return &Octree[T]{Root: -1, Bounds: geom.Containing(bodies), Bodies: bodies}
}

// Len returns the number of nodes in the arena.
func (t *Octree[T]) Len() int { return len(t.Nodes) }

// Empty returns true if the tree has no root.
func (t *Octree[T]) Empty() bool { return t.Root < 0 }

// Node returns the node at index i, or nil and an error log if i is out of
// range or refers to an Unused node.
func (t *Octree[T]) Node(i int) *Node {
	if i < 0 || i >= len(t.Nodes) {
		log.Errorf("Octree node index %d out of range [0, %d).", i, len(t.Nodes))
		return nil
	}
	n := &t.Nodes[i]
	if n.Kind == Unused {
		log.Errorf("Octree node %d is Unused.", i)
		return nil
	}
	return n
}

// Mass returns the total mass held by the tree.
func (t *Octree[T]) Mass() float64 {
	if t.Empty() {
		return 0
	}
	return t.Nodes[t.Root].Data.Mass
}

// Walk calls visit on every reachable node in depth-first order along with
// its depth. If visit returns false, the node's children are skipped.
func (t *Octree[T]) Walk(visit func(i int, n *Node, depth int) bool) {
	if t.Empty() {
		return
	}

	type frame struct{ i, depth int }
	stack := []frame{{t.Root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.Node(f.i)
		if n == nil {
			continue
		}
		if !visit(f.i, n, f.depth) || n.Kind != Internal {
			continue
		}
		for oct := 7; oct >= 0; oct-- {
			if c := n.Children[oct]; c != NoChild {
				stack = append(stack, frame{int(c), f.depth + 1})
			}
		}
	}
}

// Leaves returns the indices of every reachable leaf in depth-first order.
func (t *Octree[T]) Leaves() []int {
	out := []int{}
	t.Walk(func(i int, n *Node, _ int) bool {
		if n.Kind == Leaf {
			out = append(out, i)
		}
		return true
	})
	return out
}

// BodyIndices returns the index of every body stored in the tree's leaves,
// in depth-first order.
func (t *Octree[T]) BodyIndices() []int {
	out := []int{}
	for _, i := range t.Leaves() {
		out = append(out, t.Nodes[i].Bodies...)
	}
	return out
}

// Depth returns the depth of the deepest node. An empty tree has depth -1.
func (t *Octree[T]) Depth() int {
	max := -1
	t.Walk(func(_ int, _ *Node, depth int) bool {
		if depth > max {
			max = depth
		}
		return true
	})
	return max
}
