package octree

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/bodygen"
	"github.com/phil-mansfield/octgrav/geom"
)

type builder func([]octgrav.Body, Config) *Octree[octgrav.Body]

var builders = []struct {
	name  string
	build builder
}{
	{"Build", Build[octgrav.Body]},
	{"BuildMorton", BuildMorton[octgrav.Body]},
	{"BuildInsert", BuildInsert[octgrav.Body]},
}

func body(x, y, z, m float64) octgrav.Body {
	return octgrav.Body{Xs: r3.Vec{X: x, Y: y, Z: z}, M: m}
}

// checkTree verifies the structural invariants every builder must satisfy.
func checkTree(t *testing.T, name string, tree *Octree[octgrav.Body]) {
	seen := map[int]int{}
	tree.Walk(func(i int, n *Node, depth int) bool {
		switch n.Kind {
		case Leaf:
			// Child cube centers are rounded, so allow a few ulps.
			loose := geom.Cube(n.Bounds.Center, n.Bounds.HalfWidth*(1+1e-12))
			for _, j := range n.Bodies {
				seen[j]++
				if !loose.Contains(tree.Bodies[j].Position()) {
					t.Errorf("%s) Node %d at depth %d does not contain body %d.",
						name, i, depth, j)
				}
			}
		case Internal:
			if len(n.Bodies) != 0 {
				t.Errorf("%s) Internal node %d holds bodies.", name, i)
			}
			for oct, c := range n.Children {
				if c == NoChild {
					continue
				}
				if int(c) <= i || int(c) >= len(tree.Nodes) {
					t.Errorf("%s) Node %d has child index %d.", name, i, c)
					continue
				}
				if tree.Nodes[c].Bounds != n.Bounds.OctantBounds(oct) {
					t.Errorf("%s) Child %d of node %d has bounds %v.",
						name, oct, i, tree.Nodes[c].Bounds)
				}
			}
		default:
			t.Errorf("%s) Reached Unused node %d.", name, i)
		}
		return true
	})

	for j, count := range seen {
		if count != 1 {
			t.Errorf("%s) Body %d appears %d times.", name, j, count)
		}
	}
}

func TestBuildersEmpty(t *testing.T) {
	for _, b := range builders {
		tree := b.build([]octgrav.Body{}, DefaultConfig())
		assert.True(t, tree.Empty(), b.name)
		assert.Equal(t, -1, tree.Root, b.name)
		assert.Equal(t, 0, tree.Len(), b.name)
		assert.Equal(t, geom.DefaultBox(), tree.Bounds, b.name)
		assert.Equal(t, 0.0, tree.Mass(), b.name)
		assert.Empty(t, tree.BoundsAndDepths(), b.name)
		assert.Equal(t, -1, tree.Depth(), b.name)
	}
}

func TestBuildersSingleBody(t *testing.T) {
	bodies := []octgrav.Body{body(1, 2, 3, 5)}
	for _, b := range builders {
		tree := b.build(bodies, DefaultConfig())
		require.Equal(t, 1, tree.Len(), b.name)
		root := tree.Nodes[0]
		assert.Equal(t, Leaf, root.Kind, b.name)
		assert.Equal(t, []int{0}, root.Bodies, b.name)
		assert.Equal(t, bodies[0].Xs, root.Bounds.Center, b.name)
		assert.Equal(t, geom.MinHalfWidth, root.Bounds.HalfWidth, b.name)
		assert.Equal(t, octgrav.GravityData{Mass: 5, Center: bodies[0].Xs},
			root.Data, b.name)
	}
}

func TestBuildersInvariants(t *testing.T) {
	sets := [][]octgrav.Body{
		bodygen.Uniform(1000, 1, 10, 0.5, 2),
		bodygen.Spiral(500),
		bodygen.Plummer(800, 2, 1, 10),
	}

	for i, bodies := range sets {
		total := octgrav.TotalMass(bodies)
		for _, b := range builders {
			name := fmt.Sprintf("%d %s", i+1, b.name)
			tree := b.build(bodies, DefaultConfig())
			checkTree(t, name, tree)

			assert.InEpsilon(t, total, tree.Mass(), 1e-10, name)
			assert.Len(t, tree.BodyIndices(), len(bodies), name)

			com := octgrav.Aggregate(bodies, r3.Vec{}).Center
			assert.InDelta(t, 0, r3.Norm(r3.Sub(com, tree.Nodes[0].Data.Center)),
				1e-9*(1+r3.Norm(com)), name)
		}
	}
}

func TestInsertLeafCapacity(t *testing.T) {
	bodies := bodygen.Uniform(300, 4, 1, 1, 1)
	for _, capacity := range []int{1, 2, 8} {
		cfg := DefaultConfig()
		cfg.MaxBodiesPerLeaf = capacity

		tree := BuildInsert(bodies, cfg)
		checkTree(t, "BuildInsert", tree)
		for _, i := range tree.Leaves() {
			if n := len(tree.Nodes[i].Bodies); n > capacity {
				t.Errorf("%d) Leaf %d holds %d bodies.", capacity, i, n)
			}
		}
	}
}

func TestPartitionLeavesHoldOneBody(t *testing.T) {
	bodies := bodygen.Uniform(500, 5, 100, 1, 2)
	for _, b := range builders[:2] {
		tree := b.build(bodies, DefaultConfig())
		for _, i := range tree.Leaves() {
			n := &tree.Nodes[i]
			if !n.Merged && len(n.Bodies) != 1 {
				t.Errorf("%s) Unmerged leaf %d holds %d bodies.",
					b.name, i, len(n.Bodies))
			}
		}
	}
}

func TestDuplicatePositions(t *testing.T) {
	bodies := []octgrav.Body{
		body(1, 1, 1, 1), body(1, 1, 1, 2), body(1, 1, 1, 3), body(-1, 0, 0, 4),
	}

	for _, b := range builders {
		tree := b.build(bodies, DefaultConfig())
		checkTree(t, b.name, tree)
		assert.InDelta(t, 10, tree.Mass(), 1e-12, b.name)

		found := false
		for _, i := range tree.Leaves() {
			n := &tree.Nodes[i]
			if len(n.Bodies) == 3 {
				found = true
				assert.InDelta(t, 6, n.Data.Mass, 1e-12, b.name)
				assert.InDelta(t, 0, r3.Norm(
					r3.Sub(r3.Vec{X: 1, Y: 1, Z: 1}, n.Data.Center)), 1e-12, b.name)
				if b.name != "BuildInsert" {
					assert.True(t, n.Merged, b.name)
				}
			}
		}
		assert.True(t, found, b.name)
	}
}

func TestInsertDropsBeyondMaxDepth(t *testing.T) {
	bodies := []octgrav.Body{
		body(0, 0, 0, 1), body(1e-3, 0, 0, 2), body(10, 10, 10, 4),
	}
	cfg := DefaultConfig()
	cfg.MaxInsertDepth = 3

	tree := BuildInsert(bodies, cfg)
	checkTree(t, "BuildInsert", tree)
	assert.InDelta(t, 5, tree.Mass(), 1e-12)
	assert.ElementsMatch(t, []int{0, 2}, tree.BodyIndices())
	assert.Equal(t, 3, tree.Depth())
}

func TestZeroMassAggregates(t *testing.T) {
	bodies := []octgrav.Body{body(1, 0, 0, 0), body(-1, 0, 0, 0)}
	for _, b := range builders {
		tree := b.build(bodies, DefaultConfig())
		assert.Equal(t, 0.0, tree.Mass(), b.name)
		assert.Equal(t, tree.Bounds.Center, tree.Nodes[0].Data.Center, b.name)
		for _, i := range tree.Leaves() {
			n := &tree.Nodes[i]
			assert.Equal(t, n.Bounds.Center, n.Data.Center, b.name)
		}
	}
}

func sortedBodies(n *Node) []int {
	out := append([]int{}, n.Bodies...)
	sort.Ints(out)
	return out
}

func TestMortonMatchesPartition(t *testing.T) {
	sets := [][]octgrav.Body{
		bodygen.Uniform(2000, 6, 50, 1, 10),
		bodygen.Plummer(2000, 7, 1, 1),
		// Bodies on octant boundaries exercise the fallback ordering.
		{body(0, 0, 0, 1), body(1, 1, 1, 1), body(-1, -1, -1, 1),
			body(0, 1, 0, 1), body(0.5, 0.5, 0.5, 1), body(0, 0, 1, 1)},
	}

	for k, bodies := range sets {
		a := Build(bodies, DefaultConfig())
		b := BuildMorton(bodies, DefaultConfig())

		require.Equal(t, a.Len(), b.Len(), "set %d", k+1)
		for i := range a.Nodes {
			na, nb := &a.Nodes[i], &b.Nodes[i]
			if na.Kind != nb.Kind || na.Bounds != nb.Bounds ||
				na.Children != nb.Children || na.Merged != nb.Merged {
				t.Fatalf("%d) Node %d differs: %+v vs %+v", k+1, i, *na, *nb)
			}
			assert.Equal(t, sortedBodies(na), sortedBodies(nb))
			assert.InEpsilon(t, 1+na.Data.Mass, 1+nb.Data.Mass, 1e-12)
			assert.InDelta(t, 0, r3.Norm(r3.Sub(na.Data.Center, nb.Data.Center)),
				1e-9*(1+r3.Norm(na.Data.Center)))
		}
	}
}

func TestMortonLeavesAreRunsOfOrder(t *testing.T) {
	bodies := bodygen.Uniform(1000, 8, 1, 1, 2)
	tree := BuildMorton(bodies, DefaultConfig())

	order := tree.BodyIndices()
	assert.Len(t, order, len(bodies))
	for i, j := range order {
		// BodyIndices visits leaves in octant order, which is Morton order.
		if i > 0 {
			prev, cur := bodies[order[i-1]].Xs, bodies[j].Xs
			cp := geom.MortonEncode(prev, tree.Bounds)
			cc := geom.MortonEncode(cur, tree.Bounds)
			if cp > cc {
				t.Errorf("%d) Bodies %d and %d are out of Morton order.",
					i, order[i-1], j)
			}
		}
	}
}

func TestParallelBuildIsDeterministic(t *testing.T) {
	bodies := bodygen.Uniform(3000, 9, 10, 1, 2)

	seq := DefaultConfig()
	seq.ParallelPartitionMin = math.MaxInt32
	seq.ParallelBuildMin = math.MaxInt32

	par := DefaultConfig()
	par.ParallelPartitionMin = 16
	par.ParallelBuildMin = 16
	par.Threads = 4

	for _, b := range builders[:2] {
		a, c := b.build(bodies, seq), b.build(bodies, par)
		assert.Equal(t, a.Nodes, c.Nodes, b.name)
	}
}

func TestBoundsAndDepths(t *testing.T) {
	bodies := []octgrav.Body{
		body(-1, -1, -1, 1), body(1, 1, 1, 1), body(0.9, 0.9, 0.9, 1),
	}
	tree := Build(bodies, DefaultConfig())

	var v Visualizer = tree
	nbs := v.BoundsAndDepths()
	require.Equal(t, tree.Len(), len(nbs))
	assert.Equal(t, 0, nbs[0].Depth)
	assert.Equal(t, tree.Bounds, nbs[0].Box)

	counts := DepthCounts(tree)
	assert.Equal(t, 1, counts[0])
	assert.Equal(t, 2, counts[1])
	assert.Equal(t, tree.Depth()+1, len(counts))
}

func TestNodeRangeChecks(t *testing.T) {
	tree := Build([]octgrav.Body{body(0, 0, 0, 1), body(1, 0, 0, 1)},
		DefaultConfig())
	assert.NotNil(t, tree.Node(0))
	assert.Nil(t, tree.Node(-1))
	assert.Nil(t, tree.Node(tree.Len()))

	tree.Nodes = append(tree.Nodes, Node{})
	assert.Nil(t, tree.Node(tree.Len()-1))
}

func BenchmarkBuild(b *testing.B) {
	for _, n := range []int{1000, 10000, 100000} {
		bodies := bodygen.Uniform(n, bodygen.Seed, 1000, 1, 1000)
		for _, bld := range builders {
			b.Run(fmt.Sprintf("%s/%d", bld.name, n), func(b *testing.B) {
				cfg := DefaultConfig()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					bld.build(bodies, cfg)
				}
			})
		}
	}
}
