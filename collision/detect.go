package collision

import (
	"github.com/dgravesa/go-parallel/parallel"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/geom"
	"github.com/phil-mansfield/octgrav/octree"
)

// Pair is a colliding pair of body indices with A < B.
type Pair struct {
	A, B int
}

// collides returns true if a and b are within their merge radius.
func collides(a, b octgrav.Particle, scaler float64) bool {
	r := MergeRadius(a.Mass(), b.Mass(), scaler)
	return r > 0 && r3.Norm2(r3.Sub(a.Position(), b.Position())) < r*r
}

// Detect finds all colliding pairs, using a tree for large inputs. Pairs
// are ordered by A, then B.
func Detect[T octgrav.Particle](bodies []T, p Params) []Pair {
	if len(bodies) < p.TreeMin {
		return DetectBrute(bodies, p.Scaler)
	}
	tree := octree.BuildWith(p.Strategy, bodies, p.Tree)
	return DetectTree(tree, p.Scaler, p.Tree.Threads)
}

// DetectBrute checks every pair of bodies.
func DetectBrute[T octgrav.Particle](bodies []T, scaler float64) []Pair {
	pairs := []Pair{}
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			if collides(bodies[i], bodies[j], scaler) {
				pairs = append(pairs, Pair{i, j})
			}
		}
	}
	return pairs
}

// DetectTree finds colliding pairs by querying tree once per body. Each
// query only descends into nodes whose cube overlaps a search cube large
// enough to hold any partner the body could merge with. Queries run
// concurrently over threads goroutines.
func DetectTree[T octgrav.Particle](
	tree *octree.Octree[T], scaler float64, threads int,
) []Pair {
	bodies := tree.Bodies
	if tree.Empty() || len(bodies) < 2 {
		return []Pair{}
	}
	if threads < 1 {
		threads = 1
	}

	mMax := bodies[0].Mass()
	for i := range bodies {
		if m := bodies[i].Mass(); m > mMax {
			mMax = m
		}
	}

	found := make([][]int, len(bodies))
	parallel.WithNumGoroutines(threads).For(len(bodies), func(i, _ int) {
		r := MergeRadius(bodies[i].Mass(), mMax, scaler)
		if r <= 0 {
			return
		}
		found[i] = query(tree, i, geom.Cube(bodies[i].Position(), r), scaler)
	})

	pairs := []Pair{}
	for i := range found {
		for _, j := range found[i] {
			pairs = append(pairs, Pair{i, j})
		}
	}
	return pairs
}

// query returns the sorted indices j > i of bodies colliding with body i
// among those whose leaves overlap search.
func query[T octgrav.Particle](
	tree *octree.Octree[T], i int, search geom.Box, scaler float64,
) []int {
	out := []int{}
	tree.Walk(func(_ int, n *octree.Node, _ int) bool {
		if !n.Bounds.Overlaps(search) {
			return false
		}
		if n.Kind != octree.Leaf {
			return true
		}
		for _, j := range n.Bodies {
			if j > i && collides(tree.Bodies[i], tree.Bodies[j], scaler) {
				out = append(out, j)
			}
		}
		return false
	})
	slices.Sort(out)
	return out
}
