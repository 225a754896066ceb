package gravity

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/octree"
)

// Method is a force evaluation algorithm.
type Method int

const (
	SequentialDirect Method = iota
	ParallelDirect
	ParallelTree
)

func (m Method) String() string {
	switch m {
	case SequentialDirect:
		return "SequentialDirect"
	case ParallelDirect:
		return "ParallelDirect"
	case ParallelTree:
		return "ParallelTree"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// MethodFor returns the method Accelerations uses for n bodies.
func (p Params) MethodFor(n int) Method {
	switch {
	case n < p.DirectParallelMin:
		return SequentialDirect
	case n < p.TreeMin:
		return ParallelDirect
	}
	return ParallelTree
}

// Accelerations returns the acceleration on each body, choosing direct
// summation for small sets and Barnes-Hut for large ones.
func Accelerations[T octgrav.Particle](bodies []T, p Params) []r3.Vec {
	switch p.MethodFor(len(bodies)) {
	case SequentialDirect:
		return DirectSummation(bodies, p, false)
	case ParallelDirect:
		return DirectSummation(bodies, p, true)
	}
	return BarnesHut(BuildTree(bodies, p), p, true)
}

// BuildTree constructs a tree over bodies with the configured strategy.
func BuildTree[T octgrav.Particle](bodies []T, p Params) *octree.Octree[T] {
	return octree.BuildWith(p.Strategy, bodies, p.Tree)
}
