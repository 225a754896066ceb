/*package gravity computes the gravitational acceleration on every body in a
set, either exactly by direct summation or approximately with a Barnes-Hut
walk over an octree. Accelerations picks between the two based on the
number of bodies.

All accelerations use the softened kernel

    a = G m d / (|d|^2 + eps^2)^(3/2)

where d points from the target to the source.
*/
package gravity

import (
	"github.com/phil-mansfield/octgrav/octree"
)

// Params controls force evaluation.
type Params struct {
	// G is the gravitational constant.
	G float64
	// Theta is the Barnes-Hut opening angle. A node of width s at distance
	// d is treated as a point mass when s < Theta * d.
	Theta float64
	// SofteningSq is eps^2 in the force kernel.
	SofteningSq float64

	// DirectParallelMin is the body count at which direct summation is
	// run in parallel.
	DirectParallelMin int
	// TreeMin is the body count at which Barnes-Hut replaces direct
	// summation.
	TreeMin int

	Strategy octree.Strategy
	Tree     octree.Config
}

// DefaultParams returns the default force parameters.
func DefaultParams() Params {
	return Params{
		G:                 1,
		Theta:             0.7,
		SofteningSq:       1e-2,
		DirectParallelMin: 100,
		TreeMin:           440,
		Strategy:          octree.Partition,
		Tree:              octree.DefaultConfig(),
	}
}

func (p Params) threads() int {
	if p.Tree.Threads < 1 {
		return octree.DefaultConfig().Threads
	}
	return p.Tree.Threads
}
