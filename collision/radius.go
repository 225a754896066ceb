/*package collision finds pairs of bodies close enough to merge and merges
them inelastically.

Two bodies collide when their separation is below MergeRadius of their
masses. Detection either checks every pair or queries an octree, pruning
every subtree whose cube misses a body's search cube.
*/
package collision

import (
	"math"

	"github.com/phil-mansfield/octgrav/octree"
)

// MergeRadius returns the separation below which bodies of mass m1 and m2
// merge: scaler * ln(m1 + m2), clamped to zero.
func MergeRadius(m1, m2, scaler float64) float64 {
	sum := m1 + m2
	if !(sum > 1) {
		return 0
	}
	return scaler * math.Log(sum)
}

// Params controls collision detection.
type Params struct {
	// Scaler multiplies the logarithmic merge radius.
	Scaler float64
	// TreeMin is the body count at which the octree replaces the
	// pairwise check.
	TreeMin int

	Strategy octree.Strategy
	Tree     octree.Config
}

// DefaultParams returns the default collision parameters.
func DefaultParams() Params {
	return Params{
		Scaler:   12,
		TreeMin:  440,
		Strategy: octree.Partition,
		Tree:     octree.DefaultConfig(),
	}
}
