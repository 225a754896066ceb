package collision

import (
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/octgrav"
)

// Absorb merges loser into keeper: keeper's mass becomes the sum of both
// and its velocity the momentum-weighted average. loser is left unchanged.
func Absorb[T octgrav.Kinetic](keeper, loser T) {
	m1, m2 := keeper.Mass(), loser.Mass()
	m := m1 + m2
	if m != 0 {
		p := r3.Add(
			r3.Scale(m1, keeper.Velocity()), r3.Scale(m2, loser.Velocity()),
		)
		keeper.SetVelocity(r3.Scale(1/m, p))
	}
	keeper.SetMass(m)
}

// Merge applies pairs in order. For each pair the heavier body absorbs the
// lighter one, with ties going to A. A pair involving a body that has
// already been absorbed this call is skipped. The sorted indices of the
// absorbed bodies are returned; removing them is up to the caller.
func Merge[T octgrav.Kinetic](bodies []T, pairs []Pair) []int {
	absorbed := map[int]bool{}
	for _, pair := range pairs {
		if absorbed[pair.A] || absorbed[pair.B] {
			continue
		}

		keep, lose := pair.A, pair.B
		if bodies[pair.B].Mass() > bodies[pair.A].Mass() {
			keep, lose = lose, keep
		}
		Absorb(bodies[keep], bodies[lose])
		absorbed[lose] = true
	}

	out := make([]int, 0, len(absorbed))
	for i := range absorbed {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// MergeBodies detects and merges collisions among bodies. It returns the
// surviving bodies, in their original relative order, and the IDs of the
// absorbed ones. Merged bodies are updated in place in bodies.
func MergeBodies(
	bodies []octgrav.Body, p Params,
) (survivors []octgrav.Body, removed []int64) {
	pairs := Detect(bodies, p)
	if len(pairs) == 0 {
		return bodies, []int64{}
	}

	absorbed := Merge(octgrav.Pointers(bodies), pairs)
	removed = make([]int64, len(absorbed))
	for k, i := range absorbed {
		removed[k] = bodies[i].ID
	}

	survivors = make([]octgrav.Body, 0, len(bodies)-len(absorbed))
	k := 0
	for i := range bodies {
		if k < len(absorbed) && absorbed[k] == i {
			k++
			continue
		}
		survivors = append(survivors, bodies[i])
	}
	return survivors, removed
}
