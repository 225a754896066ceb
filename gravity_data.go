package octgrav

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// GravityData is the aggregate mass and center of mass of a set of bodies.
type GravityData struct {
	Mass   float64
	Center r3.Vec
}

func (gd GravityData) Position() r3.Vec { return gd.Center }

// PointMass wraps a GravityData so that it satisfies Particle. Trees can
// then be built over aggregates.
type PointMass struct{ GravityData }

func (pm PointMass) Mass() float64 { return pm.GravityData.Mass }

// Aggregate computes the GravityData of ps. fallback is used as the center
// of mass when the total mass is not positive, or so small that the center
// cannot be represented.
func Aggregate[T Particle](ps []T, fallback r3.Vec) GravityData {
	mass, weighted := 0.0, r3.Vec{}
	for i := range ps {
		mass += ps[i].Mass()
		weighted = r3.Add(weighted, WeightedPosition(ps[i]))
	}
	return finish(mass, weighted, fallback)
}

// AggregateIndices is Aggregate restricted to ps[idxs[i]].
func AggregateIndices[T Particle](
	ps []T, idxs []int, fallback r3.Vec,
) GravityData {
	mass, weighted := 0.0, r3.Vec{}
	for _, j := range idxs {
		mass += ps[j].Mass()
		weighted = r3.Add(weighted, WeightedPosition(ps[j]))
	}
	return finish(mass, weighted, fallback)
}

// Merge combines several aggregates into one. Zero-mass entries do not
// move the center of mass.
func Merge(gds []GravityData, fallback r3.Vec) GravityData {
	mass, weighted := 0.0, r3.Vec{}
	for i := range gds {
		if gds[i].Mass <= 0 {
			continue
		}
		mass += gds[i].Mass
		weighted = r3.Add(weighted, r3.Scale(gds[i].Mass, gds[i].Center))
	}
	return finish(mass, weighted, fallback)
}

func finish(mass float64, weighted, fallback r3.Vec) GravityData {
	if mass > 0 {
		c := r3.Scale(1/mass, weighted)
		if finite(c.X) && finite(c.Y) && finite(c.Z) {
			return GravityData{Mass: mass, Center: c}
		}
	}
	return GravityData{Mass: mass, Center: fallback}
}

func finite(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }
