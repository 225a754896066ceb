/*package octgrav computes gravitational accelerations and collision sets for
collections of point masses. The spatial index lives in the octree package,
force evaluation in gravity and collision handling in collision. This
package holds the capability interfaces and the small value types shared by
all of them.
*/
package octgrav

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Spatial is anything with a position.
type Spatial interface {
	Position() r3.Vec
}

// Massive is anything with a mass.
type Massive interface {
	Mass() float64
}

// Particle is a point mass. Every tree builder and force evaluator is
// generic over Particle.
type Particle interface {
	Spatial
	Massive
}

// Kinetic is a Particle which can be updated in place when bodies merge.
type Kinetic interface {
	Particle
	Velocity() r3.Vec
	SetVelocity(v r3.Vec)
	SetMass(m float64)
}

// WeightedPosition returns m * x for p, or the zero vector if p has no
// positive mass.
func WeightedPosition(p Particle) r3.Vec {
	m := p.Mass()
	if m <= 0 {
		return r3.Vec{}
	}
	return r3.Scale(m, p.Position())
}
