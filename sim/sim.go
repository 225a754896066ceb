/*package sim advances a set of bodies through time. Each step computes
accelerations with gravity.Accelerations, applies a semi-implicit Euler
update and then, optionally, merges colliding bodies.
*/
package sim

import (
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/collision"
	"github.com/phil-mansfield/octgrav/gravity"
)

// Params controls a Simulation.
type Params struct {
	Dt float64
	// MergeOnCollision enables collision merging after every step.
	MergeOnCollision bool

	Gravity   gravity.Params
	Collision collision.Params
}

// DefaultParams returns the default simulation parameters.
func DefaultParams() Params {
	return Params{
		Dt:        1e-2,
		Gravity:   gravity.DefaultParams(),
		Collision: collision.DefaultParams(),
	}
}

// Step advances bodies by dt in place: v += a dt, then x += v dt.
func Step(bodies []octgrav.Body, dt float64, p gravity.Params) {
	acc := gravity.Accelerations(bodies, p)
	Kick(bodies, acc, dt)
}

// Kick applies the accelerations acc to bodies over dt.
func Kick(bodies []octgrav.Body, acc []r3.Vec, dt float64) {
	for i := range bodies {
		b := &bodies[i]
		b.Vs = r3.Add(b.Vs, r3.Scale(dt, acc[i]))
		b.Xs = r3.Add(b.Xs, r3.Scale(dt, b.Vs))
	}
}

// MergeCollisions merges every colliding pair in bodies and returns the
// survivors along with the IDs of the absorbed bodies.
func MergeCollisions(
	bodies []octgrav.Body, p collision.Params,
) (survivors []octgrav.Body, removed []int64) {
	return collision.MergeBodies(bodies, p)
}

// Simulation holds the evolving state of a body set.
type Simulation struct {
	Bodies []octgrav.Body
	Params Params

	Time  float64
	Steps int
	// Removed lists the IDs of every body absorbed so far, in the order
	// they were absorbed.
	Removed []int64
}

// New creates a Simulation over a copy of bodies.
func New(bodies []octgrav.Body, p Params) *Simulation {
	own := make([]octgrav.Body, len(bodies))
	copy(own, bodies)
	return &Simulation{Bodies: own, Params: p, Removed: []int64{}}
}

// Step advances the simulation by one time step and returns the IDs of
// any bodies absorbed during it.
func (s *Simulation) Step() []int64 {
	Step(s.Bodies, s.Params.Dt, s.Params.Gravity)
	s.Time += s.Params.Dt
	s.Steps++

	if !s.Params.MergeOnCollision {
		return []int64{}
	}

	var removed []int64
	s.Bodies, removed = MergeCollisions(s.Bodies, s.Params.Collision)
	for _, id := range removed {
		log.Debugf("Step %d: merged body %d.", s.Steps, id)
	}
	s.Removed = append(s.Removed, removed...)
	return removed
}

// Run advances the simulation by n steps. If visit is non-nil it is
// called after every step.
func (s *Simulation) Run(n int, visit func(s *Simulation)) {
	for i := 0; i < n; i++ {
		s.Step()
		if visit != nil {
			visit(s)
		}
	}
}

// Energy returns the kinetic and softened potential energy of the bodies.
// The potential is summed directly, so this is O(n^2).
func (s *Simulation) Energy() (kinetic, potential float64) {
	return Energy(s.Bodies, s.Params.Gravity)
}

// Energy returns the kinetic and softened potential energy of bodies.
func Energy(bodies []octgrav.Body, p gravity.Params) (kinetic, potential float64) {
	for i := range bodies {
		kinetic += 0.5 * bodies[i].M * r3.Norm2(bodies[i].Vs)
		for j := i + 1; j < len(bodies); j++ {
			r2 := r3.Norm2(r3.Sub(bodies[i].Xs, bodies[j].Xs)) + p.SofteningSq
			if r2 <= 0 {
				continue
			}
			potential -= p.G * bodies[i].M * bodies[j].M / math.Sqrt(r2)
		}
	}
	return kinetic, potential
}
