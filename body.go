package octgrav

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Body is a simulated point mass.
type Body struct {
	ID     int64
	Xs, Vs r3.Vec
	M      float64
}

func (b Body) Position() r3.Vec { return b.Xs }
func (b Body) Mass() float64    { return b.M }
func (b Body) Velocity() r3.Vec { return b.Vs }

func (b *Body) SetVelocity(v r3.Vec) { b.Vs = v }
func (b *Body) SetMass(m float64)    { b.M = m }

// Momentum returns m * v.
func (b *Body) Momentum() r3.Vec { return r3.Scale(b.M, b.Vs) }

func (b Body) String() string {
	return fmt.Sprintf(
		"Body{%d: x=(%.4g, %.4g, %.4g) v=(%.4g, %.4g, %.4g) m=%.4g}",
		b.ID, b.Xs.X, b.Xs.Y, b.Xs.Z, b.Vs.X, b.Vs.Y, b.Vs.Z, b.M,
	)
}

// Pointers returns a pointer to each element of bodies. *Body satisfies
// Kinetic, so the result can be handed to the collision merger.
func Pointers(bodies []Body) []*Body {
	ptrs := make([]*Body, len(bodies))
	for i := range bodies {
		ptrs[i] = &bodies[i]
	}
	return ptrs
}

// TotalMass returns the sum of the masses of ps.
func TotalMass[T Massive](ps []T) float64 {
	sum := 0.0
	for i := range ps {
		sum += ps[i].Mass()
	}
	return sum
}

// TotalMomentum returns the summed momentum of bodies.
func TotalMomentum(bodies []Body) r3.Vec {
	p := r3.Vec{}
	for i := range bodies {
		p = r3.Add(p, bodies[i].Momentum())
	}
	return p
}
