/*package bodygen creates reproducible body distributions for tests,
benchmarks and initial conditions.
*/
package bodygen

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/octgrav"
)

// Seed is the default seed used by the benchmarks.
const Seed = 20240401

// Uniform returns n bodies with positions drawn uniformly from the cube of
// half width hw centered on the origin and masses drawn uniformly from
// [mMin, mMax). Velocities are zero.
func Uniform(n int, seed uint64, hw, mMin, mMax float64) []octgrav.Body {
	gen := rand.New(rand.NewSource(seed))
	bodies := make([]octgrav.Body, n)
	for i := range bodies {
		bodies[i] = octgrav.Body{
			ID: int64(i + 1),
			Xs: r3.Vec{
				X: hw * (2*gen.Float64() - 1),
				Y: hw * (2*gen.Float64() - 1),
				Z: hw * (2*gen.Float64() - 1),
			},
			M: mMin + (mMax-mMin)*gen.Float64(),
		}
	}
	return bodies
}

// Spiral returns n bodies laid out along a deterministic spherical spiral
// with growing radius and mass. IDs start at 1.
func Spiral(n int) []octgrav.Body {
	bodies := make([]octgrav.Body, n)
	for i := range bodies {
		k := float64(i + 1)
		phi, theta := 0.1*k, 0.2*k
		r := 1000 + 10*k
		bodies[i] = octgrav.Body{
			ID: int64(i + 1),
			Xs: r3.Vec{
				X: r * math.Sin(phi) * math.Cos(theta),
				Y: r * math.Sin(phi) * math.Sin(theta),
				Z: r * math.Cos(phi),
			},
			M: 1000 + k,
		}
	}
	return bodies
}

// Disc returns a central body of mass mCenter followed by n-1 light bodies
// on circular orbits in the XY plane, with radii drawn uniformly from
// [rMin, rMax). The orbital speeds assume only the central mass and the
// given G.
func Disc(
	n int, seed uint64, mCenter, mBody, rMin, rMax, G float64,
) []octgrav.Body {
	if n == 0 {
		return []octgrav.Body{}
	}

	gen := rand.New(rand.NewSource(seed))
	bodies := make([]octgrav.Body, n)
	bodies[0] = octgrav.Body{ID: 1, M: mCenter}
	for i := 1; i < n; i++ {
		r := rMin + (rMax-rMin)*gen.Float64()
		theta := 2 * math.Pi * gen.Float64()
		v := math.Sqrt(G * mCenter / r)
		bodies[i] = octgrav.Body{
			ID: int64(i + 1),
			Xs: r3.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta)},
			Vs: r3.Vec{X: -v * math.Sin(theta), Y: v * math.Cos(theta)},
			M:  mBody,
		}
	}
	return bodies
}

// Plummer returns n equal-mass bodies whose positions follow a Plummer
// sphere with scale radius a. Velocities are zero.
func Plummer(n int, seed uint64, a, totalMass float64) []octgrav.Body {
	gen := rand.New(rand.NewSource(seed))
	bodies := make([]octgrav.Body, n)
	for i := range bodies {
		// Inverse CDF of the enclosed mass profile.
		u := gen.Float64()
		for u == 0 {
			u = gen.Float64()
		}
		r := a / math.Sqrt(math.Pow(u, -2.0/3) - 1)

		dir := r3.Unit(r3.Vec{
			X: gen.NormFloat64(), Y: gen.NormFloat64(), Z: gen.NormFloat64(),
		})
		bodies[i] = octgrav.Body{
			ID: int64(i + 1),
			Xs: r3.Scale(r, dir),
			M:  totalMass / float64(n),
		}
	}
	return bodies
}
