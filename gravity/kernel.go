package gravity

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// minDistCubed is the cubed softened distance below which a pair is treated
// as coincident and contributes nothing.
const minDistCubed = 1e-300

// PointAccel returns the acceleration at x due to a point mass m at src.
func PointAccel(x, src r3.Vec, m, G, eps2 float64) r3.Vec {
	d := r3.Sub(src, x)
	r2 := r3.Norm2(d) + eps2
	cube := r2 * math.Sqrt(r2)
	if !(cube >= minDistCubed) {
		return r3.Vec{}
	}
	f := G * m / cube
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return r3.Vec{}
	}
	return r3.Scale(f, d)
}
