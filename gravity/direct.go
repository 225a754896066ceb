package gravity

import (
	"github.com/dgravesa/go-parallel/parallel"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/octgrav"
)

// DirectSummation returns the exact softened acceleration on every body by
// summing over all pairs. The parallel and sequential versions give
// identical results.
func DirectSummation[T octgrav.Particle](
	bodies []T, p Params, par bool,
) []r3.Vec {
	acc := make([]r3.Vec, len(bodies))
	eval := func(i, _ int) {
		acc[i] = DirectAccelerationAt(bodies, bodies[i].Position(), i, p)
	}

	if par {
		parallel.WithNumGoroutines(p.threads()).For(len(bodies), eval)
	} else {
		for i := range bodies {
			eval(i, 0)
		}
	}
	return acc
}

// DirectAccelerationAt returns the exact acceleration at x due to every
// body except bodies[skip]. Pass skip = -1 to include all of them.
func DirectAccelerationAt[T octgrav.Particle](
	bodies []T, x r3.Vec, skip int, p Params,
) r3.Vec {
	acc := r3.Vec{}
	for j := range bodies {
		if j == skip {
			continue
		}
		acc = r3.Add(acc, PointAccel(
			x, bodies[j].Position(), bodies[j].Mass(), p.G, p.SofteningSq,
		))
	}
	return acc
}
