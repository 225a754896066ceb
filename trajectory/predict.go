/*package trajectory predicts the future paths of a body set. Predictions
run on a copy of the bodies, optionally in a background Worker so that a
caller can keep stepping the real simulation while a newer prediction is
computed.
*/
package trajectory

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/gravity"
	"github.com/phil-mansfield/octgrav/sim"
)

// Trajectory is the sequence of predicted positions of a single body.
type Trajectory struct {
	ID     int64
	Points []r3.Vec
}

// Predict integrates a copy of bodies for steps points spaced dt apart.
// The first point of every trajectory is the body's current position.
//
// If centered is true and a body with ID centerID exists, every point is
// shifted by the displacement of that body since the start, so that the
// paths are drawn in its frame. Merging is never applied.
func Predict(
	bodies []octgrav.Body, steps int, dt float64, p gravity.Params,
	centerID int64, centered bool,
) []Trajectory {
	if steps < 1 {
		return []Trajectory{}
	}

	own := make([]octgrav.Body, len(bodies))
	copy(own, bodies)

	center := -1
	if centered {
		for i := range own {
			if own[i].ID == centerID {
				center = i
				break
			}
		}
	}

	trajs := make([]Trajectory, len(own))
	for i := range own {
		trajs[i] = Trajectory{ID: own[i].ID, Points: make([]r3.Vec, steps)}
		trajs[i].Points[0] = own[i].Xs
	}

	var x0 r3.Vec
	if center >= 0 {
		x0 = own[center].Xs
	}

	for k := 1; k < steps; k++ {
		sim.Step(own, dt, p)

		var offset r3.Vec
		if center >= 0 {
			offset = r3.Sub(own[center].Xs, x0)
		}
		for i := range own {
			trajs[i].Points[k] = r3.Sub(own[i].Xs, offset)
		}
	}

	return trajs
}

// Request asks a predictor for a new set of trajectories.
type Request struct {
	Bodies   []octgrav.Body
	Steps    int
	Dt       float64
	CenterID int64
	Centered bool
	// Seq is echoed back in the Result.
	Seq int
}

// Result is a completed prediction.
type Result struct {
	Seq          int
	Trajectories []Trajectory
}

// NewPredictor starts a Worker which answers Requests. When several
// requests queue up while a prediction is running only the newest one is
// computed.
func NewPredictor(p gravity.Params, buffer int) *Worker[Request, Result] {
	return NewWorker[Request, Result](buffer,
		func(rx *Receiver[Request], send func(Result)) {
			for {
				b, ok := rx.RecvBatch()
				if !ok {
					return
				}
				req := b.Latest()
				send(Result{
					Seq: req.Seq,
					Trajectories: Predict(
						req.Bodies, req.Steps, req.Dt, p,
						req.CenterID, req.Centered,
					),
				})
			}
		})
}
