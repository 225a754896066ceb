package trajectory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/gravity"
	"github.com/phil-mansfield/octgrav/sim"
)

func pair() []octgrav.Body {
	return []octgrav.Body{
		{ID: 7, M: 1000, Vs: r3.Vec{X: 1}},
		{ID: 9, Xs: r3.Vec{X: 10}, Vs: r3.Vec{X: 1, Y: 10}, M: 1e-6},
	}
}

func TestPredictMatchesStep(t *testing.T) {
	bodies := pair()
	p := gravity.DefaultParams()
	dt := 1e-2

	trajs := Predict(bodies, 20, dt, p, 0, false)
	require.Len(t, trajs, 2)
	assert.Equal(t, int64(7), trajs[0].ID)
	assert.Equal(t, int64(9), trajs[1].ID)

	ref := make([]octgrav.Body, len(bodies))
	copy(ref, bodies)
	for k := 0; k < 20; k++ {
		for i := range ref {
			if trajs[i].Points[k] != ref[i].Xs {
				t.Errorf("%d) Body %d: expected %v, got %v.",
					k+1, i, ref[i].Xs, trajs[i].Points[k])
			}
		}
		sim.Step(ref, dt, p)
	}

	// The input is untouched.
	assert.Equal(t, pair(), bodies)
}

func TestPredictCentered(t *testing.T) {
	bodies := pair()
	trajs := Predict(bodies, 50, 1e-2, gravity.DefaultParams(), 7, true)
	require.Len(t, trajs, 2)

	for k, x := range trajs[0].Points {
		if r3.Norm(r3.Sub(x, bodies[0].Xs)) > 1e-12 {
			t.Errorf("%d) Center body moved to %v.", k+1, x)
		}
	}
	assert.Equal(t, bodies[1].Xs, trajs[1].Points[0])

	// An unknown center leaves the frame alone.
	plain := Predict(bodies, 50, 1e-2, gravity.DefaultParams(), 0, false)
	missing := Predict(bodies, 50, 1e-2, gravity.DefaultParams(), 123, true)
	assert.Equal(t, plain, missing)
}

func TestPredictNoSteps(t *testing.T) {
	assert.Empty(t, Predict(pair(), 0, 1, gravity.DefaultParams(), 0, false))
	trajs := Predict(pair(), 1, 1, gravity.DefaultParams(), 0, false)
	require.Len(t, trajs, 2)
	assert.Equal(t, []r3.Vec{{X: 10}}, trajs[1].Points)
}

func TestBatch(t *testing.T) {
	b := Batch[int]{Head: 1}
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 1, b.Latest())
	assert.Equal(t, 1, b.FindOrLatest(func(int) bool { return false }))

	b.Tail = []int{2, 3, 4}
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, 4, b.Latest())
	assert.Equal(t, 2, b.FindOrLatest(func(x int) bool { return x%2 == 0 }))
	assert.Equal(t, 4, b.FindOrLatest(func(x int) bool { return x > 10 }))
}

func TestWorkerRoundTrip(t *testing.T) {
	w := NewWorker[int, int](4, func(rx *Receiver[int], send func(int)) {
		for {
			x, ok := rx.Recv()
			if !ok {
				return
			}
			send(x * x)
		}
	})

	for i := 1; i <= 3; i++ {
		require.NoError(t, w.Send(i))
		r, ok := w.Recv()
		require.True(t, ok)
		assert.Equal(t, i*i, r)
	}

	require.NoError(t, w.Join())
	assert.Error(t, w.Send(4))
	_, ok := w.Recv()
	assert.False(t, ok)
}

func TestWorkerBatchesLatest(t *testing.T) {
	start := make(chan struct{})
	w := NewWorker[int, []int](8, func(rx *Receiver[int], send func([]int)) {
		<-start
		for {
			b, ok := rx.RecvBatch()
			if !ok {
				return
			}
			send(append([]int{b.Head}, b.Tail...))
		}
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, w.Send(i))
	}
	close(start)

	r, ok := w.Recv()
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, r)
	require.NoError(t, w.Join())
}

func TestWorkerDropsOldResults(t *testing.T) {
	w := NewWorker[int, int](2, func(rx *Receiver[int], send func(int)) {
		for i := 0; i < 5; i++ {
			send(i)
		}
		for {
			if _, ok := rx.Recv(); !ok {
				return
			}
		}
	})
	require.NoError(t, w.Join())

	r, ok := w.TryRecvLatest()
	require.True(t, ok)
	assert.Equal(t, 4, r)
	_, ok = w.TryRecv()
	assert.False(t, ok)
}

func TestWorkerPanic(t *testing.T) {
	w := NewWorker[int, int](1, func(rx *Receiver[int], send func(int)) {
		rx.Recv()
		panic("boom")
	})
	require.NoError(t, w.Send(1))
	err := w.Join()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestWorkerSendAfterExit(t *testing.T) {
	w := NewWorker[int, int](4, func(rx *Receiver[int], send func(int)) {})
	<-w.done

	for i := 0; i < 3; i++ {
		if err := w.Send(i); err == nil {
			t.Errorf("%d) Expected an error sending to an exited worker.", i+1)
		}
	}
	assert.NoError(t, w.Join())
}

func TestPredictor(t *testing.T) {
	p := gravity.DefaultParams()
	w := NewPredictor(p, 2)
	req := Request{Bodies: pair(), Steps: 10, Dt: 1e-2, Seq: 3}
	require.NoError(t, w.Send(req))

	res, ok := w.Recv()
	require.True(t, ok)
	assert.Equal(t, 3, res.Seq)
	assert.Equal(t, Predict(req.Bodies, 10, 1e-2, p, 0, false), res.Trajectories)
	require.NoError(t, w.Join())
}
