package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

type point r3.Vec

func (p point) Position() r3.Vec { return r3.Vec(p) }

func TestContaining(t *testing.T) {
	table := []struct {
		ps []point
		b  Box
	}{
		{[]point{}, Box{r3.Vec{}, 1}},
		{[]point{{1, 2, 3}}, Box{r3.Vec{X: 1, Y: 2, Z: 3}, MinHalfWidth}},
		{[]point{{-1, 0, 0}, {1, 0, 0}}, Box{r3.Vec{}, 1}},
		{
			[]point{{0, 0, 0}, {2, 4, 1}, {1, -4, 0.5}},
			Box{r3.Vec{X: 1, Y: 0, Z: 0.5}, 4},
		},
		{[]point{{3, 3, 3}, {3, 3, 3}}, Box{r3.Vec{X: 3, Y: 3, Z: 3}, MinHalfWidth}},
	}

	for i := range table {
		b := Containing(table[i].ps)
		if b != table[i].b {
			t.Errorf("%d) Expected Containing = %v, got %v.", i+1, table[i].b, b)
		}
		for _, p := range table[i].ps {
			if !b.Contains(r3.Vec(p)) {
				t.Errorf("%d) Box %v does not contain %v.", i+1, b, p)
			}
		}
	}
}

func TestOctantIndex(t *testing.T) {
	b := Box{r3.Vec{X: 1, Y: 1, Z: 1}, 1}
	table := []struct {
		p   r3.Vec
		idx int
	}{
		{r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, 0},
		{r3.Vec{X: 1.5, Y: 0.5, Z: 0.5}, 1},
		{r3.Vec{X: 0.5, Y: 1.5, Z: 0.5}, 2},
		{r3.Vec{X: 0.5, Y: 0.5, Z: 1.5}, 4},
		{r3.Vec{X: 1.5, Y: 1.5, Z: 1.5}, 7},
		// Ties go to the lower octant.
		{r3.Vec{X: 1, Y: 1, Z: 1}, 0},
		{r3.Vec{X: 1, Y: 1.5, Z: 1}, 2},
	}

	for i := range table {
		idx := b.OctantIndex(table[i].p)
		if idx != table[i].idx {
			t.Errorf("%d) Expected OctantIndex(%v) = %d, got %d.",
				i+1, table[i].p, table[i].idx, idx)
		}
	}
}

func TestOctantBoundsAgreesWithOctantIndex(t *testing.T) {
	b := Box{r3.Vec{X: -2, Y: 3, Z: 0.5}, 4}
	for i, sub := range b.Subdivide() {
		assert.Equal(t, b.HalfWidth/2, sub.HalfWidth)
		assert.Equal(t, i, b.OctantIndex(sub.Center), "octant %d", i)
		assert.True(t, b.Contains(sub.Min()))
		assert.True(t, b.Contains(sub.Max()))
	}
}

func TestOverlaps(t *testing.T) {
	b := Box{r3.Vec{}, 1}
	table := []struct {
		o   Box
		res bool
	}{
		{Box{r3.Vec{}, 0.1}, true},
		{Box{r3.Vec{X: 1.5}, 0.5}, true},
		{Box{r3.Vec{X: 1.6}, 0.5}, false},
		{Box{r3.Vec{X: 1.5, Y: 1.5, Z: 1.5}, 0.6}, true},
		{Box{r3.Vec{X: 1.5, Y: 1.5, Z: -3}, 0.6}, false},
		{Box{r3.Vec{}, 10}, true},
	}

	for i := range table {
		if res := b.Overlaps(table[i].o); res != table[i].res {
			t.Errorf("%d) Expected Overlaps(%v) = %v, got %v.",
				i+1, table[i].o, table[i].res, res)
		}
		if res := table[i].o.Overlaps(b); res != table[i].res {
			t.Errorf("%d) Overlaps is not symmetric.", i+1)
		}
	}
}

func TestToR3(t *testing.T) {
	b := Box{r3.Vec{X: 1, Y: 2, Z: 3}, 0.5}
	rb := b.ToR3()
	assert.Equal(t, r3.Vec{X: 0.5, Y: 1.5, Z: 2.5}, rb.Min)
	assert.Equal(t, r3.Vec{X: 1.5, Y: 2.5, Z: 3.5}, rb.Max)
	assert.InDelta(t, 1.0, rb.Size().X, 1e-12)
}
