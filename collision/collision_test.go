package collision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/bodygen"
	"github.com/phil-mansfield/octgrav/octree"
)

func body(id int64, x, y, z, m float64) octgrav.Body {
	return octgrav.Body{ID: id, Xs: r3.Vec{X: x, Y: y, Z: z}, M: m}
}

func TestMergeRadius(t *testing.T) {
	table := []struct {
		m1, m2, scaler, r float64
	}{
		{0, 0, 12, 0},
		{0.25, 0.25, 12, 0},
		{0.5, 0.5, 12, 0},
		{1, 0, 12, 0},
		{-5, 1, 12, 0},
		{math.E, 0, 1, 1},
		{1, 1, 12, 12 * math.Ln2},
		{500, 500, 2, 2 * math.Log(1000)},
	}

	for i := range table {
		r := MergeRadius(table[i].m1, table[i].m2, table[i].scaler)
		if math.Abs(r-table[i].r) > 1e-12 {
			t.Errorf("%d) Expected MergeRadius(%g, %g, %g) = %g, got %g.",
				i+1, table[i].m1, table[i].m2, table[i].scaler, table[i].r, r)
		}
	}
}

func TestDetectBrute(t *testing.T) {
	// With scaler 1, two bodies of mass e/2 merge within a distance of 1.
	m := math.E / 2
	bodies := []octgrav.Body{
		body(1, 0, 0, 0, m),
		body(2, 0.9, 0, 0, m),
		body(3, 5, 5, 5, m),
		body(4, 5, 5, 5.5, m),
		body(5, 0, 1.5, 0, m),
	}

	pairs := DetectBrute(bodies, 1)
	assert.Equal(t, []Pair{{0, 1}, {2, 3}}, pairs)
	assert.Empty(t, DetectBrute(bodies, 0))
	assert.Empty(t, DetectBrute([]octgrav.Body{}, 1))
}

func TestDetectTreeMatchesBrute(t *testing.T) {
	sets := []struct {
		bodies []octgrav.Body
		scaler float64
		some   bool
	}{
		{bodygen.Uniform(2000, 1, 100, 1, 4), 5, true},
		{bodygen.Uniform(1000, 2, 10, 0.5, 50), 0.3, true},
		{bodygen.Plummer(1500, 3, 1, 3000), 0.05, true},
		{bodygen.Spiral(800), 12, false},
	}

	for i, set := range sets {
		brute := DetectBrute(set.bodies, set.scaler)
		for s := octree.Partition; s < octree.EndStrategy; s++ {
			tree := octree.BuildWith(s, set.bodies, octree.DefaultConfig())
			pairs := DetectTree(tree, set.scaler, 4)
			if !assert.Equal(t, brute, pairs, "set %d, %s", i+1, s) {
				continue
			}
		}
		if set.some && len(brute) == 0 {
			t.Errorf("%d) Fixture has no collisions.", i+1)
		}
	}
}

func TestDetectSelects(t *testing.T) {
	bodies := bodygen.Uniform(600, 4, 30, 1, 4)
	p := DefaultParams()
	p.Scaler = 1

	assert.Equal(t, DetectBrute(bodies, p.Scaler), Detect(bodies, p))
	p.TreeMin = 10000
	assert.Equal(t, DetectBrute(bodies, p.Scaler), Detect(bodies, p))
}

func TestAbsorbConservesMomentum(t *testing.T) {
	table := []struct {
		a, b octgrav.Body
	}{
		{
			octgrav.Body{M: 3, Vs: r3.Vec{X: 1}},
			octgrav.Body{M: 1, Vs: r3.Vec{X: -1, Y: 2}},
		},
		{
			octgrav.Body{M: 2, Vs: r3.Vec{Z: 5}},
			octgrav.Body{M: 2, Vs: r3.Vec{Z: -5}},
		},
		{octgrav.Body{M: 0}, octgrav.Body{M: 0, Vs: r3.Vec{X: 1}}},
	}

	for i := range table {
		a, b := table[i].a, table[i].b
		p0 := r3.Add(a.Momentum(), b.Momentum())
		m0 := a.M + b.M

		Absorb(&a, &b)
		if a.M != m0 {
			t.Errorf("%d) Expected mass %g, got %g.", i+1, m0, a.M)
		}
		if r3.Norm(r3.Sub(a.Momentum(), p0)) > 1e-12 {
			t.Errorf("%d) Momentum changed from %v to %v.", i+1, p0, a.Momentum())
		}
		assert.Equal(t, table[i].b, b, "loser modified")
	}
}

func TestMerge(t *testing.T) {
	bodies := []octgrav.Body{
		{ID: 10, M: 1, Vs: r3.Vec{X: 1}},
		{ID: 11, M: 3, Vs: r3.Vec{X: -1}},
		{ID: 12, M: 2},
		{ID: 13, M: 2},
		{ID: 14, M: 5},
	}
	ptrs := octgrav.Pointers(bodies)

	pairs := []Pair{{0, 1}, {0, 4}, {2, 3}, {3, 4}}
	absorbed := Merge(ptrs, pairs)

	// 1 absorbs 0. (0, 4) is skipped since 0 is gone. 2 absorbs 3 on the
	// tie and (3, 4) is skipped.
	assert.Equal(t, []int{0, 3}, absorbed)
	assert.Equal(t, 4.0, bodies[1].M)
	assert.InDelta(t, -0.5, bodies[1].Vs.X, 1e-12)
	assert.Equal(t, 4.0, bodies[2].M)
	assert.Equal(t, 5.0, bodies[4].M)
}

func TestMergeSortsAbsorbed(t *testing.T) {
	masses := []float64{1, 1, 5, 1, 1, 9}
	pairs := []Pair{{4, 5}, {2, 3}, {0, 1}}

	for trial := 0; trial < 10; trial++ {
		bodies := make([]octgrav.Body, len(masses))
		for i := range bodies {
			bodies[i] = octgrav.Body{ID: int64(i), M: masses[i]}
		}
		absorbed := Merge(octgrav.Pointers(bodies), pairs)
		assert.Equal(t, []int{1, 3, 4}, absorbed, "trial %d", trial+1)
	}
}

func TestMergeBodies(t *testing.T) {
	m := math.E / 2
	bodies := []octgrav.Body{
		{ID: 1, Xs: r3.Vec{}, Vs: r3.Vec{X: 1}, M: m},
		{ID: 2, Xs: r3.Vec{X: 0.5}, Vs: r3.Vec{X: -1}, M: 2 * m},
		{ID: 3, Xs: r3.Vec{X: 50}, M: m},
	}
	p := DefaultParams()
	p.Scaler = 1

	mass0 := octgrav.TotalMass(bodies)
	mom0 := octgrav.TotalMomentum(bodies)

	survivors, removed := MergeBodies(bodies, p)
	require.Len(t, survivors, 2)
	assert.Equal(t, []int64{1}, removed)
	assert.Equal(t, int64(2), survivors[0].ID)
	assert.Equal(t, int64(3), survivors[1].ID)
	assert.Equal(t, r3.Vec{X: 0.5}, survivors[0].Xs)

	assert.InDelta(t, mass0, octgrav.TotalMass(survivors), 1e-12)
	mom := octgrav.TotalMomentum(survivors)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(mom, mom0)), 1e-12)

	again, removed := MergeBodies(survivors, p)
	assert.Equal(t, survivors, again)
	assert.Empty(t, removed)
}

func BenchmarkDetect(b *testing.B) {
	bodies := bodygen.Spiral(5000)
	p := DefaultParams()
	tree := octree.Build(bodies, p.Tree)

	b.Run("Brute", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			DetectBrute(bodies, p.Scaler)
		}
	})
	b.Run("Tree", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			DetectTree(tree, p.Scaler, p.Tree.Threads)
		}
	})
}
