package octree

import (
	"sync"

	"github.com/dgravesa/go-parallel/parallel"
	"golang.org/x/exp/slices"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/geom"
)

// BuildMorton constructs the same tree as Build, but first sorts bodies
// along a Morton curve. Every subtree then covers a contiguous run of the
// sorted permutation and leaves hold sub-slices of it instead of freshly
// partitioned buckets.
func BuildMorton[T octgrav.Particle](bodies []T, cfg Config) *Octree[T] {
	cfg = cfg.normalize()
	t := empty(bodies)
	if len(bodies) == 0 {
		return t
	}

	order := MortonOrder(bodies, t.Bounds, cfg)
	b := &mortonBuilder[T]{bodies: bodies, order: order, cfg: cfg}
	t.Nodes = finalize(b.subtree(0, len(order), t.Bounds))
	t.Root = 0
	return t
}

// MortonOrder returns the indices of bodies sorted by their Morton code
// within root. Ties keep their input order.
func MortonOrder[T octgrav.Spatial](
	bodies []T, root geom.Box, cfg Config,
) []int {
	codes := make([]geom.Morton, len(bodies))
	encode := func(i, _ int) {
		codes[i] = geom.MortonEncode(bodies[i].Position(), root)
	}
	if len(bodies) >= cfg.ParallelPartitionMin {
		parallel.WithNumGoroutines(cfg.Threads).For(len(bodies), encode)
	} else {
		for i := range bodies {
			encode(i, 0)
		}
	}

	order := make([]int, len(bodies))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case codes[a] < codes[b]:
			return -1
		case codes[a] > codes[b]:
			return +1
		}
		return 0
	})
	return order
}

type mortonBuilder[T octgrav.Particle] struct {
	bodies []T
	order  []int
	cfg    Config
}

// subtree builds the subtree covering order[lo:hi]. See
// partitionBuilder.subtree for the layout of the returned arena.
func (b *mortonBuilder[T]) subtree(lo, hi int, box geom.Box) []Node {
	run := b.order[lo:hi:hi]
	switch {
	case len(run) == 1:
		return []Node{leaf(b.bodies, run, box, false)}
	case box.HalfWidth <= b.cfg.MergeHalfWidth:
		return []Node{leaf(b.bodies, run, box, true)}
	}

	bounds := b.runs(run, box)
	subs := [8][]Node{}

	if len(run) >= b.cfg.ParallelBuildMin {
		wg := &sync.WaitGroup{}
		for oct := 0; oct < 8; oct++ {
			if bounds[oct] == bounds[oct+1] {
				continue
			}
			wg.Add(1)
			go func(oct int) {
				defer wg.Done()
				subs[oct] = b.subtree(
					lo+bounds[oct], lo+bounds[oct+1], box.OctantBounds(oct),
				)
			}(oct)
		}
		wg.Wait()
	} else {
		for oct := 0; oct < 8; oct++ {
			if bounds[oct] != bounds[oct+1] {
				subs[oct] = b.subtree(
					lo+bounds[oct], lo+bounds[oct+1], box.OctantBounds(oct),
				)
			}
		}
	}

	return join(box, subs)
}

// runs returns the start of each octant's run within run, with a final
// entry of len(run). Morton order already groups bodies by octant, except
// for bodies which sit exactly on a quantization boundary or below the
// curve's resolution. Those cases fall back to a stable counting sort of
// run, which only reorders the offending elements.
func (b *mortonBuilder[T]) runs(run []int, box geom.Box) [9]int {
	octs := make([]uint8, len(run))
	counts := [8]int{}
	sorted := true
	for k, j := range run {
		oct := box.OctantIndex(b.bodies[j].Position())
		octs[k] = uint8(oct)
		counts[oct]++
		if k > 0 && octs[k] < octs[k-1] {
			sorted = false
		}
	}

	bounds := [9]int{}
	for oct := 0; oct < 8; oct++ {
		bounds[oct+1] = bounds[oct] + counts[oct]
	}

	if !sorted {
		tmp := make([]int, len(run))
		next := bounds
		for k, j := range run {
			tmp[next[octs[k]]] = j
			next[octs[k]]++
		}
		copy(run, tmp)
	}

	return bounds
}
