package octree

import (
	"github.com/dgravesa/go-parallel/parallel"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/geom"
)

// Buckets holds body indices grouped by octant.
type Buckets [8][]int

// Len returns the total number of indices across all octants.
func (b *Buckets) Len() int {
	n := 0
	for i := range b {
		n += len(b[i])
	}
	return n
}

// PartitionSequential groups idxs by the octant of box their body falls
// into. Relative order within an octant is preserved.
func PartitionSequential[T octgrav.Spatial](
	bodies []T, idxs []int, box geom.Box,
) Buckets {
	counts := [8]int{}
	octs := make([]uint8, len(idxs))
	for k, j := range idxs {
		oct := box.OctantIndex(bodies[j].Position())
		octs[k] = uint8(oct)
		counts[oct]++
	}

	out := Buckets{}
	for oct := range out {
		if counts[oct] > 0 {
			out[oct] = make([]int, 0, counts[oct])
		}
	}
	for k, j := range idxs {
		out[octs[k]] = append(out[octs[k]], j)
	}
	return out
}

// PartitionParallel is PartitionSequential split over contiguous chunks of
// idxs. Each chunk fills a private set of buckets which are then
// concatenated in chunk order, so the output is identical to the
// sequential version.
func PartitionParallel[T octgrav.Spatial](
	bodies []T, idxs []int, box geom.Box, threads int,
) Buckets {
	chunks := threads
	if chunks > len(idxs) {
		chunks = len(idxs)
	}
	if chunks <= 1 {
		return PartitionSequential(bodies, idxs, box)
	}
	size := (len(idxs) + chunks - 1) / chunks

	local := make([]Buckets, chunks)
	parallel.WithNumGoroutines(threads).For(chunks, func(c, _ int) {
		lo, hi := c*size, (c+1)*size
		if hi > len(idxs) {
			hi = len(idxs)
		}
		if lo < hi {
			local[c] = PartitionSequential(bodies, idxs[lo:hi], box)
		}
	})

	out := Buckets{}
	for oct := range out {
		n := 0
		for c := range local {
			n += len(local[c][oct])
		}
		if n == 0 {
			continue
		}
		out[oct] = make([]int, 0, n)
		for c := range local {
			out[oct] = append(out[oct], local[c][oct]...)
		}
	}
	return out
}

// partition picks a strategy based on the size of idxs.
func partition[T octgrav.Spatial](
	bodies []T, idxs []int, box geom.Box, cfg Config,
) Buckets {
	if len(idxs) >= cfg.ParallelPartitionMin {
		return PartitionParallel(bodies, idxs, box, cfg.Threads)
	}
	return PartitionSequential(bodies, idxs, box)
}
