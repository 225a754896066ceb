package octree

import (
	"sync"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/geom"
)

// Build constructs a tree by recursively partitioning bodies into octants.
// Octants holding one body become leaves, octants whose half width is at
// most cfg.MergeHalfWidth become aggregate leaves and the rest recurse.
// Subtrees with at least cfg.ParallelBuildMin bodies build their children
// concurrently.
func Build[T octgrav.Particle](bodies []T, cfg Config) *Octree[T] {
	cfg = cfg.normalize()
	t := empty(bodies)
	if len(bodies) == 0 {
		return t
	}

	idxs := make([]int, len(bodies))
	for i := range idxs {
		idxs[i] = i
	}

	b := &partitionBuilder[T]{bodies, cfg}
	t.Nodes = finalize(b.subtree(idxs, t.Bounds))
	t.Root = 0
	return t
}

type partitionBuilder[T octgrav.Particle] struct {
	bodies []T
	cfg    Config
}

// subtree returns the arena of the subtree holding idxs within box. The
// subtree's root is element 0 and child indices are offsets from the node
// which holds them.
func (b *partitionBuilder[T]) subtree(idxs []int, box geom.Box) []Node {
	switch {
	case len(idxs) == 1:
		return []Node{leaf(b.bodies, idxs, box, false)}
	case box.HalfWidth <= b.cfg.MergeHalfWidth:
		return []Node{leaf(b.bodies, idxs, box, true)}
	}

	buckets := partition(b.bodies, idxs, box, b.cfg)
	subs := [8][]Node{}

	if len(idxs) >= b.cfg.ParallelBuildMin {
		wg := &sync.WaitGroup{}
		for oct := range buckets {
			if len(buckets[oct]) == 0 {
				continue
			}
			wg.Add(1)
			go func(oct int) {
				defer wg.Done()
				subs[oct] = b.subtree(buckets[oct], box.OctantBounds(oct))
			}(oct)
		}
		wg.Wait()
	} else {
		for oct := range buckets {
			if len(buckets[oct]) > 0 {
				subs[oct] = b.subtree(buckets[oct], box.OctantBounds(oct))
			}
		}
	}

	return join(box, subs)
}

// leaf creates a leaf holding idxs.
func leaf[T octgrav.Particle](
	bodies []T, idxs []int, box geom.Box, merged bool,
) Node {
	return Node{
		Kind:   Leaf,
		Bounds: box,
		Data:   octgrav.AggregateIndices(bodies, idxs, box.Center),
		Bodies: idxs,
		Merged: merged,
	}
}

// join concatenates child subtrees behind a new internal node in octant
// order. Child offsets inside each subtree are relative, so they remain
// valid after concatenation.
func join(box geom.Box, subs [8][]Node) []Node {
	total := 1
	for oct := range subs {
		total += len(subs[oct])
	}

	nodes := make([]Node, 1, total)
	parent := Node{Kind: Internal, Bounds: box}
	gds := make([]octgrav.GravityData, 0, 8)
	for oct := range subs {
		if len(subs[oct]) == 0 {
			continue
		}
		parent.Children[oct] = ChildIndex(len(nodes))
		gds = append(gds, subs[oct][0].Data)
		nodes = append(nodes, subs[oct]...)
	}
	parent.Data = octgrav.Merge(gds, box.Center)
	nodes[0] = parent

	return nodes
}

// finalize converts relative child offsets into absolute arena indices.
func finalize(nodes []Node) []Node {
	for i := range nodes {
		for oct, c := range nodes[i].Children {
			if c != NoChild {
				nodes[i].Children[oct] = ChildIndex(i) + c
			}
		}
	}
	return nodes
}
