package octree

import (
	log "github.com/sirupsen/logrus"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/geom"
)

// BuildInsert builds a tree by inserting bodies one at a time, splitting
// leaves once they exceed cfg.MaxBodiesPerLeaf. It is sequential and much
// slower than Build.
//
// Bodies which would need to be placed deeper than cfg.MaxInsertDepth are
// logged and dropped. Leaves smaller than geom.MinHalfWidth are never split
// and may exceed their capacity.
func BuildInsert[T octgrav.Particle](bodies []T, cfg Config) *Octree[T] {
	cfg = cfg.normalize()
	t := empty(bodies)
	if len(bodies) == 0 {
		return t
	}

	t.Nodes = append(t.Nodes, Node{Kind: Leaf, Bounds: t.Bounds})
	t.Root = 0

	ins := &inserter[T]{t, cfg}
	for i := range bodies {
		ins.insert(i, 0, 0)
	}
	ins.aggregate(0)

	return t
}

type inserter[T octgrav.Particle] struct {
	t   *Octree[T]
	cfg Config
}

// insert places body i in the subtree rooted at node idx, which sits at the
// given depth. Nodes are referred to by index because appending to the
// arena can move it.
func (ins *inserter[T]) insert(i, idx, depth int) {
	nodes := ins.t.Nodes
	switch nodes[idx].Kind {
	case Leaf:
		n := &nodes[idx]
		switch {
		case len(n.Bodies) < ins.cfg.MaxBodiesPerLeaf:
			n.Bodies = append(n.Bodies, i)
			return
		case n.Bounds.HalfWidth < geom.MinHalfWidth:
			n.Bodies = append(n.Bodies, i)
			return
		case depth >= ins.cfg.MaxInsertDepth:
			log.Warnf(
				"Body %d at %v needs a leaf below the maximum insert "+
					"depth %d. Dropping it.",
				i, ins.t.Bodies[i].Position(), ins.cfg.MaxInsertDepth,
			)
			return
		}

		held := n.Bodies
		n.Bodies, n.Kind = nil, Internal
		for _, j := range held {
			ins.insert(j, idx, depth)
		}
		ins.insert(i, idx, depth)

	case Internal:
		box := nodes[idx].Bounds
		oct := box.OctantIndex(ins.t.Bodies[i].Position())
		child := nodes[idx].Children[oct]
		if child == NoChild {
			child = ChildIndex(len(ins.t.Nodes))
			ins.t.Nodes = append(ins.t.Nodes, Node{
				Kind: Leaf, Bounds: box.OctantBounds(oct),
			})
			ins.t.Nodes[idx].Children[oct] = child
		}
		ins.insert(i, int(child), depth+1)

	default:
		log.Errorf("Inserting body %d into Unused node %d.", i, idx)
	}
}

// aggregate fills in GravityData bottom-up.
func (ins *inserter[T]) aggregate(idx int) octgrav.GravityData {
	n := &ins.t.Nodes[idx]
	switch n.Kind {
	case Leaf:
		n.Data = octgrav.AggregateIndices(
			ins.t.Bodies, n.Bodies, n.Bounds.Center,
		)
	case Internal:
		gds := make([]octgrav.GravityData, 0, 8)
		for _, c := range n.Children {
			if c != NoChild {
				gds = append(gds, ins.aggregate(int(c)))
			}
		}
		n.Data = octgrav.Merge(gds, n.Bounds.Center)
	}
	return n.Data
}
