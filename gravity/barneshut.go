package gravity

import (
	"github.com/dgravesa/go-parallel/parallel"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/octree"
)

// BarnesHut returns the acceleration on every body in tree, in the order of
// tree.Bodies. If par is set, bodies are evaluated concurrently. The tree is
// only read.
func BarnesHut[T octgrav.Particle](
	tree *octree.Octree[T], p Params, par bool,
) []r3.Vec {
	acc := make([]r3.Vec, len(tree.Bodies))
	if tree.Empty() {
		return acc
	}

	eval := func(i, _ int) {
		acc[i] = AccelerationAt(tree, tree.Bodies[i].Position(), i, p)
	}
	if par {
		parallel.WithNumGoroutines(p.threads()).For(len(acc), eval)
	} else {
		for i := range acc {
			eval(i, 0)
		}
	}
	return acc
}

// AccelerationAt returns the acceleration at x. skip is the index of a body
// in tree.Bodies which is excluded from the sum, or -1 if x is not a body.
//
// Internal nodes whose width s satisfies s^2 < Theta^2 d^2, where d is the
// distance to their center of mass, are treated as point masses. Aggregate
// leaves are treated the same way unless x lies inside them, in which case
// their bodies are summed directly.
func AccelerationAt[T octgrav.Particle](
	tree *octree.Octree[T], x r3.Vec, skip int, p Params,
) r3.Vec {
	acc := r3.Vec{}
	if tree.Empty() {
		return acc
	}

	theta2 := p.Theta * p.Theta
	stack := make([]int, 0, 64)
	stack = append(stack, tree.Root)

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := tree.Node(idx)
		if n == nil {
			continue
		}

		switch n.Kind {
		case octree.Internal:
			if n.Data.Mass == 0 {
				continue
			}
			s := n.Bounds.Width()
			d2 := r3.Norm2(r3.Sub(n.Data.Center, x))
			// Without a positive mass there is no center to approximate with.
			if n.Data.Mass > 0 && s*s < theta2*d2 {
				acc = r3.Add(acc, PointAccel(
					x, n.Data.Center, n.Data.Mass, p.G, p.SofteningSq,
				))
				continue
			}
			for _, c := range n.Children {
				if c != octree.NoChild {
					stack = append(stack, int(c))
				}
			}

		case octree.Leaf:
			if n.Merged && !holds(n, x, skip) {
				acc = r3.Add(acc, PointAccel(
					x, n.Data.Center, n.Data.Mass, p.G, p.SofteningSq,
				))
				continue
			}
			for _, j := range n.Bodies {
				if j == skip {
					continue
				}
				b := tree.Bodies[j]
				acc = r3.Add(acc, PointAccel(
					x, b.Position(), b.Mass(), p.G, p.SofteningSq,
				))
			}

		default:
			log.Errorf("Barnes-Hut walk reached %s node %d.", n.Kind, idx)
		}
	}

	return acc
}

// holds returns true if the target is one of n's bodies or lies within n.
func holds(n *octree.Node, x r3.Vec, skip int) bool {
	if skip >= 0 {
		for _, j := range n.Bodies {
			if j == skip {
				return true
			}
		}
	}
	return n.Bounds.Contains(x)
}
