package catalog

import (
	"github.com/phil-mansfield/octgrav"
)

// Index looks bodies up by ID across several body slices.
type Index struct {
	bodies [][]octgrav.Body
	locs   map[int64]loc
	Size   int64
}

type loc struct {
	slice, i int32
}

func NewIndex() *Index {
	return &Index{[][]octgrav.Body{}, make(map[int64]loc), 0}
}

// Add indexes every body in bodies. Later slices shadow earlier ones for
// repeated IDs.
func (idx *Index) Add(bodies []octgrav.Body) {
	idx.bodies = append(idx.bodies, bodies)
	for i := range bodies {
		idx.locs[bodies[i].ID] = loc{int32(len(idx.bodies) - 1), int32(i)}
	}
	idx.Size += int64(len(bodies))
}

// Get returns the body with the given ID, or nil if there is none.
func (idx *Index) Get(id int64) *octgrav.Body {
	l, ok := idx.locs[id]
	if !ok {
		return nil
	}
	return &idx.bodies[l.slice][l.i]
}
