/*package geom contains the axis-aligned cubes used to partition space and the
octant addressing shared by every tree builder.

Octants are numbered with bit 0 for X, bit 1 for Y and bit 2 for Z. A bit is
set when the coordinate is strictly greater than the center of the cube along
that axis. Morton codes use the same bit order, so the top three bits of a
code at any level select the same octant as OctantIndex.
*/
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// MinHalfWidth is the smallest half width a Box will be given by
	// Containing. Trees stop subdividing below it.
	MinHalfWidth = 1e-5
)

// Box is an axis-aligned cube.
type Box struct {
	Center    r3.Vec
	HalfWidth float64
}

// DefaultBox is the box used for empty body sets: a unit half width cube
// centered on the origin.
func DefaultBox() Box {
	return Box{Center: r3.Vec{}, HalfWidth: 1}
}

// Containing returns the smallest cube centered on the midpoint of ps's
// bounding rectangle which contains every element of ps. The half width is
// never smaller than MinHalfWidth.
func Containing[T interface{ Position() r3.Vec }](ps []T) Box {
	if len(ps) == 0 {
		return DefaultBox()
	}

	min, max := ps[0].Position(), ps[0].Position()
	for i := 1; i < len(ps); i++ {
		x := ps[i].Position()
		min.X, max.X = math.Min(min.X, x.X), math.Max(max.X, x.X)
		min.Y, max.Y = math.Min(min.Y, x.Y), math.Max(max.Y, x.Y)
		min.Z, max.Z = math.Min(min.Z, x.Z), math.Max(max.Z, x.Z)
	}

	// The extents are measured from the rounded center so that Contains
	// holds exactly for the extreme points.
	c := r3.Scale(0.5, r3.Add(min, max))
	hw := math.Max(max.X-c.X, c.X-min.X)
	hw = math.Max(hw, math.Max(max.Y-c.Y, c.Y-min.Y))
	hw = math.Max(hw, math.Max(max.Z-c.Z, c.Z-min.Z))

	return Box{Center: c, HalfWidth: math.Max(hw, MinHalfWidth)}
}

// Width returns the side length of the cube.
func (b Box) Width() float64 { return 2 * b.HalfWidth }

// Min returns the lower corner of the cube.
func (b Box) Min() r3.Vec {
	hw := b.HalfWidth
	return r3.Sub(b.Center, r3.Vec{X: hw, Y: hw, Z: hw})
}

// Max returns the upper corner of the cube.
func (b Box) Max() r3.Vec {
	hw := b.HalfWidth
	return r3.Add(b.Center, r3.Vec{X: hw, Y: hw, Z: hw})
}

// OctantIndex returns the index of the octant of b that p falls into.
// Points outside of b are assigned to the octant in their direction.
func (b Box) OctantIndex(p r3.Vec) int {
	idx := 0
	if p.X > b.Center.X {
		idx |= 1
	}
	if p.Y > b.Center.Y {
		idx |= 2
	}
	if p.Z > b.Center.Z {
		idx |= 4
	}
	return idx
}

// OctantBounds returns the cube covering octant i of b.
func (b Box) OctantBounds(i int) Box {
	q := b.HalfWidth / 2
	c := b.Center
	if i&1 != 0 {
		c.X += q
	} else {
		c.X -= q
	}
	if i&2 != 0 {
		c.Y += q
	} else {
		c.Y -= q
	}
	if i&4 != 0 {
		c.Z += q
	} else {
		c.Z -= q
	}
	return Box{Center: c, HalfWidth: q}
}

// Subdivide returns all eight octants of b, in index order.
func (b Box) Subdivide() [8]Box {
	out := [8]Box{}
	for i := range out {
		out[i] = b.OctantBounds(i)
	}
	return out
}

// Contains returns true if p lies within b. The boundary is inclusive.
func (b Box) Contains(p r3.Vec) bool {
	hw := b.HalfWidth
	return math.Abs(p.X-b.Center.X) <= hw &&
		math.Abs(p.Y-b.Center.Y) <= hw &&
		math.Abs(p.Z-b.Center.Z) <= hw
}

// Overlaps returns true if b and o share any volume or boundary.
func (b Box) Overlaps(o Box) bool {
	hw := b.HalfWidth + o.HalfWidth
	return math.Abs(b.Center.X-o.Center.X) <= hw &&
		math.Abs(b.Center.Y-o.Center.Y) <= hw &&
		math.Abs(b.Center.Z-o.Center.Z) <= hw
}

// Cube returns the cube centered on c with the given half width.
func Cube(c r3.Vec, halfWidth float64) Box {
	return Box{Center: c, HalfWidth: halfWidth}
}

// ToR3 converts b to gonum's rectangular box type.
func (b Box) ToR3() r3.Box {
	return r3.Box{Min: b.Min(), Max: b.Max()}
}
