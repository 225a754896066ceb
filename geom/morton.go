package geom

import (
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// MortonBits is the number of bits per axis in a Morton code.
	MortonBits = 21
	// MortonLevels is the deepest level a Morton code can address.
	MortonLevels = MortonBits
	mortonMax    = 1<<MortonBits - 1
)

// Morton is a 63-bit interleaved Morton code. Bit 3k holds bit k of the X
// cell, bit 3k+1 the Y cell and bit 3k+2 the Z cell.
type Morton uint64

// MortonEncode quantizes p onto a 2^21 grid spanning root and interleaves
// the cell coordinates. Points outside of root are clamped onto its faces.
func MortonEncode(p r3.Vec, root Box) Morton {
	min, w := root.Min(), root.Width()
	x := quantize((p.X - min.X) / w)
	y := quantize((p.Y - min.Y) / w)
	z := quantize((p.Z - min.Z) / w)
	return Morton(spread(x) | spread(y)<<1 | spread(z)<<2)
}

// MortonDecode returns the center of the grid cell c refers to.
func MortonDecode(c Morton, root Box) r3.Vec {
	x, y, z := compact(uint64(c)), compact(uint64(c)>>1), compact(uint64(c)>>2)
	min, w := root.Min(), root.Width()
	dx := w / float64(mortonMax+1)
	return r3.Vec{
		X: min.X + (float64(x)+0.5)*dx,
		Y: min.Y + (float64(y)+0.5)*dx,
		Z: min.Z + (float64(z)+0.5)*dx,
	}
}

// Octant returns the octant index the code selects at the given level,
// where level 0 picks a child of the root.
func (c Morton) Octant(level int) int {
	shift := 3 * (MortonLevels - 1 - level)
	return int(uint64(c)>>uint(shift)) & 7
}

// Prefix returns the leading 3*(level+1) bits of c, which identify the
// cell c belongs to at that level.
func (c Morton) Prefix(level int) Morton {
	shift := 3 * (MortonLevels - 1 - level)
	return Morton(uint64(c) >> uint(shift))
}

func quantize(f float64) uint64 {
	if f <= 0 {
		return 0
	}
	q := uint64(f * float64(mortonMax+1))
	if q > mortonMax {
		return mortonMax
	}
	return q
}

// spread inserts two zero bits between each of the low 21 bits of x.
func spread(x uint64) uint64 {
	x &= mortonMax
	x = (x | x<<32) & 0x1f00000000ffff
	x = (x | x<<16) & 0x1f0000ff0000ff
	x = (x | x<<8) & 0x100f00f00f00f00f
	x = (x | x<<4) & 0x10c30c30c30c30c3
	x = (x | x<<2) & 0x1249249249249249
	return x
}

// compact is the inverse of spread.
func compact(x uint64) uint64 {
	x &= 0x1249249249249249
	x = (x ^ x>>2) & 0x10c30c30c30c30c3
	x = (x ^ x>>4) & 0x100f00f00f00f00f
	x = (x ^ x>>8) & 0x1f0000ff0000ff
	x = (x ^ x>>16) & 0x1f00000000ffff
	x = (x ^ x>>32) & mortonMax
	return x
}
