/*package view draws the spatial decomposition of an octree onto a terminal
screen. Node cubes are projected along one axis and drawn as outlined
rectangles, coloured by depth.
*/
package view

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/octgrav/geom"
	"github.com/phil-mansfield/octgrav/octree"
)

// Axis is the axis a tree is projected along.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// ParseAxis converts "X", "Y" or "Z" to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch strings.Trim(strings.ToUpper(s), " ") {
	case "X":
		return X, nil
	case "Y":
		return Y, nil
	case "Z":
		return Z, nil
	}
	return Z, fmt.Errorf("Unrecognized projection axis '%s'.", s)
}

// plane returns the two in-plane coordinates of x.
func (a Axis) plane(x r3.Vec) (u, v float64) {
	switch a {
	case X:
		return x.Y, x.Z
	case Y:
		return x.X, x.Z
	}
	return x.X, x.Y
}

func (a Axis) String() string {
	return [...]string{"X", "Y", "Z"}[a]
}

// DepthColors are cycled through by node depth.
var DepthColors = []tcell.Color{
	tcell.ColorWhite, tcell.ColorBlue, tcell.ColorGreen,
	tcell.ColorYellow, tcell.ColorRed, tcell.ColorPurple,
}

// Options controls what Draw shows.
type Options struct {
	Axis Axis
	// MaxDepth is the deepest level drawn. Negative values draw everything.
	MaxDepth int
	// Keep, if non-nil, filters nodes by their cube.
	Keep func(b geom.Box) bool
}

// frame maps projected coordinates to screen cells. Terminal cells are
// roughly twice as tall as they are wide, so columns are scaled by two.
type frame struct {
	uMin, vMax float64
	sx, sy     float64
}

func newFrame(root geom.Box, axis Axis, w, h int) frame {
	c := root.Center
	u, v := axis.plane(c)
	hw := root.HalfWidth

	sy := math.Min(float64(h-1)/(2*hw), float64(w-1)/(4*hw))
	return frame{uMin: u - hw, vMax: v + hw, sx: 2 * sy, sy: sy}
}

func (f frame) cell(u, v float64) (col, row int) {
	return int(math.Round((u - f.uMin) * f.sx)),
		int(math.Round((f.vMax - v) * f.sy))
}

// Draw clears s and draws every node of v which passes opt, then writes a
// status line on the last row. root is used to scale the picture and is
// normally the tree's Bounds. The number of nodes drawn is returned. Draw
// does not call s.Show.
func Draw(s tcell.Screen, v octree.Visualizer, root geom.Box, opt Options) int {
	s.Clear()
	w, h := s.Size()
	if w < 2 || h < 3 {
		return 0
	}

	// The last row is the status line.
	f := newFrame(root, opt.Axis, w, h-1)
	nodes := v.BoundsAndDepths()

	drawn, maxSeen := 0, 0
	for _, nb := range nodes {
		if nb.Depth > maxSeen {
			maxSeen = nb.Depth
		}
		if opt.MaxDepth >= 0 && nb.Depth > opt.MaxDepth {
			continue
		}
		if opt.Keep != nil && !opt.Keep(nb.Box) {
			continue
		}

		style := tcell.StyleDefault.Foreground(
			DepthColors[nb.Depth%len(DepthColors)],
		)
		rect(s, f, nb.Box, opt.Axis, style, w, h-1)
		drawn++
	}

	depth := "all"
	if opt.MaxDepth >= 0 {
		depth = fmt.Sprintf("%d", opt.MaxDepth)
	}
	status := fmt.Sprintf(
		"axis %s | depth %s/%d | %d/%d nodes | +/- depth, x/y/z axis, q quit",
		opt.Axis, depth, maxSeen, drawn, len(nodes),
	)
	text(s, 0, h-1, status, tcell.StyleDefault)

	return drawn
}

func rect(
	s tcell.Screen, f frame, b geom.Box, axis Axis,
	style tcell.Style, w, h int,
) {
	u0, v0 := axis.plane(b.Min())
	u1, v1 := axis.plane(b.Max())
	c0, r1 := f.cell(u0, v0)
	c1, r0 := f.cell(u1, v1)

	set := func(col, row int, r rune) {
		if col >= 0 && col < w && row >= 0 && row < h {
			s.SetContent(col, row, r, nil, style)
		}
	}

	for col := c0 + 1; col < c1; col++ {
		set(col, r0, '-')
		set(col, r1, '-')
	}
	for row := r0 + 1; row < r1; row++ {
		set(c0, row, '|')
		set(c1, row, '|')
	}
	set(c0, r0, '+')
	set(c1, r0, '+')
	set(c0, r1, '+')
	set(c1, r1, '+')
}

func text(s tcell.Screen, col, row int, str string, style tcell.Style) {
	w, _ := s.Size()
	for _, r := range str {
		if col >= w {
			return
		}
		s.SetContent(col, row, r, nil, style)
		col++
	}
}
