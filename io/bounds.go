package io

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/octgrav/geom"
)

type BallConfig struct {
	// Required
	X, Y, Z, Radius float64

	// Optional
	RadiusMultiplier float64
	Name             string
}

func (ball *BallConfig) CheckInit(name string) error {
	if ball.Radius <= 0 {
		return errors.Errorf(
			"Need to specify a positive radius for Ball '%s'.", name,
		)
	}

	ball.Name = name
	if ball.RadiusMultiplier == 0 {
		ball.RadiusMultiplier = 1
	} else if ball.RadiusMultiplier < 0 {
		return errors.Errorf(
			"Ball '%s' given a negative radius multiplier, %g.",
			name, ball.RadiusMultiplier,
		)
	}

	return nil
}

// Box returns the smallest box containing the ball.
func (ball *BallConfig) Box() *BoxConfig {
	box := &BoxConfig{}
	rad := ball.Radius * ball.RadiusMultiplier

	box.XWidth, box.YWidth, box.ZWidth = 2*rad, 2*rad, 2*rad
	box.X, box.Y, box.Z = ball.X-rad, ball.Y-rad, ball.Z-rad
	box.Name = ball.Name

	return box
}

type BoxConfig struct {
	// Required
	X, Y, Z                float64
	XWidth, YWidth, ZWidth float64

	// Optional, "undocumented"
	Name string
}

func (box *BoxConfig) CheckInit(name string) error {
	if box.XWidth <= 0 {
		return errors.Errorf(
			"Need to specify a positive XWidth for Box '%s'", name,
		)
	} else if box.YWidth <= 0 {
		return errors.Errorf(
			"Need to specify a positive YWidth for Box '%s'", name,
		)
	} else if box.ZWidth <= 0 {
		return errors.Errorf(
			"Need to specify a positive ZWidth for Box '%s'", name,
		)
	}

	box.Name = name

	return nil
}

func (box *BoxConfig) Min() r3.Vec {
	return r3.Vec{X: box.X, Y: box.Y, Z: box.Z}
}

func (box *BoxConfig) Max() r3.Vec {
	return r3.Vec{X: box.X + box.XWidth, Y: box.Y + box.YWidth,
		Z: box.Z + box.ZWidth}
}

// Overlaps returns true if the cube b shares any volume with box.
func (box *BoxConfig) Overlaps(b geom.Box) bool {
	lo, hi := box.Min(), box.Max()
	bLo, bHi := b.Min(), b.Max()
	return bLo.X <= hi.X && bHi.X >= lo.X &&
		bLo.Y <= hi.Y && bHi.Y >= lo.Y &&
		bLo.Z <= hi.Z && bHi.Z >= lo.Z
}

type BoundsConfig struct {
	Ball map[string]*BallConfig
	Box  map[string]*BoxConfig
}

// ReadBoundsConfig reads every [Ball] and [Box] section of fname. Balls are
// converted to their bounding boxes.
func ReadBoundsConfig(fname string) ([]BoxConfig, error) {
	bc := BoundsConfig{}

	if err := gcfg.ReadFileInto(&bc, fname); err != nil {
		return nil, errors.Wrapf(err, "reading bounds %s", fname)
	}
	return bc.boxes()
}

func (bc *BoundsConfig) boxes() ([]BoxConfig, error) {
	boxes := []BoxConfig{}
	for name, ball := range bc.Ball {
		if err := ball.CheckInit(name); err != nil {
			return nil, err
		}
		boxes = append(boxes, *ball.Box())
	}
	for name, box := range bc.Box {
		if err := box.CheckInit(name); err != nil {
			return nil, err
		}
		boxes = append(boxes, *box)
	}

	return boxes, nil
}
