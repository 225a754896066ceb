package io

import (
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/octgrav/collision"
	"github.com/phil-mansfield/octgrav/gravity"
	"github.com/phil-mansfield/octgrav/octree"
	"github.com/phil-mansfield/octgrav/sim"
)

const (
	ExampleSimulateFile = `[Simulate]

#######################
# Required Parameters #
#######################

# Catalog containing the initial bodies.
Input = path/to/input.dat
# Catalog which the final bodies will be written to. It is always written in
# the binary format.
Output = path/to/output.dat

# The format of Input. Must be one of [ Binary | Text ]. Text catalogs are
# whitespace-separated columns of x y z vx vy vz m.
InputFormat = Binary

# Number of steps and the length of each one.
Steps = 1000
Dt = 0.01

#######################
# Optional Parameters #
#######################

# Gravitational constant. Default is 1.
# G = 1

# Barnes-Hut opening angle. Smaller is more accurate and slower. Default
# is 0.7.
# Theta = 0.7

# Plummer softening length. Default is 0.1.
# Softening = 0.1

# Tree construction method, one of [ Partition | Morton | Insert ].
# Builder = Partition

# Tree construction details. You should rarely need to change these.
# MaxBodiesPerLeaf = 1
# MaxInsertDepth = 64
# MergeHalfWidth = 0.01

# Merge bodies when they come within MergeScaler * ln(m1 + m2) of each other.
# MergeOnCollision = false
# MergeScaler = 12

# Body counts where the code switches to parallel or tree-based methods.
# Run the bench binary to find good values for your machine.
# ParallelPartitionMin = 100000
# ParallelBuildMin = 200
# DirectParallelMin = 100
# TreeMin = 440

# Number of goroutines used by parallel loops. Default is the number of CPUs.
# Threads = 8

# If set, the predicted paths of every body over TrajectorySteps steps are
# written to this file as rows of "id step x y z".
# TrajectoryFile = path/to/trajectories.txt
# TrajectorySteps = 100

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong.
# ProfileFile = prof.out
# LogFile = log.out`

	ExampleBenchFile = `[Bench]

#######################
# Required Parameters #
#######################

# Directory where timing plots will be written.
Output = path/to/output/dir

# Range of body counts to time. Counts are spaced logarithmically.
MinBodies = 10
MaxBodies = 100000
Counts = 12

#######################
# Optional Parameters #
#######################

# Number of times each measurement is repeated. The fastest is kept.
# Trials = 3

# Body layout, one of [ Spiral | Uniform | Plummer ].
# Layout = Spiral

# Threads = 8
# LogFile = log.out`

	ExampleViewFile = `[View]

#######################
# Required Parameters #
#######################

# Catalog containing the bodies whose tree will be drawn.
Input = path/to/input.dat
InputFormat = Binary

#######################
# Optional Parameters #
#######################

# Builder = Partition

# Axis which the tree is projected along, one of [ X | Y | Z ].
# ProjectionAxis = Z

# Deepest level which will be drawn. Default is to draw everything.
# MaxDepth = 8`

	ExampleBoundsFile = `[Box "my_region"]
# This file restricts the view to a region. It is paired with a View config
# file. Only tree nodes which overlap the region are drawn.

# Location of lowermost corner:
X = -10
Y = -10
Z = -1

# Width of the box in each dimension:
XWidth = 20
YWidth = 20
ZWidth = 2

[Ball "my_star"]
# Alternatively, a region can be given as a sphere around a point. It is
# drawn as the cube which contains the sphere.

X = 4.6
Y = 10.7
Z = 0.7

Radius = 2.17

# Multiplies Radius by a constant.
# RadiusMultiplier = 3`
)

type SharedConfig struct {
	// Required
	Input, Output string
	// Optional
	LogFile, ProfileFile string
}

func (con *SharedConfig) ValidInput() bool {
	return con.Input != ""
}
func (con *SharedConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SharedConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SharedConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

// TreeConfig holds the parameters shared by every mode which builds trees.
type TreeConfig struct {
	Builder string

	MaxBodiesPerLeaf, MaxInsertDepth int
	MergeHalfWidth                   float64

	ParallelPartitionMin, ParallelBuildMin int
	Threads                                int
}

func defaultTreeConfig() TreeConfig {
	cfg := octree.DefaultConfig()
	return TreeConfig{
		Builder:              octree.Partition.String(),
		MaxBodiesPerLeaf:     cfg.MaxBodiesPerLeaf,
		MaxInsertDepth:       cfg.MaxInsertDepth,
		MergeHalfWidth:       cfg.MergeHalfWidth,
		ParallelPartitionMin: cfg.ParallelPartitionMin,
		ParallelBuildMin:     cfg.ParallelBuildMin,
		Threads:              runtime.NumCPU(),
	}
}

func (con *TreeConfig) ValidBuilder() bool {
	_, err := octree.ParseStrategy(con.Builder)
	return err == nil
}
func (con *TreeConfig) ValidMaxBodiesPerLeaf() bool {
	return con.MaxBodiesPerLeaf > 0
}
func (con *TreeConfig) ValidMaxInsertDepth() bool {
	return con.MaxInsertDepth > 0
}
func (con *TreeConfig) ValidMergeHalfWidth() bool {
	return con.MergeHalfWidth > 0
}
func (con *TreeConfig) ValidThreads() bool {
	return con.Threads > 0
}

// Strategy returns the tree construction strategy named by Builder. Call
// ValidBuilder first.
func (con *TreeConfig) Strategy() octree.Strategy {
	s, err := octree.ParseStrategy(con.Builder)
	if err != nil {
		return octree.Partition
	}
	return s
}

// Octree converts the tree parameters to an octree.Config.
func (con *TreeConfig) Octree() octree.Config {
	return octree.Config{
		MaxBodiesPerLeaf:     con.MaxBodiesPerLeaf,
		MaxInsertDepth:       con.MaxInsertDepth,
		MergeHalfWidth:       con.MergeHalfWidth,
		ParallelPartitionMin: con.ParallelPartitionMin,
		ParallelBuildMin:     con.ParallelBuildMin,
		Threads:              con.Threads,
	}
}

func (con *TreeConfig) checkInit() error {
	if !con.ValidBuilder() {
		_, err := octree.ParseStrategy(con.Builder)
		return err
	} else if !con.ValidMaxBodiesPerLeaf() {
		return errors.Errorf("Invalid 'MaxBodiesPerLeaf' value, %d.",
			con.MaxBodiesPerLeaf)
	} else if !con.ValidMaxInsertDepth() {
		return errors.Errorf("Invalid 'MaxInsertDepth' value, %d.",
			con.MaxInsertDepth)
	} else if !con.ValidMergeHalfWidth() {
		return errors.Errorf("Invalid 'MergeHalfWidth' value, %g.",
			con.MergeHalfWidth)
	} else if !con.ValidThreads() {
		return errors.Errorf("Invalid 'Threads' value, %d.", con.Threads)
	}
	return nil
}

// InputFormat names the on-disk layout of an input catalog.
type InputFormat int

const (
	Binary InputFormat = iota
	Text
	EndInputFormat
)

var inputFormatNames = []string{"Binary", "Text"}

func (f InputFormat) String() string {
	if f < 0 || f >= EndInputFormat {
		return "InputFormat(?)"
	}
	return inputFormatNames[f]
}

func parseInputFormat(name string) (InputFormat, bool) {
	for f := Binary; f < EndInputFormat; f++ {
		if strings.ToLower(f.String()) == strings.ToLower(name) {
			return f, true
		}
	}
	return EndInputFormat, false
}

type SimulateConfig struct {
	SharedConfig
	TreeConfig

	// Required
	InputFormat string
	Steps       int
	Dt          float64

	// Optional
	G, Theta, Softening float64

	MergeOnCollision bool
	MergeScaler      float64

	DirectParallelMin, TreeMin int

	TrajectoryFile  string
	TrajectorySteps int
}

type SimulateWrapper struct {
	Simulate SimulateConfig
}

func DefaultSimulateWrapper() *SimulateWrapper {
	gp := gravity.DefaultParams()
	cp := collision.DefaultParams()

	con := SimulateConfig{}
	con.TreeConfig = defaultTreeConfig()
	con.InputFormat = Binary.String()
	con.G = gp.G
	con.Theta = gp.Theta
	con.Softening = 0.1
	con.MergeScaler = cp.Scaler
	con.DirectParallelMin = gp.DirectParallelMin
	con.TreeMin = gp.TreeMin
	con.TrajectorySteps = 100
	return &SimulateWrapper{con}
}

func (con *SimulateConfig) ValidInputFormat() bool {
	_, ok := parseInputFormat(con.InputFormat)
	return ok
}
func (con *SimulateConfig) ValidSteps() bool {
	return con.Steps >= 0
}
func (con *SimulateConfig) ValidDt() bool {
	return con.Dt > 0
}
func (con *SimulateConfig) ValidTheta() bool {
	return con.Theta >= 0
}
func (con *SimulateConfig) ValidSoftening() bool {
	return con.Softening >= 0
}
func (con *SimulateConfig) ValidMergeScaler() bool {
	return con.MergeScaler >= 0
}
func (con *SimulateConfig) ValidTrajectoryFile() bool {
	return con.TrajectoryFile != ""
}
func (con *SimulateConfig) ValidTrajectorySteps() bool {
	return con.TrajectorySteps > 0
}

// Format returns the parsed InputFormat. Call ValidInputFormat first.
func (con *SimulateConfig) Format() InputFormat {
	f, _ := parseInputFormat(con.InputFormat)
	return f
}

// CheckInit returns an error describing the first invalid parameter.
func (con *SimulateConfig) CheckInit() error {
	if !con.ValidInput() {
		return errors.New("Invalid/non-existent 'Input' value.")
	} else if !con.ValidOutput() {
		return errors.New("Invalid/non-existent 'Output' value.")
	} else if !con.ValidInputFormat() {
		return errors.Errorf(
			"Unrecognized 'InputFormat' value '%s'. Accepted values are %s.",
			con.InputFormat, strings.Join(inputFormatNames, ", "),
		)
	} else if !con.ValidSteps() {
		return errors.Errorf("Invalid 'Steps' value, %d.", con.Steps)
	} else if !con.ValidDt() {
		return errors.Errorf("Invalid/non-existent 'Dt' value, %g.", con.Dt)
	} else if !con.ValidTheta() {
		return errors.Errorf("Invalid 'Theta' value, %g.", con.Theta)
	} else if !con.ValidSoftening() {
		return errors.Errorf("Invalid 'Softening' value, %g.", con.Softening)
	} else if !con.ValidMergeScaler() {
		return errors.Errorf("Invalid 'MergeScaler' value, %g.",
			con.MergeScaler)
	} else if con.ValidTrajectoryFile() && !con.ValidTrajectorySteps() {
		return errors.Errorf("Invalid 'TrajectorySteps' value, %d.",
			con.TrajectorySteps)
	}
	return con.TreeConfig.checkInit()
}

// Gravity converts the config to force parameters.
func (con *SimulateConfig) Gravity() gravity.Params {
	return gravity.Params{
		G:                 con.G,
		Theta:             con.Theta,
		SofteningSq:       con.Softening * con.Softening,
		DirectParallelMin: con.DirectParallelMin,
		TreeMin:           con.TreeMin,
		Strategy:          con.Strategy(),
		Tree:              con.Octree(),
	}
}

// Collision converts the config to collision parameters.
func (con *SimulateConfig) Collision() collision.Params {
	return collision.Params{
		Scaler:   con.MergeScaler,
		TreeMin:  con.TreeMin,
		Strategy: con.Strategy(),
		Tree:     con.Octree(),
	}
}

// Sim converts the config to simulation parameters.
func (con *SimulateConfig) Sim() sim.Params {
	return sim.Params{
		Dt:               con.Dt,
		MergeOnCollision: con.MergeOnCollision,
		Gravity:          con.Gravity(),
		Collision:        con.Collision(),
	}
}

// ReadSimulateConfig reads and checks a [Simulate] config file.
func ReadSimulateConfig(fname string) (*SimulateConfig, error) {
	wrap := DefaultSimulateWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, errors.Wrapf(err, "reading config %s", fname)
	}
	if err := wrap.Simulate.CheckInit(); err != nil {
		return nil, errors.Wrapf(err, "config %s", fname)
	}
	return &wrap.Simulate, nil
}

type BenchConfig struct {
	SharedConfig

	// Required
	MinBodies, MaxBodies, Counts int

	// Optional
	Trials  int
	Layout  string
	Threads int
}

type BenchWrapper struct {
	Bench BenchConfig
}

// Layouts accepted by BenchConfig.
var Layouts = []string{"Spiral", "Uniform", "Plummer"}

func DefaultBenchWrapper() *BenchWrapper {
	con := BenchConfig{}
	con.Trials = 3
	con.Layout = "Spiral"
	con.Threads = runtime.NumCPU()
	return &BenchWrapper{con}
}

func (con *BenchConfig) ValidBodies() bool {
	return con.MinBodies > 0 && con.MaxBodies >= con.MinBodies
}
func (con *BenchConfig) ValidCounts() bool {
	return con.Counts > 0
}
func (con *BenchConfig) ValidTrials() bool {
	return con.Trials > 0
}
func (con *BenchConfig) ValidLayout() bool {
	for _, l := range Layouts {
		if strings.ToLower(l) == strings.ToLower(con.Layout) {
			return true
		}
	}
	return false
}

func (con *BenchConfig) CheckInit() error {
	if !con.ValidOutput() {
		return errors.New("Invalid/non-existent 'Output' value.")
	} else if !con.ValidBodies() {
		return errors.Errorf(
			"Invalid 'MinBodies' and 'MaxBodies' values, %d and %d.",
			con.MinBodies, con.MaxBodies,
		)
	} else if !con.ValidCounts() {
		return errors.Errorf("Invalid 'Counts' value, %d.", con.Counts)
	} else if !con.ValidTrials() {
		return errors.Errorf("Invalid 'Trials' value, %d.", con.Trials)
	} else if !con.ValidLayout() {
		return errors.Errorf(
			"Unrecognized 'Layout' value '%s'. Accepted values are %s.",
			con.Layout, strings.Join(Layouts, ", "),
		)
	} else if con.Threads < 1 {
		return errors.Errorf("Invalid 'Threads' value, %d.", con.Threads)
	}
	return nil
}

func ReadBenchConfig(fname string) (*BenchConfig, error) {
	wrap := DefaultBenchWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, errors.Wrapf(err, "reading config %s", fname)
	}
	if err := wrap.Bench.CheckInit(); err != nil {
		return nil, errors.Wrapf(err, "config %s", fname)
	}
	return &wrap.Bench, nil
}

type ViewConfig struct {
	SharedConfig
	TreeConfig

	InputFormat    string
	ProjectionAxis string
	MaxDepth       int
}

type ViewWrapper struct {
	View ViewConfig
}

func DefaultViewWrapper() *ViewWrapper {
	con := ViewConfig{}
	con.TreeConfig = defaultTreeConfig()
	con.InputFormat = Binary.String()
	con.ProjectionAxis = "Z"
	con.MaxDepth = -1
	return &ViewWrapper{con}
}

func (con *ViewConfig) ValidInputFormat() bool {
	_, ok := parseInputFormat(con.InputFormat)
	return ok
}
func (con *ViewConfig) ValidMaxDepth() bool {
	return con.MaxDepth >= 0
}

func (con *ViewConfig) Format() InputFormat {
	f, _ := parseInputFormat(con.InputFormat)
	return f
}

func (con *ViewConfig) CheckInit() error {
	if !con.ValidInput() {
		return errors.New("Invalid/non-existent 'Input' value.")
	} else if !con.ValidInputFormat() {
		return errors.Errorf(
			"Unrecognized 'InputFormat' value '%s'. Accepted values are %s.",
			con.InputFormat, strings.Join(inputFormatNames, ", "),
		)
	}
	axis, err := checkAxis(con.ProjectionAxis)
	if err != nil {
		return err
	}
	con.ProjectionAxis = axis
	return con.TreeConfig.checkInit()
}

func ReadViewConfig(fname string) (*ViewConfig, error) {
	wrap := DefaultViewWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, errors.Wrapf(err, "reading config %s", fname)
	}
	if err := wrap.View.CheckInit(); err != nil {
		return nil, errors.Wrapf(err, "config %s", fname)
	}
	return &wrap.View, nil
}

func checkAxis(axis string) (string, error) {
	out := strings.Trim(strings.ToUpper(axis), " ")
	if out != "X" && out != "Y" && out != "Z" {
		return "", errors.Errorf(
			"ProjectionAxis must be one of [X | Y | Z]. '%s' is not "+
				"recognized.", axis,
		)
	}
	return out, nil
}
