package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/catalog"
	"github.com/phil-mansfield/octgrav/io"
	"github.com/phil-mansfield/octgrav/sim"
	"github.com/phil-mansfield/octgrav/trajectory"
)

const (
	pointBufLen  = 1 << 12
	logIntervals = 20
)

type FileGroup struct {
	log, prof *os.File
}

func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

func main() {
	var (
		simulate, exampleConfig string
		verbose                 bool
	)
	vars := map[string]*string{
		"Simulate":      &simulate,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&simulate, "Simulate", "",
		"Configuration file for [Simulate] mode.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. Accepted arguments are 'Simulate', "+
			"'Bench', 'View', and 'Bounds'.",
	)
	flag.BoolVar(&verbose, "Verbose", false, "Log every merger.")

	flag.Parse()

	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Simulate":
		con, err := io.ReadSimulateConfig(simulate)
		if err != nil {
			log.Fatal(err.Error())
		}
		simulateMain(con)

	case "ExampleConfig":
		switch strings.ToLower(exampleConfig) {
		case "simulate":
			fmt.Println(io.ExampleSimulateFile)
		case "bench":
			fmt.Println(io.ExampleBenchFile)
		case "view":
			fmt.Println(io.ExampleViewFile)
		case "bounds":
			fmt.Println(io.ExampleBoundsFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Simulate', 'Bench', 'View', and 'Bounds'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but octgrav "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func setupIO(con *io.SharedConfig) *FileGroup {
	fg := &FileGroup{}
	var err error

	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.SetOutput(fg.log)
	}

	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	return fg
}

func readBodies(file string, format io.InputFormat) (catalog.Header, []octgrav.Body, error) {
	if format == io.Text {
		bodies, err := catalog.ReadText(file)
		return catalog.Header{Count: int64(len(bodies))}, bodies, err
	}
	return catalog.Read(file)
}

func simulateMain(con *io.SimulateConfig) {
	fg := setupIO(&con.SharedConfig)
	defer fg.Close()

	log.Println("Running Simulate main.")

	hd, bodies, err := readBodies(con.Input, con.Format())
	if err != nil {
		log.Fatal(err.Error())
	}
	log.Printf("Read %d bodies from %s.", len(bodies), con.Input)

	p := con.Sim()

	// Trajectories are predicted from the initial state while the real
	// simulation runs.
	var predictor *trajectory.Worker[trajectory.Request, trajectory.Result]
	if con.ValidTrajectoryFile() {
		predictor = trajectory.NewPredictor(p.Gravity, 1)
		err = predictor.Send(trajectory.Request{
			Bodies: bodies, Steps: con.TrajectorySteps, Dt: con.Dt,
		})
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	initial := catalog.NewIndex()
	initial.Add(bodies)

	s := sim.New(bodies, p)
	s.Time = hd.Time
	interval := con.Steps / logIntervals
	if interval < 1 {
		interval = 1
	}

	s.Run(con.Steps, func(s *sim.Simulation) {
		if s.Steps%interval == 0 || s.Steps == con.Steps {
			log.Printf("Step %d/%d: %d bodies remain.",
				s.Steps, con.Steps, len(s.Bodies))
		}
	})

	for _, id := range s.Removed {
		if b := initial.Get(id); b != nil {
			log.Debugf("Body %d (initial mass %g) was absorbed.", id, b.M)
		}
	}

	k, u := s.Energy()
	log.Printf("Final energy: K = %g, U = %g, E = %g.", k, u, k+u)

	out := catalog.Header{
		Step: hd.Step + int64(s.Steps), Time: s.Time, G: p.Gravity.G,
	}
	if err = catalog.Write(con.Output, out, s.Bodies); err != nil {
		log.Fatal(err.Error())
	}
	log.Printf("Wrote %d bodies to %s.", len(s.Bodies), con.Output)

	if predictor != nil {
		res, ok := predictor.Recv()
		if err = predictor.Join(); err != nil {
			log.Fatal(err.Error())
		} else if !ok {
			log.Fatal("Trajectory predictor exited without a result.")
		}
		writeTrajectories(con.TrajectoryFile, res.Trajectories)
	}
}

func writeTrajectories(file string, trajs []trajectory.Trajectory) {
	pb, err := catalog.NewPointBuffer(file, pointBufLen)
	if err != nil {
		log.Fatal(err.Error())
	}

	for _, traj := range trajs {
		for step, x := range traj.Points {
			if err = pb.Append(traj.ID, step, x); err != nil {
				log.Fatal(err.Error())
			}
		}
	}
	if err = pb.Flush(); err != nil {
		log.Fatal(err.Error())
	}
	log.Printf("Wrote %d trajectories to %s.", len(trajs), file)
}
