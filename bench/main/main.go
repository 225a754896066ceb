package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path"
	"strings"
	"time"

	plt "github.com/phil-mansfield/pyplot"
	log "github.com/sirupsen/logrus"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/bodygen"
	"github.com/phil-mansfield/octgrav/collision"
	"github.com/phil-mansfield/octgrav/gravity"
	"github.com/phil-mansfield/octgrav/io"
	"github.com/phil-mansfield/octgrav/octree"
)

// Timings slower than this are not repeated at larger body counts.
const maxSeconds = 20.0

var colors = []string{"r", "b", "g", "k", "m", "c"}

// timer is a single timed operation.
type timer struct {
	name string
	run  func(bodies []octgrav.Body)
	// Set once a run exceeds maxSeconds.
	skip bool
}

func main() {
	var config string
	flag.StringVar(&config, "Bench", "", "Configuration file for [Bench] mode.")
	flag.Parse()

	if config == "" {
		log.Fatal("No flags have been set.")
	}
	con, err := io.ReadBenchConfig(config)
	if err != nil {
		log.Fatal(err.Error())
	}

	if con.ValidLogFile() {
		f, err := os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		defer f.Close()
		log.SetOutput(f)
	}

	if err = os.MkdirAll(con.Output, 0777); err != nil {
		log.Fatal(err.Error())
	}

	p := gravity.DefaultParams()
	p.Tree.Threads = con.Threads
	cp := collision.DefaultParams()
	cp.Tree.Threads = con.Threads

	ns := counts(con.MinBodies, con.MaxBodies, con.Counts)

	builders := []*timer{}
	for s := octree.Partition; s < octree.EndStrategy; s++ {
		s := s
		builders = append(builders, &timer{name: s.String(),
			run: func(bodies []octgrav.Body) { octree.BuildWith(s, bodies, p.Tree) },
		})
	}

	forces := []*timer{
		{name: "Direct", run: func(bodies []octgrav.Body) {
			gravity.DirectSummation(bodies, p, false)
		}},
		{name: "Parallel Direct", run: func(bodies []octgrav.Body) {
			gravity.DirectSummation(bodies, p, true)
		}},
		{name: "Tree", run: func(bodies []octgrav.Body) {
			gravity.BarnesHut(octree.Build(bodies, p.Tree), p, false)
		}},
		{name: "Parallel Tree", run: func(bodies []octgrav.Body) {
			gravity.BarnesHut(octree.Build(bodies, p.Tree), p, true)
		}},
	}

	collisions := []*timer{
		{name: "Brute", run: func(bodies []octgrav.Body) {
			collision.DetectBrute(bodies, cp.Scaler)
		}},
		{name: "Tree", run: func(bodies []octgrav.Body) {
			tree := octree.Build(bodies, cp.Tree)
			collision.DetectTree(tree, cp.Scaler, con.Threads)
		}},
	}

	groups := []struct {
		name   string
		timers []*timer
	}{
		{"build", builders}, {"force", forces}, {"collision", collisions},
	}

	for _, g := range groups {
		ts := measure(g.timers, ns, con)
		fname := path.Join(con.Output, fmt.Sprintf("%s_%s.png",
			g.name, strings.ToLower(con.Layout)))
		plotTimes(fname, g.name, g.timers, ns, ts)
		log.Printf("Wrote %s.", fname)

		if g.name == "force" {
			// Direct -> Parallel Direct -> Parallel Tree.
			log.Printf("Suggested DirectParallelMin = %d.",
				crossover(ns, ts[0], ts[1]))
			log.Printf("Suggested TreeMin = %d.",
				crossover(ns, ts[1], ts[3]))
		} else if g.name == "collision" {
			log.Printf("Suggested collision TreeMin = %d.",
				crossover(ns, ts[0], ts[1]))
		}
	}

	plt.Execute()
}

// counts returns n integers spaced logarithmically between lo and hi.
func counts(lo, hi, n int) []int {
	if n == 1 {
		return []int{lo}
	}
	out := []int{}
	logLo, logHi := math.Log(float64(lo)), math.Log(float64(hi))
	for i := 0; i < n; i++ {
		x := int(math.Round(math.Exp(
			logLo + (logHi-logLo)*float64(i)/float64(n-1),
		)))
		if len(out) == 0 || x > out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

func layout(name string, n int) []octgrav.Body {
	switch strings.ToLower(name) {
	case "uniform":
		return bodygen.Uniform(n, bodygen.Seed, 100, 1, 10)
	case "plummer":
		return bodygen.Plummer(n, bodygen.Seed, 10, float64(n))
	}
	return bodygen.Spiral(n)
}

// measure returns the fastest of con.Trials runs, in seconds, for each
// timer and body count. Skipped measurements are NaN.
func measure(timers []*timer, ns []int, con *io.BenchConfig) [][]float64 {
	ts := make([][]float64, len(timers))
	for i := range ts {
		ts[i] = make([]float64, len(ns))
	}

	for j, n := range ns {
		bodies := layout(con.Layout, n)
		for i, t := range timers {
			if t.skip {
				ts[i][j] = math.NaN()
				continue
			}

			best := math.Inf(+1)
			for trial := 0; trial < con.Trials; trial++ {
				start := time.Now()
				t.run(bodies)
				best = math.Min(best, time.Since(start).Seconds())
			}
			ts[i][j] = best
			t.skip = best > maxSeconds

			log.Debugf("%s, n = %d: %.4g s", t.name, n, best)
		}
		log.Printf("Timed n = %d.", n)
	}
	return ts
}

// crossover returns the smallest body count after which fast is always
// faster than slow. -1 is returned if that never happens.
func crossover(ns []int, slow, fast []float64) int {
	out := -1
	for j := len(ns) - 1; j >= 0; j-- {
		if math.IsNaN(fast[j]) || !(math.IsNaN(slow[j]) || fast[j] < slow[j]) {
			break
		}
		out = ns[j]
	}
	return out
}

func plotTimes(
	fname, title string, timers []*timer, ns []int, ts [][]float64,
) {
	plt.Figure()

	xs := make([]float64, len(ns))
	for j := range ns {
		xs[j] = float64(ns[j])
	}

	names := make([]string, len(timers))
	for i, t := range timers {
		color := colors[i%len(colors)]
		names[i] = fmt.Sprintf("%s (%s)", t.name, color)

		okXs, okYs := []float64{}, []float64{}
		for j := range xs {
			if !math.IsNaN(ts[i][j]) {
				okXs = append(okXs, xs[j])
				okYs = append(okYs, ts[i][j])
			}
		}
		plt.Plot(okXs, okYs, plt.LW(3), plt.C(color))
	}

	plt.Title(fmt.Sprintf("%s times: %s", title, strings.Join(names, ", ")))
	plt.XLabel(`$N_{\rm bodies}$`, plt.FontSize(16))
	plt.YLabel(`$t$ [s]`, plt.FontSize(16))

	plt.XScale("log")
	plt.YScale("log")
	plt.XLim(xs[0], xs[len(xs)-1])

	plt.Grid(plt.Axis("y"))
	plt.Grid(plt.Axis("x"), plt.Which("both"))
	plt.SaveFig(fname)
}
