package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	log "github.com/sirupsen/logrus"

	"github.com/phil-mansfield/octgrav"
	"github.com/phil-mansfield/octgrav/catalog"
	"github.com/phil-mansfield/octgrav/geom"
	"github.com/phil-mansfield/octgrav/io"
	"github.com/phil-mansfield/octgrav/octree"
	"github.com/phil-mansfield/octgrav/view"
)

func main() {
	var config string
	flag.StringVar(&config, "View", "", "Configuration file for [View] "+
		"mode. Any further arguments are read as bounds files.")
	flag.Parse()

	if config == "" {
		log.Fatal("No flags have been set.")
	}
	con, err := io.ReadViewConfig(config)
	if err != nil {
		log.Fatal(err.Error())
	}

	// The screen owns the terminal, so logs go to a file or nowhere.
	if con.ValidLogFile() {
		f, err := os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		defer f.Close()
		log.SetOutput(f)
	}

	regions := []io.BoxConfig{}
	for _, file := range flag.Args() {
		boxes, err := io.ReadBoundsConfig(file)
		if err != nil {
			log.Fatal(err.Error())
		}
		regions = append(regions, boxes...)
	}

	bodies, err := readBodies(con)
	if err != nil {
		log.Fatal(err.Error())
	}
	tree := octree.BuildWith(con.Strategy(), bodies, con.Octree())
	log.Printf("Built a %s tree with %d nodes over %d bodies.",
		con.Strategy(), tree.Len(), len(bodies))

	axis, err := view.ParseAxis(con.ProjectionAxis)
	if err != nil {
		log.Fatal(err.Error())
	}
	opt := view.Options{Axis: axis, MaxDepth: con.MaxDepth}
	if len(regions) > 0 {
		opt.Keep = func(b geom.Box) bool {
			for i := range regions {
				if regions[i].Overlaps(b) {
					return true
				}
			}
			return false
		}
	}

	if err = run(tree, opt); err != nil {
		log.Fatal(err.Error())
	}
}

func readBodies(con *io.ViewConfig) ([]octgrav.Body, error) {
	if con.Format() == io.Text {
		return catalog.ReadText(con.Input)
	}
	_, bodies, err := catalog.Read(con.Input)
	return bodies, err
}

func run(tree *octree.Octree[octgrav.Body], opt view.Options) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err = screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	maxDepth := tree.Depth()
	for {
		view.Draw(screen, tree, tree.Bounds, opt)
		screen.Show()

		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				return nil
			}
			if ev.Key() != tcell.KeyRune {
				continue
			}
			switch ev.Rune() {
			case 'q':
				return nil
			case '+', '=':
				if opt.MaxDepth >= 0 && opt.MaxDepth < maxDepth {
					opt.MaxDepth++
				}
			case '-':
				if opt.MaxDepth < 0 {
					opt.MaxDepth = maxDepth
				}
				if opt.MaxDepth > 0 {
					opt.MaxDepth--
				}
			case 'a':
				opt.MaxDepth = -1
			case 'x', 'y', 'z':
				opt.Axis, _ = view.ParseAxis(fmt.Sprintf("%c", ev.Rune()))
			}
		case nil:
			return nil
		}
	}
}
