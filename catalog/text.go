package catalog

import (
	"bufio"
	"fmt"
	"os"

	"github.com/phil-mansfield/table"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/octgrav"
)

// TextColumns are the columns read from a text catalog, in the order
// x y z vx vy vz m.
var TextColumns = []int{0, 1, 2, 3, 4, 5, 6}

// ReadText reads a whitespace-separated text catalog. The body in row i
// is given ID i.
func ReadText(file string) ([]octgrav.Body, error) {
	cols, err := table.ReadTable(file, TextColumns, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "reading text catalog %s", file)
	}

	xs, ys, zs := cols[0], cols[1], cols[2]
	vxs, vys, vzs := cols[3], cols[4], cols[5]
	ms := cols[6]

	bodies := make([]octgrav.Body, len(xs))
	for i := range bodies {
		bodies[i] = octgrav.Body{
			ID: int64(i),
			Xs: r3.Vec{X: xs[i], Y: ys[i], Z: zs[i]},
			Vs: r3.Vec{X: vxs[i], Y: vys[i], Z: vzs[i]},
			M:  ms[i],
		}
	}
	return bodies, nil
}

// WriteText writes bodies to file in the format read by ReadText.
func WriteText(file string, bodies []octgrav.Body) error {
	f, err := os.Create(file)
	if err != nil {
		return errors.Wrapf(err, "creating text catalog %s", file)
	}
	w := bufio.NewWriter(f)

	for i := range bodies {
		b := &bodies[i]
		fmt.Fprintf(w, "%.17g %.17g %.17g %.17g %.17g %.17g %.17g\n",
			b.Xs.X, b.Xs.Y, b.Xs.Z, b.Vs.X, b.Vs.Y, b.Vs.Z, b.M)
	}

	if err = w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing text catalog %s", file)
	}
	return errors.Wrapf(f.Close(), "closing text catalog %s", file)
}
