/*package catalog reads and writes body catalogs.

The binary format is as follows:
    |-- 1 --||-- 2 --||-- 3 --||-- ... 4 ... --||-- ... 5 ... --|-- ...

    1 - (int32) Flag indicating the endianness of the file. -1 indicates a big
        endian byte ordering and 0 indicates a little endian byte order.
    2 - (int32) Size of a Header struct. Checked for consistency.
    3 - (Header) Meta-information about the catalog.
    4 - ([][3]float64) Contiguous block of x, y, z coordinates.
    5 - ([][3]float64) Contiguous block of v_x, v_y, v_z velocities.
    6 - ([]float64) Masses.
    7 - ([]int64) IDs.

Text catalogs are whitespace-separated columns of x y z vx vy vz m. Bodies
read from text are numbered by row.
*/
package catalog

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/octgrav"
)

const (
	// Endianness used by default when writing catalogs. Catalogs of any
	// endianness can be read.
	DefaultEndiannessFlag int32 = -1

	headerSize = 8 * 4
)

// Header describes meta-information about a catalog.
type Header struct {
	Count int64   // Number of bodies in the catalog
	Step  int64   // Number of steps taken before the catalog was written
	Time  float64 // Simulation time of the catalog
	G     float64 // Gravitational constant the bodies were evolved with
}

// endianness converts an endianness flag to a byte order.
func endianness(flag int32) (binary.ByteOrder, error) {
	switch flag {
	case 0:
		return binary.LittleEndian, nil
	case -1:
		return binary.BigEndian, nil
	}
	return nil, errors.Errorf("unrecognized endianness flag %d", flag)
}

// Write writes bodies to file with the default endianness.
func Write(file string, h Header, bodies []octgrav.Body) error {
	f, err := os.Create(file)
	if err != nil {
		return errors.Wrapf(err, "creating catalog %s", file)
	}

	w := bufio.NewWriter(f)
	if err = WriteTo(w, DefaultEndiannessFlag, h, bodies); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing catalog %s", file)
	}
	if err = w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing catalog %s", file)
	}
	return errors.Wrapf(f.Close(), "closing catalog %s", file)
}

// WriteTo writes a catalog to w using the byte order given by flag. The
// Count field of h is overwritten with len(bodies).
func WriteTo(
	w io.Writer, flag int32, h Header, bodies []octgrav.Body,
) error {
	order, err := endianness(flag)
	if err != nil {
		return err
	}
	h.Count = int64(len(bodies))

	xs := make([][3]float64, len(bodies))
	vs := make([][3]float64, len(bodies))
	ms := make([]float64, len(bodies))
	ids := make([]int64, len(bodies))
	for i := range bodies {
		b := &bodies[i]
		xs[i] = [3]float64{b.Xs.X, b.Xs.Y, b.Xs.Z}
		vs[i] = [3]float64{b.Vs.X, b.Vs.Y, b.Vs.Z}
		ms[i], ids[i] = b.M, b.ID
	}

	// The flag is symmetric, so its own byte order doesn't matter.
	blocks := []interface{}{flag, int32(headerSize), &h, xs, vs, ms, ids}
	for _, block := range blocks {
		if err := binary.Write(w, order, block); err != nil {
			return err
		}
	}
	return nil
}

// readHeader reads the flag, size and Header blocks from r.
func readHeader(r io.Reader) (Header, binary.ByteOrder, error) {
	h := Header{}

	var flag int32
	if err := binary.Read(r, binary.LittleEndian, &flag); err != nil {
		return h, nil, err
	}
	order, err := endianness(flag)
	if err != nil {
		return h, nil, err
	}

	var size int32
	if err := binary.Read(r, order, &size); err != nil {
		return h, nil, err
	}
	if size != headerSize {
		return h, nil, errors.Errorf(
			"expected catalog.Header size of %d, found %d", headerSize, size,
		)
	}

	if err := binary.Read(r, order, &h); err != nil {
		return h, nil, err
	}
	if h.Count < 0 {
		return h, nil, errors.Errorf("negative body count %d", h.Count)
	}
	return h, order, nil
}

// ReadHeader reads the header of the catalog in file.
func ReadHeader(file string) (Header, error) {
	f, err := os.Open(file)
	if err != nil {
		return Header{}, errors.Wrapf(err, "opening catalog %s", file)
	}
	defer f.Close()

	h, _, err := readHeader(bufio.NewReader(f))
	return h, errors.Wrapf(err, "reading header of %s", file)
}

// ReadFrom reads a catalog of either endianness from r.
func ReadFrom(r io.Reader) (Header, []octgrav.Body, error) {
	h, order, err := readHeader(r)
	if err != nil {
		return h, nil, err
	}

	xs := make([][3]float64, h.Count)
	vs := make([][3]float64, h.Count)
	ms := make([]float64, h.Count)
	ids := make([]int64, h.Count)
	for _, block := range []interface{}{xs, vs, ms, ids} {
		if err := binary.Read(r, order, block); err != nil {
			return h, nil, err
		}
	}

	bodies := make([]octgrav.Body, h.Count)
	for i := range bodies {
		bodies[i] = octgrav.Body{
			ID: ids[i],
			Xs: r3.Vec{X: xs[i][0], Y: xs[i][1], Z: xs[i][2]},
			Vs: r3.Vec{X: vs[i][0], Y: vs[i][1], Z: vs[i][2]},
			M:  ms[i],
		}
	}
	return h, bodies, nil
}

// Read reads the catalog in file.
func Read(file string) (Header, []octgrav.Body, error) {
	f, err := os.Open(file)
	if err != nil {
		return Header{}, nil, errors.Wrapf(err, "opening catalog %s", file)
	}
	defer f.Close()

	h, bodies, err := ReadFrom(bufio.NewReader(f))
	if err != nil {
		return h, nil, errors.Wrapf(err, "reading catalog %s", file)
	}
	return h, bodies, nil
}
