package catalog

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// PointBuffer is a wrapper around text files which allows trajectory points
// to be appended on the fly without much overhead from I/O or excessive
// memory usage. Each line of the file is "id step x y z".
type PointBuffer struct {
	buf  []point
	idx  int
	path string
}

type point struct {
	id   int64
	step int
	x    r3.Vec
}

// NewPointBuffer creates a PointBuffer associated with the given file,
// truncating it.
func NewPointBuffer(path string, bufSize int) (*PointBuffer, error) {
	if bufSize < 1 {
		bufSize = 1
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating trajectory file %s", path)
	}
	if _, err = fmt.Fprintln(f, "# id step x y z"); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "writing trajectory file %s", path)
	}
	if err = f.Close(); err != nil {
		return nil, errors.Wrapf(err, "closing trajectory file %s", path)
	}
	return &PointBuffer{make([]point, bufSize), 0, path}, nil
}

// Append adds a point to the buffer, which will eventually be written to
// the target file.
func (pb *PointBuffer) Append(id int64, step int, x r3.Vec) error {
	pb.buf[pb.idx] = point{id, step, x}
	pb.idx++
	if pb.idx == len(pb.buf) {
		return pb.Flush()
	}
	return nil
}

// Flush writes the contents of the buffer to its target file. This is
// called automatically whenever the buffer fills.
func (pb *PointBuffer) Flush() error {
	if pb.idx == 0 {
		return nil
	}

	f, err := os.OpenFile(pb.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "opening trajectory file %s", pb.path)
	}
	w := bufio.NewWriter(f)
	for _, p := range pb.buf[:pb.idx] {
		fmt.Fprintf(w, "%d %d %.10g %.10g %.10g\n",
			p.id, p.step, p.x.X, p.x.Y, p.x.Z)
	}
	pb.idx = 0

	if err = w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing trajectory file %s", pb.path)
	}
	return errors.Wrapf(f.Close(), "closing trajectory file %s", pb.path)
}
