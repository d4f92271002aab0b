package pktline

import (
	"errors"
	"io"
)

type dieRecorder struct {
	errs []error
}

func (d *dieRecorder) die(err error) {
	d.errs = append(d.errs, err)
}

func (d *dieRecorder) option() Option {
	return WithDie(d.die)
}

var errBoom = errors.New("boom")

// shortWriter accepts at most limit bytes per call without reporting an error
// for the first write, which violates io.Writer on purpose.
type shortWriter struct {
	limit int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		return w.limit, nil
	}
	return len(p), nil
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errBoom
}

// chunkReader yields data in fixed-size reads.
type chunkReader struct {
	data []byte
	size int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := min(len(p), r.size, len(r.data))
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}
