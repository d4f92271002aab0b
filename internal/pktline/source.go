package pktline

import (
	"errors"
	"fmt"
	"io"
)

// source is either a blocking reader or an in-memory cursor, never both.
type source struct {
	r   io.Reader
	buf []byte
	// cursor is set when buf is the active source, even once drained.
	cursor bool
}

// read fills dst. A short read returns ErrUnexpectedEOF with the bytes
// that did arrive counted in n.
func (s *source) read(dst []byte) (int, error) {
	if s.r != nil && s.cursor {
		return 0, fatalf(ErrMultipleSources, "reader and buffer both set")
	}

	var n int
	switch {
	case s.cursor:
		n = copy(dst, s.buf)
		s.buf = s.buf[n:]
	case s.r != nil:
		var err error
		n, err = io.ReadFull(s.r, dst)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return n, fmt.Errorf("%w: %w", ErrReadFailed, err)
		}
	default:
		return 0, fatalf(ErrReadFailed, "no source")
	}

	if n < len(dst) {
		return n, fmt.Errorf("%w: expected %d bytes, got %d", ErrUnexpectedEOF, len(dst), n)
	}
	return n, nil
}
