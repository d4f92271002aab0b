package pktline

import (
	"bytes"
	"fmt"
	"io"

	"github.com/danmuck/pktline/internal/trace"
)

// ReadOption adjusts a single packet read.
type ReadOption uint8

const (
	// GentleOnEOF returns ErrUnexpectedEOF instead of aborting on a short read.
	GentleOnEOF ReadOption = 1 << iota
	// ChompNewline drops one trailing '\n' from the returned payload.
	ChompNewline
)

// Reader reads packets from one stream.
type Reader struct {
	src  source
	hdr  [HeaderLen]byte
	buf  []byte
	opts options
}

// NewReader reads packets from a blocking byte stream.
func NewReader(r io.Reader, opts ...Option) *Reader {
	return newReader(source{r: r}, opts)
}

// NewBufferReader reads packets from an in-memory cursor over buf.
func NewBufferReader(buf []byte, opts ...Option) *Reader {
	if buf == nil {
		buf = []byte{}
	}
	return newReader(source{buf: buf, cursor: true}, opts)
}

// NewSourceReader selects the source by which argument is non-nil.
// Passing both is a programming error reported as fatal on first read.
func NewSourceReader(r io.Reader, buf []byte, opts ...Option) *Reader {
	return newReader(source{r: r, buf: buf, cursor: buf != nil}, opts)
}

func newReader(src source, opts []Option) *Reader {
	return &Reader{
		src:  src,
		buf:  make([]byte, MaxPacketLen),
		opts: buildOptions(opts),
	}
}

// Remaining returns the unread part of an in-memory source.
func (r *Reader) Remaining() []byte {
	return r.src.buf
}

// Trace returns the session packets are traced through.
func (r *Reader) Trace() *trace.Session {
	return r.opts.trace
}

// ReadPacket reads one packet into dst and returns the payload as a
// subslice of dst. A flush packet yields a nil payload; an empty data
// packet yields a non-nil empty slice. Without GentleOnEOF any error
// goes to the abort hook; malformed headers always do.
func (r *Reader) ReadPacket(dst []byte, opts ReadOption) ([]byte, error) {
	payload, err := r.readPacket(dst, opts)
	if err != nil {
		return nil, r.opts.check("read", err, opts&GentleOnEOF != 0)
	}
	return payload, nil
}

// ReadLine reads one packet into the reader's scratch buffer with the
// trailing newline removed. It returns nil on flush. The result is only
// valid until the next read.
func (r *Reader) ReadLine() ([]byte, error) {
	return r.ReadPacket(r.buf, ChompNewline)
}

func (r *Reader) readHeader() (int, error) {
	if _, err := r.src.read(r.hdr[:]); err != nil {
		return 0, err
	}
	n, err := DecodeHeader(r.hdr[:])
	if err != nil {
		return 0, fatalf(err, "%q", r.hdr[:])
	}
	if n != 0 && n < HeaderLen {
		return 0, fatalf(ErrBadLength, "%d", n)
	}
	return n, nil
}

func (r *Reader) readPacket(dst []byte, opts ReadOption) ([]byte, error) {
	n, err := r.readHeader()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		r.opts.traceFlush(trace.Inbound)
		return nil, nil
	}

	n -= HeaderLen
	if n >= len(dst) {
		return nil, fatalf(ErrLineTooLong, "%d", n)
	}
	if _, err := r.src.read(dst[:n]); err != nil {
		return nil, err
	}

	if opts&ChompNewline != 0 && n > 0 && dst[n-1] == '\n' {
		n--
	}

	payload := dst[:n]
	r.opts.tracePacket(payload, trace.Inbound)
	return payload, nil
}

// ReadUntilFlush appends every payload up to the next flush packet to
// out and returns how many bytes were added. Short reads are always
// gentle here: on error out is put back the way it was found and the
// error is returned.
func (r *Reader) ReadUntilFlush(out *bytes.Buffer) (int64, error) {
	oldLen := out.Len()
	oldCap := out.Cap()

	restore := func(err error) (int64, error) {
		if oldCap == 0 {
			*out = bytes.Buffer{}
		} else {
			out.Truncate(oldLen)
		}
		return 0, r.opts.check("read_until_flush", err, true)
	}

	for {
		n, err := r.readHeader()
		if err != nil {
			return restore(err)
		}
		if n == 0 {
			r.opts.traceFlush(trace.Inbound)
			break
		}
		n -= HeaderLen

		out.Grow(n)
		chunk := out.AvailableBuffer()[:n]
		got, err := r.src.read(chunk)
		if err != nil {
			if got > 0 {
				err = fmt.Errorf("%w (expected %d, got %d): %w", ErrIncompleteRead, n, got, err)
			}
			return restore(err)
		}

		r.opts.tracePacket(chunk, trace.Inbound)
		out.Write(chunk)
	}

	return int64(out.Len() - oldLen), nil
}
