package pktline

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/pktline/internal/trace"
)

// Writer writes packets to one stream. Methods without the Gently
// suffix hand failures to the abort hook.
type Writer struct {
	w      io.Writer
	buf    []byte
	fmtBuf []byte
	opts   options
}

func NewWriter(w io.Writer, opts ...Option) *Writer {
	return &Writer{
		w:    w,
		buf:  make([]byte, MaxPacketLen),
		opts: buildOptions(opts),
	}
}

// Trace returns the session packets are traced through.
func (w *Writer) Trace() *trace.Session {
	return w.opts.trace
}

func (w *Writer) writeFull(p []byte) error {
	n, err := w.w.Write(p)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrShortWrite, err)
	}
	if n < len(p) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(p))
	}
	return nil
}

func (w *Writer) flush() error {
	w.opts.traceFlush(trace.Outbound)
	return w.writeFull(flushPacket)
}

// Flush writes a flush packet.
func (w *Writer) Flush() error {
	if err := w.flush(); err != nil {
		return w.opts.fail("flush", err)
	}
	return nil
}

func (w *Writer) FlushGently() error {
	if err := w.flush(); err != nil {
		return w.opts.gentle("flush", err)
	}
	return nil
}

func (w *Writer) writeFmt(format string, args ...any) error {
	b, err := AppendPacketf(w.fmtBuf[:0], format, args...)
	w.fmtBuf = b[:0]
	if err != nil {
		return err
	}
	w.opts.tracePacket(b[HeaderLen:], trace.Outbound)
	return w.writeFull(b)
}

// WriteFmt formats one packet and writes it.
func (w *Writer) WriteFmt(format string, args ...any) error {
	if err := w.writeFmt(format, args...); err != nil {
		return w.opts.fail("write_fmt", err)
	}
	return nil
}

// WriteFmtGently is WriteFmt returning errors instead of aborting. An
// oversized packet performs no I/O.
func (w *Writer) WriteFmtGently(format string, args ...any) error {
	if err := w.writeFmt(format, args...); err != nil {
		return w.opts.gentle("write_fmt", err)
	}
	return nil
}

func (w *Writer) writeRaw(p []byte) error {
	if len(p) > MaxDataLen {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(p))
	}
	w.opts.tracePacket(p, trace.Outbound)
	// p may already live at w.buf[HeaderLen:]; copy handles the overlap
	copy(w.buf[HeaderLen:], p)
	size := len(p) + HeaderLen
	EncodeHeader(w.buf, size)
	return w.writeFull(w.buf[:size])
}

// WritePacket writes p as a single data packet with one Write call.
func (w *Writer) WritePacket(p []byte) error {
	if err := w.writeRaw(p); err != nil {
		return w.opts.gentle("write", err)
	}
	return nil
}

// BufWriteFmt appends one formatted packet to buf instead of writing it.
func (w *Writer) BufWriteFmt(buf *bytes.Buffer, format string, args ...any) error {
	b, err := AppendPacketf(buf.AvailableBuffer(), format, args...)
	if err != nil {
		return w.opts.fail("buf_write_fmt", err)
	}
	buf.Write(b)
	return nil
}

// BufFlush appends a traced flush packet to buf.
func (w *Writer) BufFlush(buf *bytes.Buffer) {
	w.opts.traceFlush(trace.Outbound)
	buf.Write(flushPacket)
}

// StreamFrom copies src into data packets of at most MaxDataLen bytes and
// ends with a flush packet. It returns the payload bytes written.
func (w *Writer) StreamFrom(src io.Reader) (int64, error) {
	var total int64
	for {
		n, rerr := src.Read(w.buf[HeaderLen:])
		if n > 0 {
			if err := w.writeRaw(w.buf[HeaderLen : HeaderLen+n]); err != nil {
				return total, w.opts.gentle("stream", fmt.Errorf("%w: %w", ErrSinkWrite, err))
			}
			total += int64(n)
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return total, w.opts.gentle("stream", fmt.Errorf("%w: %w", ErrSourceRead, rerr))
		}
	}
	if err := w.flush(); err != nil {
		return total, w.opts.gentle("stream", fmt.Errorf("%w: %w", ErrSinkWrite, err))
	}
	return total, nil
}

// StreamBytes is StreamFrom over an in-memory slice.
func (w *Writer) StreamBytes(src []byte) (int64, error) {
	var total int64
	for len(src) > 0 {
		n := min(len(src), MaxDataLen)
		if err := w.writeRaw(src[:n]); err != nil {
			return total, w.opts.gentle("stream", fmt.Errorf("%w: %w", ErrSinkWrite, err))
		}
		src = src[n:]
		total += int64(n)
	}
	if err := w.flush(); err != nil {
		return total, w.opts.gentle("stream", fmt.Errorf("%w: %w", ErrSinkWrite, err))
	}
	return total, nil
}
