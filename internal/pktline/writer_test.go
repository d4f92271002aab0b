package pktline

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/danmuck/pktline/internal/testutil/testlog"
	"github.com/danmuck/pktline/internal/trace"
)

func TestWritePacketRoundTrip(t *testing.T) {
	testlog.Start(t)
	for _, size := range []int{0, 1, 4, 1000, MaxDataLen - 1, MaxDataLen} {
		payload := bytes.Repeat([]byte{'x'}, size)
		for i := range payload {
			payload[i] = byte(i % 251)
		}

		var wire bytes.Buffer
		w := NewWriter(&wire)
		if err := w.WritePacket(payload); err != nil {
			t.Fatalf("write size=%d: %v", size, err)
		}
		if wire.Len() != size+HeaderLen {
			t.Fatalf("wire size=%d got=%d", size, wire.Len())
		}

		r := NewReader(&wire)
		got, err := r.ReadPacket(make([]byte, MaxPacketLen), 0)
		if err != nil {
			t.Fatalf("read size=%d: %v", size, err)
		}
		if got == nil {
			t.Fatalf("size=%d read back as flush", size)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("payload mismatch at size=%d", size)
		}
	}
}

func TestWritePacketTooLargeDoesNoIO(t *testing.T) {
	testlog.Start(t)
	var wire bytes.Buffer
	d := &dieRecorder{}
	w := NewWriter(&wire, d.option())

	err := w.WritePacket(make([]byte, MaxDataLen+1))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if wire.Len() != 0 {
		t.Fatalf("expected no bytes written, got %d", wire.Len())
	}
	if len(d.errs) != 0 {
		t.Fatalf("gentle write must not abort: %v", d.errs)
	}
}

func TestWriteFmt(t *testing.T) {
	testlog.Start(t)
	var wire bytes.Buffer
	w := NewWriter(&wire)
	if err := w.WriteFmt("want %s\n", "abc"); err != nil {
		t.Fatalf("write fmt: %v", err)
	}
	if got := wire.String(); got != "000dwant abc\n" {
		t.Fatalf("unexpected wire=%q", got)
	}
}

func TestWriteFmtOversized(t *testing.T) {
	testlog.Start(t)
	var wire bytes.Buffer
	d := &dieRecorder{}
	w := NewWriter(&wire, d.option())

	atLimit := strings.Repeat("a", MaxDataLen)
	if err := w.WriteFmtGently("%s", atLimit); err != nil {
		t.Fatalf("write at limit: %v", err)
	}
	if !strings.HasPrefix(wire.String(), "fff0") {
		t.Fatalf("unexpected header=%q", wire.String()[:4])
	}
	wire.Reset()

	over := strings.Repeat("a", MaxDataLen+1)
	if err := w.WriteFmtGently("%s", over); !errors.Is(err, ErrOversizedPacket) {
		t.Fatalf("expected ErrOversizedPacket, got %v", err)
	}
	if wire.Len() != 0 || len(d.errs) != 0 {
		t.Fatalf("gentle oversize wrote=%d aborts=%d", wire.Len(), len(d.errs))
	}

	if err := w.WriteFmt("%s", over); !errors.Is(err, ErrOversizedPacket) {
		t.Fatalf("expected ErrOversizedPacket, got %v", err)
	}
	if len(d.errs) != 1 || !errors.Is(d.errs[0], ErrOversizedPacket) {
		t.Fatalf("strict oversize must abort once, got %v", d.errs)
	}
	if wire.Len() != 0 {
		t.Fatalf("strict oversize wrote %d bytes", wire.Len())
	}
}

func TestFlushPolicies(t *testing.T) {
	testlog.Start(t)
	var wire bytes.Buffer
	if err := NewWriter(&wire).Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if wire.String() != "0000" {
		t.Fatalf("unexpected flush=%q", wire.String())
	}

	d := &dieRecorder{}
	w := NewWriter(&shortWriter{limit: 2}, d.option())
	if err := w.FlushGently(); !errors.Is(err, ErrShortWrite) {
		t.Fatalf("expected ErrShortWrite, got %v", err)
	}
	if len(d.errs) != 0 {
		t.Fatalf("gentle flush aborted: %v", d.errs)
	}
	if err := w.Flush(); !errors.Is(err, ErrShortWrite) {
		t.Fatalf("expected ErrShortWrite, got %v", err)
	}
	if len(d.errs) != 1 {
		t.Fatalf("strict flush must abort, got %d", len(d.errs))
	}
}

func TestWritePacketReportsShortWrite(t *testing.T) {
	testlog.Start(t)
	w := NewWriter(&shortWriter{limit: 3})
	if err := w.WritePacket([]byte("hello")); !errors.Is(err, ErrShortWrite) {
		t.Fatalf("expected ErrShortWrite, got %v", err)
	}
}

func TestBufWriteFmtAndBufFlush(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	out.WriteString("prefix")
	w := NewWriter(io.Discard)
	if err := w.BufWriteFmt(&out, "hello\n"); err != nil {
		t.Fatalf("buf write: %v", err)
	}
	if err := w.BufWriteFmt(&out, "%s=%d\n", "n", 7); err != nil {
		t.Fatalf("buf write: %v", err)
	}
	w.BufFlush(&out)
	if got := out.String(); got != "prefix000ahello\n0008n=7\n0000" {
		t.Fatalf("unexpected buffer=%q", got)
	}

	d := &dieRecorder{}
	w = NewWriter(io.Discard, d.option())
	out.Reset()
	if err := w.BufWriteFmt(&out, "%s", strings.Repeat("z", MaxPacketLen)); !errors.Is(err, ErrOversizedPacket) {
		t.Fatalf("expected ErrOversizedPacket, got %v", err)
	}
	if out.Len() != 0 || len(d.errs) != 1 {
		t.Fatalf("oversized buf write len=%d aborts=%d", out.Len(), len(d.errs))
	}
}

func TestAppendPacket(t *testing.T) {
	testlog.Start(t)
	b, err := AppendPacket(nil, []byte("ok"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	b = AppendFlush(b)
	if string(b) != "0006ok0000" {
		t.Fatalf("unexpected append=%q", b)
	}
	if _, err := AppendPacket(nil, make([]byte, MaxDataLen+1)); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestStreamFromEmptySourceWritesOnlyFlush(t *testing.T) {
	testlog.Start(t)
	var wire bytes.Buffer
	n, err := NewWriter(&wire).StreamFrom(strings.NewReader(""))
	if err != nil || n != 0 {
		t.Fatalf("stream got=(%d,%v)", n, err)
	}
	if wire.String() != "0000" {
		t.Fatalf("unexpected wire=%q", wire.String())
	}
}

func TestStreamFromChunksAtMaxDataLen(t *testing.T) {
	testlog.Start(t)
	data := bytes.Repeat([]byte("0123456789"), (2*MaxDataLen+10)/10)
	var wire bytes.Buffer
	n, err := NewWriter(&wire).StreamFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if n != int64(len(data)) {
		t.Fatalf("stream count got=%d want=%d", n, len(data))
	}

	r := NewReader(bytes.NewReader(wire.Bytes()))
	var sizes []int
	for {
		p, err := r.ReadPacket(make([]byte, MaxPacketLen), 0)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if p == nil {
			break
		}
		sizes = append(sizes, len(p))
	}
	if len(sizes) != 3 || sizes[0] != MaxDataLen || sizes[1] != MaxDataLen {
		t.Fatalf("unexpected chunk sizes=%v", sizes)
	}
}

func TestStreamFromShortReadsKeepChunkBoundaries(t *testing.T) {
	testlog.Start(t)
	var wire bytes.Buffer
	src := &chunkReader{data: []byte("abcdefg"), size: 3}
	if _, err := NewWriter(&wire).StreamFrom(src); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if got := wire.String(); got != "0007abc0007def0005g0000" {
		t.Fatalf("unexpected wire=%q", got)
	}
}

func TestStreamFromAttributesFailures(t *testing.T) {
	testlog.Start(t)
	_, err := NewWriter(io.Discard).StreamFrom(iotest.ErrReader(errBoom))
	if !errors.Is(err, ErrSourceRead) || !errors.Is(err, errBoom) {
		t.Fatalf("expected ErrSourceRead, got %v", err)
	}

	_, err = NewWriter(failWriter{}).StreamFrom(strings.NewReader("data"))
	if !errors.Is(err, ErrSinkWrite) {
		t.Fatalf("expected ErrSinkWrite, got %v", err)
	}

	_, err = NewWriter(failWriter{}).StreamFrom(strings.NewReader(""))
	if !errors.Is(err, ErrSinkWrite) {
		t.Fatalf("expected ErrSinkWrite on flush, got %v", err)
	}
}

func TestStreamBytes(t *testing.T) {
	testlog.Start(t)
	var wire bytes.Buffer
	n, err := NewWriter(&wire).StreamBytes(nil)
	if err != nil || n != 0 || wire.String() != "0000" {
		t.Fatalf("empty stream got=(%d,%v,%q)", n, err, wire.String())
	}

	wire.Reset()
	data := bytes.Repeat([]byte{'q'}, MaxDataLen+5)
	n, err = NewWriter(&wire).StreamBytes(data)
	if err != nil || n != int64(len(data)) {
		t.Fatalf("stream got=(%d,%v)", n, err)
	}
	if wire.Len() != len(data)+3*HeaderLen {
		t.Fatalf("unexpected wire length=%d", wire.Len())
	}

	var out bytes.Buffer
	got, err := NewReader(&wire).ReadUntilFlush(&out)
	if err != nil || got != int64(len(data)) || !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("read back got=(%d,%v)", got, err)
	}

	if _, err := NewWriter(failWriter{}).StreamBytes([]byte("x")); !errors.Is(err, ErrSinkWrite) {
		t.Fatalf("expected ErrSinkWrite, got %v", err)
	}
}

func TestWriterTracesOutbound(t *testing.T) {
	testlog.Start(t)
	var human, pack bytes.Buffer
	session := trace.NewSession("push", &human, &pack)
	w := NewWriter(io.Discard, WithTrace(session))

	if err := w.WriteFmt("ref refs/heads/main\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.WritePacket([]byte("PACKdata")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	want := "packet:         push> ref refs/heads/main\n" +
		"packet:         push> PACK ...\n" +
		"packet:         push> 0000\n"
	if human.String() != want {
		t.Fatalf("unexpected trace:\n%s", human.String())
	}
	if pack.String() != "PACKdata" {
		t.Fatalf("unexpected pack trace=%q", pack.String())
	}
	if w.Trace() != session {
		t.Fatalf("trace session not retained")
	}
}
