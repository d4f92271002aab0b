package trace

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// Direction marks which way a packet travelled.
type Direction byte

const (
	Outbound Direction = '>'
	Inbound  Direction = '<'
)

const DefaultIdentity = "git"

var (
	packSignature         = []byte("PACK")
	sidebandPackSignature = []byte("\x01PACK")
	packPlaceholder       = []byte("PACK ...")
	flushMarker           = []byte("0000")
)

// Session holds the per-stream trace state. A nil *Session is valid and
// traces nothing.
type Session struct {
	identity string
	packet   io.Writer
	pack     io.Writer

	inPack   bool
	sideband bool

	line []byte
}

// NewSession creates a router writing human lines to packet and archive
// bytes to pack. Either sink may be nil to disable that channel.
func NewSession(identity string, packet, pack io.Writer) *Session {
	if identity == "" {
		identity = DefaultIdentity
	}
	return &Session{identity: identity, packet: packet, pack: pack}
}

func (s *Session) Enabled() bool {
	return s != nil && (s.packet != nil || s.pack != nil)
}

func (s *Session) Identity() string {
	if s == nil {
		return DefaultIdentity
	}
	return s.identity
}

func (s *Session) SetIdentity(identity string) {
	if s != nil && identity != "" {
		s.identity = identity
	}
}

// InPack reports whether the stream has switched to archive data.
func (s *Session) InPack() bool { return s != nil && s.inPack }

// Sideband reports whether archive data arrives on sideband channel 1.
func (s *Session) Sideband() bool { return s != nil && s.sideband }

// Packet traces one payload.
func (s *Session) Packet(buf []byte, dir Direction) {
	if !s.Enabled() {
		return
	}

	if s.inPack {
		if s.tracePack(buf) {
			return
		}
	} else if bytes.HasPrefix(buf, packSignature) || bytes.HasPrefix(buf, sidebandPackSignature) {
		s.inPack = true
		s.sideband = buf[0] == '\x01'
		s.tracePack(buf)

		// note the start of pack data in the human trace
		buf = packPlaceholder
	}

	s.writeLine(buf, dir)
}

// Flush traces a flush packet. It never reaches the pack channel.
func (s *Session) Flush(dir Direction) {
	if !s.Enabled() {
		return
	}
	s.writeLine(flushMarker, dir)
}

// tracePack reports whether buf was consumed as archive data.
func (s *Session) tracePack(buf []byte) bool {
	if !s.sideband {
		s.writePack(buf)
		return true
	}
	if len(buf) > 0 && buf[0] == '\x01' {
		s.writePack(buf[1:])
		return true
	}
	// another sideband channel (progress, error)
	return false
}

func (s *Session) writePack(buf []byte) {
	if s.pack == nil {
		return
	}
	_, _ = s.pack.Write(buf)
}

func (s *Session) writeLine(buf []byte, dir Direction) {
	if s.packet == nil {
		return
	}
	out := fmt.Appendf(s.line[:0], "packet: %12s%c ", s.identity, byte(dir))
	out = appendQuoted(out, buf)
	out = append(out, '\n')
	_, _ = s.packet.Write(out)
	s.line = out[:0]
}

func appendQuoted(out, buf []byte) []byte {
	for _, c := range buf {
		switch {
		case c == '\n':
		case c >= 0x20 && c <= 0x7e:
			out = append(out, c)
		default:
			out = append(out, '\\')
			out = strconv.AppendUint(out, uint64(c), 8)
		}
	}
	return out
}
