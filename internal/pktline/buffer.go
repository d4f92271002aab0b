package pktline

import "fmt"

// AppendPacketf appends one packet whose payload is the formatted text.
// On ErrOversizedPacket dst is returned unchanged.
func AppendPacketf(dst []byte, format string, args ...any) ([]byte, error) {
	orig := len(dst)
	dst = append(dst, flushPacket...)
	dst = fmt.Appendf(dst, format, args...)

	n := len(dst) - orig
	if n > MaxPacketLen {
		return dst[:orig], fmt.Errorf("%w: %d bytes", ErrOversizedPacket, n)
	}
	EncodeHeader(dst[orig:], n)
	return dst, nil
}

// AppendPacket appends p as one data packet.
func AppendPacket(dst, p []byte) ([]byte, error) {
	if len(p) > MaxDataLen {
		return dst, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(p))
	}
	orig := len(dst)
	dst = append(dst, flushPacket...)
	dst = append(dst, p...)
	EncodeHeader(dst[orig:], len(p)+HeaderLen)
	return dst, nil
}

// AppendFlush appends a flush packet to dst.
func AppendFlush(dst []byte) []byte {
	return append(dst, flushPacket...)
}
