package pktline

const (
	// MaxPacketLen is the largest total length (header included) a packet may declare.
	MaxPacketLen = 65520
	// MaxDataLen is the largest payload that fits in one packet.
	MaxDataLen = MaxPacketLen - HeaderLen
	HeaderLen  = 4
)

var flushPacket = []byte("0000")

const hexchar = "0123456789abcdef"

// EncodeHeader writes the low 16 bits of size as four lowercase hex digits into dst[0:4].
func EncodeHeader(dst []byte, size int) {
	_ = dst[3]
	dst[0] = hexchar[(size>>12)&15]
	dst[1] = hexchar[(size>>8)&15]
	dst[2] = hexchar[(size>>4)&15]
	dst[3] = hexchar[size&15]
}

// DecodeHeader parses a 4-byte length header. "0000" yields 0 (flush).
// Range checks on the decoded value are the caller's job.
func DecodeHeader(b []byte) (int, error) {
	if len(b) < HeaderLen {
		return 0, ErrInvalidHeader
	}
	val := 0
	for _, c := range b[:HeaderLen] {
		n := unhex(c)
		if n < 0 {
			return 0, ErrInvalidHeader
		}
		val = val<<4 | n
	}
	return val, nil
}

func unhex(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
