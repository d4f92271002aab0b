package trace

import (
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// DigestWriter hashes everything written to it with BLAKE3 and forwards
// the bytes to an optional downstream writer.
type DigestWriter struct {
	next   io.Writer
	hasher *blake3.Hasher
	n      int64
}

func NewDigestWriter(next io.Writer) *DigestWriter {
	return &DigestWriter{next: next, hasher: blake3.New()}
}

func (d *DigestWriter) Write(p []byte) (int, error) {
	_, _ = d.hasher.Write(p)
	d.n += int64(len(p))
	if d.next == nil {
		return len(p), nil
	}
	return d.next.Write(p)
}

func (d *DigestWriter) Sum() []byte { return d.hasher.Sum(nil) }

func (d *DigestWriter) Hex() string { return hex.EncodeToString(d.Sum()) }

func (d *DigestWriter) Count() int64 { return d.n }
