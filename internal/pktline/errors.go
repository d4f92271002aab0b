package pktline

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidHeader   = errors.New("pktline: bad line length character")
	ErrBadLength       = errors.New("pktline: bad line length")
	ErrLineTooLong     = errors.New("pktline: line too long for buffer")
	ErrOversizedPacket = errors.New("pktline: impossibly long line")
	ErrPayloadTooLarge = errors.New("pktline: payload too large")
	ErrUnexpectedEOF   = errors.New("pktline: the remote end hung up unexpectedly")
	ErrReadFailed      = errors.New("pktline: read error")
	ErrShortWrite      = errors.New("pktline: short write")
	ErrSourceRead      = errors.New("pktline: stream source read failed")
	ErrSinkWrite       = errors.New("pktline: stream sink write failed")
	ErrIncompleteRead  = errors.New("pktline: incomplete read")
	ErrMultipleSources = errors.New("pktline: BUG: multiple sources given to packet read")
)

// FatalError marks stream corruption or a programming defect. Gentle
// options never downgrade it to a recoverable error.
type FatalError struct {
	Err    error
	Detail string
}

func (e *FatalError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *FatalError) Unwrap() error { return e.Err }

func fatalf(err error, format string, args ...any) error {
	return &FatalError{Err: err, Detail: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err must abort regardless of policy.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
