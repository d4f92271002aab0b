package pktline

import (
	"os"

	"github.com/danmuck/pktline/internal/observability"
	"github.com/danmuck/pktline/internal/trace"
	"github.com/rs/zerolog/log"
)

// ExitCode is the status DefaultDie exits with.
const ExitCode = 128

// DieFunc aborts the process or connection after an unrecoverable error.
// If it returns, the failing operation returns err to its caller.
type DieFunc func(err error)

// DefaultDie exits the process.
func DefaultDie(err error) {
	os.Exit(ExitCode)
}

type options struct {
	die    DieFunc
	trace  *trace.Session
	stream string
}

type Option func(*options)

// WithDie replaces the abort hook used by strict operations.
func WithDie(fn DieFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.die = fn
		}
	}
}

// WithTrace attaches the trace session of the stream.
func WithTrace(s *trace.Session) Option {
	return func(o *options) { o.trace = s }
}

// WithStream names the stream in metrics and logs.
func WithStream(name string) Option {
	return func(o *options) {
		if name != "" {
			o.stream = name
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{die: DefaultDie, stream: "pktline"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// fail is the strict policy: log, record and hand the error to the abort hook.
func (o *options) fail(op string, err error) error {
	observability.RecordError(o.stream, op, true)
	log.Error().Err(err).Str("stream", o.stream).Str("op", op).Msg("fatal: protocol failure")
	o.die(err)
	return err
}

// gentle is the recoverable policy: record and return.
func (o *options) gentle(op string, err error) error {
	observability.RecordError(o.stream, op, false)
	log.Debug().Err(err).Str("stream", o.stream).Str("op", op).Msg("pktline operation failed")
	return err
}

// check applies fail or gentle. Fatal errors ignore the gentle flag.
func (o *options) check(op string, err error, gentle bool) error {
	if gentle && !IsFatal(err) {
		return o.gentle(op, err)
	}
	return o.fail(op, err)
}

func (o *options) tracePacket(p []byte, dir trace.Direction) {
	o.trace.Packet(p, dir)
	observability.RecordPacket(o.stream, dirLabel(dir), "data", len(p))
}

func (o *options) traceFlush(dir trace.Direction) {
	o.trace.Flush(dir)
	observability.RecordPacket(o.stream, dirLabel(dir), "flush", 0)
}

func dirLabel(dir trace.Direction) string {
	if dir == trace.Inbound {
		return "in"
	}
	return "out"
}
