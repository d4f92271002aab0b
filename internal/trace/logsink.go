package trace

import (
	"bytes"
	"io"

	"github.com/rs/zerolog"
)

type logWriter struct {
	logger zerolog.Logger
}

// LogWriter turns each trace line into one debug event.
func LogWriter(logger zerolog.Logger) io.Writer {
	return &logWriter{logger: logger.With().Str("component", "pktline.trace").Logger()}
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.logger.Debug().Msg(string(bytes.TrimSuffix(p, []byte("\n"))))
	return len(p), nil
}
