package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// Sinks are the opened trace destinations shared by the sessions of one
// process. Each connection still gets its own Session.
type Sinks struct {
	Identity string
	Packet   io.Writer
	Pack     io.Writer
	Digest   *DigestWriter

	closers []io.Closer
}

// Open resolves cfg into writers. Unusable targets are logged and
// disabled rather than failing the caller.
func Open(cfg Config) (*Sinks, error) {
	s := &Sinks{Identity: cfg.Identity}
	if s.Identity == "" {
		s.Identity = DefaultIdentity
	}

	packet, err := s.openTarget(cfg.Packet, false)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("open packet trace: %w", err)
	}
	s.Packet = packet

	pack, err := s.openTarget(cfg.Packfile, true)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("open packfile trace: %w", err)
	}
	if cfg.Digest {
		s.Digest = NewDigestWriter(pack)
		pack = s.Digest
	}
	s.Pack = pack
	return s, nil
}

// NewSession starts trace state for one stream.
func (s *Sinks) NewSession() *Session {
	if s == nil {
		return nil
	}
	return NewSession(s.Identity, s.Packet, s.Pack)
}

func (s *Sinks) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	if s.Digest != nil {
		log.Debug().
			Str("digest", s.Digest.Hex()).
			Int64("bytes", s.Digest.Count()).
			Msg("packfile trace digest")
	}
	return errors.Join(errs...)
}

func (s *Sinks) openTarget(target string, binary bool) (io.Writer, error) {
	target = strings.TrimSpace(target)
	if disabledTarget(target) {
		return nil, nil
	}

	switch strings.ToLower(target) {
	case "1", "2", "true":
		return os.Stderr, nil
	case "log":
		if binary {
			log.Warn().Str("target", target).Msg("log target cannot carry pack data; packfile trace disabled")
			return nil, nil
		}
		return LogWriter(log.Logger), nil
	}

	if fd, err := strconv.Atoi(target); err == nil {
		if fd < 3 || fd > 9 {
			log.Warn().Str("target", target).Msg("unknown trace descriptor; tracing disabled")
			return nil, nil
		}
		return os.NewFile(uintptr(fd), "trace-fd-"+target), nil
	}

	if !filepath.IsAbs(target) {
		log.Warn().Str("target", target).Msg("trace path is not absolute; tracing disabled")
		return nil, nil
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o666)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, f)

	if binary && strings.HasSuffix(target, ".zst") {
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, enc)
		return enc, nil
	}
	return f, nil
}
