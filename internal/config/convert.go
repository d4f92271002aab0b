package config

import (
	"strings"

	"github.com/danmuck/pktline/internal/trace"
)

func (p Profile) TraceConfig() trace.Config {
	cfg := trace.DefaultConfig()
	if id := strings.TrimSpace(p.Trace.Identity); id != "" {
		cfg.Identity = id
	}
	cfg.Packet = strings.TrimSpace(p.Trace.Packet)
	cfg.Packfile = strings.TrimSpace(p.Trace.Packfile)
	cfg.Digest = p.Trace.Digest
	return cfg
}
