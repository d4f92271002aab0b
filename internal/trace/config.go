package trace

import (
	"os"
	"strings"
)

const (
	EnvTracePacket   = "PKTLINE_TRACE_PACKET"
	EnvTracePackfile = "PKTLINE_TRACE_PACKFILE"
	EnvTraceIdentity = "PKTLINE_TRACE_IDENTITY"
)

// Config selects trace destinations. Target values follow the usual git
// trace convention: "", "0" or "false" disable; "1", "2" or "true" write
// to stderr; "3".."9" name an inherited descriptor; an absolute path
// appends to that file. "log" sends human lines through the process
// logger. A packfile path ending in ".zst" is zstd-compressed.
type Config struct {
	Identity string
	Packet   string
	Packfile string
	// Digest hashes every archive byte even when Packfile is disabled.
	Digest bool
}

func DefaultConfig() Config {
	return Config{Identity: DefaultIdentity}
}

// ConfigFromEnv overlays environment settings on DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := strings.TrimSpace(os.Getenv(EnvTraceIdentity)); v != "" {
		cfg.Identity = v
	}
	cfg.Packet = strings.TrimSpace(os.Getenv(EnvTracePacket))
	cfg.Packfile = strings.TrimSpace(os.Getenv(EnvTracePackfile))
	return cfg
}

func disabledTarget(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false":
		return true
	}
	return false
}
