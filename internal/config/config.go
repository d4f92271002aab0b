package config

import (
	"fmt"
	"strings"

	"github.com/danmuck/pktline/internal/logging"
)

// Profile is the on-disk configuration of the pktline tool.
type Profile struct {
	Trace   TraceSection   `toml:"trace"`
	Log     LogSection     `toml:"log"`
	Metrics MetricsSection `toml:"metrics"`
}

type TraceSection struct {
	Identity string `toml:"identity"`
	Packet   string `toml:"packet"`
	Packfile string `toml:"packfile"`
	Digest   bool   `toml:"digest"`
}

type LogSection struct {
	Level string `toml:"level"`
}

type MetricsSection struct {
	Textfile string `toml:"textfile"`
}

func DefaultProfile() Profile {
	return Profile{
		Trace: TraceSection{Identity: "git"},
		Log:   LogSection{Level: "info"},
	}
}

func Validate(p Profile) error {
	id := strings.TrimSpace(p.Trace.Identity)
	if id == "" {
		return fmt.Errorf("trace identity is required")
	}
	if strings.ContainsAny(id, " \t\n") {
		return fmt.Errorf("trace identity %q contains whitespace", id)
	}
	if _, ok := logging.ParseLevel(p.Log.Level); !ok {
		return fmt.Errorf("unknown log level %q", p.Log.Level)
	}
	if strings.TrimSpace(p.Metrics.Textfile) != "" && !strings.HasSuffix(p.Metrics.Textfile, ".prom") {
		return fmt.Errorf("metrics textfile must end in .prom: %q", p.Metrics.Textfile)
	}
	return nil
}
