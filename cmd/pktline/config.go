package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/pktline/internal/config"
	"github.com/danmuck/pktline/internal/trace"
)

type fileConfig struct {
	Trace struct {
		Identity string `toml:"identity"`
		Packet   string `toml:"packet"`
		Packfile string `toml:"packfile"`
		Digest   bool   `toml:"digest"`
	} `toml:"trace"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
	Metrics struct {
		Textfile string `toml:"textfile"`
	} `toml:"metrics"`
}

// baseProfile seeds the defaults with the trace environment.
func baseProfile() config.Profile {
	cfg := config.DefaultProfile()
	env := trace.ConfigFromEnv()
	cfg.Trace.Identity = env.Identity
	cfg.Trace.Packet = env.Packet
	cfg.Trace.Packfile = env.Packfile
	return cfg
}

// loadProfile overlays the keys present in the file at path onto base.
func loadProfile(path string, base config.Profile) (config.Profile, error) {
	cfg := base

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.Profile{}, fmt.Errorf("load pktline config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config.Profile{}, fmt.Errorf("load pktline config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("trace", "identity") {
		if id := strings.TrimSpace(raw.Trace.Identity); id != "" {
			cfg.Trace.Identity = id
		}
	}
	if meta.IsDefined("trace", "packet") {
		cfg.Trace.Packet = strings.TrimSpace(raw.Trace.Packet)
	}
	if meta.IsDefined("trace", "packfile") {
		cfg.Trace.Packfile = strings.TrimSpace(raw.Trace.Packfile)
	}
	if meta.IsDefined("trace", "digest") {
		cfg.Trace.Digest = raw.Trace.Digest
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("metrics", "textfile") {
		cfg.Metrics.Textfile = strings.TrimSpace(raw.Metrics.Textfile)
	}

	return cfg, nil
}
