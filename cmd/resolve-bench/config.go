package main

import (
	"time"

	toml "github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// runConfig is the on-disk shape of .resolve-bench.toml: the run-level
// knobs that aren't themselves part of the library's surface (the
// resolver Non-goals exclude a CLI and manifest parsing, but a CLI that
// drives the library still wants a place to keep its own defaults).
type runConfig struct {
	Timeout       time.Duration
	Trace         bool
	Nogoods       bool
	LatencyMillis int
}

func defaultRunConfig() runConfig {
	return runConfig{Timeout: 30 * time.Second}
}

// tomlMapper wraps a parsed tree plus a sticky error: once Error is set,
// every subsequent read becomes a no-op so the caller only has to check
// it once at the end.
type tomlMapper struct {
	Tree  *toml.Tree
	Error error
}

func readKeyAsString(m *tomlMapper, key, def string) string {
	if m.Error != nil {
		return def
	}
	raw := m.Tree.GetDefault(key, def)
	s, ok := raw.(string)
	if !ok {
		m.Error = errors.Errorf("invalid type for %s, should be a string, but it is a %T", key, raw)
		return def
	}
	return s
}

func readKeyAsBool(m *tomlMapper, key string, def bool) bool {
	if m.Error != nil {
		return def
	}
	raw := m.Tree.GetDefault(key, def)
	b, ok := raw.(bool)
	if !ok {
		m.Error = errors.Errorf("invalid type for %s, should be a bool, but it is a %T", key, raw)
		return def
	}
	return b
}

func readKeyAsInt(m *tomlMapper, key string, def int64) int64 {
	if m.Error != nil {
		return def
	}
	raw := m.Tree.GetDefault(key, def)
	switch n := raw.(type) {
	case int64:
		return n
	default:
		m.Error = errors.Errorf("invalid type for %s, should be an integer, but it is a %T", key, raw)
		return def
	}
}

// loadRunConfig reads path as TOML. On any failure, including a path that
// doesn't exist, it returns defaultRunConfig() unmodified together with a
// wrapped error; errors.Cause of that error lets a caller tell a missing
// file apart and fall back to the defaults. A file that exists but doesn't
// parse, or holds a value of the wrong type, is reported the same way
// rather than silently ignored.
func loadRunConfig(path string) (runConfig, error) {
	cfg := defaultRunConfig()

	tree, err := toml.LoadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "loading %s", path)
	}

	m := &tomlMapper{Tree: tree}

	if s := readKeyAsString(m, "timeout", cfg.Timeout.String()); m.Error == nil {
		d, err := time.ParseDuration(s)
		if err != nil {
			m.Error = errors.Wrapf(err, "parsing timeout %q", s)
		} else {
			cfg.Timeout = d
		}
	}
	cfg.Trace = readKeyAsBool(m, "trace", cfg.Trace)
	cfg.Nogoods = readKeyAsBool(m, "nogoods", cfg.Nogoods)
	cfg.LatencyMillis = int(readKeyAsInt(m, "latency_ms", int64(cfg.LatencyMillis)))

	if m.Error != nil {
		return defaultRunConfig(), errors.Wrapf(m.Error, "reading %s", path)
	}
	return cfg, nil
}
