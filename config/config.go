// Package config loads server configuration from an optional YAML file with
// sensible defaults. Command-line flags override file values in cmd/server.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port int `yaml:"port"`
	// DBPath is the SQLite database path. ":memory:" disables durability.
	DBPath string `yaml:"db_path"`
	// CORSOrigins are the allowed browser origins.
	CORSOrigins []string `yaml:"cors_origins"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// EventBuffer is the outbound mutation queue capacity. Mutations beyond
	// a full buffer are dropped (durability is best-effort).
	EventBuffer int `yaml:"event_buffer"`
	// StaticDir serves the built frontend when non-empty.
	StaticDir string `yaml:"static_dir"`
}

// Default returns the out-of-the-box configuration.
func Default() Config {
	return Config{
		Port:        8080,
		DBPath:      "mowing.db",
		CORSOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		LogLevel:    "info",
		EventBuffer: 1024,
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged; a missing file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("config %s: invalid port %d", path, cfg.Port)
	}
	if cfg.EventBuffer < 0 {
		return cfg, fmt.Errorf("config %s: negative event_buffer", path)
	}
	return cfg, nil
}
