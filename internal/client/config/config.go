// Package config loads runtime configuration for the timeline-rail CLI.
//
// Sources, in increasing precedence: built-in defaults, an optional JSON or
// YAML file named by -c/-config, TIMELINE_* environment variables and
// finally short command-line flags.
package config

import "time"

// Storage backends understood by the CLI.
const (
	BackendRemote = "remote"
	BackendSQLite = "sqlite"
	BackendKV     = "kv"
)

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerURL: base URL of the REST API; "/api" is appended by the client.
//   - StorageBackend: "remote", "sqlite" or "kv".
//   - DatabasePath: SQLite file for the session metadata and the sqlite backend.
//   - KVDir: BadgerDB directory for the kv backend.
//   - RequestTimeout: per-request HTTP timeout.
//   - DeleteTimeout: upper bound for a timeline deletion.
//   - LogLevel: zerolog level name written to stderr.
type Config struct {
	ServerURL      string
	StorageBackend string
	DatabasePath   string
	KVDir          string
	RequestTimeout time.Duration
	DeleteTimeout  time.Duration
	LogLevel       string
}

// LoadDefaults populates c with defaults for a server on localhost.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:3000"
	c.StorageBackend = BackendRemote
	c.DatabasePath = "timeline.db"
	c.KVDir = "timeline-kv"
	c.RequestTimeout = 15 * time.Second
	c.DeleteTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config from defaults, then the config file, the
// environment and flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
