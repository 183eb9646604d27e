package config

import (
	"flag"
	"os"

	"github.com/railohail/timeline-rail/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     server base URL
//	-b string     storage backend ("remote", "sqlite", "kv")
//	-d string     SQLite database path
//	-k string     BadgerDB directory
//	-t duration   HTTP request timeout
//	-l string     log level
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-d", "-k", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.StorageBackend, "b", cfg.StorageBackend, "storage backend (remote, sqlite, kv)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local SQLite database")
	fs.StringVar(&cfg.KVDir, "k", cfg.KVDir, "directory of the key-value store")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "HTTP request timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
