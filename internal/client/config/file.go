package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/railohail/timeline-rail/internal/flagx"
	"github.com/railohail/timeline-rail/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Timeouts use
// timex.Duration so they can be written as "15s" or integer nanoseconds.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	StorageBackend string         `json:"storage_backend"`
	DatabasePath   string         `json:"database_path"`
	KVDir          string         `json:"kv_dir"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	DeleteTimeout  timex.Duration `json:"delete_timeout"`
	LogLevel       string         `json:"log_level"`
}

// parseFile overlays Config with the file named by -c/-config, if any.
// Read or decode errors panic.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			panic(err)
		}
		applyKoanf(cfg, k)
	default:
		parseJson(cfg, path)
	}
}

func parseJson(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.StorageBackend != "" {
		cfg.StorageBackend = jc.StorageBackend
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.KVDir != "" {
		cfg.KVDir = jc.KVDir
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DeleteTimeout.Duration != 0 {
		cfg.DeleteTimeout = jc.DeleteTimeout.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}

// applyKoanf copies the keys present in k onto cfg, using the JSON key names.
func applyKoanf(cfg *Config, k *koanf.Koanf) {
	if k.Exists("server_url") {
		cfg.ServerURL = k.String("server_url")
	}
	if k.Exists("storage_backend") {
		cfg.StorageBackend = k.String("storage_backend")
	}
	if k.Exists("database_path") {
		cfg.DatabasePath = k.String("database_path")
	}
	if k.Exists("kv_dir") {
		cfg.KVDir = k.String("kv_dir")
	}
	if k.Exists("request_timeout") {
		cfg.RequestTimeout = k.Duration("request_timeout")
	}
	if k.Exists("delete_timeout") {
		cfg.DeleteTimeout = k.Duration("delete_timeout")
	}
	if k.Exists("log_level") {
		cfg.LogLevel = k.String("log_level")
	}
}
