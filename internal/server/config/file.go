package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/railohail/timeline-rail/internal/flagx"
	"github.com/railohail/timeline-rail/internal/timex"
)

// JsonConfig is the DTO for JSON config files. Durations use timex.Duration
// so they may be written as "168h" or as integer nanoseconds. Zero values
// leave the corresponding Config field untouched.
type JsonConfig struct {
	HTTPAddr         string         `json:"http_addr"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	TokenValidity    timex.Duration `json:"token_validity"`
	Environment      string         `json:"environment"`
	CORSOrigins      []string       `json:"cors_origins"`
	AuthRateLimit    int            `json:"auth_rate_limit"`
	MaxBodyBytes     int64          `json:"max_body_bytes"`
	MaxImageBytes    int64          `json:"max_image_bytes"`
	DBMaxOpenConns   int            `json:"db_max_open_conns"`
	DBMaxIdleTime    timex.Duration `json:"db_max_idle_time"`
	DBConnectTimeout timex.Duration `json:"db_connect_timeout"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
	ImageBackend     string         `json:"image_backend"`
	S3AccessKey      string         `json:"s3_access_key"`
	S3SecretKey      string         `json:"s3_secret_key"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	LogLevel         string         `json:"log_level"`
}

// parseFile overlays Config with the file named by -c/-config.
// Files ending in .yaml or .yml go through koanf, everything else is read as
// JSON. A missing or malformed file panics, matching flag parse failures.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parseYaml(cfg, path)
	default:
		parseJson(cfg, path)
	}
}

func parseJson(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var c JsonConfig
	if err := json.Unmarshal(data, &c); err != nil {
		panic(err)
	}

	setString(&cfg.HTTPAddr, c.HTTPAddr)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	setString(&cfg.SecretKey, c.SecretKey)
	setDuration(&cfg.TokenValidity, c.TokenValidity.Duration)
	setString(&cfg.Environment, c.Environment)
	if len(c.CORSOrigins) > 0 {
		cfg.CORSOrigins = c.CORSOrigins
	}
	setInt(&cfg.AuthRateLimit, c.AuthRateLimit)
	setInt64(&cfg.MaxBodyBytes, c.MaxBodyBytes)
	setInt64(&cfg.MaxImageBytes, c.MaxImageBytes)
	setInt(&cfg.DBMaxOpenConns, c.DBMaxOpenConns)
	setDuration(&cfg.DBMaxIdleTime, c.DBMaxIdleTime.Duration)
	setDuration(&cfg.DBConnectTimeout, c.DBConnectTimeout.Duration)
	setDuration(&cfg.ShutdownTimeout, c.ShutdownTimeout.Duration)
	setString(&cfg.ImageBackend, c.ImageBackend)
	setString(&cfg.S3AccessKey, c.S3AccessKey)
	setString(&cfg.S3SecretKey, c.S3SecretKey)
	setString(&cfg.S3Bucket, c.S3Bucket)
	setString(&cfg.S3Region, c.S3Region)
	setString(&cfg.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&cfg.LogLevel, c.LogLevel)
}

func parseYaml(cfg *Config, path string) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		panic(err)
	}
	applyKoanf(cfg, k)
}

// applyKoanf copies every key present in k onto cfg. Keys use the same names
// as the JSON file.
func applyKoanf(cfg *Config, k *koanf.Koanf) {
	if k.Exists("http_addr") {
		cfg.HTTPAddr = k.String("http_addr")
	}
	if k.Exists("database_dsn") {
		cfg.DatabaseDSN = k.String("database_dsn")
	}
	if k.Exists("secret_key") {
		cfg.SecretKey = k.String("secret_key")
	}
	if k.Exists("token_validity") {
		cfg.TokenValidity = k.Duration("token_validity")
	}
	if k.Exists("environment") {
		cfg.Environment = k.String("environment")
	}
	if k.Exists("cors_origins") {
		cfg.CORSOrigins = k.Strings("cors_origins")
	}
	if k.Exists("auth_rate_limit") {
		cfg.AuthRateLimit = k.Int("auth_rate_limit")
	}
	if k.Exists("max_body_bytes") {
		cfg.MaxBodyBytes = k.Int64("max_body_bytes")
	}
	if k.Exists("max_image_bytes") {
		cfg.MaxImageBytes = k.Int64("max_image_bytes")
	}
	if k.Exists("db_max_open_conns") {
		cfg.DBMaxOpenConns = k.Int("db_max_open_conns")
	}
	if k.Exists("db_max_idle_time") {
		cfg.DBMaxIdleTime = k.Duration("db_max_idle_time")
	}
	if k.Exists("db_connect_timeout") {
		cfg.DBConnectTimeout = k.Duration("db_connect_timeout")
	}
	if k.Exists("shutdown_timeout") {
		cfg.ShutdownTimeout = k.Duration("shutdown_timeout")
	}
	if k.Exists("image_backend") {
		cfg.ImageBackend = k.String("image_backend")
	}
	if k.Exists("s3_access_key") {
		cfg.S3AccessKey = k.String("s3_access_key")
	}
	if k.Exists("s3_secret_key") {
		cfg.S3SecretKey = k.String("s3_secret_key")
	}
	if k.Exists("s3_bucket") {
		cfg.S3Bucket = k.String("s3_bucket")
	}
	if k.Exists("s3_region") {
		cfg.S3Region = k.String("s3_region")
	}
	if k.Exists("s3_base_endpoint") {
		cfg.S3BaseEndpoint = k.String("s3_base_endpoint")
	}
	if k.Exists("log_level") {
		cfg.LogLevel = k.String("log_level")
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setInt64(dst *int64, v int64) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
