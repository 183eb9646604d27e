package config

import (
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// envKeys maps the environment variables the server understands onto config
// keys. PORT is special-cased because it carries a bare port number.
var envKeys = map[string]string{
	"database_url":       "database_dsn",
	"jwt_secret":         "secret_key",
	"jwt_validity":       "token_validity",
	"app_env":            "environment",
	"port":               "port",
	"cors_origins":       "cors_origins",
	"auth_rate_limit":    "auth_rate_limit",
	"db_max_open_conns":  "db_max_open_conns",
	"db_max_idle_time":   "db_max_idle_time",
	"db_connect_timeout": "db_connect_timeout",
	"image_backend":      "image_backend",
	"s3_access_key":      "s3_access_key",
	"s3_secret_key":      "s3_secret_key",
	"s3_bucket":          "s3_bucket",
	"s3_region":          "s3_region",
	"s3_endpoint":        "s3_base_endpoint",
	"log_level":          "log_level",
}

func envTransformFunc(key string) string {
	if mapped, ok := envKeys[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// parseEnv overlays Config with recognised environment variables.
func parseEnv(cfg *Config) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		panic(err)
	}

	if k.Exists("port") {
		cfg.HTTPAddr = ":" + strings.TrimPrefix(k.String("port"), ":")
		k.Delete("port")
	}
	if k.Exists("cors_origins") {
		var origins []string
		for _, o := range strings.Split(k.String("cors_origins"), ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
		k.Delete("cors_origins")
	}

	applyKoanf(cfg, k)
}
