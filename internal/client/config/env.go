package config

import (
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "TIMELINE_"

// envTransformFunc turns TIMELINE_SERVER_URL into server_url.
func envTransformFunc(key string) string {
	return strings.ToLower(strings.TrimPrefix(key, envPrefix))
}

// parseEnv overlays Config with TIMELINE_* environment variables.
func parseEnv(cfg *Config) {
	k := koanf.New(".")
	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		panic(err)
	}
	applyKoanf(cfg, k)
}
