package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("json", func(t *testing.T) {
		path := writeFile(t, "cli.json", `{"server_url":"http://json:1","kv_dir":"/tmp/kv","request_timeout":"5s"}`)
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, "http://json:1", cfg.ServerURL)
		assert.Equal(t, "/tmp/kv", cfg.KVDir)
		assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
		assert.Equal(t, BackendRemote, cfg.StorageBackend)
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "cli.yaml", "storage_backend: kv\ndelete_timeout: 1m\n")
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, BackendKV, cfg.StorageBackend)
		assert.Equal(t, time.Minute, cfg.DeleteTimeout)
		assert.Equal(t, "http://localhost:3000", cfg.ServerURL)
	})

	t.Run("no file", func(t *testing.T) {
		os.Args = []string{"testbin"}
		cfg := &Config{ServerURL: "keep"}
		parseFile(cfg)
		assert.Equal(t, "keep", cfg.ServerURL)
	})

	t.Run("invalid json panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", writeFile(t, "bad.json", "{ nope")}
		require.Panics(t, func() { parseFile(&Config{}) })
	})
}

func TestParseEnv(t *testing.T) {
	t.Setenv("TIMELINE_STORAGE_BACKEND", "sqlite")
	t.Setenv("TIMELINE_DATABASE_PATH", "/data/t.db")
	t.Setenv("TIMELINE_REQUEST_TIMEOUT", "30s")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, "/data/t.db", cfg.DatabasePath)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "server_url", envTransformFunc("TIMELINE_SERVER_URL"))
	assert.Equal(t, "kv_dir", envTransformFunc("TIMELINE_KV_DIR"))
}
