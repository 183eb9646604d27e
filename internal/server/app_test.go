package server

import (
	"context"
	"testing"

	"github.com/railohail/timeline-rail/internal/logging"
	"github.com/railohail/timeline-rail/internal/server/config"
	"github.com/railohail/timeline-rail/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDB_InvalidDSN(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = "postgres://user@localhost:notaport/db"

	_, err := openDB(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse dsn")
}

func TestNewApp_PropagatesDBError(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = "postgres://user@localhost:notaport/db"

	app, err := NewApp(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "db init error")
}

func TestNewBlobStore_InlineBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ImageBackend = config.ImageBackendDB

	s, err := newBlobStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestNewServices_AllSet(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	svc := newServices(nil, repomanager.NewPostgresRepositoryManager(), nil, cfg, logging.Nop{})

	assert.NotNil(t, svc.Users)
	assert.NotNil(t, svc.Timelines)
	assert.NotNil(t, svc.Images)
	assert.NotNil(t, svc.Transfer)
}
