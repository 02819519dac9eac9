package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/critter/internal/config"
	"github.com/l1jgo/critter/internal/persist"
)

func TestNewLogger(t *testing.T) {
	log, err := newLogger(config.LoggingConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = newLogger(config.LoggingConfig{Level: "nonsense", Format: "console"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel), "falls back to info")
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()

	cfg.Snapshot.Backend = config.BackendNone
	store, closeFn, err := openStore(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, store)
	closeFn()

	cfg.Snapshot.Backend = config.BackendFile
	cfg.Snapshot.Path = filepath.Join(t.TempDir(), "snap.msgpack")
	store, closeFn, err = openStore(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &persist.FileStore{}, store)
}
