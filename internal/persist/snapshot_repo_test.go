//go:build integration

package persist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"github.com/l1jgo/critter/internal/config"
)

// setupTestDB starts a PostgreSQL container, applies migrations and returns
// a connected DB. The container is terminated on cleanup.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("critter"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "starting postgres container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminating postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, config.DatabaseConfig{
		DSN:             dsn,
		MaxOpenConns:    4,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestSnapshotRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepo(setupTestDB(t), 2)

	_, err := repo.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, repo.Save(ctx, sampleSnapshot()))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got.Turn)
	require.Len(t, got.Creatures, 3)
	assert.Equal(t, "mon_zombie", got.Creatures[0].Type)
	assert.Equal(t, "mon_blob", got.Creatures[2].Type)
	assert.True(t, got.Creatures[2].Died)
	assert.Equal(t, -1, got.Creatures[1].Friendly)

	t.Run("prunes old snapshots", func(t *testing.T) {
		for turn := uint64(43); turn <= 45; turn++ {
			require.NoError(t, repo.Save(ctx, &Snapshot{Turn: turn, SavedAt: time.Now()}))
		}
		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		got, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(45), got.Turn)
		assert.Empty(t, got.Creatures)
	})
}
