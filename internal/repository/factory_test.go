package repository_test

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navikt/roomboard/internal/config"
	"github.com/navikt/roomboard/internal/repository"
	"github.com/navikt/roomboard/internal/repository/memory"
	"github.com/navikt/roomboard/internal/repository/redis"
	"github.com/navikt/roomboard/internal/repository/sqlite"
)

func TestNewRepository(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		repo, err := repository.NewRepository(config.StorageConfig{Backend: config.BackendMemory}, config.RedisConfig{})
		require.NoError(t, err)
		assert.IsType(t, &memory.Repository{}, repo)
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		repo, err := repository.NewRepository(
			config.StorageConfig{Backend: config.BackendRedis},
			config.RedisConfig{Host: mr.Host(), Port: mr.Port(), KeyPrefix: "test:"},
		)
		require.NoError(t, err)
		assert.IsType(t, &redis.Repository{}, repo)
		require.NoError(t, repo.(*redis.Repository).Close())
	})

	t.Run("SQLite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rooms.db")
		repo, err := repository.NewRepository(config.StorageConfig{Backend: config.BackendSQLite, SQLitePath: path}, config.RedisConfig{})
		require.NoError(t, err)
		assert.IsType(t, &sqlite.Repository{}, repo)
		require.NoError(t, repo.(*sqlite.Repository).Close())
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := repository.NewRepository(config.StorageConfig{Backend: "mongo"}, config.RedisConfig{})
		assert.Error(t, err)
	})
}
