package repository

import (
	"fmt"

	"github.com/navikt/roomboard/internal/config"
	"github.com/navikt/roomboard/internal/repository/memory"
	"github.com/navikt/roomboard/internal/repository/redis"
	"github.com/navikt/roomboard/internal/repository/sqlite"
)

// NewRepository creates the repository selected by the storage configuration
func NewRepository(storage config.StorageConfig, redisConfig config.RedisConfig) (Repository, error) {
	switch storage.Backend {
	case config.BackendRedis:
		return redis.NewRepository(redisConfig)
	case config.BackendSQLite:
		return sqlite.NewRepository(storage.SQLitePath)
	case config.BackendMemory, "":
		return memory.NewRepository(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", storage.Backend)
	}
}
