package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/mud-engine/internal/config"
	"github.com/jwebster45206/mud-engine/pkg/storage"
)

// Open builds the repository selected by cfg.StorageBackend. For Redis it
// waits for the server before returning.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Repository, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemoryRepository(), nil
	case config.BackendRedis:
		repo, err := NewRedisRepository(cfg.RedisURL, logger)
		if err != nil {
			return nil, err
		}
		if err := repo.WaitForConnection(ctx); err != nil {
			_ = repo.Close()
			return nil, err
		}
		return repo, nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
