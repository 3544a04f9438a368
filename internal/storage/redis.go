// Package storage holds the networked and on-disk Repository backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/mud-engine/internal/services"
	"github.com/jwebster45206/mud-engine/pkg/storage"
)

const keyPrefix = "mud:"

// RedisRepository stores each record as a JSON string at mud:<kind>:<id>.
// Insertion order is kept in the sorted set mud:<kind>:index, scored by the
// counter mud:<kind>:seq.
type RedisRepository struct {
	client *redis.Client
	logger *slog.Logger
}

var _ storage.Repository = (*RedisRepository)(nil)

func NewRedisRepository(redisURL string, logger *slog.Logger) (*RedisRepository, error) {
	client, err := services.NewRedisClient(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisRepository{client: client, logger: logger}, nil
}

func recordKey(kind storage.Kind, id string) string {
	return keyPrefix + string(kind) + ":" + id
}

func indexKey(kind storage.Kind) string {
	return keyPrefix + string(kind) + ":index"
}

func seqKey(kind storage.Kind) string {
	return keyPrefix + string(kind) + ":seq"
}

// Health and lifecycle methods

func (r *RedisRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisRepository) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisRepository) WaitForConnection(ctx context.Context) error {
	return services.WaitForRedis(ctx, r.client, r.logger)
}

// Record operations

func (r *RedisRepository) Get(ctx context.Context, kind storage.Kind, id string) ([]byte, error) {
	data, err := r.client.Get(ctx, recordKey(kind, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error("Failed to load record", "kind", kind, "id", id, "error", err)
		return nil, fmt.Errorf("failed to load %s %q: %w", kind, id, err)
	}
	return data, nil
}

func (r *RedisRepository) List(ctx context.Context, kind storage.Kind) ([]string, error) {
	ids, err := r.client.ZRange(ctx, indexKey(kind), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", kind, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Put writes the record and, for new ids only, appends it to the index.
func (r *RedisRepository) Put(ctx context.Context, kind storage.Kind, id string, record []byte) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}
	if record == nil {
		return errors.New("record cannot be nil")
	}
	seq, err := r.client.Incr(ctx, seqKey(kind)).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate sequence for %s %q: %w", kind, id, err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, recordKey(kind, id), record, 0)
		pipe.ZAddNX(ctx, indexKey(kind), redis.Z{Score: float64(seq), Member: id})
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save record", "kind", kind, "id", id, "error", err)
		return fmt.Errorf("failed to save %s %q: %w", kind, id, err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, kind storage.Kind, id string) (bool, error) {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, recordKey(kind, id))
		pipe.ZRem(ctx, indexKey(kind), id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete %s %q: %w", kind, id, err)
	}
	return del.Val() > 0, nil
}
