package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/mud-engine/internal/logger"
)

func setupTestRedis(t *testing.T) (*RedisService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	svc, err := NewRedisService("redis://"+mr.Addr(), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, mr
}

func TestRedisService_Basic(t *testing.T) {
	svc, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, svc.Ping(ctx))
	require.NoError(t, svc.Set(ctx, "test:key", "value", time.Minute))

	got, err := svc.Get(ctx, "test:key")
	require.NoError(t, err)
	assert.Equal(t, "value", got)
	assert.Equal(t, time.Minute, mr.TTL("test:key"))

	mr.Del("test:key")

	got, err = svc.Get(ctx, "test:key")
	require.NoError(t, err, "missing keys are not errors")
	assert.Empty(t, got)
}

func TestRedisService_Expiry(t *testing.T) {
	svc, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "short", "lived", time.Second))
	mr.FastForward(2 * time.Second)

	got, err := svc.Get(ctx, "short")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisService_BareAddress(t *testing.T) {
	mr := miniredis.RunT(t)
	svc, err := NewRedisService(mr.Addr(), logger.Discard())
	require.NoError(t, err)
	defer svc.Close()

	assert.NoError(t, svc.WaitForConnection(context.Background()))
}

func TestRedisService_WaitForConnectionCancelled(t *testing.T) {
	svc, err := NewRedisService("localhost:1", logger.Discard())
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.Error(t, svc.WaitForConnection(ctx))
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient("redis://localhost:6379/notadb")
	assert.Error(t, err)
}
