package services

import (
	"context"
	"time"
)

// Cache stores enhanced descriptions between requests. The health check
// pings it when configured.
type Cache interface {
	Ping(ctx context.Context) error

	// Set stores value under key. A zero expiration keeps it forever.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error

	// Get retrieves a value by key. A missing key yields "", nil.
	Get(ctx context.Context, key string) (string, error)

	Close() error
	WaitForConnection(ctx context.Context) error
}
