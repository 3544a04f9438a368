package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/jwebster45206/mud-engine/pkg/world"
)

const enhanceKeyPrefix = "mud:enhance:"

// CachedEnhancer memoizes another Enhancer's output in a Cache. Cache
// failures are logged and skipped; they never fail the enhancement.
type CachedEnhancer struct {
	next   world.Enhancer
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

var _ world.Enhancer = (*CachedEnhancer)(nil)

func NewCachedEnhancer(next world.Enhancer, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedEnhancer {
	return &CachedEnhancer{next: next, cache: cache, ttl: ttl, logger: logger}
}

func enhanceKey(text string, ec world.EnhanceContext) string {
	sum := sha256.Sum256([]byte(enhancePrompt(text, ec)))
	return enhanceKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *CachedEnhancer) Enhance(ctx context.Context, text string, ec world.EnhanceContext) (string, error) {
	key := enhanceKey(text, ec)
	if hit, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("enhance cache read failed", "error", err)
	} else if hit != "" {
		return hit, nil
	}

	out, err := c.next.Enhance(ctx, text, ec)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, out, c.ttl); err != nil {
		c.logger.Warn("enhance cache write failed", "error", err)
	}
	return out, nil
}
