// Package app assembles the engine and its backing services from a Config.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/mud-engine/internal/config"
	"github.com/jwebster45206/mud-engine/internal/services"
	istorage "github.com/jwebster45206/mud-engine/internal/storage"
	"github.com/jwebster45206/mud-engine/pkg/combat"
	"github.com/jwebster45206/mud-engine/pkg/content"
	"github.com/jwebster45206/mud-engine/pkg/engine"
	"github.com/jwebster45206/mud-engine/pkg/storage"
	"github.com/jwebster45206/mud-engine/pkg/world"
)

// App is a wired engine plus the resources that must be closed with it.
type App struct {
	Engine     *engine.Engine
	Repository storage.Repository
	// Cache is nil unless enhancement results are cached in Redis.
	Cache services.Cache

	logger *slog.Logger
}

// New opens storage, seeds the catalogs from cfg.DataDir and builds the
// engine. Seeding is idempotent, so a persistent backend keeps its
// characters across restarts.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	repo, err := istorage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	a := &App{Repository: repo, logger: logger}

	if _, err := content.Seed(ctx, repo, cfg.DataDir, logger); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to seed catalogs: %w", err)
	}
	catalog, err := content.LoadCatalog(ctx, repo)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load catalogs: %w", err)
	}
	counts := catalog.Counts()
	logger.Info("Catalogs loaded",
		"items", counts[storage.KindItem],
		"npcs", counts[storage.KindNPC],
		"mobs", counts[storage.KindMob])

	enhancer, err := a.enhancer(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	worlds, err := world.NewManager(&world.Config{
		Source:         world.NewFileSource(cfg.DataDir),
		Catalog:        catalog,
		Enhancer:       enhancer,
		EnhanceTimeout: cfg.EnhanceTimeout,
		Logger:         logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	if _, err := worlds.LoadWorld(cfg.StartWorld); err != nil {
		a.Close()
		return nil, err
	}
	if !worlds.HasRoom(cfg.StartWorld, cfg.StartRoom) {
		a.Close()
		return nil, fmt.Errorf("start room %q not found in world %q", cfg.StartRoom, cfg.StartWorld)
	}

	resolver, err := combat.NewResolver(&combat.Config{
		Catalog:    catalog,
		Rooms:      worlds,
		StartWorld: cfg.StartWorld,
		StartRoom:  cfg.StartRoom,
		Logger:     logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Engine, err = engine.New(&engine.Config{
		Repository: repo,
		Catalog:    catalog,
		Worlds:     worlds,
		Combat:     resolver,
		StartWorld: cfg.StartWorld,
		StartRoom:  cfg.StartRoom,
		Logger:     logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// enhancer picks the room description enhancer. Anthropic results are
// cached in Redis when the storage backend is Redis.
func (a *App) enhancer(ctx context.Context, cfg *config.Config) (world.Enhancer, error) {
	if cfg.Enhancer != config.EnhancerAnthropic {
		return world.NopEnhancer{}, nil
	}
	var enh world.Enhancer = services.NewAnthropicEnhancer(cfg.AnthropicAPIKey, cfg.ModelName, a.logger)
	a.logger.Info("Using Anthropic description enhancer", "model_name", cfg.ModelName)

	if cfg.StorageBackend != config.BackendRedis {
		return enh, nil
	}
	cache, err := services.NewRedisService(cfg.RedisURL, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create enhancement cache: %w", err)
	}
	if err := cache.WaitForConnection(ctx); err != nil {
		_ = cache.Close()
		return nil, err
	}
	a.Cache = cache
	return services.NewCachedEnhancer(enh, cache, cfg.EnhanceCacheTTL, a.logger), nil
}

// Close releases the cache and the repository.
func (a *App) Close() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.logger.Error("Error closing cache connection", "error", err)
		}
	}
	if err := a.Repository.Close(); err != nil {
		a.logger.Error("Error closing storage connection", "error", err)
	}
}
