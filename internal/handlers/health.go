package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/mud-engine/internal/services"
	"github.com/jwebster45206/mud-engine/pkg/storage"
)

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

type HealthHandler struct {
	repo   storage.Repository
	cache  services.Cache
	logger *slog.Logger
}

// NewHealthHandler checks the repository and, when cache is not nil, the
// enhancement cache.
func NewHealthHandler(repo storage.Repository, cache services.Cache, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string)
	overallStatus := "healthy"

	check := func(name string, ping func(context.Context) error) {
		if err := ping(ctx); err != nil {
			h.logger.Warn("Health check failed", "component", name, "error", err)
			components[name] = "unhealthy"
			overallStatus = "degraded"
			return
		}
		components[name] = "healthy"
	}
	check("storage", h.repo.Ping)
	if h.cache != nil {
		check("cache", h.cache.Ping)
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "mud-engine",
		Components: components,
	})
}
