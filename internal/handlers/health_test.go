package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/mud-engine/internal/logger"
	"github.com/jwebster45206/mud-engine/internal/services"
	"github.com/jwebster45206/mud-engine/pkg/storage"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		repoErr        error
		cache          func() services.Cache
		expectedStatus int
		expectedHealth string
		expectedComps  map[string]string
	}{
		{
			name:           "storage only",
			cache:          func() services.Cache { return nil },
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedComps:  map[string]string{"storage": "healthy"},
		},
		{
			name:           "all healthy",
			cache:          func() services.Cache { return services.NewMockCache() },
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedComps:  map[string]string{"storage": "healthy", "cache": "healthy"},
		},
		{
			name: "unhealthy cache",
			cache: func() services.Cache {
				c := services.NewMockCache()
				c.SetPingError(errors.New("connection failed"))
				return c
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedComps:  map[string]string{"storage": "healthy", "cache": "unhealthy"},
		},
		{
			name:           "unhealthy storage",
			repoErr:        errors.New("disk gone"),
			cache:          func() services.Cache { return nil },
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedComps:  map[string]string{"storage": "unhealthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := storage.NewMemoryRepository()
			repo.SetPingError(tt.repoErr)

			h := NewHealthHandler(repo, tt.cache(), logger.Discard())

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp HealthResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.expectedHealth, resp.Status)
			assert.Equal(t, "mud-engine", resp.Service)
			assert.Equal(t, tt.expectedComps, resp.Components)
		})
	}
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	h := NewHealthHandler(storage.NewMemoryRepository(), nil, logger.Discard())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
