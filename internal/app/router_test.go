package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avolkov/linkshort/internal/auth"
	"github.com/avolkov/linkshort/internal/config"
	"github.com/avolkov/linkshort/internal/handlers"
	"github.com/avolkov/linkshort/internal/logger"
	"github.com/avolkov/linkshort/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	config.SetDefaults()
	config.Current.FileStoragePath = ""
	require.NoError(t, logger.Initialize())
	handlers.StoreHandler = &storage.MemoryStore{}
	require.NoError(t, handlers.StoreHandler.Initialize())
	return router(auth.NewBlacklist(""))
}

func TestRouterMetricsSkipsAuth(t *testing.T) {
	r := setupRouter(t)

	request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, request)
	resp := rec.Result()
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	// A scrape must not mint a principal.
	assert.Empty(t, resp.Cookies())
}

func TestRouterMintsTokenOnAPIRoutes(t *testing.T) {
	r := setupRouter(t)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, request)
	resp := rec.Result()
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Cookies())
}
