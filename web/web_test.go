package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beyondbeauty/press/database"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	uploads := t.TempDir()
	t.Setenv("PRESS_JWT_SECRET", "test-secret")
	t.Setenv("PRESS_UPLOAD_FOLDER", uploads)
	t.Setenv("PRESS_CORS_ORIGINS", "https://press.example")
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "cover.png"), []byte("png"), 0o644))

	require.NoError(t, database.InitDB(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() { _ = database.CloseDB() })

	h, err := NewServer().Handler()
	require.NoError(t, err)
	return h
}

func TestServerRoutes(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version"`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/articles", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/cover.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/articles", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServerCORS(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/articles", nil)
	req.Header.Set("Origin", "https://press.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "https://press.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerRequiresSecret(t *testing.T) {
	t.Setenv("PRESS_JWT_SECRET", "")
	t.Setenv("JWT_SECRET", "")
	_, err := NewServer().Handler()
	assert.ErrorIs(t, err, ErrMissingSecret)
}
