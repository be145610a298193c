package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-api/pkg/config"
)

func newTestContainer(t *testing.T) (*Container, sqlmock.Sqlmock) {
	t.Helper()
	return newTestContainerWith(t, config.ExportsConfig{StorageDir: t.TempDir(), SignedURLSecret: "test"})
}

func newTestContainerWith(t *testing.T, exports config.ExportsConfig) (*Container, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Env:       config.EnvProduction,
		APIPrefix: "/api/v1",
		JWT:       config.JWTConfig{Secret: "test", Issuer: "internship-api"},
		Exports:   exports,
	}
	c := &Container{Config: cfg, Logger: zap.NewNop(), DB: sqlx.NewDb(db, "postgres")}
	require.NoError(t, c.wire())
	return c, mock
}

func TestContainerRouterHealthAndReady(t *testing.T) {
	c, mock := newTestContainer(t)
	router := c.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	mock.ExpectPing()
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContainerRouterQueryEndpoint(t *testing.T) {
	c, _ := newTestContainer(t)
	router := c.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewBufferString(`{"operation":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNKNOWN_OPERATION")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewBufferString(`{"operation":"verifyToken","variables":{"token":"garbage"}}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.NotEqual(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/export/not-a-token", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContainerExportRetentionFromConfig(t *testing.T) {
	dir := t.TempDir()
	c, _ := newTestContainerWith(t, config.ExportsConfig{StorageDir: dir, SignedURLSecret: "test", ResultTTL: time.Hour})

	stale := filepath.Join(dir, "diaries", "i1", "old.csv")
	fresh := filepath.Join(dir, "diaries", "i1", "new.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("day"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("day"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	removed, err := c.Exports.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, []string{"diaries/i1/old.csv"}, removed)
	assert.FileExists(t, fresh)
}
