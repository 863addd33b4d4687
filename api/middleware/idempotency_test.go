package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryIdempotencyStore struct {
	values map[string]string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{values: make(map[string]string)}
}

func (m *memoryIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

func (m *memoryIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func newIdempotencyRouter(store *memoryIdempotencyStore, calls *int) http.Handler {
	router := chi.NewRouter()
	router.Use(Idempotency(store, nil))
	router.Post("/api/v1/notifications/read-all", func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"updated":3}}`))
	})
	router.Get("/api/v1/notifications", func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
	return router
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	router := newIdempotencyRouter(store, &calls)

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/read-all", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "abc-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := do()
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, 1, calls)

	second := do()
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Equal(t, 1, calls, "replay must not reach the handler")
}

func TestIdempotency_RequiresHeaderOnGuardedRoutes(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	router := newIdempotencyRouter(store, &calls)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/read-all", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, calls)
}

func TestIdempotency_RejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	router := newIdempotencyRouter(store, &calls)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/read-all", strings.NewReader(`{"category":"orders"}`))
	first.Header.Set("Idempotency-Key", "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/read-all", strings.NewReader(`{"category":"system"}`))
	second.Header.Set("Idempotency-Key", "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, second)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, 1, calls)
}

func TestIdempotency_IgnoresUnguardedRoutes(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	router := newIdempotencyRouter(store, &calls)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, calls)
	require.Empty(t, store.values)
}
