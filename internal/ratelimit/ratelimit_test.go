package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T) SlidingWindow {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return SlidingWindow{Client: client, Prefix: "rl:"}
}

func TestAllowWithinLimit(t *testing.T) {
	l := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, _, err := l.Allow(ctx, "table-1", time.Minute, 3)
		require.NoError(t, err)
		require.True(t, allowed, "request %d", i)
	}

	allowed, remaining, _, err := l.Allow(ctx, "table-1", time.Minute, 3)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)
}

func TestAllowIsolatesKeys(t *testing.T) {
	l := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, _, err := l.Allow(ctx, "a", time.Minute, 3)
		require.NoError(t, err)
	}
	allowed, _, _, err := l.Allow(ctx, "b", time.Minute, 3)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestMiddlewareReturns429(t *testing.T) {
	l := newLimiter(t)
	h := Handler{
		Limiter: l,
		Config: Config{
			Key:    func(*http.Request) string { return "fixed" },
			Window: time.Minute,
			Max:    1,
		},
	}
	handler := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/payments", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/payments", nil))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestMiddlewareFailsOpenWithoutRedis(t *testing.T) {
	h := Handler{
		Limiter: SlidingWindow{},
		Config: Config{
			Key:    func(*http.Request) string { return "any" },
			Window: time.Minute,
			Max:    1,
		},
	}
	handler := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
