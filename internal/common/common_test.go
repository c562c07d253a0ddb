package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRenderErrorUsesAppErrorCode(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderError(rec, fmt.Errorf("wrapped: %w", NotFound("BILL_NOT_FOUND", "bill not found")))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "BILL_NOT_FOUND", body.Error.Code)
}

func TestRenderErrorFallsBackToInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderError(rec, errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWaiterContextRoundTrip(t *testing.T) {
	ctx := WithWaiter(context.Background(), "w-1", "manager")
	id, ok := WaiterID(ctx)
	require.True(t, ok)
	require.Equal(t, "w-1", id)
	role, ok := WaiterRole(ctx)
	require.True(t, ok)
	require.Equal(t, "manager", role)

	_, ok = WaiterID(context.Background())
	require.False(t, ok)
}

func TestIdempotencyMiddlewareRejectsReplay(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	idem := Idem{R: client, TTL: time.Minute}
	var hits int
	h := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/bills/1/payments", nil)
	req.Header.Set("Idempotency-Key", "abc-123")

	first := httptest.NewRecorder()
	h.ServeHTTP(first, req)
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)
	require.Equal(t, http.StatusConflict, second.Code)
	require.Equal(t, 1, hits)
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	require.Equal(t, "203.0.113.9", ClientIP(req))
}
