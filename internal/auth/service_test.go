package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/garsonhq/backend-garson/internal/common"
)

type stubWaiters struct {
	byName map[string]Waiter
}

func (s stubWaiters) GetWaiterByName(_ context.Context, name string) (Waiter, error) {
	w, ok := s.byName[name]
	if !ok {
		return Waiter{}, ErrWaiterNotFound
	}
	return w, nil
}

func (s stubWaiters) GetWaiter(_ context.Context, id uuid.UUID) (Waiter, error) {
	for _, w := range s.byName {
		if w.ID == id {
			return w, nil
		}
	}
	return Waiter{}, ErrWaiterNotFound
}

func newTestService(t *testing.T, waiters stubWaiters) *Service {
	t.Helper()
	svc, err := NewService(Config{
		Waiters:   waiters,
		Secret:    "test-secret-0123456789",
		AccessTTL: time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func seedWaiter(t *testing.T, name, pin string, role Role) (stubWaiters, Waiter) {
	t.Helper()
	hash, err := HashPIN(pin)
	require.NoError(t, err)
	w := Waiter{ID: uuid.New(), Name: name, Role: role, PINHash: hash, Active: true}
	return stubWaiters{byName: map[string]Waiter{name: w}}, w
}

func TestLoginAndParseRoundTrip(t *testing.T) {
	waiters, seeded := seedWaiter(t, "anna", "4821", RoleManager)
	svc := newTestService(t, waiters)

	result, err := svc.Login(context.Background(), "anna", "4821")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	id, role, err := svc.ParseAccessToken(result.Token)
	require.NoError(t, err)
	require.Equal(t, seeded.ID.String(), id)
	require.Equal(t, string(RoleManager), role)
}

func TestLoginRejectsWrongPIN(t *testing.T) {
	waiters, _ := seedWaiter(t, "anna", "4821", RoleWaiter)
	svc := newTestService(t, waiters)

	_, err := svc.Login(context.Background(), "anna", "0000")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody", "4821")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	waiters, seeded := seedWaiter(t, "anna", "4821", RoleWaiter)
	seeded.Active = false
	waiters.byName["anna"] = seeded
	svc := newTestService(t, waiters)

	_, err := svc.Login(context.Background(), "anna", "4821")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	waiters, _ := seedWaiter(t, "anna", "4821", RoleWaiter)
	svc := newTestService(t, waiters)

	past := time.Now().Add(-48 * time.Hour)
	svc.WithNow(func() time.Time { return past })
	result, err := svc.Login(context.Background(), "anna", "4821")
	require.NoError(t, err)

	svc.WithNow(time.Now)
	_, _, err = svc.ParseAccessToken(result.Token)
	require.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	waiters, _ := seedWaiter(t, "anna", "4821", RoleWaiter)
	svc := newTestService(t, waiters)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, _, err := svc.ParseAccessToken(token)
		require.Error(t, err, "token %q", token)
	}
}

func TestRequireRoleBlocksWaiter(t *testing.T) {
	waiters, _ := seedWaiter(t, "anna", "4821", RoleWaiter)
	svc := newTestService(t, waiters)
	mw := Middleware{Service: svc}

	result, err := svc.Login(context.Background(), "anna", "4821")
	require.NoError(t, err)

	var reached bool
	h := mw.RequireRole(RoleManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+result.Token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.False(t, reached)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAuthAttachesIdentity(t *testing.T) {
	waiters, seeded := seedWaiter(t, "anna", "4821", RoleWaiter)
	svc := newTestService(t, waiters)
	mw := Middleware{Service: svc}

	result, err := svc.Login(context.Background(), "anna", "4821")
	require.NoError(t, err)

	var gotID string
	h := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = common.WaiterID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+result.Token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, seeded.ID.String(), gotID)
}
