package waitercall

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryCalls struct {
	calls map[uuid.UUID]*Call
}

func newMemoryCalls() *memoryCalls {
	return &memoryCalls{calls: map[uuid.UUID]*Call{}}
}

func (m *memoryCalls) InsertWaiterCall(_ context.Context, tableNo int) (uuid.UUID, error) {
	id := uuid.New()
	m.calls[id] = &Call{ID: id, TableNo: tableNo, Status: StatusPending, CreatedAt: time.Now()}
	return id, nil
}

func (m *memoryCalls) GetWaiterCall(_ context.Context, id uuid.UUID) (Call, error) {
	c, ok := m.calls[id]
	if !ok {
		return Call{}, ErrNotFound
	}
	return *c, nil
}

func (m *memoryCalls) ListPendingWaiterCalls(_ context.Context) ([]Call, error) {
	var out []Call
	for _, c := range m.calls {
		if c.Status != StatusResolved {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memoryCalls) TransitionWaiterCall(_ context.Context, id uuid.UUID, from, to Status, waiterID string) error {
	c, ok := m.calls[id]
	if !ok || c.Status != from {
		return ErrNotFound
	}
	c.Status = to
	c.WaiterID = waiterID
	if to == StatusResolved {
		now := time.Now()
		c.ResolvedAt = &now
	}
	return nil
}

func TestCallLifecycle(t *testing.T) {
	svc := NewService(ServiceConfig{Store: newMemoryCalls()})

	call, err := svc.Create(context.Background(), 12)
	require.NoError(t, err)
	require.Equal(t, StatusPending, call.Status)

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)

	acked, err := svc.Acknowledge(context.Background(), call.ID, "w-1")
	require.NoError(t, err)
	require.Equal(t, StatusAcknowledged, acked.Status)
	require.Equal(t, "w-1", acked.WaiterID)

	resolved, err := svc.Resolve(context.Background(), call.ID, "w-1")
	require.NoError(t, err)
	require.Equal(t, StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
}

func TestAcknowledgeRacesLoseCleanly(t *testing.T) {
	store := newMemoryCalls()
	svc := NewService(ServiceConfig{Store: store})

	call, err := svc.Create(context.Background(), 4)
	require.NoError(t, err)

	_, err = svc.Acknowledge(context.Background(), call.ID, "w-1")
	require.NoError(t, err)

	_, err = svc.Acknowledge(context.Background(), call.ID, "w-2")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveRequiresAcknowledge(t *testing.T) {
	svc := NewService(ServiceConfig{Store: newMemoryCalls()})

	call, err := svc.Create(context.Background(), 2)
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), call.ID, "w-1")
	require.ErrorIs(t, err, ErrNotFound)
}
