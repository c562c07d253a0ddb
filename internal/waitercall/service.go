package waitercall

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/garsonhq/backend-garson/internal/events"
	"github.com/garsonhq/backend-garson/internal/obs"
)

type callStore interface {
	InsertWaiterCall(ctx context.Context, tableNo int) (uuid.UUID, error)
	GetWaiterCall(ctx context.Context, id uuid.UUID) (Call, error)
	ListPendingWaiterCalls(ctx context.Context) ([]Call, error)
	TransitionWaiterCall(ctx context.Context, id uuid.UUID, from, to Status, waiterID string) error
}

// Service tracks call-button presses per table. Push delivery stays behind
// the event bus notifier boundary.
type Service struct {
	store callStore
	bus   *events.Bus
	log   zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store  callStore
	Bus    *events.Bus
	Logger zerolog.Logger
}

// NewService constructs the waiter call service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{store: cfg.Store, bus: cfg.Bus, log: cfg.Logger}
}

// Create raises a call for a table.
func (s *Service) Create(ctx context.Context, tableNo int) (Call, error) {
	id, err := s.store.InsertWaiterCall(ctx, tableNo)
	if err != nil {
		return Call{}, err
	}
	s.count("pending")
	s.emit(ctx, events.TopicWaiterCalled, id, map[string]any{"tableNo": tableNo})
	return s.store.GetWaiterCall(ctx, id)
}

// ListPending returns unresolved calls, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]Call, error) {
	return s.store.ListPendingWaiterCalls(ctx)
}

// Acknowledge claims a pending call for the acting waiter.
func (s *Service) Acknowledge(ctx context.Context, id uuid.UUID, waiterID string) (Call, error) {
	if err := s.store.TransitionWaiterCall(ctx, id, StatusPending, StatusAcknowledged, waiterID); err != nil {
		return Call{}, err
	}
	s.count("acknowledged")
	s.emit(ctx, events.TopicWaiterCallAcknowledge, id, map[string]any{"waiterId": waiterID})
	return s.store.GetWaiterCall(ctx, id)
}

// Resolve closes an acknowledged call.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID, waiterID string) (Call, error) {
	if err := s.store.TransitionWaiterCall(ctx, id, StatusAcknowledged, StatusResolved, waiterID); err != nil {
		return Call{}, err
	}
	s.count("resolved")
	return s.store.GetWaiterCall(ctx, id)
}

func (s *Service) count(status string) {
	if obs.WaiterCallsTotal != nil {
		obs.WaiterCallsTotal.WithLabelValues(status).Inc()
	}
}

func (s *Service) emit(ctx context.Context, topic string, id uuid.UUID, payload any) {
	if s.bus == nil {
		return
	}
	if _, err := s.bus.Emit(ctx, topic, id, payload); err != nil {
		s.log.Warn().Err(err).Str("topic", topic).Stringer("call_id", id).Msg("event emit failed")
	}
}
