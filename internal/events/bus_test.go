package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type memStore struct {
	events []Event
	err    error
}

func (m *memStore) InsertEvent(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Event, error) {
	if m.err != nil {
		return Event{}, m.err
	}
	ev := Event{ID: uuid.New(), Topic: topic, AggregateID: aggregateID, Payload: payload, OccurredAt: time.Now()}
	m.events = append(m.events, ev)
	return ev, nil
}

type recordingNotifier struct {
	seen []Event
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, ev Event) error {
	n.seen = append(n.seen, ev)
	return n.err
}

func TestEmitPersistsAndNotifies(t *testing.T) {
	store := &memStore{}
	notifier := &recordingNotifier{}
	bus := &Bus{Store: store, Notifiers: []Notifier{notifier}}

	ev, err := bus.Emit(context.Background(), TopicBillPaid, uuid.New(), map[string]any{"total": 2750})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(store.events) != 1 || len(notifier.seen) != 1 {
		t.Fatalf("expected 1 persisted + 1 notified, got %d/%d", len(store.events), len(notifier.seen))
	}
	if ev.Topic != TopicBillPaid {
		t.Fatalf("topic = %s", ev.Topic)
	}
}

func TestEmitRequiresTopicAndAggregate(t *testing.T) {
	bus := &Bus{Store: &memStore{}}
	if _, err := bus.Emit(context.Background(), " ", uuid.New(), nil); err == nil {
		t.Fatal("expected error for blank topic")
	}
	if _, err := bus.Emit(context.Background(), TopicBillPaid, uuid.Nil, nil); err == nil {
		t.Fatal("expected error for nil aggregate")
	}
}

func TestEmitNotifierFailureDoesNotDropEvent(t *testing.T) {
	store := &memStore{}
	notifier := &recordingNotifier{err: errors.New("push gateway down")}
	bus := &Bus{Store: store, Notifiers: []Notifier{notifier}}

	_, err := bus.Emit(context.Background(), TopicWaiterCalled, uuid.New(), nil)
	if err == nil {
		t.Fatal("expected joined notifier error")
	}
	if len(store.events) != 1 {
		t.Fatalf("event must persist despite notifier failure, got %d", len(store.events))
	}
}

func TestEmitRejectsInvalidJSONPayload(t *testing.T) {
	bus := &Bus{Store: &memStore{}}
	if _, err := bus.Emit(context.Background(), TopicBillPaid, uuid.New(), []byte("{not json")); err == nil {
		t.Fatal("expected payload validation error")
	}
}
