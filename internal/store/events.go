package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/garsonhq/backend-garson/internal/events"
)

// InsertEvent persists one domain event. Implements events.Store.
func (s *Store) InsertEvent(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) (events.Event, error) {
	if err := s.ready(); err != nil {
		return events.Event{}, err
	}
	ev := events.Event{Topic: topic, AggregateID: aggregateID, Payload: payload}
	err := s.pool.QueryRow(ctx, `INSERT INTO events (topic, aggregate_id, payload)
VALUES ($1, $2, $3) RETURNING id, occurred_at`, topic, aggregateID, payload).Scan(&ev.ID, &ev.OccurredAt)
	if err != nil {
		return events.Event{}, err
	}
	return ev, nil
}

// ListEvents returns the event log for one aggregate, oldest first.
func (s *Store) ListEvents(ctx context.Context, aggregateID uuid.UUID, limit int) ([]events.Event, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT id, topic, aggregate_id, payload, occurred_at
FROM events WHERE aggregate_id = $1 ORDER BY occurred_at LIMIT $2`, aggregateID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var ev events.Event
		if err := rows.Scan(&ev.ID, &ev.Topic, &ev.AggregateID, &ev.Payload, &ev.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
