package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskTypeFanout is the asynq task type carrying one persisted domain event
// to the background worker.
const TaskTypeFanout = "events:fanout"

// FanoutPayload is the wire form of an event handed to the worker.
type FanoutPayload struct {
	ID          uuid.UUID       `json:"id"`
	Topic       string          `json:"topic"`
	AggregateID uuid.UUID       `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// TaskNotifier enqueues every emitted event as an asynq task so delivery to
// slow consumers happens off the request path. The event id doubles as the
// task id, so re-emits within the retention window collapse into one task.
type TaskNotifier struct {
	Client   *asynq.Client
	Queue    string
	MaxRetry int
}

// Notify implements Notifier.
func (n TaskNotifier) Notify(ctx context.Context, event Event) error {
	if n.Client == nil {
		return errors.New("events: asynq client not configured")
	}
	raw, err := json.Marshal(FanoutPayload{
		ID:          event.ID,
		Topic:       event.Topic,
		AggregateID: event.AggregateID,
		Payload:     event.Payload,
		OccurredAt:  event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("events: encode fanout task: %w", err)
	}
	queue := n.Queue
	if queue == "" {
		queue = "default"
	}
	maxRetry := n.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 5
	}
	opts := []asynq.Option{
		asynq.Queue(queue),
		asynq.MaxRetry(maxRetry),
		asynq.TaskID(event.ID.String()),
	}
	_, err = n.Client.EnqueueContext(ctx, asynq.NewTask(TaskTypeFanout, raw), opts...)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("events: enqueue fanout task: %w", err)
	}
	return nil
}

// DecodeFanout parses a fanout task payload on the worker side.
func DecodeFanout(task *asynq.Task) (FanoutPayload, error) {
	var payload FanoutPayload
	if task == nil {
		return payload, errors.New("events: nil task")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("events: decode fanout task: %w", err)
	}
	if payload.Topic == "" {
		return payload, errors.New("events: fanout task missing topic")
	}
	return payload, nil
}
