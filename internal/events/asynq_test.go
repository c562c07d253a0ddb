package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func TestDecodeFanoutRoundTrip(t *testing.T) {
	ev := Event{
		ID:          uuid.New(),
		Topic:       TopicBillPaid,
		AggregateID: uuid.New(),
		Payload:     []byte(`{"total":1200}`),
		OccurredAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	raw, err := json.Marshal(FanoutPayload{
		ID:          ev.ID,
		Topic:       ev.Topic,
		AggregateID: ev.AggregateID,
		Payload:     ev.Payload,
		OccurredAt:  ev.OccurredAt,
	})
	require.NoError(t, err)

	decoded, err := DecodeFanout(asynq.NewTask(TaskTypeFanout, raw))
	require.NoError(t, err)
	require.Equal(t, ev.ID, decoded.ID)
	require.Equal(t, ev.Topic, decoded.Topic)
	require.Equal(t, ev.AggregateID, decoded.AggregateID)
	require.JSONEq(t, string(ev.Payload), string(decoded.Payload))
	require.True(t, ev.OccurredAt.Equal(decoded.OccurredAt))
}

func TestDecodeFanoutRejectsGarbage(t *testing.T) {
	_, err := DecodeFanout(asynq.NewTask(TaskTypeFanout, []byte("not json")))
	require.Error(t, err)

	_, err = DecodeFanout(asynq.NewTask(TaskTypeFanout, []byte(`{}`)))
	require.Error(t, err)
}

func TestTaskNotifierRequiresClient(t *testing.T) {
	err := TaskNotifier{}.Notify(context.Background(), Event{ID: uuid.New(), Topic: TopicOrderCreated})
	require.Error(t, err)
}
