package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/pkg/messaging"
)

func newTestBroker(t *testing.T) messaging.Broker {
	t.Helper()

	mr := miniredis.RunT(t)
	logger := zerolog.Nop()
	broker, err := NewBroker(Config{Addr: mr.Addr()}, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { broker.Close() })
	return broker
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	broker := newTestBroker(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := broker.Subscribe(ctx, messaging.DefaultChannel)
	require.NoError(t, err)

	sent := messaging.Envelope{
		ID:        uuid.New(),
		Type:      "appointment.booked",
		Payload:   json.RawMessage(`{"client_name":"Μαρία Παππά","appointment_date":"2024-06-10"}`),
		EmittedAt: time.Now().UTC(),
	}
	require.NoError(t, broker.Publish(ctx, messaging.DefaultChannel, sent))

	select {
	case raw := <-msgs:
		var got messaging.Envelope
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, sent.Type, got.Type)
		assert.JSONEq(t, string(sent.Payload), string(got.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestSubscribeChannelClosesOnCancel(t *testing.T) {
	broker := newTestBroker(t)
	ctx, cancel := context.WithCancel(context.Background())

	msgs, err := broker.Subscribe(ctx, messaging.DefaultChannel)
	require.NoError(t, err)

	cancel()
	select {
	case _, open := <-msgs:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close after cancel")
	}
}

func TestNewBrokerFailsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	logger := zerolog.Nop()
	_, err := NewBroker(Config{Addr: addr}, &logger)
	assert.Error(t, err)
}
