package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// HandlerFunc processes one decoded event envelope.
type HandlerFunc func(ctx context.Context, env *Envelope) error

// Consumer bridges the broker's raw byte stream to typed per-event
// handlers. Handler failures are logged and do not stop consumption;
// delivery is at-most-once per subscriber.
type Consumer struct {
	broker   Broker
	handlers map[string]HandlerFunc
}

func NewConsumer(broker Broker) *Consumer {
	return &Consumer{
		broker:   broker,
		handlers: make(map[string]HandlerFunc),
	}
}

// Handle registers fn for an event type. Register all handlers before
// calling Run.
func (c *Consumer) Handle(eventType string, fn HandlerFunc) {
	c.handlers[eventType] = fn
}

// Run subscribes to the channel and dispatches envelopes until the
// context is cancelled or the subscription closes.
func (c *Consumer) Run(ctx context.Context, channel string) error {
	msgs, err := c.broker.Subscribe(ctx, channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-msgs:
			if !ok {
				return nil
			}
			c.dispatch(ctx, raw)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Error().Err(err).Msg("Dropping undecodable event")
		return
	}

	fn, ok := c.handlers[env.Type]
	if !ok {
		log.Debug().Str("event_type", env.Type).Msg("No handler for event type")
		return
	}

	if err := fn(ctx, &env); err != nil {
		log.Error().
			Err(err).
			Str("event_type", env.Type).
			Str("event_id", env.ID.String()).
			Msg("Event handler failed")
	}
}
