package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"klink-backend/internal/models"
)

// RoutingKeyMessageCreated is the event published when a client stores a new
// chat message.
const RoutingKeyMessageCreated = "message.created"

// MessageHandler reacts to message-creation events. Implementations must
// absorb their own failures: the consumer acknowledges every delivery
// exactly once, before handling, so a handler error can never cause a
// redelivery storm on this non-critical enhancement path.
type MessageHandler interface {
	HandleMessageCreated(ctx context.Context, event models.MessageCreatedEvent)
}

// Consumer feeds message-created events to the translation pipeline.
type Consumer struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	queue   string
	handler MessageHandler
}

// NewConsumer connects, declares the topic exchange and a durable queue
// bound to message.created, and returns a Consumer ready to Run.
func NewConsumer(amqpURL, exchange, queue string, handler MessageHandler) (*Consumer, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queue, RoutingKeyMessageCreated, exchange, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &Consumer{conn: conn, ch: ch, queue: queue, handler: handler}, nil
}

// Run consumes deliveries until the context is cancelled or the channel
// closes. Each event is handled in its own goroutine; events are mutually
// independent and no ordering is guaranteed across messages.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	log.Printf("events: consuming queue=%s", c.queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			// Ack first: translation is an enhancement, never a blocking
			// correctness path for message delivery.
			_ = delivery.Ack(false)

			var event models.MessageCreatedEvent
			if err := json.Unmarshal(delivery.Body, &event); err != nil {
				log.Printf("events: malformed message.created event: %v", err)
				continue
			}

			go c.handler.HandleMessageCreated(ctx, event)
		}
	}
}

// Close tears down the channel and connection.
func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
