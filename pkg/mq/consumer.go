package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type Consumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

type CommentEventHandler interface {
	HandleCommentEvent(ctx context.Context, event *CommentEvent) error
}

func NewConsumer(rabbitmqURL string) (*Consumer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// at most 10 unacknowledged deliveries in flight
	err = ch.Qos(
		10,    // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := SetupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to setup topology: %w", err)
	}

	return &Consumer{
		conn:    conn,
		channel: ch,
	}, nil
}

// ConsumeCommentEvents blocks delivering events to handler until ctx is done
// or the channel closes. Malformed messages are dropped, handler failures are
// requeued.
func (c *Consumer) ConsumeCommentEvents(ctx context.Context, handler CommentEventHandler) error {
	msgs, err := c.channel.Consume(
		CommentEventQueue,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Comment event consumer context cancelled")
			return nil
		case d, ok := <-msgs:
			if !ok {
				logrus.Info("Comment event consumer channel closed")
				return nil
			}
			Dispatch(ctx, d, handler)
		}
	}
}

// Acknowledger is the subset of amqp091.Delivery that Dispatch settles.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type delivery struct {
	amqp091.Delivery
}

func (d delivery) Ack(multiple bool) error           { return d.Delivery.Ack(multiple) }
func (d delivery) Nack(multiple, requeue bool) error { return d.Delivery.Nack(multiple, requeue) }

// Dispatch decodes one delivery and settles it according to the handler
// result.
func Dispatch(ctx context.Context, d amqp091.Delivery, handler CommentEventHandler) {
	settle(ctx, delivery{d}, d.Body, handler)
}

func settle(ctx context.Context, ack Acknowledger, body []byte, handler CommentEventHandler) {
	var event CommentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logrus.Errorf("Failed to unmarshal comment event: %v", err)
		ack.Nack(false, false)
		return
	}

	if err := handler.HandleCommentEvent(ctx, &event); err != nil {
		logrus.Errorf("Failed to handle comment event %s: %v", event.EventID, err)
		ack.Nack(false, true)
		return
	}

	ack.Ack(false)
	logrus.Debugf("Processed comment event %s type=%s", event.EventID, event.Type)
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
