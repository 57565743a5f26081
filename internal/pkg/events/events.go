package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	ExchangeName = "hotel.events"
	ExchangeKind = "topic"
)

// Routing keys of order lifecycle events.
const (
	OrderConfirmed = "order.confirmed"
	OrderPaid      = "order.paid"
	OrderCanceled  = "order.canceled"
	OrderFinished  = "order.finished"
)

// OrderEvent is the payload of every order.* message.
type OrderEvent struct {
	OrderID    int64     `json:"order_id"`
	ClientID   *int64    `json:"client_id,omitempty"`
	Paid       string    `json:"paid"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// RabbitPublisher publishes JSON messages to a durable topic exchange.
type RabbitPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *logrus.Logger
}

func NewRabbitPublisher(url string, log *logrus.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &RabbitPublisher{conn: conn, channel: ch, log: log}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	if err := p.channel.PublishWithContext(ctx, ExchangeName, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	if p.log != nil {
		p.log.WithField("routing_key", routingKey).Debug("event published")
	}
	return nil
}

func (p *RabbitPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Emit publishes best-effort: failures are logged, never returned.
// A nil publisher is allowed.
func Emit(ctx context.Context, pub Publisher, log *logrus.Logger, routingKey string, payload any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, routingKey, payload); err != nil && log != nil {
		log.WithError(err).WithField("routing_key", routingKey).Warn("event publish failed")
	}
}
