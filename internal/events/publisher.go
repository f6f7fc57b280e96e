package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Publisher delivers envelopes keyed by their event type
type Publisher interface {
	Publish(ctx context.Context, msg Envelope) error
	Close() error
}

// AMQPPublisher publishes persistent JSON messages to a topic exchange
type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string
}

// NewAMQPPublisher dials url and declares a durable topic exchange
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{conn: conn, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, msg Envelope) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	pub := publishing(msg, body)
	if err := ch.PublishWithContext(ctx, p.exchange, msg.Meta.Type, false, false, pub); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Meta.Type, err)
	}

	log.Debug().
		Str("exchange", p.exchange).
		Str("key", msg.Meta.Type).
		Str("event_id", pub.MessageId).
		Msg("event published")
	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}

func publishing(msg Envelope, body []byte) amqp.Publishing {
	id := msg.Meta.ID
	if id == "" {
		id = uuid.NewString()
	}
	cid := id
	if msg.Meta.CorrelationID != nil {
		cid = *msg.Meta.CorrelationID
	}
	ts := msg.Meta.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     id,
		CorrelationId: cid,
		Timestamp:     ts,
		Body:          body,
	}
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, msg Envelope) error {
	log.Debug().Str("key", msg.Meta.Type).Msg("no broker configured, event skipped")
	return nil
}

func (NopPublisher) Close() error { return nil }
