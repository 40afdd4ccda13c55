package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"clubhub-backend/internal/logger"
)

// Routing keys published on the registrations exchange.
const (
	RegistrationCreated  = "registration.created"
	RegistrationReviewed = "registration.reviewed"
	RegistrationPaid     = "registration.paid"
	RegistrationExpired  = "registration.expired"
	RegistrationRenewed  = "registration.renewed"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, v any) error
	Close() error
}

// RegistrationEvent is the message body for every registration.* key.
type RegistrationEvent struct {
	RegistrationID int32     `json:"registrationId"`
	UserID         int32     `json:"userId"`
	ClubID         int32     `json:"clubId"`
	PackageID      int32     `json:"packageId"`
	Status         string    `json:"status"`
	IsPaid         bool      `json:"isPaid"`
	OccurredAt     time.Time `json:"occurredAt"`
}

type amqpPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher dials the broker and declares a durable topic exchange.
func NewAMQPPublisher(url, exchange string) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	logger.ExternalServiceCall("rabbitmq", "publish", "exchange", p.exchange, "routingKey", routingKey)

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	p.mu.Unlock()

	logger.ExternalServiceResult("rabbitmq", "publish", err, "routingKey", routingKey)
	return err
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, routingKey string, v any) error {
	logger.Debug("Event dropped, no broker configured", "routingKey", routingKey)
	return nil
}

func (NopPublisher) Close() error { return nil }

// New returns an AMQP publisher, or a NopPublisher when url is empty.
func New(url, exchange string) (Publisher, error) {
	if url == "" {
		return NopPublisher{}, nil
	}
	return NewAMQPPublisher(url, exchange)
}
