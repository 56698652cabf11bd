package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shopkart/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Routing keys on the topic exchange. Per-user notifications are routed as
// user.<id> so clients can bind to their own queue; the batch summary goes
// to a fixed key.
const (
	ordersUpdatedKey = "orders.updated"
	exchangeType     = "topic"
)

// amqpPublisher publishes notification events to a RabbitMQ topic exchange.
type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   zerolog.Logger
}

// NewAMQPPublisher connects to RabbitMQ and declares the topic exchange.
// Connection attempts are retried a few times to survive container startup
// ordering.
func NewAMQPPublisher(url, exchange string, logger zerolog.Logger) (Publisher, error) {
	var conn *amqp.Connection
	var err error

	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("failed to connect to RabbitMQ")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,     // name
		exchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	logger.Info().Str("exchange", exchange).Msg("connected to RabbitMQ")

	return &amqpPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		logger:   logger.With().Str("component", "amqp_publisher").Logger(),
	}, nil
}

// PublishNotification delivers a notification to the user's routing key.
func (p *amqpPublisher) PublishNotification(ctx context.Context, n *model.Notification) error {
	routingKey := fmt.Sprintf("user.%s", n.UserID)
	return p.publish(ctx, routingKey, n)
}

// PublishOrderUpdates broadcasts the batch status-update summary.
func (p *amqpPublisher) PublishOrderUpdates(ctx context.Context, updates []OrderUpdate) error {
	return p.publish(ctx, ordersUpdatedKey, updates)
}

func (p *amqpPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not marshal payload: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Close releases the channel and connection.
func (p *amqpPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// NopPublisher discards all events. Used when real-time publishing is
// disabled; notification records are still persisted.
type NopPublisher struct{}

func (NopPublisher) PublishNotification(ctx context.Context, n *model.Notification) error {
	return nil
}

func (NopPublisher) PublishOrderUpdates(ctx context.Context, updates []OrderUpdate) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
