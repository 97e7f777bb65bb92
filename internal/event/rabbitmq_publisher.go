package event

import (
	"context"
	"customer-management/internal/infrastructure/monitoring"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RoutingKeyCustomerCreated = "customer.created"
	RoutingKeyCustomerUpdated = "customer.updated"
	RoutingKeyCustomerDeleted = "customer.deleted"
	publisherAppID            = "customer-management"
)

type EventPublisher interface {
	PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error
	PublishCustomerUpdated(ctx context.Context, event CustomerUpdatedEvent) error
	PublishCustomerDeleted(ctx context.Context, event CustomerDeletedEvent) error
}

type RabbitMQEventPublisher struct {
	conn         *amqp.Connection
	exchangeName string
	logger       *slog.Logger
}

var _ EventPublisher = (*RabbitMQEventPublisher)(nil)

func Dial(url string, logger *slog.Logger) (*amqp.Connection, error) {
	if url == "" {
		return nil, fmt.Errorf("RabbitMQ URL cannot be empty")
	}
	logger.Info("Connecting to RabbitMQ...")
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	logger.Info("Connected to RabbitMQ.")
	return conn, nil
}

func NewRabbitMQEventPublisher(conn *amqp.Connection, exchangeName string, logger *slog.Logger) (*RabbitMQEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection cannot be nil")
	}
	if exchangeName == "" {
		return nil, fmt.Errorf("RabbitMQ exchange name cannot be empty")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	tempCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open temporary channel for exchange declaration: %w", err)
	}
	defer tempCh.Close()

	err = tempCh.ExchangeDeclare(
		exchangeName,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}
	logger.Info("Ensured RabbitMQ exchange exists", "exchange", exchangeName, "type", amqp.ExchangeTopic)

	return &RabbitMQEventPublisher{
		conn:         conn,
		exchangeName: exchangeName,
		logger:       logger.With("component", "RabbitMQEventPublisher", "exchange", exchangeName),
	}, nil
}

func (p *RabbitMQEventPublisher) PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error {
	return p.publish(ctx, RoutingKeyCustomerCreated, event)
}

func (p *RabbitMQEventPublisher) PublishCustomerUpdated(ctx context.Context, event CustomerUpdatedEvent) error {
	return p.publish(ctx, RoutingKeyCustomerUpdated, event)
}

func (p *RabbitMQEventPublisher) PublishCustomerDeleted(ctx context.Context, event CustomerDeletedEvent) error {
	return p.publish(ctx, RoutingKeyCustomerDeleted, event)
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	logCtx := p.logger.With(slog.String("routingKey", routingKey))

	channel, err := p.conn.Channel()
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to open RabbitMQ channel", slog.Any("error", err))
		monitoring.RecordCustomerEvent(routingKey, "error")
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer channel.Close()

	body, err := json.Marshal(payload)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to marshal event payload to JSON", slog.Any("error", err))
		monitoring.RecordCustomerEvent(routingKey, "error")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	logCtx.DebugContext(ctx, "Publishing message", "bodySize", len(body))

	err = channel.PublishWithContext(
		ctx,
		p.exchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
			AppId:        publisherAppID,
		},
	)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish message to RabbitMQ", slog.Any("error", err))
		monitoring.RecordCustomerEvent(routingKey, "error")
		return fmt.Errorf("failed to publish message: %w", err)
	}

	monitoring.RecordCustomerEvent(routingKey, "success")
	logCtx.InfoContext(ctx, "Successfully published message")
	return nil
}
