package event

import (
	"context"
	"log/slog"
)

// NoopEventPublisher is used when RabbitMQ is disabled. It only logs.
type NoopEventPublisher struct {
	logger *slog.Logger
}

var _ EventPublisher = (*NoopEventPublisher)(nil)

func NewNoopEventPublisher(logger *slog.Logger) *NoopEventPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopEventPublisher{logger: logger.With("component", "NoopEventPublisher")}
}

func (p *NoopEventPublisher) PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping event", "routingKey", RoutingKeyCustomerCreated, "eventId", event.EventID)
	return nil
}

func (p *NoopEventPublisher) PublishCustomerUpdated(ctx context.Context, event CustomerUpdatedEvent) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping event", "routingKey", RoutingKeyCustomerUpdated, "eventId", event.EventID)
	return nil
}

func (p *NoopEventPublisher) PublishCustomerDeleted(ctx context.Context, event CustomerDeletedEvent) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping event", "routingKey", RoutingKeyCustomerDeleted, "eventId", event.EventID)
	return nil
}
