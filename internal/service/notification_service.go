package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/config"
	"github.com/spec-kit/crm-service/internal/events"
)

// NotificationService logs domain events and, when an AMQP endpoint is
// configured, mirrors them onto a durable queue for downstream consumers.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  *events.AMQPPublisher
	logger     *zap.Logger
}

// NewNotificationService creates the service. The publisher stays nil
// when no AMQP_URL is configured.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	n := &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
	if cfg.AMQPURL != "" {
		n.publisher = events.NewAMQPPublisher(cfg.AMQPURL, cfg.QueueName, logger)
	}
	return n
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventProjectCreated,
		events.EventProjectActivated,
		events.EventProjectDelivered,
		events.EventDeveloperAssigned,
		events.EventPhaseAdvanced,
		events.EventIssueReported,
		events.EventUserCreated,
	} {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("type", string(event.Type)),
		zap.String("project_id", event.ProjectID),
		zap.String("actor", event.Actor.Username),
		zap.Any("payload", event.Payload))

	if n.publisher != nil {
		// Best-effort mirror; the primary action already committed.
		_ = n.publisher.Publish(ctx, event)
	}
	return nil
}
