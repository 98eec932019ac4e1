package publisher

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/fleetledger/fleetledger/internal/config"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/pubsub"
	"github.com/fleetledger/fleetledger/internal/types"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EventPublisher emits notifications about committed writes
type EventPublisher interface {
	Publish(ctx context.Context, eventName string, payload any) error
}

type eventPublisher struct {
	pubsub pubsub.Publisher
	topic  string
	logger *logger.Logger
}

// NewEventPublisher creates a publisher that writes every event to the configured topic
func NewEventPublisher(cfg *config.Configuration, ps pubsub.PubSub, logger *logger.Logger) EventPublisher {
	return &eventPublisher{
		pubsub: ps,
		topic:  cfg.Event.Topic,
		logger: logger,
	}
}

// NewEvent wraps a payload in the event envelope
func NewEvent(ctx context.Context, eventName string, payload any) (*types.Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Failed to encode %s event", eventName).
			Mark(ierr.ErrSystem)
	}
	return &types.Event{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT),
		EventName: eventName,
		UserID:    types.GetUserID(ctx),
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}

func (p *eventPublisher) Publish(ctx context.Context, eventName string, payload any) error {
	event, err := NewEvent(ctx, eventName, payload)
	if err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to encode %s event", eventName).
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(event.ID, body)
	msg.Metadata.Set("event_name", eventName)
	if requestID := types.GetRequestID(ctx); requestID != "" {
		msg.Metadata.Set("request_id", requestID)
	}

	p.logger.Debugw("publishing event",
		"event_id", event.ID,
		"event_name", eventName,
		"topic", p.topic,
	)

	if err := p.pubsub.Publish(ctx, p.topic, msg); err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to publish %s event", eventName).
			Mark(ierr.ErrSystem)
	}
	return nil
}
