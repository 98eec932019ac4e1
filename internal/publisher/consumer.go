package publisher

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/pubsub"
	"github.com/fleetledger/fleetledger/internal/types"
)

// EventHandler processes one decoded event. Returning an error nacks the message.
type EventHandler func(ctx context.Context, event *types.Event) error

// Consume reads events from topic until ctx is cancelled or the subscription closes.
// Messages that cannot be decoded are acked and dropped.
func Consume(ctx context.Context, sub pubsub.Subscriber, topic string, handler EventHandler, log *logger.Logger) error {
	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	for msg := range messages {
		var event types.Event
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			log.Errorw("dropping undecodable event",
				"message_id", msg.UUID,
				"error", err,
			)
			msg.Ack()
			continue
		}

		if err := handler(msg.Context(), &event); err != nil {
			log.Errorw("failed to process event",
				"event_id", event.ID,
				"event_name", event.EventName,
				"error", err,
			)
			msg.Nack()
			continue
		}
		msg.Ack()
	}
	return nil
}

// LogEvents is an EventHandler that writes every event to the log
func LogEvents(log *logger.Logger) EventHandler {
	return func(_ context.Context, event *types.Event) error {
		log.Infow("event",
			"event_id", event.ID,
			"event_name", event.EventName,
			"user_id", event.UserID,
			"timestamp", event.Timestamp,
		)
		return nil
	}
}
