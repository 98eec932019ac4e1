package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/fleetledger/fleetledger/internal/config"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/pubsub/memory"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPublisher_Publish(t *testing.T) {
	cfg := config.GetDefaultConfig()
	ps := memory.NewPubSub()
	defer ps.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := ps.Subscribe(ctx, cfg.Event.Topic)
	require.NoError(t, err)

	pub := NewEventPublisher(cfg, ps, logger.NewNoopLogger())
	ctx = types.SetRequestID(types.SetUserID(ctx, "user_1"), "req_1")
	require.NoError(t, pub.Publish(ctx, types.EventInvoiceCreated, map[string]any{"invoice_id": "inv_1"}))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, types.EventInvoiceCreated, msg.Metadata.Get("event_name"))
		assert.Equal(t, "req_1", msg.Metadata.Get("request_id"))

		var event types.Event
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, msg.UUID, event.ID)
		assert.Equal(t, "user_1", event.UserID)
		assert.JSONEq(t, `{"invoice_id":"inv_1"}`, string(event.Payload))
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}
