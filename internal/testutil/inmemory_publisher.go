package testutil

import (
	"context"
	"sync"

	"github.com/fleetledger/fleetledger/internal/publisher"
	"github.com/fleetledger/fleetledger/internal/types"
	jsoniter "github.com/json-iterator/go"
)

// InMemoryPublisherService records published events instead of sending them
type InMemoryPublisherService struct {
	mu      sync.RWMutex
	events  []*types.Event
	failErr error
}

var _ publisher.EventPublisher = (*InMemoryPublisherService)(nil)

// NewInMemoryEventPublisher creates a new instance of InMemoryPublisherService
func NewInMemoryEventPublisher() *InMemoryPublisherService {
	return &InMemoryPublisherService{
		events: make([]*types.Event, 0),
	}
}

func (p *InMemoryPublisherService) Publish(ctx context.Context, eventName string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failErr != nil {
		return p.failErr
	}

	event, err := publisher.NewEvent(ctx, eventName, payload)
	if err != nil {
		return err
	}
	p.events = append(p.events, event)
	return nil
}

// FailWith makes every following Publish return err; nil restores normal behaviour
func (p *InMemoryPublisherService) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failErr = err
}

// GetEvents returns all published events
func (p *InMemoryPublisherService) GetEvents() []*types.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	events := make([]*types.Event, len(p.events))
	copy(events, p.events)
	return events
}

// EventsNamed returns the published events with the given name, oldest first
func (p *InMemoryPublisherService) EventsNamed(name string) []*types.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []*types.Event
	for _, evt := range p.events {
		if evt.EventName == name {
			out = append(out, evt)
		}
	}
	return out
}

// HasEvent checks if an event with the given name was published
func (p *InMemoryPublisherService) HasEvent(name string) bool {
	return len(p.EventsNamed(name)) > 0
}

// DecodePayload unmarshals the payload of an event into dst
func DecodePayload(evt *types.Event, dst any) error {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(evt.Payload, dst)
}

// Clear removes all published events
func (p *InMemoryPublisherService) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = make([]*types.Event, 0)
	p.failErr = nil
}
