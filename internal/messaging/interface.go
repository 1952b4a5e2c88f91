package messaging

import "context"

// PublisherInterface defines the contract for event publishing
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, eventData interface{}) error
	Close() error
}

var (
	_ PublisherInterface = (*Publisher)(nil)
	_ PublisherInterface = NopPublisher{}
)

// NopPublisher drops every event. It stands in when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

func (NopPublisher) Close() error { return nil }
