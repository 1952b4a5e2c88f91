package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
)

// PublishedEvent is one event captured by MockPublisher.
type PublishedEvent struct {
	RoutingKey string
	EventData  interface{}
	RawJSON    []byte
}

// MockPublisher keeps published events in memory. Set Err to make every
// Publish fail after recording nothing.
type MockPublisher struct {
	mu     sync.RWMutex
	events []PublishedEvent
	Err    error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, eventData interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	raw, err := json.Marshal(eventData)
	if err != nil {
		return err
	}
	m.events = append(m.events, PublishedEvent{
		RoutingKey: routingKey,
		EventData:  eventData,
		RawJSON:    raw,
	})
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// Events returns a copy of everything published so far, in order.
func (m *MockPublisher) Events() []PublishedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]PublishedEvent, len(m.events))
	copy(out, m.events)
	return out
}

// RoutingKeys lists the routing keys in publish order.
func (m *MockPublisher) RoutingKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, len(m.events))
	for i, e := range m.events {
		keys[i] = e.RoutingKey
	}
	return keys
}

// LastByKey decodes the most recent event with routingKey into dst and
// fails the test if there is none.
func (m *MockPublisher) LastByKey(t *testing.T, routingKey string, dst interface{}) {
	t.Helper()

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].RoutingKey == routingKey {
			if err := json.Unmarshal(m.events[i].RawJSON, dst); err != nil {
				t.Fatalf("Failed to decode %s event: %v", routingKey, err)
			}
			return
		}
	}
	t.Fatalf("Expected event with routing key '%s' to be published, but found none", routingKey)
}

// AssertEventCount asserts the exact number of events with the given routing key
func (m *MockPublisher) AssertEventCount(t *testing.T, routingKey string, expected int) {
	t.Helper()

	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, e := range m.events {
		if e.RoutingKey == routingKey {
			count++
		}
	}
	if count != expected {
		t.Errorf("Expected %d events with routing key '%s', got %d", expected, routingKey, count)
	}
}
