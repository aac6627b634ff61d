// Package feed provides the live-subscription fan-out for directory changes.
package feed

import (
	"sync"
	"time"
)

const (
	EventInsert = "insert"
	EventDelete = "delete"
	EventGrant  = "grant"
	EventRevoke = "revoke"
)

// Event describes a directory mutation. Subscribers do not read record data
// from the event; they re-fetch their visible snapshot when one arrives.
type Event struct {
	Type       string `json:"type"`
	DocumentID string `json:"document_id"`
	Timestamp  int64  `json:"timestamp"`
}

// Broadcaster manages subscribers and publishes events. Publishing is
// non-blocking: events are dropped for slow consumers, which is safe because
// every delivery triggers a full snapshot re-fetch.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewBroadcaster creates a new event broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe adds a new subscriber and returns its event channel.
// The caller must call Unsubscribe when done.
func (b *Broadcaster) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subscribers, ch)
	close(ch)
	b.mu.Unlock()
}

// Publish sends an event to all subscribers.
func (b *Broadcaster) Publish(event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// Drop event for slow consumer
		}
	}
}

// Count returns the current number of subscribers.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
