package bus

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"drafthub/internal/domain/models"
)

// DefaultQueueCapacity bounds each subscriber queue.
const DefaultQueueCapacity = 64

// Subscriber is one live consumer of the event stream. Events arrive as
// JSON-encoded envelope strings in publish order.
type Subscriber struct {
	id string
	ch chan string
}

// ID returns the subscriber's opaque identifier.
func (s *Subscriber) ID() string { return s.id }

// Events returns the subscriber's receive channel. It is closed on
// unsubscribe.
func (s *Subscriber) Events() <-chan string { return s.ch }

// Bus is the in-memory pub/sub fan-out. Publishers never block on slow
// subscribers: a full queue sheds its oldest item to admit the new one.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	capacity    int
	dropped     atomic.Uint64
	logger      *slog.Logger
}

// New creates a bus whose subscriber queues hold DefaultQueueCapacity events.
func New(logger *slog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string]*Subscriber),
		capacity:    DefaultQueueCapacity,
		logger:      logger,
	}
}

// Subscribe registers a new consumer and returns its bounded queue.
func (b *Bus) Subscribe() *Subscriber {
	sub := &Subscriber{
		id: uuid.New().String(),
		ch: make(chan string, b.capacity),
	}

	b.mu.Lock()
	b.subscribers[sub.id] = sub
	b.mu.Unlock()

	return sub
}

// Unsubscribe removes the subscriber and closes its queue. Subsequent
// publishes skip it. Safe to call for an already-removed subscriber.
func (b *Bus) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[sub.id]; ok {
		delete(b.subscribers, sub.id)
		close(sub.ch)
	}
}

// Publish serializes the envelope once and enqueues it on every live
// subscriber. When a queue is full the oldest pending item is discarded to
// make room (newest wins) and the dropped counter advances. Publish never
// blocks and never fails the caller.
func (b *Bus) Publish(envelope models.Envelope) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		b.logger.Error("envelope marshal failed", "event_type", envelope.Event.Type, "error", err)
		return
	}
	encoded := string(payload)

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		select {
		case sub.ch <- encoded:
			continue
		default:
		}

		// Queue full: shed the oldest item, then enqueue the new one.
		select {
		case <-sub.ch:
			b.dropped.Add(1)
		default:
		}
		select {
		case sub.ch <- encoded:
		default:
			// Lost the race to another publisher; count the miss.
			b.dropped.Add(1)
		}
	}
}

// Dropped returns how many events have been shed from full queues.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// SubscriberCount returns the number of live subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Reset unsubscribes everyone and zeroes the dropped counter. Test harness
// hook.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subscribers {
		delete(b.subscribers, id)
		close(sub.ch)
	}
	b.dropped.Store(0)
}
