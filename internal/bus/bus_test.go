package bus

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"drafthub/internal/domain/models"
)

func newTestBus() *Bus {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func envelopeFor(draftID string) models.Envelope {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return models.NewEnvelope(models.EventDraftUpdated, at, models.TicketView{ID: draftID})
}

func TestPublishDeliversInOrder(t *testing.T) {
	b := newTestBus()
	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	for i := 0; i < 5; i++ {
		b.Publish(envelopeFor(fmt.Sprintf("d%d", i+1)))
	}

	for i := 0; i < 5; i++ {
		raw := <-sub.Events()
		var env models.Envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			t.Fatalf("unmarshal event %d: %v", i, err)
		}
		want := fmt.Sprintf("d%d", i+1)
		if env.Ticket == nil || env.Ticket.ID != want {
			t.Fatalf("event %d ticket = %+v, want id %s", i, env.Ticket, want)
		}
	}
}

func TestPublishFanOut(t *testing.T) {
	b := newTestBus()
	a := b.Subscribe()
	c := b.Subscribe()
	defer b.Unsubscribe(a)
	defer b.Unsubscribe(c)

	if got := b.SubscriberCount(); got != 2 {
		t.Fatalf("SubscriberCount() = %d, want 2", got)
	}

	b.Publish(envelopeFor("d1"))

	for _, sub := range []*Subscriber{a, c} {
		select {
		case <-sub.Events():
		default:
			t.Fatalf("subscriber %s did not receive the event", sub.ID())
		}
	}
}

func TestFullQueueDropsOldest(t *testing.T) {
	b := newTestBus()
	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	// Overfill by three: the three oldest events must be shed.
	total := DefaultQueueCapacity + 3
	for i := 0; i < total; i++ {
		b.Publish(envelopeFor(fmt.Sprintf("d%d", i+1)))
	}

	if got := b.Dropped(); got != 3 {
		t.Fatalf("Dropped() = %d, want 3", got)
	}

	raw := <-sub.Events()
	var env models.Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Ticket.ID != "d4" {
		t.Errorf("first surviving event = %s, want d4", env.Ticket.ID)
	}

	// Drain the rest; the newest event must have survived.
	var last models.Envelope
	for i := 0; i < DefaultQueueCapacity-1; i++ {
		raw := <-sub.Events()
		if err := json.Unmarshal([]byte(raw), &last); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
	}
	if want := fmt.Sprintf("d%d", total); last.Ticket.ID != want {
		t.Errorf("last surviving event = %s, want %s", last.Ticket.ID, want)
	}
}

func TestUnsubscribeClosesQueue(t *testing.T) {
	b := newTestBus()
	sub := b.Subscribe()

	b.Unsubscribe(sub)

	if _, open := <-sub.Events(); open {
		t.Error("queue still open after Unsubscribe")
	}
	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", got)
	}

	// Publishing after unsubscribe must not panic or deliver.
	b.Publish(envelopeFor("d1"))

	// Double-unsubscribe is a no-op.
	b.Unsubscribe(sub)
}

func TestResetClearsSubscribersAndCounter(t *testing.T) {
	b := newTestBus()
	sub := b.Subscribe()

	for i := 0; i < DefaultQueueCapacity+1; i++ {
		b.Publish(envelopeFor("d1"))
	}
	if b.Dropped() == 0 {
		t.Fatal("expected shed events before reset")
	}

	b.Reset()

	if got := b.Dropped(); got != 0 {
		t.Errorf("Dropped() = %d after reset, want 0", got)
	}
	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() = %d after reset, want 0", got)
	}
	if _, open := <-sub.Events(); open {
		t.Error("queue still open after Reset")
	}
}
