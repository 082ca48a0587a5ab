package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishInvokesSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var seen []string
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		seen = append(seen, "first:"+event.TicketID)
		return errors.New("handler failure must not stop delivery")
	})
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		seen = append(seen, "second:"+event.TicketID)
		return nil
	})
	dispatcher.Subscribe(EventTicketStatusChanged, func(_ context.Context, _ Event) error {
		t.Fatal("handler for another event type must not fire")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{
		Type:     EventTicketCreated,
		TicketID: "ticket-1",
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(seen) != 2 || seen[0] != "first:ticket-1" || seen[1] != "second:ticket-1" {
		t.Fatalf("unexpected delivery order: %v", seen)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCommentAdded}); err != nil {
		t.Fatalf("publish without subscribers failed: %v", err)
	}
}
