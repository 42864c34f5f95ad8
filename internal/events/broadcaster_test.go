package events

import "testing"

func TestSubscribePublish(t *testing.T) {
	b := NewBroadcaster()
	a := b.Subscribe()
	c := b.Subscribe()
	defer b.Unsubscribe(c)

	if b.Count() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", b.Count())
	}

	b.Publish(Event{Kind: ListingChanged, Path: "notes"})

	for _, ch := range []chan Event{a, c} {
		select {
		case ev := <-ch:
			if ev.Kind != ListingChanged || ev.Path != "notes" {
				t.Errorf("unexpected event: %+v", ev)
			}
			if ev.Timestamp == 0 {
				t.Error("timestamp must be filled in")
			}
		default:
			t.Error("subscriber missed the event")
		}
	}

	b.Unsubscribe(a)
	if b.Count() != 1 {
		t.Errorf("expected 1 subscriber, got %d", b.Count())
	}
	if _, open := <-a; open {
		t.Error("unsubscribed channel must be closed")
	}
}

func TestPublishNeverBlocksOnSlowConsumer(t *testing.T) {
	b := NewBroadcaster()
	slow := b.Subscribe()
	defer b.Unsubscribe(slow)

	// Fill past the buffer; extra events are dropped, not queued.
	for i := 0; i < 200; i++ {
		b.Publish(Event{Kind: StatusBanner, Message: "tick"})
	}

	if n := len(slow); n != cap(slow) {
		t.Errorf("expected a full buffer of %d, got %d", cap(slow), n)
	}
}
