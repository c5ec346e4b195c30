package autopaste

import "testing"

func TestBroadcasterDeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	a, cancelA := b.Subscribe(4)
	defer cancelA()
	c, cancelC := b.Subscribe(4)
	defer cancelC()

	b.Publish(Notification{Kind: NotifyArmed, ImageCount: 2})

	for _, ch := range []<-chan Notification{a, c} {
		n := <-ch
		if n.Kind != NotifyArmed || n.ImageCount != 2 {
			t.Fatalf("unexpected notification %+v", n)
		}
	}
}

func TestBroadcasterDropsWhenSubscriberIsFull(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe(1)
	defer cancel()

	b.Publish(Notification{Kind: NotifyArmed})
	b.Publish(Notification{Kind: NotifyTriggered})

	if n := <-ch; n.Kind != NotifyArmed {
		t.Fatalf("expected first notification to be kept, got %s", n.Kind)
	}
	select {
	case n := <-ch:
		t.Fatalf("expected overflow to be dropped, got %s", n.Kind)
	default:
	}
}

func TestBroadcasterCancelClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe(1)

	if b.Len() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", b.Len())
	}

	cancel()
	cancel()

	if b.Len() != 0 {
		t.Fatalf("expected no subscribers, got %d", b.Len())
	}

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}

	// Publishing after unsubscribe must not panic
	b.Publish(Notification{Kind: NotifyDisarmed})
}
