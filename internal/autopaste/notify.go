package autopaste

import (
	"sync"
	"time"
)

// NotificationKind names a lifecycle event observers can react to
type NotificationKind int

const (
	NotifyArmed NotificationKind = iota
	NotifyTriggered
	NotifyDisarmed
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyArmed:
		return "armed"
	case NotifyTriggered:
		return "triggered"
	case NotifyDisarmed:
		return "disarmed"
	default:
		return "unknown"
	}
}

// Disarm reasons carried by NotifyDisarmed
const (
	ReasonCompleted = "completed"
	ReasonTimeout   = "timeout"
	ReasonRearmed   = "rearmed"
	ReasonUser      = "user"
)

// Notification is published on every cycle transition observers care about
type Notification struct {
	Kind NotificationKind
	At   time.Time

	// Armed
	Timeout    time.Duration
	ImageCount int
	TextLen    int

	// Disarmed
	Reason string
}

// Broadcaster fans notifications out to subscribers. Publish never blocks;
// a subscriber that falls behind loses notifications.
type Broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Notification
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Notification)}
}

// Subscribe returns a channel of notifications and a function that
// unsubscribes and closes it
func (b *Broadcaster) Subscribe(buffer int) (<-chan Notification, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Notification, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Len returns the number of live subscriptions
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) Publish(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- n:
		default:
		}
	}
}
