package inject

import (
	"sync"
	"time"
)

// DefaultLedgerWindow bounds how long an injected event may take to reach the hook
const DefaultLedgerWindow = 500 * time.Millisecond

// Ledger records synthetic key events that are about to be posted so a hook
// that cannot read event tags can still flag them as injected.
type Ledger struct {
	mu      sync.Mutex
	window  time.Duration
	pending []expected
}

type expected struct {
	key     string
	expires time.Time
}

func NewLedger(window time.Duration) *Ledger {
	if window <= 0 {
		window = DefaultLedgerWindow
	}
	return &Ledger{window: window}
}

// Expect registers n upcoming events for key
func (l *Ledger) Expect(key string, n int, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)
	for i := 0; i < n; i++ {
		l.pending = append(l.pending, expected{key: key, expires: now.Add(l.window)})
	}
}

// Claim consumes one pending entry for key and reports whether there was one
func (l *Ledger) Claim(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)
	for i, e := range l.pending {
		if e.key == key {
			l.pending = append(l.pending[:i], l.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Reset drops every pending entry
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = nil
}

// Pending returns the number of unexpired entries
func (l *Ledger) Pending(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)
	return len(l.pending)
}

func (l *Ledger) prune(now time.Time) {
	live := l.pending[:0]
	for _, e := range l.pending {
		if now.Before(e.expires) {
			live = append(live, e)
		}
	}
	l.pending = live
}
