// Package mainloop serialises work onto a single goroutine. Every state
// change of the paste engine happens on the loop, so callers never lock.
package mainloop

import (
	"context"
	"sync"
	"time"
)

// Loop runs posted functions one at a time in FIFO order
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn. It never blocks, so it is safe from OS callbacks.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// AfterFunc posts fn to the loop once d has elapsed. The returned function
// stops the timer and reports whether it did so before firing.
func (l *Loop) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, func() { l.Post(fn) })
	return t.Stop
}

// Run drains the queue until ctx is cancelled
func (l *Loop) Run(ctx context.Context) error {
	for {
		for _, fn := range l.take() {
			fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	q := l.queue
	l.queue = nil
	return q
}
