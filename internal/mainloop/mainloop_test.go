package mainloop

import (
	"context"
	"errors"
	"testing"
	"time"
)

func runLoop(t *testing.T) (*Loop, context.CancelFunc, <-chan error) {
	t.Helper()
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	return l, cancel, done
}

func TestPostRunsInOrder(t *testing.T) {
	l, cancel, done := runLoop(t)
	defer cancel()

	got := make(chan int, 3)
	for i := 0; i < 3; i++ {
		l.Post(func() { got <- i })
	}

	for want := 0; want < 3; want++ {
		select {
		case v := <-got:
			if v != want {
				t.Fatalf("expected %d, got %d", want, v)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for posted function")
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPostBeforeRunIsKept(t *testing.T) {
	l := New()
	ran := make(chan struct{})
	l.Post(func() { close(ran) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("function posted before Run was dropped")
	}
}

func TestAfterFuncFiresOnLoop(t *testing.T) {
	l, cancel, _ := runLoop(t)
	defer cancel()

	fired := make(chan struct{})
	l.AfterFunc(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestAfterFuncStop(t *testing.T) {
	l, cancel, _ := runLoop(t)
	defer cancel()

	fired := make(chan struct{}, 1)
	stop := l.AfterFunc(50*time.Millisecond, func() { fired <- struct{}{} })

	if !stop() {
		t.Fatal("expected stop to cancel a pending timer")
	}

	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}
