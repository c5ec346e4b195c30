package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/petems/armpaste/internal/autopaste"
	"github.com/petems/armpaste/internal/storage"
	"github.com/rs/zerolog"
)

// Mock implementations for testing
type mockEngine struct {
	notify *autopaste.Broadcaster

	mu       sync.Mutex
	prepared int
	arms     int
	disarms  []string

	// disarmEcho publishes a disarmed notification on Disarm
	disarmEcho bool
}

func newMockEngine() *mockEngine {
	return &mockEngine{notify: autopaste.NewBroadcaster()}
}

func (m *mockEngine) Prepare(text string, images []image.Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prepared = len(images)
}

func (m *mockEngine) Arm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.arms++
}

func (m *mockEngine) Disarm(reason string) {
	m.mu.Lock()
	m.disarms = append(m.disarms, reason)
	echo := m.disarmEcho
	m.mu.Unlock()

	if echo {
		m.notify.Publish(autopaste.Notification{Kind: autopaste.NotifyDisarmed, Reason: reason})
	}
}

func (m *mockEngine) Subscribe(buffer int) (<-chan autopaste.Notification, func()) {
	return m.notify.Subscribe(buffer)
}

type mockStatus struct {
	mu      sync.Mutex
	history []string
}

func (m *mockStatus) record(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, s)
}

func (m *mockStatus) SetIdle() { m.record("idle") }

func (m *mockStatus) SetArmed() { m.record("armed") }

func (m *mockStatus) SetPasting() { m.record("pasting") }

func (m *mockStatus) SetError() { m.record("error") }

func (m *mockStatus) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}

type mockRecorder struct {
	mu        sync.Mutex
	nextID    int64
	started   int
	triggered []int64
	finished  map[int64]string
	startErr  error
}

func (m *mockRecorder) StartCycle(armedAt time.Time, imageCount, textLength int, timeout time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return 0, m.startErr
	}
	m.nextID++
	m.started++
	return m.nextID, nil
}

func (m *mockRecorder) MarkTriggered(id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggered = append(m.triggered, id)
	return nil
}

func (m *mockRecorder) FinishCycle(id int64, at time.Time, outcome string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finished == nil {
		m.finished = make(map[int64]string)
	}
	m.finished[id] = outcome
	return nil
}

type mockPublisher struct {
	mu   sync.Mutex
	sent []autopaste.NotificationKind
}

func (m *mockPublisher) Publish(n autopaste.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n.Kind)
}

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// waitFor polls cond for up to a second
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within 1s")
}

func startApp(t *testing.T, cfg Config) *App {
	t.Helper()
	a := New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go a.Run(ctx)

	// Run subscribes asynchronously
	engine := cfg.Engine.(*mockEngine)
	waitFor(t, func() bool { return engine.notify.Len() > 0 })
	return a
}

func TestNotificationsDriveStatusHistoryAndControl(t *testing.T) {
	engine := newMockEngine()
	status := &mockStatus{}
	recorder := &mockRecorder{}
	publisher := &mockPublisher{}

	a := startApp(t, Config{
		Engine:        engine,
		History:       recorder,
		Control:       publisher,
		Logger:        zerolog.Nop(),
		StatusUpdater: status,
	})

	engine.notify.Publish(autopaste.Notification{Kind: autopaste.NotifyArmed, ImageCount: 2, TextLen: 4})
	engine.notify.Publish(autopaste.Notification{Kind: autopaste.NotifyTriggered})
	waitFor(t, func() bool { return publisher.count() == 2 })

	if got := a.State(); got != "pasting" {
		t.Fatalf("expected pasting, got %s", got)
	}

	engine.notify.Publish(autopaste.Notification{Kind: autopaste.NotifyDisarmed, Reason: autopaste.ReasonCompleted})
	waitFor(t, func() bool { return publisher.count() == 3 })

	want := []string{"armed", "pasting", "idle"}
	got := status.snapshot()
	if len(got) != len(want) {
		t.Fatalf("expected status %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected status %v, got %v", want, got)
		}
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if recorder.started != 1 || len(recorder.triggered) != 1 || recorder.triggered[0] != 1 {
		t.Fatalf("unexpected recorder state %+v", recorder)
	}
	if recorder.finished[1] != storage.OutcomeCompleted {
		t.Fatalf("expected completed outcome, got %q", recorder.finished[1])
	}
	if a.State() != "idle" {
		t.Fatalf("expected idle, got %s", a.State())
	}
}

func TestHistoryFailureDoesNotStopNotifications(t *testing.T) {
	engine := newMockEngine()
	recorder := &mockRecorder{startErr: errors.New("disk full")}
	publisher := &mockPublisher{}

	startApp(t, Config{
		Engine:  engine,
		History: recorder,
		Control: publisher,
		Logger:  zerolog.Nop(),
	})

	engine.notify.Publish(autopaste.Notification{Kind: autopaste.NotifyArmed})
	engine.notify.Publish(autopaste.Notification{Kind: autopaste.NotifyDisarmed, Reason: autopaste.ReasonTimeout})
	waitFor(t, func() bool { return publisher.count() == 2 })

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.finished) != 0 {
		t.Fatalf("finished a cycle that was never recorded: %v", recorder.finished)
	}
}

func TestOutcomeFor(t *testing.T) {
	tests := []struct {
		reason string
		want   string
	}{
		{reason: autopaste.ReasonCompleted, want: storage.OutcomeCompleted},
		{reason: autopaste.ReasonTimeout, want: storage.OutcomeTimeout},
		{reason: autopaste.ReasonRearmed, want: storage.OutcomeRearmed},
		{reason: autopaste.ReasonUser, want: storage.OutcomeDisarmed},
		{reason: "shutdown", want: storage.OutcomeDisarmed},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			if got := outcomeFor(tt.reason); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestShutdownWaitsForDisarm(t *testing.T) {
	engine := newMockEngine()
	engine.disarmEcho = true
	a := New(Config{Engine: engine, Logger: zerolog.Nop()})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := a.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if len(engine.disarms) != 1 || engine.disarms[0] != "shutdown" {
		t.Fatalf("expected one shutdown disarm, got %v", engine.disarms)
	}
}

func TestShutdownTimesOut(t *testing.T) {
	engine := newMockEngine()
	a := New(Config{Engine: engine, Logger: zerolog.Nop()})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := a.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestPrepareFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.png")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	img.Set(1, 1, color.Black)
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	engine := newMockEngine()
	status := &mockStatus{}
	a := New(Config{Engine: engine, Logger: zerolog.Nop(), StatusUpdater: status})

	if err := a.PrepareFiles("caption", []string{path, path}); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if engine.prepared != 2 {
		t.Fatalf("expected 2 images prepared, got %d", engine.prepared)
	}

	if err := a.PrepareFiles("caption", []string{filepath.Join(dir, "missing.png")}); err == nil {
		t.Fatal("expected error for missing file")
	}
	if got := status.snapshot(); len(got) != 1 || got[0] != "error" {
		t.Fatalf("expected error status, got %v", got)
	}
}
