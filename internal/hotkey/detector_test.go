package hotkey

import (
	"testing"
	"time"
)

var cmdV = Combo{Key: "v", Mods: ModCmd}

func TestDetectorRecognisesPaste(t *testing.T) {
	d := NewDetector(cmdV, DefaultDebounce)
	now := time.Unix(1000, 0)

	if !d.Feed(Event{Kind: KeyDown, Key: "v", Mods: ModCmd}, now) {
		t.Fatal("expected cmd+v key down to be detected")
	}
}

func TestDetectorIgnoresInjectedEvents(t *testing.T) {
	d := NewDetector(cmdV, DefaultDebounce)
	now := time.Unix(1000, 0)

	if d.Feed(Event{Kind: KeyDown, Key: "v", Mods: ModCmd, Injected: true}, now) {
		t.Fatal("injected paste was detected as a user paste")
	}
	if d.Feed(Event{Kind: KeyUp, Key: "v", Mods: ModCmd, Injected: true}, now) {
		t.Fatal("injected key up was detected as a user paste")
	}

	// A later real paste still works
	if !d.Feed(Event{Kind: KeyDown, Key: "v", Mods: ModCmd}, now.Add(time.Millisecond)) {
		t.Fatal("expected real paste after injected one to be detected")
	}
}

func TestDetectorRequiresModifiers(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
	}{
		{name: "plain v", ev: Event{Kind: KeyDown, Key: "v"}},
		{name: "wrong modifier", ev: Event{Kind: KeyDown, Key: "v", Mods: ModCtrl}},
		{name: "other key", ev: Event{Kind: KeyDown, Key: "c", Mods: ModCmd}},
		{name: "flags only", ev: Event{Kind: FlagsChanged, Key: "cmd", Mods: ModCmd}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(cmdV, DefaultDebounce)
			if d.Feed(tt.ev, time.Unix(1000, 0)) {
				t.Fatalf("unexpected detection for %+v", tt.ev)
			}
		})
	}
}

func TestDetectorAcceptsExtraModifiers(t *testing.T) {
	d := NewDetector(cmdV, DefaultDebounce)
	if !d.Feed(Event{Kind: KeyDown, Key: "v", Mods: ModCmd | ModShift}, time.Unix(1000, 0)) {
		t.Fatal("expected cmd+shift+v to count as paste")
	}
}

func TestDetectorToleratesModifierReleasedFirst(t *testing.T) {
	d := NewDetector(cmdV, 10*time.Millisecond)
	now := time.Unix(1000, 0)

	// The key down lands inside the previous window, so the key up decides
	d.lastTrigger = now
	if d.Feed(Event{Kind: KeyDown, Key: "v", Mods: ModCmd}, now.Add(time.Millisecond)) {
		t.Fatal("expected key down inside debounce window to be dropped")
	}

	// Cmd released, then v released without modifiers
	d.Feed(Event{Kind: FlagsChanged, Key: "cmd"}, now.Add(5*time.Millisecond))
	if !d.Feed(Event{Kind: KeyUp, Key: "v"}, now.Add(20*time.Millisecond)) {
		t.Fatal("expected key up after modifier release to complete the paste")
	}
}

func TestDetectorDebounces(t *testing.T) {
	d := NewDetector(cmdV, 650*time.Millisecond)
	now := time.Unix(1000, 0)

	if !d.Feed(Event{Kind: KeyDown, Key: "v", Mods: ModCmd}, now) {
		t.Fatal("expected first paste to be detected")
	}
	if d.Feed(Event{Kind: KeyUp, Key: "v", Mods: ModCmd}, now.Add(80*time.Millisecond)) {
		t.Fatal("key up of the same paste must be collapsed")
	}
	if d.Feed(Event{Kind: KeyDown, Key: "v", Mods: ModCmd}, now.Add(300*time.Millisecond)) {
		t.Fatal("auto-repeat inside the window must be collapsed")
	}
	if !d.Feed(Event{Kind: KeyDown, Key: "v", Mods: ModCmd}, now.Add(time.Second)) {
		t.Fatal("expected paste after the window to be detected")
	}
}

func TestDetectorResetForgetsHeldKey(t *testing.T) {
	d := NewDetector(cmdV, 10*time.Millisecond)
	now := time.Unix(1000, 0)

	d.lastTrigger = now
	d.Feed(Event{Kind: KeyDown, Key: "v", Mods: ModCmd}, now.Add(time.Millisecond))
	d.Reset()

	if d.Feed(Event{Kind: KeyUp, Key: "v"}, now.Add(time.Second)) {
		t.Fatal("bare key up after reset must not be detected")
	}
}
