package hotkey

import "time"

// DefaultDebounce collapses key auto-repeat and the keyDown/keyUp pair of a
// single paste into one detection
const DefaultDebounce = 650 * time.Millisecond

// Detector recognises one paste gesture from a stream of events
type Detector struct {
	combo    Combo
	debounce time.Duration

	sawKeyDownWithMods bool
	lastTrigger        time.Time
}

func NewDetector(combo Combo, debounce time.Duration) *Detector {
	return &Detector{combo: combo, debounce: debounce}
}

// SetDebounce changes the debounce window
func (d *Detector) SetDebounce(window time.Duration) {
	d.debounce = window
}

// Reset forgets held-key tracking; called whenever the hook is (re)installed
func (d *Detector) Reset() {
	d.sawKeyDownWithMods = false
}

// Feed reports whether ev completes a real paste gesture at time now
func (d *Detector) Feed(ev Event, now time.Time) bool {
	// Our own synthetic paste must never count as the user's
	if ev.Injected {
		return false
	}

	hasMods := ev.Mods&d.combo.Mods == d.combo.Mods

	// Remember the combo even when the modifier is released before the key
	if ev.Kind == KeyDown && ev.Key == d.combo.Key && hasMods {
		d.sawKeyDownWithMods = true
	}

	if ev.Kind != KeyDown && ev.Kind != KeyUp {
		return false
	}
	if ev.Key != d.combo.Key {
		return false
	}
	if !hasMods && !d.sawKeyDownWithMods {
		return false
	}

	if !d.lastTrigger.IsZero() && now.Sub(d.lastTrigger) < d.debounce {
		return false
	}
	d.lastTrigger = now
	d.sawKeyDownWithMods = false

	return true
}
