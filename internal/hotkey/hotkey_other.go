//go:build !darwin

package hotkey

import (
	"sync"
	"time"

	"github.com/petems/armpaste/internal/inject"
	hook "github.com/robotn/gohook"
)

// libuiohook modifier masks
const (
	maskShiftL = 1 << iota
	maskCtrlL
	maskMetaL
	maskAltL
	maskShiftR
	maskCtrlR
	maskMetaR
	maskAltR
)

// keyNames reverses gohook's name table, preferring the shortest alias
var keyNames = func() map[uint16]string {
	names := make(map[uint16]string, len(hook.Keycode))
	for name, code := range hook.Keycode {
		prev, ok := names[code]
		if !ok || len(name) < len(prev) || (len(name) == len(prev) && name < prev) {
			names[code] = name
		}
	}
	return names
}()

type uioHook struct {
	ledger *inject.Ledger

	mu   sync.Mutex
	quit chan struct{}
}

// New creates a libuiohook-based hook. Events injected through robotgo carry
// no tag on these platforms, so the injection ledger marks them instead.
func New(ledger *inject.Ledger) (Hook, error) {
	return &uioHook{ledger: ledger}, nil
}

func (h *uioHook) Start(callback func(Event)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.quit != nil {
		return nil
	}
	// Entries from pastes posted while the hook was down can never be claimed
	if h.ledger != nil {
		h.ledger.Reset()
	}

	events := hook.Start()
	quit := make(chan struct{})
	h.quit = quit

	go func() {
		for {
			select {
			case <-quit:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if e, ok := h.translate(ev); ok {
					callback(e)
				}
			}
		}
	}()

	return nil
}

func (h *uioHook) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.quit == nil {
		return nil
	}

	close(h.quit)
	h.quit = nil
	hook.End()

	return nil
}

func (h *uioHook) translate(ev hook.Event) (Event, bool) {
	var kind Kind
	switch ev.Kind {
	case hook.KeyHold:
		// libuiohook "pressed"; KeyDown there means "typed"
		kind = KeyDown
	case hook.KeyUp:
		kind = KeyUp
	default:
		return Event{}, false
	}

	e := Event{
		Kind: kind,
		Key:  keyNames[ev.Keycode],
		Mods: modsFromMask(ev.Mask),
	}
	if e.Key != "" && h.ledger != nil {
		e.Injected = h.ledger.Claim(e.Key, time.Now())
	}

	return e, true
}

func modsFromMask(mask uint16) Modifier {
	var m Modifier
	if mask&(maskShiftL|maskShiftR) != 0 {
		m |= ModShift
	}
	if mask&(maskCtrlL|maskCtrlR) != 0 {
		m |= ModCtrl
	}
	if mask&(maskAltL|maskAltR) != 0 {
		m |= ModAlt
	}
	if mask&(maskMetaL|maskMetaR) != 0 {
		m |= ModCmd
	}
	return m
}
