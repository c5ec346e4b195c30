//go:build !darwin

package inject

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"
)

type robotInjector struct {
	shortcut shortcut
	ledger   *Ledger
}

// New creates a robotgo-backed injector for accel (e.g. "ctrl+v").
// Each paste is announced to ledger before it is posted.
func New(accel string, ledger *Ledger) (Injector, error) {
	s, err := parseShortcut(accel)
	if err != nil {
		return nil, err
	}
	return &robotInjector{shortcut: s, ledger: ledger}, nil
}

func (r *robotInjector) Paste() error {
	if r.ledger != nil {
		// key down + key up
		r.ledger.Expect(r.shortcut.key, 2, time.Now())
	}

	args := make([]interface{}, len(r.shortcut.mods))
	for i, m := range r.shortcut.mods {
		args[i] = m
	}

	if err := robotgo.KeyTap(r.shortcut.key, args...); err != nil {
		return fmt.Errorf("failed to send paste shortcut: %w", err)
	}
	return nil
}
