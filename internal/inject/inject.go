// Package inject posts synthetic paste keystrokes that the engine's own
// keyboard hook can tell apart from real input.
package inject

import (
	"fmt"
	"strings"
)

// Marker tags every synthetic event ("ARMP"). On macOS it travels in the
// event's source user data field.
const Marker int64 = 0x41524D50

// Injector simulates the paste shortcut
type Injector interface {
	Paste() error
}

// shortcut is a parsed accelerator such as "cmd+v"
type shortcut struct {
	key  string
	mods []string
}

func parseShortcut(accel string) (shortcut, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(accel)), "+")

	var s shortcut
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if i == len(parts)-1 {
			s.key = part
			continue
		}
		switch part {
		case "ctrl", "control":
			s.mods = append(s.mods, "ctrl")
		case "shift":
			s.mods = append(s.mods, "shift")
		case "alt", "option", "opt":
			s.mods = append(s.mods, "alt")
		case "cmd", "command", "super", "win", "meta":
			s.mods = append(s.mods, "cmd")
		default:
			return shortcut{}, fmt.Errorf("unknown modifier %q in %q", part, accel)
		}
	}

	if s.key == "" {
		return shortcut{}, fmt.Errorf("shortcut %q has no key", accel)
	}
	return s, nil
}
