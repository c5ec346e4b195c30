package hotkey

import (
	"fmt"
	"strings"
)

// Modifier is a bitmask of held modifier keys
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModCmd
)

func (m Modifier) String() string {
	var parts []string
	if m&ModCtrl != 0 {
		parts = append(parts, "ctrl")
	}
	if m&ModShift != 0 {
		parts = append(parts, "shift")
	}
	if m&ModAlt != 0 {
		parts = append(parts, "alt")
	}
	if m&ModCmd != 0 {
		parts = append(parts, "cmd")
	}
	return strings.Join(parts, "+")
}

// Combo is a key plus the modifiers that must be held with it
type Combo struct {
	Key  string
	Mods Modifier
}

func (c Combo) String() string {
	if c.Mods == 0 {
		return c.Key
	}
	return c.Mods.String() + "+" + c.Key
}

// ParseCombo parses accelerators like "cmd+v" or "ctrl+shift+v"
func ParseCombo(accel string) (Combo, error) {
	var c Combo
	parts := strings.Split(strings.ToLower(strings.TrimSpace(accel)), "+")

	for i, part := range parts {
		part = strings.TrimSpace(part)

		switch part {
		case "ctrl", "control":
			c.Mods |= ModCtrl
			continue
		case "shift":
			c.Mods |= ModShift
			continue
		case "alt", "option", "opt":
			c.Mods |= ModAlt
			continue
		case "cmd", "command", "super", "win", "meta":
			c.Mods |= ModCmd
			continue
		}

		if part == "" || i != len(parts)-1 {
			return Combo{}, fmt.Errorf("invalid key combo %q", accel)
		}
		c.Key = part
	}

	if c.Key == "" {
		return Combo{}, fmt.Errorf("key combo %q has no key", accel)
	}
	if c.Mods == 0 {
		return Combo{}, fmt.Errorf("key combo %q has no modifier", accel)
	}

	return c, nil
}
