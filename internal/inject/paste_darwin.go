//go:build darwin

package inject

/*
#cgo LDFLAGS: -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>

// Post a tagged key down/up pair for keyCode with the given modifier flags
static int sendTaggedShortcut(CGKeyCode keyCode, CGEventFlags flags, int64_t marker) {
    CGEventRef down = CGEventCreateKeyboardEvent(NULL, keyCode, true);
    if (down == NULL) {
        return 0;
    }
    CGEventRef up = CGEventCreateKeyboardEvent(NULL, keyCode, false);
    if (up == NULL) {
        CFRelease(down);
        return 0;
    }

    CGEventSetFlags(down, flags);
    CGEventSetIntegerValueField(down, kCGEventSourceUserData, marker);
    CGEventSetFlags(up, flags);
    CGEventSetIntegerValueField(up, kCGEventSourceUserData, marker);

    CGEventPost(kCGHIDEventTap, down);
    CGEventPost(kCGHIDEventTap, up);

    CFRelease(down);
    CFRelease(up);
    return 1;
}
*/
import "C"

import (
	"errors"
	"fmt"
)

// ANSI virtual key codes for keys usable in a paste shortcut
var keyCodes = map[string]C.CGKeyCode{
	"a": 0, "s": 1, "d": 2, "f": 3, "h": 4, "g": 5, "z": 6, "x": 7, "c": 8, "v": 9,
	"b": 11, "q": 12, "w": 13, "e": 14, "r": 15, "y": 16, "t": 17,
	"o": 31, "u": 32, "i": 34, "p": 35, "l": 37, "j": 38, "k": 40, "n": 45, "m": 46,
	"insert": 114,
}

var modifierFlags = map[string]C.CGEventFlags{
	"shift": C.kCGEventFlagMaskShift,
	"ctrl":  C.kCGEventFlagMaskControl,
	"alt":   C.kCGEventFlagMaskAlternate,
	"cmd":   C.kCGEventFlagMaskCommand,
}

type cgInjector struct {
	keyCode C.CGKeyCode
	flags   C.CGEventFlags
}

// New creates a CGEvent injector for accel (e.g. "cmd+v"). Events carry
// Marker, so the ledger is not needed on macOS.
func New(accel string, _ *Ledger) (Injector, error) {
	s, err := parseShortcut(accel)
	if err != nil {
		return nil, err
	}

	code, ok := keyCodes[s.key]
	if !ok {
		return nil, fmt.Errorf("unsupported shortcut key %q", s.key)
	}

	var flags C.CGEventFlags
	for _, m := range s.mods {
		flags |= modifierFlags[m]
	}

	return &cgInjector{keyCode: code, flags: flags}, nil
}

func (c *cgInjector) Paste() error {
	if C.sendTaggedShortcut(c.keyCode, c.flags, C.int64_t(Marker)) == 0 {
		return errors.New("failed to create keyboard event")
	}
	return nil
}
