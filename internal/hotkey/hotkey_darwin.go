//go:build darwin

package hotkey

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation
#include <ApplicationServices/ApplicationServices.h>

// Forward declaration for Go callback
extern void goKeyTapEvent(int eventType, int keyCode, unsigned long long flags, long long marker);

static CFMachPortRef tapPort = NULL;
static CFRunLoopSourceRef tapSource = NULL;
static CFRunLoopRef tapLoop = NULL;

static CGEventRef tapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon) {
    // The system disables slow taps; turn it back on and keep going
    if (type == kCGEventTapDisabledByTimeout || type == kCGEventTapDisabledByUserInput) {
        if (tapPort != NULL) {
            CGEventTapEnable(tapPort, true);
        }
        return event;
    }

    int64_t keyCode = CGEventGetIntegerValueField(event, kCGKeyboardEventKeycode);
    int64_t marker = CGEventGetIntegerValueField(event, kCGEventSourceUserData);
    goKeyTapEvent((int)type, (int)keyCode, (unsigned long long)CGEventGetFlags(event), (long long)marker);

    return event;
}

// Listen-only session tap on the calling thread's run loop
static int tapInstall(void) {
    CGEventMask mask = CGEventMaskBit(kCGEventKeyDown) |
                       CGEventMaskBit(kCGEventKeyUp) |
                       CGEventMaskBit(kCGEventFlagsChanged);

    tapPort = CGEventTapCreate(kCGSessionEventTap, kCGTailAppendEventTap,
                               kCGEventTapOptionListenOnly, mask, tapCallback, NULL);
    if (tapPort == NULL) {
        return 0;
    }

    tapSource = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tapPort, 0);
    tapLoop = CFRunLoopGetCurrent();
    CFRetain(tapLoop);
    CFRunLoopAddSource(tapLoop, tapSource, kCFRunLoopCommonModes);
    CGEventTapEnable(tapPort, true);

    return 1;
}

static void tapRunSlice(void) {
    CFRunLoopRunInMode(kCFRunLoopDefaultMode, 0.25, false);
}

static void tapWake(void) {
    if (tapPort != NULL) {
        CGEventTapEnable(tapPort, false);
    }
    if (tapLoop != NULL) {
        CFRunLoopStop(tapLoop);
    }
}

static void tapCleanup(void) {
    if (tapSource != NULL) {
        CFRunLoopRemoveSource(tapLoop, tapSource, kCFRunLoopCommonModes);
        CFRelease(tapSource);
        tapSource = NULL;
    }
    if (tapPort != NULL) {
        CFMachPortInvalidate(tapPort);
        CFRelease(tapPort);
        tapPort = NULL;
    }
    if (tapLoop != NULL) {
        CFRelease(tapLoop);
        tapLoop = NULL;
    }
}
*/
import "C"

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/petems/armpaste/internal/inject"
)

const (
	cgKeyDown      = 10
	cgKeyUp        = 11
	cgFlagsChanged = 12

	cgFlagShift   = 0x00020000
	cgFlagControl = 0x00040000
	cgFlagOption  = 0x00080000
	cgFlagCommand = 0x00100000
)

// ANSI virtual key codes
var keyNames = map[int]string{
	0: "a", 1: "s", 2: "d", 3: "f", 4: "h", 5: "g", 6: "z", 7: "x", 8: "c", 9: "v",
	11: "b", 12: "q", 13: "w", 14: "e", 15: "r", 16: "y", 17: "t",
	18: "1", 19: "2", 20: "3", 21: "4", 22: "6", 23: "5", 25: "9", 26: "7", 28: "8", 29: "0",
	31: "o", 32: "u", 34: "i", 35: "p", 37: "l", 38: "j", 40: "k", 45: "n", 46: "m",
	36: "enter", 48: "tab", 49: "space", 51: "backspace", 53: "esc",
	54: "cmd", 55: "cmd", 56: "shift", 58: "alt", 59: "ctrl", 60: "shift", 61: "alt", 62: "ctrl",
}

// activeTap receives events from the C callback
var activeTap atomic.Pointer[tapHook]

type tapHook struct {
	mu       sync.Mutex
	callback func(Event)
	stopping atomic.Bool
	done     chan struct{}
}

// New creates the macOS hook backed by a CGEventTap. Injected events are
// recognised by their source user data, so the ledger is not consulted.
func New(_ *inject.Ledger) (Hook, error) {
	return &tapHook{}, nil
}

//export goKeyTapEvent
func goKeyTapEvent(eventType C.int, keyCode C.int, flags C.ulonglong, marker C.longlong) {
	h := activeTap.Load()
	if h == nil {
		return
	}

	var kind Kind
	switch int(eventType) {
	case cgKeyDown:
		kind = KeyDown
	case cgKeyUp:
		kind = KeyUp
	case cgFlagsChanged:
		kind = FlagsChanged
	default:
		return
	}

	h.callback(Event{
		Kind:     kind,
		Key:      keyNames[int(keyCode)],
		Mods:     modsFromFlags(uint64(flags)),
		Injected: int64(marker) == inject.Marker,
	})
}

func modsFromFlags(flags uint64) Modifier {
	var m Modifier
	if flags&cgFlagShift != 0 {
		m |= ModShift
	}
	if flags&cgFlagControl != 0 {
		m |= ModCtrl
	}
	if flags&cgFlagOption != 0 {
		m |= ModAlt
	}
	if flags&cgFlagCommand != 0 {
		m |= ModCmd
	}
	return m
}

func (h *tapHook) Start(callback func(Event)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done != nil {
		return nil
	}

	h.callback = callback
	h.stopping.Store(false)
	activeTap.Store(h)

	done := make(chan struct{})
	errCh := make(chan error, 1)

	go func() {
		// The tap lives on this thread's run loop
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(done)

		if C.tapInstall() == 0 {
			errCh <- errors.New("CGEventTapCreate failed, is accessibility access granted?")
			return
		}
		errCh <- nil

		for !h.stopping.Load() {
			C.tapRunSlice()
		}
		C.tapCleanup()
	}()

	if err := <-errCh; err != nil {
		<-done
		activeTap.CompareAndSwap(h, nil)
		return err
	}

	h.done = done
	return nil
}

func (h *tapHook) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done == nil {
		return nil
	}

	activeTap.CompareAndSwap(h, nil)
	h.stopping.Store(true)
	C.tapWake()
	<-h.done
	h.done = nil

	return nil
}
