// Package hotkey observes system-wide keyboard events while the engine is
// armed and recognises the user's paste gesture.
package hotkey

// Kind is the type of a keyboard event
type Kind int

const (
	KeyDown Kind = iota
	KeyUp
	FlagsChanged
)

func (k Kind) String() string {
	switch k {
	case KeyDown:
		return "keyDown"
	case KeyUp:
		return "keyUp"
	case FlagsChanged:
		return "flagsChanged"
	default:
		return "unknown"
	}
}

// Event is a platform-neutral keyboard event
type Event struct {
	Kind Kind
	Key  string // lower-case key name, "" when the platform code is unmapped
	Mods Modifier
	// Injected is set when the event carries our own injection marker
	Injected bool
}

// Hook is a single global keyboard interception point.
// The callback runs on the platform delivery goroutine and must not block.
type Hook interface {
	Start(callback func(Event)) error
	Stop() error
}
