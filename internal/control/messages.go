package control

import (
	"time"

	"github.com/petems/armpaste/internal/autopaste"
)

// Request types accepted on /ws
const (
	RequestPrepare = "prepare"
	RequestArm     = "arm"
	RequestDisarm  = "disarm"
)

// Message types pushed to clients
const (
	MessageArmed     = "armed"
	MessageTriggered = "triggered"
	MessageDisarmed  = "disarmed"
	MessageError     = "error"
)

// Request is a command from a control client
type Request struct {
	Type   string   `json:"type"`
	Text   string   `json:"text,omitempty"`
	Images []string `json:"images,omitempty"` // base64, optionally as data URLs
	Reason string   `json:"reason,omitempty"`
}

// Message is an event pushed to control clients
type Message struct {
	Type       string    `json:"type"`
	At         time.Time `json:"at,omitzero"`
	TimeoutMs  int64     `json:"timeout_ms,omitempty"`
	ImageCount int       `json:"image_count,omitempty"`
	TextLength int       `json:"text_length,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Error      string    `json:"error,omitempty"`
}

func messageFor(n autopaste.Notification) Message {
	m := Message{Type: n.Kind.String(), At: n.At}
	switch n.Kind {
	case autopaste.NotifyArmed:
		m.TimeoutMs = n.Timeout.Milliseconds()
		m.ImageCount = n.ImageCount
		m.TextLength = n.TextLen
	case autopaste.NotifyDisarmed:
		m.Reason = n.Reason
	}
	return m
}
