// Package autopaste implements "Copy & Arm": the clipboard is seeded with text,
// the user's next real paste is observed, then every prepared image is pasted
// in turn and the original clipboard is restored.
//
// Core is the pure state machine. Service executes its effects.
package autopaste

import (
	"fmt"
	"time"
)

// restoreFloor is the minimum wait between the last synthetic paste and the
// final clipboard restore
const restoreFloor = 100 * time.Millisecond

// Config tunes the automation cycle
type Config struct {
	DelayBetweenPastes     time.Duration
	ArmTimeout             time.Duration
	RestoreClipboardAfter  bool
	UserPasteSettlingDelay time.Duration // wait after the user's paste before the clipboard is overwritten
}

// DefaultConfig returns the stock timings
func DefaultConfig() Config {
	return Config{
		DelayBetweenPastes:     250 * time.Millisecond,
		ArmTimeout:             10 * time.Second,
		RestoreClipboardAfter:  true,
		UserPasteSettlingDelay: 250 * time.Millisecond,
	}
}

type Phase int

const (
	Idle Phase = iota
	Armed
	AutoPasting
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case AutoPasting:
		return "autoPasting"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is the current phase. NextIndex is only meaningful in AutoPasting.
type State struct {
	Phase     Phase
	NextIndex int
}

func (s State) String() string {
	if s.Phase == AutoPasting {
		return fmt.Sprintf("autoPasting(%d)", s.NextIndex)
	}
	return s.Phase.String()
}

// Core decides what should happen next. It performs no I/O.
type Core struct {
	Config Config

	state      State
	text       string
	imageCount int
}

// NewCore returns an idle core
func NewCore(cfg Config) Core {
	return Core{Config: cfg}
}

func (c *Core) State() State { return c.state }

// PreparedTextLen is for diagnostics; the text itself is never exposed
func (c *Core) PreparedTextLen() int { return len([]rune(c.text)) }

func (c *Core) PreparedImageCount() int { return c.imageCount }

func (c *Core) Prepare(text string, imageCount int) {
	c.text = text
	c.imageCount = imageCount
}

// Arm always moves to Armed, restarting any cycle in progress
func (c *Core) Arm() []Effect {
	c.state = State{Phase: Armed}
	return []Effect{
		captureClipboard(),
		writeTextOnly(c.text),
		startMonitoring(),
		startTimeout(c.Config.ArmTimeout),
	}
}

// Disarm moves to Idle from any state
func (c *Core) Disarm() []Effect {
	c.state = State{Phase: Idle}
	effects := []Effect{
		stopMonitoring(),
		cancelTimeout(),
	}
	if c.Config.RestoreClipboardAfter {
		effects = append(effects, restoreClipboard())
	}
	return effects
}

func (c *Core) TimeoutFired() []Effect {
	if c.state.Phase != Armed {
		return nil
	}
	return c.Disarm()
}

// UserPasteDetected consumes the armed state exactly once
func (c *Core) UserPasteDetected() []Effect {
	if c.state.Phase != Armed {
		return nil
	}

	effects := []Effect{
		stopMonitoring(),
		cancelTimeout(),
	}

	if c.imageCount <= 0 {
		c.state = State{Phase: Idle}
		if c.Config.RestoreClipboardAfter {
			effects = append(effects, restoreClipboard())
		}
		return effects
	}

	// The user's own paste still has to read the text-only clipboard, so the
	// first image write is only scheduled here.
	c.state = State{Phase: AutoPasting, NextIndex: 0}
	return append(effects, scheduleNextPaste(c.Config.UserPasteSettlingDelay))
}

func (c *Core) AutoPasteTick() []Effect {
	if c.state.Phase != AutoPasting {
		return nil
	}

	index := c.state.NextIndex
	if index >= c.imageCount {
		c.state = State{Phase: Idle}
		return c.finish()
	}

	effects := []Effect{
		writeImageOnly(index),
		simulatePaste(),
	}

	if next := index + 1; next < c.imageCount {
		c.state = State{Phase: AutoPasting, NextIndex: next}
		return append(effects, scheduleNextPaste(c.Config.DelayBetweenPastes))
	}

	c.state = State{Phase: Idle}
	return append(effects, c.finish()...)
}

func (c *Core) finish() []Effect {
	if !c.Config.RestoreClipboardAfter {
		return nil
	}
	return []Effect{scheduleRestoreClipboard(max(restoreFloor, c.Config.DelayBetweenPastes))}
}
