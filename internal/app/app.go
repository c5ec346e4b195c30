package app

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/petems/armpaste/internal/autopaste"
	"github.com/petems/armpaste/internal/control"
	"github.com/petems/armpaste/internal/storage"
	"github.com/rs/zerolog"
)

// StatusUpdater is an interface for updating status (e.g., tray icon)
type StatusUpdater interface {
	SetIdle()
	SetArmed()
	SetPasting()
	SetError()
}

// Engine is the auto-paste service as seen by the UI surfaces
type Engine interface {
	Prepare(text string, images []image.Image)
	Arm()
	Disarm(reason string)
	Subscribe(buffer int) (<-chan autopaste.Notification, func())
}

// Recorder stores cycle history
type Recorder interface {
	StartCycle(armedAt time.Time, imageCount, textLength int, timeout time.Duration) (int64, error)
	MarkTriggered(id int64, at time.Time) error
	FinishCycle(id int64, at time.Time, outcome string) error
}

// Publisher forwards notifications to remote clients
type Publisher interface {
	Publish(n autopaste.Notification)
}

type Config struct {
	Engine        Engine
	History       Recorder  // Optional - can be nil
	Control       Publisher // Optional - can be nil
	Logger        zerolog.Logger
	StatusUpdater StatusUpdater // Optional - can be nil
}

// App ties engine notifications to the tray, the history and the control
// server
type App struct {
	engine  Engine
	history Recorder
	control Publisher
	log     zerolog.Logger
	status  StatusUpdater

	mu      sync.Mutex
	state   autopaste.NotificationKind
	cycleID int64
}

func New(cfg Config) *App {
	return &App{
		engine:  cfg.Engine,
		history: cfg.History,
		control: cfg.Control,
		log:     cfg.Logger,
		status:  cfg.StatusUpdater,
		state:   autopaste.NotifyDisarmed,
	}
}

// SetStatusUpdater sets the status target (for circular dependency resolution)
func (a *App) SetStatusUpdater(s StatusUpdater) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = s
}

// Run consumes engine notifications until ctx is done
func (a *App) Run(ctx context.Context) error {
	events, cancel := a.engine.Subscribe(32)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-events:
			if !ok {
				return nil
			}
			a.handle(n)
		}
	}
}

func (a *App) handle(n autopaste.Notification) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state = n.Kind

	switch n.Kind {
	case autopaste.NotifyArmed:
		if a.status != nil {
			a.status.SetArmed()
		}
		a.startCycleLocked(n)

	case autopaste.NotifyTriggered:
		if a.status != nil {
			a.status.SetPasting()
		}
		if a.history != nil && a.cycleID != 0 {
			if err := a.history.MarkTriggered(a.cycleID, n.At); err != nil {
				a.log.Error().Err(err).Msg("Failed to record trigger")
			}
		}

	case autopaste.NotifyDisarmed:
		if a.status != nil {
			a.status.SetIdle()
		}
		a.finishCycleLocked(n)
	}

	if a.control != nil {
		a.control.Publish(n)
	}
}

func (a *App) startCycleLocked(n autopaste.Notification) {
	if a.history == nil {
		return
	}

	id, err := a.history.StartCycle(n.At, n.ImageCount, n.TextLen, n.Timeout)
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to record cycle")
		a.cycleID = 0
		return
	}
	a.cycleID = id
}

func (a *App) finishCycleLocked(n autopaste.Notification) {
	if a.history == nil || a.cycleID == 0 {
		return
	}

	if err := a.history.FinishCycle(a.cycleID, n.At, outcomeFor(n.Reason)); err != nil {
		a.log.Error().Err(err).Msg("Failed to finish cycle")
	}
	a.cycleID = 0
}

func outcomeFor(reason string) string {
	switch reason {
	case autopaste.ReasonCompleted:
		return storage.OutcomeCompleted
	case autopaste.ReasonTimeout:
		return storage.OutcomeTimeout
	case autopaste.ReasonRearmed:
		return storage.OutcomeRearmed
	default:
		return storage.OutcomeDisarmed
	}
}

// State returns "idle", "armed" or "pasting"
func (a *App) State() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case autopaste.NotifyArmed:
		return "armed"
	case autopaste.NotifyTriggered:
		return "pasting"
	default:
		return "idle"
	}
}

// Tray and CLI actions

func (a *App) Prepare(text string, images []image.Image) {
	a.engine.Prepare(text, images)
}

func (a *App) Arm() {
	a.engine.Arm()
}

func (a *App) Disarm() {
	a.engine.Disarm(autopaste.ReasonUser)
}

// PrepareFiles loads images from disk and prepares them with text
func (a *App) PrepareFiles(text string, paths []string) error {
	images, err := LoadImages(paths)
	if err != nil {
		if a.status != nil {
			a.status.SetError()
		}
		return err
	}
	a.engine.Prepare(text, images)
	return nil
}

// LoadImages decodes every path in order
func LoadImages(paths []string) ([]image.Image, error) {
	images := make([]image.Image, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		img, _, err := control.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// Shutdown disarms so a pending clipboard snapshot is restored, and waits
// for the engine to confirm
func (a *App) Shutdown(ctx context.Context) error {
	events, cancel := a.engine.Subscribe(8)
	defer cancel()

	a.engine.Disarm("shutdown")

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("engine did not disarm: %w", ctx.Err())
		case n, ok := <-events:
			if !ok || n.Kind == autopaste.NotifyDisarmed {
				return nil
			}
		}
	}
}
