package autopaste

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"time"

	"github.com/petems/armpaste/internal/hotkey"
	"github.com/petems/armpaste/internal/inject"
	"github.com/petems/armpaste/internal/pasteboard"
	"github.com/rs/zerolog"
)

// settingsDelay gives the system permission prompt time to appear before the
// settings pane is opened behind it
const settingsDelay = 200 * time.Millisecond

// Scheduler runs work on the engine's single goroutine.
// AfterFunc must deliver fn through the same queue as Post.
type Scheduler interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// Permission gates synthetic input behind the OS accessibility grant
type Permission interface {
	Trusted() bool
	Request()
	OpenSettings() error
}

type Options struct {
	Config     Config
	Combo      hotkey.Combo
	Debounce   time.Duration
	Pasteboard pasteboard.Pasteboard
	Hook       hotkey.Hook
	Injector   inject.Injector
	Permission Permission // nil means always trusted
	Scheduler  Scheduler
	Logger     zerolog.Logger
	Now        func() time.Time // defaults to time.Now
}

// Service executes Core effects against the real clipboard, hook and
// injector. All fields below the public API are owned by the scheduler
// goroutine.
type Service struct {
	pb     pasteboard.Pasteboard
	hook   hotkey.Hook
	inj    inject.Injector
	perm   Permission
	sched  Scheduler
	log    zerolog.Logger
	now    func() time.Time
	notify *Broadcaster

	core        Core
	images      [][]byte
	detector    *hotkey.Detector
	snapshot    *pasteboard.Snapshot
	token       uint64
	timers      []func() bool
	timeoutStop func() bool
	monitoring  bool
	armedAt     time.Time
}

func NewService(opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = hotkey.DefaultDebounce
	}

	return &Service{
		pb:       opts.Pasteboard,
		hook:     opts.Hook,
		inj:      opts.Injector,
		perm:     opts.Permission,
		sched:    opts.Scheduler,
		log:      opts.Logger,
		now:      now,
		notify:   NewBroadcaster(),
		core:     NewCore(opts.Config),
		detector: hotkey.NewDetector(opts.Combo, debounce),
	}
}

// Subscribe registers for lifecycle notifications
func (s *Service) Subscribe(buffer int) (<-chan Notification, func()) {
	return s.notify.Subscribe(buffer)
}

// Prepare stores the payload for the next cycles. Images are PNG encoded
// here, on the caller's goroutine; images that fail to encode are dropped.
func (s *Service) Prepare(text string, images []image.Image) {
	text = strings.TrimSpace(text)

	encoded := make([][]byte, 0, len(images))
	for i, img := range images {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			s.log.Warn().Err(err).Int("index", i).Msg("Skipping image that failed to encode")
			continue
		}
		encoded = append(encoded, buf.Bytes())
	}

	s.sched.Post(func() {
		s.images = encoded
		s.core.Prepare(text, len(encoded))
		s.log.Debug().
			Int("text_len", s.core.PreparedTextLen()).
			Int("images", len(encoded)).
			Msg("Payload prepared")
	})
}

func (s *Service) Arm() {
	s.sched.Post(s.arm)
}

// Disarm ends any cycle and restores the clipboard when configured
func (s *Service) Disarm(reason string) {
	s.sched.Post(func() { s.disarm(reason) })
}

// UpdateConfig applies fn to the cycle configuration. Running timers keep
// their durations.
func (s *Service) UpdateConfig(fn func(*Config)) {
	s.sched.Post(func() {
		fn(&s.core.Config)
		s.log.Info().
			Dur("delay_between_pastes", s.core.Config.DelayBetweenPastes).
			Dur("arm_timeout", s.core.Config.ArmTimeout).
			Bool("restore_clipboard_after", s.core.Config.RestoreClipboardAfter).
			Dur("settling_delay", s.core.Config.UserPasteSettlingDelay).
			Msg("Auto-paste config updated")
	})
}

func (s *Service) SetDebounceWindow(d time.Duration) {
	s.sched.Post(func() { s.detector.SetDebounce(d) })
}

func (s *Service) arm() {
	if s.perm != nil && !s.perm.Trusted() {
		s.log.Warn().Msg("Accessibility permission missing, not arming")
		s.perm.Request()
		s.sched.AfterFunc(settingsDelay, func() {
			if err := s.perm.OpenSettings(); err != nil {
				s.log.Error().Err(err).Msg("Failed to open accessibility settings")
			}
		})
		return
	}

	// A new cycle starts from the user's clipboard, not from our payload
	if s.core.State().Phase != Idle {
		s.disarm(ReasonRearmed)
	} else if s.snapshot != nil {
		if s.core.Config.RestoreClipboardAfter {
			s.restoreIfNeeded()
		}
		s.snapshot = nil
	}

	s.token++
	s.stopTimers()
	s.execute(s.core.Arm())
	s.armedAt = s.now()

	s.log.Info().
		Int("images", s.core.PreparedImageCount()).
		Int("text_len", s.core.PreparedTextLen()).
		Dur("timeout", s.core.Config.ArmTimeout).
		Msg("Armed")

	s.publish(Notification{
		Kind:       NotifyArmed,
		Timeout:    s.core.Config.ArmTimeout,
		ImageCount: s.core.PreparedImageCount(),
		TextLen:    s.core.PreparedTextLen(),
	})
}

func (s *Service) disarm(reason string) {
	s.token++
	s.stopTimers()
	s.execute(s.core.Disarm())
	if !s.core.Config.RestoreClipboardAfter {
		s.snapshot = nil
	}
	s.disarmed(reason)
}

func (s *Service) disarmed(reason string) {
	ev := s.log.Info().Str("reason", reason)
	if !s.armedAt.IsZero() {
		ev = ev.Dur("cycle", s.now().Sub(s.armedAt))
		s.armedAt = time.Time{}
	}
	ev.Msg("Disarmed")

	s.publish(Notification{Kind: NotifyDisarmed, Reason: reason})
}

func (s *Service) onTimeout() {
	effects := s.core.TimeoutFired()
	if len(effects) == 0 {
		return
	}
	s.log.Info().Msg("No paste within arm timeout")
	s.execute(effects)
	s.disarmed(ReasonTimeout)
}

func (s *Service) onKeyEvent(ev hotkey.Event) {
	if !s.monitoring || s.core.State().Phase != Armed {
		return
	}
	if !s.detector.Feed(ev, s.now()) {
		return
	}

	effects := s.core.UserPasteDetected()
	if len(effects) == 0 {
		return
	}
	s.log.Info().Str("key", ev.Key).Msg("User paste detected")
	s.publish(Notification{Kind: NotifyTriggered})

	s.execute(effects)
	if s.core.State().Phase == Idle {
		s.disarmed(ReasonCompleted)
	}
}

// onTick publishes the completion on any move to Idle. A shrunken payload
// with restore disabled ends the cycle without effects.
func (s *Service) onTick() {
	before := s.core.State().Phase
	s.execute(s.core.AutoPasteTick())
	if before != Idle && s.core.State().Phase == Idle {
		s.disarmed(ReasonCompleted)
	}
}

func (s *Service) execute(effects []Effect) {
	for _, e := range effects {
		s.log.Debug().Stringer("effect", e).Msg("Executing effect")

		switch e.Kind {
		case CaptureClipboard:
			snap, err := pasteboard.Capture(s.pb)
			if err != nil {
				s.log.Error().Err(err).Msg("Failed to capture clipboard")
			}
			s.snapshot = snap

		case WriteTextOnly:
			if err := s.pb.Replace([]pasteboard.Item{pasteboard.TextItem(e.Text)}); err != nil {
				s.log.Error().Err(err).Msg("Failed to write text to clipboard")
			}

		case WriteImageOnly:
			if e.Index < 0 || e.Index >= len(s.images) {
				s.log.Warn().Int("index", e.Index).Msg("No prepared image at index")
				continue
			}
			if err := s.pb.Replace([]pasteboard.Item{pasteboard.PNGItem(s.images[e.Index])}); err != nil {
				s.log.Error().Err(err).Int("index", e.Index).Msg("Failed to write image to clipboard")
			}

		case StartMonitoring:
			s.startMonitoring()

		case StopMonitoring:
			s.stopMonitoring()

		case StartTimeout:
			s.timeoutStop = s.after(e.After, s.onTimeout)

		case CancelTimeout:
			if s.timeoutStop != nil {
				s.timeoutStop()
				s.timeoutStop = nil
			}

		case SimulatePaste:
			if err := s.inj.Paste(); err != nil {
				s.log.Error().Err(err).Msg("Failed to simulate paste")
			}

		case ScheduleNextPaste:
			s.after(e.After, s.onTick)

		case ScheduleRestoreClipboard:
			s.after(e.After, s.restoreIfNeeded)

		case RestoreClipboard:
			s.restoreIfNeeded()
		}
	}
}

func (s *Service) startMonitoring() {
	if s.monitoring {
		return
	}
	s.detector.Reset()

	token := s.token
	err := s.hook.Start(func(ev hotkey.Event) {
		s.sched.Post(func() {
			if s.token != token {
				return
			}
			s.onKeyEvent(ev)
		})
	})
	if err != nil {
		// The timeout still ends the cycle
		s.log.Error().Err(err).Msg("Failed to install keyboard hook")
		return
	}
	s.monitoring = true
}

func (s *Service) stopMonitoring() {
	if !s.monitoring {
		return
	}
	s.monitoring = false
	if err := s.hook.Stop(); err != nil {
		s.log.Error().Err(err).Msg("Failed to remove keyboard hook")
	}
}

// after schedules fn bound to the current token
func (s *Service) after(d time.Duration, fn func()) func() bool {
	token := s.token
	stop := s.sched.AfterFunc(d, func() {
		if s.token != token {
			return
		}
		fn()
	})
	s.timers = append(s.timers, stop)
	return stop
}

func (s *Service) stopTimers() {
	for _, stop := range s.timers {
		stop()
	}
	s.timers = nil
	s.timeoutStop = nil
}

func (s *Service) restoreIfNeeded() {
	if s.snapshot == nil {
		return
	}
	snap := s.snapshot
	s.snapshot = nil

	if err := snap.Restore(s.pb); err != nil {
		s.log.Error().Err(err).Msg("Failed to restore clipboard")
		return
	}
	s.log.Debug().Strs("types", snap.Types()).Msg("Clipboard restored")
}

func (s *Service) publish(n Notification) {
	n.At = s.now()
	s.notify.Publish(n)
}
