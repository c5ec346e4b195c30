package autopaste

import (
	"fmt"
	"time"
)

// EffectKind identifies what an Effect asks the executor to do
type EffectKind int

const (
	CaptureClipboard EffectKind = iota
	WriteTextOnly
	StartMonitoring
	StopMonitoring
	StartTimeout
	CancelTimeout
	WriteImageOnly
	SimulatePaste
	ScheduleNextPaste
	ScheduleRestoreClipboard
	RestoreClipboard
)

var effectNames = [...]string{
	CaptureClipboard:         "captureClipboard",
	WriteTextOnly:            "writeTextOnly",
	StartMonitoring:          "startMonitoring",
	StopMonitoring:           "stopMonitoring",
	StartTimeout:             "startTimeout",
	CancelTimeout:            "cancelTimeout",
	WriteImageOnly:           "writeImageOnly",
	SimulatePaste:            "simulatePaste",
	ScheduleNextPaste:        "scheduleNextPaste",
	ScheduleRestoreClipboard: "scheduleRestoreClipboard",
	RestoreClipboard:         "restoreClipboard",
}

func (k EffectKind) String() string {
	if k < 0 || int(k) >= len(effectNames) {
		return fmt.Sprintf("EffectKind(%d)", int(k))
	}
	return effectNames[k]
}

// Effect is a declarative instruction produced by the Core.
// Only the field matching Kind is meaningful; Effect values are comparable.
type Effect struct {
	Kind  EffectKind
	Text  string        // WriteTextOnly
	Index int           // WriteImageOnly
	After time.Duration // StartTimeout, ScheduleNextPaste, ScheduleRestoreClipboard
}

func (e Effect) String() string {
	switch e.Kind {
	case WriteTextOnly:
		// Length only, the payload stays out of logs
		return fmt.Sprintf("%s(len=%d)", e.Kind, len(e.Text))
	case WriteImageOnly:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Index)
	case StartTimeout, ScheduleNextPaste, ScheduleRestoreClipboard:
		return fmt.Sprintf("%s(%s)", e.Kind, e.After)
	default:
		return e.Kind.String()
	}
}

func captureClipboard() Effect {
	return Effect{Kind: CaptureClipboard}
}

func writeTextOnly(text string) Effect {
	return Effect{Kind: WriteTextOnly, Text: text}
}

func startMonitoring() Effect {
	return Effect{Kind: StartMonitoring}
}

func stopMonitoring() Effect {
	return Effect{Kind: StopMonitoring}
}

func startTimeout(d time.Duration) Effect {
	return Effect{Kind: StartTimeout, After: d}
}

func cancelTimeout() Effect {
	return Effect{Kind: CancelTimeout}
}

func writeImageOnly(index int) Effect {
	return Effect{Kind: WriteImageOnly, Index: index}
}

func simulatePaste() Effect {
	return Effect{Kind: SimulatePaste}
}

func scheduleNextPaste(d time.Duration) Effect {
	return Effect{Kind: ScheduleNextPaste, After: d}
}

func scheduleRestoreClipboard(d time.Duration) Effect {
	return Effect{Kind: ScheduleRestoreClipboard, After: d}
}

func restoreClipboard() Effect {
	return Effect{Kind: RestoreClipboard}
}
