package tray

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/getlantern/systray"
	"github.com/petems/armpaste/internal/app"
	"github.com/petems/armpaste/internal/config"
	"github.com/petems/armpaste/internal/logging"
	"github.com/rs/zerolog"
)

// shutdownTimeout bounds how long Quit waits for the clipboard restore
const shutdownTimeout = 2 * time.Second

type UI struct {
	app     *app.App
	cfg     *config.Config
	version string
	commit  string
	log     zerolog.Logger

	// onConfigChange is called after a menu toggle changed cfg
	onConfigChange func(*config.Config)
	// onQuit is called once Quit disarmed the engine
	onQuit func()

	// Menu items
	mStatus  *systray.MenuItem
	mArm     *systray.MenuItem
	mDisarm  *systray.MenuItem
	mRestore *systray.MenuItem
}

// Status update methods for the app to call
func (u *UI) SetIdle() {
	u.updateStatus("idle")
}

func (u *UI) SetArmed() {
	u.updateStatus("armed")
}

func (u *UI) SetPasting() {
	u.updateStatus("pasting")
}

func (u *UI) SetError() {
	u.updateStatus("error")
}

func New(application *app.App, cfg *config.Config, version, commit string, log zerolog.Logger) *UI {
	return &UI{
		app:     application,
		cfg:     cfg,
		version: version,
		commit:  commit,
		log:     log,
	}
}

// SetApp sets the app reference (for circular dependency resolution)
func (u *UI) SetApp(application *app.App) {
	u.app = application
}

// OnConfigChange registers fn to apply menu changes to the running engine
func (u *UI) OnConfigChange(fn func(*config.Config)) {
	u.onConfigChange = fn
}

// OnQuit registers fn to stop the rest of the process after Quit
func (u *UI) OnQuit(fn func()) {
	u.onQuit = fn
}

// Run blocks on the tray event loop. It must be called from the main thread.
func (u *UI) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()

	systray.Run(u.onReady, u.onExit)
	return nil
}

func (u *UI) onReady() {
	u.updateStatus("idle")
	systray.SetTooltip("Paste text, then every image, with one paste")

	// Build menu
	u.mStatus = systray.AddMenuItem(statusLabel("idle"), "Current state")
	u.mStatus.Disable()
	systray.AddSeparator()

	u.mArm = systray.AddMenuItem("Arm", "Put the text on the clipboard and wait for your paste")
	u.mDisarm = systray.AddMenuItem("Disarm", "Cancel and restore the clipboard")
	u.mDisarm.Disable()
	systray.AddSeparator()

	u.mRestore = systray.AddMenuItemCheckbox("Restore Clipboard", "Put the original clipboard back afterwards", u.cfg.AutoPaste.RestoreClipboardAfter)

	systray.AddSeparator()
	mLogs := systray.AddMenuItem("Open Logs", "View application logs")
	mAbout := systray.AddMenuItem("About", "About armpaste")
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	// Event loop
	go u.handleEvents(mLogs, mAbout, mQuit)
}

func (u *UI) handleEvents(mLogs, mAbout, mQuit *systray.MenuItem) {
	for {
		select {
		case <-u.mArm.ClickedCh:
			u.app.Arm()
		case <-u.mDisarm.ClickedCh:
			u.app.Disarm()
		case <-u.mRestore.ClickedCh:
			u.toggleRestore()
		case <-mLogs.ClickedCh:
			u.openLogs()
		case <-mAbout.ClickedCh:
			u.showAbout()
		case <-mQuit.ClickedCh:
			u.quit()
			systray.Quit()
			return
		}
	}
}

// quit disarms the engine so the clipboard is restored before exit
func (u *UI) quit() {
	u.log.Info().Msg("Quit requested")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := u.app.Shutdown(ctx); err != nil {
		u.log.Error().Err(err).Msg("Shutdown error")
	}
	if u.onQuit != nil {
		u.onQuit()
	}
}

func (u *UI) toggleRestore() {
	u.cfg.AutoPaste.RestoreClipboardAfter = !u.cfg.AutoPaste.RestoreClipboardAfter
	if u.cfg.AutoPaste.RestoreClipboardAfter {
		u.mRestore.Check()
		u.log.Info().Msg("Enabled clipboard restore")
	} else {
		u.mRestore.Uncheck()
		u.log.Info().Msg("Disabled clipboard restore")
	}

	if err := u.cfg.Save(); err != nil {
		u.log.Error().Err(err).Str("path", u.cfg.Path()).Msg("Failed to save config")
	}
	if u.onConfigChange != nil {
		u.onConfigChange(u.cfg)
	}
}

func (u *UI) openLogs() {
	name, args := openCommand(runtime.GOOS, logging.LogPath())
	if err := exec.Command(name, args...).Start(); err != nil {
		u.log.Error().Err(err).Msg("Failed to open logs")
	}
}

// openCommand returns the command that opens path with the default app
func openCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "cmd", []string{"/c", "start", "", path}
	default:
		return "xdg-open", []string{path}
	}
}

func (u *UI) showAbout() {
	// TODO: Show about dialog with native UI
	fmt.Printf("armpaste %s (%s)\nOne paste for text and images\n", u.version, u.commit)
}

func (u *UI) onExit() {
	// Cleanup
}

// updateStatus sets the tray title and the menu state for status
func (u *UI) updateStatus(status string) {
	systray.SetTitle(fmt.Sprintf("📋 %s", emojiForStatus(status)))

	// Menu items exist only once onReady ran
	if u.mStatus == nil {
		return
	}
	u.mStatus.SetTitle(statusLabel(status))
	if status == "armed" || status == "pasting" {
		u.mDisarm.Enable()
	} else {
		u.mDisarm.Disable()
	}
}

func statusLabel(status string) string {
	switch status {
	case "armed":
		return "Armed: waiting for your paste"
	case "pasting":
		return "Pasting images…"
	case "error":
		return "Error, see logs"
	default:
		return "Idle"
	}
}

// emojiForStatus returns the appropriate status emoji
func emojiForStatus(status string) string {
	switch status {
	case "armed":
		return "🟠" // Orange - waiting for the user's paste
	case "pasting":
		return "🔵" // Blue - pasting images
	case "idle":
		return "🟢" // Green - ready/idle
	case "error":
		return "⚪️" // White - error
	default:
		return "🟢" // Green - default to ready
	}
}
