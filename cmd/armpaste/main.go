package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/petems/armpaste/internal/app"
	"github.com/petems/armpaste/internal/autopaste"
	"github.com/petems/armpaste/internal/config"
	"github.com/petems/armpaste/internal/control"
	"github.com/petems/armpaste/internal/hotkey"
	"github.com/petems/armpaste/internal/inject"
	"github.com/petems/armpaste/internal/logging"
	"github.com/petems/armpaste/internal/mainloop"
	"github.com/petems/armpaste/internal/pasteboard"
	"github.com/petems/armpaste/internal/permissions"
	"github.com/petems/armpaste/internal/storage"
	"github.com/petems/armpaste/internal/tray"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

// imageFlags collects repeated -image flags
type imageFlags []string

func (f *imageFlags) String() string { return strings.Join(*f, ",") }

func (f *imageFlags) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	var (
		configPath  = flag.String("config", "", "config file (.json or .toml)")
		text        = flag.String("text", "", "text to prepare and arm at startup")
		showStats   = flag.Bool("stats", false, "print the cycle history summary and exit")
		showVersion = flag.Bool("version", false, "print the version and exit")
		images      imageFlags
	)
	flag.Var(&images, "image", "image to prepare at startup (repeatable)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("armpaste %s (%s)\n", Version, Commit)
		return
	}

	// Load config from XDG/Library/AppData unless a file was given
	cfg, err := loadConfig(*configPath)
	if err != nil {
		// Use default logger if config fails to load
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Initialize logger with configured level
	log := logging.NewWithLevel(cfg.LogLevel)

	if *showStats {
		if err := printStats(); err != nil {
			log.Fatal().Err(err).Msg("Failed to read history")
		}
		return
	}

	// macOS requires accessibility approval before the event tap and synthetic paste work.
	// Arm re-checks, so a missing grant is not fatal here.
	if err := permissions.EnsurePermissions(); err != nil {
		log.Warn().Err(err).Msg("Accessibility permission not granted yet")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	combo, err := hotkey.ParseCombo(cfg.PlatformPasteCombo())
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid paste combo")
	}

	// Initialize injector and hook sharing one ledger so our own paste is recognised
	ledger := inject.NewLedger(inject.DefaultLedgerWindow)
	injector, err := inject.New(cfg.PlatformPasteCombo(), ledger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize injector")
	}

	hook, err := hotkey.New(ledger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize keyboard hook")
	}

	pb, err := pasteboard.NewSystem(log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize clipboard")
	}

	loop := mainloop.New()
	service := autopaste.NewService(autopaste.Options{
		Config:     cfg.Engine(),
		Combo:      combo,
		Debounce:   cfg.Debounce(),
		Pasteboard: pb,
		Hook:       hook,
		Injector:   injector,
		Permission: permissions.New(),
		Scheduler:  loop,
		Logger:     log.With().Str("component", "autopaste").Logger(),
	})

	// Optional history; the interfaces stay nil when disabled
	var (
		recorder app.Recorder
		history  control.History
	)
	if cfg.History.Enabled {
		db, err := storage.Open(config.DataPath())
		if err != nil {
			log.Error().Err(err).Msg("Failed to open history, continuing without it")
		} else {
			defer db.Close()
			recorder, history = db, db
		}
	}

	// Optional control server
	var publisher app.Publisher
	var server *control.Server
	if cfg.Control.Enabled {
		server = control.NewServer(service, history, cfg.Control.ListenAddr, log.With().Str("component", "control").Logger())
		publisher = server
	}

	// Create tray UI first (we'll pass it to app)
	trayUI := tray.New(nil, cfg, Version, Commit, log) // App reference set below

	// Create app with tray as status updater
	application := app.New(app.Config{
		Engine:        service,
		History:       recorder,
		Control:       publisher,
		Logger:        log,
		StatusUpdater: trayUI,
	})

	// Set app reference in tray
	trayUI.SetApp(application)
	trayUI.OnQuit(cancel)
	trayUI.OnConfigChange(func(c *config.Config) {
		engine := c.Engine()
		service.UpdateConfig(func(ec *autopaste.Config) { *ec = engine })
		service.SetDebounceWindow(c.Debounce())
	})

	go func() {
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Main loop stopped")
		}
	}()
	go application.Run(ctx)

	if server != nil {
		go func() {
			if err := server.Start(ctx); err != nil {
				log.Error().Err(err).Msg("Control server stopped")
			}
		}()
	}

	if *text != "" || len(images) > 0 {
		if err := application.PrepareFiles(*text, images); err != nil {
			log.Fatal().Err(err).Msg("Failed to load images")
		}
		application.Arm()
	}

	log.Info().Str("combo", combo.String()).Msg("armpaste starting...")

	// Setup shutdown signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 2*time.Second)
		defer cancelShutdown()
		if err := application.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Shutdown error")
		}
		cancel()
	}()

	// Start tray UI - MUST run on main thread
	if err := trayUI.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Tray error")
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

func printStats() error {
	db, err := storage.Open(config.DataPath())
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := db.Summary()
	if err != nil {
		return err
	}
	recent, err := db.RecentCycles(10)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"summary": summary,
		"recent":  recent,
	})
}
