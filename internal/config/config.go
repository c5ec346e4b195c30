package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/petems/armpaste/internal/autopaste"
)

type Config struct {
	PasteCombo       string          `json:"paste_combo" toml:"paste_combo"`
	PasteComboDarwin string          `json:"paste_combo_darwin" toml:"paste_combo_darwin"`
	AutoPaste        AutoPasteConfig `json:"auto_paste" toml:"auto_paste"`
	Control          ControlConfig   `json:"control" toml:"control"`
	History          HistoryConfig   `json:"history" toml:"history"`
	LogLevel         string          `json:"log_level" toml:"log_level"` // "debug", "info", "warn", "error"

	// path is the file this config was loaded from, and where Save writes
	path string
}

// AutoPasteConfig holds the cycle timings. Durations are seconds.
type AutoPasteConfig struct {
	DelayBetweenPastes     float64 `json:"delay_between_pastes" toml:"delay_between_pastes"`
	ArmTimeoutSeconds      float64 `json:"arm_timeout_seconds" toml:"arm_timeout_seconds"`
	RestoreClipboardAfter  bool    `json:"restore_clipboard_after" toml:"restore_clipboard_after"`
	UserPasteSettlingDelay float64 `json:"user_paste_settling_delay" toml:"user_paste_settling_delay"`
	DebounceWindow         float64 `json:"debounce_window" toml:"debounce_window"`
}

type ControlConfig struct {
	Enabled    bool   `json:"enabled" toml:"enabled"`
	ListenAddr string `json:"listen_addr" toml:"listen_addr"`
}

type HistoryConfig struct {
	Enabled bool `json:"enabled" toml:"enabled"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		PasteCombo:       "Ctrl+V",
		PasteComboDarwin: "Cmd+V",
		AutoPaste: AutoPasteConfig{
			DelayBetweenPastes:     0.25,
			ArmTimeoutSeconds:      10,
			RestoreClipboardAfter:  true,
			UserPasteSettlingDelay: 0.25,
			DebounceWindow:         0.65,
		},
		Control: ControlConfig{
			Enabled:    true,
			ListenAddr: "127.0.0.1:8723",
		},
		History: HistoryConfig{
			Enabled: true,
		},
		LogLevel: "info",
	}
}

// Load reads the config from the platform config dir or returns defaults
func Load() (*Config, error) {
	cfg, err := LoadFile(configPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a .json or .toml config over the defaults. A missing file
// returns the defaults along with the not-exist error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects timings the engine cannot honour
func (c *Config) Validate() error {
	a := c.AutoPaste
	switch {
	case a.DelayBetweenPastes < 0:
		return fmt.Errorf("delay_between_pastes must not be negative")
	case a.ArmTimeoutSeconds <= 0:
		return fmt.Errorf("arm_timeout_seconds must be positive")
	case a.UserPasteSettlingDelay < 0:
		return fmt.Errorf("user_paste_settling_delay must not be negative")
	case a.DebounceWindow < 0:
		return fmt.Errorf("debounce_window must not be negative")
	}
	return nil
}

// Save writes the config back to the file it was loaded from, in that
// file's format. Configs not read from disk go to the platform path.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = configPath()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return err
		}
		data = buf.Bytes()
	default:
		var err error
		if data, err = json.MarshalIndent(c, "", "  "); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0644)
}

// Path returns the file Save writes to
func (c *Config) Path() string {
	if c.path == "" {
		return configPath()
	}
	return c.path
}

// PlatformPasteCombo returns the paste shortcut for the current platform
func (c *Config) PlatformPasteCombo() string {
	if runtime.GOOS == "darwin" && c.PasteComboDarwin != "" {
		return c.PasteComboDarwin
	}
	return c.PasteCombo
}

// Engine converts the on-disk timings into the engine's config
func (c *Config) Engine() autopaste.Config {
	return autopaste.Config{
		DelayBetweenPastes:     seconds(c.AutoPaste.DelayBetweenPastes),
		ArmTimeout:             seconds(c.AutoPaste.ArmTimeoutSeconds),
		RestoreClipboardAfter:  c.AutoPaste.RestoreClipboardAfter,
		UserPasteSettlingDelay: seconds(c.AutoPaste.UserPasteSettlingDelay),
	}
}

func (c *Config) Debounce() time.Duration {
	return seconds(c.AutoPaste.DebounceWindow)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "armpaste", "config.json")
}

// DataPath returns the platform-specific data directory (history database)
func DataPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, "armpaste")
}
