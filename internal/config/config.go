// Package config loads the program configuration: where state lives,
// how long histories are, and which state sections persist across runs.
// Config files are JSONC; comments and trailing commas are allowed.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/okvist/dfm/internal/session"
)

var (
	// ErrConfigFileNotFound means an explicitly requested config file
	// does not exist.
	ErrConfigFileNotFound = errors.New("config file not found")

	// ErrConfigInvalid means a config file could not be parsed or failed
	// validation.
	ErrConfigInvalid = errors.New("invalid config file")

	// ErrUnknownPersist means the persist list names an unknown state
	// section.
	ErrUnknownPersist = errors.New("unknown persist section")
)

// Config holds all configuration options.
type Config struct {
	StateDir   string   `json:"state_dir"`
	TrashDir   string   `json:"trash_dir,omitempty"`
	HistoryLen int      `json:"history_len,omitempty"`
	Persist    []string `json:"persist,omitempty"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global   string // Path to global config if loaded, empty otherwise
	Explicit string // Path to explicit config if loaded, empty otherwise
}

// Default returns the default configuration. The state directory
// follows XDG conventions; the trash directory lives inside it.
func Default(env []string) Config {
	stateDir := filepath.Join(configHome(env), "dfm")

	return Config{
		StateDir:   stateDir,
		TrashDir:   filepath.Join(stateDir, "trash"),
		HistoryLen: 15,
		Persist:    []string{"all"},
	}
}

// configHome resolves $XDG_CONFIG_HOME, checking the provided env slice
// before the process environment, and falling back to ~/.config.
func configHome(env []string) string {
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok {
			return after
		}
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".config")
	}

	return ""
}

// Load loads configuration with the following precedence (highest
// wins): defaults, the global config file at
// $XDG_CONFIG_HOME/dfm/config.json, then an explicit config file when
// configPath is non-empty. The explicit file must exist.
func Load(configPath string, env []string) (Config, Sources, error) {
	cfg := Default(env)

	var sources Sources

	globalPath := filepath.Join(configHome(env), "dfm", "config.json")

	globalCfg, loaded, err := loadConfigFile(globalPath, false)
	if err != nil {
		return Config{}, Sources{}, err
	}

	if loaded {
		sources.Global = globalPath
		cfg = mergeConfig(cfg, globalCfg)
	}

	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr != nil {
			return Config{}, Sources{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}

		explicitCfg, _, err := loadConfigFile(configPath, true)
		if err != nil {
			return Config{}, Sources{}, err
		}

		sources.Explicit = configPath
		cfg = mergeConfig(cfg, explicitCfg)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, Sources{}, err
	}

	return cfg, sources, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing
// files return zero config.
func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		if mustExist {
			return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}

		return Config{}, false, nil
	}

	cfg, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.StateDir != "" {
		base.StateDir = overlay.StateDir
	}

	if overlay.TrashDir != "" {
		base.TrashDir = overlay.TrashDir
	}

	if overlay.HistoryLen > 0 {
		base.HistoryLen = overlay.HistoryLen
	}

	if overlay.Persist != nil {
		base.Persist = overlay.Persist
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.StateDir == "" {
		return fmt.Errorf("%w: state_dir is empty", ErrConfigInvalid)
	}

	_, err := PersistMask(cfg.Persist)

	return err
}

// persistNames maps persist-list entries to persistence categories.
var persistNames = map[string]session.Persist{
	"options":     session.PersistOptions,
	"assocs":      session.PersistAssocs,
	"commands":    session.PersistCommands,
	"marks":       session.PersistMarks,
	"bookmarks":   session.PersistBookmarks,
	"tui":         session.PersistTUI,
	"dhistory":    session.PersistDHistory,
	"state":       session.PersistState,
	"cmdhist":     session.PersistCmdHist,
	"searchhist":  session.PersistSearchHist,
	"prompthist":  session.PersistPromptHist,
	"filterhist":  session.PersistFilterHist,
	"registers":   session.PersistRegisters,
	"dirstack":    session.PersistDirStack,
	"savedirs":    session.PersistSaveDirs,
	"colorscheme": session.PersistColorScheme,
	"all":         session.PersistAll,
}

// PersistMask turns the persist list into the corresponding flag set.
func PersistMask(names []string) (session.Persist, error) {
	var mask session.Persist

	for _, name := range names {
		flag, ok := persistNames[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownPersist, name)
		}

		mask |= flag
	}

	return mask, nil
}

// SessionConfig converts the file-level config into the session's
// startup configuration.
func (c Config) SessionConfig() (session.Config, error) {
	mask, err := PersistMask(c.Persist)
	if err != nil {
		return session.Config{}, err
	}

	return session.Config{
		StateDir:   c.StateDir,
		TrashDir:   c.TrashDir,
		HistoryLen: c.HistoryLen,
		Persist:    mask,
	}, nil
}

// FormatConfig returns the config as formatted JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}
