package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okvist/dfm/internal/config"
	"github.com/okvist/dfm/internal/session"
)

func envWithConfigHome(dir string) []string {
	return []string{"XDG_CONFIG_HOME=" + dir}
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	return path
}

func Test_Load_ReturnsDefaults_When_NoConfigFiles(t *testing.T) {
	t.Parallel()

	home := t.TempDir()

	cfg, sources, err := config.Load("", envWithConfigHome(home))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if sources.Global != "" || sources.Explicit != "" {
		t.Errorf("sources = %+v, want none", sources)
	}

	if cfg.StateDir != filepath.Join(home, "dfm") {
		t.Errorf("StateDir = %q", cfg.StateDir)
	}

	if cfg.HistoryLen != 15 {
		t.Errorf("HistoryLen = %d, want 15", cfg.HistoryLen)
	}
}

func Test_Load_AcceptsJSONC_When_GlobalConfigPresent(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	writeConfig(t, home, filepath.Join("dfm", "config.json"), `{
  // where state lives
  "state_dir": "/custom/state",
  "history_len": 50,
  "persist": ["marks", "cmdhist"],
}`)

	cfg, sources, err := config.Load("", envWithConfigHome(home))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if sources.Global == "" {
		t.Error("global source not recorded")
	}

	if cfg.StateDir != "/custom/state" {
		t.Errorf("StateDir = %q", cfg.StateDir)
	}

	if cfg.HistoryLen != 50 {
		t.Errorf("HistoryLen = %d", cfg.HistoryLen)
	}
}

func Test_Load_ExplicitFileOverridesGlobal(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	writeConfig(t, home, filepath.Join("dfm", "config.json"), `{"state_dir": "/global"}`)

	explicit := writeConfig(t, t.TempDir(), "custom.json", `{"state_dir": "/explicit"}`)

	cfg, sources, err := config.Load(explicit, envWithConfigHome(home))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.StateDir != "/explicit" {
		t.Errorf("StateDir = %q, want explicit value", cfg.StateDir)
	}

	if sources.Explicit != explicit {
		t.Errorf("sources.Explicit = %q", sources.Explicit)
	}
}

func Test_Load_Fails_When_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, _, err := config.Load(filepath.Join(t.TempDir(), "absent.json"),
		envWithConfigHome(t.TempDir()))
	if !errors.Is(err, config.ErrConfigFileNotFound) {
		t.Fatalf("err = %v, want ErrConfigFileNotFound", err)
	}
}

func Test_Load_Fails_When_PersistNamesUnknown(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	writeConfig(t, home, filepath.Join("dfm", "config.json"), `{"persist": ["bogus"]}`)

	_, _, err := config.Load("", envWithConfigHome(home))
	if !errors.Is(err, config.ErrUnknownPersist) {
		t.Fatalf("err = %v, want ErrUnknownPersist", err)
	}
}

func Test_PersistMask_MapsNamesToFlags(t *testing.T) {
	t.Parallel()

	mask, err := config.PersistMask([]string{"marks", "cmdhist"})
	if err != nil {
		t.Fatalf("PersistMask: %v", err)
	}

	if !mask.Has(session.PersistMarks) || !mask.Has(session.PersistCmdHist) {
		t.Error("named flags not set")
	}

	if mask.Has(session.PersistRegisters) {
		t.Error("unnamed flag set")
	}

	all, err := config.PersistMask([]string{"all"})
	if err != nil {
		t.Fatalf("PersistMask(all): %v", err)
	}

	if all != session.PersistAll {
		t.Errorf("mask = %b, want all flags", all)
	}
}

func Test_SessionConfig_CarriesResolvedMask(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		StateDir:   "/s",
		TrashDir:   "/t",
		HistoryLen: 20,
		Persist:    []string{"marks"},
	}

	sessCfg, err := cfg.SessionConfig()
	if err != nil {
		t.Fatalf("SessionConfig: %v", err)
	}

	if sessCfg.StateDir != "/s" || sessCfg.TrashDir != "/t" || sessCfg.HistoryLen != 20 {
		t.Errorf("sessCfg = %+v", sessCfg)
	}

	if sessCfg.Persist != session.PersistMarks {
		t.Errorf("Persist = %b, want marks only", sessCfg.Persist)
	}
}
