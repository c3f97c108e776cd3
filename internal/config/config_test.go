package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if err := cfg.Drag.Resolver().Validate(); err != nil {
		t.Errorf("default drag config invalid: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.History.MaxEntries != Default().History.MaxEntries {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockstorm.toml")
	writeFile(t, path, `
[drag]
horizontal_left = 0.2
horizontal_right = 0.8
non_nestable = ["divider"]

[history]
max_entries = 50

[handlers]
scripts = ["callout.lua"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Drag.HorizontalLeft != 0.2 || cfg.Drag.HorizontalRight != 0.8 {
		t.Errorf("drag = %+v", cfg.Drag)
	}
	if cfg.Drag.VerticalTop != Default().Drag.VerticalTop {
		t.Error("unset key lost its default")
	}
	if len(cfg.Drag.NonNestable) != 1 || cfg.Drag.NonNestable[0] != "divider" {
		t.Errorf("non_nestable = %v", cfg.Drag.NonNestable)
	}
	if cfg.History.MaxEntries != 50 || len(cfg.Handlers.Scripts) != 1 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if r := cfg.Drag.Resolver(); !r.IsNestable("image") || r.IsNestable("divider") {
		t.Error("Resolver() did not carry non_nestable")
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("bad.toml", []byte("[drag\nvertical_top = 1")); err == nil {
		t.Fatal("expected syntax error")
	} else {
		var perr *ParseError
		if !errors.As(err, &perr) || perr.Path != "bad.toml" {
			t.Errorf("error = %v, want ParseError", err)
		}
	}

	if _, err := Parse("unknown.toml", []byte("[drag]\nwobble = 1\n")); err == nil {
		t.Error("unknown key should be rejected")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"thresholds", func(c *Config) { c.Drag.VerticalTop = 0.9 }},
		{"history", func(c *Config) { c.History.MaxEntries = 0 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"script", func(c *Config) { c.Handlers.Scripts = []string{" "} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mut(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Errorf("Validate() = %v, want ErrValidationFailed", err)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"BLOCKSTORM_LOG_LEVEL":   " DEBUG ",
		"BLOCKSTORM_STORE_PATH":  "/tmp/changes.db",
		"BLOCKSTORM_HISTORY_MAX": "25",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := Default()
	if err := cfg.applyEnv(lookup); err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" || cfg.Store.Path != "/tmp/changes.db" || cfg.History.MaxEntries != 25 {
		t.Errorf("cfg = %+v", cfg)
	}

	env["BLOCKSTORM_HISTORY_MAX"] = "lots"
	if err := Default().applyEnv(lookup); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("bad integer error = %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	data, err := Default().Encode()
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Parse("encoded", data)
	if err != nil {
		t.Fatalf("Parse(Encode()) = %v\n%s", err, data)
	}
	if cfg.Drag.IndicatorWidth != Default().Drag.IndicatorWidth {
		t.Errorf("round trip lost values:\n%s", data)
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blockstorm.toml")
	writeFile(t, path, "[history]\nmax_entries = 10\n")

	var (
		mu     sync.Mutex
		loaded []*Config
		errs   []error
	)
	reloaded := make(chan struct{}, 8)
	w, err := NewWatcher(path, func(cfg *Config) {
		mu.Lock()
		loaded = append(loaded, cfg)
		mu.Unlock()
		reloaded <- struct{}{}
	}, WithDebounce(20*time.Millisecond), WithErrorHandler(func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	// Unrelated files in the directory are ignored.
	writeFile(t, filepath.Join(dir, "other.toml"), "x = 1\n")
	writeFile(t, path, "[history]\nmax_entries = 20\n")

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	mu.Lock()
	defer mu.Unlock()
	if got := loaded[len(loaded)-1].History.MaxEntries; got != 20 {
		t.Errorf("reloaded max_entries = %d, want 20", got)
	}
	if len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestWatcherClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockstorm.toml")
	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}
