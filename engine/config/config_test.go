package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hubastard/handmade/engine/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "handmade.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultsMatchCore(t *testing.T) {
	got := DefaultConfig().Core()
	want := core.DefaultConfig()
	if got != want {
		t.Fatalf("Core() = %+v, want %+v", got, want)
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
backend: headless
window:
  title: Test
  width: 640
  height: 360
buffer:
  resize: fixed
loop:
  max_frames: 3
logging:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != "headless" {
		t.Fatalf("backend = %q", cfg.Backend)
	}
	c := cfg.Core()
	if c.Title != "Test" || c.Width != 640 || c.Height != 360 {
		t.Fatalf("window = %q %dx%d", c.Title, c.Width, c.Height)
	}
	if c.Resize != core.ResizeFixed || c.MaxFrames != 3 {
		t.Fatalf("resize = %q, frames = %d", c.Resize, c.MaxFrames)
	}
	// untouched keys keep their defaults
	if c.ClassName != "HandmadeWindowClass" || !c.VSync || c.ControllerSlots != 4 {
		t.Fatalf("defaults lost: %+v", c)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HANDMADE_WINDOW_WIDTH", "320")
	t.Setenv("HANDMADE_BACKEND", "tty")
	cfg, err := Load(writeConfig(t, "window:\n  width: 640\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Width != 320 || cfg.Backend != "tty" {
		t.Fatalf("width = %d, backend = %q", cfg.Window.Width, cfg.Backend)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"size":   "window:\n  width: 0\n",
		"resize": "buffer:\n  resize: stretch\n",
		"slots":  "input:\n  controller_slots: 5\n",
		"noslot": "input:\n  controller_slots: 0\n",
		"level":  "logging:\n  level: loud\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			if err == nil || !strings.Contains(err.Error(), "validating config") {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
