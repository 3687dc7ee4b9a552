package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.App.Name != "Ferrite Engine" {
		t.Errorf("default app name = %q", cfg.App.Name)
	}
	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("default window size = %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Renderer.SwapchainImages != 3 {
		t.Errorf("default swapchain images = %d", cfg.Renderer.SwapchainImages)
	}
}

func TestLoadOverridesOnTopOfDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	body := `
[app]
name = "Testbed"
log_level = "debug"

[window]
width = 800
height = 600
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.App.Name != "Testbed" || cfg.App.LogLevel != "debug" {
		t.Errorf("app section = %+v", cfg.App)
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 600 {
		t.Errorf("window size = %dx%d, want 800x600", cfg.Window.Width, cfg.Window.Height)
	}
	// Untouched sections keep their defaults.
	if cfg.Assets.Dir != "assets" || !cfg.Assets.Watch {
		t.Errorf("assets section lost defaults: %+v", cfg.Assets)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `[window`},
		{"zero window", "[window]\nwidth = 0\n"},
		{"single swapchain image", "[renderer]\nswapchain_images = 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "engine.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load accepted bad configuration")
			}
		})
	}
}
