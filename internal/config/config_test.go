package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if cfg.Window.Backend != BackendSDL {
		t.Errorf("expected backend sdl, got %s", cfg.Window.Backend)
	}

	if cfg.Camera.FOV != 120 {
		t.Errorf("expected fov 120, got %g", cfg.Camera.FOV)
	}
	if cfg.Camera.Position != [3]float32{-1.8, 0.6, 2.7} {
		t.Errorf("unexpected camera position %v", cfg.Camera.Position)
	}
	if cfg.Camera.MinDistance != 2 || cfg.Camera.MaxDistance != 10 {
		t.Errorf("expected orbit distance 2..10, got %g..%g", cfg.Camera.MinDistance, cfg.Camera.MaxDistance)
	}

	if cfg.Pyramid.BoundX != 5 {
		t.Errorf("expected bound 5, got %g", cfg.Pyramid.BoundX)
	}
	if cfg.Pyramid.Speed != 0.05 {
		t.Errorf("expected speed 0.05, got %g", cfg.Pyramid.Speed)
	}
	if cfg.Timing.TimeStep != 0.01 {
		t.Errorf("expected time step 0.01, got %g", cfg.Timing.TimeStep)
	}
	if cfg.Timing.AnimationStep != 0.02 {
		t.Errorf("expected animation step 0.02, got %g", cfg.Timing.AnimationStep)
	}
	if cfg.Collision.Mode != CollisionEdge {
		t.Errorf("expected collision mode edge, got %s", cfg.Collision.Mode)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  backend: glfw

assets:
  root: /srv/scene
  model: models/box.gltf

camera:
  fov: 75
  position: [0, 1, 5]

pyramid:
  color: "#00ff00"
  bound_x: 8

collision:
  mode: level

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Window.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Window.Backend != BackendGLFW {
		t.Errorf("expected backend glfw, got %s", cfg.Window.Backend)
	}
	if cfg.Assets.Root != "/srv/scene" {
		t.Errorf("expected asset root /srv/scene, got %s", cfg.Assets.Root)
	}
	if cfg.Assets.Environment != Default().Assets.Environment {
		t.Errorf("environment should keep its default, got %s", cfg.Assets.Environment)
	}
	if cfg.Camera.FOV != 75 {
		t.Errorf("expected fov 75, got %g", cfg.Camera.FOV)
	}
	if cfg.Camera.Position != [3]float32{0, 1, 5} {
		t.Errorf("expected position [0 1 5], got %v", cfg.Camera.Position)
	}
	if cfg.Camera.Near != 0.1 {
		t.Errorf("near should keep its default, got %g", cfg.Camera.Near)
	}
	if cfg.Pyramid.Color != "#00ff00" {
		t.Errorf("expected color #00ff00, got %s", cfg.Pyramid.Color)
	}
	if cfg.Pyramid.BoundX != 8 {
		t.Errorf("expected bound 8, got %g", cfg.Pyramid.BoundX)
	}
	if cfg.Collision.Mode != CollisionLevel {
		t.Errorf("expected collision mode level, got %s", cfg.Collision.Mode)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "typo.yaml")
	if err := os.WriteFile(configPath, []byte("pyramid:\n  sped: 1\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error for unknown key, got nil")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, []byte("\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Errorf("empty file should be accepted, got %v", err)
	}
	if cfg.Window.Width != 1280 {
		t.Errorf("expected defaults to survive, got width %d", cfg.Window.Width)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"unknown backend", func(c *Config) { c.Window.Backend = "x11" }},
		{"no workers", func(c *Config) { c.Assets.Workers = 0 }},
		{"fov too wide", func(c *Config) { c.Camera.FOV = 180 }},
		{"far before near", func(c *Config) { c.Camera.Far = 0.05 }},
		{"min over max distance", func(c *Config) { c.Camera.MinDistance = 20 }},
		{"flat pyramid", func(c *Config) { c.Pyramid.Height = 0 }},
		{"bad color", func(c *Config) { c.Pyramid.Color = "red" }},
		{"unknown collision mode", func(c *Config) { c.Collision.Mode = "bounce" }},
		{"negative step", func(c *Config) { c.Timing.TimeStep = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"#ff0000", 0xff0000, false},
		{"00FF00", 0x00ff00, false},
		{"0x0000ff", 0x0000ff, false},
		{"#fff", 0, true},
		{"#gg0000", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseHexColor(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHexColor(%q): unexpected error %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%q): expected %06x, got %06x", tt.in, tt.want, got)
		}
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Debug.ShowFPS {
					t.Error("expected show_fps to be enabled with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "asset flags",
			setup: func() {
				*flagAssets = "/data"
				*flagModel = "fox.glb"
				*flagEnv = "sky.hdr"
				*flagBackend = BackendGLFW
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Assets.Root != "/data" || cfg.Assets.Model != "fox.glb" || cfg.Assets.Environment != "sky.hdr" {
					t.Errorf("asset flags not applied: %+v", cfg.Assets)
				}
				if cfg.Window.Backend != BackendGLFW {
					t.Errorf("expected backend glfw, got %s", cfg.Window.Backend)
				}
			},
			teardown: func() {
				*flagAssets = ""
				*flagModel = ""
				*flagEnv = ""
				*flagBackend = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("collision:\n  mode: bounce\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject an invalid collision mode")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Pyramid.Color = "#123456"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	if loaded.Pyramid.Color != "#123456" {
		t.Errorf("expected saved color #123456, got %s", loaded.Pyramid.Color)
	}
}
