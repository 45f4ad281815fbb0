// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config holds all viewer settings.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Assets    AssetsConfig    `yaml:"assets"`
	Camera    CameraConfig    `yaml:"camera"`
	Pyramid   PyramidConfig   `yaml:"pyramid"`
	Collision CollisionConfig `yaml:"collision"`
	Timing    TimingConfig    `yaml:"timing"`
	Logging   LoggingConfig   `yaml:"logging"`
	Debug     DebugConfig     `yaml:"debug"`
}

// Window backends.
const (
	BackendSDL  = "sdl"
	BackendGLFW = "glfw"
)

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Backend    string `yaml:"backend"`
}

// AssetsConfig holds asset locations, relative to Root.
type AssetsConfig struct {
	Root        string `yaml:"root"`
	Environment string `yaml:"environment"`
	Model       string `yaml:"model"`
	Workers     int    `yaml:"workers"`
}

// CameraConfig holds projection and orbit settings.
type CameraConfig struct {
	FOV         float32    `yaml:"fov"` // vertical, degrees
	Near        float32    `yaml:"near"`
	Far         float32    `yaml:"far"`
	Position    [3]float32 `yaml:"position"`
	Target      [3]float32 `yaml:"target"`
	MinDistance float32    `yaml:"min_distance"`
	MaxDistance float32    `yaml:"max_distance"`
}

// PyramidConfig holds the procedural pyramid's shape and motion.
type PyramidConfig struct {
	BaseWidth float32    `yaml:"base_width"`
	Height    float32    `yaml:"height"`
	Color     string     `yaml:"color"` // "#rrggbb"
	Start     [3]float32 `yaml:"start"`
	Speed     float32    `yaml:"speed"`   // units per tick
	BoundX    float32    `yaml:"bound_x"` // reverse when X exceeds this
}

// Collision response modes.
const (
	CollisionEdge  = "edge"
	CollisionLevel = "level"
)

// CollisionConfig selects how overlap reverses the pyramid.
type CollisionConfig struct {
	Mode string `yaml:"mode"`
}

// TimingConfig holds fixed per-tick steps.
type TimingConfig struct {
	TimeStep      float32 `yaml:"time_step"`
	AnimationStep float32 `yaml:"animation_step"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DebugConfig holds developer toggles.
type DebugConfig struct {
	ShowBoxes     bool   `yaml:"show_boxes"`
	ShowFPS       bool   `yaml:"show_fps"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Pyramid Scene",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Backend:    BackendSDL,
		},
		Assets: AssetsConfig{
			Root:        "assets",
			Environment: "textures/equirectangular/korea.hdr",
			Model:       "models/gltf/DamagedHelmet/glTF/poulpechrome.gltf",
			Workers:     2,
		},
		Camera: CameraConfig{
			FOV:         120,
			Near:        0.1,
			Far:         1000,
			Position:    [3]float32{-1.8, 0.6, 2.7},
			Target:      [3]float32{0, 0, -0.2},
			MinDistance: 2,
			MaxDistance: 10,
		},
		Pyramid: PyramidConfig{
			BaseWidth: 2,
			Height:    1,
			Color:     "#ff0000",
			Start:     [3]float32{5, 0, 0},
			Speed:     0.05,
			BoundX:    5,
		},
		Collision: CollisionConfig{
			Mode: CollisionEdge,
		},
		Timing: TimingConfig{
			TimeStep:      0.01,
			AnimationStep: 1.0 / 50.0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Debug: DebugConfig{
			ShowBoxes:     true,
			ShowFPS:       false,
			ScreenshotDir: "screenshots",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	switch c.Window.Backend {
	case BackendSDL, BackendGLFW:
	default:
		return fmt.Errorf("unknown window backend %q", c.Window.Backend)
	}
	if c.Assets.Workers < 1 {
		return fmt.Errorf("assets.workers must be at least 1, got %d", c.Assets.Workers)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("camera.fov must be in (0, 180), got %g", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera clip range invalid: near %g, far %g", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.MinDistance > c.Camera.MaxDistance {
		return fmt.Errorf("camera.min_distance %g exceeds max_distance %g", c.Camera.MinDistance, c.Camera.MaxDistance)
	}
	if c.Pyramid.BaseWidth <= 0 || c.Pyramid.Height <= 0 {
		return fmt.Errorf("pyramid dimensions must be positive")
	}
	if _, err := ParseHexColor(c.Pyramid.Color); err != nil {
		return fmt.Errorf("pyramid.color: %w", err)
	}
	switch c.Collision.Mode {
	case CollisionEdge, CollisionLevel:
	default:
		return fmt.Errorf("unknown collision mode %q", c.Collision.Mode)
	}
	if c.Timing.TimeStep < 0 || c.Timing.AnimationStep < 0 {
		return fmt.Errorf("timing steps must not be negative")
	}
	return nil
}

// ParseHexColor parses "#rrggbb", "rrggbb" or "0xrrggbb" into a 24-bit value.
func ParseHexColor(s string) (uint32, error) {
	h := strings.TrimSpace(s)
	h = strings.TrimPrefix(h, "#")
	h = strings.TrimPrefix(strings.ToLower(h), "0x")
	if len(h) != 6 {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint32(v), nil
}
