// Package window handles window and OpenGL context creation.
package window

import (
	"fmt"
	"runtime"

	"github.com/Faultbox/pyramid-scene/internal/engine/input"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Backends.
const (
	BackendSDL  = "sdl"
	BackendGLFW = "glfw"
)

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	Backend    string
}

// Window is an OS window with a current OpenGL 4.1 core context.
type Window interface {
	// Poll appends pending events to in. Mouse positions and resize sizes
	// are in drawable pixels.
	Poll(in *input.Input)
	SwapBuffers()
	// DrawableSize returns the framebuffer size in pixels.
	DrawableSize() (int, int)
	SetTitle(title string)
	Close()
}

// New creates a window using the configured backend.
func New(cfg Config) (Window, error) {
	switch cfg.Backend {
	case BackendSDL, "":
		return newSDLWindow(cfg)
	case BackendGLFW:
		return newGLFWWindow(cfg)
	default:
		return nil, fmt.Errorf("unknown window backend %q", cfg.Backend)
	}
}

// toPixels converts window coordinates to drawable pixels on HiDPI displays.
func toPixels(x, y float32, winW, winH, fbW, fbH int) (float32, float32) {
	if winW > 0 && winH > 0 {
		x *= float32(fbW) / float32(winW)
		y *= float32(fbH) / float32(winH)
	}
	return x, y
}
