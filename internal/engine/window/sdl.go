package window

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/pyramid-scene/internal/engine/input"
	"github.com/Faultbox/pyramid-scene/internal/logger"
)

// sdlWindow wraps an SDL2 window and OpenGL context.
type sdlWindow struct {
	config    Config
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	log       *zap.Logger
}

func newSDLWindow(cfg Config) (*sdlWindow, error) {
	w := &sdlWindow{
		config: cfg,
		log:    logger.Named("window"),
	}

	w.log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// OpenGL 4.1 Core Profile (max supported on macOS)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		w.log.Warn("failed to set swap interval", zap.Int("interval", interval), zap.Error(err))
	}

	fbW, fbH := w.DrawableSize()
	w.log.Info("window created",
		zap.String("backend", BackendSDL),
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("drawableWidth", fbW),
		zap.Int("drawableHeight", fbH),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)

	return w, nil
}

// Poll converts queued SDL events.
func (w *sdlWindow) Poll(in *input.Input) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			in.Push(input.Event{Type: input.EventQuit})

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				fbW, fbH := w.DrawableSize()
				in.Push(input.Event{Type: input.EventWindowResize, Width: fbW, Height: fbH})
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			ev := input.Event{Type: input.EventKeyUp, Key: sdlKey(e.Keysym.Scancode)}
			if e.Type == sdl.KEYDOWN {
				ev.Type = input.EventKeyDown
			}
			in.Push(ev)

		case *sdl.MouseMotionEvent:
			x, y := w.pixels(e.X, e.Y)
			in.Push(input.Event{Type: input.EventMouseMove, MouseX: x, MouseY: y})

		case *sdl.MouseButtonEvent:
			x, y := w.pixels(e.X, e.Y)
			ev := input.Event{Type: input.EventMouseUp, MouseX: x, MouseY: y, Button: input.Button(e.Button)}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				ev.Type = input.EventMouseDown
			}
			in.Push(ev)

		case *sdl.MouseWheelEvent:
			dy := float32(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				dy = -dy
			}
			in.Push(input.Event{Type: input.EventMouseWheel, WheelY: dy})
		}
	}
}

func (w *sdlWindow) pixels(x, y int32) (float32, float32) {
	winW, winH := w.sdlWindow.GetSize()
	fbW, fbH := w.DrawableSize()
	return toPixels(float32(x), float32(y), int(winW), int(winH), fbW, fbH)
}

func sdlKey(sc sdl.Scancode) input.Key {
	switch sc {
	case sdl.SCANCODE_ESCAPE:
		return input.KeyEscape
	case sdl.SCANCODE_F12:
		return input.KeyF12
	case sdl.SCANCODE_SPACE:
		return input.KeySpace
	default:
		return input.KeyUnknown
	}
}

// SwapBuffers swaps the OpenGL buffers.
func (w *sdlWindow) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// DrawableSize returns the framebuffer size in pixels.
func (w *sdlWindow) DrawableSize() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// SetTitle sets the window title.
func (w *sdlWindow) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}

// Close destroys the window and cleans up SDL2.
func (w *sdlWindow) Close() {
	w.log.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}

	sdl.Quit()
}
