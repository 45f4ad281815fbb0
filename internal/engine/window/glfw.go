package window

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/Faultbox/pyramid-scene/internal/engine/input"
	"github.com/Faultbox/pyramid-scene/internal/logger"
)

// glfwWindow wraps a GLFW window. Callbacks queue events until Poll.
type glfwWindow struct {
	config  Config
	win     *glfw.Window
	pending []input.Event
	cursorX float32
	cursorY float32
	log     *zap.Logger
}

func newGLFWWindow(cfg Config) (*glfwWindow, error) {
	w := &glfwWindow{
		config: cfg,
		log:    logger.Named("window"),
	}

	w.log.Info("initializing GLFW")
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw.Init failed: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.True)

	var monitor *glfw.Monitor
	width, height := cfg.Width, cfg.Height
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		if mode := monitor.GetVideoMode(); mode != nil {
			width, height = mode.Width, mode.Height
		}
	}

	win, err := glfw.CreateWindow(width, height, cfg.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw.CreateWindow failed: %w", err)
	}
	w.win = win
	win.MakeContextCurrent()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	win.SetFramebufferSizeCallback(w.onFramebufferSize)
	win.SetCursorPosCallback(w.onCursorPos)
	win.SetMouseButtonCallback(w.onMouseButton)
	win.SetScrollCallback(w.onScroll)
	win.SetKeyCallback(w.onKey)

	fbW, fbH := w.DrawableSize()
	w.log.Info("window created",
		zap.String("backend", BackendGLFW),
		zap.String("title", cfg.Title),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("drawableWidth", fbW),
		zap.Int("drawableHeight", fbH),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

func (w *glfwWindow) onFramebufferSize(_ *glfw.Window, width, height int) {
	w.pending = append(w.pending, input.Event{Type: input.EventWindowResize, Width: width, Height: height})
}

func (w *glfwWindow) onCursorPos(_ *glfw.Window, x, y float64) {
	winW, winH := w.win.GetSize()
	fbW, fbH := w.win.GetFramebufferSize()
	w.cursorX, w.cursorY = toPixels(float32(x), float32(y), winW, winH, fbW, fbH)
	w.pending = append(w.pending, input.Event{Type: input.EventMouseMove, MouseX: w.cursorX, MouseY: w.cursorY})
}

func (w *glfwWindow) onMouseButton(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	var b input.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = input.ButtonLeft
	case glfw.MouseButtonMiddle:
		b = input.ButtonMiddle
	case glfw.MouseButtonRight:
		b = input.ButtonRight
	default:
		return
	}
	ev := input.Event{Type: input.EventMouseUp, Button: b, MouseX: w.cursorX, MouseY: w.cursorY}
	if action == glfw.Press {
		ev.Type = input.EventMouseDown
	}
	w.pending = append(w.pending, ev)
}

func (w *glfwWindow) onScroll(_ *glfw.Window, _, yoff float64) {
	w.pending = append(w.pending, input.Event{Type: input.EventMouseWheel, WheelY: float32(yoff)})
}

func (w *glfwWindow) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}
	ev := input.Event{Type: input.EventKeyUp, Key: glfwKey(key)}
	if action == glfw.Press {
		ev.Type = input.EventKeyDown
	}
	w.pending = append(w.pending, ev)
}

func glfwKey(k glfw.Key) input.Key {
	switch k {
	case glfw.KeyEscape:
		return input.KeyEscape
	case glfw.KeyF12:
		return input.KeyF12
	case glfw.KeySpace:
		return input.KeySpace
	default:
		return input.KeyUnknown
	}
}

// Poll processes window-system events and hands queued ones to in.
func (w *glfwWindow) Poll(in *input.Input) {
	glfw.PollEvents()
	for _, e := range w.pending {
		in.Push(e)
	}
	w.pending = w.pending[:0]
	if w.win.ShouldClose() {
		in.Push(input.Event{Type: input.EventQuit})
	}
}

// SwapBuffers swaps the OpenGL buffers.
func (w *glfwWindow) SwapBuffers() {
	w.win.SwapBuffers()
}

// DrawableSize returns the framebuffer size in pixels.
func (w *glfwWindow) DrawableSize() (int, int) {
	return w.win.GetFramebufferSize()
}

// SetTitle sets the window title.
func (w *glfwWindow) SetTitle(title string) {
	w.win.SetTitle(title)
}

// Close destroys the window and terminates GLFW.
func (w *glfwWindow) Close() {
	w.log.Info("closing window")
	if w.win != nil {
		w.win.Destroy()
	}
	glfw.Terminate()
}
