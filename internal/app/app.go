// Package app runs the viewer: window, renderer, background asset loading
// and the frame loop.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/pyramid-scene/internal/assets"
	"github.com/Faultbox/pyramid-scene/internal/config"
	"github.com/Faultbox/pyramid-scene/internal/engine/input"
	"github.com/Faultbox/pyramid-scene/internal/engine/renderer"
	"github.com/Faultbox/pyramid-scene/internal/engine/window"
	"github.com/Faultbox/pyramid-scene/internal/logger"
	"github.com/Faultbox/pyramid-scene/internal/viewer"
)

// App is the running viewer.
type App struct {
	config   *config.Config
	running  bool
	window   window.Window
	renderer *renderer.Renderer
	input    *input.Input
	assets   *assets.Manager
	loader   *assets.Loader
	viewer   *viewer.Context
	log      *zap.Logger
}

// New opens the window and prepares the scene. Assets load once Run starts.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		config: cfg,
		input:  input.New(),
		log:    logger.Named("app"),
	}

	a.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("backend", cfg.Window.Backend),
	)

	// Create window (this also creates OpenGL context)
	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Backend:    cfg.Window.Backend,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:         width,
		Height:        height,
		ScreenshotDir: cfg.Debug.ScreenshotDir,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.viewer, err = viewer.New(cfg, width, height, a.renderer)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create viewer: %w", err)
	}

	a.assets = assets.NewManager()
	if err := a.assets.AddSource(cfg.Assets.Root); err != nil {
		a.log.Warn("asset root unavailable, using working directory", zap.Error(err))
		a.assets = assets.NewManager(".")
	}
	a.loader = assets.NewLoader(a.assets, cfg.Assets.Workers)

	a.log.Info("viewer initialized")
	return a, nil
}

// Run starts background loads and drives frames until quit.
func (a *App) Run() error {
	a.running = true

	a.loader.LoadEnvironment(a.config.Assets.Environment)
	a.loader.LoadModel(a.config.Assets.Model)

	frameCount := 0
	fpsTimer := time.Now()
	lastTime := time.Now()

	a.log.Info("starting frame loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		// 1. Process input
		a.input.Reset()
		a.window.Poll(a.input)
		for _, event := range a.input.Events() {
			a.execute(a.viewer.HandleEvent(event))
		}
		if !a.running {
			break
		}

		// 2. Apply finished loads
		a.drainResults()

		// 3. Advance and render
		a.viewer.Tick()

		// 4. Present (swap buffers)
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			if a.config.Debug.ShowFPS {
				a.window.SetTitle(fmt.Sprintf("%s - %d fps", a.config.Window.Title, frameCount))
			}
			a.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("frame", dt),
				zap.String("phase", a.viewer.Phase().String()))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) execute(cmd viewer.Command) {
	switch cmd {
	case viewer.CommandQuit:
		a.running = false
	case viewer.CommandScreenshot:
		if _, err := a.renderer.Screenshot(); err != nil {
			a.log.Error("screenshot failed", zap.Error(err))
		}
	}
}

func (a *App) drainResults() {
	for {
		select {
		case r := <-a.loader.Results():
			a.viewer.Apply(r)
		default:
			return
		}
	}
}

// Close cleans up viewer resources.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.loader != nil {
		a.loader.Close()
	}
	if a.assets != nil {
		a.assets.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
