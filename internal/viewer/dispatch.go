package viewer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/pyramid-scene/internal/assets"
	"github.com/Faultbox/pyramid-scene/internal/engine/input"
)

// Command is a request from input that the owner of the window must carry
// out.
type Command int

const (
	CommandNone Command = iota
	CommandQuit
	CommandScreenshot
)

// Apply installs a finished asset load. A failed environment leaves the
// background empty; a failed model keeps the viewer loading.
func (c *Context) Apply(r assets.Result) {
	if r.Err != nil {
		c.log.Error("asset load failed",
			zap.String("kind", r.Kind.String()),
			zap.String("name", r.Name),
			zap.Error(r.Err))
		return
	}

	switch r.Kind {
	case assets.KindEnvironment:
		c.SetEnvironment(r.Environment)
	case assets.KindModel:
		if err := c.Populate(r.Model.Root, r.Model.Clips); err != nil {
			c.log.Error("populate failed", zap.String("name", r.Name), zap.Error(err))
		}
	}
}

// HandleEvent routes one input event. Left clicks pick, left drags orbit,
// the wheel zooms.
func (c *Context) HandleEvent(e input.Event) Command {
	switch e.Type {
	case input.EventQuit:
		return CommandQuit
	case input.EventWindowResize:
		c.Resize(e.Width, e.Height)
	case input.EventKeyDown:
		switch e.Key {
		case input.KeyEscape:
			return CommandQuit
		case input.KeyF12:
			return CommandScreenshot
		}
	case input.EventMouseWheel:
		c.Zoom(e.WheelY)
	case input.EventMouseDown, input.EventMouseMove, input.EventMouseUp:
		g := c.pointer.Handle(e)
		switch {
		case g.Click:
			c.Pick(g.X, g.Y)
		case g.Drag:
			c.Orbit(g.DX, g.DY)
		}
	}
	return CommandNone
}
