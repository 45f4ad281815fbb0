// Package input turns window-system events into backend-neutral events.
package input

// EventType identifies an Event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Key is a backend-neutral key code. Only keys the viewer reacts to are
// named.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyF12
	KeySpace
)

// Button is a mouse button.
type Button uint8

const (
	ButtonLeft Button = iota + 1
	ButtonMiddle
	ButtonRight
)

// Event represents a processed input event. Width and Height of a resize
// are drawable (framebuffer) pixels.
type Event struct {
	Type   EventType
	Key    Key
	Width  int
	Height int
	MouseX float32
	MouseY float32
	Button Button
	WheelY float32
}

// Input collects the events of one frame.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Reset drops the previous frame's events.
func (i *Input) Reset() {
	i.events = i.events[:0]
}

// Push records an event.
func (i *Input) Push(e Event) {
	i.events = append(i.events, e)
}

// Events returns the events since the last Reset.
func (i *Input) Events() []Event {
	return i.events
}

// QuitRequested reports whether a quit event arrived.
func (i *Input) QuitRequested() bool {
	for _, e := range i.events {
		if e.Type == EventQuit {
			return true
		}
	}
	return false
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(key Key) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == key {
			return true
		}
	}
	return false
}
