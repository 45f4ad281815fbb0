package input

// DefaultClickSlop is how far (pixels) the pointer may travel between press
// and release for the release to still count as a click.
const DefaultClickSlop = 4

// Pointer tracks the left button to split clicks from orbit drags.
type Pointer struct {
	Slop float32

	down         bool
	dragging     bool
	startX       float32
	startY       float32
	lastX, lastY float32
}

// NewPointer creates a tracker with DefaultClickSlop.
func NewPointer() *Pointer {
	return &Pointer{Slop: DefaultClickSlop}
}

// Gesture is what a pointer event amounted to.
type Gesture struct {
	Click  bool
	X, Y   float32 // click position
	Drag   bool
	DX, DY float32 // drag delta since the previous event
}

// Handle feeds one event and reports the resulting gesture, if any.
func (p *Pointer) Handle(e Event) Gesture {
	switch e.Type {
	case EventMouseDown:
		if e.Button != ButtonLeft {
			return Gesture{}
		}
		p.down = true
		p.dragging = false
		p.startX, p.startY = e.MouseX, e.MouseY
		p.lastX, p.lastY = e.MouseX, e.MouseY

	case EventMouseMove:
		if !p.down {
			return Gesture{}
		}
		dx, dy := e.MouseX-p.lastX, e.MouseY-p.lastY
		p.lastX, p.lastY = e.MouseX, e.MouseY
		if !p.dragging {
			tx, ty := e.MouseX-p.startX, e.MouseY-p.startY
			if tx*tx+ty*ty <= p.Slop*p.Slop {
				return Gesture{}
			}
			p.dragging = true
			dx, dy = tx, ty
		}
		return Gesture{Drag: true, DX: dx, DY: dy}

	case EventMouseUp:
		if e.Button != ButtonLeft || !p.down {
			return Gesture{}
		}
		p.down = false
		if p.dragging {
			p.dragging = false
			return Gesture{}
		}
		return Gesture{Click: true, X: e.MouseX, Y: e.MouseY}
	}
	return Gesture{}
}
