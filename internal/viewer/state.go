package viewer

// Phase is the viewer's loading state.
type Phase int

const (
	// PhaseLoading renders the background only; ticks and picks are inert.
	PhaseLoading Phase = iota
	// PhaseReady has the model and pyramid in the scene.
	PhaseReady
)

func (p Phase) String() string {
	if p == PhaseReady {
		return "ready"
	}
	return "loading"
}

// Motion is the pyramid's travel direction along X.
type Motion int

const (
	MovingNegativeX Motion = iota
	MovingPositiveX
)

// Toggle reverses the direction.
func (m Motion) Toggle() Motion {
	if m == MovingNegativeX {
		return MovingPositiveX
	}
	return MovingNegativeX
}

// Sign returns -1 or +1.
func (m Motion) Sign() float32 {
	if m == MovingPositiveX {
		return 1
	}
	return -1
}

func (m Motion) String() string {
	if m == MovingPositiveX {
		return "+x"
	}
	return "-x"
}
