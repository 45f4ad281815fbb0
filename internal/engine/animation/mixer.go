package animation

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pyramid-scene/internal/engine/scene"
)

// Clip is a named set of tracks played together.
type Clip struct {
	Name     string
	Tracks   []*Track
	Duration float32
}

// NewClip builds a clip whose duration is its longest track.
func NewClip(name string, tracks []*Track) *Clip {
	c := &Clip{Name: name, Tracks: tracks}
	for _, t := range tracks {
		c.Duration = math32.Max(c.Duration, t.Duration())
	}
	return c
}

// LoopMode controls what happens at the end of a clip.
type LoopMode int

const (
	LoopRepeat LoopMode = iota
	LoopOnce
)

// Action is the playback state of one clip in a mixer.
type Action struct {
	Clip      *Clip
	Time      float32
	TimeScale float32
	Weight    float32
	Loop      LoopMode

	running bool
}

// Play starts or resumes the action.
func (a *Action) Play() *Action {
	a.running = true
	return a
}

// Stop halts the action and rewinds it.
func (a *Action) Stop() *Action {
	a.running = false
	a.Time = 0
	return a
}

// IsRunning reports whether the action advances on Update.
func (a *Action) IsRunning() bool {
	return a.running
}

func (a *Action) advance(dt float32) {
	a.Time += dt * a.TimeScale
	d := a.Clip.Duration
	if d <= 0 {
		a.Time = 0
		return
	}
	switch a.Loop {
	case LoopOnce:
		if a.Time >= d {
			a.Time = d
			a.running = false
		} else if a.Time < 0 {
			a.Time = 0
			a.running = false
		}
	default:
		a.Time = math32.Mod(a.Time, d)
		if a.Time < 0 {
			a.Time += d
		}
	}
}

// Mixer plays actions on the nodes of a model. Nodes driven by several
// actions receive the weight-averaged result.
type Mixer struct {
	Root    *scene.Object
	actions []*Action
	byClip  map[*Clip]*Action
	time    float32
}

// NewMixer creates a mixer for the subtree at root.
func NewMixer(root *scene.Object) *Mixer {
	return &Mixer{
		Root:   root,
		byClip: make(map[*Clip]*Action),
	}
}

// ClipAction returns the action for clip, creating it on first use.
func (m *Mixer) ClipAction(clip *Clip) *Action {
	if a, ok := m.byClip[clip]; ok {
		return a
	}
	a := &Action{Clip: clip, TimeScale: 1, Weight: 1, Loop: LoopRepeat}
	m.byClip[clip] = a
	m.actions = append(m.actions, a)
	return a
}

// Actions returns every action created by ClipAction.
func (m *Mixer) Actions() []*Action {
	return m.actions
}

// Time returns the total time advanced by Update.
func (m *Mixer) Time() float32 {
	return m.time
}

// StopAll stops every action.
func (m *Mixer) StopAll() {
	for _, a := range m.actions {
		a.Stop()
	}
}

type binding struct {
	target *scene.Object
	path   Path
}

type accum struct {
	sum    [4]float32
	weight float32
	first  mgl32.Quat
	hasQ   bool
}

// Update advances running actions by dt seconds and applies the sampled
// pose to the target nodes.
func (m *Mixer) Update(dt float32) {
	m.time += dt

	acc := make(map[binding]*accum)
	var order []binding

	for _, a := range m.actions {
		if !a.running {
			continue
		}
		a.advance(dt)
		if a.Weight <= 0 {
			continue
		}
		for _, tr := range a.Clip.Tracks {
			if tr.Target == nil || len(tr.Times) == 0 {
				continue
			}
			b := binding{tr.Target, tr.Path}
			ac, ok := acc[b]
			if !ok {
				ac = &accum{}
				acc[b] = ac
				order = append(order, b)
			}
			ac.add(tr.Path, tr.Sample(a.Time), a.Weight)
		}
	}

	for _, b := range order {
		acc[b].apply(b)
	}
}

func (ac *accum) add(p Path, v [4]float32, w float32) {
	if p == PathRotation {
		q := quatFrom(v[:])
		if !ac.hasQ {
			ac.first = q
			ac.hasQ = true
		} else if ac.first.Dot(q) < 0 {
			// Keep all samples on the same hemisphere.
			q = q.Scale(-1)
		}
		v = quatTo(q)
	}
	for i := range ac.sum {
		ac.sum[i] += v[i] * w
	}
	ac.weight += w
}

func (ac *accum) apply(b binding) {
	if ac.weight == 0 {
		return
	}
	inv := 1 / ac.weight
	switch b.path {
	case PathTranslation:
		b.target.Position = mgl32.Vec3{ac.sum[0] * inv, ac.sum[1] * inv, ac.sum[2] * inv}
	case PathScale:
		b.target.Scale = mgl32.Vec3{ac.sum[0] * inv, ac.sum[1] * inv, ac.sum[2] * inv}
	case PathRotation:
		b.target.Rotation = quatFrom(ac.sum[:]).Normalize()
	}
}
