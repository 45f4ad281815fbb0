// Package animation plays keyframe clips on scene nodes.
package animation

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pyramid-scene/internal/engine/scene"
)

// Path is the node property a track animates.
type Path int

const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

func (p Path) String() string {
	switch p {
	case PathTranslation:
		return "translation"
	case PathRotation:
		return "rotation"
	case PathScale:
		return "scale"
	default:
		return fmt.Sprintf("Path(%d)", int(p))
	}
}

// Components returns the number of floats per value: 4 for rotations
// (x, y, z, w quaternion), 3 otherwise.
func (p Path) Components() int {
	if p == PathRotation {
		return 4
	}
	return 3
}

// Interpolation selects how values between keyframes are computed.
type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	// InterpolationCubicSpline stores in-tangent, value, out-tangent per key.
	InterpolationCubicSpline
)

// Track animates one property of one node.
type Track struct {
	Target        *scene.Object
	Path          Path
	Interpolation Interpolation
	Times         []float32 // seconds, ascending
	Values        []float32
}

// Validate checks that times and values agree.
func (t *Track) Validate() error {
	if t.Target == nil {
		return fmt.Errorf("%s track has no target", t.Path)
	}
	if len(t.Times) == 0 {
		return fmt.Errorf("%s track has no keyframes", t.Path)
	}
	stride := t.stride()
	if len(t.Values) != len(t.Times)*stride {
		return fmt.Errorf("%s track: %d values for %d keys (stride %d)", t.Path, len(t.Values), len(t.Times), stride)
	}
	for i := 1; i < len(t.Times); i++ {
		if t.Times[i] < t.Times[i-1] {
			return fmt.Errorf("%s track: key times not ascending at %d", t.Path, i)
		}
	}
	return nil
}

// Duration returns the time of the last keyframe.
func (t *Track) Duration() float32 {
	if len(t.Times) == 0 {
		return 0
	}
	return t.Times[len(t.Times)-1]
}

func (t *Track) stride() int {
	if t.Interpolation == InterpolationCubicSpline {
		return t.Path.Components() * 3
	}
	return t.Path.Components()
}

// value returns the keyframe value at key i (the middle element for cubic).
func (t *Track) value(i int) []float32 {
	n := t.Path.Components()
	s := t.stride()
	off := i * s
	if t.Interpolation == InterpolationCubicSpline {
		off += n
	}
	return t.Values[off : off+n]
}

func (t *Track) inTangent(i int) []float32 {
	n := t.Path.Components()
	off := i * t.stride()
	return t.Values[off : off+n]
}

func (t *Track) outTangent(i int) []float32 {
	n := t.Path.Components()
	off := i*t.stride() + 2*n
	return t.Values[off : off+n]
}

// Sample evaluates the track at time (seconds). Times before the first or
// after the last key hold the end values.
func (t *Track) Sample(time float32) [4]float32 {
	var out [4]float32
	n := t.Path.Components()

	// Find surrounding keyframes.
	next := sort.Search(len(t.Times), func(i int) bool { return t.Times[i] > time })
	if next == 0 {
		copy(out[:n], t.value(0))
		return out
	}
	prev := next - 1
	if next == len(t.Times) {
		copy(out[:n], t.value(prev))
		return out
	}

	t0, t1 := t.Times[prev], t.Times[next]
	span := t1 - t0
	alpha := float32(0)
	if span > 0 {
		alpha = (time - t0) / span
	}

	switch t.Interpolation {
	case InterpolationStep:
		copy(out[:n], t.value(prev))
	case InterpolationCubicSpline:
		hermite(out[:n], t.value(prev), t.outTangent(prev), t.value(next), t.inTangent(next), alpha, span)
		if t.Path == PathRotation {
			out = normalizeQuat(out)
		}
	default:
		if t.Path == PathRotation {
			q := quatFrom(t.value(prev)).Normalize()
			r := quatFrom(t.value(next)).Normalize()
			out = quatTo(mgl32.QuatSlerp(q, r, alpha))
		} else {
			a, b := t.value(prev), t.value(next)
			for i := 0; i < n; i++ {
				out[i] = a[i] + (b[i]-a[i])*alpha
			}
		}
	}
	return out
}

// hermite evaluates the glTF cubic spline between v0 and v1 with tangents
// scaled by the key interval.
func hermite(dst, v0, b0, v1, a1 []float32, s, span float32) {
	s2 := s * s
	s3 := s2 * s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2
	for i := range dst {
		dst[i] = h00*v0[i] + h10*span*b0[i] + h01*v1[i] + h11*span*a1[i]
	}
}

// quatFrom reads an (x, y, z, w) slice.
func quatFrom(v []float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}

func quatTo(q mgl32.Quat) [4]float32 {
	return [4]float32{q.V[0], q.V[1], q.V[2], q.W}
}

func normalizeQuat(v [4]float32) [4]float32 {
	return quatTo(quatFrom(v[:]).Normalize())
}
