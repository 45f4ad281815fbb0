package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits a Perspective camera around a center point.
type OrbitCamera struct {
	// Center point to orbit around
	Center mgl32.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit whose spherical coordinates reproduce the
// camera's current position around center.
func NewOrbitCamera(cam *Perspective, center mgl32.Vec3, minDistance, maxDistance float32) *OrbitCamera {
	c := &OrbitCamera{
		Center:          center,
		MinDistance:     minDistance,
		MaxDistance:     maxDistance,
		MinPitch:        -1.55,
		MaxPitch:        1.55,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}

	offset := cam.Position.Sub(center)
	c.Distance = offset.Len()
	if c.Distance > 0 {
		c.RotationX = math32.Asin(mgl32.Clamp(offset.Y()/c.Distance, -1, 1))
		c.RotationY = math32.Atan2(offset.X(), offset.Z())
	}
	c.clamp()
	return c
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	sinP, cosP := math32.Sincos(c.RotationX)
	sinY, cosY := math32.Sincos(c.RotationY)
	return c.Center.Add(mgl32.Vec3{
		c.Distance * cosP * sinY,
		c.Distance * sinP,
		c.Distance * cosP * cosY,
	})
}

// Apply moves cam to the orbit position, looking at the center.
func (c *OrbitCamera) Apply(cam *Perspective) {
	cam.Position = c.Position()
	cam.Target = c.Center
	cam.UpdateView()
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.clamp()
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.clamp()
}

func (c *OrbitCamera) clamp() {
	c.RotationX = mgl32.Clamp(c.RotationX, c.MinPitch, c.MaxPitch)
	if c.MaxDistance > 0 {
		c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
	}
}
