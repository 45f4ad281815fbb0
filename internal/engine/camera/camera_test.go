package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestRayThroughCenter(t *testing.T) {
	cam := NewPerspective(60, 16.0/9.0, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 0, 5}
	cam.LookAt(mgl32.Vec3{0, 0, 0})

	r := cam.Ray(0, 0)
	assert.InDelta(t, 0, r.Origin.X(), 1e-4)
	assert.InDelta(t, 0, r.Origin.Y(), 1e-4)
	assert.InDelta(t, 4.9, r.Origin.Z(), 1e-3, "origin on the near plane")
	assert.InDelta(t, -1, r.Direction.Z(), 1e-4)
}

func TestRayCorners(t *testing.T) {
	cam := NewPerspective(90, 1, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 0, 0}
	cam.LookAt(mgl32.Vec3{0, 0, -1})

	// 90° FOV at aspect 1: the top-right corner is 45° off axis both ways.
	r := cam.Ray(1, 1)
	assert.InDelta(t, r.Direction.X(), r.Direction.Y(), 1e-4)
	assert.InDelta(t, -r.Direction.Z(), r.Direction.X(), 1e-4)
	assert.Greater(t, r.Direction.X(), float32(0))
}

func TestAspectChangesProjection(t *testing.T) {
	cam := NewPerspective(120, 1, 0.1, 1000)
	before := cam.Projection()
	cam.Aspect = 2
	cam.UpdateProjection()
	assert.NotEqual(t, before, cam.Projection())
	assert.InDelta(t, before[0]/2, cam.Projection()[0], 1e-6)
}

func TestOrbitReproducesPosition(t *testing.T) {
	cam := NewPerspective(120, 1, 0.1, 1000)
	cam.Position = mgl32.Vec3{-1.8, 0.6, 2.7}
	target := mgl32.Vec3{0, 0, -0.2}

	orbit := NewOrbitCamera(cam, target, 2, 10)
	assert.True(t, orbit.Position().ApproxEqualThreshold(cam.Position, 1e-4))

	orbit.Apply(cam)
	assert.Equal(t, target, cam.Target)
}

func TestOrbitClamps(t *testing.T) {
	cam := NewPerspective(60, 1, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 0, 5}
	orbit := NewOrbitCamera(cam, mgl32.Vec3{}, 2, 10)

	for i := 0; i < 100; i++ {
		orbit.HandleZoom(1)
	}
	assert.Equal(t, float32(2), orbit.Distance)

	for i := 0; i < 100; i++ {
		orbit.HandleZoom(-1)
	}
	assert.Equal(t, float32(10), orbit.Distance)

	orbit.HandleDrag(0, 10000)
	assert.Equal(t, orbit.MaxPitch, orbit.RotationX)

	before := orbit.RotationY
	orbit.HandleDrag(100, 0)
	assert.InDelta(t, before-0.5, orbit.RotationY, 1e-6)
}
