// Package camera provides camera implementations for 3D rendering.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pyramid-scene/internal/engine/picking"
)

// Perspective is a pinhole camera looking from Position at Target.
type Perspective struct {
	FOV    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	projection mgl32.Mat4
	view       mgl32.Mat4
}

// NewPerspective creates a camera and computes its matrices.
func NewPerspective(fov, aspect, near, far float32) *Perspective {
	c := &Perspective{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Target: mgl32.Vec3{0, 0, -1},
		Up:     mgl32.Vec3{0, 1, 0},
	}
	c.UpdateProjection()
	c.UpdateView()
	return c
}

// UpdateProjection recomputes the projection after FOV, Aspect, Near or Far
// change.
func (c *Perspective) UpdateProjection() {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// UpdateView recomputes the view matrix after Position, Target or Up change.
func (c *Perspective) UpdateView() {
	c.view = mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// LookAt points the camera at target.
func (c *Perspective) LookAt(target mgl32.Vec3) {
	c.Target = target
	c.UpdateView()
}

// Projection returns the projection matrix.
func (c *Perspective) Projection() mgl32.Mat4 {
	return c.projection
}

// View returns the view matrix.
func (c *Perspective) View() mgl32.Mat4 {
	return c.view
}

// ViewProjection returns projection·view.
func (c *Perspective) ViewProjection() mgl32.Mat4 {
	return c.projection.Mul4(c.view)
}

// Ray returns the world-space ray through a point in normalized device
// coordinates.
func (c *Perspective) Ray(ndcX, ndcY float32) picking.Ray {
	return picking.UnprojectRay(ndcX, ndcY, c.ViewProjection().Inv())
}
