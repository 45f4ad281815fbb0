// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pyramid-scene/internal/engine/picking"
	"github.com/Faultbox/pyramid-scene/internal/engine/scene"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// BoxLines returns the 12 edges of box as 24 segment endpoints.
func BoxLines(box picking.AABB) []mgl32.Vec3 {
	lo, hi := box.Min, box.Max
	c := [8]mgl32.Vec3{
		{lo[0], lo[1], lo[2]}, {hi[0], lo[1], lo[2]}, {hi[0], lo[1], hi[2]}, {lo[0], lo[1], hi[2]},
		{lo[0], hi[1], lo[2]}, {hi[0], hi[1], lo[2]}, {hi[0], hi[1], hi[2]}, {lo[0], hi[1], hi[2]},
	}
	return []mgl32.Vec3{
		// Bottom face (4 edges)
		c[0], c[1], c[1], c[2], c[2], c[3], c[3], c[0],
		// Top face (4 edges)
		c[4], c[5], c[5], c[6], c[6], c[7], c[7], c[4],
		// Vertical edges (4 edges)
		c[0], c[4], c[1], c[5], c[2], c[6], c[3], c[7],
	}
}

// BoxHelper draws a world-space bounding box. Its object must sit directly
// under the scene root with an identity transform.
type BoxHelper struct {
	Object *scene.Object
	lines  *scene.Lines
}

// NewBoxHelper creates a hidden helper drawn in color.
func NewBoxHelper(name string, color scene.Color) *BoxHelper {
	lines := &scene.Lines{Color: color}
	o := scene.NewObject(name)
	o.Lines = lines
	o.Visible = false
	return &BoxHelper{Object: o, lines: lines}
}

// Update fits the helper to box. Empty boxes hide it.
func (h *BoxHelper) Update(box picking.AABB) {
	if box.IsEmpty() {
		h.Object.Visible = false
		return
	}
	h.lines.SetVertices(BoxLines(box))
	h.Object.Visible = true
}

// Lines returns the helper's segments.
func (h *BoxHelper) Lines() *scene.Lines {
	return h.lines
}
