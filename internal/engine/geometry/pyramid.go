package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// PyramidBaseVertices is the number of vertices on the pyramid base.
const PyramidBaseVertices = 4

// Pyramid builds a pyramid with a square base of diagonal width lying in the
// z=0 plane and its apex at (0, 0, height). Vertex i of the base sits at angle
// i·90° on a circle of radius width/2; the apex is vertex 4.
//
// The side faces wind outward. The two base triangles (0-1-2, 0-2-3) wind
// toward the apex, so their normals point into the solid; render the pyramid
// double-sided.
func Pyramid(width, height float32) *Geometry {
	r := width / 2
	g := &Geometry{
		Positions: make([]mgl32.Vec3, 0, PyramidBaseVertices+1),
		UVs:       make([]mgl32.Vec2, 0, PyramidBaseVertices+1),
	}

	for i := 0; i < PyramidBaseVertices; i++ {
		angle := float32(i) / PyramidBaseVertices * 2 * math32.Pi
		x := math32.Cos(angle) * r
		y := math32.Sin(angle) * r
		g.Positions = append(g.Positions, mgl32.Vec3{x, y, 0})
		g.UVs = append(g.UVs, planarUV(x, y, width))
	}
	g.Positions = append(g.Positions, mgl32.Vec3{0, 0, height})
	g.UVs = append(g.UVs, mgl32.Vec2{0.5, 0.5})

	apex := uint32(PyramidBaseVertices)
	for i := uint32(0); i < PyramidBaseVertices; i++ {
		g.Indices = append(g.Indices, i, (i+1)%PyramidBaseVertices, apex)
	}
	g.Indices = append(g.Indices, 0, 1, 2, 0, 2, 3)

	g.ComputeVertexNormals()
	return g
}

// planarUV projects a base point onto [0,1]² so u runs along X.
func planarUV(x, y, width float32) mgl32.Vec2 {
	return mgl32.Vec2{0.5 + x/width, 0.5 + y/width}
}
