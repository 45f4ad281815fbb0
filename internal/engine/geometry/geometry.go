// Package geometry holds indexed triangle meshes on the CPU side.
package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pyramid-scene/internal/engine/picking"
)

// Geometry is an indexed triangle list with optional skinning attributes.
// Normals, UVs, Joints and Weights are either empty or one per position.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32

	// Skinning: four joint influences per vertex.
	Joints  [][4]uint16
	Weights []mgl32.Vec4
}

// FloatsPerVertex is the interleaved layout size: position, normal, uv.
const FloatsPerVertex = 8

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	if g.Indices == nil {
		return len(g.Positions) / 3
	}
	return len(g.Indices) / 3
}

// Triangle returns the vertex indices of triangle i.
func (g *Geometry) Triangle(i int) (a, b, c uint32) {
	if g.Indices == nil {
		n := uint32(i * 3)
		return n, n + 1, n + 2
	}
	return g.Indices[i*3], g.Indices[i*3+1], g.Indices[i*3+2]
}

// Skinned reports whether the geometry carries joint influences.
func (g *Geometry) Skinned() bool {
	return len(g.Joints) > 0 && len(g.Joints) == len(g.Positions) && len(g.Weights) == len(g.Positions)
}

// Validate checks attribute lengths and index ranges.
func (g *Geometry) Validate() error {
	n := len(g.Positions)
	if len(g.Normals) != 0 && len(g.Normals) != n {
		return fmt.Errorf("normals: have %d, want %d", len(g.Normals), n)
	}
	if len(g.UVs) != 0 && len(g.UVs) != n {
		return fmt.Errorf("uvs: have %d, want %d", len(g.UVs), n)
	}
	if len(g.Joints) != len(g.Weights) {
		return fmt.Errorf("joints/weights mismatch: %d vs %d", len(g.Joints), len(g.Weights))
	}
	if len(g.Joints) != 0 && len(g.Joints) != n {
		return fmt.Errorf("joints: have %d, want %d", len(g.Joints), n)
	}
	if g.Indices == nil {
		if n%3 != 0 {
			return fmt.Errorf("non-indexed vertex count %d is not a multiple of 3", n)
		}
		return nil
	}
	if len(g.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(g.Indices))
	}
	for i, idx := range g.Indices {
		if int(idx) >= n {
			return fmt.Errorf("index %d at %d out of range (%d vertices)", idx, i, n)
		}
	}
	return nil
}

// Bounds returns the local-space bounding box of the positions.
func (g *Geometry) Bounds() picking.AABB {
	box := picking.EmptyAABB()
	for _, p := range g.Positions {
		box.ExpandByPoint(p)
	}
	return box
}

// ComputeVertexNormals sets each vertex normal to the normalized sum of the
// face normals of every triangle using it. Larger faces weigh more since the
// face normals are not normalized before summing.
func (g *Geometry) ComputeVertexNormals() {
	normals := make([]mgl32.Vec3, len(g.Positions))
	for i := 0; i < g.TriangleCount(); i++ {
		a, b, c := g.Triangle(i)
		pa, pb, pc := g.Positions[a], g.Positions[b], g.Positions[c]
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i, n := range normals {
		if l := n.Len(); l > 0 {
			normals[i] = n.Mul(1 / l)
		}
	}
	g.Normals = normals
}

// Interleave packs position, normal and uv into one float slice for upload.
// positions and normals override g.Positions and g.Normals when non-nil
// (skinned poses).
func (g *Geometry) Interleave(positions, normals []mgl32.Vec3) []float32 {
	if positions == nil {
		positions = g.Positions
	}
	if normals == nil {
		normals = g.Normals
	}
	out := make([]float32, 0, len(positions)*FloatsPerVertex)
	for i, p := range positions {
		var n mgl32.Vec3
		if i < len(normals) {
			n = normals[i]
		}
		var uv mgl32.Vec2
		if i < len(g.UVs) {
			uv = g.UVs[i]
		}
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	return out
}

// Clone returns a deep copy.
func (g *Geometry) Clone() *Geometry {
	return &Geometry{
		Positions: append([]mgl32.Vec3(nil), g.Positions...),
		Normals:   append([]mgl32.Vec3(nil), g.Normals...),
		UVs:       append([]mgl32.Vec2(nil), g.UVs...),
		Indices:   append([]uint32(nil), g.Indices...),
		Joints:    append([][4]uint16(nil), g.Joints...),
		Weights:   append([]mgl32.Vec4(nil), g.Weights...),
	}
}
