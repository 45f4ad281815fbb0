package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pyramid-scene/internal/engine/geometry"
)

// Mesh binds geometry to a material, optionally skinned to joints.
type Mesh struct {
	Geometry *geometry.Geometry
	Material Material
	Skin     *Skin
}

// Skin deforms a mesh by a set of joint nodes. InverseBind[i] maps mesh
// space into the bind-pose space of Joints[i].
type Skin struct {
	Joints      []*Object
	InverseBind []mgl32.Mat4
}

// JointMatrices returns jointWorld·inverseBind for each joint.
func (s *Skin) JointMatrices() []mgl32.Mat4 {
	out := make([]mgl32.Mat4, len(s.Joints))
	for i, j := range s.Joints {
		ib := mgl32.Ident4()
		if i < len(s.InverseBind) {
			ib = s.InverseBind[i]
		}
		out[i] = j.World().Mul4(ib)
	}
	return out
}

// Lines is a set of line segments drawn as an overlay; Vertices holds
// segment endpoint pairs in the owning object's local space. Version is
// bumped on every change so GPU copies can be refreshed.
type Lines struct {
	Vertices []mgl32.Vec3
	Color    Color
	Version  uint64
}

// SetVertices replaces the segments and bumps the version.
func (l *Lines) SetVertices(v []mgl32.Vec3) {
	l.Vertices = v
	l.Version++
}

// WorldPositions returns the positions of o's mesh in world space for the
// current pose. Skinned meshes are deformed by their joints; the node's own
// transform does not apply to them. World matrices must be current.
func WorldPositions(o *Object) []mgl32.Vec3 {
	if o.Mesh == nil || o.Mesh.Geometry == nil {
		return nil
	}
	g := o.Mesh.Geometry
	out := make([]mgl32.Vec3, len(g.Positions))

	if o.Mesh.Skin == nil || !g.Skinned() {
		w := o.World()
		for i, p := range g.Positions {
			out[i] = mgl32.TransformCoordinate(p, w)
		}
		return out
	}

	joints := o.Mesh.Skin.JointMatrices()
	fallback := o.World()
	for i, p := range g.Positions {
		out[i] = mgl32.TransformCoordinate(p, blendJoints(joints, g.Joints[i], g.Weights[i], fallback))
	}
	return out
}

// WorldNormals returns the normals of o's mesh in world space for the
// current pose, deformed the same way as WorldPositions.
func WorldNormals(o *Object) []mgl32.Vec3 {
	if o.Mesh == nil || o.Mesh.Geometry == nil {
		return nil
	}
	g := o.Mesh.Geometry
	out := make([]mgl32.Vec3, len(g.Normals))

	if o.Mesh.Skin == nil || !g.Skinned() {
		nm := normalMatrix(o.World())
		for i, n := range g.Normals {
			out[i] = transformNormal(n, nm)
		}
		return out
	}

	joints := o.Mesh.Skin.JointMatrices()
	fallback := o.World()
	for i, n := range g.Normals {
		m := blendJoints(joints, g.Joints[i], g.Weights[i], fallback)
		out[i] = transformNormal(n, normalMatrix(m))
	}
	return out
}

// normalMatrix is the inverse transpose of m's linear part.
func normalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	return m.Mat3().Inv().Transpose()
}

func transformNormal(n mgl32.Vec3, nm mgl32.Mat3) mgl32.Vec3 {
	v := nm.Mul3x1(n)
	if l := v.Len(); l > 0 {
		return v.Mul(1 / l)
	}
	return n
}

func blendJoints(joints []mgl32.Mat4, idx [4]uint16, w mgl32.Vec4, fallback mgl32.Mat4) mgl32.Mat4 {
	var m mgl32.Mat4
	var total float32
	for k := 0; k < 4; k++ {
		if w[k] == 0 || int(idx[k]) >= len(joints) {
			continue
		}
		m = m.Add(joints[idx[k]].Mul(w[k]))
		total += w[k]
	}
	if total == 0 {
		return fallback
	}
	if total != 1 {
		m = m.Mul(1 / total)
	}
	return m
}
