package assets

import (
	"errors"
	"fmt"
	"path"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/pyramid-scene/internal/engine/animation"
	"github.com/Faultbox/pyramid-scene/internal/engine/geometry"
	"github.com/Faultbox/pyramid-scene/internal/engine/scene"
)

// Model is a loaded glTF scene with its animation clips.
type Model struct {
	Root  *scene.Object
	Clips []*animation.Clip
}

// LoadModel opens a .gltf or .glb file with its external buffers and
// converts the default scene into scene nodes. Every primitive gets its
// own material instance.
func (m *Manager) LoadModel(name string) (*Model, error) {
	p, err := m.Resolve(name)
	if err != nil {
		return nil, err
	}
	doc, err := gltf.Open(p)
	if err != nil {
		return nil, fmt.Errorf("opening model %s: %w", name, err)
	}
	model, err := BuildModel(doc, path.Base(name))
	if err != nil {
		return nil, fmt.Errorf("building model %s: %w", name, err)
	}
	return model, nil
}

// BuildModel converts a parsed document into a node tree under a root
// named name.
func BuildModel(doc *gltf.Document, name string) (*Model, error) {
	b := &modelBuilder{doc: doc}

	b.nodes = make([]*scene.Object, len(doc.Nodes))
	for i, n := range doc.Nodes {
		o := scene.NewObject(orDefault(n.Name, fmt.Sprintf("node_%d", i)))
		applyNodeTransform(o, n)
		b.nodes[i] = o
	}
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) >= len(b.nodes) {
				return nil, fmt.Errorf("node %d: child %d out of range", i, c)
			}
			b.nodes[i].Add(b.nodes[c])
		}
	}

	// Meshes after the hierarchy so skins can resolve joints.
	for i, n := range doc.Nodes {
		mi, ok := idx(n.Mesh)
		if !ok {
			continue
		}
		if err := b.attachMesh(b.nodes[i], mi, n.Skin); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
	}

	root := scene.NewObject(name)
	for _, ni := range b.sceneNodes() {
		root.Add(b.nodes[ni])
	}

	clips, err := b.animations()
	if err != nil {
		return nil, err
	}
	return &Model{Root: root, Clips: clips}, nil
}

type modelBuilder struct {
	doc   *gltf.Document
	nodes []*scene.Object
}

// sceneNodes returns the top-level nodes of the default scene, or every
// parentless node when the document declares no scene.
func (b *modelBuilder) sceneNodes() []int {
	var out []int
	si, ok := idx(b.doc.Scene)
	if !ok && len(b.doc.Scenes) > 0 {
		si, ok = 0, true
	}
	if ok && si < len(b.doc.Scenes) {
		for _, n := range b.doc.Scenes[si].Nodes {
			if int(n) < len(b.nodes) {
				out = append(out, int(n))
			}
		}
		return out
	}
	for i, o := range b.nodes {
		if o.Parent() == nil {
			out = append(out, i)
		}
	}
	return out
}

func (b *modelBuilder) attachMesh(node *scene.Object, meshIdx int, skinRef *uint32) error {
	if meshIdx >= len(b.doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", meshIdx)
	}
	gm := b.doc.Meshes[meshIdx]
	skin, err := b.skin(skinRef)
	if err != nil {
		return err
	}

	var meshes []*scene.Mesh
	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		g, err := b.geometry(prim)
		if err != nil {
			return fmt.Errorf("mesh %d primitive %d: %w", meshIdx, pi, err)
		}
		mesh := &scene.Mesh{Geometry: g, Material: b.material(prim.Material)}
		if skin != nil && g.Skinned() {
			mesh.Skin = skin
		}
		meshes = append(meshes, mesh)
	}

	switch len(meshes) {
	case 0:
	case 1:
		node.Mesh = meshes[0]
	default:
		for i, mesh := range meshes {
			node.Add(scene.NewMeshObject(fmt.Sprintf("%s_%d", node.Name, i), mesh))
		}
	}
	return nil
}

func (b *modelBuilder) accessor(i uint32) (*gltf.Accessor, error) {
	if int(i) >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", i)
	}
	return b.doc.Accessors[i], nil
}

func (b *modelBuilder) geometry(prim *gltf.Primitive) (*geometry.Geometry, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("primitive has no POSITION")
	}
	acr, err := b.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	pos, err := modeler.ReadPosition(b.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	g := &geometry.Geometry{Positions: make([]mgl32.Vec3, len(pos))}
	for i, p := range pos {
		g.Positions[i] = p
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acr, err := b.accessor(idx)
		if err != nil {
			return nil, err
		}
		normals, err := modeler.ReadNormal(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		g.Normals = make([]mgl32.Vec3, len(normals))
		for i, n := range normals {
			g.Normals[i] = n
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acr, err := b.accessor(idx)
		if err != nil {
			return nil, err
		}
		uvs, err := modeler.ReadTextureCoord(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading uvs: %w", err)
		}
		g.UVs = make([]mgl32.Vec2, len(uvs))
		for i, uv := range uvs {
			g.UVs[i] = uv
		}
	}

	if prim.Indices != nil {
		acr, err := b.accessor(*prim.Indices)
		if err != nil {
			return nil, err
		}
		g.Indices, err = modeler.ReadIndices(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	}

	jIdx, hasJ := prim.Attributes[gltf.JOINTS_0]
	wIdx, hasW := prim.Attributes[gltf.WEIGHTS_0]
	if hasJ && hasW {
		jacr, err := b.accessor(jIdx)
		if err != nil {
			return nil, err
		}
		wacr, err := b.accessor(wIdx)
		if err != nil {
			return nil, err
		}
		if g.Joints, err = modeler.ReadJoints(b.doc, jacr, nil); err != nil {
			return nil, fmt.Errorf("reading joints: %w", err)
		}
		weights, err := modeler.ReadWeights(b.doc, wacr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading weights: %w", err)
		}
		g.Weights = make([]mgl32.Vec4, len(weights))
		for i, w := range weights {
			g.Weights[i] = w
		}
	}

	if len(g.Normals) == 0 {
		g.ComputeVertexNormals()
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// material builds a fresh material so recoloring one mesh never affects
// another that shared it in the file.
func (b *modelBuilder) material(v *uint32) scene.Material {
	mat := scene.NewStandardMaterial("default")
	// glTF defaults to a fully metallic, fully rough white surface.
	mat.Metalness = 1

	i, ok := idx(v)
	if !ok || i >= len(b.doc.Materials) {
		return mat
	}
	gm := b.doc.Materials[i]
	mat.Name = orDefault(gm.Name, fmt.Sprintf("material_%d", i))
	mat.DoubleSided = gm.DoubleSided
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		c := pbr.BaseColorFactorOrDefault()
		mat.Color = scene.Color{R: float32(c[0]), G: float32(c[1]), B: float32(c[2])}
		mat.Metalness = float32(pbr.MetallicFactorOrDefault())
		mat.Roughness = float32(pbr.RoughnessFactorOrDefault())
	}
	return mat
}

func (b *modelBuilder) skin(v *uint32) (*scene.Skin, error) {
	si, ok := idx(v)
	if !ok {
		return nil, nil
	}
	if si >= len(b.doc.Skins) {
		return nil, fmt.Errorf("skin %d out of range", si)
	}
	gs := b.doc.Skins[si]

	s := &scene.Skin{}
	for _, j := range gs.Joints {
		if int(j) >= len(b.nodes) {
			return nil, fmt.Errorf("skin %d: joint %d out of range", si, j)
		}
		s.Joints = append(s.Joints, b.nodes[j])
	}

	if gs.InverseBindMatrices != nil {
		acr, err := b.accessor(*gs.InverseBindMatrices)
		if err != nil {
			return nil, err
		}
		data, err := modeler.ReadAccessor(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading inverse bind matrices: %w", err)
		}
		mats, ok := data.([][4][4]float32)
		if !ok {
			return nil, fmt.Errorf("inverse bind matrices: unexpected %T", data)
		}
		for _, mm := range mats {
			var m mgl32.Mat4
			for c := 0; c < 4; c++ {
				for r := 0; r < 4; r++ {
					m[c*4+r] = mm[c][r]
				}
			}
			s.InverseBind = append(s.InverseBind, m)
		}
	}
	return s, nil
}

func (b *modelBuilder) animations() ([]*animation.Clip, error) {
	var clips []*animation.Clip
	for ai, ga := range b.doc.Animations {
		var tracks []*animation.Track
		for ci, ch := range ga.Channels {
			ni, ok := idx(ch.Target.Node)
			if !ok || ni >= len(b.nodes) {
				continue
			}
			p, ok := trsPath(ch.Target.Path)
			if !ok {
				// Morph target weights are not animated.
				continue
			}
			si, ok := idx(ch.Sampler)
			if !ok || si >= len(ga.Samplers) {
				return nil, fmt.Errorf("animation %d channel %d: sampler out of range", ai, ci)
			}
			smp := ga.Samplers[si]

			times, err := b.readFloats(smp.Input)
			if err != nil {
				return nil, fmt.Errorf("animation %d channel %d input: %w", ai, ci, err)
			}
			values, err := b.readFloats(smp.Output)
			if err != nil {
				return nil, fmt.Errorf("animation %d channel %d output: %w", ai, ci, err)
			}

			tr := &animation.Track{
				Target:        b.nodes[ni],
				Path:          p,
				Interpolation: interpolation(smp.Interpolation),
				Times:         times,
				Values:        values,
			}
			if err := tr.Validate(); err != nil {
				return nil, fmt.Errorf("animation %d channel %d: %w", ai, ci, err)
			}
			tracks = append(tracks, tr)
		}
		clips = append(clips, animation.NewClip(orDefault(ga.Name, fmt.Sprintf("animation_%d", ai)), tracks))
	}
	return clips, nil
}

// readFloats flattens a float or normalized-integer accessor.
func (b *modelBuilder) readFloats(i uint32) ([]float32, error) {
	acr, err := b.accessor(i)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(b.doc, acr, nil)
	if err != nil {
		return nil, err
	}

	switch d := data.(type) {
	case []float32:
		return d, nil
	case [][2]float32:
		return flatten(d), nil
	case [][3]float32:
		return flatten(d), nil
	case [][4]float32:
		return flatten(d), nil
	case [][4]int8:
		return normalize(d, 127, true), nil
	case [][4]uint8:
		return normalize(d, 255, false), nil
	case [][4]int16:
		return normalize(d, 32767, true), nil
	case [][4]uint16:
		return normalize(d, 65535, false), nil
	default:
		return nil, fmt.Errorf("unsupported accessor data %T", data)
	}
}

func flatten[T [2]float32 | [3]float32 | [4]float32](in []T) []float32 {
	out := make([]float32, 0, len(in)*4)
	for _, v := range in {
		for i := 0; i < len(v); i++ {
			out = append(out, v[i])
		}
	}
	return out
}

func normalize[T int8 | uint8 | int16 | uint16](in [][4]T, scale float32, signed bool) []float32 {
	out := make([]float32, 0, len(in)*4)
	for _, v := range in {
		for _, c := range v {
			f := float32(c) / scale
			if signed && f < -1 {
				f = -1
			}
			out = append(out, f)
		}
	}
	return out
}

func trsPath(p gltf.TRSProperty) (animation.Path, bool) {
	switch p {
	case gltf.TRSTranslation:
		return animation.PathTranslation, true
	case gltf.TRSRotation:
		return animation.PathRotation, true
	case gltf.TRSScale:
		return animation.PathScale, true
	default:
		return 0, false
	}
}

func interpolation(i gltf.Interpolation) animation.Interpolation {
	switch i {
	case gltf.InterpolationStep:
		return animation.InterpolationStep
	case gltf.InterpolationCubicSpline:
		return animation.InterpolationCubicSpline
	default:
		return animation.InterpolationLinear
	}
}

func applyNodeTransform(o *scene.Object, n *gltf.Node) {
	mat := n.MatrixOrDefault()
	var m mgl32.Mat4
	for i := range m {
		m[i] = float32(mat[i])
	}
	if m != mgl32.Ident4() {
		o.Position, o.Rotation, o.Scale = decompose(m)
		return
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	o.Position = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
	o.Rotation = mgl32.Quat{
		W: float32(r[3]),
		V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
	}.Normalize()
	o.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
}

// decompose splits an affine TRS matrix. Shear is lost.
func decompose(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	t := m.Col(3).Vec3()
	scale := mgl32.Vec3{
		m.Col(0).Vec3().Len(),
		m.Col(1).Vec3().Len(),
		m.Col(2).Vec3().Len(),
	}
	if m.Det() < 0 {
		scale[0] = -scale[0]
	}

	rot := mgl32.Ident4()
	for c := 0; c < 3; c++ {
		s := scale[c]
		if s == 0 {
			s = 1
		}
		rot.SetCol(c, m.Col(c).Mul(1/s))
	}
	rot.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	return t, mgl32.Mat4ToQuat(rot).Normalize(), scale
}

// idx unwraps an optional glTF index.
func idx(p *uint32) (int, bool) {
	if p == nil {
		return 0, false
	}
	return int(*p), true
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
