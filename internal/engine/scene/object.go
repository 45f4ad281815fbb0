package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Object is a node in the scene graph. Its transform is position, rotation
// and scale relative to its parent. An object may carry a Mesh, a Lines
// overlay, both or neither (a group).
type Object struct {
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Visible  bool

	Mesh  *Mesh
	Lines *Lines

	parent   *Object
	children []*Object
	world    mgl32.Mat4
}

// NewObject creates an empty visible node with an identity transform.
func NewObject(name string) *Object {
	return &Object{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Visible:  true,
		world:    mgl32.Ident4(),
	}
}

// NewMeshObject wraps a mesh in a node.
func NewMeshObject(name string, mesh *Mesh) *Object {
	o := NewObject(name)
	o.Mesh = mesh
	return o
}

// Add attaches child to o, detaching it from any previous parent.
func (o *Object) Add(child *Object) {
	if child == nil || child == o {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = o
	o.children = append(o.children, child)
}

// Remove detaches child from o. Unknown children are ignored.
func (o *Object) Remove(child *Object) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Parent returns the parent node, nil for a root.
func (o *Object) Parent() *Object {
	return o.parent
}

// Children returns the direct children. The slice must not be modified.
func (o *Object) Children() []*Object {
	return o.children
}

// SetRotationEuler sets the rotation from Euler angles in radians applied
// in X, Y, Z order of the matrix product (Rx·Ry·Rz).
func (o *Object) SetRotationEuler(x, y, z float32) {
	qx := mgl32.QuatRotate(x, mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(y, mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(z, mgl32.Vec3{0, 0, 1})
	o.Rotation = qx.Mul(qy).Mul(qz).Normalize()
}

// LocalMatrix returns T·R·S.
func (o *Object) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(o.Position[0], o.Position[1], o.Position[2])
	s := mgl32.Scale3D(o.Scale[0], o.Scale[1], o.Scale[2])
	return t.Mul4(o.Rotation.Mat4()).Mul4(s)
}

// UpdateWorld recomputes world matrices of o and its descendants from the
// parent's cached world matrix.
func (o *Object) UpdateWorld() {
	parentWorld := mgl32.Ident4()
	if o.parent != nil {
		parentWorld = o.parent.world
	}
	o.updateWorld(parentWorld)
}

func (o *Object) updateWorld(parentWorld mgl32.Mat4) {
	o.world = parentWorld.Mul4(o.LocalMatrix())
	for _, c := range o.children {
		c.updateWorld(o.world)
	}
}

// UpdateWorldFromRoot recomputes the chain from the root down to o so o's
// world matrix reflects every ancestor's current transform.
func (o *Object) UpdateWorldFromRoot() {
	root := o
	for root.parent != nil {
		root = root.parent
	}
	root.UpdateWorld()
}

// World returns the world matrix cached by the last UpdateWorld.
func (o *Object) World() mgl32.Mat4 {
	return o.world
}

// WorldPosition returns the translation of the cached world matrix.
func (o *Object) WorldPosition() mgl32.Vec3 {
	return o.world.Col(3).Vec3()
}

// Traverse visits o and its descendants depth-first. Returning false from
// fn skips the node's children.
func (o *Object) Traverse(fn func(*Object) bool) {
	if !fn(o) {
		return
	}
	for _, c := range o.children {
		c.Traverse(fn)
	}
}

// TraverseVisible is Traverse restricted to visible subtrees.
func (o *Object) TraverseVisible(fn func(*Object)) {
	o.Traverse(func(n *Object) bool {
		if !n.Visible {
			return false
		}
		fn(n)
		return true
	})
}

// FindByName returns the first descendant (or o) with the given name.
func (o *Object) FindByName(name string) *Object {
	var found *Object
	o.Traverse(func(n *Object) bool {
		if found != nil {
			return false
		}
		if n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// Meshes returns every mesh-bearing node under o, o included.
func (o *Object) Meshes() []*Object {
	var out []*Object
	o.Traverse(func(n *Object) bool {
		if n.Mesh != nil {
			out = append(out, n)
		}
		return true
	})
	return out
}
