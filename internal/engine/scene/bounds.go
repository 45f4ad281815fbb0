package scene

import (
	"github.com/Faultbox/pyramid-scene/internal/engine/picking"
)

// BoxFromObject returns the world-space box enclosing every mesh vertex under
// o in its current pose. World matrices are refreshed first. Line overlays are
// not included. An object without meshes yields an empty box.
func BoxFromObject(o *Object) picking.AABB {
	o.UpdateWorldFromRoot()

	box := picking.EmptyAABB()
	o.Traverse(func(n *Object) bool {
		for _, p := range WorldPositions(n) {
			box.ExpandByPoint(p)
		}
		return true
	})
	return box
}

// MeshBox returns the world-space box of a single mesh node.
func MeshBox(o *Object) picking.AABB {
	box := picking.EmptyAABB()
	for _, p := range WorldPositions(o) {
		box.ExpandByPoint(p)
	}
	return box
}
