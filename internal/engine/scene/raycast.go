package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pyramid-scene/internal/engine/picking"
)

// Hit is a ray intersection with a mesh triangle.
type Hit struct {
	Object   *Object
	Distance float32
	Point    mgl32.Vec3
	Triangle int
}

// Raycast intersects the ray with every visible mesh under root and returns
// the hits sorted nearest first, at most one per mesh. Line overlays are not
// hit. World matrices must be current.
func Raycast(root *Object, ray picking.Ray) []Hit {
	var hits []Hit
	// Box outlines have no pick threshold here, so a click on one reaches the mesh behind it.
	root.TraverseVisible(func(o *Object) {
		if h, ok := intersectMesh(o, ray); ok {
			hits = append(hits, h)
		}
	})
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

// RaycastNearest returns the nearest hit under root.
func RaycastNearest(root *Object, ray picking.Ray) (Hit, bool) {
	hits := Raycast(root, ray)
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}

func intersectMesh(o *Object, ray picking.Ray) (Hit, bool) {
	positions := worldPositionsOrNil(o)
	if positions == nil {
		return Hit{}, false
	}

	box := picking.EmptyAABB()
	for _, p := range positions {
		box.ExpandByPoint(p)
	}
	if _, ok := ray.IntersectAABB(box); !ok {
		return Hit{}, false
	}

	cull := o.Mesh.Material == nil || o.Mesh.Material.Side() == FrontSide
	g := o.Mesh.Geometry

	best := Hit{Object: o, Triangle: -1}
	for i := 0; i < g.TriangleCount(); i++ {
		a, b, c := g.Triangle(i)
		t, ok := ray.IntersectTriangle(positions[a], positions[b], positions[c], cull)
		if !ok {
			continue
		}
		if best.Triangle < 0 || t < best.Distance {
			best.Distance = t
			best.Triangle = i
		}
	}
	if best.Triangle < 0 {
		return Hit{}, false
	}
	best.Point = ray.At(best.Distance)
	return best, true
}

// worldPositionsOrNil is WorldPositions for nodes that can be hit by rays.
func worldPositionsOrNil(o *Object) []mgl32.Vec3 {
	if o.Mesh == nil || o.Mesh.Geometry == nil || len(o.Mesh.Geometry.Positions) == 0 {
		return nil
	}
	return WorldPositions(o)
}
