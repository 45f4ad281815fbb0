// Package picking provides ray casting and bounding-box utilities.
package picking

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // Normalized direction
}

// NewRay builds a ray, normalizing dir.
func NewRay(origin, dir mgl32.Vec3) Ray {
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	return Ray{Origin: origin, Direction: dir}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// ScreenToNDC converts pixel coordinates to normalized device coordinates.
// Pixel (0,0) is the top-left corner; NDC Y points up.
func ScreenToNDC(screenX, screenY, viewportW, viewportH float32) (ndcX, ndcY float32) {
	ndcX = screenX/viewportW*2 - 1
	ndcY = -(screenY/viewportH)*2 + 1
	return ndcX, ndcY
}

// UnprojectRay builds a world-space ray through an NDC point by unprojecting
// it on the near and far planes with the inverse view-projection matrix.
func UnprojectRay(ndcX, ndcY float32, invViewProj mgl32.Mat4) Ray {
	near := unproject(mgl32.Vec3{ndcX, ndcY, -1}, invViewProj)
	far := unproject(mgl32.Vec3{ndcX, ndcY, 1}, invViewProj)
	return NewRay(near, far.Sub(near))
}

func unproject(p mgl32.Vec3, inv mgl32.Mat4) mgl32.Vec3 {
	v := inv.Mul4x1(p.Vec4(1))
	if v[3] != 0 {
		return v.Vec3().Mul(1 / v[3])
	}
	return v.Vec3()
}

// IntersectPlaneY intersects a ray with a horizontal plane at the given Y level.
// Returns the intersection point (X, Z) and whether the intersection is valid.
func (r Ray) IntersectPlaneY(planeY float32) (x, z float32, ok bool) {
	if math32.Abs(r.Direction[1]) < 0.001 {
		return 0, 0, false
	}

	t := (planeY - r.Origin[1]) / r.Direction[1]
	if t < 0 {
		return 0, 0, false
	}

	p := r.At(t)
	return p[0], p[2], true
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	if box.IsEmpty() {
		return 0, false
	}

	tmin := math32.Inf(-1)
	tmax := math32.Inf(1)

	for axis := 0; axis < 3; axis++ {
		if r.Direction[axis] == 0 {
			if r.Origin[axis] < box.Min[axis] || r.Origin[axis] > box.Max[axis] {
				return 0, false
			}
			continue
		}
		t1 := (box.Min[axis] - r.Origin[axis]) / r.Direction[axis]
		t2 := (box.Max[axis] - r.Origin[axis]) / r.Direction[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
