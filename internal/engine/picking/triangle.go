package picking

import "github.com/go-gl/mathgl/mgl32"

const triangleEpsilon = 1e-7

// IntersectTriangle tests the ray against triangle (a, b, c) using the
// Möller-Trumbore algorithm. With cullBack set, triangles whose
// counter-clockwise front face points away from the ray are ignored.
// Returns the hit distance along the ray.
func (r Ray) IntersectTriangle(a, b, c mgl32.Vec3, cullBack bool) (t float32, hit bool) {
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	h := r.Direction.Cross(edge2)
	det := edge1.Dot(h)

	if cullBack {
		if det < triangleEpsilon {
			return 0, false
		}
	} else if det > -triangleEpsilon && det < triangleEpsilon {
		return 0, false
	}

	inv := 1 / det
	s := r.Origin.Sub(a)
	u := inv * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := inv * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = inv * edge2.Dot(q)
	if t <= triangleEpsilon {
		return 0, false
	}
	return t, true
}
