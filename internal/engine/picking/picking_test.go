package picking

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenToNDC(t *testing.T) {
	tests := []struct {
		name         string
		x, y         float32
		wantX, wantY float32
	}{
		{"top-left", 0, 0, -1, 1},
		{"center", 400, 300, 0, 0},
		{"bottom-right", 800, 600, 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := ScreenToNDC(tt.x, tt.y, 800, 600)
			assert.InDelta(t, tt.wantX, x, 1e-6)
			assert.InDelta(t, tt.wantY, y, 1e-6)
		})
	}
}

func TestUnprojectRayThroughCenter(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	ray := UnprojectRay(0, 0, proj.Mul4(view).Inv())

	assert.InDelta(t, 0, ray.Direction[0], 1e-4)
	assert.InDelta(t, 0, ray.Direction[1], 1e-4)
	assert.InDelta(t, -1, ray.Direction[2], 1e-4)
	assert.InDelta(t, 4.9, ray.Origin[2], 1e-3)
}

func TestIntersectAABB(t *testing.T) {
	box := NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})

	tests := []struct {
		name    string
		ray     Ray
		wantHit bool
		wantT   float32
	}{
		{"hit from front", NewRay(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}), true, 4},
		{"miss parallel", NewRay(mgl32.Vec3{2, 0, 5}, mgl32.Vec3{0, 0, -1}), false, 0},
		{"behind origin", NewRay(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1}), false, 0},
		{"inside exits", NewRay(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}), true, 1},
		{"diagonal", NewRay(mgl32.Vec3{3, 3, 0}, mgl32.Vec3{-1, -1, 0}), true, 2.8284271},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, hit := tt.ray.IntersectAABB(box)
			require.Equal(t, tt.wantHit, hit)
			if hit {
				assert.InDelta(t, tt.wantT, d, 1e-4)
			}
		})
	}

	_, hit := NewRay(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}).IntersectAABB(EmptyAABB())
	assert.False(t, hit, "empty box never hit")
}

func TestIntersectPlaneY(t *testing.T) {
	x, z, ok := NewRay(mgl32.Vec3{1, 10, 2}, mgl32.Vec3{0, -1, 0}).IntersectPlaneY(0)
	require.True(t, ok)
	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, 2, z, 1e-6)

	_, _, ok = NewRay(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{1, 0, 0}).IntersectPlaneY(0)
	assert.False(t, ok, "parallel ray")
}

func TestIntersectTriangle(t *testing.T) {
	// Counter-clockwise seen from +Z.
	a := mgl32.Vec3{-1, -1, 0}
	b := mgl32.Vec3{1, -1, 0}
	c := mgl32.Vec3{0, 1, 0}

	front := NewRay(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{0, 0, -1})
	back := NewRay(mgl32.Vec3{0, 0, -3}, mgl32.Vec3{0, 0, 1})
	outside := NewRay(mgl32.Vec3{2, 2, 3}, mgl32.Vec3{0, 0, -1})

	d, hit := front.IntersectTriangle(a, b, c, true)
	require.True(t, hit)
	assert.InDelta(t, 3, d, 1e-5)

	_, hit = back.IntersectTriangle(a, b, c, true)
	assert.False(t, hit, "back face culled")

	d, hit = back.IntersectTriangle(a, b, c, false)
	require.True(t, hit, "double-sided hit")
	assert.InDelta(t, 3, d, 1e-5)

	_, hit = outside.IntersectTriangle(a, b, c, false)
	assert.False(t, hit)
}

func TestAABBIntersects(t *testing.T) {
	a := NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 2, 2})

	tests := []struct {
		name string
		b    AABB
		want bool
	}{
		{"overlap", NewAABB(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{3, 3, 3}), true},
		{"touching face", NewAABB(mgl32.Vec3{2, 0, 0}, mgl32.Vec3{4, 2, 2}), true},
		{"separated on x", NewAABB(mgl32.Vec3{2.1, 0, 0}, mgl32.Vec3{4, 2, 2}), false},
		{"separated on z", NewAABB(mgl32.Vec3{0, 0, -3}, mgl32.Vec3{2, 2, -1}), false},
		{"contained", NewAABB(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 1, 1}), true},
		{"empty", EmptyAABB(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(a), "symmetric")
		})
	}
}

func TestAABBExpandAndUnion(t *testing.T) {
	box := EmptyAABB()
	require.True(t, box.IsEmpty())

	box.ExpandByPoint(mgl32.Vec3{1, -2, 3})
	box.ExpandByPoint(mgl32.Vec3{-1, 2, 0})
	assert.False(t, box.IsEmpty())
	assert.Equal(t, mgl32.Vec3{-1, -2, 0}, box.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, box.Max)
	assert.Equal(t, mgl32.Vec3{0, 0, 1.5}, box.Center())
	assert.Equal(t, mgl32.Vec3{2, 4, 3}, box.Size())

	u := box.Union(EmptyAABB())
	assert.Equal(t, box, u)

	u = box.Union(NewAABB(mgl32.Vec3{5, 5, 5}, mgl32.Vec3{6, 6, 6}))
	assert.Equal(t, mgl32.Vec3{6, 6, 6}, u.Max)
	assert.True(t, u.ContainsPoint(mgl32.Vec3{3, 3, 3}))
}

func TestAABBTransform(t *testing.T) {
	box := NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})

	moved := box.Transform(mgl32.Translate3D(5, 0, 0))
	assert.InDelta(t, 4, moved.Min[0], 1e-6)
	assert.InDelta(t, 6, moved.Max[0], 1e-6)

	// 45 degrees about Y widens the X/Z extent to sqrt(2).
	rotated := box.Transform(mgl32.HomogRotate3DY(mgl32.DegToRad(45)))
	assert.InDelta(t, 1.41421, rotated.Max[0], 1e-4)
	assert.InDelta(t, 1, rotated.Max[1], 1e-6)
}
