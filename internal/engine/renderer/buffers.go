package renderer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pyramid-scene/internal/engine/geometry"
	"github.com/Faultbox/pyramid-scene/internal/engine/scene"
	"github.com/Faultbox/pyramid-scene/internal/engine/texture"
)

// gpuMesh holds the GL objects of one uploaded geometry.
type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
	indexed       bool
}

func uploadMesh(g *geometry.Geometry, dynamic bool) *gpuMesh {
	gm := &gpuMesh{}
	data := g.Interleave(nil, nil)

	usage := uint32(gl.STATIC_DRAW)
	if dynamic {
		usage = gl.DYNAMIC_DRAW
	}

	gl.GenVertexArrays(1, &gm.vao)
	gl.BindVertexArray(gm.vao)

	gl.GenBuffers(1, &gm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), usage)

	stride := int32(geometry.FloatsPerVertex * 4)
	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	// Normal (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord (location 2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)

	if len(g.Indices) > 0 {
		gl.GenBuffers(1, &gm.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, gl.Ptr(g.Indices), gl.STATIC_DRAW)
		gm.count = int32(len(g.Indices))
		gm.indexed = true
	} else {
		gm.count = int32(g.VertexCount())
	}

	gl.BindVertexArray(0)
	return gm
}

// update replaces the vertex data, keeping the layout.
func (gm *gpuMesh) update(data []float32) {
	if len(data) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data)*4, gl.Ptr(data))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (gm *gpuMesh) draw() {
	gl.BindVertexArray(gm.vao)
	if gm.indexed {
		gl.DrawElementsWithOffset(gl.TRIANGLES, gm.count, gl.UNSIGNED_INT, 0)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, gm.count)
	}
	gl.BindVertexArray(0)
}

func (gm *gpuMesh) delete() {
	gl.DeleteVertexArrays(1, &gm.vao)
	gl.DeleteBuffers(1, &gm.vbo)
	if gm.ebo != 0 {
		gl.DeleteBuffers(1, &gm.ebo)
	}
}

// gpuLines is a position-only line list.
type gpuLines struct {
	vao, vbo uint32
	count    int32
	capacity int
	version  uint64
}

func newGPULines() *gpuLines {
	l := &gpuLines{}
	gl.GenVertexArrays(1, &l.vao)
	gl.BindVertexArray(l.vao)
	gl.GenBuffers(1, &l.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, l.vbo)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
	return l
}

func (l *gpuLines) update(vertices []mgl32.Vec3) {
	l.count = int32(len(vertices))
	if len(vertices) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, l.vbo)
	size := len(vertices) * 3 * 4
	if len(vertices) > l.capacity {
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
		l.capacity = len(vertices)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(vertices))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (l *gpuLines) delete() {
	gl.DeleteVertexArrays(1, &l.vao)
	gl.DeleteBuffers(1, &l.vbo)
}

// gpuEnvironment is an uploaded equirectangular panorama.
type gpuEnvironment struct {
	id     uint32
	maxLod float32
}

func uploadEnvironment(img *texture.HDR) *gpuEnvironment {
	env := &gpuEnvironment{}
	gl.GenTextures(1, &env.id)
	gl.BindTexture(gl.TEXTURE_2D, env.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB16F, int32(img.Width), int32(img.Height), 0, gl.RGB, gl.FLOAT, gl.Ptr(img.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	env.maxLod = math32.Floor(math32.Log2(float32(max(img.Width, img.Height))))
	return env
}

func (e *gpuEnvironment) delete() {
	gl.DeleteTextures(1, &e.id)
}

// bindEnvironment binds img to texture unit 0, uploading it on first use.
func (r *Renderer) bindEnvironment(img *texture.HDR) *gpuEnvironment {
	env, ok := r.envs[img]
	if !ok {
		env = uploadEnvironment(img)
		r.envs[img] = env
		r.log.Debug("environment uploaded",
			zap.Int("width", img.Width),
			zap.Int("height", img.Height))
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, env.id)
	return env
}

// releaseEnvironments frees panoramas the scene no longer references.
func (r *Renderer) releaseEnvironments(s *scene.Scene) {
	for img, env := range r.envs {
		if img != s.Background && img != s.Environment {
			env.delete()
			delete(r.envs, img)
		}
	}
}
