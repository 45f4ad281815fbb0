// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pyramid-scene/internal/engine/camera"
	"github.com/Faultbox/pyramid-scene/internal/engine/debug"
	"github.com/Faultbox/pyramid-scene/internal/engine/scene"
	"github.com/Faultbox/pyramid-scene/internal/engine/shader"
	"github.com/Faultbox/pyramid-scene/internal/engine/shader/shaders"
	"github.com/Faultbox/pyramid-scene/internal/engine/texture"
	"github.com/Faultbox/pyramid-scene/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width         int
	Height        int
	ScreenshotDir string
}

// Renderer draws a scene graph with OpenGL 4.1 core.
type Renderer struct {
	config Config
	log    *zap.Logger

	meshProgram       *shader.Program
	pulseProgram      *shader.Program
	backgroundProgram *shader.Program
	linesProgram      *shader.Program

	// Empty VAO for the attribute-less fullscreen triangle.
	backgroundVAO uint32

	meshes map[*scene.Mesh]*gpuMesh
	lines  map[*scene.Lines]*gpuLines
	envs   map[*texture.HDR]*gpuEnvironment

	screenshots *debug.ScreenshotCapture
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:      cfg,
		log:         logger.Named("renderer"),
		meshes:      make(map[*scene.Mesh]*gpuMesh),
		lines:       make(map[*scene.Lines]*gpuLines),
		envs:        make(map[*texture.HDR]*gpuEnvironment),
		screenshots: debug.NewScreenshotCapture(cfg.ScreenshotDir, "scene"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.ClearColor(0, 0, 0, 1)

	if err := r.createPrograms(); err != nil {
		r.Close()
		return nil, err
	}
	gl.GenVertexArrays(1, &r.backgroundVAO)

	r.SetSize(cfg.Width, cfg.Height)
	return r, nil
}

func (r *Renderer) createPrograms() error {
	var err error
	if r.meshProgram, err = shader.New("mesh", shaders.MeshVertexShader, shaders.MeshFragmentShader); err != nil {
		return err
	}
	if r.pulseProgram, err = shader.New("pulse", shaders.PulseVertexShader, shaders.PulseFragmentShader); err != nil {
		return err
	}
	if r.backgroundProgram, err = shader.New("background", shaders.BackgroundVertexShader, shaders.BackgroundFragmentShader); err != nil {
		return err
	}
	if r.linesProgram, err = shader.New("lines", shaders.LinesVertexShader, shaders.LinesFragmentShader); err != nil {
		return err
	}
	return nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer",
		zap.Int("meshes", len(r.meshes)),
		zap.Int("lines", len(r.lines)),
	)
	for m, gm := range r.meshes {
		gm.delete()
		delete(r.meshes, m)
	}
	for l, gpu := range r.lines {
		gpu.delete()
		delete(r.lines, l)
	}
	for img, env := range r.envs {
		env.delete()
		delete(r.envs, img)
	}
	if r.backgroundVAO != 0 {
		gl.DeleteVertexArrays(1, &r.backgroundVAO)
	}
	for _, p := range []*shader.Program{r.meshProgram, r.pulseProgram, r.backgroundProgram, r.linesProgram} {
		if p != nil {
			p.Delete()
		}
	}
}

// SetSize resizes the viewport.
func (r *Renderer) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Render draws the background, every visible mesh and every visible line
// set of s as seen from cam.
func (r *Renderer) Render(s *scene.Scene, cam *camera.Perspective) {
	s.UpdateWorld()
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.releaseEnvironments(s)
	if s.Background != nil {
		r.drawBackground(s, cam)
	}
	var env *gpuEnvironment
	if s.Environment != nil {
		env = r.bindEnvironment(s.Environment)
	}

	s.Root.TraverseVisible(func(o *scene.Object) {
		if o.Mesh != nil && o.Mesh.Geometry != nil {
			r.drawMesh(o, s, cam, env)
		}
	})

	gl.Disable(gl.CULL_FACE)
	s.Root.TraverseVisible(func(o *scene.Object) {
		if o.Lines != nil && len(o.Lines.Vertices) > 0 {
			r.drawLines(o, cam)
		}
	})
}

func (r *Renderer) drawBackground(s *scene.Scene, cam *camera.Perspective) {
	r.bindEnvironment(s.Background)

	gl.DepthMask(false)
	gl.Disable(gl.CULL_FACE)

	p := r.backgroundProgram
	p.Use()
	p.SetMat4("uInvViewProjection", cam.ViewProjection().Inv())
	p.SetVec3("uCameraPos", cam.Position)
	p.SetFloat("uExposure", s.Exposure)
	p.SetInt("uEnvMap", 0)

	gl.BindVertexArray(r.backgroundVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.DepthMask(true)
}

func (r *Renderer) drawMesh(o *scene.Object, s *scene.Scene, cam *camera.Perspective, env *gpuEnvironment) {
	mesh := o.Mesh
	gm := r.mesh(mesh)

	model := o.World()
	if mesh.Skin != nil && mesh.Geometry.Skinned() {
		// Skinned positions and normals are already in world space.
		gm.update(mesh.Geometry.Interleave(scene.WorldPositions(o), scene.WorldNormals(o)))
		model = mgl32.Ident4()
	}

	var p *shader.Program
	switch m := mesh.Material.(type) {
	case *scene.ShaderMaterial:
		p = r.pulseProgram
		p.Use()
		if m.Uniforms != nil {
			p.SetFloat("uTime", m.Uniforms.Time)
			p.SetVec3("uColor", m.Uniforms.Color.Vec())
		}
	case *scene.StandardMaterial:
		p = r.meshProgram
		p.Use()
		p.SetVec3("uBaseColor", m.Color.Vec())
		p.SetVec3("uEmissive", m.Emissive.Vec())
		p.SetFloat("uMetalness", m.Metalness)
		p.SetFloat("uRoughness", m.Roughness)
		r.setEnvironmentUniforms(p, s, cam, env)
	default:
		p = r.meshProgram
		p.Use()
		p.SetVec3("uBaseColor", scene.White.Vec())
		p.SetVec3("uEmissive", [3]float32{})
		p.SetFloat("uMetalness", 0)
		p.SetFloat("uRoughness", 1)
		r.setEnvironmentUniforms(p, s, cam, env)
	}

	doubleSided := mesh.Material != nil && mesh.Material.Side() == scene.DoubleSide
	if doubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
	p.SetBool("uDoubleSided", doubleSided)

	p.SetMat4("uModel", model)
	p.SetMat4("uView", cam.View())
	p.SetMat4("uProjection", cam.Projection())

	gm.draw()
}

func (r *Renderer) setEnvironmentUniforms(p *shader.Program, s *scene.Scene, cam *camera.Perspective, env *gpuEnvironment) {
	p.SetVec3("uCameraPos", cam.Position)
	p.SetFloat("uExposure", s.Exposure)
	p.SetInt("uEnvMap", 0)
	p.SetBool("uHasEnv", env != nil)
	if env != nil {
		p.SetFloat("uEnvMaxLod", env.maxLod)
	}
}

func (r *Renderer) drawLines(o *scene.Object, cam *camera.Perspective) {
	gpu := r.lineBuffer(o.Lines)

	p := r.linesProgram
	p.Use()
	p.SetMat4("uModel", o.World())
	p.SetMat4("uViewProjection", cam.ViewProjection())
	p.SetVec3("uColor", o.Lines.Color.Vec())

	gl.BindVertexArray(gpu.vao)
	gl.DrawArrays(gl.LINES, 0, gpu.count)
	gl.BindVertexArray(0)
}

func (r *Renderer) mesh(m *scene.Mesh) *gpuMesh {
	if gm, ok := r.meshes[m]; ok {
		return gm
	}
	gm := uploadMesh(m.Geometry, m.Skin != nil)
	r.meshes[m] = gm
	r.log.Debug("mesh uploaded",
		zap.Int("vertices", m.Geometry.VertexCount()),
		zap.Int("triangles", m.Geometry.TriangleCount()),
		zap.Uint32("vao", gm.vao),
	)
	return gm
}

func (r *Renderer) lineBuffer(l *scene.Lines) *gpuLines {
	gpu, ok := r.lines[l]
	if !ok {
		gpu = newGPULines()
		r.lines[l] = gpu
	}
	if !ok || gpu.version != l.Version {
		gpu.update(l.Vertices)
		gpu.version = l.Version
	}
	return gpu
}

// Screenshot reads back the framebuffer and saves it as PNG.
func (r *Renderer) Screenshot() (string, error) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	name, err := r.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	r.log.Info("screenshot saved", zap.String("file", name))
	return name, nil
}
