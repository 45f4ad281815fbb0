// Package viewer drives the scene: it owns the camera, the loaded model and
// its mixer, the pulsing pyramid and the collision loop, and answers picks
// and resizes.
package viewer

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pyramid-scene/internal/config"
	"github.com/Faultbox/pyramid-scene/internal/engine/animation"
	"github.com/Faultbox/pyramid-scene/internal/engine/camera"
	"github.com/Faultbox/pyramid-scene/internal/engine/debug"
	"github.com/Faultbox/pyramid-scene/internal/engine/geometry"
	"github.com/Faultbox/pyramid-scene/internal/engine/input"
	"github.com/Faultbox/pyramid-scene/internal/engine/picking"
	"github.com/Faultbox/pyramid-scene/internal/engine/scene"
	"github.com/Faultbox/pyramid-scene/internal/engine/texture"
	"github.com/Faultbox/pyramid-scene/internal/logger"
)

// initialFOV is the projection the camera is created with before the
// configured field of view is applied.
const initialFOV = 75

// Renderer draws a scene. Implemented by the OpenGL renderer.
type Renderer interface {
	Render(s *scene.Scene, cam *camera.Perspective)
	SetSize(width, height int)
}

// Context holds all viewer state. It is used from the render thread only.
type Context struct {
	Scene    *scene.Scene
	Camera   *camera.Perspective
	Controls *camera.OrbitCamera
	Uniforms *scene.UniformBlock

	Model   *scene.Object
	Mixer   *animation.Mixer
	Pyramid *scene.Object

	ModelBox   picking.AABB
	PyramidBox picking.AABB
	Motion     Motion

	renderer      Renderer
	pointer       *input.Pointer
	modelHelper   *debug.BoxHelper
	pyramidHelper *debug.BoxHelper

	phase       Phase
	overlapping bool
	ticks       uint64

	pyramidCfg   config.PyramidConfig
	timing       config.TimingConfig
	collisionCfg config.CollisionConfig
	showBoxes    bool

	width, height int
	rng           *rand.Rand
	log           *zap.Logger
}

// Option customizes a Context.
type Option func(*Context)

// WithRand sets the source of pick colors.
func WithRand(r *rand.Rand) Option {
	return func(c *Context) { c.rng = r }
}

// New builds the scene, camera and controls for a drawable of the given
// size. The viewer starts in PhaseLoading.
func New(cfg *config.Config, width, height int, r Renderer, opts ...Option) (*Context, error) {
	hex, err := config.ParseHexColor(cfg.Pyramid.Color)
	if err != nil {
		return nil, fmt.Errorf("pyramid color: %w", err)
	}

	c := &Context{
		Scene:        scene.New(),
		Uniforms:     &scene.UniformBlock{Color: scene.ColorFromHex(hex)},
		ModelBox:     picking.EmptyAABB(),
		PyramidBox:   picking.EmptyAABB(),
		Motion:       MovingNegativeX,
		renderer:     r,
		pointer:      input.NewPointer(),
		phase:        PhaseLoading,
		pyramidCfg:   cfg.Pyramid,
		timing:       cfg.Timing,
		collisionCfg: cfg.Collision,
		showBoxes:    cfg.Debug.ShowBoxes,
		width:        max(width, 1),
		height:       max(height, 1),
		rng:          rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		log:          logger.Named("viewer"),
	}
	for _, opt := range opts {
		opt(c)
	}

	cc := cfg.Camera
	c.Camera = camera.NewPerspective(initialFOV, float32(c.width)/float32(c.height), cc.Near, cc.Far)
	c.Camera.Position = mgl32.Vec3(cc.Position)
	c.Camera.FOV = cc.FOV
	c.Camera.UpdateProjection()

	c.Controls = camera.NewOrbitCamera(c.Camera, mgl32.Vec3(cc.Target), cc.MinDistance, cc.MaxDistance)
	c.Controls.Apply(c.Camera)

	c.renderer.SetSize(c.width, c.height)
	return c, nil
}

// Phase returns the loading state.
func (c *Context) Phase() Phase {
	return c.phase
}

// Ready reports whether the model and pyramid are in place.
func (c *Context) Ready() bool {
	return c.phase == PhaseReady
}

// Size returns the drawable size the camera is set up for.
func (c *Context) Size() (int, int) {
	return c.width, c.height
}

// SetEnvironment installs the panorama as background and environment and
// re-renders.
func (c *Context) SetEnvironment(env *texture.HDR) {
	c.Scene.SetEnvironment(env)
	c.log.Info("environment set",
		zap.Int("width", env.Width),
		zap.Int("height", env.Height),
		zap.Float32("peak", env.MaxLuminance()))
	c.Render()
}

// Populate adds the loaded model, starts every clip, builds the pyramid and
// the box helpers, then switches to PhaseReady. It runs once; later calls
// return an error.
func (c *Context) Populate(model *scene.Object, clips []*animation.Clip) error {
	if c.phase == PhaseReady {
		return fmt.Errorf("viewer already populated")
	}
	if model == nil {
		return fmt.Errorf("populate: nil model")
	}

	c.Model = model
	c.Mixer = animation.NewMixer(model)
	for _, clip := range clips {
		c.Mixer.ClipAction(clip).Play()
	}
	c.Scene.Add(model)

	c.modelHelper = debug.NewBoxHelper("model-box", scene.Green)
	c.Scene.Add(c.modelHelper.Object)

	c.Pyramid = c.buildPyramid()
	c.Scene.Add(c.Pyramid)

	c.pyramidHelper = debug.NewBoxHelper("pyramid-box", scene.Red)
	c.Scene.Add(c.pyramidHelper.Object)

	c.ModelBox = scene.BoxFromObject(c.Model)
	c.PyramidBox = scene.BoxFromObject(c.Pyramid)
	c.updateHelpers()

	c.phase = PhaseReady
	c.log.Info("scene ready",
		zap.Int("meshes", len(model.Meshes())),
		zap.Int("clips", len(clips)),
		zap.String("motion", c.Motion.String()))
	c.Render()
	return nil
}

func (c *Context) buildPyramid() *scene.Object {
	g := geometry.Pyramid(c.pyramidCfg.BaseWidth, c.pyramidCfg.Height)
	mat := &scene.ShaderMaterial{
		Name:        "pulse",
		Uniforms:    c.Uniforms,
		DoubleSided: true,
	}
	o := scene.NewMeshObject("pyramid", &scene.Mesh{Geometry: g, Material: mat})
	o.Position = mgl32.Vec3(c.pyramidCfg.Start)
	o.SetRotationEuler(-math32.Pi/2, 0, 0)
	return o
}

// Tick advances one frame: shader time, pyramid motion, bounds, collision
// and boundary reversal, animation, then render. While loading it only
// renders.
func (c *Context) Tick() {
	if c.phase != PhaseReady {
		c.Render()
		return
	}
	c.ticks++

	c.Uniforms.Time += c.timing.TimeStep

	c.Pyramid.Position[0] += c.Motion.Sign() * c.pyramidCfg.Speed
	c.PyramidBox = scene.BoxFromObject(c.Pyramid)

	// The model box reflects the pose rendered last frame, before the mixer
	// moves it again.
	c.ModelBox = scene.BoxFromObject(c.Model)
	c.updateHelpers()

	overlapping := c.ModelBox.Intersects(c.PyramidBox)
	if overlapping && (c.collisionCfg.Mode == config.CollisionLevel || !c.overlapping) {
		c.Motion = c.Motion.Toggle()
		p := c.Pyramid.Position
		c.log.Info("collision",
			zap.Uint64("tick", c.ticks),
			zap.Float32("x", p[0]),
			zap.Float32("y", p[1]),
			zap.Float32("z", p[2]),
			zap.String("motion", c.Motion.String()))
	}
	c.overlapping = overlapping

	if c.Pyramid.Position.X() > c.pyramidCfg.BoundX {
		c.Motion = c.Motion.Toggle()
		c.log.Debug("boundary reached",
			zap.Float32("x", c.Pyramid.Position.X()),
			zap.String("motion", c.Motion.String()))
	}

	c.Mixer.Update(c.timing.AnimationStep)
	c.Render()
}

func (c *Context) updateHelpers() {
	if !c.showBoxes {
		return
	}
	c.modelHelper.Update(c.ModelBox)
	c.pyramidHelper.Update(c.PyramidBox)
}

// Pick casts a ray through the pixel (x, y) of the drawable and gives the
// nearest hit mesh a random color if its material is colorable. Returns
// whether a mesh was recolored.
func (c *Context) Pick(x, y float32) bool {
	if c.phase != PhaseReady {
		return false
	}

	ndcX, ndcY := picking.ScreenToNDC(x, y, float32(c.width), float32(c.height))
	ray := c.Camera.Ray(ndcX, ndcY)

	c.Scene.UpdateWorld()
	hit, ok := scene.RaycastNearest(c.Scene.Root, ray)
	if !ok {
		c.log.Debug("pick missed", zap.Float32("x", x), zap.Float32("y", y))
		c.Render()
		return false
	}

	mat, ok := hit.Object.Mesh.Material.(scene.Colorable)
	if !ok {
		c.log.Debug("picked mesh is not colorable", zap.String("object", hit.Object.Name))
		c.Render()
		return false
	}

	old := mat.BaseColor()
	hex := uint32(c.rng.IntN(0x1000000))
	mat.SetBaseColor(scene.ColorFromHex(hex))
	c.log.Info("mesh recolored",
		zap.String("object", hit.Object.Name),
		zap.Float32("distance", hit.Distance),
		zap.String("from", fmt.Sprintf("#%06x", old.Hex())),
		zap.String("to", fmt.Sprintf("#%06x", hex)))
	c.Render()
	return true
}

// Resize matches the camera aspect and render surface to a new drawable
// size. Non-positive sizes are ignored.
func (c *Context) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width, c.height = width, height
	c.Camera.Aspect = float32(width) / float32(height)
	c.Camera.UpdateProjection()
	c.renderer.SetSize(width, height)
	c.Render()
}

// Orbit rotates the camera around the controls target by a pointer drag.
func (c *Context) Orbit(dx, dy float32) {
	c.Controls.HandleDrag(dx, dy)
	c.Controls.Apply(c.Camera)
}

// Zoom moves the camera toward or away from the target by wheel steps.
func (c *Context) Zoom(steps float32) {
	c.Controls.HandleZoom(steps)
	c.Controls.Apply(c.Camera)
}

// Render draws the current frame.
func (c *Context) Render() {
	c.renderer.Render(c.Scene, c.Camera)
}
