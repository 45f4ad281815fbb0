// Package scene provides the scene graph: nodes, meshes, materials, skins,
// world-space bounds and ray picking.
package scene

import (
	"github.com/Faultbox/pyramid-scene/internal/engine/texture"
)

// Scene is a node hierarchy plus image-based lighting.
type Scene struct {
	Root *Object

	// Background is drawn behind everything as an equirectangular panorama.
	Background *texture.HDR
	// Environment lights and reflects on standard materials.
	Environment *texture.HDR
	// Exposure scales radiance before tone mapping.
	Exposure float32
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		Root:     NewObject("scene"),
		Exposure: 1,
	}
}

// Add attaches an object to the root.
func (s *Scene) Add(o *Object) {
	s.Root.Add(o)
}

// Remove detaches an object from the root.
func (s *Scene) Remove(o *Object) {
	s.Root.Remove(o)
}

// SetEnvironment uses one panorama as both background and environment.
func (s *Scene) SetEnvironment(env *texture.HDR) {
	s.Background = env
	s.Environment = env
}

// UpdateWorld refreshes every world matrix.
func (s *Scene) UpdateWorld() {
	s.Root.UpdateWorld()
}
