// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader is the vertex shader for lit model meshes.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader shades meshes from the environment map with a
// metalness/roughness approximation and ACES tone mapping.
//
//go:embed mesh.frag
var MeshFragmentShader string

// PulseVertexShader is the vertex shader for the pulsing shader material.
//
//go:embed pulse.vert
var PulseVertexShader string

// PulseFragmentShader modulates uColor by a sine wave running along U.
//
//go:embed pulse.frag
var PulseFragmentShader string

// BackgroundVertexShader draws a fullscreen triangle.
//
//go:embed background.vert
var BackgroundVertexShader string

// BackgroundFragmentShader samples the equirectangular background.
//
//go:embed background.frag
var BackgroundFragmentShader string

// LinesVertexShader is the vertex shader for debug line overlays.
//
//go:embed lines.vert
var LinesVertexShader string

// LinesFragmentShader is the fragment shader for debug line overlays.
//
//go:embed lines.frag
var LinesFragmentShader string
