package scene

// Side selects which triangle faces are drawn and hit by rays.
type Side int

const (
	FrontSide Side = iota
	DoubleSide
)

// Material describes how a mesh is shaded.
type Material interface {
	Side() Side
	Clone() Material
}

// Colorable is a material with a single base color that may be reassigned.
type Colorable interface {
	Material
	BaseColor() Color
	SetBaseColor(Color)
}

// StandardMaterial is a metallic-roughness material lit by the environment.
type StandardMaterial struct {
	Name        string
	Color       Color
	Metalness   float32
	Roughness   float32
	Emissive    Color
	DoubleSided bool
}

// NewStandardMaterial returns a white dielectric material.
func NewStandardMaterial(name string) *StandardMaterial {
	return &StandardMaterial{
		Name:      name,
		Color:     White,
		Metalness: 0,
		Roughness: 1,
	}
}

// Side implements Material.
func (m *StandardMaterial) Side() Side {
	if m.DoubleSided {
		return DoubleSide
	}
	return FrontSide
}

// Clone implements Material.
func (m *StandardMaterial) Clone() Material {
	c := *m
	return &c
}

// BaseColor implements Colorable.
func (m *StandardMaterial) BaseColor() Color { return m.Color }

// SetBaseColor implements Colorable.
func (m *StandardMaterial) SetBaseColor(c Color) { m.Color = c }

// UniformBlock is the per-frame state read by shader materials.
type UniformBlock struct {
	Time  float32
	Color Color
}

// ShaderMaterial draws with the pulse program: Color · |sin(Time + u·π)|.
// It has no base color of its own and is not Colorable.
type ShaderMaterial struct {
	Name        string
	Uniforms    *UniformBlock
	DoubleSided bool
}

// Side implements Material.
func (m *ShaderMaterial) Side() Side {
	if m.DoubleSided {
		return DoubleSide
	}
	return FrontSide
}

// Clone implements Material. The clone shares the uniform block.
func (m *ShaderMaterial) Clone() Material {
	c := *m
	return &c
}
