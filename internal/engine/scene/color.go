package scene

import "github.com/chewxy/math32"

// Color is a linear RGB color.
type Color struct {
	R, G, B float32
}

// Common colors.
var (
	White = Color{1, 1, 1}
	Red   = Color{1, 0, 0}
	Green = Color{0, 1, 0}
)

// ColorFromHex converts a 0xRRGGBB sRGB value into linear RGB.
func ColorFromHex(hex uint32) Color {
	return Color{
		R: srgbToLinear(float32(hex>>16&0xff) / 255),
		G: srgbToLinear(float32(hex>>8&0xff) / 255),
		B: srgbToLinear(float32(hex&0xff) / 255),
	}
}

// Hex converts the color back into a 0xRRGGBB sRGB value, clamping to range.
func (c Color) Hex() uint32 {
	r := uint32(math32.Round(clamp01(linearToSRGB(c.R)) * 255))
	g := uint32(math32.Round(clamp01(linearToSRGB(c.G)) * 255))
	b := uint32(math32.Round(clamp01(linearToSRGB(c.B)) * 255))
	return r<<16 | g<<8 | b
}

// Vec returns the color as an array for uniform upload.
func (c Color) Vec() [3]float32 {
	return [3]float32{c.R, c.G, c.B}
}

func srgbToLinear(c float32) float32 {
	if c < 0.04045 {
		return c * 0.0773993808
	}
	return math32.Pow(c*0.9478672986+0.0521327014, 2.4)
}

func linearToSRGB(c float32) float32 {
	if c < 0.0031308 {
		return c * 12.92
	}
	return 1.055*math32.Pow(c, 1/2.4) - 0.055
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}
