package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for image.Decode
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// HDR is a linear RGB float image, rows top to bottom.
type HDR struct {
	Width  int
	Height int
	Pix    []float32 // 3 floats per pixel
}

// NewHDR allocates a black image.
func NewHDR(width, height int) *HDR {
	return &HDR{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*3),
	}
}

// At returns the pixel at (x, y).
func (h *HDR) At(x, y int) [3]float32 {
	i := (y*h.Width + x) * 3
	return [3]float32{h.Pix[i], h.Pix[i+1], h.Pix[i+2]}
}

// Set stores the pixel at (x, y).
func (h *HDR) Set(x, y int, c [3]float32) {
	i := (y*h.Width + x) * 3
	h.Pix[i], h.Pix[i+1], h.Pix[i+2] = c[0], c[1], c[2]
}

// MaxLuminance returns the brightest pixel's Rec. 709 luminance.
func (h *HDR) MaxLuminance() float32 {
	var peak float32
	for i := 0; i+2 < len(h.Pix); i += 3 {
		l := 0.2126*h.Pix[i] + 0.7152*h.Pix[i+1] + 0.0722*h.Pix[i+2]
		if l > peak {
			peak = l
		}
	}
	return peak
}

// SampleDirection returns the nearest texel seen along a world direction when
// the image is wrapped as an equirectangular panorama (+Y up).
func (h *HDR) SampleDirection(dx, dy, dz float32) [3]float32 {
	u, v := EquirectUV(dx, dy, dz)
	x := int(u * float32(h.Width))
	y := int(v * float32(h.Height))
	if x >= h.Width {
		x = h.Width - 1
	}
	if y >= h.Height {
		y = h.Height - 1
	}
	return h.At(x, y)
}

// EquirectUV maps a direction to panorama coordinates in [0,1]². v=0 is
// straight up. Matches the mapping in the background shader.
func EquirectUV(dx, dy, dz float32) (u, v float32) {
	l := math32.Sqrt(dx*dx + dy*dy + dz*dz)
	if l == 0 {
		return 0.5, 0.5
	}
	dx, dy, dz = dx/l, dy/l, dz/l
	u = math32.Atan2(dz, dx)/(2*math32.Pi) + 0.5
	v = math32.Acos(math32.Max(-1, math32.Min(1, dy))) / math32.Pi
	return u, v
}

// FromImage converts an 8-bit sRGB image into linear floats.
func FromImage(img image.Image) *HDR {
	b := img.Bounds()
	out := NewHDR(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out.Set(x-b.Min.X, y-b.Min.Y, [3]float32{
				srgbToLinear(float32(r) / 0xffff),
				srgbToLinear(float32(g) / 0xffff),
				srgbToLinear(float32(bl) / 0xffff),
			})
		}
	}
	return out
}

// DecodeImage decodes any registered LDR format (PNG, JPEG, BMP, TIFF, WebP).
func DecodeImage(data []byte) (*HDR, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return FromImage(img), nil
}

// Decode picks a decoder by file extension: .hdr/.pic are Radiance files,
// anything else goes through DecodeImage.
func Decode(name string, data []byte) (*HDR, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".hdr", ".pic":
		return DecodeRGBE(data)
	default:
		return DecodeImage(data)
	}
}

func srgbToLinear(c float32) float32 {
	if c < 0.04045 {
		return c * 0.0773993808
	}
	return math32.Pow(c*0.9478672986+0.0521327014, 2.4)
}
