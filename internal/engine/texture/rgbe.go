// Package texture provides image decoding into linear float panoramas.
package texture

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrNotRGBE is returned when data does not start with a Radiance header.
var ErrNotRGBE = errors.New("not a Radiance RGBE image")

// RGBE header constants.
const (
	rgbeMagic       = "#?"
	rgbeFormat      = "32-bit_rle_rgbe"
	rgbeMinRLEWidth = 8
	rgbeMaxRLEWidth = 0x7fff
)

// DecodeRGBE decodes a Radiance .hdr image.
// Supports flat, old-style run-length and adaptive (new-style) RLE scanlines
// with "-Y H +X W" or "+Y H +X W" orientation.
func DecodeRGBE(data []byte) (*HDR, error) {
	r := bufio.NewReader(bytes.NewReader(data))

	width, height, topToBottom, err := readRGBEHeader(r)
	if err != nil {
		return nil, err
	}

	img := NewHDR(width, height)
	scanline := make([]byte, width*4)

	for y := 0; y < height; y++ {
		if err := readScanline(r, scanline); err != nil {
			return nil, fmt.Errorf("RGBE scanline %d: %w", y, err)
		}
		destY := y
		if !topToBottom {
			destY = height - 1 - y
		}
		row := img.Pix[destY*width*3 : (destY+1)*width*3]
		for x := 0; x < width; x++ {
			rgbeToFloat(scanline[x*4:x*4+4], row[x*3:x*3+3])
		}
	}

	return img, nil
}

func readRGBEHeader(r *bufio.Reader) (width, height int, topToBottom bool, err error) {
	first, err := r.ReadString('\n')
	if err != nil || !strings.HasPrefix(first, rgbeMagic) {
		return 0, 0, false, ErrNotRGBE
	}

	// Header lines until a blank line.
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return 0, 0, false, fmt.Errorf("RGBE header truncated: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "FORMAT="); ok && v != rgbeFormat {
			return 0, 0, false, fmt.Errorf("unsupported RGBE format %q", v)
		}
	}

	res, err := r.ReadString('\n')
	if err != nil {
		return 0, 0, false, fmt.Errorf("RGBE resolution line missing: %w", err)
	}
	f := strings.Fields(res)
	if len(f) != 4 || f[2] != "+X" {
		return 0, 0, false, fmt.Errorf("unsupported RGBE orientation %q", strings.TrimSpace(res))
	}
	switch f[0] {
	case "-Y":
		topToBottom = true
	case "+Y":
		topToBottom = false
	default:
		return 0, 0, false, fmt.Errorf("unsupported RGBE orientation %q", strings.TrimSpace(res))
	}
	height, err1 := strconv.Atoi(f[1])
	width, err2 := strconv.Atoi(f[3])
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return 0, 0, false, fmt.Errorf("invalid RGBE size %q", strings.TrimSpace(res))
	}
	return width, height, topToBottom, nil
}

// readScanline fills dst (width*4 bytes) with RGBE quads.
func readScanline(r *bufio.Reader, dst []byte) error {
	width := len(dst) / 4
	if width < rgbeMinRLEWidth || width > rgbeMaxRLEWidth {
		return readFlat(r, dst, 0)
	}

	head, err := r.Peek(4)
	if err != nil {
		return err
	}
	if head[0] != 2 || head[1] != 2 || head[2]&0x80 != 0 {
		return readFlat(r, dst, 0)
	}
	if int(head[2])<<8|int(head[3]) != width {
		return fmt.Errorf("scanline width mismatch")
	}
	if _, err := r.Discard(4); err != nil {
		return err
	}
	return readAdaptiveRLE(r, dst)
}

// readAdaptiveRLE reads four planar channels, each run-length encoded.
func readAdaptiveRLE(r *bufio.Reader, dst []byte) error {
	width := len(dst) / 4
	for ch := 0; ch < 4; ch++ {
		x := 0
		for x < width {
			count, err := r.ReadByte()
			if err != nil {
				return err
			}
			if count > 128 {
				// Run: repeat one value.
				n := int(count) - 128
				if x+n > width {
					return fmt.Errorf("RLE run overflows scanline")
				}
				v, err := r.ReadByte()
				if err != nil {
					return err
				}
				for i := 0; i < n; i++ {
					dst[(x+i)*4+ch] = v
				}
				x += n
			} else {
				// Literal: count raw values.
				n := int(count)
				if n == 0 || x+n > width {
					return fmt.Errorf("bad RLE literal length %d", n)
				}
				for i := 0; i < n; i++ {
					v, err := r.ReadByte()
					if err != nil {
						return err
					}
					dst[(x+i)*4+ch] = v
				}
				x += n
			}
		}
	}
	return nil
}

// readFlat reads uncompressed quads from index x on, expanding old-style
// (1,1,1,n) repeat markers.
func readFlat(r *bufio.Reader, dst []byte, x int) error {
	width := len(dst) / 4
	shift := uint(0)
	for x < width {
		var px [4]byte
		if _, err := io.ReadFull(r, px[:]); err != nil {
			return err
		}
		if px[0] == 1 && px[1] == 1 && px[2] == 1 {
			if x == 0 {
				return fmt.Errorf("RLE repeat at scanline start")
			}
			n := int(px[3]) << shift
			if x+n > width {
				return fmt.Errorf("RLE repeat overflows scanline")
			}
			prev := dst[(x-1)*4 : x*4]
			for i := 0; i < n; i++ {
				copy(dst[(x+i)*4:(x+i+1)*4], prev)
			}
			x += n
			shift += 8
			continue
		}
		copy(dst[x*4:x*4+4], px[:])
		x++
		shift = 0
	}
	return nil
}

// rgbeToFloat expands a shared-exponent quad into linear RGB.
func rgbeToFloat(src []byte, dst []float32) {
	e := src[3]
	if e == 0 {
		dst[0], dst[1], dst[2] = 0, 0, 0
		return
	}
	scale := float32(math.Ldexp(1.0/255.0, int(e)-128))
	dst[0] = float32(src[0]) * scale
	dst[1] = float32(src[1]) * scale
	dst[2] = float32(src[2]) * scale
}
