package pattern

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is a single pixel colour with 8 bits per channel.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Colorful converts the pixel into a colorful.Color for blending.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// FromColorful converts a colorful.Color back into an RGB pixel,
// clamping each channel into displayable range first.
func FromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// Hex parses a colour of the form "#rrggbb".
func Hex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, err
	}
	return FromColorful(c), nil
}

// PixelBuffer is a fixed-size grid of RGB pixels stored row-major.
// It is the unit of a single rendered frame.
type PixelBuffer struct {
	width  int
	height int
	pixels []RGB
}

// NewPixelBuffer creates a buffer of the given dimensions filled with black.
func NewPixelBuffer(width, height int) *PixelBuffer {
	b := new(PixelBuffer)
	b.width = width
	b.height = height
	b.pixels = make([]RGB, width*height)
	return b
}

// Width returns the buffer width in pixels.
func (b *PixelBuffer) Width() int {
	return b.width
}

// Height returns the buffer height in pixels.
func (b *PixelBuffer) Height() int {
	return b.height
}

func (b *PixelBuffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// At returns the pixel at (x, y).
func (b *PixelBuffer) At(x, y int) (RGB, error) {
	if !b.inBounds(x, y) {
		return RGB{}, fmt.Errorf("at (%d,%d) in %dx%d: %w", x, y, b.width, b.height, ErrOutOfBounds)
	}
	return b.pixels[y*b.width+x], nil
}

// Set writes the pixel at (x, y).
func (b *PixelBuffer) Set(x, y int, c RGB) error {
	if !b.inBounds(x, y) {
		return fmt.Errorf("set (%d,%d) in %dx%d: %w", x, y, b.width, b.height, ErrOutOfBounds)
	}
	b.pixels[y*b.width+x] = c
	return nil
}

// Fill sets every pixel to the given colour.
func (b *PixelBuffer) Fill(c RGB) {
	for i := range b.pixels {
		b.pixels[i] = c
	}
}

// Copy returns a deep, independent copy of the buffer.
func (b *PixelBuffer) Copy() *PixelBuffer {
	out := NewPixelBuffer(b.width, b.height)
	copy(out.pixels, b.pixels)
	return out
}

// Equal reports whether two buffers have identical dimensions and pixel
// content.
func (b *PixelBuffer) Equal(other *PixelBuffer) bool {
	if other == nil || b.width != other.width || b.height != other.height {
		return false
	}
	for i := range b.pixels {
		if b.pixels[i] != other.pixels[i] {
			return false
		}
	}
	return true
}

// Resize reallocates the buffer to the new dimensions, preserving the
// origin-aligned overlap and filling any new cells with black.
func (b *PixelBuffer) Resize(width, height int) {
	pixels := make([]RGB, width*height)
	w := b.width
	if width < w {
		w = width
	}
	h := b.height
	if height < h {
		h = height
	}
	for y := 0; y < h; y++ {
		copy(pixels[y*width:y*width+w], b.pixels[y*b.width:y*b.width+w])
	}
	b.width = width
	b.height = height
	b.pixels = pixels
}

// Shifted returns a copy of the buffer translated by (dx, dy) with
// wrap-around at the edges.
func (b *PixelBuffer) Shifted(dx, dy int) *PixelBuffer {
	out := NewPixelBuffer(b.width, b.height)
	for y := 0; y < b.height; y++ {
		sy := mod(y-dy, b.height)
		for x := 0; x < b.width; x++ {
			sx := mod(x-dx, b.width)
			out.pixels[y*b.width+x] = b.pixels[sy*b.width+sx]
		}
	}
	return out
}

// Rotated90 returns the buffer rotated a quarter turn clockwise.
// The result has swapped dimensions.
func (b *PixelBuffer) Rotated90() *PixelBuffer {
	out := NewPixelBuffer(b.height, b.width)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			out.pixels[x*out.width+(out.width-1-y)] = b.pixels[y*b.width+x]
		}
	}
	return out
}

// Rotated180 returns the buffer rotated a half turn.
func (b *PixelBuffer) Rotated180() *PixelBuffer {
	out := NewPixelBuffer(b.width, b.height)
	n := len(b.pixels)
	for i := 0; i < n; i++ {
		out.pixels[n-1-i] = b.pixels[i]
	}
	return out
}

// FlippedH returns the buffer mirrored about the vertical axis.
func (b *PixelBuffer) FlippedH() *PixelBuffer {
	out := NewPixelBuffer(b.width, b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			out.pixels[y*b.width+(b.width-1-x)] = b.pixels[y*b.width+x]
		}
	}
	return out
}

// FlippedV returns the buffer mirrored about the horizontal axis.
func (b *PixelBuffer) FlippedV() *PixelBuffer {
	out := NewPixelBuffer(b.width, b.height)
	for y := 0; y < b.height; y++ {
		copy(out.pixels[(b.height-1-y)*b.width:(b.height-y)*b.width],
			b.pixels[y*b.width:(y+1)*b.width])
	}
	return out
}

// Inverted returns the buffer with every channel inverted.
func (b *PixelBuffer) Inverted() *PixelBuffer {
	out := NewPixelBuffer(b.width, b.height)
	for i, p := range b.pixels {
		out.pixels[i] = RGB{R: 255 - p.R, G: 255 - p.G, B: 255 - p.B}
	}
	return out
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
