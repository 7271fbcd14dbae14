package pattern

import (
	"math"
)

// BrushShape selects the footprint of a brush stroke.
type BrushShape int

const (
	// BrushSquare paints every pixel in the bounding box at full strength.
	BrushSquare BrushShape = iota
	// BrushCircle paints a disc with linear falloff towards the rim.
	BrushCircle
)

// Brush holds the stroke settings used when painting onto a frame.
type Brush struct {
	Size     int // footprint diameter in pixels, minimum 1
	Shape    BrushShape
	Hardness float64 // rim coverage for circle brushes, 0..1
	Opacity  float64 // overall stroke strength, 0..1
}

// Coverage is one pixel affected by a stroke and how strongly it is hit.
type Coverage struct {
	X        int
	Y        int
	Coverage float64
}

// normalized returns a copy of the brush with all settings clamped into
// their valid ranges.
func (b Brush) normalized() Brush {
	if b.Size < 1 {
		b.Size = 1
	}
	b.Hardness = clamp01(b.Hardness)
	b.Opacity = clamp01(b.Opacity)
	return b
}

// Rasterize converts a stroke centred at (cx, cy) on a width x height
// surface into the set of affected pixels. Out-of-bounds pixels and pixels
// with zero coverage are omitted. This is a pure function of its inputs.
func (b Brush) Rasterize(cx, cy, width, height int) []Coverage {
	b = b.normalized()
	radius := b.Size / 2
	out := make([]Coverage, 0, b.Size*b.Size)

	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			if x < 0 || x >= width || y < 0 || y >= height {
				continue
			}

			cov := b.Opacity
			if b.Shape == BrushCircle && radius > 0 {
				d := math.Hypot(float64(x-cx), float64(y-cy))
				if d > float64(radius)+0.5 {
					continue
				}
				falloff := 1.0 - (d/float64(radius))*(1.0-b.Hardness)
				cov = clamp01(falloff) * b.Opacity
			}

			if cov <= 0 {
				continue
			}
			out = append(out, Coverage{X: x, Y: y, Coverage: cov})
		}
	}

	return out
}

// Apply paints a stroke of the given colour onto a buffer, blending each
// covered pixel towards the stroke colour by its coverage.
func (b Brush) Apply(buf *PixelBuffer, cx, cy int, colour RGB) {
	for _, c := range b.Rasterize(cx, cy, buf.width, buf.height) {
		existing := buf.pixels[c.Y*buf.width+c.X]
		blended := existing.Colorful().BlendRgb(colour.Colorful(), c.Coverage)
		buf.pixels[c.Y*buf.width+c.X] = FromColorful(blended)
	}
}
