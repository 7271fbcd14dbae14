package pattern

import (
	"github.com/lucasb-eyer/go-colorful"
)

// GradientTable stores a look-up table of hues keyed by position in [0, 1].
// The gradient design action sweeps it across the matrix.
type GradientTable []struct {
	Hue float64
	Pos float64
}

// DefaultGradient covers the full hue wheel.
var DefaultGradient = GradientTable{
	{0.0, 0.0},
	{60.0, 0.17},
	{120.0, 0.33},
	{180.0, 0.50},
	{240.0, 0.67},
	{300.0, 0.83},
	{360.0, 1.0},
}

// GetColor gets a colour at the specified point on the look-up table.
func (g GradientTable) GetColor(t, s, l float64) colorful.Color {
	for i := 0; i < len(g)-1; i++ {
		c1 := g[i]
		c2 := g[i+1]
		if c1.Pos <= t && t <= c2.Pos {
			// We are in between c1 and c2. Go blend them!
			h := (((t - c1.Pos) / (c2.Pos - c1.Pos)) * (c2.Hue - c1.Hue)) + c1.Hue
			return colorful.Hcl(h, s, l)
		}
	}

	// Nothing found? Means we're at (or past) the last gradient keypoint.
	return colorful.Hcl(g[len(g)-1].Hue, s, l)
}
