package pattern

import (
	"encoding/binary"
)

// DefaultFrameDuration is the display time in milliseconds given to frames
// created without an explicit duration.
const DefaultFrameDuration = 100

// Frame is one rendered animation step: a pixel buffer plus how long the
// device should display it.
type Frame struct {
	buffer   *PixelBuffer
	duration int
}

// NewFrame creates a blank frame of the given dimensions.
func NewFrame(width, height, durationMs int) *Frame {
	f := new(Frame)
	f.buffer = NewPixelBuffer(width, height)
	if durationMs <= 0 {
		durationMs = DefaultFrameDuration
	}
	f.duration = durationMs
	return f
}

// Buffer returns the frame's pixel buffer.
func (f *Frame) Buffer() *PixelBuffer {
	return f.buffer
}

// Duration returns the frame display time in milliseconds.
func (f *Frame) Duration() int {
	return f.duration
}

// SetDuration sets the frame display time, ignoring non-positive values.
func (f *Frame) SetDuration(ms int) {
	if ms > 0 {
		f.duration = ms
	}
}

// Copy returns a deep copy; pixel data is never shared between frames.
func (f *Frame) Copy() *Frame {
	out := new(Frame)
	out.buffer = f.buffer.Copy()
	out.duration = f.duration
	return out
}

// Equal reports whether two frames have identical pixel content.
// Durations are not compared; deduplication is visual.
func (f *Frame) Equal(other *Frame) bool {
	if other == nil {
		return false
	}
	return f.buffer.Equal(other.buffer)
}

// Crossfade blends this frame towards another in HCL space.
// transitionPoint 0 is this frame, 1 is the other.
func (f *Frame) Crossfade(other *Frame, transitionPoint float64) *Frame {
	out := NewFrame(f.buffer.width, f.buffer.height, f.duration)
	for i := range f.buffer.pixels {
		c := f.buffer.pixels[i].Colorful().BlendHcl(other.buffer.pixels[i].Colorful(), transitionPoint)
		out.buffer.pixels[i] = FromColorful(c)
	}
	return out
}

// MarshalBinary converts a Frame into the receiver stream format:
// a little-endian uint16 pixel count followed by RGB triples.
func (f *Frame) MarshalBinary() (data []byte, err error) {
	n := len(f.buffer.pixels)
	data = make([]byte, 2, n*3+2)
	binary.LittleEndian.PutUint16(data, uint16(n))
	for _, p := range f.buffer.pixels {
		data = append(data, p.R, p.G, p.B)
	}

	return data, nil
}
