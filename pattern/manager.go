package pattern

import (
	"fmt"
)

// LayerManager owns the ordered stack of layer tracks and the active layer
// pointer. Index 0 is the bottom of the stack; compositing paints upward
// from there.
type LayerManager struct {
	layers []*LayerTrack
	active int
}

// NewLayerManager creates an empty manager.
func NewLayerManager() *LayerManager {
	m := new(LayerManager)
	return m
}

// Count returns the number of layers.
func (m *LayerManager) Count() int {
	return len(m.layers)
}

// Layers returns the layer stack bottom-first. The slice is a copy; the
// tracks are shared.
func (m *LayerManager) Layers() []*LayerTrack {
	out := make([]*LayerTrack, len(m.layers))
	copy(out, m.layers)
	return out
}

// Layer looks a layer up by name.
func (m *LayerManager) Layer(name string) (*LayerTrack, error) {
	for _, l := range m.layers {
		if l.name == name {
			return l, nil
		}
	}
	return nil, fmt.Errorf("layer %q: %w", name, ErrUnknownLayer)
}

// AddLayer appends a new empty layer on top of the stack. Names must be
// unique within the manager.
func (m *LayerManager) AddLayer(name string) (*LayerTrack, error) {
	for _, l := range m.layers {
		if l.name == name {
			return nil, fmt.Errorf("layer %q already exists", name)
		}
	}
	l := newLayerTrack(name)
	m.layers = append(m.layers, l)
	return l, nil
}

// RemoveLayer deletes a layer by name. The active pointer is clamped so it
// stays valid while any layers remain.
func (m *LayerManager) RemoveLayer(name string) error {
	for i, l := range m.layers {
		if l.name == name {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			if m.active >= len(m.layers) {
				m.active = len(m.layers) - 1
			}
			if m.active < 0 {
				m.active = 0
			}
			return nil
		}
	}
	return fmt.Errorf("layer %q: %w", name, ErrUnknownLayer)
}

// MoveLayer repositions a layer within the stack. The index is clamped into
// range.
func (m *LayerManager) MoveLayer(name string, index int) error {
	from := -1
	for i, l := range m.layers {
		if l.name == name {
			from = i
			break
		}
	}
	if from < 0 {
		return fmt.Errorf("layer %q: %w", name, ErrUnknownLayer)
	}
	if index < 0 {
		index = 0
	}
	if index >= len(m.layers) {
		index = len(m.layers) - 1
	}
	l := m.layers[from]
	m.layers = append(m.layers[:from], m.layers[from+1:]...)
	m.layers = append(m.layers[:index], append([]*LayerTrack{l}, m.layers[index:]...)...)
	return nil
}

// ActiveIndex returns the current active layer index.
func (m *LayerManager) ActiveIndex() int {
	return m.active
}

// SetActive points the manager at a different layer.
func (m *LayerManager) SetActive(index int) error {
	if index < 0 || index >= len(m.layers) {
		return fmt.Errorf("active index %d of %d layers: %w", index, len(m.layers), ErrUnknownLayer)
	}
	m.active = index
	return nil
}

// ActiveLayer resolves the layer edits apply to. An invalid active pointer
// falls back to layer 0; an empty manager fails with ErrNoLayers.
func (m *LayerManager) ActiveLayer() (*LayerTrack, error) {
	if len(m.layers) == 0 {
		return nil, ErrNoLayers
	}
	if m.active < 0 || m.active >= len(m.layers) {
		m.active = 0
	}
	return m.layers[m.active], nil
}

// EndFrame returns the highest local end frame across all layers, or -1
// when no layer has content.
func (m *LayerManager) EndFrame() int {
	end := -1
	for _, l := range m.layers {
		if l.endFrame > end {
			end = l.endFrame
		}
	}
	return end
}

// contributesAt reports whether any visible layer supplies content at
// global frame g.
func (m *LayerManager) contributesAt(g int) bool {
	for _, l := range m.layers {
		if l.Visible && l.FrameAt(g) != nil {
			return true
		}
	}
	return false
}

// Composite renders global frame g by sampling every visible layer at its
// own clamped local index and blending bottom-up with each layer's blend
// mode and opacity. The result frame takes its duration from the bottom-most
// contributing layer.
func (m *LayerManager) Composite(g, width, height int) (*Frame, error) {
	out := NewFrame(width, height, DefaultFrameDuration)
	first := true
	for _, l := range m.layers {
		if !l.Visible {
			continue
		}
		src := l.FrameAt(g)
		if src == nil {
			continue
		}
		if src.buffer.width != width || src.buffer.height != height {
			return nil, fmt.Errorf("layer %q frame %dx%d on %dx%d matrix: %w",
				l.name, src.buffer.width, src.buffer.height, width, height, ErrDimensionMismatch)
		}
		if first {
			out.duration = src.duration
			first = false
		}
		compositeOver(out.buffer, src.buffer, l.Blend, l.Opacity)
	}
	return out, nil
}

// compositeOver blends src onto dst in place.
func compositeOver(dst, src *PixelBuffer, mode BlendMode, opacity float64) {
	opacity = clamp01(opacity)
	for i := range dst.pixels {
		d := dst.pixels[i]
		s := src.pixels[i]
		blended := blendPixel(d, s, mode)
		mixed := d.Colorful().BlendRgb(blended.Colorful(), opacity)
		dst.pixels[i] = FromColorful(mixed)
	}
}

func blendPixel(d, s RGB, mode BlendMode) RGB {
	switch mode {
	case BlendAdd:
		return RGB{
			R: addChannel(d.R, s.R),
			G: addChannel(d.G, s.G),
			B: addChannel(d.B, s.B),
		}
	case BlendMultiply:
		return RGB{
			R: uint8(int(d.R) * int(s.R) / 255),
			G: uint8(int(d.G) * int(s.G) / 255),
			B: uint8(int(d.B) * int(s.B) / 255),
		}
	case BlendScreen:
		return RGB{
			R: 255 - uint8(int(255-d.R)*int(255-s.R)/255),
			G: 255 - uint8(int(255-d.G)*int(255-s.G)/255),
			B: 255 - uint8(int(255-d.B)*int(255-s.B)/255),
		}
	default:
		return s
	}
}

func addChannel(a, b uint8) uint8 {
	v := int(a) + int(b)
	if v > 255 {
		v = 255
	}
	return uint8(v)
}
