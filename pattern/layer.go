package pattern

import (
	"fmt"
)

// BlendMode selects how a layer's pixels combine with the layers below it
// during compositing.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendAdd
	BlendMultiply
	BlendScreen
)

// LayerTrack is one visual layer's animation: a named sequence of frames
// addressed by local index. Local indices always start at 0 and are
// independent of every other layer and of the global timeline.
type LayerTrack struct {
	name     string
	frames   map[int]*Frame
	endFrame int // highest populated local index, -1 when empty

	Visible bool
	Opacity float64
	Blend   BlendMode
	Locked  bool
}

func newLayerTrack(name string) *LayerTrack {
	l := new(LayerTrack)
	l.name = name
	l.frames = make(map[int]*Frame)
	l.endFrame = -1
	l.Visible = true
	l.Opacity = 1.0
	return l
}

// Name returns the layer name, unique within its manager.
func (l *LayerTrack) Name() string {
	return l.name
}

// EndFrame returns the highest populated local index, or -1 when the layer
// has no content.
func (l *LayerTrack) EndFrame() int {
	return l.endFrame
}

// HasContent reports whether any local frame is populated.
func (l *LayerTrack) HasContent() bool {
	return l.endFrame >= 0
}

// Frame returns the frame stored at the given local index, or nil when the
// index is absent or negative.
func (l *LayerTrack) Frame(local int) *Frame {
	if local < 0 {
		return nil
	}
	return l.frames[local]
}

// FrameOrCreate returns the frame at the given local index, creating and
// storing a blank frame of the given dimensions when absent. EndFrame is
// extended if the index grows the layer.
func (l *LayerTrack) FrameOrCreate(local, width, height int) (*Frame, error) {
	if local < 0 {
		return nil, fmt.Errorf("local index %d: %w", local, ErrInvalidFrameIndex)
	}
	if f, ok := l.frames[local]; ok {
		return f, nil
	}
	f := NewFrame(width, height, DefaultFrameDuration)
	l.frames[local] = f
	if local > l.endFrame {
		l.endFrame = local
	}
	return f, nil
}

// SetFrame stores or replaces the frame at the given local index and
// extends EndFrame when the index grows the layer.
func (l *LayerTrack) SetFrame(local int, f *Frame) error {
	if local < 0 {
		return fmt.Errorf("local index %d: %w", local, ErrInvalidFrameIndex)
	}
	l.frames[local] = f
	if local > l.endFrame {
		l.endFrame = local
	}
	return nil
}

// FrameAt resolves the frame this layer shows at global frame index g.
// Indices beyond EndFrame clamp to the last local frame; a gap left by
// manual editing resolves to the nearest populated earlier frame. Returns
// nil when the layer is empty.
func (l *LayerTrack) FrameAt(g int) *Frame {
	if l.endFrame < 0 {
		return nil
	}
	if g < 0 {
		g = 0
	}
	if g > l.endFrame {
		g = l.endFrame
	}
	for i := g; i >= 0; i-- {
		if f, ok := l.frames[i]; ok {
			return f
		}
	}
	return nil
}

// truncate drops every frame above the given local index and resets
// EndFrame accordingly. A negative index empties the layer.
func (l *LayerTrack) truncate(end int) {
	for i := range l.frames {
		if i > end {
			delete(l.frames, i)
		}
	}
	l.endFrame = -1
	for i := range l.frames {
		if i > l.endFrame {
			l.endFrame = i
		}
	}
}
