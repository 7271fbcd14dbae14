package pattern

import (
	"fmt"
	"sync"
)

// frameCache memoizes composited global frames. It is owned by the Pattern
// and flushed whenever a structural or pixel mutation commits; it is never
// shared process-wide. The mutex makes concurrent composite readers (the
// player and the preview API) safe; mutations stay single-threaded.
type frameCache struct {
	mu     sync.RWMutex
	frames map[int]*Frame
}

func newFrameCache() *frameCache {
	c := new(frameCache)
	c.frames = make(map[int]*Frame)
	return c
}

func (c *frameCache) get(g int) (*Frame, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.frames[g]
	return f, ok
}

func (c *frameCache) put(g int, f *Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames[g] = f
}

func (c *frameCache) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = make(map[int]*Frame)
}

// Pattern is the whole animation document: matrix dimensions, the layer
// stack, keyframe tracks, and the derived global timeline consumed by
// preview and export.
type Pattern struct {
	width  int
	height int

	manager *LayerManager
	tracks  map[string]*Track

	// global timeline slots; length is the global frame count and each
	// slot carries the frame duration used when compositing.
	frames []*Frame

	current  int // edit cursor: local frame index brush strokes hit
	pending  []DesignAction
	notifier *Notifier
	cache    *frameCache
}

// NewPattern creates a pattern with a single blank global frame and no
// layers.
func NewPattern(width, height int) *Pattern {
	p := new(Pattern)
	p.width = width
	p.height = height
	p.manager = NewLayerManager()
	p.tracks = make(map[string]*Track)
	p.frames = []*Frame{NewFrame(width, height, DefaultFrameDuration)}
	p.notifier = NewNotifier()
	p.cache = newFrameCache()

	// The cache invalidates itself off the same bus the GUI listens on,
	// so memoized composites can never outlive a committed mutation.
	p.notifier.Subscribe(func(Event) {
		p.cache.flush()
	})

	return p
}

// Width returns the matrix width.
func (p *Pattern) Width() int {
	return p.width
}

// Height returns the matrix height.
func (p *Pattern) Height() int {
	return p.height
}

// Manager returns the pattern's layer manager.
func (p *Pattern) Manager() *LayerManager {
	return p.manager
}

// FrameCount returns the global frame count, always at least 1.
func (p *Pattern) FrameCount() int {
	return len(p.frames)
}

// Subscribe registers a listener for structural change events.
func (p *Pattern) Subscribe(fn func(Event)) {
	p.notifier.Subscribe(fn)
}

// CurrentFrame returns the edit cursor, the local frame index brush strokes
// apply to.
func (p *Pattern) CurrentFrame() int {
	return p.current
}

// SetCurrentFrame moves the edit cursor.
func (p *Pattern) SetCurrentFrame(local int) error {
	if local < 0 {
		return fmt.Errorf("cursor %d: %w", local, ErrInvalidFrameIndex)
	}
	p.current = local
	return nil
}

// EnsureLength grows the global timeline with blank placeholder frames
// until it holds at least n slots. The timeline never shrinks here.
func (p *Pattern) EnsureLength(n int) {
	grown := false
	for len(p.frames) < n {
		p.frames = append(p.frames, NewFrame(p.width, p.height, DefaultFrameDuration))
		grown = true
	}
	if grown {
		p.notifier.publish(Event{Kind: FrameRangeChanged, Frame: len(p.frames)})
	}
}

// SetFrameDuration sets the display duration of one global timeline slot.
// Slot durations cover frames no visible layer supplies content for; once
// a layer contributes, its bottom-most frame's duration drives playback.
func (p *Pattern) SetFrameDuration(g, ms int) error {
	if g < 0 || g >= len(p.frames) {
		return fmt.Errorf("global frame %d of %d: %w", g, len(p.frames), ErrInvalidFrameIndex)
	}
	p.frames[g].SetDuration(ms)
	p.notifier.publish(Event{Kind: FrameEdited, Frame: g})
	return nil
}

// CompositedFrame returns the composited pixel content shown at global
// frame g. Results are cached until the next committed mutation.
func (p *Pattern) CompositedFrame(g int) (*Frame, error) {
	if g < 0 || g >= len(p.frames) {
		return nil, fmt.Errorf("global frame %d of %d: %w", g, len(p.frames), ErrInvalidFrameIndex)
	}
	if f, ok := p.cache.get(g); ok {
		return f, nil
	}
	f, err := p.manager.Composite(g, p.width, p.height)
	if err != nil {
		return nil, err
	}
	if !p.manager.contributesAt(g) {
		f.SetDuration(p.frames[g].duration)
	}
	p.cache.put(g, f)
	return f, nil
}

// AddLayer creates a new layer on top of the stack and makes it active.
func (p *Pattern) AddLayer(name string) (*LayerTrack, error) {
	l, err := p.manager.AddLayer(name)
	if err != nil {
		return nil, err
	}
	p.manager.active = p.manager.Count() - 1
	p.notifier.publish(Event{Kind: LayerAdded, Layer: name})
	p.notifier.publish(Event{Kind: ActiveLayerChanged, Frame: p.manager.active})
	return l, nil
}

// RemoveLayer deletes a layer by name.
func (p *Pattern) RemoveLayer(name string) error {
	if err := p.manager.RemoveLayer(name); err != nil {
		return err
	}
	p.notifier.publish(Event{Kind: LayerRemoved, Layer: name})
	return nil
}

// MoveLayer repositions a layer in the stack.
func (p *Pattern) MoveLayer(name string, index int) error {
	if err := p.manager.MoveLayer(name, index); err != nil {
		return err
	}
	p.notifier.publish(Event{Kind: LayerMoved, Layer: name, Frame: index})
	return nil
}

// SetActiveLayer switches the layer edits apply to.
func (p *Pattern) SetActiveLayer(index int) error {
	if err := p.manager.SetActive(index); err != nil {
		return err
	}
	p.notifier.publish(Event{Kind: ActiveLayerChanged, Frame: index})
	return nil
}

// ApplyBrush paints one stroke onto the active layer's frame at the edit
// cursor, creating the frame if needed.
func (p *Pattern) ApplyBrush(x, y int, b Brush, colour RGB) error {
	layer, err := p.manager.ActiveLayer()
	if err != nil {
		return err
	}
	if layer.Locked {
		return fmt.Errorf("layer %q: %w", layer.name, ErrLayerLocked)
	}
	f, err := layer.FrameOrCreate(p.current, p.width, p.height)
	if err != nil {
		return err
	}
	if f.buffer.width != p.width || f.buffer.height != p.height {
		return fmt.Errorf("layer %q frame %dx%d on %dx%d matrix: %w",
			layer.name, f.buffer.width, f.buffer.height, p.width, p.height, ErrDimensionMismatch)
	}
	b.Apply(f.buffer, x, y, colour)
	p.EnsureLength(p.manager.EndFrame() + 1)
	p.notifier.publish(Event{Kind: FrameEdited, Layer: layer.name, Frame: p.current})
	return nil
}

// Track returns the keyframe track for a named property, creating it on
// first use.
func (p *Pattern) Track(name string) *Track {
	t, ok := p.tracks[name]
	if !ok {
		t = NewTrack(name)
		p.tracks[name] = t
	}
	return t
}

// SetKey adds or replaces a keyframe on a named property track.
func (p *Pattern) SetKey(track string, k Keyframe) {
	p.Track(track).SetKey(k)
}
