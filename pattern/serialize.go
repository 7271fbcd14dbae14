package pattern

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v2"
)

// Document is the interchange form of a Pattern: nested records the
// project-file writer persists and the loader reconstructs with identical
// local-index semantics. Layers are stored bottom-first, matching the
// compositing order.
type Document struct {
	Width          int             `yaml:"width"`
	Height         int             `yaml:"height"`
	FrameCount     int             `yaml:"frameCount"`
	FrameDurations []int           `yaml:"frameDurations,omitempty"`
	ActiveLayer    int             `yaml:"activeLayer"`
	CurrentFrame   int             `yaml:"currentFrame"`
	Layers         []LayerDocument `yaml:"layers"`
	Tracks         []TrackDocument `yaml:"tracks,omitempty"`
}

// LayerDocument is one layer's serialized form.
type LayerDocument struct {
	Name    string          `yaml:"name"`
	Visible bool            `yaml:"visible"`
	Opacity float64         `yaml:"opacity"`
	Blend   string          `yaml:"blend"`
	Locked  bool            `yaml:"locked"`
	Frames  []FrameDocument `yaml:"frames"`
}

// FrameDocument is one local frame: its index, duration and pixel rows
// encoded as hex triples.
type FrameDocument struct {
	Index    int      `yaml:"index"`
	Duration int      `yaml:"duration"`
	Rows     []string `yaml:"rows"`
}

// TrackDocument is one keyframe track.
type TrackDocument struct {
	Name string        `yaml:"name"`
	Keys []KeyDocument `yaml:"keys"`
}

// KeyDocument is one keyframe. Kind selects which value field is set.
type KeyDocument struct {
	Time   float64     `yaml:"time"`
	Ease   string      `yaml:"ease"`
	Kind   string      `yaml:"kind"`
	Color  string      `yaml:"color,omitempty"`
	Scalar float64     `yaml:"scalar,omitempty"`
	Vector []float64   `yaml:"vector,omitempty"`
	Value  interface{} `yaml:"value,omitempty"`
}

var blendNames = map[BlendMode]string{
	BlendNormal:   "normal",
	BlendAdd:      "add",
	BlendMultiply: "multiply",
	BlendScreen:   "screen",
}

var easeNames = map[EaseMode]string{
	EaseLinear:     "linear",
	EaseInQuad:     "in-quad",
	EaseOutQuad:    "out-quad",
	EaseInOutQuad:  "in-out-quad",
	EaseInCubic:    "in-cubic",
	EaseOutCubic:   "out-cubic",
	EaseInOutCubic: "in-out-cubic",
}

func nameToBlend(s string) (BlendMode, error) {
	for m, n := range blendNames {
		if n == s {
			return m, nil
		}
	}
	return BlendNormal, fmt.Errorf("unknown blend mode %q", s)
}

func nameToEase(s string) (EaseMode, error) {
	for m, n := range easeNames {
		if n == s {
			return m, nil
		}
	}
	return EaseLinear, fmt.Errorf("unknown ease mode %q", s)
}

// Snapshot captures the pattern's full state as a Document.
func (p *Pattern) Snapshot() *Document {
	doc := new(Document)
	doc.Width = p.width
	doc.Height = p.height
	doc.FrameCount = len(p.frames)
	doc.ActiveLayer = p.manager.active
	doc.CurrentFrame = p.current
	for _, f := range p.frames {
		doc.FrameDurations = append(doc.FrameDurations, f.duration)
	}

	for _, l := range p.manager.layers {
		ld := LayerDocument{
			Name:    l.name,
			Visible: l.Visible,
			Opacity: l.Opacity,
			Blend:   blendNames[l.Blend],
			Locked:  l.Locked,
		}
		indices := make([]int, 0, len(l.frames))
		for i := range l.frames {
			indices = append(indices, i)
		}
		sort.Ints(indices)
		for _, i := range indices {
			ld.Frames = append(ld.Frames, encodeFrame(i, l.frames[i]))
		}
		doc.Layers = append(doc.Layers, ld)
	}

	names := make([]string, 0, len(p.tracks))
	for name := range p.tracks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		doc.Tracks = append(doc.Tracks, encodeTrack(p.tracks[name]))
	}

	return doc
}

// LoadDocument reconstructs a Pattern from its interchange form.
func LoadDocument(doc *Document) (*Pattern, error) {
	p := NewPattern(doc.Width, doc.Height)

	for _, ld := range doc.Layers {
		l, err := p.manager.AddLayer(ld.Name)
		if err != nil {
			return nil, err
		}
		l.Visible = ld.Visible
		l.Opacity = ld.Opacity
		l.Locked = ld.Locked
		if l.Blend, err = nameToBlend(ld.Blend); err != nil {
			return nil, err
		}
		for _, fd := range ld.Frames {
			f, err := decodeFrame(fd, doc.Width, doc.Height)
			if err != nil {
				return nil, fmt.Errorf("layer %q: %w", ld.Name, err)
			}
			if err := l.SetFrame(fd.Index, f); err != nil {
				return nil, fmt.Errorf("layer %q: %w", ld.Name, err)
			}
		}
	}

	if doc.ActiveLayer >= 0 && doc.ActiveLayer < p.manager.Count() {
		p.manager.active = doc.ActiveLayer
	}
	if doc.CurrentFrame >= 0 {
		p.current = doc.CurrentFrame
	}

	p.EnsureLength(doc.FrameCount)
	for i, ms := range doc.FrameDurations {
		if i < len(p.frames) {
			p.frames[i].SetDuration(ms)
		}
	}

	for _, td := range doc.Tracks {
		track := p.Track(td.Name)
		for _, kd := range td.Keys {
			k, err := decodeKey(kd)
			if err != nil {
				return nil, fmt.Errorf("track %q: %w", td.Name, err)
			}
			track.SetKey(k)
		}
	}

	return p, nil
}

// Save writes the pattern's snapshot as YAML.
func (p *Pattern) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(p.Snapshot())
}

// Load reads a YAML document and reconstructs the pattern.
func Load(r io.Reader) (*Pattern, error) {
	doc := new(Document)
	if err := yaml.NewDecoder(r).Decode(doc); err != nil {
		return nil, err
	}
	return LoadDocument(doc)
}

func encodeFrame(index int, f *Frame) FrameDocument {
	fd := FrameDocument{Index: index, Duration: f.duration}
	w := f.buffer.width
	for y := 0; y < f.buffer.height; y++ {
		row := make([]byte, 0, w*3)
		for x := 0; x < w; x++ {
			px := f.buffer.pixels[y*w+x]
			row = append(row, px.R, px.G, px.B)
		}
		fd.Rows = append(fd.Rows, hex.EncodeToString(row))
	}
	return fd
}

func decodeFrame(fd FrameDocument, width, height int) (*Frame, error) {
	if len(fd.Rows) != height {
		return nil, fmt.Errorf("frame %d has %d rows, want %d: %w",
			fd.Index, len(fd.Rows), height, ErrDimensionMismatch)
	}
	f := NewFrame(width, height, fd.Duration)
	for y, row := range fd.Rows {
		raw, err := hex.DecodeString(row)
		if err != nil {
			return nil, fmt.Errorf("frame %d row %d: %v", fd.Index, y, err)
		}
		if len(raw) != width*3 {
			return nil, fmt.Errorf("frame %d row %d has %d pixels, want %d: %w",
				fd.Index, y, len(raw)/3, width, ErrDimensionMismatch)
		}
		for x := 0; x < width; x++ {
			f.buffer.pixels[y*width+x] = RGB{R: raw[x*3], G: raw[x*3+1], B: raw[x*3+2]}
		}
	}
	return f, nil
}

func encodeTrack(t *Track) TrackDocument {
	td := TrackDocument{Name: t.name}
	for _, k := range t.keys {
		kd := KeyDocument{Time: k.Time, Ease: easeNames[k.Ease]}
		switch v := k.Value.(type) {
		case ColorValue:
			kd.Kind = "color"
			kd.Color = RGB(v).Colorful().Hex()
		case ScalarValue:
			kd.Kind = "scalar"
			kd.Scalar = float64(v)
		case VectorValue:
			kd.Kind = "vector"
			kd.Vector = append([]float64(nil), v...)
		case DiscreteValue:
			kd.Kind = "discrete"
			kd.Value = v.V
		}
		td.Keys = append(td.Keys, kd)
	}
	return td
}

func decodeKey(kd KeyDocument) (Keyframe, error) {
	k := Keyframe{Time: kd.Time}
	var err error
	if k.Ease, err = nameToEase(kd.Ease); err != nil {
		return k, err
	}
	switch kd.Kind {
	case "color":
		c, err := Hex(kd.Color)
		if err != nil {
			return k, err
		}
		k.Value = ColorValue(c)
	case "scalar":
		k.Value = ScalarValue(kd.Scalar)
	case "vector":
		k.Value = VectorValue(append([]float64(nil), kd.Vector...))
	case "discrete":
		k.Value = DiscreteValue{V: kd.Value}
	default:
		return k, fmt.Errorf("unknown keyframe kind %q", kd.Kind)
	}
	return k, nil
}
