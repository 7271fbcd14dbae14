package pattern

import (
	"bytes"
	"context"
	"testing"
)

func buildTestPattern(t *testing.T) *Pattern {
	t.Helper()
	p := NewPattern(12, 6)

	l1, _ := p.AddLayer("layer1")
	seedLayer(t, p, l1)
	if err := p.ApplyAction(context.Background(), DesignAction{Name: "scroll"}); err != nil {
		t.Fatal(err)
	}

	l2, _ := p.AddLayer("layer2")
	l2.Opacity = 0.5
	l2.Blend = BlendAdd
	seedLayer(t, p, l2)
	err := p.ApplyAction(context.Background(), DesignAction{
		Name:   "scroll",
		Params: map[string]string{"dir": "left", "steps": "6"},
	})
	if err != nil {
		t.Fatal(err)
	}

	p.SetKey("fill", Keyframe{Time: 0, Value: ColorValue{R: 10}, Ease: EaseLinear})
	p.SetKey("fill", Keyframe{Time: 2, Value: ColorValue{B: 99}, Ease: EaseInOutQuad})
	p.SetKey("speed", Keyframe{Time: 0, Value: ScalarValue(1.5), Ease: EaseLinear})
	p.SetKey("offset", Keyframe{Time: 0, Value: VectorValue{1, 2}, Ease: EaseLinear})

	return p
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := buildTestPattern(t)

	var buf bytes.Buffer
	if err := p.Save(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := Load(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.Width() != p.Width() || got.Height() != p.Height() {
		t.Fatalf("dimensions %dx%d, want %dx%d", got.Width(), got.Height(), p.Width(), p.Height())
	}
	if got.FrameCount() != p.FrameCount() {
		t.Fatalf("FrameCount = %d, want %d", got.FrameCount(), p.FrameCount())
	}
	if got.Manager().ActiveIndex() != p.Manager().ActiveIndex() {
		t.Fatalf("active = %d, want %d", got.Manager().ActiveIndex(), p.Manager().ActiveIndex())
	}

	wantLayers := p.Manager().Layers()
	gotLayers := got.Manager().Layers()
	if len(gotLayers) != len(wantLayers) {
		t.Fatalf("layer count = %d, want %d", len(gotLayers), len(wantLayers))
	}
	for i, want := range wantLayers {
		l := gotLayers[i]
		if l.Name() != want.Name() {
			t.Fatalf("layer %d name = %q, want %q", i, l.Name(), want.Name())
		}
		if l.EndFrame() != want.EndFrame() {
			t.Fatalf("layer %q EndFrame = %d, want %d", l.Name(), l.EndFrame(), want.EndFrame())
		}
		if l.Opacity != want.Opacity || l.Blend != want.Blend || l.Visible != want.Visible {
			t.Fatalf("layer %q attributes do not round-trip", l.Name())
		}
		for idx := 0; idx <= want.EndFrame(); idx++ {
			wf := want.Frame(idx)
			gf := l.Frame(idx)
			if wf == nil {
				if gf != nil {
					t.Fatalf("layer %q gained frame %d", l.Name(), idx)
				}
				continue
			}
			if gf == nil {
				t.Fatalf("layer %q lost frame %d", l.Name(), idx)
			}
			if !gf.Equal(wf) {
				t.Fatalf("layer %q frame %d pixels differ", l.Name(), idx)
			}
			if gf.Duration() != wf.Duration() {
				t.Fatalf("layer %q frame %d duration = %d, want %d",
					l.Name(), idx, gf.Duration(), wf.Duration())
			}
		}
	}

	for _, name := range []string{"fill", "speed", "offset"} {
		want := p.Track(name)
		tr := got.Track(name)
		if tr.Len() != want.Len() {
			t.Fatalf("track %q len = %d, want %d", name, tr.Len(), want.Len())
		}
	}

	v, err := got.Track("fill").Sample(2)
	if err != nil {
		t.Fatal(err)
	}
	if v.(ColorValue) != (ColorValue{B: 99}) {
		t.Fatalf("restored track sample = %v, want {0 0 99}", v)
	}
}

func TestLoadDocumentRejectsBadFrames(t *testing.T) {
	doc := &Document{
		Width:      4,
		Height:     2,
		FrameCount: 1,
		Layers: []LayerDocument{{
			Name:    "bad",
			Visible: true,
			Opacity: 1,
			Blend:   "normal",
			Frames: []FrameDocument{{
				Index: 0,
				Rows:  []string{"00ff00"},
			}},
		}},
	}
	if _, err := LoadDocument(doc); err == nil {
		t.Fatal("document with wrong row count accepted")
	}
}

func TestSnapshotLayersAreOrderedBottomFirst(t *testing.T) {
	p := NewPattern(4, 4)
	p.AddLayer("bottom")
	p.AddLayer("top")
	p.MoveLayer("top", 0)

	doc := p.Snapshot()
	if doc.Layers[0].Name != "top" || doc.Layers[1].Name != "bottom" {
		t.Fatalf("snapshot order = %q %q, want top bottom",
			doc.Layers[0].Name, doc.Layers[1].Name)
	}
}
