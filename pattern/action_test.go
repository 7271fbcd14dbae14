package pattern

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stepLimitedCtx is a context that cancels itself after a fixed number of
// Done checks, making frame-granular cancellation deterministic in tests.
type stepLimitedCtx struct {
	checks int
	done   chan struct{}
}

func newStepLimitedCtx(checks int) *stepLimitedCtx {
	return &stepLimitedCtx{checks: checks, done: make(chan struct{})}
}

func (c *stepLimitedCtx) Done() <-chan struct{} {
	if c.checks > 0 {
		c.checks--
	} else {
		select {
		case <-c.done:
		default:
			close(c.done)
		}
	}
	return c.done
}

func (c *stepLimitedCtx) Err() error {
	select {
	case <-c.done:
		return context.Canceled
	default:
		return nil
	}
}

func (c *stepLimitedCtx) Deadline() (time.Time, bool) { return time.Time{}, false }

func (c *stepLimitedCtx) Value(key interface{}) interface{} { return nil }

// seedLayer stores a single lit pixel at local frame 0 so scrolls produce
// distinct frames.
func seedLayer(t *testing.T, p *Pattern, l *LayerTrack) {
	t.Helper()
	f := NewFrame(p.Width(), p.Height(), 0)
	if err := f.Buffer().Set(0, 0, RGB{R: 255}); err != nil {
		t.Fatal(err)
	}
	if err := l.SetFrame(0, f); err != nil {
		t.Fatal(err)
	}
}

func TestScrollGeneratesLayerLocalFrames(t *testing.T) {
	p := NewPattern(12, 6)
	l1, _ := p.AddLayer("layer1")
	seedLayer(t, p, l1)

	err := p.ApplyAction(context.Background(), DesignAction{
		Name:   "scroll",
		Params: map[string]string{"dir": "right"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if l1.EndFrame() != 11 {
		t.Fatalf("layer1 EndFrame = %d, want 11", l1.EndFrame())
	}
	if p.FrameCount() != 12 {
		t.Fatalf("global FrameCount = %d, want 12", p.FrameCount())
	}

	// Second layer generates independently: its frames land at local
	// indices 0..5 even though the global timeline is already 12 long.
	l2, _ := p.AddLayer("layer2")
	seedLayer(t, p, l2)

	err = p.ApplyAction(context.Background(), DesignAction{
		Name:   "scroll",
		Params: map[string]string{"dir": "left", "steps": "6"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if l2.EndFrame() != 5 {
		t.Fatalf("layer2 EndFrame = %d, want 5", l2.EndFrame())
	}
	for i := 0; i <= 5; i++ {
		if l2.Frame(i) == nil {
			t.Fatalf("layer2 missing local frame %d", i)
		}
	}
	if l2.Frame(6) != nil {
		t.Fatalf("layer2 has content beyond its local range")
	}
	if p.FrameCount() != 12 {
		t.Fatalf("global FrameCount = %d, want 12", p.FrameCount())
	}

	// Compositing samples layer2 at its clamped local index for every
	// in-range global frame without failing.
	for g := 0; g < p.FrameCount(); g++ {
		if _, err := p.CompositedFrame(g); err != nil {
			t.Fatalf("CompositedFrame(%d): %v", g, err)
		}
	}
}

func TestScrollDeduplicatesIdenticalFrames(t *testing.T) {
	p := NewPattern(8, 4)
	l, _ := p.AddLayer("blank")

	// A blank seed scrolled anywhere stays blank; every generated frame
	// is pixel-identical, so only one survives.
	err := p.ApplyAction(context.Background(), DesignAction{Name: "scroll"})
	if err != nil {
		t.Fatal(err)
	}
	if l.EndFrame() != 0 {
		t.Fatalf("EndFrame = %d, want 0", l.EndFrame())
	}
	if p.FrameCount() != 1 {
		t.Fatalf("FrameCount = %d, want 1", p.FrameCount())
	}
}

func TestActionOverwritesPreviousRange(t *testing.T) {
	p := NewPattern(6, 3)
	l, _ := p.AddLayer("layer1")
	seedLayer(t, p, l)

	if err := p.ApplyAction(context.Background(), DesignAction{Name: "scroll"}); err != nil {
		t.Fatal(err)
	}
	if l.EndFrame() != 5 {
		t.Fatalf("EndFrame = %d, want 5", l.EndFrame())
	}

	// Re-running with fewer steps truncates the stale tail.
	err := p.ApplyAction(context.Background(), DesignAction{
		Name:   "scroll",
		Params: map[string]string{"steps": "3"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if l.EndFrame() != 2 {
		t.Fatalf("EndFrame after rerun = %d, want 2", l.EndFrame())
	}
}

func TestActionErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no layers", func(t *testing.T) {
		p := NewPattern(4, 4)
		err := p.ApplyAction(ctx, DesignAction{Name: "scroll"})
		if !errors.Is(err, ErrNoLayers) {
			t.Fatalf("err = %v, want ErrNoLayers", err)
		}
	})

	t.Run("locked layer", func(t *testing.T) {
		p := NewPattern(4, 4)
		l, _ := p.AddLayer("locked")
		l.Locked = true
		err := p.ApplyAction(ctx, DesignAction{Name: "scroll"})
		if !errors.Is(err, ErrLayerLocked) {
			t.Fatalf("err = %v, want ErrLayerLocked", err)
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		p := NewPattern(4, 4)
		p.AddLayer("a")
		if err := p.ApplyAction(ctx, DesignAction{Name: "sparkle"}); err == nil {
			t.Fatal("unknown action accepted")
		}
	})

	t.Run("dimension mismatch aborts batch", func(t *testing.T) {
		p := NewPattern(4, 4)
		l, _ := p.AddLayer("a")
		l.SetFrame(0, NewFrame(9, 9, 0))

		err := p.ApplyAction(ctx, DesignAction{Name: "scroll"})
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Fatalf("err = %v, want ErrDimensionMismatch", err)
		}
		if l.EndFrame() != 0 {
			t.Fatalf("failed batch mutated layer: EndFrame = %d", l.EndFrame())
		}
		if p.FrameCount() != 1 {
			t.Fatalf("failed batch grew timeline: %d", p.FrameCount())
		}
	})
}

func TestActionCancellation(t *testing.T) {
	p := NewPattern(12, 6)
	l, _ := p.AddLayer("layer1")
	seedLayer(t, p, l)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.ApplyAction(ctx, DesignAction{Name: "scroll"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	// Cancelled before the first frame: nothing newly written, and the
	// seed frame is left intact.
	if l.Frame(0) == nil {
		t.Fatalf("cancellation discarded existing frames")
	}
}

func TestActionCancellationMidBatchKeepsWrittenFrames(t *testing.T) {
	p := NewPattern(12, 6)
	l, _ := p.AddLayer("layer1")
	seedLayer(t, p, l)

	// Fill the layer first so a stale tail exists to preserve.
	if err := p.ApplyAction(context.Background(), DesignAction{Name: "scroll"}); err != nil {
		t.Fatal(err)
	}
	if l.EndFrame() != 11 {
		t.Fatalf("EndFrame = %d, want 11", l.EndFrame())
	}

	// Re-run in the other direction, cancelling after four frames.
	ctx := newStepLimitedCtx(4)
	err := p.ApplyAction(ctx, DesignAction{
		Name:   "scroll",
		Params: map[string]string{"dir": "left"},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	// The four frames written before cancellation survive: left shifts
	// place the lit pixel at columns 0, 11, 10, 9.
	for i, wantX := range []int{0, 11, 10, 9} {
		f := l.Frame(i)
		if f == nil {
			t.Fatalf("cancelled batch lost frame %d", i)
		}
		got, _ := f.Buffer().At(wantX, 0)
		if got != (RGB{R: 255}) {
			t.Fatalf("frame %d pixel at column %d = %v, want lit", i, wantX, got)
		}
	}

	// The stale tail is untouched: no truncation happened, and frame 5
	// still holds the previous batch's right-shifted content.
	if l.EndFrame() != 11 {
		t.Fatalf("EndFrame = %d after cancel, want 11", l.EndFrame())
	}
	f5 := l.Frame(5)
	if f5 == nil {
		t.Fatalf("stale tail frame 5 discarded")
	}
	got, _ := f5.Buffer().At(5, 0)
	if got != (RGB{R: 255}) {
		t.Fatalf("stale frame 5 pixel = %v, want lit at column 5", got)
	}
	if p.FrameCount() != 12 {
		t.Fatalf("FrameCount = %d, want 12", p.FrameCount())
	}
}

func TestInvertAction(t *testing.T) {
	p := NewPattern(4, 2)
	l, _ := p.AddLayer("layer1")
	seedLayer(t, p, l)

	if err := p.ApplyAction(context.Background(), DesignAction{Name: "invert"}); err != nil {
		t.Fatal(err)
	}
	if l.EndFrame() != 1 {
		t.Fatalf("EndFrame = %d, want 1", l.EndFrame())
	}
	got, _ := l.Frame(1).Buffer().At(0, 0)
	if got != (RGB{G: 255, B: 255}) {
		t.Fatalf("inverted pixel = %v, want {0 255 255}", got)
	}
}

func TestRotateActionSquareMatrix(t *testing.T) {
	p := NewPattern(4, 4)
	l, _ := p.AddLayer("layer1")
	seedLayer(t, p, l)

	if err := p.ApplyAction(context.Background(), DesignAction{Name: "rotate"}); err != nil {
		t.Fatal(err)
	}
	if l.EndFrame() != 3 {
		t.Fatalf("EndFrame = %d, want 3", l.EndFrame())
	}
	got, _ := l.Frame(1).Buffer().At(3, 0)
	if got != (RGB{R: 255}) {
		t.Fatalf("quarter turn misplaced pixel: %v", got)
	}
}

func TestGradientActionFillsFrames(t *testing.T) {
	p := NewPattern(6, 3)
	l, _ := p.AddLayer("layer1")

	err := p.ApplyAction(context.Background(), DesignAction{
		Name:   "gradient",
		Params: map[string]string{"steps": "6"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if l.EndFrame() != 5 {
		t.Fatalf("EndFrame = %d, want 5", l.EndFrame())
	}
	got, _ := l.Frame(0).Buffer().At(0, 0)
	if got == (RGB{}) {
		t.Fatalf("gradient frame left black")
	}
}

func TestTweenActionUsesKeyframeTrack(t *testing.T) {
	p := NewPattern(4, 4)
	l, _ := p.AddLayer("layer1")

	p.SetKey("fill", Keyframe{Time: 0, Value: ColorValue{}, Ease: EaseLinear})
	p.SetKey("fill", Keyframe{Time: 1, Value: ColorValue{R: 200}, Ease: EaseLinear})

	err := p.ApplyAction(context.Background(), DesignAction{
		Name:   "tween",
		Params: map[string]string{"track": "fill", "steps": "5"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if l.EndFrame() != 4 {
		t.Fatalf("EndFrame = %d, want 4", l.EndFrame())
	}

	first, _ := l.Frame(0).Buffer().At(0, 0)
	last, _ := l.Frame(4).Buffer().At(0, 0)
	if first != (RGB{}) || last != (RGB{R: 200}) {
		t.Fatalf("tween endpoints = %v .. %v, want black .. {200 0 0}", first, last)
	}
}

func TestQueuedActionsApplyInOrder(t *testing.T) {
	p := NewPattern(4, 4)
	l, _ := p.AddLayer("layer1")
	seedLayer(t, p, l)

	p.Enqueue(DesignAction{Name: "scroll", Params: map[string]string{"steps": "4"}})
	p.Enqueue(DesignAction{Name: "invert"})

	if err := p.ApplyQueued(context.Background()); err != nil {
		t.Fatal(err)
	}
	// The invert ran last against frame 0 of the scrolled content.
	if l.EndFrame() != 1 {
		t.Fatalf("EndFrame = %d, want 1", l.EndFrame())
	}
}
