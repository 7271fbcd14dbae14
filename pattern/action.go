package pattern

import (
	"context"
	"fmt"
	"log"
	"strconv"
)

// DesignAction is a named procedural transformation applied against the
// active layer, producing new local frames. Parameters are free-form
// strings interpreted per action.
//
// Known actions: "scroll" (dir=left|right|up|down, steps), "rotate"
// (steps), "flip" (axis=horizontal|vertical), "invert", "gradient"
// (steps, saturation, luminance), "tween" (track, steps).
type DesignAction struct {
	Name   string
	Params map[string]string
}

func (a DesignAction) param(key, def string) string {
	if v, ok := a.Params[key]; ok && v != "" {
		return v
	}
	return def
}

func (a DesignAction) intParam(key string, def int) (int, error) {
	v, ok := a.Params[key]
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("action %q: bad %s parameter %q", a.Name, key, v)
	}
	return n, nil
}

// generator produces the frame sequence for one design action. count is
// fixed up front so generation is cancellable at frame granularity.
type generator struct {
	count int
	frame func(i int, seed *Frame) (*Frame, error)
}

func (p *Pattern) buildGenerator(a DesignAction) (*generator, error) {
	switch a.Name {
	case "scroll":
		dir := a.param("dir", "right")
		var dx, dy, def int
		switch dir {
		case "right":
			dx, def = 1, p.width
		case "left":
			dx, def = -1, p.width
		case "down":
			dy, def = 1, p.height
		case "up":
			dy, def = -1, p.height
		default:
			return nil, fmt.Errorf("action %q: bad dir parameter %q", a.Name, dir)
		}
		steps, err := a.intParam("steps", def)
		if err != nil {
			return nil, err
		}
		return &generator{
			count: steps,
			frame: func(i int, seed *Frame) (*Frame, error) {
				out := seed.Copy()
				out.buffer = seed.buffer.Shifted(dx*i, dy*i)
				return out, nil
			},
		}, nil

	case "rotate":
		// Quarter turns only work on a square matrix; otherwise the
		// frames would no longer fit it, so fall back to half turns.
		if p.width == p.height {
			steps, err := a.intParam("steps", 4)
			if err != nil {
				return nil, err
			}
			return &generator{
				count: steps,
				frame: func(i int, seed *Frame) (*Frame, error) {
					out := seed.Copy()
					for n := 0; n < i%4; n++ {
						out.buffer = out.buffer.Rotated90()
					}
					return out, nil
				},
			}, nil
		}
		steps, err := a.intParam("steps", 2)
		if err != nil {
			return nil, err
		}
		return &generator{
			count: steps,
			frame: func(i int, seed *Frame) (*Frame, error) {
				out := seed.Copy()
				if i%2 == 1 {
					out.buffer = seed.buffer.Rotated180()
				}
				return out, nil
			},
		}, nil

	case "flip":
		axis := a.param("axis", "horizontal")
		if axis != "horizontal" && axis != "vertical" {
			return nil, fmt.Errorf("action %q: bad axis parameter %q", a.Name, axis)
		}
		return &generator{
			count: 2,
			frame: func(i int, seed *Frame) (*Frame, error) {
				out := seed.Copy()
				if i == 1 {
					if axis == "horizontal" {
						out.buffer = seed.buffer.FlippedH()
					} else {
						out.buffer = seed.buffer.FlippedV()
					}
				}
				return out, nil
			},
		}, nil

	case "invert":
		return &generator{
			count: 2,
			frame: func(i int, seed *Frame) (*Frame, error) {
				out := seed.Copy()
				if i == 1 {
					out.buffer = seed.buffer.Inverted()
				}
				return out, nil
			},
		}, nil

	case "gradient":
		steps, err := a.intParam("steps", p.width)
		if err != nil {
			return nil, err
		}
		sat, lum := 1.0, 0.3
		if v, ok := a.Params["saturation"]; ok {
			sat, err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("action %q: bad saturation parameter %q", a.Name, v)
			}
		}
		if v, ok := a.Params["luminance"]; ok {
			lum, err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("action %q: bad luminance parameter %q", a.Name, v)
			}
		}
		table := DefaultGradient
		return &generator{
			count: steps,
			frame: func(i int, seed *Frame) (*Frame, error) {
				out := NewFrame(p.width, p.height, seed.duration)
				for x := 0; x < p.width; x++ {
					t := float64(mod(x+i, p.width)) / float64(p.width)
					c := FromColorful(table.GetColor(t, sat, lum))
					for y := 0; y < p.height; y++ {
						out.buffer.pixels[y*p.width+x] = c
					}
				}
				return out, nil
			},
		}, nil

	case "tween":
		trackName := a.param("track", "")
		if trackName == "" {
			return nil, fmt.Errorf("action %q: track parameter required", a.Name)
		}
		track, ok := p.tracks[trackName]
		if !ok {
			return nil, fmt.Errorf("action %q: no track %q", a.Name, trackName)
		}
		steps, err := a.intParam("steps", 8)
		if err != nil {
			return nil, err
		}
		last := track.lastTime()
		return &generator{
			count: steps,
			frame: func(i int, seed *Frame) (*Frame, error) {
				tm := 0.0
				if steps > 1 {
					tm = float64(i) / float64(steps-1) * last
				}
				v, err := track.Sample(tm)
				if err != nil {
					return nil, err
				}
				c, ok := v.(ColorValue)
				if !ok {
					return nil, fmt.Errorf("action %q: track %q is not a color track", a.Name, trackName)
				}
				out := NewFrame(p.width, p.height, seed.duration)
				out.buffer.Fill(RGB(c))
				return out, nil
			},
		}, nil
	}

	return nil, fmt.Errorf("unknown design action %q", a.Name)
}

// ApplyAction runs a design action against the active layer per the
// layer-local generation procedure: the seed is the layer's local frame 0
// (blank when absent), the generated sequence is deduplicated by pixel
// content, and the unique frames land at local indices 0..N-1 regardless
// of any other layer's range or the current global frame count.
//
// Failures abort before any frame is written. Cancellation via ctx is the
// one sanctioned partial outcome: frames already written stay, and the
// partial application is logged.
func (p *Pattern) ApplyAction(ctx context.Context, a DesignAction) error {
	layer, err := p.manager.ActiveLayer()
	if err != nil {
		return err
	}
	if layer.Locked {
		return fmt.Errorf("layer %q: %w", layer.name, ErrLayerLocked)
	}

	seed := layer.Frame(0)
	if seed == nil {
		seed = NewFrame(p.width, p.height, DefaultFrameDuration)
	}
	if seed.buffer.width != p.width || seed.buffer.height != p.height {
		return fmt.Errorf("layer %q frame %dx%d on %dx%d matrix: %w",
			layer.name, seed.buffer.width, seed.buffer.height, p.width, p.height, ErrDimensionMismatch)
	}

	gen, err := p.buildGenerator(a)
	if err != nil {
		return err
	}

	unique := make([]*Frame, 0, gen.count)
	cancelled := false
generate:
	for i := 0; i < gen.count; i++ {
		select {
		case <-ctx.Done():
			cancelled = true
			break generate
		default:
		}

		f, err := gen.frame(i, seed)
		if err != nil {
			return fmt.Errorf("action %q frame %d: %w", a.Name, i, err)
		}
		if f.buffer.width != p.width || f.buffer.height != p.height {
			return fmt.Errorf("action %q frame %d is %dx%d on %dx%d matrix: %w",
				a.Name, i, f.buffer.width, f.buffer.height, p.width, p.height, ErrDimensionMismatch)
		}
		if containsFrame(unique, f) {
			continue
		}
		unique = append(unique, f)
	}

	for i, f := range unique {
		layer.SetFrame(i, f)
	}
	if !cancelled {
		layer.truncate(len(unique) - 1)
	}

	p.EnsureLength(p.manager.EndFrame() + 1)
	p.notifier.publish(Event{Kind: FrameRangeChanged, Layer: layer.name, Frame: layer.endFrame})

	if cancelled {
		log.Printf("action %q cancelled on layer %q after %d of %d frames",
			a.Name, layer.name, len(unique), gen.count)
		return ctx.Err()
	}
	return nil
}

// Enqueue appends a design action to the pattern's pending queue.
func (p *Pattern) Enqueue(a DesignAction) {
	p.pending = append(p.pending, a)
}

// ApplyQueued drains the pending queue in order, stopping at the first
// failure. Actions already applied stay applied.
func (p *Pattern) ApplyQueued(ctx context.Context) error {
	for len(p.pending) > 0 {
		a := p.pending[0]
		p.pending = p.pending[1:]
		if err := p.ApplyAction(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func containsFrame(frames []*Frame, f *Frame) bool {
	for _, u := range frames {
		if u.Equal(f) {
			return true
		}
	}
	return false
}
