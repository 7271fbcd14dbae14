package pattern

import (
	"fmt"
	"math"

	"github.com/fogleman/ease"
)

// EaseMode selects the easing curve applied to normalized time before
// interpolation.
type EaseMode int

const (
	EaseLinear EaseMode = iota
	EaseInQuad
	EaseOutQuad
	EaseInOutQuad
	EaseInCubic
	EaseOutCubic
	EaseInOutCubic
)

var easeFuncs = map[EaseMode]func(float64) float64{
	EaseLinear:     ease.Linear,
	EaseInQuad:     ease.InQuad,
	EaseOutQuad:    ease.OutQuad,
	EaseInOutQuad:  ease.InOutQuad,
	EaseInCubic:    ease.InCubic,
	EaseOutCubic:   ease.OutCubic,
	EaseInOutCubic: ease.InOutCubic,
}

// Value is one interpolable quantity. The set of kinds is closed:
// ColorValue, ScalarValue, VectorValue and DiscreteValue. Each kind carries
// its own tween rule, so callers never branch on runtime types.
type Value interface {
	lerp(end Value, t float64) (Value, error)
}

// ColorValue interpolates channel-wise; each channel is floored and clamped
// into 0..255.
type ColorValue RGB

// ScalarValue interpolates linearly.
type ScalarValue float64

// VectorValue interpolates element-wise. Both operands must have the same
// length.
type VectorValue []float64

// DiscreteValue holds a non-continuous property: the start value is returned
// until t reaches 1, with no blending. Models toggles such as visibility.
type DiscreteValue struct {
	V interface{}
}

func (v ColorValue) lerp(end Value, t float64) (Value, error) {
	e, ok := end.(ColorValue)
	if !ok {
		return nil, fmt.Errorf("color vs %T: %w", end, ErrInvalidInterpolation)
	}
	return ColorValue{
		R: lerpChannel(v.R, e.R, t),
		G: lerpChannel(v.G, e.G, t),
		B: lerpChannel(v.B, e.B, t),
	}, nil
}

func (v ScalarValue) lerp(end Value, t float64) (Value, error) {
	e, ok := end.(ScalarValue)
	if !ok {
		return nil, fmt.Errorf("scalar vs %T: %w", end, ErrInvalidInterpolation)
	}
	return ScalarValue(float64(v) + (float64(e)-float64(v))*t), nil
}

func (v VectorValue) lerp(end Value, t float64) (Value, error) {
	e, ok := end.(VectorValue)
	if !ok {
		return nil, fmt.Errorf("vector vs %T: %w", end, ErrInvalidInterpolation)
	}
	if len(v) != len(e) {
		return nil, fmt.Errorf("vector lengths %d vs %d: %w", len(v), len(e), ErrInvalidInterpolation)
	}
	out := make(VectorValue, len(v))
	for i := range v {
		out[i] = v[i] + (e[i]-v[i])*t
	}
	return out, nil
}

func (v DiscreteValue) lerp(end Value, t float64) (Value, error) {
	if _, ok := end.(DiscreteValue); !ok {
		return nil, fmt.Errorf("discrete vs %T: %w", end, ErrInvalidInterpolation)
	}
	if t < 1.0 {
		return v, nil
	}
	return end, nil
}

// Interpolate computes the tween between start and end at normalized time t.
// t is clamped into [0, 1] defensively, then shaped by the easing mode.
func Interpolate(start, end Value, t float64, mode EaseMode) (Value, error) {
	t = clamp01(t)
	if fn, ok := easeFuncs[mode]; ok {
		t = fn(t)
	}
	return start.lerp(end, t)
}

func lerpChannel(a, b uint8, t float64) uint8 {
	v := math.Floor(float64(a) + (float64(b)-float64(a))*t)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
