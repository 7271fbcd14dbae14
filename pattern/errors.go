package pattern

import "errors"

// Errors returned by the animation core. Structural failures surface to the
// caller unchanged; the GUI layer decides user messaging.
var (
	ErrOutOfBounds          = errors.New("pixel coordinate out of bounds")
	ErrInvalidInterpolation = errors.New("interpolation operands have mismatched shapes")
	ErrEmptyTrack           = errors.New("keyframe track has no keyframes")
	ErrNoLayers             = errors.New("pattern has no layers")
	ErrUnknownLayer         = errors.New("unknown layer")
	ErrDimensionMismatch    = errors.New("layer frame size does not match matrix size")
	ErrInvalidFrameIndex    = errors.New("invalid frame index")
	ErrLayerLocked          = errors.New("layer is locked")
)
