package util

import (
	"github.com/fogleman/ease"
)

// Ramp generates an eased ramp of the given length running from 0 to 1,
// used for frame crossfades.
func Ramp(length int) []float64 {
	if length < 1 {
		return nil
	}
	if length == 1 {
		return []float64{1.0}
	}
	ramp := make([]float64, length)
	for i := range ramp {
		ramp[i] = ease.InOutQuad(float64(i) / float64(length-1))
	}
	return ramp
}
