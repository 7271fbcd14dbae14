package pattern

import (
	"sort"
)

// Keyframe pins a value to a point in time on a property track. Ease selects
// how time is shaped when tweening towards the next keyframe.
type Keyframe struct {
	Time  float64
	Value Value
	Ease  EaseMode
}

// Track is an ordered set of keyframes for one animatable property.
// Keyframes are kept sorted by time; setting a keyframe at an existing time
// replaces it (last write wins).
type Track struct {
	name string
	keys []Keyframe
}

// NewTrack creates an empty keyframe track.
func NewTrack(name string) *Track {
	t := new(Track)
	t.name = name
	return t
}

// Name returns the property name the track animates.
func (t *Track) Name() string {
	return t.name
}

// Len returns the number of keyframes on the track.
func (t *Track) Len() int {
	return len(t.keys)
}

// Keys returns a copy of the keyframes in time order.
func (t *Track) Keys() []Keyframe {
	out := make([]Keyframe, len(t.keys))
	copy(out, t.keys)
	return out
}

// SetKey inserts a keyframe, keeping the track sorted by time. A keyframe
// already present at the same time is replaced.
func (t *Track) SetKey(k Keyframe) {
	i := sort.Search(len(t.keys), func(i int) bool {
		return t.keys[i].Time >= k.Time
	})
	if i < len(t.keys) && t.keys[i].Time == k.Time {
		t.keys[i] = k
		return
	}
	t.keys = append(t.keys, Keyframe{})
	copy(t.keys[i+1:], t.keys[i:])
	t.keys[i] = k
}

// RemoveKey deletes the keyframe at the given time, if present.
func (t *Track) RemoveKey(time float64) {
	for i, k := range t.keys {
		if k.Time == time {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			return
		}
	}
}

// lastTime returns the time of the final keyframe, 0 when empty.
func (t *Track) lastTime() float64 {
	if len(t.keys) == 0 {
		return 0
	}
	return t.keys[len(t.keys)-1].Time
}

// Sample evaluates the track at time tm. Before the first keyframe the first
// value is returned; after the last, the last value. In between, time is
// normalized inside the bracketing pair and handed to the tween engine using
// the leading keyframe's easing.
func (t *Track) Sample(tm float64) (Value, error) {
	if len(t.keys) == 0 {
		return nil, ErrEmptyTrack
	}
	first := t.keys[0]
	last := t.keys[len(t.keys)-1]
	if tm <= first.Time {
		return first.Value, nil
	}
	if tm >= last.Time {
		return last.Value, nil
	}

	i := sort.Search(len(t.keys), func(i int) bool {
		return t.keys[i].Time > tm
	})
	before := t.keys[i-1]
	after := t.keys[i]
	u := (tm - before.Time) / (after.Time - before.Time)
	return Interpolate(before.Value, after.Value, u, before.Ease)
}
