package pattern

// EventKind identifies a structural change to the pattern.
type EventKind int

const (
	LayerAdded EventKind = iota
	LayerRemoved
	LayerMoved
	FrameRangeChanged
	ActiveLayerChanged
	FrameEdited
)

// Event describes one committed mutation. Layer names the affected layer
// where one applies; Frame carries a frame index or count depending on the
// kind.
type Event struct {
	Kind  EventKind
	Layer string
	Frame int
}

// Notifier delivers change events to registered listeners, synchronously
// and in subscription order, after each committed mutation.
type Notifier struct {
	subs []func(Event)
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	n := new(Notifier)
	return n
}

// Subscribe registers a callback for all events. Callbacks run on the
// mutating goroutine; keep them short.
func (n *Notifier) Subscribe(fn func(Event)) {
	n.subs = append(n.subs, fn)
}

func (n *Notifier) publish(e Event) {
	for _, fn := range n.subs {
		fn(e)
	}
}
