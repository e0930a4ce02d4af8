package world

// Canceler is a cooperative cancellation signal. It is checked
// between regions and between chunks within a region; an in-flight
// decompression or NBT parse always completes before it is observed.
// The zero value is a Canceler that never cancels.
type Canceler struct {
	ch chan struct{}
}

// NewCanceler returns a fresh, uncancelled Canceler.
func NewCanceler() *Canceler {
	return &Canceler{ch: make(chan struct{})}
}

// Cancel requests cancellation. It is safe to call more than once.
func (c *Canceler) Cancel() {
	if c == nil || c.ch == nil {
		return
	}
	select {
	case <-c.ch:
	default:
		close(c.ch)
	}
}

// Cancelled reports whether Cancel has been called.
func (c *Canceler) Cancelled() bool {
	if c == nil || c.ch == nil {
		return false
	}
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}
