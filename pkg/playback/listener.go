// ABOUTME: Observer handles for playback notifications
// ABOUTME: Listener identity makes duplicate registration a no-op
package playback

// Listener is a registered observer. Its identity is the pointer, so the
// same Listener added twice is kept once.
type Listener struct {
	fn func()
}

// NewListener wraps fn in a Listener
func NewListener(fn func()) *Listener {
	return &Listener{fn: fn}
}

func (l *Listener) call() {
	if l.fn != nil {
		l.fn()
	}
}

func contains(list []*Listener, l *Listener) bool {
	for _, x := range list {
		if x == l {
			return true
		}
	}
	return false
}

func without(list []*Listener, l *Listener) []*Listener {
	out := list[:0]
	for _, x := range list {
		if x != l {
			out = append(out, x)
		}
	}
	return out
}
