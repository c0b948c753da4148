package health

import (
	"sync"

	"go.uber.org/atomic"
)

// Readiness is the process-wide "accepting traffic" flag. It starts false,
// is set once the main listener is bound and about to serve, and is cleared
// when shutdown begins.
type Readiness struct {
	ready atomic.Bool

	mu        sync.Mutex
	observers []func(ready bool)
}

// NewReadiness returns a readiness flag in the not-ready state.
func NewReadiness() *Readiness {
	return &Readiness{}
}

// MarkReady sets the flag. Observers are notified only on a change.
func (r *Readiness) MarkReady() {
	r.set(true)
}

// MarkNotReady clears the flag. Observers are notified only on a change.
func (r *Readiness) MarkNotReady() {
	r.set(false)
}

// IsReady reports the current state.
func (r *Readiness) IsReady() bool {
	return r.ready.Load()
}

// OnChange registers fn to be called after every state change. fn is called
// immediately with the current state.
func (r *Readiness) OnChange(fn func(ready bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.observers = append(r.observers, fn)
	fn(r.ready.Load())
}

func (r *Readiness) set(v bool) {
	// The lock orders notifications with the stores so observers never see
	// an older state after a newer one.
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ready.Swap(v) == v {
		return
	}
	for _, fn := range r.observers {
		fn(v)
	}
}
