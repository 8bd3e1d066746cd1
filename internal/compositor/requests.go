package compositor

import "sync"

// Requests carries reload and shader-switch requests from other goroutines
// to the render loop, which consumes them once per iteration.
type Requests struct {
	mu     sync.Mutex
	reload bool
	path   string
	// selected is the most recent shader switch. A plain reload targets it
	// so a selection that failed to build is retried once it is fixed.
	selected string
	wake     chan struct{}
}

// NewRequests returns an empty request set.
func NewRequests() *Requests {
	return &Requests{wake: make(chan struct{}, 1)}
}

// Reload asks the loop to rebuild the most recently selected shader, or the
// current one when none was selected.
func (r *Requests) Reload() {
	r.mu.Lock()
	r.reload = true
	r.path = r.selected
	r.mu.Unlock()
	r.notify()
}

// SelectShader asks the loop to switch to the shader at path. If the new
// shader fails to build, the current one stays active.
func (r *Requests) SelectShader(path string) {
	r.mu.Lock()
	r.reload = true
	r.path = path
	r.selected = path
	r.mu.Unlock()
	r.notify()
}

// Wake is signalled when a request is pending.
func (r *Requests) Wake() <-chan struct{} {
	return r.wake
}

// take returns the pending request and clears it. path is empty for a
// plain reload before any selection.
func (r *Requests) take() (path string, reload bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	path, reload = r.path, r.reload
	r.path, r.reload = "", false
	return path, reload
}

func (r *Requests) notify() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}
