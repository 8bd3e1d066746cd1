// Package registry keeps the ordered set of windows the compositor tracks.
//
// Entries live in an index-stable arena linked bottom-to-top by index, so
// restacking and removal are O(1) and handles survive unrelated mutations.
package registry

import (
	"fmt"
	"iter"

	"github.com/xatuke/screenshader/internal/platform"
)

const nilIndex = -1

// Handle refers to a registry entry. A handle whose entry has been removed
// is stale and resolves to nothing, even after its slot is reused.
type Handle struct {
	idx int32
	gen uint32
}

type entry[V any] struct {
	id    platform.WindowID
	value V
	prev  int32
	next  int32
	gen   uint32
	live  bool
}

// Registry is an ordered collection of windows keyed by WindowID.
// The zero value is not usable; call New.
type Registry[V any] struct {
	entries  []entry[V]
	free     []int32
	index    map[platform.WindowID]int32
	excluded map[platform.WindowID]struct{}
	bottom   int32
	top      int32
}

// New returns an empty registry that refuses to track any of the excluded ids.
func New[V any](excluded ...platform.WindowID) *Registry[V] {
	r := &Registry[V]{
		index:    make(map[platform.WindowID]int32),
		excluded: make(map[platform.WindowID]struct{}, len(excluded)),
		bottom:   nilIndex,
		top:      nilIndex,
	}
	for _, id := range excluded {
		r.excluded[id] = struct{}{}
	}
	return r
}

// Len returns the number of tracked windows.
func (r *Registry[V]) Len() int {
	return len(r.index)
}

// Insert tracks id at the top of the stack. It returns false when id is
// already tracked, excluded, or None.
func (r *Registry[V]) Insert(id platform.WindowID, value V) (Handle, bool) {
	if id == platform.None {
		return Handle{}, false
	}
	if _, ok := r.excluded[id]; ok {
		return Handle{}, false
	}
	if _, ok := r.index[id]; ok {
		return Handle{}, false
	}

	var idx int32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.entries = append(r.entries, entry[V]{})
		idx = int32(len(r.entries) - 1)
	}

	e := &r.entries[idx]
	e.id = id
	e.value = value
	e.live = true
	e.prev, e.next = nilIndex, nilIndex
	r.index[id] = idx
	r.linkTop(idx)

	return Handle{idx: idx, gen: e.gen}, true
}

// Remove stops tracking the entry. Stale handles are ignored.
func (r *Registry[V]) Remove(h Handle) bool {
	e := r.resolve(h)
	if e == nil {
		return false
	}
	r.unlink(h.idx)
	delete(r.index, e.id)

	var zero V
	e.value = zero
	e.id = platform.None
	e.live = false
	e.gen++
	r.free = append(r.free, h.idx)
	return true
}

// Find returns the handle tracking id.
func (r *Registry[V]) Find(id platform.WindowID) (Handle, bool) {
	idx, ok := r.index[id]
	if !ok {
		return Handle{}, false
	}
	return Handle{idx: idx, gen: r.entries[idx].gen}, true
}

// Get returns the value stored for h.
func (r *Registry[V]) Get(h Handle) (V, bool) {
	e := r.resolve(h)
	if e == nil {
		var zero V
		return zero, false
	}
	return e.value, true
}

// ID returns the window id stored for h, or None when h is stale.
func (r *Registry[V]) ID(h Handle) platform.WindowID {
	e := r.resolve(h)
	if e == nil {
		return platform.None
	}
	return e.id
}

// Restack moves h directly above the sibling window above. None moves it to
// the bottom; a sibling that is not tracked moves it to the top.
func (r *Registry[V]) Restack(h Handle, above platform.WindowID) bool {
	e := r.resolve(h)
	if e == nil {
		return false
	}
	if above == e.id {
		return true
	}

	r.unlink(h.idx)
	if above == platform.None {
		r.linkBottom(h.idx)
		return true
	}
	sib, ok := r.index[above]
	if !ok {
		r.linkTop(h.idx)
		return true
	}
	r.linkAfter(h.idx, sib)
	return true
}

// RaiseToTop moves h to the top of the stack.
func (r *Registry[V]) RaiseToTop(h Handle) bool {
	if r.resolve(h) == nil {
		return false
	}
	r.unlink(h.idx)
	r.linkTop(h.idx)
	return true
}

// LowerToBottom moves h to the bottom of the stack.
func (r *Registry[V]) LowerToBottom(h Handle) bool {
	if r.resolve(h) == nil {
		return false
	}
	r.unlink(h.idx)
	r.linkBottom(h.idx)
	return true
}

// All iterates bottom-to-top. The registry must not be mutated while iterating.
func (r *Registry[V]) All() iter.Seq2[Handle, V] {
	return func(yield func(Handle, V) bool) {
		for i := r.bottom; i != nilIndex; i = r.entries[i].next {
			e := &r.entries[i]
			if !yield(Handle{idx: i, gen: e.gen}, e.value) {
				return
			}
		}
	}
}

// IDs returns the tracked ids bottom-to-top.
func (r *Registry[V]) IDs() []platform.WindowID {
	ids := make([]platform.WindowID, 0, len(r.index))
	for i := r.bottom; i != nilIndex; i = r.entries[i].next {
		ids = append(ids, r.entries[i].id)
	}
	return ids
}

// Check verifies the ordering links agree with the id index.
func (r *Registry[V]) Check() error {
	seen := make(map[platform.WindowID]struct{}, len(r.index))
	prev := int32(nilIndex)
	for i := r.bottom; i != nilIndex; i = r.entries[i].next {
		e := &r.entries[i]
		if !e.live {
			return fmt.Errorf("slot %d linked but not live", i)
		}
		if e.prev != prev {
			return fmt.Errorf("window 0x%x: prev link %d, want %d", e.id, e.prev, prev)
		}
		if _, dup := seen[e.id]; dup {
			return fmt.Errorf("window 0x%x linked twice", e.id)
		}
		if idx, ok := r.index[e.id]; !ok || idx != i {
			return fmt.Errorf("window 0x%x missing from index", e.id)
		}
		seen[e.id] = struct{}{}
		prev = i
	}
	if prev != r.top {
		return fmt.Errorf("top is %d, last linked is %d", r.top, prev)
	}
	if len(seen) != len(r.index) {
		return fmt.Errorf("%d windows linked, %d indexed", len(seen), len(r.index))
	}
	return nil
}

func (r *Registry[V]) resolve(h Handle) *entry[V] {
	if h.idx < 0 || int(h.idx) >= len(r.entries) {
		return nil
	}
	e := &r.entries[h.idx]
	if !e.live || e.gen != h.gen {
		return nil
	}
	return e
}

func (r *Registry[V]) unlink(idx int32) {
	e := &r.entries[idx]
	if e.prev != nilIndex {
		r.entries[e.prev].next = e.next
	} else {
		r.bottom = e.next
	}
	if e.next != nilIndex {
		r.entries[e.next].prev = e.prev
	} else {
		r.top = e.prev
	}
	e.prev, e.next = nilIndex, nilIndex
}

func (r *Registry[V]) linkTop(idx int32) {
	e := &r.entries[idx]
	e.prev = r.top
	e.next = nilIndex
	if r.top != nilIndex {
		r.entries[r.top].next = idx
	} else {
		r.bottom = idx
	}
	r.top = idx
}

func (r *Registry[V]) linkBottom(idx int32) {
	e := &r.entries[idx]
	e.prev = nilIndex
	e.next = r.bottom
	if r.bottom != nilIndex {
		r.entries[r.bottom].prev = idx
	} else {
		r.top = idx
	}
	r.bottom = idx
}

// linkAfter places idx directly above sib.
func (r *Registry[V]) linkAfter(idx, sib int32) {
	e := &r.entries[idx]
	s := &r.entries[sib]
	e.prev = sib
	e.next = s.next
	if s.next != nilIndex {
		r.entries[s.next].prev = idx
	} else {
		r.top = idx
	}
	s.next = idx
}
