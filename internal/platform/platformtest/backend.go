// Package platformtest provides an in-memory platform.Backend for tests.
package platformtest

import (
	"fmt"

	"github.com/xatuke/screenshader/internal/platform"
)

const (
	Root    platform.WindowID = 0x100
	Overlay platform.WindowID = 0x200
)

// Backend simulates a window system holding a stack of top-level windows.
type Backend struct {
	Width, Height int

	// Order lists root children bottom-to-top.
	Order []platform.WindowID
	Attrs map[platform.WindowID]platform.Attributes

	// FailDamage makes CreateDamage fail.
	FailDamage bool
	// FailPixmap makes NameWindowPixmap fail.
	FailPixmap bool

	Subtracted []platform.Damage

	events  chan platform.Event
	next    uint32
	pixmaps map[platform.Pixmap]platform.WindowID
	damages map[platform.Damage]platform.WindowID
	closed  bool
}

var _ platform.Backend = (*Backend)(nil)

// New returns an empty width x height screen.
func New(width, height int) *Backend {
	return &Backend{
		Width:   width,
		Height:  height,
		Attrs:   map[platform.WindowID]platform.Attributes{},
		events:  make(chan platform.Event, 64),
		pixmaps: map[platform.Pixmap]platform.WindowID{},
		damages: map[platform.Damage]platform.WindowID{},
	}
}

// AddWindow places a viewable window on top of the stack.
func (b *Backend) AddWindow(id platform.WindowID, bounds platform.Rect, depth int) {
	b.Order = append(b.Order, id)
	b.Attrs[id] = platform.Attributes{Bounds: bounds, Depth: depth, Viewable: true}
}

// SetViewable changes a window's map state.
func (b *Backend) SetViewable(id platform.WindowID, viewable bool) {
	a := b.Attrs[id]
	a.Viewable = viewable
	b.Attrs[id] = a
}

// Forget makes a window unknown to the server.
func (b *Backend) Forget(id platform.WindowID) {
	delete(b.Attrs, id)
}

// Send queues an event for Events.
func (b *Backend) Send(ev platform.Event) {
	b.events <- ev
}

func (b *Backend) RootWindow() platform.WindowID    { return Root }
func (b *Backend) OverlayWindow() platform.WindowID { return Overlay }
func (b *Backend) ScreenSize() (int, int)           { return b.Width, b.Height }

func (b *Backend) TopLevelWindows() ([]platform.WindowID, error) {
	return append([]platform.WindowID{Overlay}, b.Order...), nil
}

func (b *Backend) WindowAttributes(id platform.WindowID) (platform.Attributes, error) {
	a, ok := b.Attrs[id]
	if !ok {
		return platform.Attributes{}, fmt.Errorf("BadWindow 0x%x", id)
	}
	return a, nil
}

func (b *Backend) NameWindowPixmap(id platform.WindowID) (platform.Pixmap, error) {
	if b.FailPixmap {
		return 0, fmt.Errorf("BadMatch naming 0x%x", id)
	}
	if _, ok := b.Attrs[id]; !ok {
		return 0, fmt.Errorf("BadWindow 0x%x", id)
	}
	b.next++
	p := platform.Pixmap(b.next)
	b.pixmaps[p] = id
	return p, nil
}

func (b *Backend) FreePixmap(p platform.Pixmap) {
	delete(b.pixmaps, p)
}

func (b *Backend) CreateDamage(id platform.WindowID) (platform.Damage, error) {
	if b.FailDamage {
		return 0, fmt.Errorf("BadAlloc creating damage for 0x%x", id)
	}
	b.next++
	d := platform.Damage(b.next)
	b.damages[d] = id
	return d, nil
}

func (b *Backend) DestroyDamage(d platform.Damage) {
	delete(b.damages, d)
}

func (b *Backend) SubtractDamage(d platform.Damage) {
	b.Subtracted = append(b.Subtracted, d)
}

func (b *Backend) Events() <-chan platform.Event {
	return b.events
}

func (b *Backend) Close() error {
	if !b.closed {
		b.closed = true
		close(b.events)
	}
	return nil
}

// LivePixmaps reports how many named pixmaps have not been freed.
func (b *Backend) LivePixmaps() int {
	return len(b.pixmaps)
}

// LiveDamages reports how many damage objects have not been destroyed.
func (b *Backend) LiveDamages() int {
	return len(b.damages)
}

// DamageFor returns the live damage object attached to id.
func (b *Backend) DamageFor(id platform.WindowID) (platform.Damage, bool) {
	for d, w := range b.damages {
		if w == id {
			return d, true
		}
	}
	return 0, false
}
