package platform

import "fmt"

// Event is a window-system notification.
type Event interface {
	isEvent()
}

// MapEvent reports a window became mapped.
type MapEvent struct {
	Window WindowID
}

// UnmapEvent reports a window was unmapped.
type UnmapEvent struct {
	Window WindowID
}

// DestroyEvent reports a window was destroyed.
type DestroyEvent struct {
	Window WindowID
}

// ConfigureEvent reports new geometry and stacking for a window. When
// Window is the root, the display itself changed size.
type ConfigureEvent struct {
	Window      WindowID
	Bounds      Rect
	BorderWidth int
	Above       WindowID
}

// ReparentEvent reports a window moved under a new parent.
type ReparentEvent struct {
	Window WindowID
	Parent WindowID
}

// Place is a circulate destination.
type Place int

const (
	PlaceOnTop Place = iota
	PlaceOnBottom
)

func (p Place) String() string {
	switch p {
	case PlaceOnTop:
		return "top"
	case PlaceOnBottom:
		return "bottom"
	default:
		return fmt.Sprintf("Place(%d)", int(p))
	}
}

// CirculateEvent reports a window was raised to the top or lowered to the bottom.
type CirculateEvent struct {
	Window WindowID
	Place  Place
}

// DamageEvent reports new content in a window.
type DamageEvent struct {
	Window WindowID
	Damage Damage
}

// ErrorEvent carries an asynchronous protocol error.
type ErrorEvent struct {
	Err error
}

func (MapEvent) isEvent()       {}
func (UnmapEvent) isEvent()     {}
func (DestroyEvent) isEvent()   {}
func (ConfigureEvent) isEvent() {}
func (ReparentEvent) isEvent()  {}
func (CirculateEvent) isEvent() {}
func (DamageEvent) isEvent()    {}
func (ErrorEvent) isEvent()     {}
