package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// None is the null window; as a restack sibling it means "bottom of stack".
const None WindowID = 0

// Pixmap is a server-side pixel buffer holding a window's off-screen contents.
type Pixmap uint32

// Damage is a damage-tracking object attached to a window.
type Damage uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Attributes is the live state of a window as reported by the server.
type Attributes struct {
	Bounds           Rect
	BorderWidth      int
	Depth            int
	OverrideRedirect bool
	Viewable         bool
}

// Backend abstracts the windowing-system operations the compositor needs.
type Backend interface {
	RootWindow() WindowID
	OverlayWindow() WindowID
	ScreenSize() (width, height int)

	// TopLevelWindows lists the root's children bottom-to-top.
	TopLevelWindows() ([]WindowID, error)
	WindowAttributes(id WindowID) (Attributes, error)

	// NameWindowPixmap returns a pixmap holding the window's current
	// off-screen contents. The pixmap goes stale when the window is resized.
	NameWindowPixmap(id WindowID) (Pixmap, error)
	FreePixmap(p Pixmap)

	CreateDamage(id WindowID) (Damage, error)
	DestroyDamage(d Damage)
	// SubtractDamage clears the accumulated damage so further changes are reported.
	SubtractDamage(d Damage)

	// Events delivers window-system notifications. The channel is closed
	// when the connection goes away.
	Events() <-chan Event
	Close() error
}
