//go:build linux

package platform

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/damage"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/xatuke/screenshader/internal/x11"
)

const eventBuffer = 256

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn   *x11.Connection
	events chan Event
	done   chan struct{}
	once   sync.Once
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11
// connection and starts delivering its events.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	b := &LinuxBackend{
		conn:   conn,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
	go b.pump()
	return b
}

// NewLinuxBackendFromDisplay opens display and sets it up for compositing.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn), nil
}

// Screen returns the X screen number the backend composites.
func (b *LinuxBackend) Screen() int {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Screen()
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() WindowID {
	if b == nil || b.conn == nil {
		return None
	}
	return WindowID(b.conn.Root)
}

// OverlayWindow returns the composite overlay window ID.
func (b *LinuxBackend) OverlayWindow() WindowID {
	if b == nil || b.conn == nil {
		return None
	}
	return WindowID(b.conn.Overlay)
}

// ScreenSize returns the display size at connection time.
func (b *LinuxBackend) ScreenSize() (int, int) {
	return b.conn.ScreenSize()
}

// TopLevelWindows lists the root's children bottom-to-top.
func (b *LinuxBackend) TopLevelWindows() ([]WindowID, error) {
	children, err := b.conn.TopLevelWindows()
	if err != nil {
		return nil, err
	}
	ids := make([]WindowID, 0, len(children))
	for _, w := range children {
		ids = append(ids, WindowID(w))
	}
	return ids, nil
}

// WindowAttributes queries a window's live state.
func (b *LinuxBackend) WindowAttributes(id WindowID) (Attributes, error) {
	info, err := b.conn.WindowInfo(xproto.Window(id))
	if err != nil {
		return Attributes{}, err
	}
	return Attributes{
		Bounds:           Rect{X: info.X, Y: info.Y, Width: info.Width, Height: info.Height},
		BorderWidth:      info.BorderWidth,
		Depth:            info.Depth,
		OverrideRedirect: info.OverrideRedirect,
		Viewable:         info.Viewable,
	}, nil
}

// NameWindowPixmap names the window's off-screen pixmap.
func (b *LinuxBackend) NameWindowPixmap(id WindowID) (Pixmap, error) {
	p, err := b.conn.NameWindowPixmap(xproto.Window(id))
	if err != nil {
		return 0, err
	}
	return Pixmap(p), nil
}

// FreePixmap releases a named pixmap.
func (b *LinuxBackend) FreePixmap(p Pixmap) {
	b.conn.FreePixmap(xproto.Pixmap(p))
}

// CreateDamage starts damage tracking on a window.
func (b *LinuxBackend) CreateDamage(id WindowID) (Damage, error) {
	d, err := b.conn.CreateDamage(xproto.Window(id))
	if err != nil {
		return 0, err
	}
	return Damage(d), nil
}

// DestroyDamage stops damage tracking.
func (b *LinuxBackend) DestroyDamage(d Damage) {
	b.conn.DestroyDamage(damage.Damage(d))
}

// SubtractDamage clears accumulated damage.
func (b *LinuxBackend) SubtractDamage(d Damage) {
	b.conn.SubtractDamage(damage.Damage(d))
}

// Events delivers translated X events.
func (b *LinuxBackend) Events() <-chan Event {
	return b.events
}

// Close tears down compositing state and disconnects.
func (b *LinuxBackend) Close() error {
	if b == nil || b.conn == nil {
		return nil
	}
	b.once.Do(func() {
		close(b.done)
		b.conn.Close()
	})
	return nil
}

func (b *LinuxBackend) pump() {
	defer close(b.events)
	for {
		ev, xerr := b.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return
		}

		var out Event
		if xerr != nil {
			out = ErrorEvent{Err: xerr}
		} else if translated, ok := translateEvent(ev); ok {
			out = translated
		} else {
			continue
		}

		select {
		case b.events <- out:
		case <-b.done:
			return
		}
	}
}

func translateEvent(ev xgb.Event) (Event, bool) {
	switch e := ev.(type) {
	case xproto.MapNotifyEvent:
		return MapEvent{Window: WindowID(e.Window)}, true
	case xproto.UnmapNotifyEvent:
		return UnmapEvent{Window: WindowID(e.Window)}, true
	case xproto.DestroyNotifyEvent:
		return DestroyEvent{Window: WindowID(e.Window)}, true
	case xproto.ConfigureNotifyEvent:
		return ConfigureEvent{
			Window:      WindowID(e.Window),
			Bounds:      Rect{X: int(e.X), Y: int(e.Y), Width: int(e.Width), Height: int(e.Height)},
			BorderWidth: int(e.BorderWidth),
			Above:       WindowID(e.AboveSibling),
		}, true
	case xproto.ReparentNotifyEvent:
		return ReparentEvent{Window: WindowID(e.Window), Parent: WindowID(e.Parent)}, true
	case xproto.CirculateNotifyEvent:
		place := PlaceOnTop
		if e.Place == xproto.PlaceOnBottom {
			place = PlaceOnBottom
		}
		return CirculateEvent{Window: WindowID(e.Window), Place: place}, true
	case damage.NotifyEvent:
		return DamageEvent{Window: WindowID(e.Drawable), Damage: Damage(e.Damage)}, true
	default:
		return nil, false
	}
}
