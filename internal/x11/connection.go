package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/composite"
	"github.com/BurntSushi/xgb/damage"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Composite 0.2 introduced NameWindowPixmap.
const (
	compositeMajor = 0
	compositeMinor = 2
)

// Connection manages the X11 connection and the compositing resources
// taken on it: the subwindow redirection and the overlay window.
type Connection struct {
	XUtil   *xgbutil.XUtil
	Root    xproto.Window
	Overlay xproto.Window

	redirected bool
	closeOnce  sync.Once
}

// NewConnection connects to display (empty means $DISPLAY), redirects every
// top-level window off-screen, and acquires the overlay window with an empty
// input shape so pointer and keyboard input pass through it.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to open display %q: %w", display, err)
	}

	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}
	if err := c.setup(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Connection) setup() error {
	if err := c.initExtensions(); err != nil {
		return err
	}

	xc := c.XUtil.Conn()
	if err := composite.RedirectSubwindowsChecked(xc, c.Root, composite.RedirectAutomatic).Check(); err != nil {
		return fmt.Errorf("failed to redirect subwindows (another compositor running?): %w", err)
	}
	c.redirected = true

	overlay, err := composite.GetOverlayWindow(xc, c.Root).Reply()
	if err != nil {
		return fmt.Errorf("failed to get overlay window: %w", err)
	}
	c.Overlay = overlay.OverlayWin

	if err := c.passInputThrough(c.Overlay); err != nil {
		return err
	}

	mask := uint32(xproto.EventMaskSubstructureNotify | xproto.EventMaskStructureNotify | xproto.EventMaskExposure)
	if err := xproto.ChangeWindowAttributesChecked(xc, c.Root, xproto.CwEventMask, []uint32{mask}).Check(); err != nil {
		return fmt.Errorf("failed to select root window events: %w", err)
	}
	return nil
}

func (c *Connection) initExtensions() error {
	xc := c.XUtil.Conn()

	if err := composite.Init(xc); err != nil {
		return fmt.Errorf("composite extension unavailable: %w", err)
	}
	cv, err := composite.QueryVersion(xc, compositeMajor, 4).Reply()
	if err != nil {
		return fmt.Errorf("failed to query composite version: %w", err)
	}
	if cv.MajorVersion == compositeMajor && cv.MinorVersion < compositeMinor {
		return fmt.Errorf("composite %d.%d too old, need %d.%d", cv.MajorVersion, cv.MinorVersion, compositeMajor, compositeMinor)
	}

	if err := xfixes.Init(xc); err != nil {
		return fmt.Errorf("xfixes extension unavailable: %w", err)
	}
	if _, err := xfixes.QueryVersion(xc, 5, 0).Reply(); err != nil {
		return fmt.Errorf("failed to query xfixes version: %w", err)
	}

	if err := damage.Init(xc); err != nil {
		return fmt.Errorf("damage extension unavailable: %w", err)
	}
	if _, err := damage.QueryVersion(xc, 1, 1).Reply(); err != nil {
		return fmt.Errorf("failed to query damage version: %w", err)
	}
	return nil
}

// passInputThrough gives win an empty input region.
func (c *Connection) passInputThrough(win xproto.Window) error {
	xc := c.XUtil.Conn()
	region, err := xfixes.NewRegionId(xc)
	if err != nil {
		return fmt.Errorf("failed to allocate region: %w", err)
	}
	if err := xfixes.CreateRegionChecked(xc, region, nil).Check(); err != nil {
		return fmt.Errorf("failed to create input region: %w", err)
	}
	defer xfixes.DestroyRegion(xc, region)

	if err := xfixes.SetWindowShapeRegionChecked(xc, win, shape.SkInput, 0, 0, region).Check(); err != nil {
		return fmt.Errorf("failed to set overlay input shape: %w", err)
	}
	return nil
}

// Screen returns the default screen number.
func (c *Connection) Screen() int {
	return c.XUtil.Conn().DefaultScreen
}

// ScreenSize returns the root window size in pixels.
func (c *Connection) ScreenSize() (int, int) {
	s := c.XUtil.Screen()
	return int(s.WidthInPixels), int(s.HeightInPixels)
}

// WaitForEvent blocks for the next event or protocol error. Both are nil
// once the connection is closed.
func (c *Connection) WaitForEvent() (xgb.Event, xgb.Error) {
	return c.XUtil.Conn().WaitForEvent()
}

// Close returns the redirected windows to the server, releases the overlay
// window, and disconnects.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		xc := c.XUtil.Conn()
		if c.Overlay != 0 {
			composite.ReleaseOverlayWindow(xc, c.Root)
		}
		if c.redirected {
			composite.UnredirectSubwindows(xc, c.Root, composite.RedirectAutomatic)
		}
		// Round trip so the releases reach the server before the socket closes.
		xproto.GetInputFocus(xc).Reply()
		xc.Close()
	})
}
