package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/composite"
	"github.com/BurntSushi/xgb/damage"
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
)

// WindowInfo combines a window's attributes and geometry.
type WindowInfo struct {
	X, Y             int
	Width, Height    int
	BorderWidth      int
	Depth            int
	OverrideRedirect bool
	Viewable         bool
}

// TopLevelWindows returns the root's children in stacking order, bottom first.
func (c *Connection) TopLevelWindows() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query window tree: %w", err)
	}
	return tree.Children, nil
}

// WindowInfo queries the live attributes and geometry of a window.
func (c *Connection) WindowInfo(windowID xproto.Window) (WindowInfo, error) {
	xc := c.XUtil.Conn()
	attrCookie := xproto.GetWindowAttributes(xc, windowID)
	geomCookie := xproto.GetGeometry(xc, xproto.Drawable(windowID))

	attrs, err := attrCookie.Reply()
	if err != nil {
		geomCookie.Reply()
		return WindowInfo{}, fmt.Errorf("failed to get attributes of window 0x%x: %w", windowID, err)
	}
	geom, err := geomCookie.Reply()
	if err != nil {
		return WindowInfo{}, fmt.Errorf("failed to get geometry of window 0x%x: %w", windowID, err)
	}

	return WindowInfo{
		X:                int(geom.X),
		Y:                int(geom.Y),
		Width:            int(geom.Width),
		Height:           int(geom.Height),
		BorderWidth:      int(geom.BorderWidth),
		Depth:            int(geom.Depth),
		OverrideRedirect: attrs.OverrideRedirect,
		Viewable:         attrs.MapState == xproto.MapStateViewable,
	}, nil
}

// NameWindowPixmap names the off-screen pixmap backing a redirected window.
func (c *Connection) NameWindowPixmap(windowID xproto.Window) (xproto.Pixmap, error) {
	xc := c.XUtil.Conn()
	pixmap, err := xproto.NewPixmapId(xc)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate pixmap id: %w", err)
	}
	if err := composite.NameWindowPixmapChecked(xc, windowID, pixmap).Check(); err != nil {
		return 0, fmt.Errorf("failed to name pixmap of window 0x%x: %w", windowID, err)
	}
	return pixmap, nil
}

// FreePixmap releases a pixmap obtained from NameWindowPixmap.
func (c *Connection) FreePixmap(pixmap xproto.Pixmap) {
	xproto.FreePixmap(c.XUtil.Conn(), pixmap)
}

// CreateDamage starts damage tracking on a window, reporting once per
// transition from undamaged to damaged.
func (c *Connection) CreateDamage(windowID xproto.Window) (damage.Damage, error) {
	xc := c.XUtil.Conn()
	d, err := damage.NewDamageId(xc)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate damage id: %w", err)
	}
	if err := damage.CreateChecked(xc, d, xproto.Drawable(windowID), damage.ReportLevelNonEmpty).Check(); err != nil {
		return 0, fmt.Errorf("failed to create damage for window 0x%x: %w", windowID, err)
	}
	return d, nil
}

// DestroyDamage stops damage tracking.
func (c *Connection) DestroyDamage(d damage.Damage) {
	damage.Destroy(c.XUtil.Conn(), d)
}

// SubtractDamage empties the damage region so the next change is reported.
func (c *Connection) SubtractDamage(d damage.Damage) {
	damage.Subtract(c.XUtil.Conn(), d, xfixes.Region(0), xfixes.Region(0))
}
