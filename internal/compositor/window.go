package compositor

import (
	"github.com/xatuke/screenshader/internal/gpu"
	"github.com/xatuke/screenshader/internal/platform"
)

// Window is a tracked top-level window.
type Window struct {
	ID               platform.WindowID
	Bounds           platform.Rect
	BorderWidth      int
	Depth            int
	OverrideRedirect bool
	Mapped           bool
	// Damaged means the texture must be re-latched before it is sampled.
	Damaged bool

	damage  platform.Damage
	binding *binding
}

// Bound reports whether the window currently holds a texture binding.
func (w *Window) Bound() bool {
	return w.binding != nil
}

// Texture returns the bound texture, or 0 when unbound.
func (w *Window) Texture() gpu.Texture {
	if w.binding == nil {
		return 0
	}
	return w.binding.texture
}

// Outer returns the window rectangle including its border.
func (w *Window) Outer() platform.Rect {
	return platform.Rect{
		X:      w.Bounds.X,
		Y:      w.Bounds.Y,
		Width:  w.Bounds.Width + 2*w.BorderWidth,
		Height: w.Bounds.Height + 2*w.BorderWidth,
	}
}

func (w *Window) refresh(a platform.Attributes) {
	w.Bounds = a.Bounds
	w.BorderWidth = a.BorderWidth
	w.Depth = a.Depth
	w.OverrideRedirect = a.OverrideRedirect
}

// binding owns the resources chaining a window's pixmap to a texture.
// Any field may be zero when acquisition stopped part way.
type binding struct {
	pixmap  platform.Pixmap
	shared  gpu.SharedPixmap
	texture gpu.Texture
	latched bool
}

// release frees everything the binding holds, newest first.
func (b *binding) release(dev gpu.Device, backend platform.Backend) {
	if b.latched {
		dev.ReleaseTexImage(b.texture, b.shared)
		b.latched = false
	}
	if b.texture != 0 {
		dev.DeleteTexture(b.texture)
		b.texture = 0
	}
	if b.shared != 0 {
		dev.DestroySharedPixmap(b.shared)
		b.shared = 0
	}
	if b.pixmap != 0 {
		backend.FreePixmap(b.pixmap)
		b.pixmap = 0
	}
}
