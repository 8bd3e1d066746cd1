package compositor

import (
	"log/slog"

	"github.com/xatuke/screenshader/internal/gpu"
	"github.com/xatuke/screenshader/internal/platform"
)

// Binder attaches window pixmaps to textures.
type Binder struct {
	backend platform.Backend
	device  gpu.Device
	formats *gpu.DepthFormatTable
	logger  *slog.Logger
}

// NewBinder returns a binder using the device's depth formats.
func NewBinder(backend platform.Backend, device gpu.Device, logger *slog.Logger) *Binder {
	return &Binder{
		backend: backend,
		device:  device,
		formats: device.DepthFormats(),
		logger:  logger,
	}
}

// Bind replaces any existing binding. It leaves the window unbound when it
// is not mapped, has no area, is no longer viewable, or has a depth without
// a texture format. A failure part way releases whatever was acquired.
func (b *Binder) Bind(w *Window) bool {
	b.Unbind(w)
	if !w.Mapped || w.Bounds.Empty() {
		return false
	}

	attrs, err := b.backend.WindowAttributes(w.ID)
	if err != nil {
		b.logger.Debug("bind: attribute query failed", "window", w.ID, "error", err)
		return false
	}
	if !attrs.Viewable {
		return false
	}
	w.Depth = attrs.Depth

	format, ok := b.formats.Lookup(attrs.Depth)
	if !ok {
		b.logger.Debug("bind: no texture format for depth", "window", w.ID, "depth", attrs.Depth)
		return false
	}

	bd := &binding{}
	bd.pixmap, err = b.backend.NameWindowPixmap(w.ID)
	if err != nil {
		b.logger.Debug("bind: naming pixmap failed", "window", w.ID, "error", err)
		return false
	}
	bd.shared, err = b.device.CreateSharedPixmap(bd.pixmap, format)
	if err != nil {
		b.logger.Debug("bind: shared pixmap failed", "window", w.ID, "error", err)
		bd.release(b.device, b.backend)
		return false
	}
	bd.texture = b.device.CreateTexture()
	b.device.BindTexImage(bd.texture, bd.shared)
	bd.latched = true

	w.binding = bd
	w.Damaged = true
	return true
}

// Unbind releases the window's binding. Calling it on an unbound window is a no-op.
func (b *Binder) Unbind(w *Window) {
	if w.binding == nil {
		return
	}
	w.binding.release(b.device, b.backend)
	w.binding = nil
}

// Relatch makes the texture reflect the pixmap's current contents.
func (b *Binder) Relatch(w *Window) {
	w.Damaged = false
	bd := w.binding
	if bd == nil {
		return
	}
	if bd.latched {
		b.device.ReleaseTexImage(bd.texture, bd.shared)
	}
	b.device.BindTexImage(bd.texture, bd.shared)
	bd.latched = true
}
