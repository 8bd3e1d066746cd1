package compositor

import (
	"github.com/xatuke/screenshader/internal/platform"
	"github.com/xatuke/screenshader/internal/registry"
)

// HandleEvent applies one window-system notification. Notifications for
// windows that are not tracked are ignored.
func (c *Compositor) HandleEvent(ev platform.Event) {
	switch e := ev.(type) {
	case platform.MapEvent:
		c.appear(e.Window)
	case platform.UnmapEvent:
		c.unmap(e.Window)
	case platform.DestroyEvent:
		if h, ok := c.windows.Find(e.Window); ok {
			c.forget(h)
			c.redraw = true
		}
	case platform.ConfigureEvent:
		c.configure(e)
	case platform.ReparentEvent:
		c.reparent(e)
	case platform.CirculateEvent:
		c.circulate(e)
	case platform.DamageEvent:
		w, ok := c.Window(e.Window)
		if !ok || w.damage == 0 || w.damage != e.Damage {
			return
		}
		w.Damaged = true
		c.backend.SubtractDamage(e.Damage)
		c.redraw = true
	case platform.ErrorEvent:
		c.protocolErrors++
		c.logger.Debug("protocol error", "error", e.Err)
	}
}

// appear tracks a window that became visible, or refreshes it when it is
// already tracked. Windows the server cannot describe are dropped.
func (c *Compositor) appear(id platform.WindowID) {
	h, ok := c.windows.Find(id)
	if !ok {
		h, ok = c.windows.Insert(id, &Window{ID: id})
		if !ok {
			return
		}
	}
	attrs, err := c.backend.WindowAttributes(id)
	if err != nil {
		c.logger.Debug("dropping window", "window", id, "error", err)
		c.forget(h)
		return
	}
	c.show(h, attrs)
	c.redraw = true
}

// show marks a tracked window mapped, starts damage tracking, and binds it.
func (c *Compositor) show(h registry.Handle, attrs platform.Attributes) {
	w, _ := c.windows.Get(h)
	w.refresh(attrs)
	w.Mapped = true
	if w.damage == 0 {
		d, err := c.backend.CreateDamage(w.ID)
		if err != nil {
			c.logger.Debug("damage tracking unavailable", "window", w.ID, "error", err)
		} else {
			w.damage = d
		}
	}
	c.binder.Bind(w)
}

func (c *Compositor) unmap(id platform.WindowID) {
	w, ok := c.Window(id)
	if !ok {
		return
	}
	w.Mapped = false
	c.binder.Unbind(w)
	c.releaseDamage(w)
	c.redraw = true
}

// forget releases everything a window holds and stops tracking it.
func (c *Compositor) forget(h registry.Handle) {
	w, ok := c.windows.Get(h)
	if !ok {
		return
	}
	c.releaseDamage(w)
	c.binder.Unbind(w)
	c.windows.Remove(h)
}

func (c *Compositor) releaseDamage(w *Window) {
	if w.damage != 0 {
		c.backend.DestroyDamage(w.damage)
		w.damage = 0
	}
}

func (c *Compositor) configure(e platform.ConfigureEvent) {
	if e.Window == c.root {
		c.pipeline.Resize(e.Bounds.Width, e.Bounds.Height)
		c.redraw = true
		return
	}
	h, ok := c.windows.Find(e.Window)
	if !ok {
		return
	}
	w, _ := c.windows.Get(h)
	resized := w.Bounds.Width != e.Bounds.Width ||
		w.Bounds.Height != e.Bounds.Height ||
		w.BorderWidth != e.BorderWidth
	w.Bounds = e.Bounds
	w.BorderWidth = e.BorderWidth
	c.windows.Restack(h, e.Above)
	if resized && w.Mapped {
		c.binder.Bind(w)
	}
	c.redraw = true
}

func (c *Compositor) reparent(e platform.ReparentEvent) {
	if e.Parent != c.root {
		if h, ok := c.windows.Find(e.Window); ok {
			c.forget(h)
			c.redraw = true
		}
		return
	}
	attrs, err := c.backend.WindowAttributes(e.Window)
	if err != nil || !attrs.Viewable {
		return
	}
	c.appear(e.Window)
}

func (c *Compositor) circulate(e platform.CirculateEvent) {
	h, ok := c.windows.Find(e.Window)
	if !ok {
		return
	}
	if e.Place == platform.PlaceOnBottom {
		c.windows.LowerToBottom(h)
	} else {
		c.windows.RaiseToTop(h)
	}
	c.redraw = true
}
