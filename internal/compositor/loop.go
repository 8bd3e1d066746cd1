package compositor

import (
	"context"
	"errors"
	"time"

	"github.com/xatuke/screenshader/internal/platform"
)

// ErrDisconnected is returned by Run when the window system goes away.
var ErrDisconnected = errors.New("window system connection closed")

// Run drives the compositor until ctx is cancelled. Each iteration drains
// pending events, applies a pending reload, polls parameters every
// ParamPollFrames iterations, renders if needed, then waits up to
// FrameInterval for the next event. A frame is owed after every wait so
// time-driven shaders keep animating.
func (c *Compositor) Run(ctx context.Context) error {
	events := c.backend.Events()
	timer := time.NewTimer(c.opts.FrameInterval)
	defer timer.Stop()

	for iteration := 0; ; iteration++ {
		if ctx.Err() != nil {
			return nil
		}
		if !c.drain(events) {
			return ErrDisconnected
		}
		if path, ok := c.requests.take(); ok {
			c.ReloadPostProcess(path)
		}
		if iteration%c.opts.ParamPollFrames == 0 {
			c.PollParams()
		}
		if c.redraw {
			c.Render()
		}
		c.publishStatus()

		timer.Reset(c.opts.FrameInterval)
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return ErrDisconnected
			}
			c.HandleEvent(ev)
		case <-c.requests.Wake():
		case <-timer.C:
		}
		c.redraw = true
	}
}

// drain handles every queued event without blocking. It returns false when
// the event stream has closed.
func (c *Compositor) drain(events <-chan platform.Event) bool {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.HandleEvent(ev)
		default:
			return true
		}
	}
}
