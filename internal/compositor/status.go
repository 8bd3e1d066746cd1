package compositor

import (
	"time"

	"github.com/xatuke/screenshader/internal/params"
)

// Status is a point-in-time view of the compositor, safe to read from any goroutine.
type Status struct {
	Shader         string         `json:"shader"`
	ShaderError    string         `json:"shader_error,omitempty"`
	ParamsFile     string         `json:"params_file"`
	Params         []params.Param `json:"params"`
	Windows        int            `json:"windows"`
	Mapped         int            `json:"mapped"`
	Bound          int            `json:"bound"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	Frames         uint64         `json:"frames"`
	ProtocolErrors uint64         `json:"protocol_errors"`
	Started        time.Time      `json:"started"`
}

// Status returns the most recently published snapshot.
func (c *Compositor) Status() Status {
	if s := c.status.Load(); s != nil {
		return *s
	}
	return Status{}
}

func (c *Compositor) publishStatus() {
	s := &Status{
		Shader:         c.shaderPath,
		ShaderError:    c.reloadErr,
		ParamsFile:     c.params.Path(),
		Params:         c.pipeline.Params(),
		Windows:        c.windows.Len(),
		Frames:         c.frames,
		ProtocolErrors: c.protocolErrors,
		Started:        c.started,
	}
	if t := c.pipeline.Target(); t != nil {
		s.Width, s.Height = t.Width, t.Height
	}
	for w := range c.all() {
		if w.Mapped {
			s.Mapped++
		}
		if w.Bound() {
			s.Bound++
		}
	}
	c.status.Store(s)
}
