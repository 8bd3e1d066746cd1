package compositor

import (
	"fmt"
	"iter"
	"time"

	"github.com/xatuke/screenshader/internal/gpu"
	"github.com/xatuke/screenshader/internal/params"
	"github.com/xatuke/screenshader/internal/shader"
)

// Uniforms read by the shaders.
const (
	uniformTexture    = "u_texture"
	uniformScreen     = "u_screen"
	uniformResolution = "u_resolution"
	uniformTime       = "u_time"
)

type boundParam struct {
	params.Param
	location int32
}

// Pipeline draws windows into an off-screen target, then draws the target
// to the display through the post-process program.
type Pipeline struct {
	device    gpu.Device
	shaders   *shader.Manager
	target    *gpu.RenderTarget
	composite *shader.Program
	post      *shader.Program
	params    []boundParam
	elapsed   func() time.Duration
}

// NewPipeline takes ownership of shaders, composite, and post.
func NewPipeline(device gpu.Device, shaders *shader.Manager, composite, post *shader.Program, width, height int) (*Pipeline, error) {
	target, err := device.CreateRenderTarget(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create render target: %w", err)
	}
	start := time.Now()
	return &Pipeline{
		device:    device,
		shaders:   shaders,
		target:    target,
		composite: composite,
		post:      post,
		elapsed:   func() time.Duration { return time.Since(start) },
	}, nil
}

// Target returns the intermediate render target.
func (p *Pipeline) Target() *gpu.RenderTarget {
	return p.target
}

// PostProcess returns the active post-process program.
func (p *Pipeline) PostProcess() *shader.Program {
	return p.post
}

// Resize changes the render target size. Window bindings are unaffected.
func (p *Pipeline) Resize(width, height int) {
	if width == p.target.Width && height == p.target.Height {
		return
	}
	p.device.ResizeRenderTarget(p.target, width, height)
}

// SetPostProcess replaces the post-process program and re-resolves every
// parameter against it.
func (p *Pipeline) SetPostProcess(prog *shader.Program) {
	old := p.post
	p.post = prog
	p.shaders.Destroy(old)
	for i := range p.params {
		p.params[i].location = prog.Uniform(p.params[i].Name)
	}
}

// SetParams replaces the parameter set.
func (p *Pipeline) SetParams(ps []params.Param) {
	p.params = p.params[:0]
	for _, param := range ps {
		p.params = append(p.params, boundParam{Param: param, location: p.post.Uniform(param.Name)})
	}
}

// Params returns a copy of the current parameter set.
func (p *Pipeline) Params() []params.Param {
	out := make([]params.Param, 0, len(p.params))
	for _, bp := range p.params {
		out = append(out, bp.Param)
	}
	return out
}

// Render runs both passes and presents. windows yields bottom-to-top;
// damaged windows are re-latched through relatch before they are sampled.
func (p *Pipeline) Render(windows iter.Seq[*Window], relatch func(*Window)) {
	d := p.device
	width, height := p.target.Width, p.target.Height

	d.BindRenderTarget(p.target)
	d.Viewport(0, 0, width, height)
	d.Clear(0, 0, 0, 1)
	d.SetBlend(true)
	d.UseProgram(p.composite.ID)
	d.Uniform1i(p.composite.Uniform(uniformTexture), 0)
	for w := range windows {
		if !w.Mapped || !w.Bound() || w.Bounds.Empty() {
			continue
		}
		if w.Damaged {
			relatch(w)
		}
		r := w.Outer()
		// X puts the origin top-left, GL bottom-left.
		d.Viewport(r.X, height-r.Y-r.Height, r.Width, r.Height)
		d.BindTexture(0, w.Texture())
		d.DrawQuad()
	}
	d.SetBlend(false)
	d.BindRenderTarget(nil)

	d.Viewport(0, 0, width, height)
	d.Clear(0, 0, 0, 1)
	d.UseProgram(p.post.ID)
	d.Uniform2f(p.post.Uniform(uniformResolution), float32(width), float32(height))
	d.Uniform1f(p.post.Uniform(uniformTime), float32(p.elapsed().Seconds()))
	for _, bp := range p.params {
		if bp.location >= 0 {
			d.Uniform1f(bp.location, bp.Value)
		}
	}
	d.BindTexture(0, p.target.Color)
	d.Uniform1i(p.post.Uniform(uniformScreen), 0)
	d.DrawQuad()
	d.Present()
}

// Close deletes both programs, the render target, and the shared vertex stage.
func (p *Pipeline) Close() {
	p.shaders.Destroy(p.post)
	p.shaders.Destroy(p.composite)
	p.post, p.composite = nil, nil
	if p.target != nil {
		p.device.DeleteRenderTarget(p.target)
		p.target = nil
	}
	p.shaders.Close()
}
