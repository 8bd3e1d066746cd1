// Package compositor tracks top-level windows, keeps their contents bound
// as textures, and renders them through a post-process shader.
//
// A Compositor is owned by one goroutine, which must also own the GPU
// context. Other goroutines talk to it through Requests and Status.
package compositor

import (
	"fmt"
	"iter"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/xatuke/screenshader/internal/gpu"
	"github.com/xatuke/screenshader/internal/params"
	"github.com/xatuke/screenshader/internal/platform"
	"github.com/xatuke/screenshader/internal/registry"
	"github.com/xatuke/screenshader/internal/shader"
)

// Options configures a Compositor.
type Options struct {
	// ShaderPath is the post-process fragment shader file.
	ShaderPath string
	// InstallDir is searched for the vertex and composite stages.
	InstallDir string
	// ParamsPath is the polled parameter file.
	ParamsPath string
	// ParamPollFrames is how many loop iterations pass between parameter polls.
	ParamPollFrames int
	// FrameInterval bounds the wait between iterations.
	FrameInterval time.Duration
	Logger        *slog.Logger
}

func (o *Options) withDefaults() {
	if o.ParamsPath == "" {
		o.ParamsPath = params.DefaultPath
	}
	if o.ParamPollFrames <= 0 {
		o.ParamPollFrames = 30
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = 16 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Compositor is the compositor state: tracked windows, bindings, pipeline,
// and parameters.
type Compositor struct {
	backend  platform.Backend
	device   gpu.Device
	logger   *slog.Logger
	opts     Options
	windows  *registry.Registry[*Window]
	binder   *Binder
	pipeline *Pipeline
	params   *params.Source
	requests *Requests

	root       platform.WindowID
	shaderPath string
	reloadErr  string
	redraw     bool

	started        time.Time
	frames         uint64
	protocolErrors uint64
	status         atomic.Pointer[Status]
}

// New builds the shader programs and the render target. Failing to build
// the initial post-process shader is fatal; later reloads are not.
func New(backend platform.Backend, device gpu.Device, opts Options) (*Compositor, error) {
	opts.withDefaults()

	vertexSrc, err := shader.LoadStage(opts.InstallDir, shader.VertexFile)
	if err != nil {
		return nil, err
	}
	compositeSrc, err := shader.LoadStage(opts.InstallDir, shader.CompositeFile)
	if err != nil {
		return nil, err
	}

	shaders, err := shader.NewManager(device, vertexSrc)
	if err != nil {
		return nil, err
	}
	composite, err := shaders.Build(shader.CompositeFile, compositeSrc)
	if err != nil {
		shaders.Close()
		return nil, err
	}
	post, err := shaders.BuildFile(opts.ShaderPath)
	if err != nil {
		shaders.Destroy(composite)
		shaders.Close()
		return nil, err
	}

	width, height := backend.ScreenSize()
	pipeline, err := NewPipeline(device, shaders, composite, post, width, height)
	if err != nil {
		shaders.Destroy(post)
		shaders.Destroy(composite)
		shaders.Close()
		return nil, err
	}

	c := &Compositor{
		backend:    backend,
		device:     device,
		logger:     opts.Logger,
		opts:       opts,
		windows:    registry.New[*Window](backend.RootWindow(), backend.OverlayWindow()),
		binder:     NewBinder(backend, device, opts.Logger),
		pipeline:   pipeline,
		params:     params.NewSource(opts.ParamsPath),
		requests:   NewRequests(),
		root:       backend.RootWindow(),
		shaderPath: opts.ShaderPath,
		redraw:     true,
		started:    time.Now(),
	}
	c.publishStatus()
	return c, nil
}

// Requests returns the channel for reload and shader-switch requests.
func (c *Compositor) Requests() *Requests {
	return c.requests
}

// Scan tracks the windows already viewable, bottom-to-top.
func (c *Compositor) Scan() error {
	ids, err := c.backend.TopLevelWindows()
	if err != nil {
		return fmt.Errorf("failed to list windows: %w", err)
	}
	overlay := c.backend.OverlayWindow()
	for _, id := range ids {
		if id == overlay {
			continue
		}
		attrs, err := c.backend.WindowAttributes(id)
		if err != nil || !attrs.Viewable {
			continue
		}
		h, ok := c.windows.Insert(id, &Window{ID: id})
		if !ok {
			continue
		}
		c.show(h, attrs)
	}
	c.logger.Info("tracking existing windows", "count", c.windows.Len())
	c.redraw = true
	c.publishStatus()
	return nil
}

// Window returns the tracked window with id.
func (c *Compositor) Window(id platform.WindowID) (*Window, bool) {
	h, ok := c.windows.Find(id)
	if !ok {
		return nil, false
	}
	return c.windows.Get(h)
}

// Stacking returns the tracked window ids bottom-to-top.
func (c *Compositor) Stacking() []platform.WindowID {
	return c.windows.IDs()
}

// Pipeline returns the rendering pipeline.
func (c *Compositor) Pipeline() *Pipeline {
	return c.pipeline
}

func (c *Compositor) all() iter.Seq[*Window] {
	return func(yield func(*Window) bool) {
		for _, w := range c.windows.All() {
			if !yield(w) {
				return
			}
		}
	}
}

// Render runs the pipeline once and clears the redraw flag.
func (c *Compositor) Render() {
	c.pipeline.Render(c.all(), c.binder.Relatch)
	c.frames++
	c.redraw = false
}

// Close releases every window's resources, then the pipeline's. The caller
// closes the device and the backend afterwards.
func (c *Compositor) Close() {
	var handles []registry.Handle
	for h := range c.windows.All() {
		handles = append(handles, h)
	}
	for _, h := range handles {
		c.forget(h)
	}
	if c.pipeline != nil {
		c.pipeline.Close()
		c.pipeline = nil
	}
}
