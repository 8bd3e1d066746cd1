//go:build linux && cgo

package glx

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/xatuke/screenshader/internal/gpu"
	"github.com/xatuke/screenshader/internal/platform"
)

// Options configures Open.
type Options struct {
	// Display is the X display name; empty means $DISPLAY.
	Display string
	Screen  int
	Overlay platform.WindowID
	VSync   bool
}

// Device renders to the composite overlay window.
type Device struct {
	d       *display
	formats gpu.DepthFormatTable
	vao     uint32
	vbo     uint32

	Version  string
	Renderer string
	// VSync reports whether a swap interval could be requested.
	VSync bool
}

var _ gpu.Device = (*Device)(nil)

// Open creates the GL context on the overlay window. It must be called on
// the thread that will issue every later call.
func Open(opts Options) (*Device, error) {
	d, err := openDisplay(opts.Display, opts.Screen)
	if err != nil {
		return nil, err
	}
	dev := &Device{d: d}

	dev.formats = d.textureFormats()
	if !dev.formats.Any() {
		dev.Close()
		return nil, gpu.ErrNoTextureFormats
	}

	if err := d.bindWindow(uint32(opts.Overlay)); err != nil {
		dev.Close()
		return nil, err
	}
	if err := gl.Init(); err != nil {
		dev.Close()
		return nil, fmt.Errorf("failed to load OpenGL: %w", err)
	}
	dev.Version = gl.GoStr(gl.GetString(gl.VERSION))
	dev.Renderer = gl.GoStr(gl.GetString(gl.RENDERER))

	if opts.VSync {
		dev.VSync = d.setSwapInterval(1)
	}
	dev.initQuad()
	return dev, nil
}

// initQuad uploads a full-viewport triangle strip: position at location 0,
// texcoord at location 1.
func (dev *Device) initQuad() {
	quad := []float32{
		-1, -1, 0, 0,
		1, -1, 1, 0,
		-1, 1, 0, 1,
		1, 1, 1, 1,
	}
	gl.GenVertexArrays(1, &dev.vao)
	gl.GenBuffers(1, &dev.vbo)
	gl.BindVertexArray(dev.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, dev.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))
	gl.BindVertexArray(0)
}

func (dev *Device) CompileShader(stage gpu.Stage, source string) (gpu.Shader, error) {
	shaderType := uint32(gl.FRAGMENT_SHADER)
	if stage == gpu.VertexStage {
		shaderType = gl.VERTEX_SHADER
	}
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s", strings.TrimRight(log, "\x00\n"))
	}
	return gpu.Shader(shader), nil
}

func (dev *Device) DeleteShader(s gpu.Shader) {
	gl.DeleteShader(uint32(s))
}

func (dev *Device) LinkProgram(vertex, fragment gpu.Shader) (gpu.Program, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, uint32(vertex))
	gl.AttachShader(program, uint32(fragment))
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%s", strings.TrimRight(log, "\x00\n"))
	}
	gl.DetachShader(program, uint32(vertex))
	gl.DetachShader(program, uint32(fragment))
	return gpu.Program(program), nil
}

func (dev *Device) DeleteProgram(p gpu.Program) {
	gl.DeleteProgram(uint32(p))
}

func (dev *Device) UniformLocation(p gpu.Program, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

func (dev *Device) DepthFormats() *gpu.DepthFormatTable {
	return &dev.formats
}

func (dev *Device) CreateSharedPixmap(p platform.Pixmap, f gpu.DepthFormat) (gpu.SharedPixmap, error) {
	gp, err := dev.d.createPixmap(uint32(p), f)
	if err != nil {
		return 0, err
	}
	return gpu.SharedPixmap(gp), nil
}

func (dev *Device) DestroySharedPixmap(sp gpu.SharedPixmap) {
	dev.d.destroyPixmap(uint64(sp))
}

func (dev *Device) CreateTexture() gpu.Texture {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	setSampling()
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return gpu.Texture(tex)
}

func setSampling() {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

func (dev *Device) DeleteTexture(t gpu.Texture) {
	tex := uint32(t)
	gl.DeleteTextures(1, &tex)
}

func (dev *Device) BindTexImage(t gpu.Texture, sp gpu.SharedPixmap) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	dev.d.bindTexImage(uint64(sp))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (dev *Device) ReleaseTexImage(t gpu.Texture, sp gpu.SharedPixmap) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	dev.d.releaseTexImage(uint64(sp))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (dev *Device) CreateRenderTarget(width, height int) (*gpu.RenderTarget, error) {
	rt := &gpu.RenderTarget{}
	var tex uint32
	gl.GenTextures(1, &tex)
	rt.Color = gpu.Texture(tex)
	dev.ResizeRenderTarget(rt, width, height)

	gl.GenFramebuffers(1, &rt.Framebuffer)
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.Framebuffer)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		dev.DeleteRenderTarget(rt)
		return nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return rt, nil
}

func (dev *Device) ResizeRenderTarget(rt *gpu.RenderTarget, width, height int) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(rt.Color))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	setSampling()
	gl.BindTexture(gl.TEXTURE_2D, 0)
	rt.Width, rt.Height = width, height
}

func (dev *Device) DeleteRenderTarget(rt *gpu.RenderTarget) {
	if rt == nil {
		return
	}
	if rt.Framebuffer != 0 {
		gl.DeleteFramebuffers(1, &rt.Framebuffer)
		rt.Framebuffer = 0
	}
	if rt.Color != 0 {
		tex := uint32(rt.Color)
		gl.DeleteTextures(1, &tex)
		rt.Color = 0
	}
}

func (dev *Device) BindRenderTarget(rt *gpu.RenderTarget) {
	if rt == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.Framebuffer)
}

func (dev *Device) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (dev *Device) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (dev *Device) SetBlend(enabled bool) {
	if !enabled {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
}

func (dev *Device) UseProgram(p gpu.Program) {
	gl.UseProgram(uint32(p))
}

func (dev *Device) Uniform1i(loc int32, v int32) {
	gl.Uniform1i(loc, v)
}

func (dev *Device) Uniform1f(loc int32, v float32) {
	gl.Uniform1f(loc, v)
}

func (dev *Device) Uniform2f(loc int32, x, y float32) {
	gl.Uniform2f(loc, x, y)
}

func (dev *Device) BindTexture(unit int, t gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

func (dev *Device) DrawQuad() {
	gl.BindVertexArray(dev.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}

func (dev *Device) Present() {
	dev.d.swapBuffers()
}

// Close releases the quad, the context, and the GLX connection.
func (dev *Device) Close() {
	if dev.vbo != 0 {
		gl.DeleteBuffers(1, &dev.vbo)
		dev.vbo = 0
	}
	if dev.vao != 0 {
		gl.DeleteVertexArrays(1, &dev.vao)
		dev.vao = 0
	}
	dev.d.close()
}
