// Package gpu defines the rendering device the compositor draws with.
package gpu

import (
	"errors"

	"github.com/xatuke/screenshader/internal/platform"
)

type (
	// Texture is a device texture object.
	Texture uint32
	// Shader is a compiled shader stage.
	Shader uint32
	// Program is a linked shader program.
	Program uint32
	// SharedPixmap wraps a window-system pixmap so a texture can sample it.
	SharedPixmap uint64
)

// Stage selects a shader stage.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	if s == VertexStage {
		return "vertex"
	}
	return "fragment"
}

// RenderTarget is an off-screen color buffer the composite pass draws into.
type RenderTarget struct {
	Framebuffer uint32
	Color       Texture
	Width       int
	Height      int
}

// Device is the rendering API. All methods must be called from the thread
// that owns the device context.
type Device interface {
	CompileShader(stage Stage, source string) (Shader, error)
	DeleteShader(s Shader)
	LinkProgram(vertex, fragment Shader) (Program, error)
	DeleteProgram(p Program)
	// UniformLocation returns -1 when the program has no such active uniform.
	UniformLocation(p Program, name string) int32

	DepthFormats() *DepthFormatTable
	CreateSharedPixmap(p platform.Pixmap, f DepthFormat) (SharedPixmap, error)
	DestroySharedPixmap(sp SharedPixmap)
	CreateTexture() Texture
	DeleteTexture(t Texture)
	// BindTexImage latches the pixmap's current contents into t.
	BindTexImage(t Texture, sp SharedPixmap)
	ReleaseTexImage(t Texture, sp SharedPixmap)

	CreateRenderTarget(width, height int) (*RenderTarget, error)
	ResizeRenderTarget(rt *RenderTarget, width, height int)
	DeleteRenderTarget(rt *RenderTarget)
	// BindRenderTarget directs drawing into rt, or to the display when rt is nil.
	BindRenderTarget(rt *RenderTarget)

	Viewport(x, y, width, height int)
	Clear(r, g, b, a float32)
	// SetBlend toggles premultiplied-alpha blending.
	SetBlend(enabled bool)
	UseProgram(p Program)
	Uniform1i(loc int32, v int32)
	Uniform1f(loc int32, v float32)
	Uniform2f(loc int32, x, y float32)
	BindTexture(unit int, t Texture)
	DrawQuad()
	Present()
}

// ErrNoTextureFormats means no color depth can be bound as a texture, so no
// window could ever be composited.
var ErrNoTextureFormats = errors.New("no framebuffer config supports texture_from_pixmap")
