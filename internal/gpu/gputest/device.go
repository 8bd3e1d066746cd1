// Package gputest provides an in-memory gpu.Device for tests.
package gputest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xatuke/screenshader/internal/gpu"
	"github.com/xatuke/screenshader/internal/platform"
)

// BrokenMarker makes CompileShader fail when it appears in a source.
const BrokenMarker = "#error"

// Draw records one DrawQuad call.
type Draw struct {
	Offscreen bool
	Blend     bool
	Program   gpu.Program
	Texture   gpu.Texture
	Viewport  [4]int
}

// Device records calls and tracks object lifetimes.
type Device struct {
	Formats gpu.DepthFormatTable
	// FailSharedPixmap makes CreateSharedPixmap fail.
	FailSharedPixmap bool
	// FailLink makes LinkProgram fail.
	FailLink bool

	Calls    []string
	Draws    []Draw
	Presents int

	next      uint32
	shaders   map[gpu.Shader]string
	programs  map[gpu.Program]string
	textures  map[gpu.Texture]bool
	pixmaps   map[gpu.SharedPixmap]platform.Pixmap
	latched   map[gpu.Texture]gpu.SharedPixmap
	locations map[string]int32
	locNames  map[int32]string
	uniforms  map[gpu.Program]map[string]any
	targets   map[*gpu.RenderTarget]bool
	current   gpu.Program
	boundRT   *gpu.RenderTarget
	boundTex  gpu.Texture
	viewport  [4]int
	blend     bool
}

var _ gpu.Device = (*Device)(nil)

// New returns a device supporting depth 24 (RGB) and 32 (RGBA).
func New() *Device {
	d := &Device{
		shaders:   map[gpu.Shader]string{},
		programs:  map[gpu.Program]string{},
		textures:  map[gpu.Texture]bool{},
		pixmaps:   map[gpu.SharedPixmap]platform.Pixmap{},
		latched:   map[gpu.Texture]gpu.SharedPixmap{},
		locations: map[string]int32{},
		locNames:  map[int32]string{},
		uniforms:  map[gpu.Program]map[string]any{},
		targets:   map[*gpu.RenderTarget]bool{},
	}
	d.Formats[24] = gpu.DepthFormat{Supported: true, Format: gpu.FormatRGB}
	d.Formats[32] = gpu.DepthFormat{Supported: true, Format: gpu.FormatRGBA}
	return d
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

func (d *Device) record(format string, args ...any) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

func (d *Device) CompileShader(stage gpu.Stage, source string) (gpu.Shader, error) {
	d.record("CompileShader(%s)", stage)
	if strings.Contains(source, BrokenMarker) {
		return 0, errors.New("0:1(1): error: syntax error")
	}
	s := gpu.Shader(d.id())
	d.shaders[s] = source
	return s, nil
}

func (d *Device) DeleteShader(s gpu.Shader) {
	d.record("DeleteShader")
	delete(d.shaders, s)
}

func (d *Device) LinkProgram(vertex, fragment gpu.Shader) (gpu.Program, error) {
	d.record("LinkProgram")
	vs, okV := d.shaders[vertex]
	fs, okF := d.shaders[fragment]
	if !okV || !okF {
		return 0, errors.New("link: missing shader stage")
	}
	if d.FailLink {
		return 0, errors.New("error: unresolved varying")
	}
	p := gpu.Program(d.id())
	d.programs[p] = vs + "\n" + fs
	return p, nil
}

func (d *Device) DeleteProgram(p gpu.Program) {
	d.record("DeleteProgram")
	delete(d.programs, p)
	delete(d.uniforms, p)
}

// UniformLocation returns a stable location for names that appear in the
// program's sources, otherwise -1.
func (d *Device) UniformLocation(p gpu.Program, name string) int32 {
	d.record("UniformLocation(%s)", name)
	src, ok := d.programs[p]
	if !ok || !strings.Contains(src, name) {
		return -1
	}
	loc, ok := d.locations[name]
	if !ok {
		loc = int32(len(d.locations))
		d.locations[name] = loc
		d.locNames[loc] = name
	}
	return loc
}

func (d *Device) DepthFormats() *gpu.DepthFormatTable {
	return &d.Formats
}

func (d *Device) CreateSharedPixmap(p platform.Pixmap, f gpu.DepthFormat) (gpu.SharedPixmap, error) {
	d.record("CreateSharedPixmap")
	if d.FailSharedPixmap {
		return 0, errors.New("BadMatch")
	}
	sp := gpu.SharedPixmap(d.id())
	d.pixmaps[sp] = p
	return sp, nil
}

func (d *Device) DestroySharedPixmap(sp gpu.SharedPixmap) {
	d.record("DestroySharedPixmap")
	delete(d.pixmaps, sp)
}

func (d *Device) CreateTexture() gpu.Texture {
	d.record("CreateTexture")
	t := gpu.Texture(d.id())
	d.textures[t] = true
	return t
}

func (d *Device) DeleteTexture(t gpu.Texture) {
	d.record("DeleteTexture")
	delete(d.textures, t)
}

func (d *Device) BindTexImage(t gpu.Texture, sp gpu.SharedPixmap) {
	d.record("BindTexImage")
	d.latched[t] = sp
}

func (d *Device) ReleaseTexImage(t gpu.Texture, sp gpu.SharedPixmap) {
	d.record("ReleaseTexImage")
	delete(d.latched, t)
}

func (d *Device) CreateRenderTarget(width, height int) (*gpu.RenderTarget, error) {
	d.record("CreateRenderTarget(%dx%d)", width, height)
	rt := &gpu.RenderTarget{Framebuffer: d.id(), Color: gpu.Texture(d.id()), Width: width, Height: height}
	d.targets[rt] = true
	return rt, nil
}

func (d *Device) ResizeRenderTarget(rt *gpu.RenderTarget, width, height int) {
	d.record("ResizeRenderTarget(%dx%d)", width, height)
	rt.Width, rt.Height = width, height
}

func (d *Device) DeleteRenderTarget(rt *gpu.RenderTarget) {
	d.record("DeleteRenderTarget")
	delete(d.targets, rt)
}

func (d *Device) BindRenderTarget(rt *gpu.RenderTarget) {
	d.boundRT = rt
}

func (d *Device) Viewport(x, y, width, height int) {
	d.viewport = [4]int{x, y, width, height}
}

func (d *Device) Clear(r, g, b, a float32) {}

func (d *Device) SetBlend(enabled bool) {
	d.blend = enabled
}

func (d *Device) UseProgram(p gpu.Program) {
	d.current = p
}

func (d *Device) setUniform(loc int32, v any) {
	if loc < 0 || d.current == 0 {
		return
	}
	name, ok := d.locNames[loc]
	if !ok {
		return
	}
	if d.uniforms[d.current] == nil {
		d.uniforms[d.current] = map[string]any{}
	}
	d.uniforms[d.current][name] = v
}

func (d *Device) Uniform1i(loc int32, v int32)        { d.setUniform(loc, v) }
func (d *Device) Uniform1f(loc int32, v float32)      { d.setUniform(loc, v) }
func (d *Device) Uniform2f(loc int32, x, y float32)   { d.setUniform(loc, [2]float32{x, y}) }
func (d *Device) BindTexture(unit int, t gpu.Texture) { d.boundTex = t }

func (d *Device) DrawQuad() {
	d.Draws = append(d.Draws, Draw{
		Offscreen: d.boundRT != nil,
		Blend:     d.blend,
		Program:   d.current,
		Texture:   d.boundTex,
		Viewport:  d.viewport,
	})
}

func (d *Device) Present() {
	d.Presents++
}

// Uniform returns the last value set for name while p was in use.
func (d *Device) Uniform(p gpu.Program, name string) (any, bool) {
	v, ok := d.uniforms[p][name]
	return v, ok
}

// LivePrograms reports how many linked programs have not been deleted.
func (d *Device) LivePrograms() int {
	return len(d.programs)
}

// LiveShaders reports how many compiled shaders have not been deleted.
func (d *Device) LiveShaders() int {
	return len(d.shaders)
}

// LiveTextures reports how many textures have not been deleted.
func (d *Device) LiveTextures() int {
	return len(d.textures)
}

// LiveSharedPixmaps reports how many shared pixmaps have not been destroyed.
func (d *Device) LiveSharedPixmaps() int {
	return len(d.pixmaps)
}

// Latched reports whether t is associated with a shared pixmap.
func (d *Device) Latched(t gpu.Texture) bool {
	_, ok := d.latched[t]
	return ok
}

// LiveRenderTargets reports how many render targets have not been deleted.
func (d *Device) LiveRenderTargets() int {
	return len(d.targets)
}

// ResetTrace clears recorded calls and draws.
func (d *Device) ResetTrace() {
	d.Calls = nil
	d.Draws = nil
	d.Presents = 0
}
