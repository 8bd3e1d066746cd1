// Package shader compiles and links the compositor's GPU programs.
package shader

import (
	"fmt"
	"os"

	"github.com/xatuke/screenshader/internal/gpu"
)

// Compiler is the subset of gpu.Device needed to build programs.
type Compiler interface {
	CompileShader(stage gpu.Stage, source string) (gpu.Shader, error)
	DeleteShader(s gpu.Shader)
	LinkProgram(vertex, fragment gpu.Shader) (gpu.Program, error)
	DeleteProgram(p gpu.Program)
	UniformLocation(p gpu.Program, name string) int32
}

// CompileError reports a shader stage the driver rejected.
type CompileError struct {
	Name  string
	Stage gpu.Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s shader compile failed:\n%s", e.Name, e.Stage, e.Log)
}

// LinkError reports a program the driver failed to link.
type LinkError struct {
	Name string
	Log  string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s: program link failed:\n%s", e.Name, e.Log)
}

// Program is a linked program with a cache of uniform locations.
type Program struct {
	Name string
	ID   gpu.Program

	c        Compiler
	uniforms map[string]int32
}

// Uniform returns the location of name, or -1 if the program does not use it.
func (p *Program) Uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := p.c.UniformLocation(p.ID, name)
	p.uniforms[name] = loc
	return loc
}

// Manager links fragment stages against one shared vertex stage. The vertex
// stage lives as long as the manager so programs can be rebuilt at any time.
type Manager struct {
	c      Compiler
	vertex gpu.Shader
}

// NewManager compiles the shared vertex stage.
func NewManager(c Compiler, vertexSource string) (*Manager, error) {
	vs, err := c.CompileShader(gpu.VertexStage, vertexSource)
	if err != nil {
		return nil, &CompileError{Name: "quad.vert", Stage: gpu.VertexStage, Log: err.Error()}
	}
	return &Manager{c: c, vertex: vs}, nil
}

// Build compiles fragmentSource and links it with the vertex stage.
func (m *Manager) Build(name, fragmentSource string) (*Program, error) {
	fs, err := m.c.CompileShader(gpu.FragmentStage, fragmentSource)
	if err != nil {
		return nil, &CompileError{Name: name, Stage: gpu.FragmentStage, Log: err.Error()}
	}
	defer m.c.DeleteShader(fs)

	id, err := m.c.LinkProgram(m.vertex, fs)
	if err != nil {
		return nil, &LinkError{Name: name, Log: err.Error()}
	}
	return &Program{
		Name:     name,
		ID:       id,
		c:        m.c,
		uniforms: make(map[string]int32),
	}, nil
}

// BuildFile reads a fragment stage from path and builds it.
func (m *Manager) BuildFile(path string) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader: %w", err)
	}
	return m.Build(path, string(src))
}

// Destroy deletes a program built by the manager. nil is ignored.
func (m *Manager) Destroy(p *Program) {
	if p == nil || p.ID == 0 {
		return
	}
	m.c.DeleteProgram(p.ID)
	p.ID = 0
	p.uniforms = nil
}

// Close deletes the shared vertex stage.
func (m *Manager) Close() {
	if m.vertex != 0 {
		m.c.DeleteShader(m.vertex)
		m.vertex = 0
	}
}
