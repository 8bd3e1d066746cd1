package shader

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed builtin/quad.vert builtin/composite.frag
var builtin embed.FS

const (
	// VertexFile is the shared vertex stage.
	VertexFile = "quad.vert"
	// CompositeFile is the fragment stage that draws one window.
	CompositeFile = "composite.frag"
	// DefaultPostProcess is used when no shader is configured.
	DefaultPostProcess = "shaders/crt.frag"
)

// InstallDir returns the directory holding the running executable.
func InstallDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Resolve maps a shader path to a file. Absolute paths and paths starting
// with ./ or ../ are used as given. Other paths are looked up under
// installDir first and fall back to the working directory.
func Resolve(installDir, input string) string {
	if filepath.IsAbs(input) || strings.HasPrefix(input, "./") || strings.HasPrefix(input, "../") {
		return input
	}
	if installDir != "" {
		candidate := filepath.Join(installDir, input)
		if f, err := os.Open(candidate); err == nil {
			f.Close()
			return candidate
		}
	}
	return input
}

// LoadStage reads shaders/<name> resolved against installDir, falling back to
// the copy compiled into the binary.
func LoadStage(installDir, name string) (string, error) {
	path := Resolve(installDir, filepath.Join("shaders", name))
	if src, err := os.ReadFile(path); err == nil {
		return string(src), nil
	}
	src, err := builtin.ReadFile("builtin/" + name)
	if err != nil {
		return "", fmt.Errorf("no shader stage %q: %w", name, err)
	}
	return string(src), nil
}

// List returns the post-process shaders in dir by name, without the .frag
// extension and without the composite stage.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".frag") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".frag")
		if name == strings.TrimSuffix(CompositeFile, ".frag") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// PathFor returns the file for a shader name listed in dir. Names that
// already look like paths are returned unchanged.
func PathFor(dir, name string) string {
	if strings.HasSuffix(name, ".frag") || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(dir, name+".frag")
}
