package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.ParamPollFrames != 30 || cfg.FrameInterval != 16*time.Millisecond || !cfg.VSync {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *res.Config != *DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", res.Config)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *res.Config != *DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", res.Config)
	}
}

func TestLoadFromPath_AllKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, strings.Join([]string{
		"shader: /opt/shaders/vhs.frag",
		"shader_dir: /opt/shaders",
		"params_file: /run/user/1000/shader.params",
		"param_poll_frames: 10",
		"frame_interval: 8ms",
		"vsync: false",
		`display: ":1"`,
		"auto_reload: true",
		"log_level: debug",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		Shader:          "/opt/shaders/vhs.frag",
		ShaderDir:       "/opt/shaders",
		ParamsFile:      "/run/user/1000/shader.params",
		ParamPollFrames: 10,
		FrameInterval:   8 * time.Millisecond,
		VSync:           false,
		Display:         ":1",
		AutoReload:      true,
		LogLevel:        "debug",
	}
	if *res.Config != want {
		t.Fatalf("got %+v, want %+v", *res.Config, want)
	}
	if res.Config.Level() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", res.Config.Level())
	}

	val, src, err := Explain(res, "display")
	if err != nil {
		t.Fatalf("explain display: %v", err)
	}
	if val != ":1" {
		t.Fatalf("expected explain display :1, got %#v", val)
	}
	if src.Kind != SourceFile || src.Line != 7 {
		t.Fatalf("expected display from file line 7, got %#v", src)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), filepath.Base(path)) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
	}{
		{name: "poll frames", data: "vsync: true\nparam_poll_frames: 0\n", path: "param_poll_frames"},
		{name: "frame interval", data: "frame_interval: 5s\n", path: "frame_interval"},
		{name: "log level", data: "log_level: loud\n", path: "log_level"},
		{name: "empty shader", data: `shader: ""` + "\n", path: "shader"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			writeConfig(t, path, tt.data)

			_, err := LoadFromPath(path)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
			if !strings.Contains(err.Error(), filepath.Base(path)+":") {
				t.Fatalf("expected error to start with file position, got %v", err)
			}
		})
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, filepath.Join(configD, "10-base.yaml"), "param_poll_frames: 5\nlog_level: warning\n")
	writeConfig(t, filepath.Join(configD, "20-override.yaml"), "param_poll_frames: 6\n")

	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "include:\n  - config.d\nparam_poll_frames: 7\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.ParamPollFrames != 7 {
		t.Fatalf("expected main file to win, got %d", res.Config.ParamPollFrames)
	}
	if res.Config.LogLevel != "warning" {
		t.Fatalf("expected included log_level, got %q", res.Config.LogLevel)
	}
	if len(res.Files) != 3 || !strings.HasSuffix(res.Files[2], "config.yaml") {
		t.Fatalf("unexpected load order: %v", res.Files)
	}

	_, src, err := Explain(res, "log_level")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if !strings.HasSuffix(src.File, "10-base.yaml") {
		t.Fatalf("expected log_level from 10-base.yaml, got %v", src)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeConfig(t, a, "include: b.yaml\n")
	writeConfig(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestExplain_DefaultsAndFlags(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	_, src, err := Explain(res, "vsync")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceDefault {
		t.Fatalf("expected default source, got %v", src)
	}

	res.Config.Shader = "/tmp/x.frag"
	res.SetFlag("shader", "[shader.frag]")
	val, src, err := Explain(res, "shader")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "/tmp/x.frag" || src.Kind != SourceFlag {
		t.Fatalf("expected flag override, got %v from %v", val, src)
	}

	if _, _, err := Explain(res, "gap_size"); err == nil {
		t.Fatal("expected unknown path error")
	}
}

func TestKeys_CoverEveryLookup(t *testing.T) {
	keys := Keys()
	if len(keys) != 9 {
		t.Fatalf("expected 9 keys, got %v", keys)
	}
	res := &LoadResult{Config: DefaultConfig(), Sources: map[string]Source{}}
	for _, k := range keys {
		if _, _, err := Explain(res, k); err != nil {
			t.Fatalf("explain %s: %v", k, err)
		}
	}
}
