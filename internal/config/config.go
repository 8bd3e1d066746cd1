package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xatuke/screenshader/internal/params"
	"github.com/xatuke/screenshader/internal/shader"
)

// Config is the effective compositor configuration.
type Config struct {
	// Shader is the post-process fragment shader.
	Shader string `yaml:"shader"`
	// ShaderDir holds the shaders offered by `shaders`, the TUI, and MCP.
	ShaderDir       string        `yaml:"shader_dir"`
	ParamsFile      string        `yaml:"params_file"`
	ParamPollFrames int           `yaml:"param_poll_frames"`
	FrameInterval   time.Duration `yaml:"frame_interval"`
	VSync           bool          `yaml:"vsync"`
	// Display overrides $DISPLAY when set.
	Display string `yaml:"display"`
	// AutoReload rebuilds the shader whenever its file changes.
	AutoReload bool   `yaml:"auto_reload"`
	LogLevel   string `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Shader:          shader.DefaultPostProcess,
		ShaderDir:       "shaders",
		ParamsFile:      params.DefaultPath,
		ParamPollFrames: 30,
		FrameInterval:   16 * time.Millisecond,
		VSync:           true,
		LogLevel:        "info",
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Shader) == "" {
		return &ValidationError{Path: "shader", Err: fmt.Errorf("shader is required")}
	}
	if strings.TrimSpace(c.ShaderDir) == "" {
		return &ValidationError{Path: "shader_dir", Err: fmt.Errorf("shader_dir must not be empty")}
	}
	if strings.TrimSpace(c.ParamsFile) == "" {
		return &ValidationError{Path: "params_file", Err: fmt.Errorf("params_file must not be empty")}
	}
	if c.ParamPollFrames < 1 {
		return &ValidationError{Path: "param_poll_frames", Err: fmt.Errorf("param_poll_frames must be >= 1")}
	}
	if c.FrameInterval < time.Millisecond || c.FrameInterval > time.Second {
		return &ValidationError{Path: "frame_interval", Err: fmt.Errorf("frame_interval must be between 1ms and 1s")}
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// Level returns log_level as a slog level.
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch s {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// ResolveShaderDir returns shader_dir resolved against installDir.
func (c *Config) ResolveShaderDir(installDir string) string {
	return shader.Resolve(installDir, c.ShaderDir)
}

// ValidationError reports an invalid value, with the file position that set
// it when known.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
