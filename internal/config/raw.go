package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig is one file's settings. Nil fields were not set.
type RawConfig struct {
	Include         IncludeList    `yaml:"include"`
	Shader          *string        `yaml:"shader"`
	ShaderDir       *string        `yaml:"shader_dir"`
	ParamsFile      *string        `yaml:"params_file"`
	ParamPollFrames *int           `yaml:"param_poll_frames"`
	FrameInterval   *time.Duration `yaml:"frame_interval"`
	VSync           *bool          `yaml:"vsync"`
	Display         *string        `yaml:"display"`
	AutoReload      *bool          `yaml:"auto_reload"`
	LogLevel        *string        `yaml:"log_level"`
}

// merge returns c with every field set in overlay replaced.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil
	if overlay.Shader != nil {
		out.Shader = overlay.Shader
	}
	if overlay.ShaderDir != nil {
		out.ShaderDir = overlay.ShaderDir
	}
	if overlay.ParamsFile != nil {
		out.ParamsFile = overlay.ParamsFile
	}
	if overlay.ParamPollFrames != nil {
		out.ParamPollFrames = overlay.ParamPollFrames
	}
	if overlay.FrameInterval != nil {
		out.FrameInterval = overlay.FrameInterval
	}
	if overlay.VSync != nil {
		out.VSync = overlay.VSync
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.AutoReload != nil {
		out.AutoReload = overlay.AutoReload
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	return out
}

// BuildEffectiveConfig applies raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()
	setIf(&cfg.Shader, raw.Shader)
	setIf(&cfg.ShaderDir, raw.ShaderDir)
	setIf(&cfg.ParamsFile, raw.ParamsFile)
	setIf(&cfg.ParamPollFrames, raw.ParamPollFrames)
	setIf(&cfg.FrameInterval, raw.FrameInterval)
	setIf(&cfg.VSync, raw.VSync)
	setIf(&cfg.Display, raw.Display)
	setIf(&cfg.AutoReload, raw.AutoReload)
	setIf(&cfg.LogLevel, raw.LogLevel)
	return cfg
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
