package config

import (
	"fmt"
	"sort"
)

var lookups = map[string]func(*Config) any{
	"shader":            func(c *Config) any { return c.Shader },
	"shader_dir":        func(c *Config) any { return c.ShaderDir },
	"params_file":       func(c *Config) any { return c.ParamsFile },
	"param_poll_frames": func(c *Config) any { return c.ParamPollFrames },
	"frame_interval":    func(c *Config) any { return c.FrameInterval },
	"vsync":             func(c *Config) any { return c.VSync },
	"display":           func(c *Config) any { return c.Display },
	"auto_reload":       func(c *Config) any { return c.AutoReload },
	"log_level":         func(c *Config) any { return c.LogLevel },
}

// Keys lists every configuration key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(lookups))
	for k := range lookups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Explain returns the effective value of key and where it came from.
func Explain(res *LoadResult, key string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if key == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}
	lookup, ok := lookups[key]
	if !ok {
		return nil, Source{}, fmt.Errorf("unknown path: %s", key)
	}
	value := lookup(res.Config)
	if src, ok := res.Sources[key]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

// String formats a source for display.
func (s Source) String() string {
	switch s.Kind {
	case SourceFile:
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	case SourceFlag:
		return "flag " + s.Name
	default:
		return string(s.Kind)
	}
}
