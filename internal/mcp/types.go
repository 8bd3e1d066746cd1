package mcp

import "github.com/xatuke/screenshader/internal/params"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Running        bool   `json:"running"`
	Shader         string `json:"shader,omitempty"`
	ShaderError    string `json:"shader_error,omitempty"`
	Windows        int    `json:"windows"`
	Mapped         int    `json:"mapped"`
	Bound          int    `json:"bound"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	ParamCount     int    `json:"param_count"`
	Frames         uint64 `json:"frames"`
	ProtocolErrors uint64 `json:"protocol_errors"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
}

// ReloadShaderInput is the input for the reload_shader tool.
type ReloadShaderInput struct{}

// ReloadShaderOutput is the output for the reload_shader tool.
type ReloadShaderOutput struct {
	Requested bool `json:"requested"`
}

// ListShadersInput is the input for the list_shaders tool.
type ListShadersInput struct{}

// ListShadersOutput is the output for the list_shaders tool.
type ListShadersOutput struct {
	Directory string   `json:"directory"`
	Shaders   []string `json:"shaders"`
	Active    string   `json:"active,omitempty"`
}

// SelectShaderInput is the input for the select_shader tool.
type SelectShaderInput struct {
	Shader string `json:"shader" jsonschema:"Shader name from list_shaders (e.g. crt) or a path to a .frag file"`
}

// SelectShaderOutput is the output for the select_shader tool.
type SelectShaderOutput struct {
	Path string `json:"path"`
	// Error is the build error when the compositor kept its previous shader.
	Error string `json:"error,omitempty"`
}

// GetParamsInput is the input for the get_params tool.
type GetParamsInput struct{}

// ParamsOutput is the output for the get_params and set_params tools.
type ParamsOutput struct {
	File   string         `json:"file"`
	Params []params.Param `json:"params"`
}

// SetParamsInput is the input for the set_params tool.
type SetParamsInput struct {
	Params  []params.Param `json:"params" jsonschema:"Parameters to write; each name must match a float uniform in the active shader to have an effect"`
	Replace bool           `json:"replace,omitempty" jsonschema:"When true, replace the whole parameter file instead of merging by name"`
}
