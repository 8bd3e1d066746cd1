package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xatuke/screenshader/internal/params"
	"github.com/xatuke/screenshader/internal/shader"
)

// Shader switches are applied by the render loop; select_shader polls
// status this long to report the outcome.
var (
	selectPollInterval = 50 * time.Millisecond
	selectTimeout      = 2 * time.Second
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	st, err := s.ctl.GetStatus()
	if err != nil {
		// A stopped compositor is a status, not a tool failure.
		return nil, GetStatusOutput{Running: false}, nil
	}
	return nil, GetStatusOutput{
		Running:        st.DaemonRunning,
		Shader:         st.Shader,
		ShaderError:    st.ShaderError,
		Windows:        st.Windows,
		Mapped:         st.Mapped,
		Bound:          st.Bound,
		Width:          st.Width,
		Height:         st.Height,
		ParamCount:     st.ParamCount,
		Frames:         st.Frames,
		ProtocolErrors: st.ProtocolErrors,
		UptimeSeconds:  st.UptimeSeconds,
	}, nil
}

func (s *Server) handleReloadShader(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadShaderInput) (*mcpsdk.CallToolResult, ReloadShaderOutput, error) {
	if err := s.ctl.ReloadShader(); err != nil {
		return nil, ReloadShaderOutput{}, err
	}
	return nil, ReloadShaderOutput{Requested: true}, nil
}

func (s *Server) handleListShaders(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListShadersInput) (*mcpsdk.CallToolResult, ListShadersOutput, error) {
	names, err := shader.List(s.shaderDir)
	if err != nil {
		return nil, ListShadersOutput{}, err
	}
	out := ListShadersOutput{Directory: s.shaderDir, Shaders: names}
	if st, err := s.ctl.GetStatus(); err == nil {
		out.Active = st.Shader
	}
	return nil, out, nil
}

func (s *Server) handleSelectShader(ctx context.Context, _ *mcpsdk.CallToolRequest, args SelectShaderInput) (*mcpsdk.CallToolResult, SelectShaderOutput, error) {
	if args.Shader == "" {
		return nil, SelectShaderOutput{}, fmt.Errorf("shader is required")
	}
	path, err := s.ctl.SelectShader(shader.PathFor(s.shaderDir, args.Shader))
	if err != nil {
		return nil, SelectShaderOutput{}, err
	}

	deadline := time.Now().Add(selectTimeout)
	for {
		st, err := s.ctl.GetStatus()
		if err != nil {
			return nil, SelectShaderOutput{}, err
		}
		if st.Shader == path && st.ShaderError == "" {
			return nil, SelectShaderOutput{Path: path}, nil
		}
		if st.Shader != path && st.ShaderError != "" {
			return nil, SelectShaderOutput{Path: path, Error: st.ShaderError}, fmt.Errorf("shader %s failed to build; %s is still active", path, st.Shader)
		}
		if time.Now().After(deadline) {
			return nil, SelectShaderOutput{Path: path}, fmt.Errorf("timed out waiting for %s to be applied", path)
		}
		select {
		case <-ctx.Done():
			return nil, SelectShaderOutput{}, ctx.Err()
		case <-time.After(selectPollInterval):
		}
	}
}

func (s *Server) handleGetParams(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetParamsInput) (*mcpsdk.CallToolResult, ParamsOutput, error) {
	data, err := s.ctl.GetParams()
	if err != nil {
		return nil, ParamsOutput{}, err
	}
	return nil, ParamsOutput{File: data.File, Params: nonNil(data.Params)}, nil
}

func (s *Server) handleSetParams(_ context.Context, _ *mcpsdk.CallToolRequest, args SetParamsInput) (*mcpsdk.CallToolResult, ParamsOutput, error) {
	for _, p := range args.Params {
		if err := p.Validate(); err != nil {
			return nil, ParamsOutput{}, err
		}
	}
	data, err := s.ctl.SetParams(args.Params, args.Replace)
	if err != nil {
		return nil, ParamsOutput{}, err
	}
	return nil, ParamsOutput{File: data.File, Params: nonNil(data.Params)}, nil
}

func nonNil(ps []params.Param) []params.Param {
	if ps == nil {
		return []params.Param{}
	}
	return ps
}
