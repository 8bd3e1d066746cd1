package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xatuke/screenshader/internal/ipc"
	"github.com/xatuke/screenshader/internal/params"
)

const (
	ServerName    = "screenshader"
	ServerVersion = "0.1.0"
)

// Control is the compositor's control socket. *ipc.Client implements it.
type Control interface {
	ReloadShader() error
	GetStatus() (*ipc.StatusData, error)
	GetParams() (*ipc.ParamsData, error)
	SetParams(ps []params.Param, replace bool) (*ipc.ParamsData, error)
	SelectShader(shader string) (string, error)
}

// Server exposes the running compositor to MCP clients.
type Server struct {
	mcpServer *mcpsdk.Server
	ctl       Control
	shaderDir string
}

// NewServer creates an MCP server that lists shaders from shaderDir and
// forwards everything else to ctl.
func NewServer(ctl Control, shaderDir string) *Server {
	s := &Server{
		ctl:       ctl,
		shaderDir: shaderDir,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report whether the compositor is running, the active post-process shader and any reload error, tracked/mapped/bound window counts, screen size, and frames rendered.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_shader",
		Description: "Rebuild the active post-process shader from disk. If the new source fails to compile the previous shader stays active; check get_status for the error.",
	}, s.handleReloadShader)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_shaders",
		Description: "List the post-process shaders available in the configured shader directory.",
	}, s.handleListShaders)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "select_shader",
		Description: "Switch the post-process shader by name or path. A shader that fails to build leaves the current one active and the error is returned.",
	}, s.handleSelectShader)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_params",
		Description: "Read the runtime shader parameters (name/value float pairs) the compositor polls.",
	}, s.handleGetParams)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_params",
		Description: "Write runtime shader parameters. Values are merged by name unless replace is true. The compositor applies them within a few frames.",
	}, s.handleSetParams)
}
