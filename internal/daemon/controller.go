package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xatuke/screenshader/internal/compositor"
	"github.com/xatuke/screenshader/internal/ipc"
	"github.com/xatuke/screenshader/internal/shader"
)

// StatusSource returns the compositor's latest published status.
type StatusSource func() compositor.Status

// Retargeter follows the active shader file. *watch.Watcher implements it.
type Retargeter interface {
	SetTarget(path string) error
}

// Controller exposes a running compositor to the control socket. Its
// methods are safe to call from any goroutine.
type Controller struct {
	requests   *compositor.Requests
	status     StatusSource
	shaderDir  string
	paramsFile string
	stop       context.CancelFunc
	watcher    Retargeter
	logger     *slog.Logger
}

// ControllerConfig holds configuration for NewController.
type ControllerConfig struct {
	Requests   *compositor.Requests
	Status     StatusSource
	ShaderDir  string
	ParamsFile string
	// Stop cancels the render loop.
	Stop   context.CancelFunc
	Logger *slog.Logger
}

var _ ipc.Controller = (*Controller)(nil)

// NewController creates a controller from cfg.
func NewController(cfg ControllerConfig) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		requests:   cfg.Requests,
		status:     cfg.Status,
		shaderDir:  cfg.ShaderDir,
		paramsFile: cfg.ParamsFile,
		stop:       cfg.Stop,
		logger:     logger,
	}
}

// SetWatcher makes shader selection retarget w.
func (c *Controller) SetWatcher(w Retargeter) {
	c.watcher = w
}

// ReloadShader requests a rebuild of the selected post-process shader.
func (c *Controller) ReloadShader() {
	c.logger.Info("shader reload requested")
	c.requests.Reload()
}

// SelectShader switches to a shader name from the shader directory, or to
// a path. The file must exist; whether it builds is reported through
// status once the render loop has tried it.
func (c *Controller) SelectShader(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("shader name is required")
	}
	path := shader.PathFor(c.shaderDir, name)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("shader %q not found: %w", name, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("shader %q is a directory", name)
	}

	c.logger.Info("shader selected", "path", path)
	c.requests.SelectShader(path)
	if c.watcher != nil {
		if err := c.watcher.SetTarget(path); err != nil {
			c.logger.Warn("failed to watch selected shader", "path", path, "error", err)
		}
	}
	return path, nil
}

// Stop ends the render loop.
func (c *Controller) Stop() {
	c.logger.Info("stop requested")
	c.stop()
}

// Status converts the compositor snapshot for the wire.
func (c *Controller) Status() ipc.StatusData {
	st := c.status()
	data := ipc.StatusData{
		Shader:         st.Shader,
		ShaderError:    st.ShaderError,
		ParamsFile:     st.ParamsFile,
		ParamCount:     len(st.Params),
		Windows:        st.Windows,
		Mapped:         st.Mapped,
		Bound:          st.Bound,
		Width:          st.Width,
		Height:         st.Height,
		Frames:         st.Frames,
		ProtocolErrors: st.ProtocolErrors,
		DaemonRunning:  true,
	}
	if !st.Started.IsZero() {
		data.UptimeSeconds = int64(time.Since(st.Started).Seconds())
	}
	return data
}

// ParamsFile returns the parameter file the compositor polls.
func (c *Controller) ParamsFile() string {
	return c.paramsFile
}
