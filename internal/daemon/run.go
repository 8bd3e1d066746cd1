//go:build linux && cgo

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/xatuke/screenshader/internal/compositor"
	"github.com/xatuke/screenshader/internal/config"
	"github.com/xatuke/screenshader/internal/gpu/glx"
	"github.com/xatuke/screenshader/internal/ipc"
	"github.com/xatuke/screenshader/internal/platform"
	"github.com/xatuke/screenshader/internal/shader"
	"github.com/xatuke/screenshader/internal/watch"
)

// Options configures Run.
type Options struct {
	Config *config.Config
	// InstallDir is searched for relative shader paths and the builtin stages.
	InstallDir string
	Logger     *slog.Logger
}

// Run connects to the display, builds the compositor, and drives it until
// ctx is cancelled, a STOP request arrives, or the display goes away. It
// must run on the OS thread locked by the caller; every GL call happens on
// that thread. Teardown releases windows, then GPU state, then the display
// connection.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Close()

	device, err := glx.Open(glx.Options{
		Display: cfg.Display,
		Screen:  backend.Screen(),
		Overlay: backend.OverlayWindow(),
		VSync:   cfg.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise GL: %w", err)
	}
	defer device.Close()
	logger.Info("GL context ready", "version", device.Version, "renderer", device.Renderer, "vsync", device.VSync)

	shaderPath := shader.Resolve(opts.InstallDir, cfg.Shader)
	comp, err := compositor.New(backend, device, compositor.Options{
		ShaderPath:      shaderPath,
		InstallDir:      opts.InstallDir,
		ParamsPath:      cfg.ParamsFile,
		ParamPollFrames: cfg.ParamPollFrames,
		FrameInterval:   cfg.FrameInterval,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	defer comp.Close()

	if err := comp.Scan(); err != nil {
		return fmt.Errorf("failed to scan windows: %w", err)
	}
	logger.Info("compositor started", "shader", shaderPath, "windows", comp.Status().Windows)

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	ctl := NewController(ControllerConfig{
		Requests:   comp.Requests(),
		Status:     comp.Status,
		ShaderDir:  cfg.ResolveShaderDir(opts.InstallDir),
		ParamsFile: cfg.ParamsFile,
		Stop:       stop,
		Logger:     logger,
	})

	if cfg.AutoReload {
		w, err := watch.New(shaderPath, watch.DefaultDebounce, comp.Requests().Reload, logger)
		if err != nil {
			logger.Warn("shader auto-reload disabled", "error", err)
		} else {
			defer w.Close()
			ctl.SetWatcher(w)
			go w.Run(ctx)
			logger.Info("watching shader for changes", "path", w.Target())
		}
	}

	server, err := ipc.NewServer(ctl)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start control socket: %w", err)
	}
	defer server.Stop()

	go forwardReloadSignals(ctx, comp.Requests(), logger)

	err = comp.Run(ctx)
	if errors.Is(err, compositor.ErrDisconnected) {
		logger.Error("display connection lost")
	}
	return err
}

// forwardReloadSignals turns SIGUSR1 into reload requests.
func forwardReloadSignals(ctx context.Context, requests *compositor.Requests, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1)
	defer signal.Stop(sigCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			logger.Info("received SIGUSR1, reloading shader")
			requests.Reload()
		}
	}
}
