//go:build linux && cgo

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/xatuke/screenshader/internal/daemon"
	"github.com/xatuke/screenshader/internal/shader"
)

func runCompositor(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := configPathFlag(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: screenshader run [--config PATH] [shader.frag]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the compositor in the foreground. SIGUSR1 reloads the shader;")
		fmt.Fprintln(os.Stderr, "SIGINT or SIGTERM stops it.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "run takes at most one shader path")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	cfg := res.Config
	if fs.NArg() == 1 {
		cfg.Shader = fs.Arg(0)
		res.SetFlag("shader", "[shader.frag]")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))

	installDir, err := shader.InstallDir()
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("screenshader starting (shader: %s, params: %s)", cfg.Shader, cfg.ParamsFile)
	if err := daemon.Run(ctx, daemon.Options{
		Config:     cfg,
		InstallDir: installDir,
		Logger:     logger,
	}); err != nil {
		log.Printf("screenshader: %v", err)
		return 1
	}
	log.Println("screenshader stopped")
	return 0
}
