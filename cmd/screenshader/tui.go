package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/xatuke/screenshader/internal/tui"
)

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := configPathFlag(fs)

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: screenshader tui [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Browse shaders and tune parameters. Parameters are written to the")
		fmt.Fprintln(os.Stderr, "params file directly when the compositor is not running.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓  Navigate shaders")
		fmt.Fprintln(os.Stderr, "  Enter     Apply selected shader (compositor)")
		fmt.Fprintln(os.Stderr, "  e         Edit parameters")
		fmt.Fprintln(os.Stderr, "  r         Refresh")
		fmt.Fprintln(os.Stderr, "  tab, 1-2  Switch tabs")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := tui.Run(tui.Options{
		ShaderDir:  shaderDir(res.Config),
		ParamsFile: res.Config.ParamsFile,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
