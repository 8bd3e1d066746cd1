// Package tui is the interactive shader browser and parameter tuner.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/xatuke/screenshader/internal/ipc"
	"github.com/xatuke/screenshader/internal/params"
)

// Control is the part of the control socket the TUI uses. *ipc.Client
// implements it.
type Control interface {
	GetStatus() (*ipc.StatusData, error)
	SelectShader(shader string) (string, error)
	GetParams() (*ipc.ParamsData, error)
	SetParams(ps []params.Param, replace bool) (*ipc.ParamsData, error)
}

// Options configures the TUI.
type Options struct {
	// ShaderDir is listed in the shaders tab.
	ShaderDir string
	// ParamsFile is written directly when the compositor is not running.
	ParamsFile string
	Control    Control
}

// Run starts the TUI and blocks until the user quits.
func Run(opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if opts.Control == nil {
		opts.Control = ipc.NewClient()
	}
	p := tea.NewProgram(newModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
