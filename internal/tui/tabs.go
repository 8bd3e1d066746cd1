package tui

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabShaders Tab = iota
	TabParams
	tabCount // sentinel for iteration
)

func (t Tab) String() string {
	switch t {
	case TabShaders:
		return "Shaders"
	case TabParams:
		return "Params"
	default:
		return "?"
	}
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	tabBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	tabGap = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		SetString(" ")

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	nameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("248")).Width(24)
)

func renderTabBar(active Tab, width int) string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		label := string(rune('1'+int(i))) + ":" + i.String()
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(tabs, tabGap.Render())...)
	return tabBarStyle.Width(width).Render(row)
}

// intersperse inserts sep between each element of items.
func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}

// renderStatusBar shows whether the compositor is reachable and what it runs.
func renderStatusBar(connected bool, shader, shaderErr string, width int) string {
	var status string
	if connected {
		parts := []string{okStyle.Render("●") + " compositor running"}
		if shader != "" {
			parts = append(parts, "shader:"+filepath.Base(shader))
		}
		if shaderErr != "" {
			parts = append(parts, errStyle.Render("reload failed"))
		}
		status = strings.Join(parts, "  ")
	} else {
		status = dimStyle.Render("●") + " compositor not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

func renderHelpBar(tab Tab, width int) string {
	help := "tab/shift-tab: switch tabs  1-2: jump to tab  q/ctrl-c: quit"
	switch tab {
	case TabShaders:
		help = "enter: apply shader  r: refresh  " + help
	case TabParams:
		help = "e: edit params  r: refresh  " + help
	}
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
