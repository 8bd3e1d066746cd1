package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xatuke/screenshader/internal/ipc"
)

const statusInterval = time.Second

// statusMsg carries a status poll result.
type statusMsg struct {
	status *ipc.StatusData
	err    error
}

type statusTickMsg struct{}

// model is the root bubbletea model for the TUI.
type model struct {
	ctl Control

	activeTab Tab

	shadersTab ShadersTab
	paramsTab  ParamsTab

	connected bool
	status    ipc.StatusData

	width  int
	height int
}

func newModel(opts Options) model {
	m := model{
		ctl:       opts.Control,
		activeTab: TabShaders,
	}
	if m.ctl != nil {
		if st, err := m.ctl.GetStatus(); err == nil {
			m.connected = true
			m.status = *st
		}
	}
	m.shadersTab = NewShadersTab(opts.ShaderDir, m.status.Shader)
	m.paramsTab = NewParamsTab(opts.ParamsFile)
	return m
}

func fetchStatusCmd(ctl Control) tea.Cmd {
	return func() tea.Msg {
		if ctl == nil {
			return statusMsg{}
		}
		st, err := ctl.GetStatus()
		return statusMsg{status: st, err: err}
	}
}

func statusTick() tea.Cmd {
	return tea.Tick(statusInterval, func(time.Time) tea.Msg { return statusTickMsg{} })
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(loadParamsCmd(m.ctl, m.paramsTab.file), statusTick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusTickMsg:
		return m, tea.Batch(fetchStatusCmd(m.ctl), statusTick())
	case statusMsg:
		m.applyStatus(msg)
		return m, nil
	case shaderSelectedMsg:
		var cmd tea.Cmd
		m.shadersTab, cmd = m.shadersTab.Update(msg, m.ctl)
		return m, tea.Batch(cmd, fetchStatusCmd(m.ctl))
	case paramsLoadedMsg, paramsSavedMsg:
		var cmd tea.Cmd
		m.paramsTab, cmd = m.paramsTab.Update(msg, m.ctl)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.shadersTab, _ = m.shadersTab.Update(subMsg, m.ctl)
		m.paramsTab, _ = m.paramsTab.Update(subMsg, m.ctl)
		return m, nil
	}

	// The params form and the list filter consume keys; only ctrl+c escapes to quit.
	if m.capturing() {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		switch m.activeTab {
		case TabShaders:
			m.shadersTab, cmd = m.shadersTab.Update(msg, m.ctl)
		case TabParams:
			m.paramsTab, cmd = m.paramsTab.Update(msg, m.ctl)
		}
		return m, cmd
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabShaders
			return m, nil
		case "2":
			m.activeTab = TabParams
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabShaders:
		m.shadersTab, cmd = m.shadersTab.Update(msg, m.ctl)
	case TabParams:
		m.paramsTab, cmd = m.paramsTab.Update(msg, m.ctl)
	}
	return m, cmd
}

func (m model) capturing() bool {
	switch m.activeTab {
	case TabShaders:
		return m.shadersTab.list.FilterState() == list.Filtering
	case TabParams:
		return m.paramsTab.editing
	}
	return false
}

func (m *model) applyStatus(msg statusMsg) {
	if msg.err != nil || msg.status == nil {
		m.connected = false
		m.status = ipc.StatusData{}
		return
	}
	m.connected = true
	m.status = *msg.status
	m.shadersTab.SetActive(m.status.Shader)
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, m.status.Shader, m.status.ShaderError, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.activeTab, m.width)

	var content string
	switch m.activeTab {
	case TabShaders:
		content = m.shadersTab.View()
	case TabParams:
		content = m.paramsTab.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
