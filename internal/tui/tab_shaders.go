package tui

import (
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xatuke/screenshader/internal/shader"
)

type shaderItem struct {
	name   string
	path   string
	active bool
}

func (i shaderItem) Title() string {
	if i.active {
		return okStyle.Render("●") + " " + i.name
	}
	return dimStyle.Render("·") + " " + i.name
}

func (i shaderItem) Description() string { return i.path }
func (i shaderItem) FilterValue() string { return i.name }

// shaderSelectedMsg reports the outcome of a SELECT_SHADER request.
type shaderSelectedMsg struct {
	path string
	err  error
}

// ShadersTab lists the shaders in the shader directory.
type ShadersTab struct {
	list    list.Model
	dir     string
	active  string
	message string
	err     bool
	width   int
	height  int
}

// NewShadersTab lists dir, marking active.
func NewShadersTab(dir, active string) ShadersTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Shaders"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	t := ShadersTab{list: l, dir: dir, active: active}
	t.refresh()
	return t
}

func (t *ShadersTab) refresh() {
	names, err := shader.List(t.dir)
	if err != nil {
		t.message, t.err = err.Error(), true
		t.list.SetItems(nil)
		return
	}
	t.list.SetItems(buildShaderItems(t.dir, names, t.active))
}

func buildShaderItems(dir string, names []string, active string) []list.Item {
	activeAbs, _ := filepath.Abs(active)
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		path := shader.PathFor(dir, name)
		abs, _ := filepath.Abs(path)
		items = append(items, shaderItem{name: name, path: path, active: active != "" && abs == activeAbs})
	}
	return items
}

// SetActive marks path as the running shader.
func (t *ShadersTab) SetActive(path string) {
	if path == t.active {
		return
	}
	t.active = path
	t.refresh()
}

// Selected returns the highlighted shader's path.
func (t ShadersTab) Selected() (string, bool) {
	item, ok := t.list.SelectedItem().(shaderItem)
	if !ok {
		return "", false
	}
	return item.path, true
}

// Update handles messages for the shaders tab. ctl may be nil.
func (t ShadersTab) Update(msg tea.Msg, ctl Control) (ShadersTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.width*2/3, t.height-1)
		return t, nil
	case shaderSelectedMsg:
		if msg.err != nil {
			t.message, t.err = msg.err.Error(), true
			return t, nil
		}
		t.message, t.err = "selected "+filepath.Base(msg.path), false
		t.SetActive(msg.path)
		return t, nil
	case tea.KeyMsg:
		if t.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			path, ok := t.Selected()
			if !ok || ctl == nil {
				return t, nil
			}
			return t, selectShaderCmd(ctl, path)
		case "r":
			t.refresh()
			return t, nil
		}
	}
	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func selectShaderCmd(ctl Control, path string) tea.Cmd {
	return func() tea.Msg {
		resolved, err := ctl.SelectShader(path)
		if resolved == "" {
			resolved = path
		}
		return shaderSelectedMsg{path: resolved, err: err}
	}
}

// View renders the tab.
func (t ShadersTab) View() string {
	footer := ""
	if t.message != "" {
		if t.err {
			footer = errStyle.Render(t.message)
		} else {
			footer = okStyle.Render(t.message)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, t.list.View(), footer)
}
