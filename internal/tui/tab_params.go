package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/xatuke/screenshader/internal/params"
)

// paramFields holds form-bound values. The form keeps pointers into it, so
// it must outlive copies of the tab.
type paramFields struct {
	values []string
	add    string
}

// paramsSavedMsg reports the outcome of writing parameters.
type paramsSavedMsg struct {
	params []params.Param
	direct bool
	err    error
}

// paramsLoadedMsg carries parameters read from the compositor or the file.
type paramsLoadedMsg struct {
	file   string
	params []params.Param
	err    error
}

// ParamsTab shows and edits the runtime parameter file.
type ParamsTab struct {
	file    string
	params  []params.Param
	message string
	err     bool

	editing bool
	form    *huh.Form
	fields  *paramFields

	width  int
	height int
}

// NewParamsTab returns a tab for the parameter file at file.
func NewParamsTab(file string) ParamsTab {
	return ParamsTab{file: file}
}

func loadParamsCmd(ctl Control, file string) tea.Cmd {
	return func() tea.Msg {
		if ctl != nil {
			if data, err := ctl.GetParams(); err == nil {
				return paramsLoadedMsg{file: data.File, params: data.Params}
			}
		}
		ps, err := params.Read(file)
		return paramsLoadedMsg{file: file, params: ps, err: err}
	}
}

func saveParamsCmd(ctl Control, file string, ps []params.Param) tea.Cmd {
	return func() tea.Msg {
		if ctl != nil {
			if data, err := ctl.SetParams(ps, true); err == nil {
				return paramsSavedMsg{params: data.Params}
			}
		}
		if err := params.Write(file, ps); err != nil {
			return paramsSavedMsg{err: err}
		}
		return paramsSavedMsg{params: ps, direct: true}
	}
}

// Update handles messages for the params tab. ctl may be nil.
func (p ParamsTab) Update(msg tea.Msg, ctl Control) (ParamsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case paramsLoadedMsg:
		if msg.err != nil {
			p.message, p.err = msg.err.Error(), true
			return p, nil
		}
		if msg.file != "" {
			p.file = msg.file
		}
		p.params = msg.params
		return p, nil
	case paramsSavedMsg:
		if msg.err != nil {
			p.message, p.err = "save failed: "+msg.err.Error(), true
			return p, nil
		}
		p.params = msg.params
		p.message, p.err = "saved", false
		if msg.direct {
			p.message = "saved to " + p.file + " (compositor not running)"
		}
		return p, nil
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
	}

	if p.editing {
		return p.updateEditing(msg, ctl)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "e":
			p.startEditing()
			return p, p.form.Init()
		case "r":
			return p, loadParamsCmd(ctl, p.file)
		}
	}
	return p, nil
}

func (p ParamsTab) updateEditing(msg tea.Msg, ctl Control) (ParamsTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		p.editing = false
		p.form = nil
		p.fields = nil
		return p, nil
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	switch p.form.State {
	case huh.StateCompleted:
		ps, err := p.collect()
		p.editing = false
		p.form = nil
		p.fields = nil
		if err != nil {
			p.message, p.err = err.Error(), true
			return p, nil
		}
		return p, saveParamsCmd(ctl, p.file, ps)
	case huh.StateAborted:
		p.editing = false
		p.form = nil
		p.fields = nil
		return p, nil
	}
	return p, cmd
}

func (p *ParamsTab) startEditing() {
	p.fields = &paramFields{values: make([]string, len(p.params))}
	fields := make([]huh.Field, 0, len(p.params)+1)
	for i, param := range p.params {
		p.fields.values[i] = strconv.FormatFloat(float64(param.Value), 'g', -1, 32)
		fields = append(fields, huh.NewInput().
			Key(param.Name).
			Title(param.Name).
			Validate(validateFloat).
			Value(&p.fields.values[i]))
	}
	fields = append(fields, huh.NewInput().
		Key("add").
		Title("Add parameter").
		Description("name=value, leave empty to skip").
		Validate(validateAssignment).
		Value(&p.fields.add))

	w := p.width - 4
	if w < 40 {
		w = 40
	}
	p.form = huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(w).WithShowHelp(true).WithShowErrors(true)
	p.editing = true
	p.message = ""
}

// collect builds the parameter list from the form values.
func (p ParamsTab) collect() ([]params.Param, error) {
	out := make([]params.Param, 0, len(p.params)+1)
	for i, param := range p.params {
		v, err := strconv.ParseFloat(strings.TrimSpace(p.fields.values[i]), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", param.Name, err)
		}
		out = append(out, params.Param{Name: param.Name, Value: float32(v)})
	}
	if add := strings.TrimSpace(p.fields.add); add != "" {
		np, err := params.ParseAssignment(add)
		if err != nil {
			return nil, err
		}
		out = params.Merge(out, []params.Param{np})
	}
	return out, nil
}

func validateFloat(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 32); err != nil {
		return fmt.Errorf("not a number")
	}
	return nil
}

func validateAssignment(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := params.ParseAssignment(s)
	return err
}

// View renders the tab.
func (p ParamsTab) View() string {
	if p.editing && p.form != nil {
		return p.form.View()
	}

	var b strings.Builder
	b.WriteString(dimStyle.Render("file: "+p.file) + "\n\n")
	if len(p.params) == 0 {
		b.WriteString(dimStyle.Render("no parameters") + "\n")
	}
	for _, param := range p.params {
		b.WriteString(nameStyle.Render(param.Name))
		b.WriteString(strconv.FormatFloat(float64(param.Value), 'g', -1, 32))
		b.WriteByte('\n')
	}
	if p.message != "" {
		b.WriteByte('\n')
		if p.err {
			b.WriteString(errStyle.Render(p.message))
		} else {
			b.WriteString(okStyle.Render(p.message))
		}
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}
