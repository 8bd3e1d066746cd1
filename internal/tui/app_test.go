package tui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/xatuke/screenshader/internal/ipc"
	"github.com/xatuke/screenshader/internal/params"
)

type fakeControl struct {
	down     bool
	status   ipc.StatusData
	params   []params.Param
	selected string
}

var errDown = errors.New("failed to connect to compositor")

func (f *fakeControl) GetStatus() (*ipc.StatusData, error) {
	if f.down {
		return nil, errDown
	}
	st := f.status
	return &st, nil
}

func (f *fakeControl) SelectShader(shader string) (string, error) {
	if f.down {
		return "", errDown
	}
	f.selected = shader
	f.status.Shader = shader
	return shader, nil
}

func (f *fakeControl) GetParams() (*ipc.ParamsData, error) {
	if f.down {
		return nil, errDown
	}
	return &ipc.ParamsData{File: "/run/test.params", Params: f.params}, nil
}

func (f *fakeControl) SetParams(ps []params.Param, replace bool) (*ipc.ParamsData, error) {
	if f.down {
		return nil, errDown
	}
	if replace {
		f.params = ps
	} else {
		f.params = params.Merge(f.params, ps)
	}
	return f.GetParams()
}

func shaderDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"crt.frag", "grayscale.frag", "composite.frag"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("void main() {}\n"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func TestModel_TabNavigation(t *testing.T) {
	m := newModel(Options{ShaderDir: shaderDir(t), Control: &fakeControl{down: true}})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	steps := []struct {
		key  string
		want Tab
	}{
		{"tab", TabParams},
		{"tab", TabShaders},
		{"shift+tab", TabParams},
		{"1", TabShaders},
		{"2", TabParams},
	}
	for _, step := range steps {
		m, _ = update(t, m, key(step.key))
		if m.activeTab != step.want {
			t.Fatalf("after %q: activeTab = %v, want %v", step.key, m.activeTab, step.want)
		}
	}

	_, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not quit")
	}
}

func TestModel_StatusMarksActiveShader(t *testing.T) {
	dir := shaderDir(t)
	ctl := &fakeControl{status: ipc.StatusData{Shader: filepath.Join(dir, "grayscale.frag"), DaemonRunning: true}}
	m := newModel(Options{ShaderDir: dir, Control: ctl})
	if !m.connected {
		t.Fatal("expected connected model")
	}

	var active []string
	for _, it := range m.shadersTab.list.Items() {
		if si := it.(shaderItem); si.active {
			active = append(active, si.name)
		}
	}
	if diff := cmp.Diff([]string{"grayscale"}, active); diff != "" {
		t.Fatalf("active shaders mismatch (-want +got):\n%s", diff)
	}

	ctl.down = true
	m, _ = update(t, m, fetchStatusCmd(ctl)())
	if m.connected || m.status.Shader != "" {
		t.Fatalf("expected disconnected status, got connected=%v %+v", m.connected, m.status)
	}
}

func TestModel_SelectShader(t *testing.T) {
	dir := shaderDir(t)
	ctl := &fakeControl{}
	m := newModel(Options{ShaderDir: dir, Control: ctl})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m, cmd := update(t, m, key("enter"))
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	want := filepath.Join(dir, "crt.frag")
	m, _ = update(t, m, cmd())
	if ctl.selected != want {
		t.Fatalf("selected %q, want %q", ctl.selected, want)
	}
	if m.shadersTab.active != want || m.shadersTab.err {
		t.Fatalf("active = %q, message = %q", m.shadersTab.active, m.shadersTab.message)
	}

	ctl.down = true
	m, cmd = update(t, m, key("enter"))
	m, _ = update(t, m, cmd())
	if !m.shadersTab.err {
		t.Fatal("expected select failure to be reported")
	}
}

func TestParamsTab_LoadFallsBackToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "screenshader.params")
	if err := params.Write(file, []params.Param{{Name: "brightness", Value: 0.8}}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	tab := NewParamsTab(file)
	tab, _ = tab.Update(loadParamsCmd(&fakeControl{down: true}, file)(), nil)
	if diff := cmp.Diff([]params.Param{{Name: "brightness", Value: 0.8}}, tab.params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}

	ctl := &fakeControl{params: []params.Param{{Name: "contrast", Value: 1.1}}}
	tab, _ = tab.Update(loadParamsCmd(ctl, file)(), ctl)
	if tab.file != "/run/test.params" {
		t.Fatalf("file = %q", tab.file)
	}
	if diff := cmp.Diff(ctl.params, tab.params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestParamsTab_Save(t *testing.T) {
	ps := []params.Param{{Name: "brightness", Value: 1.2}}

	t.Run("through compositor", func(t *testing.T) {
		ctl := &fakeControl{params: []params.Param{{Name: "old", Value: 1}}}
		tab := NewParamsTab(filepath.Join(t.TempDir(), "unused.params"))
		tab, _ = tab.Update(saveParamsCmd(ctl, tab.file, ps)(), ctl)
		if diff := cmp.Diff(ps, ctl.params); diff != "" {
			t.Fatalf("compositor params mismatch (-want +got):\n%s", diff)
		}
		if tab.err || tab.message != "saved" {
			t.Fatalf("message = %q", tab.message)
		}
		if _, err := os.Stat(tab.file); !os.IsNotExist(err) {
			t.Fatalf("file written directly: %v", err)
		}
	})

	t.Run("direct when compositor down", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "screenshader.params")
		tab := NewParamsTab(file)
		tab, _ = tab.Update(saveParamsCmd(&fakeControl{down: true}, file, ps)(), nil)
		if tab.err {
			t.Fatalf("save failed: %s", tab.message)
		}
		got, err := params.Read(file)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if diff := cmp.Diff(ps, got); diff != "" {
			t.Fatalf("file params mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestParamsTab_Collect(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		add     string
		want    []params.Param
		wantErr bool
	}{
		{
			name:   "edit values",
			values: []string{"0.5", " 2 "},
			want:   []params.Param{{Name: "brightness", Value: 0.5}, {Name: "contrast", Value: 2}},
		},
		{
			name:   "add new",
			values: []string{"1", "1"},
			add:    "vignette=0.25",
			want: []params.Param{
				{Name: "brightness", Value: 1},
				{Name: "contrast", Value: 1},
				{Name: "vignette", Value: 0.25},
			},
		},
		{
			name:   "add overrides existing",
			values: []string{"1", "1"},
			add:    "contrast = 3",
			want:   []params.Param{{Name: "brightness", Value: 1}, {Name: "contrast", Value: 3}},
		},
		{name: "bad value", values: []string{"x", "1"}, wantErr: true},
		{name: "bad add", values: []string{"1", "1"}, add: "vignette", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := ParamsTab{
				params: []params.Param{{Name: "brightness", Value: 1}, {Name: "contrast", Value: 1}},
				fields: &paramFields{values: tt.values, add: tt.add},
			}
			got, err := tab.collect()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("collect() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("collect() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestModel_EditingCapturesKeys(t *testing.T) {
	ctl := &fakeControl{params: []params.Param{{Name: "brightness", Value: 1}}}
	m := newModel(Options{ShaderDir: shaderDir(t), Control: ctl})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, loadParamsCmd(ctl, "")())
	m, _ = update(t, m, key("2"))
	m, _ = update(t, m, key("e"))
	if !m.paramsTab.editing {
		t.Fatal("expected editing after e")
	}

	m, _ = update(t, m, key("1"))
	if m.activeTab != TabParams {
		t.Fatal("tab switched while editing")
	}

	m, _ = update(t, m, key("esc"))
	if m.paramsTab.editing {
		t.Fatal("esc did not cancel editing")
	}
	if diff := cmp.Diff(ctl.params, m.paramsTab.params); diff != "" {
		t.Fatalf("params changed on cancel (-want +got):\n%s", diff)
	}

	m, _ = update(t, m, key("e"))
	_, cmd := update(t, m, key("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("ctrl+c did not quit while editing")
	}
}
