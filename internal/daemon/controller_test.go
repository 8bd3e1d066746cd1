package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/xatuke/screenshader/internal/compositor"
	"github.com/xatuke/screenshader/internal/ipc"
	"github.com/xatuke/screenshader/internal/params"
)

type fakeWatcher struct {
	targets []string
	err     error
}

func (f *fakeWatcher) SetTarget(path string) error {
	f.targets = append(f.targets, path)
	return f.err
}

func newTestController(t *testing.T, st compositor.Status) (*Controller, *compositor.Requests, *bool, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"crt.frag", "grayscale.frag"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("void main() {}\n"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.frag"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	reqs := compositor.NewRequests()
	stopped := false
	ctl := NewController(ControllerConfig{
		Requests:   reqs,
		Status:     func() compositor.Status { return st },
		ShaderDir:  dir,
		ParamsFile: "/tmp/test.params",
		Stop:       context.CancelFunc(func() { stopped = true }),
	})
	return ctl, reqs, &stopped, dir
}

func woke(reqs *compositor.Requests) bool {
	select {
	case <-reqs.Wake():
		return true
	default:
		return false
	}
}

func TestController_SelectShader(t *testing.T) {
	ctl, reqs, _, dir := newTestController(t, compositor.Status{})
	w := &fakeWatcher{}
	ctl.SetWatcher(w)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "by name", input: "grayscale", want: filepath.Join(dir, "grayscale.frag")},
		{name: "by path", input: filepath.Join(dir, "crt.frag"), want: filepath.Join(dir, "crt.frag")},
		{name: "missing", input: "nope", wantErr: true},
		{name: "directory", input: filepath.Join(dir, "nested.frag"), wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	var wantTargets []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ctl.SelectShader(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("SelectShader(%q) expected error", tt.input)
				}
				if woke(reqs) {
					t.Fatal("failed selection raised a request")
				}
				return
			}
			if err != nil {
				t.Fatalf("SelectShader(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("SelectShader(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if !woke(reqs) {
				t.Fatal("selection did not wake the loop")
			}
			wantTargets = append(wantTargets, tt.want)
		})
	}
	if diff := cmp.Diff(wantTargets, w.targets); diff != "" {
		t.Fatalf("watch targets mismatch (-want +got):\n%s", diff)
	}
}

func TestController_SelectShaderWatcherErrorIsNotFatal(t *testing.T) {
	ctl, reqs, _, _ := newTestController(t, compositor.Status{})
	ctl.SetWatcher(&fakeWatcher{err: errors.New("too many watches")})
	if _, err := ctl.SelectShader("crt"); err != nil {
		t.Fatalf("SelectShader error: %v", err)
	}
	if !woke(reqs) {
		t.Fatal("selection did not wake the loop")
	}
}

func TestController_ReloadAndStop(t *testing.T) {
	ctl, reqs, stopped, _ := newTestController(t, compositor.Status{})
	ctl.ReloadShader()
	if !woke(reqs) {
		t.Fatal("reload did not wake the loop")
	}
	ctl.Stop()
	if !*stopped {
		t.Fatal("Stop did not cancel the loop")
	}
	if ctl.ParamsFile() != "/tmp/test.params" {
		t.Fatalf("ParamsFile() = %q", ctl.ParamsFile())
	}
}

func TestController_Status(t *testing.T) {
	st := compositor.Status{
		Shader:         "/s/crt.frag",
		ShaderError:    "boom",
		ParamsFile:     "/tmp/test.params",
		Params:         []params.Param{{Name: "a", Value: 1}, {Name: "b", Value: 2}},
		Windows:        5,
		Mapped:         4,
		Bound:          3,
		Width:          1920,
		Height:         1080,
		Frames:         42,
		ProtocolErrors: 1,
		Started:        time.Now().Add(-90 * time.Second),
	}
	ctl, _, _, _ := newTestController(t, st)

	got := ctl.Status()
	if got.UptimeSeconds < 89 || got.UptimeSeconds > 120 {
		t.Fatalf("UptimeSeconds = %d", got.UptimeSeconds)
	}
	got.UptimeSeconds = 0
	want := ipc.StatusData{
		Shader:         "/s/crt.frag",
		ShaderError:    "boom",
		ParamsFile:     "/tmp/test.params",
		ParamCount:     2,
		Windows:        5,
		Mapped:         4,
		Bound:          3,
		Width:          1920,
		Height:         1080,
		Frames:         42,
		ProtocolErrors: 1,
		DaemonRunning:  true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Status() mismatch (-want +got):\n%s", diff)
	}
}
