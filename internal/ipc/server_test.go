package ipc

import (
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xatuke/screenshader/internal/params"
)

type fakeController struct {
	mu       sync.Mutex
	reloads  int
	stops    int
	selected string
	params   string
}

func (f *fakeController) ReloadShader() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
}

func (f *fakeController) SelectShader(name string) (string, error) {
	if name == "missing" {
		return "", errors.New("no such shader")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = "/shaders/" + name + ".frag"
	return f.selected, nil
}

func (f *fakeController) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeController) Status() StatusData {
	return StatusData{Shader: "/shaders/crt.frag", Windows: 3, Bound: 2, DaemonRunning: true}
}

func (f *fakeController) ParamsFile() string {
	return f.params
}

func startServer(t *testing.T) (*fakeController, *Client) {
	t.Helper()
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	dir := t.TempDir()
	ctl := &fakeController{params: filepath.Join(dir, "params")}
	srv := NewServerAt(filepath.Join(dir, "ctl.sock"), ctl)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(srv.Stop)
	return ctl, NewClientAt(srv.SocketPath())
}

func TestServer_ReloadStopStatus(t *testing.T) {
	ctl, client := startServer(t)

	if err := client.ReloadShader(); err != nil {
		t.Fatalf("ReloadShader() error: %v", err)
	}
	if err := client.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus() error: %v", err)
	}

	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if ctl.reloads != 1 || ctl.stops != 1 {
		t.Fatalf("reloads=%d stops=%d, want 1/1", ctl.reloads, ctl.stops)
	}
	if diff := cmp.Diff(ctl.Status(), *status); diff != "" {
		t.Fatalf("status mismatch (-want +got):\n%s", diff)
	}
}

func TestServer_Params(t *testing.T) {
	ctl, client := startServer(t)

	got, err := client.GetParams()
	if err != nil {
		t.Fatalf("GetParams() error: %v", err)
	}
	if got.File != ctl.params || len(got.Params) != 0 {
		t.Fatalf("GetParams() = %+v, want empty %s", got, ctl.params)
	}

	if _, err := client.SetParams([]params.Param{{Name: "brightness", Value: 1.5}, {Name: "contrast", Value: 1}}, false); err != nil {
		t.Fatalf("SetParams() error: %v", err)
	}
	if _, err := client.SetParams([]params.Param{{Name: "brightness", Value: 0.5}}, false); err != nil {
		t.Fatalf("SetParams() error: %v", err)
	}
	want := []params.Param{{Name: "brightness", Value: 0.5}, {Name: "contrast", Value: 1}}
	onDisk, err := params.Read(ctl.params)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if diff := cmp.Diff(want, onDisk); diff != "" {
		t.Fatalf("merged params mismatch (-want +got):\n%s", diff)
	}

	replaced, err := client.SetParams([]params.Param{{Name: "vignette", Value: 0.2}}, true)
	if err != nil {
		t.Fatalf("SetParams(replace) error: %v", err)
	}
	if diff := cmp.Diff([]params.Param{{Name: "vignette", Value: 0.2}}, replaced.Params); diff != "" {
		t.Fatalf("replaced params mismatch (-want +got):\n%s", diff)
	}
}

func TestServer_SetParamsRejectsInvalid(t *testing.T) {
	_, client := startServer(t)
	_, err := client.SetParams([]params.Param{{Name: "has space", Value: 1}}, false)
	if err == nil || !strings.Contains(err.Error(), "compositor error") {
		t.Fatalf("expected compositor error, got %v", err)
	}
}

func TestServer_SelectShader(t *testing.T) {
	ctl, client := startServer(t)

	path, err := client.SelectShader("vhs")
	if err != nil {
		t.Fatalf("SelectShader() error: %v", err)
	}
	if path != "/shaders/vhs.frag" || ctl.selected != path {
		t.Fatalf("SelectShader() = %q, controller has %q", path, ctl.selected)
	}

	if _, err := client.SelectShader("missing"); err == nil {
		t.Fatal("expected error selecting a missing shader")
	}
	if _, err := client.SelectShader(" "); err == nil {
		t.Fatal("expected error selecting an empty shader")
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	_, client := startServer(t)
	err := client.call(CommandType("UNDO"), nil, nil)
	if err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestClient_NoServer(t *testing.T) {
	client := NewClientAt(filepath.Join(t.TempDir(), "absent.sock"))
	if err := client.Ping(); err == nil {
		t.Fatal("expected connection error")
	}
}
