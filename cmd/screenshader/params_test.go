package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xatuke/screenshader/internal/params"
)

// offlineConfig points the control socket at an empty runtime dir and
// returns a config file whose params_file lives in a temp dir.
func offlineConfig(t *testing.T) (cfgPath, paramsPath string) {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	dir := t.TempDir()
	paramsPath = filepath.Join(dir, "screenshader.params")
	cfgPath = filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("params_file: "+paramsPath+"\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath, paramsPath
}

func TestRunParamsSetWritesFileWhenOffline(t *testing.T) {
	cfgPath, paramsPath := offlineConfig(t)
	if err := params.Write(paramsPath, []params.Param{{Name: "brightness", Value: 1}, {Name: "contrast", Value: 1}}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if rc := runParams([]string{"set", "--config", cfgPath, "contrast=1.5", "vignette=0.25"}); rc != 0 {
		t.Fatalf("runParams set rc=%d, want 0", rc)
	}
	got, err := params.Read(paramsPath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []params.Param{
		{Name: "brightness", Value: 1},
		{Name: "contrast", Value: 1.5},
		{Name: "vignette", Value: 0.25},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}

	if rc := runParams([]string{"set", "--config", cfgPath, "--replace", "gamma=2.2"}); rc != 0 {
		t.Fatalf("runParams set --replace rc=%d, want 0", rc)
	}
	got, err = params.Read(paramsPath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff([]params.Param{{Name: "gamma", Value: 2.2}}, got); diff != "" {
		t.Fatalf("params mismatch after replace (-want +got):\n%s", diff)
	}
}

func TestRunParamsSetRejectsBadAssignment(t *testing.T) {
	cfgPath, paramsPath := offlineConfig(t)
	for _, arg := range []string{"brightness", "bad name=1", "x=abc"} {
		if rc := runParams([]string{"set", "--config", cfgPath, arg}); rc != 2 {
			t.Fatalf("runParams set %q rc=%d, want 2", arg, rc)
		}
	}
	if _, err := os.Stat(paramsPath); !os.IsNotExist(err) {
		t.Fatalf("params file written for invalid input: %v", err)
	}
}

func TestRunConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(good, []byte("shader: shaders/grayscale.frag\nframe_interval: 8ms\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(bad, []byte("param_poll_frames: 0\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if rc := runConfig([]string{"validate", "--config", good}); rc != 0 {
		t.Fatalf("validate good rc=%d, want 0", rc)
	}
	if rc := runConfig([]string{"validate", "--config", bad}); rc != 1 {
		t.Fatalf("validate bad rc=%d, want 1", rc)
	}
	if rc := runConfig([]string{"explain", "--config", good, "frame_interval"}); rc != 0 {
		t.Fatalf("explain rc=%d, want 0", rc)
	}
	if rc := runConfig([]string{"explain", "--config", good, "nope"}); rc != 1 {
		t.Fatalf("explain unknown rc=%d, want 1", rc)
	}
}

func TestIsShaderArg(t *testing.T) {
	tests := []struct {
		arg  string
		want bool
	}{
		{"shaders/crt.frag", true},
		{"crt.frag", true},
		{"status", false},
		{"crt.vert", false},
	}
	for _, tt := range tests {
		if got := isShaderArg(tt.arg); got != tt.want {
			t.Errorf("isShaderArg(%q) = %v, want %v", tt.arg, got, tt.want)
		}
	}
}
