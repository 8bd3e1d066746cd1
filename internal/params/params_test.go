package params

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	long := strings.Repeat("x", 80)
	tests := []struct {
		name string
		in   string
		want []Param
	}{
		{
			name: "pairs",
			in:   "brightness 0.5\ncontrast 1.2\n",
			want: []Param{{"brightness", 0.5}, {"contrast", 1.2}},
		},
		{
			name: "malformed lines skipped",
			in:   "\n# comment\nonlyname\nbad notanumber\n  spaced   -3  \ngood 2 trailing\n",
			want: []Param{{"spaced", -3}, {"good", 2}},
		},
		{
			name: "long name truncated",
			in:   long + " 1\n",
			want: []Param{{long[:MaxNameLen], 1}},
		},
		{
			name: "over-long line skipped",
			in:   "brightness 0.5\n# " + strings.Repeat("x", 70000) + "\ncontrast 1.2\n",
			want: []Param{{"brightness", 0.5}, {"contrast", 1.2}},
		},
		{
			name: "numeric prefix",
			in:   "brightness 0.5x\ngain 2e\n",
			want: []Param{{"brightness", 0.5}, {"gain", 2}},
		},
		{
			name: "out of range saturates",
			in:   "huge 1e40\n",
			want: []Param{{"huge", float32(math.Inf(1))}},
		},
		{
			name: "crlf and no final newline",
			in:   "a 1\r\nb 2",
			want: []Param{{"a", 1}, {"b", 2}},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.in))
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_BoundedEntries(t *testing.T) {
	var b strings.Builder
	for i := 0; i < MaxEntries+5; i++ {
		b.WriteString("p 1\n")
	}
	got, err := Parse(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(got) != MaxEntries {
		t.Fatalf("len(Parse()) = %d, want %d", len(got), MaxEntries)
	}
}

func writeAt(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Chtimes() error: %v", err)
	}
}

func TestSource_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screenshader.params")
	src := NewSource(path)
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	writeAt(t, path, "brightness 0.5\ncontrast 1.2", base)
	got, changed, err := src.Poll()
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if !changed {
		t.Fatal("first Poll() reported no change")
	}
	if diff := cmp.Diff([]Param{{"brightness", 0.5}, {"contrast", 1.2}}, got); diff != "" {
		t.Fatalf("Poll() mismatch (-want +got):\n%s", diff)
	}

	if _, changed, err := src.Poll(); err != nil || changed {
		t.Fatalf("Poll() with unchanged mtime = changed %v, err %v", changed, err)
	}

	writeAt(t, path, "glitch 9.9\n", base.Add(time.Second))
	got, changed, err = src.Poll()
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if !changed {
		t.Fatal("Poll() after rewrite reported no change")
	}
	if diff := cmp.Diff([]Param{{"glitch", 9.9}}, got); diff != "" {
		t.Fatalf("Poll() mismatch (-want +got):\n%s", diff)
	}
}

func TestSource_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params")
	src := NewSource(path)

	if got, changed, err := src.Poll(); err != nil || changed || got != nil {
		t.Fatalf("Poll() on absent file = %v, %v, %v", got, changed, err)
	}

	writeAt(t, path, "a 1\n", time.Now())
	if _, changed, _ := src.Poll(); !changed {
		t.Fatal("Poll() after create reported no change")
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	got, changed, err := src.Poll()
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if !changed || len(got) != 0 {
		t.Fatalf("Poll() after remove = %v, changed %v; want empty change", got, changed)
	}
	if _, changed, _ := src.Poll(); changed {
		t.Fatal("second Poll() on absent file reported a change")
	}
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params")
	in := []Param{{"brightness", 0.75}, {"scanlines", 300}}
	if err := Write(path, in); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Fatalf("Read() mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params")
	tests := []struct {
		name string
		in   []Param
	}{
		{name: "whitespace name", in: []Param{{"a b", 1}}},
		{name: "empty name", in: []Param{{"", 1}}},
		{name: "too many", in: make([]Param, MaxEntries+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Write(path, tt.in); err == nil {
				t.Fatal("Write() succeeded, want error")
			}
		})
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("params file exists after failed writes: %v", err)
	}
}

func TestParseAssignmentAndMerge(t *testing.T) {
	p, err := ParseAssignment("contrast = 1.5")
	if err != nil {
		t.Fatalf("ParseAssignment() error: %v", err)
	}
	if p != (Param{"contrast", 1.5}) {
		t.Fatalf("ParseAssignment() = %+v", p)
	}
	if _, err := ParseAssignment("contrast"); err == nil {
		t.Fatal("ParseAssignment() without '=' succeeded")
	}

	got := Merge([]Param{{"brightness", 1}, {"contrast", 1}}, []Param{{"contrast", 1.5}, {"glitch", 0.2}})
	want := []Param{{"brightness", 1}, {"contrast", 1.5}, {"glitch", 0.2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Merge() mismatch (-want +got):\n%s", diff)
	}
}
