package gpu

import "testing"

func TestDepthFormatTable(t *testing.T) {
	var table DepthFormatTable
	if table.Any() {
		t.Fatal("empty table reports a supported depth")
	}
	if got := table.String(); got != "none" {
		t.Fatalf("String() = %q, want %q", got, "none")
	}

	table[24] = DepthFormat{Supported: true, Format: FormatRGB, Config: 3}
	table[32] = DepthFormat{Supported: true, Format: FormatRGBA, Config: 7}

	tests := []struct {
		depth  int
		wantOK bool
		want   TextureFormat
	}{
		{depth: 24, wantOK: true, want: FormatRGB},
		{depth: 32, wantOK: true, want: FormatRGBA},
		{depth: 16},
		{depth: 0},
		{depth: -1},
		{depth: 33},
	}
	for _, tt := range tests {
		f, ok := table.Lookup(tt.depth)
		if ok != tt.wantOK {
			t.Fatalf("Lookup(%d) ok = %v, want %v", tt.depth, ok, tt.wantOK)
		}
		if ok && f.Format != tt.want {
			t.Fatalf("Lookup(%d) format = %s, want %s", tt.depth, f.Format, tt.want)
		}
	}
	if got := table.String(); got != "24:rgb 32:rgba" {
		t.Fatalf("String() = %q", got)
	}
}
