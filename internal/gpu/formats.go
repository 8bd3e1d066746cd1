package gpu

import (
	"fmt"
	"strings"
)

// MaxDepth is the largest color depth a window can have.
const MaxDepth = 32

// TextureFormat is the pixel layout used when sampling a shared pixmap.
type TextureFormat int

const (
	FormatRGB TextureFormat = iota
	FormatRGBA
)

func (f TextureFormat) String() string {
	if f == FormatRGBA {
		return "rgba"
	}
	return "rgb"
}

// DepthFormat describes how windows of one color depth are bound.
type DepthFormat struct {
	Supported bool
	Format    TextureFormat
	// Config is the backend's opaque framebuffer configuration index.
	Config int
}

// DepthFormatTable maps color depths 0..MaxDepth to binding formats. It is
// built once at device creation and never modified.
type DepthFormatTable [MaxDepth + 1]DepthFormat

// Lookup returns the format for depth, or false when windows of that depth
// cannot be composited.
func (t *DepthFormatTable) Lookup(depth int) (DepthFormat, bool) {
	if depth <= 0 || depth > MaxDepth || !t[depth].Supported {
		return DepthFormat{}, false
	}
	return t[depth], true
}

// Any reports whether at least one depth is supported.
func (t *DepthFormatTable) Any() bool {
	for _, f := range t {
		if f.Supported {
			return true
		}
	}
	return false
}

func (t *DepthFormatTable) String() string {
	var parts []string
	for d, f := range t {
		if f.Supported {
			parts = append(parts, fmt.Sprintf("%d:%s", d, f.Format))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
