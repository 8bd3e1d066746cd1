//go:build !linux || !cgo

package main

import (
	"fmt"
	"os"
)

func runCompositor(args []string) int {
	fmt.Fprintln(os.Stderr, "screenshader run requires Linux with cgo (GLX)")
	return 1
}
