// Package runtimepath locates the per-user directory where the compositor
// publishes its control socket.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// SocketName is the control socket's file name inside Dir.
const SocketName = "screenshader.sock"

// Dir returns XDG_RUNTIME_DIR when set, else /run/user/<uid> when it exists,
// else a private directory under /tmp that it creates.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}
	uid := os.Getuid()
	if dir := fmt.Sprintf("/run/user/%d", uid); isDir(dir) {
		return dir, nil
	}
	dir := filepath.Join(os.TempDir(), fmt.Sprintf("screenshader-runtime-%d", uid))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating runtime dir %s: %w", dir, err)
	}
	return dir, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// SocketPath is where the compositor listens and where control clients dial.
func SocketPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SocketName), nil
}
