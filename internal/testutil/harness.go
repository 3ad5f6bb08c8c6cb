// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Workspace is a temporary checkout: Dir is the parent directory and
// ModuleRoot the "android" module inside it, so the default output root
// Dir/build lands next to the module.
type Workspace struct {
	Dir        string
	ModuleRoot string
}

// BuildRoot is where the default build_dir points.
func (w Workspace) BuildRoot() string {
	return filepath.Join(w.Dir, "build")
}

// Path returns an absolute path inside the module.
func (w Workspace) Path(name string) string {
	return filepath.Join(w.ModuleRoot, filepath.FromSlash(name))
}

// NewWorkspace writes files (relative to the module root) into a fresh
// temporary workspace.
func NewWorkspace(t *testing.T, files map[string]string) Workspace {
	t.Helper()

	dir := t.TempDir()
	ws := Workspace{Dir: dir, ModuleRoot: filepath.Join(dir, "android")}
	require.NoError(t, os.MkdirAll(ws.ModuleRoot, 0o755))

	for name, content := range files {
		WriteFile(t, ws.Path(name), content)
	}
	return ws
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
