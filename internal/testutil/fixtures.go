// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
)

// CountingFs wraps an afero.Fs and counts how many times each file is
// opened for reading.
type CountingFs struct {
	afero.Fs

	mu    sync.Mutex
	opens map[string]int
}

// NewCountingFs wraps fs.
func NewCountingFs(fs afero.Fs) *CountingFs {
	return &CountingFs{Fs: fs, opens: make(map[string]int)}
}

// Open counts the open and delegates to the wrapped filesystem.
func (c *CountingFs) Open(name string) (afero.File, error) {
	c.record(name)
	return c.Fs.Open(name)
}

// OpenFile counts read-only opens and delegates to the wrapped filesystem.
func (c *CountingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		c.record(name)
	}
	return c.Fs.OpenFile(name, flag, perm)
}

// Opens returns how many times name was opened.
func (c *CountingFs) Opens(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens[filepath.Clean(name)]
}

func (c *CountingFs) record(name string) {
	c.mu.Lock()
	c.opens[filepath.Clean(name)]++
	c.mu.Unlock()
}

// WriteTree writes files, keyed by path, to fs. Parent directories are
// created as needed. The test fails immediately on any error.
func WriteTree(t testing.TB, fs afero.Fs, files map[string]string) {
	t.Helper()
	for path, contents := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := afero.WriteFile(fs, path, []byte(contents), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// MemTree returns an in-memory filesystem holding files.
func MemTree(t testing.TB, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	WriteTree(t, fs, files)
	return fs
}
