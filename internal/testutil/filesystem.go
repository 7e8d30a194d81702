package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"mediasort/internal/fs"
	"mediasort/internal/sorter"
)

// MediaTree is an in-memory filesystem populated by a test.
type MediaTree struct {
	t  *testing.T
	Fs afero.Fs
}

// NewMediaTree creates an empty in-memory tree.
func NewMediaTree(t *testing.T) *MediaTree {
	t.Helper()
	return &MediaTree{t: t, Fs: afero.NewMemMapFs()}
}

// AddFile writes content at path, creating parent directories.
func (m *MediaTree) AddFile(path string, content []byte) {
	m.t.Helper()
	if err := m.Fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		m.t.Fatalf("creating parent of %s: %v", path, err)
	}
	if err := afero.WriteFile(m.Fs, path, content, 0644); err != nil {
		m.t.Fatalf("writing %s: %v", path, err)
	}
}

// AddDir creates a directory.
func (m *MediaTree) AddDir(path string) {
	m.t.Helper()
	if err := m.Fs.MkdirAll(path, 0755); err != nil {
		m.t.Fatalf("creating %s: %v", path, err)
	}
}

// Read returns the content at path, failing the test when it is missing.
func (m *MediaTree) Read(path string) []byte {
	m.t.Helper()
	b, err := afero.ReadFile(m.Fs, path)
	if err != nil {
		m.t.Fatalf("reading %s: %v", path, err)
	}
	return b
}

// Exists reports whether a file or directory exists at path.
func (m *MediaTree) Exists(path string) bool {
	m.t.Helper()
	ok, err := afero.Exists(m.Fs, path)
	if err != nil {
		m.t.Fatalf("stat %s: %v", path, err)
	}
	return ok
}

// Files returns the slash-separated paths of all regular files under root,
// relative to root and sorted.
func (m *MediaTree) Files(root string) []string {
	m.t.Helper()
	var out []string
	err := afero.Walk(m.Fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			rel, _ := filepath.Rel(root, p)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		m.t.Fatalf("walking %s: %v", root, err)
	}
	sort.Strings(out)
	return out
}

// Manager returns a filesystem manager over the tree.
func (m *MediaTree) Manager(ignore ...string) *fs.AferoFilesystemManager {
	return fs.NewAferoFilesystemManager(m.Fs, ignore)
}

// FaultyFilesystem wraps a FilesystemManager and fails selected operations.
type FaultyFilesystem struct {
	sorter.FilesystemManager

	mu    sync.Mutex
	mkdir map[string]error
	copy  map[string]error
}

// NewFaultyFilesystem wraps inner; with no failures configured it behaves
// exactly like inner.
func NewFaultyFilesystem(inner sorter.FilesystemManager) *FaultyFilesystem {
	return &FaultyFilesystem{
		FilesystemManager: inner,
		mkdir:             make(map[string]error),
		copy:              make(map[string]error),
	}
}

// FailMkdir makes MkdirAll return err for path.
func (f *FaultyFilesystem) FailMkdir(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mkdir[filepath.Clean(path)] = err
}

// FailCopy makes CopyFile return err when copying from sourcePath.
func (f *FaultyFilesystem) FailCopy(sourcePath string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copy[filepath.Clean(sourcePath)] = err
}

func (f *FaultyFilesystem) MkdirAll(path string) error {
	f.mu.Lock()
	err, ok := f.mkdir[filepath.Clean(path)]
	f.mu.Unlock()
	if ok {
		return err
	}
	return f.FilesystemManager.MkdirAll(path)
}

func (f *FaultyFilesystem) CopyFile(src *sorter.Path, dst string) error {
	f.mu.Lock()
	err, ok := f.copy[filepath.Clean(src.String())]
	f.mu.Unlock()
	if ok {
		return err
	}
	return f.FilesystemManager.CopyFile(src, dst)
}

// Compile-time check that FaultyFilesystem implements sorter.FilesystemManager
var _ sorter.FilesystemManager = (*FaultyFilesystem)(nil)
