package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"mediasort/internal/sorter"
)

// AferoFilesystemManager implements sorter.FilesystemManager on top of an
// afero.Fs. Production code uses the OS filesystem; tests use afero's
// in-memory filesystem.
type AferoFilesystemManager struct {
	fs     afero.Fs
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a manager that operates on the real filesystem.
func NewOSFilesystemManager(ignorePatterns []string) *AferoFilesystemManager {
	return NewAferoFilesystemManager(afero.NewOsFs(), ignorePatterns)
}

// NewAferoFilesystemManager creates a manager backed by fsys.
func NewAferoFilesystemManager(fsys afero.Fs, ignorePatterns []string) *AferoFilesystemManager {
	return &AferoFilesystemManager{
		fs:     fsys,
		ignore: NewIgnoreMatcher(ignorePatterns),
	}
}

// Fs returns the underlying afero filesystem.
func (m *AferoFilesystemManager) Fs() afero.Fs {
	return m.fs
}

// Resolve validates a raw path and returns a Path object.
// Symlinks are followed; devices, pipes and sockets are rejected.
func (m *AferoFilesystemManager) Resolve(rawPath string) (*sorter.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := m.fs.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return sorter.NewPath(absPath, info.IsDir(), info), nil
}

// Walk visits every regular file under root in lexical order.
//
// Unreadable subdirectories are skipped rather than aborting the walk; only
// an error on root itself is returned.
func (m *AferoFilesystemManager) Walk(root *sorter.Path, skipDirs []string, fn sorter.WalkFunc) error {
	if !root.IsDir() {
		return fmt.Errorf("path is not a directory: %s", root.String())
	}

	skip := make(map[string]struct{}, len(skipDirs))
	for _, d := range skipDirs {
		skip[filepath.Clean(d)] = struct{}{}
	}

	return afero.Walk(m.fs, root.String(), func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			if p == root.String() {
				return err
			}
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if _, ok := skip[filepath.Clean(p)]; ok && p != root.String() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			// Follow links to files; links to directories are not descended.
			target, err := m.fs.Stat(p)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
			info = target
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root.String(), p)
		if err != nil {
			return fmt.Errorf("calculating relative path: %w", err)
		}
		if m.ignore.Match(rel) {
			return nil
		}

		return fn(sorter.NewPath(p, false, info))
	})
}

// RealPath resolves symlinks in path. Missing trailing elements are kept
// as they are, so a destination that does not exist yet still resolves
// through its existing parents. Filesystems without symlinks return the
// cleaned absolute path.
func (m *AferoFilesystemManager) RealPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	if _, ok := m.fs.(*afero.OsFs); !ok {
		return abs, nil
	}

	var missing []string
	for {
		resolved, err := filepath.EvalSymlinks(abs)
		if err == nil {
			parts := append([]string{resolved}, missing...)
			return filepath.Join(parts...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("resolving symlinks: %w", err)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("resolving symlinks: %w", err)
		}
		missing = append([]string{filepath.Base(abs)}, missing...)
		abs = parent
	}
}

// Open opens a file for reading.
func (m *AferoFilesystemManager) Open(path string) (io.ReadSeekCloser, error) {
	return m.fs.Open(path)
}

// Exists reports whether anything, including a dangling symlink, exists at path.
func (m *AferoFilesystemManager) Exists(path string) (bool, error) {
	var err error
	if lst, ok := m.fs.(afero.Lstater); ok {
		_, _, err = lst.LstatIfPossible(path)
	} else {
		_, err = m.fs.Stat(path)
	}
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// MkdirAll creates path and any missing parents.
func (m *AferoFilesystemManager) MkdirAll(path string) error {
	return m.fs.MkdirAll(path, 0755)
}

// Compile-time check that AferoFilesystemManager implements sorter.FilesystemManager
var _ sorter.FilesystemManager = (*AferoFilesystemManager)(nil)
