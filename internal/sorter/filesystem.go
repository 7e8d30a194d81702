package sorter

import "io"

// WalkFunc is called once per regular file found by FilesystemManager.Walk.
// Returning an error stops the walk and the error is returned from Walk.
type WalkFunc func(file *Path) error

// FilesystemManager abstracts every filesystem access the sorter performs,
// so the whole pipeline can run against an in-memory filesystem in tests.
type FilesystemManager interface {
	// Resolve makes rawPath absolute, stats it and returns a Path.
	Resolve(rawPath string) (*Path, error)

	// Walk visits every regular file under root in lexical order.
	// Symlinks to regular files are reported; symlinked directories are not
	// descended into. Directories whose absolute path is listed in skipDirs
	// are pruned, and files matching the manager's ignore patterns are skipped.
	Walk(root *Path, skipDirs []string, fn WalkFunc) error

	// RealPath returns path with every symlink resolved. A path that does
	// not exist yet is resolved through its nearest existing parent.
	RealPath(path string) (string, error)

	// Open opens a file for reading.
	Open(path string) (io.ReadSeekCloser, error)

	// Exists reports whether anything exists at path.
	Exists(path string) (bool, error)

	// MkdirAll creates path and any missing parents. An existing directory
	// is not an error.
	MkdirAll(path string) error

	// CopyFile copies src to dst, preserving content, permission bits and
	// access/modification times. dst must not exist; CopyFile never
	// overwrites and removes a partially written dst on failure.
	CopyFile(src *Path, dst string) error
}
