package sorter

import (
	"io/fs"
	"path/filepath"
)

// Path is a resolved filesystem location with the stat info captured when
// it was resolved. Paths are produced by FilesystemManager.Resolve and by
// FilesystemManager.Walk; the scanner keeps them on each FileRecord.
type Path struct {
	absPath string
	isDir   bool
	info    fs.FileInfo
}

// NewPath creates a Path from its components.
// This is primarily for use by FilesystemManager implementations.
func NewPath(absPath string, isDir bool, info fs.FileInfo) *Path {
	return &Path{
		absPath: absPath,
		isDir:   isDir,
		info:    info,
	}
}

// String returns the absolute path.
func (p *Path) String() string {
	return p.absPath
}

// Name returns the last element of the path.
func (p *Path) Name() string {
	return filepath.Base(p.absPath)
}

func (p *Path) IsDir() bool {
	return p.isDir
}

// Info returns the cached file info from when the path was resolved.
func (p *Path) Info() fs.FileInfo {
	return p.info
}
