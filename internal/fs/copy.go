package fs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"syscall"

	"mediasort/internal/sorter"
)

// CopyFile copies src to dst, keeping permission bits, access time and
// modification time. dst is created exclusively, so an existing file is
// never overwritten. A partially written dst is removed on failure.
func (m *AferoFilesystemManager) CopyFile(src *sorter.Path, dst string) error {
	in, err := m.fs.Open(src.String())
	if err != nil {
		return copyError(src.String(), dst, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return copyError(src.String(), dst, err)
	}

	out, err := m.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return copyError(src.String(), dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		m.fs.Remove(dst)
		return copyError(src.String(), dst, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		m.fs.Remove(dst)
		return copyError(src.String(), dst, err)
	}
	if err := out.Close(); err != nil {
		m.fs.Remove(dst)
		return copyError(src.String(), dst, err)
	}

	// OpenFile applies the umask; restore the exact source bits.
	if err := m.fs.Chmod(dst, info.Mode().Perm()); err != nil {
		m.fs.Remove(dst)
		return copyError(src.String(), dst, err)
	}
	if err := m.fs.Chtimes(dst, accessTime(info), info.ModTime()); err != nil {
		m.fs.Remove(dst)
		return copyError(src.String(), dst, err)
	}

	return nil
}

// copyError wraps err in a sorter.CopyError with a kind derived from it.
func copyError(src, dst string, err error) error {
	kind := sorter.CopyIO
	switch {
	case errors.Is(err, fs.ErrExist):
		kind = sorter.CopyExists
	case errors.Is(err, fs.ErrPermission):
		kind = sorter.CopyPermission
	case errors.Is(err, syscall.ENOSPC):
		kind = sorter.CopyNoSpace
	case errors.Is(err, syscall.ENAMETOOLONG):
		kind = sorter.CopyNameTooLong
	}
	return &sorter.CopyError{Source: src, Dest: dst, Kind: kind, Err: err}
}
