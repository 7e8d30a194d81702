//go:build !linux

package fs

import (
	"io/fs"
	"time"
)

// accessTime falls back to the modification time where the platform stat
// layout is not read.
func accessTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
