package metadata

import (
	"errors"
	"fmt"
	"sync"

	"github.com/barasher/go-exiftool"

	"mediasort/internal/sorter"
)

var errExiftoolClosed = errors.New("exiftool reader closed")

// ExiftoolReader reads video metadata through a long-running exiftool
// process. It needs the exiftool binary.
//
// Tags are reported with their family 0 group name ("QuickTime:CreateDate"),
// so an EXIF or XMP tag of the same name never stands in for the QuickTime one.
type ExiftoolReader struct {
	mu sync.Mutex
	et *exiftool.Exiftool
}

// NewExiftoolReader starts exiftool. binaryPath may be empty to use the
// exiftool found on PATH.
func NewExiftoolReader(binaryPath string) (*ExiftoolReader, error) {
	opts := []func(*exiftool.Exiftool) error{exiftool.PrintGroupNames("0")}
	if binaryPath != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(binaryPath))
	}
	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, fmt.Errorf("starting exiftool: %w", err)
	}
	return &ExiftoolReader{et: et}, nil
}

// ReadMetadata implements sorter.VideoMetadataReader.
func (r *ExiftoolReader) ReadMetadata(path string) (map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.et == nil {
		return nil, errExiftoolClosed
	}

	results := r.et.ExtractMetadata(path)
	if len(results) == 0 {
		return nil, fmt.Errorf("exiftool returned nothing for %s", path)
	}
	fm := results[0]
	if fm.Err != nil {
		return nil, fmt.Errorf("exiftool: %w", fm.Err)
	}
	return fm.Fields, nil
}

// Close stops the exiftool process.
func (r *ExiftoolReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.et == nil {
		return nil
	}
	err := r.et.Close()
	r.et = nil
	return err
}

// Compile-time check that ExiftoolReader implements sorter.VideoMetadataReader
var _ sorter.VideoMetadataReader = (*ExiftoolReader)(nil)
