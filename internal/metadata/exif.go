package metadata

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"mediasort/internal/sorter"
)

// EXIFReader reads the DateTimeOriginal tag from JPEG or TIFF data.
type EXIFReader struct{}

// NewEXIFReader creates a new EXIFReader.
func NewEXIFReader() *EXIFReader {
	return &EXIFReader{}
}

// DateTimeOriginal returns the raw DateTimeOriginal text. Images without an
// EXIF block or without the tag yield an error wrapping sorter.ErrNoMetadata.
// The general DateTime tag is deliberately not consulted.
func (r *EXIFReader) DateTimeOriginal(rd io.Reader) (string, error) {
	x, err := exif.Decode(rd)
	if x == nil {
		if err == nil || errors.Is(err, io.EOF) {
			return "", fmt.Errorf("decoding exif: %w", sorter.ErrNoMetadata)
		}
		return "", fmt.Errorf("decoding exif: %w", err)
	}
	if err != nil && exif.IsCriticalError(err) {
		return "", fmt.Errorf("decoding exif: %w", err)
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		if exif.IsTagNotPresentError(err) {
			return "", fmt.Errorf("DateTimeOriginal: %w", sorter.ErrNoMetadata)
		}
		return "", fmt.Errorf("reading DateTimeOriginal: %w", err)
	}

	val, err := tag.StringVal()
	if err != nil {
		return "", fmt.Errorf("reading DateTimeOriginal: %w", err)
	}
	return strings.TrimSpace(strings.TrimRight(val, "\x00")), nil
}

// Compile-time check that EXIFReader implements sorter.ImageMetadataReader
var _ sorter.ImageMetadataReader = (*EXIFReader)(nil)
