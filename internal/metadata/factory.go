package metadata

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"mediasort/internal/config"
	"mediasort/internal/sorter"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewVideoReaderFromConfig creates a VideoMetadataReader based on the
// configured backend. The returned Closer releases the backend's resources.
func NewVideoReaderFromConfig(cfg config.MetadataConfig, fsys afero.Fs) (sorter.VideoMetadataReader, io.Closer, error) {
	switch cfg.VideoReader {
	case "", "quicktime":
		return NewQuickTimeReader(fsys), nopCloser{}, nil
	case "exiftool":
		r, err := NewExiftoolReader(cfg.ExiftoolPath)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	default:
		return nil, nil, fmt.Errorf("unknown video reader: %s", cfg.VideoReader)
	}
}
