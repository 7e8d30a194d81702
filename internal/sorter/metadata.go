package sorter

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Keys looked up in the map returned by VideoMetadataReader, in priority order.
const (
	VideoCreationDateKey = "QuickTime:CreationDate"
	VideoCreateDateKey   = "QuickTime:CreateDate"
)

// exifTimeLayout is the fixed textual encoding of EXIF date/time tags.
const exifTimeLayout = "2006:01:02 15:04:05"

// videoTimeLayouts are tried in order for textual video timestamps.
var videoTimeLayouts = []string{
	"2006:01:02 15:04:05-07:00",
	"2006:01:02 15:04:05-0700",
	exifTimeLayout,
}

// ImageMetadataReader reads the embedded capture time tag of an image.
type ImageMetadataReader interface {
	// DateTimeOriginal returns the raw DateTimeOriginal text
	// ("YYYY:MM:DD HH:MM:SS"). It returns an error wrapping ErrNoMetadata
	// when the image has no EXIF block or no such tag.
	DateTimeOriginal(r io.Reader) (string, error)
}

// VideoMetadataReader returns metadata of a video file as a key/value map.
// Values are either time.Time or string.
type VideoMetadataReader interface {
	ReadMetadata(path string) (map[string]any, error)
}

// Extractor derives capture timestamps from embedded file metadata.
// Returned times are timezone-naive: the wall clock is kept in UTC.
type Extractor struct {
	fsmgr  FilesystemManager
	images ImageMetadataReader
	videos VideoMetadataReader
	logger Logger
}

// NewExtractor creates an Extractor reading files through fsmgr.
func NewExtractor(fsmgr FilesystemManager, images ImageMetadataReader, videos VideoMetadataReader, logger Logger) *Extractor {
	return &Extractor{
		fsmgr:  fsmgr,
		images: images,
		videos: videos,
		logger: logger,
	}
}

// CaptureTime is the total form of Extract: any failure is logged and
// reported as "no timestamp" (ok == false).
func (e *Extractor) CaptureTime(path string, mediaType MediaType) (time.Time, bool) {
	t, err := e.Extract(path, mediaType)
	if err != nil {
		if !errors.Is(err, ErrUnsupportedMedia) {
			e.logger.Debug("no capture time", "path", path, "kind", string(MetadataErrorKindOf(err)), "error", err)
		}
		return time.Time{}, false
	}
	return t, true
}

// Extract returns the capture time of the file at path. Errors are always
// *MetadataError.
func (e *Extractor) Extract(path string, mediaType MediaType) (time.Time, error) {
	switch mediaType {
	case MediaImage:
		return e.extractImage(path)
	case MediaVideo:
		return e.extractVideo(path)
	default:
		return time.Time{}, &MetadataError{Path: path, Kind: MetadataUnsupported, Err: ErrUnsupportedMedia}
	}
}

func (e *Extractor) extractImage(path string) (time.Time, error) {
	f, err := e.fsmgr.Open(path)
	if err != nil {
		return time.Time{}, &MetadataError{Path: path, Kind: MetadataOpen, Err: err}
	}
	defer f.Close()

	raw, err := e.images.DateTimeOriginal(f)
	if err != nil {
		return time.Time{}, &MetadataError{Path: path, Kind: kindForReadError(err), Err: err}
	}

	t, err := time.Parse(exifTimeLayout, raw)
	if err != nil {
		return time.Time{}, &MetadataError{Path: path, Kind: MetadataParse, Err: err}
	}
	return t, nil
}

func (e *Extractor) extractVideo(path string) (time.Time, error) {
	fields, err := e.videos.ReadMetadata(path)
	if err != nil {
		return time.Time{}, &MetadataError{Path: path, Kind: kindForReadError(err), Err: err}
	}

	// The secondary key is only consulted when the primary one is absent.
	value, ok := fields[VideoCreationDateKey]
	if !ok {
		value, ok = fields[VideoCreateDateKey]
	}
	if !ok {
		return time.Time{}, &MetadataError{Path: path, Kind: MetadataMissing, Err: ErrNoMetadata}
	}

	t, err := parseVideoTime(value)
	if err != nil {
		return time.Time{}, &MetadataError{Path: path, Kind: MetadataParse, Err: err}
	}
	return t, nil
}

// parseVideoTime accepts a time.Time or one of videoTimeLayouts and drops
// any zone information, keeping the wall clock.
func parseVideoTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, fmt.Errorf("zero timestamp")
		}
		return naive(v), nil
	case string:
		for _, layout := range videoTimeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return naive(t), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", value)
	}
}

// naive keeps t's wall clock and drops its location.
func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func kindForReadError(err error) MetadataErrorKind {
	if errors.Is(err, ErrNoMetadata) {
		return MetadataMissing
	}
	return MetadataDecode
}
