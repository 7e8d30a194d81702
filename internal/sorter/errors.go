package sorter

import (
	"errors"
	"fmt"
)

// ErrNoMetadata is returned by metadata readers when a file carries no
// usable metadata (no EXIF block, no DateTimeOriginal tag, no movie header).
var ErrNoMetadata = errors.New("no metadata")

// ErrUnsupportedMedia is returned by the Extractor for media types it does
// not read metadata from.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// MetadataErrorKind classifies why a capture time could not be extracted.
type MetadataErrorKind string

const (
	MetadataUnsupported MetadataErrorKind = "unsupported"
	MetadataOpen        MetadataErrorKind = "open"
	MetadataMissing     MetadataErrorKind = "no-metadata"
	MetadataDecode      MetadataErrorKind = "decode"
	MetadataParse       MetadataErrorKind = "parse"
)

// MetadataError describes a failed capture time extraction. The scanner
// treats every MetadataError as "no timestamp".
type MetadataError struct {
	Path string
	Kind MetadataErrorKind
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("reading capture time of %s (%s): %v", e.Path, e.Kind, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// CopyErrorKind classifies a failed copy.
type CopyErrorKind string

const (
	CopyFolderMissing CopyErrorKind = "folder-missing"
	CopyExists        CopyErrorKind = "exists"
	CopyPermission    CopyErrorKind = "permission"
	CopyNoSpace       CopyErrorKind = "no-space"
	CopyNameTooLong   CopyErrorKind = "name-too-long"
	CopyIO            CopyErrorKind = "io"
)

// CopyError describes a file that could not be placed in the destination.
// The file is absent from the destination tree afterwards.
type CopyError struct {
	Source string
	Dest   string
	Kind   CopyErrorKind
	Err    error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copying %s to %s (%s): %v", e.Source, e.Dest, e.Kind, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

// CopyErrorKindOf returns the kind of a CopyError anywhere in err's chain,
// or "" when err is not a CopyError.
func CopyErrorKindOf(err error) CopyErrorKind {
	var ce *CopyError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// MetadataErrorKindOf returns the kind of a MetadataError anywhere in err's
// chain, or "" when err is not a MetadataError.
func MetadataErrorKindOf(err error) MetadataErrorKind {
	var me *MetadataError
	if errors.As(err, &me) {
		return me.Kind
	}
	return ""
}
