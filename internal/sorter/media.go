package sorter

import (
	"path/filepath"
	"strings"
)

// MediaType decides which metadata path the Extractor takes for a file.
// Only jpg/jpeg and mov are eligible for extraction.
type MediaType int

const (
	MediaOther MediaType = iota
	MediaImage
	MediaVideo
)

func (t MediaType) String() string {
	switch t {
	case MediaImage:
		return "image"
	case MediaVideo:
		return "video"
	default:
		return "other"
	}
}

// Category decides which destination subfolder a file is routed to.
// It is broader than MediaType: png and mp4 are routed as image/video
// even though no metadata is read from them.
type Category int

const (
	CategoryOther Category = iota
	CategoryImage
	CategoryVideo
)

func (c Category) String() string {
	switch c {
	case CategoryImage:
		return "image"
	case CategoryVideo:
		return "video"
	default:
		return "other"
	}
}

// SplitExt splits a file name into its base and its extension, dot
// included. Leading dots do not start an extension: ".DS_Store" has none
// and ".hidden.txt" has ".txt".
func SplitExt(name string) (base, ext string) {
	ext = filepath.Ext(strings.TrimLeft(name, "."))
	return name[:len(name)-len(ext)], ext
}

// ExtOf returns the lowercased extension of name without the leading dot.
// Files without an extension yield "".
func ExtOf(name string) string {
	_, ext := SplitExt(name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MediaTypeFor classifies a lowercased extension for metadata extraction.
func MediaTypeFor(ext string) MediaType {
	switch ext {
	case "jpg", "jpeg":
		return MediaImage
	case "mov":
		return MediaVideo
	default:
		return MediaOther
	}
}

// CategoryFor classifies a lowercased extension for destination routing.
func CategoryFor(ext string) Category {
	switch ext {
	case "jpg", "jpeg", "png":
		return CategoryImage
	case "mov", "mp4":
		return CategoryVideo
	default:
		return CategoryOther
	}
}
