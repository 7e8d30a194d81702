package metadata

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/abema/go-mp4"
	"github.com/spf13/afero"

	"mediasort/internal/sorter"
)

// appleEpochOffset is the number of seconds between 1904-01-01 (the
// QuickTime epoch) and 1970-01-01.
const appleEpochOffset = 2082844800

// maxMetaSize bounds how much of a moov/meta box is read into memory.
const maxMetaSize = 1 << 20

// appleCreationDateKey is the metadata key iPhones and most cameras write
// for the local capture time, including its UTC offset.
const appleCreationDateKey = "com.apple.quicktime.creationdate"

// QuickTimeReader reads capture times from QuickTime and ISO base media
// containers without any external tool.
//
// It reports the movie header creation time under sorter.VideoCreateDateKey
// (as a UTC time.Time) and the Apple creation date key under
// sorter.VideoCreationDateKey (as "YYYY:MM:DD HH:MM:SS±HH:MM" text).
type QuickTimeReader struct {
	fs afero.Fs
}

// NewQuickTimeReader creates a QuickTimeReader reading files from fsys.
func NewQuickTimeReader(fsys afero.Fs) *QuickTimeReader {
	return &QuickTimeReader{fs: fsys}
}

// ReadMetadata implements sorter.VideoMetadataReader.
func (r *QuickTimeReader) ReadMetadata(path string) (map[string]any, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening video: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking video: %w", err)
	}
	headers, err := mp4.ExtractBoxesWithPayload(f, nil, []mp4.BoxPath{
		{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()},
	})
	if err != nil {
		return nil, fmt.Errorf("reading movie header: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking video: %w", err)
	}
	metas, err := mp4.ExtractBox(f, nil, mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeMeta()})
	if err != nil {
		return nil, fmt.Errorf("reading movie metadata: %w", err)
	}

	if len(headers) == 0 && len(metas) == 0 {
		return nil, fmt.Errorf("no movie header in %s: %w", path, sorter.ErrNoMetadata)
	}

	fields := make(map[string]any)
	for _, box := range headers {
		mvhd, ok := box.Payload.(*mp4.Mvhd)
		if !ok {
			continue
		}
		if created := mvhd.GetCreationTime(); created != 0 {
			fields[sorter.VideoCreateDateKey] = time.Unix(int64(created)-appleEpochOffset, 0).UTC()
		}
		break
	}

	for _, info := range metas {
		payload, err := readPayload(f, info)
		if err != nil {
			return nil, fmt.Errorf("reading meta box: %w", err)
		}
		for key, value := range parseMetaItems(payload) {
			if key == appleCreationDateKey {
				fields[sorter.VideoCreationDateKey] = exifStyleDate(value)
			}
		}
	}

	return fields, nil
}

func readPayload(rs io.ReadSeeker, info *mp4.BoxInfo) ([]byte, error) {
	if info.Size < info.HeaderSize {
		return nil, fmt.Errorf("box size %d smaller than header", info.Size)
	}
	n := info.Size - info.HeaderSize
	if n > maxMetaSize {
		return nil, fmt.Errorf("box too large: %d bytes", n)
	}
	if _, err := info.SeekToPayload(rs); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rs, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// parseMetaItems decodes the keys/ilst pair of a meta box into key/value
// pairs. Only UTF-8 values are returned.
func parseMetaItems(payload []byte) map[string]string {
	// QuickTime meta boxes start with their children; ISO ones carry a
	// version/flags word first.
	if len(payload) >= 8 && !isMetaChild(string(payload[4:8])) {
		payload = payload[4:]
	}

	var keys []string
	var items map[uint32]string
	for _, atom := range childAtoms(payload) {
		switch atom.typ {
		case "keys":
			keys = parseKeys(atom.body)
		case "ilst":
			items = parseItemList(atom.body)
		}
	}

	out := make(map[string]string, len(items))
	for idx, value := range items {
		if idx == 0 || int(idx) > len(keys) {
			continue
		}
		out[keys[idx-1]] = value
	}
	return out
}

func isMetaChild(typ string) bool {
	switch typ {
	case "hdlr", "keys", "ilst":
		return true
	}
	return false
}

type atom struct {
	typ  string
	body []byte
}

// childAtoms splits b into consecutive size/type atoms, stopping at the
// first malformed one.
func childAtoms(b []byte) []atom {
	var atoms []atom
	for len(b) >= 8 {
		size := binary.BigEndian.Uint32(b[0:4])
		if size < 8 || int(size) > len(b) {
			break
		}
		atoms = append(atoms, atom{typ: string(b[4:8]), body: b[8:size]})
		b = b[size:]
	}
	return atoms
}

// parseKeys decodes a keys atom body: version/flags, entry count, then
// entries of size, namespace and name.
func parseKeys(b []byte) []string {
	if len(b) < 8 {
		return nil
	}
	count := binary.BigEndian.Uint32(b[4:8])
	b = b[8:]
	var keys []string
	for i := uint32(0); i < count && len(b) >= 8; i++ {
		size := binary.BigEndian.Uint32(b[0:4])
		if size < 8 || int(size) > len(b) {
			break
		}
		keys = append(keys, string(b[8:size]))
		b = b[size:]
	}
	return keys
}

// parseItemList decodes an ilst atom body. Each child's type is the 1-based
// index into the keys atom and holds a data atom.
func parseItemList(b []byte) map[uint32]string {
	items := make(map[uint32]string)
	for len(b) >= 8 {
		size := binary.BigEndian.Uint32(b[0:4])
		if size < 8 || int(size) > len(b) {
			break
		}
		idx := binary.BigEndian.Uint32(b[4:8])
		for _, child := range childAtoms(b[8:size]) {
			if child.typ != "data" || len(child.body) < 8 {
				continue
			}
			// Type indicator 1 is UTF-8 text.
			if binary.BigEndian.Uint32(child.body[0:4])&0xffffff == 1 {
				items[idx] = string(child.body[8:])
			}
			break
		}
		b = b[size:]
	}
	return items
}

var isoDateLayouts = []string{
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z07:00",
}

// exifStyleDate rewrites an ISO 8601 date into the "YYYY:MM:DD HH:MM:SS±HH:MM"
// form exiftool reports. Unrecognized values are returned unchanged.
func exifStyleDate(value string) string {
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006:01:02 15:04:05-07:00")
		}
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t.Format("2006:01:02 15:04:05")
	}
	return value
}

// Compile-time check that QuickTimeReader implements sorter.VideoMetadataReader
var _ sorter.VideoMetadataReader = (*QuickTimeReader)(nil)
