package testutil

import (
	"bytes"
	"encoding/binary"
	"time"
)

// EXIF tags used by the fixtures.
const (
	tagDateTime         = 0x0132
	tagExifIFDPointer   = 0x8769
	tagDateTimeOriginal = 0x9003
)

// JPEGWithDateTimeOriginal returns a minimal JPEG whose EXIF block carries
// only DateTimeOriginal set to value ("YYYY:MM:DD HH:MM:SS").
func JPEGWithDateTimeOriginal(value string) []byte {
	return jpegWithAPP1(exifTIFF(true, value))
}

// JPEGWithDateTime returns a minimal JPEG whose EXIF block carries only the
// general DateTime tag, without DateTimeOriginal.
func JPEGWithDateTime(value string) []byte {
	return jpegWithAPP1(exifTIFF(false, value))
}

// PlainJPEG returns a JPEG without any EXIF block.
func PlainJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xD9}
}

func jpegWithAPP1(tiff []byte) []byte {
	var b bytes.Buffer
	b.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	binary.Write(&b, binary.BigEndian, uint16(2+6+len(tiff)))
	b.WriteString("Exif\x00\x00")
	b.Write(tiff)
	b.Write([]byte{0xFF, 0xD9})
	return b.Bytes()
}

// exifTIFF builds a big-endian TIFF structure holding a single ASCII date
// tag. With original set, the tag is DateTimeOriginal inside an Exif
// sub-IFD; otherwise it is DateTime in IFD0.
func exifTIFF(original bool, value string) []byte {
	ascii := append([]byte(value), 0)

	var b bytes.Buffer
	b.WriteString("MM")
	binary.Write(&b, binary.BigEndian, uint16(42))
	binary.Write(&b, binary.BigEndian, uint32(8))

	const ifdSize = 2 + 12 + 4
	if original {
		exifIFD := uint32(8 + ifdSize)
		writeIFD(&b, tagExifIFDPointer, 4, 1, exifIFD)
		writeIFD(&b, tagDateTimeOriginal, 2, uint32(len(ascii)), exifIFD+ifdSize)
	} else {
		writeIFD(&b, tagDateTime, 2, uint32(len(ascii)), 8+ifdSize)
	}
	b.Write(ascii)
	return b.Bytes()
}

// writeIFD writes a one-entry IFD with no next IFD.
func writeIFD(b *bytes.Buffer, tag, typ uint16, count, value uint32) {
	binary.Write(b, binary.BigEndian, uint16(1))
	binary.Write(b, binary.BigEndian, tag)
	binary.Write(b, binary.BigEndian, typ)
	binary.Write(b, binary.BigEndian, count)
	binary.Write(b, binary.BigEndian, value)
	binary.Write(b, binary.BigEndian, uint32(0))
}

// QuickTimeMovie returns a minimal QuickTime file. created is written to
// the movie header (zero leaves it unset); a non-empty creationDate is
// stored under com.apple.quicktime.creationdate in moov/meta.
func QuickTimeMovie(created time.Time, creationDate string) []byte {
	var moov bytes.Buffer
	moov.Write(mvhdAtom(created))
	if creationDate != "" {
		moov.Write(appleMetaAtom("com.apple.quicktime.creationdate", creationDate))
	}

	var b bytes.Buffer
	b.Write(atomBytes("ftyp", []byte("qt  \x00\x00\x00\x00qt  ")))
	b.Write(atomBytes("moov", moov.Bytes()))
	return b.Bytes()
}

func atomBytes(typ string, body []byte) []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.BigEndian, uint32(8+len(body)))
	b.WriteString(typ)
	b.Write(body)
	return b.Bytes()
}

func mvhdAtom(created time.Time) []byte {
	var secs uint32
	if !created.IsZero() {
		secs = uint32(created.Unix() + 2082844800)
	}

	var b bytes.Buffer
	b.Write([]byte{0, 0, 0, 0})                         // version 0, flags
	binary.Write(&b, binary.BigEndian, secs)            // creation time
	binary.Write(&b, binary.BigEndian, secs)            // modification time
	binary.Write(&b, binary.BigEndian, uint32(600))     // timescale
	binary.Write(&b, binary.BigEndian, uint32(6000))    // duration
	binary.Write(&b, binary.BigEndian, uint32(0x10000)) // rate 1.0
	binary.Write(&b, binary.BigEndian, uint16(0x100))   // volume 1.0
	b.Write(make([]byte, 10))                           // reserved
	for _, v := range []uint32{0x10000, 0, 0, 0, 0x10000, 0, 0, 0, 0x40000000} {
		binary.Write(&b, binary.BigEndian, v)
	}
	b.Write(make([]byte, 24))                     // pre-defined
	binary.Write(&b, binary.BigEndian, uint32(2)) // next track ID
	return atomBytes("mvhd", b.Bytes())
}

// appleMetaAtom builds a QuickTime-style meta atom (no version/flags)
// holding one mdta key with a UTF-8 value.
func appleMetaAtom(key, value string) []byte {
	var hdlr bytes.Buffer
	hdlr.Write(make([]byte, 8))
	hdlr.WriteString("mdta")
	hdlr.Write(make([]byte, 13))

	var keys bytes.Buffer
	keys.Write([]byte{0, 0, 0, 0})
	binary.Write(&keys, binary.BigEndian, uint32(1))
	binary.Write(&keys, binary.BigEndian, uint32(8+len(key)))
	keys.WriteString("mdta")
	keys.WriteString(key)

	var data bytes.Buffer
	binary.Write(&data, binary.BigEndian, uint32(1)) // UTF-8
	binary.Write(&data, binary.BigEndian, uint32(0)) // locale
	data.WriteString(value)

	var item bytes.Buffer
	binary.Write(&item, binary.BigEndian, uint32(8+8+data.Len()))
	binary.Write(&item, binary.BigEndian, uint32(1)) // key index
	item.Write(atomBytes("data", data.Bytes()))

	var meta bytes.Buffer
	meta.Write(atomBytes("hdlr", hdlr.Bytes()))
	meta.Write(atomBytes("keys", keys.Bytes()))
	meta.Write(atomBytes("ilst", item.Bytes()))
	return atomBytes("meta", meta.Bytes())
}
