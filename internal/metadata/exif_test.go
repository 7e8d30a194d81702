package metadata_test

import (
	"bytes"
	"errors"
	"testing"

	"mediasort/internal/metadata"
	"mediasort/internal/sorter"
	"mediasort/internal/testutil"
)

func TestEXIFReader_DateTimeOriginal(t *testing.T) {
	tests := []struct {
		name      string
		content   []byte
		want      string
		wantNoTag bool
	}{
		{
			name:    "tag present",
			content: testutil.JPEGWithDateTimeOriginal("2023:07:15 10:30:00"),
			want:    "2023:07:15 10:30:00",
		},
		{
			name:      "only DateTime",
			content:   testutil.JPEGWithDateTime("2023:07:15 10:30:00"),
			wantNoTag: true,
		},
		{
			name:      "no EXIF block",
			content:   testutil.PlainJPEG(),
			wantNoTag: true,
		},
	}

	r := metadata.NewEXIFReader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.DateTimeOriginal(bytes.NewReader(tt.content))
			if tt.wantNoTag {
				if !errors.Is(err, sorter.ErrNoMetadata) {
					t.Errorf("DateTimeOriginal() error = %v, want ErrNoMetadata", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DateTimeOriginal() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DateTimeOriginal() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEXIFReader_TruncatedInput(t *testing.T) {
	r := metadata.NewEXIFReader()
	if _, err := r.DateTimeOriginal(bytes.NewReader([]byte{0xFF})); err == nil {
		t.Error("DateTimeOriginal() expected error for truncated input")
	}
}
