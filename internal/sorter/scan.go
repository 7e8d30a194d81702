package sorter

import (
	"fmt"
	"time"
)

// Scanner walks a tree and builds an Inventory.
type Scanner struct {
	fsmgr     FilesystemManager
	extractor *Extractor
	logger    Logger
}

// NewScanner creates a Scanner. A nil extractor disables metadata
// extraction, which is what the verification scan of a run uses.
func NewScanner(fsmgr FilesystemManager, extractor *Extractor, logger Logger) *Scanner {
	return &Scanner{fsmgr: fsmgr, extractor: extractor, logger: logger}
}

// Scan visits every regular file under root. Directories listed in skipDirs
// (absolute paths) are not entered. Metadata failures never fail the scan;
// the affected record simply has no capture time.
func (s *Scanner) Scan(root *Path, skipDirs ...string) (*Inventory, error) {
	if !root.IsDir() {
		return nil, fmt.Errorf("scan root is not a directory: %s", root.String())
	}

	var records []FileRecord
	err := s.fsmgr.Walk(root, skipDirs, func(file *Path) error {
		ext := ExtOf(file.Name())
		rec := FileRecord{
			Index:     len(records) + 1,
			Source:    file,
			Name:      file.Name(),
			Ext:       ext,
			MediaType: MediaTypeFor(ext),
		}
		if s.extractor != nil && rec.MediaType != MediaOther {
			if t, ok := s.extractor.CaptureTime(file.String(), rec.MediaType); ok {
				rec.CapturedAt = t
			}
		}
		s.logger.Debug("file scanned", "path", file.String(), "captured_at", formatCaptured(rec.CapturedAt))
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root.String(), err)
	}

	return newInventory(root.String(), records), nil
}

func formatCaptured(t time.Time) string {
	if t.IsZero() {
		return "none"
	}
	return t.Format("2006-01-02 15:04:05")
}
