package sorter

import (
	"sort"
	"time"
)

// FileRecord describes one regular file found by a scan.
type FileRecord struct {
	Index      int // 1-based ordinal within the scan, for progress output only
	Source     *Path
	Name       string
	Ext        string // lowercased, without the dot
	MediaType  MediaType
	CapturedAt time.Time // zero when no capture time could be extracted
}

// Dated reports whether the record carries a capture time.
func (r FileRecord) Dated() bool {
	return !r.CapturedAt.IsZero()
}

// Inventory is the result of one scan. It is built once and not mutated
// afterwards; source and verification scans produce separate inventories.
type Inventory struct {
	Root    string
	Records []FileRecord
	counts  map[string]int
}

func newInventory(root string, records []FileRecord) *Inventory {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Ext]++
	}
	return &Inventory{Root: root, Records: records, counts: counts}
}

// Len returns the number of files in the inventory.
func (inv *Inventory) Len() int {
	return len(inv.Records)
}

// Counts returns a copy of the extension -> file count mapping.
func (inv *Inventory) Counts() map[string]int {
	out := make(map[string]int, len(inv.counts))
	for k, v := range inv.counts {
		out[k] = v
	}
	return out
}

// Extensions returns the extensions present, sorted.
func (inv *Inventory) Extensions() []string {
	exts := make([]string, 0, len(inv.counts))
	for ext := range inv.counts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Buckets returns the distinct "YYYY-MM" labels of dated records, sorted.
// The "Unsorted" sentinel is never included.
func (inv *Inventory) Buckets() []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, r := range inv.Records {
		if !r.Dated() {
			continue
		}
		label := BucketLabel(r.CapturedAt)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
