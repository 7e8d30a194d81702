package sorter

import (
	"fmt"
	"path/filepath"
	"time"
)

const (
	bucketLayout = "2006-01"
	nameLayout   = "20060102-150405"
)

// Layout names the destination folders.
type Layout struct {
	Unsorted string // bucket for files without a capture time
	ImageDir string
	VideoDir string
	OtherDir string
}

// DefaultLayout returns the layout used when nothing is configured.
func DefaultLayout() Layout {
	return Layout{
		Unsorted: "Unsorted",
		ImageDir: "kuvat",
		VideoDir: "videot",
		OtherDir: "muut",
	}
}

// Subfolders returns the three category folders of every bucket.
func (l Layout) Subfolders() []string {
	return []string{l.ImageDir, l.VideoDir, l.OtherDir}
}

// Subfolder returns the folder name for a routing category.
func (l Layout) Subfolder(c Category) string {
	switch c {
	case CategoryImage:
		return l.ImageDir
	case CategoryVideo:
		return l.VideoDir
	default:
		return l.OtherDir
	}
}

// BucketLabel formats a capture time as its "YYYY-MM" bucket label.
func BucketLabel(t time.Time) string {
	return t.Format(bucketLayout)
}

// Planner computes destination paths.
type Planner struct {
	fsmgr  FilesystemManager
	layout Layout
}

func NewPlanner(fsmgr FilesystemManager, layout Layout) *Planner {
	return &Planner{fsmgr: fsmgr, layout: layout}
}

// Bucket returns the date bucket label of rec, or the layout's unsorted
// label when rec has no capture time.
func (p *Planner) Bucket(rec FileRecord) string {
	if !rec.Dated() {
		return p.layout.Unsorted
	}
	return BucketLabel(rec.CapturedAt)
}

// Folder returns the directory rec is copied into.
func (p *Planner) Folder(rec FileRecord, destRoot string) string {
	return filepath.Join(destRoot, p.Bucket(rec), p.layout.Subfolder(CategoryFor(rec.Ext)))
}

// TargetName returns the file name rec is copied to before collision
// resolution: "YYYYMMDD-HHMMSS.<ext>" for dated files, the original name
// otherwise.
func TargetName(rec FileRecord) string {
	if !rec.Dated() {
		return rec.Name
	}
	name := rec.CapturedAt.Format(nameLayout)
	if rec.Ext != "" {
		name += "." + rec.Ext
	}
	return name
}

// Plan returns a destination path for rec under destRoot that does not exist
// yet. Taken names get "_1", "_2", ... appended before the extension.
func (p *Planner) Plan(rec FileRecord, destRoot string) (string, error) {
	target := filepath.Join(p.Folder(rec, destRoot), TargetName(rec))
	return p.resolveCollision(target)
}

func (p *Planner) resolveCollision(target string) (string, error) {
	exists, err := p.fsmgr.Exists(target)
	if err != nil {
		return "", fmt.Errorf("checking %s: %w", target, err)
	}
	if !exists {
		return target, nil
	}

	dir := filepath.Dir(target)
	base, ext := SplitExt(filepath.Base(target))
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
		exists, err := p.fsmgr.Exists(candidate)
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
}
