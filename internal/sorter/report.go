package sorter

import (
	"sort"
	"time"
)

// FolderResult is the outcome of creating one bucket folder and its
// category subfolders.
type FolderResult struct {
	Label string
	Path  string
	Err   error
}

// CopyResult is the outcome of placing one file.
type CopyResult struct {
	Record   FileRecord
	Bucket   string
	Category Category
	Dest     string // empty when no destination could be planned
	Err      error
}

// OK reports whether the file was copied.
func (r CopyResult) OK() bool {
	return r.Err == nil
}

// CountDiff is an extension whose source and destination counts differ.
type CountDiff struct {
	Ext         string
	Source      int
	Destination int
}

// Report is the result of a run.
type Report struct {
	RunID       string
	SourceRoot  string
	DestRoot    string
	StartedAt   time.Time
	FinishedAt  time.Time
	Folders     []FolderResult
	Copies      []CopyResult
	Source      *Inventory
	Destination *Inventory
}

// SourceCounts returns the extension counts of the source scan.
func (r *Report) SourceCounts() map[string]int {
	if r.Source == nil {
		return map[string]int{}
	}
	return r.Source.Counts()
}

// DestinationCounts returns the extension counts of the verification scan.
func (r *Report) DestinationCounts() map[string]int {
	if r.Destination == nil {
		return map[string]int{}
	}
	return r.Destination.Counts()
}

// Copied returns the number of files copied.
func (r *Report) Copied() int {
	n := 0
	for _, c := range r.Copies {
		if c.OK() {
			n++
		}
	}
	return n
}

// Failed returns the results of files that were not copied.
func (r *Report) Failed() []CopyResult {
	var out []CopyResult
	for _, c := range r.Copies {
		if !c.OK() {
			out = append(out, c)
		}
	}
	return out
}

// FailedFolders returns the folders that could not be created.
func (r *Report) FailedFolders() []FolderResult {
	var out []FolderResult
	for _, f := range r.Folders {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Discrepancies compares source and destination counts per extension.
// The destination may legitimately hold more files than the source when it
// was not empty before the run.
func (r *Report) Discrepancies() []CountDiff {
	src := r.SourceCounts()
	dst := r.DestinationCounts()

	exts := make(map[string]struct{}, len(src)+len(dst))
	for ext := range src {
		exts[ext] = struct{}{}
	}
	for ext := range dst {
		exts[ext] = struct{}{}
	}

	var diffs []CountDiff
	for ext := range exts {
		if src[ext] != dst[ext] {
			diffs = append(diffs, CountDiff{Ext: ext, Source: src[ext], Destination: dst[ext]})
		}
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Ext < diffs[j].Ext })
	return diffs
}
