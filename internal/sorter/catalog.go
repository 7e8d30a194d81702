package sorter

import (
	"database/sql"
	"time"
)

// Run statuses stored in the catalog.
const (
	RunStatusRunning  = "running"
	RunStatusSuccess  = "success"
	RunStatusPartial  = "partial" // finished, but some files failed to copy
	RunStatusFailed   = "failed"
	CopyStatusCopied  = "copied"
	CopyStatusFailed  = "failed"
	CopyStatusSkipped = "skipped"
)

// RunSummary is one row of run history.
type RunSummary struct {
	ID          string
	SourceRoot  string
	DestRoot    string
	StartedAt   time.Time
	FinishedAt  sql.NullTime
	Status      string
	SourceFiles int
	DestFiles   int
	Copied      int
	Failed      int
}

// CopyEntry is the recorded outcome of one file of a run.
type CopyEntry struct {
	RunID      string
	SourcePath string
	DestPath   string
	Bucket     string
	Category   string
	CapturedAt sql.NullTime
	Status     string
	Error      string
}

// Catalog keeps the history of runs and their per-file outcomes.
// It is an audit trail only: nothing in a run consults it to skip work.
type Catalog interface {
	// StartRun records a new run in the running state.
	StartRun(run *RunSummary) error

	// RecordCopy records the outcome of one file.
	RecordCopy(entry *CopyEntry) error

	// FinishRun stores the final status and counters of a run.
	FinishRun(run *RunSummary) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*RunSummary, error)

	// FindRun returns a run by ID, or nil if it does not exist.
	FindRun(id string) (*RunSummary, error)

	// ListCopies returns the recorded outcomes of a run in copy order.
	// When failedOnly is true only failed entries are returned.
	ListCopies(runID string, failedOnly bool) ([]*CopyEntry, error)

	// Close closes the catalog.
	Close() error
}
