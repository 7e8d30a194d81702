package sorter

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// RunConfig holds the inputs of a run.
type RunConfig struct {
	SourceRoot string
	DestRoot   string
}

// SortService is the orchestration layer: it drives scan, folder creation,
// copy and verification for a run.
type SortService struct {
	fsmgr     FilesystemManager
	catalog   Catalog
	layout    Layout
	extractor *Extractor
	planner   *Planner
	logger    Logger
	clock     Clock
	idgen     IDGenerator
}

// NewSortService creates a new SortService with the provided dependencies.
func NewSortService(fsmgr FilesystemManager, images ImageMetadataReader, videos VideoMetadataReader, catalog Catalog, layout Layout, logger Logger, clock Clock, idgen IDGenerator) *SortService {
	return &SortService{
		fsmgr:     fsmgr,
		catalog:   catalog,
		layout:    layout,
		extractor: NewExtractor(fsmgr, images, videos, logger),
		planner:   NewPlanner(fsmgr, layout),
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
	}
}

// Scan builds an inventory of the tree at rawPath, extracting capture times.
func (s *SortService) Scan(rawPath string) (*Inventory, error) {
	root, err := s.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving scan root: %w", err)
	}
	return NewScanner(s.fsmgr, s.extractor, s.logger).Scan(root)
}

// Run sorts every file under cfg.SourceRoot into cfg.DestRoot.
//
// It returns an error only when the run cannot start (missing source root,
// catalog failure) or the source cannot be scanned. Per-folder and per-file
// failures are reported in the Report and the run continues past them.
func (s *SortService) Run(cfg RunConfig, progress Progress) (*Report, error) {
	if progress == nil {
		progress = NopProgress{}
	}

	source, err := s.fsmgr.Resolve(cfg.SourceRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving source root: %w", err)
	}
	if !source.IsDir() {
		return nil, fmt.Errorf("source root is not a directory: %s", source.String())
	}

	destRoot, err := filepath.Abs(cfg.DestRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving destination root: %w", err)
	}
	realSource := s.realPath(source.String())
	realDest := s.realPath(destRoot)
	if realDest == realSource {
		return nil, fmt.Errorf("destination root must differ from source root: %s", destRoot)
	}

	report := &Report{
		RunID:      s.idgen.New(),
		SourceRoot: source.String(),
		DestRoot:   destRoot,
		StartedAt:  s.clock.Now(),
	}

	run := &RunSummary{
		ID:         report.RunID,
		SourceRoot: report.SourceRoot,
		DestRoot:   report.DestRoot,
		StartedAt:  report.StartedAt,
		Status:     RunStatusRunning,
	}
	if err := s.catalog.StartRun(run); err != nil {
		return nil, fmt.Errorf("recording run start: %w", err)
	}
	s.logger.Info("run started", "run_id", run.ID, "source", run.SourceRoot, "dest", run.DestRoot)

	// A destination nested in the source must not be ingested as input.
	var skipSource []string
	if skip, ok := nestedPath(realDest, realSource, source.String()); ok {
		skipSource = append(skipSource, skip)
	}
	inv, err := NewScanner(s.fsmgr, s.extractor, s.logger).Scan(source, skipSource...)
	if err != nil {
		report.FinishedAt = s.clock.Now()
		s.finishRun(run, report, RunStatusFailed)
		return nil, fmt.Errorf("scanning source: %w", err)
	}
	report.Source = inv
	s.logger.Info("source scanned", "files", inv.Len(), "buckets", len(inv.Buckets()))

	labels := append(inv.Buckets(), s.layout.Unsorted)
	report.Folders = s.createFolders(destRoot, labels, progress)

	missing := make(map[string]bool)
	for _, f := range report.Folders {
		if f.Err != nil {
			missing[f.Label] = true
		}
	}

	for _, rec := range inv.Records {
		res := s.copyOne(rec, destRoot, missing)
		report.Copies = append(report.Copies, res)
		s.recordCopy(report.RunID, res)
		progress.FileDone(rec.Index, inv.Len(), res)
	}

	report.Destination = s.verify(destRoot, realDest, realSource)
	report.FinishedAt = s.clock.Now()

	status := RunStatusSuccess
	if len(report.Failed()) > 0 || len(report.FailedFolders()) > 0 {
		status = RunStatusPartial
	}
	s.finishRun(run, report, status)

	s.logger.Info("run finished",
		"run_id", run.ID,
		"copied", report.Copied(),
		"failed", len(report.Failed()),
		"source_files", report.Source.Len(),
		"dest_files", report.Destination.Len(),
	)
	return report, nil
}

// createFolders creates <destRoot>/<label>/<subfolder> for every label.
// A failure marks the whole label as failed; other labels continue.
func (s *SortService) createFolders(destRoot string, labels []string, progress Progress) []FolderResult {
	results := make([]FolderResult, 0, len(labels))
	for _, label := range labels {
		labelPath := filepath.Join(destRoot, label)
		res := FolderResult{Label: label, Path: labelPath}

		for _, sub := range s.layout.Subfolders() {
			p := filepath.Join(labelPath, sub)
			if err := s.fsmgr.MkdirAll(p); err != nil {
				res.Err = fmt.Errorf("creating %s: %w", p, err)
				break
			}
		}

		if res.Err != nil {
			s.logger.Error("folder creation failed", "path", labelPath, "error", res.Err)
		} else {
			s.logger.Debug("folder created", "path", labelPath)
			progress.FolderCreated(labelPath)
		}
		results = append(results, res)
	}
	return results
}

// copyOne plans and copies a single file. Failures are returned in the
// result, never as a Go error, so the run moves on to the next file.
func (s *SortService) copyOne(rec FileRecord, destRoot string, missing map[string]bool) CopyResult {
	res := CopyResult{
		Record:   rec,
		Bucket:   s.planner.Bucket(rec),
		Category: CategoryFor(rec.Ext),
	}

	if missing[res.Bucket] {
		res.Err = &CopyError{
			Source: rec.Source.String(),
			Dest:   s.planner.Folder(rec, destRoot),
			Kind:   CopyFolderMissing,
			Err:    fmt.Errorf("folder for bucket %s was not created", res.Bucket),
		}
		s.logger.Error("copy skipped", "path", rec.Source.String(), "error", res.Err)
		return res
	}

	dest, err := s.planner.Plan(rec, destRoot)
	if err != nil {
		res.Err = &CopyError{Source: rec.Source.String(), Dest: s.planner.Folder(rec, destRoot), Kind: CopyIO, Err: err}
		s.logger.Error("planning destination failed", "path", rec.Source.String(), "error", err)
		return res
	}
	res.Dest = dest

	if err := s.fsmgr.CopyFile(rec.Source, dest); err != nil {
		var ce *CopyError
		if !errors.As(err, &ce) {
			err = &CopyError{Source: rec.Source.String(), Dest: dest, Kind: CopyIO, Err: err}
		}
		res.Err = err
		s.logger.Error("copy failed", "path", rec.Source.String(), "dest", dest, "error", err)
		return res
	}

	s.logger.Debug("file copied", "path", rec.Source.String(), "dest", dest)
	return res
}

// verify scans the destination tree without reading metadata.
func (s *SortService) verify(destRoot, realDest, realSource string) *Inventory {
	dest, err := s.fsmgr.Resolve(destRoot)
	if err != nil {
		s.logger.Error("verification scan failed", "path", destRoot, "error", err)
		return newInventory(destRoot, nil)
	}

	// A source nested in the destination is not part of the output.
	var skip []string
	if p, ok := nestedPath(realSource, realDest, destRoot); ok {
		skip = append(skip, p)
	}
	inv, err := NewScanner(s.fsmgr, nil, s.logger).Scan(dest, skip...)
	if err != nil {
		s.logger.Error("verification scan failed", "path", destRoot, "error", err)
		return newInventory(destRoot, nil)
	}
	return inv
}

func (s *SortService) recordCopy(runID string, res CopyResult) {
	entry := &CopyEntry{
		RunID:      runID,
		SourcePath: res.Record.Source.String(),
		DestPath:   res.Dest,
		Bucket:     res.Bucket,
		Category:   res.Category.String(),
		Status:     CopyStatusCopied,
	}
	if res.Record.Dated() {
		entry.CapturedAt = sql.NullTime{Time: res.Record.CapturedAt, Valid: true}
	}
	if res.Err != nil {
		entry.Status = CopyStatusFailed
		if CopyErrorKindOf(res.Err) == CopyFolderMissing {
			entry.Status = CopyStatusSkipped
		}
		entry.Error = res.Err.Error()
	}
	if err := s.catalog.RecordCopy(entry); err != nil {
		s.logger.Warn("recording copy failed", "path", entry.SourcePath, "error", err)
	}
}

func (s *SortService) finishRun(run *RunSummary, report *Report, status string) {
	run.Status = status
	run.FinishedAt = sql.NullTime{Time: report.FinishedAt, Valid: true}
	if report.Source != nil {
		run.SourceFiles = report.Source.Len()
	}
	if report.Destination != nil {
		run.DestFiles = report.Destination.Len()
	}
	run.Copied = report.Copied()
	run.Failed = len(report.Failed())
	if err := s.catalog.FinishRun(run); err != nil {
		s.logger.Warn("recording run finish failed", "run_id", run.ID, "error", err)
	}
}

// realPath resolves symlinks in path, falling back to the path itself.
func (s *SortService) realPath(path string) string {
	resolved, err := s.fsmgr.RealPath(path)
	if err != nil {
		s.logger.Debug("resolving symlinks failed", "path", path, "error", err)
		return filepath.Clean(path)
	}
	return resolved
}

// nestedPath reports whether realPath lies inside realBase and, if so,
// returns it re-rooted under base, the spelling the walk of base sees.
func nestedPath(realPath, realBase, base string) (string, bool) {
	if !isUnder(realPath, realBase) {
		return "", false
	}
	rel, err := filepath.Rel(realBase, realPath)
	if err != nil {
		return "", false
	}
	return filepath.Join(base, rel), true
}

// isUnder reports whether path lies strictly inside base.
func isUnder(path, base string) bool {
	path = filepath.Clean(path)
	base = filepath.Clean(base)
	if path == base {
		return false
	}
	prefix := base
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
