package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"mediasort/internal/catalog"
	"mediasort/internal/config"
	"mediasort/internal/fs"
	"mediasort/internal/metadata"
	"mediasort/internal/sorter"
)

// SorterApp is the application layer between the CLI and SortService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and releases the catalog, video reader and
// log file on Close.
type SorterApp struct {
	cfg         *config.Config
	catalog     sorter.Catalog
	videoCloser io.Closer
	fsmgr       *fs.AferoFilesystemManager
	service     *sorter.SortService
	logFile     *os.File
}

// NewSorterApp creates a fully wired SorterApp from the given config.
// operation names the CLI command being run and prefixes the log operation
// ID. verbose lowers the log level to debug. The caller must call Close when
// done.
func NewSorterApp(cfg *config.Config, operation string, verbose bool) (*SorterApp, error) {
	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Ignore)

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opID := fmt.Sprintf("%s-%s", operation, time.Now().UTC().Format("20060102T150405Z"))
	logger, logFile, err := newLogger(cfg.LogDir, opID, level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	cat, err := catalog.NewCatalogFromConfig(cfg.Catalog)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating catalog: %w", err)
	}

	videos, videoCloser, err := metadata.NewVideoReaderFromConfig(cfg.Metadata, fsmgr.Fs())
	if err != nil {
		cat.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating video metadata reader: %w", err)
	}

	svc := sorter.NewSortService(
		fsmgr,
		metadata.NewEXIFReader(),
		videos,
		cat,
		LayoutFromConfig(cfg.Layout),
		&slogAdapter{l: logger},
		sorter.RealClock{},
		sorter.UUIDGenerator{},
	)

	return &SorterApp{
		cfg:         cfg,
		catalog:     cat,
		videoCloser: videoCloser,
		fsmgr:       fsmgr,
		service:     svc,
		logFile:     logFile,
	}, nil
}

// LayoutFromConfig converts the configured folder names into a sorter.Layout.
func LayoutFromConfig(cfg config.LayoutConfig) sorter.Layout {
	return sorter.Layout{
		Unsorted: cfg.Unsorted,
		ImageDir: cfg.ImageDir,
		VideoDir: cfg.VideoDir,
		OtherDir: cfg.OtherDir,
	}
}

// Run sorts every file under source into dest. progress may be nil.
func (a *SorterApp) Run(source, dest string, progress sorter.Progress) (*sorter.Report, error) {
	return a.service.Run(sorter.RunConfig{SourceRoot: source, DestRoot: dest}, progress)
}

// Scan inventories the tree at rawPath, reading capture times.
func (a *SorterApp) Scan(rawPath string) (*sorter.Inventory, error) {
	return a.service.Scan(rawPath)
}

// History returns the most recent runs, newest first.
func (a *SorterApp) History(limit int) ([]*sorter.RunSummary, error) {
	return a.catalog.ListRuns(limit)
}

// ShowRun returns a run and its recorded copy outcomes.
// When failedOnly is true only files that were not copied are returned.
func (a *SorterApp) ShowRun(id string, failedOnly bool) (*sorter.RunSummary, []*sorter.CopyEntry, error) {
	run, err := a.catalog.FindRun(id)
	if err != nil {
		return nil, nil, fmt.Errorf("finding run: %w", err)
	}
	if run == nil {
		return nil, nil, fmt.Errorf("run not found: %s", id)
	}

	copies, err := a.catalog.ListCopies(id, failedOnly)
	if err != nil {
		return nil, nil, fmt.Errorf("listing copies: %w", err)
	}
	return run, copies, nil
}

// Close releases the video reader, the catalog and the log file.
func (a *SorterApp) Close() error {
	var errs []error

	if a.videoCloser != nil {
		if err := a.videoCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing video metadata reader: %w", err))
		}
	}
	if err := a.catalog.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing catalog: %w", err))
	}
	if a.logFile != nil {
		a.logFile.Close()
	}

	return errors.Join(errs...)
}
