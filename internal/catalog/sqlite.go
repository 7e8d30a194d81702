// Package catalog keeps the history of runs in SQLite.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"mediasort/internal/catalog/migrations"
	"mediasort/internal/sorter"
)

// SQLiteCatalog implements sorter.Catalog using SQLite.
type SQLiteCatalog struct {
	db   *sql.DB
	path string
}

// NewSQLiteCatalog opens the catalog at path (a file path or ":memory:"),
// migrates it to the latest schema and verifies the result.
func NewSQLiteCatalog(path string) (*SQLiteCatalog, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrations.Check(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("checking catalog schema: %w", err)
	}
	return &SQLiteCatalog{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection.
// The pool is limited to one connection: every ":memory:" connection is a
// separate database, and the catalog has a single writer anyway.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring catalog (%s): %w", pragma, err)
		}
	}
	return db, nil
}

// Path returns the location the catalog was opened from.
func (c *SQLiteCatalog) Path() string {
	return c.path
}

func (c *SQLiteCatalog) StartRun(run *sorter.RunSummary) error {
	_, err := c.db.Exec(`INSERT INTO runs (id, source_root, dest_root, started_at, status)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.SourceRoot, run.DestRoot, run.StartedAt.UTC(), run.Status)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

func (c *SQLiteCatalog) RecordCopy(entry *sorter.CopyEntry) error {
	var captured any
	if entry.CapturedAt.Valid {
		captured = entry.CapturedAt.Time.UTC()
	}
	_, err := c.db.Exec(`INSERT INTO copies
		(run_id, source_path, dest_path, bucket, category, captured_at, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID, entry.SourcePath, entry.DestPath, entry.Bucket, entry.Category,
		captured, entry.Status, entry.Error)
	if err != nil {
		return fmt.Errorf("inserting copy of %s: %w", entry.SourcePath, err)
	}
	return nil
}

func (c *SQLiteCatalog) FinishRun(run *sorter.RunSummary) error {
	var finished any
	if run.FinishedAt.Valid {
		finished = run.FinishedAt.Time.UTC()
	}
	res, err := c.db.Exec(`UPDATE runs
		SET finished_at = ?, status = ?, source_files = ?, dest_files = ?, copied = ?, failed = ?
		WHERE id = ?`,
		finished, run.Status, run.SourceFiles, run.DestFiles, run.Copied, run.Failed, run.ID)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", run.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating run %s: %w", run.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("updating run %s: run not found", run.ID)
	}
	return nil
}

const runColumns = `id, source_root, dest_root, started_at, finished_at, status,
	source_files, dest_files, copied, failed`

func scanRun(row interface{ Scan(...any) error }) (*sorter.RunSummary, error) {
	var r sorter.RunSummary
	err := row.Scan(&r.ID, &r.SourceRoot, &r.DestRoot, &r.StartedAt, &r.FinishedAt, &r.Status,
		&r.SourceFiles, &r.DestFiles, &r.Copied, &r.Failed)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *SQLiteCatalog) ListRuns(limit int) ([]*sorter.RunSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := c.db.Query(`SELECT `+runColumns+` FROM runs
		ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*sorter.RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

func (c *SQLiteCatalog) FindRun(id string) (*sorter.RunSummary, error) {
	r, err := scanRun(c.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding run %s: %w", id, err)
	}
	return r, nil
}

func (c *SQLiteCatalog) ListCopies(runID string, failedOnly bool) ([]*sorter.CopyEntry, error) {
	query := `SELECT run_id, source_path, dest_path, bucket, category, captured_at, status, error
		FROM copies WHERE run_id = ?`
	if failedOnly {
		query += ` AND status != 'copied'`
	}
	query += ` ORDER BY seq`

	rows, err := c.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("listing copies of run %s: %w", runID, err)
	}
	defer rows.Close()

	var entries []*sorter.CopyEntry
	for rows.Next() {
		var e sorter.CopyEntry
		if err := rows.Scan(&e.RunID, &e.SourcePath, &e.DestPath, &e.Bucket, &e.Category,
			&e.CapturedAt, &e.Status, &e.Error); err != nil {
			return nil, fmt.Errorf("scanning copy: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing copies of run %s: %w", runID, err)
	}
	return entries, nil
}

func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

// Compile-time check that SQLiteCatalog implements sorter.Catalog
var _ sorter.Catalog = (*SQLiteCatalog)(nil)
