package testutil

import (
	"sync"
	"testing"

	"mediasort/internal/catalog"
	"mediasort/internal/sorter"
)

// NewTestCatalog creates an in-memory SQLite catalog with the schema applied.
// The catalog is closed when the test completes.
func NewTestCatalog(t *testing.T) *catalog.SQLiteCatalog {
	t.Helper()

	c, err := catalog.NewSQLiteCatalog(":memory:")
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	t.Cleanup(func() {
		c.Close()
	})
	return c
}

// FailingCatalog wraps a Catalog and fails the operations a test selects.
type FailingCatalog struct {
	sorter.Catalog

	mu          sync.Mutex
	StartErr    error
	RecordErr   error
	FinishErr   error
	recordCalls int
}

// NewFailingCatalog wraps inner with no failures configured.
func NewFailingCatalog(inner sorter.Catalog) *FailingCatalog {
	return &FailingCatalog{Catalog: inner}
}

func (c *FailingCatalog) StartRun(run *sorter.RunSummary) error {
	if c.StartErr != nil {
		return c.StartErr
	}
	return c.Catalog.StartRun(run)
}

func (c *FailingCatalog) RecordCopy(entry *sorter.CopyEntry) error {
	c.mu.Lock()
	c.recordCalls++
	c.mu.Unlock()
	if c.RecordErr != nil {
		return c.RecordErr
	}
	return c.Catalog.RecordCopy(entry)
}

func (c *FailingCatalog) FinishRun(run *sorter.RunSummary) error {
	if c.FinishErr != nil {
		return c.FinishErr
	}
	return c.Catalog.FinishRun(run)
}

// RecordCalls returns how many times RecordCopy was called.
func (c *FailingCatalog) RecordCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recordCalls
}

var _ sorter.Catalog = (*FailingCatalog)(nil)
