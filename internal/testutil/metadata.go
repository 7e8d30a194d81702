package testutil

import (
	"sync"

	"mediasort/internal/sorter"
)

// StubVideoReader returns canned metadata per path.
type StubVideoReader struct {
	mu     sync.Mutex
	fields map[string]map[string]any
	errs   map[string]error
	calls  []string
}

func NewStubVideoReader() *StubVideoReader {
	return &StubVideoReader{
		fields: make(map[string]map[string]any),
		errs:   make(map[string]error),
	}
}

// Set registers the metadata returned for path.
func (r *StubVideoReader) Set(path string, fields map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fields[path] = fields
}

// SetError makes ReadMetadata fail for path.
func (r *StubVideoReader) SetError(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[path] = err
}

// Calls returns the paths read so far.
func (r *StubVideoReader) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// ReadMetadata returns the registered fields, or an empty map.
func (r *StubVideoReader) ReadMetadata(path string) (map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, path)
	if err, ok := r.errs[path]; ok {
		return nil, err
	}
	if f, ok := r.fields[path]; ok {
		return f, nil
	}
	return map[string]any{}, nil
}

var _ sorter.VideoMetadataReader = (*StubVideoReader)(nil)
