package sorter

import (
	"time"

	"github.com/google/uuid"
)

// Clock stamps the start and finish of a run. It is never used for capture
// times, which come only from file metadata.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator names runs in the catalog.
type IDGenerator interface {
	New() string
}

// UUIDGenerator names runs with random UUIDs, so IDs from separate catalogs
// never collide.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
