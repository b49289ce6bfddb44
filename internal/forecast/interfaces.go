package forecast

import (
	"context"
	"time"
)

// PageFetcher retrieves the raw HTML of the forecast page.
type PageFetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// SnapshotStore persists the last successful snapshot.
//
// Load returns (nil, nil) when no snapshot has ever been persisted and a
// *CorruptSnapshotError when the persisted state cannot be decoded; callers
// treat both as "no cache". Save atomically replaces the prior snapshot.
type SnapshotStore interface {
	Load() (*Snapshot, error)
	Save(*Snapshot) error
}

// Clock abstracts time.Now for TTL checks and capture timestamps.
type Clock interface {
	Now() time.Time
}
