// Package file implements the durable snapshot store on the local filesystem.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/avilchesi/pronostico-service/internal/forecast"
)

// snapshotFile is the on-disk contract: {"timestamp": epoch-millis, "data":
// [...]}. Data is a pointer so a document that parses but lacks the array is
// distinguishable from an empty one.
type snapshotFile struct {
	Timestamp int64                        `json:"timestamp"`
	Data      *[]forecast.LocationForecast `json:"data"`
}

// Store reads and writes the last successful snapshot to a single JSON file.
// Writes go through a temp file plus rename so a concurrent reader never sees
// a half-written document.
type Store struct {
	path string

	mu           sync.Mutex
	lastCaptured time.Time
}

// New creates a store rooted at path.
func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("snapshot path is required")
	}
	return &Store{path: path}, nil
}

// Load reads the persisted snapshot. A missing file yields (nil, nil); an
// unreadable or structurally invalid file yields a *CorruptSnapshotError so
// callers can degrade to "no cache" without losing the cause.
func (s *Store) Load() (*forecast.Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &forecast.CorruptSnapshotError{Path: s.path, Err: err}
	}

	var doc snapshotFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &forecast.CorruptSnapshotError{Path: s.path, Err: err}
	}
	if doc.Timestamp <= 0 {
		return nil, &forecast.CorruptSnapshotError{Path: s.path, Err: errors.New("missing timestamp")}
	}
	if doc.Data == nil {
		return nil, &forecast.CorruptSnapshotError{Path: s.path, Err: errors.New("missing data array")}
	}

	return &forecast.Snapshot{
		CapturedAt: time.UnixMilli(doc.Timestamp).UTC(),
		Locations:  *doc.Data,
	}, nil
}

// Save atomically replaces the persisted snapshot. CapturedAt is clamped so
// successive writes never move backwards within a process lifetime.
func (s *Store) Save(snap *forecast.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	capturedAt := snap.CapturedAt
	if capturedAt.Before(s.lastCaptured) {
		capturedAt = s.lastCaptured
	}

	locations := snap.Locations
	if locations == nil {
		locations = []forecast.LocationForecast{}
	}
	raw, err := json.Marshal(snapshotFile{
		Timestamp: capturedAt.UnixMilli(),
		Data:      &locations,
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".pronostico-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	s.lastCaptured = capturedAt
	return nil
}
