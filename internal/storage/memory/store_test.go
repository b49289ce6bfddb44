package memory

import (
	"testing"
	"time"

	"github.com/avilchesi/pronostico-service/internal/forecast"
)

func TestLoadEmptyStore(t *testing.T) {
	t.Parallel()

	store := New()
	snap, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot, got %+v", snap)
	}
}

func TestSaveCopiesLocations(t *testing.T) {
	t.Parallel()

	store := New()
	locations := []forecast.LocationForecast{{Name: "Asunción", Days: []forecast.ForecastDay{}}}
	if err := store.Save(&forecast.Snapshot{CapturedAt: time.Unix(100, 0), Locations: locations}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	locations[0].Name = "mutated"

	snap, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.Locations[0].Name != "Asunción" {
		t.Fatalf("expected stored copy to be immutable, got %q", snap.Locations[0].Name)
	}
}

func TestSaveClampsCapturedAt(t *testing.T) {
	t.Parallel()

	store := New()
	later := time.Unix(200, 0)
	if err := store.Save(&forecast.Snapshot{CapturedAt: later}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(&forecast.Snapshot{CapturedAt: time.Unix(100, 0)}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	snap, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.CapturedAt.Before(later) {
		t.Fatalf("captured-at moved backwards: %v", snap.CapturedAt)
	}
}

func TestSaveNilSnapshot(t *testing.T) {
	t.Parallel()

	if err := New().Save(nil); err == nil {
		t.Fatal("expected error for nil snapshot")
	}
}
