// Package coordinator owns the single-flight fetch state: cache-hit checks,
// deduplication of concurrent misses into one pipeline run, and the snapshot
// update on success.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/avilchesi/pronostico-service/internal/forecast"
	"github.com/avilchesi/pronostico-service/internal/metrics"
)

// Fetch modes. Headless always drives the browser; static fetches over plain
// HTTP only; auto probes statically first and promotes to the browser when
// the detector finds no table-like content.
const (
	ModeHeadless = "headless"
	ModeStatic   = "static"
	ModeAuto     = "auto"
)

// All misses share one flight; there is only one page to fetch.
const flightKey = "pronostico"

// Config controls coordinator behavior.
type Config struct {
	TTL  time.Duration
	Mode string
}

// Coordinator is the only component allowed to start the fetch pipeline.
type Coordinator struct {
	store    forecast.SnapshotStore
	headless forecast.PageFetcher
	probe    forecast.PageFetcher
	detector *forecast.RenderDetector
	clock    forecast.Clock
	cfg      Config
	logger   *zap.Logger

	flights singleflight.Group
}

// New constructs a Coordinator. probe and detector may be nil when the mode
// is headless.
func New(
	store forecast.SnapshotStore,
	headless forecast.PageFetcher,
	probe forecast.PageFetcher,
	detector *forecast.RenderDetector,
	clock forecast.Clock,
	cfg Config,
	logger *zap.Logger,
) *Coordinator {
	if cfg.Mode == "" {
		cfg.Mode = ModeHeadless
	}
	metrics.Init()
	return &Coordinator{
		store:    store,
		headless: headless,
		probe:    probe,
		detector: detector,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// GetForecast returns the current locations, serving a fresh cached snapshot
// unless force is set. Misses are deduplicated: at most one pipeline runs at
// any instant and every concurrent caller observes its outcome. A forced
// refresh arriving mid-flight joins the existing flight; force only bypasses
// a fresh cache entry, it never duplicates a fetch.
func (c *Coordinator) GetForecast(ctx context.Context, force bool) ([]forecast.LocationForecast, error) {
	if !force {
		if locations, ok := c.cached(); ok {
			return locations, nil
		}
	} else {
		metrics.ObserveCacheRequest("miss", "forced")
	}

	// The pipeline deliberately detaches from the caller's cancellation:
	// other waiters may still need the result.
	pipelineCtx := context.WithoutCancel(ctx)
	v, err, shared := c.flights.Do(flightKey, func() (any, error) {
		return c.refresh(pipelineCtx)
	})
	if shared {
		metrics.ObserveFlightJoin()
	}
	if err != nil {
		return nil, err
	}
	locations, ok := v.([]forecast.LocationForecast)
	if !ok {
		return nil, fmt.Errorf("unexpected flight result type %T", v)
	}
	return locations, nil
}

// cached consults the store without touching the flight state. Corrupt or
// unreadable persisted state degrades to a miss.
func (c *Coordinator) cached() ([]forecast.LocationForecast, bool) {
	snap, err := c.store.Load()
	if err != nil {
		var corrupt *forecast.CorruptSnapshotError
		if errors.As(err, &corrupt) {
			c.logger.Warn("cached snapshot corrupt, treating as absent", zap.Error(err))
			metrics.ObserveCacheRequest("miss", "corrupt")
		} else {
			c.logger.Warn("cache load failed, treating as absent", zap.Error(err))
			metrics.ObserveCacheRequest("miss", "load_error")
		}
		return nil, false
	}
	if snap == nil {
		metrics.ObserveCacheRequest("miss", "absent")
		return nil, false
	}
	if !snap.Fresh(c.cfg.TTL, c.clock.Now()) {
		metrics.ObserveCacheRequest("miss", "stale")
		return nil, false
	}
	metrics.ObserveCacheRequest("hit", "fresh")
	return snap.Locations, true
}

// refresh runs the full pipeline once: fetch, parse, extract, persist. A
// persist failure is reported but does not fail the request; the fresh data
// is still returned to every waiter.
func (c *Coordinator) refresh(ctx context.Context) ([]forecast.LocationForecast, error) {
	start := time.Now()
	body, mode, err := c.fetchPage(ctx)
	if err != nil {
		metrics.ObserveFetch(mode, "error", time.Since(start))
		c.logger.Error("fetch pipeline failed", zap.String("mode", mode), zap.Error(err))
		return nil, err
	}

	doc, err := forecast.ParseDocument(body)
	if err != nil {
		metrics.ObserveFetch(mode, "error", time.Since(start))
		return nil, err
	}
	locations := forecast.ExtractLocations(doc)

	snap := &forecast.Snapshot{
		CapturedAt: c.clock.Now(),
		Locations:  locations,
	}
	if err := c.store.Save(snap); err != nil {
		c.logger.Error("persist snapshot failed", zap.Error(err))
		metrics.ObservePersistFailure()
	}

	metrics.ObserveFetch(mode, "success", time.Since(start))
	metrics.SetSnapshotLocations(len(locations))
	c.logger.Info("forecast refreshed",
		zap.String("mode", mode),
		zap.Int("locations", len(locations)),
		zap.Duration("duration", time.Since(start)),
	)
	return locations, nil
}

func (c *Coordinator) fetchPage(ctx context.Context) ([]byte, string, error) {
	switch c.cfg.Mode {
	case ModeStatic:
		body, err := c.probe.Fetch(ctx)
		return body, ModeStatic, err
	case ModeAuto:
		body, err := c.probe.Fetch(ctx)
		if err == nil && !c.detector.NeedsRender(body) {
			return body, ModeStatic, nil
		}
		if err != nil {
			c.logger.Debug("static probe failed, promoting to headless", zap.Error(err))
		}
		body, err = c.headless.Fetch(ctx)
		return body, ModeHeadless, err
	default:
		body, err := c.headless.Fetch(ctx)
		return body, ModeHeadless, err
	}
}
