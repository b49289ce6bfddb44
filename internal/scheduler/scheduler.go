// Package scheduler hosts the best-effort background refreshes: the startup
// pre-warm and the optional cron-driven forced refresh. Both go through the
// coordinator, so they share its single-flight state with API callers.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/avilchesi/pronostico-service/internal/forecast"
)

// Refresher is the coordinator surface the scheduler depends on.
type Refresher interface {
	GetForecast(ctx context.Context, force bool) ([]forecast.LocationForecast, error)
}

// Scheduler runs forced refreshes on a cron spec.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// New builds a scheduler that forces a refresh on every tick of spec.
func New(refresher Refresher, spec string, logger *zap.Logger) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		locations, err := refresher.GetForecast(context.Background(), true)
		if err != nil {
			logger.Warn("scheduled refresh failed", zap.Error(err))
			return
		}
		logger.Info("scheduled refresh completed", zap.Int("locations", len(locations)))
	})
	if err != nil {
		return nil, fmt.Errorf("parse refresh cron %q: %w", spec, err)
	}
	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins running scheduled refreshes in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Prewarm runs one best-effort non-forced fetch. Failure is logged, never
// escalated: the server keeps serving and the next caller simply pays for the
// fetch instead.
func Prewarm(ctx context.Context, refresher Refresher, logger *zap.Logger) {
	locations, err := refresher.GetForecast(ctx, false)
	if err != nil {
		logger.Warn("prewarm fetch failed", zap.Error(err))
		return
	}
	logger.Info("prewarm fetch completed", zap.Int("locations", len(locations)))
}
