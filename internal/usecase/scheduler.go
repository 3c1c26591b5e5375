package usecase

import (
	"context"
	"time"

	"updatescout/internal/domain"
	"updatescout/internal/ports"
)

// Scheduler wires the cron driver with the pipeline for watch mode.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	profile  domain.VersionProfile
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, profile domain.VersionProfile) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, profile: profile}
}

// Start registers the pipeline with the provided scheduler. Run outcomes are
// logged and notified by the pipeline itself.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(time.Time) {
		_, _ = s.pipeline.LatestUpdate(ctx, s.profile)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
