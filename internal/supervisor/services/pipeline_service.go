// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/segmatch/internal/pipeline"
)

// DefaultInterval is used when PipelineServiceConfig.Interval is not positive.
const DefaultInterval = 24 * time.Hour

// Runner executes one pipeline run. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Summary, error)
}

// PipelineServiceConfig holds the run schedule.
type PipelineServiceConfig struct {
	// RunOnStartup runs once before the first tick.
	RunOnStartup bool

	// Interval between scheduled runs.
	Interval time.Duration
}

// PipelineService runs the pipeline on a schedule under supervision.
type PipelineService struct {
	runner Runner
	config PipelineServiceConfig
	logger zerolog.Logger
	name   string
}

// NewPipelineService creates a scheduled pipeline service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipelineService(runner Runner, cfg PipelineServiceConfig, logger zerolog.Logger) *PipelineService {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &PipelineService{
		runner: runner,
		config: cfg,
		logger: logger.With().Str("service", "pipeline").Logger(),
		name:   "pipeline-service",
	}
}

// Serve implements suture.Service.
func (s *PipelineService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Msg("pipeline service starting")

	if s.config.RunOnStartup {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("pipeline service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.logger.Debug().Msg("scheduled run triggered")
			s.run(ctx)
		}
	}
}

func (s *PipelineService) run(ctx context.Context) {
	sum, err := s.runner.Run(ctx)
	if err != nil {
		ev := s.logger.Warn().Err(err).Str("error_type", pipeline.Classify(err))
		if sum != nil {
			ev = ev.Str("run_id", sum.RunID)
		}
		ev.Msg("scheduled run failed (will retry on next tick)")
		return
	}
	s.logger.Info().
		Str("run_id", sum.RunID).
		Int64("duration_ms", sum.DurationMs).
		Int("customers", sum.Customers).
		Msg("scheduled run complete")
}

// String returns the service name for logging.
func (s *PipelineService) String() string {
	return s.name
}
