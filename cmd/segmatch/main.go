// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/segmatch/internal/api"
	"github.com/tomtom215/segmatch/internal/config"
	"github.com/tomtom215/segmatch/internal/database"
	"github.com/tomtom215/segmatch/internal/logging"
	"github.com/tomtom215/segmatch/internal/pipeline"
	"github.com/tomtom215/segmatch/internal/supervisor"
	"github.com/tomtom215/segmatch/internal/supervisor/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 2
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("input_dir", cfg.Input.Dir).
		Str("output_dir", cfg.Output.Dir).
		Str("db_path", cfg.Database.Path).
		Ints("k_candidates", cfg.Cluster.Candidates).
		Dur("interval", cfg.Schedule.Interval).
		Msg("Configuration loaded")

	db, err := database.Open(&cfg.Database, logging.WithComponent("database"))
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize database")
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, db, logging.WithComponent("pipeline"))

	if cfg.Schedule.Interval <= 0 {
		return runOnce(ctx, p)
	}
	return serve(ctx, cfg, db, p)
}

func runOnce(ctx context.Context, p *pipeline.Pipeline) int {
	sum, err := p.Run(ctx)
	if err != nil {
		logging.Error().
			Err(err).
			Str("error_type", pipeline.Classify(err)).
			Msg("Pipeline run failed")
		return 1
	}
	logging.Info().
		Str("run_id", sum.RunID).
		Int("customers", sum.Customers).
		Int("clusters", len(sum.Clusters)).
		Int64("duration_ms", sum.DurationMs).
		Msg("Pipeline run complete")
	return 0
}

func serve(ctx context.Context, cfg *config.Config, db *database.DB, p *pipeline.Pipeline) int {
	tree, err := supervisor.NewSupervisorTree(
		logging.NewSlogLogger(logging.WithComponent("supervisor")),
		supervisor.DefaultTreeConfig(),
	)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return 1
	}

	tree.AddPipelineService(services.NewPipelineService(p, services.PipelineServiceConfig{
		RunOnStartup: true,
		Interval:     cfg.Schedule.Interval,
	}, logging.Logger()))

	if cfg.Server.Enabled {
		server := &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           api.NewRouter(api.NewHandler(db, p)),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.Server.Timeout,
			WriteTimeout:      cfg.Server.Timeout,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
		logging.Info().Str("addr", server.Addr).Msg("Ops server enabled")
	}

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
		return 1
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services did not stop within timeout")
	}
	logging.Info().Msg("Shutdown complete")
	return 0
}
