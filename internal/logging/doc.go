// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

// Package logging provides the zerolog setup shared by every Segmatch component.
//
// The global logger is configured once from main with Init. Components take a
// child logger via WithComponent, and run-scoped code logs through Ctx so that
// each entry carries the run_id of the pipeline run (and the request_id of an
// ops API call):
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	ctx = logging.ContextWithRunID(ctx, logging.NewRunID())
//	logging.Ctx(ctx).Info().Str("stage", "features").Msg("Stage complete")
//
// SlogHandler bridges slog-only libraries (the supervisor's sutureslog
// handler) onto the same zerolog stream.
package logging
