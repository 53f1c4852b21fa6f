// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

// Package main is the entry point for the segmatch pipeline.
//
// segmatch reads the raw customer exports (NPS surveys, support tickets,
// MRR, contracts, customer registry, telemetry), reconciles them on one
// customer key, clusters customers with k-means, labels the clusters and
// recommends products each customer is missing relative to their cluster.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (INPUT_DIR, OUTPUT_DIR, DUCKDB_PATH, CLUSTER_CANDIDATES, ...)
//   - Config file (config.yaml, or the path in CONFIG_PATH)
//   - Built-in defaults
//
// # Modes
//
// With SCHEDULE_INTERVAL unset (0) the pipeline runs once and the process
// exits with status 1 if the run failed:
//
//	export INPUT_DIR=/data/raw OUTPUT_DIR=/data/output
//	./segmatch
//
// With a positive interval the pipeline runs on startup and then on every
// tick under a suture supervisor tree. HTTP_ENABLED=true adds the ops
// server (/healthz, /metrics, /api/v1/runs/latest):
//
//	export SCHEDULE_INTERVAL=6h HTTP_ENABLED=true HTTP_PORT=8090
//	./segmatch
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the current run and stop the supervisor tree.
package main
