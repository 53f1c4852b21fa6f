// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

/*
Package metrics provides Prometheus metrics for pipeline observability.

# Metrics Endpoint

When the ops server is enabled, metrics are exposed at /metrics in
Prometheus text format:

	curl http://localhost:8090/metrics

# Available Metrics

Pipeline Metrics:
  - segmatch_stage_duration_seconds: Stage wall time (histogram)
    Labels: stage
  - segmatch_stage_errors_total: Stage failures and degradations (counter)
    Labels: stage, error_type (missing_key, missing_artifact, insufficient_data, internal)
  - segmatch_rows_processed_total: Rows written per table (counter)
    Labels: table
  - segmatch_inspection_tables_total: Tables routed to inspection (counter)
    Labels: table
  - segmatch_last_run_success_timestamp: Unix time of the last successful run (gauge)

Clustering Metrics:
  - segmatch_cluster_candidate_score: Silhouette per candidate k (gauge)
    Labels: k
  - segmatch_cluster_candidates_skipped_total: Skipped candidates (counter)
    Labels: reason
  - segmatch_selected_k: Chosen cluster count (gauge)
  - segmatch_customers_clustered: Customers in the last labeling (gauge)

Recommendation Metrics:
  - segmatch_recommendations_total: Recommended products emitted (counter)

Storage and API Metrics:
  - segmatch_duckdb_query_duration_seconds, segmatch_duckdb_query_errors_total
  - segmatch_api_requests_total, segmatch_api_request_duration_seconds,
    segmatch_api_active_requests

# Usage

	start := time.Now()
	err := runStage(ctx)
	metrics.RecordStage("features", time.Since(start), err)
*/
package metrics
