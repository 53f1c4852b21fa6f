// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

/*
Package pipeline orchestrates one segmentation and recommendation run.

A run executes, strictly in order:

 1. the ETL source stages (nps, tickets, sales, customers, telemetry)
 2. the analytic base build (base_analitica)
 3. feature construction and standardization
 4. cluster-count selection by silhouette
 5. cluster profiling and persona labels
 6. product-gap recommendations
 7. the fixed output tables, exported as CSV or Parquet

Each stage is timed into segmatch_stage_duration_seconds and recorded in the
run Summary, which is also written as run_summary.json. Cancellation and the
run timeout are honoured between stages only.

# Errors

Classify maps errors to four classes. A table without a customer key is
routed to inspection and never fails a run. Unparseable values are missing
values. Skipped cluster candidates are insufficient data. A missing artifact
aborts the stage that needed it; for a source stage the run continues, while
a missing clientes_tratado ends the run with an error naming it.

# Usage

	p := pipeline.New(cfg, db, logger)
	summary, err := p.Run(ctx)
*/
package pipeline
