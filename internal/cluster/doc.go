// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

/*
Package cluster partitions standardized customer feature vectors into
behavioral segments.

# Algorithm

For each configured candidate cluster count k, KMeans runs k-means++
seeding followed by Lloyd iterations from a fixed seed. Each labeling is
scored with the mean silhouette coefficient (Silhouette), and the Selector
keeps the candidate with the strictly highest score. Ties go to the
earliest candidate in configured order.

# Skipped Candidates

A candidate k is skipped, never fatal, when it exceeds the number of
distinct points or when its labeling populates fewer than two clusters.
Skipped candidates carry ErrInsufficientData. When every candidate is
skipped the selection degrades to a single cluster holding every point.

# Concurrency

Candidates are independent and may be evaluated by a small worker pool.
Workers share the read-only point matrix, each k-means run owns its RNG,
and results are written to per-candidate slots so the reduction order
matches the configured order regardless of scheduling.

# Usage

	sel := cluster.NewSelector(cluster.DefaultConfig(), logger)
	selection, err := sel.Select(ctx, scaled)
	if err != nil {
	    return err
	}
	fmt.Println(selection.K, selection.Score)
*/
package cluster
