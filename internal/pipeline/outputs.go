// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/tomtom215/segmatch/internal/database"
	"github.com/tomtom215/segmatch/internal/etl"
)

// writeOutputs fills every fixed output table and exports it to the output
// directory in the configured format.
func (p *Pipeline) writeOutputs(ctx context.Context, r *run) (*etl.Report, error) {
	outputs := []struct {
		name string
		rows [][]any
	}{
		{database.TableCustomerClusters, customerClusterRows(r)},
		{database.TableClusterProfile, clusterProfileRows(r)},
		{database.TableClusterSegmentCounts, segmentCountRows(r)},
		{database.TableClusterLabels, clusterLabelRows(r)},
		{database.TableClusterHeadline, headlineRows(r)},
		{database.TableClusterProductRanking, productRankingRows(r)},
		{database.TableCustomerRecommendations, recommendationRows(r)},
	}

	if err := os.MkdirAll(p.cfg.Output.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	for _, out := range outputs {
		if err := p.store.WriteOutput(ctx, out.name, out.rows); err != nil {
			return nil, err
		}
		file, err := p.store.Export(ctx, out.name, p.cfg.Output.Dir, p.cfg.Output.Format)
		if err != nil {
			return nil, err
		}
		r.sum.Outputs = append(r.sum.Outputs, OutputSummary{Table: out.name, Rows: len(out.rows), File: file})
		r.logger.Info().
			Str("table", out.name).
			Int("rows", len(out.rows)).
			Str("file", file).
			Msg("Output written")
	}
	return nil, nil
}

func customerClusterRows(r *run) [][]any {
	rows := make([][]any, 0, len(r.matrix.CustomerIDs))
	for i, id := range r.matrix.CustomerIDs {
		rows = append(rows, []any{id, r.selection.Labels[i]})
	}
	return rows
}

// clusterProfileRows emits the means in long format, one row per
// (cluster, feature).
func clusterProfileRows(r *run) [][]any {
	var rows [][]any
	for _, c := range r.profile.Profiles {
		for j, feature := range r.profile.Features {
			rows = append(rows, []any{c.Cluster, c.Size, feature, c.Means[j]})
		}
	}
	return rows
}

func segmentCountRows(r *run) [][]any {
	rows := make([][]any, 0, len(r.profile.SegmentCounts))
	for _, sc := range r.profile.SegmentCounts {
		rows = append(rows, []any{sc.Cluster, sc.Segment, sc.Count})
	}
	return rows
}

func clusterLabelRows(r *run) [][]any {
	rows := make([][]any, 0, len(r.profile.Profiles))
	for _, c := range r.profile.Profiles {
		rows = append(rows, []any{c.Cluster, c.Size, c.Label})
	}
	return rows
}

// headlineRows writes a NULL mean for a cluster with no observed value.
func headlineRows(r *run) [][]any {
	var rows [][]any
	for _, c := range r.profile.Profiles {
		for _, h := range c.Headline {
			var mean any
			if h.Valid {
				mean = h.Mean
			}
			rows = append(rows, []any{c.Cluster, h.Metric, mean, string(h.Bucket)})
		}
	}
	return rows
}

func productRankingRows(r *run) [][]any {
	var rows [][]any
	affinity := r.generator.Affinity()
	for _, c := range affinity.Clusters() {
		for rank, pc := range affinity.Ranking(c) {
			rows = append(rows, []any{c, rank + 1, pc.Product, pc.Count})
		}
	}
	return rows
}

// recommendationRows writes a NULL cluster for customers that hold products
// but were not clustered.
func recommendationRows(r *run) [][]any {
	rows := make([][]any, 0, len(r.recs))
	for _, rec := range r.recs {
		var c any
		if rec.Clustered {
			c = rec.Cluster
		}
		rows = append(rows, []any{rec.CustomerID, c, rec.String()})
	}
	return rows
}
