// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

// Package profile summarizes clusters: per-feature means, categorical
// segment counts, and a short textual persona label.
package profile

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/segmatch/internal/features"
	"github.com/tomtom215/segmatch/internal/table"
)

// ClusterProfile describes one cluster.
type ClusterProfile struct {
	Cluster int
	Size    int

	// Means holds the mean of every feature over imputed values, in feature order.
	Means []float64

	// Headline holds per-metric results for the headline metrics whose
	// column exists, in headline order.
	Headline []MetricValue

	// Label is the textual persona, e.g. "Revenue High, Satisfaction Low".
	Label string
}

// MetricValue is a headline metric mean and its bucket. Valid is false when
// the cluster has no observed value for the metric.
type MetricValue struct {
	Metric string
	Mean   float64
	Valid  bool
	Bucket Bucket
}

// SegmentCount is the number of customers of a cluster in one segment.
type SegmentCount struct {
	Cluster int
	Segment string
	Count   int
}

// Result is the profile of a full labeling.
type Result struct {
	Features      []string
	Profiles      []ClusterProfile
	SegmentCounts []SegmentCount
}

// Config controls profiling.
type Config struct {
	// Key is the customer key column of the attribute table.
	Key string

	// SegmentColumn is the categorical attribute counted per cluster.
	SegmentColumn string

	// Headline lists the metrics used for label derivation.
	Headline []Metric
}

// Profiler computes cluster profiles.
type Profiler struct {
	cfg    Config
	logger zerolog.Logger
}

// NewProfiler creates a profiler. Zero-value fields take defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProfiler(cfg Config, logger zerolog.Logger) *Profiler {
	if cfg.Key == "" {
		cfg.Key = "customer_id"
	}
	if cfg.SegmentColumn == "" {
		cfg.SegmentColumn = features.ColumnSegment
	}
	if cfg.Headline == nil {
		cfg.Headline = DefaultHeadline
	}
	return &Profiler{cfg: cfg, logger: logger.With().Str("component", "profile").Logger()}
}

// Profile summarizes the clusters of labels over m. attrs supplies the
// segment attribute by customer key and may be nil.
func (p *Profiler) Profile(m *features.Matrix, labels []int, attrs *table.Table) (*Result, error) {
	if len(labels) != m.NumRows() {
		return nil, fmt.Errorf("profile: %d labels for %d customers", len(labels), m.NumRows())
	}

	members := make(map[int][]int)
	for i, l := range labels {
		members[l] = append(members[l], i)
	}
	clusters := make([]int, 0, len(members))
	for c := range members {
		clusters = append(clusters, c)
	}
	sort.Ints(clusters)

	res := &Result{Features: append([]string(nil), m.Names...)}
	for _, c := range clusters {
		rows := members[c]
		means := make([]float64, m.NumCols())
		for _, i := range rows {
			for j, v := range m.Rows[i] {
				means[j] += v
			}
		}
		for j := range means {
			means[j] /= float64(len(rows))
		}
		res.Profiles = append(res.Profiles, ClusterProfile{
			Cluster: c,
			Size:    len(rows),
			Means:   means,
		})
	}

	p.headline(m, members, res.Profiles)
	res.SegmentCounts = p.segmentCounts(m, labels, attrs)

	p.logger.Debug().
		Int("clusters", len(res.Profiles)).
		Int("segment_counts", len(res.SegmentCounts)).
		Msg("clusters profiled")
	return res, nil
}

// headline computes raw headline means, terciles across cluster means, and labels.
func (p *Profiler) headline(m *features.Matrix, members map[int][]int, profiles []ClusterProfile) {
	for _, metric := range p.cfg.Headline {
		raw, ok := m.Raw[metric.Column]
		if !ok {
			p.logger.Info().
				Str("metric", metric.Name).
				Str("column", metric.Column).
				Msg("headline metric unavailable, omitted from labels")
			continue
		}

		values := make([]MetricValue, len(profiles))
		var observed []float64
		for ci, prof := range profiles {
			sum, n := 0.0, 0
			for _, i := range members[prof.Cluster] {
				if raw[i].OK {
					sum += raw[i].V
					n++
				}
			}
			values[ci] = MetricValue{Metric: metric.Name}
			if n > 0 {
				values[ci].Mean = sum / float64(n)
				values[ci].Valid = true
				observed = append(observed, values[ci].Mean)
			}
		}

		q33, q67 := Percentile(observed, 33), Percentile(observed, 67)
		for ci := range values {
			values[ci].Bucket = Classify(values[ci].Mean, values[ci].Valid, q33, q67)
			profiles[ci].Headline = append(profiles[ci].Headline, values[ci])
		}
	}

	for ci := range profiles {
		profiles[ci].Label = Label(profiles[ci].Headline)
	}
}

func (p *Profiler) segmentCounts(m *features.Matrix, labels []int, attrs *table.Table) []SegmentCount {
	if attrs == nil || !attrs.HasColumn(p.cfg.SegmentColumn) || !attrs.HasColumn(p.cfg.Key) {
		return nil
	}
	segment := make(map[string]table.Cell, attrs.Len())
	for i := 0; i < attrs.Len(); i++ {
		key := attrs.Get(i, p.cfg.Key)
		if !key.Valid {
			continue
		}
		if _, seen := segment[key.Value]; !seen {
			segment[key.Value] = attrs.Get(i, p.cfg.SegmentColumn)
		}
	}

	type pair struct {
		cluster int
		segment string
	}
	counts := make(map[pair]int)
	for i, id := range m.CustomerIDs {
		seg, ok := segment[id]
		if !ok || !seg.Valid {
			continue
		}
		counts[pair{labels[i], seg.Value}]++
	}

	out := make([]SegmentCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, SegmentCount{Cluster: k.cluster, Segment: k.segment, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cluster != out[j].Cluster {
			return out[i].Cluster < out[j].Cluster
		}
		return out[i].Segment < out[j].Segment
	})
	return out
}
