// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package recommend

import (
	"github.com/rs/zerolog"
)

// DefaultTopN is the default recommendation list length.
const DefaultTopN = 3

// Config controls recommendation generation.
type Config struct {
	// TopN is the maximum number of products per customer.
	TopN int
}

// Generator produces product-gap recommendations.
type Generator struct {
	assignment Assignment
	affinity   *AffinityTable
	holdings   *Holdings
	topN       int
	logger     zerolog.Logger
}

// NewGenerator creates a generator over a cluster assignment.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGenerator(assignment Assignment, holdings *Holdings, cfg Config, logger zerolog.Logger) *Generator {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	return &Generator{
		assignment: assignment,
		affinity:   BuildAffinity(assignment, holdings),
		holdings:   holdings,
		topN:       cfg.TopN,
		logger:     logger.With().Str("component", "recommend").Logger(),
	}
}

// Affinity returns the per-cluster product ranking.
func (g *Generator) Affinity() *AffinityTable {
	return g.affinity
}

// Recommend returns up to TopN products of the customer's cluster ranking
// that the customer does not hold, in rank order. Unknown customers get an
// empty list.
func (g *Generator) Recommend(customerID string) []string {
	cluster, ok := g.assignment[customerID]
	if !ok {
		return []string{}
	}
	out := make([]string, 0, g.topN)
	for _, pc := range g.affinity.ranking[cluster] {
		if len(out) == g.topN {
			break
		}
		if g.holdings.Holds(customerID, pc.Product) {
			continue
		}
		out = append(out, pc.Product)
	}
	return out
}

// RecommendAll returns one Recommendation per customer in customerIDs, then
// one per customer that holds products but has no cluster.
func (g *Generator) RecommendAll(customerIDs []string) []Recommendation {
	out := make([]Recommendation, 0, len(customerIDs))
	seen := make(map[string]struct{}, len(customerIDs))
	empty := 0

	for _, id := range customerIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		cluster, clustered := g.assignment[id]
		rec := Recommendation{
			CustomerID: id,
			Cluster:    cluster,
			Clustered:  clustered,
			Products:   g.Recommend(id),
		}
		if len(rec.Products) == 0 {
			empty++
		}
		out = append(out, rec)
	}

	unclustered := 0
	for _, id := range g.holdings.customers {
		if _, ok := seen[id]; ok {
			continue
		}
		if _, clustered := g.assignment[id]; clustered {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, Recommendation{CustomerID: id, Products: []string{}})
		unclustered++
	}

	g.logger.Debug().
		Int("customers", len(out)).
		Int("empty", empty).
		Int("unclustered", unclustered).
		Msg("recommendations generated")
	return out
}
