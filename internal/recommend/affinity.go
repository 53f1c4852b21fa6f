// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package recommend

import "sort"

// ProductCount is a ranked product within a cluster.
type ProductCount struct {
	Product string
	Count   int
}

// AffinityTable holds the ranked products of every cluster.
type AffinityTable struct {
	ranking map[int][]ProductCount
}

// BuildAffinity counts, per cluster, the distinct customers holding each
// product and sorts by count descending. Equal counts keep first-appearance
// order from the holdings.
func BuildAffinity(assignment Assignment, holdings *Holdings) *AffinityTable {
	counts := make(map[int]map[string]int)
	for _, customer := range holdings.customers {
		cluster, ok := assignment[customer]
		if !ok {
			continue
		}
		byProduct, ok := counts[cluster]
		if !ok {
			byProduct = make(map[string]int)
			counts[cluster] = byProduct
		}
		for _, p := range holdings.products[customer] {
			byProduct[p]++
		}
	}

	t := &AffinityTable{ranking: make(map[int][]ProductCount, len(counts))}
	for cluster, byProduct := range counts {
		ranked := make([]ProductCount, 0, len(byProduct))
		for p, n := range byProduct {
			ranked = append(ranked, ProductCount{Product: p, Count: n})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Count != ranked[j].Count {
				return ranked[i].Count > ranked[j].Count
			}
			return holdings.order[ranked[i].Product] < holdings.order[ranked[j].Product]
		})
		t.ranking[cluster] = ranked
	}
	return t
}

// Ranking returns the ranked products of a cluster.
func (t *AffinityTable) Ranking(cluster int) []ProductCount {
	return append([]ProductCount(nil), t.ranking[cluster]...)
}

// Clusters returns the clusters that have at least one ranked product, ascending.
func (t *AffinityTable) Clusters() []int {
	out := make([]int, 0, len(t.ranking))
	for c := range t.ranking {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}
