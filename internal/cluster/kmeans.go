// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package cluster

import (
	"math"
	"math/rand"
)

// KMeansConfig controls a single k-means run.
type KMeansConfig struct {
	// K is the number of clusters.
	K int

	// Seed drives k-means++ seeding and empty-cluster recovery.
	Seed int64

	// MaxIterations bounds the number of Lloyd iterations.
	MaxIterations int

	// Tolerance stops iteration once the total squared centroid shift
	// falls below it.
	Tolerance float64
}

// KMeansResult is the outcome of a k-means run.
type KMeansResult struct {
	Labels     []int
	Centroids  [][]float64
	Inertia    float64
	Iterations int
}

// KMeans partitions points into cfg.K clusters with k-means++ seeding and
// Lloyd iterations. Given equal inputs and seed the result is identical.
// points must be non-empty with K <= len(points).
func KMeans(points [][]float64, cfg KMeansConfig) KMeansResult {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 300
	}
	if cfg.Tolerance < 0 {
		cfg.Tolerance = 0
	}

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic seeding, not security
	centroids := seedPlusPlus(points, cfg.K, rng)
	labels := make([]int, len(points))
	dim := len(points[0])

	iter := 0
	for iter < cfg.MaxIterations {
		iter++
		assign(points, centroids, labels)

		next := make([][]float64, cfg.K)
		counts := make([]int, cfg.K)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, p := range points {
			c := labels[i]
			counts[c]++
			for j, v := range p {
				next[c][j] += v
			}
		}
		reseedEmpty(points, centroids, labels, next, counts)
		for c := range next {
			if counts[c] == 0 {
				copy(next[c], centroids[c])
				continue
			}
			for j := range next[c] {
				next[c][j] /= float64(counts[c])
			}
		}

		shift := 0.0
		for c := range centroids {
			shift += sqDist(centroids[c], next[c])
		}
		centroids = next
		if shift <= cfg.Tolerance {
			break
		}
	}

	inertia := assign(points, centroids, labels)
	return KMeansResult{
		Labels:     labels,
		Centroids:  centroids,
		Inertia:    inertia,
		Iterations: iter,
	}
}

// seedPlusPlus picks k initial centroids with D² weighting.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := points[rng.Intn(len(points))]
	centroids = append(centroids, cloneVec(first))

	dist := make([]float64, len(points))
	for i, p := range points {
		dist[i] = sqDist(p, first)
	}

	for len(centroids) < k {
		total := 0.0
		for _, d := range dist {
			total += d
		}

		idx := 0
		if total == 0 {
			idx = rng.Intn(len(points))
		} else {
			r := rng.Float64() * total
			for i, d := range dist {
				r -= d
				if r <= 0 && d > 0 {
					idx = i
					break
				}
				idx = i
			}
		}

		c := cloneVec(points[idx])
		centroids = append(centroids, c)
		for i, p := range points {
			if d := sqDist(p, c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centroids
}

// assign sets each label to its nearest centroid and returns the inertia.
// Ties go to the lowest centroid index.
func assign(points, centroids [][]float64, labels []int) float64 {
	inertia := 0.0
	for i, p := range points {
		best, bestDist := 0, math.Inf(1)
		for c, cent := range centroids {
			if d := sqDist(p, cent); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
		inertia += bestDist
	}
	return inertia
}

// reseedEmpty gives every empty cluster the point farthest from its current
// centroid. The point is removed from its donor's sums and counts, and no
// point seeds two clusters. sums and counts are updated in place.
func reseedEmpty(points, centroids [][]float64, labels []int, sums [][]float64, counts []int) {
	used := make(map[int]struct{})
	for c := range sums {
		if counts[c] > 0 {
			continue
		}
		far, ok := farthestPoint(points, centroids, labels, counts, used)
		if !ok {
			continue
		}
		donor := labels[far]
		for j, v := range points[far] {
			sums[donor][j] -= v
		}
		counts[donor]--
		copy(sums[c], points[far])
		counts[c] = 1
		labels[far] = c
		used[far] = struct{}{}
	}
}

// farthestPoint returns the point farthest from its own centroid, skipping
// points already used for reseeding and points whose cluster would be left
// empty. ok is false when no point qualifies.
func farthestPoint(points, centroids [][]float64, labels, counts []int, used map[int]struct{}) (far int, ok bool) {
	farDist := -1.0
	for i, p := range points {
		if _, skip := used[i]; skip || counts[labels[i]] < 2 {
			continue
		}
		if d := sqDist(p, centroids[labels[i]]); d > farDist {
			far, farDist, ok = i, d, true
		}
	}
	return far, ok
}

func sqDist(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func cloneVec(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
