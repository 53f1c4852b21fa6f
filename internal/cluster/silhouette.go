// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package cluster

import "math"

// Silhouette returns the mean silhouette coefficient of a labeling, using
// Euclidean distance. Points in singleton clusters score 0. The result lies
// in [-1, 1]; it is 0 when fewer than two clusters are populated.
func Silhouette(points [][]float64, labels []int) float64 {
	n := len(points)
	if n == 0 {
		return 0
	}

	dense, sizes := denseLabels(labels)
	k := len(sizes)
	if k < 2 {
		return 0
	}

	total := 0.0
	sums := make([]float64, k)
	for i := 0; i < n; i++ {
		clear(sums)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			sums[dense[j]] += math.Sqrt(sqDist(points[i], points[j]))
		}

		own := dense[i]
		if sizes[own] == 1 {
			continue
		}
		a := sums[own] / float64(sizes[own]-1)

		b := math.Inf(1)
		for c, size := range sizes {
			if c == own {
				continue
			}
			if mean := sums[c] / float64(size); mean < b {
				b = mean
			}
		}

		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n)
}

// denseLabels maps labels onto 0..k-1 in order of first appearance and
// returns the mapped labels with their cluster sizes.
func denseLabels(labels []int) (dense, sizes []int) {
	index := make(map[int]int)
	dense = make([]int, len(labels))
	for i, l := range labels {
		d, ok := index[l]
		if !ok {
			d = len(index)
			index[l] = d
			sizes = append(sizes, 0)
		}
		dense[i] = d
		sizes[d]++
	}
	return dense, sizes
}
