// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package features

import "math"

// Scaling holds the per-column statistics used by Standardize.
type Scaling struct {
	Mean []float64
	Std  []float64
}

// Standardize rescales every column of m to zero mean and unit variance
// using the population standard deviation of m itself. Constant columns
// become all zeros. m is not modified.
func Standardize(m *Matrix) ([][]float64, Scaling) {
	n := len(m.Rows)
	d := len(m.Names)
	s := Scaling{Mean: make([]float64, d), Std: make([]float64, d)}
	out := make([][]float64, n)
	if n == 0 {
		return out, s
	}

	for _, row := range m.Rows {
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= float64(n)
	}
	for _, row := range m.Rows {
		for j, v := range row {
			diff := v - s.Mean[j]
			s.Std[j] += diff * diff
		}
	}
	for j := range s.Std {
		s.Std[j] = math.Sqrt(s.Std[j] / float64(n))
	}

	for i, row := range m.Rows {
		scaled := make([]float64, d)
		for j, v := range row {
			if s.Std[j] == 0 {
				continue
			}
			scaled[j] = (v - s.Mean[j]) / s.Std[j]
		}
		out[i] = scaled
	}
	return out, s
}
