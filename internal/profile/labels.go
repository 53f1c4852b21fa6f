// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package profile

import (
	"math"
	"sort"
	"strings"

	"github.com/tomtom215/segmatch/internal/features"
)

// Bucket is a tercile classification.
type Bucket string

// Tercile buckets.
const (
	Low    Bucket = "Low"
	Medium Bucket = "Medium"
	High   Bucket = "High"
)

// Metric names a headline metric and the feature column it is read from.
type Metric struct {
	Name   string
	Column string
}

// DefaultHeadline lists the headline metrics in label order.
var DefaultHeadline = []Metric{
	{Name: "Revenue", Column: features.ColumnMRR},
	{Name: "Satisfaction", Column: features.ColumnSatisfaction},
	{Name: "Acquisition", Column: features.ColumnAcquisitionCount},
}

// maxDescriptors caps the number of descriptors in a label.
const maxDescriptors = 3

// Percentile returns the p-th percentile of values with linear interpolation
// between closest ranks. It returns NaN for an empty slice.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Classify buckets v against the tercile cut points. A missing value is Medium.
func Classify(v float64, valid bool, q33, q67 float64) Bucket {
	if !valid || math.IsNaN(v) {
		return Medium
	}
	if v <= q33 {
		return Low
	}
	if v >= q67 {
		return High
	}
	return Medium
}

// Label joins up to three "<Metric> <Bucket>" descriptors with ", ".
func Label(values []MetricValue) string {
	parts := make([]string, 0, maxDescriptors)
	for _, v := range values {
		if len(parts) == maxDescriptors {
			break
		}
		parts = append(parts, v.Metric+" "+string(v.Bucket))
	}
	return strings.Join(parts, ", ")
}
