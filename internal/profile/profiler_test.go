// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package profile

import (
	"math"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/segmatch/internal/features"
	"github.com/tomtom215/segmatch/internal/table"
)

func matrixFor(t *testing.T, base *table.Table) *features.Matrix {
	t.Helper()
	m, err := features.NewBuilder(features.Config{Categorical: []string{}}, zerolog.Nop()).Build(base)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return m
}

func TestProfile_MeansAndLabels(t *testing.T) {
	base := table.FromRows("base",
		[]string{"customer_id", "MRR_12M", "NPS_MEDIO", "QTD_CONTRATACOES_12M", "DS_SEGMENTO"},
		[][]string{
			{"a", "100", "9", "1", "Varejo"},
			{"b", "120", "8", "1", "Varejo"},
			{"c", "500", "5", "3", "Industria"},
			{"d", "900", "1", "9", "Industria"},
			{"e", "1000", "2", "7", "Varejo"},
		})
	m := matrixFor(t, base)
	labels := []int{0, 0, 1, 2, 2}

	res, err := NewProfiler(Config{}, zerolog.Nop()).Profile(m, labels, base)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if len(res.Profiles) != 3 {
		t.Fatalf("len(Profiles) = %d, want 3", len(res.Profiles))
	}

	mrr := m.ColumnIndex("MRR_12M")
	wantMRR := []float64{110, 500, 950}
	for i, p := range res.Profiles {
		if p.Means[mrr] != wantMRR[i] {
			t.Errorf("cluster %d MRR mean = %v, want %v", p.Cluster, p.Means[mrr], wantMRR[i])
		}
	}

	wantLabels := []string{
		"Revenue Low, Satisfaction High, Acquisition Low",
		"Revenue Medium, Satisfaction Medium, Acquisition Medium",
		"Revenue High, Satisfaction Low, Acquisition High",
	}
	for i, p := range res.Profiles {
		if p.Label != wantLabels[i] {
			t.Errorf("cluster %d label = %q, want %q", p.Cluster, p.Label, wantLabels[i])
		}
	}

	wantCounts := []SegmentCount{
		{Cluster: 0, Segment: "Varejo", Count: 2},
		{Cluster: 1, Segment: "Industria", Count: 1},
		{Cluster: 2, Segment: "Industria", Count: 1},
		{Cluster: 2, Segment: "Varejo", Count: 1},
	}
	if !reflect.DeepEqual(res.SegmentCounts, wantCounts) {
		t.Errorf("SegmentCounts = %+v, want %+v", res.SegmentCounts, wantCounts)
	}
}

func TestProfile_SingletonCluster(t *testing.T) {
	base := table.FromRows("base", []string{"customer_id", "MRR_12M"}, [][]string{{"only", "42"}})
	m := matrixFor(t, base)

	res, err := NewProfiler(Config{}, zerolog.Nop()).Profile(m, []int{0}, nil)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if len(res.Profiles) != 1 || res.Profiles[0].Size != 1 {
		t.Fatalf("Profiles = %+v, want one singleton", res.Profiles)
	}
	if res.Profiles[0].Means[0] != 42 {
		t.Errorf("mean = %v, want 42", res.Profiles[0].Means[0])
	}
	if res.Profiles[0].Label != "Revenue Low" {
		t.Errorf("Label = %q, want %q", res.Profiles[0].Label, "Revenue Low")
	}
}

func TestProfile_MissingSatisfactionOmitted(t *testing.T) {
	base := table.FromRows("base",
		[]string{"customer_id", "MRR_12M", "QTD_CONTRATACOES_12M"},
		[][]string{{"a", "1", "1"}, {"b", "2", "2"}, {"c", "9", "9"}})
	m := matrixFor(t, base)

	res, err := NewProfiler(Config{}, zerolog.Nop()).Profile(m, []int{0, 0, 1}, nil)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	for _, p := range res.Profiles {
		for _, h := range p.Headline {
			if h.Metric == "Satisfaction" {
				t.Errorf("cluster %d has a satisfaction metric, want none", p.Cluster)
			}
		}
		if len(p.Headline) != 2 {
			t.Errorf("cluster %d headline count = %d, want 2", p.Cluster, len(p.Headline))
		}
	}
	if got := res.Profiles[1].Label; got != "Revenue High, Acquisition High" {
		t.Errorf("Label = %q, want %q", got, "Revenue High, Acquisition High")
	}
	if m.ColumnIndex("NPS_MEDIO") != -1 {
		t.Error("satisfaction should not be a feature")
	}
}

func TestProfile_ClusterWithoutObservationsIsMedium(t *testing.T) {
	base := table.FromRows("base",
		[]string{"customer_id", "MRR_12M", "NPS_MEDIO"},
		[][]string{{"a", "1", "2"}, {"b", "5", "9"}, {"c", "9", ""}})
	m := matrixFor(t, base)

	res, err := NewProfiler(Config{}, zerolog.Nop()).Profile(m, []int{0, 1, 2}, nil)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	sat := res.Profiles[2].Headline[1]
	if sat.Valid || sat.Bucket != Medium {
		t.Errorf("satisfaction = %+v, want invalid Medium", sat)
	}
}

func TestProfile_LabelCountMismatch(t *testing.T) {
	base := table.FromRows("base", []string{"customer_id", "MRR_12M"}, [][]string{{"a", "1"}})
	m := matrixFor(t, base)
	if _, err := NewProfiler(Config{}, zerolog.Nop()).Profile(m, []int{0, 1}, nil); err == nil {
		t.Error("Profile() error = nil, want mismatch error")
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		values []float64
		p      float64
		want   float64
	}{
		{[]float64{1, 2, 3, 4}, 33, 1.99},
		{[]float64{1, 2, 3, 4}, 67, 3.01},
		{[]float64{5}, 33, 5},
		{[]float64{3, 1, 2}, 50, 2},
	}
	for _, tt := range tests {
		got := Percentile(tt.values, tt.p)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%v, %v) = %v, want %v", tt.values, tt.p, got, tt.want)
		}
	}
	if !math.IsNaN(Percentile(nil, 33)) {
		t.Error("Percentile(nil) should be NaN")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		v     float64
		valid bool
		want  Bucket
	}{
		{1, true, Low},
		{2, true, Low},
		{3, true, Medium},
		{4, true, High},
		{9, true, High},
		{0, false, Medium},
		{math.NaN(), true, Medium},
	}
	for _, tt := range tests {
		if got := Classify(tt.v, tt.valid, 2, 4); got != tt.want {
			t.Errorf("Classify(%v, %v) = %v, want %v", tt.v, tt.valid, got, tt.want)
		}
	}
}

func TestLabel_CapsDescriptors(t *testing.T) {
	values := []MetricValue{
		{Metric: "A", Bucket: Low},
		{Metric: "B", Bucket: High},
		{Metric: "C", Bucket: Medium},
		{Metric: "D", Bucket: Low},
	}
	if got := Label(values); got != "A Low, B High, C Medium" {
		t.Errorf("Label() = %q", got)
	}
	if got := Label(nil); got != "" {
		t.Errorf("Label(nil) = %q, want empty", got)
	}
}
