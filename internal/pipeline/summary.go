// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/segmatch/internal/etl"
)

// SummaryFile is the run summary written next to the exports.
const SummaryFile = "run_summary.json"

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Summary describes one pipeline run.
type Summary struct {
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMs int64     `json:"duration_ms"`

	// Error is set for failed runs and names the missing input when the
	// failure is a missing artifact.
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`

	Stages []StageResult `json:"stages"`

	Customers       int      `json:"customers"`
	Features        []string `json:"features,omitempty"`
	DroppedFeatures []string `json:"dropped_features,omitempty"`

	Selection *SelectionSummary `json:"selection,omitempty"`
	Clusters  []ClusterSummary  `json:"clusters,omitempty"`

	Recommendations RecommendationSummary `json:"recommendations"`

	Outputs []OutputSummary `json:"outputs,omitempty"`
}

// StageResult is the outcome of one timed stage.
type StageResult struct {
	Name       string      `json:"name"`
	DurationMs int64       `json:"duration_ms"`
	Error      string      `json:"error,omitempty"`
	ErrorType  string      `json:"error_type,omitempty"`
	Report     *etl.Report `json:"report,omitempty"`
}

// SelectionSummary is the chosen cluster count and every evaluated candidate.
type SelectionSummary struct {
	K          int                `json:"k"`
	Silhouette float64            `json:"silhouette"`
	Degenerate bool               `json:"degenerate,omitempty"`
	Candidates []CandidateSummary `json:"candidates"`
}

// CandidateSummary is one evaluated k.
type CandidateSummary struct {
	K          int     `json:"k"`
	Silhouette float64 `json:"silhouette,omitempty"`
	Skipped    bool    `json:"skipped,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// ClusterSummary is the size and label of one cluster.
type ClusterSummary struct {
	Cluster int    `json:"cluster"`
	Size    int    `json:"size"`
	Label   string `json:"label"`
}

// RecommendationSummary counts the recommendation output.
type RecommendationSummary struct {
	Customers   int `json:"customers"`
	Products    int `json:"products"`
	Empty       int `json:"empty"`
	Unclustered int `json:"unclustered"`
}

// OutputSummary is one written output table.
type OutputSummary struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
	File  string `json:"file,omitempty"`
}

// Failed reports whether the run ended with an error.
func (s *Summary) Failed() bool {
	return s.Status == StatusFailed
}

// writeSummary writes the summary as indented JSON to dir/run_summary.json.
func writeSummary(dir string, s *Summary) (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode run summary: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, SummaryFile)
	if err := os.WriteFile(path, data, 0o600); err != nil { //nolint:gosec // path is built from configured output dir
		return "", fmt.Errorf("write run summary: %w", err)
	}
	return path, nil
}
