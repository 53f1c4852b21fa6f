// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Error type labels for StageErrors.
const (
	ErrorTypeMissingKey       = "missing_key"
	ErrorTypeMissingArtifact  = "missing_artifact"
	ErrorTypeInsufficientData = "insufficient_data"
	ErrorTypeInternal         = "internal"
)

var (
	// Pipeline Metrics
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "segmatch_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"stage"},
	)

	StageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segmatch_stage_errors_total",
			Help: "Total number of stage errors and degradations",
		},
		[]string{"stage", "error_type"},
	)

	RowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segmatch_rows_processed_total",
			Help: "Total number of rows written per table",
		},
		[]string{"table"},
	)

	InspectionTables = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segmatch_inspection_tables_total",
			Help: "Total number of tables routed to inspection for lacking a customer key",
		},
		[]string{"table"},
	)

	LastRunSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "segmatch_last_run_success_timestamp",
			Help: "Unix timestamp of the last successful pipeline run",
		},
	)

	// Clustering Metrics
	ClusterCandidateScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "segmatch_cluster_candidate_score",
			Help: "Silhouette score of each evaluated cluster count",
		},
		[]string{"k"},
	)

	ClusterCandidatesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segmatch_cluster_candidates_skipped_total",
			Help: "Total number of skipped cluster count candidates",
		},
		[]string{"reason"},
	)

	SelectedK = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "segmatch_selected_k",
			Help: "Cluster count selected by the last run",
		},
	)

	CustomersClustered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "segmatch_customers_clustered",
			Help: "Number of customers in the last cluster assignment",
		},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "segmatch_recommendations_total",
			Help: "Total number of recommended products emitted",
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "segmatch_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segmatch_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segmatch_api_requests_total",
			Help: "Total number of ops API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "segmatch_api_request_duration_seconds",
			Help:    "Ops API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "segmatch_api_active_requests",
			Help: "Current number of active ops API requests",
		},
	)
)

// RecordStage records a stage duration and, for a non-nil error, an internal error.
// Classified failures are recorded separately with RecordStageError.
func RecordStage(stage string, duration time.Duration, err error) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		StageErrors.WithLabelValues(stage, ErrorTypeInternal).Inc()
	}
}

// RecordStageError records a classified stage error or degradation.
func RecordStageError(stage, errorType string) {
	StageErrors.WithLabelValues(stage, errorType).Inc()
}

// RecordRows records rows written to a table.
func RecordRows(table string, rows int) {
	RowsProcessed.WithLabelValues(table).Add(float64(rows))
}

// RecordInspection records a table routed to inspection.
func RecordInspection(table string) {
	InspectionTables.WithLabelValues(table).Inc()
}

// RecordCandidate records a cluster candidate outcome. A non-empty skipReason
// marks the candidate as skipped.
func RecordCandidate(k int, score float64, skipReason string) {
	if skipReason != "" {
		ClusterCandidatesSkipped.WithLabelValues(skipReason).Inc()
		return
	}
	ClusterCandidateScore.WithLabelValues(strconv.Itoa(k)).Set(score)
}

// RecordSelection records the chosen cluster count and labeled customers.
func RecordSelection(k, customers int) {
	SelectedK.Set(float64(k))
	CustomersClustered.Set(float64(customers))
}

// RecordRecommendations records emitted recommended products.
func RecordRecommendations(n int) {
	RecommendationsTotal.Add(float64(n))
}

// RecordRunSuccess stamps the last successful run.
func RecordRunSuccess(at time.Time) {
	LastRunSuccess.Set(float64(at.Unix()))
}

// RecordDBQuery records a DuckDB query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
