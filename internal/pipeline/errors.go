// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package pipeline

import (
	"context"
	"errors"

	"github.com/tomtom215/segmatch/internal/cluster"
	"github.com/tomtom215/segmatch/internal/database"
	"github.com/tomtom215/segmatch/internal/etl"
	"github.com/tomtom215/segmatch/internal/features"
	"github.com/tomtom215/segmatch/internal/metrics"
)

// ErrorTypeCanceled labels runs stopped by cancellation or the run deadline.
const ErrorTypeCanceled = "canceled"

// Classify maps an error to its taxonomy class, using the metrics error type
// labels. Unknown errors are internal.
//
//	missing_key        a table without a customer key (recorded, never fatal)
//	insufficient_data  too little data to cluster or to build features
//	missing_artifact   a required file or table is absent
//	canceled           the caller canceled or the run deadline passed
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, database.ErrMissingArtifact):
		return metrics.ErrorTypeMissingArtifact
	case errors.Is(err, etl.ErrMissingKey), errors.Is(err, features.ErrMissingKey):
		return metrics.ErrorTypeMissingKey
	case errors.Is(err, cluster.ErrInsufficientData),
		errors.Is(err, cluster.ErrNoPoints),
		errors.Is(err, features.ErrEmptyMatrix),
		errors.Is(err, features.ErrNoFeatures):
		return metrics.ErrorTypeInsufficientData
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeCanceled
	default:
		return metrics.ErrorTypeInternal
	}
}

// stageAbort reports whether a source stage error ends only that stage.
func stageAbort(err error) bool {
	return errors.Is(err, database.ErrMissingArtifact)
}
