// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

// Package middleware provides the HTTP middleware of the ops API: request ID
// propagation into the logging context and Prometheus request metrics.
//
// Both are plain func(http.Handler) http.Handler and plug into chi directly:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID)
//	r.Use(middleware.PrometheusMetrics)
package middleware
