// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

// Package api provides the ops HTTP surface using the chi router: health,
// Prometheus metrics, and the latest run summary.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/segmatch/internal/middleware"
)

// NewRouter builds the ops router.
//
//	GET /healthz              liveness and store reachability
//	GET /metrics              Prometheus exposition
//	GET /api/v1/runs/latest   latest run summary
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Get("/healthz", h.Healthz)
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/runs/latest", h.LatestRun)
		})
	})

	return r
}
