// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/segmatch/internal/logging"
	"github.com/tomtom215/segmatch/internal/pipeline"
)

// Pinger checks the store. *database.DB satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunSource exposes the latest run. *pipeline.Pipeline satisfies it.
type RunSource interface {
	Last() *pipeline.Summary
}

// Handler serves the ops endpoints.
type Handler struct {
	db        Pinger
	runs      RunSource
	startTime time.Time
}

// NewHandler creates the ops handler. db may be nil, in which case health
// reports only liveness.
func NewHandler(db Pinger, runs RunSource) *Handler {
	return &Handler{db: db, runs: runs, startTime: time.Now()}
}

// HealthStatus is the /healthz payload.
type HealthStatus struct {
	Status        string  `json:"status"`
	Database      string  `json:"database"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	LastRunID     string  `json:"last_run_id,omitempty"`
	LastRunStatus string  `json:"last_run_status,omitempty"`
}

// Healthz reports liveness and store reachability. An unreachable store
// answers 503.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	status := HealthStatus{
		Status:        "ok",
		Database:      "unconfigured",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.runs != nil {
		if last := h.runs.Last(); last != nil {
			status.LastRunID = last.RunID
			status.LastRunStatus = last.Status
		}
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check: database unreachable")
			rw.ServiceUnavailable("database unreachable")
			return
		}
		status.Database = "ok"
	}
	rw.Success(status)
}

// LatestRun returns the summary of the most recent pipeline run.
func (h *Handler) LatestRun(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.runs == nil {
		rw.NotFound("no pipeline run yet")
		return
	}
	last := h.runs.Last()
	if last == nil {
		rw.NotFound("no pipeline run yet")
		return
	}
	rw.Success(last)
}
