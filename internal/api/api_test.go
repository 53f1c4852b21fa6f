// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/segmatch/internal/pipeline"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeRuns struct{ last *pipeline.Summary }

func (f fakeRuns) Last() *pipeline.Summary { return f.last }

func serve(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp APIResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec, resp
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantOK     bool
	}{
		{"no database", nil, http.StatusOK, true},
		{"database ok", fakePinger{}, http.StatusOK, true},
		{"database down", fakePinger{err: errors.New("closed")}, http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(NewHandler(tt.db, fakeRuns{}))
			rec, resp := serve(t, router, "/healthz")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if resp.Success != tt.wantOK {
				t.Errorf("success = %v, want %v", resp.Success, tt.wantOK)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("X-Request-ID header missing")
			}
		})
	}
}

func TestLatestRun(t *testing.T) {
	t.Run("before first run", func(t *testing.T) {
		rec, resp := serve(t, NewRouter(NewHandler(nil, fakeRuns{})), "/api/v1/runs/latest")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
		if resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
			t.Errorf("error = %+v, want %s", resp.Error, ErrCodeNotFound)
		}
	})

	t.Run("after a run", func(t *testing.T) {
		last := &pipeline.Summary{RunID: "run-1", Status: pipeline.StatusSuccess, Customers: 12}
		rec, _ := serve(t, NewRouter(NewHandler(nil, fakeRuns{last: last})), "/api/v1/runs/latest")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var body struct {
			Data pipeline.Summary `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Data.RunID != "run-1" || body.Data.Customers != 12 {
			t.Errorf("data = %+v, want run-1 with 12 customers", body.Data)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(NewHandler(nil, nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "segmatch_") {
		t.Error("metrics output has no segmatch_ series")
	}
}
