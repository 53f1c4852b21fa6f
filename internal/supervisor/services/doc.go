// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

// Package services wraps long-running components as suture services.
//
// PipelineService runs the segmentation pipeline on a ticker. A failed run
// is logged and retried on the next tick; it never restarts the service.
// HTTPServerService adapts http.Server's blocking ListenAndServe to
// suture's context-aware Serve.
package services
