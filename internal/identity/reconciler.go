// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

// Package identity resolves the canonical customer key of a source table.
//
// Sources name the customer identifier differently (CD_CLIENTE, IdCliente,
// metadata_codcliente, ...). The reconciler walks a priority-ordered list of
// candidate columns and copies the first one present into the canonical key
// column. The first-match-wins rule is a deliberate tie-break policy: when a
// table carries several candidate columns, the highest-priority one is used
// verbatim and the others are ignored.
package identity

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/segmatch/internal/table"
)

// DefaultCanonicalKey is the canonical customer key column.
const DefaultCanonicalKey = "customer_id"

// DefaultCandidates lists the source key columns in priority order.
var DefaultCandidates = []string{
	"CD_CLIENTE",
	"CLIENTE",
	"IdCliente",
	"ID_CLIENTE",
	"COD_CLIENTE",
	"CODIGO_CLIENTE",
	"CD_CLI",
	"metadata_codcliente",
}

// Status describes how a table's key was resolved.
type Status int

const (
	// StatusAlreadyKeyed means the canonical column was already present.
	StatusAlreadyKeyed Status = iota
	// StatusCopied means a candidate column was copied into the canonical column.
	StatusCopied
	// StatusMissingKey means no candidate column was found.
	StatusMissingKey
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusAlreadyKeyed:
		return "already_keyed"
	case StatusCopied:
		return "copied"
	case StatusMissingKey:
		return "missing_key"
	default:
		return "unknown"
	}
}

// Result is the outcome of reconciling a single table.
type Result struct {
	// Table is the reconciled table. It is the input table itself when
	// nothing had to be copied, and a new table otherwise.
	Table *table.Table

	// Source is the candidate column the key was copied from (StatusCopied only).
	Source string

	// Status tells whether the key was present, copied, or missing.
	Status Status
}

// Keyed reports whether the resulting table carries the canonical key.
func (r Result) Keyed() bool {
	return r.Status != StatusMissingKey
}

// Reconciler resolves the canonical key from candidate columns.
type Reconciler struct {
	canonical  string
	candidates []string
	logger     zerolog.Logger
}

// NewReconciler creates a reconciler. Empty arguments fall back to
// DefaultCanonicalKey and DefaultCandidates.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReconciler(canonical string, candidates []string, logger zerolog.Logger) *Reconciler {
	if canonical == "" {
		canonical = DefaultCanonicalKey
	}
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	c := make([]string, len(candidates))
	copy(c, candidates)

	return &Reconciler{
		canonical:  canonical,
		candidates: c,
		logger:     logger.With().Str("component", "identity").Logger(),
	}
}

// CanonicalKey returns the canonical key column name.
func (r *Reconciler) CanonicalKey() string {
	return r.canonical
}

// Reconcile resolves the canonical key of t. It never mutates t.
func (r *Reconciler) Reconcile(t *table.Table) Result {
	if t.HasColumn(r.canonical) {
		return Result{Table: t, Status: StatusAlreadyKeyed}
	}

	for _, c := range r.candidates {
		if !t.HasColumn(c) {
			continue
		}
		out, err := t.WithColumn(r.canonical, t.Column(c))
		if err != nil {
			// Column length always matches the table's own row count.
			break
		}
		r.logger.Debug().
			Str("table", t.Name).
			Str("source_column", c).
			Msg("customer key copied from candidate column")
		return Result{Table: out, Source: c, Status: StatusCopied}
	}

	r.logger.Warn().
		Str("table", t.Name).
		Strs("candidates", r.candidates).
		Msg("no customer key column found")
	return Result{Table: t, Status: StatusMissingKey}
}
