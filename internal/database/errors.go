// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package database

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMissingArtifact matches any *MissingArtifactError with errors.Is.
var ErrMissingArtifact = errors.New("missing upstream artifact")

// ErrUnknownOutput is returned when writing to a table with no registered schema.
var ErrUnknownOutput = errors.New("unknown output table")

// MissingArtifactError reports a required file or table that does not exist.
type MissingArtifactError struct {
	Name string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("missing upstream artifact: %s", e.Name)
}

// Is makes errors.Is(err, ErrMissingArtifact) true.
func (e *MissingArtifactError) Is(target error) bool {
	return target == ErrMissingArtifact
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// quoteIdent quotes a SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral quotes a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
