// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tomtom215/segmatch/internal/metrics"
)

// Export formats.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// Export writes a table to dir/<name>.<format> and returns the file path.
func (db *DB) Export(ctx context.Context, name, dir, format string) (string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var options string
	switch format {
	case FormatCSV:
		options = "FORMAT CSV, HEADER true"
	case FormatParquet:
		options = "FORMAT PARQUET, COMPRESSION 'ZSTD'"
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}

	exists, err := db.HasTable(ctx, name)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", &MissingArtifactError{Name: name}
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+"."+format)

	start := time.Now()
	query := fmt.Sprintf("COPY %s TO %s (%s)", quoteIdent(name), quoteLiteral(path), options)
	_, err = db.conn.ExecContext(ctx, query)
	metrics.RecordDBQuery("export", name, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", name, err)
	}

	db.logger.Debug().Str("table", name).Str("path", path).Msg("Table exported")
	return path, nil
}
