// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tomtom215/segmatch/internal/metrics"
	"github.com/tomtom215/segmatch/internal/table"
)

// Encodings accepted by read_csv, in fallback order.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

// CSVOptions controls how a raw delimited file is read.
type CSVOptions struct {
	// Delimiter is the field separator. Default: ";"
	Delimiter string

	// Name is the resulting table name. Default: file base name without extension.
	Name string
}

// LoadCSV reads a delimited file with every column as text. Malformed lines
// are skipped. Files that are not valid UTF-8 are read as latin-1; if the
// detected encoding fails the other one is tried.
func (db *DB) LoadCSV(ctx context.Context, path string, opts CSVOptions) (*table.Table, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingArtifactError{Name: path}
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	delim := opts.Delimiter
	if delim == "" {
		delim = ";"
	}
	name := opts.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	encodings := []string{EncodingUTF8, EncodingLatin1}
	if !utf8.Valid(raw) {
		encodings = []string{EncodingLatin1, EncodingUTF8}
	}

	var lastErr error
	for _, enc := range encodings {
		start := time.Now()
		t, readErr := db.readCSV(ctx, path, name, delim, enc)
		metrics.RecordDBQuery("read_csv", name, time.Since(start), readErr)
		if readErr == nil {
			db.logger.Debug().
				Str("file", path).
				Str("encoding", enc).
				Int("rows", t.Len()).
				Int("columns", len(t.Columns())).
				Msg("CSV loaded")
			return t, nil
		}
		lastErr = readErr
		db.logger.Debug().Err(readErr).Str("file", path).Str("encoding", enc).Msg("CSV read failed")
	}
	return nil, fmt.Errorf("failed to read %s: %w", path, lastErr)
}

func (db *DB) readCSV(ctx context.Context, path, name, delim, encoding string) (*table.Table, error) {
	query := fmt.Sprintf(
		`SELECT * FROM read_csv(%s, delim = %s, header = true, all_varchar = true, ignore_errors = true, encoding = %s)`,
		quoteLiteral(path), quoteLiteral(delim), quoteLiteral(encoding))

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	t := table.New(name, columns)
	values := make([]sql.NullString, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		cells := make([]table.Cell, len(columns))
		for i, v := range values {
			if v.Valid {
				cells[i] = table.Str(v.String)
			}
		}
		if err := t.AppendRow(cells); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}
