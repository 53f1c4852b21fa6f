// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/segmatch/internal/metrics"
	"github.com/tomtom215/segmatch/internal/table"
)

// SaveTable replaces the named table with the contents of t. Columns whose
// non-null cells are all numeric are stored as DOUBLE, everything else as VARCHAR.
func (db *DB) SaveTable(ctx context.Context, t *table.Table) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if t.Name == "" {
		return fmt.Errorf("table has no name")
	}
	columns := t.Columns()
	if len(columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.Name)
	}

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("save", t.Name, time.Since(start), err)
	}()

	numeric := make([]bool, len(columns))
	defs := make([]string, len(columns))
	for i, col := range columns {
		numeric[i] = isNumericColumn(t.Column(col))
		typ := "VARCHAR"
		if numeric[i] {
			typ = "DOUBLE"
		}
		defs[i] = quoteIdent(col) + " " + typ
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				db.logger.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	ddl := fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", quoteIdent(t.Name), strings.Join(defs, ", "))
	if _, err = tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", t.Name, err)
	}

	if t.Len() > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
		stmt, prepErr := tx.PrepareContext(ctx,
			fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(t.Name), placeholders))
		if prepErr != nil {
			err = fmt.Errorf("failed to prepare insert into %s: %w", t.Name, prepErr)
			return err
		}
		defer closeQuietly(stmt)

		args := make([]any, len(columns))
		for r := 0; r < t.Len(); r++ {
			for c, cell := range t.Row(r) {
				args[c] = cellArg(cell, numeric[c])
			}
			if _, err = stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("failed to insert row %d into %s: %w", r, t.Name, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", t.Name, err)
	}

	metrics.RecordRows(t.Name, t.Len())
	db.logger.Debug().Str("table", t.Name).Int("rows", t.Len()).Msg("Table saved")
	return nil
}

// LoadTable reads a stored table. DOUBLE and integer columns come back as
// numeric cells, everything else as text.
func (db *DB) LoadTable(ctx context.Context, name string) (*table.Table, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	exists, err := db.HasTable(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &MissingArtifactError{Name: name}
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name))
	if err != nil {
		metrics.RecordDBQuery("load", name, time.Since(start), err)
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer closeQuietly(rows)

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}

	t := table.New(name, columns)
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", name, err)
		}
		cells := make([]table.Cell, len(columns))
		for i, v := range values {
			cells[i] = toCell(v)
		}
		if err := t.AppendRow(cells); err != nil {
			return nil, err
		}
	}
	err = rows.Err()
	metrics.RecordDBQuery("load", name, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return t, nil
}

// HasTable reports whether a table with the given name exists.
func (db *DB) HasTable(ctx context.Context, name string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?", name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return n > 0, nil
}

// DropTable removes a table if it exists.
func (db *DB) DropTable(ctx context.Context, name string) error {
	if _, err := db.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", name, err)
	}
	return nil
}

func isNumericColumn(cells []table.Cell) bool {
	seen := false
	for _, c := range cells {
		if !c.Valid {
			continue
		}
		if !c.Numeric {
			return false
		}
		seen = true
	}
	return seen
}

func cellArg(c table.Cell, numeric bool) any {
	if !c.Valid {
		return nil
	}
	if numeric {
		return c.Num
	}
	return c.Value
}

func toCell(v any) table.Cell {
	switch x := v.(type) {
	case nil:
		return table.Null
	case float64:
		return table.Float(x)
	case float32:
		return table.Float(float64(x))
	case int64:
		return table.Float(float64(x))
	case int32:
		return table.Float(float64(x))
	case int16:
		return table.Float(float64(x))
	case int8:
		return table.Float(float64(x))
	case int:
		return table.Float(float64(x))
	case string:
		return table.Str(x)
	case []byte:
		return table.Str(string(x))
	case bool:
		if x {
			return table.Str("true")
		}
		return table.Str("false")
	case time.Time:
		return table.Str(x.Format(time.RFC3339))
	default:
		return table.Str(fmt.Sprint(x))
	}
}
