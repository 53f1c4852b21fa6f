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
)

// OutputSchemaVersion is recorded in schema_version for every output table.
// Bump it when any output schema changes.
const OutputSchemaVersion = 1

// Output table names.
const (
	TableCustomerClusters        = "customer_clusters"
	TableClusterProfile          = "cluster_profile"
	TableClusterSegmentCounts    = "cluster_segment_counts"
	TableClusterLabels           = "cluster_labels"
	TableClusterHeadline         = "cluster_headline_metrics"
	TableClusterProductRanking   = "cluster_product_ranking"
	TableCustomerRecommendations = "customer_recommendations"
)

// Column describes one output field.
type Column struct {
	Name     string
	Type     string
	Nullable bool
}

// OutputSchema is the fixed shape of an output table.
type OutputSchema struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the schema's column names in order.
func (s OutputSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

func (s OutputSchema) ddl() string {
	defs := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		def := quoteIdent(c.Name) + " " + c.Type
		if !c.Nullable {
			def += " NOT NULL"
		}
		defs[i] = def
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(s.Name), strings.Join(defs, ", "))
}

// OutputSchemas lists every output table. Outputs are keyed by customer_id
// or cluster so they join back to the inputs.
var OutputSchemas = []OutputSchema{
	{Name: TableCustomerClusters, Columns: []Column{
		{Name: "customer_id", Type: "VARCHAR"},
		{Name: "cluster", Type: "INTEGER"},
	}},
	{Name: TableClusterProfile, Columns: []Column{
		{Name: "cluster", Type: "INTEGER"},
		{Name: "size", Type: "INTEGER"},
		{Name: "feature", Type: "VARCHAR"},
		{Name: "mean", Type: "DOUBLE"},
	}},
	{Name: TableClusterSegmentCounts, Columns: []Column{
		{Name: "cluster", Type: "INTEGER"},
		{Name: "segment", Type: "VARCHAR"},
		{Name: "customers", Type: "INTEGER"},
	}},
	{Name: TableClusterLabels, Columns: []Column{
		{Name: "cluster", Type: "INTEGER"},
		{Name: "size", Type: "INTEGER"},
		{Name: "label", Type: "VARCHAR"},
	}},
	{Name: TableClusterHeadline, Columns: []Column{
		{Name: "cluster", Type: "INTEGER"},
		{Name: "metric", Type: "VARCHAR"},
		{Name: "mean", Type: "DOUBLE", Nullable: true},
		{Name: "bucket", Type: "VARCHAR"},
	}},
	{Name: TableClusterProductRanking, Columns: []Column{
		{Name: "cluster", Type: "INTEGER"},
		{Name: "rank", Type: "INTEGER"},
		{Name: "product", Type: "VARCHAR"},
		{Name: "customers", Type: "INTEGER"},
	}},
	{Name: TableCustomerRecommendations, Columns: []Column{
		{Name: "customer_id", Type: "VARCHAR"},
		{Name: "cluster", Type: "INTEGER", Nullable: true},
		{Name: "recommendations", Type: "VARCHAR"},
	}},
}

// LookupSchema returns the registered schema for an output table.
func LookupSchema(name string) (OutputSchema, bool) {
	for _, s := range OutputSchemas {
		if s.Name == name {
			return s, true
		}
	}
	return OutputSchema{}, false
}

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	table_name VARCHAR PRIMARY KEY,
	version INTEGER NOT NULL,
	applied_at TIMESTAMP NOT NULL DEFAULT current_timestamp
)`

// initSchema creates the version table and every output table.
func (db *DB) initSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schemaVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	for _, s := range OutputSchemas {
		version, err := db.SchemaVersion(ctx, s.Name)
		if err != nil {
			return err
		}
		if version != 0 && version != OutputSchemaVersion {
			// Older shape on disk: rebuild from the current definition.
			db.logger.Info().
				Str("table", s.Name).
				Int("from", version).
				Int("to", OutputSchemaVersion).
				Msg("Recreating output table for new schema version")
			if err := db.DropTable(ctx, s.Name); err != nil {
				return err
			}
		}
		if _, err := db.conn.ExecContext(ctx, s.ddl()); err != nil {
			return fmt.Errorf("failed to create %s: %w", s.Name, err)
		}
		if _, err := db.conn.ExecContext(ctx,
			`INSERT OR REPLACE INTO schema_version (table_name, version, applied_at) VALUES (?, ?, current_timestamp)`,
			s.Name, OutputSchemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version for %s: %w", s.Name, err)
		}
	}
	return nil
}

// SchemaVersion returns the recorded version of an output table, or 0 if none.
func (db *DB) SchemaVersion(ctx context.Context, name string) (int, error) {
	var version int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_version WHERE table_name = ?`, name).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version for %s: %w", name, err)
	}
	return version, nil
}

// WriteOutput replaces the rows of a registered output table. Each row must
// match the schema's column count; nil stands for NULL.
func (db *DB) WriteOutput(ctx context.Context, name string, rows [][]any) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	schema, ok := LookupSchema(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOutput, name)
	}
	width := len(schema.Columns)
	for i, r := range rows {
		if len(r) != width {
			return fmt.Errorf("%s row %d has %d values, want %d", name, i, len(r), width)
		}
	}

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("write_output", name, time.Since(start), err)
	}()

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

	if _, err = tx.ExecContext(ctx, "DELETE FROM "+quoteIdent(name)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", name, err)
	}

	if len(rows) > 0 {
		cols := make([]string, width)
		for i, c := range schema.Columns {
			cols[i] = quoteIdent(c.Name)
		}
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(name), strings.Join(cols, ", "),
			strings.TrimSuffix(strings.Repeat("?, ", width), ", "))

		stmt, prepErr := tx.PrepareContext(ctx, query)
		if prepErr != nil {
			err = fmt.Errorf("failed to prepare insert into %s: %w", name, prepErr)
			return err
		}
		defer closeQuietly(stmt)

		for i, r := range rows {
			if _, err = stmt.ExecContext(ctx, r...); err != nil {
				return fmt.Errorf("failed to insert %s row %d: %w", name, i, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", name, err)
	}
	metrics.RecordRows(name, len(rows))
	return nil
}
