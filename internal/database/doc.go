// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

/*
Package database provides the DuckDB store behind every Segmatch run.

The store plays three roles:

  - Ingest: LoadCSV reads raw delimited files with read_csv, all columns as
    text, falling back from UTF-8 to latin-1.
  - Intermediate tables: SaveTable and LoadTable persist the treated source
    tables (nps_tratado, vendas_tratado, ...) and the analytic base between
    stages. Asking for a table that does not exist yields a
    *MissingArtifactError, which matches ErrMissingArtifact.
  - Outputs: the tables in OutputSchemas have a fixed shape and explicit
    nullability, recorded in schema_version. WriteOutput replaces their
    rows and Export copies any table to CSV or Parquet.

# Usage

	db, err := database.Open(&cfg.Database, logger)
	if err != nil {
	    return err
	}
	defer db.Close()

	t, err := db.LoadCSV(ctx, "/data/raw/mrr.csv", database.CSVOptions{Delimiter: ";"})
*/
package database
