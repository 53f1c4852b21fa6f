// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/segmatch/internal/config"
	"github.com/tomtom215/segmatch/internal/table"
)

// testDBSemaphore serializes DuckDB use across tests; concurrent CGO
// connections can stall under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := Open(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "1GB", Threads: 1}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	db := setupTestDB(t)
	path := writeFile(t, t.TempDir(), "mrr.csv", []byte("CD_CLIENTE;MRR_12M\nC1;1.234,50\nC2;\n"))

	got, err := db.LoadCSV(context.Background(), path, CSVOptions{Delimiter: ";"})
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if got.Name != "mrr" {
		t.Errorf("Name = %q, want mrr", got.Name)
	}
	if !reflect.DeepEqual(got.Columns(), []string{"CD_CLIENTE", "MRR_12M"}) {
		t.Errorf("Columns() = %v", got.Columns())
	}
	if got.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", got.Len())
	}
	// all_varchar keeps the regional number text untouched
	if c := got.Get(0, "MRR_12M"); c.Value != "1.234,50" || c.Numeric {
		t.Errorf("MRR_12M[0] = %+v, want text 1.234,50", c)
	}
	if c := got.Get(1, "MRR_12M"); c.Valid {
		t.Errorf("MRR_12M[1] = %+v, want null", c)
	}
}

func TestLoadCSV_Latin1Fallback(t *testing.T) {
	db := setupTestDB(t)
	// "Região" in latin-1: ã = 0xE3
	content := []byte("CD_CLIENTE;Regi\xe3o\nC1;Sul\n")
	path := writeFile(t, t.TempDir(), "clientes.csv", content)

	got, err := db.LoadCSV(context.Background(), path, CSVOptions{})
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if !got.HasColumn("Região") {
		t.Errorf("Columns() = %v, want decoded Região", got.Columns())
	}
}

func TestLoadCSV_Missing(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.LoadCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), CSVOptions{})

	var missing *MissingArtifactError
	if !errors.As(err, &missing) || !errors.Is(err, ErrMissingArtifact) {
		t.Fatalf("LoadCSV() error = %v, want MissingArtifactError", err)
	}
	if !strings.HasSuffix(missing.Name, "nope.csv") {
		t.Errorf("Name = %q, want path ending in nope.csv", missing.Name)
	}
}

func TestSaveLoadTable_RoundTripsTypes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	src := table.New("base_analitica", []string{"customer_id", "NPS_MEDIO", "DS_SEGMENTO"})
	rows := [][]table.Cell{
		{table.Str("c1"), table.Float(1234.5), table.Str("Varejo")},
		{table.Str("c2"), table.Null, table.Null},
	}
	for _, r := range rows {
		if err := src.AppendRow(r); err != nil {
			t.Fatalf("AppendRow() error = %v", err)
		}
	}

	if err := db.SaveTable(ctx, src); err != nil {
		t.Fatalf("SaveTable() error = %v", err)
	}
	got, err := db.LoadTable(ctx, "base_analitica")
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}

	if got.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", got.Len())
	}
	if c := got.Get(0, "NPS_MEDIO"); !c.Numeric || c.Num != 1234.5 {
		t.Errorf("NPS_MEDIO[0] = %+v, want numeric 1234.5", c)
	}
	if c := got.Get(1, "NPS_MEDIO"); c.Valid {
		t.Errorf("NPS_MEDIO[1] = %+v, want null", c)
	}
	if c := got.Get(0, "DS_SEGMENTO"); c.Numeric || c.Value != "Varejo" {
		t.Errorf("DS_SEGMENTO[0] = %+v, want text Varejo", c)
	}

	// saving again replaces
	if err := db.SaveTable(ctx, src.Select("customer_id")); err != nil {
		t.Fatalf("SaveTable() second error = %v", err)
	}
	got, err = db.LoadTable(ctx, "base_analitica")
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if !reflect.DeepEqual(got.Columns(), []string{"customer_id"}) {
		t.Errorf("Columns() = %v, want [customer_id]", got.Columns())
	}
}

func TestLoadTable_Missing(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.LoadTable(context.Background(), "clientes_tratado")
	if !errors.Is(err, ErrMissingArtifact) {
		t.Errorf("LoadTable() error = %v, want ErrMissingArtifact", err)
	}
}

func TestOutputSchemas_Installed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, s := range OutputSchemas {
		ok, err := db.HasTable(ctx, s.Name)
		if err != nil || !ok {
			t.Errorf("HasTable(%s) = %v, %v; want true", s.Name, ok, err)
		}
		v, err := db.SchemaVersion(ctx, s.Name)
		if err != nil || v != OutputSchemaVersion {
			t.Errorf("SchemaVersion(%s) = %d, %v; want %d", s.Name, v, err, OutputSchemaVersion)
		}
	}
}

func TestWriteOutput(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	rows := [][]any{
		{"c1", 0, "B, C"},
		{"ghost", nil, ""},
	}
	if err := db.WriteOutput(ctx, TableCustomerRecommendations, rows); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}
	// replaces, never appends
	if err := db.WriteOutput(ctx, TableCustomerRecommendations, rows); err != nil {
		t.Fatalf("WriteOutput() second error = %v", err)
	}

	got, err := db.LoadTable(ctx, TableCustomerRecommendations)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", got.Len())
	}
	if c := got.Get(1, "cluster"); c.Valid {
		t.Errorf("cluster[1] = %+v, want null", c)
	}
	if c := got.Get(0, "cluster"); !c.Numeric || c.Num != 0 {
		t.Errorf("cluster[0] = %+v, want 0", c)
	}
}

func TestWriteOutput_Errors(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.WriteOutput(ctx, "not_an_output", nil); !errors.Is(err, ErrUnknownOutput) {
		t.Errorf("WriteOutput(unknown) error = %v, want ErrUnknownOutput", err)
	}
	if err := db.WriteOutput(ctx, TableCustomerClusters, [][]any{{"c1"}}); err == nil {
		t.Error("WriteOutput(short row) error = nil, want error")
	}
	// customer_id is NOT NULL
	if err := db.WriteOutput(ctx, TableCustomerClusters, [][]any{{nil, 1}}); err == nil {
		t.Error("WriteOutput(null key) error = nil, want error")
	}
}

func TestExport(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "out")

	if err := db.WriteOutput(ctx, TableCustomerClusters, [][]any{{"c1", 2}, {"c2", 0}}); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}

	path, err := db.Export(ctx, TableCustomerClusters, dir, FormatCSV)
	if err != nil {
		t.Fatalf("Export(csv) error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if got := string(data); !strings.HasPrefix(got, "customer_id,cluster\n") || !strings.Contains(got, "c1,2") {
		t.Errorf("export = %q", got)
	}

	path, err = db.Export(ctx, TableCustomerClusters, dir, FormatParquet)
	if err != nil {
		t.Fatalf("Export(parquet) error = %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("parquet file %s missing or empty: %v", path, err)
	}

	if _, err := db.Export(ctx, TableCustomerClusters, dir, "xlsx"); err == nil {
		t.Error("Export(xlsx) error = nil, want error")
	}
	if _, err := db.Export(ctx, "nope", dir, FormatCSV); !errors.Is(err, ErrMissingArtifact) {
		t.Errorf("Export(nope) error = %v, want ErrMissingArtifact", err)
	}
}
