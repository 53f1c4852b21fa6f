// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package etl

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/segmatch/internal/config"
	"github.com/tomtom215/segmatch/internal/database"
	"github.com/tomtom215/segmatch/internal/identity"
	"github.com/tomtom215/segmatch/internal/metrics"
	"github.com/tomtom215/segmatch/internal/table"
)

// Treated and aggregate table names.
const (
	TableNPS        = "nps_tratado"
	TableTickets    = "tickets_tratado"
	TableTicketsOrg = "tickets_agg_organizacao"
	TableSales      = "vendas_tratado"
	TableCustomers  = "clientes_tratado"
	TableTelemetry  = "telemetria_tratado"
	TableBase       = "base_analitica"
)

// Stage names, also used as metric labels.
const (
	StageNPS       = "nps"
	StageTickets   = "tickets"
	StageSales     = "sales"
	StageCustomers = "customers"
	StageTelemetry = "telemetry"
	StageBase      = "base"
)

// inspectionSuffix marks tables set aside because they lack a customer key.
const inspectionSuffix = "_inspecao"

// ErrMissingKey matches any *MissingKeyError with errors.Is.
var ErrMissingKey = errors.New("missing customer key")

// MissingKeyError reports a table with no resolvable customer key. It is
// recorded, never returned as a stage failure.
type MissingKeyError struct {
	Table string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("table %s has no customer key", e.Table)
}

// Is makes errors.Is(err, ErrMissingKey) true.
func (e *MissingKeyError) Is(target error) bool {
	return target == ErrMissingKey
}

// Store is the persistence the stages read from and write to.
type Store interface {
	LoadCSV(ctx context.Context, path string, opts database.CSVOptions) (*table.Table, error)
	SaveTable(ctx context.Context, t *table.Table) error
	LoadTable(ctx context.Context, name string) (*table.Table, error)
}

// Report describes what one stage produced and what it set aside.
type Report struct {
	Stage string `json:"stage"`

	// Outputs lists saved treated tables with their row counts.
	Outputs []TableCount `json:"outputs"`

	// Inspection lists tables routed to an inspection sink.
	Inspection []string `json:"inspection,omitempty"`

	// MissingKeys holds one entry per table without a customer key.
	MissingKeys []*MissingKeyError `json:"-"`

	// Skipped lists unreadable optional inputs.
	Skipped []string `json:"skipped,omitempty"`

	// Aborted is set when the stage stopped without producing its main table.
	Aborted bool `json:"aborted,omitempty"`
}

// TableCount is a table name with its row count.
type TableCount struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// Stage is a named ETL step.
type Stage struct {
	Name string
	Run  func(ctx context.Context) (*Report, error)
}

// Runner executes the source treatment stages and the analytic base build.
type Runner struct {
	store      Store
	input      config.InputConfig
	reconciler *identity.Reconciler
	key        string
	logger     zerolog.Logger
}

// NewRunner creates a Runner reading the files named in input.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRunner(store Store, input config.InputConfig, reconciler *identity.Reconciler, logger zerolog.Logger) *Runner {
	return &Runner{
		store:      store,
		input:      input,
		reconciler: reconciler,
		key:        reconciler.CanonicalKey(),
		logger:     logger.With().Str("component", "etl").Logger(),
	}
}

// Stages returns the source stages in execution order. The analytic base
// build (BuildBase) is separate because its failure ends the run.
func (r *Runner) Stages() []Stage {
	return []Stage{
		{Name: StageNPS, Run: r.NPS},
		{Name: StageTickets, Run: r.Tickets},
		{Name: StageSales, Run: r.Sales},
		{Name: StageCustomers, Run: r.Customers},
		{Name: StageTelemetry, Run: r.Telemetry},
	}
}

func (r *Runner) readFile(ctx context.Context, name string) (*table.Table, error) {
	return r.store.LoadCSV(ctx, r.input.Path(name), database.CSVOptions{Delimiter: r.input.Delimiter})
}

func (r *Runner) save(ctx context.Context, rep *Report, t *table.Table) error {
	if err := r.store.SaveTable(ctx, t); err != nil {
		return fmt.Errorf("save %s: %w", t.Name, err)
	}
	rep.Outputs = append(rep.Outputs, TableCount{Table: t.Name, Rows: t.Len()})
	return nil
}

// inspect routes a keyless table to <name>_inspecao.
func (r *Runner) inspect(ctx context.Context, rep *Report, t *table.Table, name string) error {
	sink := name + inspectionSuffix
	if err := r.store.SaveTable(ctx, t.WithName(sink)); err != nil {
		return fmt.Errorf("save %s: %w", sink, err)
	}
	rep.Inspection = append(rep.Inspection, sink)
	rep.MissingKeys = append(rep.MissingKeys, &MissingKeyError{Table: name})
	metrics.RecordInspection(sink)
	metrics.RecordStageError(rep.Stage, metrics.ErrorTypeMissingKey)

	r.logger.Warn().
		Str("stage", rep.Stage).
		Str("table", name).
		Str("inspection", sink).
		Int("rows", t.Len()).
		Msg("Table has no customer key; routed to inspection")
	return nil
}

func (r *Runner) skip(rep *Report, file string, err error) {
	rep.Skipped = append(rep.Skipped, file)
	errType := metrics.ErrorTypeInternal
	if errors.Is(err, database.ErrMissingArtifact) {
		errType = metrics.ErrorTypeMissingArtifact
	}
	metrics.RecordStageError(rep.Stage, errType)
	r.logger.Warn().Err(err).Str("stage", rep.Stage).Str("file", file).Msg("Input skipped")
}
