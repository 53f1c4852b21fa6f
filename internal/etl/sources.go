// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package etl

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tomtom215/segmatch/internal/database"
	"github.com/tomtom215/segmatch/internal/features"
	"github.com/tomtom215/segmatch/internal/table"
)

// Source columns.
const (
	ColumnNPS             = "NPS"
	ColumnNPSSource       = "origem_nps"
	ColumnTelemetrySource = "fonte"
	ColumnResolution      = "TempoResolucao"
	ColumnOrganization    = "CODIGO_ORGANIZACAO"
	ColumnTicketID        = "BK_TICKET"
	ColumnTicketStatus    = "STATUS_TICKET"
	ColumnTicketCount     = "QTD_CHAMADOS"
	ColumnTicketsOpen     = "CHAMADOS_ABERTOS"
	ColumnResolutionMean  = "TEMPO_MEDIO_RES"
)

// statusOpen is the ticket status counted as open.
const statusOpen = "ABERTO"

// Numeric columns coerced per source.
var (
	salesNumeric    = []string{features.ColumnMRR}
	contractNumeric = []string{features.ColumnAcquisitionCount, features.ColumnAcquisitionValue}
)

// NPS concatenates the survey files, tags each row with its origin, and
// normalizes the satisfaction column to numeric NPS.
func (r *Runner) NPS(ctx context.Context) (*Report, error) {
	rep := &Report{Stage: StageNPS}

	parts := make([]*table.Table, 0, len(r.input.NPSFiles))
	for _, name := range r.input.NPSFiles {
		t, err := r.readFile(ctx, name)
		if err != nil {
			r.skip(rep, name, err)
			continue
		}
		origin := strings.TrimSuffix(filepath.Base(name), ".csv")
		t, err = withConstant(t, ColumnNPSSource, origin)
		if err != nil {
			return rep, err
		}
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		rep.Aborted = true
		return rep, &database.MissingArtifactError{Name: strings.Join(r.input.NPSFiles, ", ")}
	}

	nps := table.Concat(TableNPS, parts...).DropEmptyRows().DropDuplicates()

	res := r.reconciler.Reconcile(nps)
	if !res.Keyed() {
		rep.Aborted = true
		return rep, r.inspect(ctx, rep, nps, "nps")
	}
	nps = table.ApplySynonyms(res.Table, table.DefaultSynonyms)

	if nps.HasColumn(ColumnNPS) {
		var err error
		if nps, err = coerceColumns(nps, ColumnNPS); err != nil {
			return rep, err
		}
	} else {
		r.logger.Warn().Strs("columns", nps.Columns()).Msg("No satisfaction column found in NPS files")
	}

	return rep, r.save(ctx, rep, nps)
}

// Tickets derives the resolution time and aggregates tickets per organization.
// Tickets are keyed by organization, so a missing customer key is expected
// and the table is saved as is.
func (r *Runner) Tickets(ctx context.Context) (*Report, error) {
	rep := &Report{Stage: StageTickets}

	raw, err := r.readFile(ctx, r.input.Tickets)
	if err != nil {
		rep.Aborted = true
		return rep, err
	}
	t := raw.DropEmptyRows().DropDuplicates().WithName(TableTickets)

	resolution := make([]table.Cell, t.Len())
	if col, ok := table.FindColumn(t, isResolutionHeader); ok {
		for i, n := range features.CoerceColumn(t.Column(col)) {
			if n.OK {
				resolution[i] = table.Float(n.V)
			} else {
				resolution[i] = table.Float(0)
			}
		}
	} else {
		r.logger.Warn().Strs("columns", t.Columns()).Msg("No resolution time column found; using 0")
		for i := range resolution {
			resolution[i] = table.Float(0)
		}
	}
	if t, err = t.WithColumn(ColumnResolution, resolution); err != nil {
		return rep, err
	}

	res := r.reconciler.Reconcile(t)
	if err := r.save(ctx, rep, res.Table); err != nil {
		return rep, err
	}

	if !res.Table.HasColumn(ColumnOrganization) {
		r.logger.Info().Msg("Tickets have no organization column; aggregate skipped")
		return rep, nil
	}
	return rep, r.save(ctx, rep, aggregateTickets(res.Table))
}

// isResolutionHeader matches resolution-time headers after normalization.
func isResolutionHeader(normalized string) bool {
	return strings.Contains(normalized, "resolucao") ||
		(strings.Contains(normalized, "tempo") && strings.Contains(normalized, "res"))
}

type orgStats struct {
	tickets int
	open    int
	sum     float64
	n       int
}

// aggregateTickets groups by organization code, sorted by code. Rows with a
// null code are dropped.
func aggregateTickets(t *table.Table) *table.Table {
	orgs := t.Column(ColumnOrganization)
	ids := t.Column(ColumnTicketID)
	status := t.Column(ColumnTicketStatus)
	resolution := features.CoerceColumn(t.Column(ColumnResolution))

	stats := make(map[string]*orgStats)
	for i, org := range orgs {
		if !org.Valid {
			continue
		}
		s, ok := stats[org.Value]
		if !ok {
			s = &orgStats{}
			stats[org.Value] = s
		}
		if ids == nil || ids[i].Valid {
			s.tickets++
		}
		if status != nil && status[i].Valid && strings.EqualFold(strings.TrimSpace(status[i].Value), statusOpen) {
			s.open++
		}
		if resolution[i].OK {
			s.sum += resolution[i].V
			s.n++
		}
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := table.New(TableTicketsOrg, []string{ColumnOrganization, ColumnTicketCount, ColumnTicketsOpen, ColumnResolutionMean})
	for _, k := range keys {
		s := stats[k]
		mean := table.Null
		if s.n > 0 {
			mean = table.Float(s.sum / float64(s.n))
		}
		// Row width matches the declared columns.
		_ = out.AppendRow([]table.Cell{
			table.Str(k),
			table.Float(float64(s.tickets)),
			table.Float(float64(s.open)),
			mean,
		})
	}
	return out
}

// Sales joins MRR onto 12-month contracts. If either side lacks a customer
// key both are routed to inspection and no sales table is produced.
func (r *Runner) Sales(ctx context.Context) (*Report, error) {
	rep := &Report{Stage: StageSales}

	mrr, err := r.readFile(ctx, r.input.MRR)
	if err != nil {
		rep.Aborted = true
		return rep, err
	}
	contracts, err := r.readFile(ctx, r.input.Contracts)
	if err != nil {
		rep.Aborted = true
		return rep, err
	}

	mrrRes := r.reconciler.Reconcile(mrr)
	contractRes := r.reconciler.Reconcile(contracts)

	if mrr, err = coerceColumns(mrrRes.Table, salesNumeric...); err != nil {
		return rep, err
	}
	if contracts, err = coerceColumns(contractRes.Table, contractNumeric...); err != nil {
		return rep, err
	}

	if !mrrRes.Keyed() || !contractRes.Keyed() {
		rep.Aborted = true
		if err := r.inspect(ctx, rep, mrr, "mrr_sem_merge"); err != nil {
			return rep, err
		}
		return rep, r.inspect(ctx, rep, contracts, "contratos_sem_merge")
	}

	sales, err := mrr.LeftJoin(contracts, r.key)
	if err != nil {
		return rep, fmt.Errorf("join sales: %w", err)
	}
	sales = sales.DropEmptyRows().DropDuplicates().WithName(TableSales)
	return rep, r.save(ctx, rep, sales)
}

// Customers joins the profile with the customer-since and history files.
// The profile is required; the other two are joined when readable and keyed.
func (r *Runner) Customers(ctx context.Context) (*Report, error) {
	rep := &Report{Stage: StageCustomers}

	base, err := r.readFile(ctx, r.input.Customers)
	if err != nil {
		rep.Aborted = true
		return rep, err
	}
	baseRes := r.reconciler.Reconcile(base)
	if !baseRes.Keyed() {
		rep.Aborted = true
		return rep, r.inspect(ctx, rep, base, "dados_clientes")
	}
	customers := baseRes.Table

	sides := []struct {
		file string
		sink string
	}{
		{r.input.CustomersSince, "clientes_desde"},
		{r.input.History, "historico"},
	}
	for _, side := range sides {
		t, err := r.readFile(ctx, side.file)
		if err != nil {
			r.skip(rep, side.file, err)
			continue
		}
		res := r.reconciler.Reconcile(t)
		if !res.Keyed() {
			if err := r.inspect(ctx, rep, t, side.sink); err != nil {
				return rep, err
			}
			continue
		}
		if customers, err = customers.LeftJoin(res.Table, r.key); err != nil {
			return rep, fmt.Errorf("join %s: %w", side.sink, err)
		}
	}

	customers = customers.DropEmptyRows().DropDuplicates().WithName(TableCustomers)
	return rep, r.save(ctx, rep, customers)
}

// Telemetry concatenates the numbered telemetry files, tagging each row with
// its file name.
func (r *Runner) Telemetry(ctx context.Context) (*Report, error) {
	rep := &Report{Stage: StageTelemetry}

	if r.input.TelemetryFiles == 0 {
		r.logger.Info().Msg("No telemetry files configured")
		return rep, nil
	}

	names := make([]string, 0, r.input.TelemetryFiles)
	parts := make([]*table.Table, 0, r.input.TelemetryFiles)
	for i := 1; i <= r.input.TelemetryFiles; i++ {
		name := fmt.Sprintf(r.input.TelemetryPattern, i)
		names = append(names, name)

		t, err := r.readFile(ctx, name)
		if err != nil {
			r.skip(rep, name, err)
			continue
		}
		if t, err = withConstant(t, ColumnTelemetrySource, filepath.Base(name)); err != nil {
			return rep, err
		}
		parts = append(parts, r.reconciler.Reconcile(t).Table)
	}
	if len(parts) == 0 {
		rep.Aborted = true
		return rep, &database.MissingArtifactError{Name: strings.Join(names, ", ")}
	}

	tele := table.Concat(TableTelemetry, parts...).DropEmptyRows().DropDuplicates()
	return rep, r.save(ctx, rep, tele)
}

func withConstant(t *table.Table, column, value string) (*table.Table, error) {
	cells := make([]table.Cell, t.Len())
	for i := range cells {
		cells[i] = table.Str(value)
	}
	return t.WithColumn(column, cells)
}

// coerceColumns replaces each present column with its numeric coercion.
func coerceColumns(t *table.Table, columns ...string) (*table.Table, error) {
	out := t
	for _, col := range columns {
		if !out.HasColumn(col) {
			continue
		}
		var err error
		if out, err = out.WithColumn(col, features.CoerceCells(out.Column(col))); err != nil {
			return nil, err
		}
	}
	return out, nil
}
