// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package etl

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/segmatch/internal/database"
	"github.com/tomtom215/segmatch/internal/features"
	"github.com/tomtom215/segmatch/internal/metrics"
	"github.com/tomtom215/segmatch/internal/table"
)

// Profile columns kept in the analytic base, after the key.
var baseProfileColumns = []string{
	features.ColumnSegment,
	"DS_SUBSEGMENTO",
	features.ColumnRevenueBracket,
	"UF",
	"CIDADE",
	features.ColumnContractValue,
	features.ColumnSignatureDate,
}

// Sales columns kept in the analytic base, after the key.
var baseSalesColumns = []string{
	features.ColumnMRR,
	features.ColumnAcquisitionCount,
	features.ColumnAcquisitionValue,
}

// BuildBase assembles one row per customer: profile ⋈ sales ⋈ mean
// satisfaction, all left-joined on the customer key. The profile table is
// required; a missing one is returned as a *database.MissingArtifactError.
func (r *Runner) BuildBase(ctx context.Context) (*table.Table, *Report, error) {
	rep := &Report{Stage: StageBase}

	customers, err := r.store.LoadTable(ctx, TableCustomers)
	if err != nil {
		rep.Aborted = true
		return nil, rep, err
	}
	res := r.reconciler.Reconcile(customers)
	if !res.Keyed() {
		rep.Aborted = true
		rep.MissingKeys = append(rep.MissingKeys, &MissingKeyError{Table: TableCustomers})
		return nil, rep, &database.MissingArtifactError{Name: TableCustomers + "." + r.key}
	}

	base := res.Table.Select(append([]string{r.key}, baseProfileColumns...)...).DistinctBy(r.key)

	if sales, ok, err := r.optional(ctx, rep, TableSales); err != nil {
		return nil, rep, err
	} else if ok {
		sales = sales.Select(append([]string{r.key}, baseSalesColumns...)...).DistinctBy(r.key)
		if base, err = base.LeftJoin(sales, r.key); err != nil {
			return nil, rep, fmt.Errorf("join %s: %w", TableSales, err)
		}
	}

	if nps, ok, err := r.optional(ctx, rep, TableNPS); err != nil {
		return nil, rep, err
	} else if ok {
		if !nps.HasColumn(ColumnNPS) {
			r.logger.Warn().Str("table", TableNPS).Msg("No NPS column; satisfaction left out of the base")
		} else if base, err = base.LeftJoin(meanByKey(nps, r.key, ColumnNPS, features.ColumnSatisfaction), r.key); err != nil {
			return nil, rep, fmt.Errorf("join %s: %w", TableNPS, err)
		}
	}

	base = base.DistinctBy(r.key).WithName(TableBase)
	if err := r.save(ctx, rep, base); err != nil {
		return nil, rep, err
	}
	return base, rep, nil
}

// optional loads a treated table that the base can do without. A missing
// table is logged and reported as ok=false.
func (r *Runner) optional(ctx context.Context, rep *Report, name string) (*table.Table, bool, error) {
	t, err := r.store.LoadTable(ctx, name)
	if errors.Is(err, database.ErrMissingArtifact) {
		rep.Skipped = append(rep.Skipped, name)
		metrics.RecordStageError(rep.Stage, metrics.ErrorTypeMissingArtifact)
		r.logger.Warn().Str("table", name).Msg("Optional table absent; base built without it")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	res := r.reconciler.Reconcile(t)
	if !res.Keyed() {
		rep.MissingKeys = append(rep.MissingKeys, &MissingKeyError{Table: name})
		metrics.RecordStageError(rep.Stage, metrics.ErrorTypeMissingKey)
		r.logger.Warn().Str("table", name).Msg("Optional table has no customer key; base built without it")
		return nil, false, nil
	}
	return res.Table, true, nil
}

// meanByKey averages the numeric values of column per key, in order of first
// appearance. Keys whose values are all missing get a null mean.
func meanByKey(t *table.Table, key, column, as string) *table.Table {
	type acc struct {
		sum float64
		n   int
	}
	keys := t.Column(key)
	values := features.CoerceColumn(t.Column(column))

	order := make([]string, 0)
	sums := make(map[string]*acc)
	for i, k := range keys {
		if !k.Valid {
			continue
		}
		a, ok := sums[k.Value]
		if !ok {
			a = &acc{}
			sums[k.Value] = a
			order = append(order, k.Value)
		}
		if values[i].OK {
			a.sum += values[i].V
			a.n++
		}
	}

	out := table.New(t.Name+"_medio", []string{key, as})
	for _, k := range order {
		mean := table.Null
		if a := sums[k]; a.n > 0 {
			mean = table.Float(a.sum / float64(a.n))
		}
		_ = out.AppendRow([]table.Cell{table.Str(k), mean})
	}
	return out
}
