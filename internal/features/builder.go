// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

// Package features builds the numeric feature space for customer clustering.
//
// The builder takes the merged analytic base (one row per customer), coerces
// loosely typed text into numbers using the regional convention ("1.234,56"),
// derives contract tenure from the signature date, imputes every numeric
// column with its own median, and expands a short allow-list of categorical
// attributes into drop-first indicator columns.
//
// The resulting Matrix has a fixed column order (declared numeric features
// first, then indicators), no missing values, and only finite entries.
// Standardize rescales it for distance-based clustering using statistics of
// that same matrix only.
package features

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/segmatch/internal/table"
)

// Column names of the analytic base.
const (
	ColumnMRR              = "MRR_12M"
	ColumnAcquisitionCount = "QTD_CONTRATACOES_12M"
	ColumnAcquisitionValue = "VLR_CONTRATACOES_12M"
	ColumnSatisfaction     = "NPS_MEDIO"
	ColumnContractValue    = "VL_TOTAL_CONTRATO"
	ColumnTenure           = "ANTIGUIDADE_MESES"
	ColumnSignatureDate    = "DT_ASSINATURA_CONTRATO"
	ColumnSegment          = "DS_SEGMENTO"
	ColumnRevenueBracket   = "FAT_FAIXA"
)

// DefaultNumeric is the declared numeric feature order.
var DefaultNumeric = []string{
	ColumnMRR,
	ColumnAcquisitionCount,
	ColumnAcquisitionValue,
	ColumnSatisfaction,
	ColumnContractValue,
	ColumnTenure,
}

// DefaultCategorical is the categorical allow-list for indicator expansion.
var DefaultCategorical = []string{ColumnSegment, ColumnRevenueBracket}

var (
	// ErrMissingKey is returned when the base table has no customer key column.
	ErrMissingKey = errors.New("base table has no customer key column")

	// ErrEmptyMatrix is returned when the base table has no keyed rows.
	ErrEmptyMatrix = errors.New("no customers to build features for")

	// ErrNoFeatures is returned when no feature column could be built.
	ErrNoFeatures = errors.New("no usable feature columns")
)

// Config controls feature construction.
type Config struct {
	// Key is the customer key column.
	Key string

	// Numeric lists numeric features in output order. Absent columns are skipped.
	Numeric []string

	// Categorical lists attributes to expand into indicator columns.
	Categorical []string

	// Now returns the reference time for tenure. Defaults to time.Now.
	Now func() time.Time
}

// Matrix is the per-customer feature matrix.
type Matrix struct {
	// CustomerIDs holds the key of each row, unique and in base order.
	CustomerIDs []string

	// Names holds the feature name of each column.
	Names []string

	// Rows holds one fully populated vector per customer.
	Rows [][]float64

	// Raw holds the coerced numeric feature values before imputation,
	// keyed by feature name. Indicator columns are not included.
	Raw map[string][]Number

	// Medians holds the imputation value used per numeric feature.
	Medians map[string]float64

	// Dropped lists declared numeric features that were present or derived
	// but had no observed value at all.
	Dropped []string
}

// NumRows returns the number of customers.
func (m *Matrix) NumRows() int { return len(m.Rows) }

// NumCols returns the number of features.
func (m *Matrix) NumCols() int { return len(m.Names) }

// ColumnIndex returns the position of a feature, or -1.
func (m *Matrix) ColumnIndex(name string) int {
	for j, n := range m.Names {
		if n == name {
			return j
		}
	}
	return -1
}

// Builder derives feature matrices from analytic base tables.
type Builder struct {
	cfg    Config
	logger zerolog.Logger
}

// NewBuilder creates a feature builder. Zero-value fields take defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBuilder(cfg Config, logger zerolog.Logger) *Builder {
	if cfg.Key == "" {
		cfg.Key = "customer_id"
	}
	if cfg.Numeric == nil {
		cfg.Numeric = DefaultNumeric
	}
	if cfg.Categorical == nil {
		cfg.Categorical = DefaultCategorical
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Builder{
		cfg:    cfg,
		logger: logger.With().Str("component", "features").Logger(),
	}
}

// Build constructs the feature matrix from the analytic base.
func (b *Builder) Build(base *table.Table) (*Matrix, error) {
	if !base.HasColumn(b.cfg.Key) {
		return nil, ErrMissingKey
	}
	base = base.DistinctBy(b.cfg.Key)
	n := base.Len()
	if n == 0 {
		return nil, ErrEmptyMatrix
	}

	m := &Matrix{
		CustomerIDs: make([]string, n),
		Raw:         make(map[string][]Number),
		Medians:     make(map[string]float64),
	}
	for i, c := range base.Column(b.cfg.Key) {
		m.CustomerIDs[i] = c.Value
	}

	var columns [][]float64
	for _, name := range b.cfg.Numeric {
		raw, ok := b.numericColumn(base, name)
		if !ok {
			continue
		}
		med, observed := Median(raw)
		if !observed {
			m.Dropped = append(m.Dropped, name)
			b.logger.Warn().
				Str("feature", name).
				Msg("feature has no observed values, excluded from feature set")
			continue
		}
		m.Names = append(m.Names, name)
		m.Raw[name] = raw
		m.Medians[name] = med
		columns = append(columns, Impute(raw, med))
	}

	for _, name := range b.cfg.Categorical {
		if !base.HasColumn(name) {
			continue
		}
		dummyNames, dummyCols := OneHotDropFirst(name, base.Column(name))
		m.Names = append(m.Names, dummyNames...)
		columns = append(columns, dummyCols...)
	}

	if len(columns) == 0 {
		return nil, ErrNoFeatures
	}

	m.Rows = make([][]float64, n)
	for i := range m.Rows {
		row := make([]float64, len(columns))
		for j, col := range columns {
			v := col[i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("feature %s row %d is not finite", m.Names[j], i)
			}
			row[j] = v
		}
		m.Rows[i] = row
	}

	b.logger.Debug().
		Int("customers", n).
		Strs("features", m.Names).
		Strs("dropped", m.Dropped).
		Msg("feature matrix built")

	return m, nil
}

// numericColumn returns the coerced values of a declared numeric feature.
// Tenure is derived from the signature date when not present as a column.
func (b *Builder) numericColumn(base *table.Table, name string) ([]Number, bool) {
	if base.HasColumn(name) {
		return CoerceColumn(base.Column(name)), true
	}
	if name == ColumnTenure && base.HasColumn(ColumnSignatureDate) {
		return TenureColumn(base.Column(ColumnSignatureDate), b.cfg.Now()), true
	}
	return nil, false
}

// Median returns the median of the present values. observed is false when
// every value is missing.
func Median(values []Number) (median float64, observed bool) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if v.OK {
			present = append(present, v.V)
		}
	}
	if len(present) == 0 {
		return 0, false
	}
	sort.Float64s(present)
	mid := len(present) / 2
	if len(present)%2 == 1 {
		return present[mid], true
	}
	return (present[mid-1] + present[mid]) / 2, true
}

// Impute replaces missing values with fill.
func Impute(values []Number, fill float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if v.OK {
			out[i] = v.V
		} else {
			out[i] = fill
		}
	}
	return out
}

// OneHotDropFirst expands a categorical column into indicator columns over its
// sorted distinct values, dropping the first value as the baseline. Null
// cells map to all zeros. Column names are "<name>_<value>".
func OneHotDropFirst(name string, cells []table.Cell) (names []string, columns [][]float64) {
	distinct := make(map[string]struct{})
	for _, c := range cells {
		if c.Valid {
			distinct[c.Value] = struct{}{}
		}
	}
	levels := make([]string, 0, len(distinct))
	for v := range distinct {
		levels = append(levels, v)
	}
	sort.Strings(levels)
	if len(levels) < 2 {
		return nil, nil
	}

	for _, level := range levels[1:] {
		col := make([]float64, len(cells))
		for i, c := range cells {
			if c.Valid && c.Value == level {
				col[i] = 1
			}
		}
		names = append(names, name+"_"+level)
		columns = append(columns, col)
	}
	return names, columns
}
