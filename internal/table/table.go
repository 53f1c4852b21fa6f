// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

// Package table provides the loosely typed, row-addressable table that flows
// between pipeline stages.
//
// Every cell is a string with an explicit null marker. Source files are read
// with all columns as text, so numeric interpretation is deferred to the
// feature builder, which applies the regional numeric convention.
//
// Tables are treated as immutable values: every transforming operation returns
// a new *Table and leaves the receiver untouched.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell is a single table value. A zero Cell is null.
//
// Numeric cells carry their parsed value in Num and a canonical text form in
// Value. Text cells have Numeric=false even when they look like numbers.
type Cell struct {
	Value   string
	Valid   bool
	Num     float64
	Numeric bool
}

// Str returns a non-null text cell holding s.
func Str(s string) Cell {
	return Cell{Value: s, Valid: true}
}

// Float returns a non-null numeric cell.
func Float(f float64) Cell {
	return Cell{Value: strconv.FormatFloat(f, 'f', -1, 64), Valid: true, Num: f, Numeric: true}
}

// Null is the null cell.
var Null = Cell{}

// IsBlank reports whether the cell is null or holds only whitespace.
func (c Cell) IsBlank() bool {
	return !c.Valid || strings.TrimSpace(c.Value) == ""
}

// Table is an ordered set of named columns over rows of cells.
type Table struct {
	// Name identifies the logical table (e.g. "clientes_tratado").
	Name string

	columns []string
	index   map[string]int
	rows    [][]Cell
}

// New creates an empty table with the given columns.
// Duplicate column names keep their first position.
func New(name string, columns []string) *Table {
	t := &Table{
		Name:    name,
		columns: make([]string, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		if _, ok := t.index[c]; ok {
			continue
		}
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t
}

// FromRows builds a table from string rows. Empty strings become null cells,
// matching how delimited files are read.
func FromRows(name string, columns []string, rows [][]string) *Table {
	t := New(name, columns)
	for _, r := range rows {
		cells := make([]Cell, len(t.columns))
		for i := range t.columns {
			if i < len(r) && r[i] != "" {
				cells[i] = Str(r[i])
			}
		}
		t.rows = append(t.rows, cells)
	}
	return t
}

// AppendRow adds a row. The row must have one cell per column.
func (t *Table) AppendRow(cells []Cell) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("table %s: row has %d cells, want %d", t.Name, len(cells), len(t.columns))
	}
	row := make([]Cell, len(cells))
	copy(row, cells)
	t.rows = append(t.rows, row)
	return nil
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Get returns the cell at row i of the named column.
// A missing column yields a null cell.
func (t *Table) Get(i int, column string) Cell {
	j, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return Null
	}
	return t.rows[i][j]
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Cell {
	out := make([]Cell, len(t.columns))
	copy(out, t.rows[i])
	return out
}

// Column returns a copy of the named column's cells, or nil if absent.
func (t *Table) Column(name string) []Cell {
	j, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]Cell, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := New(t.Name, t.columns)
	c.rows = make([][]Cell, len(t.rows))
	for i, r := range t.rows {
		row := make([]Cell, len(r))
		copy(row, r)
		c.rows[i] = row
	}
	return c
}

// WithName returns a copy of the table under a new name.
func (t *Table) WithName(name string) *Table {
	c := t.Clone()
	c.Name = name
	return c
}

// WithColumn returns a copy with the named column set to values.
// An existing column is replaced in place; a new one is appended.
func (t *Table) WithColumn(name string, values []Cell) (*Table, error) {
	if len(values) != len(t.rows) {
		return nil, fmt.Errorf("table %s: column %s has %d values, want %d", t.Name, name, len(values), len(t.rows))
	}
	c := t.Clone()
	j, ok := c.index[name]
	if !ok {
		j = len(c.columns)
		c.index[name] = j
		c.columns = append(c.columns, name)
		for i := range c.rows {
			c.rows[i] = append(c.rows[i], Null)
		}
	}
	for i := range c.rows {
		c.rows[i][j] = values[i]
	}
	return c, nil
}

// Rename returns a copy with column from renamed to to.
// It is a no-op copy when from is absent or to already exists.
func (t *Table) Rename(from, to string) *Table {
	c := t.Clone()
	j, ok := c.index[from]
	if !ok || c.HasColumn(to) {
		return c
	}
	delete(c.index, from)
	c.index[to] = j
	c.columns[j] = to
	return c
}

// Select returns a copy restricted to the given columns, in the given order.
// Columns that do not exist are skipped.
func (t *Table) Select(columns ...string) *Table {
	present := make([]string, 0, len(columns))
	for _, col := range columns {
		if t.HasColumn(col) {
			present = append(present, col)
		}
	}
	out := New(t.Name, present)
	for _, r := range t.rows {
		row := make([]Cell, len(out.columns))
		for j, col := range out.columns {
			row[j] = r[t.index[col]]
		}
		out.rows = append(out.rows, row)
	}
	return out
}

// DropEmptyRows removes rows whose cells are all null.
func (t *Table) DropEmptyRows() *Table {
	out := New(t.Name, t.columns)
	for _, r := range t.rows {
		for _, c := range r {
			if c.Valid {
				out.rows = append(out.rows, copyRow(r))
				break
			}
		}
	}
	return out
}

// DropDuplicates removes fully identical rows, keeping the first occurrence.
func (t *Table) DropDuplicates() *Table {
	out := New(t.Name, t.columns)
	seen := make(map[string]struct{}, len(t.rows))
	for _, r := range t.rows {
		k := rowKey(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out.rows = append(out.rows, copyRow(r))
	}
	return out
}

// DistinctBy keeps the first row per non-null key value.
// Rows with a null key are dropped; a missing key column yields a copy.
func (t *Table) DistinctBy(key string) *Table {
	j, ok := t.index[key]
	if !ok {
		return t.Clone()
	}
	out := New(t.Name, t.columns)
	seen := make(map[string]struct{}, len(t.rows))
	for _, r := range t.rows {
		if !r[j].Valid {
			continue
		}
		if _, dup := seen[r[j].Value]; dup {
			continue
		}
		seen[r[j].Value] = struct{}{}
		out.rows = append(out.rows, copyRow(r))
	}
	return out
}

// LeftJoin joins right onto t by key. Every left row is kept; multiple right
// matches fan out into multiple rows. Right columns that collide with left
// names are suffixed with "_y". Null keys never match.
func (t *Table) LeftJoin(right *Table, key string) (*Table, error) {
	lk, ok := t.index[key]
	if !ok {
		return nil, fmt.Errorf("left join %s: left side has no column %s", t.Name, key)
	}
	rk, ok := right.index[key]
	if !ok {
		return nil, fmt.Errorf("left join %s: right side %s has no column %s", t.Name, right.Name, key)
	}

	cols := t.Columns()
	rightCols := make([]int, 0, len(right.columns))
	for j, c := range right.columns {
		if j == rk {
			continue
		}
		name := c
		if t.HasColumn(name) {
			name += "_y"
		}
		cols = append(cols, name)
		rightCols = append(rightCols, j)
	}

	matches := make(map[string][]int, right.Len())
	for i, r := range right.rows {
		if r[rk].Valid {
			matches[r[rk].Value] = append(matches[r[rk].Value], i)
		}
	}

	out := New(t.Name, cols)
	width := len(out.columns)
	for _, l := range t.rows {
		var hits []int
		if l[lk].Valid {
			hits = matches[l[lk].Value]
		}
		if len(hits) == 0 {
			row := make([]Cell, width)
			copy(row, l)
			out.rows = append(out.rows, row)
			continue
		}
		for _, ri := range hits {
			row := make([]Cell, width)
			copy(row, l)
			for n, j := range rightCols {
				row[len(l)+n] = right.rows[ri][j]
			}
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}

// Concat stacks tables vertically over the union of their columns,
// in first-seen column order. Absent columns become null.
func Concat(name string, tables ...*Table) *Table {
	var cols []string
	seen := make(map[string]struct{})
	for _, t := range tables {
		for _, c := range t.columns {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			cols = append(cols, c)
		}
	}
	out := New(name, cols)
	for _, t := range tables {
		for _, r := range t.rows {
			row := make([]Cell, len(cols))
			for j, c := range cols {
				if k, ok := t.index[c]; ok {
					row[j] = r[k]
				}
			}
			out.rows = append(out.rows, row)
		}
	}
	return out
}

func copyRow(r []Cell) []Cell {
	out := make([]Cell, len(r))
	copy(out, r)
	return out
}

// rowKey encodes a row so that null and empty string stay distinct.
func rowKey(r []Cell) string {
	var b strings.Builder
	for _, c := range r {
		if c.Valid {
			b.WriteByte('v')
			b.WriteString(c.Value)
		} else {
			b.WriteByte('n')
		}
		b.WriteByte(0)
	}
	return b.String()
}
