// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package features

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/tomtom215/segmatch/internal/table"
)

// Number is a coerced numeric value. OK is false for missing values.
type Number struct {
	V  float64
	OK bool
}

// Missing is the missing Number.
var Missing = Number{}

// Num returns a present Number.
func Num(v float64) Number {
	return Number{V: v, OK: true}
}

// NormalizeNumeric rewrites a regional numeric string into Go float syntax:
// whitespace removed, "." thousands separators removed, "," decimal turned
// into ".". "1.234,56" becomes "1234.56".
func NormalizeNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
		case r == '.':
		case r == ',':
			b.WriteByte('.')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseNumber parses a regional numeric string. Unparseable or non-finite
// tokens yield ok=false.
func ParseNumber(s string) (float64, bool) {
	n := NormalizeNumeric(s)
	if n == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(n, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Coerce converts a value to a Number. Values that are already numeric are
// returned as-is; text goes through ParseNumber. Anything else is missing.
// Coerce is idempotent: Coerce(Coerce(v)) == Coerce(v).
func Coerce(v any) Number {
	switch x := v.(type) {
	case Number:
		return x
	case table.Cell:
		if !x.Valid {
			return Missing
		}
		if x.Numeric {
			return finite(x.Num)
		}
		return Coerce(x.Value)
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return Num(float64(x))
	case int64:
		return Num(float64(x))
	case string:
		if f, ok := ParseNumber(x); ok {
			return Num(f)
		}
		return Missing
	default:
		return Missing
	}
}

// CoerceColumn converts a column of cells.
func CoerceColumn(cells []table.Cell) []Number {
	out := make([]Number, len(cells))
	for i, c := range cells {
		out[i] = Coerce(c)
	}
	return out
}

// CoerceCells converts a column into numeric cells; unparseable values become null.
func CoerceCells(cells []table.Cell) []table.Cell {
	out := make([]table.Cell, len(cells))
	for i, c := range cells {
		if n := Coerce(c); n.OK {
			out[i] = table.Float(n.V)
		}
	}
	return out
}

func finite(f float64) Number {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing
	}
	return Num(f)
}

// daysPerMonth is the mean Gregorian month length used for tenure.
const daysPerMonth = 30.44

// dateLayouts are tried in order; day-first layouts win over month-first ambiguity.
var dateLayouts = []string{
	"02/01/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"02-01-2006 15:04:05",
	"02.01.2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate parses a day-first date. Unparseable input yields ok=false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TenureMonths returns whole elapsed days between signed and now divided by
// 30.44, rounded to one decimal.
func TenureMonths(signed, now time.Time) float64 {
	days := math.Floor(now.Sub(signed).Hours() / 24)
	return math.RoundToEven(days/daysPerMonth*10) / 10
}

// TenureColumn derives contract tenure in months from a signature-date column.
// Missing or unparseable dates yield missing tenure, never zero.
func TenureColumn(dates []table.Cell, now time.Time) []Number {
	out := make([]Number, len(dates))
	for i, c := range dates {
		if !c.Valid {
			continue
		}
		if t, ok := ParseDate(c.Value); ok {
			out[i] = Num(TenureMonths(t, now))
		}
	}
	return out
}
