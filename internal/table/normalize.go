// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package table

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader folds a column header into a comparable form:
// lowercase, accents stripped, runs of non-alphanumerics collapsed to "_",
// and leading/trailing "_" trimmed.
//
//	NormalizeHeader("Tempo de Resolução (h)") == "tempo_de_resolucao_h"
func NormalizeHeader(s string) string {
	stripped, _, err := transform.String(accentStripper(), s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pendingSep := false
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// accentStripper returns a fresh transformer; transform.Transformer is stateful.
func accentStripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Synonyms maps a canonical column name to the normalized headers that
// should be read as that column.
type Synonyms map[string][]string

// DefaultSynonyms is the declared synonym table for source headers.
var DefaultSynonyms = Synonyms{
	"NPS": {"nps", "resposta_nps", "nota_nps"},
}

// ApplySynonyms renames, for each canonical name, the first column (in table
// order) whose normalized header is one of its aliases. Canonical names that
// already exist are left alone, and no existing column is overwritten.
// Canonical names are processed in sorted order so the result is deterministic.
func ApplySynonyms(t *Table, syn Synonyms) *Table {
	canon := make([]string, 0, len(syn))
	for c := range syn {
		canon = append(canon, c)
	}
	sort.Strings(canon)

	out := t.Clone()
	for _, c := range canon {
		if out.HasColumn(c) {
			continue
		}
		aliases := make(map[string]struct{}, len(syn[c]))
		for _, a := range syn[c] {
			aliases[NormalizeHeader(a)] = struct{}{}
		}
		col, ok := FindColumn(out, func(normalized string) bool {
			_, hit := aliases[normalized]
			return hit
		})
		if ok {
			out = out.Rename(col, c)
		}
	}
	return out
}

// FindColumn returns the first column whose normalized header satisfies match.
func FindColumn(t *Table, match func(normalized string) bool) (string, bool) {
	for _, c := range t.columns {
		if match(NormalizeHeader(c)) {
			return c, true
		}
	}
	return "", false
}
