// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package table

import (
	"reflect"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"NPS", "nps"},
		{"Resposta NPS", "resposta_nps"},
		{"Tempo de Resolução (h)", "tempo_de_resolucao_h"},
		{"  __Ação--Média__ ", "acao_media"},
		{"CD_CLIENTE", "cd_cliente"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeHeader(tt.input); got != tt.want {
				t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestApplySynonyms(t *testing.T) {
	t.Run("renames first alias in column order", func(t *testing.T) {
		tbl := FromRows("nps", []string{"id", "Nota NPS", "nps"}, nil)
		out := ApplySynonyms(tbl, DefaultSynonyms)
		if got := out.Columns(); !reflect.DeepEqual(got, []string{"id", "NPS", "nps"}) {
			t.Errorf("Columns() = %v", got)
		}
	})

	t.Run("keeps existing canonical column", func(t *testing.T) {
		tbl := FromRows("nps", []string{"NPS", "resposta_nps"}, nil)
		out := ApplySynonyms(tbl, DefaultSynonyms)
		if got := out.Columns(); !reflect.DeepEqual(got, []string{"NPS", "resposta_nps"}) {
			t.Errorf("Columns() = %v", got)
		}
	})

	t.Run("no alias present", func(t *testing.T) {
		tbl := FromRows("nps", []string{"score"}, nil)
		out := ApplySynonyms(tbl, DefaultSynonyms)
		if out.HasColumn("NPS") {
			t.Error("unexpected NPS column")
		}
	})
}

func TestFindColumn(t *testing.T) {
	tbl := FromRows("tickets", []string{"BK_TICKET", "Tempo Resolução"}, nil)

	col, ok := FindColumn(tbl, func(n string) bool { return n == "tempo_resolucao" })
	if !ok || col != "Tempo Resolução" {
		t.Errorf("FindColumn() = %q, %v", col, ok)
	}
	if _, ok := FindColumn(tbl, func(n string) bool { return n == "missing" }); ok {
		t.Error("FindColumn() matched a missing column")
	}
}
