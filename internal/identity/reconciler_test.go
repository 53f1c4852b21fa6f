// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package identity

import (
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/segmatch/internal/table"
)

func TestReconcile(t *testing.T) {
	r := NewReconciler("", nil, zerolog.Nop())

	tests := []struct {
		name       string
		columns    []string
		rows       [][]string
		wantStatus Status
		wantSource string
		wantKey    []string
	}{
		{
			name:       "copies highest priority candidate",
			columns:    []string{"IdCliente", "CLIENTE", "x"},
			rows:       [][]string{{"a1", "b1", "1"}, {"a2", "b2", "2"}},
			wantStatus: StatusCopied,
			wantSource: "CLIENTE",
			wantKey:    []string{"b1", "b2"},
		},
		{
			name:       "single low priority candidate",
			columns:    []string{"metadata_codcliente"},
			rows:       [][]string{{"007"}},
			wantStatus: StatusCopied,
			wantSource: "metadata_codcliente",
			wantKey:    []string{"007"},
		},
		{
			name:       "canonical key already present",
			columns:    []string{"customer_id", "CD_CLIENTE"},
			rows:       [][]string{{"k", "other"}},
			wantStatus: StatusAlreadyKeyed,
			wantKey:    []string{"k"},
		},
		{
			name:       "no candidate",
			columns:    []string{"CODIGO_ORGANIZACAO"},
			rows:       [][]string{{"org"}},
			wantStatus: StatusMissingKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := table.FromRows("src", tt.columns, tt.rows)
			before := in.Columns()

			res := r.Reconcile(in)

			if res.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", res.Status, tt.wantStatus)
			}
			if res.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", res.Source, tt.wantSource)
			}
			if !reflect.DeepEqual(in.Columns(), before) {
				t.Errorf("input columns mutated: %v", in.Columns())
			}

			if tt.wantStatus == StatusMissingKey {
				if res.Table != in {
					t.Error("missing-key result should return the input table unchanged")
				}
				if res.Keyed() {
					t.Error("Keyed() = true, want false")
				}
				return
			}
			if tt.wantStatus == StatusAlreadyKeyed && res.Table != in {
				t.Error("already-keyed result should return the input table")
			}

			col := res.Table.Column(DefaultCanonicalKey)
			got := make([]string, len(col))
			for i, c := range col {
				got[i] = c.Value
			}
			if !reflect.DeepEqual(got, tt.wantKey) {
				t.Errorf("customer_id = %v, want %v", got, tt.wantKey)
			}
		})
	}
}

func TestReconcile_CustomCanonicalKey(t *testing.T) {
	r := NewReconciler("CD_CLIENTE", []string{"CD_CLI"}, zerolog.Nop())
	if r.CanonicalKey() != "CD_CLIENTE" {
		t.Errorf("CanonicalKey() = %q", r.CanonicalKey())
	}

	res := r.Reconcile(table.FromRows("t", []string{"CD_CLI"}, [][]string{{"9"}}))
	if res.Status != StatusCopied {
		t.Fatalf("Status = %v, want copied", res.Status)
	}
	if got := res.Table.Get(0, "CD_CLIENTE").Value; got != "9" {
		t.Errorf("CD_CLIENTE = %q, want 9", got)
	}
}

func TestStatusString(t *testing.T) {
	if StatusCopied.String() != "copied" || StatusMissingKey.String() != "missing_key" {
		t.Error("unexpected status names")
	}
}
