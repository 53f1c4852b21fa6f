// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type sample struct {
	Dir    string `validate:"required"`
	Format string `validate:"oneof=csv parquet"`
	TopN   int    `validate:"gte=1"`
	Ks     []int  `validate:"min=1,dive,gte=2"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     sample
		wantErr   bool
		wantInMsg string
	}{
		{
			name:  "valid",
			input: sample{Dir: "out", Format: "csv", TopN: 3, Ks: []int{3, 4}},
		},
		{
			name:      "missing dir",
			input:     sample{Format: "csv", TopN: 3, Ks: []int{3}},
			wantErr:   true,
			wantInMsg: "sample.Dir is required",
		},
		{
			name:      "bad format",
			input:     sample{Dir: "o", Format: "xlsx", TopN: 3, Ks: []int{3}},
			wantErr:   true,
			wantInMsg: "must be one of: csv parquet",
		},
		{
			name:      "top n too small",
			input:     sample{Dir: "o", Format: "csv", TopN: 0, Ks: []int{3}},
			wantErr:   true,
			wantInMsg: "greater than or equal to 1",
		},
		{
			name:      "empty candidates",
			input:     sample{Dir: "o", Format: "csv", TopN: 1},
			wantErr:   true,
			wantInMsg: "must have at least 1 entries",
		},
		{
			name:      "candidate below two",
			input:     sample{Dir: "o", Format: "csv", TopN: 1, Ks: []int{1}},
			wantErr:   true,
			wantInMsg: "sample.Ks[0] must be greater than or equal to 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !strings.Contains(err.Error(), tt.wantInMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantInMsg)
			}
			var se *StructError
			if !errors.As(err, &se) || len(se.Fields) == 0 {
				t.Errorf("error should be a *StructError with fields, got %T", err)
			}
		})
	}
}

func TestStructError_Empty(t *testing.T) {
	if got := (&StructError{}).Error(); got != "validation failed" {
		t.Errorf("Error() = %q, want %q", got, "validation failed")
	}
}
