// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate_CrossField(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"canonical key as candidate", func(c *Config) {
			c.Identity.Candidates = append(c.Identity.Candidates, "customer_id")
		}, "canonical key"},
		{"duplicate candidate column", func(c *Config) {
			c.Identity.Candidates = []string{"CLIENTE", "CLIENTE"}
		}, "duplicate column"},
		{"duplicate k", func(c *Config) {
			c.Cluster.Candidates = []int{3, 3}
		}, "duplicate value 3"},
		{"telemetry pattern without verb", func(c *Config) {
			c.Input.TelemetryPattern = "telemetria.csv"
		}, "%d"},
		{"telemetry pattern ignored when no files", func(c *Config) {
			c.Input.TelemetryPattern = "telemetria.csv"
			c.Input.TelemetryFiles = 0
		}, ""},
		{"server without host", func(c *Config) {
			c.Server.Enabled = true
			c.Server.Host = ""
		}, "HTTP_HOST"},
		{"zero server timeout", func(c *Config) {
			c.Server.Timeout = 0
		}, "Timeout"},
		{"negative interval", func(c *Config) {
			c.Schedule.Interval = -time.Second
		}, "Interval"},
		{"empty canonical key", func(c *Config) {
			c.Identity.CanonicalKey = ""
		}, "CanonicalKey"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestInputConfig_Path(t *testing.T) {
	in := InputConfig{Dir: "/srv/raw"}
	if got := in.Path("mrr.csv"); got != "/srv/raw/mrr.csv" {
		t.Errorf("Path(mrr.csv) = %q, want /srv/raw/mrr.csv", got)
	}
	if got := in.Path("/abs/mrr.csv"); got != "/abs/mrr.csv" {
		t.Errorf("Path(/abs/mrr.csv) = %q, want /abs/mrr.csv", got)
	}
}

func TestFeaturesConfig_ReferenceTime(t *testing.T) {
	if got := (FeaturesConfig{}).ReferenceTime(); !got.IsZero() {
		t.Errorf("ReferenceTime() = %v, want zero", got)
	}
	want := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	if got := (FeaturesConfig{ReferenceDate: "2024-06-30"}).ReferenceTime(); !got.Equal(want) {
		t.Errorf("ReferenceTime() = %v, want %v", got, want)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8090}
	if got := s.Addr(); got != "127.0.0.1:8090" {
		t.Errorf("Addr() = %q, want 127.0.0.1:8090", got)
	}
}
