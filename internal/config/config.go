// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package config

import (
	"path/filepath"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Logging   LoggingConfig   `koanf:"logging"`
	Database  DatabaseConfig  `koanf:"database"`
	Input     InputConfig     `koanf:"input"`
	Output    OutputConfig    `koanf:"output"`
	Identity  IdentityConfig  `koanf:"identity"`
	Features  FeaturesConfig  `koanf:"features"`
	Cluster   ClusterConfig   `koanf:"cluster"`
	Recommend RecommendConfig `koanf:"recommend"`
	Schedule  ScheduleConfig  `koanf:"schedule"`
	Server    ServerConfig    `koanf:"server"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller adds file:line to each entry.
	Caller bool `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory" validate:"required"`
	Threads   int    `koanf:"threads" validate:"gte=0"` // 0 = use NumCPU
}

// InputConfig names the raw source files. Relative file names resolve
// against Dir.
type InputConfig struct {
	Dir       string `koanf:"dir" validate:"required"`
	Delimiter string `koanf:"delimiter" validate:"required,len=1"`

	NPSFiles       []string `koanf:"nps_files" validate:"min=1,dive,required"`
	Tickets        string   `koanf:"tickets" validate:"required"`
	MRR            string   `koanf:"mrr" validate:"required"`
	Contracts      string   `koanf:"contracts" validate:"required"`
	Customers      string   `koanf:"customers" validate:"required"`
	CustomersSince string   `koanf:"customers_since" validate:"required"`
	History        string   `koanf:"history" validate:"required"`

	// TelemetryPattern is a fmt pattern with one %d verb, expanded for 1..TelemetryFiles.
	TelemetryPattern string `koanf:"telemetry_pattern" validate:"required"`
	TelemetryFiles   int    `koanf:"telemetry_files" validate:"gte=0"`
}

// Path resolves a source file name against Dir.
func (c InputConfig) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Dir, name)
}

// OutputConfig holds output export settings.
type OutputConfig struct {
	Dir    string `koanf:"dir" validate:"required"`
	Format string `koanf:"format" validate:"oneof=csv parquet"`

	// Summary writes run_summary.json next to the exports.
	Summary bool `koanf:"summary"`
}

// IdentityConfig controls customer key reconciliation.
type IdentityConfig struct {
	CanonicalKey string   `koanf:"canonical_key" validate:"required"`
	Candidates   []string `koanf:"candidates" validate:"min=1,dive,required"`
}

// FeaturesConfig controls feature construction.
type FeaturesConfig struct {
	Numeric     []string `koanf:"numeric" validate:"dive,required"`
	Categorical []string `koanf:"categorical" validate:"dive,required"`

	// ReferenceDate fixes "today" for tenure (YYYY-MM-DD). Empty uses the run time.
	ReferenceDate string `koanf:"reference_date" validate:"omitempty,datetime=2006-01-02"`
}

// ClusterConfig controls cluster-count selection.
type ClusterConfig struct {
	Candidates    []int   `koanf:"candidates" validate:"min=1,dive,gte=2"`
	Seed          int64   `koanf:"seed"`
	MaxIterations int     `koanf:"max_iterations" validate:"gte=1"`
	Tolerance     float64 `koanf:"tolerance" validate:"gte=0"`
	Workers       int     `koanf:"workers" validate:"gte=0"` // 0 or 1 = sequential
}

// RecommendConfig controls recommendation generation.
type RecommendConfig struct {
	TopN          int    `koanf:"top_n" validate:"gte=1"`
	ProductColumn string `koanf:"product_column" validate:"required"`
}

// ScheduleConfig controls repeated runs.
type ScheduleConfig struct {
	// Interval between runs. 0 runs the pipeline once and exits.
	Interval time.Duration `koanf:"interval" validate:"gte=0"`

	// RunTimeout bounds a single run. 0 disables the deadline.
	RunTimeout time.Duration `koanf:"run_timeout" validate:"gte=0"`
}

// ServerConfig holds the ops HTTP server settings.
type ServerConfig struct {
	Enabled bool          `koanf:"enabled"`
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// ReferenceTime returns the configured tenure reference date, or the zero
// time when none is set.
func (c FeaturesConfig) ReferenceTime() time.Time {
	if c.ReferenceDate == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", c.ReferenceDate)
	if err != nil {
		return time.Time{}
	}
	return t
}
