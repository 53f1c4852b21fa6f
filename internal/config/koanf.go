// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/segmatch/config.yaml",
	"/etc/segmatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:      "/data/segmatch.duckdb",
			MaxMemory: "2GB",
			Threads:   0,
		},
		Input: InputConfig{
			Dir:       "/data/raw",
			Delimiter: ";",
			NPSFiles: []string{
				"nps_relacional.csv",
				"nps_transacional_aquisicao.csv",
				"nps_transacional_implantacao.csv",
				"nps_transacional_onboarding.csv",
				"nps_transacional_produto.csv",
				"nps_transacional_suporte.csv",
			},
			Tickets:          "tickets.csv",
			MRR:              "mrr.csv",
			Contracts:        "contratacoes_ultimos_12_meses.csv",
			Customers:        "dados_clientes.csv",
			CustomersSince:   "clientes_desde.csv",
			History:          "historico.csv",
			TelemetryPattern: "telemetria_%d.csv",
			TelemetryFiles:   11,
		},
		Output: OutputConfig{
			Dir:     "/data/output",
			Format:  "csv",
			Summary: true,
		},
		Identity: IdentityConfig{
			CanonicalKey: "customer_id",
			Candidates: []string{
				"CD_CLIENTE", "CLIENTE", "IdCliente", "ID_CLIENTE",
				"COD_CLIENTE", "CODIGO_CLIENTE", "CD_CLI", "metadata_codcliente",
			},
		},
		Features: FeaturesConfig{
			Numeric: []string{
				"MRR_12M", "QTD_CONTRATACOES_12M", "VLR_CONTRATACOES_12M",
				"NPS_MEDIO", "VL_TOTAL_CONTRATO", "ANTIGUIDADE_MESES",
			},
			Categorical: []string{"DS_SEGMENTO", "FAT_FAIXA"},
		},
		Cluster: ClusterConfig{
			Candidates:    []int{3, 4, 5, 6},
			Seed:          42, // Default seed for determinism
			MaxIterations: 300,
			Tolerance:     1e-4,
			Workers:       4,
		},
		Recommend: RecommendConfig{
			TopN:          3,
			ProductColumn: "DS_PROD",
		},
		Schedule: ScheduleConfig{
			Interval:   0, // Run once
			RunTimeout: 30 * time.Minute,
		},
		Server: ServerConfig{
			Enabled: false,
			Host:    "0.0.0.0",
			Port:    8090,
			Timeout: 30 * time.Second,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile loads configuration from an explicit YAML file plus environment overrides.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"input.nps_files",
	"identity.candidates",
	"features.numeric",
	"features.categorical",
	"cluster.candidates",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Database mappings
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Input mappings
	"input_dir":               "input.dir",
	"input_delimiter":         "input.delimiter",
	"input_nps_files":         "input.nps_files",
	"input_tickets":           "input.tickets",
	"input_mrr":               "input.mrr",
	"input_contracts":         "input.contracts",
	"input_customers":         "input.customers",
	"input_customers_since":   "input.customers_since",
	"input_history":           "input.history",
	"input_telemetry_pattern": "input.telemetry_pattern",
	"input_telemetry_files":   "input.telemetry_files",

	// Output mappings
	"output_dir":     "output.dir",
	"output_format":  "output.format",
	"output_summary": "output.summary",

	// Identity mappings
	"canonical_key":  "identity.canonical_key",
	"key_candidates": "identity.candidates",

	// Feature mappings
	"features_numeric":     "features.numeric",
	"features_categorical": "features.categorical",
	"reference_date":       "features.reference_date",

	// Cluster mappings
	"cluster_candidates":     "cluster.candidates",
	"cluster_seed":           "cluster.seed",
	"cluster_max_iterations": "cluster.max_iterations",
	"cluster_tolerance":      "cluster.tolerance",
	"cluster_workers":        "cluster.workers",

	// Recommendation mappings
	"recommend_top_n":          "recommend.top_n",
	"recommend_product_column": "recommend.product_column",

	// Schedule mappings
	"schedule_interval": "schedule.interval",
	"run_timeout":       "schedule.run_timeout",

	// Server mappings
	"http_enabled": "server.enabled",
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - CLUSTER_CANDIDATES -> cluster.candidates
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
