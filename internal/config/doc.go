// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

/*
Package config provides configuration loading and validation for Segmatch.

Configuration is layered with Koanf v2:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, config.yaml, config.yml,
    /etc/segmatch/config.yaml or /etc/segmatch/config.yml
 3. Environment variables, which override everything else

Only mapped environment variables are read (see envMappings). List settings
such as CLUSTER_CANDIDATES or KEY_CANDIDATES accept comma-separated values.

# Environment Variables

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: include file:line (default: false)

Database:
  - DUCKDB_PATH: database file (default: /data/segmatch.duckdb)
  - DUCKDB_MAX_MEMORY: memory limit (default: 2GB)
  - DUCKDB_THREADS: worker threads, 0 for NumCPU (default: 0)

Input and output:
  - INPUT_DIR: raw CSV directory (default: /data/raw)
  - INPUT_DELIMITER: CSV delimiter (default: ;)
  - OUTPUT_DIR: export directory (default: /data/output)
  - OUTPUT_FORMAT: csv or parquet (default: csv)

Modeling:
  - CANONICAL_KEY: unified customer key (default: customer_id)
  - CLUSTER_CANDIDATES: cluster counts to evaluate (default: 3,4,5,6)
  - CLUSTER_SEED: k-means seed (default: 42)
  - RECOMMEND_TOP_N: products per customer (default: 3)
  - REFERENCE_DATE: tenure reference date, YYYY-MM-DD (default: run time)

Scheduling and ops server:
  - SCHEDULE_INTERVAL: time between runs, 0 runs once (default: 0)
  - RUN_TIMEOUT: deadline for one run (default: 30m)
  - HTTP_ENABLED, HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
