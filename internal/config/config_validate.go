// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/segmatch/internal/validation"
)

// Validate checks that required configuration is present and valid.
// Struct tags are checked first, then cross-field rules.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validateInput(); err != nil {
		return err
	}

	if err := c.validateIdentity(); err != nil {
		return err
	}

	if err := c.validateCluster(); err != nil {
		return err
	}

	return c.validateServer()
}

// validateInput checks that the telemetry pattern carries exactly one %d verb.
func (c *Config) validateInput() error {
	if c.Input.TelemetryFiles == 0 {
		return nil
	}
	if strings.Count(c.Input.TelemetryPattern, "%d") != 1 {
		return fmt.Errorf("INPUT_TELEMETRY_PATTERN must contain exactly one %%d verb, got %q", c.Input.TelemetryPattern)
	}
	return nil
}

// validateIdentity rejects a canonical key that also appears as a candidate.
func (c *Config) validateIdentity() error {
	seen := make(map[string]struct{}, len(c.Identity.Candidates))
	for _, cand := range c.Identity.Candidates {
		if cand == c.Identity.CanonicalKey {
			return fmt.Errorf("KEY_CANDIDATES must not contain the canonical key %q", cand)
		}
		if _, dup := seen[cand]; dup {
			return fmt.Errorf("KEY_CANDIDATES contains duplicate column %q", cand)
		}
		seen[cand] = struct{}{}
	}
	return nil
}

// validateCluster rejects repeated candidate cluster counts.
func (c *Config) validateCluster() error {
	seen := make(map[int]struct{}, len(c.Cluster.Candidates))
	for _, k := range c.Cluster.Candidates {
		if _, dup := seen[k]; dup {
			return fmt.Errorf("CLUSTER_CANDIDATES contains duplicate value %d", k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HTTP_HOST is required when HTTP_ENABLED=true")
	}
	return nil
}

// Addr returns host:port for the ops server.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
