// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

// Package etl treats the raw source files into keyed intermediate tables and
// assembles the analytic base the feature builder consumes.
//
// Each source stage (NPS, Tickets, Sales, Customers, Telemetry) reads its
// files through a Store, reconciles the customer key, and saves one treated
// table. Tables without a resolvable key are saved under an "_inspecao" name
// and recorded as a *MissingKeyError in the stage Report; the run goes on.
// A missing required file ends only its own stage with a
// *database.MissingArtifactError.
//
// BuildBase joins clientes_tratado with vendas_tratado and the per-customer
// mean NPS into base_analitica. Only a missing clientes_tratado stops it.
package etl
