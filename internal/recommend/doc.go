// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

// Package recommend implements product-gap recommendations over customer clusters.
//
// # Algorithm
//
// Each customer belongs to at most one cluster and holds zero or more
// products. For every cluster the engine ranks products by the number of
// distinct customers in that cluster who hold them:
//
//	score(cluster, product) = |{customer in cluster : customer holds product}|
//
// A customer's recommendations are the cluster's ranked products with the
// ones they already hold removed, truncated to N (default 3). Rank order is
// preserved.
//
// # Tie-Breaking
//
// Products with equal counts keep the order in which they first appear in
// the holdings input. This is a documented policy; holdings that arrive in a
// different order can reorder tied products.
//
// # Edge Cases
//
//   - A customer without a cluster receives an empty list
//   - A cluster without held products yields an empty list for its members
//   - Holdings of customers that are not clustered do not contribute to any ranking
//
// # Usage
//
//	assignment := recommend.NewAssignment(customerIDs, labels)
//	holdings := recommend.HoldingsFromTable(customers, "customer_id", "DS_PROD")
//	gen := recommend.NewGenerator(assignment, holdings, recommend.Config{TopN: 3}, logger)
//	recs := gen.Recommend("C001")
package recommend
