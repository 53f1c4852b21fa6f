// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package recommend

import (
	"strings"

	"github.com/tomtom215/segmatch/internal/table"
)

// Assignment maps customer IDs to cluster labels.
type Assignment map[string]int

// NewAssignment pairs customer IDs with their labels.
func NewAssignment(customerIDs []string, labels []int) Assignment {
	a := make(Assignment, len(customerIDs))
	for i, id := range customerIDs {
		if i < len(labels) {
			a[id] = labels[i]
		}
	}
	return a
}

// Holdings records which products each customer currently holds.
// Product order is the order of first appearance in the input.
type Holdings struct {
	customers []string
	products  map[string][]string
	held      map[string]map[string]struct{}
	order     map[string]int
}

// NewHoldings creates an empty holdings set.
func NewHoldings() *Holdings {
	return &Holdings{
		products: make(map[string][]string),
		held:     make(map[string]map[string]struct{}),
		order:    make(map[string]int),
	}
}

// Add records that customer holds product. The customer key is kept
// verbatim so it matches the cluster assignment; product names are trimmed.
// Blank values and repeats are ignored.
func (h *Holdings) Add(customer, product string) {
	product = strings.TrimSpace(product)
	if strings.TrimSpace(customer) == "" || product == "" {
		return
	}
	if _, ok := h.order[product]; !ok {
		h.order[product] = len(h.order)
	}
	set, ok := h.held[customer]
	if !ok {
		set = make(map[string]struct{})
		h.held[customer] = set
		h.customers = append(h.customers, customer)
	}
	if _, dup := set[product]; dup {
		return
	}
	set[product] = struct{}{}
	h.products[customer] = append(h.products[customer], product)
}

// HoldingsFromTable reads (key, product) pairs from t. Rows with a null key
// or product are skipped.
func HoldingsFromTable(t *table.Table, key, productColumn string) *Holdings {
	h := NewHoldings()
	if !t.HasColumn(key) || !t.HasColumn(productColumn) {
		return h
	}
	for i := 0; i < t.Len(); i++ {
		k := t.Get(i, key)
		p := t.Get(i, productColumn)
		if k.Valid && p.Valid {
			h.Add(k.Value, p.Value)
		}
	}
	return h
}

// Holds reports whether customer holds product.
func (h *Holdings) Holds(customer, product string) bool {
	_, ok := h.held[customer][product]
	return ok
}

// Products returns the products held by customer in first-seen order.
func (h *Holdings) Products(customer string) []string {
	return append([]string(nil), h.products[customer]...)
}

// Customers returns every customer with at least one holding, in first-seen order.
func (h *Holdings) Customers() []string {
	return append([]string(nil), h.customers...)
}

// Recommendation is the recommendation list of one customer.
type Recommendation struct {
	CustomerID string
	Cluster    int
	Clustered  bool
	Products   []string
}

// String returns the products as a human-readable list ("A, B, C").
func (r Recommendation) String() string {
	return strings.Join(r.Products, ", ")
}
