// Package userstore provides core abstractions and types for querying and
// mutating per-tenant user profiles with a dynamic, open property schema.
//
// This package defines the fundamental types used across different user store
// implementations, including behavioral event filters, aggregation thresholds,
// column metadata, and common error definitions.
//
// A user store supports:
//   - Filtering users by a boolean expression over their stored properties
//   - Filtering users by conditions on their events in named collections,
//     optionally aggregated per user (e.g. "did X at least N times")
//   - Paginated results with an independent total count
//   - Schema evolution: writing a previously unknown property adds a column
//
// Key types:
//   - EventFilter: a behavioral filter over a named event collection
//   - Aggregation: a per-user aggregate threshold for an EventFilter
//   - Column: resolved metadata for one column of a tenant's user table
//   - QueryResult: rows, column metadata and auxiliary scalars of one query
//
// Common usage pattern:
//
//	minPurchases := int64(2)
//	execution, err := store.Filter(ctx, "acme", nil, []userstore.EventFilter{
//		{
//			Collection: "purchase",
//			Aggregation: &userstore.Aggregation{
//				Type:    userstore.AggregationCount,
//				Minimum: &minPurchases,
//			},
//		},
//	}, nil, 10, 0)
//	if err != nil {
//		// handle validation error
//	}
//
//	result := execution.Result(ctx)
//	if result.Failed() {
//		// handle result.Err
//	}
package userstore
