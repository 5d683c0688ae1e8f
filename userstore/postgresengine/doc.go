// Package postgresengine provides a PostgreSQL-backed implementation of the
// dynamic user store.
//
// Each tenant (project) owns one schema holding a user table with an open,
// dynamically growing set of property columns plus one table per named event
// collection. The engine:
//
//   - compiles boolean filter expressions and behavioral event filters into
//     predicate fragments referencing the user table's primary key
//   - resolves and caches per-tenant column metadata from the catalog
//   - dispatches the paginated user query and, when possible, an independent
//     total-count query, merging both outcomes into one result
//   - evolves the schema when a previously unknown property is written,
//     inferring the column's storage type from the value
//
// The engine supports pgxpool.Pool, sql.DB, and sqlx.DB connections through
// internal adapters, and exposes optional structured logging, metrics, and
// tracing via the userstore observability interfaces.
package postgresengine
