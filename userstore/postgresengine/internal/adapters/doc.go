// Package adapters provides database adapter implementations for the PostgreSQL user store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the user store to work seamlessly with any
// supported database connection type.
//
// Because user tables have an open, per-tenant schema, the row interface exposes
// column names and generically scanned values in addition to positional Scan.
package adapters
