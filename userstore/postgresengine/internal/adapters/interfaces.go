package adapters

import "context"

// DBAdapter defines the interface for database operations needed by the user store.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBRows defines the interface for query result rows.
// Columns and Values support the dynamic projections of an open schema,
// where the shape of a row is only known at query time.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Values() ([]any, error)
	Columns() ([]string, error)
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}
