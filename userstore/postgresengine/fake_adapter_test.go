package postgresengine

import (
	"context"
	"strings"
	"sync"

	"github.com/tenantkit/dynamic-userstore-go/userstore/postgresengine/internal/adapters"
)

// fakeResponse is one scripted outcome for a query matched by substring.
type fakeResponse struct {
	columns []string
	rows    [][]any
	err     error
}

type fakeRule struct {
	substring string
	response  fakeResponse
}

// fakeAdapter is a scripted adapters.DBAdapter: queries and execs are matched
// against registered substrings in registration order, and every dispatched
// statement is recorded for assertions.
type fakeAdapter struct {
	mu         sync.Mutex
	queryRules []fakeRule
	execErrors []fakeRule
	queries    []string
	execs      []string
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{}
}

func (f *fakeAdapter) respondTo(substring string, response fakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queryRules = append(f.queryRules, fakeRule{substring: substring, response: response})
}

func (f *fakeAdapter) failExecOn(substring string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.execErrors = append(f.execErrors, fakeRule{substring: substring, response: fakeResponse{err: err}})
}

func (f *fakeAdapter) Query(_ context.Context, query string) (adapters.DBRows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, query)

	for _, rule := range f.queryRules {
		if strings.Contains(query, rule.substring) {
			if rule.response.err != nil {
				return nil, rule.response.err
			}

			return &fakeRows{columns: rule.response.columns, rows: rule.response.rows}, nil
		}
	}

	return &fakeRows{}, nil
}

func (f *fakeAdapter) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.execs = append(f.execs, query)

	for _, rule := range f.execErrors {
		if strings.Contains(query, rule.substring) {
			return nil, rule.response.err
		}
	}

	return fakeResult{}, nil
}

func (f *fakeAdapter) recordedQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.queries...)
}

func (f *fakeAdapter) recordedExecs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.execs...)
}

func (f *fakeAdapter) recordedQueryContaining(substring string) string {
	for _, query := range f.recordedQueries() {
		if strings.Contains(query, substring) {
			return query
		}
	}

	return ""
}

type fakeRows struct {
	columns []string
	rows    [][]any
	cursor  int
}

func (r *fakeRows) Next() bool {
	if r.cursor >= len(r.rows) {
		return false
	}

	r.cursor++

	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.cursor-1]
	for i, target := range dest {
		if i >= len(row) {
			break
		}

		switch typed := target.(type) {
		case *string:
			*typed = row[i].(string)
		case *int64:
			*typed = row[i].(int64)
		case *any:
			*typed = row[i]
		}
	}

	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	return append([]any(nil), r.rows[r.cursor-1]...), nil
}

func (r *fakeRows) Columns() ([]string, error) {
	return r.columns, nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	return nil
}

type fakeResult struct{}

func (fakeResult) RowsAffected() (int64, error) {
	return 1, nil
}

// newTestStore builds a UserStore over a fake adapter, applying any options.
func newTestStore(adapter *fakeAdapter, options ...Option) *UserStore {
	store, err := newUserStore(adapter, options...)
	if err != nil {
		panic(err)
	}

	return store
}

// scriptAcmeMetadata registers catalog responses for the "acme" project with
// an id (unique bigint) and the given extra text columns.
func scriptAcmeMetadata(adapter *fakeAdapter, extraColumns ...string) {
	adapter.respondTo("pg_index", fakeResponse{
		columns: []string{"attname"},
		rows:    [][]any{{"id"}},
	})

	catalogRows := [][]any{{"id", "bigint", "int8"}}
	for _, column := range extraColumns {
		catalogRows = append(catalogRows, []any{column, "text", "text"})
	}

	adapter.respondTo("information_schema", fakeResponse{
		columns: []string{"column_name", "data_type", "udt_name"},
		rows:    catalogRows,
	})
}
