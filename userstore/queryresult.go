package userstore

import (
	jsoniter "github.com/json-iterator/go"
)

// TotalResultProperty is the auxiliary scalar key carrying the un-paginated
// total count of a filter query.
const TotalResultProperty = "totalResult"

// QueryResult is the outcome of one dispatched user query: the resolved
// column metadata, the result rows in column order, optional auxiliary named
// scalars, and the error if the query failed.
type QueryResult struct {
	Columns    []Column       `json:"columns"`
	Rows       [][]any        `json:"rows"`
	Properties map[string]any `json:"properties,omitempty"`
	Err        error          `json:"-"`
}

// FailedResult builds a QueryResult carrying only an error.
func FailedResult(err error) QueryResult {
	return QueryResult{Err: err}
}

// Failed reports whether the query producing this result failed.
func (r QueryResult) Failed() bool {
	return r.Err != nil
}

// TotalResult returns the auxiliary total count scalar if present.
// The count query delivers the value as whatever integer type the adapter
// scanned, so common widths are coerced to int64.
func (r QueryResult) TotalResult() (int64, bool) {
	raw, ok := r.Properties[TotalResultProperty]
	if !ok {
		return 0, false
	}

	switch v := raw.(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// ToJSON serializes the result for transport. A failed result serializes to
// an object with only an "error" member.
func (r QueryResult) ToJSON() ([]byte, error) {
	if r.Failed() {
		return jsoniter.ConfigFastest.Marshal(map[string]string{"error": r.Err.Error()})
	}

	return jsoniter.ConfigFastest.Marshal(r)
}
