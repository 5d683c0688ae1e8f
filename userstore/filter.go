package userstore

// AggregationKind names the aggregate function applied per user when a
// behavioral filter carries a threshold. The value is rendered verbatim into
// the generated query, so it must be a function the backend understands.
type AggregationKind string

const (
	AggregationCount             AggregationKind = "COUNT"
	AggregationCountUnique       AggregationKind = "COUNT_UNIQUE"
	AggregationSum               AggregationKind = "SUM"
	AggregationMinimum           AggregationKind = "MINIMUM"
	AggregationMaximum           AggregationKind = "MAXIMUM"
	AggregationAverage           AggregationKind = "AVERAGE"
	AggregationApproximateUnique AggregationKind = "APPROXIMATE_UNIQUE"
)

// Aggregation is a per-user aggregate threshold for an EventFilter.
// The aggregate of Field over the user's rows in the collection is compared
// against Minimum and/or Maximum. For a COUNT without a Field, the user id
// column of the collection is aggregated.
type Aggregation struct {
	Type    AggregationKind
	Field   string
	Minimum *int64
	Maximum *int64
}

// EventFilter restricts the user result set based on the user's events in a
// named collection. Without an Aggregation it matches every user that has at
// least one event in the collection (optionally restricted by Filter).
type EventFilter struct {
	Collection  string
	Filter      Expression
	Aggregation *Aggregation
}

// SortOrder is the direction of a Sorting clause.
type SortOrder string

const (
	SortAscending  SortOrder = "ASC"
	SortDescending SortOrder = "DESC"
)

// Sorting orders the user result set by one column of the tenant's user table.
// The column must be part of the tenant's current schema.
type Sorting struct {
	Column string
	Order  SortOrder
}
