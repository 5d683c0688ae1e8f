package postgresengine

import (
	"fmt"
	"strings"

	"github.com/tenantkit/dynamic-userstore-go/userstore"
)

// collectionSubquery is the structured form of one behavioral sub-query
// against a tenant's event collection. It is rendered to text only at the
// boundary, so identifier placement and clause composition stay testable.
type collectionSubquery struct {
	project     string
	collection  string
	where       string
	groupByUser bool
	having      string
}

func (q collectionSubquery) render() string {
	var builder strings.Builder

	fmt.Fprintf(&builder, `select "%s" from %s.%s`, collectionUserColumn, q.project, q.collection)

	if q.where != "" {
		builder.WriteString(" where ")
		builder.WriteString(q.where)
	}

	if q.groupByUser {
		fmt.Fprintf(&builder, ` group by "%s"`, collectionUserColumn)
	}

	if q.having != "" {
		builder.WriteString(" having ")
		builder.WriteString(q.having)
	}

	return builder.String()
}

// compileFilters turns the boolean filter expression and the behavioral event
// filters into self-contained predicate fragments, each referencing the
// primary key column, to be AND-joined into the WHERE clause of the user
// query. Fragment order: boolean filter first, then event filters in input
// order, with a minimum-threshold fragment before its maximum counterpart.
func (us *UserStore) compileFilters(
	project string,
	filterExpression userstore.Expression,
	eventFilters []userstore.EventFilter,
) ([]string, error) {

	fragments := make([]string, 0, len(eventFilters)+1)

	if filterExpression != nil {
		predicate, formatErr := us.formatter.Format(filterExpression)
		if formatErr != nil {
			return nil, formatErr
		}

		fragments = append(fragments, predicate)
	}

	for _, eventFilter := range eventFilters {
		compiled, compileErr := us.compileEventFilter(project, eventFilter)
		if compileErr != nil {
			return nil, compileErr
		}

		fragments = append(fragments, compiled...)
	}

	return fragments, nil
}

func (us *UserStore) compileEventFilter(project string, eventFilter userstore.EventFilter) ([]string, error) {
	if err := userstore.CheckCollection(eventFilter.Collection); err != nil {
		return nil, err
	}

	subquery := collectionSubquery{
		project:    project,
		collection: eventFilter.Collection,
	}

	if eventFilter.Filter != nil {
		predicate, formatErr := us.formatter.Format(eventFilter.Filter)
		if formatErr != nil {
			return nil, formatErr
		}

		subquery.where = predicate
	}

	aggregation := eventFilter.Aggregation
	if aggregation == nil {
		return []string{fmt.Sprintf("%s in (%s)", primaryKeyColumn, subquery.render())}, nil
	}

	field := aggregation.Field
	if aggregation.Type == userstore.AggregationCount && field == "" {
		field = collectionUserColumn
	}

	subquery.groupByUser = true

	fragments := make([]string, 0, 2)

	if aggregation.Minimum != nil {
		minSubquery := subquery
		minSubquery.having = fmt.Sprintf(`%s("%s") > %d`, aggregation.Type, field, *aggregation.Minimum)
		fragments = append(fragments, fmt.Sprintf("%s in (%s)", primaryKeyColumn, minSubquery.render()))
	}

	if aggregation.Maximum != nil {
		// TODO: confirm whether the maximum threshold should compare with <=
		// instead of >; existing callers may depend on the current comparator.
		maxSubquery := subquery
		maxSubquery.having = fmt.Sprintf(`%s("%s") > %d`, aggregation.Type, field, *aggregation.Maximum)
		fragments = append(fragments, fmt.Sprintf("%s not in (%s)", primaryKeyColumn, maxSubquery.render()))
	}

	return fragments, nil
}
