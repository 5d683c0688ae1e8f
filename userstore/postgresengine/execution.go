package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tenantkit/dynamic-userstore-go/userstore"
	"github.com/tenantkit/dynamic-userstore-go/userstore/postgresengine/internal/adapters"
)

// QueryExecution is the future-like handle of one dispatched user query.
// The query runs to completion (or failure) once dispatched; Result only
// controls how long the caller is willing to wait for the outcome.
type QueryExecution struct {
	queryID string
	done    chan struct{}
	result  userstore.QueryResult
}

func newQueryExecution() *QueryExecution {
	return &QueryExecution{
		queryID: uuid.NewString(),
		done:    make(chan struct{}),
	}
}

func completedExecution(result userstore.QueryResult) *QueryExecution {
	execution := newQueryExecution()
	execution.complete(result)

	return execution
}

// QueryID returns the unique id assigned to this dispatch, as attached to
// log records and spans.
func (e *QueryExecution) QueryID() string {
	return e.queryID
}

// Done returns a channel that is closed once the query has completed.
func (e *QueryExecution) Done() <-chan struct{} {
	return e.done
}

// Result blocks until the query has completed and returns its result.
// If the context expires first, a failed result carrying the context error is
// returned; the query itself still runs to completion in the background.
func (e *QueryExecution) Result(ctx context.Context) userstore.QueryResult {
	select {
	case <-ctx.Done():
		return userstore.FailedResult(ctx.Err())
	case <-e.done:
		return e.result
	}
}

func (e *QueryExecution) complete(result userstore.QueryResult) {
	e.result = result
	close(e.done)
}

// wait blocks unconditionally; used by the merge barrier, which must observe
// both outcomes before producing a merged result.
func (e *QueryExecution) wait() userstore.QueryResult {
	<-e.done
	return e.result
}

// executeRawQuery dispatches sqlQuery asynchronously and returns its handle.
// The rows are scanned generically, one value slice per row, because the
// projection of a user query is only known at runtime. When columns is nil,
// the result columns are derived from the row set by name.
func (us *UserStore) executeRawQuery(
	ctx context.Context,
	sqlQuery string,
	action string,
	columns []userstore.Column,
) *QueryExecution {

	execution := newQueryExecution()

	go func() {
		spanCtx, span := us.startSpan(ctx, action, map[string]string{spanAttrQueryID: execution.queryID})

		start := time.Now()
		rows, queryErr := us.db.Query(spanCtx, sqlQuery)
		duration := time.Since(start)
		us.logQueryWithDuration(spanCtx, sqlQuery, action, execution.queryID, duration)
		us.recordDuration(action, duration)

		if queryErr != nil {
			us.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery, logAttrQueryID, execution.queryID)
			us.recordError(action)
			us.finishSpan(span, statusError)
			execution.complete(userstore.FailedResult(errors.Join(userstore.ErrQueryingUsersFailed, queryErr)))
			return
		}

		result := us.scanRows(rows, columns)
		us.closeRows(rows)

		if result.Failed() {
			us.finishSpan(span, statusError)
		} else {
			us.finishSpan(span, statusOK)
		}

		execution.complete(result)
	}()

	return execution
}

func (us *UserStore) scanRows(rows adapters.DBRows, columns []userstore.Column) userstore.QueryResult {
	if columns == nil {
		names, columnsErr := rows.Columns()
		if columnsErr != nil {
			return userstore.FailedResult(errors.Join(userstore.ErrQueryingUsersFailed, columnsErr))
		}

		columns = make([]userstore.Column, len(names))
		for i, name := range names {
			columns[i] = userstore.Column{Name: name}
		}
	}

	resultRows := make([][]any, 0)

	for rows.Next() {
		values, scanErr := rows.Values()
		if scanErr != nil {
			us.logError(logMsgScanRowFailed, scanErr)
			return userstore.FailedResult(errors.Join(userstore.ErrScanningDBRowFailed, scanErr))
		}

		resultRows = append(resultRows, values)
	}

	if iterationErr := rows.Err(); iterationErr != nil {
		return userstore.FailedResult(errors.Join(userstore.ErrQueryingUsersFailed, iterationErr))
	}

	return userstore.QueryResult{Columns: columns, Rows: resultRows}
}

func (us *UserStore) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		us.logWarn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// mergeWithTotal joins the paginated data query with the independent count
// query: a fixed fan-in barrier of degree two. The merged execution completes
// only once both queries have completed. If either failed, the merged result
// is a single failure carrying the first available error; otherwise it
// carries the data rows plus the count's single cell as "totalResult".
func (us *UserStore) mergeWithTotal(
	dataExecution *QueryExecution,
	countExecution *QueryExecution,
	projectColumns []userstore.Column,
) *QueryExecution {

	merged := newQueryExecution()

	go func() {
		dataResult := dataExecution.wait()
		countResult := countExecution.wait()

		if dataResult.Failed() {
			merged.complete(userstore.FailedResult(dataResult.Err))
			return
		}

		if countResult.Failed() {
			merged.complete(userstore.FailedResult(countResult.Err))
			return
		}

		if len(countResult.Rows) == 0 || len(countResult.Rows[0]) == 0 {
			merged.complete(userstore.FailedResult(userstore.ErrQueryingUsersFailed))
			return
		}

		us.logOperation(logMsgFilterCompleted, logAttrRowCount, len(dataResult.Rows))

		merged.complete(userstore.QueryResult{
			Columns:    projectColumns,
			Rows:       dataResult.Rows,
			Properties: map[string]any{userstore.TotalResultProperty: countResult.Rows[0][0]},
		})
	}()

	return merged
}
