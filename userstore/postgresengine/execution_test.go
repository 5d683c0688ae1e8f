package postgresengine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantkit/dynamic-userstore-go/userstore"
)

func Test_QueryExecution_Result_ReturnsCompletedResult(t *testing.T) {
	execution := completedExecution(userstore.QueryResult{Rows: [][]any{{int64(1)}}})

	result := execution.Result(context.Background())

	require.False(t, result.Failed())
	assert.Len(t, result.Rows, 1)
}

func Test_QueryExecution_Result_HonorsContextCancellation(t *testing.T) {
	execution := newQueryExecution()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := execution.Result(ctx)

	require.True(t, result.Failed())
	assert.ErrorIs(t, result.Err, context.Canceled)
}

func Test_QueryExecution_Done_ClosesOnCompletion(t *testing.T) {
	execution := newQueryExecution()

	go execution.complete(userstore.QueryResult{})

	select {
	case <-execution.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel was not closed")
	}
}

func Test_MergeWithTotal_CombinesRowsAndCount(t *testing.T) {
	store := newTestStore(newFakeAdapter())

	dataExecution := completedExecution(userstore.QueryResult{Rows: [][]any{{int64(1)}, {int64(2)}}})
	countExecution := completedExecution(userstore.QueryResult{Rows: [][]any{{int64(9)}}})
	projectColumns := []userstore.Column{{Name: "id", Type: userstore.FieldTypeLong}}

	result := store.mergeWithTotal(dataExecution, countExecution, projectColumns).Result(context.Background())

	require.False(t, result.Failed())
	assert.Equal(t, projectColumns, result.Columns)
	assert.Len(t, result.Rows, 2)

	total, hasTotal := result.TotalResult()
	require.True(t, hasTotal)
	assert.Equal(t, int64(9), total)
}

func Test_MergeWithTotal_DataFailureWins(t *testing.T) {
	store := newTestStore(newFakeAdapter())

	dataErr := errors.New("data query failed")
	dataExecution := completedExecution(userstore.FailedResult(dataErr))
	countExecution := completedExecution(userstore.FailedResult(errors.New("count query failed")))

	result := store.mergeWithTotal(dataExecution, countExecution, nil).Result(context.Background())

	require.True(t, result.Failed())
	assert.ErrorIs(t, result.Err, dataErr)
}

func Test_MergeWithTotal_CountFailure(t *testing.T) {
	store := newTestStore(newFakeAdapter())

	countErr := errors.New("count query failed")
	dataExecution := completedExecution(userstore.QueryResult{})
	countExecution := completedExecution(userstore.FailedResult(countErr))

	result := store.mergeWithTotal(dataExecution, countExecution, nil).Result(context.Background())

	require.True(t, result.Failed())
	assert.ErrorIs(t, result.Err, countErr)
}

func Test_MergeWithTotal_EmptyCountResultFails(t *testing.T) {
	store := newTestStore(newFakeAdapter())

	dataExecution := completedExecution(userstore.QueryResult{})
	countExecution := completedExecution(userstore.QueryResult{})

	result := store.mergeWithTotal(dataExecution, countExecution, nil).Result(context.Background())

	require.True(t, result.Failed())
	assert.ErrorIs(t, result.Err, userstore.ErrQueryingUsersFailed)
}

func Test_QueryExecution_UniqueQueryIDs(t *testing.T) {
	first := newQueryExecution()
	second := newQueryExecution()

	assert.NotEmpty(t, first.QueryID())
	assert.NotEqual(t, first.QueryID(), second.QueryID())
}
