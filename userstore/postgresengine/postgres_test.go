package postgresengine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantkit/dynamic-userstore-go/userstore"
)

func Test_Filter_WithoutEventFilters_MergesTotalCount(t *testing.T) {
	adapter := newFakeAdapter()
	scriptAcmeMetadata(adapter, "email")
	adapter.respondTo("COUNT(*)", fakeResponse{
		columns: []string{"count"},
		rows:    [][]any{{int64(7)}},
	})
	adapter.respondTo(`FROM "acme"."users"`, fakeResponse{
		columns: []string{"id", "email"},
		rows:    [][]any{{int64(1), "ada@acme.io"}, {int64(2), "bob@acme.io"}},
	})
	store := newTestStore(adapter)

	execution, err := store.Filter(context.Background(), "acme", nil, nil, nil, 10, 0)
	require.NoError(t, err)

	result := execution.Result(context.Background())

	require.False(t, result.Failed(), "unexpected error: %v", result.Err)
	assert.Len(t, result.Rows, 2)

	total, hasTotal := result.TotalResult()
	require.True(t, hasTotal)
	assert.Equal(t, int64(7), total)
	assert.NotEmpty(t, adapter.recordedQueryContaining("COUNT(*)"))
}

func Test_Filter_WithEventFilters_SkipsCountQuery(t *testing.T) {
	adapter := newFakeAdapter()
	scriptAcmeMetadata(adapter, "email")
	adapter.respondTo(`FROM "acme"."users"`, fakeResponse{
		columns: []string{"id", "email"},
		rows:    [][]any{{int64(1), "ada@acme.io"}},
	})
	store := newTestStore(adapter)

	eventFilters := []userstore.EventFilter{{Collection: "purchase"}}

	execution, err := store.Filter(context.Background(), "acme", nil, eventFilters, nil, 10, 0)
	require.NoError(t, err)

	result := execution.Result(context.Background())

	require.False(t, result.Failed(), "unexpected error: %v", result.Err)
	assert.Len(t, result.Rows, 1)
	assert.Nil(t, result.Properties)
	assert.Empty(t, adapter.recordedQueryContaining("COUNT(*)"))

	dataQuery := adapter.recordedQueryContaining(`FROM "acme"."users"`)
	assert.Contains(t, dataQuery, `id in (select "user" from acme.purchase)`)
}

func Test_Filter_CountQueryAppliesBooleanFilterOnly(t *testing.T) {
	adapter := newFakeAdapter()
	scriptAcmeMetadata(adapter, "country")
	adapter.respondTo("COUNT(*)", fakeResponse{
		columns: []string{"count"},
		rows:    [][]any{{int64(3)}},
	})
	store := newTestStore(adapter)

	execution, err := store.Filter(
		context.Background(), "acme", userstore.Raw(`country = 'DE'`), nil, nil, 10, 0)
	require.NoError(t, err)

	execution.Result(context.Background())

	countQuery := adapter.recordedQueryContaining("COUNT(*)")
	require.NotEmpty(t, countQuery)
	assert.Contains(t, countQuery, `country = 'DE'`)
}

func Test_Filter_AppliesLimitOffsetAndSorting(t *testing.T) {
	adapter := newFakeAdapter()
	scriptAcmeMetadata(adapter, "email")
	store := newTestStore(adapter)

	sorting := &userstore.Sorting{Column: "email", Order: userstore.SortDescending}

	execution, err := store.Filter(context.Background(), "acme", nil, nil, sorting, 25, 50)
	require.NoError(t, err)

	execution.Result(context.Background())

	dataQuery := adapter.recordedQueryContaining("LIMIT")
	require.NotEmpty(t, dataQuery)
	assert.Contains(t, dataQuery, `ORDER BY "email" DESC`)
	assert.Contains(t, dataQuery, "LIMIT 25")
	assert.Contains(t, dataQuery, "OFFSET 50")
}

func Test_Filter_UnknownSortColumn_FailsBeforeDispatch(t *testing.T) {
	adapter := newFakeAdapter()
	scriptAcmeMetadata(adapter, "email")
	store := newTestStore(adapter)

	sorting := &userstore.Sorting{Column: "no_such_column", Order: userstore.SortAscending}

	_, err := store.Filter(context.Background(), "acme", nil, nil, sorting, 10, 0)

	assert.ErrorIs(t, err, userstore.ErrSortColumnUnknown)
	assert.Empty(t, adapter.recordedQueryContaining(`FROM "acme"."users"`))
}

func Test_Filter_NegativeLimitOrOffset_FailsBeforeDispatch(t *testing.T) {
	adapter := newFakeAdapter()
	scriptAcmeMetadata(adapter)
	store := newTestStore(adapter)

	_, err := store.Filter(context.Background(), "acme", nil, nil, nil, -1, 0)
	assert.ErrorIs(t, err, userstore.ErrInvalidPagination)

	_, err = store.Filter(context.Background(), "acme", nil, nil, nil, 10, -1)
	assert.ErrorIs(t, err, userstore.ErrInvalidPagination)

	assert.Empty(t, adapter.recordedQueries())
}

func Test_Constructors_RejectNilConnections(t *testing.T) {
	_, err := NewUserStoreFromPGXPool(nil)
	assert.ErrorIs(t, err, userstore.ErrNilDatabaseConnection)

	_, err = NewUserStoreFromPGXPoolAndReplica(nil, nil)
	assert.ErrorIs(t, err, userstore.ErrNilDatabaseConnection)

	_, err = NewUserStoreFromSQLDB(nil)
	assert.ErrorIs(t, err, userstore.ErrNilDatabaseConnection)

	_, err = NewUserStoreFromSQLX(nil)
	assert.ErrorIs(t, err, userstore.ErrNilDatabaseConnection)
}

func Test_Filter_InvalidProject(t *testing.T) {
	store := newTestStore(newFakeAdapter())

	_, err := store.Filter(context.Background(), "acme;--", nil, nil, nil, 10, 0)

	assert.ErrorIs(t, err, userstore.ErrInvalidProjectName)
}

func Test_Filter_DataQueryFailure_FailsMergedResult(t *testing.T) {
	adapter := newFakeAdapter()
	scriptAcmeMetadata(adapter)
	adapter.respondTo("COUNT(*)", fakeResponse{
		columns: []string{"count"},
		rows:    [][]any{{int64(0)}},
	})
	adapter.respondTo(`FROM "acme"."users"`, fakeResponse{err: errors.New("connection reset")})
	store := newTestStore(adapter)

	execution, err := store.Filter(context.Background(), "acme", nil, nil, nil, 10, 0)
	require.NoError(t, err)

	result := execution.Result(context.Background())

	require.True(t, result.Failed())
	assert.ErrorIs(t, result.Err, userstore.ErrQueryingUsersFailed)
}

func Test_Filter_CountQueryFailure_FailsMergedResult(t *testing.T) {
	adapter := newFakeAdapter()
	scriptAcmeMetadata(adapter)
	adapter.respondTo("COUNT(*)", fakeResponse{err: errors.New("connection reset")})
	store := newTestStore(adapter)

	execution, err := store.Filter(context.Background(), "acme", nil, nil, nil, 10, 0)
	require.NoError(t, err)

	result := execution.Result(context.Background())

	require.True(t, result.Failed())
	assert.ErrorIs(t, result.Err, userstore.ErrQueryingUsersFailed)
}

func Test_Filter_AssignsQueryID(t *testing.T) {
	adapter := newFakeAdapter()
	scriptAcmeMetadata(adapter)
	store := newTestStore(adapter)

	execution, err := store.Filter(context.Background(), "acme", nil, nil, nil, 10, 0)
	require.NoError(t, err)

	assert.NotEmpty(t, execution.QueryID())
}
