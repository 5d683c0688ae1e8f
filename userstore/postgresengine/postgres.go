package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/tenantkit/dynamic-userstore-go/userstore"
	"github.com/tenantkit/dynamic-userstore-go/userstore/postgresengine/internal/adapters"
)

const (
	defaultUserTableName = "users"
	primaryKeyColumn     = "id"
	collectionUserColumn = "user"
	dialectPostgres      = "postgres"

	logMsgBuildSelectQueryFailed  = "failed to build select query"
	logMsgBuildUpdateQueryFailed  = "failed to build update query"
	logMsgDBQueryFailed           = "database query execution failed"
	logMsgDBExecFailed            = "database execution failed"
	logMsgCloseRowsFailed         = "failed to close database rows"
	logMsgScanRowFailed           = "failed to scan database row"
	logMsgResolveMetadataFailed   = "failed to resolve user table metadata"
	logMsgAddColumnFailed         = "failed to add property column, assuming it already exists"
	logMsgFilterDispatched        = "filter queries dispatched"
	logMsgFilterCompleted         = "filter completed"
	logMsgUserFetched             = "user fetched"
	logMsgPropertySet             = "user property set"
	logMsgProjectCreated          = "project created"
	logMsgSQLExecuted             = "executed sql for: "
	logMsgOperation               = "userstore operation: "
	logAttrError                  = "error"
	logAttrQuery                  = "query"
	logAttrQueryID                = "query_id"
	logAttrProject                = "project"
	logAttrProperty               = "property"
	logAttrUserID                 = "user_id"
	logAttrRowCount               = "row_count"
	logAttrFragmentCount          = "fragment_count"
	logAttrDurationMS             = "duration_ms"
	logActionFilter               = "filter"
	logActionCount                = "count"
	logActionGetUser              = "get_user"
	logActionMetadata             = "metadata"
	logActionSetProperty          = "set_property"
	logActionAddColumn            = "add_column"
)

type sqlQueryString = string

// UserStore is a Postgres-backed store for per-tenant user profiles with an
// open, dynamically growing property schema. It compiles declarative filter
// requests into SQL, resolves per-tenant column metadata, and evolves the
// schema on writes to unknown properties.
type UserStore struct {
	db               adapters.DBAdapter
	userTableName    string
	formatter        userstore.ExpressionFormatter
	schemaCache      schemaCache
	logger           userstore.Logger
	contextualLogger userstore.ContextualLogger
	metricsCollector userstore.MetricsCollector
	tracingCollector userstore.TracingCollector
}

// NewUserStoreFromPGXPool creates a new UserStore using a pgx Pool with optional configuration.
func NewUserStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*UserStore, error) {
	if db == nil {
		return nil, userstore.ErrNilDatabaseConnection
	}

	return newUserStore(adapters.NewPGXAdapter(db), options...)
}

// NewUserStoreFromPGXPoolAndReplica creates a new UserStore that routes read
// queries to the replica pool and all writes to the primary pool.
func NewUserStoreFromPGXPoolAndReplica(primary *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*UserStore, error) {
	if primary == nil || replica == nil {
		return nil, userstore.ErrNilDatabaseConnection
	}

	return newUserStore(adapters.NewPGXAdapterWithReplica(primary, replica), options...)
}

// NewUserStoreFromSQLDB creates a new UserStore using a sql.DB with optional configuration.
func NewUserStoreFromSQLDB(db *sql.DB, options ...Option) (*UserStore, error) {
	if db == nil {
		return nil, userstore.ErrNilDatabaseConnection
	}

	return newUserStore(adapters.NewSQLAdapter(db), options...)
}

// NewUserStoreFromSQLX creates a new UserStore using a sqlx.DB with optional configuration.
func NewUserStoreFromSQLX(db *sqlx.DB, options ...Option) (*UserStore, error) {
	if db == nil {
		return nil, userstore.ErrNilDatabaseConnection
	}

	return newUserStore(adapters.NewSQLXAdapter(db), options...)
}

func newUserStore(db adapters.DBAdapter, options ...Option) (*UserStore, error) {
	us := &UserStore{
		db:            db,
		userTableName: defaultUserTableName,
		formatter:     userstore.ExpressionFormatterFunc(userstore.FormatRawExpression),
	}

	for _, option := range options {
		if err := option(us); err != nil {
			return nil, err
		}
	}

	return us, nil
}

// Filter compiles the given boolean filter expression and behavioral event
// filters into one paginated user query and dispatches it asynchronously.
//
// When no event filters are given, an independent total-count query is
// dispatched concurrently and the returned execution completes once both
// queries have completed, carrying the page rows plus the "totalResult"
// scalar. When event filters are present, no count query is issued and the
// paginated result is returned as-is.
//
// Validation failures (malformed project, unknown sorting column, malformed
// collection names) are reported synchronously, before anything is dispatched.
func (us *UserStore) Filter(
	ctx context.Context,
	project string,
	filterExpression userstore.Expression,
	eventFilters []userstore.EventFilter,
	sorting *userstore.Sorting,
	limit int64,
	offset int64,
) (*QueryExecution, error) {

	if err := userstore.CheckProject(project); err != nil {
		return nil, err
	}

	// negative values would wrap around in the uint conversion below
	if limit < 0 || offset < 0 {
		return nil, errors.Join(userstore.ErrInvalidPagination, fmt.Errorf("limit: %d, offset: %d", limit, offset))
	}

	projectColumns, metadataErr := us.GetMetadata(ctx, project)
	if metadataErr != nil {
		return nil, metadataErr
	}

	if sorting != nil && !columnExists(projectColumns, sorting.Column) {
		return nil, errors.Join(userstore.ErrSortColumnUnknown, fmt.Errorf("column: %s", sorting.Column))
	}

	fragments, compileErr := us.compileFilters(project, filterExpression, eventFilters)
	if compileErr != nil {
		return nil, compileErr
	}

	dataQuery, buildErr := us.buildFilterQuery(project, projectColumns, fragments, sorting, limit, offset)
	if buildErr != nil {
		us.logError(logMsgBuildSelectQueryFailed, buildErr, logAttrProject, project)
		return nil, buildErr
	}

	dataExecution := us.executeRawQuery(ctx, dataQuery, logActionFilter, projectColumns)

	if len(eventFilters) > 0 {
		us.logOperation(logMsgFilterDispatched, logAttrProject, project, logAttrFragmentCount, len(fragments))
		return dataExecution, nil
	}

	// pagination needs a denominator that the LIMIT/OFFSET did not contaminate
	countQuery, countBuildErr := us.buildCountQuery(project, fragments, filterExpression != nil)
	if countBuildErr != nil {
		us.logError(logMsgBuildSelectQueryFailed, countBuildErr, logAttrProject, project)
		return nil, countBuildErr
	}

	countColumns := []userstore.Column{{Name: "count", Type: userstore.FieldTypeLong}}
	countExecution := us.executeRawQuery(ctx, countQuery, logActionCount, countColumns)

	us.logOperation(logMsgFilterDispatched, logAttrProject, project, logAttrFragmentCount, len(fragments))

	return us.mergeWithTotal(dataExecution, countExecution, projectColumns), nil
}

func (us *UserStore) buildFilterQuery(
	project string,
	projectColumns []userstore.Column,
	fragments []string,
	sorting *userstore.Sorting,
	limit int64,
	offset int64,
) (sqlQueryString, error) {

	projection := make([]any, len(projectColumns))
	for i, column := range projectColumns {
		projection[i] = column.Name
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(goqu.S(project).Table(us.userTableName)).
		Select(projection...)

	for _, fragment := range fragments {
		selectStmt = selectStmt.Where(goqu.L(fragment))
	}

	if sorting != nil {
		if sorting.Order == userstore.SortDescending {
			selectStmt = selectStmt.Order(goqu.I(sorting.Column).Desc())
		} else {
			selectStmt = selectStmt.Order(goqu.I(sorting.Column).Asc())
		}
	}

	selectStmt = selectStmt.Limit(uint(limit)).Offset(uint(offset))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(userstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// buildCountQuery builds the independent total-count query. Only the boolean
// filter fragment restricts the count; behavioral fragments never reach this
// path because a non-empty event filter list suppresses the count query.
func (us *UserStore) buildCountQuery(
	project string,
	fragments []string,
	hasFilterExpression bool,
) (sqlQueryString, error) {

	countStmt := goqu.Dialect(dialectPostgres).
		From(goqu.S(project).Table(us.userTableName)).
		Select(goqu.COUNT(goqu.Star()))

	if hasFilterExpression {
		countStmt = countStmt.Where(goqu.L(fragments[0]))
	}

	sqlQuery, _, toSQLErr := countStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(userstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func columnExists(columns []userstore.Column, name string) bool {
	for _, column := range columns {
		if column.Name == name {
			return true
		}
	}

	return false
}
