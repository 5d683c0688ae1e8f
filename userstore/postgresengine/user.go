package postgresengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/tenantkit/dynamic-userstore-go/userstore"
)

// UserExecution is the future-like handle of one dispatched user lookup.
type UserExecution struct {
	done chan struct{}
	user userstore.User
	err  error
}

// Result blocks until the lookup has completed and returns the user, or the
// context error if the context expires first.
func (e *UserExecution) Result(ctx context.Context) (userstore.User, error) {
	select {
	case <-ctx.Done():
		return userstore.User{}, ctx.Err()
	case <-e.done:
		return e.user, e.err
	}
}

func (e *UserExecution) complete(user userstore.User, err error) {
	e.user = user
	e.err = err
	close(e.done)
}

// GetUser fetches one user row asynchronously and maps it into a User:
// every column except the primary key becomes a property.
func (us *UserStore) GetUser(ctx context.Context, project string, userID any) (*UserExecution, error) {
	if err := userstore.CheckProject(project); err != nil {
		return nil, err
	}

	id, idErr := coerceUserID(userID)
	if idErr != nil {
		return nil, idErr
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(goqu.S(project).Table(us.userTableName)).
		Select(goqu.Star()).
		Where(goqu.C(primaryKeyColumn).Eq(id))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(userstore.ErrBuildingQueryFailed, toSQLErr)
	}

	queryExecution := us.executeRawQuery(ctx, sqlQuery, logActionGetUser, nil)

	userExecution := &UserExecution{done: make(chan struct{})}

	go func() {
		result := queryExecution.wait()
		if result.Failed() {
			userExecution.complete(userstore.User{}, result.Err)
			return
		}

		if len(result.Rows) == 0 {
			userExecution.complete(userstore.User{}, errors.Join(userstore.ErrUserNotFound, fmt.Errorf("id: %d", id)))
			return
		}

		properties := make(map[string]any, len(result.Columns))
		for i, column := range result.Columns {
			if column.Name == primaryKeyColumn || i >= len(result.Rows[0]) {
				continue
			}

			properties[column.Name] = result.Rows[0][i]
		}

		us.logOperation(logMsgUserFetched, logAttrProject, project, logAttrUserID, id)
		userExecution.complete(userstore.User{Project: project, ID: id, Properties: properties}, nil)
	}()

	return userExecution, nil
}

// CreateProject idempotently ensures the tenant's schema and user table
// exist; the user table starts with only the primary key column.
func (us *UserStore) CreateProject(ctx context.Context, project string) error {
	if err := userstore.CheckProject(project); err != nil {
		return err
	}

	schemaQuery := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", project)
	if _, execErr := us.db.Exec(ctx, schemaQuery); execErr != nil {
		us.logError(logMsgDBExecFailed, execErr, logAttrQuery, schemaQuery)
		return errors.Join(userstore.ErrCreatingProjectFailed, execErr)
	}

	tableQuery := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s.%s (%s bigint NOT NULL, PRIMARY KEY (%s))",
		project, us.userTableName, primaryKeyColumn, primaryKeyColumn,
	)
	if _, execErr := us.db.Exec(ctx, tableQuery); execErr != nil {
		us.logError(logMsgDBExecFailed, execErr, logAttrQuery, tableQuery)
		return errors.Join(userstore.ErrCreatingProjectFailed, execErr)
	}

	us.logOperation(logMsgProjectCreated, logAttrProject, project)

	return nil
}
