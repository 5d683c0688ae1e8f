package userstore

import (
	"errors"
)

var (
	// ErrNilDatabaseConnection is returned when a nil connection (pool) is supplied to a constructor.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyUserTableName is returned when an empty user table name is supplied.
	ErrEmptyUserTableName = errors.New("empty userTableName supplied")

	// ErrInvalidProjectName is returned when a project identifier fails the syntactic validity check.
	ErrInvalidProjectName = errors.New("project name is not a valid identifier")

	// ErrInvalidCollectionName is returned when an event collection identifier fails the syntactic validity check.
	ErrInvalidCollectionName = errors.New("collection name is not a valid identifier")

	// ErrInvalidColumnName is returned when a column/property identifier fails the syntactic validity check.
	ErrInvalidColumnName = errors.New("column name is not a valid identifier")

	// ErrSortColumnUnknown is returned when a sorting column is not part of the tenant's current schema.
	ErrSortColumnUnknown = errors.New("sorting column does not exist")

	// ErrInvalidPagination is returned when a negative limit or offset is supplied.
	ErrInvalidPagination = errors.New("limit and offset must not be negative")

	// ErrUnsupportedExpression is returned when the expression formatter cannot format the given expression.
	ErrUnsupportedExpression = errors.New("unsupported filter expression")

	// ErrUnsupportedPropertyType is returned when a property value has no storage type mapping.
	ErrUnsupportedPropertyType = errors.New("property value type has no storage type mapping")

	// ErrUnsupportedUserIDType is returned when a user id cannot be coerced to a 64-bit integer.
	ErrUnsupportedUserIDType = errors.New("user id must be an integer or a base-10 integer string")

	// ErrInvalidPropertiesJSON is returned when a bulk property payload is not a valid JSON object.
	ErrInvalidPropertiesJSON = errors.New("properties payload is not a valid json object")

	// ErrUserNotFound is returned when no user row exists for the requested id.
	ErrUserNotFound = errors.New("user not found")

	// ErrBuildingQueryFailed is returned when an SQL statement cannot be built.
	ErrBuildingQueryFailed = errors.New("building sql query failed")

	// ErrResolvingMetadataFailed is returned when the column catalog of a tenant cannot be read.
	ErrResolvingMetadataFailed = errors.New("resolving user table metadata failed")

	// ErrQueryingUsersFailed is returned when a user query fails to execute.
	ErrQueryingUsersFailed = errors.New("querying users failed")

	// ErrScanningDBRowFailed is returned when a database row cannot be scanned.
	ErrScanningDBRowFailed = errors.New("scanning database row failed")

	// ErrUpdatingUserFailed is returned when a property update fails to execute.
	ErrUpdatingUserFailed = errors.New("updating user failed")

	// ErrCreatingProjectFailed is returned when the tenant bootstrap statement fails.
	ErrCreatingProjectFailed = errors.New("creating project failed")

	// ErrNotImplemented is returned for operations the store deliberately does not support.
	ErrNotImplemented = errors.New("operation not implemented")
)
