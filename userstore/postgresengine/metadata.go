package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/tenantkit/dynamic-userstore-go/userstore"
)

// GetMetadata resolves the authoritative column list of the tenant's user
// table: name and storage type in catalog order, with the unique flag set for
// columns participating in a unique index. Columns whose native type has no
// FieldType mapping are dropped rather than failing the whole tenant.
func (us *UserStore) GetMetadata(ctx context.Context, project string) ([]userstore.Column, error) {
	if err := userstore.CheckProject(project); err != nil {
		return nil, err
	}

	start := time.Now()

	uniqueColumns, uniqueErr := us.queryUniqueIndexColumns(ctx, project)
	if uniqueErr != nil {
		us.logError(logMsgResolveMetadataFailed, uniqueErr, logAttrProject, project)
		return nil, errors.Join(userstore.ErrResolvingMetadataFailed, uniqueErr)
	}

	columns, catalogErr := us.queryCatalogColumns(ctx, project, uniqueColumns)
	if catalogErr != nil {
		us.logError(logMsgResolveMetadataFailed, catalogErr, logAttrProject, project)
		return nil, errors.Join(userstore.ErrResolvingMetadataFailed, catalogErr)
	}

	us.recordDuration(logActionMetadata, time.Since(start))

	return columns, nil
}

// queryUniqueIndexColumns reads the names of all columns participating in any
// unique index on the tenant's user table.
func (us *UserStore) queryUniqueIndexColumns(ctx context.Context, project string) (map[string]bool, error) {
	uniqueStmt := goqu.Dialect(dialectPostgres).
		From(goqu.T("pg_index").As("i")).
		Join(goqu.T("pg_class").As("c"), goqu.On(goqu.L("c.oid = i.indrelid"))).
		Join(goqu.T("pg_namespace").As("n"), goqu.On(goqu.L("n.oid = c.relnamespace"))).
		Join(goqu.T("pg_attribute").As("a"), goqu.On(goqu.L("a.attrelid = c.oid and a.attnum = any(i.indkey)"))).
		Select(goqu.I("a.attname")).
		Where(
			goqu.L("i.indisunique"),
			goqu.Ex{"n.nspname": project, "c.relname": us.userTableName},
		)

	sqlQuery, _, toSQLErr := uniqueStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(userstore.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := us.db.Query(ctx, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer us.closeRows(rows)

	uniqueColumns := make(map[string]bool)

	for rows.Next() {
		var name string
		if scanErr := rows.Scan(&name); scanErr != nil {
			return nil, errors.Join(userstore.ErrScanningDBRowFailed, scanErr)
		}

		uniqueColumns[name] = true
	}

	if iterationErr := rows.Err(); iterationErr != nil {
		return nil, iterationErr
	}

	return uniqueColumns, nil
}

// queryCatalogColumns reads the full column catalog of the tenant's user
// table in ordinal (catalog) order.
func (us *UserStore) queryCatalogColumns(
	ctx context.Context,
	project string,
	uniqueColumns map[string]bool,
) ([]userstore.Column, error) {

	catalogStmt := goqu.Dialect(dialectPostgres).
		From(goqu.S("information_schema").Table("columns")).
		Select("column_name", "data_type", "udt_name").
		Where(goqu.Ex{"table_schema": project, "table_name": us.userTableName}).
		Order(goqu.I("ordinal_position").Asc())

	sqlQuery, _, toSQLErr := catalogStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(userstore.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := us.db.Query(ctx, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer us.closeRows(rows)

	columns := make([]userstore.Column, 0)

	for rows.Next() {
		var columnName, dataType, udtName string
		if scanErr := rows.Scan(&columnName, &dataType, &udtName); scanErr != nil {
			return nil, errors.Join(userstore.ErrScanningDBRowFailed, scanErr)
		}

		fieldType, mapped := fieldTypeFromDataType(dataType, udtName)
		if !mapped {
			continue
		}

		columns = append(columns, userstore.Column{
			Name:   columnName,
			Type:   fieldType,
			Unique: uniqueColumns[columnName],
		})
	}

	if iterationErr := rows.Err(); iterationErr != nil {
		return nil, iterationErr
	}

	return columns, nil
}

// fieldTypeFromDataType maps a native catalog type to a FieldType.
// The second return value is false for native types outside the closed set.
func fieldTypeFromDataType(dataType string, udtName string) (userstore.FieldType, bool) {
	switch dataType {
	case "text", "character varying", "character", "name":
		return userstore.FieldTypeString, true
	case "bigint", "integer", "smallint":
		return userstore.FieldTypeLong, true
	case "double precision", "real", "numeric":
		return userstore.FieldTypeDouble, true
	case "boolean":
		return userstore.FieldTypeBoolean, true
	case "date", "timestamp with time zone", "timestamp without time zone":
		return userstore.FieldTypeTimestamp, true
	case "ARRAY":
		return arrayFieldTypeFromUDT(udtName)
	default:
		return userstore.FieldTypeInvalid, false
	}
}

// arrayFieldTypeFromUDT maps the udt_name of an ARRAY column (element type
// prefixed with an underscore) to the corresponding array FieldType.
func arrayFieldTypeFromUDT(udtName string) (userstore.FieldType, bool) {
	switch udtName {
	case "_text", "_varchar", "_bpchar":
		return userstore.FieldTypeStringArray, true
	case "_int2", "_int4", "_int8":
		return userstore.FieldTypeLongArray, true
	case "_float4", "_float8", "_numeric":
		return userstore.FieldTypeDoubleArray, true
	case "_bool":
		return userstore.FieldTypeBooleanArray, true
	default:
		return userstore.FieldTypeInvalid, false
	}
}
