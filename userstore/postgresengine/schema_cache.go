package postgresengine

import (
	"context"
	"sync"

	"github.com/tenantkit/dynamic-userstore-go/userstore"
)

// schemaCache holds the per-project mapping from property name to field type,
// as used by property writes. Entries live for the life of the process and
// are replaced wholesale on refresh. Concurrent refreshes for the same
// project race to last-writer-wins; a stale entry just triggers another
// refresh on the next miss.
type schemaCache struct {
	entries sync.Map // project -> map[string]userstore.FieldType
}

func (c *schemaCache) lookup(project string) (map[string]userstore.FieldType, bool) {
	entry, ok := c.entries.Load(project)
	if !ok {
		return nil, false
	}

	return entry.(map[string]userstore.FieldType), true
}

func (c *schemaCache) store(project string, types map[string]userstore.FieldType) {
	c.entries.Store(project, types)
}

// refreshSchemaCache re-resolves the tenant's column metadata and overwrites
// the cache entry, returning the fresh mapping.
func (us *UserStore) refreshSchemaCache(ctx context.Context, project string) (map[string]userstore.FieldType, error) {
	columns, err := us.GetMetadata(ctx, project)
	if err != nil {
		return nil, err
	}

	types := make(map[string]userstore.FieldType, len(columns))
	for _, column := range columns {
		types[column.Name] = column.Type
	}

	us.schemaCache.store(project, types)

	return types, nil
}
