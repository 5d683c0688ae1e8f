package postgresengine_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantkit/dynamic-userstore-go/testutil/postgresengine/config"
	"github.com/tenantkit/dynamic-userstore-go/userstore"
	"github.com/tenantkit/dynamic-userstore-go/userstore/postgresengine"
)

// The tests in this file need a reachable Postgres instance (see
// config.PostgresTestDSN) and are skipped otherwise.

func Test_Integration_PGXPoolFlavour(t *testing.T) {
	ctx := context.Background()

	pool, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolTestConfig())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	skipUnlessPostgresReachable(t, pool.Ping)

	store, err := postgresengine.NewUserStoreFromPGXPool(pool)
	require.NoError(t, err)

	project := newIntegrationProject()
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, "drop schema if exists "+project+" cascade")
	})

	runUserStoreSuite(ctx, t, store, project)
}

func Test_Integration_PGXPoolWithReplicaFlavour(t *testing.T) {
	ctx := context.Background()

	primary, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolTestConfig())
	require.NoError(t, err)
	t.Cleanup(primary.Close)

	// the test database stands in for the replica
	replica, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolTestConfig())
	require.NoError(t, err)
	t.Cleanup(replica.Close)

	skipUnlessPostgresReachable(t, primary.Ping)

	store, err := postgresengine.NewUserStoreFromPGXPoolAndReplica(primary, replica)
	require.NoError(t, err)

	project := newIntegrationProject()
	t.Cleanup(func() {
		_, _ = primary.Exec(ctx, "drop schema if exists "+project+" cascade")
	})

	runUserStoreSuite(ctx, t, store, project)
}

func Test_Integration_SQLDBFlavour(t *testing.T) {
	ctx := context.Background()

	db := config.PostgresSQLDBTestConfig()
	t.Cleanup(func() { _ = db.Close() })
	skipUnlessPostgresReachable(t, db.PingContext)

	store, err := postgresengine.NewUserStoreFromSQLDB(db)
	require.NoError(t, err)

	project := newIntegrationProject()
	t.Cleanup(func() {
		_, _ = db.ExecContext(ctx, "drop schema if exists "+project+" cascade")
	})

	runUserStoreSuite(ctx, t, store, project)
}

func Test_Integration_SQLXFlavour(t *testing.T) {
	ctx := context.Background()

	db := config.PostgresSQLXTestConfig()
	t.Cleanup(func() { _ = db.Close() })
	skipUnlessPostgresReachable(t, db.PingContext)

	store, err := postgresengine.NewUserStoreFromSQLX(db)
	require.NoError(t, err)

	project := newIntegrationProject()
	t.Cleanup(func() {
		_, _ = db.ExecContext(ctx, "drop schema if exists "+project+" cascade")
	})

	runUserStoreSuite(ctx, t, store, project)
}

// runUserStoreSuite drives one store flavour through project bootstrap,
// schema evolution on a property write, metadata resolution, a paginated
// filter with total count, and a user lookup.
func runUserStoreSuite(ctx context.Context, t *testing.T, store *postgresengine.UserStore, project string) {
	t.Helper()

	require.NoError(t, store.CreateProject(ctx, project))
	require.NoError(t, store.CreateProject(ctx, project), "bootstrap must be idempotent")

	columns, err := store.GetMetadata(ctx, project)
	require.NoError(t, err)
	require.Len(t, columns, 1)
	assert.Equal(t, userstore.Column{Name: "id", Type: userstore.FieldTypeLong, Unique: true}, columns[0])

	require.NoError(t, store.SetUserProperty(ctx, project, int64(1), "email", "ada@acme.io"))

	columns, err = store.GetMetadata(ctx, project)
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "email", columns[1].Name)
	assert.Equal(t, userstore.FieldTypeString, columns[1].Type)

	execution, err := store.Filter(ctx, project, nil, nil, nil, 10, 0)
	require.NoError(t, err)

	result := execution.Result(ctx)
	require.False(t, result.Failed(), "unexpected error: %v", result.Err)
	assert.Empty(t, result.Rows)

	total, hasTotal := result.TotalResult()
	require.True(t, hasTotal)
	assert.Zero(t, total)

	userExecution, err := store.GetUser(ctx, project, int64(1))
	require.NoError(t, err)

	_, getErr := userExecution.Result(ctx)
	assert.ErrorIs(t, getErr, userstore.ErrUserNotFound)
}

func skipUnlessPostgresReachable(t *testing.T, ping func(ctx context.Context) error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := ping(ctx); err != nil {
		t.Skipf("postgres not reachable, skipping: %v", err)
	}
}

func newIntegrationProject() string {
	return "it_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
