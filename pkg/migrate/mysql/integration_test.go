package mysql_test

import (
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/pvginkel/gmtdata/pkg/migrate"
	"github.com/pvginkel/gmtdata/pkg/migrate/mysql"
	"github.com/pvginkel/gmtdata/pkg/schema"
	"github.com/pvginkel/gmtdata/pkg/testutil"
)

const integrationModel = `
schema webshop {
    charset 'utf8mb4'

    table users {
        column id int primary auto_increment
        column email varchar(255)
        column status enum values('active', 'blocked') default 'active'
        column external_id guid nullable
        index idx_users_email (email) unique
    }

    table orders {
        column id int primary auto_increment
        column user_id int
        column total decimal(10, 2)
        index idx_orders_user (user_id)
        foreign key fk_orders_user (user_id) references users (id)
    }
}
`

// TestMySQLRoundTrip provisions a throwaway MySQL server, applies the
// generated script, and verifies a second run reads the structure back as
// up to date.
func TestMySQLRoundTrip(t *testing.T) {
	testutil.SkipIfNoDocker(t)

	ctx := t.Context()

	container, err := tcmysql.Run(ctx, "mysql:8.4",
		tcmysql.WithDatabase("webshop"),
		tcmysql.WithUsername("root"),
		tcmysql.WithPassword("secret"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	model, err := schema.ParseString(integrationModel)
	require.NoError(t, err)

	gen := migrate.NewGenerator(migrate.GeneratorConfig{
		Model:   model,
		Dialect: mysql.New(),
	})

	result, err := gen.Run(ctx, db, migrate.Options{})
	require.NoError(t, err)
	require.False(t, result.Difference.Empty())

	// Session-scoped prolog statements require the whole script to run on
	// one connection
	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	for _, stmt := range migrate.ExecutableStatements(result.Statements) {
		_, err := conn.ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}

	result, err = gen.Run(ctx, db, migrate.Options{})
	require.NoError(t, err)
	require.True(t, result.Difference.Empty(),
		"reapplied run should be a no-op, got %d changes", len(result.Difference.Changes))
}
