package postgres_test

import (
	"testing"

	"github.com/pvginkel/gmtdata/pkg/migrate"
	. "github.com/pvginkel/gmtdata/pkg/migrate/postgres"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDialectBasics(t *testing.T) {
	d := New()

	require.Equal(t, "postgres", d.Name())
	require.Equal(t, ";", d.StatementSeparator())
	require.Equal(t, "-- hello", d.EscapeComment("hello"))
	require.Equal(t, `SET search_path TO "webshop"`, d.UseStatement("webshop"))
	require.Equal(t, `"users"`, d.QuoteIdentifier("users"))

	collation, err := d.DefaultCollation("utf8mb4")
	require.NoError(t, err)
	require.Empty(t, collation)
}

func TestNormalizeColumn(t *testing.T) {
	d := New()

	t.Run("integer widths", func(t *testing.T) {
		col := &migrate.Column{Type: migrate.DbTypeTinyInt}
		d.NormalizeColumn(col)
		require.Equal(t, migrate.DbTypeSmallInt, col.Type)

		col = &migrate.Column{Type: migrate.DbTypeMediumInt}
		d.NormalizeColumn(col)
		require.Equal(t, migrate.DbTypeInt, col.Type)
	})

	t.Run("text and blob families collapse", func(t *testing.T) {
		col := &migrate.Column{Type: migrate.DbTypeLongText, Charset: "utf8mb4", Collation: "utf8mb4_general_ci"}
		d.NormalizeColumn(col)
		require.Equal(t, migrate.DbTypeText, col.Type)
		require.Empty(t, col.Charset)
		require.Empty(t, col.Collation)

		col = &migrate.Column{Type: migrate.DbTypeBinary, Length: 16}
		d.NormalizeColumn(col)
		require.Equal(t, migrate.DbTypeBlob, col.Type)
		require.Zero(t, col.Length)
	})

	t.Run("enumerations become varchars", func(t *testing.T) {
		col := &migrate.Column{Type: migrate.DbTypeEnumeration, EnumValues: []string{"active", "blocked"}}
		d.NormalizeColumn(col)
		require.Equal(t, migrate.DbTypeString, col.Type)
		require.Equal(t, 7, col.Length)
		require.Nil(t, col.EnumValues)
	})

	t.Run("serial defaults are implied", func(t *testing.T) {
		col := &migrate.Column{Type: migrate.DbTypeInt, AutoIncrement: true, Default: strPtr("0")}
		d.NormalizeColumn(col)
		require.Nil(t, col.Default)
	})
}

func TestColumnDefinition(t *testing.T) {
	d := New()

	cases := []struct {
		name string
		col  *migrate.Column
		want string
	}{
		{
			name: "serial primary",
			col:  &migrate.Column{Name: "id", Type: migrate.DbTypeInt, AutoIncrement: true},
			want: `"id" serial NOT NULL`,
		},
		{
			name: "bigserial",
			col:  &migrate.Column{Name: "id", Type: migrate.DbTypeBigInt, AutoIncrement: true},
			want: `"id" bigserial NOT NULL`,
		},
		{
			name: "varchar with default",
			col:  &migrate.Column{Name: "status", Type: migrate.DbTypeString, Length: 16, Default: strPtr("active")},
			want: `"status" varchar(16) NOT NULL DEFAULT 'active'`,
		},
		{
			name: "uuid",
			col:  &migrate.Column{Name: "external_id", Type: migrate.DbTypeGuid, Nullable: true},
			want: `"external_id" uuid NULL`,
		},
		{
			name: "bytea",
			col:  &migrate.Column{Name: "payload", Type: migrate.DbTypeBlob},
			want: `"payload" bytea NOT NULL`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := d.ColumnDefinition(tc.col)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	t.Run("auto increment needs an integer type", func(t *testing.T) {
		_, err := d.ColumnDefinition(&migrate.Column{Name: "c", Type: migrate.DbTypeString, Length: 8, AutoIncrement: true})
		require.Error(t, err)

		var schemaErr *migrate.SchemaError
		require.ErrorAs(t, err, &schemaErr)
	})
}

func TestWriteChange(t *testing.T) {
	d := New()

	script := func(t *testing.T, change *migrate.Change) string {
		t.Helper()
		buf := migrate.NewBuffer(d.StatementSeparator())
		require.NoError(t, d.WriteChange(buf, change))
		return migrate.Script(buf.Statements())
	}

	t.Run("no prolog", func(t *testing.T) {
		buf := migrate.NewBuffer(d.StatementSeparator())
		require.NoError(t, d.WriteProlog(buf))
		require.Empty(t, buf.Statements())
	})

	t.Run("alter column type", func(t *testing.T) {
		got := script(t, &migrate.Change{
			Kind:      migrate.ChangeAlterColumnType,
			TableName: "users",
			Column:    &migrate.Column{Name: "email", Type: migrate.DbTypeString, Length: 512},
		})
		require.Equal(t, "ALTER TABLE \"users\" ALTER COLUMN \"email\" TYPE varchar(512);\n", got)
	})

	t.Run("attribute alters touch only what changed", func(t *testing.T) {
		got := script(t, &migrate.Change{
			Kind:          migrate.ChangeAlterColumnAttrs,
			TableName:     "users",
			Column:        &migrate.Column{Name: "email", Type: migrate.DbTypeString, Length: 512, Nullable: true},
			CurrentColumn: &migrate.Column{Name: "email", Type: migrate.DbTypeString, Length: 512},
		})
		require.Equal(t, "ALTER TABLE \"users\" ALTER COLUMN \"email\" DROP NOT NULL;\n", got)

		got = script(t, &migrate.Change{
			Kind:          migrate.ChangeAlterColumnAttrs,
			TableName:     "users",
			Column:        &migrate.Column{Name: "status", Type: migrate.DbTypeString, Length: 16, Default: strPtr("active")},
			CurrentColumn: &migrate.Column{Name: "status", Type: migrate.DbTypeString, Length: 16},
		})
		require.Equal(t, "ALTER TABLE \"users\" ALTER COLUMN \"status\" SET DEFAULT 'active';\n", got)
	})

	t.Run("primary key replacement", func(t *testing.T) {
		got := script(t, &migrate.Change{
			Kind:      migrate.ChangeAlterPrimaryKey,
			TableName: "users",
			Table:     &migrate.Table{Name: "users", PrimaryKey: []string{"email"}},
		})
		require.Equal(t,
			"ALTER TABLE \"users\" DROP CONSTRAINT IF EXISTS \"users_pkey\";\n"+
				"ALTER TABLE \"users\" ADD PRIMARY KEY (\"email\");\n",
			got)
	})

	t.Run("drop foreign key uses drop constraint", func(t *testing.T) {
		got := script(t, &migrate.Change{
			Kind:       migrate.ChangeDropForeignKey,
			TableName:  "orders",
			ForeignKey: &migrate.ForeignKey{Name: "fk_orders_user"},
		})
		require.Equal(t, "ALTER TABLE \"orders\" DROP CONSTRAINT \"fk_orders_user\";\n", got)
	})
}
