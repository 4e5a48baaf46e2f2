package mysql_test

import (
	"testing"

	"github.com/pvginkel/gmtdata/pkg/migrate"
	. "github.com/pvginkel/gmtdata/pkg/migrate/mysql"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

func strPtr(s string) *string { return &s }

func TestDialectBasics(t *testing.T) {
	d := New()

	require.Equal(t, "mysql", d.Name())
	require.Equal(t, ";", d.StatementSeparator())
	require.Equal(t, "-- hello", d.EscapeComment("hello"))
	require.Equal(t, "USE `webshop`", d.UseStatement("webshop"))
	require.Equal(t, "`weird``name`", d.QuoteIdentifier("weird`name"))
}

func TestDefaultCollation(t *testing.T) {
	d := New()

	collation, err := d.DefaultCollation("utf8mb4")
	require.NoError(t, err)
	require.Equal(t, "utf8mb4_general_ci", collation)

	collation, err = d.DefaultCollation("UTF8MB4")
	require.NoError(t, err)
	require.Equal(t, "utf8mb4_general_ci", collation)

	_, err = d.DefaultCollation("klingon")
	require.Error(t, err)

	var schemaErr *migrate.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestColumnDefinition(t *testing.T) {
	d := New()

	cases := []struct {
		name string
		col  *migrate.Column
		want string
	}{
		{
			name: "auto increment primary",
			col:  &migrate.Column{Name: "id", Type: migrate.DbTypeInt, AutoIncrement: true},
			want: "`id` int NOT NULL AUTO_INCREMENT",
		},
		{
			name: "varchar with charset",
			col: &migrate.Column{
				Name: "email", Type: migrate.DbTypeString, Length: 255,
				Charset: "utf8mb4", Collation: "utf8mb4_general_ci",
			},
			want: "`email` varchar(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_general_ci NOT NULL",
		},
		{
			name: "nullable text",
			col:  &migrate.Column{Name: "bio", Type: migrate.DbTypeText, Nullable: true},
			want: "`bio` text NULL",
		},
		{
			name: "decimal with default",
			col:  &migrate.Column{Name: "balance", Type: migrate.DbTypeDecimal, Length: 10, Scale: 2, Default: strPtr("0")},
			want: "`balance` decimal(10, 2) NOT NULL DEFAULT '0'",
		},
		{
			name: "enumeration",
			col: &migrate.Column{
				Name: "status", Type: migrate.DbTypeEnumeration,
				EnumValues: []string{"active", "it's"},
			},
			want: "`status` enum('active', 'it''s') NOT NULL",
		},
		{
			name: "varbinary",
			col:  &migrate.Column{Name: "payload", Type: migrate.DbTypeBinary, Length: 16},
			want: "`payload` varbinary(16) NOT NULL",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := d.ColumnDefinition(tc.col)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	t.Run("out of range type is a defect", func(t *testing.T) {
		_, err := d.ColumnDefinition(&migrate.Column{Name: "c", Type: migrate.DbTypeUnset})
		require.ErrorIs(t, err, migrate.ErrUnexpectedDbType)
	})
}

func TestNormalizeColumn(t *testing.T) {
	d := New()

	col := &migrate.Column{Name: "external_id", Type: migrate.DbTypeGuid}
	d.NormalizeColumn(col)
	require.Equal(t, migrate.DbTypeFixedString, col.Type)
	require.Equal(t, 36, col.Length)
	require.Equal(t, "utf8mb4", col.Charset)
	require.Equal(t, "utf8mb4_general_ci", col.Collation)

	col = &migrate.Column{Name: "amount", Type: migrate.DbTypeDecimal}
	d.NormalizeColumn(col)
	require.Equal(t, 10, col.Length)
	require.Equal(t, 0, col.Scale)
	require.Empty(t, col.Charset)

	t.Run("charset-less text columns are pinned to the default", func(t *testing.T) {
		col := &migrate.Column{Name: "email", Type: migrate.DbTypeString, Length: 255}
		d.NormalizeColumn(col)
		require.Equal(t, "utf8mb4", col.Charset)
		require.Equal(t, "utf8mb4_general_ci", col.Collation)
	})

	t.Run("explicit charset is kept", func(t *testing.T) {
		col := &migrate.Column{
			Name: "name", Type: migrate.DbTypeString, Length: 100,
			Charset: "latin1", Collation: "latin1_swedish_ci",
		}
		d.NormalizeColumn(col)
		require.Equal(t, "latin1", col.Charset)
		require.Equal(t, "latin1_swedish_ci", col.Collation)
	})
}

func TestWriteChange(t *testing.T) {
	d := New()

	buf := migrate.NewBuffer(d.StatementSeparator())
	require.NoError(t, d.WriteProlog(buf))

	changes := []*migrate.Change{
		{
			Kind:      migrate.ChangeDropForeignKey,
			TableName: "orders",
			ForeignKey: &migrate.ForeignKey{
				Name: "fk_orders_user", Columns: []string{"user_id"},
				RefTable: "users", RefColumns: []string{"id"},
			},
		},
		{
			Kind:      migrate.ChangeDropIndex,
			TableName: "users",
			Index:     &migrate.Index{Name: "idx_users_email", Columns: []string{"email"}, Unique: true},
		},
		{
			Kind:      migrate.ChangeCreateTable,
			TableName: "products",
			Table: &migrate.Table{
				Name: "products",
				Columns: []*migrate.Column{
					{Name: "id", Type: migrate.DbTypeInt, AutoIncrement: true},
					{Name: "name", Type: migrate.DbTypeString, Length: 255, Charset: "utf8mb4", Collation: "utf8mb4_general_ci"},
					{Name: "price", Type: migrate.DbTypeDecimal, Length: 10, Scale: 2},
				},
				PrimaryKey: []string{"id"},
			},
		},
		{
			Kind:      migrate.ChangeAddColumn,
			TableName: "users",
			Column:    &migrate.Column{Name: "bio", Type: migrate.DbTypeText, Nullable: true},
		},
		{
			Kind:      migrate.ChangeAlterColumnType,
			TableName: "users",
			Column:    &migrate.Column{Name: "email", Type: migrate.DbTypeString, Length: 512},
		},
		{
			Kind:          migrate.ChangeAlterColumnAttrs,
			TableName:     "users",
			Column:        &migrate.Column{Name: "email", Type: migrate.DbTypeString, Length: 512, Nullable: true},
			CurrentColumn: &migrate.Column{Name: "email", Type: migrate.DbTypeString, Length: 512},
		},
		{
			Kind:          migrate.ChangeDropColumn,
			TableName:     "users",
			CurrentColumn: &migrate.Column{Name: "legacy", Type: migrate.DbTypeInt},
		},
		{
			Kind:         migrate.ChangeAlterPrimaryKey,
			TableName:    "users",
			Table:        &migrate.Table{Name: "users", PrimaryKey: []string{"email"}},
			CurrentTable: &migrate.Table{Name: "users", PrimaryKey: []string{"id"}},
		},
		{
			Kind:      migrate.ChangeAddIndex,
			TableName: "orders",
			Index:     &migrate.Index{Name: "idx_orders_user", Columns: []string{"user_id"}, Unique: true},
		},
		{
			Kind:      migrate.ChangeAddForeignKey,
			TableName: "orders",
			ForeignKey: &migrate.ForeignKey{
				Name: "fk_orders_user", Columns: []string{"user_id"},
				RefTable: "users", RefColumns: []string{"id"},
			},
		},
		{
			Kind:      migrate.ChangeDropTable,
			TableName: "old_table",
		},
	}

	for _, change := range changes {
		require.NoError(t, d.WriteChange(buf, change))
	}

	golden.Assert(t, migrate.Script(buf.Statements()), "migration.sql")
}

func TestAlterPrimaryKeyShapes(t *testing.T) {
	d := New()

	writeChange := func(t *testing.T, change *migrate.Change) string {
		t.Helper()
		buf := migrate.NewBuffer(d.StatementSeparator())
		require.NoError(t, d.WriteChange(buf, change))
		return migrate.Script(buf.Statements())
	}

	t.Run("first key on a table without one emits only the add", func(t *testing.T) {
		script := writeChange(t, &migrate.Change{
			Kind:         migrate.ChangeAlterPrimaryKey,
			TableName:    "t",
			Table:        &migrate.Table{Name: "t", PrimaryKey: []string{"id"}},
			CurrentTable: &migrate.Table{Name: "t"},
		})
		require.Equal(t, "ALTER TABLE `t` ADD PRIMARY KEY (`id`);\n", script)
	})

	t.Run("replacing a key drops and adds in one statement", func(t *testing.T) {
		script := writeChange(t, &migrate.Change{
			Kind:         migrate.ChangeAlterPrimaryKey,
			TableName:    "t",
			Table:        &migrate.Table{Name: "t", PrimaryKey: []string{"email"}},
			CurrentTable: &migrate.Table{Name: "t", PrimaryKey: []string{"id"}},
		})
		require.Equal(t, "ALTER TABLE `t` DROP PRIMARY KEY, ADD PRIMARY KEY (`email`);\n", script)
	})

	t.Run("removing the key emits only the drop", func(t *testing.T) {
		script := writeChange(t, &migrate.Change{
			Kind:         migrate.ChangeAlterPrimaryKey,
			TableName:    "t",
			Table:        &migrate.Table{Name: "t"},
			CurrentTable: &migrate.Table{Name: "t", PrimaryKey: []string{"id"}},
		})
		require.Equal(t, "ALTER TABLE `t` DROP PRIMARY KEY;\n", script)
	})
}
