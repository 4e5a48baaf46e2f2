package sqlite_test

import (
	"testing"

	"github.com/pvginkel/gmtdata/pkg/migrate"
	. "github.com/pvginkel/gmtdata/pkg/migrate/sqlite"
	"github.com/stretchr/testify/require"
)

func TestDialectBasics(t *testing.T) {
	d := New()

	require.Equal(t, "sqlite", d.Name())
	require.Equal(t, ";", d.StatementSeparator())
	require.Equal(t, "-- hello", d.EscapeComment("hello"))
	require.Equal(t, `"users"`, d.QuoteIdentifier("users"))

	collation, err := d.DefaultCollation("utf8mb4")
	require.NoError(t, err)
	require.Empty(t, collation)
}

func TestNormalizeColumn(t *testing.T) {
	d := New()

	col := &migrate.Column{
		Type: migrate.DbTypeEnumeration, EnumValues: []string{"a", "b"},
		Charset: "utf8mb4", Collation: "utf8mb4_general_ci", AutoIncrement: true,
	}
	d.NormalizeColumn(col)

	require.Equal(t, migrate.DbTypeText, col.Type)
	require.Nil(t, col.EnumValues)
	require.Empty(t, col.Charset)
	require.Empty(t, col.Collation)
	require.False(t, col.AutoIncrement)
}

func TestCreateTableInlinesForeignKeys(t *testing.T) {
	d := New()
	buf := migrate.NewBuffer(d.StatementSeparator())

	err := d.WriteChange(buf, &migrate.Change{
		Kind:      migrate.ChangeCreateTable,
		TableName: "orders",
		Table: &migrate.Table{
			Name: "orders",
			Columns: []*migrate.Column{
				{Name: "id", Type: migrate.DbTypeInt},
				{Name: "user_id", Type: migrate.DbTypeInt},
			},
			PrimaryKey: []string{"id"},
			ForeignKeys: []*migrate.ForeignKey{
				{Name: "fk_orders_user", Columns: []string{"user_id"}, RefTable: "users", RefColumns: []string{"id"}},
			},
		},
	})
	require.NoError(t, err)

	want := "CREATE TABLE \"orders\" (\n" +
		"  \"id\" int NOT NULL,\n" +
		"  \"user_id\" int NOT NULL,\n" +
		"  PRIMARY KEY (\"id\"),\n" +
		"  CONSTRAINT \"fk_orders_user\" FOREIGN KEY (\"user_id\") REFERENCES \"users\" (\"id\")\n" +
		");\n"
	require.Equal(t, want, migrate.Script(buf.Statements()))
}

func TestUnsupportedChanges(t *testing.T) {
	d := New()

	unsupported := []*migrate.Change{
		{Kind: migrate.ChangeAlterColumnType, TableName: "t", Column: &migrate.Column{Name: "c", Type: migrate.DbTypeInt}},
		{Kind: migrate.ChangeAlterColumnAttrs, TableName: "t", Column: &migrate.Column{Name: "c", Type: migrate.DbTypeInt}},
		{Kind: migrate.ChangeAlterPrimaryKey, TableName: "t", Table: &migrate.Table{Name: "t"}},
		{Kind: migrate.ChangeDropForeignKey, TableName: "t", ForeignKey: &migrate.ForeignKey{Name: "fk"}},
		{Kind: migrate.ChangeAddForeignKey, TableName: "t", ForeignKey: &migrate.ForeignKey{Name: "fk"}},
	}

	for _, change := range unsupported {
		buf := migrate.NewBuffer(d.StatementSeparator())
		err := d.WriteChange(buf, change)
		require.ErrorIs(t, err, migrate.ErrUnsupported, change.Kind)
	}
}

func TestForeignKeyAddOnCreatedTableIsInlined(t *testing.T) {
	d := New()
	buf := migrate.NewBuffer(d.StatementSeparator())

	err := d.WriteChange(buf, &migrate.Change{
		Kind:         migrate.ChangeAddForeignKey,
		TableName:    "orders",
		ForeignKey:   &migrate.ForeignKey{Name: "fk_orders_user"},
		TableCreated: true,
	})
	require.NoError(t, err)
	require.Empty(t, buf.Statements())
}
