package utils_test

import (
	"testing"

	. "github.com/pvginkel/gmtdata/pkg/utils"
	"github.com/stretchr/testify/require"
)

func backtick(name string) string { return QuoteIdentifier(name, '`') }

func TestSQLBuilder(t *testing.T) {
	t.Run("create index", func(t *testing.T) {
		got := NewSQLBuilder(backtick).
			Create("UNIQUE INDEX").
			Name("idx_users_email").
			On("users").
			Columns("email").
			String()
		require.Equal(t, "CREATE UNIQUE INDEX `idx_users_email` ON `users` (`email`)", got)
	})

	t.Run("add foreign key", func(t *testing.T) {
		got := NewSQLBuilder(backtick).
			Alter("TABLE").
			Name("orders").
			Add("CONSTRAINT").
			Name("fk_orders_user").
			Raw("FOREIGN KEY").
			Columns("user_id").
			References("users", "id").
			String()
		require.Equal(t,
			"ALTER TABLE `orders` ADD CONSTRAINT `fk_orders_user` FOREIGN KEY (`user_id`) REFERENCES `users` (`id`)",
			got)
	})

	t.Run("drop table", func(t *testing.T) {
		got := NewSQLBuilder(backtick).Drop("TABLE").Name("users").String()
		require.Equal(t, "DROP TABLE `users`", got)
	})

	t.Run("empty names and raw are skipped", func(t *testing.T) {
		got := NewSQLBuilder(backtick).Drop("TABLE").Name("").Raw("").String()
		require.Equal(t, "DROP TABLE", got)
	})

	t.Run("multi column list", func(t *testing.T) {
		got := NewSQLBuilder(backtick).Columns("a", "b", "c").String()
		require.Equal(t, "(`a`, `b`, `c`)", got)
	})
}

func TestQuoteIdentifier(t *testing.T) {
	require.Equal(t, "`users`", QuoteIdentifier("users", '`'))
	require.Equal(t, `"users"`, QuoteIdentifier("users", '"'))
	require.Equal(t, "`weird``name`", QuoteIdentifier("weird`name", '`'))
	require.Equal(t, `"weird""name"`, QuoteIdentifier(`weird"name`, '"'))
}

func TestEscapeSQLString(t *testing.T) {
	require.Equal(t, "'hello'", EscapeSQLString("hello"))
	require.Equal(t, "'it''s'", EscapeSQLString("it's"))
	require.Equal(t, "''", EscapeSQLString(""))
}
