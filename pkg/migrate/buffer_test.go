package migrate_test

import (
	"testing"

	. "github.com/pvginkel/gmtdata/pkg/migrate"
	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {
	t.Run("statement followed by separator", func(t *testing.T) {
		buf := NewBuffer(";")
		buf.Add("CREATE TABLE t (id int)")

		stmts := buf.Statements()
		require.Len(t, stmts, 2)
		require.Equal(t, Statement{Kind: KindStatement, Text: "CREATE TABLE t (id int)"}, stmts[0])
		require.Equal(t, Statement{Kind: KindSeparator, Text: ";\n"}, stmts[1])
	})

	t.Run("scratch accumulates until committed", func(t *testing.T) {
		buf := NewBuffer(";")
		buf.Append("CREATE TABLE t (")
		buf.Append("  id int")
		buf.Add(")")

		stmts := buf.Statements()
		require.Len(t, stmts, 2)
		require.Equal(t, "CREATE TABLE t (\n  id int\n)", stmts[0].Text)
	})

	t.Run("comments and blank lines", func(t *testing.T) {
		buf := NewBuffer(";")
		buf.Comment("-- header")
		buf.BlankLine()

		stmts := buf.Statements()
		require.Len(t, stmts, 2)
		require.Equal(t, Statement{Kind: KindComment, Text: "-- header\n"}, stmts[0])
		require.Equal(t, Statement{Kind: KindSeparator, Text: "\n"}, stmts[1])
	})

	t.Run("prolog flushes before first statement", func(t *testing.T) {
		buf := NewBuffer(";")
		buf.Comment("-- header")
		require.NoError(t, buf.Prolog("SET CHECKS = 0"))
		buf.Add("DROP TABLE t")

		stmts := buf.Statements()
		require.Len(t, stmts, 5)
		require.Equal(t, KindComment, stmts[0].Kind)
		require.Equal(t, "SET CHECKS = 0", stmts[1].Text)
		require.Equal(t, KindSeparator, stmts[2].Kind)
		require.Equal(t, "DROP TABLE t", stmts[3].Text)
		require.Equal(t, KindSeparator, stmts[4].Kind)
	})

	t.Run("prolog after body statement fails", func(t *testing.T) {
		buf := NewBuffer(";")
		buf.Add("DROP TABLE t")

		err := buf.Prolog("SET CHECKS = 0")
		require.Error(t, err)

		var migErr *MigrationError
		require.ErrorAs(t, err, &migErr)
	})

	t.Run("prolog allowed after comments and blank lines", func(t *testing.T) {
		buf := NewBuffer(";")
		buf.Comment("-- header")
		buf.BlankLine()
		require.NoError(t, buf.Prolog("SET CHECKS = 0"))
	})

	t.Run("every statement fragment paired with separator", func(t *testing.T) {
		buf := NewBuffer(";")
		require.NoError(t, buf.Prolog("SET CHECKS = 0"))
		buf.Add("DROP TABLE a")
		buf.Add("DROP TABLE b")

		for i, stmt := range buf.Statements() {
			if stmt.Kind == KindStatement {
				next := buf.Statements()[i+1]
				require.Equal(t, KindSeparator, next.Kind)
			}
		}
	})
}

func TestScript(t *testing.T) {
	buf := NewBuffer(";")
	buf.Comment("-- header")
	buf.BlankLine()
	buf.Add("DROP TABLE t")

	require.Equal(t, "-- header\n\nDROP TABLE t;\n", Script(buf.Statements()))
	require.Equal(t, []string{"DROP TABLE t"}, ExecutableStatements(buf.Statements()))
}
