package migrate

import (
	"strings"

	"github.com/pvginkel/gmtdata/pkg/utils"
)

// The Write* helpers translate individual changes into statement buffer
// commits using the dialect's quoting and column rendering. Dialects call
// them from WriteChange and override only the shapes they disagree on.

// WriteCreateTable commits a multi-line CREATE TABLE statement composed in
// the scratch accumulator: header line, one line per column, an optional
// PRIMARY KEY line, and the closing parenthesis.
func WriteCreateTable(buf *Buffer, d Dialect, table *Table) error {
	lines := make([]string, 0, len(table.Columns)+1)
	for _, col := range table.Columns {
		def, err := d.ColumnDefinition(col)
		if err != nil {
			return err
		}
		lines = append(lines, def)
	}

	if len(table.PrimaryKey) > 0 {
		quoted := make([]string, len(table.PrimaryKey))
		for i, name := range table.PrimaryKey {
			quoted[i] = d.QuoteIdentifier(name)
		}
		lines = append(lines, "PRIMARY KEY ("+strings.Join(quoted, ", ")+")")
	}

	buf.Append("CREATE TABLE " + d.QuoteIdentifier(table.Name) + " (")
	for i, line := range lines {
		if i < len(lines)-1 {
			line += ","
		}
		buf.Append("  " + line)
	}
	buf.Add(")")

	return nil
}

// WriteDropTable commits a DROP TABLE statement.
func WriteDropTable(buf *Buffer, d Dialect, tableName string) {
	buf.Add(utils.NewSQLBuilder(d.QuoteIdentifier).
		Drop("TABLE").
		Name(tableName).
		String())
}

// WriteAddColumn commits an ALTER TABLE ... ADD COLUMN statement.
func WriteAddColumn(buf *Buffer, d Dialect, tableName string, col *Column) error {
	def, err := d.ColumnDefinition(col)
	if err != nil {
		return err
	}

	buf.Add(utils.NewSQLBuilder(d.QuoteIdentifier).
		Alter("TABLE").
		Name(tableName).
		Add("COLUMN").
		Raw(def).
		String())
	return nil
}

// WriteDropColumn commits an ALTER TABLE ... DROP COLUMN statement.
func WriteDropColumn(buf *Buffer, d Dialect, tableName, columnName string) {
	buf.Add(utils.NewSQLBuilder(d.QuoteIdentifier).
		Alter("TABLE").
		Name(tableName).
		Drop("COLUMN").
		Name(columnName).
		String())
}

// WriteAddIndex commits a CREATE [UNIQUE] INDEX statement.
func WriteAddIndex(buf *Buffer, d Dialect, tableName string, idx *Index) {
	b := utils.NewSQLBuilder(d.QuoteIdentifier)
	if idx.Unique {
		b.Create("UNIQUE INDEX")
	} else {
		b.Create("INDEX")
	}

	buf.Add(b.
		Name(idx.Name).
		On(tableName).
		Columns(idx.Columns...).
		String())
}

// WriteDropIndex commits the ANSI DROP INDEX shape. MySQL overrides this with
// its table-scoped form.
func WriteDropIndex(buf *Buffer, d Dialect, idx *Index) {
	buf.Add(utils.NewSQLBuilder(d.QuoteIdentifier).
		Drop("INDEX").
		Name(idx.Name).
		String())
}

// WriteAddForeignKey commits an ALTER TABLE ... ADD CONSTRAINT ... FOREIGN
// KEY statement.
func WriteAddForeignKey(buf *Buffer, d Dialect, tableName string, fk *ForeignKey) {
	buf.Add(utils.NewSQLBuilder(d.QuoteIdentifier).
		Alter("TABLE").
		Name(tableName).
		Add("CONSTRAINT").
		Name(fk.Name).
		Raw("FOREIGN KEY").
		Columns(fk.Columns...).
		References(fk.RefTable, fk.RefColumns...).
		String())
}

// WriteDropForeignKey commits the ANSI DROP CONSTRAINT shape. MySQL overrides
// this with DROP FOREIGN KEY.
func WriteDropForeignKey(buf *Buffer, d Dialect, tableName string, fk *ForeignKey) {
	buf.Add(utils.NewSQLBuilder(d.QuoteIdentifier).
		Alter("TABLE").
		Name(tableName).
		Drop("CONSTRAINT").
		Name(fk.Name).
		String())
}
