// Package sqlite implements the SQLite dialect. SQLite's ALTER TABLE only
// covers renames and column add/drop, so type changes, primary key changes
// and constraint changes on existing tables report ErrUnsupported instead of
// emitting DDL that the engine would reject.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/pvginkel/gmtdata/pkg/migrate"
	"github.com/pvginkel/gmtdata/pkg/utils"
)

// Dialect implements migrate.Dialect for SQLite.
type Dialect struct{}

// New creates the SQLite dialect.
func New() *Dialect {
	return &Dialect{}
}

func (d *Dialect) Name() string { return "sqlite" }

func (d *Dialect) StatementSeparator() string { return ";" }

// EscapeComment renders text as a SQLite line comment.
func (d *Dialect) EscapeComment(comment string) string {
	return "-- " + comment
}

// UseStatement returns the header text naming the target. SQLite databases
// are single-file, so there is no select-database statement; the header only
// documents which model the script was generated from.
func (d *Dialect) UseStatement(database string) string {
	return "Database " + database
}

// DefaultCollation returns the empty collation. SQLite collations (BINARY,
// NOCASE) are not tied to character sets and are never emitted.
func (d *Dialect) DefaultCollation(charset string) (string, error) {
	return "", nil
}

// QuoteIdentifier quotes an identifier with ANSI double quotes.
func (d *Dialect) QuoteIdentifier(name string) string {
	return utils.QuoteIdentifier(name, '"')
}

// NormalizeColumn clears attributes SQLite doesn't track. Declared type
// names round-trip through the table_info pragma, so canonical types stay as
// declared except for enumerations, which have no SQLite spelling.
func (d *Dialect) NormalizeColumn(col *migrate.Column) {
	col.Charset = ""
	col.Collation = ""

	// Integer primary keys auto increment through the rowid; the flag never
	// appears in DDL
	col.AutoIncrement = false

	if col.Type == migrate.DbTypeEnumeration {
		col.Type = migrate.DbTypeText
		col.EnumValues = nil
	}
}

// ColumnDefinition renders one column definition using the shared alias
// spellings so the declared type reads back to the same canonical type.
func (d *Dialect) ColumnDefinition(col *migrate.Column) (string, error) {
	typeName, err := d.typeName(col)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(d.QuoteIdentifier(col.Name))
	sb.WriteString(" ")
	sb.WriteString(typeName)

	if col.Nullable {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}

	if col.Default != nil {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(utils.EscapeSQLString(*col.Default))
	}

	return sb.String(), nil
}

func (d *Dialect) typeName(col *migrate.Column) (string, error) {
	switch col.Type {
	case migrate.DbTypeTinyInt, migrate.DbTypeSmallInt, migrate.DbTypeMediumInt,
		migrate.DbTypeInt, migrate.DbTypeBigInt, migrate.DbTypeFloat,
		migrate.DbTypeDouble, migrate.DbTypeText, migrate.DbTypeTinyText,
		migrate.DbTypeMediumText, migrate.DbTypeLongText, migrate.DbTypeBlob,
		migrate.DbTypeTinyBlob, migrate.DbTypeMediumBlob, migrate.DbTypeLongBlob,
		migrate.DbTypeDate, migrate.DbTypeDateTime, migrate.DbTypeTimestamp,
		migrate.DbTypeTime, migrate.DbTypeYear, migrate.DbTypeGuid:
		return sqliteSpelling(col.Type), nil
	case migrate.DbTypeDecimal:
		if col.Length > 0 {
			return fmt.Sprintf("decimal(%d, %d)", col.Length, col.Scale), nil
		}
		return "decimal", nil
	case migrate.DbTypeString:
		return fmt.Sprintf("varchar(%d)", col.Length), nil
	case migrate.DbTypeFixedString:
		return fmt.Sprintf("char(%d)", col.Length), nil
	case migrate.DbTypeBinary:
		return fmt.Sprintf("varbinary(%d)", col.Length), nil
	case migrate.DbTypeFixedBinary:
		return fmt.Sprintf("binary(%d)", col.Length), nil
	default:
		return "", migrate.ErrUnexpectedDbType
	}
}

// sqliteSpelling maps canonical types without length onto the alias table's
// spelling, so ParseDbType inverts the declaration exactly.
func sqliteSpelling(t migrate.DbType) string {
	switch t {
	case migrate.DbTypeTinyText:
		return "tinytext"
	case migrate.DbTypeMediumText:
		return "mediumtext"
	case migrate.DbTypeLongText:
		return "longtext"
	case migrate.DbTypeTinyBlob:
		return "tinyblob"
	case migrate.DbTypeMediumBlob:
		return "mediumblob"
	case migrate.DbTypeLongBlob:
		return "longblob"
	default:
		return string(t)
	}
}

// WriteProlog disables foreign key enforcement so drops never trip
// referential checks mid-script.
func (d *Dialect) WriteProlog(buf *migrate.Buffer) error {
	return buf.Prolog("PRAGMA foreign_keys = OFF")
}

// WriteChange translates one structural change into SQLite DDL. Changes
// SQLite cannot express as ALTER statements fail with ErrUnsupported; the
// caller decides whether to rebuild the table by hand or regenerate with
// constraints suppressed.
func (d *Dialect) WriteChange(buf *migrate.Buffer, change *migrate.Change) error {
	switch change.Kind {
	case migrate.ChangeCreateTable:
		return d.writeCreateTable(buf, change.Table)

	case migrate.ChangeDropTable:
		migrate.WriteDropTable(buf, d, change.TableName)

	case migrate.ChangeAddColumn:
		return migrate.WriteAddColumn(buf, d, change.TableName, change.Column)

	case migrate.ChangeDropColumn:
		migrate.WriteDropColumn(buf, d, change.TableName, change.CurrentColumn.Name)

	case migrate.ChangeAddIndex:
		migrate.WriteAddIndex(buf, d, change.TableName, change.Index)

	case migrate.ChangeDropIndex:
		migrate.WriteDropIndex(buf, d, change.Index)

	case migrate.ChangeAlterColumnType, migrate.ChangeAlterColumnAttrs,
		migrate.ChangeAlterPrimaryKey:
		return errors.Wrapf(migrate.ErrUnsupported,
			"sqlite cannot alter columns of table '%s'", change.TableName)

	case migrate.ChangeAddForeignKey:
		// Already inlined when this run created the table
		if change.TableCreated {
			return nil
		}
		return errors.Wrapf(migrate.ErrUnsupported,
			"sqlite cannot add constraints to existing table '%s'", change.TableName)

	case migrate.ChangeDropForeignKey:
		return errors.Wrapf(migrate.ErrUnsupported,
			"sqlite cannot change constraints of table '%s'", change.TableName)

	default:
		return migrate.MigrationErrorf("unexpected change kind '%s'", change.Kind)
	}

	return nil
}

// writeCreateTable inlines foreign key clauses, since CREATE TABLE is the
// only place SQLite accepts them.
func (d *Dialect) writeCreateTable(buf *migrate.Buffer, table *migrate.Table) error {
	lines := make([]string, 0, len(table.Columns)+1)
	for _, col := range table.Columns {
		def, err := d.ColumnDefinition(col)
		if err != nil {
			return err
		}
		lines = append(lines, def)
	}

	if len(table.PrimaryKey) > 0 {
		lines = append(lines, "PRIMARY KEY "+d.columnList(table.PrimaryKey))
	}

	for _, fk := range table.ForeignKeys {
		lines = append(lines, fmt.Sprintf("CONSTRAINT %s FOREIGN KEY %s REFERENCES %s %s",
			d.QuoteIdentifier(fk.Name),
			d.columnList(fk.Columns),
			d.QuoteIdentifier(fk.RefTable),
			d.columnList(fk.RefColumns)))
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

func (d *Dialect) columnList(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = d.QuoteIdentifier(name)
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

// NewSchemaReader constructs the pragma based reader. SQLite has no schema
// namespaces; the database name only labels the snapshot.
func (d *Dialect) NewSchemaReader(db *sql.DB, database string) migrate.SchemaReader {
	return &schemaReader{db: db, database: database}
}
