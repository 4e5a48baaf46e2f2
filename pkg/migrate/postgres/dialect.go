// Package postgres implements the PostgreSQL dialect: ANSI double-quote
// quoting, split ALTER COLUMN shapes for type and attribute changes, and a
// schema reader built on information_schema and pg_catalog.
package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pvginkel/gmtdata/pkg/migrate"
	"github.com/pvginkel/gmtdata/pkg/utils"
)

// Dialect implements migrate.Dialect for PostgreSQL.
type Dialect struct{}

// New creates the PostgreSQL dialect.
func New() *Dialect {
	return &Dialect{}
}

func (d *Dialect) Name() string { return "postgres" }

func (d *Dialect) StatementSeparator() string { return ";" }

// EscapeComment renders text as a PostgreSQL line comment.
func (d *Dialect) EscapeComment(comment string) string {
	return "-- " + comment
}

// UseStatement returns the statement selecting the target schema. PostgreSQL
// has no USE; connections are per-database, so the script pins the search
// path instead.
func (d *Dialect) UseStatement(database string) string {
	return "SET search_path TO " + d.QuoteIdentifier(database)
}

// DefaultCollation returns the collation for a character set. PostgreSQL
// collation is a database-level property, so columns never pin one.
func (d *Dialect) DefaultCollation(charset string) (string, error) {
	return "", nil
}

// QuoteIdentifier quotes an identifier with ANSI double quotes.
func (d *Dialect) QuoteIdentifier(name string) string {
	return utils.QuoteIdentifier(name, '"')
}

// NormalizeColumn folds the MySQL-flavored canonical types PostgreSQL has no
// direct equivalent for into the types its catalog reports: the text and
// blob families collapse to text and bytea, small integer variants widen,
// and guids map to the native uuid type.
func (d *Dialect) NormalizeColumn(col *migrate.Column) {
	switch col.Type {
	case migrate.DbTypeTinyInt:
		col.Type = migrate.DbTypeSmallInt
	case migrate.DbTypeMediumInt:
		col.Type = migrate.DbTypeInt
	case migrate.DbTypeTinyText, migrate.DbTypeMediumText, migrate.DbTypeLongText:
		col.Type = migrate.DbTypeText
	case migrate.DbTypeTinyBlob, migrate.DbTypeMediumBlob, migrate.DbTypeLongBlob,
		migrate.DbTypeBinary, migrate.DbTypeFixedBinary:
		col.Type = migrate.DbTypeBlob
		col.Length = 0
	case migrate.DbTypeYear:
		col.Type = migrate.DbTypeSmallInt
	case migrate.DbTypeTimestamp:
		col.Type = migrate.DbTypeDateTime
	case migrate.DbTypeEnumeration:
		// Enumerations render as varchars sized to the longest member
		col.Type = migrate.DbTypeString
		col.Length = maxLength(col.EnumValues)
		col.EnumValues = nil
	}

	// Collation is not tracked per column
	col.Charset = ""
	col.Collation = ""

	// Serial columns report integer types; the sequence default is implied
	if col.AutoIncrement {
		col.Default = nil
	}
}

// ColumnDefinition renders one column definition. Auto increment columns use
// the serial pseudo-types.
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

	if col.Default != nil && !col.AutoIncrement {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(utils.EscapeSQLString(*col.Default))
	}

	return sb.String(), nil
}

func (d *Dialect) typeName(col *migrate.Column) (string, error) {
	if col.AutoIncrement {
		switch col.Type {
		case migrate.DbTypeSmallInt:
			return "smallserial", nil
		case migrate.DbTypeInt:
			return "serial", nil
		case migrate.DbTypeBigInt:
			return "bigserial", nil
		default:
			return "", migrate.SchemaErrorf("auto increment requires an integer type, not '%s'", col.Type)
		}
	}

	switch col.Type {
	case migrate.DbTypeSmallInt:
		return "smallint", nil
	case migrate.DbTypeInt:
		return "integer", nil
	case migrate.DbTypeBigInt:
		return "bigint", nil
	case migrate.DbTypeFloat:
		return "real", nil
	case migrate.DbTypeDouble:
		return "double precision", nil
	case migrate.DbTypeDecimal:
		if col.Length > 0 {
			return fmt.Sprintf("numeric(%d, %d)", col.Length, col.Scale), nil
		}
		return "numeric", nil
	case migrate.DbTypeString:
		return fmt.Sprintf("varchar(%d)", col.Length), nil
	case migrate.DbTypeFixedString:
		return fmt.Sprintf("char(%d)", col.Length), nil
	case migrate.DbTypeText:
		return "text", nil
	case migrate.DbTypeBlob:
		return "bytea", nil
	case migrate.DbTypeDate:
		return "date", nil
	case migrate.DbTypeDateTime, migrate.DbTypeTimestamp:
		return "timestamp", nil
	case migrate.DbTypeTime:
		return "time", nil
	case migrate.DbTypeEnumeration:
		// PostgreSQL enum types need CREATE TYPE, which is not table-scoped
		// DDL; NormalizeColumn folds enumerations to varchar before rendering
		return fmt.Sprintf("varchar(%d)", maxLength(col.EnumValues)), nil
	case migrate.DbTypeGuid:
		return "uuid", nil
	default:
		return "", migrate.ErrUnexpectedDbType
	}
}

func maxLength(values []string) int {
	max := 0
	for _, v := range values {
		if len(v) > max {
			max = len(v)
		}
	}
	return max
}

// WriteProlog emits no prolog. PostgreSQL DDL respects the change ordering
// guarantees without disabling constraint checks.
func (d *Dialect) WriteProlog(buf *migrate.Buffer) error {
	return nil
}

// WriteChange translates one structural change into PostgreSQL DDL.
func (d *Dialect) WriteChange(buf *migrate.Buffer, change *migrate.Change) error {
	switch change.Kind {
	case migrate.ChangeCreateTable:
		return migrate.WriteCreateTable(buf, d, change.Table)

	case migrate.ChangeDropTable:
		migrate.WriteDropTable(buf, d, change.TableName)

	case migrate.ChangeAddColumn:
		return migrate.WriteAddColumn(buf, d, change.TableName, change.Column)

	case migrate.ChangeDropColumn:
		migrate.WriteDropColumn(buf, d, change.TableName, change.CurrentColumn.Name)

	case migrate.ChangeAlterColumnType:
		return d.writeAlterColumnType(buf, change.TableName, change.Column)

	case migrate.ChangeAlterColumnAttrs:
		d.writeAlterColumnAttrs(buf, change.TableName, change.Column, change.CurrentColumn)

	case migrate.ChangeAlterPrimaryKey:
		d.writeAlterPrimaryKey(buf, change.Table)

	case migrate.ChangeAddIndex:
		migrate.WriteAddIndex(buf, d, change.TableName, change.Index)

	case migrate.ChangeDropIndex:
		migrate.WriteDropIndex(buf, d, change.Index)

	case migrate.ChangeAddForeignKey:
		migrate.WriteAddForeignKey(buf, d, change.TableName, change.ForeignKey)

	case migrate.ChangeDropForeignKey:
		migrate.WriteDropForeignKey(buf, d, change.TableName, change.ForeignKey)

	default:
		return migrate.MigrationErrorf("unexpected change kind '%s'", change.Kind)
	}

	return nil
}

func (d *Dialect) writeAlterColumnType(buf *migrate.Buffer, tableName string, col *migrate.Column) error {
	typeName, err := d.typeName(col)
	if err != nil {
		return err
	}

	buf.Add(utils.NewSQLBuilder(d.QuoteIdentifier).
		Alter("TABLE").
		Name(tableName).
		Alter("COLUMN").
		Name(col.Name).
		Raw("TYPE").
		Raw(typeName).
		String())
	return nil
}

// writeAlterColumnAttrs emits separate SET/DROP clauses for nullability and
// default, touching only the attributes that actually changed.
func (d *Dialect) writeAlterColumnAttrs(buf *migrate.Buffer, tableName string, col, current *migrate.Column) {
	if current == nil || col.Nullable != current.Nullable {
		action := "SET NOT NULL"
		if col.Nullable {
			action = "DROP NOT NULL"
		}
		buf.Add(utils.NewSQLBuilder(d.QuoteIdentifier).
			Alter("TABLE").
			Name(tableName).
			Alter("COLUMN").
			Name(col.Name).
			Raw(action).
			String())
	}

	if current == nil || !pointersEqual(col.Default, current.Default) {
		b := utils.NewSQLBuilder(d.QuoteIdentifier).
			Alter("TABLE").
			Name(tableName).
			Alter("COLUMN").
			Name(col.Name)
		if col.Default != nil {
			b.Raw("SET DEFAULT").Raw(utils.EscapeSQLString(*col.Default))
		} else {
			b.Raw("DROP DEFAULT")
		}
		buf.Add(b.String())
	}
}

func pointersEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// writeAlterPrimaryKey replaces the table's primary key constraint. The
// constraint name follows the catalog's <table>_pkey convention.
func (d *Dialect) writeAlterPrimaryKey(buf *migrate.Buffer, table *migrate.Table) {
	buf.Add(utils.NewSQLBuilder(d.QuoteIdentifier).
		Alter("TABLE").
		Name(table.Name).
		Drop("CONSTRAINT IF EXISTS").
		Name(table.Name + "_pkey").
		String())

	if len(table.PrimaryKey) > 0 {
		buf.Add(utils.NewSQLBuilder(d.QuoteIdentifier).
			Alter("TABLE").
			Name(table.Name).
			Add("PRIMARY KEY").
			Columns(table.PrimaryKey...).
			String())
	}
}

// NewSchemaReader constructs the catalog based reader. The database name is
// interpreted as the schema to read, matching UseStatement's search_path.
func (d *Dialect) NewSchemaReader(db *sql.DB, database string) migrate.SchemaReader {
	return &schemaReader{db: db, schema: database}
}
