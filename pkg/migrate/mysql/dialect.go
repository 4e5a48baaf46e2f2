// Package mysql implements the MySQL dialect: backtick quoting, MODIFY
// COLUMN alters, table-scoped index drops, and a schema reader built on
// information_schema.
package mysql

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pvginkel/gmtdata/pkg/migrate"
	"github.com/pvginkel/gmtdata/pkg/utils"
)

// defaultCharset is pinned on text-carrying columns when the model doesn't
// name one, so generated tables don't depend on the server default and the
// charset information_schema reports always matches the target.
const defaultCharset = "utf8mb4"

// defaultCollations maps character sets to the collation MySQL picks when
// none is specified.
var defaultCollations = map[string]string{
	"ascii":   "ascii_general_ci",
	"binary":  "binary",
	"latin1":  "latin1_swedish_ci",
	"ucs2":    "ucs2_general_ci",
	"utf8":    "utf8_general_ci",
	"utf8mb3": "utf8mb3_general_ci",
	"utf8mb4": "utf8mb4_general_ci",
}

// Dialect implements migrate.Dialect for MySQL.
type Dialect struct{}

// New creates the MySQL dialect.
func New() *Dialect {
	return &Dialect{}
}

func (d *Dialect) Name() string { return "mysql" }

func (d *Dialect) StatementSeparator() string { return ";" }

// EscapeComment renders text as a MySQL line comment.
func (d *Dialect) EscapeComment(comment string) string {
	return "-- " + comment
}

// UseStatement returns the USE statement selecting the given database.
func (d *Dialect) UseStatement(database string) string {
	return "USE " + d.QuoteIdentifier(database)
}

// DefaultCollation returns the collation MySQL associates with the given
// character set.
func (d *Dialect) DefaultCollation(charset string) (string, error) {
	collation, ok := defaultCollations[strings.ToLower(charset)]
	if !ok {
		return "", migrate.SchemaErrorf("no default collation known for character set '%s'", charset)
	}
	return collation, nil
}

// QuoteIdentifier quotes an identifier with backticks.
func (d *Dialect) QuoteIdentifier(name string) string {
	return utils.QuoteIdentifier(name, '`')
}

// NormalizeColumn folds types MySQL stores differently from their canonical
// form: guids become char(36), unsized decimals get MySQL's implicit (10, 0)
// precision, and text-carrying columns without a charset are pinned to the
// default charset.
func (d *Dialect) NormalizeColumn(col *migrate.Column) {
	switch col.Type {
	case migrate.DbTypeGuid:
		col.Type = migrate.DbTypeFixedString
		col.Length = 36
	case migrate.DbTypeDecimal:
		if col.Length == 0 {
			col.Length = 10
			col.Scale = 0
		}
	}

	switch col.Type {
	case migrate.DbTypeString, migrate.DbTypeFixedString,
		migrate.DbTypeText, migrate.DbTypeTinyText,
		migrate.DbTypeMediumText, migrate.DbTypeLongText,
		migrate.DbTypeEnumeration:
		if col.Charset == "" {
			col.Charset = defaultCharset
			col.Collation = defaultCollations[defaultCharset]
		}
	}
}

// ColumnDefinition renders one column definition for CREATE TABLE, ADD
// COLUMN and MODIFY COLUMN clauses.
func (d *Dialect) ColumnDefinition(col *migrate.Column) (string, error) {
	typeName, err := d.typeName(col)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(d.QuoteIdentifier(col.Name))
	sb.WriteString(" ")
	sb.WriteString(typeName)

	if col.Charset != "" {
		sb.WriteString(" CHARACTER SET ")
		sb.WriteString(col.Charset)
		sb.WriteString(" COLLATE ")
		sb.WriteString(col.Collation)
	}

	if col.Nullable {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}

	if col.Default != nil {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(utils.EscapeSQLString(*col.Default))
	}

	if col.AutoIncrement {
		sb.WriteString(" AUTO_INCREMENT")
	}

	return sb.String(), nil
}

func (d *Dialect) typeName(col *migrate.Column) (string, error) {
	switch col.Type {
	case migrate.DbTypeTinyInt:
		return "tinyint", nil
	case migrate.DbTypeSmallInt:
		return "smallint", nil
	case migrate.DbTypeMediumInt:
		return "mediumint", nil
	case migrate.DbTypeInt:
		return "int", nil
	case migrate.DbTypeBigInt:
		return "bigint", nil
	case migrate.DbTypeFloat:
		return "float", nil
	case migrate.DbTypeDouble:
		return "double", nil
	case migrate.DbTypeDecimal:
		return fmt.Sprintf("decimal(%d, %d)", col.Length, col.Scale), nil
	case migrate.DbTypeString:
		return fmt.Sprintf("varchar(%d)", col.Length), nil
	case migrate.DbTypeFixedString:
		return fmt.Sprintf("char(%d)", col.Length), nil
	case migrate.DbTypeBinary:
		return fmt.Sprintf("varbinary(%d)", col.Length), nil
	case migrate.DbTypeFixedBinary:
		return fmt.Sprintf("binary(%d)", col.Length), nil
	case migrate.DbTypeText:
		return "text", nil
	case migrate.DbTypeTinyText:
		return "tinytext", nil
	case migrate.DbTypeMediumText:
		return "mediumtext", nil
	case migrate.DbTypeLongText:
		return "longtext", nil
	case migrate.DbTypeBlob:
		return "blob", nil
	case migrate.DbTypeTinyBlob:
		return "tinyblob", nil
	case migrate.DbTypeMediumBlob:
		return "mediumblob", nil
	case migrate.DbTypeLongBlob:
		return "longblob", nil
	case migrate.DbTypeDate:
		return "date", nil
	case migrate.DbTypeDateTime:
		return "datetime", nil
	case migrate.DbTypeTimestamp:
		return "timestamp", nil
	case migrate.DbTypeTime:
		return "time", nil
	case migrate.DbTypeYear:
		return "year", nil
	case migrate.DbTypeEnumeration:
		values := make([]string, len(col.EnumValues))
		for i, v := range col.EnumValues {
			values[i] = utils.EscapeSQLString(v)
		}
		return "enum(" + strings.Join(values, ", ") + ")", nil
	default:
		return "", migrate.ErrUnexpectedDbType
	}
}

// WriteProlog disables foreign key checks for the duration of the script so
// that change ordering never trips referential constraints mid-run.
func (d *Dialect) WriteProlog(buf *migrate.Buffer) error {
	return buf.Prolog("SET FOREIGN_KEY_CHECKS = 0")
}

// WriteChange translates one structural change into MySQL DDL.
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

	case migrate.ChangeAlterColumnType, migrate.ChangeAlterColumnAttrs:
		// MySQL uses the same MODIFY COLUMN shape for both alter kinds
		return d.writeModifyColumn(buf, change.TableName, change.Column)

	case migrate.ChangeAlterPrimaryKey:
		d.writeAlterPrimaryKey(buf, change)

	case migrate.ChangeAddIndex:
		migrate.WriteAddIndex(buf, d, change.TableName, change.Index)

	case migrate.ChangeDropIndex:
		// MySQL scopes index names to their table
		buf.Add(utils.NewSQLBuilder(d.QuoteIdentifier).
			Drop("INDEX").
			Name(change.Index.Name).
			On(change.TableName).
			String())

	case migrate.ChangeAddForeignKey:
		migrate.WriteAddForeignKey(buf, d, change.TableName, change.ForeignKey)

	case migrate.ChangeDropForeignKey:
		buf.Add(utils.NewSQLBuilder(d.QuoteIdentifier).
			Alter("TABLE").
			Name(change.TableName).
			Drop("FOREIGN KEY").
			Name(change.ForeignKey.Name).
			String())

	default:
		return migrate.MigrationErrorf("unexpected change kind '%s'", change.Kind)
	}

	return nil
}

func (d *Dialect) writeModifyColumn(buf *migrate.Buffer, tableName string, col *migrate.Column) error {
	def, err := d.ColumnDefinition(col)
	if err != nil {
		return err
	}

	buf.Add(utils.NewSQLBuilder(d.QuoteIdentifier).
		Alter("TABLE").
		Name(tableName).
		Raw("MODIFY COLUMN").
		Raw(def).
		String())
	return nil
}

// writeAlterPrimaryKey replaces the table's primary key in a single ALTER so
// the table is never left without its identifying key between statements.
// MySQL rejects DROP PRIMARY KEY on a table that has none, so the DROP clause
// is only emitted when the live table carries a key.
func (d *Dialect) writeAlterPrimaryKey(buf *migrate.Buffer, change *migrate.Change) {
	b := utils.NewSQLBuilder(d.QuoteIdentifier).
		Alter("TABLE").
		Name(change.TableName)

	hasCurrent := change.CurrentTable != nil && len(change.CurrentTable.PrimaryKey) > 0
	target := change.Table.PrimaryKey

	switch {
	case hasCurrent && len(target) > 0:
		b.Raw("DROP PRIMARY KEY,").
			Add("PRIMARY KEY").
			Columns(target...)
	case hasCurrent:
		b.Raw("DROP PRIMARY KEY")
	default:
		b.Add("PRIMARY KEY").
			Columns(target...)
	}

	buf.Add(b.String())
}

// NewSchemaReader constructs the information_schema based reader.
func (d *Dialect) NewSchemaReader(db *sql.DB, database string) migrate.SchemaReader {
	return &schemaReader{db: db, database: database}
}
