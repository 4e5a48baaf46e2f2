package mysql

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/pvginkel/gmtdata/pkg/migrate"
)

// schemaReader reads the live structure of a MySQL database from
// information_schema.
type schemaReader struct {
	db       *sql.DB
	database string
}

// Read builds a snapshot of the database's tables, columns, indexes and
// foreign keys.
func (r *schemaReader) Read(ctx context.Context) (*migrate.Snapshot, error) {
	snapshot := migrate.NewSnapshot(r.database)

	if err := r.readTables(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := r.readColumns(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := r.readForeignKeys(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := r.readIndexes(ctx, snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (r *schemaReader) readTables(ctx context.Context, snapshot *migrate.Snapshot) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT TABLE_NAME
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`,
		r.database)
	if err != nil {
		return errors.Wrap(err, "failed to list tables")
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return errors.Wrap(err, "failed to scan table row")
		}
		snapshot.Tables[name] = &migrate.Table{Name: name}
	}

	return errors.Wrap(rows.Err(), "failed to list tables")
}

func (r *schemaReader) readColumns(ctx context.Context, snapshot *migrate.Snapshot) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE, COLUMN_TYPE,
		       CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE,
		       IS_NULLABLE, COLUMN_DEFAULT, EXTRA,
		       CHARACTER_SET_NAME, COLLATION_NAME
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_NAME, ORDINAL_POSITION`,
		r.database)
	if err != nil {
		return errors.Wrap(err, "failed to read columns")
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			tableName, columnName, dataType, columnType, isNullable, extra string
			charMaxLength, numericPrecision, numericScale                  sql.NullInt64
			columnDefault, charsetName, collationName                      sql.NullString
		)
		if err := rows.Scan(&tableName, &columnName, &dataType, &columnType,
			&charMaxLength, &numericPrecision, &numericScale,
			&isNullable, &columnDefault, &extra,
			&charsetName, &collationName); err != nil {
			return errors.Wrap(err, "failed to scan column row")
		}

		table, ok := snapshot.Tables[tableName]
		if !ok {
			continue
		}

		col, err := columnFromInfoSchema(tableName, columnName, dataType, columnType,
			charMaxLength, numericPrecision, numericScale,
			isNullable, columnDefault, extra, charsetName, collationName)
		if err != nil {
			return err
		}

		table.Columns = append(table.Columns, col)
	}

	return errors.Wrap(rows.Err(), "failed to read columns")
}

func columnFromInfoSchema(tableName, columnName, dataType, columnType string,
	charMaxLength, numericPrecision, numericScale sql.NullInt64,
	isNullable string, columnDefault sql.NullString, extra string,
	charsetName, collationName sql.NullString) (*migrate.Column, error) {

	dbType, err := migrate.ParseDbType(dataType)
	if err != nil {
		return nil, migrate.MigrationErrorf("table '%s': column '%s' has unmappable type '%s'",
			tableName, columnName, dataType)
	}

	col := &migrate.Column{
		Name:          columnName,
		Type:          dbType,
		Nullable:      strings.EqualFold(isNullable, "YES"),
		AutoIncrement: strings.Contains(extra, "auto_increment"),
		Charset:       charsetName.String,
		Collation:     collationName.String,
	}

	if columnDefault.Valid {
		value := columnDefault.String
		col.Default = &value
	}

	switch dbType {
	case migrate.DbTypeString, migrate.DbTypeFixedString,
		migrate.DbTypeBinary, migrate.DbTypeFixedBinary:
		col.Length = int(charMaxLength.Int64)
	case migrate.DbTypeDecimal:
		col.Length = int(numericPrecision.Int64)
		col.Scale = int(numericScale.Int64)
	case migrate.DbTypeEnumeration:
		col.EnumValues = parseEnumValues(columnType)
	}

	return col, nil
}

// parseEnumValues extracts the member list from a COLUMN_TYPE value of the
// form enum('a','b','c').
func parseEnumValues(columnType string) []string {
	open := strings.IndexByte(columnType, '(')
	end := strings.LastIndexByte(columnType, ')')
	if open < 0 || end <= open {
		return nil
	}

	var (
		values  []string
		current strings.Builder
		inValue bool
	)

	body := columnType[open+1 : end]
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case !inValue:
			if c == '\'' {
				inValue = true
			}
		case c == '\'':
			// MySQL doubles embedded quotes
			if i+1 < len(body) && body[i+1] == '\'' {
				current.WriteByte('\'')
				i++
				continue
			}
			values = append(values, current.String())
			current.Reset()
			inValue = false
		default:
			current.WriteByte(c)
		}
	}

	return values
}

func (r *schemaReader) readIndexes(ctx context.Context, snapshot *migrate.Snapshot) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT TABLE_NAME, INDEX_NAME, NON_UNIQUE, COLUMN_NAME
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_NAME, INDEX_NAME, SEQ_IN_INDEX`,
		r.database)
	if err != nil {
		return errors.Wrap(err, "failed to read indexes")
	}
	defer func() { _ = rows.Close() }()

	type indexKey struct {
		table string
		name  string
	}
	indexes := map[indexKey]*migrate.Index{}

	for rows.Next() {
		var (
			tableName, indexName, columnName string
			nonUnique                        int
		)
		if err := rows.Scan(&tableName, &indexName, &nonUnique, &columnName); err != nil {
			return errors.Wrap(err, "failed to scan index row")
		}

		table, ok := snapshot.Tables[tableName]
		if !ok {
			continue
		}

		if indexName == "PRIMARY" {
			table.PrimaryKey = append(table.PrimaryKey, columnName)
			continue
		}

		key := indexKey{table: tableName, name: indexName}
		idx, ok := indexes[key]
		if !ok {
			idx = &migrate.Index{Name: indexName, Unique: nonUnique == 0}
			indexes[key] = idx
			table.Indexes = append(table.Indexes, idx)
		}
		idx.Columns = append(idx.Columns, columnName)
	}

	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "failed to read indexes")
	}

	// MySQL creates a backing index per foreign key; those aren't declared
	// structure, so hide them from the diff.
	for _, table := range snapshot.Tables {
		table.Indexes = withoutForeignKeyIndexes(table.Indexes, table.ForeignKeys)
	}

	return nil
}

func withoutForeignKeyIndexes(indexes []*migrate.Index, fks []*migrate.ForeignKey) []*migrate.Index {
	kept := indexes[:0]
	for _, idx := range indexes {
		backing := false
		for _, fk := range fks {
			if idx.Name == fk.Name {
				backing = true
				break
			}
		}
		if !backing {
			kept = append(kept, idx)
		}
	}
	return kept
}

func (r *schemaReader) readForeignKeys(ctx context.Context, snapshot *migrate.Snapshot) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT TABLE_NAME, CONSTRAINT_NAME, COLUMN_NAME,
		       REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
		FROM information_schema.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ? AND REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY TABLE_NAME, CONSTRAINT_NAME, ORDINAL_POSITION`,
		r.database)
	if err != nil {
		return errors.Wrap(err, "failed to read foreign keys")
	}
	defer func() { _ = rows.Close() }()

	type fkKey struct {
		table string
		name  string
	}
	fks := map[fkKey]*migrate.ForeignKey{}

	for rows.Next() {
		var tableName, constraintName, columnName, refTable, refColumn string
		if err := rows.Scan(&tableName, &constraintName, &columnName, &refTable, &refColumn); err != nil {
			return errors.Wrap(err, "failed to scan foreign key row")
		}

		table, ok := snapshot.Tables[tableName]
		if !ok {
			continue
		}

		key := fkKey{table: tableName, name: constraintName}
		fk, ok := fks[key]
		if !ok {
			fk = &migrate.ForeignKey{Name: constraintName, RefTable: refTable}
			fks[key] = fk
			table.ForeignKeys = append(table.ForeignKeys, fk)
		}
		fk.Columns = append(fk.Columns, columnName)
		fk.RefColumns = append(fk.RefColumns, refColumn)
	}

	return errors.Wrap(rows.Err(), "failed to read foreign keys")
}
