package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/pvginkel/gmtdata/pkg/migrate"
)

// pgTypeNames maps the catalog's spelled-out type names onto canonical
// types. Names not listed here fall through to the shared alias table.
var pgTypeNames = map[string]migrate.DbType{
	"character varying":           migrate.DbTypeString,
	"character":                   migrate.DbTypeFixedString,
	"integer":                     migrate.DbTypeInt,
	"real":                        migrate.DbTypeFloat,
	"double precision":            migrate.DbTypeDouble,
	"numeric":                     migrate.DbTypeDecimal,
	"bytea":                       migrate.DbTypeBlob,
	"uuid":                        migrate.DbTypeGuid,
	"timestamp without time zone": migrate.DbTypeDateTime,
	"timestamp with time zone":    migrate.DbTypeDateTime,
	"time without time zone":      migrate.DbTypeTime,
	"time with time zone":         migrate.DbTypeTime,
}

// schemaReader reads the live structure of a PostgreSQL schema from
// information_schema and pg_catalog.
type schemaReader struct {
	db     *sql.DB
	schema string
}

// Read builds a snapshot of the schema's tables, columns, indexes and
// foreign keys.
func (r *schemaReader) Read(ctx context.Context) (*migrate.Snapshot, error) {
	snapshot := migrate.NewSnapshot(r.schema)

	if err := r.readTables(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := r.readColumns(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := r.readPrimaryAndForeignKeys(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := r.readIndexes(ctx, snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (r *schemaReader) readTables(ctx context.Context, snapshot *migrate.Snapshot) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`,
		r.schema)
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
		SELECT table_name, column_name, data_type,
		       character_maximum_length, numeric_precision, numeric_scale,
		       is_nullable, column_default
		FROM information_schema.columns
		WHERE table_schema = $1
		ORDER BY table_name, ordinal_position`,
		r.schema)
	if err != nil {
		return errors.Wrap(err, "failed to read columns")
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			tableName, columnName, dataType, isNullable   string
			charMaxLength, numericPrecision, numericScale sql.NullInt64
			columnDefault                                 sql.NullString
		)
		if err := rows.Scan(&tableName, &columnName, &dataType,
			&charMaxLength, &numericPrecision, &numericScale,
			&isNullable, &columnDefault); err != nil {
			return errors.Wrap(err, "failed to scan column row")
		}

		table, ok := snapshot.Tables[tableName]
		if !ok {
			continue
		}

		dbType, err := parsePgType(dataType)
		if err != nil {
			return migrate.MigrationErrorf("table '%s': column '%s' has unmappable type '%s'",
				tableName, columnName, dataType)
		}

		col := &migrate.Column{
			Name:     columnName,
			Type:     dbType,
			Nullable: strings.EqualFold(isNullable, "YES"),
		}

		switch dbType {
		case migrate.DbTypeString, migrate.DbTypeFixedString:
			col.Length = int(charMaxLength.Int64)
		case migrate.DbTypeDecimal:
			col.Length = int(numericPrecision.Int64)
			col.Scale = int(numericScale.Int64)
		}

		if columnDefault.Valid {
			if isSequenceDefault(columnDefault.String) {
				col.AutoIncrement = true
			} else {
				value := unquoteDefault(columnDefault.String)
				col.Default = &value
			}
		}

		table.Columns = append(table.Columns, col)
	}

	return errors.Wrap(rows.Err(), "failed to read columns")
}

func parsePgType(dataType string) (migrate.DbType, error) {
	if t, ok := pgTypeNames[strings.ToLower(dataType)]; ok {
		return t, nil
	}
	return migrate.ParseDbType(dataType)
}

// isSequenceDefault recognizes the nextval() defaults serial columns get.
func isSequenceDefault(value string) bool {
	return strings.HasPrefix(value, "nextval(")
}

// unquoteDefault strips the literal quoting and type cast the catalog wraps
// defaults in, e.g. 'pending'::character varying.
func unquoteDefault(value string) string {
	if idx := strings.Index(value, "::"); idx >= 0 {
		value = value[:idx]
	}
	if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
		value = strings.ReplaceAll(value[1:len(value)-1], "''", "'")
	}
	return value
}

// readPrimaryAndForeignKeys loads key constraints in a single pass over
// information_schema's constraint views.
func (r *schemaReader) readPrimaryAndForeignKeys(ctx context.Context, snapshot *migrate.Snapshot) error {
	if err := r.readPrimaryKeys(ctx, snapshot); err != nil {
		return err
	}
	return r.readForeignKeys(ctx, snapshot)
}

func (r *schemaReader) readPrimaryKeys(ctx context.Context, snapshot *migrate.Snapshot) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tc.table_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name
		 AND kcu.constraint_schema = tc.constraint_schema
		WHERE tc.table_schema = $1 AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY tc.table_name, kcu.ordinal_position`,
		r.schema)
	if err != nil {
		return errors.Wrap(err, "failed to read primary keys")
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var tableName, columnName string
		if err := rows.Scan(&tableName, &columnName); err != nil {
			return errors.Wrap(err, "failed to scan primary key row")
		}
		if table, ok := snapshot.Tables[tableName]; ok {
			table.PrimaryKey = append(table.PrimaryKey, columnName)
		}
	}

	return errors.Wrap(rows.Err(), "failed to read primary keys")
}

func (r *schemaReader) readForeignKeys(ctx context.Context, snapshot *migrate.Snapshot) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tc.table_name, tc.constraint_name, kcu.column_name,
		       ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name
		 AND kcu.constraint_schema = tc.constraint_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_name = tc.constraint_name
		 AND ccu.constraint_schema = tc.constraint_schema
		WHERE tc.table_schema = $1 AND tc.constraint_type = 'FOREIGN KEY'
		ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position`,
		r.schema)
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

// readIndexes loads secondary indexes from pg_catalog, skipping the indexes
// that back primary key and unique constraints.
func (r *schemaReader) readIndexes(ctx context.Context, snapshot *migrate.Snapshot) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.relname, i.relname, ix.indisunique, a.attname, array_position(ix.indkey, a.attnum)
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE n.nspname = $1 AND NOT ix.indisprimary
		  AND NOT EXISTS (
		      SELECT 1 FROM pg_constraint c WHERE c.conindid = ix.indexrelid
		  )
		ORDER BY t.relname, i.relname, array_position(ix.indkey, a.attnum)`,
		r.schema)
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
			unique                           bool
			position                         sql.NullInt64
		)
		if err := rows.Scan(&tableName, &indexName, &unique, &columnName, &position); err != nil {
			return errors.Wrap(err, "failed to scan index row")
		}

		table, ok := snapshot.Tables[tableName]
		if !ok {
			continue
		}

		key := indexKey{table: tableName, name: indexName}
		idx, ok := indexes[key]
		if !ok {
			idx = &migrate.Index{Name: indexName, Unique: unique}
			indexes[key] = idx
			table.Indexes = append(table.Indexes, idx)
		}
		idx.Columns = append(idx.Columns, columnName)
	}

	return errors.Wrap(rows.Err(), "failed to read indexes")
}
