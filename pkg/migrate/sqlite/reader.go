package sqlite

import (
	"context"
	"database/sql"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/pvginkel/gmtdata/pkg/migrate"
	"github.com/pvginkel/gmtdata/pkg/utils"
)

var (
	// declaredType matches declared column types like varchar(255) and
	// decimal(10, 2)
	declaredType = regexp.MustCompile(`^([a-zA-Z_]+)\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?$`)

	// foreignKeyClause matches the constraint clauses this dialect emits in
	// CREATE TABLE
	foreignKeyClause = regexp.MustCompile(
		`(?i)CONSTRAINT\s+"((?:[^"]|"")+)"\s+FOREIGN\s+KEY\s*\(([^)]+)\)\s*REFERENCES\s+"((?:[^"]|"")+)"\s*\(([^)]+)\)`)
)

// schemaReader reads the live structure of a SQLite database through the
// schema pragmas and sqlite_master.
type schemaReader struct {
	db       *sql.DB
	database string
}

// Read builds a snapshot of the database's tables, columns, indexes and
// foreign keys.
func (r *schemaReader) Read(ctx context.Context) (*migrate.Snapshot, error) {
	snapshot := migrate.NewSnapshot(r.database)

	tables, err := r.readTables(ctx)
	if err != nil {
		return nil, err
	}

	for name, createSQL := range tables {
		table := &migrate.Table{Name: name}

		if err := r.readColumns(ctx, table); err != nil {
			return nil, err
		}
		if err := r.readIndexes(ctx, table); err != nil {
			return nil, err
		}
		table.ForeignKeys = foreignKeysFromSQL(createSQL)

		snapshot.Tables[name] = table
	}

	return snapshot, nil
}

func (r *schemaReader) readTables(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, sql
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tables")
	}
	defer func() { _ = rows.Close() }()

	tables := map[string]string{}
	for rows.Next() {
		var (
			name      string
			createSQL sql.NullString
		)
		if err := rows.Scan(&name, &createSQL); err != nil {
			return nil, errors.Wrap(err, "failed to scan table row")
		}
		tables[name] = createSQL.String
	}

	return tables, errors.Wrap(rows.Err(), "failed to list tables")
}

func (r *schemaReader) readColumns(ctx context.Context, table *migrate.Table) error {
	rows, err := r.db.QueryContext(ctx,
		"PRAGMA table_info("+utils.QuoteIdentifier(table.Name, '"')+")")
	if err != nil {
		return errors.Wrapf(err, "failed to read columns of table '%s'", table.Name)
	}
	defer func() { _ = rows.Close() }()

	type pkColumn struct {
		name     string
		position int
	}
	var pkColumns []pkColumn

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typeName   string
			defaultValue     sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typeName, &notNull, &defaultValue, &pk); err != nil {
			return errors.Wrapf(err, "failed to scan column of table '%s'", table.Name)
		}

		col, err := columnFromDeclaredType(table.Name, name, typeName)
		if err != nil {
			return err
		}
		col.Nullable = notNull == 0

		if defaultValue.Valid {
			value := unquoteDefault(defaultValue.String)
			col.Default = &value
		}

		table.Columns = append(table.Columns, col)

		if pk > 0 {
			pkColumns = append(pkColumns, pkColumn{name: name, position: pk})
		}
	}

	if err := rows.Err(); err != nil {
		return errors.Wrapf(err, "failed to read columns of table '%s'", table.Name)
	}

	sort.Slice(pkColumns, func(i, j int) bool { return pkColumns[i].position < pkColumns[j].position })
	for _, pk := range pkColumns {
		table.PrimaryKey = append(table.PrimaryKey, pk.name)
	}

	return nil
}

func columnFromDeclaredType(tableName, columnName, typeName string) (*migrate.Column, error) {
	m := declaredType.FindStringSubmatch(strings.TrimSpace(typeName))
	if m == nil {
		return nil, migrate.MigrationErrorf("table '%s': column '%s' has unmappable type '%s'",
			tableName, columnName, typeName)
	}

	dbType, err := migrate.ParseDbType(m[1])
	if err != nil {
		return nil, migrate.MigrationErrorf("table '%s': column '%s' has unmappable type '%s'",
			tableName, columnName, typeName)
	}

	col := &migrate.Column{Name: columnName, Type: dbType}
	if m[2] != "" {
		col.Length, _ = strconv.Atoi(m[2])
	}
	if m[3] != "" {
		col.Scale, _ = strconv.Atoi(m[3])
	}

	return col, nil
}

// unquoteDefault strips the literal quoting the pragma reports for string
// defaults.
func unquoteDefault(value string) string {
	if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
		return strings.ReplaceAll(value[1:len(value)-1], "''", "'")
	}
	return value
}

func (r *schemaReader) readIndexes(ctx context.Context, table *migrate.Table) error {
	rows, err := r.db.QueryContext(ctx,
		"PRAGMA index_list("+utils.QuoteIdentifier(table.Name, '"')+")")
	if err != nil {
		return errors.Wrapf(err, "failed to read indexes of table '%s'", table.Name)
	}
	defer func() { _ = rows.Close() }()

	type indexInfo struct {
		name   string
		unique bool
	}
	var infos []indexInfo

	for rows.Next() {
		var (
			seq, unique, partial int
			name, origin         string
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return errors.Wrapf(err, "failed to scan index of table '%s'", table.Name)
		}

		// Keep only explicitly created indexes; constraint-backing indexes
		// are not declared structure
		if origin != "c" {
			continue
		}
		infos = append(infos, indexInfo{name: name, unique: unique == 1})
	}

	if err := rows.Err(); err != nil {
		return errors.Wrapf(err, "failed to read indexes of table '%s'", table.Name)
	}

	for _, info := range infos {
		columns, err := r.readIndexColumns(ctx, info.name)
		if err != nil {
			return err
		}
		table.Indexes = append(table.Indexes, &migrate.Index{
			Name:    info.name,
			Columns: columns,
			Unique:  info.unique,
		})
	}

	return nil
}

func (r *schemaReader) readIndexColumns(ctx context.Context, indexName string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"PRAGMA index_info("+utils.QuoteIdentifier(indexName, '"')+")")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read columns of index '%s'", indexName)
	}
	defer func() { _ = rows.Close() }()

	var columns []string
	for rows.Next() {
		var (
			seqno, cid int
			name       string
		)
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, errors.Wrapf(err, "failed to scan column of index '%s'", indexName)
		}
		columns = append(columns, name)
	}

	return columns, errors.Wrapf(rows.Err(), "failed to read columns of index '%s'", indexName)
}

// foreignKeysFromSQL recovers named foreign key constraints from the stored
// CREATE TABLE text. The foreign_key_list pragma drops constraint names, so
// the declaration itself is the only place they survive.
func foreignKeysFromSQL(createSQL string) []*migrate.ForeignKey {
	var fks []*migrate.ForeignKey
	for _, m := range foreignKeyClause.FindAllStringSubmatch(createSQL, -1) {
		fks = append(fks, &migrate.ForeignKey{
			Name:       unquoteIdentifier(m[1]),
			Columns:    splitIdentifierList(m[2]),
			RefTable:   unquoteIdentifier(m[3]),
			RefColumns: splitIdentifierList(m[4]),
		})
	}
	return fks
}

func splitIdentifierList(list string) []string {
	parts := strings.Split(list, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		name = strings.Trim(name, `"`)
		names = append(names, unquoteIdentifier(name))
	}
	return names
}

func unquoteIdentifier(name string) string {
	return strings.ReplaceAll(name, `""`, `"`)
}
